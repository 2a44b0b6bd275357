package api

import (
	"strconv"
	"strings"
	"time"

	"moonlife/analytics"
	"moonlife/models"
	"moonlife/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ExpenseHandler 消费记录处理器
type ExpenseHandler struct {
	store *storage.RecordStore
}

// NewExpenseHandler 创建消费记录处理器
func NewExpenseHandler(store *storage.RecordStore) *ExpenseHandler {
	return &ExpenseHandler{store: store}
}

// ImagePayload 上传的凭证图片
type ImagePayload struct {
	Data string `json:"data" binding:"required"` // data URL
	Name string `json:"name" example:"receipt.jpg"`
}

// CreateExpenseRequest 创建消费记录请求
type CreateExpenseRequest struct {
	Amount   float64        `json:"amount" binding:"required,gt=0" example:"99.99"`
	Category string         `json:"category" binding:"required" example:"餐饮"`
	Date     string         `json:"date" binding:"required" example:"2024-01-15"`
	Note     string         `json:"note" example:"和朋友聚餐"`
	Mood     string         `json:"mood" example:"happy"`
	MoodNote string         `json:"mood_note" example:"今天心情不错"`
	Images   []ImagePayload `json:"images"`
}

// ExpenseListRequest 消费记录列表请求
type ExpenseListRequest struct {
	Page      int    `form:"page" example:"1"`
	PageSize  int    `form:"page_size" example:"10"`
	Search    string `form:"search" example:"咖啡"`
	Category  string `form:"category" example:"餐饮"`
	DateRange string `form:"date_range" example:"week"` // today / week / month
}

// Create 创建消费记录
// @Summary 创建消费记录
// @Description 新增一条消费记录，可附带心情标签和凭证图片
// @Tags 消费记录
// @Accept json
// @Produce json
// @Param request body CreateExpenseRequest true "消费记录信息"
// @Success 200 {object} Response{data=models.ExpenseRecord} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/expenses [post]
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	req.Category = strings.TrimSpace(req.Category)
	if req.Category == "" {
		BadRequest(c, "类别不能为空")
		return
	}
	if req.Mood != "" && !models.IsValidMood(req.Mood) {
		BadRequest(c, "无效的心情标签")
		return
	}

	rec := models.ExpenseRecord{
		Amount:   req.Amount,
		Category: req.Category,
		Date:     req.Date,
		Note:     req.Note,
		Mood:     req.Mood,
		MoodNote: req.MoodNote,
	}
	for _, img := range req.Images {
		rec.Images = append(rec.Images, models.ExpenseImage{
			ID:   uuid.NewString(),
			Data: img.Data,
			Name: img.Name,
		})
	}

	created, err := h.store.AddExpense(rec)
	if err != nil {
		if _, ok := err.(*storage.PersistenceError); ok {
			InternalError(c, SafeErrorMessage(err, "保存失败"))
			return
		}
		BadRequest(c, err.Error())
		return
	}

	SuccessWithMessage(c, "记账成功", created)
}

// List 获取消费记录列表
// @Summary 获取消费记录列表
// @Description 按关键字、类别、时间范围筛选消费记录，按日期从新到旧返回，支持分页
// @Tags 消费记录
// @Accept json
// @Produce json
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Param search query string false "关键字（匹配备注或类别，不区分大小写）"
// @Param category query string false "类别筛选"
// @Param date_range query string false "时间范围" Enums(today, week, month)
// @Success 200 {object} Response "获取成功"
// @Router /api/v1/expenses [get]
func (h *ExpenseHandler) List(c *gin.Context) {
	var req ExpenseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	switch req.DateRange {
	case analytics.RangeAll, analytics.RangeToday, analytics.RangeWeek, analytics.RangeMonth:
	default:
		BadRequest(c, "无效的时间范围: "+req.DateRange)
		return
	}

	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 10
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	filtered := analytics.FilterExpenses(h.store.Expenses(), analytics.Filter{
		Search:    req.Search,
		Category:  req.Category,
		DateRange: req.DateRange,
	}, time.Now())

	total := len(filtered)
	start := (req.Page - 1) * req.PageSize
	if start > total {
		start = total
	}
	end := start + req.PageSize
	if end > total {
		end = total
	}

	Success(c, gin.H{
		"total":     total,
		"page":      req.Page,
		"page_size": req.PageSize,
		"list":      filtered[start:end],
	})
}

// GetCategories 获取消费类别列表
// @Summary 获取消费类别列表
// @Description 返回默认类别加上历史记录里用过的自定义类别
// @Tags 消费记录
// @Produce json
// @Success 200 {object} Response{data=[]string} "获取成功"
// @Router /api/v1/categories [get]
func (h *ExpenseHandler) GetCategories(c *gin.Context) {
	cats := models.GetCategories()
	seen := make(map[string]bool, len(cats))
	for _, name := range cats {
		seen[name] = true
	}
	// 类别是开放集合，用户记过的自定义类别也要出现在筛选列表里
	for _, e := range h.store.Expenses() {
		if !seen[e.Category] {
			seen[e.Category] = true
			cats = append(cats, e.Category)
		}
	}
	Success(c, cats)
}

// RemoveImage 删除消费记录上的凭证图片
// @Summary 删除凭证图片
// @Description 删除某条消费记录上的一张凭证图片
// @Tags 消费记录
// @Produce json
// @Param id path int true "记录ID"
// @Param image_id path string true "图片ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "记录或图片不存在"
// @Router /api/v1/expenses/{id}/images/{image_id} [delete]
func (h *ExpenseHandler) RemoveImage(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		BadRequest(c, "无效的记录ID")
		return
	}

	if err := h.store.RemoveExpenseImage(uint(id), c.Param("image_id")); err != nil {
		if _, ok := err.(*storage.PersistenceError); ok {
			InternalError(c, SafeErrorMessage(err, "保存失败"))
			return
		}
		NotFound(c, err.Error())
		return
	}
	SuccessWithMessage(c, "图片已删除", nil)
}

// MoodOption 心情选项
type MoodOption struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
	Score int    `json:"score"`
}

// GetMoods 获取心情标签列表
// @Summary 获取心情标签列表
// @Description 返回固定的6种心情标签及其展示信息
// @Tags 消费记录
// @Produce json
// @Success 200 {object} Response{data=[]MoodOption} "获取成功"
// @Router /api/v1/moods [get]
func (h *ExpenseHandler) GetMoods(c *gin.Context) {
	moods := models.GetMoods()
	out := make([]MoodOption, 0, len(moods))
	for _, key := range moods {
		info, _ := models.GetMoodInfo(key)
		out = append(out, MoodOption{
			Key:   key,
			Name:  info.Name,
			Emoji: info.Emoji,
			Score: info.Score,
		})
	}
	Success(c, out)
}

func parsePositiveInt(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}
