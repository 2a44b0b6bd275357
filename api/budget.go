package api

import (
	"strings"
	"time"

	"moonlife/analytics"
	"moonlife/models"
	"moonlife/storage"

	"github.com/gin-gonic/gin"
)

// BudgetHandler 预算处理器
type BudgetHandler struct {
	store *storage.RecordStore
}

// NewBudgetHandler 创建预算处理器
func NewBudgetHandler(store *storage.RecordStore) *BudgetHandler {
	return &BudgetHandler{store: store}
}

// SetBudgetRequest 设置预算请求
type SetBudgetRequest struct {
	Category string  `json:"category" binding:"required" example:"餐饮"`
	Amount   float64 `json:"amount" binding:"required,gt=0" example:"1500"`
}

// BudgetWithStatus 预算及本月使用情况
type BudgetWithStatus struct {
	models.BudgetEntry
	Status analytics.BudgetStatus `json:"status"`
}

// Set 设置类别预算
// @Summary 设置类别预算
// @Description 每个类别一条月度预算，重复提交会覆盖原金额而不是新增
// @Tags 预算
// @Accept json
// @Produce json
// @Param request body SetBudgetRequest true "预算信息"
// @Success 200 {object} Response{data=models.BudgetEntry} "设置成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/budgets [post]
func (h *BudgetHandler) Set(c *gin.Context) {
	var req SetBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	req.Category = strings.TrimSpace(req.Category)
	entry, created, err := h.store.SetBudget(req.Category, req.Amount)
	if err != nil {
		if _, ok := err.(*storage.PersistenceError); ok {
			InternalError(c, SafeErrorMessage(err, "保存失败"))
			return
		}
		BadRequest(c, err.Error())
		return
	}

	if created {
		SuccessWithMessage(c, "预算设置成功", entry)
	} else {
		SuccessWithMessage(c, "预算已更新", entry)
	}
}

// List 获取预算列表
// @Summary 获取预算列表
// @Description 返回所有预算及其本月使用情况（已用、剩余、超支、使用率、状态档位）
// @Tags 预算
// @Produce json
// @Success 200 {object} Response{data=[]BudgetWithStatus} "获取成功"
// @Router /api/v1/budgets [get]
func (h *BudgetHandler) List(c *gin.Context) {
	yearMonth := time.Now().Format("2006-01")
	spend := analytics.MonthlyCategorySpend(h.store.Expenses(), yearMonth)

	budgets := h.store.Budgets()
	out := make([]BudgetWithStatus, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, BudgetWithStatus{
			BudgetEntry: b,
			Status:      analytics.EvalBudget(b, spend),
		})
	}
	Success(c, out)
}
