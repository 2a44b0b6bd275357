package api

import (
	"time"

	"moonlife/service"
	"moonlife/storage"

	"github.com/gin-gonic/gin"
)

// InsightHandler 消费洞察处理器
type InsightHandler struct {
	store    *storage.RecordStore
	insights *service.InsightService
}

// NewInsightHandler 创建消费洞察处理器
func NewInsightHandler(store *storage.RecordStore, insights *service.InsightService) *InsightHandler {
	return &InsightHandler{store: store, insights: insights}
}

// GetInsights 生成本月心情消费洞察
// @Summary 获取心情消费洞察
// @Description 基于本月带心情标签的消费生成自然语言洞察。
// @Description 配置了AI密钥时调用大模型，未配置或调用失败时退回本地规则，
// @Description 响应里的 source 字段区分两种来源（ai / fallback）
// @Tags 洞察
// @Produce json
// @Param month query string false "月份 (YYYY-MM)，默认当月"
// @Success 200 {object} Response{data=service.InsightResult} "获取成功"
// @Router /api/v1/insights [get]
func (h *InsightHandler) GetInsights(c *gin.Context) {
	yearMonth := c.Query("month")
	if yearMonth == "" {
		yearMonth = time.Now().Format("2006-01")
	}
	if _, err := time.Parse("2006-01", yearMonth); err != nil {
		BadRequest(c, "月份格式错误，应为: 2006-01")
		return
	}

	res := h.insights.Generate(c.Request.Context(), h.store.Expenses(), yearMonth)
	Success(c, res)
}

// GetLatestInsights 获取最近一次生成的洞察
// @Summary 获取最近一次洞察
// @Description 返回最近一次成功发布的洞察结果，还没有生成过时返回 404
// @Tags 洞察
// @Produce json
// @Success 200 {object} Response{data=service.InsightResult} "获取成功"
// @Failure 404 {object} Response "还没有生成过洞察"
// @Router /api/v1/insights/latest [get]
func (h *InsightHandler) GetLatestInsights(c *gin.Context) {
	res, ok := h.insights.Latest()
	if !ok {
		NotFound(c, "还没有生成过洞察")
		return
	}
	Success(c, res)
}
