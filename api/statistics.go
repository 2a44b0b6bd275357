package api

import (
	"time"

	"moonlife/analytics"
	"moonlife/models"
	"moonlife/storage"

	"github.com/gin-gonic/gin"
)

// StatisticsHandler 统计处理器
type StatisticsHandler struct {
	store *storage.RecordStore
}

// NewStatisticsHandler 创建统计处理器
func NewStatisticsHandler(store *storage.RecordStore) *StatisticsHandler {
	return &StatisticsHandler{store: store}
}

// GetCategoryStatistics 获取类别统计
// @Summary 获取类别统计
// @Description 按类别汇总全部消费，按金额从高到低返回
// @Tags 统计
// @Produce json
// @Success 200 {object} Response "获取成功"
// @Router /api/v1/statistics/categories [get]
func (h *StatisticsHandler) GetCategoryStatistics(c *gin.Context) {
	expenses := h.store.Expenses()
	totals := analytics.CategoryTotals(expenses)

	var totalAmount float64
	for _, t := range totals {
		totalAmount += t.Total
	}

	Success(c, gin.H{
		"total_amount": totalAmount,
		"total_count":  len(expenses),
		"categories":   totals,
	})
}

// GetTrend 获取消费趋势
// @Summary 获取消费趋势
// @Description 返回截止今天往前 days 天的每日消费合计，没有消费的日子补零
// @Tags 统计
// @Produce json
// @Param days query int false "统计天数" default(7)
// @Success 200 {object} Response{data=[]analytics.DailyTotal} "获取成功"
// @Router /api/v1/statistics/trend [get]
func (h *StatisticsHandler) GetTrend(c *gin.Context) {
	days := parsePositiveInt(c.Query("days"), 7)
	if days > 365 {
		days = 365
	}
	Success(c, analytics.DailyTotals(h.store.Expenses(), days, time.Now()))
}

// MoodStatEntry 带展示信息的心情统计
type MoodStatEntry struct {
	analytics.MoodStat
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
}

// GetMoodStatistics 获取本月心情消费统计
// @Summary 获取心情消费统计
// @Description 统计本月带心情标签的消费：各心情的笔数、总额、平均金额和幸福感均分，
// @Description 并给出按平均消费金额和按笔数的两种排名
// @Tags 统计
// @Produce json
// @Param month query string false "月份 (YYYY-MM)，默认当月"
// @Success 200 {object} Response "获取成功"
// @Router /api/v1/statistics/moods [get]
func (h *StatisticsHandler) GetMoodStatistics(c *gin.Context) {
	yearMonth := c.Query("month")
	if yearMonth == "" {
		yearMonth = time.Now().Format("2006-01")
	}
	if _, err := time.Parse("2006-01", yearMonth); err != nil {
		BadRequest(c, "月份格式错误，应为: 2006-01")
		return
	}

	stats := analytics.MoodExpenseStats(h.store.Expenses(), yearMonth)

	Success(c, gin.H{
		"month":         yearMonth,
		"stats":         decorate(analytics.RankMoodsByAvgAmount(stats)),
		"rank_by_count": decorate(analytics.RankMoodsByCount(stats)),
	})
}

func decorate(stats []analytics.MoodStat) []MoodStatEntry {
	out := make([]MoodStatEntry, 0, len(stats))
	for _, st := range stats {
		out = append(out, MoodStatEntry{
			MoodStat: st,
			Name:     models.MoodName(st.Mood),
			Emoji:    models.MoodEmoji(st.Mood),
		})
	}
	return out
}
