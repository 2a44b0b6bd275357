package router

import (
	"time"

	"moonlife/api"
	"moonlife/config"
	"moonlife/middleware"
	"moonlife/service"
	"moonlife/storage"

	"github.com/gin-gonic/gin"
)

// SetupRouter 设置路由
// 所有处理器共享同一个 RecordStore，不走全局变量
func SetupRouter(cfg *config.Config, store *storage.RecordStore) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()
	r.Use(CORSMiddleware())

	insightService := service.NewInsightService(cfg.AI)

	v1 := r.Group("/api/v1")
	{
		expenseHandler := api.NewExpenseHandler(store)
		v1.GET("/categories", expenseHandler.GetCategories)
		v1.GET("/moods", expenseHandler.GetMoods)

		expenses := v1.Group("/expenses")
		{
			expenses.POST("", expenseHandler.Create)
			expenses.GET("", expenseHandler.List)
			expenses.DELETE("/:id/images/:image_id", expenseHandler.RemoveImage)
		}

		budgetHandler := api.NewBudgetHandler(store)
		budgets := v1.Group("/budgets")
		{
			budgets.POST("", budgetHandler.Set)
			budgets.GET("", budgetHandler.List)
		}

		statisticsHandler := api.NewStatisticsHandler(store)
		statistics := v1.Group("/statistics")
		{
			statistics.GET("/categories", statisticsHandler.GetCategoryStatistics)
			statistics.GET("/trend", statisticsHandler.GetTrend)
			statistics.GET("/moods", statisticsHandler.GetMoodStatistics)
		}

		// 洞察接口走大模型，加限流防止刷量
		insightHandler := api.NewInsightHandler(store, insightService)
		insights := v1.Group("/insights")
		insights.Use(middleware.InsightRateLimit(10, time.Minute))
		{
			insights.GET("", insightHandler.GetInsights)
			insights.GET("/latest", insightHandler.GetLatestInsights)
		}

		exportHandler := api.NewExportHandler(store)
		export := v1.Group("/export")
		{
			export.GET("/csv", exportHandler.ExportCSV)
			export.GET("/excel", exportHandler.ExportExcel)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	return r
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
