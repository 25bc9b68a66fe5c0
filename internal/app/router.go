package app

import (
	"stem_dashboard/docs"
	"stem_dashboard/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 页面
	router.GET("/", c.dashboard.Index)

	api := router.Group("/api")
	{
		api.GET("/health", c.health.HealthCheck)

		// 时间范围与图表
		api.GET("/view", c.dashboard.GetView)
		api.POST("/range/:kind", c.dashboard.SelectRange)
		api.POST("/layout", c.dashboard.Resize)
		api.GET("/charts/:name", c.dashboard.GetChart)
		api.GET("/export.xlsx", c.dashboard.Export)
		api.GET("/ws", c.dashboard.Subscribe)

		// 课程选择树
		api.GET("/courses", c.course.GetTree)
		api.POST("/courses/click", c.course.Click)
	}
}
