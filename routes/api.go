package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/ugd-resolver/app/controllers"
	"github.com/ugd-resolver/internal/metrics"
)

// SetupAPIRoutes thiết lập tất cả API routes
func SetupAPIRoutes(router *gin.Engine, resolverController *controllers.ResolverController, adminController *controllers.AdminController) {
	v1 := router.Group("/v1")
	{
		offices := v1.Group("/tax-offices")
		{
			offices.POST("/resolve", resolverController.Resolve)
			offices.POST("/jobs", resolverController.BatchResolve)
			offices.GET("/jobs/:jobID/status", resolverController.GetJobStatus)
			offices.GET("/jobs/:jobID/results", resolverController.GetJobResults)

			offices.GET("", resolverController.ListOffices)
			offices.GET("/search", resolverController.SearchOffices)
			offices.GET("/:code", resolverController.GetOffice)
		}

		admin := v1.Group("/admin")
		{
			admin.POST("/reference/reload", adminController.ReloadReference)
			admin.POST("/cache/invalidate", adminController.InvalidateCache)
			admin.GET("/stats", adminController.GetStats)
			admin.POST("/indexes/build", adminController.BuildIndexes)
			admin.GET("/export/:format", adminController.ExportData)
		}

		v1.GET("/health", resolverController.HealthCheck)
	}
}

// SetupHealthRoutes thiết lập health check routes
func SetupHealthRoutes(router *gin.Engine, resolverController *controllers.ResolverController) {
	router.GET("/health", resolverController.HealthCheck)

	// Readiness: 503 khi bảng tham chiếu rỗng
	router.GET("/ready", resolverController.Ready)

	router.GET("/live", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "alive"})
	})
}

// SetupMetricsRoutes thiết lập metrics routes (cho Prometheus)
func SetupMetricsRoutes(router *gin.Engine, m *metrics.Metrics) {
	router.GET("/metrics", gin.WrapH(m.Handler()))
}

// SetupAllRoutes thiết lập tất cả routes
func SetupAllRoutes(router *gin.Engine, resolverController *controllers.ResolverController,
	adminController *controllers.AdminController, m *metrics.Metrics) {
	SetupWebRoutes(router)
	SetupHealthRoutes(router, resolverController)
	SetupAPIRoutes(router, resolverController, adminController)
	SetupMetricsRoutes(router, m)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"error":  "Route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})
}
