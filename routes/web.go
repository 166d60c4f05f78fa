package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/ugd-resolver/app/controllers"
)

// SetupWebRoutes thiết lập web routes
func SetupWebRoutes(router *gin.Engine) {
	web := router.Group("/")
	{
		web.GET("/", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"message": "UGD Resolver Service",
				"version": controllers.Version,
				"docs":    "/docs",
			})
		})

		web.GET("/docs", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"api": "UGD Resolver API v1",
				"endpoints": map[string]string{
					"resolve":     "POST /v1/tax-offices/resolve",
					"batch":       "POST /v1/tax-offices/jobs",
					"job_status":  "GET /v1/tax-offices/jobs/:jobID/status",
					"job_results": "GET /v1/tax-offices/jobs/:jobID/results?format=ndjson&gzip=1",
					"offices":     "GET /v1/tax-offices?region=",
					"office":      "GET /v1/tax-offices/:code",
					"search":      "GET /v1/tax-offices/search?q=&limit=",
					"reload":      "POST /v1/admin/reference/reload",
					"invalidate":  "POST /v1/admin/cache/invalidate",
					"stats":       "GET /v1/admin/stats",
					"export":      "GET /v1/admin/export/:format",
					"build_index": "POST /v1/admin/indexes/build",
					"health":      "GET /health",
					"readiness":   "GET /ready",
					"metrics":     "GET /metrics",
				},
			})
		})
	}
}
