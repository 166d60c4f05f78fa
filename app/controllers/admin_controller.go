package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ugd-resolver/app/requests"
	"github.com/ugd-resolver/app/responses"
	"github.com/ugd-resolver/app/services"
	"go.uber.org/zap"
)

// AdminController controller xử lý các request admin
type AdminController struct {
	adminService    *services.AdminService
	resolverService *services.ResolverService
	logger          *zap.Logger
}

// NewAdminController tạo mới AdminController
func NewAdminController(adminService *services.AdminService, resolverService *services.ResolverService, logger *zap.Logger) *AdminController {
	return &AdminController{
		adminService:    adminService,
		resolverService: resolverService,
		logger:          logger,
	}
}

// ReloadReference đọc lại file tham chiếu và swap bảng đang dùng
func (ac *AdminController) ReloadReference(c *gin.Context) {
	result, err := ac.adminService.ReloadTable(c.Request.Context())
	if err != nil {
		ac.logger.Error("Lỗi reload bảng tham chiếu", zap.Error(err))
		errorJSON(c, http.StatusInternalServerError, "RELOAD_ERROR", "Lỗi reload bảng tham chiếu: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, responses.ReloadResponse{
		PreviousVersion:  result.PreviousVersion,
		TableVersion:     result.Table.Version(),
		Records:          result.Table.Len(),
		Skipped:          result.Report.Skipped,
		InvalidBINs:      result.Report.InvalidBINs,
		Indexed:          result.Indexed,
		ProcessingTimeMs: result.Duration.Milliseconds(),
	})
}

// InvalidateCache invalidate cache theo phiên bản bảng (body không bắt buộc)
func (ac *AdminController) InvalidateCache(c *gin.Context) {
	var req requests.InvalidateCacheRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			errorJSON(c, http.StatusBadRequest, "INVALID_REQUEST", "Request không hợp lệ: "+err.Error())
			return
		}
	}
	if v := c.Query("table_version"); v != "" {
		req.TableVersion = v
	}

	startTime := time.Now()

	kept, err := ac.adminService.InvalidateCache(c.Request.Context(), req.TableVersion, req.All)
	if err != nil {
		ac.logger.Error("Lỗi invalidate cache", zap.Error(err))
		errorJSON(c, http.StatusInternalServerError, "INVALIDATE_ERROR", "Lỗi invalidate cache: "+err.Error())
		return
	}

	processingTime := time.Since(startTime)
	ac.logger.Info("Invalidate cache thành công",
		zap.String("kept_version", kept),
		zap.Bool("all", req.All),
		zap.Duration("duration", processingTime))

	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success: true,
		Message: "Invalidate cache thành công",
		Data: map[string]interface{}{
			"kept_version":       kept,
			"all":                req.All,
			"processing_time_ms": processingTime.Milliseconds(),
		},
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// GetStats lấy thống kê hệ thống
func (ac *AdminController) GetStats(c *gin.Context) {
	stats, err := ac.adminService.GetSystemStats(c.Request.Context())
	if err != nil {
		ac.logger.Error("Lỗi lấy stats", zap.Error(err))
		errorJSON(c, http.StatusInternalServerError, "STATS_ERROR", "Lỗi lấy stats: "+err.Error())
		return
	}

	cacheStats := stats.Cache
	if cacheStats == nil {
		cacheStats = &services.CacheStats{}
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	c.JSON(http.StatusOK, responses.SystemStatsResponse{
		CacheHitRate: cacheStats.HitRate,
		TotalCached:  cacheStats.TotalItems,
		SystemInfo: responses.SystemInfo{
			Version:     Version,
			Environment: env,
			Uptime:      stats.Uptime,
			MemoryUsage: stats.MemoryUsage,
			Goroutines:  stats.Goroutines,
		},
		Reference: responses.ReferenceInfo{
			Path:      stats.Path,
			Version:   stats.Version,
			Records:   stats.Records,
			Districts: stats.Districts,
			LoadedAt:  stats.LoadedAt.Format(time.RFC3339),
		},
		Jobs: ac.resolverService.JobCount(),
	})
}

// BuildIndexes build lại index Meilisearch từ bảng đang dùng
func (ac *AdminController) BuildIndexes(c *gin.Context) {
	startTime := time.Now()

	if err := ac.adminService.RebuildIndex(); err != nil {
		if errors.Is(err, services.ErrSearchDisabled) {
			errorJSON(c, http.StatusServiceUnavailable, "SEARCH_DISABLED", err.Error())
			return
		}
		ac.logger.Error("Lỗi build indexes", zap.Error(err))
		errorJSON(c, http.StatusInternalServerError, "BUILD_ERROR", "Lỗi build indexes: "+err.Error())
		return
	}

	processingTime := time.Since(startTime)
	ac.logger.Info("Build indexes thành công", zap.Duration("duration", processingTime))

	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success: true,
		Message: "Build indexes thành công",
		Data: map[string]interface{}{
			"processing_time_ms": processingTime.Milliseconds(),
		},
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// ExportData export bảng tham chiếu để backup (/export/:format, json | csv)
func (ac *AdminController) ExportData(c *gin.Context) {
	format := c.Param("format")
	if format == "" {
		format = c.Query("format")
	}
	if format == "" {
		format = "json"
	}

	data, err := ac.adminService.ExportTable(format)
	if err != nil {
		if errors.Is(err, services.ErrExportFormat) {
			errorJSON(c, http.StatusBadRequest, "INVALID_FORMAT", err.Error())
			return
		}
		ac.logger.Error("Lỗi export data", zap.Error(err))
		errorJSON(c, http.StatusInternalServerError, "EXPORT_ERROR", "Lỗi export data: "+err.Error())
		return
	}

	filename := fmt.Sprintf("tax_offices_export_%s.%s", time.Now().Format("20060102_150405"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))

	contentType := "application/json"
	if format == "csv" {
		contentType = "text/csv; charset=utf-8"
	}
	c.Data(http.StatusOK, contentType, data)
}
