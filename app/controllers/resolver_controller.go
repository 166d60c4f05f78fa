package controllers

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ugd-resolver/app/config"
	"github.com/ugd-resolver/app/requests"
	"github.com/ugd-resolver/app/responses"
	"github.com/ugd-resolver/app/services"
	"go.uber.org/zap"
)

// Version phiên bản API
const Version = "1.0.0"

// ResolverController controller xử lý resolve địa danh và tra cứu cơ quan thuế
type ResolverController struct {
	resolverService *services.ResolverService
	logger          *zap.Logger
}

// NewResolverController tạo mới ResolverController
func NewResolverController(resolverService *services.ResolverService, logger *zap.Logger) *ResolverController {
	return &ResolverController{
		resolverService: resolverService,
		logger:          logger,
	}
}

func errorJSON(c *gin.Context, status int, code, message string) {
	c.JSON(status, responses.ErrorResponse{
		Error:     code,
		Message:   message,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// Resolve resolve một địa danh
func (rc *ResolverController) Resolve(c *gin.Context) {
	var req requests.ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "INVALID_REQUEST", "Request không hợp lệ: "+err.Error())
		return
	}

	startTime := time.Now()

	ctx, cancel := context.WithTimeout(c.Request.Context(), config.RequestTimeout())
	defer cancel()

	result, err := rc.resolverService.Resolve(ctx, req.Locality, req.Options)
	if err != nil {
		rc.logger.Warn("Resolve bị hủy", zap.Error(err), zap.String("locality", req.Locality))
		errorJSON(c, http.StatusServiceUnavailable, "RESOLVE_TIMEOUT", "Resolve bị hủy: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, responses.ResolveResponse{
		TableVersion:     result.TableVersion,
		Result:           result,
		ProcessingTimeMs: time.Since(startTime).Milliseconds(),
		CacheHit:         result.CacheHit,
	})
}

// BatchResolve tạo batch job resolve hàng loạt
func (rc *ResolverController) BatchResolve(c *gin.Context) {
	var req requests.BatchResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "INVALID_REQUEST", "Request không hợp lệ: "+err.Error())
		return
	}

	if maxItems := config.C.Batch.MaxItems; maxItems > 0 && len(req.Localities) > maxItems {
		errorJSON(c, http.StatusBadRequest, "TOO_MANY_LOCALITIES",
			fmt.Sprintf("Số lượng địa danh vượt quá giới hạn (%d)", maxItems))
		return
	}

	job := rc.resolverService.SubmitBatchJob(req.Localities, req.Options)

	c.JSON(http.StatusAccepted, responses.BatchResolveResponse{
		JobID:            job.JobID,
		EstimatedSeconds: rc.resolverService.EstimateBatchProcessingTime(len(req.Localities)),
		TotalLocalities:  len(req.Localities),
		Message:          "Job đã được tạo và đang xử lý",
	})
}

// GetJobStatus lấy trạng thái job
func (rc *ResolverController) GetJobStatus(c *gin.Context) {
	jobID := c.Param("jobID")

	status, err := rc.resolverService.GetJobStatus(jobID)
	if err != nil {
		errorJSON(c, http.StatusNotFound, "JOB_NOT_FOUND", "Không tìm thấy job: "+jobID)
		return
	}

	c.JSON(http.StatusOK, responses.JobStatusResponse{
		JobID:              status.JobID,
		Status:             status.Status,
		Progress:           status.Progress,
		Processed:          status.Processed,
		Matched:            status.Matched,
		Total:              status.Total,
		EstimatedRemaining: status.EstimatedRemaining,
		Message:            status.Message,
	})
}

// GetJobResults lấy kết quả job; format=ndjson stream từng dòng, gzip=1 nén
func (rc *ResolverController) GetJobResults(c *gin.Context) {
	jobID := c.Param("jobID")

	if c.Query("format") == "ndjson" {
		rc.streamNDJSONResults(c, jobID, c.Query("gzip") == "1")
		return
	}

	results, err := rc.resolverService.GetJobResults(jobID)
	if err != nil {
		errorJSON(c, http.StatusNotFound, "JOB_NOT_FOUND", "Không tìm thấy kết quả job: "+jobID)
		return
	}

	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success:   true,
		Message:   "Lấy kết quả thành công",
		Data:      results,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// streamNDJSONResults stream kết quả theo format NDJSON với hỗ trợ gzip
func (rc *ResolverController) streamNDJSONResults(c *gin.Context, jobID string, gzipEnabled bool) {
	resultChannel, err := rc.resolverService.GetJobResultsStream(jobID)
	if err != nil {
		errorJSON(c, http.StatusNotFound, "JOB_NOT_FOUND", "Không tìm thấy kết quả job: "+jobID)
		return
	}

	c.Header("Content-Type", "application/x-ndjson")

	var writer gin.ResponseWriter = c.Writer
	if gzipEnabled {
		c.Header("Content-Encoding", "gzip")
		gzWriter := gzip.NewWriter(c.Writer)
		defer gzWriter.Close()
		writer = &gzipResponseWriter{
			ResponseWriter: c.Writer,
			gzWriter:       gzWriter,
		}
	}
	c.Status(http.StatusOK)

	encoder := json.NewEncoder(writer)
	for result := range resultChannel {
		if err := encoder.Encode(result); err != nil {
			rc.logger.Error("Lỗi encode NDJSON", zap.Error(err))
			break
		}
		writer.Flush()
	}
}

// gzipResponseWriter wrapper cho gzip writer
type gzipResponseWriter struct {
	gin.ResponseWriter
	gzWriter *gzip.Writer
}

func (w *gzipResponseWriter) Write(data []byte) (int, error) {
	return w.gzWriter.Write(data)
}

func (w *gzipResponseWriter) WriteString(s string) (int, error) {
	return w.gzWriter.Write([]byte(s))
}

func (w *gzipResponseWriter) Flush() {
	w.gzWriter.Flush()
	w.ResponseWriter.Flush()
}

// ListOffices danh sách cơ quan thuế (?region= để lọc)
func (rc *ResolverController) ListOffices(c *gin.Context) {
	offices := rc.resolverService.ListOffices(c.Query("region"))

	c.JSON(http.StatusOK, responses.OfficeListResponse{
		TableVersion: rc.resolverService.TableVersion(),
		Total:        len(offices),
		Offices:      offices,
	})
}

// GetOffice lấy cơ quan thuế theo mã
func (rc *ResolverController) GetOffice(c *gin.Context) {
	code := c.Param("code")

	office, err := rc.resolverService.GetOffice(code)
	if err != nil {
		errorJSON(c, http.StatusNotFound, "OFFICE_NOT_FOUND", "Không tìm thấy cơ quan thuế: "+code)
		return
	}
	c.JSON(http.StatusOK, office)
}

// SearchOffices tìm cơ quan thuế theo tên (?q=&limit=)
func (rc *ResolverController) SearchOffices(c *gin.Context) {
	query := c.Query("q")

	limit := 10
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 {
		limit = l
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), config.RequestTimeout())
	defer cancel()

	hits, err := rc.resolverService.SearchOffices(ctx, query, limit)
	if err != nil {
		if errors.Is(err, services.ErrEmptyQuery) {
			errorJSON(c, http.StatusBadRequest, "MISSING_QUERY", "Thiếu tham số q")
			return
		}
		rc.logger.Error("Lỗi tìm kiếm cơ quan thuế", zap.Error(err))
		errorJSON(c, http.StatusInternalServerError, "SEARCH_ERROR", "Lỗi tìm kiếm: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, responses.OfficeSearchResponse{
		Query: query,
		Hits:  hits,
	})
}

// HealthCheck kiểm tra sức khỏe service
func (rc *ResolverController) HealthCheck(c *gin.Context) {
	uptime := time.Since(rc.resolverService.GetStartTime())

	reference := "healthy"
	if rc.resolverService.Resolver().Table().Len() == 0 {
		reference = "empty"
	}

	c.JSON(http.StatusOK, responses.HealthCheckResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    uptime.Round(time.Second).String(),
		Version:   Version,
		Services: map[string]string{
			"resolver":        "healthy",
			"reference_table": reference,
		},
	})
}

// Ready 503 khi bảng tham chiếu rỗng (chưa load được dữ liệu)
func (rc *ResolverController) Ready(c *gin.Context) {
	table := rc.resolverService.Resolver().Table()
	if table.Len() == 0 {
		errorJSON(c, http.StatusServiceUnavailable, "REFERENCE_EMPTY", "Bảng tham chiếu rỗng")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":        "ready",
		"table_version": table.Version(),
		"records":       table.Len(),
	})
}
