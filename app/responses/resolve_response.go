package responses

import (
	"github.com/ugd-resolver/app/models"
	"github.com/ugd-resolver/internal/search"
)

// ResolveResponse response resolve một địa danh
type ResolveResponse struct {
	TableVersion     string                   `json:"table_version"`      // Phiên bản bảng tham chiếu
	Result           *models.ResolutionResult `json:"result"`             // Kết quả resolve
	ProcessingTimeMs int64                    `json:"processing_time_ms"` // Thời gian xử lý (ms)
	CacheHit         bool                     `json:"cache_hit"`          // Có hit cache không
}

// BatchResolveResponse response tạo batch job
type BatchResolveResponse struct {
	JobID            string `json:"job_id"`            // ID của job
	EstimatedSeconds int    `json:"estimated_seconds"` // Thời gian ước tính (giây)
	TotalLocalities  int    `json:"total_localities"`  // Tổng số địa danh
	Message          string `json:"message"`
}

// JobStatusResponse response trạng thái job
type JobStatusResponse struct {
	JobID              string  `json:"job_id"`
	Status             string  `json:"status"`
	Progress           float64 `json:"progress"` // 0.0 - 1.0
	Processed          int     `json:"processed"`
	Matched            int     `json:"matched"`
	Total              int     `json:"total"`
	EstimatedRemaining int     `json:"estimated_remaining"` // giây
	Message            string  `json:"message"`
}

// Trạng thái job
const (
	JobStatusPending = "pending"
	JobStatusRunning = "running"
	JobStatusDone    = "done"
	JobStatusFailed  = "failed"
)

// OfficeListResponse danh sách cơ quan thuế
type OfficeListResponse struct {
	TableVersion string             `json:"table_version"`
	Total        int                `json:"total"`
	Offices      []models.TaxOffice `json:"offices"`
}

// OfficeSearchResponse kết quả tìm kiếm cơ quan thuế
type OfficeSearchResponse struct {
	Query string             `json:"query"`
	Hits  []search.OfficeHit `json:"hits"`
}

// ReloadResponse kết quả reload bảng tham chiếu
type ReloadResponse struct {
	PreviousVersion  string   `json:"previous_version"`
	TableVersion     string   `json:"table_version"`
	Records          int      `json:"records"`
	Skipped          int      `json:"skipped"`
	InvalidBINs      []string `json:"invalid_bins,omitempty"`
	Indexed          bool     `json:"indexed"`
	ProcessingTimeMs int64    `json:"processing_time_ms"`
}

// ErrorResponse response lỗi
type ErrorResponse struct {
	Error     string      `json:"error"`             // Mã lỗi
	Message   string      `json:"message"`           // Thông báo lỗi
	Details   interface{} `json:"details,omitempty"` // Chi tiết lỗi
	Timestamp string      `json:"timestamp"`         // Thời gian xảy ra lỗi
}

// SuccessResponse response thành công
type SuccessResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// HealthCheckResponse response kiểm tra sức khỏe
type HealthCheckResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Version   string            `json:"version"`
	Services  map[string]string `json:"services"`
}

// SystemStatsResponse response thống kê hệ thống
type SystemStatsResponse struct {
	CacheHitRate float64       `json:"cache_hit_rate"`
	TotalCached  int64         `json:"total_cached"`
	SystemInfo   SystemInfo    `json:"system_info"`
	Reference    ReferenceInfo `json:"reference"`
	Jobs         int           `json:"jobs"`
}

// SystemInfo thông tin hệ thống
type SystemInfo struct {
	Version     string                 `json:"version"`
	Environment string                 `json:"environment"`
	Uptime      string                 `json:"uptime"`
	MemoryUsage map[string]interface{} `json:"memory_usage"`
	Goroutines  int                    `json:"goroutines"`
}

// ReferenceInfo thông tin bảng tham chiếu đang dùng
type ReferenceInfo struct {
	Path      string `json:"path"`
	Version   string `json:"version"`
	Records   int    `json:"records"`
	Districts int    `json:"districts"`
	LoadedAt  string `json:"loaded_at"`
}
