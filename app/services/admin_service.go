package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/ugd-resolver/app/models"
	"github.com/ugd-resolver/internal/metrics"
	"github.com/ugd-resolver/internal/reference"
	"github.com/ugd-resolver/internal/resolver"
	"go.uber.org/zap"
)

var (
	// ErrSearchDisabled Meilisearch chưa được cấu hình
	ErrSearchDisabled = errors.New("search index chưa được cấu hình")
	// ErrExportFormat format export không hỗ trợ
	ErrExportFormat = errors.New("không hỗ trợ format này")
)

// OfficeIndexer index tìm kiếm cơ quan thuế (search.OfficeSearcher)
type OfficeIndexer interface {
	BuildIndexes() error
	SeedOffices(table *resolver.Table) error
}

// ReferenceSource file bảng tham chiếu và cách đọc
type ReferenceSource struct {
	Path    string
	Options reference.Options
}

// AdminService service quản lý bảng tham chiếu, cache và index
type AdminService struct {
	resolver *resolver.Resolver
	source   ReferenceSource
	cache    ICacheService
	indexer  OfficeIndexer
	metrics  *metrics.Metrics
	logger   *zap.Logger

	startTime time.Time
	reloadMu  sync.Mutex
}

// ReloadResult kết quả reload bảng tham chiếu
type ReloadResult struct {
	PreviousVersion string
	Table           *resolver.Table
	Report          *reference.LoadReport
	Indexed         bool
	Duration        time.Duration
}

// SystemStats thống kê hệ thống
type SystemStats struct {
	Uptime      string                 `json:"uptime"`
	MemoryUsage map[string]interface{} `json:"memory_usage"`
	Goroutines  int                    `json:"goroutines"`
	Path        string                 `json:"path"`
	Version     string                 `json:"version"`
	Records     int                    `json:"records"`
	Districts   int                    `json:"districts"`
	LoadedAt    time.Time              `json:"loaded_at"`
	Cache       *CacheStats            `json:"cache,omitempty"`
}

// NewAdminService tạo mới AdminService; cache, indexer có thể nil
func NewAdminService(res *resolver.Resolver, source ReferenceSource, cache ICacheService,
	indexer OfficeIndexer, m *metrics.Metrics, logger *zap.Logger) *AdminService {
	return &AdminService{
		resolver:  res,
		source:    source,
		cache:     cache,
		indexer:   indexer,
		metrics:   m,
		logger:    logger,
		startTime: time.Now(),
	}
}

// LoadReferenceTable đọc file tham chiếu. Lỗi không làm dừng service:
// trả về bảng rỗng (mọi truy vấn resolve ra "không khớp") kèm log Warn.
func LoadReferenceTable(source ReferenceSource, logger *zap.Logger) (*resolver.Table, *reference.LoadReport) {
	loader := reference.NewLoader(source.Options, logger)
	raw, report, err := loader.Load(source.Path)
	if err != nil {
		logger.Warn("Không thể load bảng tham chiếu, dùng bảng rỗng",
			zap.String("path", source.Path),
			zap.Error(err))
		return resolver.NewTable(nil, ""), report
	}

	table := resolver.NewTable(raw, "")
	logger.Info("Bảng tham chiếu sẵn sàng",
		zap.String("path", source.Path),
		zap.String("version", table.Version()),
		zap.Int("records", table.Len()))
	return table, report
}

// ReloadTable đọc lại file tham chiếu, swap bảng, invalidate cache và index lại.
// Khi đọc lỗi thì giữ nguyên bảng cũ.
func (as *AdminService) ReloadTable(ctx context.Context) (*ReloadResult, error) {
	as.reloadMu.Lock()
	defer as.reloadMu.Unlock()

	startTime := time.Now()

	loader := reference.NewLoader(as.source.Options, as.logger)
	raw, report, err := loader.Load(as.source.Path)
	if err != nil {
		return nil, fmt.Errorf("lỗi load bảng tham chiếu %s: %w", as.source.Path, err)
	}

	table := resolver.NewTable(raw, "")
	old := as.resolver.Swap(table)
	as.metrics.SetReferenceRecords(table.Len())

	if as.cache != nil {
		if err := as.cache.InvalidateByTableVersion(ctx, table.Version()); err != nil {
			as.logger.Warn("Lỗi invalidate cache sau reload", zap.Error(err))
		}
	}

	indexed := false
	if as.indexer != nil {
		if err := as.reindex(table); err != nil {
			as.logger.Warn("Lỗi index lại Meilisearch", zap.Error(err))
		} else {
			indexed = true
		}
	}

	result := &ReloadResult{
		PreviousVersion: old.Version(),
		Table:           table,
		Report:          report,
		Indexed:         indexed,
		Duration:        time.Since(startTime),
	}

	as.logger.Info("Reload bảng tham chiếu hoàn thành",
		zap.String("previous_version", result.PreviousVersion),
		zap.String("version", table.Version()),
		zap.Int("records", table.Len()),
		zap.Int("skipped", report.Skipped),
		zap.Bool("indexed", indexed),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// RebuildIndex build lại index và seed bảng hiện tại
func (as *AdminService) RebuildIndex() error {
	if as.indexer == nil {
		return ErrSearchDisabled
	}
	if err := as.reindex(as.resolver.Table()); err != nil {
		return err
	}
	as.logger.Info("Đã build lại search index", zap.String("version", as.resolver.Table().Version()))
	return nil
}

func (as *AdminService) reindex(table *resolver.Table) error {
	if err := as.indexer.BuildIndexes(); err != nil {
		return fmt.Errorf("lỗi build Meilisearch indexes: %w", err)
	}
	if err := as.indexer.SeedOffices(table); err != nil {
		return fmt.Errorf("lỗi seed Meilisearch: %w", err)
	}
	return nil
}

// InvalidateCache xóa cache: all = toàn bộ, không thì giữ lại tableVersion
// (rỗng = phiên bản bảng hiện tại). Trả về phiên bản đã giữ lại.
func (as *AdminService) InvalidateCache(ctx context.Context, tableVersion string, all bool) (string, error) {
	if as.cache == nil {
		return "", nil
	}
	if all {
		return "", as.cache.Clear(ctx)
	}
	if tableVersion == "" {
		tableVersion = as.resolver.Table().Version()
	}
	return tableVersion, as.cache.InvalidateByTableVersion(ctx, tableVersion)
}

// GetSystemStats lấy thống kê hệ thống
func (as *AdminService) GetSystemStats(ctx context.Context) (*SystemStats, error) {
	table := as.resolver.Table()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	districts := 0
	for _, rec := range table.Records() {
		if rec.IsDistrict {
			districts++
		}
	}

	stats := &SystemStats{
		Uptime: time.Since(as.startTime).Round(time.Second).String(),
		MemoryUsage: map[string]interface{}{
			"alloc_mb":       bToMb(m.Alloc),
			"total_alloc_mb": bToMb(m.TotalAlloc),
			"sys_mb":         bToMb(m.Sys),
			"num_gc":         m.NumGC,
		},
		Goroutines: runtime.NumGoroutine(),
		Path:       as.source.Path,
		Version:    table.Version(),
		Records:    table.Len(),
		Districts:  districts,
		LoadedAt:   table.LoadedAt(),
	}

	if as.cache != nil {
		cacheStats, err := as.cache.GetStats(ctx)
		if err != nil {
			as.logger.Warn("Lỗi lấy cache stats", zap.Error(err))
		}
		stats.Cache = cacheStats
	}

	return stats, nil
}

// ExportTable export bảng tham chiếu hiện tại (json | csv)
func (as *AdminService) ExportTable(format string) ([]byte, error) {
	records := as.resolver.Table().Records()

	switch format {
	case "json":
		return json.MarshalIndent(models.TaxOffices(records), "", "  ")
	case "csv":
		return exportCSV(records)
	default:
		return nil, fmt.Errorf("%w: %s", ErrExportFormat, format)
	}
}

// exportCSV cùng định dạng với file nguồn: code;bin;name;region
func exportCSV(records []*resolver.Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = ';'

	if err := w.Write([]string{"code", "bin", "name", "region"}); err != nil {
		return nil, err
	}
	for _, rec := range records {
		raw := rec.Raw()
		if err := w.Write([]string{raw.Code, raw.BIN, raw.Name, raw.Region}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("lỗi ghi CSV: %w", err)
	}
	return buf.Bytes(), nil
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}
