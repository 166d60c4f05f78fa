package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/ugd-resolver/app/models"
	"github.com/ugd-resolver/app/requests"
	"github.com/ugd-resolver/app/responses"
	"github.com/ugd-resolver/helpers/utils"
	"github.com/ugd-resolver/internal/metrics"
	"github.com/ugd-resolver/internal/normalizer"
	"github.com/ugd-resolver/internal/resolver"
	"github.com/ugd-resolver/internal/search"
	"github.com/ugd-resolver/internal/suggest"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"
)

var (
	// ErrEmptyQuery query tìm kiếm rỗng
	ErrEmptyQuery = search.ErrEmptyQuery
	// ErrJobNotFound job không tồn tại hoặc chưa có kết quả
	ErrJobNotFound = errors.New("job không tồn tại")
	// ErrOfficeNotFound không có cơ quan thuế với mã này
	ErrOfficeNotFound = errors.New("không tìm thấy cơ quan thuế")
)

// ResolverService service resolve địa danh → cơ quan thuế (UGD/DGD)
type ResolverService struct {
	resolver  *resolver.Resolver
	cache     ICacheService
	suggester *suggest.Suggester
	searcher  search.Searcher
	fallback  search.Searcher
	metrics   *metrics.Metrics
	logger    *zap.Logger
	startTime time.Time
	workers   int

	mu         sync.RWMutex
	jobs       map[string]*JobStatus
	jobResults map[string][]*models.ResolutionResult
}

// JobStatus trạng thái của batch job
type JobStatus struct {
	JobID              string    `json:"job_id"`
	Status             string    `json:"status"`
	Progress           float64   `json:"progress"`
	Processed          int       `json:"processed"`
	Matched            int       `json:"matched"`
	Total              int       `json:"total"`
	EstimatedRemaining int       `json:"estimated_remaining"`
	Message            string    `json:"message"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewResolverService tạo mới ResolverService.
// cache, suggester có thể nil (tắt cache / gợi ý); searcher nil dùng tìm kiếm trong bộ nhớ.
func NewResolverService(res *resolver.Resolver, cache ICacheService, suggester *suggest.Suggester,
	searcher search.Searcher, m *metrics.Metrics, logger *zap.Logger) *ResolverService {
	fallback := search.NewMemorySearcher(0)
	if searcher == nil {
		searcher = fallback
	}
	return &ResolverService{
		resolver:   res,
		cache:      cache,
		suggester:  suggester,
		searcher:   searcher,
		fallback:   fallback,
		metrics:    m,
		logger:     logger,
		startTime:  time.Now(),
		workers:    4,
		jobs:       make(map[string]*JobStatus),
		jobResults: make(map[string][]*models.ResolutionResult),
	}
}

// SetBatchWorkers số goroutine xử lý một batch job
func (rs *ResolverService) SetBatchWorkers(n int) {
	if n > 0 {
		rs.workers = n
	}
}

// Resolver resolver đang dùng (admin dùng để swap bảng)
func (rs *ResolverService) Resolver() *resolver.Resolver {
	return rs.resolver
}

// TableVersion phiên bản bảng tham chiếu hiện tại
func (rs *ResolverService) TableVersion() string {
	return rs.resolver.Table().Version()
}

// Resolve resolve một địa danh. "Không khớp" là kết quả bình thường (Status unmatched/empty),
// lỗi chỉ trả về khi ctx bị hủy.
func (rs *ResolverService) Resolve(ctx context.Context, locality string, options requests.ResolveOptions) (*models.ResolutionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	startTime := time.Now()

	locality = strings.TrimSpace(norm.NFC.String(locality))
	normalized := normalizer.Normalize(locality)
	// Parser tách phần theo dấu phẩy/chấm nên key giữ nguyên dấu câu, chỉ hạ chữ thường
	fingerprint := utils.Fingerprint(strings.ToLower(locality))

	useCache := options.UseCache && !options.Explain && rs.cache != nil
	if useCache {
		key := utils.CacheKey(rs.TableVersion(), fingerprint)
		cached, found, err := rs.cache.Get(ctx, key)
		if err != nil {
			rs.logger.Warn("Lỗi đọc cache", zap.Error(err), zap.String("key", key))
		}
		rs.metrics.CacheLookup(found)
		if found {
			hit := *cached
			hit.CacheHit = true
			rs.metrics.ObserveResolve(hit.Status, time.Since(startTime))
			return &hit, nil
		}
	}

	table := rs.resolver.Table()
	resolution := rs.resolver.Explain(locality)

	result := &models.ResolutionResult{
		Locality:     locality,
		Normalized:   normalized,
		Fingerprint:  fingerprint,
		TableVersion: resolution.TableVersion,
		Parsed:       resolution.Parsed,
	}

	switch {
	case resolution.Parsed.Empty():
		result.Status = models.StatusEmpty
	case resolution.Selected != nil:
		result.Status = models.StatusMatched
		result.Office = models.NewTaxOffice(resolution.Selected.Record)
		result.Score = resolution.Selected.Score
	default:
		result.Status = models.StatusUnmatched
	}

	if result.Status == models.StatusUnmatched && options.Suggest && rs.suggester != nil {
		result.Suggestions = rs.suggester.Suggest(table.Records(), resolution.Parsed.AllTerms)
	}

	if useCache {
		key := utils.CacheKey(result.TableVersion, fingerprint)
		if err := rs.cache.Set(ctx, key, result); err != nil {
			rs.logger.Warn("Lỗi ghi cache", zap.Error(err), zap.String("key", key))
		}
	}

	if options.Explain {
		result.Explain = resolution
	}

	rs.metrics.ObserveResolve(result.Status, time.Since(startTime))
	return result, nil
}

// EstimateBatchProcessingTime ước tính thời gian xử lý (giây), tối thiểu 1
func (rs *ResolverService) EstimateBatchProcessingTime(count int) int {
	// ~2ms mỗi địa danh trên bảng ~200 bản ghi
	seconds := count * 2 / 1000 / rs.workers
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}

// SubmitBatchJob đăng ký job (pending) rồi xử lý ở background
func (rs *ResolverService) SubmitBatchJob(localities []string, options requests.ResolveOptions) *JobStatus {
	jobID := utils.GenerateJobID()

	now := time.Now()
	job := &JobStatus{
		JobID:     jobID,
		Status:    responses.JobStatusPending,
		Total:     len(localities),
		Message:   "Job đang chờ xử lý",
		CreatedAt: now,
		UpdatedAt: now,
	}

	snapshot := *job

	rs.mu.Lock()
	rs.jobs[jobID] = job
	rs.mu.Unlock()

	go rs.ProcessBatchJob(context.Background(), jobID, localities, options)
	return &snapshot
}

// ProcessBatchJob resolve toàn bộ danh sách với rs.workers goroutine, giữ thứ tự input
func (rs *ResolverService) ProcessBatchJob(ctx context.Context, jobID string, localities []string, options requests.ResolveOptions) {
	startTime := time.Now()

	rs.mu.Lock()
	job, exists := rs.jobs[jobID]
	if !exists {
		job = &JobStatus{JobID: jobID, Total: len(localities), CreatedAt: startTime}
		rs.jobs[jobID] = job
	}
	job.Status = responses.JobStatusRunning
	job.Message = "Đang xử lý..."
	job.UpdatedAt = startTime
	rs.mu.Unlock()

	results := make([]*models.ResolutionResult, len(localities))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rs.workers)

	for i, locality := range localities {
		i, locality := i, locality
		g.Go(func() error {
			result, err := rs.Resolve(gctx, locality, options)
			if err != nil {
				return err
			}
			results[i] = result
			rs.advanceJob(jobID, result.Matched(), startTime)
			return nil
		})
	}

	err := g.Wait()

	rs.mu.Lock()
	job.UpdatedAt = time.Now()
	job.EstimatedRemaining = 0
	if err != nil {
		job.Status = responses.JobStatusFailed
		job.Message = "Job bị hủy: " + err.Error()
	} else {
		job.Status = responses.JobStatusDone
		job.Message = "Hoàn thành xử lý"
		rs.jobResults[jobID] = results
	}
	status := job.Status
	rs.mu.Unlock()

	rs.metrics.BatchJobFinished(status)
	rs.logger.Info("Batch job completed",
		zap.String("job_id", jobID),
		zap.String("status", status),
		zap.Int("total", len(localities)),
		zap.Duration("duration", time.Since(startTime)))
}

func (rs *ResolverService) advanceJob(jobID string, matched bool, startTime time.Time) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	job, exists := rs.jobs[jobID]
	if !exists {
		return
	}
	job.Processed++
	if matched {
		job.Matched++
	}
	job.Progress = float64(job.Processed) / float64(job.Total)
	job.UpdatedAt = time.Now()

	perItem := time.Since(startTime) / time.Duration(job.Processed)
	job.EstimatedRemaining = int((perItem * time.Duration(job.Total-job.Processed)).Seconds())
}

// GetJobStatus lấy trạng thái job (bản sao)
func (rs *ResolverService) GetJobStatus(jobID string) (*JobStatus, error) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	job, exists := rs.jobs[jobID]
	if !exists {
		return nil, ErrJobNotFound
	}

	snapshot := *job
	return &snapshot, nil
}

// GetJobResults lấy kết quả job đã hoàn thành
func (rs *ResolverService) GetJobResults(jobID string) ([]*models.ResolutionResult, error) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	results, exists := rs.jobResults[jobID]
	if !exists {
		return nil, ErrJobNotFound
	}
	return results, nil
}

// GetJobResultsStream lấy kết quả job dưới dạng channel để stream
func (rs *ResolverService) GetJobResultsStream(jobID string) (<-chan *models.ResolutionResult, error) {
	results, err := rs.GetJobResults(jobID)
	if err != nil {
		return nil, err
	}

	resultChannel := make(chan *models.ResolutionResult, 100)

	go func() {
		defer close(resultChannel)
		for _, result := range results {
			resultChannel <- result
		}
	}()

	return resultChannel, nil
}

// JobCount số job đang được theo dõi
func (rs *ResolverService) JobCount() int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	return len(rs.jobs)
}

// ListOffices danh sách cơ quan thuế; region khác rỗng thì lọc theo vùng đã chuẩn hóa
func (rs *ResolverService) ListOffices(region string) []models.TaxOffice {
	records := rs.resolver.Table().Records()

	wanted := normalizer.NormalizeRegionName(region)
	if wanted == "" {
		return models.TaxOffices(records)
	}

	var filtered []*resolver.Record
	for _, rec := range records {
		if rec.NormalizedRegion != "" && strings.Contains(rec.NormalizedRegion, wanted) {
			filtered = append(filtered, rec)
		}
	}
	return models.TaxOffices(filtered)
}

// GetOffice lấy cơ quan thuế theo mã
func (rs *ResolverService) GetOffice(code string) (*models.TaxOffice, error) {
	rec, ok := rs.resolver.Table().ByCode(code)
	if !ok {
		return nil, ErrOfficeNotFound
	}
	return models.NewTaxOffice(rec), nil
}

// SearchOffices tìm cơ quan thuế theo tên; lỗi Meilisearch thì fallback quét bộ nhớ
func (rs *ResolverService) SearchOffices(ctx context.Context, query string, limit int) ([]search.OfficeHit, error) {
	table := rs.resolver.Table()

	hits, err := rs.searcher.Search(ctx, table, query, limit)
	if err == nil || errors.Is(err, ErrEmptyQuery) || rs.searcher == rs.fallback {
		return hits, err
	}

	rs.logger.Warn("Lỗi tìm kiếm, dùng tìm kiếm trong bộ nhớ", zap.Error(err))
	return rs.fallback.Search(ctx, table, query, limit)
}

// GetStartTime thời điểm service khởi động
func (rs *ResolverService) GetStartTime() time.Time {
	return rs.startTime
}

// GetStats thống kê ngắn của service
func (rs *ResolverService) GetStats() map[string]interface{} {
	table := rs.resolver.Table()
	uptime := time.Since(rs.startTime)

	return map[string]interface{}{
		"uptime_seconds": int64(uptime.Seconds()),
		"start_time":     rs.startTime.Format(time.RFC3339),
		"table_version":  table.Version(),
		"records":        table.Len(),
		"jobs":           rs.JobCount(),
		"status":         "running",
	}
}
