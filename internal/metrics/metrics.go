// Package metrics Prometheus metrics của dịch vụ resolve cơ quan thuế
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Kết quả resolve
const (
	OutcomeMatched   = "matched"
	OutcomeUnmatched = "unmatched"
	OutcomeEmpty     = "empty"
)

// Metrics tập metrics của service
type Metrics struct {
	ResolveTotal     *prometheus.CounterVec
	ResolveDuration  prometheus.Histogram
	ReferenceRecords prometheus.Gauge
	CacheRequests    *prometheus.CounterVec
	BatchJobs        *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

var (
	defaultMetrics *Metrics
	defaultOnce    sync.Once
)

// Default metrics đăng ký vào registry mặc định (chỉ tạo một lần)
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = New(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
	})
	return defaultMetrics
}

// New tạo metrics trên registry cho trước (test dùng prometheus.NewRegistry())
func New(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ResolveTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ugd_resolve_total",
			Help: "Total locality resolutions by outcome (matched, unmatched, empty)",
		}, []string{"outcome"}),
		ResolveDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ugd_resolve_duration_seconds",
			Help:    "Time to resolve a single locality string",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
		ReferenceRecords: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ugd_reference_records",
			Help: "Number of tax-office records in the active reference table",
		}),
		CacheRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ugd_cache_requests_total",
			Help: "Resolution cache lookups by result (hit, miss)",
		}, []string{"result"}),
		BatchJobs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ugd_batch_jobs_total",
			Help: "Batch resolution jobs by final status",
		}, []string{"status"}),
		gatherer: gatherer,
	}
}

// ObserveResolve ghi nhận một lần resolve
func (m *Metrics) ObserveResolve(outcome string, d time.Duration) {
	m.ResolveTotal.WithLabelValues(outcome).Inc()
	m.ResolveDuration.Observe(d.Seconds())
}

// SetReferenceRecords cập nhật số bản ghi của bảng đang dùng
func (m *Metrics) SetReferenceRecords(n int) {
	m.ReferenceRecords.Set(float64(n))
}

// CacheLookup ghi nhận cache hit/miss
func (m *Metrics) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheRequests.WithLabelValues(result).Inc()
}

// BatchJobFinished ghi nhận job batch kết thúc
func (m *Metrics) BatchJobFinished(status string) {
	m.BatchJobs.WithLabelValues(status).Inc()
}

// Handler HTTP handler cho /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
