package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ugd-resolver/app/models"
	"github.com/ugd-resolver/app/requests"
	"github.com/ugd-resolver/app/responses"
	"github.com/ugd-resolver/internal/suggest"
	"go.uber.org/zap"
)

func newTestService(cache ICacheService) *ResolverService {
	return NewResolverService(newTestResolver(), cache, suggest.NewSuggester(0, 3), nil, newTestMetrics(), zap.NewNop())
}

func TestResolverService_Resolve(t *testing.T) {
	rs := newTestService(nil)
	ctx := context.Background()

	tests := []struct {
		name     string
		locality string
		status   string
		code     string
	}{
		{"city office", "г.Алматы", models.StatusMatched, "6001"},
		{"district with region", "Есильский район, Акмолинская область", models.StatusMatched, "0301"},
		{"unknown places", "Неизвестный, Неведомый", models.StatusUnmatched, ""},
		{"only separators", " , ; ", models.StatusEmpty, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := rs.Resolve(ctx, tt.locality, requests.ResolveOptions{})
			require.NoError(t, err)
			assert.Equal(t, tt.status, result.Status)
			assert.Equal(t, tt.code, result.OfficeCode())
			assert.Equal(t, "v1", result.TableVersion)
		})
	}
}

func TestResolverService_ResolveNormalizesInput(t *testing.T) {
	rs := newTestService(nil)

	result, err := rs.Resolve(context.Background(), "  г.Алматы  ", requests.ResolveOptions{})
	require.NoError(t, err)
	assert.Equal(t, "г.Алматы", result.Locality)
	assert.Equal(t, "г алматы", result.Normalized)
	assert.Contains(t, result.Fingerprint, "sha256:")
}

func TestResolverService_ResolveUsesCache(t *testing.T) {
	cache := NewCacheService(time.Hour)
	rs := newTestService(cache)
	ctx := context.Background()
	opts := requests.ResolveOptions{UseCache: true}

	first, err := rs.Resolve(ctx, "г.Алматы", opts)
	require.NoError(t, err)
	assert.False(t, first.CacheHit)
	assert.Equal(t, 1, cache.Size())

	second, err := rs.Resolve(ctx, "Г.АЛМАТЫ", opts)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, "6001", second.OfficeCode())
}

func TestResolverService_CacheKeepsPunctuationApart(t *testing.T) {
	cache := NewCacheService(time.Hour)
	rs := newTestService(cache)
	ctx := context.Background()
	opts := requests.ResolveOptions{UseCache: true}

	withComma, err := rs.Resolve(ctx, "Есильский район, Акмолинская область", opts)
	require.NoError(t, err)
	assert.Equal(t, models.StatusMatched, withComma.Status)
	assert.Equal(t, "0301", withComma.OfficeCode())

	uncached, err := newTestService(nil).Resolve(ctx, "Есильский район Акмолинская область", requests.ResolveOptions{})
	require.NoError(t, err)

	noComma, err := rs.Resolve(ctx, "Есильский район Акмолинская область", opts)
	require.NoError(t, err)
	assert.False(t, noComma.CacheHit)
	assert.Equal(t, uncached.Status, noComma.Status)
	assert.Equal(t, uncached.OfficeCode(), noComma.OfficeCode())
	assert.NotEqual(t, withComma.Fingerprint, noComma.Fingerprint)
	assert.Equal(t, withComma.Normalized, noComma.Normalized)
	assert.Equal(t, 2, cache.Size())
}

func TestResolverService_ExplainSkipsCache(t *testing.T) {
	cache := NewCacheService(time.Hour)
	rs := newTestService(cache)

	result, err := rs.Resolve(context.Background(), "г.Алматы", requests.ResolveOptions{UseCache: true, Explain: true})
	require.NoError(t, err)
	require.NotNil(t, result.Explain)
	assert.NotEmpty(t, result.Explain.Candidates)
	assert.Equal(t, 0, cache.Size())
}

func TestResolverService_Suggestions(t *testing.T) {
	rs := newTestService(nil)
	ctx := context.Background()

	result, err := rs.Resolve(ctx, "Абаский, Неведомый", requests.ResolveOptions{Suggest: true})
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnmatched, result.Status)
	require.NotEmpty(t, result.Suggestions)
	assert.Equal(t, "4810", result.Suggestions[0].Code)

	withoutFlag, err := rs.Resolve(ctx, "Абаский, Неведомый", requests.ResolveOptions{})
	require.NoError(t, err)
	assert.Empty(t, withoutFlag.Suggestions)
}

func TestResolverService_ResolveCancelled(t *testing.T) {
	rs := newTestService(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := rs.Resolve(ctx, "г.Алматы", requests.ResolveOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolverService_ProcessBatchJob(t *testing.T) {
	rs := newTestService(nil)
	rs.SetBatchWorkers(2)

	localities := []string{"г.Алматы", "Неизвестный, Неведомый", ""}
	rs.ProcessBatchJob(context.Background(), "job-1", localities, requests.ResolveOptions{})

	status, err := rs.GetJobStatus("job-1")
	require.NoError(t, err)
	assert.Equal(t, responses.JobStatusDone, status.Status)
	assert.Equal(t, 3, status.Processed)
	assert.Equal(t, 1, status.Matched)
	assert.InDelta(t, 1.0, status.Progress, 1e-9)

	results, err := rs.GetJobResults("job-1")
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "6001", results[0].OfficeCode())
	assert.Equal(t, models.StatusUnmatched, results[1].Status)
	assert.Equal(t, models.StatusEmpty, results[2].Status)

	stream, err := rs.GetJobResultsStream("job-1")
	require.NoError(t, err)
	var streamed []*models.ResolutionResult
	for r := range stream {
		streamed = append(streamed, r)
	}
	assert.Equal(t, results, streamed)
}

func TestResolverService_ProcessBatchJobCancelled(t *testing.T) {
	rs := newTestService(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rs.ProcessBatchJob(ctx, "job-cancelled", []string{"г.Алматы"}, requests.ResolveOptions{})

	status, err := rs.GetJobStatus("job-cancelled")
	require.NoError(t, err)
	assert.Equal(t, responses.JobStatusFailed, status.Status)

	_, err = rs.GetJobResults("job-cancelled")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestResolverService_SubmitBatchJob(t *testing.T) {
	rs := newTestService(nil)

	job := rs.SubmitBatchJob([]string{"г.Алматы", "г.Астана"}, requests.ResolveOptions{})
	assert.Equal(t, responses.JobStatusPending, job.Status)
	assert.Equal(t, 2, job.Total)

	assert.Eventually(t, func() bool {
		status, err := rs.GetJobStatus(job.JobID)
		return err == nil && status.Status == responses.JobStatusDone
	}, 2*time.Second, 5*time.Millisecond)

	results, err := rs.GetJobResults(job.JobID)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestResolverService_UnknownJob(t *testing.T) {
	rs := newTestService(nil)

	_, err := rs.GetJobStatus("missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
	_, err = rs.GetJobResultsStream("missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestResolverService_Offices(t *testing.T) {
	rs := newTestService(nil)

	assert.Len(t, rs.ListOffices(""), 4)

	akmola := rs.ListOffices("Акмолинская область")
	require.Len(t, akmola, 1)
	assert.Equal(t, "0301", akmola[0].Code)

	assert.Empty(t, rs.ListOffices("Мангистауская область"))

	office, err := rs.GetOffice("6001")
	require.NoError(t, err)
	assert.Equal(t, "ДГД по г.Алматы", office.Name)

	_, err = rs.GetOffice("nope")
	assert.ErrorIs(t, err, ErrOfficeNotFound)
}

func TestResolverService_SearchOfficesFallsBackToMemory(t *testing.T) {
	rs := NewResolverService(newTestResolver(), nil, nil, failingSearcher{}, newTestMetrics(), zap.NewNop())
	ctx := context.Background()

	hits, err := rs.SearchOffices(ctx, "алматы", 5)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "6001", hits[0].Code)

	_, err = rs.SearchOffices(ctx, "", 5)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestResolverService_GetStats(t *testing.T) {
	rs := newTestService(nil)

	stats := rs.GetStats()
	assert.Equal(t, "v1", stats["table_version"])
	assert.Equal(t, 4, stats["records"])
	assert.Equal(t, 1, rs.EstimateBatchProcessingTime(10))
}
