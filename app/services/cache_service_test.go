package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ugd-resolver/app/models"
)

func TestCacheService_GetSet(t *testing.T) {
	ctx := context.Background()
	cs := NewCacheService(time.Hour)

	_, found, err := cs.Get(ctx, "v1:a")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, cs.Set(ctx, "v1:a", &models.ResolutionResult{Status: models.StatusMatched, TableVersion: "v1"}))

	got, found, err := cs.Get(ctx, "v1:a")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, models.StatusMatched, got.Status)

	exists, _ := cs.Exists(ctx, "v1:a")
	assert.True(t, exists)

	ttl, _ := cs.GetTTL(ctx, "v1:a")
	assert.Greater(t, ttl, 59*time.Minute)

	stats, err := cs.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalHits)
	assert.Equal(t, int64(1), stats.TotalMiss)
	assert.Equal(t, int64(1), stats.TotalItems)
	assert.InDelta(t, 0.5, stats.HitRate, 1e-9)
}

func TestCacheService_Expired(t *testing.T) {
	ctx := context.Background()
	cs := NewCacheService(time.Millisecond)

	require.NoError(t, cs.Set(ctx, "k", &models.ResolutionResult{}))
	time.Sleep(5 * time.Millisecond)

	_, found, _ := cs.Get(ctx, "k")
	assert.False(t, found)

	cs.CleanupExpired()
	assert.Equal(t, 0, cs.Size())
}

func TestCacheService_InvalidateByTableVersion(t *testing.T) {
	ctx := context.Background()
	cs := NewCacheService(0)

	require.NoError(t, cs.Set(ctx, "v1:a", &models.ResolutionResult{TableVersion: "v1"}))
	require.NoError(t, cs.Set(ctx, "v2:a", &models.ResolutionResult{TableVersion: "v2"}))

	require.NoError(t, cs.InvalidateByTableVersion(ctx, "v2"))

	_, found, _ := cs.Get(ctx, "v1:a")
	assert.False(t, found)
	_, found, _ = cs.Get(ctx, "v2:a")
	assert.True(t, found)
}

func TestCacheService_DeleteClear(t *testing.T) {
	ctx := context.Background()
	cs := NewCacheService(time.Hour)

	require.NoError(t, cs.Set(ctx, "a", &models.ResolutionResult{}))
	require.NoError(t, cs.Set(ctx, "b", &models.ResolutionResult{}))

	require.NoError(t, cs.Delete(ctx, "a"))
	assert.Equal(t, 1, cs.Size())

	require.NoError(t, cs.Clear(ctx))
	assert.Equal(t, 0, cs.Size())
	assert.NoError(t, cs.Close())
}

func TestHybridCacheService_L2HitSyncsToL1(t *testing.T) {
	ctx := context.Background()
	l1, l2 := NewCacheService(time.Hour), NewCacheService(time.Hour)
	hybrid := NewHybridCacheService(l1, l2, zapNop())

	require.NoError(t, l2.Set(ctx, "v1:a", &models.ResolutionResult{Status: models.StatusUnmatched}))

	got, found, err := hybrid.Get(ctx, "v1:a")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, models.StatusUnmatched, got.Status)

	assert.Eventually(t, func() bool {
		ok, _ := l1.Exists(ctx, "v1:a")
		return ok
	}, time.Second, 5*time.Millisecond)
}

func TestHybridCacheService_SetAndInvalidateBothTiers(t *testing.T) {
	ctx := context.Background()
	l1, l2 := NewCacheService(time.Hour), NewCacheService(time.Hour)
	hybrid := NewHybridCacheService(l1, l2, zapNop())

	require.NoError(t, hybrid.Set(ctx, "v1:a", &models.ResolutionResult{TableVersion: "v1"}))
	assert.Equal(t, 1, l1.Size())
	assert.Equal(t, 1, l2.Size())

	exists, err := hybrid.Exists(ctx, "v1:a")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, hybrid.InvalidateByTableVersion(ctx, "v2"))
	assert.Equal(t, 0, l1.Size())
	assert.Equal(t, 0, l2.Size())

	stats, err := hybrid.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalItems)
}
