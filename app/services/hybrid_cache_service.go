package services

import (
	"context"
	"time"

	"github.com/ugd-resolver/app/models"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// HybridCacheService cache hai tầng: L1 nhanh (Redis) + L2 bền (MongoDB)
type HybridCacheService struct {
	l1     ICacheService
	l2     ICacheService
	logger *zap.Logger
}

// NewHybridCacheService tạo mới hybrid cache service
func NewHybridCacheService(l1, l2 ICacheService, logger *zap.Logger) *HybridCacheService {
	return &HybridCacheService{
		l1:     l1,
		l2:     l2,
		logger: logger,
	}
}

// Get lấy kết quả từ L1 trước, L2 sau; hit ở L2 được đồng bộ lên L1
func (hcs *HybridCacheService) Get(ctx context.Context, key string) (*models.ResolutionResult, bool, error) {
	result, found, err := hcs.l1.Get(ctx, key)
	if err != nil {
		hcs.logger.Warn("Lỗi L1 cache, fallback L2", zap.Error(err))
	} else if found {
		return result, true, nil
	}

	result, found, err = hcs.l2.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if !found {
		hcs.logger.Debug("Cache miss (L1 & L2)", zap.String("key", key))
		return nil, false, nil
	}

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := hcs.l1.Set(bgCtx, key, result); err != nil {
			hcs.logger.Warn("Lỗi sync L2->L1", zap.Error(err), zap.String("key", key))
		}
	}()

	hcs.logger.Debug("L2 cache hit", zap.String("key", key))
	return result, true, nil
}

// Set lưu vào cả hai tầng song song
func (hcs *HybridCacheService) Set(ctx context.Context, key string, result *models.ResolutionResult) error {
	return hcs.both(func(c ICacheService) error { return c.Set(ctx, key, result) })
}

// Delete xóa key ở cả hai tầng
func (hcs *HybridCacheService) Delete(ctx context.Context, key string) error {
	return hcs.both(func(c ICacheService) error { return c.Delete(ctx, key) })
}

// Clear xóa toàn bộ cả hai tầng
func (hcs *HybridCacheService) Clear(ctx context.Context) error {
	if err := hcs.both(func(c ICacheService) error { return c.Clear(ctx) }); err != nil {
		return err
	}
	hcs.logger.Info("Cleared hybrid cache")
	return nil
}

// InvalidateByTableVersion invalidate cả hai tầng
func (hcs *HybridCacheService) InvalidateByTableVersion(ctx context.Context, tableVersion string) error {
	if err := hcs.both(func(c ICacheService) error { return c.InvalidateByTableVersion(ctx, tableVersion) }); err != nil {
		return err
	}
	hcs.logger.Info("Invalidated hybrid cache", zap.String("table_version", tableVersion))
	return nil
}

// GetStats: hits/miss cộng dồn, số item lấy theo L2 (L1 là tập con)
func (hcs *HybridCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	l1Stats, l1Err := hcs.l1.GetStats(ctx)
	l2Stats, l2Err := hcs.l2.GetStats(ctx)

	switch {
	case l1Err != nil && l2Err != nil:
		return nil, multierr.Combine(l1Err, l2Err)
	case l1Err != nil:
		return l2Stats, nil
	case l2Err != nil:
		return l1Stats, nil
	}

	hits := l1Stats.TotalHits + l2Stats.TotalHits
	// Miss ở L1 rồi hit ở L2 không tính là miss
	misses := l2Stats.TotalMiss
	return &CacheStats{
		HitRate:    hitRate(hits, misses),
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: l2Stats.TotalItems,
	}, nil
}

// Exists kiểm tra L1 trước, L2 sau
func (hcs *HybridCacheService) Exists(ctx context.Context, key string) (bool, error) {
	exists, err := hcs.l1.Exists(ctx, key)
	if err != nil {
		hcs.logger.Warn("Lỗi check L1 exists, fallback L2", zap.Error(err))
	} else if exists {
		return true, nil
	}
	return hcs.l2.Exists(ctx, key)
}

// GetTTL lấy TTL của key (từ L1)
func (hcs *HybridCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	return hcs.l1.GetTTL(ctx, key)
}

// Close đóng kết nối cả hai tầng
func (hcs *HybridCacheService) Close() error {
	return hcs.both(func(c ICacheService) error { return c.Close() })
}

// both chạy op trên hai tầng song song và gộp lỗi
func (hcs *HybridCacheService) both(op func(ICacheService) error) error {
	errCh := make(chan error, 2)
	for _, c := range []ICacheService{hcs.l1, hcs.l2} {
		go func(c ICacheService) {
			errCh <- op(c)
		}(c)
	}

	var err error
	for i := 0; i < 2; i++ {
		err = multierr.Append(err, <-errCh)
	}
	if err != nil {
		hcs.logger.Warn("Lỗi hybrid cache", zap.Error(err))
	}
	return err
}
