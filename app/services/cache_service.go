package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ugd-resolver/app/models"
)

type memoryEntry struct {
	result   *models.ResolutionResult
	storedAt time.Time
}

// CacheService cache kết quả resolve trong bộ nhớ (dùng khi không có Redis/MongoDB)
type CacheService struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCacheService tạo mới CacheService; ttl <= 0 là không hết hạn
func NewCacheService(ttl time.Duration) *CacheService {
	return &CacheService{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
	}
}

func (cs *CacheService) expired(e memoryEntry, now time.Time) bool {
	return cs.ttl > 0 && now.Sub(e.storedAt) > cs.ttl
}

func (cs *CacheService) lookup(key string) (memoryEntry, bool) {
	cs.mu.RLock()
	e, ok := cs.entries[key]
	cs.mu.RUnlock()

	if ok && cs.expired(e, time.Now()) {
		cs.mu.Lock()
		if cur, still := cs.entries[key]; still && cs.expired(cur, time.Now()) {
			delete(cs.entries, key)
		}
		cs.mu.Unlock()
		return memoryEntry{}, false
	}
	return e, ok
}

// Get lấy kết quả từ cache
func (cs *CacheService) Get(ctx context.Context, key string) (*models.ResolutionResult, bool, error) {
	e, ok := cs.lookup(key)
	if !ok {
		cs.misses.Add(1)
		return nil, false, nil
	}
	cs.hits.Add(1)
	return e.result, true, nil
}

// Set lưu kết quả vào cache
func (cs *CacheService) Set(ctx context.Context, key string, result *models.ResolutionResult) error {
	cs.mu.Lock()
	cs.entries[key] = memoryEntry{result: result, storedAt: time.Now()}
	cs.mu.Unlock()
	return nil
}

// Delete xóa item khỏi cache
func (cs *CacheService) Delete(ctx context.Context, key string) error {
	cs.mu.Lock()
	delete(cs.entries, key)
	cs.mu.Unlock()
	return nil
}

// Clear xóa toàn bộ cache và reset bộ đếm
func (cs *CacheService) Clear(ctx context.Context) error {
	cs.mu.Lock()
	cs.entries = make(map[string]memoryEntry)
	cs.mu.Unlock()

	cs.hits.Store(0)
	cs.misses.Store(0)
	return nil
}

// InvalidateByTableVersion xóa các kết quả của phiên bản bảng khác
func (cs *CacheService) InvalidateByTableVersion(ctx context.Context, tableVersion string) error {
	cs.removeIf(func(e memoryEntry) bool {
		return e.result == nil || e.result.TableVersion != tableVersion
	})
	return nil
}

// CleanupExpired xóa các item hết hạn
func (cs *CacheService) CleanupExpired() {
	now := time.Now()
	cs.removeIf(func(e memoryEntry) bool {
		return cs.expired(e, now)
	})
}

func (cs *CacheService) removeIf(drop func(memoryEntry) bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	for key, e := range cs.entries {
		if drop(e) {
			delete(cs.entries, key)
		}
	}
}

// Size số item đang lưu (kể cả item hết hạn chưa dọn)
func (cs *CacheService) Size() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	return len(cs.entries)
}

// GetStats lấy thống kê cache
func (cs *CacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	hits, misses := cs.hits.Load(), cs.misses.Load()
	return &CacheStats{
		HitRate:    hitRate(hits, misses),
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: int64(cs.Size()),
	}, nil
}

// Exists kiểm tra key có tồn tại và còn hạn không
func (cs *CacheService) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := cs.lookup(key)
	return ok, nil
}

// GetTTL TTL còn lại của key; 0 khi không có key hoặc không hết hạn
func (cs *CacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	e, ok := cs.lookup(key)
	if !ok || cs.ttl <= 0 {
		return 0, nil
	}

	if remaining := cs.ttl - time.Since(e.storedAt); remaining > 0 {
		return remaining, nil
	}
	return 0, nil
}

// StartCleanupWorker dọn item hết hạn theo chu kỳ, dừng khi ctx bị hủy
func (cs *CacheService) StartCleanupWorker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cs.CleanupExpired()
			}
		}
	}()
}

// Close không cần cho in-memory cache
func (cs *CacheService) Close() error {
	return nil
}
