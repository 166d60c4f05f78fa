package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ugd-resolver/app/models"
	"go.uber.org/zap"
)

// RedisCacheService cache service sử dụng Redis
type RedisCacheService struct {
	client *redis.Client
	logger *zap.Logger
	prefix string
	ttl    time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

// NewRedisCacheService tạo mới Redis cache service
func NewRedisCacheService(redisURL string, ttl time.Duration, logger *zap.Logger) (*RedisCacheService, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("lỗi parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("không thể kết nối Redis: %w", err)
	}

	return NewRedisCacheServiceWithClient(client, ttl, logger), nil
}

// NewRedisCacheServiceWithClient dùng client có sẵn (không ping)
func NewRedisCacheServiceWithClient(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisCacheService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisCacheService{
		client: client,
		logger: logger,
		prefix: "ugd_resolver:",
		ttl:    ttl,
	}
}

// Get lấy kết quả resolve từ cache
func (rcs *RedisCacheService) Get(ctx context.Context, key string) (*models.ResolutionResult, bool, error) {
	cacheKey := rcs.prefix + key

	val, err := rcs.client.Get(ctx, cacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		rcs.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		rcs.logger.Error("Lỗi get từ Redis", zap.Error(err), zap.String("key", cacheKey))
		return nil, false, err
	}

	var result models.ResolutionResult
	if err := json.Unmarshal(val, &result); err != nil {
		rcs.logger.Error("Lỗi unmarshal cache data", zap.Error(err))
		return nil, false, err
	}

	rcs.hits.Add(1)
	rcs.logger.Debug("Redis cache hit", zap.String("key", key))
	return &result, true, nil
}

// Set lưu kết quả resolve vào cache
func (rcs *RedisCacheService) Set(ctx context.Context, key string, result *models.ResolutionResult) error {
	cacheKey := rcs.prefix + key

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("lỗi marshal cache data: %w", err)
	}

	if err := rcs.client.Set(ctx, cacheKey, data, rcs.ttl).Err(); err != nil {
		rcs.logger.Error("Lỗi set vào Redis", zap.Error(err), zap.String("key", cacheKey))
		return err
	}

	rcs.logger.Debug("Đã lưu vào Redis cache", zap.String("key", key))
	return nil
}

// Delete xóa key khỏi cache
func (rcs *RedisCacheService) Delete(ctx context.Context, key string) error {
	cacheKey := rcs.prefix + key

	if err := rcs.client.Del(ctx, cacheKey).Err(); err != nil {
		rcs.logger.Error("Lỗi delete từ Redis", zap.Error(err), zap.String("key", cacheKey))
		return err
	}
	return nil
}

// Clear xóa toàn bộ cache
func (rcs *RedisCacheService) Clear(ctx context.Context) error {
	deleted, err := rcs.deleteMatching(ctx, func(string) bool { return true })
	if err != nil {
		return err
	}

	rcs.hits.Store(0)
	rcs.misses.Store(0)
	rcs.logger.Info("Đã clear Redis cache", zap.Int("keys_deleted", deleted))
	return nil
}

// InvalidateByTableVersion xóa các key không mang prefix phiên bản hiện tại
func (rcs *RedisCacheService) InvalidateByTableVersion(ctx context.Context, tableVersion string) error {
	keep := rcs.prefix + tableVersion + ":"
	deleted, err := rcs.deleteMatching(ctx, func(key string) bool {
		return !strings.HasPrefix(key, keep)
	})
	if err != nil {
		return err
	}

	rcs.logger.Info("Đã invalidate Redis cache",
		zap.String("table_version", tableVersion),
		zap.Int("keys_deleted", deleted))
	return nil
}

// deleteMatching SCAN theo prefix và xóa các key thỏa điều kiện
func (rcs *RedisCacheService) deleteMatching(ctx context.Context, match func(string) bool) (int, error) {
	var batch []string
	deleted := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := rcs.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("lỗi xóa keys: %w", err)
		}
		deleted += len(batch)
		batch = batch[:0]
		return nil
	}

	iter := rcs.client.Scan(ctx, 0, rcs.prefix+"*", 500).Iterator()
	for iter.Next(ctx) {
		if key := iter.Val(); match(key) {
			batch = append(batch, key)
		}
		if len(batch) >= 500 {
			if err := flush(); err != nil {
				return deleted, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("lỗi scan keys: %w", err)
	}
	return deleted, flush()
}

// GetStats lấy thống kê cache
func (rcs *RedisCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	totalItems := int64(0)
	iter := rcs.client.Scan(ctx, 0, rcs.prefix+"*", 500).Iterator()
	for iter.Next(ctx) {
		totalItems++
	}
	if err := iter.Err(); err != nil {
		rcs.logger.Warn("Không thể đếm keys Redis", zap.Error(err))
	}

	hits, misses := rcs.hits.Load(), rcs.misses.Load()
	return &CacheStats{
		HitRate:    hitRate(hits, misses),
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: totalItems,
	}, nil
}

// Exists kiểm tra key có tồn tại không
func (rcs *RedisCacheService) Exists(ctx context.Context, key string) (bool, error) {
	exists, err := rcs.client.Exists(ctx, rcs.prefix+key).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

// GetTTL lấy TTL của key
func (rcs *RedisCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	return rcs.client.TTL(ctx, rcs.prefix+key).Result()
}

// Close đóng kết nối Redis
func (rcs *RedisCacheService) Close() error {
	return rcs.client.Close()
}
