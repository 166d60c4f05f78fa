package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/ugd-resolver/app/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ResolutionCacheCollection tên collection cache kết quả resolve
const ResolutionCacheCollection = "resolution_cache"

// MongoCacheService persistent cache service sử dụng MongoDB + LRU in-memory
type MongoCacheService struct {
	db         *mongo.Database
	collection *mongo.Collection
	l1Cache    *lru.Cache[string, *models.ResolutionResult]
	logger     *zap.Logger
	ttl        time.Duration

	totalHits atomic.Int64
	totalMiss atomic.Int64
	l1Hits    atomic.Int64
	l1Miss    atomic.Int64
	mongoHits atomic.Int64
	mongoMiss atomic.Int64
}

// NewMongoCacheService tạo mới MongoCacheService
func NewMongoCacheService(db *mongo.Database, l1Size int, ttl time.Duration, logger *zap.Logger) (*MongoCacheService, error) {
	l1Cache, err := lru.New[string, *models.ResolutionResult](l1Size)
	if err != nil {
		return nil, fmt.Errorf("không thể tạo LRU cache: %w", err)
	}

	collection := db.Collection(ResolutionCacheCollection)

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "cache_key", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{bson.E{Key: "table_version", Value: 1}},
		},
		{
			Keys: bson.D{bson.E{Key: "office_code", Value: 1}},
		},
		{
			Keys: bson.D{bson.E{Key: "last_accessed", Value: 1}},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexModels); err != nil {
		logger.Warn("Không thể tạo indexes cho resolution_cache", zap.Error(err))
	}

	return &MongoCacheService{
		db:         db,
		collection: collection,
		l1Cache:    l1Cache,
		logger:     logger,
		ttl:        ttl,
	}, nil
}

// Get lấy kết quả từ cache (L1 → MongoDB)
func (mcs *MongoCacheService) Get(ctx context.Context, key string) (*models.ResolutionResult, bool, error) {
	if result, found := mcs.l1Cache.Get(key); found {
		mcs.l1Hits.Add(1)
		mcs.totalHits.Add(1)
		mcs.logger.Debug("L1 cache hit", zap.String("key", key))
		return result, true, nil
	}
	mcs.l1Miss.Add(1)

	var entry models.ResolutionCache
	err := mcs.collection.FindOne(ctx, bson.M{"cache_key": key}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			mcs.mongoMiss.Add(1)
			mcs.totalMiss.Add(1)
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("lỗi query MongoDB cache: %w", err)
	}

	if entry.IsExpired(mcs.ttl) {
		mcs.mongoMiss.Add(1)
		mcs.totalMiss.Add(1)
		go mcs.deleteByID(entry.ID)
		return nil, false, nil
	}

	mcs.mongoHits.Add(1)
	mcs.totalHits.Add(1)

	go mcs.updateAccessStats(entry.ID)

	result := entry.Result
	mcs.l1Cache.Add(key, &result)

	mcs.logger.Debug("MongoDB cache hit", zap.String("key", key))
	return &result, true, nil
}

// Set lưu kết quả vào cache (L1 + MongoDB)
func (mcs *MongoCacheService) Set(ctx context.Context, key string, result *models.ResolutionResult) error {
	mcs.l1Cache.Add(key, result)

	entry := models.NewResolutionCache(key, *result)

	opts := options.Replace().SetUpsert(true)
	if _, err := mcs.collection.ReplaceOne(ctx, bson.M{"cache_key": key}, entry, opts); err != nil {
		mcs.logger.Error("Lỗi lưu vào MongoDB cache", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("lỗi lưu vào MongoDB cache: %w", err)
	}

	mcs.logger.Debug("Đã lưu vào cache",
		zap.String("key", key),
		zap.String("status", result.Status))
	return nil
}

// Delete xóa key khỏi cache
func (mcs *MongoCacheService) Delete(ctx context.Context, key string) error {
	mcs.l1Cache.Remove(key)

	if _, err := mcs.collection.DeleteOne(ctx, bson.M{"cache_key": key}); err != nil {
		return fmt.Errorf("lỗi xóa khỏi MongoDB cache: %w", err)
	}
	return nil
}

// Clear xóa tất cả cache
func (mcs *MongoCacheService) Clear(ctx context.Context) error {
	mcs.l1Cache.Purge()

	if _, err := mcs.collection.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("lỗi clear MongoDB cache: %w", err)
	}

	for _, c := range []*atomic.Int64{&mcs.totalHits, &mcs.totalMiss, &mcs.l1Hits, &mcs.l1Miss, &mcs.mongoHits, &mcs.mongoMiss} {
		c.Store(0)
	}
	return nil
}

// InvalidateByTableVersion xóa kết quả của các phiên bản bảng khác
func (mcs *MongoCacheService) InvalidateByTableVersion(ctx context.Context, tableVersion string) error {
	mcs.l1Cache.Purge()

	result, err := mcs.collection.DeleteMany(ctx, bson.M{"table_version": bson.M{"$ne": tableVersion}})
	if err != nil {
		return fmt.Errorf("lỗi invalidate cache theo table version: %w", err)
	}

	mcs.logger.Info("Đã invalidate cache",
		zap.String("table_version", tableVersion),
		zap.Int64("deleted_count", result.DeletedCount))
	return nil
}

// GetStats lấy thống kê cache
func (mcs *MongoCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	mongoCount, err := mcs.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("lỗi đếm documents trong MongoDB cache: %w", err)
	}

	hits, misses := mcs.totalHits.Load(), mcs.totalMiss.Load()
	return &CacheStats{
		HitRate:    hitRate(hits, misses),
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: mongoCount,
	}, nil
}

// Exists kiểm tra key có tồn tại không
func (mcs *MongoCacheService) Exists(ctx context.Context, key string) (bool, error) {
	if mcs.l1Cache.Contains(key) {
		return true, nil
	}

	count, err := mcs.collection.CountDocuments(ctx, bson.M{"cache_key": key})
	if err != nil {
		return false, fmt.Errorf("lỗi check exists trong MongoDB: %w", err)
	}
	return count > 0, nil
}

// GetTTL TTL còn lại tính từ created_at; 0 khi không có TTL hoặc không có key
func (mcs *MongoCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	if mcs.ttl <= 0 {
		return 0, nil
	}

	var entry models.ResolutionCache
	err := mcs.collection.FindOne(ctx, bson.M{"cache_key": key}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	remaining := mcs.ttl - time.Since(entry.CreatedAt)
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

// Close MongoDB connection do caller quản lý
func (mcs *MongoCacheService) Close() error {
	return nil
}

func (mcs *MongoCacheService) updateAccessStats(id primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	update := bson.M{
		"$set": bson.M{"last_accessed": time.Now()},
		"$inc": bson.M{"access_count": 1},
	}
	if _, err := mcs.collection.UpdateOne(ctx, bson.M{"_id": id}, update); err != nil {
		mcs.logger.Warn("Lỗi update access stats", zap.Error(err))
	}
}

func (mcs *MongoCacheService) deleteByID(id primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := mcs.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		mcs.logger.Warn("Lỗi xóa cache hết hạn", zap.Error(err))
	}
}

// GetL1Stats lấy thống kê L1 cache
func (mcs *MongoCacheService) GetL1Stats() map[string]interface{} {
	return map[string]interface{}{
		"l1_size":    mcs.l1Cache.Len(),
		"l1_hits":    mcs.l1Hits.Load(),
		"l1_miss":    mcs.l1Miss.Load(),
		"mongo_hits": mcs.mongoHits.Load(),
		"mongo_miss": mcs.mongoMiss.Load(),
		"total_hits": mcs.totalHits.Load(),
		"total_miss": mcs.totalMiss.Load(),
	}
}

// WarmUp nạp các kết quả được truy cập nhiều nhất của phiên bản bảng hiện tại vào L1
func (mcs *MongoCacheService) WarmUp(ctx context.Context, tableVersion string, limit int) error {
	opts := options.Find().
		SetSort(bson.D{bson.E{Key: "access_count", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := mcs.collection.Find(ctx, bson.M{"table_version": tableVersion}, opts)
	if err != nil {
		return fmt.Errorf("lỗi warm up cache: %w", err)
	}
	defer cursor.Close(ctx)

	count := 0
	for cursor.Next(ctx) {
		var entry models.ResolutionCache
		if err := cursor.Decode(&entry); err != nil {
			mcs.logger.Warn("Lỗi decode cache entry trong warm up", zap.Error(err))
			continue
		}
		if entry.IsExpired(mcs.ttl) {
			continue
		}

		result := entry.Result
		mcs.l1Cache.Add(entry.CacheKey, &result)
		count++
	}

	mcs.logger.Info("Cache warm up hoàn thành",
		zap.Int("loaded_items", count),
		zap.Int("l1_size", mcs.l1Cache.Len()))
	return cursor.Err()
}
