// Package bootstrap khởi tạo cấu hình, logger và các thành phần dùng chung
// cho API server và worker.
package bootstrap

import (
	"context"
	"log"
	"time"

	"github.com/spf13/viper"
	"github.com/ugd-resolver/app/config"
	"github.com/ugd-resolver/app/services"
	"github.com/ugd-resolver/internal/metrics"
	"github.com/ugd-resolver/internal/resolver"
	"github.com/ugd-resolver/internal/search"
	"github.com/ugd-resolver/internal/suggest"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// LoadConfig load config/app.yaml (viper) và config/resolver.yaml (app/config)
func LoadConfig() {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetDefault("app.port", "8080")
	viper.SetDefault("app.env", "development")
	viper.SetDefault("resolver.config", "config/resolver.yaml")
	viper.SetDefault("mongo.url", "")
	viper.SetDefault("mongo.database", "ugd_resolver")
	viper.SetDefault("redis.url", "")
	viper.SetDefault("meilisearch.url", "")
	viper.SetDefault("meilisearch.master_key", "")
	viper.SetDefault("cache.cleanup_interval", "10m")

	viper.AutomaticEnv()
	bindEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Cannot read config file: %v", err)
	}

	path := viper.GetString("resolver.config")
	if err := config.Load(path); err != nil {
		log.Printf("Warning: Cannot read resolver config %s: %v, using defaults", path, err)
		cfg := config.Default()
		cfg.ApplyEnv()
		config.C = cfg
	}
}

func bindEnv() {
	for key, env := range map[string]string{
		"app.port":               "APP_PORT",
		"app.env":                "APP_ENV",
		"mongo.url":              "MONGO_URL",
		"redis.url":              "REDIS_URL",
		"meilisearch.url":        "MEILI_URL",
		"meilisearch.master_key": "MEILI_MASTER_KEY",
		"resolver.config":        "RESOLVER_CONFIG",
		"cache.cleanup_interval": "CACHE_CLEANUP_INTERVAL",
	} {
		_ = viper.BindEnv(key, env)
	}
}

// InitLogger khởi tạo structured logger theo app.env
func InitLogger() *zap.Logger {
	var cfg zap.Config
	if viper.GetString("app.env") == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	logger, err := cfg.Build()
	if err != nil {
		log.Fatal("Cannot initialize logger:", err)
	}
	return logger
}

// Components các thành phần dùng chung đã khởi tạo
type Components struct {
	Metrics   *metrics.Metrics
	Source    services.ReferenceSource
	Resolver  *resolver.Resolver
	Cache     services.ICacheService
	Searcher  *search.OfficeSearcher
	Suggester *suggest.Suggester

	mongoClient *mongo.Client
	logger      *zap.Logger
}

// Build load bảng tham chiếu và kết nối các backend tùy chọn.
// Backend nào không cấu hình hoặc không kết nối được thì bỏ qua (log Warn).
func Build(ctx context.Context, logger *zap.Logger) *Components {
	source := services.ReferenceSource{
		Path:    config.C.Reference.Path,
		Options: config.C.Reference.Options(),
	}

	table, _ := services.LoadReferenceTable(source, logger)
	m := metrics.Default()
	m.SetReferenceRecords(table.Len())

	comp := &Components{
		Metrics:  m,
		Source:   source,
		Resolver: resolver.NewResolver(table, logger),
		logger:   logger,
	}

	if config.C.Suggest.Enabled {
		comp.Suggester = suggest.NewSuggester(config.C.Suggest.Floor, config.C.Suggest.Limit)
	}

	comp.Searcher = initSearcher(logger)
	comp.Cache = comp.initCache(ctx, table.Version())
	return comp
}

// Indexer trả về nil interface khi không có Meilisearch
func (c *Components) Indexer() services.OfficeIndexer {
	if c.Searcher == nil {
		return nil
	}
	return c.Searcher
}

// SearchBackend trả về nil interface khi không có Meilisearch
func (c *Components) SearchBackend() search.Searcher {
	if c.Searcher == nil {
		return nil
	}
	return c.Searcher
}

// Close đóng cache và kết nối MongoDB
func (c *Components) Close() {
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			c.logger.Error("Error closing cache", zap.Error(err))
		}
	}
	if c.mongoClient != nil {
		if err := c.mongoClient.Disconnect(context.Background()); err != nil {
			c.logger.Error("Error disconnecting MongoDB", zap.Error(err))
		}
	}
}

func initSearcher(logger *zap.Logger) *search.OfficeSearcher {
	host := viper.GetString("meilisearch.url")
	if host == "" {
		logger.Info("Meilisearch chưa cấu hình, dùng tìm kiếm trong bộ nhớ")
		return nil
	}

	searcher, err := search.NewOfficeSearcher(search.SearchConfig{
		Host:          host,
		APIKey:        viper.GetString("meilisearch.master_key"),
		IndexName:     config.C.Search.IndexName,
		Timeout:       30 * time.Second,
		MaxCandidates: config.C.Search.MaxCandidates,
	}, logger)
	if err != nil {
		logger.Warn("Không kết nối được Meilisearch, dùng tìm kiếm trong bộ nhớ",
			zap.String("host", host), zap.Error(err))
		return nil
	}
	return searcher
}

// initCache Redis L1 + MongoDB L2 khi có đủ, một tầng khi chỉ có một,
// cache trong bộ nhớ khi không có backend nào
func (c *Components) initCache(ctx context.Context, tableVersion string) services.ICacheService {
	ttl := config.CacheTTL()

	var l1, l2 services.ICacheService

	if url := viper.GetString("redis.url"); url != "" {
		redisCache, err := services.NewRedisCacheService(url, ttl, c.logger)
		if err != nil {
			c.logger.Warn("Failed to initialize Redis cache", zap.Error(err))
		} else {
			l1 = redisCache
		}
	}

	if url := viper.GetString("mongo.url"); url != "" {
		db, err := initMongoDB(ctx, url, viper.GetString("mongo.database"), c.logger)
		if err != nil {
			c.logger.Warn("Failed to connect to MongoDB", zap.Error(err))
		} else {
			c.mongoClient = db.Client()
			mongoCache, err := services.NewMongoCacheService(db, config.C.Cache.L1Size, ttl, c.logger)
			if err != nil {
				c.logger.Warn("Failed to initialize MongoDB cache", zap.Error(err))
			} else {
				if err := mongoCache.WarmUp(ctx, tableVersion, config.C.Cache.L1Size/2); err != nil {
					c.logger.Warn("Failed to warm up cache", zap.Error(err))
				}
				l2 = mongoCache
			}
		}
	}

	switch {
	case l1 != nil && l2 != nil:
		return services.NewHybridCacheService(l1, l2, c.logger)
	case l1 != nil:
		return l1
	case l2 != nil:
		return l2
	}

	memory := services.NewCacheService(ttl)
	if interval := viper.GetDuration("cache.cleanup_interval"); interval > 0 {
		memory.StartCleanupWorker(ctx, interval)
	}
	return memory
}

// initMongoDB khởi tạo kết nối MongoDB
func initMongoDB(ctx context.Context, url, dbName string, logger *zap.Logger) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(url))
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logger.Info("Connected to MongoDB", zap.String("database", dbName))
	return client.Database(dbName), nil
}
