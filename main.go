package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/ugd-resolver/app/bootstrap"
	"github.com/ugd-resolver/app/config"
	"github.com/ugd-resolver/app/controllers"
	"github.com/ugd-resolver/app/services"
	"github.com/ugd-resolver/routes"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	bootstrap.LoadConfig()

	// 2. Khởi tạo logger
	logger := bootstrap.InitLogger()
	defer logger.Sync()

	logger.Info("Starting UGD Resolver Service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Bảng tham chiếu, cache, Meilisearch
	comp := bootstrap.Build(ctx, logger)
	defer comp.Close()

	if indexer := comp.Indexer(); indexer != nil {
		if err := indexer.BuildIndexes(); err != nil {
			logger.Warn("Failed to build Meilisearch indexes", zap.Error(err))
		} else if err := indexer.SeedOffices(comp.Resolver.Table()); err != nil {
			logger.Warn("Failed to seed Meilisearch", zap.Error(err))
		}
	}

	// 4. Khởi tạo services
	resolverService := services.NewResolverService(comp.Resolver, comp.Cache, comp.Suggester,
		comp.SearchBackend(), comp.Metrics, logger)
	resolverService.SetBatchWorkers(config.C.Batch.Workers)
	adminService := services.NewAdminService(comp.Resolver, comp.Source, comp.Cache,
		comp.Indexer(), comp.Metrics, logger)

	// 5. Khởi tạo controllers
	resolverController := controllers.NewResolverController(resolverService, logger)
	adminController := controllers.NewAdminController(adminService, resolverService, logger)

	// 6. Khởi tạo Gin router
	if viper.GetString("app.env") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	routes.SetupAllRoutes(router, resolverController, adminController, comp.Metrics)

	// 7. Khởi động server
	port := viper.GetString("app.port")
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		logger.Info("UGD Resolver Service starting", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
