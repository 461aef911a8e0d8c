package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/perum-adp-api/api/swagger"
	"github.com/noah-isme/perum-adp-api/internal/handler"
	"github.com/noah-isme/perum-adp-api/internal/middleware"
	"github.com/noah-isme/perum-adp-api/internal/repository"
	"github.com/noah-isme/perum-adp-api/internal/service"
	"github.com/noah-isme/perum-adp-api/pkg/cache"
	"github.com/noah-isme/perum-adp-api/pkg/config"
	"github.com/noah-isme/perum-adp-api/pkg/database"
	"github.com/noah-isme/perum-adp-api/pkg/docstore"
	"github.com/noah-isme/perum-adp-api/pkg/jobs"
	"github.com/noah-isme/perum-adp-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/perum-adp-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/perum-adp-api/pkg/middleware/requestid"
	"github.com/noah-isme/perum-adp-api/pkg/storage"
)

// @title PERUM ADP API
// @version 0.1.0
// @description Housing estate administrative console: record lifecycle and archive exports
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	store := docstore.NewPostgresStore(db, logr)
	if err := store.EnsureSchema(ctx); err != nil {
		logr.Sugar().Fatalw("failed to ensure document schema", "error", err)
	}

	metrics := service.NewMetricsService()

	viewCache := service.NewViewCacheService(nil, metrics, cfg.ViewCache.TTL, logr, false)
	if cfg.ViewCache.Enabled {
		redisClient, rerr := cache.NewRedis(ctx, cfg.Redis)
		if rerr != nil {
			logr.Warn("redis unavailable, list views will not be cached", zap.Error(rerr))
		} else {
			defer redisClient.Close() //nolint:errcheck
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			viewCache = service.NewViewCacheService(cacheRepo, metrics, cfg.ViewCache.TTL, logr, true)
		}
	}

	records := repository.NewRecordRepository(store, metrics, logr, cfg.Records.ListLimit, cfg.Records.QueryTimeout)
	actors := repository.NewActorRepository(store)
	audits := repository.NewAuditRepository(store)

	resolver := service.NewResolverService(actors, metrics, logr, cfg.Resolver.CacheSize, cfg.Resolver.CacheTTL)
	lifecycle := service.NewLifecycleService(records, resolver, audits, viewCache, metrics, logr)

	var exports *service.ExportService
	if cfg.Exports.Enabled {
		fileStore, serr := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if serr != nil {
			logr.Sugar().Fatalw("failed to prepare export storage", "error", serr)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportRepo := repository.NewExportRepository(store)

		var worker *service.ExportWorker
		queue := jobs.NewQueue("exports", func(ctx context.Context, job jobs.Job) error {
			return worker.Handle(ctx, job)
		}, jobs.QueueConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
			Logger:     logr,
		})

		exports = service.NewExportService(exportRepo, lifecycle, queue, fileStore, signer, service.ExportServiceConfig{
			APIPrefix:       cfg.APIPrefix,
			ResultTTL:       cfg.Exports.SignedURLTTL,
			CleanupInterval: cfg.Exports.CleanupInterval,
			MaxRetries:      cfg.Exports.WorkerRetries,
		}, logr)
		worker = service.NewExportWorker(exportRepo, exports, cfg.Exports.WorkerRetries, logr)

		queue.Start(ctx)
		defer queue.Stop()
		exports.RecoverPendingJobs(ctx)
		exports.StartCleanup(ctx)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	recordHandler := handler.NewRecordHandler(lifecycle)
	exportHandler := handler.NewExportHandler(exports)
	metricsHandler := handler.NewMetricsHandler(metrics, map[string]handler.ReadyProbe{
		"postgres": func(ctx context.Context) error { return db.PingContext(ctx) },
	})

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	if cfg.Exports.Enabled {
		// The signed token is the authorization; browsers follow this link
		// without an Authorization header.
		api.GET("/exports/download", exportHandler.Download)
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(cfg.JWT.Secret))
	{
		protected.GET("/records/activity", recordHandler.Activity)
		protected.GET("/records/:kind", recordHandler.ListActive)
		protected.GET("/records/:kind/archived", recordHandler.ListArchived)
		protected.POST("/records/:kind/:id/archive", recordHandler.Archive)
		protected.POST("/records/:kind/archived/:id/restore", recordHandler.Restore)

		if cfg.Exports.Enabled {
			protected.POST("/exports", exportHandler.Create)
			protected.GET("/exports/:id", exportHandler.Status)
		}

		protected.GET("/system/metrics", metricsHandler.Summary)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
