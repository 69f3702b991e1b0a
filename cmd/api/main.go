package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalog-api/internal/config"
	"catalog-api/internal/handler"
	"catalog-api/internal/importer"
	"catalog-api/internal/jobstore"
	"catalog-api/internal/middleware"
	"catalog-api/internal/repository"
	"catalog-api/internal/service"
	"catalog-api/internal/ws"
	"catalog-api/pkg/database"
	"catalog-api/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	// 1. Load config
	cfg, envLoaded := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	if !envLoaded {
		log.Debug(".env file not found, using process environment")
	}

	// 2. Setup database
	if cfg.DBAutoMigrate {
		changed, err := database.MigrateUp(cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Fatal("failed to run migrations")
		}
		log.WithField("changed", changed).Info("migrations applied")
	}
	db, err := database.ConnectDB(cfg.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer database.Close(db)

	// 3. Job status store
	var redisClient *redis.Client
	if cfg.JobStore == jobstore.BackendRedis {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.WithError(err).Fatal("invalid REDIS_URL")
		}
		redisClient = redis.NewClient(opts)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = redisClient.Ping(ctx).Err()
		cancel()
		if err != nil {
			log.WithError(err).Fatal("failed to connect to redis")
		}
		defer redisClient.Close()
	}
	jobs, err := jobstore.New(cfg.JobStore, redisClient)
	if err != nil {
		log.WithError(err).Fatal("failed to create job store")
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.WithError(err).Fatal("failed to create upload dir")
	}

	// 4. Setup WebSocket hub
	wsHub := ws.NewHub(log)
	go wsHub.Run()

	// 5. Dependency injection
	productRepo := repository.NewProductRepo(db)
	webhookRepo := repository.NewWebhookRepo(db)

	productService := service.NewProductService(productRepo, wsHub, log)
	exportService := service.NewExportService(productRepo)
	webhookService := service.NewWebhookService(webhookRepo, cfg.WebhookTimeout, cfg.WebhookSigningSecret, log)

	imp := importer.New(productRepo, jobs, log,
		importer.WithBatchSize(cfg.ImportBatchSize),
		importer.WithMaxConcurrent(cfg.ImportMaxConcurrent),
		importer.WithEvents(wsHub),
	)

	handlers := &handler.Handlers{
		Import:   handler.NewImportHandler(jobs, imp, cfg.UploadDir, log),
		Products: handler.NewProductHandler(productService, exportService, log),
		Webhooks: handler.NewWebhookHandler(webhookService, log),
		Hub:      wsHub,
	}

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:   "Catalog API v1.0",
		BodyLimit: cfg.MaxUploadBytes,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger(log))
	app.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	// 7. Routes
	handlers.Register(app)

	// 8. Graceful shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.WithError(err).Panic("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}

	log.Info("waiting for running imports")
	imp.Wait()
	wsHub.Stop()

	log.WithFields(logrus.Fields{"port": cfg.Port}).Info("server exited")
}

func corsConfig(origins string) cors.Config {
	if origins == "" {
		return cors.ConfigDefault
	}
	return cors.Config{AllowOrigins: origins}
}
