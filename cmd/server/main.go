package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/diabetesguard/backend/internal/config"
	"github.com/diabetesguard/backend/internal/dataset"
	"github.com/diabetesguard/backend/internal/delivery/http"
	"github.com/diabetesguard/backend/internal/features"
	"github.com/diabetesguard/backend/internal/locate"
	"github.com/diabetesguard/backend/internal/logger"
	"github.com/diabetesguard/backend/internal/model"
	"github.com/diabetesguard/backend/internal/repository/postgres"
	rediscache "github.com/diabetesguard/backend/internal/repository/redis"
	"github.com/diabetesguard/backend/internal/service"
)

const serviceName = "diabetesguard-backend"

func main() {
	cfg, loadedEnvFile, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.LogLevel, cfg.LogFormat, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if !loadedEnvFile {
		log.Info("No .env file found, using system environment")
	}

	// Database connection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var repo service.PredictionRepository = postgres.NewMockRepository()
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, prediction logs are kept in memory")
	} else if pool, err := connectPostgres(ctx, cfg.DatabaseURL); err != nil {
		log.Warn("could not connect to database, prediction logs are kept in memory", zap.Error(err))
	} else {
		defer pool.Close()
		pg := postgres.NewPostgresRepository(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Warn("could not create prediction_logs table, prediction logs are kept in memory", zap.Error(err))
		} else {
			repo = pg
			log.Info("Connected to PostgreSQL")
		}
	}

	// Optional stats cache
	var cache service.StatsCache
	if cfg.RedisAddr != "" {
		client := rediscache.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer client.Close()
		statsCache := rediscache.NewStatsCache(client, rediscache.DefaultKeyPrefix)
		if err := statsCache.Health(ctx); err != nil {
			log.Warn("redis unavailable, dashboard statistics are not cached", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			cache = statsCache
			log.Info("Connected to Redis", zap.String("addr", cfg.RedisAddr))
		}
	}

	// Model artifacts are loaded once and shared by all requests
	models := model.NewCache(func() (*model.Bundle, error) {
		return model.Load(locate.ModelDirs(cfg.ModelDir))
	})
	if bundle, err := models.Get(); err != nil {
		log.Error("prediction model not loaded, predictions will fail until it is available", zap.Error(err))
	} else {
		log.Info("prediction model loaded", zap.String("dir", bundle.Dir), zap.Int("features", bundle.Width()))
	}

	loadDataset := func() (*dataset.Dataset, error) {
		return dataset.Find(locate.DatasetFiles(cfg.DatasetPath))
	}

	// Dependency Injection: Services
	predictionSvc := service.NewPredictionService(models, repo, features.Options{Strict: cfg.StrictFeatures}, log)
	dashboardSvc := service.NewDashboardService(loadDataset, cache, cfg.StatsCacheTTL, log)

	// Fiber App
	app := fiber.New(fiber.Config{
		AppName:               "DiabetesGuard API v" + http.Version,
		DisableStartupMessage: cfg.IsProduction(),
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		BodyLimit:             cfg.BodyLimitBytes,
		ErrorHandler:          http.ErrorHandler(log),
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Routes
	http.SetupRoutes(app, predictionSvc, dashboardSvc, log)

	// Graceful shutdown
	go func() {
		log.Info("Server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal("Server error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	predictionSvc.WaitBackground()
	dashboardSvc.WaitBackground()
	log.Info("Server exited gracefully")
}

func connectPostgres(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
