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
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/student-insight/backend/internal/analytics"
	"github.com/student-insight/backend/internal/api/handlers"
	"github.com/student-insight/backend/internal/auth"
	"github.com/student-insight/backend/internal/cache/redis"
	"github.com/student-insight/backend/internal/ingestion"
	"github.com/student-insight/backend/internal/insight"
	"github.com/student-insight/backend/internal/metrics"
	"github.com/student-insight/backend/internal/middleware/ratelimit"
	"github.com/student-insight/backend/internal/middleware/security"
	"github.com/student-insight/backend/internal/middleware/validation"
	"github.com/student-insight/backend/internal/storage/sqlite"
	"github.com/student-insight/backend/pkg/config"
	appLogger "github.com/student-insight/backend/pkg/logger"
	"github.com/student-insight/backend/pkg/retry"
)

func main() {
	// Missing .env is fine; config falls back to defaults and env vars.
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting Student Insight API Server")

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	err = sqliteClient.InitSchema()
	if err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	// Redis only caches reports, so a dead Redis degrades to computing
	// every analysis instead of blocking startup.
	cacheClient, err := retry.DoWithResult(context.Background(), retry.Config{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    5 * time.Second,
		Logger:      appLogger.Log,
	}, func() (*redis.Client, error) {
		return redis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
	})
	if err != nil {
		appLogger.Warn("Redis unavailable, report caching disabled", zap.Error(err))
		cacheClient = nil
	} else {
		defer cacheClient.Close()
	}

	metrics.Init()

	authService := auth.NewService(
		sqliteClient,
		time.Duration(cfg.Auth.SessionTTLHours)*time.Hour,
		cfg.Auth.BcryptCost,
	)

	insightService, err := insight.NewService(
		sqliteClient,
		cacheClient,
		analytics.Config{
			ClusterCount:      cfg.Analytics.ClusterCount,
			PredictionHorizon: cfg.Analytics.PredictionHorizon,
			LowPercentile:     cfg.Analytics.LowPercentile,
			HighPercentile:    cfg.Analytics.HighPercentile,
		},
		time.Duration(cfg.Redis.ReportTTLSec)*time.Second,
	)
	if err != nil {
		appLogger.Fatal("Failed to create insight service", zap.Error(err))
	}

	parser := ingestion.NewParser(cfg.Upload.MaxSubjects)

	rateLimiter := ratelimit.New(ratelimit.Config{
		RequestsPerMinute: 120,
		Logger:            appLogger.Log,
	})
	defer rateLimiter.Stop()

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	app.Get("/ready", func(c *fiber.Ctx) error {
		if err := sqliteClient.Ping(); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unavailable",
			})
		}
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

	app.Get("/metrics", metrics.MetricsHandler())

	authHandler := handlers.NewAuthHandler(authService)
	recordsHandler := handlers.NewRecordsHandler(sqliteClient, parser, insightService, cfg.Upload)
	analysisHandler := handlers.NewAnalysisHandler(insightService)
	reportHandler := handlers.NewReportHandler(sqliteClient)

	api := app.Group("/api/v1")
	api.Use(rateLimiter.Middleware())
	api.Use(validation.Middleware(validation.Config{Logger: appLogger.Log}))

	api.Post("/auth/register", authHandler.Register)
	api.Post("/auth/login", authHandler.Login)

	// Everything past this point requires a session token.
	api.Use(auth.Middleware(authService))

	api.Post("/auth/logout", authHandler.Logout)

	api.Post("/records/upload", recordsHandler.Upload)
	api.Post("/records", recordsHandler.CreateManual)
	api.Get("/records", recordsHandler.GetRecords)
	api.Delete("/records/:semesterIndex", recordsHandler.DeleteSemester)
	api.Delete("/records", recordsHandler.ClearRecords)

	api.Get("/analysis", analysisHandler.Analyze)
	api.Get("/reports", reportHandler.GetReport)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
