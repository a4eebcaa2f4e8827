package main

import (
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/community-core/internal/config"
	"github.com/ahmetcoskunkizilkaya/community-core/internal/database"
	"github.com/ahmetcoskunkizilkaya/community-core/internal/dto"
	"github.com/ahmetcoskunkizilkaya/community-core/internal/events"
	"github.com/ahmetcoskunkizilkaya/community-core/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/community-core/internal/logging"
	"github.com/ahmetcoskunkizilkaya/community-core/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/community-core/internal/routes"
	"github.com/ahmetcoskunkizilkaya/community-core/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	cfg := config.Load()

	// Structured logging (JSON to stdout)
	logLevel := logging.ParseLevel(cfg.LogLevel)
	logging.Setup(logLevel)

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Sentry error tracking; initialized before the relay so handler failures are captured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		logging.NewStdoutHandler(logLevel),
		pgLogHandler,
	)))

	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cfg.LogRetentionDays, cleanupDone)

	// Redis is optional; without it the sweep only guards against overlap in-process
	rdb, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		slog.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	var lease services.Lease
	if rdb != nil {
		lease = database.NewLease(rdb, "community-core:penalty-sweep", cfg.PenaltySweepInterval)
	}

	// Services
	relay := events.NewRelay(database.DB)
	reportService := services.NewReportService(database.DB, relay, services.NewSQLTargetResolver(database.DB))
	penaltyService := services.NewPenaltyService(database.DB, relay)
	reputationService := services.NewReputationService(database.DB, relay, cfg.ReputationLocation)
	notificationService := services.NewNotificationService(database.DB)
	escalationService := services.NewEscalationService(penaltyService)
	services.RegisterHandlers(relay, escalationService, reputationService, notificationService)

	sweeper := services.NewPenaltySweeper(penaltyService, cfg.PenaltySweepInterval, cfg.PenaltySweepBatch, lease)
	sweepDone := make(chan struct{})
	sweeper.Start(sweepDone)

	// Handlers
	healthHandler := handlers.NewHealthHandler(database.DB, rdb)
	reportHandler := handlers.NewReportHandler(reportService)
	penaltyHandler := handlers.NewPenaltyHandler(penaltyService, sweeper)
	reputationHandler := handlers.NewReputationHandler(reputationService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, database.DB, healthHandler, reportHandler, penaltyHandler, reputationHandler, notificationHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(sweepDone)
	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			slog.Error("redis close error", "error", err)
		}
	}

	// Close database connections
	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	errCode := services.CodeValidation
	switch {
	case code == fiber.StatusNotFound:
		errCode = services.CodeNotFound
	case code == fiber.StatusUnauthorized:
		errCode = services.CodeUnauthorized
	case code == fiber.StatusTooManyRequests:
		errCode = services.CodeRateLimited
	case code >= 500:
		// Only expose error details for client errors (4xx), not server errors (5xx)
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
		errCode = services.CodeInternal
	}

	return c.Status(code).JSON(dto.ErrorResponse{
		Error:   true,
		Code:    errCode,
		Message: message,
	})
}
