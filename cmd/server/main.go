package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/foodgram/internal/config"
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/database"
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/logging"
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/routes"
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/storage"
	"github.com/gofiber/fiber/v2"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBDriver == "postgres" && cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
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

	// Database log handler (ERROR+ async batch)
	dbLogHandler := logging.AttachDB(database.DB)

	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cfg.LogRetentionDays, cleanupDone)

	// Image storage
	images, err := newImageStore(cfg)
	if err != nil {
		slog.Error("image storage init failed", "backend", cfg.ImageStorage, "error", err)
		os.Exit(1)
	}

	// Sentry error tracking
	var first []fiber.Handler
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
			first = append(first, sentryfiber.New(sentryfiber.Options{
				Repanic:         true,
				WaitForDelivery: false,
			}))
		}
	}

	app := routes.NewApp(cfg, first...)
	routes.Setup(app, cfg, database.DB, images)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "images", cfg.ImageStorage)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(cleanupDone)
	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	// Close database connections
	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func newImageStore(cfg *config.Config) (storage.Store, error) {
	if cfg.ImageStorage == "s3" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		store, err := storage.NewS3Store(ctx, cfg.AWSS3Bucket, cfg.AWSS3Region, cfg.AWSAccessKey, cfg.AWSSecretKey)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	if err := os.MkdirAll(cfg.MediaDir, 0o755); err != nil {
		return nil, err
	}
	return storage.NewLocalStore(cfg.MediaDir, cfg.MediaURL), nil
}
