package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/user/context-service/internal/adapter/browser"
	"github.com/user/context-service/internal/adapter/gemini"
	"github.com/user/context-service/internal/adapter/memstore"
	"github.com/user/context-service/internal/adapter/postgres"
	"github.com/user/context-service/internal/delivery/http/handler"
	"github.com/user/context-service/internal/delivery/http/router"
	"github.com/user/context-service/internal/ratelimit"
	"github.com/user/context-service/internal/repository"
	"github.com/user/context-service/internal/usecase"
	"github.com/user/context-service/pkg/config"
	"github.com/user/context-service/pkg/logger"
	"github.com/user/context-service/pkg/metrics"
)

const version = "1.0.0"

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	// --- Logger ---
	logLevel := logger.ParseLevel(cfg.LogLevel)
	logger.Init(os.Stdout, logLevel)
	slog.Info("Logger initialized", "level", logLevel.String())

	// --- Metrics ---
	metrics.Init()
	slog.Info("Metrics initialized")

	ctx := context.Background()

	// --- Rate Limiter ---
	var limiter ratelimit.Limiter
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			slog.Error("Unable to connect to Redis", "error", err)
			os.Exit(1)
		}
		limiter = ratelimit.NewRedisLimiter(rdb, cfg.RateLimit, cfg.RateWindow)
		slog.Info("Redis rate limiter enabled", "addr", cfg.RedisAddr)
	} else {
		limiter = ratelimit.NewMemoryLimiter(cfg.RateLimit, cfg.RateWindow)
		slog.Info("In-memory rate limiter enabled")
	}

	// --- Persistence (optional) ---
	var contexts repository.ContextRepository
	if dsn := cfg.PostgresDSN(); dsn != "" {
		dbpool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			slog.Error("Unable to connect to database", "error", err)
			os.Exit(1)
		}
		defer dbpool.Close()
		contexts = postgres.NewContextRepo(dbpool)
		slog.Info("PostgreSQL connection pool established")
	}

	// --- Upstream Generator (optional) ---
	var generator repository.ContextGenerator
	if cfg.GeminiAPIKey != "" {
		generator = gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel)
		slog.Info("Gemini generator configured", "model", cfg.GeminiModel)
	} else {
		slog.Warn("GEMINI_API_KEY not set, serving fallback detection only")
	}

	// --- Page Snapshotter (optional) ---
	var snapshots repository.PageSnapshotter
	if cfg.SnapshotEnabled {
		snapshots = browser.NewSnapshotter(cfg.PageLoadTimeout)
		slog.Info("Page snapshotter enabled", "timeout", cfg.PageLoadTimeout)
	}

	// --- Use Cases ---
	analyzer := usecase.NewAnalyzer(limiter, generator, contexts, snapshots)
	jobs := usecase.NewJobManager(memstore.NewJobStore(), limiter, generator, contexts, snapshots)

	// --- HTTP Server ---
	apiHandler := handler.NewHandler(analyzer, jobs, version, cfg.FallbackOnError)
	httpRouter := router.New(apiHandler)

	server := &http.Server{
		Addr:        ":" + cfg.ServerPort,
		Handler:     httpRouter,
		ReadTimeout: 5 * time.Second,
		// Synchronous analysis waits out the full upstream retry budget.
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	slog.Info("Starting server", "port", cfg.ServerPort)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("Could not listen on port", "port", cfg.ServerPort, "error", err)
		os.Exit(1)
	}
}
