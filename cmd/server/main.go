package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/phenocheck/internal/config"
	"github.com/JonMunkholm/phenocheck/internal/core"
	"github.com/JonMunkholm/phenocheck/internal/logging"
	"github.com/JonMunkholm/phenocheck/internal/store"
	"github.com/JonMunkholm/phenocheck/internal/tabular"
	"github.com/JonMunkholm/phenocheck/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"database", cfg.Database.UsesDatabase(),
		"validation_max_concurrent", cfg.Validation.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)
	slog.Debug("effective configuration", "config", cfg.String())

	ctx := context.Background()

	runs, closeStore, err := openStore(ctx, &cfg.Database)
	if err != nil {
		slog.Error("failed to open run store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	// Validate has already rejected unknown formats.
	defaultFormat, _ := tabular.ParseFormat(cfg.Validation.DefaultFormat)

	limiter := core.NewRunLimiter(cfg.Validation.MaxConcurrent, cfg.Validation.MaxWaitTime)
	service := core.NewService(runs, limiter, core.Options{
		MaxFileSize:   cfg.Validation.MaxFileSize,
		Timeout:       cfg.Validation.Timeout,
		DefaultFormat: defaultFormat,
	})

	server := web.NewServer(service, cfg)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		// Wait for in-flight runs to finish saving (with timeout)
		if active := limiter.ActiveCount(); active > 0 {
			slog.Info("waiting for validation runs to complete", "active", active)
			if err := limiter.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("validation runs did not complete in time", "error", err)
			} else {
				slog.Info("all validation runs completed")
			}
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}

// openStore connects to Postgres when DATABASE_URL is set and falls back
// to an in-memory store otherwise.
func openStore(ctx context.Context, cfg *config.DatabaseConfig) (store.RunStore, func(), error) {
	if !cfg.UsesDatabase() {
		slog.Warn("no DATABASE_URL set, runs are kept in memory only")
		return store.NewMemoryStore(), func() {}, nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, nil, err
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}

	pg := store.NewPostgresStore(pool)
	if err := pg.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return pg, pool.Close, nil
}
