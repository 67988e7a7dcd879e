// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api runs the Milize workflow engine: the HTTP command surface and
// the periodic sweeps.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from the environment and `.env`.
//  3. Run database migrations (idempotent).
//  4. Wire the engine (postgres, redis, chat platform, tracing).
//  5. Start the scheduler and the HTTP server; stop both on a signal.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/milize/internal/api"
	"github.com/taibuivan/milize/internal/app"
	"github.com/taibuivan/milize/internal/core/board"
	"github.com/taibuivan/milize/internal/core/chapter"
	"github.com/taibuivan/milize/internal/core/ledger"
	"github.com/taibuivan/milize/internal/core/publish"
	"github.com/taibuivan/milize/internal/core/roster"
	"github.com/taibuivan/milize/internal/core/series"
	"github.com/taibuivan/milize/internal/platform/config"
	"github.com/taibuivan/milize/internal/platform/constants"
	"github.com/taibuivan/milize/internal/platform/migration"
	pgstore "github.com/taibuivan/milize/internal/platform/postgres"
	redisstore "github.com/taibuivan/milize/internal/platform/redis"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)
	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}
	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// ── 3. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 4. Engine ─────────────────────────────────────────────────────────
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	engine, err := app.New(startupCtx, cfg, log)
	startupCancel()
	must(log, err, "wire engine")
	defer engine.Close()

	liveness, readiness := api.NewHealthHandlers([]api.Check{
		{Name: "postgres", Probe: func(ctx context.Context) error { return pgstore.Ping(ctx, engine.Pool) }},
		{Name: "redis", Probe: func(ctx context.Context) error { return redisstore.Ping(ctx, engine.Redis) }},
	}, log)

	// ── 5. Run ────────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	server := api.NewServer(ctx, cfg, log, engine.Tokens, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Domains: []api.RouteRegistrar{
			series.NewHandler(engine.Series),
			chapter.NewHandler(engine.Chapters),
			roster.NewHandler(engine.Roster),
			ledger.NewHandler(engine.Ledger),
			board.NewHandler(engine.Board),
			publish.NewHandler(engine.Publications, engine.Wizard),
		},
	})

	engine.Scheduler.Start(ctx)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown_signal_received")
	case err := <-serverErr:
		log.Error("server_failed", slog.Any("error", err))
		stop()
	}

	log.Info("shutting_down", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_failed", slog.Any("error", err))
	}
	engine.Scheduler.Wait()

	log.Info("server_stopped")
}

func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String(constants.FieldApp, constants.AppName))
}

// must logs a startup failure and exits. After startup, errors are returned, never fatal.
func must(log *slog.Logger, err error, step string) {
	if err != nil {
		log.Error("startup_failure", slog.String("step", step), slog.Any("error", err))
		os.Exit(1)
	}
}
