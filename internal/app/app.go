// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package app is the composition root shared by the API server and the
operator CLI.

Wiring order follows the observer graph: the ledger is built before the
board and the notifier so both can subscribe to it, and the board exists
before the work item service so archival can retract postings.

No business logic lives here.
*/
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/taibuivan/milize/internal/core/board"
	"github.com/taibuivan/milize/internal/core/chapter"
	"github.com/taibuivan/milize/internal/core/ledger"
	"github.com/taibuivan/milize/internal/core/lifecycle"
	"github.com/taibuivan/milize/internal/core/notifier"
	"github.com/taibuivan/milize/internal/core/publish"
	"github.com/taibuivan/milize/internal/core/roster"
	"github.com/taibuivan/milize/internal/core/series"
	"github.com/taibuivan/milize/internal/platform/config"
	"github.com/taibuivan/milize/internal/platform/constants"
	"github.com/taibuivan/milize/internal/platform/mangadex"
	"github.com/taibuivan/milize/internal/platform/messaging"
	"github.com/taibuivan/milize/internal/platform/objectstore"
	pgstore "github.com/taibuivan/milize/internal/platform/postgres"
	redisstore "github.com/taibuivan/milize/internal/platform/redis"
	"github.com/taibuivan/milize/internal/platform/sec"
	"github.com/taibuivan/milize/internal/platform/telemetry"
)

// JobPublish is the scheduler name of the publication poller.
const JobPublish = "publish"

// App holds every wired service.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	Pool      *pgxpool.Pool
	Redis     *goredis.Client
	Messenger messaging.Messenger
	Tokens    *sec.TokenService
	Telemetry *telemetry.Provider

	Series    *series.Service
	Chapters  *chapter.Service
	Roster    *roster.Service
	Ledger    *ledger.Service
	Notifier  *notifier.Notifier
	Board     *board.Service
	Sweeper   *lifecycle.Sweeper
	Scheduler *lifecycle.Scheduler

	Publications *publish.Service
	Wizard       *publish.Wizard
	Dispatcher   *publish.Dispatcher

	closers []func()
}

/*
New connects every backing service and wires the engine.

Description: the publish poller is only scheduled when the session-based
target has credentials and a page bucket is configured. Scheduling still
works without it; tickets wait in the queue.

Returns:
  - *App: call [App.Close] when done
  - error: the first connection or construction failure
*/
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	a := &App{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if err := a.connect(ctx); err != nil {
		return nil, err
	}

	tokens, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	if err != nil {
		return nil, fmt.Errorf("app: token service: %w", err)
	}
	a.Tokens = tokens

	a.wireWorkflow()

	jobs := a.Sweeper.Jobs(lifecycle.Intervals{
		Reminders:  cfg.ReminderSweepInterval,
		Inactivity: cfg.InactivitySweepInterval,
		Board:      cfg.BoardSweepInterval,
	})

	publishJob, err := a.wirePublishing(ctx)
	if err != nil {
		return nil, err
	}
	if publishJob != nil {
		jobs = append(jobs, *publishJob)
	}

	a.Scheduler = lifecycle.NewScheduler(redisstore.NewLeaser(a.Redis), logger, jobs,
		lifecycle.WithTracer(a.Telemetry.Tracer("lifecycle")))
	return a, nil
}

func (a *App) connect(ctx context.Context) error {
	cfg := a.Config

	pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, a.Logger)
	if err != nil {
		return fmt.Errorf("app: postgres: %w", err)
	}
	a.Pool = pool
	a.closers = append(a.closers, pool.Close)

	client, err := redisstore.NewClient(ctx, cfg.RedisURL, a.Logger)
	if err != nil {
		return fmt.Errorf("app: redis: %w", err)
	}
	a.Redis = client
	a.closers = append(a.closers, func() {
		if err := client.Close(); err != nil {
			a.Logger.Error("redis_close_failed", slog.Any("error", err))
		}
	})

	discord, err := messaging.NewDiscord(cfg.DiscordToken, cfg.DiscordGuildID)
	if err != nil {
		return fmt.Errorf("app: discord: %w", err)
	}
	a.Messenger = discord

	provider, err := telemetry.New(ctx, telemetry.Config{
		ServiceName:    constants.AppName,
		ServiceVersion: constants.AppVersion,
		Environment:    cfg.Environment,
		Endpoint:       cfg.OTLPEndpoint,
		Insecure:       cfg.IsDevelopment(),
	}, a.Logger)
	if err != nil {
		return fmt.Errorf("app: telemetry: %w", err)
	}
	a.Telemetry = provider
	a.closers = append(a.closers, func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			a.Logger.Error("telemetry_shutdown_failed", slog.Any("error", err))
		}
	})
	return nil
}

func (a *App) wireWorkflow() {
	cfg, logger := a.Config, a.Logger

	seriesRepo := series.NewRepository(a.Pool)
	chapterRepo := chapter.NewRepository(a.Pool)
	assignmentRepo := ledger.NewRepository(a.Pool)
	rosterRepo := roster.NewRepository(a.Pool)

	a.Roster = roster.NewService(rosterRepo, a.Messenger, roster.RoleMap{
		Trial:        cfg.RoleTrialID,
		Probationary: cfg.RoleProbationID,
		Full:         cfg.RoleFullID,
		Leadership:   cfg.LeadershipRoleIDs,
	}, logger)

	a.Ledger = ledger.NewService(assignmentRepo, chapterRepo, seriesRepo, rosterRepo, logger,
		ledger.WithActivityRecorder(a.Roster),
		ledger.WithRoleSource(a.Roster),
		ledger.WithMessenger(a.Messenger),
	)

	a.Notifier = notifier.New(a.Ledger, assignmentRepo, rosterRepo, a.Messenger,
		notifier.Channels{Workflow: cfg.WorkflowChannelID, Lead: cfg.LeadChannelID}, logger,
		notifier.WithTierSource(a.Roster),
	)
	a.Ledger.OnCompletion(a.Notifier)

	a.Board = board.NewService(board.Deps{
		Repo:        board.NewRepository(a.Pool),
		Claimer:     a.Ledger,
		Assignments: assignmentRepo,
		Chapters:    chapterRepo,
		Series:      seriesRepo,
		Roster:      a.Roster,
		Messenger:   a.Messenger,
	}, cfg.BoardPostTTL, logger)
	a.Ledger.OnClaim(a.Board)

	a.Chapters = chapter.NewService(chapterRepo, seriesRepo, logger, chapter.WithArchiveObserver(a.Board))
	a.Series = series.NewService(seriesRepo, a.Chapters, logger)

	a.Sweeper = lifecycle.NewSweeper(lifecycle.Deps{
		Roster:          a.Roster,
		Assignments:     assignmentRepo,
		Progress:        a.Ledger,
		Board:           a.Board,
		Messenger:       a.Messenger,
		ReminderChannel: cfg.WorkflowChannelID,
	}, logger)

	a.Publications = publish.NewService(publish.NewRepository(a.Pool), seriesRepo, chapterRepo, cfg.ReportChannel(), logger)
	a.Wizard = publish.NewWizard(publish.NewDraftStore(a.Redis), a.Publications, logger)
}

func (a *App) wirePublishing(ctx context.Context) (*lifecycle.Job, error) {
	cfg, logger := a.Config, a.Logger

	if !cfg.PublishTargetConfigured() || cfg.S3Bucket == "" {
		logger.Warn("publish_poller_disabled",
			slog.Bool("target_configured", cfg.PublishTargetConfigured()),
			slog.Bool("bucket_configured", cfg.S3Bucket != ""),
		)
		return nil, nil
	}

	s3Client, err := objectstore.NewClient(ctx, objectstore.Config{
		Bucket:   cfg.S3Bucket,
		Region:   cfg.S3Region,
		Endpoint: cfg.S3Endpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("app: object store: %w", err)
	}

	target := mangadex.New(mangadex.Config{
		APIURL:       cfg.MangaDexAPIURL,
		AuthURL:      cfg.MangaDexAuthURL,
		ClientID:     cfg.MangaDexClientID,
		ClientSecret: cfg.MangaDexClientSecret,
		Username:     cfg.MangaDexUsername,
		Password:     cfg.MangaDexPassword,
		RPS:          cfg.MangaDexRPS,
	})

	opts := []publish.ExecutorOption{publish.WithTracer(a.Telemetry.Tracer("publish"))}
	if cfg.MirrorBucket != "" {
		opts = append(opts, publish.WithMirror(objectstore.NewMirror(objectstore.NewBucket(s3Client, cfg.MirrorBucket))))
	}

	executor := publish.NewExecutor(target, objectstore.NewBucket(s3Client, cfg.S3Bucket), series.NewRepository(a.Pool), a.Messenger,
		publish.ExecutorConfig{StepTimeout: cfg.PublishStepTimeout, MirrorGroup: cfg.MirrorGroup},
		logger, opts...)

	a.Dispatcher = publish.NewDispatcher(publish.NewRepository(a.Pool), executor, logger, nil)
	return &lifecycle.Job{
		Name:     JobPublish,
		Interval: cfg.PublishPollInterval,
		Run: func(ctx context.Context) error {
			_, err := a.Dispatcher.Tick(ctx)
			return err
		},
	}, nil
}

// Ready checks the relational store and the cache.
func (a *App) Ready(ctx context.Context) error {
	return errors.Join(
		pgstore.Ping(ctx, a.Pool),
		redisstore.Ping(ctx, a.Redis),
	)
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
