// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package lifecycle runs the periodic sweeps of the engine.

  - Reminders nudge collaborators about open, workable assignments.
  - Inactivity retires or removes idle collaborators by tier.
  - Board expiry retracts claim-board postings past their TTL.

Each tick rebuilds its work list from the store. A failure on one
collaborator or posting is logged and the sweep moves on to the next.
*/
package lifecycle

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/milize/internal/core/ledger"
	"github.com/taibuivan/milize/internal/core/roster"
	"github.com/taibuivan/milize/internal/platform/messaging"
)

// Roster is the part of the roster the sweeps drive.
type Roster interface {
	ListWithReminders(ctx context.Context) ([]*roster.Member, error)
	List(ctx context.Context) ([]*roster.Member, error)
	ListRetired(ctx context.Context) ([]*roster.RetiredMember, error)
	CurrentRoles(ctx context.Context, discordID string) ([]string, error)
	Roles() roster.RoleMap
	Retire(ctx context.Context, member *roster.Member, roles []string, tier roster.Tier) error
	Remove(ctx context.Context, member *roster.Member, roles []string) error
	RemoveRetired(ctx context.Context, discordID string) error
	StampEscalation(ctx context.Context, discordID string, at time.Time) error
}

// ProgressLoader loads the pipeline picture of a work item.
type ProgressLoader interface {
	Progress(ctx context.Context, chapterID string) (*ledger.Progress, error)
}

// BoardSweeper retracts expired claim-board postings.
type BoardSweeper interface {
	SweepExpired(ctx context.Context) (int, error)
}

// Deps are the collaborators of a [Sweeper].
type Deps struct {
	Roster      Roster
	Assignments ledger.Repository
	Progress    ProgressLoader
	Board       BoardSweeper
	Messenger   messaging.Messenger

	// ReminderChannel receives reminder mentions.
	ReminderChannel string
}

// Sweeper owns the three sweeps.
type Sweeper struct {
	deps   Deps
	logger *slog.Logger
	now    func() time.Time
}

// Option customises a [Sweeper].
type Option func(*Sweeper)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(sweeper *Sweeper) { sweeper.now = now }
}

// NewSweeper constructs a [Sweeper].
func NewSweeper(deps Deps, logger *slog.Logger, opts ...Option) *Sweeper {
	sweeper := &Sweeper{deps: deps, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(sweeper)
	}
	return sweeper
}

// Intervals sets how often each sweep ticks.
type Intervals struct {
	Reminders  time.Duration
	Inactivity time.Duration
	Board      time.Duration
}

// Sweep names, also used as lease names.
const (
	JobReminders  = "reminders"
	JobInactivity = "inactivity"
	JobBoard      = "board"
)

// Jobs returns the sweeps as schedulable jobs.
func (sweeper *Sweeper) Jobs(intervals Intervals) []Job {
	return []Job{
		{Name: JobReminders, Interval: intervals.Reminders, Run: func(ctx context.Context) error {
			_, err := sweeper.Reminders(ctx)
			return err
		}},
		{Name: JobInactivity, Interval: intervals.Inactivity, Run: func(ctx context.Context) error {
			_, err := sweeper.Inactivity(ctx)
			return err
		}},
		{Name: JobBoard, Interval: intervals.Board, Run: func(ctx context.Context) error {
			_, err := sweeper.BoardExpiry(ctx)
			return err
		}},
	}
}

// BoardExpiry retracts claim-board postings older than the board TTL.
func (sweeper *Sweeper) BoardExpiry(ctx context.Context) (int, error) {
	sweeper.logger.Info("board_sweep_started")

	removed, err := sweeper.deps.Board.SweepExpired(ctx)
	if err != nil {
		sweeper.logger.Error("board_sweep_failed", slog.Any("error", err))
		return removed, err
	}

	sweeper.logger.Info("board_sweep_finished", slog.Int("removed", removed))
	return removed, nil
}
