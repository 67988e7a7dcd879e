// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package publish

import (
	"context"
	"log/slog"
	"time"
)

// Runner executes one dequeued publication.
type Runner interface {
	Execute(ctx context.Context, publication *Publication) *Result
}

// Dispatcher is the single consumer of the publication queue.
type Dispatcher struct {
	repo   Repository
	runner Runner
	logger *slog.Logger
	now    func() time.Time
}

// NewDispatcher constructs a [Dispatcher].
func NewDispatcher(repo Repository, runner Runner, logger *slog.Logger, now func() time.Time) *Dispatcher {
	if now == nil {
		now = time.Now
	}
	return &Dispatcher{repo: repo, runner: runner, logger: logger, now: now}
}

/*
Tick dequeues the earliest due publication, if any, and runs it.

Description: the ticket is gone from the queue before execution starts, so
a crash or a failed step never causes a second delivery. At most one
publication runs per tick; anything else due waits for the next tick.

Returns:
  - *Result: nil when nothing was due
  - error: only when the queue could not be read
*/
func (dispatcher *Dispatcher) Tick(ctx context.Context) (*Result, error) {
	publication, err := dispatcher.repo.DequeueDue(ctx, dispatcher.now().UTC())
	if err != nil {
		dispatcher.logger.Error("publish_dequeue_failed", slog.Any("error", err))
		return nil, err
	}
	if publication == nil {
		return nil, nil
	}

	dispatcher.logger.Info("publication_dequeued",
		slog.String("publication_id", publication.ID),
		slog.Time("due_at", publication.DueAt),
	)
	return dispatcher.runner.Execute(ctx, publication), nil
}
