// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/taibuivan/milize/internal/platform/constants"
	"github.com/taibuivan/milize/internal/platform/telemetry"
)

// Job is one periodic task.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Leaser grants exclusive, expiring leases by name.
type Leaser interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (release func(), ok bool, err error)
}

/*
Scheduler ticks every job on its own goroutine.

A run only starts after taking the job's lease, so the same job never
overlaps itself, neither within this process nor across replicas. A tick
that finds the lease held is skipped.
*/
type Scheduler struct {
	jobs   map[string]Job
	order  []string
	leaser Leaser
	tracer trace.Tracer
	logger *slog.Logger
	wg     sync.WaitGroup
}

// SchedulerOption customises a [Scheduler].
type SchedulerOption func(*Scheduler)

// WithTracer records one span per run.
func WithTracer(tracer trace.Tracer) SchedulerOption {
	return func(scheduler *Scheduler) { scheduler.tracer = tracer }
}

// NewScheduler constructs a [Scheduler]. Job names must be unique.
func NewScheduler(leaser Leaser, logger *slog.Logger, jobs []Job, opts ...SchedulerOption) *Scheduler {
	scheduler := &Scheduler{
		jobs:   make(map[string]Job, len(jobs)),
		leaser: leaser,
		tracer: noop.NewTracerProvider().Tracer("lifecycle"),
		logger: logger,
	}
	for _, job := range jobs {
		scheduler.jobs[job.Name] = job
		scheduler.order = append(scheduler.order, job.Name)
	}
	for _, opt := range opts {
		opt(scheduler)
	}
	return scheduler
}

// Start launches the tickers. They stop when ctx is cancelled.
func (scheduler *Scheduler) Start(ctx context.Context) {
	for _, name := range scheduler.order {
		job := scheduler.jobs[name]
		scheduler.wg.Add(1)
		go func() {
			defer scheduler.wg.Done()
			ticker := time.NewTicker(job.Interval)
			defer ticker.Stop()

			scheduler.logger.Info("scheduler_job_started", slog.String("job", job.Name), slog.Duration("interval", job.Interval))
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if _, err := scheduler.run(ctx, job); err != nil {
						scheduler.logger.Error("scheduler_job_failed", slog.String("job", job.Name), slog.Any("error", err))
					}
				}
			}
		}()
	}
}

// Wait blocks until every ticker returned.
func (scheduler *Scheduler) Wait() {
	scheduler.wg.Wait()
}

/*
RunOnce runs the named job immediately under its lease.

Returns:
  - bool: false when another run held the lease and nothing ran
  - error: unknown job, lease failure or the job's own error
*/
func (scheduler *Scheduler) RunOnce(ctx context.Context, name string) (bool, error) {
	job, ok := scheduler.jobs[name]
	if !ok {
		return false, fmt.Errorf("lifecycle: unknown job %q", name)
	}
	return scheduler.run(ctx, job)
}

// Names lists the registered jobs in registration order.
func (scheduler *Scheduler) Names() []string {
	return append([]string(nil), scheduler.order...)
}

func (scheduler *Scheduler) run(ctx context.Context, job Job) (ran bool, err error) {
	release, ok, err := scheduler.leaser.Acquire(ctx, job.Name, constants.SweepLeaseTTL)
	if err != nil {
		return false, err
	}
	if !ok {
		scheduler.logger.Info("scheduler_job_skipped", slog.String("job", job.Name))
		return false, nil
	}
	defer release()

	ctx, span := scheduler.tracer.Start(ctx, "lifecycle."+job.Name)
	started := time.Now()
	defer func() {
		telemetry.Finish(span, err, attribute.Int64("duration_ms", time.Since(started).Milliseconds()))
	}()

	return true, job.Run(ctx)
}
