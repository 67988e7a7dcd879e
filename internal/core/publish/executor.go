// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/taibuivan/milize/internal/core/series"
	"github.com/taibuivan/milize/internal/platform/constants"
	"github.com/taibuivan/milize/internal/platform/mangadex"
	"github.com/taibuivan/milize/internal/platform/messaging"
	"github.com/taibuivan/milize/internal/platform/objectstore"
	"github.com/taibuivan/milize/internal/platform/telemetry"
	"github.com/taibuivan/milize/pkg/slice"
)

// Target is the session-based publish target.
type Target interface {
	OpenSession(ctx context.Context) (string, bool, error)
	AbandonSession(ctx context.Context, sessionID string) error
	BeginSession(ctx context.Context, mangaID string, groupIDs []string) (string, error)
	UploadBatch(ctx context.Context, sessionID string, files []mangadex.File) ([]mangadex.UploadedFile, error)
	Commit(ctx context.Context, sessionID string, draft mangadex.ChapterDraft, pageOrder []string) (string, error)
}

// Source lists and opens page images.
type Source interface {
	List(ctx context.Context, prefix string) ([]string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// Mirror is the metadata-document target.
type Mirror interface {
	UpsertChapter(ctx context.Context, key, title, number string, chapter objectstore.MirrorChapter) error
}

// SeriesFinder resolves the series of a publication.
type SeriesFinder interface {
	FindByID(ctx context.Context, id string) (*series.Series, error)
}

var errBlocked = errors.New("publish target is blocked for this series")

var pageTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
}

// ExecutorConfig holds the executor settings.
type ExecutorConfig struct {
	// StepTimeout bounds every external call. A timeout fails the step.
	StepTimeout time.Duration

	// MirrorGroup is the credit shown in mirror entries.
	MirrorGroup string
}

// Executor runs one publication through its steps.
type Executor struct {
	target    Target
	source    Source
	mirror    Mirror
	series    SeriesFinder
	messenger messaging.Messenger
	config    ExecutorConfig
	tracer    trace.Tracer
	logger    *slog.Logger
	now       func() time.Time
}

// ExecutorOption customises an [Executor].
type ExecutorOption func(*Executor)

// WithMirror enables the mirror step.
func WithMirror(mirror Mirror) ExecutorOption {
	return func(executor *Executor) { executor.mirror = mirror }
}

// WithTracer records a span per execution and per step.
func WithTracer(tracer trace.Tracer) ExecutorOption {
	return func(executor *Executor) { executor.tracer = tracer }
}

// WithExecutorClock replaces the wall clock.
func WithExecutorClock(now func() time.Time) ExecutorOption {
	return func(executor *Executor) { executor.now = now }
}

// NewExecutor constructs an [Executor].
func NewExecutor(target Target, source Source, seriesFinder SeriesFinder, messenger messaging.Messenger, config ExecutorConfig, logger *slog.Logger, opts ...ExecutorOption) *Executor {
	executor := &Executor{
		target:    target,
		source:    source,
		series:    seriesFinder,
		messenger: messenger,
		config:    config,
		tracer:    noop.NewTracerProvider().Tracer("publish"),
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(executor)
	}
	return executor
}

/*
Execute runs the publication and reports the terminal status.

Description: steps run in order and the first failure ends the run. Pages
already uploaded are left in the remote session; the next run abandons it
before beginning a new one. Nothing is retried.
*/
func (executor *Executor) Execute(ctx context.Context, publication *Publication) *Result {
	ctx, span := executor.tracer.Start(ctx, "publish.execute",
		trace.WithAttributes(attribute.String("publication_id", publication.ID)))

	result := &Result{Publication: publication}
	title := publication.SeriesID
	owner, err := executor.series.FindByID(ctx, publication.SeriesID)
	if err == nil {
		title = owner.Name
	}

	var sessionID string
	var pageOrder []string
	steps := []step{
		{StepSession, func(ctx context.Context) (err error) {
			if owner != nil && owner.Blocks(series.TargetMangaDex) {
				return errBlocked
			}
			sessionID, err = executor.openSession(ctx, publication)
			return err
		}},
		{StepUpload, func(ctx context.Context) (err error) {
			pageOrder, err = executor.upload(ctx, sessionID, publication.SourcePrefix)
			result.Pages = len(pageOrder)
			return err
		}},
		{StepCommit, func(ctx context.Context) (err error) {
			result.ChapterID, err = executor.commit(ctx, sessionID, publication, pageOrder)
			return err
		}},
	}
	if publication.MirrorKey != nil && executor.mirror != nil && (owner == nil || !owner.Blocks(series.TargetMirror)) {
		steps = append(steps, step{StepMirror, func(ctx context.Context) error {
			return executor.updateMirror(ctx, publication, title, result.ChapterID)
		}})
	}

	for _, next := range steps {
		if err := executor.runStep(ctx, next); err != nil {
			result.FailedStep = next.name
			result.Err = err
			break
		}
	}

	executor.report(ctx, result, title)
	telemetry.Finish(span, result.Err,
		attribute.String("failed_step", result.FailedStep),
		attribute.Int("pages", result.Pages),
	)
	return result
}

type step struct {
	name string
	run  func(ctx context.Context) error
}

func (executor *Executor) runStep(ctx context.Context, next step) (err error) {
	ctx, span := executor.tracer.Start(ctx, "publish."+next.name)
	defer func() { telemetry.Finish(span, err) }()
	return next.run(ctx)
}

// bounded runs one external call under the step timeout.
func (executor *Executor) bounded(ctx context.Context, call func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, executor.config.StepTimeout)
	defer cancel()
	return call(ctx)
}

func (executor *Executor) openSession(ctx context.Context, publication *Publication) (string, error) {
	var stale string
	var open bool
	if err := executor.bounded(ctx, func(ctx context.Context) (err error) {
		stale, open, err = executor.target.OpenSession(ctx)
		return err
	}); err != nil {
		return "", fmt.Errorf("check open session: %w", err)
	}

	if open {
		if err := executor.bounded(ctx, func(ctx context.Context) error {
			return executor.target.AbandonSession(ctx, stale)
		}); err != nil {
			return "", fmt.Errorf("abandon session %s: %w", stale, err)
		}
		executor.logger.Info("publish_stale_session_abandoned", slog.String("session_id", stale))
	}

	var sessionID string
	err := executor.bounded(ctx, func(ctx context.Context) (err error) {
		sessionID, err = executor.target.BeginSession(ctx, publication.MangaID, publication.GroupIDs)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("begin session: %w", err)
	}
	return sessionID, nil
}

// pages returns the image keys under prefix, sorted by file name.
func (executor *Executor) pages(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	if err := executor.bounded(ctx, func(ctx context.Context) (err error) {
		keys, err = executor.source.List(ctx, prefix)
		return err
	}); err != nil {
		return nil, err
	}

	keys = slice.Filter(keys, func(key string) bool {
		_, ok := pageTypes[extension(key)]
		return ok
	})
	sort.Slice(keys, func(i, j int) bool { return path.Base(keys[i]) < path.Base(keys[j]) })
	return keys, nil
}

func extension(key string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(key), "."))
}

/*
upload sends the pages in batches and returns the uploaded ids in file name
order. A batch the target only partly accepts fails the step.
*/
func (executor *Executor) upload(ctx context.Context, sessionID, prefix string) ([]string, error) {
	keys, err := executor.pages(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("no page images under %q", prefix)
	}

	var uploaded []mangadex.UploadedFile
	for index, batch := range slice.Chunk(keys, constants.PageBatchSize) {
		accepted, err := executor.uploadBatch(ctx, sessionID, batch)
		if err != nil {
			return nil, fmt.Errorf("batch %d: %w", index+1, err)
		}
		if len(accepted) != len(batch) {
			return nil, fmt.Errorf("batch %d: target accepted %d of %d pages", index+1, len(accepted), len(batch))
		}
		uploaded = append(uploaded, accepted...)
	}

	sort.Slice(uploaded, func(i, j int) bool { return uploaded[i].Filename < uploaded[j].Filename })
	return slice.Map(uploaded, func(file mangadex.UploadedFile) string { return file.ID }), nil
}

func (executor *Executor) uploadBatch(ctx context.Context, sessionID string, keys []string) ([]mangadex.UploadedFile, error) {
	var accepted []mangadex.UploadedFile
	err := executor.bounded(ctx, func(ctx context.Context) error {
		files := make([]mangadex.File, 0, len(keys))
		var opened []io.ReadCloser
		defer func() {
			for _, body := range opened {
				_ = body.Close()
			}
		}()

		for _, key := range keys {
			body, err := executor.source.Open(ctx, key)
			if err != nil {
				return fmt.Errorf("open %s: %w", key, err)
			}
			opened = append(opened, body)
			files = append(files, mangadex.File{
				Name:        path.Base(key),
				ContentType: pageTypes[extension(key)],
				Body:        body,
			})
		}

		var err error
		accepted, err = executor.target.UploadBatch(ctx, sessionID, files)
		return err
	})
	return accepted, err
}

func (executor *Executor) commit(ctx context.Context, sessionID string, publication *Publication, pageOrder []string) (string, error) {
	draft := mangadex.ChapterDraft{
		Volume:             publication.Volume,
		Chapter:            publication.ChapterNumber,
		TranslatedLanguage: publication.Language,
		Title:              publication.Title,
	}

	var chapterID string
	err := executor.bounded(ctx, func(ctx context.Context) (err error) {
		chapterID, err = executor.target.Commit(ctx, sessionID, draft, pageOrder)
		return err
	})
	return chapterID, err
}

func (executor *Executor) updateMirror(ctx context.Context, publication *Publication, title, chapterID string) error {
	entry := objectstore.MirrorChapter{
		Groups:      map[string]string{executor.config.MirrorGroup: "/proxy/api/mangadex/chapter/" + chapterID + "/"},
		LastUpdated: fmt.Sprintf("%d", executor.now().Unix()),
	}
	if publication.Title != nil {
		entry.Title = *publication.Title
	}
	if publication.Volume != nil {
		entry.Volume = *publication.Volume
	}

	return executor.bounded(ctx, func(ctx context.Context) error {
		return executor.mirror.UpsertChapter(ctx, *publication.MirrorKey, title, publication.ChapterNumber, entry)
	})
}

// report posts the terminal status. Delivery failures are only logged.
func (executor *Executor) report(ctx context.Context, result *Result, title string) {
	publication := result.Publication

	var notice string
	if result.Succeeded() {
		executor.logger.Info("publication_succeeded",
			slog.String("publication_id", publication.ID),
			slog.String("remote_chapter_id", result.ChapterID),
			slog.Int("pages", result.Pages),
		)
		notice = fmt.Sprintf("Published **%s** chapter %s (%d pages).", title, publication.ChapterNumber, result.Pages)
	} else {
		executor.logger.Warn("publication_failed",
			slog.String("publication_id", publication.ID),
			slog.String("step", result.FailedStep),
			slog.Any("error", result.Err),
		)
		notice = fmt.Sprintf("%s publishing **%s** chapter %s failed at step `%s`: %v",
			messaging.Mention(publication.RequestedBy), title, publication.ChapterNumber, result.FailedStep, result.Err)
	}

	if publication.ReportChannelID == "" {
		return
	}
	if _, err := executor.messenger.Send(context.WithoutCancel(ctx), publication.ReportChannelID, notice); err != nil {
		executor.logger.Warn("publication_report_failed", slog.String("publication_id", publication.ID), slog.Any("error", err))
	}
}
