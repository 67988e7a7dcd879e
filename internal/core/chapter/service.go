// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/milize/internal/core/series"
	"github.com/taibuivan/milize/internal/platform/apperr"
	"github.com/taibuivan/milize/internal/platform/constants"
	"github.com/taibuivan/milize/internal/platform/sec"
	"github.com/taibuivan/milize/internal/platform/validate"
	"github.com/taibuivan/milize/pkg/uuid"
)

const (
	FieldName      = "name"
	FieldDriveLink = "drive_link"
)

// ArchiveObserver is told after a work item leaves the live table.
type ArchiveObserver interface {
	ChapterArchived(ctx context.Context, chapter *Chapter)
}

// # Service Layer

// Service orchestrates work item creation and archival.
type Service struct {
	repo     Repository
	series   series.Repository
	observer ArchiveObserver
	logger   *slog.Logger
	now      func() time.Time
}

// Option customises a [Service].
type Option func(*Service)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(service *Service) { service.now = now }
}

// WithArchiveObserver registers the hook run after each archive.
func WithArchiveObserver(observer ArchiveObserver) Option {
	return func(service *Service) { service.observer = observer }
}

// NewService constructs a new [Service].
func NewService(repo Repository, seriesRepo series.Repository, logger *slog.Logger, opts ...Option) *Service {
	service := &Service{repo: repo, series: seriesRepo, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

/*
Create adds a work item to a live series.

Returns:
  - *Chapter: The created work item
  - error: ARCHIVED, CAP_REACHED, apperr.Conflict on a duplicate name
*/
func (service *Service) Create(ctx context.Context, actor sec.Actor, seriesID, name string, driveLink *string) (*Chapter, error) {
	if !actor.CanManage() {
		return nil, apperr.Forbidden("Creating chapters requires project manager authority")
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, name).MaxLen(FieldName, name, 100)
	if driveLink != nil {
		validator.MaxLen(FieldDriveLink, *driveLink, 500)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	owner, err := service.series.FindByID(ctx, seriesID)
	if err != nil {
		return nil, err
	}
	if owner.IsArchived {
		return nil, apperr.PolicyViolation(apperr.CodeArchived, "Series is archived")
	}

	chapter := &Chapter{
		ID:        uuid.New(),
		SeriesID:  seriesID,
		Name:      name,
		DriveLink: driveLink,
		CreatedAt: service.now().UTC(),
	}

	created, err := service.repo.Create(ctx, chapter, constants.MaxLiveChapters)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, apperr.PolicyViolation(apperr.CodeCapReached, "Series already holds the maximum number of live chapters")
	}

	service.logger.Info("chapter_created",
		slog.String("chapter_id", chapter.ID),
		slog.String("series_id", seriesID),
		slog.String("actor", actor.DiscordID),
	)
	return chapter, nil
}

// Get returns a work item by id.
func (service *Service) Get(ctx context.Context, id string) (*Chapter, error) {
	return service.repo.FindByID(ctx, id)
}

// ListLive returns the unarchived work items of a series.
func (service *Service) ListLive(ctx context.Context, seriesID string) ([]*Chapter, error) {
	return service.repo.ListLive(ctx, seriesID)
}

/*
Archive moves a work item and its assignments out of the live tables.
Archiving an archived work item is a no-op.
*/
func (service *Service) Archive(ctx context.Context, actor sec.Actor, id string) error {
	if !actor.CanManage() {
		return apperr.Forbidden("Archiving chapters requires project manager authority")
	}

	chapter, err := service.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	return service.archive(ctx, chapter)
}

func (service *Service) archive(ctx context.Context, chapter *Chapter) error {
	moved, err := service.repo.Archive(ctx, chapter.ID)
	if err != nil {
		return err
	}
	if !moved {
		return nil
	}

	chapter.IsArchived = true
	if service.observer != nil {
		service.observer.ChapterArchived(ctx, chapter)
	}

	service.logger.Info("chapter_archived",
		slog.String("chapter_id", chapter.ID),
		slog.String("series_id", chapter.SeriesID),
	)
	return nil
}

/*
Unarchive restores a work item and its assignments.

Returns:
  - error: ARCHIVED when the series itself is archived, CAP_REACHED when the series is full
*/
func (service *Service) Unarchive(ctx context.Context, actor sec.Actor, id string) error {
	if !actor.CanManage() {
		return apperr.Forbidden("Unarchiving chapters requires project manager authority")
	}

	chapter, err := service.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !chapter.IsArchived {
		return nil
	}

	owner, err := service.series.FindByID(ctx, chapter.SeriesID)
	if err != nil {
		return err
	}
	if owner.IsArchived {
		return apperr.PolicyViolation(apperr.CodeArchived, "Series is archived")
	}

	restored, err := service.repo.Unarchive(ctx, id, constants.MaxLiveChapters)
	if err != nil {
		return err
	}
	if !restored {
		return apperr.PolicyViolation(apperr.CodeCapReached, "Series already holds the maximum number of live chapters")
	}

	service.logger.Info("chapter_unarchived",
		slog.String("chapter_id", id),
		slog.String("actor", actor.DiscordID),
	)
	return nil
}

// ArchiveAll archives every live work item of a series. It implements [series.ChapterArchiver].
func (service *Service) ArchiveAll(ctx context.Context, seriesID string) (int, error) {
	chapters, err := service.repo.ListLive(ctx, seriesID)
	if err != nil {
		return 0, err
	}

	archived := 0
	for _, chapter := range chapters {
		if err := service.archive(ctx, chapter); err != nil {
			return archived, err
		}
		archived++
	}
	return archived, nil
}
