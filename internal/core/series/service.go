// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package series

import (
	"context"
	"log/slog"

	"github.com/taibuivan/milize/internal/platform/apperr"
	"github.com/taibuivan/milize/internal/platform/sec"
)

// ChapterArchiver archives every live work item of a series.
type ChapterArchiver interface {
	ArchiveAll(ctx context.Context, seriesID string) (int, error)
}

// # Service Layer

// Service orchestrates series lookups and the archive cascade.
type Service struct {
	repo     Repository
	chapters ChapterArchiver
	logger   *slog.Logger
}

// NewService constructs a new [Service].
func NewService(repo Repository, chapters ChapterArchiver, logger *slog.Logger) *Service {
	return &Service{repo: repo, chapters: chapters, logger: logger}
}

// Get returns a series by id.
func (service *Service) Get(ctx context.Context, id string) (*Series, error) {
	return service.repo.FindByID(ctx, id)
}

// Stages returns the series stages of a series in pipeline order.
func (service *Service) Stages(ctx context.Context, seriesID string) ([]*SeriesJob, error) {
	if _, err := service.repo.FindByID(ctx, seriesID); err != nil {
		return nil, err
	}
	return service.repo.ListSeriesJobs(ctx, seriesID)
}

/*
Archive hides a series and archives all of its live work items.

Description: The series flag is set first so no new work item can be
created while the cascade runs. Each work item moves its assignments to the
archive table in its own transaction.

Returns:
  - int: Number of work items archived by the cascade
  - error: apperr.Forbidden, apperr.NotFound or store failures
*/
func (service *Service) Archive(ctx context.Context, actor sec.Actor, seriesID string) (int, error) {
	if !actor.CanManage() {
		return 0, apperr.Forbidden("Archiving a series requires project manager authority")
	}

	if err := service.repo.SetArchived(ctx, seriesID, true); err != nil {
		return 0, err
	}

	archived, err := service.chapters.ArchiveAll(ctx, seriesID)
	if err != nil {
		return archived, err
	}

	service.logger.Info("series_archived",
		slog.String("series_id", seriesID),
		slog.Int("chapters_archived", archived),
		slog.String("actor", actor.DiscordID),
	)
	return archived, nil
}

// Unarchive clears the series flag. Work items stay archived until restored one by one.
func (service *Service) Unarchive(ctx context.Context, actor sec.Actor, seriesID string) error {
	if !actor.CanManage() {
		return apperr.Forbidden("Unarchiving a series requires project manager authority")
	}

	if err := service.repo.SetArchived(ctx, seriesID, false); err != nil {
		return err
	}

	service.logger.Info("series_unarchived",
		slog.String("series_id", seriesID),
		slog.String("actor", actor.DiscordID),
	)
	return nil
}
