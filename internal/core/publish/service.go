// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package publish

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/milize/internal/core/chapter"
	"github.com/taibuivan/milize/internal/core/series"
	"github.com/taibuivan/milize/internal/platform/apperr"
	"github.com/taibuivan/milize/internal/platform/sec"
	"github.com/taibuivan/milize/internal/platform/validate"
	"github.com/taibuivan/milize/pkg/uuid"
)

const (
	FieldSeriesID      = "series_id"
	FieldChapterID     = "chapter_id"
	FieldGroupIDs      = "group_ids"
	FieldChapterNumber = "chapter_number"
	FieldLanguage      = "language"
	FieldSourcePrefix  = "source_prefix"
	FieldDueAt         = "due_at"
	FieldTitle         = "title"
)

// Request describes a publication to queue.
type Request struct {
	SeriesID        string    `json:"series_id"`
	ChapterID       *string   `json:"chapter_id"`
	GroupIDs        []string  `json:"group_ids"`
	Volume          *string   `json:"volume"`
	ChapterNumber   string    `json:"chapter_number"`
	Title           *string   `json:"title"`
	Language        string    `json:"language"`
	SourcePrefix    string    `json:"source_prefix"`
	ReportChannelID string    `json:"report_channel_id"`
	DueAt           time.Time `json:"due_at"`
}

// # Service Layer

// Service queues and cancels publications.
type Service struct {
	repo          Repository
	series        series.Repository
	chapters      chapter.Repository
	reportChannel string
	logger        *slog.Logger
	now           func() time.Time
}

// Option customises a [Service].
type Option func(*Service)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(service *Service) { service.now = now }
}

// NewService constructs a [Service]. reportChannel receives status reports when a request names none.
func NewService(repo Repository, seriesRepo series.Repository, chapters chapter.Repository, reportChannel string, logger *slog.Logger, opts ...Option) *Service {
	service := &Service{
		repo:          repo,
		series:        seriesRepo,
		chapters:      chapters,
		reportChannel: reportChannel,
		logger:        logger,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

/*
Schedule queues a publication. It needs project manager authority.

Description: the manga id and the mirror document come from the series. A
series that blocks the session-based target refuses scheduling; one that
only blocks the mirror is published without the mirror step.

Returns:
  - *Publication: the queued ticket
  - error: FORBIDDEN, VALIDATION_ERROR, ARCHIVED, POLICY_VIOLATION, NotFound
*/
func (service *Service) Schedule(ctx context.Context, actor sec.Actor, input Request) (*Publication, error) {
	if !actor.CanManage() {
		return nil, apperr.Forbidden("Scheduling publications requires project manager authority")
	}

	if input.Language == "" {
		input.Language = "en"
	}
	now := service.now().UTC()

	validator := &validate.Validator{}
	validator.Required(FieldSeriesID, input.SeriesID)
	validator.Required(FieldChapterNumber, input.ChapterNumber).MaxLen(FieldChapterNumber, input.ChapterNumber, 16)
	validator.MaxLen(FieldLanguage, input.Language, 8)
	validator.Required(FieldSourcePrefix, input.SourcePrefix)
	validator.NotEmpty(FieldGroupIDs, len(input.GroupIDs))
	validator.Custom(FieldDueAt, input.DueAt.Before(now.Add(-time.Minute)), "Must not be in the past")
	if input.Title != nil {
		validator.MaxLen(FieldTitle, *input.Title, 255)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	owner, err := service.series.FindByID(ctx, input.SeriesID)
	if err != nil {
		return nil, err
	}
	if owner.IsArchived {
		return nil, apperr.PolicyViolation(apperr.CodeArchived, "Series is archived")
	}
	if owner.Blocks(series.TargetMangaDex) {
		return nil, apperr.PolicyViolation(apperr.CodePolicy, "Publishing is blocked for this series")
	}
	if owner.MangaDexID == nil {
		return nil, apperr.PolicyViolation(apperr.CodePolicy, "Series has no publish target id")
	}

	if input.ChapterID != nil {
		ch, err := service.chapters.FindByID(ctx, *input.ChapterID)
		if err != nil {
			return nil, err
		}
		if ch.SeriesID != owner.ID {
			return nil, apperr.ValidationError("Chapter does not belong to the series",
				apperr.FieldError{Field: FieldChapterID, Message: "Must belong to the series"})
		}
	}

	publication := &Publication{
		ID:              uuid.New(),
		SeriesID:        owner.ID,
		ChapterID:       input.ChapterID,
		MangaID:         *owner.MangaDexID,
		GroupIDs:        input.GroupIDs,
		Volume:          input.Volume,
		ChapterNumber:   input.ChapterNumber,
		Title:           input.Title,
		Language:        input.Language,
		SourcePrefix:    input.SourcePrefix,
		RequestedBy:     actor.DiscordID,
		ReportChannelID: input.ReportChannelID,
		DueAt:           input.DueAt.UTC(),
		CreatedAt:       now,
	}
	if publication.ReportChannelID == "" {
		publication.ReportChannelID = service.reportChannel
	}
	if !owner.Blocks(series.TargetMirror) {
		publication.MirrorKey = owner.MirrorKey
	}

	if err := service.repo.Insert(ctx, publication); err != nil {
		return nil, err
	}

	service.logger.Info("publication_scheduled",
		slog.String("publication_id", publication.ID),
		slog.String("series_id", owner.ID),
		slog.Time("due_at", publication.DueAt),
		slog.String("actor", actor.DiscordID),
	)
	return publication, nil
}

// Cancel removes a queued publication. It needs project manager authority.
func (service *Service) Cancel(ctx context.Context, actor sec.Actor, id string) error {
	if !actor.CanManage() {
		return apperr.Forbidden("Cancelling publications requires project manager authority")
	}

	removed, err := service.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return apperr.NotFound("Publication")
	}

	service.logger.Info("publication_cancelled", slog.String("publication_id", id), slog.String("actor", actor.DiscordID))
	return nil
}

// List returns the queue.
func (service *Service) List(ctx context.Context) ([]*Publication, error) {
	return service.repo.List(ctx)
}
