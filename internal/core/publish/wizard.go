// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package publish

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

// DraftStep is the state of a scheduling session.
type DraftStep string

const (
	DraftSeries    DraftStep = "series"
	DraftChapter   DraftStep = "chapter"
	DraftDetails   DraftStep = "details"
	DraftSchedule  DraftStep = "schedule"
	DraftConfirmed DraftStep = "confirmed"
)

// Draft is one scheduling session. It lives in volatile storage under its id.
type Draft struct {
	ID            string    `json:"id"`
	Owner         string    `json:"owner"`
	Step          DraftStep `json:"step"`
	Request       Request   `json:"request"`
	Scheduled     bool      `json:"scheduled"`
	PublicationID string    `json:"publication_id,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DraftInput carries the answers for the current step. Fields of other steps are ignored.
type DraftInput struct {
	SeriesID        *string    `json:"series_id"`
	ChapterID       *string    `json:"chapter_id"`
	ChapterNumber   *string    `json:"chapter_number"`
	Volume          *string    `json:"volume"`
	Title           *string    `json:"title"`
	Language        *string    `json:"language"`
	GroupIDs        []string   `json:"group_ids"`
	SourcePrefix    *string    `json:"source_prefix"`
	ReportChannelID *string    `json:"report_channel_id"`
	DueAt           *time.Time `json:"due_at"`
}

// DraftStore persists drafts with an expiry.
type DraftStore interface {
	Save(ctx context.Context, draft *Draft, ttl time.Duration) error

	// Load returns NotFound for a missing or expired draft.
	Load(ctx context.Context, id string) (*Draft, error)
}

/*
Wizard walks a collaborator through scheduling a publication:

	series → chapter → details → schedule → confirmed

Each answer is checked when it is given. The draft is saved after every
step, so a session survives restarts and many sessions run side by side.
*/
type Wizard struct {
	drafts  DraftStore
	service *Service
	logger  *slog.Logger
}

// NewWizard constructs a [Wizard].
func NewWizard(drafts DraftStore, service *Service, logger *slog.Logger) *Wizard {
	return &Wizard{drafts: drafts, service: service, logger: logger}
}

// Start opens a session. It needs project manager authority.
func (wizard *Wizard) Start(ctx context.Context, actor sec.Actor) (*Draft, error) {
	if !actor.CanManage() {
		return nil, apperr.Forbidden("Scheduling publications requires project manager authority")
	}

	draft := &Draft{
		ID:        uuid.New(),
		Owner:     actor.DiscordID,
		Step:      DraftSeries,
		UpdatedAt: wizard.service.now().UTC(),
	}
	if err := wizard.drafts.Save(ctx, draft, constants.DraftTTL); err != nil {
		return nil, err
	}

	wizard.logger.Info("publish_draft_started", slog.String("draft_id", draft.ID), slog.String("actor", actor.DiscordID))
	return draft, nil
}

// Get returns the caller's session.
func (wizard *Wizard) Get(ctx context.Context, actor sec.Actor, id string) (*Draft, error) {
	draft, err := wizard.drafts.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if draft.Owner != actor.DiscordID {
		return nil, apperr.NotFound("Draft")
	}
	return draft, nil
}

/*
Advance applies the answers of the current step and moves to the next one.

Description: on the schedule step the due time may be changed any number
of times; the session leaves it only through [Wizard.Confirm].
*/
func (wizard *Wizard) Advance(ctx context.Context, actor sec.Actor, id string, input DraftInput) (*Draft, error) {
	draft, err := wizard.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	switch draft.Step {
	case DraftSeries:
		err = wizard.chooseSeries(ctx, draft, input)
	case DraftChapter:
		err = wizard.chooseChapter(ctx, draft, input)
	case DraftDetails:
		err = wizard.fillDetails(draft, input)
	case DraftSchedule:
		err = wizard.chooseTime(draft, input)
	default:
		err = apperr.Conflict("Draft is already confirmed")
	}
	if err != nil {
		return nil, err
	}

	draft.UpdatedAt = wizard.service.now().UTC()
	if err := wizard.drafts.Save(ctx, draft, constants.DraftTTL); err != nil {
		return nil, err
	}
	return draft, nil
}

/*
Confirm queues the publication described by a completed session.

Returns:
  - *Publication: the queued ticket
  - error: PolicyViolation when the session is not on the schedule step with a due time
*/
func (wizard *Wizard) Confirm(ctx context.Context, actor sec.Actor, id string) (*Publication, error) {
	draft, err := wizard.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if draft.Step == DraftConfirmed {
		return nil, apperr.Conflict("Draft is already confirmed")
	}
	if draft.Step != DraftSchedule || !draft.Scheduled {
		return nil, apperr.PolicyViolation(apperr.CodePolicy, "Draft is not complete")
	}

	publication, err := wizard.service.Schedule(ctx, actor, draft.Request)
	if err != nil {
		return nil, err
	}

	draft.Step = DraftConfirmed
	draft.PublicationID = publication.ID
	draft.UpdatedAt = wizard.service.now().UTC()
	if err := wizard.drafts.Save(ctx, draft, constants.DraftTTL); err != nil {
		wizard.logger.Warn("publish_draft_save_failed", slog.String("draft_id", draft.ID), slog.Any("error", err))
	}
	return publication, nil
}

func (wizard *Wizard) chooseSeries(ctx context.Context, draft *Draft, input DraftInput) error {
	if input.SeriesID == nil || *input.SeriesID == "" {
		return apperr.ValidationError("Series is required", apperr.FieldError{Field: FieldSeriesID, Message: "This field is required"})
	}

	owner, err := wizard.service.series.FindByID(ctx, *input.SeriesID)
	if err != nil {
		return err
	}
	switch {
	case owner.IsArchived:
		return apperr.PolicyViolation(apperr.CodeArchived, "Series is archived")
	case owner.Blocks(series.TargetMangaDex):
		return apperr.PolicyViolation(apperr.CodePolicy, "Publishing is blocked for this series")
	case owner.MangaDexID == nil:
		return apperr.PolicyViolation(apperr.CodePolicy, "Series has no publish target id")
	}

	draft.Request.SeriesID = owner.ID
	draft.Step = DraftChapter
	return nil
}

func (wizard *Wizard) chooseChapter(ctx context.Context, draft *Draft, input DraftInput) error {
	validator := &validate.Validator{}
	if input.ChapterNumber == nil {
		validator.Required(FieldChapterNumber, "")
	} else {
		validator.Required(FieldChapterNumber, *input.ChapterNumber).MaxLen(FieldChapterNumber, *input.ChapterNumber, 16)
	}
	if err := validator.Err(); err != nil {
		return err
	}

	if input.ChapterID != nil {
		ch, err := wizard.service.chapters.FindByID(ctx, *input.ChapterID)
		if err != nil {
			return err
		}
		if ch.SeriesID != draft.Request.SeriesID {
			return apperr.ValidationError("Chapter does not belong to the series",
				apperr.FieldError{Field: FieldChapterID, Message: "Must belong to the series"})
		}
	}

	draft.Request.ChapterID = input.ChapterID
	draft.Request.ChapterNumber = *input.ChapterNumber
	draft.Step = DraftDetails
	return nil
}

func (wizard *Wizard) fillDetails(draft *Draft, input DraftInput) error {
	validator := &validate.Validator{}
	validator.NotEmpty(FieldGroupIDs, len(input.GroupIDs))
	if input.SourcePrefix == nil {
		validator.Required(FieldSourcePrefix, "")
	} else {
		validator.Required(FieldSourcePrefix, *input.SourcePrefix)
	}
	if input.Title != nil {
		validator.MaxLen(FieldTitle, *input.Title, 255)
	}
	if err := validator.Err(); err != nil {
		return err
	}

	draft.Request.GroupIDs = input.GroupIDs
	draft.Request.SourcePrefix = *input.SourcePrefix
	draft.Request.Volume = input.Volume
	draft.Request.Title = input.Title
	if input.Language != nil {
		draft.Request.Language = *input.Language
	}
	draft.Step = DraftSchedule
	return nil
}

func (wizard *Wizard) chooseTime(draft *Draft, input DraftInput) error {
	if input.DueAt == nil {
		return apperr.ValidationError("Due time is required", apperr.FieldError{Field: FieldDueAt, Message: "This field is required"})
	}

	validator := &validate.Validator{}
	validator.After(FieldDueAt, *input.DueAt, wizard.service.now().UTC())
	if err := validator.Err(); err != nil {
		return err
	}

	draft.Request.DueAt = input.DueAt.UTC()
	if input.ReportChannelID != nil {
		draft.Request.ReportChannelID = *input.ReportChannelID
	}
	draft.Scheduled = true
	return nil
}
