// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package board

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/taibuivan/milize/internal/core/chapter"
	"github.com/taibuivan/milize/internal/core/ledger"
	"github.com/taibuivan/milize/internal/core/roster"
	"github.com/taibuivan/milize/internal/core/series"
	"github.com/taibuivan/milize/internal/platform/apperr"
	"github.com/taibuivan/milize/internal/platform/messaging"
	"github.com/taibuivan/milize/internal/platform/sec"
	"github.com/taibuivan/milize/pkg/uuid"
)

// Claimer performs the ledger claim behind a board claim.
type Claimer interface {
	Claim(ctx context.Context, actor sec.Actor, chapterID, seriesJobID string) (*ledger.ClaimResult, error)
}

// Roster is the slice of the roster the board needs.
type Roster interface {
	Get(ctx context.Context, discordID string) (*roster.Member, error)
	Tier(ctx context.Context, discordID string) (roster.Tier, error)
	CurrentRoles(ctx context.Context, discordID string) ([]string, error)
	BoardRecipients(ctx context.Context, seriesID string) ([]*roster.Member, error)
	Roles() roster.RoleMap
}

// # Service Layer

// Service implements posting, claiming, removal and expiry of claim-board postings.
type Service struct {
	repo        Repository
	claimer     Claimer
	assignments ledger.Repository
	chapters    chapter.Repository
	series      series.Repository
	roster      Roster
	messenger   messaging.Messenger
	ttl         time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

// Option customises a [Service].
type Option func(*Service)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(service *Service) { service.now = now }
}

// Deps groups the collaborators of a [Service].
type Deps struct {
	Repo        Repository
	Claimer     Claimer
	Assignments ledger.Repository
	Chapters    chapter.Repository
	Series      series.Repository
	Roster      Roster
	Messenger   messaging.Messenger
}

// NewService constructs a new [Service]. ttl is the posting lifetime.
func NewService(deps Deps, ttl time.Duration, logger *slog.Logger, opts ...Option) *Service {
	service := &Service{
		repo:        deps.Repo,
		claimer:     deps.Claimer,
		assignments: deps.Assignments,
		chapters:    deps.Chapters,
		series:      deps.Series,
		roster:      deps.Roster,
		messenger:   deps.Messenger,
		ttl:         ttl,
		logger:      logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// # Posting

/*
Post advertises an unclaimed stage on its board channel.

Description: The checks run before the message is sent so the common
refusals cost no chat call. The insert still decides races: if it loses,
or the stage was claimed while the message was being sent, the posting is
retracted. Qualifying collaborators are mentioned in the first version of
the message, which is then edited down to the plain announcement.

Returns:
  - *Posting: The recorded posting
  - error: ARCHIVED, ALREADY_CLAIMED, ALREADY_POSTED, POLICY_VIOLATION
*/
func (service *Service) Post(ctx context.Context, actor sec.Actor, chapterID, seriesJobID string, minTier roster.Tier) (*Posting, error) {
	if !actor.CanManage() {
		return nil, apperr.Forbidden("Posting to the board requires project manager authority")
	}
	if minTier < roster.TierTrial || minTier > roster.TierFull {
		return nil, apperr.ValidationError("Unknown minimum tier")
	}

	ch, err := service.chapters.FindByID(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	if ch.IsArchived {
		return nil, apperr.PolicyViolation(apperr.CodeArchived, "Chapter is archived")
	}

	stage, err := service.series.FindSeriesJob(ctx, seriesJobID)
	if err != nil {
		return nil, err
	}
	if stage.SeriesID != ch.SeriesID {
		return nil, apperr.NotFound("Series stage")
	}

	if err := service.ensureOpen(ctx, ch, stage); err != nil {
		return nil, err
	}
	if stage.BoardChannelID == nil || *stage.BoardChannelID == "" {
		return nil, apperr.PolicyViolation(apperr.CodePolicy, "This stage has no board channel")
	}

	owner, err := service.series.FindByID(ctx, ch.SeriesID)
	if err != nil {
		return nil, err
	}

	announcement := fmt.Sprintf("**%s** %s needs %s. Open to %s tier and above; claim it from the board.",
		owner.Name, ch.Name, stage.DisplayName(), minTier)
	mentions := service.recipients(ctx, owner, stage, minTier)
	content := announcement
	if len(mentions) > 0 {
		content = strings.Join(mentions, " ") + "\n" + announcement
	}
	messageID, err := service.messenger.Send(ctx, *stage.BoardChannelID, content)
	if err != nil {
		return nil, apperr.ExternalTransient("chat platform", err)
	}

	posting := &Posting{
		ID:          uuid.New(),
		MessageID:   messageID,
		ChannelID:   *stage.BoardChannelID,
		ChapterID:   chapterID,
		SeriesJobID: seriesJobID,
		SeriesID:    ch.SeriesID,
		JobID:       stage.JobID,
		MinTier:     minTier,
		CreatedAt:   service.now().UTC(),
	}

	inserted, err := service.repo.Insert(ctx, posting)
	if err != nil || !inserted {
		service.retract(ctx, posting)
		if err != nil {
			return nil, err
		}
		return nil, apperr.ConflictCode(apperr.CodeAlreadyPosted, "This stage is already on the board")
	}

	// A claim that landed between the open check and the insert found no
	// posting to retract, so the posting is checked against the ledger again.
	if _, err := service.assignments.Find(ctx, chapterID, seriesJobID); !apperr.IsNotFound(err) {
		service.remove(ctx, posting, "claimed")
		if err != nil {
			return nil, err
		}
		return nil, apperr.ConflictCode(apperr.CodeAlreadyClaimed, "This stage is already assigned")
	}

	service.logger.Info("board_posting_created",
		slog.String("posting_id", posting.ID),
		slog.String("chapter_id", chapterID),
		slog.String("series_job_id", seriesJobID),
		slog.String("min_tier", minTier.String()),
	)

	if len(mentions) > 0 {
		// The mentions have pinged; the posting keeps only the announcement.
		if err := service.messenger.Edit(ctx, posting.ChannelID, posting.MessageID, announcement); err != nil {
			service.logger.Warn("board_mentions_strip_failed", slog.String("posting_id", posting.ID), slog.Any("error", err))
		}
	}
	return posting, nil
}

// ensureOpen refuses a posting for an assigned stage or one already advertised.
func (service *Service) ensureOpen(ctx context.Context, ch *chapter.Chapter, stage *series.SeriesJob) error {
	_, err := service.assignments.Find(ctx, ch.ID, stage.ID)
	switch {
	case err == nil:
		return apperr.ConflictCode(apperr.CodeAlreadyClaimed, "This stage is already assigned")
	case !apperr.IsNotFound(err):
		return err
	}

	_, err = service.repo.FindByPair(ctx, ch.ID, stage.ID)
	switch {
	case err == nil:
		return apperr.ConflictCode(apperr.CodeAlreadyPosted, "This stage is already on the board")
	case !apperr.IsNotFound(err):
		return err
	}

	_, err = service.repo.FindBySeriesJob(ctx, ch.SeriesID, stage.JobID)
	switch {
	case err == nil:
		return apperr.PolicyViolation(apperr.CodePolicy, "Another chapter of this series already advertises this stage")
	case !apperr.IsNotFound(err):
		return err
	}
	return nil
}

// recipients mentions the opted-in and subscribed collaborators who qualify for the posting.
func (service *Service) recipients(ctx context.Context, owner *series.Series, stage *series.SeriesJob, minTier roster.Tier) []string {
	members, err := service.roster.BoardRecipients(ctx, owner.ID)
	if err != nil {
		service.logger.Warn("board_recipients_failed", slog.String("series_id", owner.ID), slog.Any("error", err))
		return nil
	}

	var mentions []string
	for _, member := range members {
		roles, err := service.roster.CurrentRoles(ctx, member.DiscordID)
		if err != nil {
			continue
		}
		if service.roster.Roles().TierOf(roles) < minTier || (stage.RoleID != "" && !slices.Contains(roles, stage.RoleID)) {
			continue
		}
		mentions = append(mentions, messaging.Mention(member.DiscordID))
	}
	return mentions
}

// # Claiming

/*
ClaimViaBoard claims the stage behind a board message for the caller.

Description: The caller's tier comes from their current chat roles. A
posting that no longer exists, or a claim lost to a concurrent claimer,
returns (nil, nil): somebody else got there first.

Returns:
  - *ledger.ClaimResult: The claim, or nil when the race was lost
  - error: TIER_TOO_LOW, NotFound for an unknown collaborator
*/
func (service *Service) ClaimViaBoard(ctx context.Context, actor sec.Actor, messageID string) (*ledger.ClaimResult, error) {
	posting, err := service.repo.FindByMessageID(ctx, messageID)
	if apperr.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if _, err := service.roster.Get(ctx, actor.DiscordID); err != nil {
		return nil, err
	}

	tier, err := service.roster.Tier(ctx, actor.DiscordID)
	if err != nil {
		return nil, err
	}
	if tier < posting.MinTier {
		return nil, apperr.PolicyViolation(apperr.CodeTierTooLow,
			fmt.Sprintf("This posting needs %s tier or above", posting.MinTier))
	}

	result, err := service.claimer.Claim(ctx, actor, posting.ChapterID, posting.SeriesJobID)
	if apperr.HasCode(err, apperr.CodeAlreadyClaimed) {
		service.logger.Info("board_claim_lost",
			slog.String("posting_id", posting.ID),
			slog.String("discord_id", actor.DiscordID),
		)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// StageClaimed removes the posting of a freshly claimed pair. It implements [ledger.ClaimObserver].
func (service *Service) StageClaimed(ctx context.Context, assignment *ledger.Assignment) {
	posting, err := service.repo.FindByPair(ctx, assignment.ChapterID, assignment.SeriesJobID)
	if err != nil {
		if !apperr.IsNotFound(err) {
			service.logger.Warn("board_claim_cleanup_failed", slog.String("assignment_id", assignment.ID), slog.Any("error", err))
		}
		return
	}
	service.remove(ctx, posting, "claimed")
}

// ChapterArchived drops every posting of an archived work item. It implements [chapter.ArchiveObserver].
func (service *Service) ChapterArchived(ctx context.Context, ch *chapter.Chapter) {
	postings, err := service.repo.ListByChapter(ctx, ch.ID)
	if err != nil {
		service.logger.Warn("board_archive_cleanup_failed", slog.String("chapter_id", ch.ID), slog.Any("error", err))
		return
	}
	for _, posting := range postings {
		service.remove(ctx, posting, "archived")
	}
}

// # Removal

// Remove takes a posting off the board. It needs project manager authority.
func (service *Service) Remove(ctx context.Context, actor sec.Actor, chapterID, seriesJobID string) error {
	if !actor.CanManage() {
		return apperr.Forbidden("Removing board postings requires project manager authority")
	}

	posting, err := service.repo.FindByPair(ctx, chapterID, seriesJobID)
	if err != nil {
		return err
	}

	if !service.remove(ctx, posting, "removed") {
		return apperr.NotFound("Posting")
	}
	return nil
}

/*
SweepExpired deletes postings older than the board TTL.

Description: Each posting is handled on its own; a failed retraction is
logged and the row is deleted anyway.

Returns:
  - int: Number of postings deleted
  - error: Only when the expired list itself cannot be read
*/
func (service *Service) SweepExpired(ctx context.Context) (int, error) {
	cutoff := service.now().UTC().Add(-service.ttl)

	postings, err := service.repo.ListCreatedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, posting := range postings {
		if service.remove(ctx, posting, "expired") {
			expired++
		}
	}
	return expired, nil
}

// remove deletes the row first so a concurrent remover cannot retract twice.
func (service *Service) remove(ctx context.Context, posting *Posting, reason string) bool {
	deleted, err := service.repo.Delete(ctx, posting.ID)
	if err != nil {
		service.logger.Warn("board_posting_delete_failed",
			slog.String("posting_id", posting.ID),
			slog.Any("error", err),
		)
		return false
	}
	if !deleted {
		return false
	}

	service.retract(ctx, posting)

	service.logger.Info("board_posting_removed",
		slog.String("posting_id", posting.ID),
		slog.String("reason", reason),
	)
	return true
}

// retract deletes the board message. Already-gone messages count as retracted.
func (service *Service) retract(ctx context.Context, posting *Posting) {
	if err := messaging.IgnoreGone(service.messenger.Delete(ctx, posting.ChannelID, posting.MessageID)); err != nil {
		service.logger.Warn("board_retract_failed",
			slog.String("posting_id", posting.ID),
			slog.String("message_id", posting.MessageID),
			slog.Any("error", err),
		)
	}
}
