// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package notifier tells collaborators when their stage becomes workable.

It runs synchronously after every completion. Delivery is best effort: a
failed notice is logged and never reaches the collaborator who completed
the stage. Each assignee is told at most once per readiness: the
available_at stamp is written with a conditional update and only the
caller that wins it sends the notice.
*/
package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/milize/internal/core/ledger"
	"github.com/taibuivan/milize/internal/core/pipeline"
	"github.com/taibuivan/milize/internal/core/roster"
	"github.com/taibuivan/milize/internal/platform/messaging"
)

// ProgressLoader loads the pipeline picture of a work item.
type ProgressLoader interface {
	Progress(ctx context.Context, chapterID string) (*ledger.Progress, error)
}

// TierSource derives a collaborator's tier.
type TierSource interface {
	Tier(ctx context.Context, discordID string) (roster.Tier, error)
}

// MemberFinder looks up notification preferences.
type MemberFinder interface {
	FindByDiscordID(ctx context.Context, discordID string) (*roster.Member, error)
}

// Channels names where notices go.
type Channels struct {
	// Workflow receives ready-for-work notices.
	Workflow string

	// Lead receives probation completion notices. Empty disables them.
	Lead string
}

// Notifier implements [ledger.CompletionObserver].
type Notifier struct {
	progress  ProgressLoader
	repo      ledger.Repository
	members   MemberFinder
	tiers     TierSource
	messenger messaging.Messenger
	channels  Channels
	logger    *slog.Logger
	now       func() time.Time
}

// Option customises a [Notifier].
type Option func(*Notifier)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(notifier *Notifier) { notifier.now = now }
}

// WithTierSource enables probation completion notices.
func WithTierSource(tiers TierSource) Option {
	return func(notifier *Notifier) { notifier.tiers = tiers }
}

// New constructs a [Notifier].
func New(progress ProgressLoader, repo ledger.Repository, members MemberFinder, messenger messaging.Messenger, channels Channels, logger *slog.Logger, opts ...Option) *Notifier {
	notifier := &Notifier{
		progress:  progress,
		repo:      repo,
		members:   members,
		messenger: messenger,
		channels:  channels,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(notifier)
	}
	return notifier
}

/*
StageCompleted decides who to tell after an assignment reached Completed.

Description: The pipeline picture is re-read after the completion
committed, so the snapshot includes it. The successors named by
[pipeline.Next] are notified; a successor absent from the series or without
an assignee is skipped silently.
*/
func (notifier *Notifier) StageCompleted(ctx context.Context, assignment *ledger.Assignment, completedBy string) {
	progress, err := notifier.progress.Progress(ctx, assignment.ChapterID)
	if err != nil {
		notifier.logger.Warn("stage_notice_progress_failed",
			slog.String("assignment_id", assignment.ID),
			slog.Any("error", err),
		)
		return
	}

	stage := progress.Stage(assignment.SeriesJobID)
	if stage == nil {
		return
	}

	notified := 0
	for _, target := range pipeline.Next(stage.Type, progress.Snapshot) {
		notified += notifier.notifyType(ctx, progress, target, map[string]bool{completedBy: true})
	}

	notifier.logger.Info("stage_completion_handled",
		slog.String("chapter_id", assignment.ChapterID),
		slog.String("stage_type", stage.Type.String()),
		slog.Int("notified", notified),
	)

	notifier.probationNotice(ctx, progress, stage.DisplayName(), completedBy)
}

/*
notifyType tells every open assignee of stage type t, except those in
excluded. Notifying Typesetting cascades into TypesettingSFX, excluding the
Typesetting assignees so one person holding both is told once.
*/
func (notifier *Notifier) notifyType(ctx context.Context, progress *ledger.Progress, t pipeline.StageType, excluded map[string]bool) int {
	notified := 0
	cascadeExcluded := map[string]bool{}
	for id := range excluded {
		cascadeExcluded[id] = true
	}

	for _, assignment := range progress.AssignmentsOf(t) {
		cascadeExcluded[assignment.AssignedTo] = true
		if assignment.Status == ledger.StatusCompleted || excluded[assignment.AssignedTo] {
			continue
		}
		if notifier.notifyOne(ctx, progress, assignment) {
			notified++
		}
	}

	if t == pipeline.Typesetting {
		notified += notifier.notifyType(ctx, progress, pipeline.TypesettingSFX, cascadeExcluded)
	}
	return notified
}

// notifyOne stamps availability and sends the notice if this call won the stamp.
func (notifier *Notifier) notifyOne(ctx context.Context, progress *ledger.Progress, assignment *ledger.Assignment) bool {
	if assignment.AvailableAt != nil {
		return false
	}

	won, err := notifier.repo.MarkAvailable(ctx, assignment.ID, notifier.now().UTC())
	if err != nil {
		notifier.logger.Warn("stage_notice_stamp_failed",
			slog.String("assignment_id", assignment.ID),
			slog.Any("error", err),
		)
		return false
	}
	if !won {
		return false
	}

	member, err := notifier.members.FindByDiscordID(ctx, assignment.AssignedTo)
	if err != nil {
		notifier.logger.Warn("stage_notice_member_missing",
			slog.String("assignee", assignment.AssignedTo),
			slog.Any("error", err),
		)
		return false
	}
	if !member.StageNotifications {
		return false
	}

	stage := progress.Stage(assignment.SeriesJobID)
	notice := fmt.Sprintf("%s %s for **%s** %s is ready for you.",
		messaging.Mention(assignment.AssignedTo), stage.DisplayName(), progress.Series.Name, progress.Chapter.Name)

	if _, err := notifier.messenger.Send(ctx, notifier.channels.Workflow, notice); err != nil {
		notifier.logger.Warn("stage_notice_send_failed",
			slog.String("assignment_id", assignment.ID),
			slog.Any("error", err),
		)
		return false
	}

	notifier.logger.Info("stage_notice_sent",
		slog.String("assignment_id", assignment.ID),
		slog.String("assignee", assignment.AssignedTo),
	)
	return true
}

// probationNotice tells the leads when a Trial or Probationary collaborator finishes a stage.
func (notifier *Notifier) probationNotice(ctx context.Context, progress *ledger.Progress, stageName, completedBy string) {
	if notifier.tiers == nil || notifier.channels.Lead == "" {
		return
	}

	tier, err := notifier.tiers.Tier(ctx, completedBy)
	if err != nil {
		notifier.logger.Warn("probation_notice_tier_failed", slog.String("discord_id", completedBy), slog.Any("error", err))
		return
	}
	if tier != roster.TierTrial && tier != roster.TierProbationary {
		return
	}

	notice := fmt.Sprintf("%s (%s) completed %s for **%s** %s.",
		messaging.Mention(completedBy), tier, stageName, progress.Series.Name, progress.Chapter.Name)
	if _, err := notifier.messenger.Send(ctx, notifier.channels.Lead, notice); err != nil {
		notifier.logger.Warn("probation_notice_send_failed", slog.String("discord_id", completedBy), slog.Any("error", err))
	}
}
