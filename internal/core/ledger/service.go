// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/taibuivan/milize/internal/core/chapter"
	"github.com/taibuivan/milize/internal/core/pipeline"
	"github.com/taibuivan/milize/internal/core/roster"
	"github.com/taibuivan/milize/internal/core/series"
	"github.com/taibuivan/milize/internal/platform/apperr"
	"github.com/taibuivan/milize/internal/platform/constants"
	"github.com/taibuivan/milize/internal/platform/messaging"
	"github.com/taibuivan/milize/internal/platform/sec"
	"github.com/taibuivan/milize/pkg/uuid"
)

// # Hooks

// ClaimObserver runs after an assignment is created.
type ClaimObserver interface {
	StageClaimed(ctx context.Context, assignment *Assignment)
}

// CompletionObserver runs after an assignment reaches Completed. It is
// called synchronously, after the status write committed.
type CompletionObserver interface {
	StageCompleted(ctx context.Context, assignment *Assignment, completedBy string)
}

// ActivityRecorder clears a collaborator's inactivity escalation after a claim.
type ActivityRecorder interface {
	ClearEscalation(ctx context.Context, discordID string) error
}

// RoleSource reports the chat roles a collaborator currently holds.
type RoleSource interface {
	CurrentRoles(ctx context.Context, discordID string) ([]string, error)
}

// MemberFinder looks up active collaborators.
type MemberFinder interface {
	FindByDiscordID(ctx context.Context, discordID string) (*roster.Member, error)
}

// # Service Layer

// Service implements claim, assign, reassign, unclaim, unassign and status updates.
type Service struct {
	repo      Repository
	chapters  chapter.Repository
	series    series.Repository
	members   MemberFinder
	activity  ActivityRecorder
	roles     RoleSource
	messenger messaging.Messenger
	logger    *slog.Logger
	now       func() time.Time

	claimObservers      []ClaimObserver
	completionObservers []CompletionObserver
}

// Option customises a [Service].
type Option func(*Service)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(service *Service) { service.now = now }
}

// WithActivityRecorder clears escalation stamps on claim.
func WithActivityRecorder(activity ActivityRecorder) Option {
	return func(service *Service) { service.activity = activity }
}

// WithRoleSource enforces the qualifying role of a stage on self-claims.
func WithRoleSource(roles RoleSource) Option {
	return func(service *Service) { service.roles = roles }
}

// WithMessenger enables the first-job welcome notice.
func WithMessenger(messenger messaging.Messenger) Option {
	return func(service *Service) { service.messenger = messenger }
}

// NewService constructs a new [Service].
func NewService(repo Repository, chapters chapter.Repository, seriesRepo series.Repository, members MemberFinder, logger *slog.Logger, opts ...Option) *Service {
	service := &Service{
		repo:     repo,
		chapters: chapters,
		series:   seriesRepo,
		members:  members,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// OnClaim registers a claim observer. It must be called before the service is shared.
func (service *Service) OnClaim(observer ClaimObserver) {
	service.claimObservers = append(service.claimObservers, observer)
}

// OnCompletion registers a completion observer. It must be called before the service is shared.
func (service *Service) OnCompletion(observer CompletionObserver) {
	service.completionObservers = append(service.completionObservers, observer)
}

// # Reads

// Get returns the live assignment of a pair.
func (service *Service) Get(ctx context.Context, chapterID, seriesJobID string) (*Assignment, error) {
	return service.repo.Find(ctx, chapterID, seriesJobID)
}

// ListOpen returns a collaborator's live non-completed assignments.
func (service *Service) ListOpen(ctx context.Context, discordID string) ([]*Assignment, error) {
	return service.repo.ListOpenByAssignee(ctx, discordID)
}

// Progress loads the pipeline picture of a work item.
func (service *Service) Progress(ctx context.Context, chapterID string) (*Progress, error) {
	ch, err := service.chapters.FindByID(ctx, chapterID)
	if err != nil {
		return nil, err
	}

	owner, err := service.series.FindByID(ctx, ch.SeriesID)
	if err != nil {
		return nil, err
	}

	stages, err := service.series.ListSeriesJobs(ctx, ch.SeriesID)
	if err != nil {
		return nil, err
	}

	assignments, err := service.repo.ListByChapter(ctx, chapterID)
	if err != nil {
		return nil, err
	}

	return &Progress{
		Series:      owner,
		Chapter:     ch,
		Stages:      stages,
		Assignments: assignments,
		Snapshot:    BuildSnapshot(stages, assignments),
	}, nil
}

// # Claim and Assign

// Claim assigns a stage to the caller.
func (service *Service) Claim(ctx context.Context, actor sec.Actor, chapterID, seriesJobID string) (*ClaimResult, error) {
	return service.claim(ctx, actor, chapterID, seriesJobID, actor.DiscordID, true)
}

// Assign assigns a stage to another collaborator. It needs project manager authority.
func (service *Service) Assign(ctx context.Context, actor sec.Actor, chapterID, seriesJobID, assignee string) (*ClaimResult, error) {
	if !actor.CanManage() {
		return nil, apperr.Forbidden("Assigning requires project manager authority")
	}
	return service.claim(ctx, actor, chapterID, seriesJobID, assignee, false)
}

/*
claim validates the pair and inserts the assignment.

Description: The insert is the concurrency anchor. Everything before it is
a read used for validation and for choosing the initial status; a lost race
surfaces as ALREADY_CLAIMED regardless of what the reads saw.

Self-claims start InProgress when the stage is actionable and Backlog
otherwise. Assignments made by a manager start in Backlog.
*/
func (service *Service) claim(ctx context.Context, actor sec.Actor, chapterID, seriesJobID, assignee string, self bool) (*ClaimResult, error) {
	if _, err := service.members.FindByDiscordID(ctx, assignee); err != nil {
		return nil, err
	}

	progress, err := service.Progress(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	if progress.Chapter.IsArchived || progress.Series.IsArchived {
		return nil, apperr.PolicyViolation(apperr.CodeArchived, "Chapter is archived")
	}

	stage := progress.Stage(seriesJobID)
	if stage == nil {
		return nil, apperr.NotFound("Series stage")
	}

	if self && service.roles != nil && stage.RoleID != "" && !actor.CanManage() {
		roles, err := service.roles.CurrentRoles(ctx, assignee)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(roles, stage.RoleID) {
			return nil, apperr.Forbidden(fmt.Sprintf("You do not hold the role for %s", stage.DisplayName()))
		}
	}

	history, err := service.repo.CountAll(ctx, assignee)
	if err != nil {
		return nil, err
	}

	status := StatusBacklog
	if self && pipeline.Ready(stage.Type, progress.Snapshot) {
		status = StatusInProgress
	}

	assignment := &Assignment{
		ID:          uuid.New(),
		ChapterID:   chapterID,
		SeriesJobID: seriesJobID,
		AssignedTo:  assignee,
		Status:      status,
		Account:     true,
		CreatedAt:   service.now().UTC(),
	}

	inserted, err := service.repo.Insert(ctx, assignment)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, apperr.ConflictCode(apperr.CodeAlreadyClaimed, "This stage is already claimed")
	}

	service.logger.Info("assignment_claimed",
		slog.String("assignment_id", assignment.ID),
		slog.String("chapter_id", chapterID),
		slog.String("series_job_id", seriesJobID),
		slog.String("assignee", assignee),
		slog.String("status", status.String()),
		slog.String("actor", actor.DiscordID),
	)

	service.afterClaim(ctx, assignment, progress, stage, history == 0)

	return &ClaimResult{Assignment: assignment, FirstJob: history == 0}, nil
}

// afterClaim runs the best-effort side effects of a claim.
func (service *Service) afterClaim(ctx context.Context, assignment *Assignment, progress *Progress, stage *series.SeriesJob, first bool) {
	if service.activity != nil {
		if err := service.activity.ClearEscalation(ctx, assignment.AssignedTo); err != nil {
			service.logger.Warn("escalation_clear_failed",
				slog.String("assignee", assignment.AssignedTo),
				slog.Any("error", err),
			)
		}
	}

	for _, observer := range service.claimObservers {
		observer.StageClaimed(ctx, assignment)
	}

	if first && service.messenger != nil {
		notice := fmt.Sprintf("Welcome aboard! You picked up your first job: %s for %s, %s. Thanks for joining in.",
			stage.DisplayName(), progress.Series.Name, progress.Chapter.Name)
		if err := service.messenger.DirectMessage(ctx, assignment.AssignedTo, notice); err != nil {
			service.logger.Warn("first_job_notice_failed",
				slog.String("assignee", assignment.AssignedTo),
				slog.Any("error", err),
			)
		}
	}
}

// Reassign hands an assignment to another collaborator without touching status or timestamps.
func (service *Service) Reassign(ctx context.Context, actor sec.Actor, chapterID, seriesJobID, assignee string) (*Assignment, error) {
	if !actor.CanManage() {
		return nil, apperr.Forbidden("Reassigning requires project manager authority")
	}

	if _, err := service.members.FindByDiscordID(ctx, assignee); err != nil {
		return nil, err
	}

	assignment, err := service.repo.Find(ctx, chapterID, seriesJobID)
	if err != nil {
		return nil, err
	}

	updated, err := service.repo.UpdateAssignee(ctx, assignment.ID, assignee)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, apperr.NotFound("Assignment")
	}

	service.logger.Info("assignment_reassigned",
		slog.String("assignment_id", assignment.ID),
		slog.String("from", assignment.AssignedTo),
		slog.String("to", assignee),
		slog.String("actor", actor.DiscordID),
	)

	assignment.AssignedTo = assignee
	return assignment, nil
}

// # Release

// Unclaim releases the caller's own assignment.
func (service *Service) Unclaim(ctx context.Context, actor sec.Actor, chapterID, seriesJobID string) error {
	assignment, err := service.repo.Find(ctx, chapterID, seriesJobID)
	if err != nil {
		return err
	}
	if assignment.AssignedTo != actor.DiscordID {
		return apperr.Forbidden("Only the assignee can unclaim")
	}

	removed, err := service.repo.DeleteOwned(ctx, assignment.ID, actor.DiscordID)
	if err != nil {
		return err
	}
	if !removed {
		return apperr.NotFound("Assignment")
	}

	service.logger.Info("assignment_unclaimed",
		slog.String("assignment_id", assignment.ID),
		slog.String("assignee", actor.DiscordID),
	)
	return nil
}

// Unassign removes any assignment. It needs project manager authority.
func (service *Service) Unassign(ctx context.Context, actor sec.Actor, chapterID, seriesJobID string) error {
	if !actor.CanManage() {
		return apperr.Forbidden("Unassigning requires project manager authority")
	}

	assignment, err := service.repo.Find(ctx, chapterID, seriesJobID)
	if err != nil {
		return err
	}

	removed, err := service.repo.Delete(ctx, assignment.ID)
	if err != nil {
		return err
	}
	if !removed {
		return apperr.NotFound("Assignment")
	}

	service.logger.Info("assignment_unassigned",
		slog.String("assignment_id", assignment.ID),
		slog.String("assignee", assignment.AssignedTo),
		slog.String("actor", actor.DiscordID),
	)
	return nil
}

// # Status

/*
UpdateStatus moves an assignment forward.

Description: Re-sending the current status is a no-op. Moving backwards is
refused. InProgress requires the stage to be actionable. Completed stamps
completed_at and the account flag, then runs the completion observers
synchronously; observers never fail the call.

Returns:
  - *Assignment: The assignment as stored after the call
  - error: FORBIDDEN, POLICY_VIOLATION, PREREQUISITE_NOT_MET or NotFound
*/
func (service *Service) UpdateStatus(ctx context.Context, actor sec.Actor, chapterID, seriesJobID string, status Status) (*Assignment, error) {
	if !status.Valid() {
		return nil, apperr.ValidationError("Unknown status")
	}

	assignment, err := service.repo.Find(ctx, chapterID, seriesJobID)
	if err != nil {
		return nil, err
	}
	if assignment.AssignedTo != actor.DiscordID && !actor.CanManage() {
		return nil, apperr.Forbidden("Only the assignee or a project manager can update the status")
	}

	switch {
	case status == assignment.Status:
		return assignment, nil
	case status < assignment.Status:
		return nil, apperr.PolicyViolation(apperr.CodePolicy, "Status can only move forward")
	}

	if status == StatusInProgress {
		progress, err := service.Progress(ctx, chapterID)
		if err != nil {
			return nil, err
		}
		stage := progress.Stage(seriesJobID)
		if stage == nil {
			return nil, apperr.NotFound("Series stage")
		}
		if !pipeline.Ready(stage.Type, progress.Snapshot) {
			return nil, apperr.PolicyViolation(apperr.CodePrerequisiteNotMet, "Earlier stages are not finished yet")
		}
	}

	var completedAt *time.Time
	account := assignment.Account
	if status == StatusCompleted {
		now := service.now().UTC()
		completedAt = &now
		account = now.Sub(assignment.CreatedAt) >= constants.AccountGrace
	}

	updated, err := service.repo.UpdateStatus(ctx, assignment.ID, status, completedAt, account)
	if err != nil {
		return nil, err
	}
	if !updated {
		// A concurrent update moved it at least as far; report what is stored.
		return service.repo.Find(ctx, chapterID, seriesJobID)
	}

	assignment.Status = status
	assignment.CompletedAt = completedAt
	assignment.Account = account

	service.logger.Info("assignment_status_updated",
		slog.String("assignment_id", assignment.ID),
		slog.String("status", status.String()),
		slog.Bool("account", account),
		slog.String("actor", actor.DiscordID),
	)

	if status == StatusCompleted {
		for _, observer := range service.completionObservers {
			observer.StageCompleted(ctx, assignment, assignment.AssignedTo)
		}
	}

	return assignment, nil
}
