// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package roster

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/milize/internal/platform/apperr"
	"github.com/taibuivan/milize/internal/platform/messaging"
	"github.com/taibuivan/milize/internal/platform/sec"
	"github.com/taibuivan/milize/internal/platform/validate"
	"github.com/taibuivan/milize/pkg/titlecase"
	"github.com/taibuivan/milize/pkg/uuid"
)

const (
	FieldDiscordID        = "discord_id"
	FieldCreditName       = "credit_name"
	FieldReminderInterval = "reminder_interval"
	FieldAuthority        = "authority"
)

// # Service Layer

// Service manages collaborators, their chat roles and their retirement.
type Service struct {
	repo      Repository
	messenger messaging.Messenger
	roles     RoleMap
	logger    *slog.Logger
	now       func() time.Time
}

// Option customises a [Service].
type Option func(*Service)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(service *Service) { service.now = now }
}

// NewService constructs a new [Service].
func NewService(repo Repository, messenger messaging.Messenger, roles RoleMap, logger *slog.Logger, opts ...Option) *Service {
	service := &Service{repo: repo, messenger: messenger, roles: roles, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Roles returns the tier role mapping.
func (service *Service) Roles() RoleMap {
	return service.roles
}

// # Members

// Add registers a collaborator. Only project managers may add members.
func (service *Service) Add(ctx context.Context, actor sec.Actor, discordID string, creditName *string, authority sec.Authority) (*Member, error) {
	if !actor.CanManage() {
		return nil, apperr.Forbidden("Adding members requires project manager authority")
	}

	validator := &validate.Validator{}
	validator.Snowflake(FieldDiscordID, discordID)
	validator.Custom(FieldAuthority, !authority.Valid(), "Unknown authority level")
	validator.Custom(FieldAuthority, authority > actor.Authority, "Cannot grant more authority than you hold")
	if creditName != nil {
		validator.MaxLen(FieldCreditName, *creditName, 64)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	member := &Member{
		ID:                 uuid.New(),
		DiscordID:          discordID,
		CreditName:         normaliseCredit(creditName),
		Authority:          authority,
		StageNotifications: true,
		CreatedAt:          service.now().UTC(),
	}

	added, err := service.repo.Add(ctx, member)
	if err != nil {
		return nil, err
	}
	if !added {
		return nil, apperr.Conflict("Member already exists")
	}

	service.logger.Info("member_added",
		slog.String("discord_id", discordID),
		slog.String("authority", authority.String()),
	)
	return member, nil
}

// Get returns an active collaborator.
func (service *Service) Get(ctx context.Context, discordID string) (*Member, error) {
	return service.repo.FindByDiscordID(ctx, discordID)
}

// List returns every active collaborator.
func (service *Service) List(ctx context.Context) ([]*Member, error) {
	return service.repo.List(ctx)
}

// ListWithReminders returns collaborators that opted into reminders.
func (service *Service) ListWithReminders(ctx context.Context) ([]*Member, error) {
	return service.repo.ListWithReminders(ctx)
}

// ListRetired returns the holding table.
func (service *Service) ListRetired(ctx context.Context) ([]*RetiredMember, error) {
	return service.repo.ListRetired(ctx)
}

// BoardRecipients returns collaborators to tell about a new posting in a series.
func (service *Service) BoardRecipients(ctx context.Context, seriesID string) ([]*Member, error) {
	return service.repo.ListBoardRecipients(ctx, seriesID)
}

// CurrentRoles fetches the chat roles a collaborator holds right now.
func (service *Service) CurrentRoles(ctx context.Context, discordID string) ([]string, error) {
	roles, err := service.messenger.MemberRoles(ctx, discordID)
	if err != nil {
		return nil, apperr.ExternalTransient("chat platform", err)
	}
	return roles, nil
}

// Tier derives a collaborator's tier from their current chat roles.
func (service *Service) Tier(ctx context.Context, discordID string) (Tier, error) {
	roles, err := service.CurrentRoles(ctx, discordID)
	if err != nil {
		return TierNone, err
	}
	return service.roles.TierOf(roles), nil
}

// UpdatePreferences changes the caller's own settings.
func (service *Service) UpdatePreferences(ctx context.Context, actor sec.Actor, prefs Preferences) error {
	validator := &validate.Validator{}
	if prefs.ReminderInterval != nil {
		validator.Custom(FieldReminderInterval, !prefs.ReminderInterval.Valid(), "Reminder interval must be 0 (never), 1 (3 days), 2 (7 days) or 3 (14 days)")
	}
	if prefs.CreditName != nil {
		validator.MaxLen(FieldCreditName, *prefs.CreditName, 64)
	}
	if err := validator.Err(); err != nil {
		return err
	}

	prefs.CreditName = normaliseCredit(prefs.CreditName)
	return service.repo.UpdatePreferences(ctx, actor.DiscordID, prefs)
}

// Subscribe makes board postings of a series reach the caller.
func (service *Service) Subscribe(ctx context.Context, actor sec.Actor, seriesID string) error {
	member, err := service.repo.FindByDiscordID(ctx, actor.DiscordID)
	if err != nil {
		return err
	}

	if _, err := service.repo.Subscribe(ctx, member.ID, seriesID, service.now().UTC()); err != nil {
		return err
	}
	return nil
}

// Unsubscribe reverses [Service.Subscribe].
func (service *Service) Unsubscribe(ctx context.Context, actor sec.Actor, seriesID string) error {
	member, err := service.repo.FindByDiscordID(ctx, actor.DiscordID)
	if err != nil {
		return err
	}

	removed, err := service.repo.Unsubscribe(ctx, member.ID, seriesID)
	if err != nil {
		return err
	}
	if !removed {
		return apperr.NotFound("Subscription")
	}
	return nil
}

// # Escalation

// ClearEscalation drops the inactivity escalation stamp after fresh activity.
func (service *Service) ClearEscalation(ctx context.Context, discordID string) error {
	return service.repo.SetEscalation(ctx, discordID, nil)
}

// StampEscalation records an escalation at the given time.
func (service *Service) StampEscalation(ctx context.Context, discordID string, at time.Time) error {
	return service.repo.SetEscalation(ctx, discordID, &at)
}

// # Retirement

/*
Retire moves a collaborator to the holding table and strips their roles.

Description: roles are the snapshot fetched by the caller and travel with the
move, so the store is written first. Roles that are already gone on the
platform are skipped. Any other failure puts back the roles already taken
and moves the collaborator back, so the sweep can retry later.
*/
func (service *Service) Retire(ctx context.Context, member *Member, roles []string, tier Tier) error {
	moved, err := service.repo.Retire(ctx, member.DiscordID, roles, tier, service.now().UTC())
	if err != nil {
		return err
	}
	if !moved {
		return apperr.NotFound("Member")
	}

	for i, role := range roles {
		if err := messaging.IgnoreGone(service.messenger.RemoveRole(ctx, member.DiscordID, role)); err != nil {
			service.regrant(ctx, member.DiscordID, roles[:i])
			service.unretire(ctx, member.DiscordID)
			return apperr.ExternalTransient("chat platform", fmt.Errorf("remove role %s: %w", role, err))
		}
	}

	service.logger.Info("member_retired",
		slog.String("discord_id", member.DiscordID),
		slog.String("tier", tier.String()),
		slog.Int("roles", len(roles)),
	)
	return nil
}

/*
Restore reactivates the collaborator and hands back the snapshotted roles.

Description: the collaborator may restore themselves; anyone else needs
project manager authority. The escalation stamp restarts now, so an idle
restored collaborator expires again after one cool-down. If a role cannot be
granted, the granted roles are taken back and the collaborator returns to
the holding table with the same snapshot.
*/
func (service *Service) Restore(ctx context.Context, actor sec.Actor, discordID string) (*Member, error) {
	if actor.DiscordID != discordID && !actor.CanManage() {
		return nil, apperr.Forbidden("Only the collaborator or a project manager can restore")
	}

	retired, err := service.repo.FindRetired(ctx, discordID)
	if err != nil {
		return nil, err
	}

	now := service.now().UTC()
	moved, err := service.repo.Restore(ctx, discordID, now)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, apperr.NotFound("Retired member")
	}

	var granted []string
	for _, role := range retired.Roles {
		if err := messaging.IgnoreGone(service.messenger.AddRole(ctx, discordID, role)); err != nil {
			service.strip(ctx, discordID, granted)
			service.reretire(ctx, retired)
			return nil, apperr.ExternalTransient("chat platform", fmt.Errorf("add role %s: %w", role, err))
		}
		granted = append(granted, role)
	}

	service.logger.Info("member_restored",
		slog.String("discord_id", discordID),
		slog.String("actor", actor.DiscordID),
	)

	member := retired.Member
	member.RemindedAt = &now
	return &member, nil
}

// regrant and strip undo a partial role change. Failures are logged only.
func (service *Service) regrant(ctx context.Context, discordID string, roles []string) {
	for _, role := range roles {
		if err := messaging.IgnoreGone(service.messenger.AddRole(ctx, discordID, role)); err != nil {
			service.logger.Warn("member_role_regrant_failed", slog.String("discord_id", discordID), slog.String("role_id", role), slog.Any("error", err))
		}
	}
}

func (service *Service) strip(ctx context.Context, discordID string, roles []string) {
	for _, role := range roles {
		if err := messaging.IgnoreGone(service.messenger.RemoveRole(ctx, discordID, role)); err != nil {
			service.logger.Warn("member_role_strip_failed", slog.String("discord_id", discordID), slog.String("role_id", role), slog.Any("error", err))
		}
	}
}

// unretire moves a collaborator back after a failed retirement. If the move
// fails the snapshot stays in the holding table, where Restore still finds it.
func (service *Service) unretire(ctx context.Context, discordID string) {
	if _, err := service.repo.Restore(ctx, discordID, service.now().UTC()); err != nil {
		service.logger.Error("member_unretire_failed", slog.String("discord_id", discordID), slog.Any("error", err))
	}
}

func (service *Service) reretire(ctx context.Context, retired *RetiredMember) {
	if _, err := service.repo.Retire(ctx, retired.DiscordID, retired.Roles, retired.Tier, retired.RetiredAt); err != nil {
		service.logger.Error("member_reretire_failed", slog.String("discord_id", retired.DiscordID), slog.Any("error", err))
	}
}

// Remove hard-deletes an active collaborator and strips their tier roles best-effort.
func (service *Service) Remove(ctx context.Context, member *Member, roles []string) error {
	service.strip(ctx, member.DiscordID, roles)

	removed, err := service.repo.Delete(ctx, member.DiscordID)
	if err != nil {
		return err
	}
	if !removed {
		return apperr.NotFound("Member")
	}

	service.logger.Info("member_removed", slog.String("discord_id", member.DiscordID))
	return nil
}

// RemoveRetired hard-deletes a collaborator from the holding table.
func (service *Service) RemoveRetired(ctx context.Context, discordID string) error {
	removed, err := service.repo.DeleteRetired(ctx, discordID)
	if err != nil {
		return err
	}
	if !removed {
		return apperr.NotFound("Retired member")
	}

	service.logger.Info("retired_member_removed", slog.String("discord_id", discordID))
	return nil
}

func normaliseCredit(name *string) *string {
	if name == nil {
		return nil
	}
	converted := titlecase.Convert(*name)
	return &converted
}
