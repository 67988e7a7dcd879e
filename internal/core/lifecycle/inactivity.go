// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/milize/internal/core/roster"
	"github.com/taibuivan/milize/internal/platform/constants"
)

// InactivityReport counts what one inactivity sweep did.
type InactivityReport struct {
	Checked        int
	Exempt         int
	Retired        int
	Removed        int
	RetiredRemoved int
	Failed         int
}

// verdict is the action the tier automaton picked for one collaborator.
type verdict int

const (
	keep verdict = iota
	retire
	remove
)

/*
Inactivity applies the tiered automaton to every active collaborator, then
drops Probationary collaborators whose grace period in the holding table ran out.

Description: idle time is measured from the latest completion across live
and archived assignments, or from the roster join date. Leadership and
anyone holding an open assignment are exempt. The escalation stamp gates
repeats: after an escalation, nothing happens again to the same
collaborator until the cool-down passed. A failed escalation is stamped so
it is retried after the shorter retry cool-down.
*/
func (sweeper *Sweeper) Inactivity(ctx context.Context) (InactivityReport, error) {
	var report InactivityReport
	sweeper.logger.Info("inactivity_sweep_started")

	members, err := sweeper.deps.Roster.List(ctx)
	if err != nil {
		sweeper.logger.Error("inactivity_sweep_failed", slog.Any("error", err))
		return report, err
	}

	for _, member := range members {
		report.Checked++
		sweeper.escalate(ctx, member, &report)
	}

	sweeper.expireRetired(ctx, &report)

	sweeper.logger.Info("inactivity_sweep_finished",
		slog.Int("checked", report.Checked),
		slog.Int("exempt", report.Exempt),
		slog.Int("retired", report.Retired),
		slog.Int("removed", report.Removed),
		slog.Int("retired_removed", report.RetiredRemoved),
		slog.Int("failed", report.Failed),
	)
	return report, nil
}

func (sweeper *Sweeper) escalate(ctx context.Context, member *roster.Member, report *InactivityReport) {
	now := sweeper.now().UTC()
	if member.RemindedAt != nil && now.Sub(*member.RemindedAt) < constants.EscalationCooldown {
		report.Exempt++
		return
	}

	roles, err := sweeper.deps.Roster.CurrentRoles(ctx, member.DiscordID)
	if err != nil {
		report.Failed++
		sweeper.logger.Warn("inactivity_roles_failed", slog.String("discord_id", member.DiscordID), slog.Any("error", err))
		return
	}

	roleMap := sweeper.deps.Roster.Roles()
	if roleMap.IsLeadership(roles) {
		report.Exempt++
		return
	}

	busy, err := sweeper.deps.Assignments.HasOpen(ctx, member.DiscordID)
	if err != nil {
		report.Failed++
		sweeper.logger.Warn("inactivity_open_check_failed", slog.String("discord_id", member.DiscordID), slog.Any("error", err))
		return
	}
	if busy {
		report.Exempt++
		return
	}

	last, err := sweeper.deps.Assignments.LastCompletedAt(ctx, member.DiscordID)
	if err != nil {
		report.Failed++
		sweeper.logger.Warn("inactivity_last_completion_failed", slog.String("discord_id", member.DiscordID), slog.Any("error", err))
		return
	}
	since := member.CreatedAt
	if last != nil {
		since = *last
	}

	tier := roleMap.TierOf(roles)
	switch decide(tier, now.Sub(since)) {
	case retire:
		if err := sweeper.deps.Roster.Retire(ctx, member, tierRoles(roleMap, roles), tier); err != nil {
			report.Failed++
			sweeper.retryLater(ctx, member, now, err)
			return
		}
		report.Retired++
		sweeper.noticeRetired(ctx, member, tier)

	case remove:
		if err := sweeper.deps.Roster.Remove(ctx, member, tierRoles(roleMap, roles)); err != nil {
			report.Failed++
			sweeper.retryLater(ctx, member, now, err)
			return
		}
		report.Removed++
	}
}

// decide maps a tier and idle time to an action.
func decide(tier roster.Tier, idle time.Duration) verdict {
	switch tier {
	case roster.TierFull:
		if idle >= constants.FullInactivityThreshold {
			return retire
		}
	case roster.TierProbationary:
		if idle >= constants.ProbationaryInactivityThreshold {
			return retire
		}
	case roster.TierTrial:
		if idle >= constants.TrialInactivityThreshold {
			return remove
		}
	}
	return keep
}

// tierRoles keeps the roles the engine manages: the tier roles present in roles.
func tierRoles(roleMap roster.RoleMap, roles []string) []string {
	managed := map[string]bool{roleMap.Trial: true, roleMap.Probationary: true, roleMap.Full: true}
	var kept []string
	for _, role := range roles {
		if role != "" && managed[role] {
			kept = append(kept, role)
		}
	}
	return kept
}

// retryLater stamps the escalation so only the retry cool-down must pass before the next attempt.
func (sweeper *Sweeper) retryLater(ctx context.Context, member *roster.Member, now time.Time, cause error) {
	sweeper.logger.Warn("inactivity_escalation_failed", slog.String("discord_id", member.DiscordID), slog.Any("error", cause))

	at := now.Add(-constants.EscalationCooldown + constants.EscalationRetryCooldown)
	if err := sweeper.deps.Roster.StampEscalation(ctx, member.DiscordID, at); err != nil {
		sweeper.logger.Warn("inactivity_retry_stamp_failed", slog.String("discord_id", member.DiscordID), slog.Any("error", err))
	}
}

func (sweeper *Sweeper) noticeRetired(ctx context.Context, member *roster.Member, tier roster.Tier) {
	graceDays := int(constants.EscalationCooldown.Hours() / 24)

	var notice string
	if tier == roster.TierProbationary {
		notice = fmt.Sprintf("You have been inactive for a while, so your roles were set aside. "+
			"Restore them within %d days or you will be removed from the roster.", graceDays)
	} else {
		notice = fmt.Sprintf("You have been inactive for a while, so your roles were set aside. "+
			"You can restore them at any time; without a new claim they expire again after %d days.", graceDays)
	}

	if err := sweeper.deps.Messenger.DirectMessage(ctx, member.DiscordID, notice); err != nil {
		sweeper.logger.Warn("retire_notice_failed", slog.String("discord_id", member.DiscordID), slog.Any("error", err))
	}
}

// expireRetired hard-removes Probationary collaborators still retired after the grace period.
func (sweeper *Sweeper) expireRetired(ctx context.Context, report *InactivityReport) {
	retired, err := sweeper.deps.Roster.ListRetired(ctx)
	if err != nil {
		report.Failed++
		sweeper.logger.Warn("inactivity_retired_list_failed", slog.Any("error", err))
		return
	}

	now := sweeper.now().UTC()
	for _, member := range retired {
		if member.Tier != roster.TierProbationary || now.Sub(member.RetiredAt) < constants.EscalationCooldown {
			continue
		}
		if err := sweeper.deps.Roster.RemoveRetired(ctx, member.DiscordID); err != nil {
			report.Failed++
			sweeper.logger.Warn("retired_removal_failed", slog.String("discord_id", member.DiscordID), slog.Any("error", err))
			continue
		}
		report.RetiredRemoved++
	}
}
