// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package roster keeps the collaborators of the group.

An active collaborator lives in the member table. A retired collaborator is
moved to a holding table together with a snapshot of the roles stripped
from them, so a later restore can hand the roles back.
*/
package roster

import (
	"slices"
	"time"

	"github.com/taibuivan/milize/internal/platform/sec"
)

// # Tiers

// Tier is the trust level derived from a collaborator's chat roles. Values are persisted.
type Tier int

const (
	TierNone         Tier = -1
	TierTrial        Tier = 0
	TierProbationary Tier = 1
	TierFull         Tier = 2
)

func (t Tier) String() string {
	switch t {
	case TierTrial:
		return "trial"
	case TierProbationary:
		return "probationary"
	case TierFull:
		return "full"
	default:
		return "none"
	}
}

// # Reminder Intervals

// ReminderInterval is the persisted reminder preference: never, 3, 7 or 14 days.
type ReminderInterval int

const (
	RemindNever ReminderInterval = iota
	Remind3Days
	Remind7Days
	Remind14Days
)

var reminderDays = map[ReminderInterval]int{
	Remind3Days:  3,
	Remind7Days:  7,
	Remind14Days: 14,
}

// Duration returns the interval length. ok is false for RemindNever and unknown values.
func (r ReminderInterval) Duration() (time.Duration, bool) {
	days, ok := reminderDays[r]
	return time.Duration(days) * 24 * time.Hour, ok
}

func (r ReminderInterval) Valid() bool {
	return r >= RemindNever && r <= Remind14Days
}

// # Members

// Member is an active collaborator.
type Member struct {
	ID                 string           `json:"id"`
	DiscordID          string           `json:"discord_id"`
	CreditName         *string          `json:"credit_name,omitempty"`
	Authority          sec.Authority    `json:"authority"`
	ReminderInterval   ReminderInterval `json:"reminder_interval"`
	BoardNotifications bool             `json:"board_notifications"`
	StageNotifications bool             `json:"stage_notifications"`
	CreatedAt          time.Time        `json:"created_at"`

	// RemindedAt is the inactivity escalation stamp.
	RemindedAt *time.Time `json:"reminded_at,omitempty"`
}

// RetiredMember is a collaborator in the holding table.
type RetiredMember struct {
	Member
	Roles     []string  `json:"roles"`
	Tier      Tier      `json:"tier"`
	RetiredAt time.Time `json:"retired_at"`
}

// Preferences is a partial update of a member's settings. Nil fields are kept.
type Preferences struct {
	CreditName         *string           `json:"credit_name"`
	ReminderInterval   *ReminderInterval `json:"reminder_interval"`
	BoardNotifications *bool             `json:"board_notifications"`
	StageNotifications *bool             `json:"stage_notifications"`
}

// # Role Mapping

// RoleMap names the chat roles behind each tier.
type RoleMap struct {
	Trial        string
	Probationary string
	Full         string
	Leadership   []string
}

// TierOf returns the highest tier the roles grant.
func (m RoleMap) TierOf(roles []string) Tier {
	switch {
	case m.Full != "" && slices.Contains(roles, m.Full):
		return TierFull
	case m.Probationary != "" && slices.Contains(roles, m.Probationary):
		return TierProbationary
	case m.Trial != "" && slices.Contains(roles, m.Trial):
		return TierTrial
	default:
		return TierNone
	}
}

// IsLeadership reports whether any role is a leadership role.
func (m RoleMap) IsLeadership(roles []string) bool {
	for _, role := range roles {
		if slices.Contains(m.Leadership, role) {
			return true
		}
	}
	return false
}
