// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package roster

import (
	"context"
	"time"
)

// # Roster Data Access

// Repository defines the data access contract for active and retired collaborators.
type Repository interface {

	/*
		Add inserts a member unless one with the same chat id exists.

		Returns:
		  - bool: false when the member already exists
	*/
	Add(ctx context.Context, member *Member) (bool, error)

	// FindByDiscordID returns the active member with the given chat id.
	FindByDiscordID(ctx context.Context, discordID string) (*Member, error)

	// List returns every active member.
	List(ctx context.Context) ([]*Member, error)

	// ListWithReminders returns active members whose reminder interval is not never.
	ListWithReminders(ctx context.Context) ([]*Member, error)

	// ListBoardRecipients returns members with board notifications on or subscribed to the series.
	ListBoardRecipients(ctx context.Context, seriesID string) ([]*Member, error)

	// Delete hard-removes an active member.
	Delete(ctx context.Context, discordID string) (bool, error)

	// SetEscalation stamps or clears the inactivity escalation timestamp.
	SetEscalation(ctx context.Context, discordID string, at *time.Time) error

	// UpdatePreferences applies the non-nil fields of prefs.
	UpdatePreferences(ctx context.Context, discordID string, prefs Preferences) error

	/*
		Retire moves a member into the holding table with its role snapshot.

		Returns:
		  - bool: false when no active member matched
	*/
	Retire(ctx context.Context, discordID string, roles []string, tier Tier, at time.Time) (bool, error)

	// FindRetired returns a member from the holding table.
	FindRetired(ctx context.Context, discordID string) (*RetiredMember, error)

	// ListRetired returns every retired member.
	ListRetired(ctx context.Context) ([]*RetiredMember, error)

	/*
		Restore moves a retired member back to the active table and sets its
		escalation stamp to at.

		Returns:
		  - bool: false when no retired member matched
	*/
	Restore(ctx context.Context, discordID string, at time.Time) (bool, error)

	// DeleteRetired hard-removes a member from the holding table.
	DeleteRetired(ctx context.Context, discordID string) (bool, error)

	// Subscribe records a series subscription; false if it already existed.
	Subscribe(ctx context.Context, memberID, seriesID string, at time.Time) (bool, error)

	// Unsubscribe removes a series subscription; false if there was none.
	Unsubscribe(ctx context.Context, memberID, seriesID string) (bool, error)
}
