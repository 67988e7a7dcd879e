// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ledger

import (
	"context"
	"time"
)

// # Assignment Data Access

// Repository defines the data access contract for assignments.
//
// Methods returning bool report whether their conditional statement matched a row.
type Repository interface {

	/*
		Insert creates the assignment unless the (work item, series stage) pair is taken.

		Returns:
		  - bool: false when another assignment holds the pair
	*/
	Insert(ctx context.Context, assignment *Assignment) (bool, error)

	// Find returns the live assignment of a pair.
	Find(ctx context.Context, chapterID, seriesJobID string) (*Assignment, error)

	// ListByChapter returns the live assignments of a work item.
	ListByChapter(ctx context.Context, chapterID string) ([]*Assignment, error)

	// ListOpenByAssignee returns live, non-completed assignments of a collaborator.
	ListOpenByAssignee(ctx context.Context, discordID string) ([]*Assignment, error)

	// HasOpen reports whether a collaborator holds any live non-completed assignment.
	HasOpen(ctx context.Context, discordID string) (bool, error)

	// CountAll counts a collaborator's assignments, live and archived.
	CountAll(ctx context.Context, discordID string) (int, error)

	// LastCompletedAt returns the latest completion across live and archived assignments.
	LastCompletedAt(ctx context.Context, discordID string) (*time.Time, error)

	// Delete removes an assignment.
	Delete(ctx context.Context, id string) (bool, error)

	// DeleteOwned removes an assignment only if discordID still holds it.
	DeleteOwned(ctx context.Context, id, discordID string) (bool, error)

	/*
		UpdateStatus moves an assignment to status if its current status is lower.
		completedAt and account are written together with the status.
	*/
	UpdateStatus(ctx context.Context, id string, status Status, completedAt *time.Time, account bool) (bool, error)

	// UpdateAssignee hands an assignment to another collaborator.
	UpdateAssignee(ctx context.Context, id, discordID string) (bool, error)

	/*
		MarkAvailable stamps available_at and reminded_at, provided the
		assignment was never marked and is not completed. Exactly one caller
		wins the stamp; only the winner notifies.
	*/
	MarkAvailable(ctx context.Context, id string, at time.Time) (bool, error)

	// MarkReminded stamps reminded_at.
	MarkReminded(ctx context.Context, id string, at time.Time) error
}
