// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import "context"

// # Work Item Data Access

// Repository defines the data access contract for work items.
type Repository interface {

	/*
		Create inserts a work item while its series holds fewer than limit live ones.

		Returns:
		  - bool: false when the series is at the limit
		  - error: apperr.Conflict when the name is taken in the series
	*/
	Create(ctx context.Context, chapter *Chapter, limit int) (bool, error)

	// FindByID returns the work item with the given ID, archived or not.
	FindByID(ctx context.Context, id string) (*Chapter, error)

	// ListLive returns the unarchived work items of a series, oldest first.
	ListLive(ctx context.Context, seriesID string) ([]*Chapter, error)

	/*
		Archive flags a live work item and moves its assignments to the archive table.

		Returns:
		  - bool: false when the work item was already archived
	*/
	Archive(ctx context.Context, id string) (bool, error)

	/*
		Unarchive clears the flag and moves archived assignments back, provided
		the series holds fewer than limit live work items.

		Returns:
		  - bool: false when the work item is live already or the series is full
	*/
	Unarchive(ctx context.Context, id string, limit int) (bool, error)
}
