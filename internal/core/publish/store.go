// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package publish

import (
	"context"
	"time"
)

// # Publication Queue

// Repository defines the data access contract for the publication queue.
type Repository interface {
	Insert(ctx context.Context, publication *Publication) error

	// FindByID returns a queued publication.
	FindByID(ctx context.Context, id string) (*Publication, error)

	// List returns the queue ordered by due time.
	List(ctx context.Context) ([]*Publication, error)

	// Delete removes a queued publication; false when it was not queued.
	Delete(ctx context.Context, id string) (bool, error)

	/*
		DequeueDue removes and returns the earliest publication due at or before now.

		Description: the row is deleted in the same statement that selects it,
		so two pollers never receive the same publication.

		Returns:
		  - *Publication: nil when nothing is due
	*/
	DequeueDue(ctx context.Context, now time.Time) (*Publication, error)
}
