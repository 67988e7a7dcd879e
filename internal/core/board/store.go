// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package board

import (
	"context"
	"time"
)

// # Posting Data Access

// Repository defines the data access contract for claim-board postings.
type Repository interface {

	/*
		Insert records a posting unless one of its unique keys is taken.

		Returns:
		  - bool: false when a posting for the pair or for the series stage definition exists
	*/
	Insert(ctx context.Context, posting *Posting) (bool, error)

	// FindByMessageID returns the posting announced by a chat message.
	FindByMessageID(ctx context.Context, messageID string) (*Posting, error)

	// FindByPair returns the posting of a (work item, series stage).
	FindByPair(ctx context.Context, chapterID, seriesJobID string) (*Posting, error)

	// FindBySeriesJob returns the live posting of a stage definition anywhere in a series.
	FindBySeriesJob(ctx context.Context, seriesID, jobID string) (*Posting, error)

	// ListByChapter returns the postings of a work item.
	ListByChapter(ctx context.Context, chapterID string) ([]*Posting, error)

	// ListCreatedBefore returns postings created before cutoff, oldest first.
	ListCreatedBefore(ctx context.Context, cutoff time.Time) ([]*Posting, error)

	// Delete removes a posting; false if it was already gone.
	Delete(ctx context.Context, id string) (bool, error)
}
