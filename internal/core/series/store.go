// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package series

import "context"

// # Series Data Access

// Repository defines the data access contract for series and their stages.
type Repository interface {

	/*
		FindByID returns the series with the given ID.

		Returns:
		  - *Series: Hydrated series
		  - error: apperr.NotFound if missing
	*/
	FindByID(ctx context.Context, id string) (*Series, error)

	/*
		FindSeriesJob returns one series stage joined with its stage definition.

		Returns:
		  - *SeriesJob: Hydrated series stage
		  - error: apperr.NotFound if missing
	*/
	FindSeriesJob(ctx context.Context, id string) (*SeriesJob, error)

	// ListSeriesJobs returns every stage of a series ordered by position.
	ListSeriesJobs(ctx context.Context, seriesID string) ([]*SeriesJob, error)

	// SetArchived flips the archived flag of a series.
	SetArchived(ctx context.Context, id string, archived bool) error
}
