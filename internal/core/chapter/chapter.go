// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package chapter manages work items: the chapters of a series that flow
through the pipeline.

A work item is never hard-deleted. Archiving moves its assignments into a
shadow table in the same transaction; unarchiving moves them back with
their identities and timestamps intact.
*/
package chapter

import "time"

// Chapter is one unit of work in a series.
type Chapter struct {
	ID         string    `json:"id"`
	SeriesID   string    `json:"series_id"`
	Name       string    `json:"name"`
	DriveLink  *string   `json:"drive_link,omitempty"`
	IsArchived bool      `json:"is_archived"`
	CreatedAt  time.Time `json:"created_at"`
}
