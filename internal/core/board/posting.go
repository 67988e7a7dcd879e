// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package board runs the claim board: public postings of unclaimed stages
that eligible collaborators can pick up.

Two uniqueness rules hold in the store: one live posting per (work item,
series stage), and one live posting per (series, stage definition) so a
stage cannot flood the board with several chapters at once. A posting is
deleted when its stage is claimed, when a manager removes it, or when it
outlives the board TTL.
*/
package board

import (
	"time"

	"github.com/taibuivan/milize/internal/core/roster"
)

// Posting is a live claim-board advertisement.
type Posting struct {
	ID          string      `json:"id"`
	MessageID   string      `json:"message_id"`
	ChannelID   string      `json:"channel_id"`
	ChapterID   string      `json:"chapter_id"`
	SeriesJobID string      `json:"series_job_id"`
	SeriesID    string      `json:"series_id"`
	JobID       string      `json:"job_id"`
	MinTier     roster.Tier `json:"min_tier"`
	CreatedAt   time.Time   `json:"created_at"`
}
