// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package publish schedules and runs one-shot chapter publications.

A queued [Publication] is a dispatch ticket, not a job record. The poller
deletes the earliest due ticket before running it, so a ticket runs at most
once; a failed run is reported and never retried.
*/
package publish

import "time"

// Publication is a queued publish of one chapter.
type Publication struct {
	ID        string  `json:"id"`
	SeriesID  string  `json:"series_id"`
	ChapterID *string `json:"chapter_id,omitempty"`

	// MangaID and GroupIDs address the session-based target.
	MangaID  string   `json:"manga_id"`
	GroupIDs []string `json:"group_ids"`

	Volume        *string `json:"volume,omitempty"`
	ChapterNumber string  `json:"chapter_number"`
	Title         *string `json:"title,omitempty"`
	Language      string  `json:"language"`

	// SourcePrefix is the object store folder holding the page images.
	SourcePrefix string `json:"source_prefix"`

	// MirrorKey is the mirror document; nil skips the mirror step.
	MirrorKey *string `json:"mirror_key,omitempty"`

	RequestedBy     string    `json:"requested_by"`
	ReportChannelID string    `json:"report_channel_id"`
	DueAt           time.Time `json:"due_at"`
	CreatedAt       time.Time `json:"created_at"`
}

// Steps of an execution, in order.
const (
	StepSession = "session"
	StepUpload  = "upload"
	StepCommit  = "commit"
	StepMirror  = "mirror"
)

// Result is the terminal status of one execution.
type Result struct {
	Publication *Publication
	ChapterID   string
	Pages       int

	// FailedStep is empty on success.
	FailedStep string
	Err        error
}

// Succeeded reports whether every step passed.
func (r *Result) Succeeded() bool {
	return r.FailedStep == ""
}
