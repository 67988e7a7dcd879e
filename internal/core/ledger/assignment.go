// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package ledger owns assignments: who works on which stage of which work item.

The unique (work item, series stage) key in the store is the only guard
against double claims. Every mutation here is a single conditional
statement whose affected-row count decides the outcome; no application
lock is taken.
*/
package ledger

import (
	"fmt"
	"time"

	"github.com/taibuivan/milize/internal/core/chapter"
	"github.com/taibuivan/milize/internal/core/pipeline"
	"github.com/taibuivan/milize/internal/core/series"
)

// # Status

// Status is the progress of an assignment. Values are persisted and only move forward.
type Status int

const (
	StatusBacklog Status = iota
	StatusInProgress
	StatusCompleted
)

var statusNames = map[Status]string{
	StatusBacklog:    "backlog",
	StatusInProgress: "in_progress",
	StatusCompleted:  "completed",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

func (s Status) Valid() bool {
	return s >= StatusBacklog && s <= StatusCompleted
}

// ParseStatus resolves a wire name.
func ParseStatus(name string) (Status, error) {
	for s, n := range statusNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("ledger: unknown status %q", name)
}

// # Assignment

// Assignment binds one collaborator to one (work item, series stage).
type Assignment struct {
	ID          string `json:"id"`
	ChapterID   string `json:"chapter_id"`
	SeriesJobID string `json:"series_job_id"`
	AssignedTo  string `json:"assigned_to"`
	Status      Status `json:"status"`

	// Account is false when the stage was completed within the grace window of claiming.
	Account bool `json:"account"`

	CreatedAt time.Time `json:"created_at"`

	// AvailableAt is when the assignee was told the stage unblocked.
	AvailableAt *time.Time `json:"available_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	RemindedAt  *time.Time `json:"reminded_at,omitempty"`
}

// ClaimResult is returned by claim and assign.
type ClaimResult struct {
	Assignment *Assignment `json:"assignment"`

	// FirstJob is true when this is the assignee's first assignment ever.
	FirstJob bool `json:"first_job"`
}

// # Progress

// Progress is the full pipeline picture of one work item.
type Progress struct {
	Series      *series.Series
	Chapter     *chapter.Chapter
	Stages      []*series.SeriesJob
	Assignments []*Assignment
	Snapshot    pipeline.Snapshot
}

// Stage returns the series stage with the given id, or nil.
func (p *Progress) Stage(seriesJobID string) *series.SeriesJob {
	for _, stage := range p.Stages {
		if stage.ID == seriesJobID {
			return stage
		}
	}
	return nil
}

// AssignmentsOf returns the assignments whose series stage has type t.
func (p *Progress) AssignmentsOf(t pipeline.StageType) []*Assignment {
	var matched []*Assignment
	for _, assignment := range p.Assignments {
		if stage := p.Stage(assignment.SeriesJobID); stage != nil && stage.Type == t {
			matched = append(matched, assignment)
		}
	}
	return matched
}

/*
BuildSnapshot folds the series stages and live assignments of a work item
into a [pipeline.Snapshot].

A stage type is completed only when every series stage of that type has a
completed assignment. A series stage without an assignment is pending.
*/
func BuildSnapshot(stages []*series.SeriesJob, assignments []*Assignment) pipeline.Snapshot {
	completed := make(map[string]bool, len(assignments))
	for _, assignment := range assignments {
		if assignment.Status == StatusCompleted {
			completed[assignment.SeriesJobID] = true
		}
	}

	snapshot := pipeline.Snapshot{}
	for _, stage := range stages {
		switch {
		case !completed[stage.ID]:
			snapshot[stage.Type] = pipeline.StatePending
		case snapshot[stage.Type] == pipeline.StateAbsent:
			snapshot[stage.Type] = pipeline.StateCompleted
		}
	}
	return snapshot
}
