// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package series owns the catalogue side of the pipeline: groups, the series
they translate, the stage definitions (jobs) a group staffs, and the series
stages that instantiate a job into one series's pipeline.

Archiving a series cascades to its live work items through [ChapterArchiver].
*/
package series

import (
	"slices"
	"time"

	"github.com/taibuivan/milize/internal/core/pipeline"
	"github.com/taibuivan/milize/pkg/titlecase"
)

// Group is a scanlation group.
type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Series is one translated work.
type Series struct {
	ID             string    `json:"id"`
	GroupID        string    `json:"group_id"`
	Name           string    `json:"name"`
	DriveLink      *string   `json:"drive_link,omitempty"`
	StyleGuide     *string   `json:"style_guide,omitempty"`
	MangaDexID     *string   `json:"mangadex_id,omitempty"`
	MirrorKey      *string   `json:"mirror_key,omitempty"`
	Thumbnail      *string   `json:"thumbnail,omitempty"`
	BlockedTargets []string  `json:"blocked_targets"`
	IsArchived     bool      `json:"is_archived"`
	CreatedAt      time.Time `json:"created_at"`
}

// Blocks reports whether publishing to target is refused for this series.
func (s *Series) Blocks(target string) bool {
	return slices.Contains(s.BlockedTargets, target)
}

// Job is a stage definition: a named capability with a qualifying role.
type Job struct {
	ID             string             `json:"id"`
	GroupID        string             `json:"group_id"`
	Name           string             `json:"name"`
	Type           pipeline.StageType `json:"stage_type"`
	RoleID         string             `json:"role_id"`
	BoardChannelID *string            `json:"board_channel_id,omitempty"`
}

// SeriesJob attaches a [Job] to a series. The job fields are denormalised
// for the callers that only need the stage type, role and board channel.
type SeriesJob struct {
	ID             string             `json:"id"`
	SeriesID       string             `json:"series_id"`
	JobID          string             `json:"job_id"`
	Name           string             `json:"name"`
	Type           pipeline.StageType `json:"stage_type"`
	RoleID         string             `json:"role_id"`
	BoardChannelID *string            `json:"board_channel_id,omitempty"`
	Position       int                `json:"position"`
}

// DisplayName is the stage name as notices print it.
func (j *SeriesJob) DisplayName() string {
	return titlecase.Convert(j.Name)
}

// Publish target names recorded in [Series.BlockedTargets].
const (
	TargetMangaDex = "mangadex"
	TargetMirror   = "mirror"
)
