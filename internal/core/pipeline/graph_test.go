// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/milize/internal/core/pipeline"
)

const (
	absent    = pipeline.StateAbsent
	pending   = pipeline.StatePending
	completed = pipeline.StateCompleted
)

/*
TestSatisfied pins the rule table, including the asymmetric fallback of
Cleaning and Redrawing onto Translation.
*/
func TestSatisfied(t *testing.T) {
	tests := []struct {
		name     string
		stage    pipeline.StageType
		snapshot pipeline.Snapshot
		want     bool
	}{
		{"translation_blocked_by_proofreading_presence", pipeline.Translation, pipeline.Snapshot{pipeline.Translation: completed, pipeline.Proofreading: completed}, false},
		{"translation_waits_for_cleaning", pipeline.Translation, pipeline.Snapshot{pipeline.Translation: completed, pipeline.Cleaning: pending}, false},
		{"translation_clear", pipeline.Translation, pipeline.Snapshot{pipeline.Translation: completed, pipeline.Cleaning: completed, pipeline.Redrawing: completed}, true},
		{"translation_alone", pipeline.Translation, pipeline.Snapshot{pipeline.Translation: completed}, true},

		{"proofreading_waits_for_redrawing", pipeline.Proofreading, pipeline.Snapshot{pipeline.Proofreading: completed, pipeline.Redrawing: pending}, false},
		{"proofreading_clear", pipeline.Proofreading, pipeline.Snapshot{pipeline.Proofreading: completed, pipeline.Cleaning: completed}, true},

		{"cleaning_waits_for_proofreading", pipeline.Cleaning, pipeline.Snapshot{pipeline.Cleaning: completed, pipeline.Proofreading: pending, pipeline.Translation: completed}, false},
		{"cleaning_ignores_translation_with_proofreading", pipeline.Cleaning, pipeline.Snapshot{pipeline.Cleaning: completed, pipeline.Proofreading: completed, pipeline.Translation: pending}, true},
		{"cleaning_falls_back_to_translation", pipeline.Cleaning, pipeline.Snapshot{pipeline.Cleaning: completed, pipeline.Translation: pending}, false},
		{"cleaning_without_text_stages", pipeline.Cleaning, pipeline.Snapshot{pipeline.Cleaning: completed}, true},
		{"cleaning_waits_for_redrawing", pipeline.Cleaning, pipeline.Snapshot{pipeline.Cleaning: completed, pipeline.Redrawing: pending, pipeline.Translation: completed}, false},

		{"redrawing_mirror_of_cleaning", pipeline.Redrawing, pipeline.Snapshot{pipeline.Redrawing: completed, pipeline.Cleaning: pending, pipeline.Translation: completed}, false},
		{"redrawing_clear", pipeline.Redrawing, pipeline.Snapshot{pipeline.Redrawing: completed, pipeline.Cleaning: completed, pipeline.Translation: completed}, true},

		{"typesetting_waits_for_sfx", pipeline.Typesetting, pipeline.Snapshot{pipeline.Typesetting: completed, pipeline.TypesettingSFX: pending}, false},
		{"typesetting_without_sfx", pipeline.Typesetting, pipeline.Snapshot{pipeline.Typesetting: completed}, true},
		{"sfx_waits_for_typesetting", pipeline.TypesettingSFX, pipeline.Snapshot{pipeline.TypesettingSFX: completed, pipeline.Typesetting: pending}, false},

		{"quality_sink", pipeline.Quality, pipeline.Snapshot{pipeline.Typesetting: pending}, true},
		{"management_sink", pipeline.Management, pipeline.Snapshot{pipeline.Quality: pending}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pipeline.Satisfied(tt.stage, tt.snapshot))
		})
	}
}

/*
TestNext_ScenarioTranslationBeforeCleaning walks a series with Translation,
Cleaning and Typesetting only.
*/
func TestNext_ScenarioTranslationBeforeCleaning(t *testing.T) {
	snapshot := pipeline.Snapshot{pipeline.Translation: completed, pipeline.Cleaning: pending, pipeline.Typesetting: pending}

	// Translation finished first: Proofreading is named but absent, so nobody is told.
	assert.False(t, pipeline.Satisfied(pipeline.Translation, snapshot))
	assert.Equal(t, []pipeline.StageType{pipeline.Proofreading}, pipeline.Next(pipeline.Translation, snapshot))
	assert.False(t, snapshot.Has(pipeline.Proofreading))

	// Cleaning finishes last and unblocks Typesetting.
	snapshot[pipeline.Cleaning] = completed
	assert.Equal(t, []pipeline.StageType{pipeline.Typesetting}, pipeline.Next(pipeline.Cleaning, snapshot))
	assert.True(t, pipeline.Ready(pipeline.Typesetting, snapshot))
}

func TestNext(t *testing.T) {
	tests := []struct {
		name     string
		stage    pipeline.StageType
		snapshot pipeline.Snapshot
		want     []pipeline.StageType
	}{
		{"translation_to_proofreading", pipeline.Translation, pipeline.Snapshot{pipeline.Translation: completed, pipeline.Proofreading: pending}, []pipeline.StageType{pipeline.Proofreading}},
		{"translation_to_typesetting", pipeline.Translation, pipeline.Snapshot{pipeline.Translation: completed}, []pipeline.StageType{pipeline.Typesetting}},
		{"proofreading_blocked", pipeline.Proofreading, pipeline.Snapshot{pipeline.Proofreading: completed, pipeline.Cleaning: pending}, nil},
		{"proofreading_to_typesetting", pipeline.Proofreading, pipeline.Snapshot{pipeline.Proofreading: completed}, []pipeline.StageType{pipeline.Typesetting}},
		{"sfx_to_quality", pipeline.TypesettingSFX, pipeline.Snapshot{pipeline.TypesettingSFX: completed, pipeline.Typesetting: completed}, []pipeline.StageType{pipeline.Quality}},
		{"typesetting_blocked", pipeline.Typesetting, pipeline.Snapshot{pipeline.Typesetting: completed, pipeline.TypesettingSFX: pending}, nil},
		{"quality_to_management", pipeline.Quality, pipeline.Snapshot{pipeline.Quality: completed}, []pipeline.StageType{pipeline.Management}},
		{"management_terminal", pipeline.Management, pipeline.Snapshot{pipeline.Management: completed}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pipeline.Next(tt.stage, tt.snapshot))
		})
	}
}

func TestReady(t *testing.T) {
	tests := []struct {
		name     string
		stage    pipeline.StageType
		snapshot pipeline.Snapshot
		want     bool
	}{
		{"proofreading_waits_for_translation", pipeline.Proofreading, pipeline.Snapshot{pipeline.Translation: pending}, false},
		{"typesetting_waits_for_cleaning", pipeline.Typesetting, pipeline.Snapshot{pipeline.Cleaning: pending, pipeline.Translation: completed}, false},
		{"typesetting_waits_for_translation_without_proofreading", pipeline.Typesetting, pipeline.Snapshot{pipeline.Translation: pending}, false},
		{"typesetting_after_proofreading", pipeline.Typesetting, pipeline.Snapshot{pipeline.Proofreading: completed, pipeline.Translation: pending}, true},
		{"quality_waits_for_sfx", pipeline.Quality, pipeline.Snapshot{pipeline.Typesetting: completed, pipeline.TypesettingSFX: pending}, false},
		{"quality_ready", pipeline.Quality, pipeline.Snapshot{pipeline.Typesetting: completed}, true},
		{"translation_always", pipeline.Translation, pipeline.Snapshot{pipeline.Cleaning: pending}, true},
		{"management_always", pipeline.Management, pipeline.Snapshot{pipeline.Quality: pending}, true},
		{"redrawing_ignores_text", pipeline.Redrawing, pipeline.Snapshot{pipeline.Translation: pending, pipeline.Cleaning: pending}, true},
		{"cleaning_ignores_text", pipeline.Cleaning, pipeline.Snapshot{pipeline.Translation: pending, pipeline.Proofreading: pending}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pipeline.Ready(tt.stage, tt.snapshot))
		})
	}
}

/*
TestReadyDivergesFromSatisfied records the cases where the completion check
and the actionability check disagree. They answer different questions and
are kept apart on purpose; a change here must be deliberate.
*/
func TestReadyDivergesFromSatisfied(t *testing.T) {
	withProofreading := pipeline.Snapshot{pipeline.Translation: pending, pipeline.Proofreading: pending}
	assert.False(t, pipeline.Satisfied(pipeline.Translation, withProofreading))
	assert.True(t, pipeline.Ready(pipeline.Translation, withProofreading))

	typesettingOpen := pipeline.Snapshot{pipeline.Typesetting: pending, pipeline.Quality: pending}
	assert.True(t, pipeline.Satisfied(pipeline.Quality, typesettingOpen))
	assert.False(t, pipeline.Ready(pipeline.Quality, typesettingOpen))
}

func TestStageType(t *testing.T) {
	for _, stage := range pipeline.All {
		parsed, err := pipeline.ParseStageType(stage.String())
		assert.NoError(t, err)
		assert.Equal(t, stage, parsed)
		assert.True(t, stage.Valid())
	}

	_, err := pipeline.ParseStageType("lettering")
	assert.Error(t, err)
	assert.False(t, pipeline.StageType(8).Valid())
	assert.Equal(t, "Typesetting (SFX)", pipeline.TypesettingSFX.Label())
}

func TestSnapshot(t *testing.T) {
	snapshot := pipeline.Snapshot{pipeline.Cleaning: pending, pipeline.Typesetting: completed}

	assert.False(t, snapshot.Has(pipeline.Translation))
	assert.True(t, snapshot.Done(pipeline.Translation))
	assert.False(t, snapshot.Done(pipeline.Cleaning))
	assert.True(t, snapshot.Completed(pipeline.Typesetting))
	assert.Equal(t, absent, snapshot[pipeline.Redrawing])
}
