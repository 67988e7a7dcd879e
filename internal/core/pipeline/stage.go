// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pipeline

import "fmt"

// StageType is one of the fixed pipeline roles. The numeric values are persisted.
type StageType int

const (
	Translation StageType = iota
	Proofreading
	Redrawing
	Cleaning
	Typesetting
	TypesettingSFX
	Quality
	Management
)

// All lists every stage type in declaration order.
var All = []StageType{
	Translation, Proofreading, Redrawing, Cleaning,
	Typesetting, TypesettingSFX, Quality, Management,
}

var stageNames = map[StageType]string{
	Translation:    "translation",
	Proofreading:   "proofreading",
	Redrawing:      "redrawing",
	Cleaning:       "cleaning",
	Typesetting:    "typesetting",
	TypesettingSFX: "typesetting_sfx",
	Quality:        "quality",
	Management:     "management",
}

var stageLabels = map[StageType]string{
	Translation:    "Translation",
	Proofreading:   "Proofreading",
	Redrawing:      "Redrawing",
	Cleaning:       "Cleaning",
	Typesetting:    "Typesetting",
	TypesettingSFX: "Typesetting (SFX)",
	Quality:        "Quality Check",
	Management:     "Management",
}

func (t StageType) Valid() bool {
	return t >= Translation && t <= Management
}

func (t StageType) String() string {
	if name, ok := stageNames[t]; ok {
		return name
	}
	return fmt.Sprintf("stage(%d)", int(t))
}

// Label is the human readable name used in notices.
func (t StageType) Label() string {
	if label, ok := stageLabels[t]; ok {
		return label
	}
	return t.String()
}

// ParseStageType resolves the wire name of a stage type.
func ParseStageType(name string) (StageType, error) {
	for t, n := range stageNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("pipeline: unknown stage type %q", name)
}

// StageState is the aggregated state of one stage type within a work item.
type StageState int

const (
	// StateAbsent means the series has no stage of this type.
	StateAbsent StageState = iota

	// StatePending means at least one stage of this type is not completed.
	StatePending

	// StateCompleted means every stage of this type is completed.
	StateCompleted
)

// Snapshot maps each stage type of a work item to its state. Missing keys are absent.
type Snapshot map[StageType]StageState

// Has reports whether the series contains the stage type.
func (s Snapshot) Has(t StageType) bool {
	return s[t] != StateAbsent
}

// Completed reports whether the stage type exists and is completed.
func (s Snapshot) Completed(t StageType) bool {
	return s[t] == StateCompleted
}

// Done reports whether the stage type is completed or absent.
func (s Snapshot) Done(t StageType) bool {
	return s[t] != StatePending
}
