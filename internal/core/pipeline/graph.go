// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package pipeline is the stage dependency table of the production pipeline.

Two questions are answered here and they are deliberately kept apart:

  - [Satisfied]: does completing a stage of this type unblock the next
    stage? Used by the notifier after every completion.
  - [Ready]: is the upstream work of this stage done? Used to gate
    reminders and the move to InProgress.

The table is fixed and hand-authored. A stage type absent from the series
counts as satisfied.
*/
package pipeline

// Satisfied reports whether the prerequisites of stage type t are met in s.
func Satisfied(t StageType, s Snapshot) bool {
	switch t {
	case Translation:
		return !s.Has(Proofreading) && s.Done(Redrawing) && s.Done(Cleaning)

	case Proofreading:
		return s.Done(Redrawing) && s.Done(Cleaning)

	case Cleaning:
		return s.Done(Redrawing) && upstreamText(s)

	case Redrawing:
		return s.Done(Cleaning) && upstreamText(s)

	case Typesetting:
		return s.Done(TypesettingSFX)

	case TypesettingSFX:
		return s.Done(Typesetting)

	default:
		// Quality and Management are sinks.
		return true
	}
}

// upstreamText checks Proofreading, falling back to Translation when the
// series has no Proofreading stage.
func upstreamText(s Snapshot) bool {
	if s.Has(Proofreading) {
		return s.Completed(Proofreading)
	}
	return s.Done(Translation)
}

// Ready reports whether a stage of type t is actionable in s.
func Ready(t StageType, s Snapshot) bool {
	switch t {
	case Proofreading:
		return s.Done(Translation)

	case Typesetting, TypesettingSFX:
		return s.Done(Redrawing) && s.Done(Cleaning) && upstreamText(s)

	case Quality:
		return s.Done(Typesetting) && s.Done(TypesettingSFX)

	default:
		return true
	}
}

// Next returns the stage types to notify after a stage of type t completes.
// TypesettingSFX is never returned directly; notifying Typesetting cascades
// into it.
func Next(t StageType, s Snapshot) []StageType {
	switch t {
	case Translation:
		if Satisfied(t, s) {
			return []StageType{Typesetting}
		}
		return []StageType{Proofreading}

	case Proofreading, Cleaning, Redrawing:
		if Satisfied(t, s) {
			return []StageType{Typesetting}
		}

	case Typesetting, TypesettingSFX:
		if Satisfied(t, s) {
			return []StageType{Quality}
		}

	case Quality:
		return []StageType{Management}
	}
	return nil
}
