// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pointer builds and reads optional values.
package pointer

import "time"

// To returns a pointer to v.
func To[T any](v T) *T {
	return &v
}

// Val dereferences p, returning the zero value for nil.
func Val[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// NonEmpty returns nil for "" and a pointer otherwise; optional text columns use it.
func NonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Later returns the later of a and b, treating nil as "never".
func Later(a *time.Time, b time.Time) time.Time {
	if a != nil && a.After(b) {
		return *a
	}
	return b
}
