// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid generates the identifiers used for every stored record.

Records get time-ordered UUIDv7 values so primary-key indexes stay
append-mostly. Opaque tokens that must not leak creation time (wizard
session ids) use random v4 values.
*/
package uuid

import "github.com/google/uuid"

// New returns a UUIDv7 string. It panics only when the system entropy
// source fails, which no caller can recover from.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuid: failed to generate v7: " + err.Error())
	}
	return id.String()
}

// Token returns a random UUIDv4 string.
func Token() string {
	return uuid.NewString()
}

// Valid reports whether s parses as a UUID.
func Valid(s string) bool {
	return uuid.Validate(s) == nil
}
