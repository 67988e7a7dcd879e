// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the error taxonomy shared by the workflow engine.

Every failure that leaves a service is one of five kinds:

  - Conflict: a uniqueness rule fired (already claimed, already posted).
  - NotFound: the referenced record does not exist.
  - PolicyViolation: the request is well formed but the workflow refuses it.
  - ExternalTransient: the chat platform or a publish target failed.
  - Internal: the store is unreachable or something unexpected happened.

Handlers render an [AppError] as-is; sweeps log it and move on.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Machine-readable codes.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeAlreadyClaimed     = "ALREADY_CLAIMED"
	CodeAlreadyPosted      = "ALREADY_POSTED"
	CodeArchived           = "ARCHIVED"
	CodePrerequisiteNotMet = "PREREQUISITE_NOT_MET"
	CodeTierTooLow         = "TIER_TOO_LOW"
	CodeCapReached         = "CAP_REACHED"
	CodeForbidden          = "FORBIDDEN"
	CodePolicy             = "POLICY_VIOLATION"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeValidation         = "VALIDATION_ERROR"
	CodeRateLimited        = "RATE_LIMITED"
	CodeExternal           = "EXTERNAL_TRANSIENT"
	CodeInternal           = "INTERNAL_ERROR"
	CodeUnavailable        = "SERVICE_UNAVAILABLE"
)

// AppError is the canonical error type of the engine.
//
// # Security
//
// Cause is for server-side logging only and is never serialised.
type AppError struct {
	Code       string       `json:"code"`
	Message    string       `json:"error"`
	HTTPStatus int          `json:"-"`
	Cause      error        `json:"-"`
	Details    []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string { return e.Message }

func (e *AppError) Unwrap() error { return e.Cause }

// Is matches two AppErrors by code so sentinel values work with [errors.Is].
func (e *AppError) Is(target error) bool {
	var other *AppError
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

// # Conflict

// Conflict creates a 409 [AppError] for a uniqueness violation.
func Conflict(msg string) *AppError {
	return &AppError{Code: CodeConflict, Message: msg, HTTPStatus: http.StatusConflict}
}

// ConflictCode is [Conflict] with a more specific code.
func ConflictCode(code, msg string) *AppError {
	return &AppError{Code: code, Message: msg, HTTPStatus: http.StatusConflict}
}

// # Not Found

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Chapter") // "Chapter not found"
func NotFound(resource string) *AppError {
	return &AppError{Code: CodeNotFound, Message: resource + " not found", HTTPStatus: http.StatusNotFound}
}

// # Policy

// PolicyViolation creates a 422 [AppError] for a request the workflow refuses.
func PolicyViolation(code, msg string) *AppError {
	return &AppError{Code: code, Message: msg, HTTPStatus: http.StatusUnprocessableEntity}
}

// Forbidden creates a 403 [AppError]. It is the PolicyViolation for missing authority.
func Forbidden(msg string) *AppError {
	return &AppError{Code: CodeForbidden, Message: msg, HTTPStatus: http.StatusForbidden}
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: msg, HTTPStatus: http.StatusUnauthorized}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{Code: CodeValidation, Message: msg, HTTPStatus: http.StatusBadRequest, Details: details}
}

// RateLimited creates a 429 [AppError].
func RateLimited(retryAfterSeconds int) *AppError {
	return &AppError{
		Code:       CodeRateLimited,
		Message:    fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// # Server side

// ExternalTransient creates a 502 [AppError] for a failed call to the chat
// platform or a publish target.
func ExternalTransient(target string, cause error) *AppError {
	return &AppError{
		Code:       CodeExternal,
		Message:    target + " is unavailable",
		HTTPStatus: http.StatusBadGateway,
		Cause:      cause,
	}
}

// Internal creates a 500 [AppError]. The cause is logged, never returned.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// ServiceUnavailable creates a 503 [AppError].
func ServiceUnavailable(msg string) *AppError {
	return &AppError{Code: CodeUnavailable, Message: msg, HTTPStatus: http.StatusServiceUnavailable}
}

// # Helpers

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// HasCode reports whether err carries an [AppError] with the given code.
func HasCode(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}

// IsNotFound reports whether err is a NotFound.
func IsNotFound(err error) bool { return HasCode(err, CodeNotFound) }

// IsConflict reports whether err is any 409 [AppError].
func IsConflict(err error) bool {
	ae := As(err)
	return ae != nil && ae.HTTPStatus == http.StatusConflict
}
