// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants holds the fixed values of the engine.

Categories:

  - Server Timing: HTTP timeouts.
  - Rate Limiting: per-IP limits on the HTTP surface.
  - Workflow Policy: the persisted lifecycle thresholds.
  - Redis Prefixes: key taxonomy for leases and wizard drafts.

Values an operator tunes per deployment (board TTL, sweep intervals) live in
config instead.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "milize"
	AppVersion = "0.4.0"
)

// # Server Timing

const (
	DefaultReadTimeout       = 5 * time.Second
	DefaultWriteTimeout      = 15 * time.Second
	DefaultIdleTimeout       = 120 * time.Second
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout bounds a request and every store statement.
	GlobalRequestTimeout = 30 * time.Second

	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	DefaultRateLimitRPS      = 20.0
	DefaultRateLimitBurst    = 40
	RateLimitCleanupInterval = 1 * time.Minute
	RateLimitClientTTL       = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the 'iss' claim of identity tokens.
	AuthIssuer = "milize"

	// ServiceTokenTTL is the lifetime of tokens minted for the command surface.
	ServiceTokenTTL = 24 * time.Hour
)

// # Workflow Policy

const (
	// AccountGrace marks completions faster than this as not counted in statistics.
	AccountGrace = 5 * time.Minute

	// MaxLiveChapters caps unarchived work items per series.
	MaxLiveChapters = 25

	// FullInactivityThreshold demotes Full-tier collaborators to retired.
	FullInactivityThreshold = 90 * 24 * time.Hour

	// ProbationaryInactivityThreshold demotes Probationary collaborators.
	ProbationaryInactivityThreshold = 30 * 24 * time.Hour

	// TrialInactivityThreshold removes Trial collaborators.
	TrialInactivityThreshold = 30 * 24 * time.Hour

	// EscalationCooldown separates repeat escalations and is the retired grace period.
	EscalationCooldown = 7 * 24 * time.Hour

	// EscalationRetryCooldown delays a retry after a failed escalation.
	EscalationRetryCooldown = 24 * time.Hour

	// PageBatchSize is the number of pages per upload request.
	PageBatchSize = 5

	// SweepLeaseTTL bounds how long a crashed sweep can block the next tick.
	SweepLeaseTTL = 30 * time.Minute

	// DraftTTL expires abandoned publish wizard sessions.
	DraftTTL = 30 * time.Minute
)

// # JSON Field Identifiers

const (
	FieldError   = "error"
	FieldCode    = "code"
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// # Redis Prefixes

const (
	RedisPrefixLease = "milize:lease:"
	RedisPrefixDraft = "milize:draft:"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderAuthorization = "Authorization"
)
