// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config maps environment variables into a typed [Config].

A `.env` file in the working directory is loaded first when present, so
local runs and the operator CLI share one source of settings. Variables
already set in the environment win over the file.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// # Configuration Schema

// Config holds all runtime configuration for the API and the operator CLI.
type Config struct {

	// Server settings
	ServerPort  string `env:"PORT"         envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational store
	DatabaseURL   string `env:"DATABASE_URL,required"`
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Leases and wizard sessions
	RedisURL string `env:"REDIS_URL,required"`

	// Identity tokens presented by the command surface
	JWTPrivKeyPath string `env:"JWT_PRIVATE_KEY_PATH,required"`
	JWTPubKeyPath  string `env:"JWT_PUBLIC_KEY_PATH,required"`

	// Chat platform
	DiscordToken      string   `env:"DISCORD_TOKEN,required"`
	DiscordGuildID    string   `env:"DISCORD_GUILD_ID,required"`
	WorkflowChannelID string   `env:"WORKFLOW_CHANNEL_ID,required"`
	LeadChannelID     string   `env:"LEAD_CHANNEL_ID"`
	RoleTrialID       string   `env:"ROLE_TRIAL_ID"`
	RoleProbationID   string   `env:"ROLE_PROBATIONARY_ID"`
	RoleFullID        string   `env:"ROLE_FULL_ID"`
	LeadershipRoleIDs []string `env:"ROLE_LEADERSHIP_IDS" envSeparator:","`

	// Session-based publish target
	MangaDexAPIURL       string  `env:"MANGADEX_API_URL"  envDefault:"https://api.mangadex.org"`
	MangaDexAuthURL      string  `env:"MANGADEX_AUTH_URL" envDefault:"https://auth.mangadex.org/realms/mangadex/protocol/openid-connect/token"`
	MangaDexClientID     string  `env:"MANGADEX_CLIENT_ID"`
	MangaDexClientSecret string  `env:"MANGADEX_CLIENT_SECRET"`
	MangaDexUsername     string  `env:"MANGADEX_USERNAME"`
	MangaDexPassword     string  `env:"MANGADEX_PASSWORD"`
	MangaDexRPS          float64 `env:"MANGADEX_RPS" envDefault:"5"`

	// Object storage (S3-compatible): page source and mirror document
	S3Bucket     string `env:"S3_BUCKET"`
	S3Region     string `env:"S3_REGION"   envDefault:"auto"`
	S3Endpoint   string `env:"S3_ENDPOINT"`
	MirrorBucket string `env:"MIRROR_BUCKET"`
	MirrorGroup  string `env:"MIRROR_GROUP" envDefault:"Milize Scans"`

	// PublishReportChannelID receives publish reports when a request names none.
	// Falls back to the workflow channel.
	PublishReportChannelID string `env:"PUBLISH_REPORT_CHANNEL_ID"`

	// Tracing
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	// Lifecycle timing
	BoardPostTTL            time.Duration `env:"BOARD_POST_TTL"            envDefault:"720h"`
	ReminderSweepInterval   time.Duration `env:"REMINDER_SWEEP_INTERVAL"   envDefault:"1h"`
	InactivitySweepInterval time.Duration `env:"INACTIVITY_SWEEP_INTERVAL" envDefault:"1h"`
	BoardSweepInterval      time.Duration `env:"BOARD_SWEEP_INTERVAL"      envDefault:"1h"`
	PublishPollInterval     time.Duration `env:"PUBLISH_POLL_INTERVAL"     envDefault:"1m"`
	PublishStepTimeout      time.Duration `env:"PUBLISH_STEP_TIMEOUT"      envDefault:"2m"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"ALLOWED_ORIGINS"`
}

// # Configuration Loading

// Load reads `.env` if present, then parses the environment into a [Config].
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	var problems []string

	for name, d := range map[string]time.Duration{
		"BOARD_POST_TTL":            c.BoardPostTTL,
		"REMINDER_SWEEP_INTERVAL":   c.ReminderSweepInterval,
		"INACTIVITY_SWEEP_INTERVAL": c.InactivitySweepInterval,
		"BOARD_SWEEP_INTERVAL":      c.BoardSweepInterval,
		"PUBLISH_POLL_INTERVAL":     c.PublishPollInterval,
		"PUBLISH_STEP_TIMEOUT":      c.PublishStepTimeout,
	} {
		if d <= 0 {
			problems = append(problems, name+" must be positive")
		}
	}
	if c.MangaDexRPS <= 0 {
		problems = append(problems, "MANGADEX_RPS must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// ReportChannel returns the default channel for publish reports.
func (c *Config) ReportChannel() string {
	if c.PublishReportChannelID != "" {
		return c.PublishReportChannelID
	}
	return c.WorkflowChannelID
}

// PublishTargetConfigured reports whether the session-based publish target has credentials.
func (c *Config) PublishTargetConfigured() bool {
	return c.MangaDexClientID != "" && c.MangaDexUsername != ""
}
