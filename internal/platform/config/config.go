// Copyright (c) 2026 Planora. All rights reserved.

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (gateway, keystore) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This keeps the client Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/planora/edt-client/internal/platform/constants"
)

// # Configuration Schema

// Config holds all runtime configuration for the EDT client.
type Config struct {

	// Backend API settings
	APIBaseURL string `env:"EDT_API_URL,required"`

	// Local shell settings
	ListenAddr  string `env:"EDT_LISTEN_ADDR" envDefault:"127.0.0.1:7420"`
	Environment string `env:"ENVIRONMENT"     envDefault:"development"`
	Debug       bool   `env:"DEBUG"           envDefault:"false"`

	// Durable token storage.
	//
	// When RedisURL is set the token pair is persisted in Redis; otherwise it
	// is written to an encrypted file under StateDir.
	StateDir       string `env:"EDT_STATE_DIR"       envDefault:"."`
	KeystoreSecret string `env:"EDT_KEYSTORE_SECRET,required"`
	RedisURL       string `env:"EDT_REDIS_URL"`

	// Notification polling
	PollInterval time.Duration `env:"EDT_POLL_INTERVAL" envDefault:"30s"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	// Polling faster than the backend throttle window only burns quota.
	if cfg.PollInterval < constants.MinPollInterval {
		cfg.PollInterval = constants.MinPollInterval
	}

	return cfg, nil
}

// IsDevelopment reports whether the client is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the client is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// UseRedisKeystore reports whether tokens should be persisted in Redis
// instead of the encrypted state file.
func (c *Config) UseRedisKeystore() bool {
	return c.RedisURL != ""
}
