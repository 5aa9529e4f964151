// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles client-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (transport, storage) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the client is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// # Storage Backends

// Valid values for TokenStorage.
const (
	StorageFile   = "file"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

// # Configuration Schema

// Config holds all runtime configuration for the Yomira client core.
type Config struct {

	// API endpoint of the Yomira platform
	APIBaseURL string `env:"YOMIRA_API_URL" envDefault:"http://localhost:8080/api/v1"`

	// Environment & diagnostics
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Debug       bool   `env:"DEBUG"       envDefault:"false"`

	// TokenStorage selects the persisted token slot backend: file|redis|memory.
	// "memory" does not survive process restarts (incognito mode).
	TokenStorage string `env:"TOKEN_STORAGE" envDefault:"file"`

	// ProfileDir is the directory holding the token file for the file backend.
	ProfileDir string `env:"PROFILE_DIR" envDefault:"."`

	// RedisURL is required only when TokenStorage is "redis".
	RedisURL string `env:"REDIS_URL"`

	// RequestTimeoutSeconds bounds a single API round trip.
	RequestTimeoutSeconds int `env:"REQUEST_TIMEOUT_SECONDS" envDefault:"15"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	// Backend-specific requirements are validated here rather than with env
	// tags because RedisURL is only mandatory for one backend.
	if cfg.TokenStorage == StorageRedis && cfg.RedisURL == "" {
		return nil, fmt.Errorf("config: REDIS_URL is required when TOKEN_STORAGE=redis")
	}

	switch cfg.TokenStorage {
	case StorageFile, StorageRedis, StorageMemory:
	default:
		return nil, fmt.Errorf("config: unknown TOKEN_STORAGE %q", cfg.TokenStorage)
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
