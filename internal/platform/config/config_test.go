// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-client/internal/platform/config"
)

/*
TestLoad_Defaults: an empty environment yields the documented defaults.
*/
func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/api/v1", cfg.APIBaseURL)
	assert.Equal(t, config.StorageFile, cfg.TokenStorage)
	assert.Equal(t, ".", cfg.ProfileDir)
	assert.Equal(t, 15, cfg.RequestTimeoutSeconds)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

/*
TestLoad_EnvironmentOverrides: env vars map onto their struct fields.
*/
func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("YOMIRA_API_URL", "https://api.yomira.io/v1")
	t.Setenv("TOKEN_STORAGE", "memory")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "30")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.yomira.io/v1", cfg.APIBaseURL)
	assert.Equal(t, config.StorageMemory, cfg.TokenStorage)
	assert.Equal(t, 30, cfg.RequestTimeoutSeconds)
	assert.True(t, cfg.IsProduction())
}

/*
TestLoad_RedisBackendRequiresURL: selecting the redis backend without a URL
fails fast at load time, not at first use.
*/
func TestLoad_RedisBackendRequiresURL(t *testing.T) {
	t.Setenv("TOKEN_STORAGE", "redis")

	_, err := config.Load()
	require.Error(t, err)

	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.StorageRedis, cfg.TokenStorage)
}

/*
TestLoad_RejectsUnknownBackend: typos in TOKEN_STORAGE are a startup error.
*/
func TestLoad_RejectsUnknownBackend(t *testing.T) {
	t.Setenv("TOKEN_STORAGE", "localstorage")

	_, err := config.Load()
	assert.Error(t, err)
}
