package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.DefaultLimit)
	assert.Equal(t, 0.6, cfg.FallbackFraction)
	assert.Equal(t, 5*time.Second, cfg.PrimaryTimeout)
	assert.Equal(t, 3500*time.Millisecond, cfg.SecondaryTimeout)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 90, cfg.NewsAPIDailyLimit)
	assert.Equal(t, 450, cfg.MediastackDailyLimit)
	assert.Equal(t, "configs/feeds.yaml", cfg.FeedsConfigPath)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("NEWSAPI_KEY", "secret")
	t.Setenv("DEFAULT_LIMIT", "35")
	t.Setenv("CACHE_TTL_MINUTES", "2")
	t.Setenv("PRIMARY_TIMEOUT_MS", "1200")
	t.Setenv("FALLBACK_FRACTION", "0.5")
	t.Setenv("FEEDS_CONFIG", "/etc/habari/feeds.yaml")
	t.Setenv("DEBUG", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.NewsAPIKey)
	assert.Equal(t, 35, cfg.DefaultLimit)
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 1200*time.Millisecond, cfg.PrimaryTimeout)
	assert.Equal(t, 0.5, cfg.FallbackFraction)
	assert.Equal(t, "/etc/habari/feeds.yaml", cfg.FeedsConfigPath)
	assert.True(t, cfg.Debug)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("DEFAULT_LIMIT", "not-a-number")
	t.Setenv("CACHE_TTL_MINUTES", "-3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.DefaultLimit)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
}

func TestValidate(t *testing.T) {
	cfg := &Config{DefaultLimit: 10, FallbackFraction: 0.6, CacheTTL: time.Minute}
	assert.NoError(t, cfg.Validate())

	cfg.FallbackFraction = 1.5
	assert.Error(t, cfg.Validate())

	cfg.FallbackFraction = 0.6
	cfg.DefaultLimit = 0
	assert.Error(t, cfg.Validate())
}
