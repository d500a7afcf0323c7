// Package config loads aggregator settings from the environment with
// sane defaults. Provider API keys are supplied via env vars; a client
// whose key is absent is simply not registered.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Provider API keys
	NewsAPIKey    string
	GNewsKey      string
	MediastackKey string
	GuardianKey   string

	// Provider daily request budgets (free-tier quotas, 0 = unlimited)
	NewsAPIDailyLimit    int
	GNewsDailyLimit      int
	MediastackDailyLimit int
	TotalDailyLimit      int

	// Pipeline tuning
	DefaultLimit     int    // articles per category when caller passes <= 0
	FallbackFraction float64 // minimum share of limit before fallback tops up
	PrimaryTimeout   time.Duration
	SecondaryTimeout time.Duration
	CacheTTL         time.Duration

	// Data files
	FeedsConfigPath    string
	FallbackConfigPath string
	PrefsPath          string

	// App settings
	Debug          bool
	RequestTimeout time.Duration
	MonitoringPort string
}

// Load builds a Config from environment variables over defaults.
func Load() (*Config, error) {
	cfg := &Config{
		NewsAPIDailyLimit:    90,
		GNewsDailyLimit:      90,
		MediastackDailyLimit: 450,
		TotalDailyLimit:      0,

		DefaultLimit:     20,
		FallbackFraction: 0.6,
		PrimaryTimeout:   5 * time.Second,
		SecondaryTimeout: 3500 * time.Millisecond,
		CacheTTL:         5 * time.Minute,

		FeedsConfigPath:    "configs/feeds.yaml",
		FallbackConfigPath: "configs/fallback.yaml",
		PrefsPath:          "prefs.json",

		RequestTimeout: 10 * time.Second,
		MonitoringPort: "8080",
	}

	cfg.NewsAPIKey = os.Getenv("NEWSAPI_KEY")
	cfg.GNewsKey = os.Getenv("GNEWS_KEY")
	cfg.MediastackKey = os.Getenv("MEDIASTACK_KEY")
	cfg.GuardianKey = os.Getenv("GUARDIAN_KEY")

	cfg.FeedsConfigPath = getEnvOrDefault("FEEDS_CONFIG", cfg.FeedsConfigPath)
	cfg.FallbackConfigPath = getEnvOrDefault("FALLBACK_CONFIG", cfg.FallbackConfigPath)
	cfg.PrefsPath = getEnvOrDefault("PREFS_PATH", cfg.PrefsPath)
	cfg.MonitoringPort = getEnvOrDefault("MONITORING_PORT", cfg.MonitoringPort)

	cfg.DefaultLimit = getEnvIntOrDefault("DEFAULT_LIMIT", cfg.DefaultLimit)
	cfg.NewsAPIDailyLimit = getEnvIntOrDefault("NEWSAPI_DAILY_LIMIT", cfg.NewsAPIDailyLimit)
	cfg.GNewsDailyLimit = getEnvIntOrDefault("GNEWS_DAILY_LIMIT", cfg.GNewsDailyLimit)
	cfg.MediastackDailyLimit = getEnvIntOrDefault("MEDIASTACK_DAILY_LIMIT", cfg.MediastackDailyLimit)
	cfg.TotalDailyLimit = getEnvIntOrDefault("TOTAL_DAILY_LIMIT", cfg.TotalDailyLimit)

	if v := os.Getenv("CACHE_TTL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CacheTTL = time.Duration(n) * time.Minute
		}
	}
	if v := os.Getenv("PRIMARY_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PrimaryTimeout = time.Duration(n) * time.Millisecond
		}
	}
	if v := os.Getenv("SECONDARY_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SecondaryTimeout = time.Duration(n) * time.Millisecond
		}
	}
	if v := os.Getenv("FALLBACK_FRACTION"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
			cfg.FallbackFraction = f
		}
	}

	if os.Getenv("DEBUG") == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue >= 0 {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.DefaultLimit <= 0 {
		return fmt.Errorf("DEFAULT_LIMIT must be positive")
	}
	if c.FallbackFraction < 0 || c.FallbackFraction > 1 {
		return fmt.Errorf("FALLBACK_FRACTION must be in [0,1]")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache TTL must be positive")
	}
	return nil
}
