// Package config provides environment-driven configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Default configuration values.
const (
	DefaultProvider      = "litellm"
	DefaultModel         = "gemini-2.5-flash-lite"
	DefaultVisionModel   = "gemini-2.5-flash"
	DefaultModelPrefix   = "gemini/"
	DefaultTimeout       = 60 * time.Second
	DefaultMaxAttempts   = 3
	DefaultDBPath        = "shopping.db"
	DefaultRetentionDays = 28
	DefaultLogLevel      = "info"
)

// Config holds the configuration for the application.
type Config struct {
	// LLM provider settings. Provider selects the client implementation:
	// "litellm" (OpenAI-compatible proxy) or "gemini" (direct API).
	Provider    string
	BaseURL     string
	APIKey      string
	Model       string
	VisionModel string
	ModelPrefix string

	// Per-attempt timeout and total attempt bound for LLM calls.
	Timeout     time.Duration
	MaxAttempts int

	DBPath        string
	RetentionDays int
	LogLevel      string
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	apiKey := os.Getenv("LLM_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("LLM_API_KEY environment variable not set")
	}

	cfg := &Config{
		Provider:      envOr("LLM_PROVIDER", DefaultProvider),
		BaseURL:       os.Getenv("LLM_BASE_URL"),
		APIKey:        apiKey,
		Model:         envOr("LLM_MODEL", DefaultModel),
		VisionModel:   envOr("LLM_VISION_MODEL", DefaultVisionModel),
		ModelPrefix:   envOr("LLM_MODEL_PREFIX", DefaultModelPrefix),
		Timeout:       DefaultTimeout,
		MaxAttempts:   DefaultMaxAttempts,
		DBPath:        envOr("DB_PATH", DefaultDBPath),
		RetentionDays: DefaultRetentionDays,
		LogLevel:      envOr("LOG_LEVEL", DefaultLogLevel),
	}

	if cfg.Provider != "litellm" && cfg.Provider != "gemini" {
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.Provider)
	}
	if cfg.Provider == "litellm" && cfg.BaseURL == "" {
		return nil, fmt.Errorf("LLM_BASE_URL environment variable not set")
	}

	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid LLM_TIMEOUT %q: %w", v, err)
		}
		cfg.Timeout = d
	}
	if v := os.Getenv("LLM_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid LLM_MAX_ATTEMPTS %q", v)
		}
		cfg.MaxAttempts = n
	}
	if v := os.Getenv("RETENTION_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid RETENTION_DAYS %q", v)
		}
		cfg.RetentionDays = n
	}

	return cfg, nil
}

// Retention returns the list retention window as a duration.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
