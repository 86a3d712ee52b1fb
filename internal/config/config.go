// Package config defines all configuration structures for aether-intel.
// No I/O or parsing logic lives here, only plain data types and validation.
package config

import (
	"fmt"
	"time"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// EPOConfig holds EPO Open Patent Services connection parameters.
type EPOConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	AuthURL        string        `mapstructure:"auth_url"`
	ConsumerKey    string        `mapstructure:"consumer_key"`
	ConsumerSecret string        `mapstructure:"consumer_secret"`
	Timeout        time.Duration `mapstructure:"timeout"`

	// MaxPrimaryTerms caps the include terms in a combined query;
	// MaxFallbackTerms caps them in simplified fallback queries.
	MaxPrimaryTerms  int `mapstructure:"max_primary_terms"`
	MaxFallbackTerms int `mapstructure:"max_fallback_terms"`

	// MaxRecords caps records fetched per jurisdiction search.
	MaxRecords int `mapstructure:"max_records"`
}

// LensConfig holds Lens.org API connection parameters.
type LensConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	APIToken string        `mapstructure:"api_token"`
	Timeout  time.Duration `mapstructure:"timeout"`

	// MaxRetries bounds the 429 backoff loop.
	MaxRetries int `mapstructure:"max_retries"`
}

// RateLimitConfig bounds outbound provider traffic.
type RateLimitConfig struct {
	// MaxRequestsPerMinute sizes the sliding window shared by all requests
	// to one provider.
	MaxRequestsPerMinute int `mapstructure:"max_requests_per_minute"`
}

// CacheConfig holds the disk-backed JSON store locations.
type CacheConfig struct {
	// Dir is the directory holding all cache files; created on first save.
	Dir string `mapstructure:"dir"`

	// SearchTTL bounds how long cached search results stay fresh.
	SearchTTL time.Duration `mapstructure:"search_ttl"`

	// HistoryLimit bounds the keyword-set history list.
	HistoryLimit int `mapstructure:"history_limit"`
}

// TranslationConfig holds the LLM keyword-translation parameters.
type TranslationConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`

	// Disabled turns translation off entirely; built-in keyword sets are
	// used instead.
	Disabled bool `mapstructure:"disabled"`
}

// SearchConfig holds pipeline-level search parameters.
type SearchConfig struct {
	// Jurisdictions is the default jurisdiction list when a request names none.
	Jurisdictions []string `mapstructure:"jurisdictions"`

	// Languages is the default search language list.
	Languages []string `mapstructure:"languages"`

	// WindowDays is the default publication-date window when a request
	// carries no date range.
	WindowDays int `mapstructure:"window_days"`

	// EnrichmentConcurrency bounds the parallel legal-status fetches.
	EnrichmentConcurrency int `mapstructure:"enrichment_concurrency"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `mapstructure:"format"` // "json" | "console"
	Output string `mapstructure:"output"`
}

// Config is the root configuration structure for the entire application.
// Every infrastructure component and application service reads its settings
// from the relevant sub-struct.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	EPO         EPOConfig         `mapstructure:"epo"`
	Lens        LensConfig        `mapstructure:"lens"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Translation TranslationConfig `mapstructure:"translation"`
	Search      SearchConfig      `mapstructure:"search"`
	Log         LogConfig         `mapstructure:"log"`
}

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start the application.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	if c.EPO.BaseURL == "" {
		return fmt.Errorf("config: epo.base_url is required")
	}
	if c.EPO.AuthURL == "" {
		return fmt.Errorf("config: epo.auth_url is required")
	}
	if c.EPO.MaxPrimaryTerms < 1 {
		return fmt.Errorf("config: epo.max_primary_terms must be ≥ 1, got %d", c.EPO.MaxPrimaryTerms)
	}
	if c.EPO.MaxFallbackTerms < 1 {
		return fmt.Errorf("config: epo.max_fallback_terms must be ≥ 1, got %d", c.EPO.MaxFallbackTerms)
	}

	if c.Lens.BaseURL == "" {
		return fmt.Errorf("config: lens.base_url is required")
	}

	if c.RateLimit.MaxRequestsPerMinute < 1 {
		return fmt.Errorf("config: rate_limit.max_requests_per_minute must be ≥ 1, got %d",
			c.RateLimit.MaxRequestsPerMinute)
	}

	if c.Cache.Dir == "" {
		return fmt.Errorf("config: cache.dir is required")
	}
	if c.Cache.HistoryLimit < 1 {
		return fmt.Errorf("config: cache.history_limit must be ≥ 1, got %d", c.Cache.HistoryLimit)
	}

	if c.Search.EnrichmentConcurrency < 1 {
		return fmt.Errorf("config: search.enrichment_concurrency must be ≥ 1, got %d",
			c.Search.EnrichmentConcurrency)
	}
	if c.Search.WindowDays < 1 {
		return fmt.Errorf("config: search.window_days must be ≥ 1, got %d", c.Search.WindowDays)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}
