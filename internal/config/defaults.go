// Package config provides configuration loading, defaults, and validation
// for aether-intel.
package config

import "time"

const (
	DefaultServerPort = 8080
	DefaultServerMode = "release"

	DefaultEPOBaseURL = "https://ops.epo.org/3.2/rest-services"
	DefaultEPOAuthURL = "https://ops.epo.org/3.2/auth/accesstoken"

	DefaultLensBaseURL = "https://api.lens.org/patent/search"

	DefaultMaxPrimaryTerms  = 8
	DefaultMaxFallbackTerms = 4
	DefaultMaxRecords       = 100

	DefaultMaxRequestsPerMinute = 30

	DefaultCacheDir     = "cache"
	DefaultHistoryLimit = 25

	DefaultTranslationModel = "claude-sonnet-4-20250514"

	DefaultWindowDays            = 365
	DefaultEnrichmentConcurrency = 5

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// DefaultJurisdictions covers the markets whose filing histories the
// decoder has code tables for.
var DefaultJurisdictions = []string{"RU", "PL", "RO", "CZ", "NL", "ES", "IT", "SE", "NO", "FI"}

// DefaultLanguages is consumed when a search request names no languages.
var DefaultLanguages = []string{"en"}

// ApplyDefaults fills every zero-value field in cfg with the application
// default.  Fields that have already been set by the caller (non-zero
// values) are left unchanged so that explicit configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 120 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}

	if cfg.EPO.BaseURL == "" {
		cfg.EPO.BaseURL = DefaultEPOBaseURL
	}
	if cfg.EPO.AuthURL == "" {
		cfg.EPO.AuthURL = DefaultEPOAuthURL
	}
	if cfg.EPO.Timeout == 0 {
		cfg.EPO.Timeout = 30 * time.Second
	}
	if cfg.EPO.MaxPrimaryTerms == 0 {
		cfg.EPO.MaxPrimaryTerms = DefaultMaxPrimaryTerms
	}
	if cfg.EPO.MaxFallbackTerms == 0 {
		cfg.EPO.MaxFallbackTerms = DefaultMaxFallbackTerms
	}
	if cfg.EPO.MaxRecords == 0 {
		cfg.EPO.MaxRecords = DefaultMaxRecords
	}

	if cfg.Lens.BaseURL == "" {
		cfg.Lens.BaseURL = DefaultLensBaseURL
	}
	if cfg.Lens.Timeout == 0 {
		cfg.Lens.Timeout = 30 * time.Second
	}
	if cfg.Lens.MaxRetries == 0 {
		cfg.Lens.MaxRetries = 3
	}

	if cfg.RateLimit.MaxRequestsPerMinute == 0 {
		cfg.RateLimit.MaxRequestsPerMinute = DefaultMaxRequestsPerMinute
	}

	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = DefaultCacheDir
	}
	if cfg.Cache.SearchTTL == 0 {
		cfg.Cache.SearchTTL = 24 * time.Hour
	}
	if cfg.Cache.HistoryLimit == 0 {
		cfg.Cache.HistoryLimit = DefaultHistoryLimit
	}

	if cfg.Translation.Model == "" {
		cfg.Translation.Model = DefaultTranslationModel
	}
	if cfg.Translation.Timeout == 0 {
		cfg.Translation.Timeout = 60 * time.Second
	}

	if len(cfg.Search.Jurisdictions) == 0 {
		cfg.Search.Jurisdictions = append([]string(nil), DefaultJurisdictions...)
	}
	if len(cfg.Search.Languages) == 0 {
		cfg.Search.Languages = append([]string(nil), DefaultLanguages...)
	}
	if cfg.Search.WindowDays == 0 {
		cfg.Search.WindowDays = DefaultWindowDays
	}
	if cfg.Search.EnrichmentConcurrency == 0 {
		cfg.Search.EnrichmentConcurrency = DefaultEnrichmentConcurrency
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}
