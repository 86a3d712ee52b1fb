package search

import (
	"time"

	"github.com/turtacn/aether-intel/internal/domain/scoring"
	"github.com/turtacn/aether-intel/internal/domain/status"
	"github.com/turtacn/aether-intel/pkg/types/patent"
)

// Request describes one end-to-end intelligence run.  Empty fields fall
// back to the configured defaults.
type Request struct {
	// Provider selects the upstream source; defaults to EPO.
	Provider patent.Provider `json:"provider,omitempty"`

	Jurisdictions []string `json:"jurisdictions,omitempty"`

	// Languages are the search languages; keyword sets are translated or
	// looked up per language.
	Languages []string `json:"languages,omitempty"`

	// Keywords overrides the built-in base keyword set.  Its Language
	// defaults to English when empty.
	Keywords *patent.KeywordSet `json:"keywords,omitempty"`

	From time.Time `json:"from,omitempty"`
	To   time.Time `json:"to,omitempty"`

	// Limit caps records per jurisdiction search; 0 uses the provider cap.
	Limit int `json:"limit,omitempty"`

	// BypassCache forces fresh provider searches even when cached results
	// are still within their TTL.
	BypassCache bool `json:"bypass_cache,omitempty"`
}

// LanguageRun records how the keyword set for one language was resolved.
type LanguageRun struct {
	Language string `json:"language"`

	SetID string `json:"set_id"`

	Keywords patent.KeywordSet `json:"keywords"`

	// Source names the resolution path: "request", "base", "cache",
	// "translated", or "builtin".
	Source string `json:"source"`
}

// SearchRun is the audit record of one provider search for one
// jurisdiction and language.
type SearchRun struct {
	Provider     patent.Provider `json:"provider"`
	Jurisdiction string          `json:"jurisdiction"`
	Language     string          `json:"language"`

	Strategy string                   `json:"strategy"`
	Attempts []patent.StrategyAttempt `json:"attempts,omitempty"`

	Total    int `json:"total"`
	Returned int `json:"returned"`

	FromCache bool `json:"from_cache"`

	// Error is the provider failure that aborted this leg; empty on
	// success.  A failed leg never aborts the rest of the run.
	Error string `json:"error,omitempty"`
}

// AnalyzedRecord pairs a patent record with its analysis verdict.
type AnalyzedRecord struct {
	patent.Record

	Assessment scoring.Assessment `json:"assessment"`
}

// Report is the outcome of a Service.Run: every surviving record with
// its assessment, batch statistics, and the full per-search audit trail.
type Report struct {
	Records []AnalyzedRecord `json:"records"`

	Stats status.BatchStats `json:"stats"`

	Languages []LanguageRun `json:"languages"`
	Searches  []SearchRun   `json:"searches"`

	// Fetched counts records returned by providers before deduplication.
	Fetched int `json:"fetched"`

	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}
