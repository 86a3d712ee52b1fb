// Package providers defines the contract shared by the upstream patent
// data connectors.
package providers

import (
	"context"
	"time"

	"github.com/turtacn/aether-intel/pkg/types/patent"
)

// SearchRequest carries one jurisdiction search as issued by the
// orchestration layer.
type SearchRequest struct {
	Jurisdiction string
	Keywords     patent.KeywordSet
	From, To     time.Time
	Limit        int
}

// Connector is implemented by every upstream source.  Implementations
// own their auth, rate limiting, and query-language details; callers see
// only canonical records.
type Connector interface {
	Provider() patent.Provider

	// SearchByJurisdiction runs one search and returns normalized
	// records with the full query audit trail.
	SearchByJurisdiction(ctx context.Context, req SearchRequest) (*patent.SearchResult, error)

	// FetchLegalStatus retrieves the legal-event history for one record.
	FetchLegalStatus(ctx context.Context, rec *patent.Record) (*patent.LegalStatus, error)

	// Healthy reports whether the upstream is reachable.
	Healthy(ctx context.Context) error
}
