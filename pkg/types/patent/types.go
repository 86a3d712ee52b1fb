// Package patent defines the canonical data model shared by provider
// connectors, the analysis domain, and the HTTP surface: patent records,
// legal-status data, keyword sets, and search results.
package patent

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"
)

// Provider identifies an upstream patent data source.
type Provider string

const (
	ProviderEPO  Provider = "epo"
	ProviderLens Provider = "lens"
)

// IsValid checks if the Provider is supported.
func (p Provider) IsValid() bool {
	switch p {
	case ProviderEPO, ProviderLens:
		return true
	default:
		return false
	}
}

// LegalEvent is a single entry from an INPADOC legal-event history.
type LegalEvent struct {
	// Code is the jurisdiction-specific event code, e.g. "FC9A" or "MM4A".
	Code string `json:"code"`

	// Description is the free-text description attached to the event.
	Description string `json:"description,omitempty"`

	// Date is the event date; zero when the source omitted it.
	Date time.Time `json:"date,omitempty"`
}

// LegalStatus carries the raw legal-status data attached to a record.
// Events are kept sorted by date descending, newest first; SortEvents
// restores that order after mutation.
type LegalStatus struct {
	// StatusText is the provider's summary status string, e.g. "WITHDRAWN".
	StatusText string `json:"status_text,omitempty"`

	Events []LegalEvent `json:"events,omitempty"`
}

// SortEvents orders Events by date descending.  Events without a date sort
// last so that the newest dated event is always first.
func (ls *LegalStatus) SortEvents() {
	if ls == nil {
		return
	}
	sort.SliceStable(ls.Events, func(i, j int) bool {
		di, dj := ls.Events[i].Date, ls.Events[j].Date
		if di.IsZero() {
			return false
		}
		if dj.IsZero() {
			return true
		}
		return di.After(dj)
	})
}

// Record is the provider-neutral representation of one patent document.
type Record struct {
	// ID is the provider's document reference, e.g. "EP3345678" or a Lens ID.
	ID string `json:"id"`

	Provider     Provider `json:"provider"`
	Jurisdiction string   `json:"jurisdiction"`

	Title    string `json:"title"`
	Abstract string `json:"abstract,omitempty"`

	// Claims is the flattened claims text; empty when the provider does
	// not expose claims (EPO OPS bibliographic data).
	Claims string `json:"claims,omitempty"`

	// Language is the language code of Title/Abstract as reported upstream.
	Language string `json:"language,omitempty"`

	Applicants []string `json:"applicants,omitempty"`
	Inventors  []string `json:"inventors,omitempty"`

	// Classifications holds raw IPC/CPC symbols, e.g. "H05H 1/00".
	Classifications []string `json:"classifications,omitempty"`

	PublicationDate time.Time `json:"publication_date,omitempty"`

	// PublicationNumber deduplicates the same document across providers
	// and languages.
	PublicationNumber string `json:"publication_number,omitempty"`

	LegalStatus *LegalStatus `json:"legal_status,omitempty"`
}

// Text returns the lower-cased concatenation of title, abstract and claims
// used by keyword matching.
func (r *Record) Text() string {
	return strings.ToLower(strings.TrimSpace(r.Title + " " + r.Abstract + " " + r.Claims))
}

// Key returns the deduplication key for the record: the publication number
// when present, otherwise the provider-scoped ID.
func (r *Record) Key() string {
	if r.PublicationNumber != "" {
		return r.PublicationNumber
	}
	return string(r.Provider) + ":" + r.ID
}

// KeywordSet is a language-tagged set of include and exclude search terms.
type KeywordSet struct {
	Language string   `json:"language"`
	Include  []string `json:"include"`
	Exclude  []string `json:"exclude,omitempty"`
}

// ID returns a stable content hash of the set: the first 12 hex characters
// of SHA-256 over the sorted, case-folded terms.  Two sets with the same
// terms in any order or casing share an ID.
func (ks KeywordSet) ID() string {
	canon := func(terms []string) []string {
		out := make([]string, 0, len(terms))
		for _, t := range terms {
			t = strings.ToLower(strings.TrimSpace(t))
			if t != "" {
				out = append(out, t)
			}
		}
		sort.Strings(out)
		return out
	}
	var sb strings.Builder
	sb.WriteString("include|")
	sb.WriteString(strings.Join(canon(ks.Include), "|"))
	sb.WriteString("||exclude|")
	sb.WriteString(strings.Join(canon(ks.Exclude), "|"))
	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])[:12]
}

// IsEmpty reports whether the set has no usable include terms.
func (ks KeywordSet) IsEmpty() bool {
	for _, t := range ks.Include {
		if strings.TrimSpace(t) != "" {
			return false
		}
	}
	return true
}

// StrategyAttempt records one rung of a connector's query ladder for the
// audit trail returned with every search.
type StrategyAttempt struct {
	// Strategy is the ladder rung name, e.g. "field_split" or "reduced".
	Strategy string `json:"strategy"`

	// Query is the provider query string (CQL or serialized JSON) that was sent.
	Query string `json:"query"`

	ResultCount int `json:"result_count"`

	// Error is the failure message for this attempt, empty on success.
	Error string `json:"error,omitempty"`
}

// SearchResult is the outcome of one provider search for one jurisdiction.
type SearchResult struct {
	Data []Record `json:"data"`

	// Total is the provider-reported hit count before any pagination cap.
	Total int `json:"total"`

	// QueryStrategy names the ladder rung that produced Data, or
	// "exhausted" when every rung came back empty.
	QueryStrategy string `json:"query_strategy"`

	StrategyAttempts []StrategyAttempt `json:"strategy_attempts,omitempty"`

	// PreFilterTotal and FilteredTotal report client-side exclude
	// filtering: how many records came back and how many survived.
	PreFilterTotal int `json:"pre_filter_total"`
	FilteredTotal  int `json:"filtered_total"`
}
