// Package epo implements the EPO Open Patent Services connector: OAuth2
// client-credentials auth, cooperative rate limiting, CQL query
// construction, the multi-strategy search ladder, and XML normalization
// into the canonical patent record model.
package epo

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/turtacn/aether-intel/pkg/types/patent"
)

// emptyFallbackCQL is sent when every clause of a query collapses to
// nothing; OPS rejects empty query strings outright.
const emptyFallbackCQL = `ti all "hydrogen"`

const dateLayoutCQL = "20060102"

var (
	termCleanRE  = regexp.MustCompile(`[^0-9A-Za-z\s\-\+/\.]`)
	whitespaceRE = regexp.MustCompile(`\s+`)
)

// sanitizeTerm strips characters OPS CQL cannot digest and collapses
// whitespace.  Returns "" when nothing usable remains.
func sanitizeTerm(term string) string {
	cleaned := termCleanRE.ReplaceAllString(term, " ")
	cleaned = whitespaceRE.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)
	return strings.ReplaceAll(cleaned, `"`, " ")
}

// clipTerms sanitizes terms and bounds the output list to max entries.
// Empty and unsalvageable terms are skipped without consuming budget.
func clipTerms(terms []string, max int) []string {
	out := make([]string, 0, max)
	for _, term := range terms {
		if len(out) >= max {
			break
		}
		if term == "" {
			continue
		}
		if v := sanitizeTerm(term); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// QueryParams carries the inputs a single CQL construction needs.  Terms
// are raw; builders sanitize and clip internally.
type QueryParams struct {
	Include      []string
	Exclude      []string
	Jurisdiction string
	From, To     time.Time
}

// queryOptions tunes how buildCQL assembles its clauses.
type queryOptions struct {
	maxTerms       int
	includeExclude bool
	includeDate    bool

	// field restricts the phrase clause to one index ("ti" or "ab");
	// empty means the default title-OR-abstract pair.
	field string
}

// phraseClause renders one include or exclude term.  With no field
// restriction the term is searched in title and abstract.
func phraseClause(field, term string) string {
	if field != "" {
		return fmt.Sprintf(`%s all "%s"`, field, term)
	}
	return fmt.Sprintf(`(ti all "%s" OR ab all "%s")`, term, term)
}

// buildCQL assembles a composite OPS CQL query: OR-joined include
// phrases, an optional NOT group of exclude phrases, a publication
// number prefix for the jurisdiction, and a publication date window.
func buildCQL(p QueryParams, o queryOptions) string {
	var clauses []string

	include := clipTerms(p.Include, o.maxTerms)
	exclude := clipTerms(p.Exclude, o.maxTerms)

	if len(include) > 0 {
		parts := make([]string, 0, len(include))
		for _, term := range include {
			parts = append(parts, phraseClause(o.field, term))
		}
		clauses = append(clauses, "("+strings.Join(parts, " OR ")+")")
	}

	if o.includeExclude && len(exclude) > 0 {
		parts := make([]string, 0, len(exclude))
		for _, term := range exclude {
			parts = append(parts, phraseClause(o.field, term))
		}
		clauses = append(clauses, "NOT ("+strings.Join(parts, " OR ")+")")
	}

	if p.Jurisdiction != "" {
		clauses = append(clauses, fmt.Sprintf("pn=%s*", strings.ToUpper(p.Jurisdiction)))
	}

	if o.includeDate && !p.From.IsZero() {
		to := p.To
		if to.IsZero() {
			to = time.Now()
		}
		clauses = append(clauses, fmt.Sprintf(`pd within "%s %s"`,
			p.From.Format(dateLayoutCQL), to.Format(dateLayoutCQL)))
	}

	if len(clauses) == 0 {
		return emptyFallbackCQL
	}
	return strings.Join(clauses, " AND ")
}

// perKeywordCQL builds one full query per include keyword: each query
// carries the whole exclude set plus the jurisdiction and date filters.
// OPS silently over-restricts large composite OR expressions, so N small
// independently valid queries merged client-side are more reliable than
// one big one.
func perKeywordCQL(p QueryParams, maxTerms int) []string {
	include := clipTerms(p.Include, maxTerms)
	queries := make([]string, 0, len(include))
	for _, term := range include {
		single := p
		single.Include = []string{term}
		queries = append(queries, buildCQL(single, queryOptions{
			maxTerms:       maxTerms,
			includeExclude: true,
			includeDate:    true,
		}))
	}
	return queries
}

// relaxedUnfielded drops the field qualifiers but keeps quoting:
// `"term" OR "term"`.
func relaxedUnfielded(include []string, maxTerms int) string {
	terms := clipTerms(include, maxTerms)
	if len(terms) == 0 {
		return emptyFallbackCQL
	}
	parts := make([]string, 0, len(terms))
	for _, term := range terms {
		parts = append(parts, fmt.Sprintf(`"%s"`, term))
	}
	return strings.Join(parts, " OR ")
}

// relaxedTitleAbstract uses the combined title+abstract index token.
func relaxedTitleAbstract(include []string, maxTerms int) string {
	terms := clipTerms(include, maxTerms)
	if len(terms) == 0 {
		return emptyFallbackCQL
	}
	parts := make([]string, 0, len(terms))
	for _, term := range terms {
		parts = append(parts, fmt.Sprintf(`ta="%s"`, term))
	}
	return strings.Join(parts, " OR ")
}

// relaxedBare is the loosest phrasing: no field, no quoting.
func relaxedBare(include []string, maxTerms int) string {
	terms := clipTerms(include, maxTerms)
	if len(terms) == 0 {
		return emptyFallbackCQL
	}
	return strings.Join(terms, " OR ")
}

// containsAnyTerm reports whether any of terms occurs in text,
// case-insensitively.  Used by the client-side exclude filter.
func containsAnyTerm(text string, terms []string) bool {
	if text == "" || len(terms) == 0 {
		return false
	}
	lowered := strings.ToLower(text)
	for _, term := range terms {
		if term == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

// applyExcludeFilter re-scans normalized records for literal exclude
// matches.  Provider query semantics for NOT groups differ subtly across
// indexes, so the merged result set gets a second pass locally.
func applyExcludeFilter(records []patent.Record, exclude []string) []patent.Record {
	if len(exclude) == 0 {
		return records
	}
	filtered := make([]patent.Record, 0, len(records))
	for _, rec := range records {
		if !containsAnyTerm(rec.Text(), exclude) {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}
