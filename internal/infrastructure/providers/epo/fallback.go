package epo

import (
	"context"

	"github.com/turtacn/aether-intel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/aether-intel/pkg/errors"
	"github.com/turtacn/aether-intel/pkg/types/patent"
)

// Ladder rung names.  These appear verbatim in result audit trails.
const (
	strategyFieldSplit     = "field_split"
	strategyPrimaryStrict  = "primary_strict"
	strategySimplified     = "simplified"
	strategyReduced        = "reduced"
	strategyPerTermProbe   = "per_term_probe"
	strategyRelaxedUnfield = "relaxed_unfielded"
	strategyRelaxedTA      = "relaxed_ta"
	strategyRelaxedBare    = "relaxed_bare"
	strategyExhausted      = "exhausted"

	reducedTermBudget = 2
)

// ladderRun walks the search strategies in order.  Each rung runs only
// when every earlier rung produced zero records without a hard error.
// Syntax rejections are recorded and skipped past rather than
// propagated, because "query malformed" and "no matches" must stay
// distinguishable in the audit trail; auth, rate-limit, transport, and
// cancellation errors abort the whole run.
type ladderRun struct {
	conn   *Connector
	params QueryParams
	limit  int

	attempts       []patent.StrategyAttempt
	sawSyntaxError bool
}

func newLadderRun(conn *Connector, params QueryParams, limit int) *ladderRun {
	return &ladderRun{conn: conn, params: params, limit: limit}
}

// execute returns the records of the first rung that produced any,
// together with that rung's name.  When every rung comes back empty the
// strategy is "exhausted" and the record slice is empty, not nil error.
func (r *ladderRun) execute(ctx context.Context) ([]patent.Record, string, error) {
	rungs := []struct {
		name string
		run  func(ctx context.Context) ([]patent.Record, error)
	}{
		{strategyFieldSplit, r.fieldSplit},
		{strategyPrimaryStrict, r.primaryStrict},
		{strategySimplified, r.simplified},
		{strategyReduced, r.reduced},
		{strategyPerTermProbe, r.perTermProbe},
		{strategyRelaxedUnfield, r.relaxedUnfielded},
		{strategyRelaxedTA, r.relaxedTitleAbstract},
		{strategyRelaxedBare, r.relaxedBare},
	}

	for _, rung := range rungs {
		if rung.name == strategySimplified && !r.sawSyntaxError {
			continue
		}
		records, err := rung.run(ctx)
		if err != nil {
			return nil, "", err
		}
		if len(records) > 0 {
			return records, rung.name, nil
		}
		r.conn.log.Debug("strategy returned no records, trying next",
			logging.String("strategy", rung.name))
	}

	return []patent.Record{}, strategyExhausted, nil
}

// attempt runs one CQL query, records it in the audit trail, and maps
// errors to the ladder's continue-or-abort policy.
func (r *ladderRun) attempt(ctx context.Context, strategy, cql string) ([]patent.Record, error) {
	page, err := r.conn.searchRaw(ctx, cql, r.limit)

	entry := patent.StrategyAttempt{Strategy: strategy, Query: cql}
	if err != nil {
		entry.Error = err.Error()
		r.attempts = append(r.attempts, entry)

		if errors.IsCode(err, errors.ErrCodeSourceQuerySyntax) {
			r.sawSyntaxError = true
			r.conn.log.Warn("CQL rejected, continuing ladder",
				logging.String("strategy", strategy),
				logging.String("cql", cql))
			return nil, nil
		}
		return nil, err
	}

	entry.ResultCount = len(page.Records)
	r.attempts = append(r.attempts, entry)
	return page.Records, nil
}

// unionByKey merges record slices, keeping the first occurrence of each
// deduplication key and input order otherwise.
func unionByKey(groups ...[]patent.Record) []patent.Record {
	seen := make(map[string]struct{})
	var out []patent.Record
	for _, group := range groups {
		for _, rec := range group {
			key := rec.Key()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, rec)
		}
	}
	return out
}

// fieldSplit queries title-only and abstract-only separately with a
// reduced term budget and unions the results.  Recovers cases where the
// combined title-OR-abstract clause trips the backend parser.
func (r *ladderRun) fieldSplit(ctx context.Context) ([]patent.Record, error) {
	var groups [][]patent.Record
	for _, field := range []string{"ti", "ab"} {
		cql := buildCQL(r.params, queryOptions{
			maxTerms:       r.conn.cfg.MaxFallbackTerms,
			includeExclude: true,
			includeDate:    true,
			field:          field,
		})
		records, err := r.attempt(ctx, strategyFieldSplit, cql)
		if err != nil {
			return nil, err
		}
		groups = append(groups, records)
	}
	return unionByKey(groups...), nil
}

// primaryStrict issues one query per include keyword, each carrying the
// full exclude set and jurisdiction/date filters, and unions the
// results client-side.
func (r *ladderRun) primaryStrict(ctx context.Context) ([]patent.Record, error) {
	var groups [][]patent.Record
	for _, cql := range perKeywordCQL(r.params, r.conn.cfg.MaxPrimaryTerms) {
		records, err := r.attempt(ctx, strategyPrimaryStrict, cql)
		if err != nil {
			return nil, err
		}
		groups = append(groups, records)
	}
	return unionByKey(groups...), nil
}

// simplified retries with fewer terms, no exclude clause, and no date
// clause.  Runs only after a syntax rejection.
func (r *ladderRun) simplified(ctx context.Context) ([]patent.Record, error) {
	cql := buildCQL(r.params, queryOptions{
		maxTerms: r.conn.cfg.MaxFallbackTerms,
	})
	return r.attempt(ctx, strategySimplified, cql)
}

// reduced cuts the term budget to two terms total.
func (r *ladderRun) reduced(ctx context.Context) ([]patent.Record, error) {
	cql := buildCQL(r.params, queryOptions{
		maxTerms:       reducedTermBudget,
		includeExclude: true,
		includeDate:    true,
	})
	return r.attempt(ctx, strategyReduced, cql)
}

// perTermProbe issues one bare query per include keyword with no
// excludes, jurisdiction, or date filter.  Primarily diagnostic: it
// tells the analyst whether any single term matches at all.  Hits are
// still merged and used as a last-resort data source.
func (r *ladderRun) perTermProbe(ctx context.Context) ([]patent.Record, error) {
	var groups [][]patent.Record
	for _, term := range clipTerms(r.params.Include, r.conn.cfg.MaxPrimaryTerms) {
		cql := buildCQL(QueryParams{Include: []string{term}}, queryOptions{maxTerms: 1})
		records, err := r.attempt(ctx, strategyPerTermProbe, cql)
		if err != nil {
			return nil, err
		}
		groups = append(groups, records)
	}
	return unionByKey(groups...), nil
}

func (r *ladderRun) relaxedUnfielded(ctx context.Context) ([]patent.Record, error) {
	cql := relaxedUnfielded(r.params.Include, r.conn.cfg.MaxFallbackTerms)
	return r.attempt(ctx, strategyRelaxedUnfield, cql)
}

func (r *ladderRun) relaxedTitleAbstract(ctx context.Context) ([]patent.Record, error) {
	cql := relaxedTitleAbstract(r.params.Include, r.conn.cfg.MaxFallbackTerms)
	return r.attempt(ctx, strategyRelaxedTA, cql)
}

func (r *ladderRun) relaxedBare(ctx context.Context) ([]patent.Record, error) {
	cql := relaxedBare(r.params.Include, r.conn.cfg.MaxFallbackTerms)
	return r.attempt(ctx, strategyRelaxedBare, cql)
}
