package search

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/aether-intel/internal/config"
	"github.com/turtacn/aether-intel/internal/domain/scoring"
	"github.com/turtacn/aether-intel/internal/domain/status"
	"github.com/turtacn/aether-intel/internal/infrastructure/cache"
	"github.com/turtacn/aether-intel/internal/infrastructure/providers"
	"github.com/turtacn/aether-intel/internal/infrastructure/translation"
	"github.com/turtacn/aether-intel/pkg/errors"
	"github.com/turtacn/aether-intel/pkg/types/patent"
)

type fakeConnector struct {
	name patent.Provider

	searchFn func(req providers.SearchRequest) (*patent.SearchResult, error)
	legalFn  func(rec *patent.Record) (*patent.LegalStatus, error)

	mu          sync.Mutex
	searchCalls int
	legalCalls  []string
}

func (f *fakeConnector) Provider() patent.Provider { return f.name }

func (f *fakeConnector) SearchByJurisdiction(_ context.Context, req providers.SearchRequest) (*patent.SearchResult, error) {
	f.mu.Lock()
	f.searchCalls++
	f.mu.Unlock()
	return f.searchFn(req)
}

func (f *fakeConnector) FetchLegalStatus(_ context.Context, rec *patent.Record) (*patent.LegalStatus, error) {
	f.mu.Lock()
	f.legalCalls = append(f.legalCalls, rec.Key())
	f.mu.Unlock()
	if f.legalFn == nil {
		return nil, errors.New(errors.ErrCodeRecordNotFound, "no legal data")
	}
	return f.legalFn(rec)
}

func (f *fakeConnector) Healthy(context.Context) error { return nil }

func (f *fakeConnector) searches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.searchCalls
}

func (f *fakeConnector) legalFetches() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.legalCalls...)
}

type fakeTranslator struct {
	mu    sync.Mutex
	calls int
	fn    func(set patent.KeywordSet, lang string) (patent.KeywordSet, error)
}

func (f *fakeTranslator) TranslateKeywords(_ context.Context, set patent.KeywordSet, lang string) (patent.KeywordSet, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.fn == nil {
		return set, errors.New(errors.ErrCodeTranslationFailed, "translator not configured")
	}
	return f.fn(set, lang)
}

func (f *fakeTranslator) translations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func anomalousRecord(num string) patent.Record {
	return patent.Record{
		ID:                num,
		Provider:          patent.ProviderEPO,
		Jurisdiction:      "RU",
		Title:             "Cold fusion LENR reactor",
		Abstract:          "Excess heat from deuterium plasma discharge.",
		PublicationNumber: num,
	}
}

func mundaneRecord(num string) patent.Record {
	return patent.Record{
		ID:                num,
		Provider:          patent.ProviderEPO,
		Jurisdiction:      "RU",
		Title:             "Tokamak vessel cooling circuit",
		PublicationNumber: num,
		LegalStatus:       &patent.LegalStatus{StatusText: "ACTIVE"},
	}
}

func singleResult(records ...patent.Record) func(providers.SearchRequest) (*patent.SearchResult, error) {
	return func(providers.SearchRequest) (*patent.SearchResult, error) {
		return &patent.SearchResult{
			Data:          records,
			Total:         len(records),
			QueryStrategy: "primary_strict",
			StrategyAttempts: []patent.StrategyAttempt{
				{Strategy: "field_split", Query: "q1"},
				{Strategy: "primary_strict", Query: "q2", ResultCount: len(records)},
			},
			PreFilterTotal: len(records),
			FilteredTotal:  len(records),
		}, nil
	}
}

func newService(t *testing.T, conn providers.Connector, tr *fakeTranslator) *Service {
	t.Helper()
	dir := t.TempDir()
	cfg := config.SearchConfig{
		Jurisdictions:         []string{"RU"},
		Languages:             []string{"en"},
		WindowDays:            90,
		EnrichmentConcurrency: 2,
	}
	var translator translation.Translator
	if tr != nil {
		translator = tr
	}
	svc, err := NewService(cfg, []providers.Connector{conn}, translator,
		cache.NewKeywordCache(dir, 10, nil),
		cache.NewSearchCache(dir, time.Hour, nil),
		nil, nil)
	require.NoError(t, err)
	return svc
}

func TestNewServiceValidation(t *testing.T) {
	dir := t.TempDir()
	kc := cache.NewKeywordCache(dir, 10, nil)
	sc := cache.NewSearchCache(dir, time.Hour, nil)
	conn := &fakeConnector{name: patent.ProviderEPO}

	_, err := NewService(config.SearchConfig{}, nil, nil, kc, sc, nil, nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfigInvalid))

	_, err = NewService(config.SearchConfig{}, []providers.Connector{conn}, nil, nil, sc, nil, nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfigInvalid))

	_, err = NewService(config.SearchConfig{}, []providers.Connector{nil}, nil, kc, sc, nil, nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfigInvalid))

	svc, err := NewService(config.SearchConfig{}, []providers.Connector{conn}, nil, kc, sc, nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestRunFullPipeline(t *testing.T) {
	conn := &fakeConnector{
		name:     patent.ProviderEPO,
		searchFn: singleResult(anomalousRecord("RU1001"), mundaneRecord("RU1002")),
		legalFn: func(*patent.Record) (*patent.LegalStatus, error) {
			return &patent.LegalStatus{StatusText: "REJECTED"}, nil
		},
	}
	svc := newService(t, conn, nil)

	report, err := svc.Run(context.Background(), Request{})
	require.NoError(t, err)
	require.Len(t, report.Records, 2)

	// Only the record that arrived without a status is enriched.
	assert.Equal(t, []string{"RU1001"}, conn.legalFetches())

	first := report.Records[0]
	assert.Equal(t, "RU1001", first.PublicationNumber)
	assert.Equal(t, scoring.ValueHigh, first.Assessment.Value)
	assert.Equal(t, status.SeverityHigh, first.Assessment.Status.Severity)
	assert.True(t, first.Assessment.Status.Flags.Refused)
	assert.GreaterOrEqual(t, first.Assessment.Score, 50)

	second := report.Records[1]
	assert.Equal(t, scoring.ValueLow, second.Assessment.Value)

	assert.Equal(t, 2, report.Stats.Total)
	assert.Equal(t, 1, report.Stats.Refused)
	assert.InDelta(t, 0.5, report.Stats.RefusalRate, 1e-9)

	assert.Equal(t, 2, report.Fetched)
	require.Len(t, report.Searches, 1)
	run := report.Searches[0]
	assert.Equal(t, "RU", run.Jurisdiction)
	assert.Equal(t, "en", run.Language)
	assert.Equal(t, "primary_strict", run.Strategy)
	assert.Len(t, run.Attempts, 2)
	assert.False(t, run.FromCache)

	require.Len(t, report.Languages, 1)
	assert.Equal(t, "base", report.Languages[0].Source)
	assert.False(t, report.Languages[0].Keywords.IsEmpty())
}

func TestRunDeduplicatesAcrossJurisdictions(t *testing.T) {
	conn := &fakeConnector{
		name:     patent.ProviderEPO,
		searchFn: singleResult(mundaneRecord("RU2000")),
	}
	svc := newService(t, conn, nil)

	report, err := svc.Run(context.Background(), Request{Jurisdictions: []string{"RU", "PL"}})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Fetched)
	assert.Len(t, report.Records, 1)
	assert.Len(t, report.Searches, 2)
}

func TestRunReusesSearchCache(t *testing.T) {
	conn := &fakeConnector{
		name:     patent.ProviderEPO,
		searchFn: singleResult(mundaneRecord("RU3000")),
	}
	svc := newService(t, conn, nil)

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	req := Request{From: from, To: to}

	_, err := svc.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, conn.searches())

	report, err := svc.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, conn.searches(), "second run should hit the cache")
	require.Len(t, report.Searches, 1)
	assert.True(t, report.Searches[0].FromCache)
	assert.Len(t, report.Records, 1)

	req.BypassCache = true
	_, err = svc.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, conn.searches(), "bypass should reach the provider")
}

func TestRunTranslatesAndCachesKeywords(t *testing.T) {
	conn := &fakeConnector{
		name:     patent.ProviderEPO,
		searchFn: singleResult(),
	}
	tr := &fakeTranslator{
		fn: func(set patent.KeywordSet, lang string) (patent.KeywordSet, error) {
			return patent.KeywordSet{
				Language: lang,
				Include:  []string{"холодный синтез"},
				Exclude:  set.Exclude,
			}, nil
		},
	}
	svc := newService(t, conn, tr)

	req := Request{Languages: []string{"en", "ru"}}
	report, err := svc.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, tr.translations())

	require.Len(t, report.Languages, 2)
	assert.Equal(t, "base", report.Languages[0].Source)
	assert.Equal(t, "translated", report.Languages[1].Source)
	assert.Equal(t, []string{"холодный синтез"}, report.Languages[1].Keywords.Include)

	report, err = svc.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, tr.translations(), "second run should reuse the cached translation")
	assert.Equal(t, "cache", report.Languages[1].Source)
}

func TestRunTranslationFailureFallsBackToBuiltin(t *testing.T) {
	conn := &fakeConnector{
		name:     patent.ProviderEPO,
		searchFn: singleResult(),
	}
	tr := &fakeTranslator{} // always fails
	svc := newService(t, conn, tr)

	report, err := svc.Run(context.Background(), Request{Languages: []string{"ru"}})
	require.NoError(t, err)

	require.Len(t, report.Languages, 1)
	assert.Equal(t, "builtin", report.Languages[0].Source)
	assert.Equal(t, "ru", report.Languages[0].Keywords.Language)
	assert.False(t, report.Languages[0].Keywords.IsEmpty())
}

func TestRunProviderErrorAbortsOnlyThatLeg(t *testing.T) {
	conn := &fakeConnector{
		name: patent.ProviderEPO,
		searchFn: func(providers.SearchRequest) (*patent.SearchResult, error) {
			return nil, errors.New(errors.ErrCodeSourceRateLimited, "fair-use limit")
		},
	}
	svc := newService(t, conn, nil)

	report, err := svc.Run(context.Background(), Request{})
	require.NoError(t, err)

	assert.Empty(t, report.Records)
	assert.Zero(t, report.Fetched)
	require.Len(t, report.Searches, 1)
	run := report.Searches[0]
	assert.Equal(t, "RU", run.Jurisdiction)
	assert.Contains(t, run.Error, "fair-use limit")
}

func TestRunContinuesAfterFailedLeg(t *testing.T) {
	conn := &fakeConnector{
		name: patent.ProviderEPO,
		searchFn: func(req providers.SearchRequest) (*patent.SearchResult, error) {
			if req.Jurisdiction == "RU" {
				return nil, errors.New(errors.ErrCodeSourceUnavailable, "register offline")
			}
			return singleResult(mundaneRecord("PL5000"))(req)
		},
	}
	svc := newService(t, conn, nil)

	report, err := svc.Run(context.Background(), Request{Jurisdictions: []string{"RU", "PL"}})
	require.NoError(t, err)

	require.Len(t, report.Searches, 2)
	assert.Contains(t, report.Searches[0].Error, "register offline")
	assert.Empty(t, report.Searches[1].Error)
	assert.Equal(t, 1, report.Fetched)
	require.Len(t, report.Records, 1)
	assert.Equal(t, "PL5000", report.Records[0].PublicationNumber)
}

func TestRunEnrichmentFailureGradesUnknown(t *testing.T) {
	conn := &fakeConnector{
		name:     patent.ProviderEPO,
		searchFn: singleResult(anomalousRecord("RU4000")),
		legalFn: func(*patent.Record) (*patent.LegalStatus, error) {
			return nil, errors.Unavailable("legal service down")
		},
	}
	svc := newService(t, conn, nil)

	report, err := svc.Run(context.Background(), Request{})
	require.NoError(t, err)
	require.Len(t, report.Records, 1)

	rec := report.Records[0]
	assert.Nil(t, rec.LegalStatus)
	assert.Equal(t, status.SeverityUnknown, rec.Assessment.Status.Severity)
}

func TestRunRequestKeywordOverride(t *testing.T) {
	var gotInclude []string
	conn := &fakeConnector{
		name: patent.ProviderEPO,
		searchFn: func(req providers.SearchRequest) (*patent.SearchResult, error) {
			gotInclude = req.Keywords.Include
			return &patent.SearchResult{Data: []patent.Record{}, QueryStrategy: "exhausted"}, nil
		},
	}
	svc := newService(t, conn, nil)

	set := &patent.KeywordSet{Include: []string{"sonoluminescence"}}
	report, err := svc.Run(context.Background(), Request{Keywords: set})
	require.NoError(t, err)

	assert.Equal(t, []string{"sonoluminescence"}, gotInclude)
	require.Len(t, report.Languages, 1)
	assert.Equal(t, "request", report.Languages[0].Source)
	assert.Equal(t, "en", report.Languages[0].Keywords.Language)
}

func TestRunRejectsEmptyKeywordOverride(t *testing.T) {
	conn := &fakeConnector{name: patent.ProviderEPO, searchFn: singleResult()}
	svc := newService(t, conn, nil)

	_, err := svc.Run(context.Background(), Request{Keywords: &patent.KeywordSet{}})
	assert.True(t, errors.IsCode(err, errors.ErrCodeKeywordSetEmpty))
}

func TestRunUnknownProvider(t *testing.T) {
	conn := &fakeConnector{name: patent.ProviderEPO, searchFn: singleResult()}
	svc := newService(t, conn, nil)

	_, err := svc.Run(context.Background(), Request{Provider: patent.ProviderLens})
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))
}

func TestRunCancellation(t *testing.T) {
	conn := &fakeConnector{name: patent.ProviderEPO, searchFn: singleResult()}
	svc := newService(t, conn, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Run(ctx, Request{})
	assert.True(t, errors.IsCode(err, errors.ErrCodeCanceled))
}

func TestKeywordSetLookup(t *testing.T) {
	conn := &fakeConnector{name: patent.ProviderEPO, searchFn: singleResult()}
	svc := newService(t, conn, nil)

	set, err := svc.KeywordSet("Russian")
	require.NoError(t, err)
	assert.Equal(t, "ru", set.Language)

	_, err = svc.KeywordSet("tlh")
	assert.True(t, errors.IsCode(err, errors.ErrCodeKeywordLangUnknown))

	assert.Contains(t, svc.Languages(), "en")
}
