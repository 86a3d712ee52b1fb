package epo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"

	"github.com/turtacn/aether-intel/internal/config"
	"github.com/turtacn/aether-intel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/aether-intel/internal/infrastructure/providers"
	"github.com/turtacn/aether-intel/pkg/errors"
	"github.com/turtacn/aether-intel/pkg/types/patent"
)

type opsStub struct {
	srv        *httptest.Server
	tokenCalls atomic.Int32

	// search decides the response for one CQL query.
	search func(w http.ResponseWriter, q string, auth string)
}

// newOPSStub serves a fake OPS: the auth endpoint issues tok-1, tok-2,
// ... on successive calls, and /published-data/ delegates to the
// per-test search func.
func newOPSStub(t *testing.T) *opsStub {
	t.Helper()

	stub := &opsStub{}

	mux := http.NewServeMux()
	mux.HandleFunc("/auth", func(w http.ResponseWriter, r *http.Request) {
		n := stub.tokenCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(fmt.Sprintf(
			`{"access_token":"tok-%d","token_type":"Bearer","expires_in":"3600"}`, n)))
	})
	mux.HandleFunc("/published-data/", func(w http.ResponseWriter, r *http.Request) {
		stub.search(w, r.URL.Query().Get("q"), r.Header.Get("Authorization"))
	})

	stub.srv = httptest.NewServer(mux)
	t.Cleanup(stub.srv.Close)
	return stub
}

func (s *opsStub) connector() *Connector {
	cfg := config.EPOConfig{
		BaseURL:          s.srv.URL,
		AuthURL:          s.srv.URL + "/auth",
		ConsumerKey:      "key",
		ConsumerSecret:   "secret",
		Timeout:          5 * time.Second,
		MaxPrimaryTerms:  8,
		MaxFallbackTerms: 4,
		MaxRecords:       25,
	}
	return NewConnector(cfg, config.RateLimitConfig{MaxRequestsPerMinute: 1000}, nil)
}

func testSearchRequest() providers.SearchRequest {
	return providers.SearchRequest{
		Jurisdiction: "RU",
		Keywords: patent.KeywordSet{
			Language: "en",
			Include:  []string{"cold fusion", "lenr"},
			Exclude:  []string{"tokamak"},
		},
		From: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
	}
}

func writeXML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/xml")
	_, _ = w.Write([]byte(body))
}

func TestSearchPrimaryStrictWins(t *testing.T) {
	t.Parallel()

	stub := newOPSStub(t)
	stub.search = func(w http.ResponseWriter, q, _ string) {
		// Only the combined title-OR-abstract pair of the strict
		// per-keyword queries matches; field-restricted queries miss.
		if strings.Contains(q, `ti all "cold fusion" OR ab all "cold fusion"`) ||
			strings.Contains(q, `ti all "lenr" OR ab all "lenr"`) {
			writeXML(w, searchResponseXML)
			return
		}
		writeXML(w, emptySearchResponseXML)
	}

	result, err := stub.connector().SearchByJurisdiction(context.Background(), testSearchRequest())
	require.NoError(t, err)

	assert.Equal(t, "primary_strict", result.QueryStrategy)
	assert.Len(t, result.Data, 2)
	assert.Equal(t, 2, result.PreFilterTotal)
	assert.Equal(t, 2, result.FilteredTotal)

	// Two field-split misses plus two per-keyword hits.
	require.Len(t, result.StrategyAttempts, 4)
	assert.Equal(t, "field_split", result.StrategyAttempts[0].Strategy)
	assert.Equal(t, "field_split", result.StrategyAttempts[1].Strategy)
	assert.Equal(t, "primary_strict", result.StrategyAttempts[2].Strategy)
	assert.Equal(t, 2, result.StrategyAttempts[2].ResultCount)
}

func TestSearchSyntaxErrorFallsBackToSimplified(t *testing.T) {
	t.Parallel()

	stub := newOPSStub(t)
	stub.search = func(w http.ResponseWriter, q, _ string) {
		if strings.Contains(q, "NOT") {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`<error><code>CLIENT.CQLSyntax</code></error>`))
			return
		}
		writeXML(w, searchResponseXML)
	}

	result, err := stub.connector().SearchByJurisdiction(context.Background(), testSearchRequest())
	require.NoError(t, err)

	assert.Equal(t, "simplified", result.QueryStrategy)
	assert.Len(t, result.Data, 2)

	var syntaxFailures int
	for _, attempt := range result.StrategyAttempts {
		if strings.Contains(attempt.Error, "CLIENT.CQLSyntax") {
			syntaxFailures++
		}
	}
	assert.Equal(t, 4, syntaxFailures)

	last := result.StrategyAttempts[len(result.StrategyAttempts)-1]
	assert.Equal(t, "simplified", last.Strategy)
	assert.Equal(t, 2, last.ResultCount)
	assert.NotContains(t, last.Query, "NOT")
	assert.NotContains(t, last.Query, "pd within")
}

func TestSearchExhaustedLadder(t *testing.T) {
	t.Parallel()

	stub := newOPSStub(t)
	stub.search = func(w http.ResponseWriter, _, _ string) {
		writeXML(w, emptySearchResponseXML)
	}

	result, err := stub.connector().SearchByJurisdiction(context.Background(), testSearchRequest())
	require.NoError(t, err)

	assert.Equal(t, "exhausted", result.QueryStrategy)
	assert.Empty(t, result.Data)

	// field_split(2) + primary_strict(2) + reduced(1) + per_term_probe(2)
	// + relaxed trio(3); simplified is skipped without a syntax error.
	assert.Len(t, result.StrategyAttempts, 10)
	for _, attempt := range result.StrategyAttempts {
		assert.Empty(t, attempt.Error)
		assert.Zero(t, attempt.ResultCount)
	}
}

func TestSearchAppliesExcludeFilter(t *testing.T) {
	t.Parallel()

	stub := newOPSStub(t)
	stub.search = func(w http.ResponseWriter, _, _ string) {
		writeXML(w, searchResponseXML)
	}

	req := testSearchRequest()
	req.Keywords.Exclude = []string{"nickel"}

	result, err := stub.connector().SearchByJurisdiction(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "field_split", result.QueryStrategy)
	assert.Equal(t, 2, result.PreFilterTotal)
	assert.Equal(t, 1, result.FilteredTotal)
	require.Len(t, result.Data, 1)
	assert.NotContains(t, result.Data[0].Text(), "nickel")
}

func TestSearchAbortsOnRateLimit(t *testing.T) {
	t.Parallel()

	stub := newOPSStub(t)
	stub.search = func(w http.ResponseWriter, _, _ string) {
		w.WriteHeader(http.StatusTooManyRequests)
	}

	_, err := stub.connector().SearchByJurisdiction(context.Background(), testSearchRequest())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeSourceRateLimited))
}

func TestTokenCachedAndRefreshedOn401(t *testing.T) {
	t.Parallel()

	stub := newOPSStub(t)
	stub.search = func(w http.ResponseWriter, _, auth string) {
		if auth != "Bearer tok-2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeXML(w, searchResponseXML)
	}

	conn := stub.connector()
	ctx := context.Background()

	// First call gets tok-1, is rejected, and forces one refresh.
	rec, err := conn.GetByIdentifier(ctx, "RU2654321C1")
	require.NoError(t, err)
	assert.Equal(t, "RU2654321C1", rec.ID)
	assert.Equal(t, int32(2), stub.tokenCalls.Load())

	// Second call reuses the cached refreshed token.
	_, err = conn.GetByIdentifier(ctx, "RU2654321C1")
	require.NoError(t, err)
	assert.Equal(t, int32(2), stub.tokenCalls.Load())
}

func TestFetchLegalStatus(t *testing.T) {
	t.Parallel()

	stub := newOPSStub(t)
	stub.search = func(w http.ResponseWriter, _, _ string) {
		writeXML(w, legalResponseXML)
	}

	conn := stub.connector()
	rec := &patent.Record{ID: "RU2654321C1", Provider: patent.ProviderEPO}

	status, err := conn.FetchLegalStatus(context.Background(), rec)
	require.NoError(t, err)
	require.Len(t, status.Events, 3)
	assert.Equal(t, "MM4A", status.Events[0].Code)

	_, err = conn.FetchLegalStatus(context.Background(), &patent.Record{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))
}

func TestGetByIdentifierNotFound(t *testing.T) {
	t.Parallel()

	stub := newOPSStub(t)
	stub.search = func(w http.ResponseWriter, _, _ string) {
		writeXML(w, emptySearchResponseXML)
	}

	_, err := stub.connector().GetByIdentifier(context.Background(), "RU0000000A1")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeRecordNotFound))
}

func TestNewConnectorWarnsOnMissingCredentials(t *testing.T) {
	t.Parallel()

	buf := &zaptest.Buffer{}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), buf, zapcore.WarnLevel)
	log := logging.NewLoggerFromCore(core)

	NewConnector(config.EPOConfig{}, config.RateLimitConfig{}, log)
	assert.Contains(t, buf.String(), "consumer key/secret not configured")

	buf.Reset()
	NewConnector(config.EPOConfig{ConsumerKey: "key", ConsumerSecret: "secret"},
		config.RateLimitConfig{}, log)
	assert.Empty(t, buf.String())
}
