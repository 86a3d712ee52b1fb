package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/aether-intel/internal/domain/scoring"
	"github.com/turtacn/aether-intel/internal/domain/status"
)

func newAnalysisRouter(t *testing.T) http.Handler {
	t.Helper()
	h := NewAnalysisHandler(newTestService(t, &stubConnector{}), nil)
	r := chi.NewRouter()
	r.Post("/api/v1/status/analyze", h.AnalyzeStatus)
	r.Post("/api/v1/score", h.ScoreRecord)
	return r
}

func TestAnalysisHandler_AnalyzeStatus(t *testing.T) {
	router := newAnalysisRouter(t)

	body := `{
		"jurisdiction": "RU",
		"legal_status": {"status_text": "REJECTED"}
	}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/status/analyze", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	require.True(t, env.Success)

	var analysis status.Analysis
	require.NoError(t, json.Unmarshal(env.Data, &analysis))
	assert.Equal(t, status.SeverityHigh, analysis.Severity)
	assert.True(t, analysis.Flags.Refused)
}

func TestAnalysisHandler_AnalyzeStatusRequiresJurisdiction(t *testing.T) {
	router := newAnalysisRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/status/analyze",
		strings.NewReader(`{"legal_status":{"status_text":"ACTIVE"}}`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalysisHandler_AnalyzeStatusNilHistory(t *testing.T) {
	router := newAnalysisRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/status/analyze",
		strings.NewReader(`{"jurisdiction":"RU"}`)))

	require.Equal(t, http.StatusOK, w.Code)
	var analysis status.Analysis
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &analysis))
	assert.Equal(t, status.SeverityUnknown, analysis.Severity)
}

func TestAnalysisHandler_ScoreRecord(t *testing.T) {
	router := newAnalysisRouter(t)

	body := `{
		"id": "RU555",
		"jurisdiction": "RU",
		"title": "Cold fusion LENR reactor",
		"abstract": "Excess heat from deuterium plasma discharge.",
		"legal_status": {"status_text": "REJECTED"}
	}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/score", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, w.Code)
	var assessment scoring.Assessment
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &assessment))
	assert.Equal(t, scoring.ValueHigh, assessment.Value)
	assert.GreaterOrEqual(t, assessment.Score, 50)
	assert.True(t, assessment.Anomalous)
}

func TestAnalysisHandler_ScoreRecordRequiresText(t *testing.T) {
	router := newAnalysisRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/score",
		strings.NewReader(`{"id":"RU556","jurisdiction":"RU"}`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
