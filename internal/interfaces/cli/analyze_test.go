package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/aether-intel/internal/domain/scoring"
	"github.com/turtacn/aether-intel/pkg/types/patent"
)

func TestAnalyzeRecord_FromStdin(t *testing.T) {
	cc := newTestContext(t, &stubConnector{}, "table")

	rec := patent.Record{
		ID:           "RU5001",
		Jurisdiction: "RU",
		Title:        "Cold fusion reactor",
		Abstract:     "Excess heat from deuterium plasma discharge.",
		LegalStatus:  &patent.LegalStatus{StatusText: "REJECTED"},
	}
	body, err := json.Marshal(rec)
	require.NoError(t, err)

	out, err := executeCommand(t, cc, string(body), "analyze", "record")
	require.NoError(t, err)

	assert.Contains(t, out, "HIGH")
	assert.Contains(t, out, "anomalous")
}

func TestAnalyzeRecord_FromFile(t *testing.T) {
	cc := newTestContext(t, &stubConnector{}, "json")

	rec := patent.Record{
		ID:    "RU5002",
		Title: "Tokamak vessel cooling circuit",
	}
	body, err := json.Marshal(rec)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "record.json")
	require.NoError(t, os.WriteFile(path, body, 0o644))

	out, err := executeCommand(t, cc, "", "analyze", "record", path)
	require.NoError(t, err)

	var result struct {
		Assessment scoring.Assessment `json:"assessment"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, scoring.ValueLow, result.Assessment.Value)
	assert.False(t, result.Assessment.Anomalous)
}

func TestAnalyzeRecord_MissingText(t *testing.T) {
	cc := newTestContext(t, &stubConnector{}, "table")

	_, err := executeCommand(t, cc, `{"id":"RU5003"}`, "analyze", "record")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title, abstract or claims")
}

func TestAnalyzeRecord_MalformedJSON(t *testing.T) {
	cc := newTestContext(t, &stubConnector{}, "table")

	_, err := executeCommand(t, cc, "{not json", "analyze", "record")
	require.Error(t, err)
}

func TestAnalyzeStatus_Refused(t *testing.T) {
	cc := newTestContext(t, &stubConnector{}, "table")

	out, err := executeCommand(t, cc, `{"status_text":"REJECTED"}`,
		"analyze", "status", "--jurisdiction", "RU")
	require.NoError(t, err)

	assert.Contains(t, out, "HIGH")
	assert.Contains(t, out, "refused")
}

func TestAnalyzeStatus_RequiresJurisdiction(t *testing.T) {
	cc := newTestContext(t, &stubConnector{}, "table")

	_, err := executeCommand(t, cc, `{"status_text":"ACTIVE"}`, "analyze", "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--jurisdiction")
}

func TestAnalyzeStatus_MissingFile(t *testing.T) {
	cc := newTestContext(t, &stubConnector{}, "table")

	_, err := executeCommand(t, cc, "",
		"analyze", "status", "--jurisdiction", "RU", "/nonexistent/status.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot open")
}
