package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/turtacn/aether-intel/internal/domain/status"
	"github.com/turtacn/aether-intel/pkg/types/patent"
)

func TestClassify_DecisionTable(t *testing.T) {
	cases := []struct {
		name      string
		severity  status.Severity
		score     int
		anomalous bool
		tags      []string
		want      Value
	}{
		{"refused anomalous high score", status.SeverityHigh, 50, true, nil, ValueHigh},
		{"refused with tags", status.SeverityHigh, 0, false, []string{"H05H 1/00"}, ValueHigh},
		{"anomalous medium score", status.SeverityLow, 40, true, nil, ValueMedium},
		{"refusal alone", status.SeverityHigh, 10, false, nil, ValueMedium},
		{"refused anomalous low score falls to rule 4", status.SeverityHigh, 49, true, nil, ValueMedium},
		{"high score not anomalous", status.SeverityLow, 90, false, nil, ValueLow},
		{"anomalous below threshold", status.SeverityLow, 39, true, nil, ValueLow},
		{"tags without refusal", status.SeverityLow, 0, false, []string{"H05H 1/00"}, ValueLow},
		{"nothing", status.SeverityUnknown, 0, false, nil, ValueLow},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.severity, tc.score, tc.anomalous, tc.tags)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestValue_Rank(t *testing.T) {
	assert.Greater(t, ValueHigh.Rank(), ValueMedium.Rank())
	assert.Greater(t, ValueMedium.Rank(), ValueLow.Rank())
}

func TestAssess_ComposesAllSignals(t *testing.T) {
	s := NewScorer(KeywordConfig{})

	rec := &patent.Record{
		Jurisdiction:    "RU",
		Title:           "Cold fusion reactor with deuterium loading",
		Abstract:        "Produces excess heat via plasma discharge",
		Classifications: []string{"H05H 1/00"},
		LegalStatus: &patent.LegalStatus{
			Events: []patent.LegalEvent{
				{Code: "FC9A", Date: time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)},
			},
		},
	}

	a := s.Assess(rec)

	// cold fusion (+15) + excess heat rule + deuterium (+10) + plasma (+10).
	assert.Equal(t, 35, a.Score)
	assert.True(t, a.Anomalous)
	assert.Equal(t, []string{"H05H 1/00"}, a.Tags)
	assert.Equal(t, status.SeverityHigh, a.Status.Severity)
	assert.Equal(t, ValueHigh, a.Value, "refusal with tags is HIGH")
	assert.Contains(t, a.Summary, "value=HIGH")
	assert.Contains(t, a.Summary, "H05H 1/00")
}

func TestAssess_ClaimsTextIsScored(t *testing.T) {
	s := NewScorer(KeywordConfig{})

	rec := &patent.Record{
		Title:    "Electrochemical cell",
		Abstract: "An electrode assembly",
		Claims:   "1. A cell wherein cold fusion occurs in a deuterium lattice.",
	}

	a := s.Assess(rec)

	// cold fusion (+15) + deuterium (+10), both found only in the claims.
	assert.Equal(t, 25, a.Score)
	assert.True(t, a.Anomalous)
}

func TestAssess_NoLegalStatus(t *testing.T) {
	s := NewScorer(KeywordConfig{})

	a := s.Assess(&patent.Record{Title: "Gearbox housing"})

	assert.Zero(t, a.Score)
	assert.False(t, a.Anomalous)
	assert.Equal(t, status.SeverityUnknown, a.Status.Severity)
	assert.Equal(t, ValueLow, a.Value)
}
