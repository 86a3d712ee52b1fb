package scoring

import (
	"fmt"
	"strings"

	"github.com/turtacn/aether-intel/internal/domain/status"
	"github.com/turtacn/aether-intel/pkg/types/patent"
)

// Value is the intelligence-value tier assigned to a record.
type Value string

const (
	ValueHigh   Value = "HIGH"
	ValueMedium Value = "MEDIUM"
	ValueLow    Value = "LOW"
)

// rank orders tiers for sorting: higher is more interesting.
func (v Value) Rank() int {
	switch v {
	case ValueHigh:
		return 2
	case ValueMedium:
		return 1
	default:
		return 0
	}
}

// Classify applies the intelligence-value decision table.  Rules are
// evaluated top to bottom; the first match wins:
//
//  1. HIGH:   refusal-grade status, score ≥ 50, anomalous text.
//  2. HIGH:   refusal-grade status with high-value classification tags.
//  3. MEDIUM: score ≥ 40 and anomalous text.
//  4. MEDIUM: refusal-grade status alone.
//  5. LOW:    everything else.
func Classify(sev status.Severity, score int, anomalous bool, tags []string) Value {
	switch {
	case sev == status.SeverityHigh && score >= 50 && anomalous:
		return ValueHigh
	case len(tags) > 0 && sev == status.SeverityHigh:
		return ValueHigh
	case score >= 40 && anomalous:
		return ValueMedium
	case sev == status.SeverityHigh:
		return ValueMedium
	default:
		return ValueLow
	}
}

// Assessment is the combined analysis verdict attached to a record.
type Assessment struct {
	Score     int      `json:"score"`
	Anomalous bool     `json:"anomalous"`
	Tags      []string `json:"high_value_tags,omitempty"`

	Status status.Analysis `json:"status"`

	Value Value `json:"intelligence_value"`

	// Summary is a one-line human-readable digest of the verdict.
	Summary string `json:"summary"`
}

// Assess runs the full per-record analysis: score the text, extract
// high-value tags, decode the legal status, and classify.
func (s *Scorer) Assess(rec *patent.Record) Assessment {
	score, anomalous := s.Score(rec.Text())
	tags := ExtractHighValueTags(rec.Classifications)
	st := status.Analyze(rec.Jurisdiction, rec.LegalStatus)
	value := Classify(st.Severity, score, anomalous, tags)

	return Assessment{
		Score:     score,
		Anomalous: anomalous,
		Tags:      tags,
		Status:    st,
		Value:     value,
		Summary:   summarize(score, anomalous, tags, st, value),
	}
}

func summarize(score int, anomalous bool, tags []string, st status.Analysis, value Value) string {
	parts := []string{fmt.Sprintf("value=%s score=%d", value, score)}
	if anomalous {
		parts = append(parts, "anomalous text")
	}
	if len(tags) > 0 {
		parts = append(parts, "high-value classes: "+strings.Join(tags, ", "))
	}
	if st.Severity != status.SeverityUnknown {
		parts = append(parts, fmt.Sprintf("status %s (%s)", st.Severity, st.Reason))
	}
	return strings.Join(parts, "; ")
}
