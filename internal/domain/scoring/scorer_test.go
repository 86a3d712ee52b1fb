package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore_EmptyText(t *testing.T) {
	s := NewScorer(KeywordConfig{})
	score, anomalous := s.Score("  ")
	assert.Zero(t, score)
	assert.False(t, anomalous)
}

func TestScore_AnomalousKeywordsAddPoints(t *testing.T) {
	s := NewScorer(KeywordConfig{})

	score, anomalous := s.Score("Cold fusion reactor")
	assert.Equal(t, 15, score)
	assert.True(t, anomalous)

	// Two distinct terms: cold fusion + transmutation.
	score, anomalous = s.Score("Cold fusion by transmutation")
	assert.Equal(t, 30, score)
	assert.True(t, anomalous)
}

func TestScore_FalsePositivesSubtract(t *testing.T) {
	s := NewScorer(KeywordConfig{})

	// cold fusion (+15) with tokamak (-20) floors at zero.
	score, anomalous := s.Score("Cold fusion in a tokamak")
	assert.Equal(t, 0, score)
	assert.True(t, anomalous, "anomalous flag survives the score floor")
}

func TestScore_ContextBonuses(t *testing.T) {
	s := NewScorer(KeywordConfig{})

	score, _ := s.Score("LENR cell loaded with deuterium")
	assert.Equal(t, 25, score, "chemistry bonus")

	score, _ = s.Score("LENR cell glow discharge electrode")
	assert.Equal(t, 25, score, "plasma bonus")

	score, _ = s.Score("LENR cell deuterium plasma discharge")
	assert.Equal(t, 35, score, "both bonuses stack once each")
}

func TestScore_ClampedToHundred(t *testing.T) {
	s := NewScorer(KeywordConfig{})
	title := "cold fusion lenr low energy nuclear zero point over-unity perpetual"
	abstract := "antigravity cavitation fusion sonofusion transmutation hydrogen plasma"
	score, anomalous := s.Score(title + " " + abstract)
	assert.Equal(t, 100, score)
	assert.True(t, anomalous)
}

func TestScore_AnomalyWithoutKeywordHit(t *testing.T) {
	s := NewScorer(KeywordConfig{})

	// "excess" + "heat" triggers the claim/output rule with no vocabulary hit.
	score, anomalous := s.Score("Device producing excess heat")
	assert.Equal(t, 0, score)
	assert.True(t, anomalous)

	_, anomalous = s.Score("Excess inventory management")
	assert.False(t, anomalous, "claim wording without output wording is not anomalous")

	_, anomalous = s.Score("Heat exchanger design")
	assert.False(t, anomalous, "output wording without claim wording is not anomalous")
}

func TestScore_CustomConfigOverridesDefaults(t *testing.T) {
	s := NewScorer(KeywordConfig{
		Anomalous:      []string{"warp drive"},
		FalsePositives: []string{"science fiction"},
	})

	score, anomalous := s.Score("Warp drive assembly")
	assert.Equal(t, 15, score)
	assert.True(t, anomalous)

	_, anomalous = s.Score("cold fusion")
	assert.False(t, anomalous, "default vocabulary must not leak into custom configs")
}

func TestExtractHighValueTags(t *testing.T) {
	tags := ExtractHighValueTags([]string{
		"H05H 1/00",
		"h05h  1/00",
		"G21B 3/00B",
		"F02P 5/00",
		"",
	})
	assert.Equal(t, []string{"H05H 1/00", "G21B 3/00B"}, tags,
		"normalised, prefix-matched, deduplicated, input order preserved")
}

func TestExtractHighValueTags_NoMatches(t *testing.T) {
	assert.Empty(t, ExtractHighValueTags([]string{"F02P 5/00", "A61K 8/00"}))
	assert.Empty(t, ExtractHighValueTags(nil))
}
