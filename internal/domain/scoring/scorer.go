// Package scoring grades patent text for anomalous-technology signals and
// classifies records into intelligence-value tiers.  Like the status
// decoder it is pure: all collaborators are passed in, nothing is fetched.
package scoring

import (
	"strings"
)

// Scoring weights.  The score is clamped to [0, 100].
const (
	anomalousKeywordPoints = 15
	falsePositivePenalty   = 20
	chemistryBonus         = 10
	plasmaBonus            = 10
	maxScore               = 100
)

// KeywordConfig drives the scorer.  All terms are matched as
// case-insensitive substrings of the record text (title, abstract, claims).
type KeywordConfig struct {
	// Anomalous terms each add points and mark the record anomalous.
	Anomalous []string `json:"anomalous"`

	// FalsePositives each subtract points; they identify mainstream research
	// vocabulary that co-occurs with the anomalous terms.
	FalsePositives []string `json:"false_positives"`
}

// DefaultKeywordConfig returns the built-in scoring vocabulary.
func DefaultKeywordConfig() KeywordConfig {
	return KeywordConfig{
		Anomalous: []string{
			"cold fusion",
			"lenr",
			"low energy nuclear",
			"zero point",
			"zero-point",
			"over-unity",
			"perpetual",
			"antigravity",
			"anti-gravity",
			"cavitation fusion",
			"sonofusion",
			"transmutation",
		},
		FalsePositives: []string{
			"tokamak",
			"iter",
			"stellarator",
			"magnetic confinement",
			"inertial confinement",
			"laser fusion",
		},
	}
}

// Scorer computes anomaly scores from patent text.
type Scorer struct {
	cfg KeywordConfig
}

// NewScorer constructs a Scorer.  An empty config falls back to the
// built-in vocabulary.
func NewScorer(cfg KeywordConfig) *Scorer {
	if len(cfg.Anomalous) == 0 && len(cfg.FalsePositives) == 0 {
		cfg = DefaultKeywordConfig()
	}
	return &Scorer{cfg: cfg}
}

// Score grades the record text, normally the concatenation of title,
// abstract and claims from Record.Text.  It returns the clamped score and
// whether the record is flagged anomalous.
//
// Each distinct anomalous term found adds 15 points; each distinct
// false-positive term subtracts 20.  Hydrogen/deuterium vocabulary and
// plasma/discharge vocabulary each add a 10-point context bonus.  The
// anomalous flag is set by any anomalous term, or by the combination of
// over-unity or excess wording with energy or heat wording.
func (s *Scorer) Score(text string) (int, bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return 0, false
	}

	score := 0
	anomalous := false
	for _, kw := range s.cfg.Anomalous {
		if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
			score += anomalousKeywordPoints
			anomalous = true
		}
	}
	for _, kw := range s.cfg.FalsePositives {
		if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
			score -= falsePositivePenalty
		}
	}

	if strings.Contains(text, "hydrogen") || strings.Contains(text, "deuterium") {
		score += chemistryBonus
	}
	if strings.Contains(text, "plasma") || strings.Contains(text, "discharge") {
		score += plasmaBonus
	}

	if !anomalous {
		claim := strings.Contains(text, "over-unity") || strings.Contains(text, "excess")
		output := strings.Contains(text, "energy") || strings.Contains(text, "heat")
		anomalous = claim && output
	}

	if score < 0 {
		score = 0
	}
	if score > maxScore {
		score = maxScore
	}
	return score, anomalous
}

// highValueClassifications are the IPC/CPC symbols whose presence marks a
// record as strategically interesting regardless of its text.
var highValueClassifications = []string{
	"G21B 3/00",
	"H01J 37/00",
	"H05H 1/00",
	"C25B 1/00",
}

// ExtractHighValueTags returns the subset of classifications that match the
// high-value table.  Symbols are normalised (whitespace collapsed, upper
// case) before prefix comparison; the output preserves input order and is
// deduplicated.
func ExtractHighValueTags(classifications []string) []string {
	var tags []string
	seen := make(map[string]struct{})
	for _, raw := range classifications {
		norm := strings.ToUpper(strings.Join(strings.Fields(raw), " "))
		if norm == "" {
			continue
		}
		for _, hv := range highValueClassifications {
			if strings.HasPrefix(norm, hv) {
				if _, dup := seen[norm]; !dup {
					seen[norm] = struct{}{}
					tags = append(tags, norm)
				}
				break
			}
		}
	}
	return tags
}
