// Package status decodes raw INPADOC legal-status data into forensic
// status analyses.  The decoder is pure: no I/O, no clock, no logging.
package status

// Severity grades how strongly a legal-status history signals suppression
// or abandonment of a filing.
type Severity string

const (
	SeverityHigh    Severity = "HIGH"
	SeverityMedium  Severity = "MEDIUM"
	SeverityLow     Severity = "LOW"
	SeverityUnknown Severity = "UNKNOWN"
)

// Flags is the set of boolean outcomes a decoded history can assert.
type Flags struct {
	Refused   bool `json:"refused"`
	Withdrawn bool `json:"withdrawn"`
	Lapsed    bool `json:"lapsed"`
	Expired   bool `json:"expired"`
	Granted   bool `json:"granted"`
	Pending   bool `json:"pending"`
	Active    bool `json:"active"`
}

// Analysis is the decoder's verdict for one legal-status history.
type Analysis struct {
	Severity Severity `json:"severity"`

	// Reason is a short human-readable explanation of the verdict.
	Reason string `json:"reason"`

	// Code is the event code that triggered the verdict, empty when the
	// verdict came from status text or descriptions.
	Code string `json:"code,omitempty"`

	Flags Flags `json:"flags"`
}

// codeEntry is one row of a jurisdiction's event-code table.
type codeEntry struct {
	severity Severity
	reason   string
	flags    Flags
}

// jurisdictionCodes maps jurisdiction → INPADOC event code → verdict.
// Codes are matched case-insensitively against the event's Code field.
var jurisdictionCodes = map[string]map[string]codeEntry{
	"RU": {
		"FC9A": {SeverityHigh, "application refused", Flags{Refused: true}},
		"FA9A": {SeverityMedium, "application withdrawn", Flags{Withdrawn: true}},
		"FZ9A": {SeverityMedium, "application withdrawn", Flags{Withdrawn: true}},
		"MM4A": {SeverityLow, "patent lapsed for non-payment", Flags{Lapsed: true}},
	},
	"EP": {
		"R":    {SeverityHigh, "application refused", Flags{Refused: true}},
		"STPP": {SeverityHigh, "application refused", Flags{Refused: true}},
		"QZ":   {SeverityMedium, "application withdrawn", Flags{Withdrawn: true}},
		"MM":   {SeverityLow, "patent lapsed", Flags{Lapsed: true}},
		"STAA": {SeverityLow, "patent lapsed", Flags{Lapsed: true}},
		"PUAI": {SeverityLow, "application pending", Flags{Pending: true}},
		"REG":  {SeverityLow, "patent granted", Flags{Granted: true}},
		"GRNT": {SeverityLow, "patent granted", Flags{Granted: true}},
	},
	"PL": {
		"ST05": {SeverityHigh, "application refused", Flags{Refused: true}},
		"MM4A": {SeverityLow, "patent lapsed for non-payment", Flags{Lapsed: true}},
	},
	"RO": {
		"MM4A": {SeverityLow, "patent lapsed for non-payment", Flags{Lapsed: true}},
	},
	"CZ": {
		"MM4A": {SeverityLow, "patent lapsed for non-payment", Flags{Lapsed: true}},
	},
	"NL": {
		"MM": {SeverityLow, "patent lapsed", Flags{Lapsed: true}},
	},
	"IT": {
		"MM": {SeverityLow, "patent lapsed", Flags{Lapsed: true}},
	},
	"SE": {
		"MM": {SeverityLow, "patent lapsed", Flags{Lapsed: true}},
	},
	"NO": {
		"MM": {SeverityLow, "patent lapsed", Flags{Lapsed: true}},
	},
	"FI": {
		"MM": {SeverityLow, "patent lapsed", Flags{Lapsed: true}},
	},
	"ES": {
		"FD2A": {SeverityLow, "patent lapsed", Flags{Lapsed: true}},
	},
}

// SupportedJurisdictions returns the jurisdictions with a code table, in no
// particular order.
func SupportedJurisdictions() []string {
	out := make([]string, 0, len(jurisdictionCodes))
	for j := range jurisdictionCodes {
		out = append(out, j)
	}
	return out
}
