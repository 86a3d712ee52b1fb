package status

import (
	"strings"

	"github.com/turtacn/aether-intel/pkg/types/patent"
)

// Analyze decodes one legal-status history into a verdict.  The passes run
// in fixed priority order:
//
//  1. Summary status text: a recognised substring sets a provisional
//     verdict.  With no events to inspect, the provisional verdict is
//     final; otherwise the event passes below may override it.
//  2. HIGH-severity code scan across the whole event history.
//  3. Refusal wording scan across event codes and descriptions.
//  4. Classification of the most recent event, by code table first, then by
//     description wording.
//
// Flags accumulate: a verdict from passes 2-4 carries the provisional
// text flags alongside its own.  Events are examined newest first; the
// input slice is not mutated.  A nil or empty history yields
// SeverityUnknown with no flags.
func Analyze(jurisdiction string, ls *patent.LegalStatus) Analysis {
	if ls == nil || (ls.StatusText == "" && len(ls.Events) == 0) {
		return Analysis{Severity: SeverityUnknown, Reason: "no legal status data"}
	}

	jurisdiction = strings.ToUpper(strings.TrimSpace(jurisdiction))
	codes := jurisdictionCodes[jurisdiction]

	provisional, hasText := analyzeStatusText(ls.StatusText)

	events := sortedEvents(ls)
	if len(events) == 0 {
		if hasText {
			return provisional
		}
		return Analysis{Severity: SeverityUnknown, Reason: "no events to classify"}
	}

	finish := func(a Analysis) Analysis {
		if hasText {
			a.Flags = mergeFlags(a.Flags, provisional.Flags)
		}
		return a
	}

	// A single refusal anywhere in the history outweighs everything else,
	// including a benign summary status; refusals are never undone by
	// later events.
	for _, ev := range events {
		code := strings.ToUpper(strings.TrimSpace(ev.Code))
		if entry, ok := codes[code]; ok && entry.severity == SeverityHigh {
			return finish(Analysis{
				Severity: entry.severity,
				Reason:   entry.reason,
				Code:     code,
				Flags:    entry.flags,
			})
		}
	}
	for _, ev := range events {
		code := strings.ToUpper(strings.TrimSpace(ev.Code))
		if strings.Contains(code, "REFUS") || strings.Contains(strings.ToUpper(ev.Description), "REFUS") {
			return finish(Analysis{
				Severity: SeverityHigh,
				Reason:   "refusal found in event code or description",
				Code:     code,
				Flags:    Flags{Refused: true},
			})
		}
	}

	latest := events[0]
	code := strings.ToUpper(strings.TrimSpace(latest.Code))
	if entry, ok := codes[code]; ok {
		return finish(Analysis{
			Severity: entry.severity,
			Reason:   entry.reason,
			Code:     code,
			Flags:    entry.flags,
		})
	}
	return finish(classifyDescription(code, latest.Description))
}

// mergeFlags unions two flag sets.
func mergeFlags(a, b Flags) Flags {
	return Flags{
		Refused:   a.Refused || b.Refused,
		Withdrawn: a.Withdrawn || b.Withdrawn,
		Lapsed:    a.Lapsed || b.Lapsed,
		Expired:   a.Expired || b.Expired,
		Granted:   a.Granted || b.Granted,
		Pending:   a.Pending || b.Pending,
		Active:    a.Active || b.Active,
	}
}

// analyzeStatusText maps a provider summary status onto a verdict.  The
// second return value is false when the text is empty or unrecognised.
func analyzeStatusText(text string) (Analysis, bool) {
	upper := strings.ToUpper(text)
	switch {
	case upper == "":
		return Analysis{}, false
	case strings.Contains(upper, "REJECTED"), strings.Contains(upper, "REFUSED"):
		return Analysis{
			Severity: SeverityHigh,
			Reason:   "status text reports refusal",
			Flags:    Flags{Refused: true},
		}, true
	case strings.Contains(upper, "WITHDRAWN"), strings.Contains(upper, "DISCONTINUED"):
		return Analysis{
			Severity: SeverityMedium,
			Reason:   "status text reports withdrawal",
			Flags:    Flags{Withdrawn: true},
		}, true
	case strings.Contains(upper, "EXPIRED"):
		return Analysis{
			Severity: SeverityLow,
			Reason:   "status text reports expiry",
			Flags:    Flags{Expired: true},
		}, true
	case strings.Contains(upper, "LAPSED"):
		return Analysis{
			Severity: SeverityLow,
			Reason:   "status text reports lapse",
			Flags:    Flags{Lapsed: true},
		}, true
	case strings.Contains(upper, "INACTIVE"):
		return Analysis{
			Severity: SeverityLow,
			Reason:   "status text reports inactive filing",
		}, true
	case strings.Contains(upper, "ACTIVE"):
		return Analysis{
			Severity: SeverityLow,
			Reason:   "status text reports active filing",
			Flags:    Flags{Active: true},
		}, true
	case strings.Contains(upper, "PENDING"):
		return Analysis{
			Severity: SeverityLow,
			Reason:   "status text reports pending application",
			Flags:    Flags{Pending: true},
		}, true
	default:
		return Analysis{}, false
	}
}

// classifyDescription grades the latest event by its description wording
// when its code is absent from the jurisdiction table.
func classifyDescription(code, description string) Analysis {
	upper := strings.ToUpper(description)
	switch {
	case strings.Contains(upper, "WITHDRAW"):
		return Analysis{
			Severity: SeverityMedium,
			Reason:   "latest event reports withdrawal",
			Code:     code,
			Flags:    Flags{Withdrawn: true},
		}
	case strings.Contains(upper, "LAPSE"):
		return Analysis{
			Severity: SeverityLow,
			Reason:   "latest event reports lapse",
			Code:     code,
			Flags:    Flags{Lapsed: true},
		}
	case strings.Contains(upper, "EXPIR"):
		return Analysis{
			Severity: SeverityLow,
			Reason:   "latest event reports expiry",
			Code:     code,
			Flags:    Flags{Expired: true},
		}
	case strings.Contains(upper, "GRANT"):
		return Analysis{
			Severity: SeverityLow,
			Reason:   "latest event reports grant",
			Code:     code,
			Flags:    Flags{Granted: true},
		}
	default:
		return Analysis{
			Severity: SeverityLow,
			Reason:   "no terminal event found, treated as pending",
			Code:     code,
			Flags:    Flags{Pending: true},
		}
	}
}

// sortedEvents returns a copy of the history with events ordered newest
// first, undated events last.
func sortedEvents(ls *patent.LegalStatus) []patent.LegalEvent {
	clone := patent.LegalStatus{Events: append([]patent.LegalEvent(nil), ls.Events...)}
	clone.SortEvents()
	return clone.Events
}
