package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	searchapp "github.com/turtacn/aether-intel/internal/application/search"
	"github.com/turtacn/aether-intel/internal/domain/scoring"
	"github.com/turtacn/aether-intel/internal/domain/status"
	"github.com/turtacn/aether-intel/pkg/types/patent"
)

var (
	severityColors = map[status.Severity]*color.Color{
		status.SeverityHigh:    color.New(color.FgRed, color.Bold),
		status.SeverityMedium:  color.New(color.FgYellow),
		status.SeverityLow:     color.New(color.FgGreen),
		status.SeverityUnknown: color.New(color.Faint),
	}

	valueColors = map[scoring.Value]*color.Color{
		scoring.ValueHigh:   color.New(color.FgRed, color.Bold),
		scoring.ValueMedium: color.New(color.FgYellow),
		scoring.ValueLow:    color.New(color.FgGreen),
	}
)

func writeIndentedJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderReport prints a search report as an indented JSON document or a
// record table followed by batch statistics and the search audit trail.
func renderReport(w io.Writer, report *searchapp.Report, format string) error {
	if format == "json" {
		return writeIndentedJSON(w, report)
	}

	if len(report.Records) == 0 {
		fmt.Fprintln(w, "No records matched.")
		renderSearches(w, report.Searches)
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"PUBLICATION", "JUR", "SEVERITY", "SCORE", "VALUE", "TITLE"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)

	for _, rec := range report.Records {
		a := rec.Assessment
		table.Append([]string{
			rec.Key(),
			rec.Jurisdiction,
			colorSeverity(a.Status.Severity),
			strconv.Itoa(a.Score),
			colorValue(a.Value),
			truncate(rec.Title, 60),
		})
	}
	table.Render()

	fmt.Fprintf(w, "\n%d records (%d fetched, %d searches) in %s\n",
		len(report.Records), report.Fetched, len(report.Searches),
		report.Duration.Round(time.Millisecond))
	renderStats(w, report.Stats)
	renderSearches(w, report.Searches)
	return nil
}

func renderStats(w io.Writer, stats status.BatchStats) {
	if stats.Total == 0 {
		return
	}
	fmt.Fprintf(w, "refused %d, withdrawn %d, lapsed %d, expired %d, active %d, pending %d\n",
		stats.Refused, stats.Withdrawn, stats.Lapsed, stats.Expired, stats.Active, stats.Pending)
	fmt.Fprintf(w, "refusal rate %.1f%%\n", stats.RefusalRate*100)
}

func renderSearches(w io.Writer, searches []searchapp.SearchRun) {
	if len(searches) == 0 {
		return
	}
	fmt.Fprintln(w)
	for _, s := range searches {
		if s.Error != "" {
			fmt.Fprintf(w, "  %s %s/%s: failed: %s\n",
				s.Provider, s.Jurisdiction, s.Language, s.Error)
			continue
		}
		origin := "live"
		if s.FromCache {
			origin = "cache"
		}
		fmt.Fprintf(w, "  %s %s/%s: %d of %d via %s (%s, %d attempts)\n",
			s.Provider, s.Jurisdiction, s.Language, s.Returned, s.Total,
			s.Strategy, origin, len(s.Attempts))
	}
}

// renderAssessment prints a single-record assessment.
func renderAssessment(w io.Writer, rec *patent.Record, a scoring.Assessment, format string) error {
	if format == "json" {
		return writeIndentedJSON(w, struct {
			Record     *patent.Record     `json:"record"`
			Assessment scoring.Assessment `json:"assessment"`
		}{rec, a})
	}

	fmt.Fprintf(w, "%s  %s\n", rec.Key(), truncate(rec.Title, 70))
	fmt.Fprintf(w, "  score:    %d", a.Score)
	if a.Anomalous {
		fmt.Fprintf(w, "  %s", color.New(color.FgMagenta).Sprint("(anomalous)"))
	}
	fmt.Fprintln(w)
	if len(a.Tags) > 0 {
		fmt.Fprintf(w, "  tags:     %s\n", strings.Join(a.Tags, ", "))
	}
	fmt.Fprintf(w, "  status:   %s (%s)\n", colorSeverity(a.Status.Severity), a.Status.Reason)
	fmt.Fprintf(w, "  value:    %s\n", colorValue(a.Value))
	fmt.Fprintf(w, "  verdict:  %s\n", a.Summary)
	return nil
}

// renderAnalysis prints a standalone legal-status analysis.
func renderAnalysis(w io.Writer, jurisdiction string, a status.Analysis, format string) error {
	if format == "json" {
		return writeIndentedJSON(w, struct {
			Jurisdiction string          `json:"jurisdiction"`
			Analysis     status.Analysis `json:"analysis"`
		}{jurisdiction, a})
	}

	fmt.Fprintf(w, "%s: %s\n", jurisdiction, colorSeverity(a.Severity))
	fmt.Fprintf(w, "  reason: %s\n", a.Reason)
	if a.Code != "" {
		fmt.Fprintf(w, "  code:   %s\n", a.Code)
	}
	if flags := flagNames(a.Flags); len(flags) > 0 {
		fmt.Fprintf(w, "  flags:  %s\n", strings.Join(flags, ", "))
	}
	return nil
}

func colorSeverity(s status.Severity) string {
	if c, ok := severityColors[s]; ok {
		return c.Sprint(string(s))
	}
	return string(s)
}

func colorValue(v scoring.Value) string {
	if c, ok := valueColors[v]; ok {
		return c.Sprint(string(v))
	}
	return string(v)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func flagNames(f status.Flags) []string {
	var names []string
	if f.Refused {
		names = append(names, "refused")
	}
	if f.Withdrawn {
		names = append(names, "withdrawn")
	}
	if f.Lapsed {
		names = append(names, "lapsed")
	}
	if f.Expired {
		names = append(names, "expired")
	}
	if f.Granted {
		names = append(names, "granted")
	}
	if f.Pending {
		names = append(names, "pending")
	}
	if f.Active {
		names = append(names, "active")
	}
	return names
}
