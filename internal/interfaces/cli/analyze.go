package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/aether-intel/pkg/errors"
	"github.com/turtacn/aether-intel/pkg/types/patent"
)

func newAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze patent records or legal-status histories offline",
	}

	cmd.AddCommand(newAnalyzeRecordCommand(), newAnalyzeStatusCommand())
	return cmd
}

func newAnalyzeRecordCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record [file]",
		Short: "Score a patent record and decode its legal status",
		Long: `Read a patent record as JSON from a file (or stdin when the argument
is omitted or "-"), score its text, decode any embedded
legal-status history, and print the assessment.`,
		Example: `  aether analyze record patent.json
  cat patent.json | aether analyze record -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := FromContext(cmd.Context())
			if cc == nil {
				return errors.New(errors.ErrCodeConfigInvalid, "cli context not initialised")
			}

			var rec patent.Record
			if err := decodeInput(cmd, args, &rec); err != nil {
				return err
			}
			if rec.Text() == "" {
				return errors.InvalidParam("record must carry a title, abstract or claims")
			}

			assessment := cc.Service.Score(&rec)
			return renderAssessment(cmd.OutOrStdout(), &rec, assessment, cc.Output)
		},
	}
	return cmd
}

func newAnalyzeStatusCommand() *cobra.Command {
	var jurisdiction string

	cmd := &cobra.Command{
		Use:   "status [file]",
		Short: "Decode an INPADOC legal-status history",
		Long: `Read a legal-status history as JSON from a file (or stdin when the
argument is omitted or "-") and decode it against the jurisdiction's
event-code tables.`,
		Example: `  aether analyze status --jurisdiction RU status.json
  cat status.json | aether analyze status --jurisdiction PL -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := FromContext(cmd.Context())
			if cc == nil {
				return errors.New(errors.ErrCodeConfigInvalid, "cli context not initialised")
			}
			if strings.TrimSpace(jurisdiction) == "" {
				return errors.InvalidParam("--jurisdiction is required")
			}

			var ls patent.LegalStatus
			if err := decodeInput(cmd, args, &ls); err != nil {
				return err
			}

			analysis := cc.Service.Analyze(jurisdiction, &ls)
			return renderAnalysis(cmd.OutOrStdout(), jurisdiction, analysis, cc.Output)
		},
	}

	cmd.Flags().StringVar(&jurisdiction, "jurisdiction", "", "jurisdiction code of the history, e.g. RU")
	return cmd
}

// decodeInput unmarshals JSON from the file argument, or from stdin
// when no argument (or "-") is given.
func decodeInput(cmd *cobra.Command, args []string, dst any) error {
	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return errors.InvalidParam(fmt.Sprintf("cannot open %s: %v", args[0], err))
		}
		defer f.Close()
		r = f
	}

	dec := json.NewDecoder(r)
	if err := dec.Decode(dst); err != nil {
		return errors.Wrap(err, errors.ErrCodeBadRequest, "invalid JSON input")
	}
	return nil
}
