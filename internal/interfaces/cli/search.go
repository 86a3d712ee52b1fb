package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	searchapp "github.com/turtacn/aether-intel/internal/application/search"
	"github.com/turtacn/aether-intel/pkg/errors"
	"github.com/turtacn/aether-intel/pkg/types/patent"
)

type searchOptions struct {
	provider      string
	jurisdictions []string
	languages     []string
	keywords      []string
	exclude       []string
	keywordLang   string
	from          string
	to            string
	limit         int
	noCache       bool
}

func newSearchCommand() *cobra.Command {
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run an intelligence sweep across jurisdictions",
		Long: `Search the configured provider for records matching the keyword set,
enrich them with legal-status histories, and print the scored report.

Keywords default to the built-in base set; pass --keywords to override.
Dates are YYYY-MM-DD; the window defaults to the configured number of
days ending today.`,
		Example: `  aether search --jurisdictions RU,PL
  aether search --keywords "cold fusion,lenr" --from 2020-01-01
  aether search --provider lens --languages en,ru -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.provider, "provider", "", "data source: epo|lens (default: epo)")
	f.StringSliceVar(&opts.jurisdictions, "jurisdictions", nil, "jurisdiction codes, e.g. RU,PL,CN")
	f.StringSliceVar(&opts.languages, "languages", nil, "search languages, e.g. en,ru")
	f.StringSliceVar(&opts.keywords, "keywords", nil, "include terms overriding the base keyword set")
	f.StringSliceVar(&opts.exclude, "exclude", nil, "exclude terms for the keyword override")
	f.StringVar(&opts.keywordLang, "keyword-lang", "en", "language of the --keywords terms")
	f.StringVar(&opts.from, "from", "", "publication date lower bound (YYYY-MM-DD)")
	f.StringVar(&opts.to, "to", "", "publication date upper bound (YYYY-MM-DD)")
	f.IntVar(&opts.limit, "limit", 0, "max records per jurisdiction (0 = provider cap)")
	f.BoolVar(&opts.noCache, "no-cache", false, "bypass cached search results")

	return cmd
}

func runSearch(cmd *cobra.Command, opts *searchOptions) error {
	cc := FromContext(cmd.Context())
	if cc == nil {
		return errors.New(errors.ErrCodeConfigInvalid, "cli context not initialised")
	}

	req := searchapp.Request{
		Provider:      patent.Provider(opts.provider),
		Jurisdictions: opts.jurisdictions,
		Languages:     opts.languages,
		Limit:         opts.limit,
		BypassCache:   opts.noCache,
	}

	if len(opts.keywords) > 0 {
		req.Keywords = &patent.KeywordSet{
			Language: opts.keywordLang,
			Include:  opts.keywords,
			Exclude:  opts.exclude,
		}
	} else if len(opts.exclude) > 0 {
		return errors.InvalidParam("--exclude requires --keywords")
	}

	var err error
	if req.From, err = parseDate(opts.from, "--from"); err != nil {
		return err
	}
	if req.To, err = parseDate(opts.to, "--to"); err != nil {
		return err
	}

	report, err := cc.Service.Run(cmd.Context(), req)
	if err != nil {
		return err
	}

	return renderReport(cmd.OutOrStdout(), report, cc.Output)
}

func parseDate(s, flag string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, errors.InvalidParam(fmt.Sprintf("%s must be YYYY-MM-DD, got %q", flag, s))
	}
	return t, nil
}
