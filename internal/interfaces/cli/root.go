// Package cli implements the aether command-line interface: patent
// intelligence sweeps, one-off record analysis, and the API server,
// all driven by the same application service the HTTP layer uses.
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	searchapp "github.com/turtacn/aether-intel/internal/application/search"
	"github.com/turtacn/aether-intel/internal/config"
	"github.com/turtacn/aether-intel/internal/infrastructure/cache"
	"github.com/turtacn/aether-intel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/aether-intel/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/aether-intel/internal/infrastructure/providers"
	"github.com/turtacn/aether-intel/internal/infrastructure/providers/epo"
	"github.com/turtacn/aether-intel/internal/infrastructure/providers/lens"
	"github.com/turtacn/aether-intel/internal/infrastructure/translation"
	"github.com/turtacn/aether-intel/pkg/errors"
)

// Build-time variables, set via -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// RootOptions holds the persistent flags shared by every subcommand.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	Output     string
	Verbose    bool
}

// CLIContext carries the initialised application graph to subcommands.
type CLIContext struct {
	Config  *config.Config
	Logger  logging.Logger
	Service *searchapp.Service
	Output  string
}

type cliContextKey struct{}

// WithCLIContext returns a context carrying cc.
func WithCLIContext(ctx context.Context, cc *CLIContext) context.Context {
	return context.WithValue(ctx, cliContextKey{}, cc)
}

// FromContext extracts the CLIContext, or nil when absent.
func FromContext(ctx context.Context) *CLIContext {
	cc, _ := ctx.Value(cliContextKey{}).(*CLIContext)
	return cc
}

// NewRootCommand builds the aether root command with all subcommands
// attached.  The application graph is initialised lazily in the
// persistent pre-run so that --help and completion never touch config
// or the network.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	rootCmd := &cobra.Command{
		Use:   "aether",
		Short: "Patent intelligence sweeps over EPO and Lens data",
		Long: `aether searches patent offices for records matching a keyword set,
decodes INPADOC legal-status histories, scores each record for
intelligence value, and reports the findings.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if FromContext(cmd.Context()) != nil {
				return nil
			}
			cc, err := initContext(opts)
			if err != nil {
				return err
			}
			cmd.SetContext(WithCLIContext(cmd.Context(), cc))
			return nil
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: AETHER_* environment)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level: debug|info|warn|error")
	pf.StringVarP(&opts.Output, "output", "o", "table", "output format: table|json")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "shorthand for --log-level=debug")

	rootCmd.AddCommand(
		newSearchCommand(),
		newAnalyzeCommand(),
		newServeCommand(),
	)

	return rootCmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return 1
	}
	return 0
}

func initContext(opts *RootOptions) (*CLIContext, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	logCfg := logging.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	}
	if cfg.Log.Output != "" {
		logCfg.OutputPaths = []string{cfg.Log.Output}
	}
	log, err := logging.NewLogger(logCfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to initialise logger")
	}

	svc, err := buildService(cfg, log, nil)
	if err != nil {
		return nil, err
	}

	output := strings.ToLower(opts.Output)
	if output != "json" {
		output = "table"
	}

	return &CLIContext{
		Config:  cfg,
		Logger:  log,
		Service: svc,
		Output:  output,
	}, nil
}

func loadConfig(opts *RootOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.ConfigPath != "" {
		cfg, err = config.Load(opts.ConfigPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return nil, err
	}

	if opts.Verbose {
		cfg.Log.Level = "debug"
	} else if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	return cfg, nil
}

// buildService wires connectors, caches, and the translator into the
// search service.  The Lens connector is attached only when an API
// token is configured; translation falls back to the built-in keyword
// tables when disabled or unconfigured.
func buildService(cfg *config.Config, log logging.Logger, metrics *prometheus.AppMetrics) (*searchapp.Service, error) {
	connectors := []providers.Connector{
		epo.NewConnector(cfg.EPO, cfg.RateLimit, log),
	}
	if cfg.Lens.APIToken != "" {
		connectors = append(connectors, lens.NewConnector(cfg.Lens, log))
	}

	var translator translation.Translator
	if !cfg.Translation.Disabled && cfg.Translation.APIKey != "" {
		t, err := translation.NewAnthropicTranslator(cfg.Translation, log)
		if err != nil {
			return nil, err
		}
		translator = t
	}

	keywordCache := cache.NewKeywordCache(cfg.Cache.Dir, cfg.Cache.HistoryLimit, log)
	searchCache := cache.NewSearchCache(cfg.Cache.Dir, cfg.Cache.SearchTTL, log)

	return searchapp.NewService(cfg.Search, connectors, translator, keywordCache, searchCache, log, metrics)
}
