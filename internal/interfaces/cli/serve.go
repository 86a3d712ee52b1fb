package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	aetherhttp "github.com/turtacn/aether-intel/internal/interfaces/http"
	"github.com/turtacn/aether-intel/internal/interfaces/http/handlers"
	"github.com/turtacn/aether-intel/internal/interfaces/http/middleware"

	"github.com/turtacn/aether-intel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/aether-intel/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/aether-intel/pkg/errors"
)

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Start the aether API server: search, analysis, and keyword endpoints
under /api/v1, probes at /healthz and /readyz, and Prometheus metrics
at /metrics.  The server shuts down gracefully on SIGINT or SIGTERM.`,
		Example: `  aether serve
  aether serve -c config.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}
	return cmd
}

func runServe(cmd *cobra.Command) error {
	cc := FromContext(cmd.Context())
	if cc == nil || cc.Config == nil {
		return errors.New(errors.ErrCodeConfigInvalid, "cli context not initialised")
	}
	cfg := cc.Config
	log := cc.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            "aether",
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, log)
	if err != nil {
		return err
	}
	metrics := prometheus.NewAppMetrics(collector)

	svc, err := buildService(cfg, log, metrics)
	if err != nil {
		return err
	}

	healthHandler := handlers.NewHealthHandler(Version,
		handlers.CheckerFunc("providers", svc.Healthy),
	)

	rlConfig := middleware.DefaultRateLimitConfig()
	router := aetherhttp.NewRouter(aetherhttp.RouterConfig{
		SearchHandler:   handlers.NewSearchHandler(svc, log),
		AnalysisHandler: handlers.NewAnalysisHandler(svc, log),
		KeywordsHandler: handlers.NewKeywordsHandler(svc, log),
		HealthHandler:   healthHandler,
		Logger:          log,
		Metrics:         metrics,
		MetricsHandler:  collector.Handler(),
		RateLimiter: middleware.NewTokenBucketLimiter(
			rlConfig.RequestsPerSecond, rlConfig.BurstSize, 5*time.Minute),
		RateLimitConfig: rlConfig,
	})

	server := aetherhttp.NewServer(cfg.Server, router, log)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log.Info("api server started",
		logging.Int("port", cfg.Server.Port),
		logging.String("mode", cfg.Server.Mode),
		logging.String("version", Version))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Stop(stopCtx)
}
