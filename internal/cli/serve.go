package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rshade/ecotrack/internal/carbon"
	"github.com/rshade/ecotrack/internal/config"
	"github.com/rshade/ecotrack/internal/events"
	"github.com/rshade/ecotrack/internal/greenops"
	"github.com/rshade/ecotrack/internal/logging"
	"github.com/rshade/ecotrack/internal/server"
	"github.com/rshade/ecotrack/internal/service"
	"github.com/rshade/ecotrack/internal/store"
)

// serviceDeps are the optional collaborators of newService.
type serviceDeps struct {
	store      store.Store
	publisher  events.Publisher
	formatter  *greenops.Formatter
	registerer prometheus.Registerer
	logger     zerolog.Logger
}

// newService builds the estimate service described by cfg.
func newService(cfg *config.Config, deps serviceDeps) (*service.Service, error) {
	registry, err := cfg.Estimator.Registry()
	if err != nil {
		return nil, err
	}
	rules, err := cfg.Rules.RuleSet()
	if err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}

	return service.New(service.Options{
		Registry:         registry,
		DefaultVersion:   cfg.Estimator.FactorVersion,
		Periods:          cfg.Estimator.Periods(),
		Rules:            &rules,
		Store:            deps.store,
		Publisher:        deps.publisher,
		Formatter:        deps.formatter,
		Registerer:       deps.registerer,
		Logger:           deps.logger,
		MaxBatchSize:     cfg.Server.MaxBatchSize,
		BatchConcurrency: cfg.Server.BatchConcurrency,
		HistoryLimit:     cfg.Store.HistoryLimit,
	})
}

func newServeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve runs the JSON API, /metrics and /healthz, plus the gRPC health
service when server.grpc_listen is set. It stops gracefully on SIGINT or
SIGTERM.`,
		Example: `  # Serve with a configuration file
  ecotrack serve --config config.yml

  # Override the listen address from the environment
  ECOTRACK_LISTEN=:9090 ecotrack serve`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, cmd)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config, cmd *cobra.Command) error {
	logger := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cmd.ErrOrStderr(),
	})
	carbon.SetLogger(logger)

	st, err := store.Open(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Error().Err(cerr).Msg("failed to close store")
		}
	}()

	pub, err := events.Open(cfg.MQTT, logger)
	if err != nil {
		return err
	}
	defer pub.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc, err := newService(cfg, serviceDeps{
		store:      st,
		publisher:  pub,
		registerer: reg,
		logger:     logger,
	})
	if err != nil {
		return err
	}

	logger.Info().
		Strs("factor_versions", svc.FactorVersions()).
		Str("default_factor_version", svc.DefaultFactorVersion()).
		Str("convention", svc.Periods().Name).
		Str("store", cfg.Store.Driver).
		Bool("mqtt", cfg.MQTT.Enabled).
		Msg("ecotrack starting")

	return server.New(cfg.Server, svc, reg, logger).Run(ctx)
}
