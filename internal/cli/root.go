// Package cli implements the ecotrack command tree.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rshade/ecotrack/internal/carbon"
	"github.com/rshade/ecotrack/internal/config"
	"github.com/rshade/ecotrack/internal/logging"
)

// Output formats accepted by --format.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	debug      bool
	logger     zerolog.Logger
}

// loadConfig reads the configuration selected by --config. --debug forces
// the debug level.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath, o.logger)
	if err != nil {
		return nil, err
	}
	if o.debug {
		cfg.Logging.Level = zerolog.LevelDebugValue
	}
	return cfg, nil
}

// NewRootCmd creates the root command for the ecotrack CLI.
func NewRootCmd(ver string) *cobra.Command {
	opts := &rootOptions{logger: zerolog.Nop()}

	cmd := &cobra.Command{
		Use:           "ecotrack",
		Short:         "Household carbon footprint estimator",
		Long:          "ecotrack estimates a household's monthly carbon footprint from lifestyle data and suggests reductions.",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := "warn"
			if opts.debug {
				level = zerolog.LevelDebugValue
			}
			opts.logger = logging.New(logging.Config{
				Level:  level,
				Format: config.FormatConsole,
				Output: cmd.ErrOrStderr(),
			})
			carbon.SetLogger(opts.logger)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath, "path to the configuration file")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(newServeCmd(opts), newEstimateCmd(opts), newEquivalentsCmd(), newFactorsCmd(opts), newConfigCmd())
	return cmd
}

const rootCmdExample = `  # Estimate a household profile
  ecotrack estimate --input profile.yaml

  # Same estimate as JSON, using the reference period convention
  ecotrack estimate --input profile.yaml --format json --convention reference

  # Express 2 tonnes of CO2e as everyday equivalents
  ecotrack equivalents 2 --unit t

  # List the registered emission factor tables
  ecotrack factors list

  # Run the HTTP API
  ecotrack serve --config config.yml`
