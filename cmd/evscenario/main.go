// Command evscenario serves and queries EV adoption data and CO2 scenario
// projections built from the files named by a source catalog.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/ev-scenario-etl/internal/config"
	"github.com/couchcryptid/ev-scenario-etl/internal/observability"
	"github.com/couchcryptid/ev-scenario-etl/internal/pipeline"
	"github.com/couchcryptid/ev-scenario-etl/internal/source"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// rootOptions are the flags shared by every subcommand. Empty values fall
// back to the environment configuration.
type rootOptions struct {
	catalog string
	years   []int
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:          "evscenario",
		Short:        "EV adoption data and CO2 scenario projections",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.catalog, "catalog", "", "source catalog path (default $SOURCE_CATALOG)")
	rootCmd.PersistentFlags().IntSliceVar(&opts.years, "years", nil, "override the catalog year set (default $DATA_YEARS)")

	rootCmd.AddCommand(serveCmd(opts))
	rootCmd.AddCommand(statesCmd(opts))
	rootCmd.AddCommand(euCmd(opts))
	rootCmd.AddCommand(chargingCmd(opts))
	rootCmd.AddCommand(factorsCmd(opts))
	rootCmd.AddCommand(scenarioCmd(opts))

	return rootCmd
}

// loadConfig reads the environment and applies flag overrides.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if o.catalog != "" {
		cfg.SourceCatalog = o.catalog
	}
	if len(o.years) > 0 {
		cfg.DataYears = o.years
	}
	return cfg, nil
}

func openCatalog(cfg *config.Config) (*source.Catalog, error) {
	catalog, err := source.LoadCatalog(cfg.SourceCatalog)
	if err != nil {
		return nil, err
	}
	return catalog.WithYears(cfg.DataYears), nil
}

// queryService builds a Service for one-shot commands: logs go to stderr so
// stdout carries only the JSON answer, and nothing is published.
func (o *rootOptions) queryService(stderr io.Writer) (*pipeline.Service, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	catalog, err := openCatalog(cfg)
	if err != nil {
		return nil, err
	}
	logger := observability.NewLoggerTo(stderr, cfg.LogLevel, cfg.LogFormat)
	return pipeline.New(catalog, nil, logger, observability.NewMetricsForTesting()), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

// yearFlag returns nil when the flag was not set.
func yearFlag(cmd *cobra.Command, year int) *int {
	if !cmd.Flags().Changed("year") {
		return nil
	}
	return &year
}
