package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/ev-scenario-etl/internal/domain"
)

func statesCmd(opts *rootOptions) *cobra.Command {
	var (
		year     int
		top      int
		category string
	)

	cmd := &cobra.Command{
		Use:   "states",
		Short: "Print the per-state registration table with codes and shares",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := opts.queryService(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if top > 0 {
				k, ok := domain.ParseCategory(category)
				if !ok {
					return fmt.Errorf("unknown category %q", category)
				}
				rows, err := svc.TopStates(cmd.Context(), yearFlag(cmd, year), k, top)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), rows)
			}
			table, err := svc.StateTable(cmd.Context(), yearFlag(cmd, year))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), table)
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "single year (default: aggregate across the year set)")
	cmd.Flags().IntVar(&top, "top", 0, "only print the top N states")
	cmd.Flags().StringVar(&category, "category", "ev", "category to rank by with --top")
	return cmd
}

func euCmd(opts *rootOptions) *cobra.Command {
	var (
		year      int
		breakdown bool
	)

	cmd := &cobra.Command{
		Use:   "eu",
		Short: "Print EU registration totals per country joined with the EV breakdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := opts.queryService(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if breakdown {
				rows, err := svc.LoadEUEVBreakdown(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), rows)
			}
			views, err := svc.EUTable(cmd.Context(), yearFlag(cmd, year))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), views)
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "single year (default: every year in the set)")
	cmd.Flags().BoolVar(&breakdown, "breakdown", false, "print only the BEV/PHEV breakdown table")
	return cmd
}

func chargingCmd(opts *rootOptions) *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "charging",
		Short: "Print charging infrastructure metrics for a year or summed over all years",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := opts.queryService(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			snap, err := svc.LoadChargingSnapshot(cmd.Context(), yearFlag(cmd, year))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), snap)
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "single year (default: all years summed)")
	return cmd
}

func factorsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "factors",
		Short: "Print the emissions factor table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := opts.queryService(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			factors, err := svc.LoadEmissionsFactors(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), factors)
		},
	}
}

func scenarioCmd(opts *rootOptions) *cobra.Command {
	var (
		in   domain.ScenarioInput
		year int
	)

	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Project CO2 emissions for a state under shifted adoption",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := opts.queryService(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			in.Year = yearFlag(cmd, year)
			// A rejected scenario still prints what was resolved before the
			// error, then fails the command.
			res, err := svc.ProjectScenario(cmd.Context(), in)
			if perr := printJSON(cmd.OutOrStdout(), res); perr != nil {
				return errors.Join(err, perr)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&in.RegionKey, "region", "", "state name, e.g. Texas")
	cmd.Flags().Float64Var(&in.EVPctDelta, "ev", 0, "percent change in EV registrations")
	cmd.Flags().Float64Var(&in.PHEVPctDelta, "phev", 0, "percent change in PHEV registrations")
	cmd.Flags().Float64Var(&in.HEVPctDelta, "hev", 0, "percent change in HEV registrations")
	cmd.Flags().IntVar(&year, "year", 0, "baseline year (default: aggregate across the year set)")
	_ = cmd.MarkFlagRequired("region")
	return cmd
}
