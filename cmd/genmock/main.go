// Command genmock writes a deterministic synthetic dataset in the raw source
// layouts, plus a catalog pointing at it, then reads it back through the
// pipeline and prints the figures tests assert on.
//
// Usage:
//
//	go run ./cmd/genmock --out data --seed 1 --years 2016,2017,2018,2019,2020
package main

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/ev-scenario-etl/internal/domain"
	"github.com/couchcryptid/ev-scenario-etl/internal/mockdata"
	"github.com/couchcryptid/ev-scenario-etl/internal/observability"
	"github.com/couchcryptid/ev-scenario-etl/internal/pipeline"
	"github.com/couchcryptid/ev-scenario-etl/internal/source"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		log.Fatal(err)
	}
}

func newRootCmd() *cobra.Command {
	var (
		out   string
		seed  uint64
		years []int
	)

	cmd := &cobra.Command{
		Use:          "genmock",
		Short:        "Generate a synthetic source dataset and catalog",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), out, seed, years)
		},
	}
	cmd.Flags().StringVar(&out, "out", "data", "output directory")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().IntSliceVar(&years, "years", source.DefaultYears, "years to generate")
	return cmd
}

func run(ctx context.Context, w io.Writer, dir string, seed uint64, years []int) error {
	if len(years) == 0 {
		return fmt.Errorf("at least one year is required")
	}

	ds := mockdata.Generate(seed, slices.Compact(slices.Sorted(slices.Values(years))))
	path, err := ds.WriteFiles(dir)
	if err != nil {
		return fmt.Errorf("writing dataset: %w", err)
	}
	fmt.Fprintf(w, "wrote catalog: %s\n", path)

	// Read back through the real readers so the figures match what the
	// service will report.
	catalog, err := source.LoadCatalog(path)
	if err != nil {
		return fmt.Errorf("reading catalog back: %w", err)
	}
	logger := observability.NewLoggerTo(io.Discard, "error", "json")
	svc := pipeline.New(catalog, nil, logger, observability.NewMetricsForTesting())

	return printStats(ctx, w, svc, ds)
}

func printStats(ctx context.Context, w io.Writer, svc *pipeline.Service, ds *mockdata.Dataset) error {
	fmt.Fprintln(w, "\n=== Stats for updating test assertions ===")

	for _, year := range ds.Years {
		records, err := svc.LoadRegistrations(ctx, &year)
		if err != nil {
			return err
		}
		var total domain.Counts
		for _, rec := range records {
			total = total.Add(rec.Counts)
		}
		fmt.Fprintf(w, "%d: regions=%d ev=%s phev=%s hev=%s gasoline=%s eu_missing_cells=%d\n",
			year, len(records),
			humanize.Comma(total.ElectricEV), humanize.Comma(total.PlugInHybrid),
			humanize.Comma(total.HybridElectric), humanize.Comma(total.Gasoline),
			ds.EU[year].MissingCells())
	}

	table, err := svc.StateTable(ctx, nil)
	if err != nil {
		return err
	}
	printTopRegions(w, table)

	views, err := svc.EUTable(ctx, nil)
	if err != nil {
		return err
	}
	slices.SortFunc(views, func(a, b domain.EUCountryView) int {
		return cmp.Compare(b.Registrations, a.Registrations)
	})
	fmt.Fprintf(w, "\nEU countries (%d):", len(views))
	for _, v := range views {
		fmt.Fprintf(w, " %s=%s", v.Country, humanize.Comma(int64(v.Registrations)))
	}
	fmt.Fprintln(w)
	return nil
}

func printTopRegions(w io.Writer, table domain.MergedRegionTable) {
	fmt.Fprintln(w, "\nTop regions across all years:")
	for _, k := range domain.AltCategories {
		top := domain.TopRegions(table, k, 3)
		fmt.Fprintf(w, "  %-5s", k.Short())
		for _, row := range top {
			fmt.Fprintf(w, " %s=%s", row.RegionKey, humanize.Comma(row.Counts.Get(k)))
		}
		fmt.Fprintln(w)
	}

	var unlocated []string
	for _, row := range table.Rows {
		if row.RegionCode == nil {
			unlocated = append(unlocated, row.RegionKey)
		}
	}
	fmt.Fprintf(w, "Regions without a code: %v\n", unlocated)
}
