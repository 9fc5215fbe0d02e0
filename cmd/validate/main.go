// Command validate runs integrity checks over every file a source catalog
// names: presence, per-year US registrations, the reference tables, EU wide
// tables and the consistency of the aggregate, merge and share stages.
//
// Usage:
//
//	go run ./cmd/validate --catalog data/catalog.yaml
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/ev-scenario-etl/internal/config"
	"github.com/couchcryptid/ev-scenario-etl/internal/domain"
	"github.com/couchcryptid/ev-scenario-etl/internal/observability"
	"github.com/couchcryptid/ev-scenario-etl/internal/pipeline"
	"github.com/couchcryptid/ev-scenario-etl/internal/source"
)

// phase tracks pass/fail for a validation phase. Notes are reported but do
// not fail the phase.
type phase struct {
	name   string
	errors []string
	notes  []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) notef(format string, args ...any) {
	p.notes = append(p.notes, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

type exitError struct{ code int }

func (e exitError) Error() string { return fmt.Sprintf("validation exited with code %d", e.code) }

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		catalogPath string
		years       []int
	)

	cmd := &cobra.Command{
		Use:           "validate",
		Short:         "Check the integrity of every source file in a catalog",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "FATAL: load config: %v\n", err)
				return exitError{code: 1}
			}
			if catalogPath != "" {
				cfg.SourceCatalog = catalogPath
			}
			if len(years) > 0 {
				cfg.DataYears = years
			}
			if code := run(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr()); code != 0 {
				return exitError{code: code}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "source catalog path (default $SOURCE_CATALOG)")
	cmd.Flags().IntSliceVar(&years, "years", nil, "override the catalog year set (default $DATA_YEARS)")
	return cmd
}

func run(ctx context.Context, cfg *config.Config, out, errOut io.Writer) int {
	fmt.Fprintln(out, "=== EV Source Integrity Validation ===")
	fmt.Fprintln(out)

	catalog, err := source.LoadCatalog(cfg.SourceCatalog)
	if err != nil {
		fmt.Fprintf(errOut, "FATAL: load catalog: %v\n", err)
		return 1
	}
	catalog = catalog.WithYears(cfg.DataYears)

	logger := observability.NewLoggerTo(errOut, cfg.LogLevel, cfg.LogFormat)
	svc := pipeline.New(catalog, nil, logger, observability.NewMetricsForTesting())

	presence := validatePresence(ctx, svc)
	if !presence.passed() {
		report(out, []*phase{presence})
		return 1
	}

	phases := []*phase{
		presence,
		validateUSRegistrations(ctx, svc),
		validateReferenceTables(ctx, svc),
		validateEUTables(catalog),
		validateConsistency(ctx, svc),
	}
	if !report(out, phases) {
		return 1
	}
	return 0
}

// report prints the phase summary and details, and returns whether every
// phase passed.
func report(out io.Writer, phases []*phase) bool {
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	for _, p := range phases {
		if len(p.errors) == 0 && len(p.notes) == 0 {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
		for _, n := range p.notes {
			fmt.Fprintf(out, "  note: %s\n", n)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return true
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return false
}

// ── Phase 1: Presence ──

func validatePresence(ctx context.Context, svc *pipeline.Service) *phase {
	p := &phase{name: "Phase 1: Source files present"}
	if err := svc.CheckReadiness(ctx); err != nil {
		p.errorf("%v", err)
	}
	return p
}

// ── Phase 2: US registrations ──
// Each year parses, names every region once, and has a code for most rows.

func validateUSRegistrations(ctx context.Context, svc *pipeline.Service) *phase {
	p := &phase{name: "Phase 2: US registrations"}

	codes, err := svc.LoadRegionCodes(ctx)
	if err != nil {
		p.errorf("region codes: %v", err)
		return p
	}

	for _, year := range svc.Years() {
		records, err := svc.LoadRegistrations(ctx, &year)
		if err != nil {
			p.errorf("%d: %v", year, err)
			continue
		}
		seen := make(map[string]bool, len(records))
		var uncoded []string
		for _, rec := range records {
			if seen[rec.RegionKey] {
				p.errorf("%d: region %q appears more than once", year, rec.RegionKey)
			}
			seen[rec.RegionKey] = true
			if err := rec.Counts.Validate(); err != nil {
				p.errorf("%d: region %q: %v", year, rec.RegionKey, err)
			}
			if _, ok := codes[rec.RegionKey]; !ok {
				uncoded = append(uncoded, rec.RegionKey)
			}
		}
		if len(uncoded) > 0 {
			p.notef("%d: %d region(s) without a code: %v", year, len(uncoded), uncoded)
		}
	}
	return p
}

// ── Phase 3: Reference tables ──

func validateReferenceTables(ctx context.Context, svc *pipeline.Service) *phase {
	p := &phase{name: "Phase 3: Reference tables"}

	factors, err := svc.LoadEmissionsFactors(ctx)
	if err != nil {
		p.errorf("emissions factors: %v", err)
	} else {
		for _, k := range factors.Missing() {
			p.errorf("emissions factors: no factor for %s", k)
		}
	}

	codes, err := svc.LoadRegionCodes(ctx)
	switch {
	case err != nil:
		p.errorf("region codes: %v", err)
	case len(codes) == 0:
		p.errorf("region codes: table is empty")
	}

	for _, year := range svc.Years() {
		if _, err := svc.LoadChargingSnapshot(ctx, &year); err != nil {
			p.errorf("charging: %v", err)
		}
	}

	if _, err := svc.LoadEUEVBreakdown(ctx); err != nil {
		p.errorf("EU EV breakdown: %v", err)
	}
	return p
}

// ── Phase 4: EU wide tables ──
// Each year parses, and melting then pivoting reproduces the table.

func validateEUTables(catalog *source.Catalog) *phase {
	p := &phase{name: "Phase 4: EU wide tables"}

	for _, year := range catalog.Years {
		wide, err := source.Load(source.EURegistrations, catalog.EURegistrationsPath(year),
			func(r io.Reader) (domain.EUWideTable, error) { return source.ReadEUWide(r, year) })
		if err != nil {
			p.errorf("%d: %v", year, err)
			continue
		}
		if missing := wide.MissingCells(); missing > 0 {
			p.notef("%d: %d of %d cells unparsable", year, missing, len(wide.Rows)*len(wide.Months))
		}
		if len(wide.Rows) == 0 {
			p.notef("%d: no country rows", year)
			continue
		}
		if diff := cmp.Diff(wide, domain.Pivot(domain.Melt(wide)), cmpopts.EquateNaNs(), cmpopts.EquateEmpty()); diff != "" {
			p.errorf("%d: melt/pivot round trip changed the table (-read +rebuilt):\n%s", year, diff)
		}
	}
	return p
}

// ── Phase 5: Consistency ──
// Aggregating one year is an identity, merging keeps every row, and every
// derived share lies in [0, 100].

func validateConsistency(ctx context.Context, svc *pipeline.Service) *phase {
	p := &phase{name: "Phase 5: Aggregate, merge and share consistency"}

	for _, year := range svc.Years() {
		records, err := svc.LoadRegistrations(ctx, &year)
		if err != nil {
			p.errorf("%d: %v", year, err)
			continue
		}
		agg := svc.AggregateAcrossYears(records, []int{year})
		if len(agg) != len(records) {
			p.errorf("%d: aggregating one year produced %d rows from %d", year, len(agg), len(records))
			continue
		}
		for i := range agg {
			if agg[i].Counts != records[i].Counts {
				p.errorf("%d: region %q: aggregate %+v differs from source %+v", year, agg[i].RegionKey, agg[i].Counts, records[i].Counts)
			}
		}

		merged, err := svc.MergeWithCodes(ctx, agg)
		if err != nil {
			p.errorf("%d: merge: %v", year, err)
			continue
		}
		if len(merged.Rows) != len(agg) {
			p.errorf("%d: merge produced %d rows from %d", year, len(merged.Rows), len(agg))
		}
	}

	table, err := svc.StateTable(ctx, nil)
	if err != nil {
		p.errorf("all years: %v", err)
		return p
	}
	for _, row := range table.Rows {
		checkShare(p, row.RegionKey, "ev_share", row.EVShare)
		checkShare(p, row.RegionKey, "alt_vehicle_share", row.AltVehicleShare)
	}
	return p
}

func checkShare(p *phase, region, name string, v *float64) {
	if v == nil {
		return
	}
	if *v < 0 || *v > 100 {
		p.errorf("region %q: %s %.2f outside [0, 100]", region, name, *v)
	}
}
