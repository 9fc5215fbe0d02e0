package pipeline

import (
	"context"
	"io"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/ev-scenario-etl/internal/domain"
	"github.com/couchcryptid/ev-scenario-etl/internal/source"
)

// LoadEURegistrations reads the wide monthly EU tables and melts them to one
// record per country and month. Unparsable cells stay in the result as NaN.
func (s *Service) LoadEURegistrations(ctx context.Context, year *int) ([]domain.EURegistrationRecord, error) {
	years := s.yearsFor(year)
	parts := make([][]domain.EURegistrationRecord, len(years))

	g, gctx := errgroup.WithContext(ctx)
	for i, y := range years {
		g.Go(func() error {
			wide, err := loadSource(gctx, s, source.EURegistrations, s.catalog.EURegistrationsPath(y),
				func(r io.Reader) (domain.EUWideTable, error) {
					return source.ReadEUWide(r, y)
				},
				func(t domain.EUWideTable) sourceStats {
					return sourceStats{rows: len(t.Rows), missing: t.MissingCells()}
				})
			if err != nil {
				return yearNotFound(err, source.EURegistrations, y)
			}
			parts[i] = domain.Melt(wide)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return slices.Concat(parts...), nil
}

// LoadEUEVBreakdown reads the per-country BEV/PHEV table.
func (s *Service) LoadEUEVBreakdown(ctx context.Context) ([]domain.EUEVBreakdown, error) {
	return loadSource(ctx, s, source.EUEVBreakdown, s.catalog.EUEVBreakdownPath(), source.ReadEUEVBreakdown,
		func(rows []domain.EUEVBreakdown) sourceStats { return sourceStats{rows: len(rows)} })
}

// EUTable sums EU registrations per country and joins the EV breakdown.
func (s *Service) EUTable(ctx context.Context, year *int) ([]domain.EUCountryView, error) {
	var (
		records   []domain.EURegistrationRecord
		breakdown []domain.EUEVBreakdown
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		records, err = s.LoadEURegistrations(gctx, year)
		return err
	})
	g.Go(func() (err error) {
		breakdown, err = s.LoadEUEVBreakdown(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return domain.JoinEUBreakdown(domain.AggregateEU(records), breakdown), nil
}
