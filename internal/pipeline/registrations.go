package pipeline

import (
	"context"
	"io"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/ev-scenario-etl/internal/domain"
	"github.com/couchcryptid/ev-scenario-etl/internal/source"
)

// LoadRegistrations reads the US registration tables. With a year it reads
// that year only; with nil it reads every configured year concurrently and
// concatenates them in year order. A year without a file is a
// *domain.RecordNotFoundError.
func (s *Service) LoadRegistrations(ctx context.Context, year *int) ([]domain.RegistrationRecord, error) {
	years := s.yearsFor(year)
	parts := make([][]domain.RegistrationRecord, len(years))

	g, gctx := errgroup.WithContext(ctx)
	for i, y := range years {
		g.Go(func() error {
			records, err := loadSource(gctx, s, source.USRegistrations, s.catalog.USRegistrationsPath(y),
				func(r io.Reader) ([]domain.RegistrationRecord, error) {
					return source.ReadUSRegistrations(r, y)
				},
				func(records []domain.RegistrationRecord) sourceStats {
					return sourceStats{rows: len(records)}
				})
			if err != nil {
				return yearNotFound(err, source.USRegistrations, y)
			}
			parts[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return slices.Concat(parts...), nil
}

// AggregateAcrossYears sums records per region over years. An empty year
// list means the configured set.
func (s *Service) AggregateAcrossYears(records []domain.RegistrationRecord, years []int) []domain.RegistrationRecord {
	if len(years) == 0 {
		years = s.catalog.Years
	}
	return domain.AggregateAcrossYears(records, years)
}

// LoadRegionCodes reads the region name to code table.
func (s *Service) LoadRegionCodes(ctx context.Context) (domain.RegionCodeMapping, error) {
	return loadSource(ctx, s, source.StateCodes, s.catalog.StateCodesPath(), source.ReadRegionCodes,
		func(m domain.RegionCodeMapping) sourceStats { return sourceStats{rows: len(m)} })
}

// MergeWithCodes loads the code table and attaches a code to each record.
func (s *Service) MergeWithCodes(ctx context.Context, records []domain.RegistrationRecord) (domain.MergedRegionTable, error) {
	mapping, err := s.LoadRegionCodes(ctx)
	if err != nil {
		return domain.MergedRegionTable{}, err
	}
	return domain.MergeWithCodes(records, mapping), nil
}

// DeriveShares fills in the EV and alternative-vehicle shares.
func (s *Service) DeriveShares(table domain.MergedRegionTable) domain.MergedRegionTable {
	return domain.DeriveShares(table)
}

// StateTable runs load, aggregate, merge and shares for one year, or across
// the configured years when year is nil. The registrations and the code
// table are read concurrently.
func (s *Service) StateTable(ctx context.Context, year *int) (domain.MergedRegionTable, error) {
	var (
		records []domain.RegistrationRecord
		mapping domain.RegionCodeMapping
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		records, err = s.LoadRegistrations(gctx, year)
		return err
	})
	g.Go(func() (err error) {
		mapping, err = s.LoadRegionCodes(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.MergedRegionTable{}, err
	}

	return domain.DeriveShares(domain.MergeWithCodes(s.AggregateAcrossYears(records, s.yearsFor(year)), mapping)), nil
}

// TopStates returns the n regions with the highest count for a category.
func (s *Service) TopStates(ctx context.Context, year *int, k domain.CategoryKind, n int) ([]domain.MergedRow, error) {
	table, err := s.StateTable(ctx, year)
	if err != nil {
		return nil, err
	}
	return domain.TopRegions(table, k, n), nil
}
