package pipeline

import (
	"context"

	"github.com/couchcryptid/ev-scenario-etl/internal/domain"
	"github.com/couchcryptid/ev-scenario-etl/internal/source"
)

// LoadEmissionsFactors reads the category to pounds-of-CO2 table.
func (s *Service) LoadEmissionsFactors(ctx context.Context) (domain.EmissionsFactors, error) {
	return loadSource(ctx, s, source.EmissionsFactors, s.catalog.EmissionsFactorsPath(), source.ReadEmissionsFactors,
		func(f domain.EmissionsFactors) sourceStats { return sourceStats{rows: len(f)} })
}

// LoadChargingSnapshot returns one year's charging metrics, or every column
// summed across all rows when year is nil.
func (s *Service) LoadChargingSnapshot(ctx context.Context, year *int) (domain.ChargingSnapshot, error) {
	table, err := loadSource(ctx, s, source.Charging, s.catalog.ChargingPath(), source.ReadCharging,
		func(t domain.ChargingTable) sourceStats { return sourceStats{rows: len(t.Rows)} })
	if err != nil {
		return domain.ChargingSnapshot{}, err
	}
	if year == nil {
		return domain.SumCharging(table), nil
	}
	return domain.SelectChargingYear(table, *year)
}
