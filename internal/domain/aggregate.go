package domain

import (
	"fmt"
	"maps"
	"slices"
)

// AggregateAcrossYears sums category counts per region over the given years.
//
// Records whose Year is outside years are ignored; records with a nil Year
// are already totals and are folded in as-is. Output order follows the first
// appearance of each region. With exactly one year the output keeps that
// year; otherwise Year is nil.
func AggregateAcrossYears(records []RegistrationRecord, years []int) []RegistrationRecord {
	var year *int
	if len(years) == 1 {
		year = YearPtr(years[0])
	}

	index := make(map[string]int)
	out := make([]RegistrationRecord, 0, len(records))
	for _, rec := range records {
		if rec.Year != nil && !slices.Contains(years, *rec.Year) {
			continue
		}
		i, ok := index[rec.RegionKey]
		if !ok {
			index[rec.RegionKey] = len(out)
			out = append(out, RegistrationRecord{RegionKey: rec.RegionKey, Year: year, Counts: rec.Counts})
			continue
		}
		out[i].Counts = out[i].Counts.Add(rec.Counts)
	}
	return out
}

// SelectYear returns the records tagged with year, in input order.
func SelectYear(records []RegistrationRecord, year int) ([]RegistrationRecord, error) {
	var out []RegistrationRecord
	for _, rec := range records {
		if rec.Year != nil && *rec.Year == year {
			out = append(out, rec)
		}
	}
	if len(out) == 0 {
		return nil, &RecordNotFoundError{Source: "us_registrations", Key: fmt.Sprintf("year %d", year)}
	}
	return out, nil
}

// SelectChargingYear returns the snapshot for one year of the table.
func SelectChargingYear(t ChargingTable, year int) (ChargingSnapshot, error) {
	for _, row := range t.Rows {
		if row.Year == year {
			return ChargingSnapshot{Year: year, Metrics: maps.Clone(row.Metrics)}, nil
		}
	}
	return ChargingSnapshot{}, &RecordNotFoundError{Source: "charging", Key: fmt.Sprintf("year %d", year)}
}

// SumCharging sums every metric column across all rows of the table.
func SumCharging(t ChargingTable) ChargingSnapshot {
	metrics := make(map[string]int64, len(t.Columns))
	for _, col := range t.Columns {
		metrics[col] = 0
	}
	for _, row := range t.Rows {
		for k, v := range row.Metrics {
			metrics[k] += v
		}
	}
	return ChargingSnapshot{AllYears: true, Metrics: metrics}
}
