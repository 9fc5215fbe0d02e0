package source

import (
	"fmt"
	"io"

	"github.com/couchcryptid/ev-scenario-etl/internal/domain"
)

// ReadCharging parses the charging-infrastructure table. A Year column is
// required; every other named column is a metric of comma-formatted
// integers.
func ReadCharging(r io.Reader) (domain.ChargingTable, error) {
	t, err := readTable(r, chargingPolicy)
	if err != nil {
		return domain.ChargingTable{}, err
	}
	yearCol, err := t.require("Year")
	if err != nil {
		return domain.ChargingTable{}, err
	}

	var out domain.ChargingTable
	metricCols := make([]int, 0, len(t.header))
	for i, h := range t.header {
		if i == yearCol || h == "" {
			continue
		}
		metricCols = append(metricCols, i)
		out.Columns = append(out.Columns, h)
	}

	for _, row := range t.rows {
		year, err := t.count(row, yearCol)
		if err != nil {
			return domain.ChargingTable{}, err
		}
		metrics := make(map[string]int64, len(metricCols))
		for _, col := range metricCols {
			v, err := t.count(row, col)
			if err != nil {
				return domain.ChargingTable{}, err
			}
			metrics[t.header[col]] = v
		}
		out.Rows = append(out.Rows, domain.ChargingRow{Year: int(year), Metrics: metrics})
	}
	return out, nil
}

// ReadRegionCodes parses the state name to postal code table. Later rows
// overwrite earlier ones with the same name.
func ReadRegionCodes(r io.Reader) (domain.RegionCodeMapping, error) {
	t, err := readTable(r, mappingPolicy)
	if err != nil {
		return nil, err
	}
	nameCol, err := t.require(regionColumn, "Name")
	if err != nil {
		return nil, err
	}
	codeCol, err := t.require("Abbreviation", "Code")
	if err != nil {
		return nil, err
	}

	mapping := make(domain.RegionCodeMapping, len(t.rows))
	for _, row := range t.rows {
		name, code := row.fields[nameCol], row.fields[codeCol]
		if name == "" {
			continue
		}
		if code == "" {
			return nil, t.malformed(row.line, t.header[codeCol], fmt.Sprintf("empty code for %q", name), nil)
		}
		mapping[name] = code
	}
	return mapping, nil
}

// ReadEmissionsFactors parses the category to pounds-of-CO2 table. Later
// rows overwrite earlier ones with the same category name.
func ReadEmissionsFactors(r io.Reader) (domain.EmissionsFactors, error) {
	t, err := readTable(r, emissionsPolicy)
	if err != nil {
		return nil, err
	}
	nameCol, err := t.require("Vehicle Type", "Category", "Vehicle")
	if err != nil {
		return nil, err
	}
	valueCol, err := t.require("CO2 (lbs)", "Pounds CO2", "lbs CO2")
	if err != nil {
		return nil, err
	}

	factors := make(domain.EmissionsFactors, len(t.rows))
	for _, row := range t.rows {
		name := row.fields[nameCol]
		if name == "" {
			continue
		}
		v, err := t.number(row, valueCol)
		if err != nil {
			return nil, err
		}
		factors[name] = v
	}
	return factors, nil
}

// ReadEUEVBreakdown parses the per-country BEV/PHEV table. Rows are kept in
// source order, duplicates included.
func ReadEUEVBreakdown(r io.Reader) ([]domain.EUEVBreakdown, error) {
	t, err := readTable(r, breakdownPolicy)
	if err != nil {
		return nil, err
	}
	countryCol, err := t.require("Country")
	if err != nil {
		return nil, err
	}
	bevCol, err := t.require("BEV")
	if err != nil {
		return nil, err
	}
	phevCol, err := t.require("PHEV")
	if err != nil {
		return nil, err
	}

	out := make([]domain.EUEVBreakdown, 0, len(t.rows))
	for _, row := range t.rows {
		country := row.fields[countryCol]
		if country == "" {
			continue
		}
		bev, err := t.number(row, bevCol)
		if err != nil {
			return nil, err
		}
		phev, err := t.number(row, phevCol)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.EUEVBreakdown{Country: country, BEV: bev, PHEV: phev})
	}
	return out, nil
}
