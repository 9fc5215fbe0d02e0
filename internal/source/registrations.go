package source

import (
	"io"

	"github.com/couchcryptid/ev-scenario-etl/internal/domain"
)

// regionColumn is the AFDC name of the region column.
const regionColumn = "State"

// ReadUSRegistrations parses one year's AFDC registration table. The first
// row is a descriptive title and is skipped; the next row is the header.
// Rows with an empty State cell are ignored.
func ReadUSRegistrations(r io.Reader, year int) ([]domain.RegistrationRecord, error) {
	t, err := readTable(r, usPolicy)
	if err != nil {
		return nil, err
	}

	regionCol, err := t.require(regionColumn)
	if err != nil {
		return nil, err
	}
	var cols [4]int
	for _, k := range domain.Categories {
		if cols[k], err = t.require(k.Names()...); err != nil {
			return nil, err
		}
	}

	records := make([]domain.RegistrationRecord, 0, len(t.rows))
	for _, row := range t.rows {
		region := row.fields[regionCol]
		if region == "" {
			continue
		}
		var counts domain.Counts
		for _, k := range domain.Categories {
			n, err := t.count(row, cols[k])
			if err != nil {
				return nil, err
			}
			counts = counts.With(k, n)
		}
		records = append(records, domain.RegistrationRecord{
			RegionKey: region,
			Year:      domain.YearPtr(year),
			Counts:    counts,
		})
	}
	return records, nil
}

// ReadEUWide parses one year's wide monthly EU table: country in the first
// column, one column per month, and a trailing non-data column which is
// dropped. Unparsable cells become NaN.
func ReadEUWide(r io.Reader, year int) (domain.EUWideTable, error) {
	t, err := readTable(r, euPolicy)
	if err != nil {
		return domain.EUWideTable{}, err
	}
	if len(t.header) < 2 {
		return domain.EUWideTable{}, t.malformed(0, "", "expected a country column and at least one month column", nil)
	}
	for _, h := range t.header[1:] {
		if h == "" {
			return domain.EUWideTable{}, t.malformed(0, "", "unnamed month column", nil)
		}
	}

	wide := domain.EUWideTable{Year: year, Months: t.header[1:]}
	for _, row := range t.rows {
		country := row.fields[0]
		if country == "" {
			continue
		}
		values := make([]float64, len(wide.Months))
		for j := range values {
			// Tolerant policy: number never fails here.
			values[j], _ = t.number(row, j+1)
		}
		wide.Rows = append(wide.Rows, domain.EUWideRow{Country: country, Values: values})
	}
	return wide, nil
}
