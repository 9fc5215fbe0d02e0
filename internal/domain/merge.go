package domain

// MergedRow is a registration record joined with its region code and
// derived shares. RegionCode is nil when the mapping had no match; shares
// are nil until derived or when undefined.
type MergedRow struct {
	RegistrationRecord
	RegionCode      *string  `json:"region_code"`
	EVShare         *float64 `json:"ev_share"`
	AltVehicleShare *float64 `json:"alt_vehicle_share"`
}

// MergedRegionTable is the per-region table consumed by presentation and by
// the scenario projector.
type MergedRegionTable struct {
	Rows []MergedRow `json:"rows"`
}

// MergeWithCodes left-joins registrations with the code mapping on exact,
// case-sensitive region name. Every input row is kept, in order, including
// duplicates and rows without a match.
func MergeWithCodes(records []RegistrationRecord, mapping RegionCodeMapping) MergedRegionTable {
	rows := make([]MergedRow, len(records))
	for i, rec := range records {
		rows[i] = MergedRow{RegistrationRecord: rec}
		if code, ok := mapping[rec.RegionKey]; ok {
			rows[i].RegionCode = &code
		}
	}
	return MergedRegionTable{Rows: rows}
}

// Lookup returns the first row for the region.
func (t MergedRegionTable) Lookup(region string) (MergedRow, bool) {
	for _, row := range t.Rows {
		if row.RegionKey == region {
			return row, true
		}
	}
	return MergedRow{}, false
}

// Located returns the rows that carry a region code, for location-keyed
// consumers such as maps.
func (t MergedRegionTable) Located() []MergedRow {
	var out []MergedRow
	for _, row := range t.Rows {
		if row.RegionCode != nil {
			out = append(out, row)
		}
	}
	return out
}
