package domain

import (
	"cmp"
	"math"
	"slices"

	"github.com/shopspring/decimal"
)

// DeriveShares returns a copy of the table with EV and alternative-vehicle
// shares filled in. Counts and row order are left untouched.
func DeriveShares(t MergedRegionTable) MergedRegionTable {
	rows := make([]MergedRow, len(t.Rows))
	for i, row := range t.Rows {
		// Summed as floats so counts near the int64 limit cannot wrap.
		ev, gas := float64(row.Counts.ElectricEV), float64(row.Counts.Gasoline)
		alt := ev + float64(row.Counts.PlugInHybrid) + float64(row.Counts.HybridElectric)
		row.EVShare = percent(ev, ev+gas)
		row.AltVehicleShare = percent(alt, alt+gas)
		rows[i] = row
	}
	return MergedRegionTable{Rows: rows}
}

// percent returns num/den*100 rounded to two decimals, or nil when den is
// not a positive finite number.
func percent(num, den float64) *float64 {
	if den <= 0 || !finite(num) || !finite(den) {
		return nil
	}
	v, _ := decimal.NewFromFloat(num / den * 100).Round(2).Float64()
	return &v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// TopRegions returns up to n rows with the highest count for category k,
// ties broken by table order. The table itself is not reordered.
func TopRegions(t MergedRegionTable, k CategoryKind, n int) []MergedRow {
	rows := slices.Clone(t.Rows)
	slices.SortStableFunc(rows, func(a, b MergedRow) int {
		return cmp.Compare(b.Counts.Get(k), a.Counts.Get(k))
	})
	if n >= 0 && n < len(rows) {
		rows = rows[:n]
	}
	return rows
}
