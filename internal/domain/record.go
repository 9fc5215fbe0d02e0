package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// Counts holds vehicle registrations per category.
type Counts struct {
	ElectricEV     int64 `json:"ev"`
	PlugInHybrid   int64 `json:"phev"`
	HybridElectric int64 `json:"hev"`
	Gasoline       int64 `json:"gasoline"`
}

// Get returns the count for a category.
func (c Counts) Get(k CategoryKind) int64 {
	switch k {
	case ElectricEV:
		return c.ElectricEV
	case PlugInHybrid:
		return c.PlugInHybrid
	case HybridElectric:
		return c.HybridElectric
	case Gasoline:
		return c.Gasoline
	default:
		return 0
	}
}

// With returns a copy of c with the category set to v.
func (c Counts) With(k CategoryKind, v int64) Counts {
	switch k {
	case ElectricEV:
		c.ElectricEV = v
	case PlugInHybrid:
		c.PlugInHybrid = v
	case HybridElectric:
		c.HybridElectric = v
	case Gasoline:
		c.Gasoline = v
	}
	return c
}

// Add returns the per-category sum of c and o.
func (c Counts) Add(o Counts) Counts {
	return Counts{
		ElectricEV:     c.ElectricEV + o.ElectricEV,
		PlugInHybrid:   c.PlugInHybrid + o.PlugInHybrid,
		HybridElectric: c.HybridElectric + o.HybridElectric,
		Gasoline:       c.Gasoline + o.Gasoline,
	}
}

// Alt returns the combined EV, PHEV and HEV count.
func (c Counts) Alt() int64 {
	return c.ElectricEV + c.PlugInHybrid + c.HybridElectric
}

// Total returns the sum over all four categories.
func (c Counts) Total() int64 {
	return c.Alt() + c.Gasoline
}

// Validate reports the first negative category.
func (c Counts) Validate() error {
	for _, k := range Categories {
		if c.Get(k) < 0 {
			return fmt.Errorf("negative %s count %d", k, c.Get(k))
		}
	}
	return nil
}

// RegistrationRecord is one region's registrations for a year, or across
// several years when Year is nil.
type RegistrationRecord struct {
	RegionKey string `json:"region"`
	Year      *int   `json:"year,omitempty"`
	Counts    Counts `json:"counts"`
}

// YearPtr returns a pointer to y, for record literals.
func YearPtr(y int) *int {
	return &y
}

// RegionCodeMapping maps a region name to its short code, e.g. "Texas" -> "TX".
type RegionCodeMapping map[string]string

// ChargingSnapshot holds charging-infrastructure metrics for one year or
// summed across every year in the table.
type ChargingSnapshot struct {
	Year     int
	AllYears bool
	Metrics  map[string]int64
}

// AllYearsLabel is the year label of a snapshot summed across every year.
const AllYearsLabel = "All Years"

// Label returns the year as text, or AllYearsLabel for a summed snapshot.
func (s ChargingSnapshot) Label() string {
	if s.AllYears {
		return AllYearsLabel
	}
	return fmt.Sprintf("%d", s.Year)
}

// MarshalJSON encodes the year as its label so summed snapshots read
// "All Years".
func (s ChargingSnapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Year    string           `json:"year"`
		Metrics map[string]int64 `json:"metrics"`
	}{s.Label(), s.Metrics})
}

// ChargingRow is one year's row of the charging table.
type ChargingRow struct {
	Year    int
	Metrics map[string]int64
}

// ChargingTable is the parsed charging-infrastructure table. Columns keeps
// the metric columns in source order.
type ChargingTable struct {
	Columns []string
	Rows    []ChargingRow
}

// EURegistrationRecord is one country's registrations for one month.
// Registrations is NaN when the source cell was unparsable.
type EURegistrationRecord struct {
	Country       string  `json:"country"`
	Month         string  `json:"month"`
	Year          int     `json:"year"`
	Registrations float64 `json:"registrations"`
}

// Missing reports whether the source cell was unparsable.
func (r EURegistrationRecord) Missing() bool {
	return math.IsNaN(r.Registrations)
}

// EUWideRow is one country row of a wide monthly table.
type EUWideRow struct {
	Country string
	Values  []float64
}

// EUWideTable is a wide monthly table: one column per month.
type EUWideTable struct {
	Year   int
	Months []string
	Rows   []EUWideRow
}

// MissingCells counts the cells that were unparsable in the source.
func (t EUWideTable) MissingCells() int {
	n := 0
	for _, row := range t.Rows {
		for _, v := range row.Values {
			if math.IsNaN(v) {
				n++
			}
		}
	}
	return n
}

// EUCountryTotal is a country's registrations summed over months (and years).
// Observed counts the parsable cells that contributed to the sum.
type EUCountryTotal struct {
	Country       string  `json:"country"`
	Registrations float64 `json:"registrations"`
	Observed      int     `json:"observed_cells"`
}

// EUEVBreakdown splits a country's electric registrations into battery and
// plug-in hybrid vehicles.
type EUEVBreakdown struct {
	Country string  `json:"country"`
	BEV     float64 `json:"bev"`
	PHEV    float64 `json:"phev"`
}
