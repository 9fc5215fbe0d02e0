package domain

import "math"

// Melt reshapes a wide monthly table into one record per (country, month),
// country-major. Missing cells stay NaN.
func Melt(t EUWideTable) []EURegistrationRecord {
	out := make([]EURegistrationRecord, 0, len(t.Rows)*len(t.Months))
	for _, row := range t.Rows {
		for j, month := range t.Months {
			v := math.NaN()
			if j < len(row.Values) {
				v = row.Values[j]
			}
			out = append(out, EURegistrationRecord{
				Country:       row.Country,
				Month:         month,
				Year:          t.Year,
				Registrations: v,
			})
		}
	}
	return out
}

// Pivot rebuilds a wide table from long records. Countries and months keep
// their first-seen order; a (country, month) pair absent from records is NaN.
// The year is taken from the first record.
func Pivot(records []EURegistrationRecord) EUWideTable {
	var t EUWideTable
	if len(records) > 0 {
		t.Year = records[0].Year
	}

	monthIdx := make(map[string]int)
	countryIdx := make(map[string]int)
	for _, r := range records {
		if _, ok := monthIdx[r.Month]; !ok {
			monthIdx[r.Month] = len(t.Months)
			t.Months = append(t.Months, r.Month)
		}
		if _, ok := countryIdx[r.Country]; !ok {
			countryIdx[r.Country] = len(t.Rows)
			t.Rows = append(t.Rows, EUWideRow{Country: r.Country})
		}
	}

	for i := range t.Rows {
		vals := make([]float64, len(t.Months))
		for j := range vals {
			vals[j] = math.NaN()
		}
		t.Rows[i].Values = vals
	}
	for _, r := range records {
		t.Rows[countryIdx[r.Country]].Values[monthIdx[r.Month]] = r.Registrations
	}
	return t
}

// AggregateEU sums registrations per country across every month and year in
// records, skipping NaN cells. Output follows first appearance of a country.
func AggregateEU(records []EURegistrationRecord) []EUCountryTotal {
	index := make(map[string]int)
	var out []EUCountryTotal
	for _, r := range records {
		i, ok := index[r.Country]
		if !ok {
			i = len(out)
			index[r.Country] = i
			out = append(out, EUCountryTotal{Country: r.Country})
		}
		if r.Missing() {
			continue
		}
		out[i].Registrations += r.Registrations
		out[i].Observed++
	}
	return out
}

// EUCountryView joins a country's registration total with its EV breakdown.
type EUCountryView struct {
	EUCountryTotal
	Breakdown *EUEVBreakdown `json:"ev_breakdown,omitempty"`
	EVShare   *float64       `json:"ev_share"`
}

// JoinEUBreakdown left-joins country totals with the EV breakdown. The EV
// share is (BEV + PHEV) / registrations * 100, rounded to two decimals, and
// nil when there is no breakdown or no observed registrations. When the
// breakdown repeats a country the last row wins.
func JoinEUBreakdown(totals []EUCountryTotal, breakdown []EUEVBreakdown) []EUCountryView {
	byCountry := make(map[string]EUEVBreakdown, len(breakdown))
	for _, b := range breakdown {
		byCountry[b.Country] = b
	}

	out := make([]EUCountryView, len(totals))
	for i, t := range totals {
		out[i] = EUCountryView{EUCountryTotal: t}
		b, ok := byCountry[t.Country]
		if !ok {
			continue
		}
		out[i].Breakdown = &b
		out[i].EVShare = percent(b.BEV+b.PHEV, t.Registrations)
	}
	return out
}
