package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func yearly(region string, year int, ev, phev, hev, gas int64) RegistrationRecord {
	return RegistrationRecord{
		RegionKey: region,
		Year:      YearPtr(year),
		Counts:    Counts{ElectricEV: ev, PlugInHybrid: phev, HybridElectric: hev, Gasoline: gas},
	}
}

func TestAggregateAcrossYears(t *testing.T) {
	records := []RegistrationRecord{
		yearly("Texas", 2016, 10, 5, 3, 100),
		yearly("Ohio", 2016, 1, 1, 1, 50),
		yearly("Texas", 2017, 20, 6, 4, 110),
		yearly("Vermont", 2017, 2, 0, 0, 9), // absent in 2016
		yearly("Texas", 2022, 99, 99, 99, 99),
	}

	got := AggregateAcrossYears(records, []int{2016, 2017})

	want := []RegistrationRecord{
		{RegionKey: "Texas", Counts: Counts{ElectricEV: 30, PlugInHybrid: 11, HybridElectric: 7, Gasoline: 210}},
		{RegionKey: "Ohio", Counts: Counts{ElectricEV: 1, PlugInHybrid: 1, HybridElectric: 1, Gasoline: 50}},
		{RegionKey: "Vermont", Counts: Counts{ElectricEV: 2, Gasoline: 9}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("AggregateAcrossYears mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateAcrossYears_SingleYearIsIdentity(t *testing.T) {
	records := []RegistrationRecord{
		yearly("Texas", 2018, 10, 5, 3, 100),
		yearly("Ohio", 2018, 1, 2, 3, 4),
	}

	got := AggregateAcrossYears(records, []int{2018})

	if diff := cmp.Diff(records, got); diff != "" {
		t.Errorf("single-year aggregate changed records (-want +got):\n%s", diff)
	}
}

func TestAggregateAcrossYears_FoldsPreAggregatedTotals(t *testing.T) {
	records := []RegistrationRecord{
		{RegionKey: "Texas", Counts: Counts{ElectricEV: 5}},
		yearly("Texas", 2019, 1, 0, 0, 0),
	}

	got := AggregateAcrossYears(records, []int{2019, 2020})

	require.Len(t, got, 1)
	assert.Nil(t, got[0].Year)
	assert.Equal(t, int64(6), got[0].Counts.ElectricEV)
}

func TestAggregateAcrossYears_EmptyYearSet(t *testing.T) {
	got := AggregateAcrossYears([]RegistrationRecord{yearly("Texas", 2019, 1, 0, 0, 0)}, nil)
	assert.Empty(t, got)
}

func TestSelectYear(t *testing.T) {
	records := []RegistrationRecord{
		yearly("Texas", 2016, 1, 0, 0, 0),
		yearly("Texas", 2017, 2, 0, 0, 0),
	}

	got, err := SelectYear(records, 2017)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].Counts.ElectricEV)

	_, err = SelectYear(records, 2030)
	var nf *RecordNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "year 2030", nf.Key)
}

func TestCharging(t *testing.T) {
	table := ChargingTable{
		Columns: []string{"Stations", "Ports"},
		Rows: []ChargingRow{
			{Year: 2019, Metrics: map[string]int64{"Stations": 100, "Ports": 250}},
			{Year: 2020, Metrics: map[string]int64{"Stations": 120, "Ports": 300}},
		},
	}

	t.Run("single year", func(t *testing.T) {
		snap, err := SelectChargingYear(table, 2020)
		require.NoError(t, err)
		assert.Equal(t, "2020", snap.Label())
		assert.Equal(t, map[string]int64{"Stations": 120, "Ports": 300}, snap.Metrics)

		snap.Metrics["Stations"] = 0
		assert.Equal(t, int64(120), table.Rows[1].Metrics["Stations"], "snapshot must not alias the table")
	})

	t.Run("missing year", func(t *testing.T) {
		_, err := SelectChargingYear(table, 2010)
		var nf *RecordNotFoundError
		assert.ErrorAs(t, err, &nf)
	})

	t.Run("all years", func(t *testing.T) {
		snap := SumCharging(table)
		assert.True(t, snap.AllYears)
		assert.Equal(t, AllYearsLabel, snap.Label())
		assert.Equal(t, map[string]int64{"Stations": 220, "Ports": 550}, snap.Metrics)
	})
}
