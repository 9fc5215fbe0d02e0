package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeWithCodes(t *testing.T) {
	records := []RegistrationRecord{
		{RegionKey: "Texas", Counts: Counts{ElectricEV: 1}},
		{RegionKey: "Puerto Rico", Counts: Counts{ElectricEV: 2}},
		{RegionKey: "Texas", Counts: Counts{ElectricEV: 3}},
		{RegionKey: "ohio", Counts: Counts{ElectricEV: 4}},
	}
	mapping := RegionCodeMapping{"Texas": "TX", "Ohio": "OH", "Maine": "ME"}

	table := MergeWithCodes(records, mapping)

	require.Len(t, table.Rows, len(records), "merge must preserve row count")
	require.NotNil(t, table.Rows[0].RegionCode)
	assert.Equal(t, "TX", *table.Rows[0].RegionCode)
	assert.Nil(t, table.Rows[1].RegionCode)
	assert.Equal(t, int64(3), table.Rows[2].Counts.ElectricEV, "duplicates flow through independently")
	assert.Nil(t, table.Rows[3].RegionCode, "join is case-sensitive")

	located := table.Located()
	require.Len(t, located, 2)
	assert.Equal(t, "Texas", located[1].RegionKey)

	row, ok := table.Lookup("Texas")
	require.True(t, ok)
	assert.Equal(t, int64(1), row.Counts.ElectricEV, "lookup returns the first match")
}

func TestMergeWithCodes_EmptyMapping(t *testing.T) {
	table := MergeWithCodes([]RegistrationRecord{{RegionKey: "Texas"}}, nil)
	require.Len(t, table.Rows, 1)
	assert.Nil(t, table.Rows[0].RegionCode)
	assert.Empty(t, table.Located())
}

func TestDeriveShares(t *testing.T) {
	records := []RegistrationRecord{
		{RegionKey: "A", Counts: Counts{ElectricEV: 1, PlugInHybrid: 1, HybridElectric: 1, Gasoline: 2}},
		{RegionKey: "B", Counts: Counts{}},
		{RegionKey: "C", Counts: Counts{PlugInHybrid: 5}},
		{RegionKey: "D", Counts: Counts{ElectricEV: 7}},
	}
	in := MergeWithCodes(records, RegionCodeMapping{"A": "AA"})

	out := DeriveShares(in)

	require.Len(t, out.Rows, 4)
	for i, row := range out.Rows {
		assert.Equal(t, records[i].RegionKey, row.RegionKey, "order is preserved")
		assert.Equal(t, records[i].Counts, row.Counts, "counts are read-only")
		assert.Equal(t, records[i].Counts.Total(), row.Counts.Total())
	}
	assert.Equal(t, "AA", *out.Rows[0].RegionCode)

	require.NotNil(t, out.Rows[0].EVShare)
	assert.Equal(t, 33.33, *out.Rows[0].EVShare)
	require.NotNil(t, out.Rows[0].AltVehicleShare)
	assert.Equal(t, 60.0, *out.Rows[0].AltVehicleShare)

	assert.Nil(t, out.Rows[1].EVShare, "0/0 is undefined, not zero")
	assert.Nil(t, out.Rows[1].AltVehicleShare)

	assert.Nil(t, out.Rows[2].EVShare)
	require.NotNil(t, out.Rows[2].AltVehicleShare)
	assert.Equal(t, 100.0, *out.Rows[2].AltVehicleShare)

	assert.Equal(t, 100.0, *out.Rows[3].EVShare)

	assert.Nil(t, in.Rows[0].EVShare, "input table is not modified")
}

func TestDeriveShares_Bounds(t *testing.T) {
	var records []RegistrationRecord
	for ev := int64(0); ev < 6; ev++ {
		for gas := int64(0); gas < 6; gas++ {
			records = append(records, RegistrationRecord{
				RegionKey: "R",
				Counts:    Counts{ElectricEV: ev, PlugInHybrid: gas % 3, HybridElectric: ev % 2, Gasoline: gas},
			})
		}
	}

	for _, row := range DeriveShares(MergeWithCodes(records, nil)).Rows {
		for _, share := range []*float64{row.EVShare, row.AltVehicleShare} {
			if share == nil {
				continue
			}
			assert.GreaterOrEqual(t, *share, 0.0)
			assert.LessOrEqual(t, *share, 100.0)
		}
		if row.Counts.ElectricEV+row.Counts.Gasoline == 0 {
			assert.Nil(t, row.EVShare)
		}
	}
}

func TestDeriveShares_NearCountLimit(t *testing.T) {
	big := int64(math.MaxInt64 / 2)
	table := DeriveShares(MergeWithCodes([]RegistrationRecord{
		{RegionKey: "R", Counts: Counts{ElectricEV: big, PlugInHybrid: big, Gasoline: big}},
	}, nil))

	row := table.Rows[0]
	require.NotNil(t, row.EVShare)
	require.NotNil(t, row.AltVehicleShare)
	assert.InDelta(t, 50.0, *row.EVShare, 0.01)
	assert.InDelta(t, 66.67, *row.AltVehicleShare, 0.01)
}

func TestPercentRounding(t *testing.T) {
	tests := []struct {
		num, den float64
		want     float64
	}{
		{2, 3, 66.67},
		{1, 8, 12.5},
		{1, 200000, 0},
		{5, 5, 100},
	}
	for _, tt := range tests {
		got := percent(tt.num, tt.den)
		require.NotNil(t, got)
		assert.Equal(t, tt.want, *got)
	}
	assert.Nil(t, percent(1, 0))
}

func TestTopRegions(t *testing.T) {
	table := MergeWithCodes([]RegistrationRecord{
		{RegionKey: "A", Counts: Counts{ElectricEV: 5}},
		{RegionKey: "B", Counts: Counts{ElectricEV: 50}},
		{RegionKey: "C", Counts: Counts{ElectricEV: 5}},
		{RegionKey: "D", Counts: Counts{ElectricEV: 500}},
	}, nil)

	top := TopRegions(table, ElectricEV, 3)

	require.Len(t, top, 3)
	assert.Equal(t, []string{"D", "B", "A"}, []string{top[0].RegionKey, top[1].RegionKey, top[2].RegionKey})
	assert.Equal(t, "A", table.Rows[0].RegionKey, "table is not reordered")
	assert.Len(t, TopRegions(table, Gasoline, 10), 4)
}
