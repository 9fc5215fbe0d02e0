package source

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/ev-scenario-etl/internal/domain"
)

func TestReadCharging(t *testing.T) {
	in := " Year , Stations ,Ports,\n" +
		"2019,\"25,000\",\"78,000\",\n" +
		"2020,\"28,500\",\"96,200\",\n"

	table, err := ReadCharging(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []string{"Stations", "Ports"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, 2020, table.Rows[1].Year)
	assert.Equal(t, map[string]int64{"Stations": 28500, "Ports": 96200}, table.Rows[1].Metrics)

	snap := domain.SumCharging(table)
	assert.Equal(t, domain.AllYearsLabel, snap.Label())
	assert.Equal(t, int64(53500), snap.Metrics["Stations"])

	_, err = domain.SelectChargingYear(table, 2011)
	var nf *domain.RecordNotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestReadCharging_RequiresYear(t *testing.T) {
	_, err := ReadCharging(strings.NewReader("Period,Stations\n2019,1\n"))
	var malformed *domain.MalformedSourceError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "Year", malformed.Column)
}

func TestReadRegionCodes(t *testing.T) {
	in := "State,Abbreviation\nTexas,TX\nOhio,OH\nTexas,TEX\n"
	mapping, err := ReadRegionCodes(strings.NewReader(in))
	require.NoError(t, err)

	assert.Len(t, mapping, 2)
	assert.Equal(t, "TEX", mapping["Texas"], "last write wins")
	assert.Equal(t, "OH", mapping["Ohio"])
}

func TestReadRegionCodes_CodeAlias(t *testing.T) {
	mapping, err := ReadRegionCodes(strings.NewReader("state,code\nMaine,ME\n"))
	require.NoError(t, err)
	assert.Equal(t, domain.RegionCodeMapping{"Maine": "ME"}, mapping)
}

func TestReadEmissionsFactors(t *testing.T) {
	in := "Vehicle Type,CO2 (lbs)\n" +
		"Electric (EV),\"3,932\"\n" +
		"Plug-In Hybrid Electric (PHEV),5339\n" +
		"Hybrid Electric (HEV),6258\n" +
		"Gasoline,\"11,435\"\n" +
		"Gasoline,11435.5\n"

	factors, err := ReadEmissionsFactors(strings.NewReader(in))
	require.NoError(t, err)
	assert.Empty(t, factors.Missing())

	v, ok := factors.Factor(domain.Gasoline)
	require.True(t, ok)
	assert.Equal(t, 11435.5, v, "last write wins")
	v, _ = factors.Factor(domain.ElectricEV)
	assert.Equal(t, 3932.0, v)
}

func TestReadEmissionsFactors_StrictValues(t *testing.T) {
	_, err := ReadEmissionsFactors(strings.NewReader("Category,Pounds CO2\nGasoline,lots\n"))
	var malformed *domain.MalformedSourceError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 2, malformed.Row)
}

func TestReadEUEVBreakdown(t *testing.T) {
	in := "Country,BEV,PHEV\nGermany,\"355,961\",\"325,449\"\nNorway,113751,22000\nGermany,1,1\n"
	rows, err := ReadEUEVBreakdown(strings.NewReader(in))
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, domain.EUEVBreakdown{Country: "Germany", BEV: 355961, PHEV: 325449}, rows[0])
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"42", 42, false},
		{" 1,234,567 ", 1234567, false},
		{"-1,000.25", -1000.25, false},
		{"12.5", 12.5, false},
		{"1,5", 0, true},
		{"12,34,567", 0, true},
		{"NaN", 0, true},
		{"Inf", 0, true},
		{"", 0, true},
		{":", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseNumber(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCount_Range(t *testing.T) {
	n, err := parseCount("9223372036854774784")
	require.NoError(t, err)
	assert.Equal(t, int64(9223372036854774784), n)

	_, err = parseCount("9223372036854775807")
	assert.ErrorIs(t, err, errTooLarge, "rounds to 2^63 as a float")

	_, err = parseCount("1e19")
	assert.ErrorIs(t, err, errTooLarge)
}
