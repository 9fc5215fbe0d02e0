package mockdata_test

import (
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/ev-scenario-etl/internal/domain"
	"github.com/couchcryptid/ev-scenario-etl/internal/mockdata"
	"github.com/couchcryptid/ev-scenario-etl/internal/source"
)

func TestGenerate_Deterministic(t *testing.T) {
	a := mockdata.Generate(42, []int{2018, 2019})
	b := mockdata.Generate(42, []int{2018, 2019})
	if diff := cmp.Diff(a, b, cmpopts.EquateNaNs()); diff != "" {
		t.Fatalf("same seed produced different datasets (-a +b):\n%s", diff)
	}

	c := mockdata.Generate(43, []int{2018, 2019})
	assert.NotEqual(t, a.US[2018], c.US[2018])
}

func TestGenerate_HasMissingEUCells(t *testing.T) {
	ds := mockdata.Generate(1, []int{2016, 2017, 2018, 2019, 2020})
	missing := 0
	for _, wide := range ds.EU {
		missing += wide.MissingCells()
	}
	assert.Positive(t, missing)
}

func TestWriteFiles_ReadBack(t *testing.T) {
	years := []int{2019, 2020}
	ds := mockdata.Generate(3, years)
	path, err := ds.WriteFiles(t.TempDir())
	require.NoError(t, err)

	catalog, err := source.LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, years, catalog.Years)

	for _, y := range years {
		us, err := source.Load(source.USRegistrations, catalog.USRegistrationsPath(y), readUS(y))
		require.NoError(t, err)
		if diff := cmp.Diff(ds.US[y], us); diff != "" {
			t.Errorf("US %d mismatch (-want +got):\n%s", y, diff)
		}

		eu, err := source.Load(source.EURegistrations, catalog.EURegistrationsPath(y), readEU(y))
		require.NoError(t, err)
		if diff := cmp.Diff(ds.EU[y], eu, cmpopts.EquateNaNs()); diff != "" {
			t.Errorf("EU %d mismatch (-want +got):\n%s", y, diff)
		}
	}

	codes, err := source.Load(source.StateCodes, catalog.StateCodesPath(), source.ReadRegionCodes)
	require.NoError(t, err)
	assert.Equal(t, ds.Codes, codes)

	factors, err := source.Load(source.EmissionsFactors, catalog.EmissionsFactorsPath(), source.ReadEmissionsFactors)
	require.NoError(t, err)
	assert.Empty(t, factors.Missing())

	charging, err := source.Load(source.Charging, catalog.ChargingPath(), source.ReadCharging)
	require.NoError(t, err)
	assert.Equal(t, ds.Charging, charging)

	breakdown, err := source.Load(source.EUEVBreakdown, catalog.EUEVBreakdownPath(), source.ReadEUEVBreakdown)
	require.NoError(t, err)
	assert.Equal(t, ds.Breakdown, breakdown)
}

func readUS(year int) func(r io.Reader) ([]domain.RegistrationRecord, error) {
	return func(r io.Reader) ([]domain.RegistrationRecord, error) {
		return source.ReadUSRegistrations(r, year)
	}
}

func readEU(year int) func(r io.Reader) (domain.EUWideTable, error) {
	return func(r io.Reader) (domain.EUWideTable, error) {
		return source.ReadEUWide(r, year)
	}
}
