package kafka

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/ev-scenario-etl/internal/domain"
)

func sampleResult() domain.ScenarioResult {
	pct := 3.67
	code := "TX"
	return domain.ScenarioResult{
		Input:              domain.ScenarioInput{RegionKey: "Texas", EVPctDelta: 50, Year: domain.YearPtr(2020)},
		RegionCode:         &code,
		Baseline:           domain.Counts{ElectricEV: 100, PlugInHybrid: 50, HybridElectric: 30, Gasoline: 820},
		Projected:          domain.Counts{ElectricEV: 150, PlugInHybrid: 50, HybridElectric: 30, Gasoline: 770},
		CurrentEmissions:   10224590,
		ProjectedEmissions: 9849440,
		CO2Reduction:       375150,
		CO2ReductionPct:    &pct,
		Attributed:         domain.AttributedReduction{ElectricEV: 375150},
		GeneratedAt:        time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC),
	}
}

func TestSerializeToMessage(t *testing.T) {
	res := sampleResult()

	msg, err := serializeToMessage(res)
	require.NoError(t, err)

	assert.Equal(t, []byte("Texas"), msg.Key)
	assert.Contains(t, string(msg.Value), `"co2_reduction_lbs":375150`)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "region", msg.Headers[0].Key)
	assert.Equal(t, []byte("Texas"), msg.Headers[0].Value)
	assert.Equal(t, "generated_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(res.GeneratedAt.Format(time.RFC3339)), msg.Headers[1].Value)
	assert.Equal(t, "year", msg.Headers[2].Key)
	assert.Equal(t, []byte("2020"), msg.Headers[2].Value)
}

func TestSerializeToMessage_NoYearHeader(t *testing.T) {
	res := sampleResult()
	res.Input.Year = nil

	msg, err := serializeToMessage(res)
	require.NoError(t, err)
	assert.Len(t, msg.Headers, 2)
}

func TestDecodeMessage(t *testing.T) {
	res := sampleResult()
	msg, err := serializeToMessage(res)
	require.NoError(t, err)

	got, err := DecodeMessage(msg)
	require.NoError(t, err)
	if diff := cmp.Diff(res, got); diff != "" {
		t.Fatalf("decoded result mismatch (-want +got):\n%s", diff)
	}

	msg.Value = []byte("not json")
	_, err = DecodeMessage(msg)
	assert.Error(t, err)
}
