package domain

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

// ScenarioInput describes percentage shifts in alternative-vehicle adoption
// for one region. Deltas are signed percentages: +50 means 50% more, -100
// removes the category entirely. A nil Year projects against the multi-year
// baseline.
type ScenarioInput struct {
	RegionKey    string  `json:"region" validate:"required"`
	EVPctDelta   float64 `json:"ev_pct_delta" validate:"gte=-100"`
	PHEVPctDelta float64 `json:"phev_pct_delta" validate:"gte=-100"`
	HEVPctDelta  float64 `json:"hev_pct_delta" validate:"gte=-100"`
	Year         *int    `json:"year,omitempty" validate:"omitempty,gte=1900,lte=2100"`
}

// Delta returns the percentage delta for an alternative category, 0 for
// Gasoline.
func (in ScenarioInput) Delta(k CategoryKind) float64 {
	switch k {
	case ElectricEV:
		return in.EVPctDelta
	case PlugInHybrid:
		return in.PHEVPctDelta
	case HybridElectric:
		return in.HEVPctDelta
	default:
		return 0
	}
}

// AttributedReduction is the CO2 reduction credited to each alternative
// category, assuming displaced vehicles would otherwise run on gasoline.
type AttributedReduction struct {
	ElectricEV     float64 `json:"ev"`
	PlugInHybrid   float64 `json:"phev"`
	HybridElectric float64 `json:"hev"`
}

// ScenarioResult carries baseline and projected counts and the resulting
// emissions change. On failure it holds whatever was resolved before the
// error: always the input, and baseline counts once the region is known.
type ScenarioResult struct {
	Input              ScenarioInput       `json:"input"`
	RegionCode         *string             `json:"region_code,omitempty"`
	Baseline           Counts              `json:"baseline"`
	Projected          Counts              `json:"projected"`
	CurrentEmissions   float64             `json:"current_emissions_lbs"`
	ProjectedEmissions float64             `json:"projected_emissions_lbs"`
	CO2Reduction       float64             `json:"co2_reduction_lbs"`
	CO2ReductionPct    *float64            `json:"co2_reduction_pct"`
	Attributed         AttributedReduction `json:"attributed_reduction_lbs"`
	GeneratedAt        time.Time           `json:"generated_at"`
}

// ProjectScenario applies the input's deltas to the region's baseline counts
// and computes the emissions change using factors.
//
// Errors are typed: *InvalidScenarioError, *UnknownRegionError,
// *MissingFactorError and *InfeasibleScenarioError, plus a plain error when
// the baseline total itself overflows. The returned result is always usable
// for display, even alongside an error.
func ProjectScenario(in ScenarioInput, baseline MergedRegionTable, factors EmissionsFactors) (ScenarioResult, error) {
	res := ScenarioResult{Input: in, GeneratedAt: clock.Now()}

	if err := in.Validate(); err != nil {
		return res, err
	}

	row, ok := baseline.Lookup(in.RegionKey)
	if !ok {
		return res, &UnknownRegionError{Region: in.RegionKey}
	}
	res.RegionCode = row.RegionCode
	res.Baseline = row.Counts

	if missing := factors.Missing(); len(missing) > 0 {
		return res, &MissingFactorError{Missing: missing}
	}

	total := decimal.Zero
	for _, k := range Categories {
		total = total.Add(decimal.NewFromInt(row.Counts.Get(k)))
	}
	if !fitsCount(total) {
		return res, fmt.Errorf("region %q: baseline total %s exceeds the count range", in.RegionKey, total)
	}

	projected := row.Counts
	alt := decimal.Zero
	for _, k := range AltCategories {
		n, ok := shiftCount(row.Counts.Get(k), in.Delta(k))
		if !ok {
			return res, &InvalidScenarioError{Err: fmt.Errorf("%s delta %g overflows the projected count", k.Short(), in.Delta(k))}
		}
		projected = projected.With(k, n)
		alt = alt.Add(decimal.NewFromInt(n))
	}
	if !fitsCount(alt) {
		return res, &InvalidScenarioError{Err: errors.New("projected alternative-vehicle total overflows the count range")}
	}
	// Both operands are in [0, MaxInt64], so the difference fits.
	projected.Gasoline = total.Sub(alt).IntPart()
	res.Projected = projected
	if projected.Gasoline < 0 {
		return res, &InfeasibleScenarioError{Region: in.RegionKey, ProjectedGasoline: projected.Gasoline}
	}

	res.CurrentEmissions = emissions(row.Counts, factors)
	res.ProjectedEmissions = emissions(projected, factors)
	res.CO2Reduction = res.CurrentEmissions - res.ProjectedEmissions
	if res.CurrentEmissions != 0 {
		pct := res.CO2Reduction / res.CurrentEmissions * 100
		res.CO2ReductionPct = &pct
	}

	gas := mustFactor(factors, Gasoline)
	attributed := func(k CategoryKind) float64 {
		return float64(projected.Get(k)-row.Counts.Get(k)) * (gas - mustFactor(factors, k))
	}
	res.Attributed = AttributedReduction{
		ElectricEV:     attributed(ElectricEV),
		PlugInHybrid:   attributed(PlugInHybrid),
		HybridElectric: attributed(HybridElectric),
	}
	return res, nil
}

// Validate checks the input without touching any data. Failures are
// *InvalidScenarioError.
func (in ScenarioInput) Validate() error {
	for _, k := range AltCategories {
		if !finite(in.Delta(k)) {
			return &InvalidScenarioError{Err: errors.New(k.Short() + " delta is not a finite number")}
		}
	}
	if err := validate.Struct(in); err != nil {
		return &InvalidScenarioError{Err: err}
	}
	return nil
}

var maxCount = decimal.NewFromInt(math.MaxInt64)

// fitsCount reports whether d is a valid registration count.
func fitsCount(d decimal.Decimal) bool {
	return d.Sign() >= 0 && d.LessThanOrEqual(maxCount)
}

// shiftCount returns floor(count * (1 + delta/100)), or false when the result
// is not a valid count. Decimal arithmetic keeps exact products such as
// 10 * 0.1 from flooring to one less.
func shiftCount(count int64, delta float64) (int64, bool) {
	if count == 0 {
		return 0, true
	}
	factor := decimal.NewFromInt(1).Add(decimal.NewFromFloat(delta).Div(decimal.NewFromInt(100)))
	v := decimal.NewFromInt(count).Mul(factor).Floor()
	if !fitsCount(v) {
		return 0, false
	}
	return v.IntPart(), true
}

func emissions(c Counts, factors EmissionsFactors) float64 {
	var total float64
	for _, k := range Categories {
		total += float64(c.Get(k)) * mustFactor(factors, k)
	}
	return total
}

// mustFactor is only called after Missing has confirmed every factor exists.
func mustFactor(factors EmissionsFactors, k CategoryKind) float64 {
	v, _ := factors.Factor(k)
	return v
}
