// Package domain models vehicle registration, emissions-factor and charging
// infrastructure data, and the counterfactual emissions scenario computed
// from them.
//
// # Data Sources
//
// US registrations come from the DOE Alternative Fuels Data Center yearly
// "Vehicle Registration Counts by State" tables, one CSV per year. EU
// registrations come from Eurostat-style wide monthly tables, one TSV per
// year. Both are loaded by package source and handed to this package as typed
// records; this package never touches files.
//
// # Categories
//
// Four propulsion classes are tracked (see [CategoryKind]):
//
//	Electric (EV)                   battery electric
//	Plug-In Hybrid Electric (PHEV)  plug-in hybrid
//	Hybrid Electric (HEV)           non plug-in hybrid
//	Gasoline                        baseline internal combustion
//
// Other fuel columns in the source tables (diesel, ethanol, CNG, ...) are
// ignored. [RegistrationRecord.Counts] carries one named field per category,
// so a missing column is caught once at load time rather than on lookup.
//
// # Aggregation
//
// A record with a nil Year is a multi-year total. [AggregateAcrossYears]
// sums per region over an explicit, caller-supplied year list. A region
// absent from a year contributes nothing for that year; absence is not
// missing data.
//
// EU wide tables are reshaped to long form by [Melt] (one row per country and
// month) before aggregation. Unparsable EU cells are NaN and are skipped by
// sums, so a country whose cells are all unparsable totals 0 with Observed 0.
//
// # Shares
//
//	ev_share          = EV / (EV + Gasoline) * 100
//	alt_vehicle_share = (EV + PHEV + HEV) / (EV + PHEV + HEV + Gasoline) * 100
//
// Both are rounded to two decimals. A zero denominator yields nil, which
// consumers must read as "insufficient data", never as 0%.
//
// # Scenario Model
//
// For each alternative category x with percentage delta d_x:
//
//	new_x   = floor(baseline_x * (1 + d_x/100))
//	new_gas = total - (new_ev + new_phev + new_hev)
//
// Emissions are count * pounds-CO2 factor summed over the four categories.
// The per-category attributed reduction (new_x - baseline_x) * (gas - f_x)
// assumes every displaced vehicle would otherwise have been a gasoline
// vehicle. It is an approximation of each category's contribution, not a
// causal decomposition. Consumers must not rely on the three figures summing
// to the total reduction, even though they do while gasoline absorbs every
// shifted vehicle.
//
// A projection that leaves a negative gasoline count is rejected with
// [InfeasibleScenarioError].
package domain
