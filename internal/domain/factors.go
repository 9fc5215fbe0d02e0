package domain

import (
	"maps"
	"slices"
	"strings"
)

// EmissionsFactors maps a category name, as written in the source table, to
// pounds of CO2 per vehicle. Duplicate names in the source keep the last value.
type EmissionsFactors map[string]float64

// Factor looks up the factor for a category by its canonical label or any
// alias. An exact key match wins over a case-insensitive one; among keys that
// only match case-insensitively the lexically smallest wins.
func (f EmissionsFactors) Factor(k CategoryKind) (float64, bool) {
	for _, name := range k.Names() {
		if v, ok := f[name]; ok {
			return v, true
		}
	}
	keys := slices.Sorted(maps.Keys(f))
	for _, name := range k.Names() {
		for _, key := range keys {
			if strings.EqualFold(strings.TrimSpace(key), name) {
				return f[key], true
			}
		}
	}
	return 0, false
}

// Missing returns the tracked categories with no factor, in canonical order.
func (f EmissionsFactors) Missing() []CategoryKind {
	var missing []CategoryKind
	for _, k := range Categories {
		if _, ok := f.Factor(k); !ok {
			missing = append(missing, k)
		}
	}
	return missing
}
