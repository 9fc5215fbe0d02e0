package domain

import (
	"fmt"
	"strings"
)

// CategoryKind identifies one of the tracked vehicle propulsion classes.
type CategoryKind int

const (
	ElectricEV CategoryKind = iota
	PlugInHybrid
	HybridElectric
	Gasoline
)

// Categories lists every tracked category in canonical order.
var Categories = []CategoryKind{ElectricEV, PlugInHybrid, HybridElectric, Gasoline}

// AltCategories lists the alternative-fuel categories a scenario can shift.
var AltCategories = []CategoryKind{ElectricEV, PlugInHybrid, HybridElectric}

// categoryNames holds the column label used by the AFDC tables first,
// followed by accepted aliases.
var categoryNames = map[CategoryKind][]string{
	ElectricEV:     {"Electric (EV)", "Electric", "EV", "BEV"},
	PlugInHybrid:   {"Plug-In Hybrid Electric (PHEV)", "Plug-In Hybrid", "PHEV"},
	HybridElectric: {"Hybrid Electric (HEV)", "Hybrid Electric", "Hybrid", "HEV"},
	Gasoline:       {"Gasoline", "Gas"},
}

// String returns the canonical column label for the category.
func (k CategoryKind) String() string {
	if names, ok := categoryNames[k]; ok {
		return names[0]
	}
	return fmt.Sprintf("CategoryKind(%d)", int(k))
}

// Short returns the abbreviated label used in JSON keys and metrics.
func (k CategoryKind) Short() string {
	switch k {
	case ElectricEV:
		return "ev"
	case PlugInHybrid:
		return "phev"
	case HybridElectric:
		return "hev"
	case Gasoline:
		return "gasoline"
	default:
		return "unknown"
	}
}

// MarshalText encodes the category by its short label.
func (k CategoryKind) MarshalText() ([]byte, error) {
	return []byte(k.Short()), nil
}

// Names returns the canonical label and aliases for the category.
func (k CategoryKind) Names() []string {
	return categoryNames[k]
}

// ParseCategory resolves a column label or alias to a category.
// Matching ignores case and surrounding whitespace.
func ParseCategory(name string) (CategoryKind, bool) {
	name = strings.TrimSpace(name)
	for _, k := range Categories {
		for _, alias := range categoryNames[k] {
			if strings.EqualFold(alias, name) {
				return k, true
			}
		}
	}
	return 0, false
}
