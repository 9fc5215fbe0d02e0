package source

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/ev-scenario-etl/internal/domain"
)

// DefaultYears is the year set used when a catalog does not list one.
var DefaultYears = []int{2016, 2017, 2018, 2019, 2020}

const yearPlaceholder = "{year}"

// Catalog locates every source file. Paths are relative to the catalog's
// directory unless absolute; "{year}" expands to each configured year.
type Catalog struct {
	Years            []int  `yaml:"years"`
	USRegistrations  string `yaml:"us_registrations"`
	StateCodes       string `yaml:"state_codes"`
	EmissionsFactors string `yaml:"emissions_factors"`
	Charging         string `yaml:"charging"`
	EURegistrations  string `yaml:"eu_registrations"`
	EUEVBreakdown    string `yaml:"eu_ev_breakdown"`

	dir string
}

// LoadCatalog reads a catalog from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog YAML: %w", err)
	}
	c.dir = filepath.Dir(path)
	if len(c.Years) == 0 {
		c.Years = append([]int(nil), DefaultYears...)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	required := map[string]string{
		"us_registrations":  c.USRegistrations,
		"state_codes":       c.StateCodes,
		"emissions_factors": c.EmissionsFactors,
		"charging":          c.Charging,
		"eu_registrations":  c.EURegistrations,
		"eu_ev_breakdown":   c.EUEVBreakdown,
	}
	for key, v := range required {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%s is required", key)
		}
	}
	seen := make(map[int]bool, len(c.Years))
	for _, y := range c.Years {
		if seen[y] {
			return fmt.Errorf("years: %d is listed more than once", y)
		}
		seen[y] = true
	}
	for _, key := range []string{"us_registrations", "eu_registrations"} {
		if !strings.Contains(required[key], yearPlaceholder) {
			return fmt.Errorf("%s must contain %s", key, yearPlaceholder)
		}
	}
	return nil
}

// WithYears returns a copy of the catalog using years instead of its own
// list, sorted with repeats collapsed. An empty list leaves the catalog's
// years in place.
func (c *Catalog) WithYears(years []int) *Catalog {
	cp := *c
	if len(years) > 0 {
		cp.Years = slices.Compact(slices.Sorted(slices.Values(years)))
	}
	return &cp
}

func (c *Catalog) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.dir, p)
}

func (c *Catalog) yearly(pattern string, year int) string {
	return c.resolve(strings.ReplaceAll(pattern, yearPlaceholder, strconv.Itoa(year)))
}

// USRegistrationsPath returns the US table path for a year.
func (c *Catalog) USRegistrationsPath(year int) string { return c.yearly(c.USRegistrations, year) }

// EURegistrationsPath returns the EU table path for a year.
func (c *Catalog) EURegistrationsPath(year int) string { return c.yearly(c.EURegistrations, year) }

func (c *Catalog) StateCodesPath() string       { return c.resolve(c.StateCodes) }
func (c *Catalog) EmissionsFactorsPath() string { return c.resolve(c.EmissionsFactors) }
func (c *Catalog) ChargingPath() string         { return c.resolve(c.Charging) }
func (c *Catalog) EUEVBreakdownPath() string    { return c.resolve(c.EUEVBreakdown) }

// Paths lists every file the catalog refers to for its configured years.
func (c *Catalog) Paths() []string {
	paths := []string{c.StateCodesPath(), c.EmissionsFactorsPath(), c.ChargingPath(), c.EUEVBreakdownPath()}
	for _, y := range c.Years {
		paths = append(paths, c.USRegistrationsPath(y), c.EURegistrationsPath(y))
	}
	return paths
}

// Load opens path and hands it to read. A missing file is reported as a
// RecordNotFoundError for the source.
func Load[T any](name, path string, read func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return zero, &domain.RecordNotFoundError{Source: name, Key: "file " + path}
	}
	if err != nil {
		return zero, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	v, err := read(f)
	if err != nil {
		return zero, fmt.Errorf("read %s %s: %w", name, path, err)
	}
	return v, nil
}
