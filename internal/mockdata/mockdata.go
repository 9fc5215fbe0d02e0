// Package mockdata generates a small deterministic dataset in the same raw
// shapes as the real sources, together with the records a correct reader
// should produce from it. It backs the genmock command and package tests.
package mockdata

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/ev-scenario-etl/internal/domain"
)

// Region is a US region with its postal code. An empty Code is left out of
// the code table so the merge has an unlocated row to deal with.
type Region struct {
	Name string
	Code string
}

// Regions is the fixed region list, in file order.
var Regions = []Region{
	{"Alabama", "AL"},
	{"California", "CA"},
	{"District of Columbia", "DC"},
	{"Texas", "TX"},
	{"Washington", "WA"},
	{"Wyoming", "WY"},
	{"Guam", ""},
}

// Countries is the fixed EU country list, in file order.
var Countries = []string{"Austria", "Belgium", "France", "Germany", "Italy", "Netherlands"}

// Factors are the pounds of CO2 per vehicle per year written to the
// emissions table.
var Factors = map[domain.CategoryKind]float64{
	domain.ElectricEV:     3932,
	domain.PlugInHybrid:   5339,
	domain.HybridElectric: 6258,
	domain.Gasoline:       11435,
}

// ChargingColumns are the metric columns of the charging table.
var ChargingColumns = []string{"Stations", "Ports"}

// Dataset is the in-memory form of a generated dataset.
type Dataset struct {
	Years     []int
	US        map[int][]domain.RegistrationRecord
	Codes     domain.RegionCodeMapping
	Factors   domain.EmissionsFactors
	Charging  domain.ChargingTable
	EU        map[int]domain.EUWideTable
	Breakdown []domain.EUEVBreakdown
}

// Generate builds a dataset for years. The same seed always yields the same
// dataset. Roughly one EU cell in ten is missing.
func Generate(seed uint64, years []int) *Dataset {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	ds := &Dataset{
		Years:    append([]int(nil), years...),
		US:       make(map[int][]domain.RegistrationRecord, len(years)),
		Codes:    make(domain.RegionCodeMapping, len(Regions)),
		Factors:  make(domain.EmissionsFactors, len(Factors)),
		EU:       make(map[int]domain.EUWideTable, len(years)),
		Charging: domain.ChargingTable{Columns: ChargingColumns},
	}

	for _, r := range Regions {
		if r.Code != "" {
			ds.Codes[r.Name] = r.Code
		}
	}
	for k, v := range Factors {
		ds.Factors[k.String()] = v
	}

	for i, year := range years {
		growth := int64(i + 1)
		records := make([]domain.RegistrationRecord, 0, len(Regions))
		for _, r := range Regions {
			scale := rng.Int64N(50) + 1
			records = append(records, domain.RegistrationRecord{
				RegionKey: r.Name,
				Year:      domain.YearPtr(year),
				Counts: domain.Counts{
					ElectricEV:     scale * growth * (rng.Int64N(900) + 100),
					PlugInHybrid:   scale * growth * (rng.Int64N(600) + 50),
					HybridElectric: scale * (rng.Int64N(4000) + 500),
					Gasoline:       scale * (rng.Int64N(90000) + 10000),
				},
			})
		}
		ds.US[year] = records

		ds.Charging.Rows = append(ds.Charging.Rows, domain.ChargingRow{
			Year: year,
			Metrics: map[string]int64{
				"Stations": 15000 + growth*2500 + rng.Int64N(500),
				"Ports":    40000 + growth*9000 + rng.Int64N(2000),
			},
		})

		wide := domain.EUWideTable{Year: year}
		for m := 1; m <= 12; m++ {
			wide.Months = append(wide.Months, fmt.Sprintf("%d-%02d", year, m))
		}
		for _, c := range Countries {
			values := make([]float64, len(wide.Months))
			for j := range values {
				if rng.IntN(10) == 0 {
					values[j] = math.NaN()
					continue
				}
				values[j] = float64(rng.IntN(40000) + 1000)
			}
			wide.Rows = append(wide.Rows, domain.EUWideRow{Country: c, Values: values})
		}
		ds.EU[year] = wide
	}

	for _, c := range Countries {
		ds.Breakdown = append(ds.Breakdown, domain.EUEVBreakdown{
			Country: c,
			BEV:     float64(rng.IntN(300000) + 5000),
			PHEV:    float64(rng.IntN(200000) + 5000),
		})
	}
	return ds
}

// Catalog file layout, relative to the output directory.
const (
	CatalogFile   = "catalog.yaml"
	usPattern     = "us/{year}.csv"
	euPattern     = "eu/{year}.tsv"
	codesFile     = "state_codes.csv"
	factorsFile   = "emissions.csv"
	chargingFile  = "charging.csv"
	breakdownFile = "eu_ev_breakdown.csv"
)

type catalogFile struct {
	Years            []int  `yaml:"years"`
	USRegistrations  string `yaml:"us_registrations"`
	StateCodes       string `yaml:"state_codes"`
	EmissionsFactors string `yaml:"emissions_factors"`
	Charging         string `yaml:"charging"`
	EURegistrations  string `yaml:"eu_registrations"`
	EUEVBreakdown    string `yaml:"eu_ev_breakdown"`
}

// WriteFiles writes every source file and a catalog under dir and returns
// the catalog path.
func (ds *Dataset) WriteFiles(dir string) (string, error) {
	for _, sub := range []string{"us", "eu"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return "", err
		}
	}

	for _, year := range ds.Years {
		if err := writeDelimited(ds.yearly(dir, usPattern, year), ',', ds.usRows(year)); err != nil {
			return "", err
		}
		if err := writeDelimited(ds.yearly(dir, euPattern, year), '\t', ds.euRows(year)); err != nil {
			return "", err
		}
	}

	files := map[string][][]string{
		codesFile:     ds.codeRows(),
		factorsFile:   ds.factorRows(),
		chargingFile:  ds.chargingRows(),
		breakdownFile: ds.breakdownRows(),
	}
	for name, rows := range files {
		if err := writeDelimited(filepath.Join(dir, name), ',', rows); err != nil {
			return "", err
		}
	}

	cat, err := yaml.Marshal(catalogFile{
		Years:            ds.Years,
		USRegistrations:  usPattern,
		StateCodes:       codesFile,
		EmissionsFactors: factorsFile,
		Charging:         chargingFile,
		EURegistrations:  euPattern,
		EUEVBreakdown:    breakdownFile,
	})
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, CatalogFile)
	if err := os.WriteFile(path, cat, 0o600); err != nil {
		return "", err
	}
	return path, nil
}

func (ds *Dataset) yearly(dir, pattern string, year int) string {
	return filepath.Join(dir, strings.ReplaceAll(pattern, "{year}", strconv.Itoa(year)))
}

// usRows mirrors the AFDC layout: a title row, a header with fuel columns
// the readers ignore, and grouped thousands.
func (ds *Dataset) usRows(year int) [][]string {
	header := []string{"State",
		domain.ElectricEV.String(), domain.PlugInHybrid.String(), domain.HybridElectric.String(),
		"Biodiesel", "Ethanol/Flex (E85)", domain.Gasoline.String(), "Diesel"}
	title := make([]string, len(header))
	title[0] = fmt.Sprintf("Vehicle Registration Counts by State and Fuel Type, %d", year)

	rows := [][]string{title, header}
	for _, r := range ds.US[year] {
		c := r.Counts
		rows = append(rows, []string{r.RegionKey,
			humanize.Comma(c.ElectricEV), humanize.Comma(c.PlugInHybrid), humanize.Comma(c.HybridElectric),
			"0", "0", humanize.Comma(c.Gasoline), "0"})
	}
	return rows
}

// euRows writes ":" for missing cells and a trailing flags column.
func (ds *Dataset) euRows(year int) [][]string {
	wide := ds.EU[year]
	header := append(append([]string{"country"}, wide.Months...), "flags")
	rows := [][]string{header}
	for _, row := range wide.Rows {
		out := []string{row.Country}
		for _, v := range row.Values {
			if math.IsNaN(v) {
				out = append(out, ":")
				continue
			}
			out = append(out, humanize.Comma(int64(v)))
		}
		rows = append(rows, append(out, "p"))
	}
	return rows
}

func (ds *Dataset) codeRows() [][]string {
	rows := [][]string{{"State", "Abbreviation"}}
	for _, r := range Regions {
		if r.Code != "" {
			rows = append(rows, []string{r.Name, r.Code})
		}
	}
	return rows
}

func (ds *Dataset) factorRows() [][]string {
	rows := [][]string{{"Vehicle Type", "CO2 (lbs)"}}
	for _, k := range domain.Categories {
		rows = append(rows, []string{k.String(), humanize.Comma(int64(Factors[k]))})
	}
	return rows
}

func (ds *Dataset) chargingRows() [][]string {
	rows := [][]string{append([]string{"Year"}, ds.Charging.Columns...)}
	for _, r := range ds.Charging.Rows {
		out := []string{strconv.Itoa(r.Year)}
		for _, col := range ds.Charging.Columns {
			out = append(out, humanize.Comma(r.Metrics[col]))
		}
		rows = append(rows, out)
	}
	return rows
}

func (ds *Dataset) breakdownRows() [][]string {
	rows := [][]string{{"Country", "BEV", "PHEV"}}
	for _, b := range ds.Breakdown {
		rows = append(rows, []string{b.Country, humanize.Comma(int64(b.BEV)), humanize.Comma(int64(b.PHEV))})
	}
	return rows
}

func writeDelimited(path string, comma rune, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	w.Comma = comma
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
