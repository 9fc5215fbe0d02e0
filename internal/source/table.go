// Package source reads the raw tabular datasets into typed domain records.
//
// Every reader runs on the same table core, parameterised by a [Policy]:
// which delimiter to split on, how many descriptive rows precede the header,
// how many trailing columns to drop, and whether unparsable numeric cells
// fail the whole table (strict) or become NaN (tolerant). Column presence is
// always strict.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/couchcryptid/ev-scenario-etl/internal/domain"
)

// CellMode selects how a reader treats numeric cells it cannot parse.
type CellMode int

const (
	// StrictCells fails the table with a MalformedSourceError.
	StrictCells CellMode = iota
	// TolerantCells records the cell as NaN and carries on.
	TolerantCells
)

// Policy describes the shape of one source's raw text.
type Policy struct {
	Source       string
	Comma        rune
	SkipRows     int
	DropTrailing int
	Cells        CellMode
}

// Source names, used in errors, logs and metric labels.
const (
	USRegistrations  = "us_registrations"
	EURegistrations  = "eu_registrations"
	Charging         = "charging"
	StateCodes       = "state_codes"
	EmissionsFactors = "emissions_factors"
	EUEVBreakdown    = "eu_ev_breakdown"
)

var (
	usPolicy        = Policy{Source: USRegistrations, Comma: ',', SkipRows: 1, Cells: StrictCells}
	euPolicy        = Policy{Source: EURegistrations, Comma: '\t', DropTrailing: 1, Cells: TolerantCells}
	chargingPolicy  = Policy{Source: Charging, Comma: ',', Cells: StrictCells}
	mappingPolicy   = Policy{Source: StateCodes, Comma: ','}
	emissionsPolicy = Policy{Source: EmissionsFactors, Comma: ',', Cells: StrictCells}
	breakdownPolicy = Policy{Source: EUEVBreakdown, Comma: ',', Cells: StrictCells}
)

// table is a header plus data rows, with header cells trimmed and the
// policy's trailing columns removed.
type table struct {
	policy Policy
	header []string
	rows   []row
}

type row struct {
	line   int
	fields []string
}

func readTable(r io.Reader, p Policy) (*table, error) {
	cr := csv.NewReader(r)
	cr.Comma = p.Comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	t := &table{policy: p}
	for n := 0; ; n++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, t.malformed(0, "", "unreadable text", err)
		}
		if n < p.SkipRows {
			continue
		}
		if t.header == nil {
			t.header = trimHeader(rec, p.DropTrailing)
			continue
		}
		if blank(rec) {
			continue
		}
		line, _ := cr.FieldPos(0)
		fields := make([]string, len(t.header))
		for i := range fields {
			if i < len(rec) {
				fields[i] = strings.TrimSpace(rec[i])
			}
		}
		t.rows = append(t.rows, row{line: line, fields: fields})
	}

	if t.header == nil {
		return nil, t.malformed(0, "", "missing header row", nil)
	}
	return t, nil
}

func trimHeader(rec []string, dropTrailing int) []string {
	n := len(rec) - dropTrailing
	if n < 0 {
		n = 0
	}
	header := make([]string, n)
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(rec[i], "\ufeff"))
	}
	return header
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// column returns the index of the first header matching any of names,
// ignoring case.
func (t *table) column(names ...string) (int, bool) {
	for _, name := range names {
		for i, h := range t.header {
			if strings.EqualFold(h, name) {
				return i, true
			}
		}
	}
	return -1, false
}

// require is column that fails with a MalformedSourceError naming the
// canonical (first) name.
func (t *table) require(names ...string) (int, error) {
	if i, ok := t.column(names...); ok {
		return i, nil
	}
	return -1, t.malformed(0, names[0], "required column not found", nil)
}

// number parses a numeric cell. In tolerant mode an unparsable cell yields
// NaN and a nil error.
func (t *table) number(r row, col int) (float64, error) {
	v, err := parseNumber(r.fields[col])
	if err == nil {
		return v, nil
	}
	if t.policy.Cells == TolerantCells {
		return math.NaN(), nil
	}
	return 0, t.malformed(r.line, t.header[col], fmt.Sprintf("invalid number %q", r.fields[col]), err)
}

// count parses a non-negative whole-number cell. Counts are always strict.
func (t *table) count(r row, col int) (int64, error) {
	v, err := parseCount(r.fields[col])
	if err != nil {
		return 0, t.malformed(r.line, t.header[col], fmt.Sprintf("invalid count %q", r.fields[col]), err)
	}
	return v, nil
}

func (t *table) malformed(line int, column, reason string, err error) error {
	return &domain.MalformedSourceError{
		Source: t.policy.Source,
		Row:    line,
		Column: column,
		Reason: reason,
		Err:    err,
	}
}
