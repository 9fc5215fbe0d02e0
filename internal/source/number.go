package source

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	errEmptyCell   = errors.New("empty cell")
	errNotFinite   = errors.New("not a finite number")
	errNotWhole    = errors.New("not a whole number")
	errNegative    = errors.New("negative count")
	errTooLarge    = errors.New("count out of range")
	thousandsGroup = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d+)?$`)
)

// parseNumber parses a decimal number, stripping comma thousands separators
// only when they form a well-formed grouping such as "12,345,678". Values
// like "1,5" are rejected rather than guessed at.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errEmptyCell
	}
	if thousandsGroup.MatchString(s) {
		s = strings.ReplaceAll(s, ",", "")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	return v, nil
}

func parseCount(s string) (int64, error) {
	v, err := parseNumber(s)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) {
		return 0, errNotWhole
	}
	if v < 0 {
		return 0, errNegative
	}
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
	if v >= math.MaxInt64 {
		return 0, errTooLarge
	}
	return int64(v), nil
}
