package domain

import (
	"fmt"
	"strings"
)

// MalformedSourceError reports a source whose shape does not match what its
// reader expects. Row and Column are zero values when not applicable.
type MalformedSourceError struct {
	Source string
	Row    int
	Column string
	Reason string
	Err    error
}

func (e *MalformedSourceError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "malformed source %s", e.Source)
	if e.Row > 0 {
		fmt.Fprintf(&b, " row %d", e.Row)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " column %q", e.Column)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *MalformedSourceError) Unwrap() error { return e.Err }

// RecordNotFoundError reports a requested year or region absent from a source.
type RecordNotFoundError struct {
	Source string
	Key    string
}

func (e *RecordNotFoundError) Error() string {
	return fmt.Sprintf("%s: no record for %s", e.Source, e.Key)
}

// UnknownRegionError reports a scenario region missing from the baseline.
type UnknownRegionError struct {
	Region string
}

func (e *UnknownRegionError) Error() string {
	return fmt.Sprintf("unknown region %q", e.Region)
}

// MissingFactorError lists the categories without an emissions factor.
type MissingFactorError struct {
	Missing []CategoryKind
}

func (e *MissingFactorError) Error() string {
	names := make([]string, len(e.Missing))
	for i, k := range e.Missing {
		names[i] = k.String()
	}
	return "missing emissions factor for " + strings.Join(names, ", ")
}

// InfeasibleScenarioError reports deltas that would leave a negative
// gasoline count.
type InfeasibleScenarioError struct {
	Region            string
	ProjectedGasoline int64
}

func (e *InfeasibleScenarioError) Error() string {
	return fmt.Sprintf("infeasible scenario for %q: projected gasoline count %d", e.Region, e.ProjectedGasoline)
}

// InvalidScenarioError wraps a scenario input that failed validation.
type InvalidScenarioError struct {
	Err error
}

func (e *InvalidScenarioError) Error() string {
	return "invalid scenario input: " + e.Err.Error()
}

func (e *InvalidScenarioError) Unwrap() error { return e.Err }
