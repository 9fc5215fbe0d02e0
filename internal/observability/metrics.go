package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ev_scenario"

// Load and projection outcome labels.
const (
	OutcomeSuccess    = "success"
	OutcomeNotFound   = "not_found"
	OutcomeMalformed  = "malformed"
	OutcomeError      = "error"
	OutcomeUnknown    = "unknown_region"
	OutcomeMissing    = "missing_factor"
	OutcomeInfeasible = "infeasible"
	OutcomeInvalid    = "invalid"
)

// Metrics holds the Prometheus collectors for source loading and scenario
// projection.
type Metrics struct {
	SourceLoads  *prometheus.CounterVec   // labels: source, outcome
	LoadDuration *prometheus.HistogramVec // labels: source
	RowsRead     *prometheus.CounterVec   // labels: source
	MissingCells *prometheus.CounterVec   // labels: source

	ScenarioProjections *prometheus.CounterVec // labels: outcome
	ResultsPublished    *prometheus.CounterVec // labels: outcome
}

func newMetrics() *Metrics {
	return &Metrics{
		SourceLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_loads_total",
			Help:      "Source file loads by source and outcome.",
		}, []string{"source", "outcome"}),
		LoadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_load_duration_seconds",
			Help:      "Time to open and parse one source file.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}, []string{"source"}),
		RowsRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_rows_read_total",
			Help:      "Data rows parsed from source files.",
		}, []string{"source"}),
		MissingCells: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_missing_cells_total",
			Help:      "Unparsable cells recorded as missing by tolerant sources.",
		}, []string{"source"}),
		ScenarioProjections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scenario_projections_total",
			Help:      "Scenario projections by outcome.",
		}, []string{"outcome"}),
		ResultsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scenario_results_published_total",
			Help:      "Scenario results written to the result topic by outcome.",
		}, []string{"outcome"}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.SourceLoads,
		m.LoadDuration,
		m.RowsRead,
		m.MissingCells,
		m.ScenarioProjections,
		m.ResultsPublished,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics so tests can build as
// many as they like without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
