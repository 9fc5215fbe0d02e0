package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/ev-scenario-etl/internal/domain"
	"github.com/couchcryptid/ev-scenario-etl/internal/observability"
	"github.com/couchcryptid/ev-scenario-etl/internal/source"
)

// ResultPublisher sends a successful scenario result downstream.
type ResultPublisher interface {
	Publish(ctx context.Context, res domain.ScenarioResult) error
}

// Service runs the load, aggregate, merge and project stages against the
// files named by a catalog. It holds no data between calls: every entry
// point re-reads the sources it needs.
type Service struct {
	catalog   *source.Catalog
	publisher ResultPublisher
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a Service. publisher may be nil to disable result publishing.
func New(catalog *source.Catalog, publisher ResultPublisher, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		catalog:   catalog,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

// Years returns the configured year set.
func (s *Service) Years() []int {
	return append([]int(nil), s.catalog.Years...)
}

// CheckReadiness returns nil when every file the catalog names exists, or
// an error listing the ones that do not.
func (s *Service) CheckReadiness(_ context.Context) error {
	var errs []error
	for _, p := range s.catalog.Paths() {
		if _, err := os.Stat(p); err != nil {
			errs = append(errs, fmt.Errorf("source file %s: %w", p, err))
		}
	}
	return errors.Join(errs...)
}

// sourceStats is what a load reports to logs and metrics.
type sourceStats struct {
	rows    int
	missing int
}

// loadSource opens and parses one file, recording its outcome.
func loadSource[T any](ctx context.Context, s *Service, name, path string, read func(io.Reader) (T, error), measure func(T) sourceStats) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	start := time.Now()
	v, err := source.Load(name, path, read)
	s.metrics.LoadDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		outcome := loadOutcome(err)
		s.metrics.SourceLoads.WithLabelValues(name, outcome).Inc()
		s.logger.Warn("source load failed", "source", name, "path", path, "outcome", outcome, "error", err)
		return zero, err
	}

	st := measure(v)
	s.metrics.SourceLoads.WithLabelValues(name, observability.OutcomeSuccess).Inc()
	s.metrics.RowsRead.WithLabelValues(name).Add(float64(st.rows))
	if st.missing > 0 {
		s.metrics.MissingCells.WithLabelValues(name).Add(float64(st.missing))
	}
	s.logger.Debug("source loaded", "source", name, "path", path, "rows", st.rows, "missing_cells", st.missing)
	return v, nil
}

func loadOutcome(err error) string {
	var notFound *domain.RecordNotFoundError
	var malformed *domain.MalformedSourceError
	switch {
	case errors.As(err, &notFound):
		return observability.OutcomeNotFound
	case errors.As(err, &malformed):
		return observability.OutcomeMalformed
	default:
		return observability.OutcomeError
	}
}

// yearsFor returns the single requested year or the whole configured set.
func (s *Service) yearsFor(year *int) []int {
	if year != nil {
		return []int{*year}
	}
	return s.catalog.Years
}

// yearNotFound rewrites a missing yearly file as a missing year.
func yearNotFound(err error, name string, year int) error {
	var notFound *domain.RecordNotFoundError
	if errors.As(err, &notFound) {
		return &domain.RecordNotFoundError{Source: name, Key: fmt.Sprintf("year %d", year)}
	}
	return err
}
