package pipeline

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/ev-scenario-etl/internal/domain"
	"github.com/couchcryptid/ev-scenario-etl/internal/observability"
)

const (
	publishAttempts = 3
	initialBackoff  = 200 * time.Millisecond
	maxBackoff      = 5 * time.Second
)

// ProjectScenario loads the baseline for the input's year (or across the
// configured years) and the emissions factors concurrently, then projects
// the scenario. Input is validated before anything is read.
//
// On failure the returned result carries whatever was resolved, as
// domain.ProjectScenario documents. Successful results are handed to the
// publisher if one is configured; publishing failures are logged, never
// returned.
func (s *Service) ProjectScenario(ctx context.Context, in domain.ScenarioInput) (domain.ScenarioResult, error) {
	if err := in.Validate(); err != nil {
		s.metrics.ScenarioProjections.WithLabelValues(observability.OutcomeInvalid).Inc()
		return domain.ScenarioResult{Input: in}, err
	}

	var (
		baseline domain.MergedRegionTable
		factors  domain.EmissionsFactors
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		baseline, err = s.StateTable(gctx, in.Year)
		return err
	})
	g.Go(func() (err error) {
		factors, err = s.LoadEmissionsFactors(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.metrics.ScenarioProjections.WithLabelValues(loadOutcome(err)).Inc()
		return domain.ScenarioResult{Input: in}, err
	}

	res, err := domain.ProjectScenario(in, baseline, factors)
	s.metrics.ScenarioProjections.WithLabelValues(scenarioOutcome(err)).Inc()
	if err != nil {
		s.logger.Info("scenario rejected", "region", in.RegionKey, "error", err)
		return res, err
	}

	s.logger.Info("scenario projected",
		"region", in.RegionKey,
		"co2_reduction_lbs", res.CO2Reduction,
	)
	s.publish(ctx, res)
	return res, nil
}

func scenarioOutcome(err error) string {
	var (
		unknown    *domain.UnknownRegionError
		missing    *domain.MissingFactorError
		infeasible *domain.InfeasibleScenarioError
		invalid    *domain.InvalidScenarioError
	)
	switch {
	case err == nil:
		return observability.OutcomeSuccess
	case errors.As(err, &unknown):
		return observability.OutcomeUnknown
	case errors.As(err, &missing):
		return observability.OutcomeMissing
	case errors.As(err, &infeasible):
		return observability.OutcomeInfeasible
	case errors.As(err, &invalid):
		return observability.OutcomeInvalid
	default:
		return observability.OutcomeError
	}
}

// publish retries with exponential backoff: 200ms doubling, capped at 5s.
func (s *Service) publish(ctx context.Context, res domain.ScenarioResult) {
	if s.publisher == nil {
		return
	}

	backoff := initialBackoff
	for attempt := 1; ; attempt++ {
		err := s.publisher.Publish(ctx, res)
		if err == nil {
			s.metrics.ResultsPublished.WithLabelValues(observability.OutcomeSuccess).Inc()
			return
		}
		s.logger.Warn("publish scenario result failed",
			"error", err,
			"region", res.Input.RegionKey,
			"attempt", attempt,
		)
		if attempt == publishAttempts || !sleepWithContext(ctx, backoff) {
			s.metrics.ResultsPublished.WithLabelValues(observability.OutcomeError).Inc()
			return
		}
		backoff = nextBackoff(backoff, maxBackoff)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
