package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/ev-scenario-etl/internal/domain"
)

// Backend is what the JSON API reads from. *pipeline.Service implements it.
type Backend interface {
	sharedobs.ReadinessChecker
	StateTable(ctx context.Context, year *int) (domain.MergedRegionTable, error)
	TopStates(ctx context.Context, year *int, k domain.CategoryKind, n int) ([]domain.MergedRow, error)
	EUTable(ctx context.Context, year *int) ([]domain.EUCountryView, error)
	LoadEUEVBreakdown(ctx context.Context) ([]domain.EUEVBreakdown, error)
	LoadChargingSnapshot(ctx context.Context, year *int) (domain.ChargingSnapshot, error)
	LoadEmissionsFactors(ctx context.Context) (domain.EmissionsFactors, error)
	ProjectScenario(ctx context.Context, in domain.ScenarioInput) (domain.ScenarioResult, error)
}

// Server exposes the JSON API alongside health, readiness, and metrics
// endpoints.
type Server struct {
	httpServer *http.Server
	backend    Backend
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and the
// /api routes.
func NewServer(addr string, backend Backend, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		backend: backend,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(backend))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/states", s.handleStates)
	mux.HandleFunc("GET /api/states/top", s.handleTopStates)
	mux.HandleFunc("GET /api/eu", s.handleEU)
	mux.HandleFunc("GET /api/eu/ev-breakdown", s.handleEUBreakdown)
	mux.HandleFunc("GET /api/charging", s.handleCharging)
	mux.HandleFunc("GET /api/emissions-factors", s.handleFactors)
	mux.HandleFunc("POST /api/scenario", s.handleScenario)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
