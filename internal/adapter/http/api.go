package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/couchcryptid/ev-scenario-etl/internal/domain"
)

const (
	defaultTopN = 10
	maxTopN     = 100
	maxBodySize = 1 << 16
)

type errorBody struct {
	Error  string                 `json:"error"`
	Result *domain.ScenarioResult `json:"result,omitempty"`
}

func (s *Server) handleStates(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	table, err := s.backend.StateTable(r.Context(), year)
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

func (s *Server) handleTopStates(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	k := domain.ElectricEV
	if v := r.URL.Query().Get("category"); v != "" {
		if k, ok = domain.ParseCategory(v); !ok {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("unknown category %q", v)})
			return
		}
	}

	n := defaultTopN
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > maxTopN {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("n must be between 1 and %d", maxTopN)})
			return
		}
		n = parsed
	}

	rows, err := s.backend.TopStates(r.Context(), year, k, n)
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"category": k, "rows": rows})
}

func (s *Server) handleEU(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	views, err := s.backend.EUTable(r.Context(), year)
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"countries": views})
}

func (s *Server) handleEUBreakdown(w http.ResponseWriter, r *http.Request) {
	rows, err := s.backend.LoadEUEVBreakdown(r.Context())
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"countries": rows})
}

func (s *Server) handleCharging(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	snap, err := s.backend.LoadChargingSnapshot(r.Context(), year)
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleFactors(w http.ResponseWriter, r *http.Request) {
	factors, err := s.backend.LoadEmissionsFactors(r.Context())
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"factors": factors,
		"missing": factors.Missing(),
	})
}

func (s *Server) handleScenario(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()

	var in domain.ScenarioInput
	if err := dec.Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body: " + err.Error()})
		return
	}

	res, err := s.backend.ProjectScenario(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err, &res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// yearParam parses the optional year query parameter, writing a 400 when it
// is present but not an integer.
func yearParam(w http.ResponseWriter, r *http.Request) (*int, bool) {
	v := r.URL.Query().Get("year")
	if v == "" {
		return nil, true
	}
	y, err := strconv.Atoi(v)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("invalid year %q", v)})
		return nil, false
	}
	return &y, true
}

// statusFor maps a domain error to an HTTP status.
func statusFor(err error) int {
	var (
		invalid    *domain.InvalidScenarioError
		unknown    *domain.UnknownRegionError
		notFound   *domain.RecordNotFoundError
		missing    *domain.MissingFactorError
		infeasible *domain.InfeasibleScenarioError
	)
	switch {
	case errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.As(err, &unknown), errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &missing), errors.As(err, &infeasible):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, partial *domain.ScenarioResult) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Result: partial})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // headers are already sent
}
