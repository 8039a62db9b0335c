// Package http exposes the aggregated incident tables to rendering
// collaborators, alongside health, readiness, and metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aaroncolesmith/portland-crime-map/internal/domain"
	"github.com/aaroncolesmith/portland-crime-map/internal/pipeline"
)

// IncidentProvider serves the reconciled incident set per lookback window.
type IncidentProvider interface {
	Incidents(ctx context.Context, days int) ([]domain.Incident, error)
	CheckReadiness(ctx context.Context) error
}

// Server exposes the query API and operational HTTP endpoints.
type Server struct {
	httpServer  *http.Server
	provider    IncidentProvider
	defaultDays int
	logger      *slog.Logger
}

// NewServer creates an HTTP server with the aggregate/series routes plus
// /healthz, /readyz, and /metrics.
func NewServer(addr string, provider IncidentProvider, defaultDays int, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		provider:    provider,
		defaultDays: defaultDays,
		logger:      logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/aggregate/alltime", s.handleTable(func(incidents []domain.Incident) any {
		return domain.AggregateAllTime(incidents)
	}))
	mux.HandleFunc("GET /v1/aggregate/daily", s.handleTable(func(incidents []domain.Incident) any {
		return domain.AggregateByDay(incidents)
	}))
	mux.HandleFunc("GET /v1/series/hourly", s.handleTable(func(incidents []domain.Incident) any {
		return domain.HourlySeries(incidents)
	}))
	mux.HandleFunc("GET /v1/series/categories", s.handleTable(func(incidents []domain.Incident) any {
		return domain.CategoryHourSeries(incidents)
	}))
	mux.HandleFunc("GET /v1/categories", s.handleCategories)

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

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.provider.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleTable builds a handler that resolves the filtered incident set and
// renders one aggregate view of it.
func (s *Server) handleTable(aggregate func([]domain.Incident) any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		incidents, ok := s.resolveIncidents(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, aggregate(incidents))
	}
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	incidents, ok := s.resolveIncidents(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, domain.Categories(incidents))
}

// resolveIncidents parses the query parameters, fetches the reconciled set,
// and applies the category allow-list. On failure it writes the error
// response and returns ok=false.
func (s *Server) resolveIncidents(w http.ResponseWriter, r *http.Request) ([]domain.Incident, bool) {
	days := s.defaultDays
	if v := r.URL.Query().Get("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "days must be an integer")
			return nil, false
		}
		days = parsed
	}

	incidents, err := s.provider.Incidents(r.Context(), days)
	if err != nil {
		if errors.Is(err, pipeline.ErrLookbackOutOfRange) {
			writeError(w, http.StatusBadRequest, err.Error())
			return nil, false
		}
		s.logger.Error("incident lookup failed", "error", err, "lookback_days", days)
		writeError(w, http.StatusBadGateway, "incident sources unavailable")
		return nil, false
	}

	return domain.FilterCategories(incidents, parseCategories(r)), true
}

// parseCategories returns nil when the parameter is absent (no filtering)
// and an empty slice when present but empty (select nothing).
func parseCategories(r *http.Request) []string {
	q := r.URL.Query()
	if !q.Has("categories") {
		return nil
	}
	raw := q.Get("categories")
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}
