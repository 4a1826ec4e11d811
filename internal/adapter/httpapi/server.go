// Package httpapi exposes the normalization core over HTTP: the departure
// board and incident queries, plus health, readiness, and metrics endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/viatrafik/nearby/internal/domain"
	"github.com/viatrafik/nearby/internal/service"
)

// BoardProvider resolves a coordinate to its nearest stop and that stop's
// departure board.
type BoardProvider interface {
	ForCoordinate(ctx context.Context, coord domain.Coordinate) (service.Board, error)
}

// IncidentProvider lists incidents around a coordinate.
type IncidentProvider interface {
	Nearby(ctx context.Context, coord domain.Coordinate, radiusMeters int) ([]domain.CanonicalIncident, error)
}

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server serves the query API. "Nothing found" is a first-class answer, not
// an error: those responses are 200 with status "not_found" so clients can
// tell an empty neighborhood from a broken upstream.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	boards     BoardProvider
	incidents  IncidentProvider
}

// NewServer creates a Server with all routes registered.
func NewServer(addr string, boards BoardProvider, incidents IncidentProvider, ready ReadinessChecker, logger *slog.Logger) *Server {
	s := &Server{
		logger:    logger,
		boards:    boards,
		incidents: incidents,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/api/departures", s.handleDepartures)
	r.Get("/api/incidents", s.handleIncidents)
	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", handleReady(ready))
	r.Handle("/metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
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

func (s *Server) handleDepartures(w http.ResponseWriter, r *http.Request) {
	coord, ok := coordinateParam(w, r)
	if !ok {
		return
	}

	board, err := s.boards.ForCoordinate(r.Context(), coord)
	switch {
	case errors.Is(err, domain.ErrNoStopNearby):
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "not_found",
			"reason": "no stop nearby",
		})
	case errors.Is(err, domain.ErrNoDepartures):
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "not_found",
			"reason": "no current departures",
		})
	case errors.Is(err, domain.ErrInvalidCoordinate):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"status": "error",
			"reason": "coordinate out of range",
		})
	case err != nil:
		s.logger.Error("departures request failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"status": "error",
			"reason": "upstream unavailable",
		})
	default:
		writeJSON(w, http.StatusOK, map[string]any{
			"status":     "ok",
			"stop":       board.Stop,
			"departures": board.Departures,
		})
	}
}

func (s *Server) handleIncidents(w http.ResponseWriter, r *http.Request) {
	coord, ok := coordinateParam(w, r)
	if !ok {
		return
	}

	radius := 0
	if raw := r.URL.Query().Get("radius"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"status": "error",
				"reason": "radius must be a positive integer",
			})
			return
		}
		radius = v
	}

	incidents, err := s.incidents.Nearby(r.Context(), coord, radius)
	switch {
	case errors.Is(err, domain.ErrInvalidCoordinate):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"status": "error",
			"reason": "coordinate out of range",
		})
	case err != nil:
		s.logger.Error("incidents request failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"status": "error",
			"reason": "upstream unavailable",
		})
	case len(incidents) == 0:
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "not_found",
			"reason": "no incidents in range",
		})
	default:
		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "ok",
			"incidents": incidents,
		})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// coordinateParam reads lat and lng query parameters. Writes a 400 and
// returns ok=false when either is missing or malformed.
func coordinateParam(w http.ResponseWriter, r *http.Request) (domain.Coordinate, bool) {
	q := r.URL.Query()
	lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
	lng, lngErr := strconv.ParseFloat(q.Get("lng"), 64)
	if latErr != nil || lngErr != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"status": "error",
			"reason": "lat and lng query parameters are required",
		})
		return domain.Coordinate{}, false
	}

	coord := domain.Coordinate{Lat: lat, Lng: lng}
	if !coord.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"status": "error",
			"reason": "coordinate out of range",
		})
		return domain.Coordinate{}, false
	}
	return coord, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}
