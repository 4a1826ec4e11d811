package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/viatrafik/nearby/internal/domain"
	"github.com/viatrafik/nearby/internal/mapping"
	"github.com/viatrafik/nearby/internal/observability"
)

// DepartureSource reads the raw departure board for a stop.
type DepartureSource interface {
	Departures(ctx context.Context, stopID string, limit int, window time.Duration) ([]domain.RawDeparture, error)
}

// DepartureService normalizes raw departure boards into canonical entries.
type DepartureService struct {
	source  DepartureSource
	tables  *mapping.Tables
	health  *Health
	logger  *slog.Logger
	metrics *observability.Metrics
	limit   int
	window  time.Duration
}

// NewDepartureService creates a DepartureService. health may be nil.
func NewDepartureService(source DepartureSource, tables *mapping.Tables, health *Health, logger *slog.Logger, metrics *observability.Metrics, limit int, window time.Duration) *DepartureService {
	return &DepartureService{
		source:  source,
		tables:  tables,
		health:  health,
		logger:  logger,
		metrics: metrics,
		limit:   limit,
		window:  window,
	}
}

// Board returns the normalized departure board for a stop, preserving the
// provider's ordering. Returns ErrNoDepartures when the stop exists but has
// nothing upcoming. Entries whose departure time cannot be parsed are dropped
// with a warning; a missing arrival or duration degrades the entry, never
// drops it.
func (s *DepartureService) Board(ctx context.Context, stopID string) ([]domain.CanonicalDeparture, error) {
	raws, err := s.source.Departures(ctx, stopID, s.limit, s.window)
	if err != nil {
		return nil, err
	}
	s.health.MarkReady()

	if len(raws) == 0 {
		return nil, domain.ErrNoDepartures
	}

	board := make([]domain.CanonicalDeparture, 0, len(raws))
	for _, raw := range raws {
		dep, ok := s.normalize(raw)
		if !ok {
			s.metrics.DeparturesDropped.Inc()
			s.logger.Warn("dropping departure without usable time",
				"stop_id", stopID,
				"destination", raw.Destination,
				"scheduled", raw.Scheduled,
				"expected", raw.Expected,
			)
			continue
		}
		board = append(board, dep)
	}

	if len(board) == 0 {
		return nil, domain.ErrNoDepartures
	}
	s.metrics.DeparturesNormalized.Add(float64(len(board)))
	return board, nil
}

// normalize converts one raw entry. The realtime estimate wins over the
// timetable when both are present.
func (s *DepartureService) normalize(raw domain.RawDeparture) (domain.CanonicalDeparture, bool) {
	effective := raw.Expected
	if effective == "" {
		effective = raw.Scheduled
	}
	departureTime, ok := domain.ClockTime(effective)
	if !ok {
		// Fall back to the other field before giving up on the entry.
		if departureTime, ok = domain.ClockTime(raw.Scheduled); !ok {
			return domain.CanonicalDeparture{}, false
		}
		effective = raw.Scheduled
	}

	arrivalTime := domain.Unknown
	if t, ok := domain.ClockTime(raw.Arrival); ok {
		arrivalTime = t
	}
	duration, minutes := domain.TripDuration(effective, raw.Arrival)

	vehicle := s.tables.Vehicle(raw.Line.TransportMode)

	return domain.CanonicalDeparture{
		DepartureStop:   raw.StopArea.Name,
		ArrivalStop:     raw.Destination,
		DepartureTime:   departureTime,
		ArrivalTime:     arrivalTime,
		Duration:        duration,
		DurationMinutes: minutes,
		VehicleCategory: vehicle.Category,
		Icon:            vehicle.Icon,
		DisplayNumber:   raw.Line.Designation,
		Operator:        raw.Line.Operator,
	}, true
}

// Board is the combined nearest-stop view: the resolved stop and its
// normalized departures, as one refresh unit.
type Board struct {
	Stop       domain.Stop                 `json:"stop"`
	Departures []domain.CanonicalDeparture `json:"departures"`
}

// CoordinateBoard resolves a coordinate and fetches that stop's board in one
// call. Used by the refresh scheduler and the one-shot CLI.
type CoordinateBoard struct {
	Stops      *StopResolver
	Departures *DepartureService
}

// ForCoordinate resolves the nearest stop and returns its board. Propagates
// ErrNoStopNearby and ErrNoDepartures unchanged.
func (c *CoordinateBoard) ForCoordinate(ctx context.Context, coord domain.Coordinate) (Board, error) {
	stop, err := c.Stops.ResolveNearest(ctx, coord)
	if err != nil {
		return Board{}, err
	}
	departures, err := c.Departures.Board(ctx, stop.ID)
	if err != nil {
		return Board{}, err
	}
	return Board{Stop: stop, Departures: departures}, nil
}
