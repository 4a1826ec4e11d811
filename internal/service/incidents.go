package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/viatrafik/nearby/internal/domain"
	"github.com/viatrafik/nearby/internal/mapping"
	"github.com/viatrafik/nearby/internal/observability"
)

// IncidentSource reads raw deviations from the road-incident provider.
type IncidentSource interface {
	Situations(ctx context.Context, coord domain.Coordinate, radiusMeters int, since time.Time) ([]domain.RawDeviation, error)
}

// IncidentService normalizes raw deviations into canonical incidents.
type IncidentService struct {
	source        IncidentSource
	tables        *mapping.Tables
	health        *Health
	clock         clockwork.Clock
	logger        *slog.Logger
	metrics       *observability.Metrics
	defaultRadius int
	maxAge        time.Duration
}

// NewIncidentService creates an IncidentService. health may be nil; clock is
// injectable so the recency bound is testable.
func NewIncidentService(source IncidentSource, tables *mapping.Tables, health *Health, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics, defaultRadius int, maxAge time.Duration) *IncidentService {
	return &IncidentService{
		source:        source,
		tables:        tables,
		health:        health,
		clock:         clock,
		logger:        logger,
		metrics:       metrics,
		defaultRadius: defaultRadius,
		maxAge:        maxAge,
	}
}

// Nearby returns canonical incidents within radiusMeters of coord, with the
// recency window applied server-side. A non-positive radius falls back to the
// configured default. Records without extractable point geometry are dropped
// and counted; an empty result is a normal outcome, not an error.
func (s *IncidentService) Nearby(ctx context.Context, coord domain.Coordinate, radiusMeters int) ([]domain.CanonicalIncident, error) {
	if !coord.Valid() {
		return nil, domain.ErrInvalidCoordinate
	}
	if radiusMeters <= 0 {
		radiusMeters = s.defaultRadius
	}

	since := s.clock.Now().Add(-s.maxAge)
	raws, err := s.source.Situations(ctx, coord, radiusMeters, since)
	if err != nil {
		return nil, err
	}
	s.health.MarkReady()

	seen := make(map[string]struct{}, len(raws))
	incidents := make([]domain.CanonicalIncident, 0, len(raws))
	for _, raw := range raws {
		incident, ok := s.normalize(raw)
		if !ok {
			s.metrics.IncidentsDroppedGeometry.Inc()
			s.logger.Warn("dropping deviation without point geometry",
				"id", raw.ID,
				"message_type", raw.MessageType,
				"wgs84", raw.Geometry.Point.WGS84,
			)
			continue
		}
		// The provider repeats a deviation in every situation that
		// references it; keep the first occurrence.
		if _, dup := seen[incident.ID]; dup {
			continue
		}
		seen[incident.ID] = struct{}{}
		incidents = append(incidents, incident)
	}

	s.metrics.IncidentsNormalized.Add(float64(len(incidents)))
	return incidents, nil
}

// normalize converts one raw deviation. Geometry is the only hard
// requirement; every other field degrades to a zero value or sentinel.
func (s *IncidentService) normalize(raw domain.RawDeviation) (domain.CanonicalIncident, bool) {
	location, ok := domain.ExtractPoint(raw.Geometry.Point.WGS84)
	if !ok {
		return domain.CanonicalIncident{}, false
	}

	var startTime time.Time
	if t, ok := domain.ParseTimestamp(raw.StartTime); ok {
		startTime = t
	}
	var endTime *time.Time
	if t, ok := domain.ParseTimestamp(raw.EndTime); ok {
		endTime = &t
	}
	var modifiedTime time.Time
	if t, ok := domain.ParseTimestamp(raw.VersionTime); ok {
		modifiedTime = t
	}

	incidentType := s.tables.IncidentType(raw.MessageType)

	id := raw.ID
	if id == "" {
		id = domain.DeriveIncidentID(incidentType, location, startTime)
	}

	return domain.CanonicalIncident{
		ID:           id,
		Type:         incidentType,
		Title:        raw.Header,
		Description:  raw.Message,
		Location:     location,
		Severity:     domain.ClassifySeverity(raw.Priority),
		StartTime:    startTime,
		EndTime:      endTime,
		RoadNumber:   raw.RoadNumber,
		ModifiedTime: modifiedTime,
	}, true
}
