// Package service holds the normalization core: nearest-stop resolution,
// departure-board enrichment, and incident classification. Adapters decode
// provider payloads as-is; everything canonical is produced here.
package service

import (
	"context"
	"log/slog"

	"github.com/viatrafik/nearby/internal/domain"
	"github.com/viatrafik/nearby/internal/observability"
)

// StopSource answers nearest-stop queries against the transit provider.
type StopSource interface {
	NearbyStops(ctx context.Context, coord domain.Coordinate, maxResults int) ([]domain.RawStop, error)
}

// StopResolver resolves a coordinate to its single nearest transit stop.
type StopResolver struct {
	source  StopSource
	health  *Health
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewStopResolver creates a StopResolver. health may be nil.
func NewStopResolver(source StopSource, health *Health, logger *slog.Logger, metrics *observability.Metrics) *StopResolver {
	return &StopResolver{
		source:  source,
		health:  health,
		logger:  logger,
		metrics: metrics,
	}
}

// ResolveNearest returns the closest stop to coord, trusting the provider's
// distance ordering. Returns ErrInvalidCoordinate without any upstream call
// for out-of-range input, and ErrNoStopNearby when the provider finds nothing
// in scope.
func (r *StopResolver) ResolveNearest(ctx context.Context, coord domain.Coordinate) (domain.Stop, error) {
	if !coord.Valid() {
		return domain.Stop{}, domain.ErrInvalidCoordinate
	}

	stops, err := r.source.NearbyStops(ctx, coord, 1)
	if err != nil {
		r.metrics.StopLookups.WithLabelValues("error").Inc()
		return domain.Stop{}, err
	}
	r.health.MarkReady()

	if len(stops) == 0 {
		r.metrics.StopLookups.WithLabelValues("none").Inc()
		r.logger.Info("no stop nearby", "lat", coord.Lat, "lng", coord.Lng)
		return domain.Stop{}, domain.ErrNoStopNearby
	}
	r.metrics.StopLookups.WithLabelValues("found").Inc()

	raw := stops[0]
	return domain.Stop{
		ID:   raw.ID,
		Name: raw.Name,
		Lat:  raw.Lat,
		Lng:  raw.Lon,
	}, nil
}
