package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viatrafik/nearby/internal/domain"
	"github.com/viatrafik/nearby/internal/observability"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubStopSource struct {
	stops     []domain.RawStop
	err       error
	gotCoord  domain.Coordinate
	gotMax    int
	callCount int
}

func (s *stubStopSource) NearbyStops(_ context.Context, coord domain.Coordinate, maxResults int) ([]domain.RawStop, error) {
	s.callCount++
	s.gotCoord = coord
	s.gotMax = maxResults
	return s.stops, s.err
}

func TestResolveNearestReturnsClosestStop(t *testing.T) {
	source := &stubStopSource{stops: []domain.RawStop{
		{ID: "9192", Name: "Slussen", Lat: 59.3201, Lon: 18.0719},
	}}
	health := NewHealth()
	resolver := NewStopResolver(source, health, testLogger(), observability.NewMetricsForTesting())

	stop, err := resolver.ResolveNearest(context.Background(), domain.Coordinate{Lat: 59.3203, Lng: 18.0710})
	require.NoError(t, err)

	assert.Equal(t, domain.Stop{ID: "9192", Name: "Slussen", Lat: 59.3201, Lng: 18.0719}, stop)
	assert.Equal(t, 1, source.gotMax, "resolution asks for a single candidate")
	assert.NoError(t, health.CheckReadiness(context.Background()))
}

func TestResolveNearestNoStopInScope(t *testing.T) {
	source := &stubStopSource{}
	resolver := NewStopResolver(source, nil, testLogger(), observability.NewMetricsForTesting())

	_, err := resolver.ResolveNearest(context.Background(), domain.Coordinate{Lat: 67.85, Lng: 20.22})
	assert.ErrorIs(t, err, domain.ErrNoStopNearby)
}

func TestResolveNearestInvalidCoordinate(t *testing.T) {
	source := &stubStopSource{}
	resolver := NewStopResolver(source, nil, testLogger(), observability.NewMetricsForTesting())

	_, err := resolver.ResolveNearest(context.Background(), domain.Coordinate{Lat: 91, Lng: 18})
	assert.ErrorIs(t, err, domain.ErrInvalidCoordinate)
	assert.Equal(t, 0, source.callCount, "invalid input must not reach the provider")
}

func TestResolveNearestUpstreamFailure(t *testing.T) {
	upErr := &domain.UpstreamError{Provider: "transit", Status: 503, Err: errors.New("unavailable")}
	source := &stubStopSource{err: upErr}
	health := NewHealth()
	resolver := NewStopResolver(source, health, testLogger(), observability.NewMetricsForTesting())

	_, err := resolver.ResolveNearest(context.Background(), domain.Coordinate{Lat: 59.33, Lng: 18.06})
	require.Error(t, err)
	assert.True(t, domain.IsUpstreamError(err))
	assert.Error(t, health.CheckReadiness(context.Background()), "a failed call must not mark the service ready")
}
