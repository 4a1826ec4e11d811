package httpapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viatrafik/nearby/internal/adapter/httpapi"
	"github.com/viatrafik/nearby/internal/domain"
	"github.com/viatrafik/nearby/internal/service"
)

type mockBoards struct {
	board service.Board
	err   error
}

func (m *mockBoards) ForCoordinate(_ context.Context, _ domain.Coordinate) (service.Board, error) {
	return m.board, m.err
}

type mockIncidents struct {
	incidents []domain.CanonicalIncident
	err       error
	gotRadius int
}

func (m *mockIncidents) Nearby(_ context.Context, _ domain.Coordinate, radiusMeters int) ([]domain.CanonicalIncident, error) {
	m.gotRadius = radiusMeters
	return m.incidents, m.err
}

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

func newTestServer(boards *mockBoards, incidents *mockIncidents, readyErr error) *httpapi.Server {
	if boards == nil {
		boards = &mockBoards{}
	}
	if incidents == nil {
		incidents = &mockIncidents{}
	}
	return httpapi.NewServer(":0", boards, incidents, &mockReadiness{err: readyErr}, slog.Default())
}

func doRequest(srv *httpapi.Server, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestDeparturesOK(t *testing.T) {
	boards := &mockBoards{board: service.Board{
		Stop: domain.Stop{ID: "9192", Name: "Slussen", Lat: 59.3201, Lng: 18.0719},
		Departures: []domain.CanonicalDeparture{
			{ArrivalStop: "Ropsten", DepartureTime: "08:03", VehicleCategory: domain.VehicleMetro},
		},
	}}
	srv := newTestServer(boards, nil, nil)

	rec := doRequest(srv, "/api/departures?lat=59.3203&lng=18.0710")
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "ok", body["status"])
	stop := body["stop"].(map[string]any)
	assert.Equal(t, "Slussen", stop["name"])
	assert.Len(t, body["departures"], 1)
}

func TestDeparturesNoStopIsNotFoundNot404(t *testing.T) {
	boards := &mockBoards{err: domain.ErrNoStopNearby}
	srv := newTestServer(boards, nil, nil)

	rec := doRequest(srv, "/api/departures?lat=67.85&lng=20.22")
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "not_found", body["status"])
	assert.Equal(t, "no stop nearby", body["reason"])
}

func TestDeparturesNoDepartures(t *testing.T) {
	boards := &mockBoards{err: domain.ErrNoDepartures}
	srv := newTestServer(boards, nil, nil)

	rec := doRequest(srv, "/api/departures?lat=59.33&lng=18.06")
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "not_found", body["status"])
	assert.Equal(t, "no current departures", body["reason"])
}

func TestDeparturesUpstreamFailureIs502(t *testing.T) {
	boards := &mockBoards{err: &domain.UpstreamError{Provider: "transit", Status: 503, Err: errors.New("unavailable")}}
	srv := newTestServer(boards, nil, nil)

	rec := doRequest(srv, "/api/departures?lat=59.33&lng=18.06")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "error", body["status"])
}

func TestDeparturesMissingParams(t *testing.T) {
	srv := newTestServer(nil, nil, nil)

	rec := doRequest(srv, "/api/departures?lat=59.33")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "error", body["status"])
}

func TestDeparturesOutOfRangeCoordinate(t *testing.T) {
	srv := newTestServer(nil, nil, nil)

	rec := doRequest(srv, "/api/departures?lat=91&lng=18")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIncidentsOK(t *testing.T) {
	incidents := &mockIncidents{incidents: []domain.CanonicalIncident{
		{ID: "d1", Type: "Accident", Severity: domain.SeverityHigh},
	}}
	srv := newTestServer(nil, incidents, nil)

	rec := doRequest(srv, "/api/incidents?lat=59.33&lng=18.06&radius=5000")
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Len(t, body["incidents"], 1)
	assert.Equal(t, 5000, incidents.gotRadius)
}

func TestIncidentsDefaultRadius(t *testing.T) {
	incidents := &mockIncidents{}
	srv := newTestServer(nil, incidents, nil)

	rec := doRequest(srv, "/api/incidents?lat=59.33&lng=18.06")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, incidents.gotRadius, "no radius parameter delegates the default to the service")
}

func TestIncidentsEmptyIsNotFound(t *testing.T) {
	srv := newTestServer(nil, &mockIncidents{}, nil)

	rec := doRequest(srv, "/api/incidents?lat=59.33&lng=18.06")
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "not_found", body["status"])
}

func TestIncidentsBadRadius(t *testing.T) {
	srv := newTestServer(nil, nil, nil)

	rec := doRequest(srv, "/api/incidents?lat=59.33&lng=18.06&radius=-5")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIncidentsUpstreamFailureIs502(t *testing.T) {
	incidents := &mockIncidents{err: &domain.UpstreamError{Provider: "traffic", Err: errors.New("timeout")}}
	srv := newTestServer(nil, incidents, nil)

	rec := doRequest(srv, "/api/incidents?lat=59.33&lng=18.06")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(nil, nil, nil)

	rec := doRequest(srv, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv := newTestServer(nil, nil, nil)

	rec := doRequest(srv, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv := newTestServer(nil, nil, fmt.Errorf("no successful upstream call yet"))

	rec := doRequest(srv, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "not ready", body["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(nil, nil, nil)

	rec := doRequest(srv, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
