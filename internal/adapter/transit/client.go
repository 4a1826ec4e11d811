// Package transit is the HTTP client for the transit provider: nearest-stop
// queries and stop-id departure boards. No business logic lives here; raw
// payloads are returned as decoded.
package transit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/viatrafik/nearby/internal/domain"
	"github.com/viatrafik/nearby/internal/observability"
)

const provider = "transit"

// Client queries the transit provider.
type Client struct {
	http    *resty.Client
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewClient creates a transit client with a bounded per-call timeout and one
// retry on transient failure. Application-level 4xx responses are final.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(1).
		SetRetryWaitTime(500 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		})

	return &Client{http: rc, logger: logger, metrics: metrics}
}

type nearbyResponse struct {
	Stops []domain.RawStop `json:"stops"`
}

// NearbyStops returns up to maxResults stop candidates around coord, closest
// first as ordered by the provider.
func (c *Client) NearbyStops(ctx context.Context, coord domain.Coordinate, maxResults int) ([]domain.RawStop, error) {
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"lat":   strconv.FormatFloat(coord.Lat, 'f', -1, 64),
			"lon":   strconv.FormatFloat(coord.Lng, 'f', -1, 64),
			"limit": strconv.Itoa(maxResults),
		}).
		Get("/v1/stops/nearby")
	if err := c.finish(start, "nearby stops", resp, err); err != nil {
		return nil, err
	}

	var out nearbyResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, &domain.UpstreamError{Provider: provider, Err: fmt.Errorf("decode nearby stops: %w", err)}
	}
	return out.Stops, nil
}

type departuresResponse struct {
	Departures []domain.RawDeparture `json:"departures"`
}

// Departures fetches the raw departure board for a stop, bounded to limit
// entries within the given forecast window.
func (c *Client) Departures(ctx context.Context, stopID string, limit int, window time.Duration) ([]domain.RawDeparture, error) {
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("stopID", stopID).
		SetQueryParams(map[string]string{
			"limit":    strconv.Itoa(limit),
			"forecast": strconv.Itoa(int(window.Minutes())),
		}).
		Get("/v1/stops/{stopID}/departures")
	if err := c.finish(start, "departures", resp, err); err != nil {
		return nil, err
	}

	var out departuresResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, &domain.UpstreamError{Provider: provider, Err: fmt.Errorf("decode departures: %w", err)}
	}
	return out.Departures, nil
}

// finish records metrics for the call and converts transport or status
// failures into a typed UpstreamError.
func (c *Client) finish(start time.Time, op string, resp *resty.Response, err error) error {
	c.metrics.UpstreamDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())

	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(provider, "error").Inc()
		return &domain.UpstreamError{Provider: provider, Err: fmt.Errorf("%s: %w", op, err)}
	}
	if resp.IsError() {
		c.metrics.UpstreamRequests.WithLabelValues(provider, "error").Inc()
		c.logger.Warn("transit request failed", "op", op, "status", resp.StatusCode())
		return &domain.UpstreamError{
			Provider: provider,
			Status:   resp.StatusCode(),
			Err:      fmt.Errorf("%s: %s", op, strings.TrimSpace(resp.String())),
		}
	}

	c.metrics.UpstreamRequests.WithLabelValues(provider, "success").Inc()
	return nil
}
