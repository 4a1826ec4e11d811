// Package traffic is the HTTP client for the road-incident provider. The
// provider takes an XML query envelope POSTed to a JSON endpoint and answers
// with situations that nest one or more deviations; the client flattens the
// nesting and returns raw deviations untouched.
package traffic

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

const provider = "traffic"

// situationQuery is the provider's query format: authentication inline,
// server-side radius filter around a WGS-84 center (longitude first), and a
// creation-time recency bound.
const situationQuery = `<REQUEST>
  <LOGIN authenticationkey="%s" />
  <QUERY objecttype="Situation" schemaversion="1.5">
    <FILTER>
      <WITHIN name="Deviation.Geometry.Point.WGS84" shape="center" value="%s %s" radius="%dm" />
      <GT name="Deviation.CreationTime" value="%s" />
    </FILTER>
    <INCLUDE>Deviation.Id</INCLUDE>
    <INCLUDE>Deviation.Header</INCLUDE>
    <INCLUDE>Deviation.Message</INCLUDE>
    <INCLUDE>Deviation.MessageType</INCLUDE>
    <INCLUDE>Deviation.Priority</INCLUDE>
    <INCLUDE>Deviation.RoadNumber</INCLUDE>
    <INCLUDE>Deviation.StartTime</INCLUDE>
    <INCLUDE>Deviation.EndTime</INCLUDE>
    <INCLUDE>Deviation.VersionTime</INCLUDE>
    <INCLUDE>Deviation.Geometry.Point.WGS84</INCLUDE>
  </QUERY>
</REQUEST>`

// Client queries the road-incident provider.
type Client struct {
	apiKey  string
	http    *resty.Client
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewClient creates a traffic client with a bounded per-call timeout and one
// retry on transient failure.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(1).
		SetRetryWaitTime(500 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		})

	return &Client{apiKey: apiKey, http: rc, logger: logger, metrics: metrics}
}

type envelope struct {
	Response struct {
		Result []struct {
			Situations []situation `json:"Situation"`
		} `json:"RESULT"`
	} `json:"RESPONSE"`
}

type situation struct {
	Deviations []domain.RawDeviation `json:"Deviation"`
}

// Situations fetches raw deviations within radiusMeters of coord created
// after since. The radius and recency filters run server-side.
func (c *Client) Situations(ctx context.Context, coord domain.Coordinate, radiusMeters int, since time.Time) ([]domain.RawDeviation, error) {
	body := fmt.Sprintf(situationQuery,
		c.apiKey,
		strconv.FormatFloat(coord.Lng, 'f', -1, 64),
		strconv.FormatFloat(coord.Lat, 'f', -1, 64),
		radiusMeters,
		since.UTC().Format(time.RFC3339),
	)

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/xml").
		SetBody(body).
		Post("/v2/data.json")

	c.metrics.UpstreamDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())

	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(provider, "error").Inc()
		return nil, &domain.UpstreamError{Provider: provider, Err: fmt.Errorf("situations: %w", err)}
	}
	if resp.IsError() {
		c.metrics.UpstreamRequests.WithLabelValues(provider, "error").Inc()
		c.logger.Warn("traffic request failed", "status", resp.StatusCode())
		return nil, &domain.UpstreamError{
			Provider: provider,
			Status:   resp.StatusCode(),
			Err:      fmt.Errorf("situations: %s", strings.TrimSpace(resp.String())),
		}
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(provider, "error").Inc()
		return nil, &domain.UpstreamError{Provider: provider, Err: fmt.Errorf("decode situations: %w", err)}
	}
	c.metrics.UpstreamRequests.WithLabelValues(provider, "success").Inc()

	var deviations []domain.RawDeviation
	for _, result := range env.Response.Result {
		for _, sit := range result.Situations {
			deviations = append(deviations, sit.Deviations...)
		}
	}
	return deviations, nil
}
