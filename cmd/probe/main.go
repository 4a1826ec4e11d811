// Command probe runs one resolution round trip against the live providers
// and prints the canonical result as JSON. Useful for checking credentials,
// provider reachability, and normalization output without starting the
// service.
//
// Usage:
//
//	go run ./cmd/probe -lat 59.3293 -lng 18.0686
//	go run ./cmd/probe -lat 59.3293 -lng 18.0686 -radius 5000 -incidents-only
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/viatrafik/nearby/internal/adapter/traffic"
	"github.com/viatrafik/nearby/internal/adapter/transit"
	"github.com/viatrafik/nearby/internal/config"
	"github.com/viatrafik/nearby/internal/domain"
	"github.com/viatrafik/nearby/internal/mapping"
	"github.com/viatrafik/nearby/internal/observability"
	"github.com/viatrafik/nearby/internal/service"
)

func main() {
	lat := flag.Float64("lat", 0, "latitude of the point to probe")
	lng := flag.Float64("lng", 0, "longitude of the point to probe")
	radius := flag.Int("radius", 0, "incident search radius in meters (0 = configured default)")
	incidentsOnly := flag.Bool("incidents-only", false, "skip stop resolution, fetch incidents only")
	flag.Parse()

	coord := domain.Coordinate{Lat: *lat, Lng: *lng}
	if !coord.Valid() || (*lat == 0 && *lng == 0) {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(coord, *radius, *incidentsOnly); code != 0 {
		os.Exit(code)
	}
}

func run(coord domain.Coordinate, radius int, incidentsOnly bool) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load config: %v\n", err)
		return 1
	}

	tables, err := mapping.Load(cfg.MappingFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load mapping tables: %v\n", err)
		return 1
	}

	// Probe output goes to stdout; keep client logging out of the way.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()
	clock := clockwork.NewRealClock()

	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.UpstreamTimeout)
	defer cancel()

	out := map[string]any{
		"coordinate": coord,
		"probedAt":   clock.Now().UTC().Format(time.RFC3339),
	}

	if !incidentsOnly {
		transitClient := transit.NewClient(cfg.TransitBaseURL, cfg.UpstreamTimeout, logger, metrics)
		boards := &service.CoordinateBoard{
			Stops:      service.NewStopResolver(transitClient, nil, logger, metrics),
			Departures: service.NewDepartureService(transitClient, tables, nil, logger, metrics, cfg.DeparturesLimit, cfg.DeparturesWindow),
		}

		board, err := boards.ForCoordinate(ctx, coord)
		switch {
		case errors.Is(err, domain.ErrNoStopNearby):
			out["board"] = "no stop nearby"
		case errors.Is(err, domain.ErrNoDepartures):
			out["board"] = "no current departures"
		case err != nil:
			fmt.Fprintf(os.Stderr, "FATAL: board: %v\n", err)
			return 1
		default:
			out["board"] = board
		}
	}

	trafficClient := traffic.NewClient(cfg.TrafficBaseURL, cfg.TrafficAPIKey, cfg.UpstreamTimeout, logger, metrics)
	incidentSvc := service.NewIncidentService(trafficClient, tables, nil, clock, logger, metrics, cfg.IncidentRadiusMeters, cfg.IncidentMaxAge)

	incidents, err := incidentSvc.Nearby(ctx, coord, radius)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: incidents: %v\n", err)
		return 1
	}
	out["incidents"] = incidents

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: encode output: %v\n", err)
		return 1
	}
	return 0
}
