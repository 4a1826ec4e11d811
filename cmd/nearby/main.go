package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/viatrafik/nearby/internal/adapter/httpapi"
	"github.com/viatrafik/nearby/internal/adapter/traffic"
	"github.com/viatrafik/nearby/internal/adapter/transit"
	"github.com/viatrafik/nearby/internal/config"
	"github.com/viatrafik/nearby/internal/domain"
	"github.com/viatrafik/nearby/internal/mapping"
	"github.com/viatrafik/nearby/internal/observability"
	"github.com/viatrafik/nearby/internal/refresh"
	"github.com/viatrafik/nearby/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	tables, err := mapping.Load(cfg.MappingFile)
	if err != nil {
		logger.Error("failed to load mapping tables", "error", err, "path", cfg.MappingFile)
		os.Exit(1)
	}

	clock := clockwork.NewRealClock()
	health := service.NewHealth()

	transitClient := transit.NewClient(cfg.TransitBaseURL, cfg.UpstreamTimeout, logger, metrics)
	trafficClient := traffic.NewClient(cfg.TrafficBaseURL, cfg.TrafficAPIKey, cfg.UpstreamTimeout, logger, metrics)

	resolver := service.NewStopResolver(transitClient, health, logger, metrics)
	departures := service.NewDepartureService(transitClient, tables, health, logger, metrics, cfg.DeparturesLimit, cfg.DeparturesWindow)
	incidents := service.NewIncidentService(trafficClient, tables, health, clock, logger, metrics, cfg.IncidentRadiusMeters, cfg.IncidentMaxAge)
	boards := &service.CoordinateBoard{Stops: resolver, Departures: departures}

	srv := httpapi.NewServer(cfg.HTTPAddr, boards, incidents, health, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// An optional standing subscription keeps one coordinate warm and logs
	// what each refresh found.
	var sub *refresh.Subscription
	if cfg.HasRefreshCoordinate() {
		scheduler := refresh.New(boards, incidents, clock, logger, metrics, cfg.IncidentRadiusMeters)
		coord := domain.Coordinate{Lat: cfg.RefreshLat, Lng: cfg.RefreshLng}
		sub, err = scheduler.Subscribe(ctx, coord, cfg.RefreshInterval, func(u refresh.Update) {
			if u.Err != nil {
				logger.Warn("refresh failed", "lat", u.Coordinate.Lat, "lng", u.Coordinate.Lng, "error", u.Err)
				return
			}
			logger.Info("refreshed",
				"stop", u.Board.Stop.Name,
				"departures", len(u.Board.Departures),
				"incidents", len(u.Incidents),
			)
		})
		if err != nil {
			logger.Error("failed to start refresh subscription", "error", err)
			os.Exit(1)
		}
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if sub != nil {
		sub.Cancel()
		select {
		case <-sub.Done():
		case <-time.After(cfg.ShutdownTimeout):
			logger.Warn("refresh subscription did not stop in time")
		}
	}

	logger.Info("shutdown complete")
}
