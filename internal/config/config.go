// Package config loads service settings from environment variables, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all service settings.
type Config struct {
	TransitBaseURL string `validate:"required,url"`
	TrafficBaseURL string `validate:"required,url"`
	TrafficAPIKey  string

	HTTPAddr        string        `validate:"required"`
	LogLevel        string        `validate:"oneof=debug info warn error"`
	LogFormat       string        `validate:"oneof=json text"`
	ShutdownTimeout time.Duration `validate:"gt=0"`

	// Upstream call bounds.
	UpstreamTimeout  time.Duration `validate:"gt=0"`
	DeparturesLimit  int           `validate:"min=1,max=50"`
	DeparturesWindow time.Duration `validate:"gt=0"`

	// Incident query policy. The recency window is configurable pending a
	// settled product decision on how far back incidents stay interesting.
	IncidentRadiusMeters int           `validate:"min=100,max=100000"`
	IncidentMaxAge       time.Duration `validate:"gt=0"`

	// Refresh subscription defaults. RefreshLat/RefreshLng optionally pin a
	// standing subscription for a monitored area; both zero means none.
	RefreshInterval time.Duration `validate:"gt=0"`
	RefreshLat      float64
	RefreshLng      float64

	// MappingFile overrides the embedded vehicle/incident lookup tables.
	MappingFile string
}

// Load reads configuration from the environment, applying defaults where
// unset, then validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env is optional

	cfg := &Config{
		TransitBaseURL: envOrDefault("TRANSIT_BASE_URL", "https://transport.integration.sl.se"),
		TrafficBaseURL: envOrDefault("TRAFFIC_BASE_URL", "https://api.trafikinfo.trafikverket.se"),
		TrafficAPIKey:  os.Getenv("TRAFFIC_API_KEY"),
		HTTPAddr:       envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:       envOrDefault("LOG_LEVEL", "info"),
		LogFormat:      envOrDefault("LOG_FORMAT", "json"),
		MappingFile:    os.Getenv("MAPPING_FILE"),
	}

	var err error
	if cfg.ShutdownTimeout, err = durationEnv("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.UpstreamTimeout, err = durationEnv("UPSTREAM_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.DeparturesWindow, err = durationEnv("DEPARTURES_WINDOW", 60*time.Minute); err != nil {
		return nil, err
	}
	if cfg.IncidentMaxAge, err = durationEnv("INCIDENT_MAX_AGE", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = durationEnv("REFRESH_INTERVAL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.DeparturesLimit, err = intEnv("DEPARTURES_LIMIT", 8); err != nil {
		return nil, err
	}
	if cfg.IncidentRadiusMeters, err = intEnv("INCIDENT_RADIUS_METERS", 10000); err != nil {
		return nil, err
	}
	if cfg.RefreshLat, err = floatEnv("REFRESH_LAT", 0); err != nil {
		return nil, err
	}
	if cfg.RefreshLng, err = floatEnv("REFRESH_LNG", 0); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// HasRefreshCoordinate reports whether a standing refresh subscription is
// configured.
func (c *Config) HasRefreshCoordinate() bool {
	return c.RefreshLat != 0 || c.RefreshLng != 0
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func intEnv(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func floatEnv(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return f, nil
}
