package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// normalization core.
type Metrics struct {
	// Upstream client metrics.
	UpstreamRequests *prometheus.CounterVec   // labels: provider={transit,traffic}, outcome={success,error}
	UpstreamDuration *prometheus.HistogramVec // labels: provider={transit,traffic}

	// Normalizer metrics.
	StopLookups              *prometheus.CounterVec // labels: outcome={found,none,error}
	DeparturesNormalized     prometheus.Counter
	DeparturesDropped        prometheus.Counter // unparseable departure timestamp
	IncidentsNormalized      prometheus.Counter
	IncidentsDroppedGeometry prometheus.Counter

	// Refresh scheduler metrics.
	RefreshTicks        prometheus.Counter
	RefreshTicksSkipped prometheus.Counter // ticks dropped because a fetch was in flight
	ActiveSubscriptions prometheus.Gauge
}

// NewMetrics creates and registers all core metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nearby",
			Name:      "upstream_requests_total",
			Help:      "Upstream provider requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nearby",
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream provider request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"provider"}),
		StopLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nearby",
			Name:      "stop_lookups_total",
			Help:      "Nearest-stop resolutions by outcome.",
		}, []string{"outcome"}),
		DeparturesNormalized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nearby",
			Name:      "departures_normalized_total",
			Help:      "Canonical departure records produced.",
		}),
		DeparturesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nearby",
			Name:      "departures_dropped_total",
			Help:      "Raw departures dropped for an unparseable departure timestamp.",
		}),
		IncidentsNormalized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nearby",
			Name:      "incidents_normalized_total",
			Help:      "Canonical incident records produced.",
		}),
		IncidentsDroppedGeometry: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nearby",
			Name:      "incidents_dropped_geometry_total",
			Help:      "Raw incidents dropped because geometry extraction failed.",
		}),
		RefreshTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nearby",
			Name:      "refresh_ticks_total",
			Help:      "Refresh fetches executed across all subscriptions.",
		}),
		RefreshTicksSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nearby",
			Name:      "refresh_ticks_skipped_total",
			Help:      "Refresh ticks skipped because the previous fetch was still in flight.",
		}),
		ActiveSubscriptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nearby",
			Name:      "refresh_active_subscriptions",
			Help:      "Currently active refresh subscriptions.",
		}),
	}

	prometheus.MustRegister(
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.StopLookups,
		m.DeparturesNormalized,
		m.DeparturesDropped,
		m.IncidentsNormalized,
		m.IncidentsDroppedGeometry,
		m.RefreshTicks,
		m.RefreshTicksSkipped,
		m.ActiveSubscriptions,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		UpstreamRequests:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "nearby", Name: "upstream_requests_total"}, []string{"provider", "outcome"}),
		UpstreamDuration:         prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "nearby", Name: "upstream_request_duration_seconds"}, []string{"provider"}),
		StopLookups:              prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "nearby", Name: "stop_lookups_total"}, []string{"outcome"}),
		DeparturesNormalized:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "nearby", Name: "departures_normalized_total"}),
		DeparturesDropped:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "nearby", Name: "departures_dropped_total"}),
		IncidentsNormalized:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "nearby", Name: "incidents_normalized_total"}),
		IncidentsDroppedGeometry: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "nearby", Name: "incidents_dropped_geometry_total"}),
		RefreshTicks:             prometheus.NewCounter(prometheus.CounterOpts{Namespace: "nearby", Name: "refresh_ticks_total"}),
		RefreshTicksSkipped:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "nearby", Name: "refresh_ticks_skipped_total"}),
		ActiveSubscriptions:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "nearby", Name: "refresh_active_subscriptions"}),
	}
}
