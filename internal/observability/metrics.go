package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the dashboard engine.
type Metrics struct {
	// Provider metrics.
	ProviderRequests *prometheus.CounterVec   // labels: endpoint, outcome={success,not_found,error}
	ProviderDuration *prometheus.HistogramVec // labels: endpoint

	// StaleResponses counts responses dropped because a newer request for the
	// same slot was issued before they arrived.
	StaleResponses *prometheus.CounterVec // labels: slot

	ChartRebuilds prometheus.Counter
	OverlayLayers prometheus.Gauge
	Alerts        prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ProviderRequests,
		m.ProviderDuration,
		m.StaleResponses,
		m.ChartRebuilds,
		m.OverlayLayers,
		m.Alerts,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics so tests can build as
// many as they like without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_dashboard",
			Name:      "provider_requests_total",
			Help:      "Upstream API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "weather_dashboard",
			Name:      "provider_request_duration_seconds",
			Help:      "Upstream API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		StaleResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_dashboard",
			Name:      "stale_responses_total",
			Help:      "Responses discarded because a newer request superseded them.",
		}, []string{"slot"}),
		ChartRebuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_dashboard",
			Name:      "chart_rebuilds_total",
			Help:      "Temperature chart instances destroyed and recreated.",
		}),
		OverlayLayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weather_dashboard",
			Name:      "overlay_layers",
			Help:      "Weather overlay layers currently attached to the map.",
		}),
		Alerts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_dashboard",
			Name:      "alerts_total",
			Help:      "User-facing alerts raised.",
		}),
	}
}
