// Package metrics exposes Prometheus instrumentation for the simulation
// engine and the broadcast hub.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles all collectors on a private registry so tests can create
// independent instances.
type Metrics struct {
	Registry *prometheus.Registry

	TicksTotal   prometheus.Counter
	TickDuration prometheus.Histogram
	ActiveDrones prometheus.Gauge
	AlertsTotal  *prometheus.CounterVec
	WSClients    prometheus.Gauge
}

// New creates a registry with all simulator collectors registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		TicksTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "borderops_ticks_total",
			Help: "Completed simulation ticks.",
		}),
		TickDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "borderops_tick_duration_seconds",
			Help:    "Wall time spent per simulation tick.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		ActiveDrones: factory.NewGauge(prometheus.GaugeOpts{
			Name: "borderops_active_drones",
			Help: "Drones currently tracked in the registry.",
		}),
		AlertsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "borderops_alerts_total",
			Help: "Alerts generated, by type.",
		}, []string{"type"}),
		WSClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "borderops_ws_clients",
			Help: "Connected websocket subscribers.",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
