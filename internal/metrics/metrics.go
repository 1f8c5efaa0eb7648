// Package metrics defines the Prometheus collectors exported by the server.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "scoreline"

// Outcome labels for the mutations counter.
const (
	OutcomeApplied  = "applied"
	OutcomeRejected = "rejected"
)

// Metrics holds every collector the server updates.
type Metrics struct {
	ActiveSubscribers  prometheus.Gauge
	MessagesPublished  prometheus.Counter
	DroppedDeliveries  prometheus.Counter
	Mutations          *prometheus.CounterVec
	HTTPRequestSeconds *prometheus.HistogramVec
	HTTPRequestsTotal  *prometheus.CounterVec
	HTTPInFlight       prometheus.Gauge
}

// New creates and registers all collectors on the given registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ActiveSubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "active_subscribers",
			Help:      "Number of connected overlay subscribers.",
		}),
		MessagesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "messages_published_total",
			Help:      "Total number of match_update frames queued for subscribers.",
		}),
		DroppedDeliveries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "dropped_deliveries_total",
			Help:      "Total number of deliveries dropped because a subscriber could not keep up.",
		}),
		Mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "match",
			Name:      "mutations_total",
			Help:      "Total number of match state mutations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		HTTPRequestSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status_code"}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status_code"}),
		HTTPInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of HTTP requests currently being processed.",
		}),
	}

	reg.MustRegister(
		m.ActiveSubscribers,
		m.MessagesPublished,
		m.DroppedDeliveries,
		m.Mutations,
		m.HTTPRequestSeconds,
		m.HTTPRequestsTotal,
		m.HTTPInFlight,
	)
	return m
}

// RecordMutation counts one mutation attempt.
func (m *Metrics) RecordMutation(operation string, err error) {
	outcome := OutcomeApplied
	if err != nil {
		outcome = OutcomeRejected
	}
	m.Mutations.WithLabelValues(operation, outcome).Inc()
}
