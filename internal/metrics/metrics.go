// Package metrics provides Prometheus instrumentation for the service layer.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all collectors. A nil *Metrics is a no-op so instrumentation
// can be omitted in tests.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpInFlight prometheus.Gauge

	campaignsCreated prometheus.Counter
	donations        prometheus.Counter
	refunds          prometheus.Counter
	transfersFailed  prometheus.Counter
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "escrowd_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"service", "method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "escrowd_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"service", "method", "path"}),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "escrowd_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		}),
		campaignsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "escrowd_campaigns_created_total",
			Help: "Total number of campaigns created",
		}),
		donations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "escrowd_donations_total",
			Help: "Total number of accepted donations",
		}),
		refunds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "escrowd_refunds_total",
			Help: "Total number of refunds issued",
		}),
		transfersFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "escrowd_transfers_failed_total",
			Help: "Total number of failed external transfers",
		}),
	}

	registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.httpInFlight,
		m.campaignsCreated,
		m.donations,
		m.refunds,
		m.transfersFailed,
	)
	return m
}

// Handler returns the /metrics endpoint handler.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records one completed HTTP request.
func (m *Metrics) RecordHTTPRequest(service, method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(service, method, path, status).Inc()
	m.httpDuration.WithLabelValues(service, method, path).Observe(duration.Seconds())
}

// IncrementInFlight increments the in-flight request gauge.
func (m *Metrics) IncrementInFlight() {
	if m == nil {
		return
	}
	m.httpInFlight.Inc()
}

// DecrementInFlight decrements the in-flight request gauge.
func (m *Metrics) DecrementInFlight() {
	if m == nil {
		return
	}
	m.httpInFlight.Dec()
}

// IncCampaignsCreated counts an accepted campaign creation.
func (m *Metrics) IncCampaignsCreated() {
	if m == nil {
		return
	}
	m.campaignsCreated.Inc()
}

// IncDonations counts an accepted donation.
func (m *Metrics) IncDonations() {
	if m == nil {
		return
	}
	m.donations.Inc()
}

// IncRefunds counts an issued refund.
func (m *Metrics) IncRefunds() {
	if m == nil {
		return
	}
	m.refunds.Inc()
}

// IncTransfersFailed counts a failed external transfer.
func (m *Metrics) IncTransfersFailed() {
	if m == nil {
		return
	}
	m.transfersFailed.Inc()
}
