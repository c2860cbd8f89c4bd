// Package observability holds the Prometheus metrics exported on /metrics.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Billing metrics
	WebhookEventsTotal     *prometheus.CounterVec
	BillingSessionsTotal   *prometheus.CounterVec
	EntitlementWritesTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics on registry. Go runtime and
// process collectors are registered too.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gallery_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gallery_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		WebhookEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gallery_webhook_events_total",
				Help: "Billing webhook deliveries by event type and outcome",
			},
			[]string{"event_type", "outcome"},
		),
		BillingSessionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gallery_billing_sessions_total",
				Help: "Checkout and portal session requests by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		EntitlementWritesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gallery_entitlement_writes_total",
				Help: "Entitlement record writes by resulting subscription status",
			},
			[]string{"status"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.WebhookEventsTotal,
		m.BillingSessionsTotal,
		m.EntitlementWritesTotal,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveWebhook counts one webhook delivery.
func (m *Metrics) ObserveWebhook(eventType, outcome string) {
	if m == nil {
		return
	}
	if eventType == "" {
		eventType = "unknown"
	}
	m.WebhookEventsTotal.WithLabelValues(eventType, outcome).Inc()
}

// ObserveEntitlementWrite counts one entitlement record write.
func (m *Metrics) ObserveEntitlementWrite(status string) {
	if m == nil {
		return
	}
	m.EntitlementWritesTotal.WithLabelValues(status).Inc()
}

// ObserveSession counts one checkout or portal session request.
func (m *Metrics) ObserveSession(kind, outcome string) {
	if m == nil {
		return
	}
	m.BillingSessionsTotal.WithLabelValues(kind, outcome).Inc()
}
