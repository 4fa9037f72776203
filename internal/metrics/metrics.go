// Package metrics registers the Prometheus instruments for the backend.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the registered instruments. One instance is created at
// startup and shared by middleware and services.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	PaymentsApplied     prometheus.Counter
	PaymentsClamped     prometheus.Counter
	RecurringCandidates prometheus.Counter
	EmailCandidates     prometheus.Counter
	InsightAIFallbacks  prometheus.Counter
}

// New creates and registers all instruments on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "billport_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "billport_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		PaymentsApplied: factory.NewCounter(prometheus.CounterOpts{
			Name: "billport_payments_applied_total",
			Help: "Payments successfully applied to bills.",
		}),
		PaymentsClamped: factory.NewCounter(prometheus.CounterOpts{
			Name: "billport_payments_clamped_total",
			Help: "Payments that were clamped to the bill's remaining balance.",
		}),
		RecurringCandidates: factory.NewCounter(prometheus.CounterOpts{
			Name: "billport_recurring_candidates_total",
			Help: "Recurring-bill candidates returned by the detector.",
		}),
		EmailCandidates: factory.NewCounter(prometheus.CounterOpts{
			Name: "billport_email_candidates_total",
			Help: "Email bill candidates surfaced above the confidence threshold.",
		}),
		InsightAIFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "billport_insight_ai_fallbacks_total",
			Help: "Insight requests that fell back from the AI path to the deterministic one.",
		}),
	}
}

// Handler exposes the registry for the /metrics route.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
