package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

// Metrics groups the collectors exposed on /metrics.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests  *prometheus.CounterVec
	HTTPDuration  *prometheus.HistogramVec
	Payments      prometheus.Counter
	AmountApplied prometheus.Counter
	Unadjusted    prometheus.Counter
	Penalties     prometheus.Counter
	Conflicts     prometheus.Counter
}

// New registers the collectors on a fresh registry together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "emiledger",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route template, method and status code.",
		}, []string{"route", "method", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "emiledger",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route template.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		Payments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "emiledger",
			Name:      "payments_total",
			Help:      "Payments recorded against installments, settlements included.",
		}),
		AmountApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "emiledger",
			Name:      "payment_applied_amount_total",
			Help:      "Sum of payment amounts applied to installments.",
		}),
		Unadjusted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "emiledger",
			Name:      "payment_unadjusted_amount_total",
			Help:      "Sum of payment amounts that exceeded the open balance.",
		}),
		Penalties: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "emiledger",
			Name:      "penalties_total",
			Help:      "Penalties added to installments.",
		}),
		Conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "emiledger",
			Name:      "update_conflicts_total",
			Help:      "Installment updates rejected after exhausting version retries.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests, m.HTTPDuration,
		m.Payments, m.AmountApplied, m.Unadjusted, m.Penalties, m.Conflicts,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObservePayment counts one payment and its split.
func (m *Metrics) ObservePayment(applied, unadjusted decimal.Decimal) {
	m.Payments.Inc()
	m.AmountApplied.Add(applied.InexactFloat64())
	m.Unadjusted.Add(unadjusted.InexactFloat64())
}

func (m *Metrics) ObserveRequest(route, method string, code int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.HTTPDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}
