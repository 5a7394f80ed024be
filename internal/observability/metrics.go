package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the Prometheus collectors exported at /metrics.
type Metrics struct {
	Registry *prometheus.Registry

	reqTotal        *prometheus.CounterVec
	reqLatency      *prometheus.HistogramVec
	req5xxTotal     prometheus.Counter
	errorTotal      *prometheus.CounterVec
	policyDenials   *prometheus.CounterVec
	eventsPublished *prometheus.CounterVec
}

// NewMetrics registers collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		reqTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "http_requests_total", Help: "Total number of HTTP requests."},
			[]string{"route", "method", "status"},
		),
		reqLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		req5xxTotal: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "http_requests_5xx_total", Help: "Total number of HTTP 5xx responses."},
		),
		errorTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "helpdesk_errors_total", Help: "Error responses by code."},
			[]string{"route", "method", "code"},
		),
		policyDenials: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "helpdesk_policy_denials_total", Help: "Authorization policy denials."},
			[]string{"action", "reason"},
		),
		eventsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "helpdesk_events_published_total", Help: "Domain events forwarded to the broker."},
			[]string{"event_type", "result"},
		),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.reqTotal, m.reqLatency, m.req5xxTotal, m.errorTotal, m.policyDenials, m.eventsPublished,
	)
	return m
}

// RecordRequest observes one completed HTTP request.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.reqTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.reqLatency.WithLabelValues(route, method).Observe(duration.Seconds())
	if status >= 500 {
		m.req5xxTotal.Inc()
	}
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errorTotal.WithLabelValues(route, method, code).Inc()
}

// RecordPolicyDenial counts an evaluator refusal.
func (m *Metrics) RecordPolicyDenial(action, reason string) {
	if m == nil {
		return
	}
	m.policyDenials.WithLabelValues(action, reason).Inc()
}

// RecordEventPublished counts a broker publish attempt.
func (m *Metrics) RecordEventPublished(eventType string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.eventsPublished.WithLabelValues(eventType, result).Inc()
}
