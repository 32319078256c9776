// Package metrics exposes the Prometheus collectors used across the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the service collectors. A nil *Metrics is valid and records
// nothing, so components can be built without metrics in tests.
type Metrics struct {
	registry *prometheus.Registry

	// Labels: method, route, status_code
	HTTPRequestCounter  *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Labels: operation (negotiate|criteria|filters|rank|outreach), status (success|error)
	LLMRequestCounter  *prometheus.CounterVec
	LLMRequestDuration *prometheus.HistogramVec

	// Labels: decision, recommendation
	AgentDecisions *prometheus.CounterVec

	// Labels: to
	InquiryTransitions *prometheus.CounterVec

	IdleClosed prometheus.Counter

	// Labels: platform, status
	SocialSyncs *prometheus.CounterVec
}

// New registers all collectors on reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		HTTPRequestCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "collab_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status_code"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "collab_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}, []string{"method", "route", "status_code"}),
		LLMRequestCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "collab_llm_requests_total",
			Help: "LLM requests by operation and status.",
		}, []string{"operation", "status"}),
		LLMRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "collab_llm_request_duration_seconds",
			Help:    "LLM request latency.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"operation"}),
		AgentDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "collab_agent_decisions_total",
			Help: "Negotiation agent decisions after guardrails.",
		}, []string{"decision", "recommendation"}),
		InquiryTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "collab_inquiry_transitions_total",
			Help: "Inquiry status transitions by target status.",
		}, []string{"to"}),
		IdleClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "collab_idle_inquiries_closed_total",
			Help: "Inquiries closed by the idle conversation job.",
		}),
		SocialSyncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "collab_social_syncs_total",
			Help: "Social account stat refreshes by platform and status.",
		}, []string{"platform", "status"}),
	}
	reg.MustRegister(
		m.HTTPRequestCounter, m.HTTPRequestDuration,
		m.LLMRequestCounter, m.LLMRequestDuration,
		m.AgentDecisions, m.InquiryTransitions, m.IdleClosed, m.SocialSyncs,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.HTTPRequestCounter.WithLabelValues(method, route, code).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route, code).Observe(d.Seconds())
}

func (m *Metrics) ObserveLLM(operation string, err error, d time.Duration) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.LLMRequestCounter.WithLabelValues(operation, status).Inc()
	m.LLMRequestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *Metrics) AgentDecision(decision, recommendation string) {
	if m == nil {
		return
	}
	m.AgentDecisions.WithLabelValues(decision, recommendation).Inc()
}

func (m *Metrics) InquiryTransition(to string) {
	if m == nil {
		return
	}
	m.InquiryTransitions.WithLabelValues(to).Inc()
}

func (m *Metrics) IdleClosedAdd(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.IdleClosed.Add(float64(n))
}

func (m *Metrics) SocialSync(platform string, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.SocialSyncs.WithLabelValues(platform, status).Inc()
}
