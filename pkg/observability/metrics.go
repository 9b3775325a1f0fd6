package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/aretw0/writ/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the wizard collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	SectionVisits  *prometheus.CounterVec
	Completions    *prometheus.CounterVec
	Submissions    *prometheus.CounterVec
	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
	ActiveSessions prometheus.Gauge
}

// NewMetrics registers the collectors under the given namespace ("writ" when empty).
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "writ"
	}
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		SectionVisits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "section_visits_total",
			Help:      "Number of times a wizard section was entered.",
		}, []string{"wizard", "section"}),
		Completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wizard_completions_total",
			Help:      "Number of wizards advanced past their terminal section.",
		}, []string{"wizard"}),
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Contact submissions by outcome.",
		}, []string{"wizard", "outcome"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"method", "route", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Sessions held in the store at the last scrape.",
		}),
	}

	reg.MustRegister(
		m.SectionVisits,
		m.Completions,
		m.Submissions,
		m.HTTPRequests,
		m.HTTPDuration,
		m.ActiveSessions,
	)
	return m
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Hooks feeds the collectors from engine lifecycle events.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSectionEnter: func(_ context.Context, e *domain.SectionEvent) {
			m.SectionVisits.WithLabelValues(e.WizardID, e.SectionID).Inc()
		},
		OnComplete: func(_ context.Context, e *domain.SectionEvent) {
			m.Completions.WithLabelValues(e.WizardID).Inc()
		},
		OnSubmit: func(_ context.Context, e *domain.SubmitEvent) {
			outcome := "generated"
			if e.IsError {
				outcome = e.Stage + "_failed"
			}
			m.Submissions.WithLabelValues(e.WizardID, outcome).Inc()
		},
	}
}

// ObserveHTTP records one request.
func (m *Metrics) ObserveHTTP(method, route string, code int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
