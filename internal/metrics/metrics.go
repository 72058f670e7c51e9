// Package metrics exposes form session activity as Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-formflow/pkg/session"
)

const namespace = "formflow"

// Collectors groups the session metrics. Register them once per process.
type Collectors struct {
	registry *prometheus.Registry

	attempts  *prometheus.CounterVec
	results   *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	invalid   *prometheus.CounterVec
	decisions *prometheus.CounterVec
	inflight  *prometheus.GaugeVec
}

// New registers the collectors on a fresh registry, along with the Go and
// process collectors.
func New() *Collectors {
	c := &Collectors{
		registry: prometheus.NewRegistry(),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submit_attempts_total",
			Help:      "Submit calls by form and status (invalid, started, ignored).",
		}, []string{"form", "status"}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submit_results_total",
			Help:      "Resolved submissions by form and result.",
		}, []string{"form", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "submit_duration_seconds",
			Help:      "Time spent in the external submitter.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"form"}),
		invalid: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_errors_total",
			Help:      "Fields that blocked a submit, by form and field.",
		}, []string{"form", "field"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "navigation_decisions_total",
			Help:      "Navigation decisions by form and outcome.",
		}, []string{"form", "decision"}),
		inflight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "submissions_in_flight",
			Help:      "Submissions currently waiting on the submitter.",
		}, []string{"form"}),
	}
	c.registry.MustRegister(
		c.attempts, c.results, c.duration, c.invalid, c.decisions, c.inflight,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry returns the underlying registry.
func (c *Collectors) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Hook records session events.
func (c *Collectors) Hook() session.Hook {
	return session.HookFunc(c.observe)
}

func (c *Collectors) observe(ev session.Event) {
	form := ev.FormID
	switch ev.Kind {
	case session.EventIgnored:
		c.attempts.WithLabelValues(form, string(session.AttemptIgnored)).Inc()
	case session.EventDecision:
		c.decisions.WithLabelValues(form, ev.Decision.String()).Inc()
	case session.EventTransition:
		switch ev.To {
		case session.StateInvalid:
			c.attempts.WithLabelValues(form, string(session.AttemptInvalid)).Inc()
			for field := range ev.Errors {
				c.invalid.WithLabelValues(form, field).Inc()
			}
		case session.StateSubmitting:
			c.attempts.WithLabelValues(form, string(session.AttemptStarted)).Inc()
			c.inflight.WithLabelValues(form).Inc()
		case session.StateSuccess, session.StateFailed:
			result := "success"
			if ev.To == session.StateFailed {
				result = "failure"
			}
			c.results.WithLabelValues(form, result).Inc()
			c.duration.WithLabelValues(form).Observe(ev.Duration.Seconds())
			c.inflight.WithLabelValues(form).Dec()
		}
	}
}
