package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gatehouse-authz/gatehouse/internal/authz"
)

// Metrics collects Prometheus metrics for the decision engine.
type Metrics struct {
	registry       *prometheus.Registry
	handler        http.Handler
	decisionsTotal *prometheus.CounterVec
	errorsTotal    prometheus.Counter
	evalDuration   prometheus.Histogram
}

// NewMetrics initialises the registry and the engine metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gatehouse_decisions_total",
		Help: "Authorization decisions by verdict.",
	}, []string{"verdict"})
	errs := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gatehouse_evaluation_errors_total",
		Help: "Evaluations aborted by caller errors such as unknown principals.",
	})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "gatehouse_evaluation_duration_seconds",
		Help:    "Time spent producing one decision.",
		Buckets: prometheus.DefBuckets,
	})
	registry.MustRegister(decisions, errs, duration)
	return &Metrics{
		registry:       registry,
		handler:        promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		decisionsTotal: decisions,
		errorsTotal:    errs,
		evalDuration:   duration,
	}
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// CountDecision records one decision by verdict.
func (m *Metrics) CountDecision(verdict authz.Verdict) {
	if m == nil {
		return
	}
	m.decisionsTotal.WithLabelValues(string(verdict)).Inc()
}

// CountError records one aborted evaluation.
func (m *Metrics) CountError() {
	if m == nil {
		return
	}
	m.errorsTotal.Inc()
}

// ObserveEvaluation records the duration of one evaluation.
func (m *Metrics) ObserveEvaluation(d time.Duration) {
	if m == nil {
		return
	}
	m.evalDuration.Observe(d.Seconds())
}
