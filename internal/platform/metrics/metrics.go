// Package metrics exposes Prometheus instrumentation for the registration
// loop and the HTTP surface.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "compete"

// Outcome labels recorded for every registration operation.
const (
	OutcomeSuccess           = "success"
	OutcomeAlreadyRegistered = "already_registered"
	OutcomeNotAMember        = "not_a_member"
	OutcomeNotFound          = "not_found"
	OutcomeExhausted         = "retry_exhausted"
	OutcomeUnavailable       = "unavailable"
	OutcomeError             = "error"
)

// Collector is a prometheus.Collector holding the registration and HTTP metrics.
type Collector struct {
	attempts          *prometheus.CounterVec
	retries           *prometheus.CounterVec
	outcomes          *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// NewCollector returns a new Collector.
func NewCollector() *Collector {
	return &Collector{
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "registration",
				Name:      "attempts_total",
				Help:      "Read-check-write cycles started, per operation.",
			}, []string{"operation"},
		),
		retries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "registration",
				Name:      "retries_total",
				Help:      "Cycles retried after a revision conflict or a transient store failure.",
			}, []string{"operation", "reason"},
		),
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "registration",
				Name:      "outcomes_total",
				Help:      "Finished registration operations by outcome.",
			}, []string{"operation", "outcome"},
		),
		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "registration",
				Name:      "duration_seconds",
				Help:      "Wall time of registration operations including retries.",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			}, []string{"operation"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests by route pattern, method and status code.",
			}, []string{"route", "method", "code"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency by route pattern.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"route"},
		),
	}
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.attempts.Describe(ch)
	c.retries.Describe(ch)
	c.outcomes.Describe(ch)
	c.operationDuration.Describe(ch)
	c.httpRequests.Describe(ch)
	c.httpDuration.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.attempts.Collect(ch)
	c.retries.Collect(ch)
	c.outcomes.Collect(ch)
	c.operationDuration.Collect(ch)
	c.httpRequests.Collect(ch)
	c.httpDuration.Collect(ch)
}

// ObserveAttempt counts one read-check-write cycle.
func (c *Collector) ObserveAttempt(operation string) {
	c.attempts.WithLabelValues(operation).Inc()
}

// ObserveRetry counts a cycle that is about to be retried.
func (c *Collector) ObserveRetry(operation, reason string) {
	c.retries.WithLabelValues(operation, reason).Inc()
}

// ObserveOutcome records how an operation finished and how long it took.
func (c *Collector) ObserveOutcome(operation, outcome string, elapsed time.Duration) {
	c.outcomes.WithLabelValues(operation, outcome).Inc()
	c.operationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// NewRegistry returns a registry with c and the Go runtime collectors.
func NewRegistry(c *Collector) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		c,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves the registry in the Prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// Middleware records request counts and latency under the chi route pattern,
// so path parameters do not explode label cardinality.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		c.httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		c.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
