package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Grant outcomes
const (
	OutcomeIssued       = "issued"
	OutcomeUnauthorized = "unauthorized"
	OutcomeRejected     = "rejected"
	OutcomeError        = "error"
)

const namespace = "proxyupload"

// Metrics owns a private Prometheus registry with the upload grant counter
// and basic HTTP metrics. A nil *Metrics is valid and records nothing.
type Metrics struct {
	reg      *prometheus.Registry
	grants   *prometheus.CounterVec
	inflight prometheus.Gauge
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// New creates a Metrics instance with a fresh registry and registers collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	grants := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "grants_total",
		Help:      "Upload authorization attempts, partitioned by outcome.",
	}, []string{"outcome"})
	inflight := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "inflight_requests",
		Help:      "Current number of inflight HTTP requests.",
	})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests processed, partitioned by status code and method.",
	}, []string{"code", "method"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Histogram of latencies for HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"code", "method"})

	reg.MustRegister(grants, inflight, requests, latency)

	// Pre-create outcome series so they export as zero before the first request.
	for _, o := range []string{OutcomeIssued, OutcomeUnauthorized, OutcomeRejected, OutcomeError} {
		grants.WithLabelValues(o)
	}

	return &Metrics{
		reg:      reg,
		grants:   grants,
		inflight: inflight,
		requests: requests,
		latency:  latency,
	}
}

// ObserveGrant counts one authorization attempt with the given outcome.
func (m *Metrics) ObserveGrant(outcome string) {
	if m == nil {
		return
	}
	m.grants.WithLabelValues(outcome).Inc()
}

// Handler returns an http.Handler that serves Prometheus metrics using the internal registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// statusRecorder captures the HTTP status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records inflight requests, a request counter and a latency
// histogram, both labelled by method and status code.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.inflight.Inc()
		defer m.inflight.Dec()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		code := strconv.Itoa(rec.status)
		m.requests.WithLabelValues(code, r.Method).Inc()
		m.latency.WithLabelValues(code, r.Method).Observe(time.Since(start).Seconds())
	})
}
