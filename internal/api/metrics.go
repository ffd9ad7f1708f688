package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the server's Prometheus collectors on a private registry so
// multiple servers (tests included) never collide on registration.
type Metrics struct {
	registry          *prometheus.Registry
	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	analyticsComputed prometheus.Counter
}

// NewMetrics creates and registers the server metrics
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "journal_http_requests_total",
			Help: "Total HTTP requests by route, method, and status code",
		}, []string{"route", "method", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "journal_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		analyticsComputed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "journal_analytics_computations_total",
			Help: "Total analytics pipeline runs",
		}),
	}

	m.registry.MustRegister(m.requestsTotal, m.requestDuration, m.analyticsComputed)

	return m
}

// Registry returns the private Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// AnalyticsComputed counts one analytics pipeline run
func (m *Metrics) AnalyticsComputed() {
	m.analyticsComputed.Inc()
}

// Middleware records request counts and latency per route
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if template, err := current.GetPathTemplate(); err == nil {
				route = template
			}
		}

		m.requestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// statusRecorder captures the response status for metrics
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
