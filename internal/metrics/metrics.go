// Package metrics defines the Prometheus metrics exported on /metrics.
//
// Metric naming follows Prometheus conventions:
//   - gymhub_ prefix for all custom metrics
//   - _total suffix for counters
//   - _seconds suffix for duration histograms
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every gymhub metric plus the Go and process collectors.
var Registry = prometheus.NewRegistry()

var (
	// HTTPRequestsTotal counts requests by method, route template and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymhub_http_requests_total",
			Help: "Total HTTP requests by method, route and status code.",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDurationSeconds observes handler latency by route.
	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gymhub_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// AuthOutcomesTotal counts authentication operations by outcome.
	AuthOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymhub_auth_outcomes_total",
			Help: "Authentication operations by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)

	// PayoutRequestsTotal counts payout requests by outcome.
	PayoutRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymhub_payout_requests_total",
			Help: "Payout requests by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	Registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		AuthOutcomesTotal,
		PayoutRequestsTotal,
	)
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordRequest records one finished HTTP request.
func RecordRequest(method, route, status string, d time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	HTTPRequestDurationSeconds.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordAuth records the outcome of an authentication operation such as
// "login" or "refresh".
func RecordAuth(op, outcome string) {
	AuthOutcomesTotal.WithLabelValues(op, outcome).Inc()
}

// RecordPayout records the outcome of a payout request.
func RecordPayout(outcome string) {
	PayoutRequestsTotal.WithLabelValues(outcome).Inc()
}
