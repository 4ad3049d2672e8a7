package handlers

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "researchnest_http_requests_total",
		Help: "HTTP requests by method, route pattern and status code.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "researchnest_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route pattern.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	aiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "researchnest_ai_requests_total",
		Help: "Calls to the hosted AI endpoints by operation and outcome.",
	}, []string{"operation", "outcome"})
)

func init() {
	prometheus.MustRegister(httpRequestsTotal, httpRequestDuration, aiRequestsTotal)
}

// MetricsHandler serves the default Prometheus registry
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

func observeRequest(method, route string, status int, seconds float64) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(seconds)
}

func observeAI(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	aiRequestsTotal.WithLabelValues(operation, outcome).Inc()
}
