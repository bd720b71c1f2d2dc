package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "The total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "The HTTP request latencies in seconds",
		},
		[]string{"method", "endpoint"},
	)

	rateLimitDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_decisions_total",
			Help: "Rate limiter decisions by outcome (allowed, rejected, fail_open)",
		},
		[]string{"outcome"},
	)

	remindersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminders_total",
			Help: "Payment reminders by kind, channel and outcome",
		},
		[]string{"kind", "channel", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal)
	prometheus.MustRegister(requestDuration)
	prometheus.MustRegister(rateLimitDecisions)
	prometheus.MustRegister(remindersTotal)
}

// GetRequestsTotal returns the requests total metric for middleware use
func GetRequestsTotal() *prometheus.CounterVec {
	return requestsTotal
}

// GetRequestDuration returns the request duration metric for middleware use
func GetRequestDuration() *prometheus.HistogramVec {
	return requestDuration
}

// GetRateLimitDecisions returns the counter the rate limiter service reports into.
func GetRateLimitDecisions() *prometheus.CounterVec {
	return rateLimitDecisions
}

// GetRemindersTotal returns the counter the reminder service reports into.
func GetRemindersTotal() *prometheus.CounterVec {
	return remindersTotal
}

// LogMetricsInitialization logs that metrics have been initialized
func (s *Server) LogMetricsInitialization() {
	if s.logger != nil {
		s.logger.Info("Prometheus metrics initialized and registered")
		s.logger.WithFields(map[string]interface{}{
			"http_requests_total":        "Counter for HTTP requests by method, endpoint, status",
			"http_request_duration":      "Histogram for HTTP request duration by method, endpoint",
			"rate_limit_decisions_total": "Counter for limiter decisions by outcome",
			"reminders_total":            "Counter for reminders by kind, channel, outcome",
			"metrics_endpoint":           "/metrics",
		}).Debug("Available Prometheus metrics")
	}
}

func (s *Server) metricsHandler() http.Handler {
	return promhttp.Handler()
}

// metricsEndpoint wraps the metrics handler with logging
func (s *Server) metricsEndpoint(c echo.Context) error {
	if s.logger != nil {
		s.logger.Debug("Serving Prometheus metrics")
	}
	s.metricsHandler().ServeHTTP(c.Response(), c.Request())
	return nil
}
