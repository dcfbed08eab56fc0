package prometheus

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lytslot_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"method", "path", "status"},
	)

	// RequestDurationHistogram records request duration in seconds
	RequestDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lytslot_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Auth error counter
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lytslot_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"}, // missing_token, invalid_token, invalid_signature, ...
	)

	// Order operation counter
	OrderOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lytslot_order_operations_total",
			Help: "Total number of order operations",
		},
		[]string{"operation"}, // create, status_change
	)

	// Rate limited request counter
	RateLimitedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lytslot_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)

	// Background job counter by type and result
	JobCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lytslot_jobs_total",
			Help: "Total number of background jobs by type and result",
		},
		[]string{"type", "result"}, // ok, retried, dead, dropped, lost
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(RequestDurationHistogram)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(OrderOperationCounter)
	prometheus.MustRegister(RateLimitedCounter)
	prometheus.MustRegister(JobCounter)
}

// RecordAuthError increments the auth error counter for the given type
func RecordAuthError(errorType string) {
	AuthErrorCounter.WithLabelValues(errorType).Inc()
}

// RecordOrderOperation increments the order operation counter
func RecordOrderOperation(operation string) {
	OrderOperationCounter.WithLabelValues(operation).Inc()
}

// RecordRateLimited increments the rate limited counter
func RecordRateLimited() {
	RateLimitedCounter.Inc()
}

// RecordJob increments the job counter for a type/result pair
func RecordJob(jobType, result string) {
	JobCounter.WithLabelValues(jobType, result).Inc()
}

// MetricsMiddleware creates an Echo middleware that records HTTP request metrics
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := c.Response().Status
			method := c.Request().Method
			path := c.Path()
			statusStr := strconv.Itoa(status)

			HTTPRequestCounter.WithLabelValues(method, path, statusStr).Inc()
			RequestDurationHistogram.WithLabelValues(method, path, statusStr).
				Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// MetricsHandler returns the Echo handler exposing Prometheus metrics
func MetricsHandler(c echo.Context) error {
	promhttp.Handler().ServeHTTP(c.Response(), c.Request())
	return nil
}
