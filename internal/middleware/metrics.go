package middleware

import (
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds the HTTP request metrics.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics registers the request metrics once per process.
//
// Metrics:
//   - codehub_http_requests_total{method,route,status}
//   - codehub_http_request_duration_seconds{method,route}
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			RequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "codehub_http_requests_total",
					Help: "Total number of HTTP requests served",
				},
				[]string{"method", "route", "status"},
			),
			RequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "codehub_http_request_duration_seconds",
					Help:    "Duration of HTTP requests in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"method", "route"},
			),
		}
	})
	return globalMetrics
}

// MetricsMiddleware records count and latency per matched route and logs
// each request with the acting user at debug level.
func MetricsMiddleware(m *Metrics) fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		method := c.Method()

		err := c.Next()

		// labelled by route template, not raw path
		route := c.Route().Path
		status := c.Response().StatusCode()
		elapsed := time.Since(start)

		m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		m.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())

		userID := "anonymous"
		if uc := GetUserContext(c); uc != nil {
			userID = uc.UserID
		}
		slog.Debug("http request",
			"method", method,
			"path", c.Path(),
			"status", status,
			"user_id", userID,
			"duration_ms", elapsed.Milliseconds(),
		)
		return err
	}
}
