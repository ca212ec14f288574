package server

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ddnsRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autodns_requests_total",
		Help: "Total HTTP requests by method, path, and response status.",
	}, []string{"method", "path", "status"})

	ddnsRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "autodns_request_duration_seconds",
		Help:    "Request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	ddnsUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autodns_updates_total",
		Help: "Update attempts by outcome (applied, unknown_token, rate_limited, provider_error).",
	}, []string{"outcome"})
)

// prometheusMiddleware records per-request metrics.
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		ddnsRequestsTotal.WithLabelValues(method, path, status).Inc()
		ddnsRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
