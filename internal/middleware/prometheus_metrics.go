package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gltch/gltch-backend/internal/metrics"
)

// PrometheusMetrics records request counts, durations, and in-flight
// connections for every route
func PrometheusMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		m := metrics.Get()

		start := time.Now()
		m.HTTPActiveConnections.Inc()

		c.Next()

		m.HTTPActiveConnections.Dec()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
