package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"linkly/internal/metrics"
)

// PrometheusMetrics records request count and latency per route template
func PrometheusMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		// route template, not the raw path, keeps label cardinality bounded (/abc123 → /:shortCode)
		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}
		metrics.ObserveHTTP(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start).Seconds())
	}
}
