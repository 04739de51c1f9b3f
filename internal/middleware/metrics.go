package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kestrelhq/kestrel/internal/metrics"
)

// Metrics records request count, duration and in-flight gauge. The route
// template keeps label cardinality bounded.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.IncInFlight()
		c.Next()
		metrics.DecInFlight()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.ObserveRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
