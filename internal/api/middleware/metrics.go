package middleware

import (
	"strconv"
	"time"

	"github.com/andresuchdata/scm-dashboard/backend-go/internal/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics observes request latency per route template. Requests that match
// no route share the "unmatched" label to keep cardinality bounded.
func Metrics(reg *metrics.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		reg.HTTPLatencySec.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
