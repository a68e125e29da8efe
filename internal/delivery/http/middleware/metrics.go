package middleware

import (
	"time"

	"alumni-talent-platform/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// RequestMetrics records request latency by route template. Unmatched
// paths are folded into one label to keep cardinality bounded. Requests
// re-dispatched by RouteGuard are observed by the inner dispatch only.
func RequestMetrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if c.GetBool(rewrittenKey) {
			return
		}

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
