package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"gallery-backend-go/internal/observability"
)

// Metrics records request counts and latencies. Requests are labelled by the
// matched route template so path parameters do not explode label cardinality.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
