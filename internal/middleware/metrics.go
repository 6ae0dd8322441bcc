package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vqdung71104/student-management-sub000/internal/service"
)

// Metrics records per-request duration and status. The route template is the
// label, not the raw URL, so path parameters do not explode cardinality.
func Metrics(metrics *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
