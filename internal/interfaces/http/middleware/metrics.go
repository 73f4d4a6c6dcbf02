package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"pharmapool.backend/pkg/metrics"
)

// MetricsMiddleware records request latency by route template so path
// parameters do not blow up label cardinality.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		metrics.ObserveHTTPRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
