package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/perum-adp-api/internal/service"
)

// Metrics records per-request duration and status observations. Unmatched
// routes fall back to the raw path so 404 traffic stays visible without
// exploding label cardinality on matched templates.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
