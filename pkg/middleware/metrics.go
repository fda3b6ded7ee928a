package middleware

import (
	"strconv"
	"time"

	"videoshare/video-api/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// NewMetricsMiddleware records request counts and latencies by route
func NewMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		metrics.RecordRequest(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status()), time.Since(start).Seconds())
	}
}
