package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LavaJover/festival-order-service/internal/infrastructure/metrics"
)

func Metrics(m *metrics.OrderMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start).Seconds())
	}
}
