package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"user-profile-service/internal/metrics"
)

// Metrics records request count and latency labelled by route template.
func Metrics(recorder metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if recorder == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		recorder.RecordRequest(metrics.TransportHTTP, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
