package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPObserver receives one observation per finished request.
type HTTPObserver interface {
	InFlight() prometheus.Gauge
	ObserveHTTP(method, route, status string, elapsed time.Duration)
}

// Metrics records request counts and latencies labelled by the matched route
// pattern, so ids in paths do not explode label cardinality.
func Metrics(observer HTTPObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		inFlight := observer.InFlight()
		inFlight.Inc()
		defer inFlight.Dec()

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		observer.ObserveHTTP(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
