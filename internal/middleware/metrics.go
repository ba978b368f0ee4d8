package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ojt-records-api/internal/service"
)

// unmatchedRoute labels requests no route matched, so scanners hitting random paths
// cannot grow the series count.
const unmatchedRoute = "unmatched"

// Metrics records method, route template and status for every request
// except those to the routes listed in skip (typically the scrape endpoint).
func Metrics(metricsSvc *service.MetricsService, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, route := range skip {
		skipped[route] = struct{}{}
	}

	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if _, ok := skipped[route]; ok {
			return
		}
		if route == "" {
			route = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
