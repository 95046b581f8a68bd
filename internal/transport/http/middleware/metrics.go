package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/IsbatBInHossain/bookstore-cms/internal/infra/telemetry"
)

// Metrics records request count and latency per route template. The route
// template keeps cardinality bounded regardless of path parameters.
func Metrics(provider *telemetry.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		provider.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start).Seconds())
	}
}
