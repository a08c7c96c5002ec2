package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"propdesk.backend/pkg/logger"
)

// HTTPObserver records request latency per route.
type HTTPObserver interface {
	ObserveHTTP(method, route string, status int, latency time.Duration)
}

// LoggerMiddleware logs HTTP requests using the structured logger and
// feeds the latency histogram when an observer is given.
func LoggerMiddleware(observer HTTPObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		if raw != "" {
			path = path + "?" + raw
		}

		logger.LogRequest(c.Request.Context(), c.Request.Method, path, c.Writer.Status(), latency, c.ClientIP())

		if observer != nil {
			route := c.FullPath()
			if route == "" {
				route = "unmatched"
			}
			observer.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), latency)
		}
	}
}
