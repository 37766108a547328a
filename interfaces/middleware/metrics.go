package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPObserver is satisfied by *metrics.Recorder.
type HTTPObserver interface {
	ObserveHTTP(method, route string, status int, elapsed time.Duration)
}

// Metrics records every request under its route template.
func Metrics(observer HTTPObserver) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		observer.ObserveHTTP(ctx.Request.Method, route, ctx.Writer.Status(), time.Since(start))
	}
}
