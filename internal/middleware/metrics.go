package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// RequestObserver records served requests.
type RequestObserver interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

// HTTPMetrics reports every request to o, labelled with its route pattern.
func HTTPMetrics(o RequestObserver) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		start := time.Now()

		gctx.Next()

		route := gctx.FullPath()
		if route == "" {
			route = "unmatched"
		}

		o.ObserveRequest(gctx.Request.Method, route, gctx.Writer.Status(), time.Since(start))
	}
}
