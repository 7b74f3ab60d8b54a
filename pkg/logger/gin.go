package logger

import (
	"time"

	"github.com/gin-gonic/gin"
)

// GinMiddleware logs one line per request through the leveled logger.
// 5xx responses log at error, 4xx at warn, everything else at info.
func GinMiddleware() gin.HandlerFunc {
	reqLog := Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.Request.URL.Path
		latency := time.Since(start)
		switch {
		case status >= 500:
			reqLog.Errorf("%s %s -> %d (%s) %s", c.Request.Method, path, status, latency, c.Errors.String())
		case status >= 400:
			reqLog.Warnf("%s %s -> %d (%s)", c.Request.Method, path, status, latency)
		default:
			reqLog.Infof("%s %s -> %d (%s)", c.Request.Method, path, status, latency)
		}
	}
}
