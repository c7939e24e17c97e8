package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// Recovery converts handler panics into 500s and logs them with trace
// context instead of gin's default stdout dump.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		slog.ErrorContext(c.Request.Context(), "panic recovered in http handler",
			"panic", recovered,
			"path", c.Request.URL.Path,
			"method", c.Request.Method)
		c.AbortWithStatus(500)
	})
}

// Logger logs one line per completed request.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		slog.InfoContext(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP())
	}
}
