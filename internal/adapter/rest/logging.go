package rest

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// requestLogger writes one structured line per request.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= 500 {
			level = slog.LevelError
		}
		logger.LogAttrs(c.Request.Context(), level, "http request",
			slog.String("http.request.method", c.Request.Method),
			slog.String("http.route", c.FullPath()),
			slog.Int("http.response.status_code", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
		)
	}
}
