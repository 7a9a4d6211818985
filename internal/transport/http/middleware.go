package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/astro-web3/booking-api/pkg/logger"
	"github.com/gin-gonic/gin"
)

// loggingMiddleware logs one line per request. The Authorization header is never logged.
func loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("route", route),
			slog.Int("status", status),
			slog.String("client_ip", c.ClientIP()),
			slog.Duration("duration", time.Since(start)),
		}

		ctx := c.Request.Context()
		switch {
		case status >= http.StatusInternalServerError:
			logger.ErrorContext(ctx, "request failed", attrs...)
		case status == http.StatusUnauthorized:
			logger.WarnContext(ctx, "request unauthorized", attrs...)
		default:
			logger.InfoContext(ctx, "request completed", attrs...)
		}
	}
}
