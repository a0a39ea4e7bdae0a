package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ohada-ledger/internal/logger"
)

// probePaths are polled by orchestrators and only logged at debug
var probePaths = map[string]bool{
	"/health": true,
	"/ready":  true,
}

// Logger stores a request logger carrying the correlation id in the request
// context, then logs one line per request. Server errors log at error level
// and client errors at warn.
func Logger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		requestLogger := log
		if correlationID := GetCorrelationID(c); correlationID != "" {
			requestLogger = log.With("correlation_id", correlationID)
		}
		c.Request = c.Request.WithContext(logger.IntoContext(c.Request.Context(), requestLogger))

		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		case probePaths[path]:
			level = slog.LevelDebug
		}

		if raw != "" {
			path = path + "?" + raw
		}

		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}

		requestLogger.Log(c.Request.Context(), level, "HTTP request", attrs...)
	}
}
