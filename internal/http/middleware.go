package http

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	requestIDHeader = "X-Request-ID"
	loggerKey       = "logger"
)

// RequestID assigns each request a unique id, honoring one supplied by the
// caller, and echoes it in the response. It also stores a child logger
// carrying the id in the gin context so every log line from the request can
// be correlated.
func RequestID(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Set(loggerKey, log.With().Str("request_id", id).Logger())
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// requestLogger returns the per-request logger installed by RequestID,
// falling back to the handler's base logger when the middleware is absent.
func requestLogger(c *gin.Context, fallback zerolog.Logger) zerolog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if log, ok := v.(zerolog.Logger); ok {
			return log
		}
	}
	return fallback
}
