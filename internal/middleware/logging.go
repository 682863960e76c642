package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"folio/internal/logger"
)

// RequestIDKey is the gin context key holding the request ID.
const RequestIDKey = "requestID"

// RequestLogging returns a Gin middleware that logs each request with a unique
// request ID, method, path, status code, latency, and client IP using Zap.
// An incoming X-Request-ID header is reused.
func RequestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" || len(requestID) > 64 {
			requestID = uuid.New().String()
		}
		c.Set(RequestIDKey, requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()

		fields := []any{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if actor := c.GetString(ActorKey); actor != "" {
			fields = append(fields, "actor", actor)
		}

		log := logger.Named("http")
		if c.Writer.Status() >= 500 {
			log.Warnw("request", fields...)
			return
		}
		log.Infow("request", fields...)
	}
}
