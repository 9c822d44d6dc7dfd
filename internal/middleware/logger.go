package middleware

import (
	"time"

	"github.com/JonnyWalker81/stride/backend/internal/logger"
	"github.com/gin-gonic/gin"
)

// RequestIDHeader carries the correlation ID in both directions
const RequestIDHeader = "X-Request-ID"

// Logger middleware assigns a request ID, attaches a request-scoped logger to
// the context and logs one line per request
func Logger(base logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		ctx := logger.WithRequestID(c.Request.Context(), c.GetHeader(RequestIDHeader))
		requestID := logger.RequestIDFromContext(ctx)
		ctx = logger.WithLogger(ctx, base)
		c.Request = c.Request.WithContext(ctx)
		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		status := c.Writer.Status()
		fields := []logger.Field{
			logger.String("method", method),
			logger.String("path", path),
			logger.String("route", c.FullPath()),
			logger.Int("status", status),
			logger.Duration("latency", time.Since(start)),
			logger.String("client_ip", c.ClientIP()),
		}

		log := logger.Ctx(c.Request.Context())
		switch {
		case status >= 500:
			log.Error("request completed", fields...)
		case status >= 400:
			log.Warn("request completed", fields...)
		default:
			log.Info("request completed", fields...)
		}
	}
}
