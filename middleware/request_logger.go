package middleware

import (
	"time"

	"agriassist/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	loggerKey       = "logger"
	requestIDKey    = "requestID"
	requestIDHeader = "X-Request-ID"
)

// RequestLoggerMiddleware tags each request with an ID and stores a child zap logger in the context.
func RequestLoggerMiddleware(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		logger := base.With(
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		c.Set(requestIDKey, requestID)
		c.Set(loggerKey, logger)
		c.Header(requestIDHeader, requestID)

		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", getClientIP(c)),
		)
	}
}

// RequestLogger returns the per-request logger, or the process logger outside a request chain.
func RequestLogger(c *gin.Context) *zap.Logger {
	if l, exists := c.Get(loggerKey); exists {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return utils.GetLogger()
}
