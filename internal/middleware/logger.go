package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLogger logs every request with its status and latency.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if op, ok := c.Get(OperatorNameKey); ok {
			fields = append(fields, zap.Any("operator", op))
		}
		switch {
		case len(c.Errors) > 0:
			log.Warn("request failed", append(fields, zap.String("errors", c.Errors.String()))...)
		case c.Writer.Status() >= 500:
			log.Error("request", fields...)
		default:
			log.Debug("request", fields...)
		}
	}
}
