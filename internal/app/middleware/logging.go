package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tpaukrt/DRAMConsole/internal/infrastructure/logging"
	"github.com/tpaukrt/DRAMConsole/internal/infrastructure/monitoring"
)

// RequestLogger logs request info and records metrics. The log line
// itself reaches the capture ring through the zap tee, so nothing is
// appended here directly.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		logging.WithRequestID(logger, c.GetString("request_id")).Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", latency),
		)
		monitoring.ObserveRequest(path, c.Request.Method, strconv.Itoa(status), latency.Seconds())
	}
}
