package middleware

import (
	"strconv"
	"time"

	"log/slog"

	"tasktracker/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs HTTP request/response metadata and feeds the
// request counter.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		latency := time.Since(start)
		path := c.Request.URL.Path
		method := c.Request.Method
		clientIP := c.ClientIP()

		// 指标用路由模板，避免 :id 之类的参数撑爆标签基数
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()

		if logger != nil {
			logger.Info("http request",
				slog.String("method", method),
				slog.String("path", path),
				slog.Int("status", status),
				slog.String("client_ip", clientIP),
				slog.String("latency", latency.String()),
			)
		}
	}
}
