package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"partsbot/pkg/logger"
	"partsbot/pkg/metrics"
)

// GinZapLogger logs each request through zap and records its latency
func GinZapLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestDuration.WithLabelValues(route, strconv.Itoa(statusCode)).Observe(latency.Seconds())

		// Skip logging for certain paths
		path := c.Request.URL.Path
		if path == "/health" || path == "/metrics" || path == "/favicon.ico" {
			return
		}
		if strings.HasPrefix(path, "/swagger/") && path != "/swagger/index.html" {
			return
		}

		fields := []zap.Field{
			zap.String("request_id", c.GetString(RequestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", statusCode),
			zap.Duration("latency", latency),
		}
		if code := c.Param("codigo"); code != "" {
			fields = append(fields, logger.CodeField(code))
		}
		if c.Request.URL.RawQuery != "" {
			fields = append(fields, zap.String("query", c.Request.URL.RawQuery))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("error", c.Errors.String()))
		}
		if gin.Mode() == gin.DebugMode {
			fields = append(fields, zap.String("ip", c.ClientIP()), zap.String("user_agent", c.Request.UserAgent()))
		}

		switch {
		case statusCode >= 500:
			logger.Error("request failed", fields...)
		case statusCode >= 400:
			logger.Warn("request rejected", fields...)
		default:
			// confirmations may hold a request for hours; keep completions visible
			logger.Info("request completed", fields...)
		}
	}
}
