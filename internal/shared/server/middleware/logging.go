package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"zuschusscheck-web/internal/shared/telemetry"
)

// Logging emits a structured log per request. Static assets and the
// metrics scrape are skipped.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.EqualFold(c.Request.Method, "OPTIONS") || path == "/metrics" || strings.HasPrefix(path, "/static/") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"visitor_id":  VisitorIDFromContext(c),
			"method":      c.Request.Method,
			"path":        path,
			"route":       c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if v := c.GetString("analysisId"); v != "" {
			fields["analysis_id"] = v
		}
		if v := c.GetString("resultSource"); v != "" {
			fields["result_source"] = v
		}
		if v := c.GetString("widgetState"); v != "" {
			fields["widget_state"] = v
		}
		telemetry.Info("request.complete", fields)
	}
}
