package middleware

import (
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"

	"zuschusscheck-web/internal/shared/server/respond"
	"zuschusscheck-web/internal/shared/telemetry"
)

// Recovery recovers from panics. API routes get the JSON error body, pages
// get the plain error page.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				telemetry.Error("panic", map[string]any{
					"request_id": RequestIDFromContext(c),
					"error":      rec,
					"stack":      string(debug.Stack()),
					"path":       c.Request.URL.Path,
					"method":     c.Request.Method,
				})
				if strings.HasPrefix(c.Request.URL.Path, "/api/") {
					respond.Error(c, http.StatusInternalServerError, "internal", "Unexpected server error", nil)
				} else {
					respond.Page(c, http.StatusInternalServerError, "Es ist ein unerwarteter Fehler aufgetreten.")
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}
