package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"zuschusscheck-web/internal/shared/server/respond"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

const healthTimeout = 2 * time.Second

// registerHealthRoutes attaches /healthz. A nil pinger always reports ok.
func registerHealthRoutes(r gin.IRoutes, store Pinger) {
	r.GET("/healthz", func(c *gin.Context) {
		if store != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				respond.Error(c, http.StatusServiceUnavailable, "store_unavailable", "result store unreachable", nil)
				return
			}
		}
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
}
