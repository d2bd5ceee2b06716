package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"zuschusscheck-web/internal/checkout"
	"zuschusscheck-web/internal/pages"
	"zuschusscheck-web/internal/results"
	"zuschusscheck-web/internal/shared/config"
	"zuschusscheck-web/internal/shared/metrics"
	"zuschusscheck-web/internal/shared/server/middleware"
	"zuschusscheck-web/internal/shared/server/respond"
	"zuschusscheck-web/internal/uploads"
	"zuschusscheck-web/internal/web"
)

const rateLimitedMessage = "Zu viele Anfragen. Bitte warte einen Moment und versuche es erneut."

// RouterDeps carries handler dependencies for route registration.
type RouterDeps struct {
	Config          config.Config
	PagesHandler    *pages.Handler
	UploadHandler   *uploads.Handler
	ResultsHandler  *results.Handler
	CheckoutHandler *checkout.Handler
	Store           Pinger
	RateLimiter     *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) (*gin.Engine, error) {
	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.SetHTMLTemplate(tmpl)

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.Visitor(deps.Config.CookieSecure),
		apiCORS(middleware.CORS(deps.Config.CORSAllowOrigin)),
	)

	r.StaticFS("/static", web.Static())
	registerHealthRoutes(r, deps.Store)
	r.GET("/metrics", metrics.Handler())

	limiter := deps.RateLimiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(nil)
	}
	uploadLimit := middleware.RateLimit(middleware.RateLimitConfig{
		Rules:     rateLimitRules,
		GroupFor:  middleware.FixedGroup(middleware.GroupUpload),
		Limiter:   limiter,
		OnLimited: limitedResponse,
	})
	checkoutLimit := middleware.RateLimit(middleware.RateLimitConfig{
		Rules:     rateLimitRules,
		GroupFor:  middleware.FixedGroup(middleware.GroupCheckout),
		Limiter:   limiter,
		OnLimited: limitedResponse,
	})

	site := r.Group("/")
	if deps.PagesHandler != nil {
		deps.PagesHandler.RegisterRoutes(site)
	}
	if deps.UploadHandler != nil {
		deps.UploadHandler.RegisterRoutes(site, uploadLimit)
	}
	if deps.ResultsHandler != nil {
		deps.ResultsHandler.RegisterRoutes(site)
	}
	if deps.CheckoutHandler != nil {
		deps.CheckoutHandler.RegisterRoutes(site, checkoutLimit)
	}

	r.NoRoute(func(c *gin.Context) {
		if isAPIPath(c.Request.URL.Path) {
			respond.Error(c, http.StatusNotFound, "not_found", "route not found", nil)
			return
		}
		respond.NotFound(c)
	})

	return r, nil
}

var rateLimitRules = map[string]middleware.RateLimitRule{
	middleware.GroupUpload:   {Rate: 0.2, Burst: 5},
	middleware.GroupCheckout: {Rate: 2, Burst: 20},
}

func limitedResponse(c *gin.Context, retryAfterMs int) {
	if isAPIPath(c.Request.URL.Path) {
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", rateLimitedMessage, gin.H{"retryAfterMs": retryAfterMs})
		return
	}
	respond.Page(c, http.StatusTooManyRequests, rateLimitedMessage)
}

// apiCORS applies cors only to the JSON endpoints the widget calls.
func apiCORS(cors gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isAPIPath(c.Request.URL.Path) {
			c.Next()
			return
		}
		cors(c)
	}
}

func isAPIPath(path string) bool {
	return strings.HasPrefix(path, "/api/")
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
