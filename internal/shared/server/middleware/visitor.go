package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	VisitorCookie = "zc_visitor"
	visitorIDKey  = "visitorId"
	returningKey  = "visitorReturning"

	visitorCookieMaxAge = 30 * 24 * 60 * 60
)

// Visitor binds every request to a visitor id kept in an HttpOnly cookie.
// Missing or malformed cookies are replaced with a fresh id.
func Visitor(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := ""
		if raw, err := c.Cookie(VisitorCookie); err == nil {
			if parsed, err := uuid.Parse(strings.TrimSpace(raw)); err == nil {
				id = parsed.String()
			}
		}
		c.Set(returningKey, id != "")
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     VisitorCookie,
				Value:    id,
				Path:     "/",
				MaxAge:   visitorCookieMaxAge,
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
			})
		}
		c.Set(visitorIDKey, id)
		c.Next()
	}
}

// VisitorIDFromContext returns the id stored by Visitor.
func VisitorIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(visitorIDKey)
}

// VisitorReturning reports whether the request presented a valid visitor
// cookie. Ids minted for this request are not returning.
func VisitorReturning(c *gin.Context) bool {
	if c == nil {
		return false
	}
	return c.GetBool(returningKey)
}
