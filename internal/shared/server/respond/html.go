package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HTML renders a named page template.
func HTML(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	c.HTML(status, name, data)
}

// Page renders the generic error page with a link back to the upload form.
func Page(c *gin.Context, status int, message string) {
	if status >= http.StatusInternalServerError {
		logError(c, status, "page_error", message)
	}
	c.Abort()
	c.HTML(status, "error.html", gin.H{
		"Title":    "Fehler",
		"Message":  message,
		"LinkHref": "/upload",
		"LinkText": "Neue Analyse starten",
	})
}

// NotFound renders the 404 page.
func NotFound(c *gin.Context) {
	c.Abort()
	c.HTML(http.StatusNotFound, "404.html", gin.H{"Title": "Seite nicht gefunden"})
}
