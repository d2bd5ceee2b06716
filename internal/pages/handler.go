package pages

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"zuschusscheck-web/internal/shared/server/respond"
)

// Handler serves the home page and one route per legal page.
type Handler struct {
	Content   Content
	Price     string
	MaxUpload string
}

// NewHandler constructs a Handler.
func NewHandler(content Content, price, maxUpload string) *Handler {
	return &Handler{Content: content, Price: price, MaxUpload: maxUpload}
}

// RegisterRoutes attaches the static routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/", h.home)
	for _, slug := range h.Slugs() {
		rg.GET("/"+slug, h.legal(slug))
	}
}

// Slugs lists the legal pages in a stable order.
func (h *Handler) Slugs() []string {
	slugs := make([]string, 0, len(h.Content.Pages))
	for slug := range h.Content.Pages {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

func (h *Handler) home(c *gin.Context) {
	respond.HTML(c, http.StatusOK, "home.html", gin.H{
		"Price":     h.Price,
		"MaxUpload": h.MaxUpload,
		"FAQ":       h.Content.FAQ,
	})
}

func (h *Handler) legal(slug string) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, ok := h.Content.Pages[slug]
		if !ok {
			respond.NotFound(c)
			return
		}
		respond.HTML(c, http.StatusOK, "legal.html", gin.H{
			"Title": page.Title,
			"Page":  page,
		})
	}
}

// NotFound is the fallback for unknown paths.
func (h *Handler) NotFound(c *gin.Context) {
	respond.NotFound(c)
}
