package results

import (
	"context"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"zuschusscheck-web/internal/resultstore"
	"zuschusscheck-web/internal/shared/server/middleware"
	"zuschusscheck-web/internal/shared/server/respond"
)

const notFoundMessage = "Analyse nicht gefunden"

// Panel is the checkout block rendered beneath the preview.
type Panel struct {
	Step        string
	Email       string
	Name        string
	EmailError  string
	WidgetError string
	Price       string
	Widget      template.HTML
}

// PanelRequest describes the page the panel is rendered into.
type PanelRequest struct {
	Session    *resultstore.Session
	VisitorID  string
	AnalysisID string
	EmailError string
	EditEmail  bool
}

// PanelSource builds the checkout panel for a results page.
type PanelSource interface {
	Panel(ctx context.Context, req PanelRequest) *Panel
}

// Handler serves the results page and the report download.
type Handler struct {
	Loader  *Loader
	Reports *ReportService
	Store   resultstore.Store
	Panels  PanelSource
}

// NewHandler constructs a Handler. panels may be nil.
func NewHandler(loader *Loader, reports *ReportService, store resultstore.Store, panels PanelSource) *Handler {
	return &Handler{Loader: loader, Reports: reports, Store: store, Panels: panels}
}

// RegisterRoutes attaches the results routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/results/:sessionId", h.page)
	rg.GET("/results/:sessionId/report", h.report)
}

func (h *Handler) session(c *gin.Context) *resultstore.Session {
	return resultstore.NewSession(h.Store, middleware.VisitorIDFromContext(c))
}

func (h *Handler) page(c *gin.Context) {
	id := c.Param("sessionId")
	c.Set("analysisId", id)
	sess := h.session(c)

	res, src, err := h.Loader.Load(c.Request.Context(), sess, id)
	if err != nil {
		h.notFound(c, id)
		return
	}
	c.Set("resultSource", string(src))

	data := gin.H{
		"Title":         "Deine Analyse",
		"AnalysisID":    id,
		"Result":        res,
		"Source":        string(src),
		"DownloadError": c.Query("download_error") != "",
	}
	if h.Panels != nil {
		data["Panel"] = h.Panels.Panel(c.Request.Context(), PanelRequest{
			Session:    sess,
			VisitorID:  middleware.VisitorIDFromContext(c),
			AnalysisID: id,
			EmailError: c.Query("email_error"),
			EditEmail:  c.Query("edit_email") != "",
		})
	}
	respond.HTML(c, http.StatusOK, "results.html", data)
}

func (h *Handler) report(c *gin.Context) {
	id := c.Param("sessionId")
	c.Set("analysisId", id)
	sess := h.session(c)
	ctx := c.Request.Context()

	if !h.Reports.Allowed(ctx, sess, id, c.Query("review")) {
		c.Redirect(http.StatusSeeOther, resultsPath(id)+"#checkout")
		return
	}

	res, _, err := h.Loader.Load(ctx, sess, id)
	if err != nil {
		h.notFound(c, id)
		return
	}

	rep, err := h.Reports.Fetch(ctx, id, res)
	if err != nil {
		c.Redirect(http.StatusSeeOther, resultsPath(id)+"?download_error=1")
		return
	}
	defer rep.Body.Close()

	c.DataFromReader(http.StatusOK, rep.ContentLength, rep.ContentType, rep.Body, map[string]string{
		"Content-Disposition": `attachment; filename="` + ReportFileName(res, id) + `"`,
	})
}

func (h *Handler) notFound(c *gin.Context, id string) {
	message := notFoundMessage
	if id == "" || id == "undefined" {
		message = "Keine Session-ID gefunden"
	}
	respond.HTML(c, http.StatusNotFound, "error.html", gin.H{
		"Title":    notFoundMessage,
		"Message":  message,
		"LinkHref": "/upload",
		"LinkText": "Neue Analyse starten",
	})
}
