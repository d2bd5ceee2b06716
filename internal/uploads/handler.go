package uploads

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"zuschusscheck-web/internal/analysis"
	"zuschusscheck-web/internal/backend"
	"zuschusscheck-web/internal/resultstore"
	"zuschusscheck-web/internal/shared/metrics"
	"zuschusscheck-web/internal/shared/server/middleware"
	"zuschusscheck-web/internal/shared/server/respond"
	"zuschusscheck-web/internal/shared/telemetry"
	"zuschusscheck-web/internal/shared/util"
)

const (
	formField = "file"

	// multipartOverhead covers boundaries and part headers around the file.
	multipartOverhead = 1 << 20
)

// Submitter runs one analysis.
type Submitter interface {
	Submit(ctx context.Context, sess *resultstore.Session, f analysis.UploadFile) (backend.AnalysisResult, error)
}

// Handler serves the upload page and accepts uploads from it and from the
// exit-intent modal.
type Handler struct {
	Validator Validator
	Analysis  Submitter
	Store     resultstore.Store
}

// NewHandler constructs a Handler.
func NewHandler(v Validator, svc Submitter, store resultstore.Store) *Handler {
	return &Handler{Validator: v, Analysis: svc, Store: store}
}

// RegisterRoutes attaches the upload routes. limit guards the POST.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, limit ...gin.HandlerFunc) {
	rg.GET("/upload", h.page)
	rg.POST("/upload", append(limit, h.upload)...)
}

func (h *Handler) page(c *gin.Context) {
	h.render(c, http.StatusOK, "")
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.Validator.limit()+multipartOverhead)

	fh, err := c.FormFile(formField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.reject(c, ErrFileTooLarge)
			return
		}
		metrics.UploadRejections.WithLabelValues("missing_file").Inc()
		h.render(c, http.StatusBadRequest, "Bitte wähle eine Datei aus")
		return
	}

	candidate, err := CandidateFromHeader(fh)
	if err != nil {
		telemetry.Warn("uploads.inspect.failed", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
			"err":        err,
		})
		h.reject(c, ErrUnsupportedType)
		return
	}
	if err := h.Validator.Validate(candidate); err != nil {
		h.reject(c, err)
		return
	}

	name, err := util.SanitizeFileName(candidate.Name)
	if err != nil {
		name = fallbackName(candidate.MimeType)
	}
	f, err := fh.Open()
	if err != nil {
		respond.Page(c, http.StatusInternalServerError, analysis.GenericFailureMessage)
		return
	}
	defer f.Close()

	sess := resultstore.NewSession(h.Store, middleware.VisitorIDFromContext(c))
	res, err := h.Analysis.Submit(c.Request.Context(), sess, analysis.UploadFile{
		Name:        name,
		ContentType: candidate.MimeType,
		Body:        f,
	})
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, analysis.ErrAnalysisFailed) && backend.DetailOf(err) != "" {
			status = http.StatusUnprocessableEntity
		}
		h.render(c, status, analysis.Message(err))
		return
	}

	c.Set("analysisId", res.ID())
	c.Redirect(http.StatusSeeOther, "/results/"+url.PathEscape(res.ID()))
}

func fallbackName(mimeType string) string {
	if mimeType == MimeDOCX {
		return "businessplan.docx"
	}
	return "businessplan.pdf"
}

func (h *Handler) reject(c *gin.Context, err error) {
	reason := "too_large"
	if errors.Is(err, ErrUnsupportedType) {
		reason = "unsupported_type"
	}
	metrics.UploadRejections.WithLabelValues(reason).Inc()
	h.render(c, http.StatusBadRequest, h.Validator.Message(err))
}

func (h *Handler) render(c *gin.Context, status int, message string) {
	respond.HTML(c, status, "upload.html", gin.H{
		"Title":     "Businessplan hochladen",
		"Error":     message,
		"MaxUpload": h.Validator.LimitLabel(),
		"Stages":    analysis.ProgressStages(),
	})
}
