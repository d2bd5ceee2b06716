package checkout

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"zuschusscheck-web/internal/backend"
	"zuschusscheck-web/internal/paywidget"
	"zuschusscheck-web/internal/resultstore"
	"zuschusscheck-web/internal/results"
	"zuschusscheck-web/internal/shared/server/middleware"
	"zuschusscheck-web/internal/shared/server/respond"
	"zuschusscheck-web/internal/shared/telemetry"
)

const successPath = "/success"

// Handler serves the email step, the payment widget callbacks and the
// success page.
type Handler struct {
	Svc      *Service
	Store    resultstore.Store
	Widgets  *paywidget.Registry
	Loader   paywidget.Loader
	Renderer paywidget.Renderer
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, store resultstore.Store, widgets *paywidget.Registry, loader paywidget.Loader, renderer paywidget.Renderer) *Handler {
	return &Handler{Svc: svc, Store: store, Widgets: widgets, Loader: loader, Renderer: renderer}
}

// RegisterRoutes attaches the checkout routes. limit guards the POSTs.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, limit ...gin.HandlerFunc) {
	rg.POST("/results/:sessionId/email", append(limit, h.saveContact)...)

	api := rg.Group("/api/checkout/:sessionId", limit...)
	api.POST("/orders", h.createOrder)
	api.POST("/approve", h.approve)
	api.POST("/cancel", h.cancel)
	api.POST("/error", h.reportError)
	api.POST("/unmount", h.unmount)

	rg.GET(successPath, h.success)
	rg.GET(successPath+"/download", h.download)
}

type approveRequest struct {
	OrderID string `json:"orderID"`
}

type errorReport struct {
	Kind string `json:"kind"`
}

func (h *Handler) session(c *gin.Context) *resultstore.Session {
	return resultstore.NewSession(h.Store, middleware.VisitorIDFromContext(c))
}

// widget returns the adapter for the visitor's page instance of analysisID.
func (h *Handler) widget(visitorID, analysisID string, sess *resultstore.Session) *paywidget.Adapter {
	key := paywidget.Key(visitorID, analysisID)
	return h.Widgets.GetOrCreate(key, func() *paywidget.Adapter {
		return paywidget.New(paywidget.Options{
			Key:      key,
			Loader:   h.Loader,
			Renderer: h.Renderer,
			Orders: paywidget.OrderCreatorFunc(func(ctx context.Context) (string, error) {
				return h.Svc.CreateOrder(ctx, analysisID)
			}),
			Approvals: paywidget.ApprovalFunc(func(ctx context.Context, orderID string) (string, error) {
				if _, err := h.Svc.Capture(ctx, sess, analysisID, orderID); err != nil {
					return "", err
				}
				return successPath, nil
			}),
			Button: paywidget.ButtonSpec{
				CallbackBase: "/api/checkout/" + url.PathEscape(analysisID),
				Amount:       AmountValue(h.Svc.Amount),
				Currency:     h.Svc.Currency,
			},
		})
	})
}

// Panel implements results.PanelSource.
func (h *Handler) Panel(ctx context.Context, req results.PanelRequest) *results.Panel {
	panel := &results.Panel{Step: StepEmail, Price: h.Svc.Price(), EmailError: emailErrorMessage(req.EmailError)}

	if rec, err := h.Svc.Success(ctx, req.Session); err == nil && rec.AnalysisID == req.AnalysisID {
		panel.Step = StepPaid
		return panel
	}

	co, ok := h.Svc.Contact(ctx, req.Session, req.AnalysisID)
	if ok {
		panel.Email = co.CustomerEmail
		panel.Name = co.CustomerName
	}
	if !ok || co.CustomerEmail == "" || req.EditEmail || panel.EmailError != "" {
		return panel
	}

	panel.Step = StepPayment
	w := h.widget(req.VisitorID, req.AnalysisID, req.Session)
	if err := w.Mount(ctx); err != nil {
		panel.WidgetError = paywidget.Message(err)
		return panel
	}
	panel.Widget = w.HTML()
	panel.WidgetError = w.Message()
	return panel
}

func emailErrorMessage(code string) string {
	switch code {
	case "":
		return ""
	case "name":
		return "Der Name darf höchstens 200 Zeichen lang sein"
	default:
		return "Bitte gib eine gültige E-Mail-Adresse ein"
	}
}

func (h *Handler) saveContact(c *gin.Context) {
	id := c.Param("sessionId")
	c.Set("analysisId", id)
	target := "/results/" + url.PathEscape(id)

	var form ContactForm
	if err := c.ShouldBind(&form); err != nil {
		c.Redirect(http.StatusSeeOther, target+"?email_error=email#checkout")
		return
	}
	if err := h.Svc.SaveContact(c.Request.Context(), h.session(c), id, form); err != nil {
		field := "email"
		var ce *ContactError
		if errors.As(err, &ce) {
			field = ce.Field
		} else if !errors.Is(err, ErrInvalidContact) {
			respond.Page(c, http.StatusInternalServerError, "Deine Angaben konnten nicht gespeichert werden. Bitte versuche es erneut.")
			return
		}
		c.Redirect(http.StatusSeeOther, target+"?email_error="+url.QueryEscape(field)+"#checkout")
		return
	}
	key := paywidget.Key(middleware.VisitorIDFromContext(c), id)
	if w, ok := h.Widgets.Get(key); ok {
		w.Unmount()
		h.Widgets.Remove(key)
	}
	c.Redirect(http.StatusSeeOther, target+"#checkout")
}

// existing returns the adapter the results page mounted for this visitor.
// Callbacks never create adapters; only Panel does, once the analysis is
// loaded and contact details are stored.
func (h *Handler) existing(c *gin.Context) (*paywidget.Adapter, string, bool) {
	id := c.Param("sessionId")
	c.Set("analysisId", id)
	key := paywidget.Key(middleware.VisitorIDFromContext(c), id)
	w, ok := h.Widgets.Get(key)
	return w, key, ok
}

// mounted returns the page's adapter, remounting it after a reported SDK
// load failure. It writes a 409 when the page never rendered a widget.
func (h *Handler) mounted(c *gin.Context) (*paywidget.Adapter, string, bool) {
	w, key, ok := h.existing(c)
	if !ok {
		h.widgetError(c, http.StatusConflict, "payment_not_ready", paywidget.ErrNotMounted)
		return nil, "", false
	}
	if !w.Attached() {
		if err := w.Mount(c.Request.Context()); err != nil {
			h.widgetError(c, http.StatusServiceUnavailable, "payment_sdk_load_failed", err)
			return nil, "", false
		}
	}
	return w, key, true
}

func (h *Handler) createOrder(c *gin.Context) {
	w, _, ok := h.mounted(c)
	if !ok {
		return
	}
	orderID, err := w.CreateOrder(c.Request.Context())
	c.Set("widgetState", w.State().String())
	if err != nil {
		status := http.StatusBadGateway
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			status = http.StatusBadRequest
		}
		h.widgetError(c, status, "payment_create_failed", err)
		return
	}
	respond.OK(c, gin.H{"orderID": orderID})
}

func (h *Handler) approve(c *gin.Context) {
	var req approveRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.OrderID) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "orderID is required", nil)
		return
	}
	w, key, ok := h.mounted(c)
	if !ok {
		return
	}
	redirect, err := w.Approve(c.Request.Context(), req.OrderID)
	c.Set("widgetState", w.State().String())
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, ErrContactMissing) {
			status = http.StatusConflict
		}
		h.widgetError(c, status, "payment_approval_failed", err)
		return
	}
	h.Widgets.Remove(key)
	respond.OK(c, gin.H{"redirect": redirect})
}

func (h *Handler) cancel(c *gin.Context) {
	if w, _, ok := h.existing(c); ok {
		w.Cancel()
		c.Set("widgetState", w.State().String())
	}
	c.Status(http.StatusNoContent)
}

// reportError records a failure the browser saw. An empty or unreadable
// body counts as a widget error, since beacons may arrive without one.
func (h *Handler) reportError(c *gin.Context) {
	var req errorReport
	if err := c.ShouldBindJSON(&req); err != nil {
		telemetry.Warn("paywidget.error_report.unreadable", map[string]any{
			"analysis_id": c.Param("sessionId"),
			"request_id":  middleware.RequestIDFromContext(c),
			"err":         err,
		})
	}
	w, _, ok := h.existing(c)
	if !ok {
		h.widgetError(c, http.StatusConflict, "payment_not_ready", paywidget.ErrNotMounted)
		return
	}

	if req.Kind == "sdk_load" {
		err := w.ReportLoadError()
		c.Set("widgetState", w.State().String())
		h.widgetError(c, http.StatusServiceUnavailable, "payment_sdk_load_failed", err)
		return
	}
	kind := strings.TrimSpace(req.Kind)
	if kind == "" {
		kind = "widget"
	}
	err := w.Fail(errors.New(kind))
	c.Set("widgetState", w.State().String())
	h.widgetError(c, http.StatusUnprocessableEntity, "payment_widget_error", err)
}

func (h *Handler) unmount(c *gin.Context) {
	if w, key, ok := h.existing(c); ok {
		w.Unmount()
		h.Widgets.Remove(key)
		c.Set("widgetState", w.State().String())
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) widgetError(c *gin.Context, status int, code string, err error) {
	telemetry.Warn("paywidget.error", map[string]any{
		"code":        code,
		"analysis_id": c.Param("sessionId"),
		"request_id":  middleware.RequestIDFromContext(c),
		"err":         err,
	})
	respond.Error(c, status, code, paywidget.Message(err), nil)
}

func (h *Handler) success(c *gin.Context) {
	rec, err := h.Svc.Success(c.Request.Context(), h.session(c))
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	respond.HTML(c, http.StatusOK, "success.html", gin.H{
		"Title":         "Zahlung erfolgreich",
		"Payment":       rec,
		"DownloadError": c.Query("download_error") != "",
	})
}

func (h *Handler) download(c *gin.Context) {
	rep, rec, err := h.Svc.DownloadPaid(c.Request.Context(), h.session(c))
	if err != nil {
		if errors.Is(err, ErrNoPayment) && rec.OrderID == "" {
			c.Redirect(http.StatusSeeOther, "/")
			return
		}
		telemetry.Error("checkout.download.failed", map[string]any{
			"order_id": rec.OrderID,
			"err":      err,
		})
		c.Redirect(http.StatusSeeOther, successPath+"?download_error=1")
		return
	}
	defer rep.Body.Close()

	c.DataFromReader(http.StatusOK, rep.ContentLength, rep.ContentType, rep.Body, map[string]string{
		"Content-Disposition": `attachment; filename="` + results.ReportFileName(backend.AnalysisResult{}, rec.AnalysisID) + `"`,
	})
}
