// Package paywidget drives the lifecycle of the PayPal button shown on the
// results page.
package paywidget

import (
	"context"
	"errors"
	"html/template"
	"strings"
	"sync"

	"zuschusscheck-web/internal/backend"
	"zuschusscheck-web/internal/shared/metrics"
	"zuschusscheck-web/internal/shared/telemetry"
)

// OrderCreator opens a payment order and returns its id.
type OrderCreator interface {
	CreateOrder(ctx context.Context) (string, error)
}

// OrderCreatorFunc adapts a function to OrderCreator.
type OrderCreatorFunc func(ctx context.Context) (string, error)

func (f OrderCreatorFunc) CreateOrder(ctx context.Context) (string, error) { return f(ctx) }

// ApprovalHandler finishes an approved order and returns where to send
// the visitor next.
type ApprovalHandler interface {
	Approve(ctx context.Context, orderID string) (string, error)
}

// ApprovalFunc adapts a function to ApprovalHandler.
type ApprovalFunc func(ctx context.Context, orderID string) (string, error)

func (f ApprovalFunc) Approve(ctx context.Context, orderID string) (string, error) {
	return f(ctx, orderID)
}

// Options configures an Adapter.
type Options struct {
	Key       string
	Loader    Loader
	Renderer  Renderer
	Orders    OrderCreator
	Approvals ApprovalHandler
	Button    ButtonSpec
}

// Adapter owns one payment button. All methods are safe for concurrent use.
type Adapter struct {
	mu        sync.Mutex
	key       string
	state     State
	attached  bool
	sdk       *SDK
	orderID   string
	message   string
	container *Container

	loader    Loader
	renderer  Renderer
	orders    OrderCreator
	approvals ApprovalHandler
	button    ButtonSpec
}

// New returns an unloaded adapter.
func New(opts Options) *Adapter {
	return &Adapter{
		key:       opts.Key,
		state:     Unloaded,
		container: NewContainer(),
		loader:    opts.Loader,
		renderer:  opts.Renderer,
		orders:    opts.Orders,
		approvals: opts.Approvals,
		button:    opts.Button,
	}
}

// Mount loads the SDK if needed and renders exactly one button. It is a
// no-op while attached.
func (a *Adapter) Mount(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.attached {
		return nil
	}
	if a.sdk == nil {
		sdk, err := a.loader.Load(ctx)
		if err != nil {
			a.transition(LoadError)
			var we *Error
			if !errors.As(err, &we) {
				err = &Error{Kind: ErrSdkLoadFailed, cause: err}
			}
			a.message = Message(err)
			return err
		}
		a.sdk = &sdk
		a.transition(SdkReady)
	}

	a.container.Clear()
	spec := a.button
	spec.SDK = *a.sdk
	if err := a.renderer.Render(ctx, a.container, spec); err != nil {
		a.container.Clear()
		a.transition(Errored)
		a.message = GenericMessage
		return &Error{Kind: ErrWidgetError, Detail: GenericMessage, cause: err}
	}
	a.attached = true
	a.message = ""
	a.transition(Mounted)
	return nil
}

// Unmount removes the button. Safe to call repeatedly; a later Mount
// renders again.
func (a *Adapter) Unmount() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.attached {
		return
	}
	a.container.Clear()
	a.attached = false
	a.orderID = ""
	a.transition(Unmounted)
}

// CreateOrder runs the order-creation callback. On failure the widget
// stays mounted and the error carries the backend's message.
func (a *Adapter) CreateOrder(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.attached {
		return "", ErrNotMounted
	}
	a.transition(AwaitingOrder)
	id, err := a.orders.CreateOrder(ctx)
	if err != nil {
		detail := backend.DetailOf(err)
		if detail == "" {
			detail = GenericMessage
		}
		a.message = detail
		a.transition(Mounted)
		return "", &Error{Kind: ErrPaymentCreateFailed, Detail: detail, cause: err}
	}
	a.orderID = id
	a.message = ""
	return id, nil
}

// Approve forwards an approved order to the approval handler and returns
// the redirect target.
func (a *Adapter) Approve(ctx context.Context, orderID string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.attached {
		return "", ErrNotMounted
	}
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		orderID = a.orderID
	}
	if orderID == "" {
		a.transition(Mounted)
		return "", &Error{Kind: ErrPaymentApprovalFailed, Detail: GenericMessage}
	}

	redirect, err := a.approvals.Approve(ctx, orderID)
	if err != nil {
		detail := backend.DetailOf(err)
		if detail == "" {
			detail = GenericMessage
		}
		a.message = detail
		a.transition(Mounted)
		return "", &Error{Kind: ErrPaymentApprovalFailed, Detail: detail, cause: err}
	}
	a.orderID = orderID
	a.message = ""
	a.transition(Approved)
	return redirect, nil
}

// Cancel returns the widget to Mounted without an error.
func (a *Adapter) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.attached {
		return
	}
	a.transition(Cancelled)
	a.orderID = ""
	a.transition(Mounted)
}

// Fail records a widget-reported error and returns the inline error.
func (a *Adapter) Fail(cause error) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.transition(Errored)
	a.message = GenericMessage
	if a.attached {
		a.transition(Mounted)
	}
	return &Error{Kind: ErrWidgetError, Detail: GenericMessage, cause: cause}
}

// ReportLoadError records that the browser failed to load the SDK script.
// The container is emptied so the next Mount renders again.
func (a *Adapter) ReportLoadError() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.container.Clear()
	a.attached = false
	a.sdk = nil
	a.message = "PayPal konnte nicht geladen werden. Bitte lade die Seite neu."
	a.transition(LoadError)
	return &Error{Kind: ErrSdkLoadFailed, Detail: a.message}
}

// State returns the current lifecycle state.
func (a *Adapter) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Attached reports whether a button is rendered.
func (a *Adapter) Attached() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.attached
}

// Message returns the inline error from the last failed step, if any.
func (a *Adapter) Message() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.message
}

// Container exposes the rendered buttons.
func (a *Adapter) Container() *Container { return a.container }

// HTML returns the rendered buttons for embedding in a page.
func (a *Adapter) HTML() template.HTML { return a.container.HTML() }

func (a *Adapter) transition(to State) {
	from := a.state
	a.state = to
	metrics.PaymentEvents.WithLabelValues(to.String()).Inc()
	telemetry.Info("paywidget.transition", map[string]any{
		"widget": a.key,
		"from":   from.String(),
		"to":     to.String(),
	})
}
