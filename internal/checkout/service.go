// Package checkout runs the purchase funnel from email capture to the
// success page.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"zuschusscheck-web/internal/backend"
	"zuschusscheck-web/internal/resultstore"
	"zuschusscheck-web/internal/shared/telemetry"
)

const (
	StepEmail    = "email"
	StepPayment  = "payment"
	StepComplete = "complete"
	StepPaid     = "paid"
)

var (
	ErrInvalidContact = errors.New("invalid contact details")
	ErrContactMissing = errors.New("no contact details for checkout")
	ErrNoPayment      = errors.New("no completed payment")
)

// PaymentAPI is the backend surface the funnel uses.
type PaymentAPI interface {
	CreatePayment(ctx context.Context, in backend.PaymentRequest) (backend.PaymentOrder, error)
	CapturePayment(ctx context.Context, in backend.CaptureRequest) (backend.CaptureResult, error)
	Download(ctx context.Context, path string) (*backend.Report, error)
}

// ContactForm is the email capture step.
type ContactForm struct {
	Email string `form:"email" validate:"required,email,max=254"`
	Name  string `form:"name" validate:"max=200"`
}

// ContactError names the form field that failed validation.
type ContactError struct {
	Field string
}

func (e *ContactError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidContact, e.Field)
}

func (e *ContactError) Unwrap() error { return ErrInvalidContact }

// Service holds the funnel's business logic.
type Service struct {
	API      PaymentAPI
	Amount   float64
	Currency string

	validate *validator.Validate
}

// NewService constructs a Service.
func NewService(api PaymentAPI, amount float64, currency string) *Service {
	if amount <= 0 {
		amount = 39.00
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = "EUR"
	}
	return &Service{API: api, Amount: amount, Currency: currency, validate: validator.New()}
}

// Price is the display price.
func (s *Service) Price() string { return FormatPrice(s.Amount, s.Currency) }

// SaveContact validates form and moves the visitor to the payment step.
func (s *Service) SaveContact(ctx context.Context, sess *resultstore.Session, analysisID string, form ContactForm) error {
	form.Email = strings.TrimSpace(form.Email)
	form.Name = strings.TrimSpace(form.Name)
	if err := s.validate.Struct(form); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return &ContactError{Field: strings.ToLower(fieldErrs[0].Field())}
		}
		return fmt.Errorf("%w: %v", ErrInvalidContact, err)
	}
	return sess.SetCheckout(ctx, resultstore.Checkout{
		AnalysisID:    analysisID,
		Step:          StepPayment,
		CustomerEmail: form.Email,
		CustomerName:  form.Name,
	})
}

// Contact returns the funnel state for analysisID.
func (s *Service) Contact(ctx context.Context, sess *resultstore.Session, analysisID string) (resultstore.Checkout, bool) {
	co, err := sess.Checkout(ctx)
	if err != nil || co.AnalysisID != analysisID {
		return resultstore.Checkout{}, false
	}
	return co, true
}

// CreateOrder opens a payment order for analysisID.
func (s *Service) CreateOrder(ctx context.Context, analysisID string) (string, error) {
	order, err := s.API.CreatePayment(ctx, backend.PaymentRequest{
		AnalysisID: analysisID,
		Amount:     s.Amount,
		Currency:   s.Currency,
	})
	if err != nil {
		telemetry.Warn("checkout.order.failed", map[string]any{
			"analysis_id": analysisID,
			"detail":      backend.DetailOf(err),
			"err":         err,
		})
		return "", err
	}
	telemetry.Info("checkout.order.created", map[string]any{
		"analysis_id": analysisID,
		"order_id":    order.OrderID,
	})
	return order.OrderID, nil
}

// Capture captures orderID and stores the handoff for the success page.
func (s *Service) Capture(ctx context.Context, sess *resultstore.Session, analysisID, orderID string) (resultstore.PaymentSuccess, error) {
	co, ok := s.Contact(ctx, sess, analysisID)
	if !ok || co.CustomerEmail == "" {
		return resultstore.PaymentSuccess{}, ErrContactMissing
	}

	out, err := s.API.CapturePayment(ctx, backend.CaptureRequest{
		OrderID:       orderID,
		AnalysisID:    analysisID,
		CustomerEmail: co.CustomerEmail,
		CustomerName:  co.CustomerName,
	})
	if err != nil {
		telemetry.Warn("checkout.capture.failed", map[string]any{
			"analysis_id": analysisID,
			"order_id":    orderID,
			"detail":      backend.DetailOf(err),
			"err":         err,
		})
		return resultstore.PaymentSuccess{}, err
	}

	rec := resultstore.PaymentSuccess{
		OrderID:       orderID,
		AnalysisID:    analysisID,
		DownloadURL:   out.DownloadURL,
		CustomerEmail: co.CustomerEmail,
	}
	if err := sess.SetPaymentSuccess(ctx, rec); err != nil {
		return resultstore.PaymentSuccess{}, fmt.Errorf("store payment: %w", err)
	}
	co.Step = StepComplete
	if err := sess.SetCheckout(ctx, co); err != nil {
		telemetry.Warn("checkout.state.write_failed", map[string]any{
			"analysis_id": analysisID,
			"err":         err,
		})
	}
	telemetry.Info("checkout.capture.completed", map[string]any{
		"analysis_id": analysisID,
		"order_id":    orderID,
	})
	return rec, nil
}

// Success returns the stored payment handoff.
func (s *Service) Success(ctx context.Context, sess *resultstore.Session) (resultstore.PaymentSuccess, error) {
	rec, err := sess.PaymentSuccess(ctx)
	if err != nil {
		if errors.Is(err, resultstore.ErrNotFound) {
			return resultstore.PaymentSuccess{}, ErrNoPayment
		}
		return resultstore.PaymentSuccess{}, err
	}
	if rec.OrderID == "" {
		return resultstore.PaymentSuccess{}, ErrNoPayment
	}
	return rec, nil
}

// DownloadPaid streams the report referenced by the payment handoff.
func (s *Service) DownloadPaid(ctx context.Context, sess *resultstore.Session) (*backend.Report, resultstore.PaymentSuccess, error) {
	rec, err := s.Success(ctx, sess)
	if err != nil {
		return nil, resultstore.PaymentSuccess{}, err
	}
	if rec.DownloadURL == "" {
		return nil, rec, ErrNoPayment
	}
	rep, err := s.API.Download(ctx, rec.DownloadURL)
	if err != nil {
		return nil, rec, err
	}
	return rep, rec, nil
}
