package resultstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"zuschusscheck-web/internal/shared/util"
)

// Slot names. Values are opaque JSON blobs with no versioning.
const (
	SlotAnalysisResult = "analysisResult"
	SlotLastAnalysisID = "lastAnalysisId"
	SlotPaymentSuccess = "paymentSuccess"
	SlotCheckout       = "checkout"
)

// PaymentSuccess is the handoff record the success page reads.
type PaymentSuccess struct {
	OrderID       string `json:"orderId"`
	AnalysisID    string `json:"analysisId"`
	DownloadURL   string `json:"downloadUrl"`
	CustomerEmail string `json:"customerEmail"`
}

// Checkout carries funnel progress between the preview and payment steps.
type Checkout struct {
	AnalysisID    string `json:"analysisId"`
	Step          string `json:"step"`
	CustomerEmail string `json:"customerEmail"`
	CustomerName  string `json:"customerName"`
}

// Session is a Store view bound to one visitor.
type Session struct {
	store   Store
	visitor string
	ns      string
}

// NewSession binds store to visitorID. An empty id yields a session whose
// reads miss and whose writes fail.
func NewSession(store Store, visitorID string) *Session {
	visitorID = strings.TrimSpace(visitorID)
	ns := ""
	if visitorID != "" {
		ns = util.HashKey(visitorID)
	}
	return &Session{store: store, visitor: visitorID, ns: ns}
}

// VisitorID returns the bound visitor id.
func (s *Session) VisitorID() string { return s.visitor }

func (s *Session) key(slot string) string {
	return s.ns + ":" + slot
}

var errNoVisitor = errors.New("session has no visitor")

// LastResult returns the stored result and the id it was stored under.
// The id is empty when only the result slot is populated.
func (s *Session) LastResult(ctx context.Context) (string, []byte, error) {
	if s.ns == "" {
		return "", nil, ErrNotFound
	}
	vals, err := s.store.GetMany(ctx, s.key(SlotAnalysisResult), s.key(SlotLastAnalysisID))
	if err != nil {
		return "", nil, err
	}
	if vals[0] == nil {
		return "", nil, ErrNotFound
	}
	return string(vals[1]), vals[0], nil
}

// SetLastResult overwrites both result slots in one write.
func (s *Session) SetLastResult(ctx context.Context, id string, raw []byte) error {
	if s.ns == "" {
		return errNoVisitor
	}
	if !json.Valid(raw) {
		return fmt.Errorf("result is not valid json")
	}
	return s.store.Set(ctx,
		Entry{Key: s.key(SlotAnalysisResult), Value: raw},
		Entry{Key: s.key(SlotLastAnalysisID), Value: []byte(id)},
	)
}

// PaymentSuccess returns the stored payment handoff.
func (s *Session) PaymentSuccess(ctx context.Context) (PaymentSuccess, error) {
	var out PaymentSuccess
	err := s.getJSON(ctx, SlotPaymentSuccess, &out)
	return out, err
}

// SetPaymentSuccess stores the payment handoff.
func (s *Session) SetPaymentSuccess(ctx context.Context, rec PaymentSuccess) error {
	return s.setJSON(ctx, SlotPaymentSuccess, rec)
}

// Checkout returns the stored funnel state.
func (s *Session) Checkout(ctx context.Context) (Checkout, error) {
	var out Checkout
	err := s.getJSON(ctx, SlotCheckout, &out)
	return out, err
}

// SetCheckout stores the funnel state.
func (s *Session) SetCheckout(ctx context.Context, c Checkout) error {
	return s.setJSON(ctx, SlotCheckout, c)
}

// Clear removes every slot of this visitor.
func (s *Session) Clear(ctx context.Context) error {
	if s.ns == "" {
		return nil
	}
	return s.store.Clear(ctx,
		s.key(SlotAnalysisResult),
		s.key(SlotLastAnalysisID),
		s.key(SlotPaymentSuccess),
		s.key(SlotCheckout),
	)
}

func (s *Session) getJSON(ctx context.Context, slot string, dst any) error {
	if s.ns == "" {
		return ErrNotFound
	}
	raw, err := s.store.Get(ctx, s.key(slot))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", slot, err)
	}
	return nil
}

func (s *Session) setJSON(ctx context.Context, slot string, v any) error {
	if s.ns == "" {
		return errNoVisitor
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", slot, err)
	}
	return s.store.Set(ctx, Entry{Key: s.key(slot), Value: raw})
}
