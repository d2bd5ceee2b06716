package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrInvalidResponse marks a 2xx reply whose body could not be decoded.
var ErrInvalidResponse = errors.New("invalid backend response")

// Issue is one finding in the free preview.
type Issue struct {
	Title         string `json:"title"`
	Severity      string `json:"severity"`
	TimeMinutes   int    `json:"time_minutes"`
	ImpactPoints  int    `json:"impact_points"`
	Description   string `json:"description,omitempty"`
	CriterionCode string `json:"criterion_code,omitempty"`
}

// AnalysisResult is the backend's scored output for one business plan.
// Raw keeps the exact payload so it can be stored and replayed verbatim.
type AnalysisResult struct {
	AnalysisID             string   `json:"analysis_id,omitempty"`
	SessionID              string   `json:"session_id,omitempty"`
	Score                  int      `json:"score"`
	PotentialScore         int      `json:"potential_score"`
	RiskLevel              string   `json:"risk_level"`
	BusinessName           string   `json:"business_name"`
	DetectedIndustry       string   `json:"detected_industry"`
	PositiveAspects        []string `json:"positive_aspects"`
	PersonalizedSummary    string   `json:"personalized_summary,omitempty"`
	TopIssues              []Issue  `json:"top_issues"`
	CriteriaFulfilledCount int      `json:"criteria_fulfilled_count"`
	CriteriaTotalCount     int      `json:"criteria_total_count"`
	TotalFixesCount        int      `json:"total_fixes_count"`

	Raw json.RawMessage `json:"-"`
}

// ID returns the identifier the result is correlated by.
func (r AnalysisResult) ID() string {
	if id := strings.TrimSpace(r.AnalysisID); id != "" {
		return id
	}
	return strings.TrimSpace(r.SessionID)
}

// ParseAnalysisResult decodes raw and keeps a copy of it on the result.
func ParseAnalysisResult(raw []byte) (AnalysisResult, error) {
	var out AnalysisResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return AnalysisResult{}, fmt.Errorf("%w: decode analysis result: %v", ErrInvalidResponse, err)
	}
	out.Raw = append(json.RawMessage(nil), raw...)
	return out, nil
}

// PaymentRequest is the body of POST /api/create-payment.
type PaymentRequest struct {
	AnalysisID string  `json:"analysis_id"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
}

// PaymentOrder is the backend's reply to create-payment.
type PaymentOrder struct {
	OrderID     string `json:"order_id"`
	ApprovalURL string `json:"approval_url,omitempty"`
}

// CaptureRequest is the body of POST /api/capture-payment.
type CaptureRequest struct {
	OrderID       string `json:"order_id"`
	AnalysisID    string `json:"analysis_id"`
	CustomerEmail string `json:"customer_email"`
	CustomerName  string `json:"customer_name"`
}

// CaptureResult is the backend's reply to capture-payment.
type CaptureResult struct {
	DownloadURL string `json:"download_url"`
	OrderID     string `json:"order_id,omitempty"`
	CaptureID   string `json:"capture_id,omitempty"`
	Message     string `json:"message,omitempty"`
}

// Report is a streamed PDF. Callers must close Body.
type Report struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}
