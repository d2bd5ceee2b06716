// Package backend is the HTTP client for the external analysis, report and
// payment service.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"
)

const (
	pathAnalyze        = "/api/analyze"
	pathAnalysis       = "/api/analysis/"
	pathReportGenerate = "/api/report/generate"
	pathReport         = "/api/report/"
	pathCreatePayment  = "/api/create-payment"
	pathCapturePayment = "/api/capture-payment"

	maxErrorBody = 64 << 10
)

// APIError is a non-2xx reply. Detail holds the backend's human-readable
// message when it sent one.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("backend returned status %d", e.StatusCode)
}

// DetailOf returns the backend-provided message carried by err, if any.
func DetailOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}

// Client talks to the backend rooted at BaseURL.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a client. A non-positive timeout falls back to 120s.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the configured origin.
func (c *Client) BaseURL() string { return c.baseURL }

// Analyze uploads one document as multipart field "file".
func (c *Client) Analyze(ctx context.Context, fileName, contentType string, r io.Reader) (AnalysisResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("failed to create form part: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return AnalysisResult{}, fmt.Errorf("failed to write form part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return AnalysisResult{}, fmt.Errorf("failed to close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+pathAnalyze, &body)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	raw, err := c.doJSON(req)
	if err != nil {
		return AnalysisResult{}, err
	}
	return ParseAnalysisResult(raw)
}

// GetAnalysis fetches a stored analysis by id.
func (c *Client) GetAnalysis(ctx context.Context, id string) (AnalysisResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pathAnalysis+url.PathEscape(id), nil)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	raw, err := c.doJSON(req)
	if err != nil {
		return AnalysisResult{}, err
	}
	return ParseAnalysisResult(raw)
}

// GenerateReport posts a stored analysis verbatim and returns the PDF.
func (c *Client) GenerateReport(ctx context.Context, analysis []byte) (*Report, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+pathReportGenerate, bytes.NewReader(analysis))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/pdf")
	return c.doStream(req)
}

// DownloadReport fetches a previously generated report for id.
func (c *Client) DownloadReport(ctx context.Context, id string) (*Report, error) {
	return c.Download(ctx, pathReport+url.PathEscape(id)+"/download")
}

// Download streams a backend-relative path, such as the download_url
// returned by CapturePayment.
func (c *Client) Download(ctx context.Context, path string) (*Report, error) {
	if !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") {
		return nil, fmt.Errorf("download path must be backend-relative: %q", path)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/pdf")
	return c.doStream(req)
}

// CreatePayment asks the backend to open a PayPal order.
func (c *Client) CreatePayment(ctx context.Context, in PaymentRequest) (PaymentOrder, error) {
	var out PaymentOrder
	if err := c.postJSON(ctx, pathCreatePayment, in, &out); err != nil {
		return PaymentOrder{}, err
	}
	if strings.TrimSpace(out.OrderID) == "" {
		return PaymentOrder{}, fmt.Errorf("%w: no order id", ErrInvalidResponse)
	}
	return out, nil
}

// CapturePayment captures an approved order and triggers report delivery.
func (c *Client) CapturePayment(ctx context.Context, in CaptureRequest) (CaptureResult, error) {
	var out CaptureResult
	if err := c.postJSON(ctx, pathCapturePayment, in, &out); err != nil {
		return CaptureResult{}, err
	}
	return out, nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	raw, err := c.doJSON(req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

func (c *Client) doJSON(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, readAPIError(resp)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

func (c *Client) doStream(req *http.Request) (*Report, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, readAPIError(resp)
	}
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/pdf"
	}
	return &Report{Body: resp.Body, ContentType: ct, ContentLength: resp.ContentLength}, nil
}

func readAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Detail) > 0 {
		var detail string
		if err := json.Unmarshal(payload.Detail, &detail); err == nil {
			apiErr.Detail = strings.TrimSpace(detail)
		}
	}
	return apiErr
}
