package results

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"zuschusscheck-web/internal/backend"
	"zuschusscheck-web/internal/resultstore"
	"zuschusscheck-web/internal/shared/metrics"
	"zuschusscheck-web/internal/shared/telemetry"
	"zuschusscheck-web/internal/shared/util"
)

// ReportAPI is the backend surface used to obtain the PDF report.
type ReportAPI interface {
	GenerateReport(ctx context.Context, analysis []byte) (*backend.Report, error)
	DownloadReport(ctx context.Context, id string) (*backend.Report, error)
}

// ReportService fetches paid reports.
type ReportService struct {
	API        ReportAPI
	ReviewCode string
}

// NewReportService constructs a ReportService. An empty reviewCode
// disables review access.
func NewReportService(api ReportAPI, reviewCode string) *ReportService {
	return &ReportService{API: api, ReviewCode: strings.TrimSpace(reviewCode)}
}

// Allowed reports whether the visitor may download the report for id.
func (s *ReportService) Allowed(ctx context.Context, sess *resultstore.Session, id, review string) bool {
	if s.ReviewCode != "" && review != "" &&
		subtle.ConstantTimeCompare([]byte(review), []byte(s.ReviewCode)) == 1 {
		return true
	}
	paid, err := sess.PaymentSuccess(ctx)
	if err != nil {
		if !errors.Is(err, resultstore.ErrNotFound) {
			telemetry.Warn("results.report.payment_read_failed", map[string]any{
				"analysis_id": id,
				"err":         err,
			})
		}
		metrics.ReportDownloads.WithLabelValues("forbidden").Inc()
		return false
	}
	if paid.AnalysisID != id {
		metrics.ReportDownloads.WithLabelValues("forbidden").Inc()
		return false
	}
	return true
}

// Fetch generates the report from the analysis and falls back to the
// stored PDF for id.
func (s *ReportService) Fetch(ctx context.Context, id string, res backend.AnalysisResult) (*backend.Report, error) {
	genErr := errors.New("no analysis payload")
	if len(res.Raw) > 0 {
		rep, err := s.API.GenerateReport(ctx, res.Raw)
		if err == nil {
			metrics.ReportDownloads.WithLabelValues("generated").Inc()
			return rep, nil
		}
		genErr = err
	}

	rep, err := s.API.DownloadReport(ctx, id)
	if err == nil {
		metrics.ReportDownloads.WithLabelValues("downloaded").Inc()
		return rep, nil
	}

	metrics.ReportDownloads.WithLabelValues("failed").Inc()
	telemetry.Error("results.report.failed", map[string]any{
		"analysis_id":    id,
		"generate_error": genErr,
		"download_error": err,
	})
	return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, errors.Join(genErr, err))
}

// ReportFileName is the attachment name for a report download.
func ReportFileName(res backend.AnalysisResult, id string) string {
	name := util.HeaderSafeName(res.BusinessName)
	if name == "" {
		name = util.HeaderSafeName(id)
	}
	if name == "" {
		name = "Analyse"
	}
	return "ZuschussCheck_Report_" + name + ".pdf"
}

func resultsPath(id string) string {
	return "/results/" + url.PathEscape(id)
}
