// Package analysis submits uploaded business plans to the backend and
// keeps the result in the visitor's session.
package analysis

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"zuschusscheck-web/internal/backend"
	"zuschusscheck-web/internal/resultstore"
	"zuschusscheck-web/internal/shared/metrics"
	"zuschusscheck-web/internal/shared/telemetry"
)

// Analyzer is the backend call Submit depends on.
type Analyzer interface {
	Analyze(ctx context.Context, fileName, contentType string, r io.Reader) (backend.AnalysisResult, error)
}

// UploadFile is a validated document ready for submission.
type UploadFile struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// Service runs one analysis per Submit call.
type Service struct {
	API Analyzer
	Now func() time.Time
}

// NewService wires a Service to api.
func NewService(api Analyzer) *Service {
	return &Service{API: api, Now: time.Now}
}

// Submit posts f and stores the result in sess before returning it.
// Nothing is stored on failure.
func (s *Service) Submit(ctx context.Context, sess *resultstore.Session, f UploadFile) (backend.AnalysisResult, error) {
	start := s.now()
	res, err := s.API.Analyze(ctx, f.Name, f.ContentType, f.Body)
	elapsed := s.now().Sub(start)
	if err != nil {
		se := classify(err)
		outcome := "analysis_failed"
		if errors.Is(se, ErrUploadFailed) {
			outcome = "upload_failed"
		}
		metrics.ObserveAnalysis(outcome, elapsed)
		telemetry.Warn("analysis.submit.failed", map[string]any{
			"outcome":     outcome,
			"file_type":   f.ContentType,
			"duration_ms": elapsed.Milliseconds(),
			"detail":      se.Detail,
			"err":         err,
		})
		return backend.AnalysisResult{}, se
	}

	id := res.ID()
	if strings.TrimSpace(id) == "" {
		metrics.ObserveAnalysis("analysis_failed", elapsed)
		telemetry.Warn("analysis.submit.missing_id", map[string]any{
			"duration_ms": elapsed.Milliseconds(),
		})
		return backend.AnalysisResult{}, &SubmitError{Kind: ErrAnalysisFailed, cause: backend.ErrInvalidResponse}
	}

	metrics.ObserveAnalysis("ok", elapsed)
	if err := sess.SetLastResult(ctx, id, res.Raw); err != nil {
		telemetry.Warn("analysis.submit.store_failed", map[string]any{
			"analysis_id": id,
			"err":         err,
		})
	}
	telemetry.Info("analysis.submit.completed", map[string]any{
		"analysis_id": id,
		"score":       res.Score,
		"risk_level":  res.RiskLevel,
		"duration_ms": elapsed.Milliseconds(),
	})
	return res, nil
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
