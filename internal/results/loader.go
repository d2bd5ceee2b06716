// Package results resolves and renders an analysis for the results page.
package results

import (
	"context"
	"errors"
	"strings"

	"zuschusscheck-web/internal/backend"
	"zuschusscheck-web/internal/resultstore"
	"zuschusscheck-web/internal/shared/metrics"
	"zuschusscheck-web/internal/shared/telemetry"
)

var (
	ErrNotFound       = errors.New("analysis not found")
	ErrDownloadFailed = errors.New("report download failed")
)

// Source tells where a loaded result came from.
type Source string

const (
	SourceCache    Source = "cache"
	SourceNetwork  Source = "network"
	SourceFallback Source = "fallback"
)

// Fetcher retrieves a stored analysis from the backend.
type Fetcher interface {
	GetAnalysis(ctx context.Context, id string) (backend.AnalysisResult, error)
}

// Loader resolves a result from the session first, then the backend, then
// whatever the session holds.
type Loader struct {
	API Fetcher
}

// NewLoader constructs a Loader.
func NewLoader(api Fetcher) *Loader {
	return &Loader{API: api}
}

// Load returns the result for targetID. A stored result for a different id
// is returned when the backend fetch fails.
func (l *Loader) Load(ctx context.Context, sess *resultstore.Session, targetID string) (backend.AnalysisResult, Source, error) {
	targetID = strings.TrimSpace(targetID)
	if targetID == "" || targetID == "undefined" {
		return backend.AnalysisResult{}, "", ErrNotFound
	}

	storedID, raw, storeErr := sess.LastResult(ctx)
	if storeErr != nil && !errors.Is(storeErr, resultstore.ErrNotFound) {
		telemetry.Warn("results.store.read_failed", map[string]any{
			"analysis_id": targetID,
			"err":         storeErr,
		})
	}
	var cached *backend.AnalysisResult
	if storeErr == nil {
		if res, err := backend.ParseAnalysisResult(raw); err == nil {
			cached = &res
		}
	}

	if cached != nil && storedID == targetID {
		return l.done(targetID, *cached, SourceCache), SourceCache, nil
	}

	res, fetchErr := l.API.GetAnalysis(ctx, targetID)
	if fetchErr == nil {
		if err := sess.SetLastResult(ctx, targetID, res.Raw); err != nil {
			telemetry.Warn("results.store.write_failed", map[string]any{
				"analysis_id": targetID,
				"err":         err,
			})
		}
		return l.done(targetID, res, SourceNetwork), SourceNetwork, nil
	}

	if cached != nil {
		telemetry.Warn("results.load.fallback", map[string]any{
			"analysis_id": targetID,
			"stored_id":   storedID,
			"err":         fetchErr,
		})
		return l.done(targetID, *cached, SourceFallback), SourceFallback, nil
	}

	telemetry.Info("results.load.not_found", map[string]any{
		"analysis_id": targetID,
		"err":         fetchErr,
	})
	return backend.AnalysisResult{}, "", ErrNotFound
}

func (l *Loader) done(targetID string, res backend.AnalysisResult, src Source) backend.AnalysisResult {
	metrics.ResultLoads.WithLabelValues(string(src)).Inc()
	telemetry.Info("results.load", map[string]any{
		"analysis_id": targetID,
		"source":      string(src),
	})
	return res
}
