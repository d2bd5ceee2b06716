package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"zuschusscheck-web/internal/shared/telemetry"
)

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	telemetry.SetLogger(zap.New(core))
	t.Cleanup(func() { telemetry.SetLogger(nil) })
	return logs
}

func TestLoggingIncludesRequiredFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logs := observeLogs(t)

	router := gin.New()
	router.Use(RequestID(), Visitor(false), Logging())
	router.GET("/results/:sessionId", func(c *gin.Context) {
		c.Set("analysisId", c.Param("sessionId"))
		c.Set("resultSource", "cache")
		c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/results/a-1", nil)
	req.Header.Set("X-Request-Id", "req-1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	entries := logs.FilterMessage("request.complete").All()
	if len(entries) != 1 {
		t.Fatalf("expected one request.complete entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	for _, key := range []string{"request_id", "visitor_id", "route", "status", "duration_ms", "analysis_id", "result_source"} {
		if _, ok := fields[key]; !ok {
			t.Fatalf("missing log field: %s", key)
		}
	}
	if fields["request_id"] != "req-1" {
		t.Fatalf("unexpected request_id: %v", fields["request_id"])
	}
	if fields["route"] != "/results/:sessionId" {
		t.Fatalf("unexpected route: %v", fields["route"])
	}
	if fields["analysis_id"] != "a-1" {
		t.Fatalf("unexpected analysis_id: %v", fields["analysis_id"])
	}
	if fields["visitor_id"] == "" {
		t.Fatalf("expected visitor_id to be set")
	}
}

func TestLoggingSkipsMetricsScrape(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logs := observeLogs(t)

	router := gin.New()
	router.Use(Logging())
	router.GET("/metrics", func(c *gin.Context) { c.String(http.StatusOK, "") })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if n := logs.FilterMessage("request.complete").Len(); n != 0 {
		t.Fatalf("expected no request log for /metrics, got %d", n)
	}
}
