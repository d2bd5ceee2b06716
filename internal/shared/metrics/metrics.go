package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AnalysisSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zc_analysis_submissions_total",
			Help: "Analysis uploads by outcome",
		},
		[]string{"outcome"},
	)

	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "zc_analysis_duration_seconds",
			Help:    "Round trip of the backend analysis call",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
	)

	UploadRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zc_upload_rejections_total",
			Help: "Uploads rejected before reaching the backend",
		},
		[]string{"reason"},
	)

	ResultLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zc_result_loads_total",
			Help: "Results page loads by resolved source",
		},
		[]string{"source"},
	)

	PaymentEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zc_payment_events_total",
			Help: "Payment widget transitions by kind",
		},
		[]string{"kind"},
	)

	ReportDownloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zc_report_downloads_total",
			Help: "Report downloads by outcome",
		},
		[]string{"outcome"},
	)
)

// ObserveAnalysis records one backend analysis call.
func ObserveAnalysis(outcome string, elapsed time.Duration) {
	AnalysisSubmissions.WithLabelValues(outcome).Inc()
	AnalysisDuration.Observe(elapsed.Seconds())
}

// Handler exposes the default registry in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
