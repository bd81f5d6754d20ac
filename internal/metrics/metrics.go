// Package metrics provides Prometheus metrics for report generation and the HTTP API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReportsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskflow_reports_generated_total",
			Help: "Total number of reports generated",
		},
		[]string{"kind", "format"},
	)
	ReportsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskflow_reports_failed_total",
			Help: "Total number of report generations that failed",
		},
		[]string{"kind"},
	)
	ReportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskflow_report_generation_duration_seconds",
			Help:    "Report generation duration in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"kind", "format"},
	)
	ExportCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskflow_export_cache_lookups_total",
			Help: "Rendered export cache lookups by result",
		},
		[]string{"result"},
	)
	ScheduledRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskflow_scheduled_report_runs_total",
			Help: "Scheduled report runs by outcome",
		},
		[]string{"job", "outcome"},
	)
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskflow_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskflow_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

func RecordReportGenerated(kind, format string, duration time.Duration) {
	ReportsGenerated.WithLabelValues(kind, format).Inc()
	ReportDuration.WithLabelValues(kind, format).Observe(duration.Seconds())
}

func RecordReportFailed(kind string) {
	ReportsFailed.WithLabelValues(kind).Inc()
}

func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	ExportCacheLookups.WithLabelValues(result).Inc()
}

func RecordScheduledRun(job, outcome string) {
	ScheduledRuns.WithLabelValues(job, outcome).Inc()
}

func RecordHTTPRequest(method, endpoint, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
