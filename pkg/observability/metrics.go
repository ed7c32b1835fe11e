package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics must be global for registration
var (
	// ReportsRendered tracks the total number of report generations
	ReportsRendered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fsg_reports_rendered_total",
			Help: "Total number of report generations",
		},
		[]string{"report", "status"}, // status: success, failed
	)

	// RenderDuration measures report generation duration in seconds
	RenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fsg_render_duration_seconds",
			Help:    "Report generation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"report"},
	)

	// VariablesResolved counts variables resolved per report (memo hits
	// within a resolution pass do not count)
	VariablesResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fsg_variables_resolved_total",
			Help: "Total number of variables resolved against a dataset",
		},
		[]string{"report"},
	)

	// CacheRequests counts rendered-report cache lookups by outcome
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fsg_report_cache_requests_total",
			Help: "Rendered-report cache lookups",
		},
		[]string{"outcome"}, // outcome: hit, miss, error
	)

	// DatasetsLoaded tracks the number of datasets currently loaded
	DatasetsLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fsg_datasets_loaded",
			Help: "Number of datasets currently loaded",
		},
	)

	// DatasetRows tracks the row count per loaded dataset
	DatasetRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fsg_dataset_rows",
			Help: "Row count per loaded dataset",
		},
		[]string{"dataset"},
	)

	// APIRequests counts API requests by route and status
	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fsg_api_requests_total",
			Help: "API requests by route and status",
		},
		[]string{"route", "status"},
	)
)
