// Package observability defines the Prometheus metrics exported on /metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ImportDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "virex_import_duration_seconds",
		Help:    "Time spent processing one import file, from parse to last write.",
		Buckets: prometheus.DefBuckets,
	}, []string{"target", "mode"})

	ImportRowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "virex_import_rows_total",
		Help: "Rows processed by import, labelled by outcome (inserted, updated, skipped).",
	}, []string{"target", "outcome"})

	ImportDiagnosticsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "virex_import_diagnostics_total",
		Help: "Validation diagnostics emitted by import, by severity.",
	}, []string{"severity"})

	ImportOperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "virex_import_operation_errors_total",
		Help: "Planned writes that failed against the store.",
	}, []string{"target", "type"})

	SeriesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "virex_series_created_total",
		Help: "Series rows created on demand while resolving import references.",
	})

	ActiveImports = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "virex_active_imports",
		Help: "Imports currently holding a limiter slot.",
	})

	ImportsRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "virex_imports_rejected_total",
		Help: "Imports rejected because no limiter slot freed up in time.",
	})

	PlansCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "virex_import_plans_created_total",
		Help: "Preview plans stored for later execution.",
	})

	DownloadsStoredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "virex_downloads_stored_total",
		Help: "Download files handled, by result (stored, failed).",
	}, []string{"result"})

	AuditPurgedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "virex_audit_purged_total",
		Help: "Audit entries deleted by the retention job.",
	})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "virex_http_requests_total",
		Help: "HTTP requests served, by route pattern and status class.",
	}, []string{"route", "status"})

	RateLimitedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "virex_rate_limited_total",
		Help: "Requests rejected by the per-client rate limiter.",
	}, []string{"scope"})
)
