package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ImportExportMetrics tracks CSV backup and restore activity
type ImportExportMetrics struct {
	rowsTotal        *prometheus.CounterVec
	validationIssues *prometheus.CounterVec
	runsTotal        *prometheus.CounterVec
	runDuration      *prometheus.HistogramVec

	collectors []prometheus.Collector
}

// NewImportExportMetrics creates and registers import/export metrics
func NewImportExportMetrics(registry *prometheus.Registry) (*ImportExportMetrics, error) {
	m := &ImportExportMetrics{
		rowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "geartracker_import_rows_total",
				Help: "Imported rows by section and outcome",
			},
			[]string{"section", "outcome"}, // imported, skipped, failed
		),
		validationIssues: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "geartracker_import_validation_issues_total",
				Help: "Validation issues found during import",
			},
			[]string{"severity"},
		),
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "geartracker_importexport_runs_total",
				Help: "Import and export runs by kind and status",
			},
			[]string{"kind", "status"}, // kind: import, export, preview, template
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "geartracker_importexport_duration_seconds",
				Help:    "Duration of import and export runs",
				Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount15),
			},
			[]string{"kind"},
		),
	}
	m.collectors = []prometheus.Collector{m.rowsTotal, m.validationIssues, m.runsTotal, m.runDuration}

	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Describe implements prometheus.Collector
func (m *ImportExportMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements prometheus.Collector
func (m *ImportExportMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// RecordRows adds n rows with the given outcome for a section
func (m *ImportExportMetrics) RecordRows(section, outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.rowsTotal.WithLabelValues(section, outcome).Add(float64(n))
}

// RecordValidationIssue counts one validation issue by severity
func (m *ImportExportMetrics) RecordValidationIssue(severity string) {
	if m == nil {
		return
	}
	m.validationIssues.WithLabelValues(severity).Inc()
}

// RecordRun records a completed run and its duration in seconds
func (m *ImportExportMetrics) RecordRun(kind, status string, duration float64) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(kind, status).Inc()
	m.runDuration.WithLabelValues(kind).Observe(duration)
}
