// Package metrics provides datastore metrics for observability
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// DatastoreMetrics contains Prometheus metrics for datastore operations
type DatastoreMetrics struct {
	registry *prometheus.Registry

	// Database operation metrics
	dbOperationsTotal      *prometheus.CounterVec
	dbOperationDuration    *prometheus.HistogramVec
	dbOperationErrorsTotal *prometheus.CounterVec

	// Transaction metrics
	dbTransactionsTotal   *prometheus.CounterVec
	dbTransactionDuration *prometheus.HistogramVec

	// Table size and maintenance metrics
	dbTableRowCountGauge       *prometheus.GaugeVec
	dbSizeBytesGauge           prometheus.Gauge
	migrationColumnsAddedTotal prometheus.Counter
	backupOperationsTotal      *prometheus.CounterVec

	collectors []prometheus.Collector
}

// NewDatastoreMetrics creates and registers new datastore metrics
func NewDatastoreMetrics(registry *prometheus.Registry) (*DatastoreMetrics, error) {
	m := &DatastoreMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// initMetrics initializes all Prometheus metrics
func (m *DatastoreMetrics) initMetrics() {
	m.dbOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geartracker_db_operations_total",
			Help: "Total number of database statements",
		},
		[]string{"operation", "status"}, // operation: SELECT, INSERT, UPDATE, DELETE, ...
	)

	m.dbOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "geartracker_db_operation_duration_seconds",
			Help:    "Time taken for database statements",
			Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount15),
		},
		[]string{"operation"},
	)

	m.dbOperationErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geartracker_db_operation_errors_total",
			Help: "Total number of failed database statements",
		},
		[]string{"operation", "error_type"},
	)

	m.dbTransactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geartracker_db_transactions_total",
			Help: "Total number of database transactions",
		},
		[]string{"status"}, // committed, rollback
	)

	m.dbTransactionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "geartracker_db_transaction_duration_seconds",
			Help:    "Time taken for database transactions",
			Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount15),
		},
		[]string{"status"},
	)

	m.dbTableRowCountGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "geartracker_db_table_rows",
			Help: "Number of rows per table",
		},
		[]string{"table"},
	)

	m.dbSizeBytesGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "geartracker_db_size_bytes",
			Help: "Size of the database file in bytes",
		},
	)

	m.migrationColumnsAddedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "geartracker_migration_columns_added_total",
			Help: "Columns added by additive schema migration",
		},
	)

	m.backupOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geartracker_backup_operations_total",
			Help: "Database snapshot operations",
		},
		[]string{"status"},
	)

	m.collectors = []prometheus.Collector{
		m.dbOperationsTotal,
		m.dbOperationDuration,
		m.dbOperationErrorsTotal,
		m.dbTransactionsTotal,
		m.dbTransactionDuration,
		m.dbTableRowCountGauge,
		m.dbSizeBytesGauge,
		m.migrationColumnsAddedTotal,
		m.backupOperationsTotal,
	}
}

// Describe implements prometheus.Collector
func (m *DatastoreMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements prometheus.Collector
func (m *DatastoreMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// RecordDbOperation records a statement outcome and duration in seconds
func (m *DatastoreMetrics) RecordDbOperation(operation string, duration float64, err error) {
	if m == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusError
		m.dbOperationErrorsTotal.WithLabelValues(operation, classifyError(err)).Inc()
	}
	m.dbOperationsTotal.WithLabelValues(operation, status).Inc()
	m.dbOperationDuration.WithLabelValues(operation).Observe(duration)
}

// RecordTransaction records a committed or rolled back transaction
func (m *DatastoreMetrics) RecordTransaction(status string, duration float64) {
	if m == nil {
		return
	}
	m.dbTransactionsTotal.WithLabelValues(status).Inc()
	m.dbTransactionDuration.WithLabelValues(status).Observe(duration)
}

// UpdateTableRowCount sets the row count gauge for a table
func (m *DatastoreMetrics) UpdateTableRowCount(table string, rows int64) {
	if m == nil {
		return
	}
	m.dbTableRowCountGauge.WithLabelValues(table).Set(float64(rows))
}

// UpdateDatabaseSize sets the database file size gauge
func (m *DatastoreMetrics) UpdateDatabaseSize(bytes int64) {
	if m == nil {
		return
	}
	m.dbSizeBytesGauge.Set(float64(bytes))
}

// RecordColumnsAdded counts columns added by migration
func (m *DatastoreMetrics) RecordColumnsAdded(n int) {
	if m == nil {
		return
	}
	if n > 0 {
		m.migrationColumnsAddedTotal.Add(float64(n))
	}
}

// RecordBackup records a snapshot attempt
func (m *DatastoreMetrics) RecordBackup(status string) {
	if m == nil {
		return
	}
	m.backupOperationsTotal.WithLabelValues(status).Inc()
}

// classifyError maps a database error to a low-cardinality label
func classifyError(err error) string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint"):
		return "unique_violation"
	case strings.Contains(msg, "constraint"):
		return "constraint_violation"
	case strings.Contains(msg, "locked") || strings.Contains(msg, "busy"):
		return "locked"
	case strings.Contains(msg, "no such table") || strings.Contains(msg, "no such column"):
		return "schema"
	case strings.Contains(msg, "context canceled") || strings.Contains(msg, "deadline exceeded"):
		return "cancelled"
	default:
		return "other"
	}
}
