package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatastoreMetricsRecording(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := NewDatastoreMetrics(registry)
	require.NoError(t, err)

	m.RecordDbOperation("INSERT", 0.002, nil)
	m.RecordDbOperation("INSERT", 0.003, errors.New("UNIQUE constraint failed: firearms.serial_number"))
	m.RecordTransaction(StatusCommitted, 0.01)
	m.UpdateTableRowCount("firearms", 4)
	m.RecordColumnsAdded(3)
	m.RecordColumnsAdded(0)

	assert.InDelta(t, 1, testutil.ToFloat64(m.dbOperationsTotal.WithLabelValues("INSERT", StatusSuccess)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.dbOperationErrorsTotal.WithLabelValues("INSERT", "unique_violation")), 0)
	assert.InDelta(t, 4, testutil.ToFloat64(m.dbTableRowCountGauge.WithLabelValues("firearms")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(m.migrationColumnsAddedTotal), 0)
}

func TestDuplicateRegistrationFails(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	_, err := NewDatastoreMetrics(registry)
	require.NoError(t, err)
	_, err = NewDatastoreMetrics(registry)
	assert.Error(t, err)
}

func TestNilMetricsAreNoops(t *testing.T) {
	t.Parallel()

	var dm *DatastoreMetrics
	var im *ImportExportMetrics
	assert.NotPanics(t, func() {
		dm.RecordDbOperation("SELECT", 0, nil)
		dm.RecordBackup(StatusSuccess)
		im.RecordRows("FIREARMS", RowImported, 2)
		im.RecordRun("import", StatusSuccess, 1)
	})
}

func TestGather(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	dm, err := NewDatastoreMetrics(registry)
	require.NoError(t, err)
	im, err := NewImportExportMetrics(registry)
	require.NoError(t, err)

	dm.UpdateTableRowCount("soft_gear", 2)
	dm.UpdateTableRowCount("firearms", 5)
	im.RecordRows("FIREARMS", RowImported, 5)
	im.RecordRun("import", StatusSuccess, 0.5)

	samples, err := Gather(registry, "geartracker_db_table_rows")
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, "table=firearms", samples[0].Labels)
	assert.InDelta(t, 5, samples[0].Value, 0)

	samples, err = Gather(registry, "geartracker_import")
	require.NoError(t, err)
	require.NotEmpty(t, samples)
	assert.Equal(t, "geartracker_import_rows_total", samples[0].Name)
	assert.Equal(t, "outcome=imported,section=FIREARMS", samples[0].Labels)

	samples, err = Gather(registry, "geartracker_importexport_duration")
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.InDelta(t, 1, samples[0].Value, 0)
}

func TestClassifyError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "locked", classifyError(errors.New("database is locked")))
	assert.Equal(t, "schema", classifyError(errors.New("no such column: foo")))
	assert.Equal(t, "constraint_violation", classifyError(errors.New("CHECK constraint failed")))
	assert.Equal(t, "other", classifyError(errors.New("disk I/O error")))
}
