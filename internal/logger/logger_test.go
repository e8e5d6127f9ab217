package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for line := range strings.SplitSeq(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestSlogLoggerLevelsAndFields(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := NewSlogLogger(buf, LogLevelInfo).Module("importexport").With(String("file", "backup.csv"))

	log.Debug("hidden")
	log.Info("section parsed", Int("rows", 3), Bool("dry_run", true))
	log.Error("row failed", Error(errors.New("bad date")))

	lines := decodeLines(t, buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "section parsed", lines[0]["msg"])
	assert.Equal(t, "importexport", lines[0]["module"])
	assert.Equal(t, "backup.csv", lines[0]["file"])
	assert.InDelta(t, 3, lines[0]["rows"], 0)
	assert.Equal(t, true, lines[0]["dry_run"])
	assert.Equal(t, "bad date", lines[1]["error"])
}

func TestModuleNesting(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := NewSlogLogger(buf, LogLevelDebug).Module("datastore").Module("migrate")
	log.Debug("column added")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "datastore.migrate", lines[0]["module"])
}

func TestWithContextTraceID(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := NewSlogLogger(buf, LogLevelInfo)
	log.WithContext(WithTraceID(context.Background(), "import-1")).Info("hello")
	log.WithContext(context.Background()).Info("plain")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "import-1", lines[0]["trace_id"])
	assert.NotContains(t, lines[1], "trace_id")
}

func TestCentralLoggerModuleLevels(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	cl, err := NewCentralLogger(&LoggingConfig{
		DefaultLevel: "info",
		Console:      &ConsoleOutput{Enabled: true, Level: "trace"},
		ModuleLevels: map[string]string{"datastore": "debug"},
	}, WithConsoleWriter(buf))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cl.Close() })

	cl.Module("inventory").Debug("not shown")
	cl.Module("datastore").Debug("shown")

	out := buf.String()
	assert.NotContains(t, out, "not shown")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "module=datastore")
	assert.NotContains(t, out, "time=")
}

func TestCentralLoggerFileOutput(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "app.log")
	cl, err := NewCentralLogger(&LoggingConfig{
		DefaultLevel: "info",
		Timezone:     "UTC",
		Console:      &ConsoleOutput{Enabled: false},
		FileOutput:   &FileOutput{Enabled: true, Path: path, Level: "info"},
	})
	require.NoError(t, err)

	cl.Module("cli").Info("export finished", Int("rows", 12))
	require.NoError(t, cl.Flush())
	require.NoError(t, cl.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := decodeLines(t, bytes.NewBuffer(data))
	require.Len(t, lines, 1)
	assert.Equal(t, "export finished", lines[0]["msg"])
	ts, ok := lines[0]["time"].(string)
	require.True(t, ok)
	_, err = time.Parse(time.RFC3339, ts)
	assert.NoError(t, err)
}

func TestInvalidTimezone(t *testing.T) {
	t.Parallel()

	_, err := NewCentralLogger(&LoggingConfig{Timezone: "Mars/Olympus"})
	assert.Error(t, err)

	_, err = NewCentralLogger(nil)
	assert.Error(t, err)
}

func TestGormAdapterObserver(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	var ops []string
	var errs []error
	adapter := NewGormLoggerAdapter(NewSlogLogger(buf, LogLevelWarn), time.Hour).
		WithObserver(func(op string, _ time.Duration, _ int64, err error) {
			ops = append(ops, op)
			errs = append(errs, err)
		})

	begin := time.Now()
	adapter.Trace(context.Background(), begin, func() (string, int64) { return "SELECT * FROM firearms", 2 }, nil)
	adapter.Trace(context.Background(), begin, func() (string, int64) { return "select * from x", 0 }, gorm.ErrRecordNotFound)
	adapter.Trace(context.Background(), begin, func() (string, int64) { return "INSERT INTO x", 0 }, errors.New("UNIQUE constraint failed"))

	assert.Equal(t, []string{"SELECT", "SELECT", "INSERT"}, ops)
	assert.NoError(t, errs[1])
	assert.Error(t, errs[2])

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "query error", lines[0]["msg"])
}

func TestSQLOperation(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "PRAGMA", sqlOperation("  pragma table_info(firearms)"))
	assert.Equal(t, "OTHER", sqlOperation(""))
	assert.Equal(t, "VACUUM", sqlOperation("VACUUM"))
}
