package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/gear-tracker/internal/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadExplicitFile(t *testing.T) {
	path := writeConfig(t, `
database:
  path: /tmp/gear.db
  slowquerythreshold: 50ms
logging:
  defaultlevel: debug
import:
  defaultresolution: rename
  allownegativestock: true
`)

	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/gear.db", settings.Database.Path)
	assert.Equal(t, 50*time.Millisecond, settings.Database.SlowQueryThreshold)
	assert.Equal(t, DefaultBusyTimeout, settings.Database.BusyTimeout)
	assert.Equal(t, "debug", settings.Logging.DefaultLevel)
	assert.Equal(t, "rename", settings.Import.DefaultResolution)
	assert.True(t, settings.Import.AllowNegativeStock)
	assert.Equal(t, DefaultExportVersion, settings.Export.Version)
	assert.Same(t, settings, GetSettings())
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "database:\n  path: /tmp/a.db\n")
	t.Setenv("GEARTRACKER_DATABASE_PATH", "/tmp/env.db")
	t.Setenv("GEARTRACKER_IMPORT_RESOLUTION", "overwrite")

	settings, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env.db", settings.Database.Path)
	assert.Equal(t, "overwrite", settings.Import.DefaultResolution)
}

func TestLoadRejectsInvalidEnv(t *testing.T) {
	path := writeConfig(t, "")
	t.Setenv("GEARTRACKER_IMPORT_RESOLUTION", "merge")

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}

func TestLoadRejectsInvalidResolution(t *testing.T) {
	path := writeConfig(t, "import:\n  defaultresolution: merge\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestLoadRejectsInvalidLogLevel(t *testing.T) {
	path := writeConfig(t, "logging:\n  defaultlevel: verbose\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestLoadCreatesDefaultConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Setenv("HOME", home)
	t.Setenv("AppData", home)

	dir, err := ConfigDir()
	require.NoError(t, err)

	settings, err := Load("")
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "config.yaml"))
	assert.Equal(t, filepath.Join(dir, DatabaseFileName), settings.Database.Path)
	assert.Equal(t, DefaultResolution, settings.Import.DefaultResolution)
	assert.Equal(t, DefaultSlowQueryThreshold, settings.Database.SlowQueryThreshold)
}

func TestSaveYAMLConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	settings := DefaultSettings()
	settings.Database.Path = "/data/tracker.db"
	settings.Import.AllowNegativeStock = true

	require.NoError(t, SaveYAMLConfig(path, settings))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/tracker.db", loaded.Database.Path)
	assert.True(t, loaded.Import.AllowNegativeStock)
	assert.Equal(t, DefaultSlowQueryThreshold, loaded.Database.SlowQueryThreshold)
}

func TestLoadFlagOverridesFile(t *testing.T) {
	path := writeConfig(t, `
database:
  path: /tmp/from-file.db
debug: false
`)
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("database", "", "")
	flags.Bool("debug", false, "")
	require.NoError(t, flags.Parse([]string{"--database", "/tmp/from-flag.db"}))

	settings, err := Load(path,
		FlagBinding{Key: "database.path", Flag: flags.Lookup("database")},
		FlagBinding{Key: "debug", Flag: flags.Lookup("debug")},
	)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from-flag.db", settings.Database.Path)
	assert.False(t, settings.Debug, "unset flags do not override the file")
}
