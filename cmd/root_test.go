package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/gear-tracker/internal/buildinfo"
	"github.com/tphakala/gear-tracker/internal/conf"
	"github.com/tphakala/gear-tracker/internal/datastore"
	"github.com/tphakala/gear-tracker/internal/datastore/entities"
	"github.com/tphakala/gear-tracker/internal/datastore/repository"
)

const quietConfig = `
logging:
  console:
    enabled: false
  fileoutput:
    enabled: false
`

type fixture struct {
	config    string
	db        string
	firearmID string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	f := &fixture{
		config: filepath.Join(dir, "config.yaml"),
		db:     filepath.Join(dir, "tracker.db"),
	}
	require.NoError(t, os.WriteFile(f.config, []byte(quietConfig), 0o600))

	store, err := datastore.Open(t.Context(), datastore.Options{Path: f.db})
	require.NoError(t, err)
	defer func() { require.NoError(t, store.Close()) }()

	repos := repository.New(store.DB())
	rifle := &entities.Firearm{
		Name: "Rifle", Caliber: "308", SerialNumber: "R-1",
		PurchaseDate: entities.Date(2020, 1, 2), CleanIntervalRounds: 500,
	}
	require.NoError(t, repos.Firearms.Add(t.Context(), rifle))
	require.NoError(t, repos.Borrowers.Add(t.Context(), &entities.Borrower{Name: "Alex"}))
	f.firearmID = rifle.ID
	return f
}

func (f *fixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := RootCommand(&conf.Settings{}, buildinfo.NewContext("test", ""))
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", f.config, "--database", f.db}, args...))
	err := root.ExecuteContext(t.Context())
	return out.String(), err
}

func TestRootCommand_ExportImportCycle(t *testing.T) {
	f := newFixture(t)
	backupFile := filepath.Join(t.TempDir(), "backup.csv")

	_, err := f.run(t, "export", "--output", backupFile)
	require.NoError(t, err)

	data, err := os.ReadFile(backupFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "=== FIREARMS ===")
	assert.Contains(t, string(data), "R-1")

	out, err := f.run(t, "import", "--dry-run", backupFile)
	require.NoError(t, err)
	assert.Contains(t, out, "FIREARMS")

	out, err = f.run(t, "import", "--quiet", "--on-duplicate", "skip", backupFile)
	require.NoError(t, err)
	assert.Contains(t, out, "skipped 2")

	_, err = f.run(t, "import", "--on-duplicate", "sideways", backupFile)
	require.Error(t, err)
}

func TestRootCommand_CheckoutAndMaintenance(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "checkout", "item", "firearm", f.firearmID, "Alex", "--due", "2020-01-01")
	require.NoError(t, err)
	assert.Contains(t, out, "Checked out FIREARM "+f.firearmID)

	out, err = f.run(t, "checkout", "list", "--overdue")
	require.NoError(t, err)
	assert.Contains(t, out, f.firearmID)

	_, err = f.run(t, "checkout", "item", "firearm", f.firearmID, "Alex")
	require.Error(t, err, "a checked out firearm cannot be checked out again")

	out, err = f.run(t, "maintenance", "fire", f.firearmID, "600")
	require.NoError(t, err)
	assert.Contains(t, out, "Maintenance needed")

	out, err = f.run(t, "maintenance", "due")
	require.NoError(t, err)
	assert.Contains(t, out, "Rifle")

	_, err = f.run(t, "maintenance", "clean", f.firearmID, "--notes", "bore brushed")
	require.NoError(t, err)

	out, err = f.run(t, "maintenance", "status", f.firearmID)
	require.NoError(t, err)
	assert.Contains(t, out, "Rounds since cleaning: 0")
	assert.Contains(t, out, "No maintenance needed")
}

func TestRootCommand_BackupAndStats(t *testing.T) {
	f := newFixture(t)
	dest := filepath.Join(t.TempDir(), "copy.db")

	out, err := f.run(t, "backup", dest)
	require.NoError(t, err)
	assert.Contains(t, out, dest)
	assert.FileExists(t, dest)

	out, err = f.run(t, "stats", "--metrics")
	require.NoError(t, err)
	assert.Contains(t, out, "firearms")
	assert.Contains(t, out, "geartracker_db_table_rows")
}

func TestRootCommand_Template(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "template", "--entity", "BORROWERS")
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "=== BORROWERS ==="))
	assert.NotContains(t, out, "=== FIREARMS ===")
}
