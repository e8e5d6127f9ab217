package datastore

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gorm.io/gorm"
	gormschema "gorm.io/gorm/schema"

	"github.com/tphakala/gear-tracker/internal/datastore/entities"
	"github.com/tphakala/gear-tracker/internal/errors"
	"github.com/tphakala/gear-tracker/internal/logger"
	"github.com/tphakala/gear-tracker/internal/observability/metrics"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(t.Context(), Options{Path: path, Logger: logger.Discard()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func schemaSQL(t *testing.T, s *Store) []string {
	t.Helper()
	var stmts []string
	require.NoError(t, s.DB().Raw("SELECT sql FROM sqlite_master WHERE sql IS NOT NULL ORDER BY name").Scan(&stmts).Error)
	return stmts
}

func TestOpen_CreatesSchema(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "tracker.db")
	s := openTestStore(t, path)

	_, err := os.Stat(path)
	require.NoError(t, err)

	counts, err := s.TableCounts(t.Context())
	require.NoError(t, err)
	assert.Len(t, counts, len(schema))
	for _, name := range TableNames() {
		assert.Zero(t, counts[name], name)
	}
}

func TestOpen_EmptyPath(t *testing.T) {
	t.Parallel()

	_, err := Open(t.Context(), Options{Logger: logger.Discard()})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}

func TestMigrate_Idempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tracker.db")
	first := openTestStore(t, path)
	before := schemaSQL(t, first)
	require.NoError(t, first.Close())

	second := openTestStore(t, path)
	report, err := second.Migrate(t.Context())
	require.NoError(t, err)
	assert.True(t, report.Empty(), "second migration should be a no-op: %+v", report)
	assert.Equal(t, before, schemaSQL(t, second))
}

func TestMigrate_AddsMissingColumnsAndRenamesLegacy(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "legacy.db")
	legacy, err := Open(t.Context(), Options{Path: path, Logger: logger.Discard(), SkipMigration: true})
	require.NoError(t, err)
	require.NoError(t, legacy.DB().Exec(`CREATE TABLE firearms (
		id TEXT PRIMARY KEY, name TEXT NOT NULL DEFAULT '', caliber TEXT NOT NULL DEFAULT '',
		maintenance_conditons TEXT NOT NULL DEFAULT '')`).Error)
	require.NoError(t, legacy.DB().Exec(
		`INSERT INTO firearms (id, name, caliber, maintenance_conditons) VALUES ('f1', 'Rifle', '5.56', 'rust')`).Error)
	require.NoError(t, legacy.Close())

	s := openTestStore(t, path)

	cols, err := tableColumns(s.DB(), "firearms")
	require.NoError(t, err)
	assert.True(t, cols["maintenance_conditions"])
	assert.False(t, cols["maintenance_conditons"])
	assert.True(t, cols["rounds_fired"])
	assert.True(t, cols["transfer_status"])

	var row struct {
		Name                  string
		MaintenanceConditions string
		Status                string
		TransferStatus        string
		RoundsFired           int
	}
	require.NoError(t, s.DB().Raw(
		"SELECT name, maintenance_conditions, status, transfer_status, rounds_fired FROM firearms WHERE id = 'f1'").
		Scan(&row).Error)
	assert.Equal(t, "Rifle", row.Name)
	assert.Equal(t, "rust", row.MaintenanceConditions, "renamed column keeps its data")
	assert.Equal(t, "AVAILABLE", row.Status)
	assert.Equal(t, "OWNED", row.TransferStatus)
	assert.Zero(t, row.RoundsFired)

	report, err := s.Migrate(t.Context())
	require.NoError(t, err)
	assert.True(t, report.Empty())
}

func TestMigrate_RenameSkippedWhenTargetExists(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "both.db")
	legacy, err := Open(t.Context(), Options{Path: path, Logger: logger.Discard(), SkipMigration: true})
	require.NoError(t, err)
	require.NoError(t, legacy.DB().Exec(`CREATE TABLE firearms (id TEXT PRIMARY KEY,
		maintenance_conditons TEXT NOT NULL DEFAULT '', maintenance_conditions TEXT NOT NULL DEFAULT '')`).Error)
	require.NoError(t, legacy.Close())

	s := openTestStore(t, path)
	cols, err := tableColumns(s.DB(), "firearms")
	require.NoError(t, err)
	assert.True(t, cols["maintenance_conditons"], "legacy column is never dropped")
	assert.True(t, cols["maintenance_conditions"])
}

func TestSchema_MatchesEntityColumns(t *testing.T) {
	t.Parallel()

	models := []any{
		&entities.Borrower{}, &entities.Firearm{}, &entities.NFAItem{}, &entities.SoftGear{},
		&entities.Attachment{}, &entities.Consumable{}, &entities.ConsumableTransaction{},
		&entities.ReloadBatch{}, &entities.MaintenanceLog{}, &entities.Checkout{}, &entities.Transfer{},
		&entities.Loadout{}, &entities.LoadoutItem{}, &entities.LoadoutConsumable{}, &entities.LoadoutCheckout{},
	}
	require.Len(t, models, len(schema))

	cache := &sync.Map{}
	for _, model := range models {
		parsed, err := gormschema.Parse(model, cache, gormschema.NamingStrategy{})
		require.NoError(t, err)

		idx := slices.IndexFunc(schema, func(tb table) bool { return tb.Name == parsed.Table })
		require.GreaterOrEqual(t, idx, 0, "no schema entry for table %s", parsed.Table)

		var declared []string
		for _, c := range schema[idx].Columns {
			declared = append(declared, c.Name)
		}
		assert.ElementsMatch(t, declared, parsed.DBNames, parsed.Table)
	}
}

func TestMigrate_CreatesIndexes(t *testing.T) {
	t.Parallel()

	s := openTestStore(t, filepath.Join(t.TempDir(), "tracker.db"))
	migrator := s.DB().Migrator()
	for _, idx := range indexes {
		assert.True(t, migrator.HasIndex(idx.Table, idx.Name), idx.Name)
	}

	require.NoError(t, s.DB().Exec("DROP INDEX idx_checkouts_borrower").Error)
	report, err := s.Migrate(t.Context())
	require.NoError(t, err)
	assert.Empty(t, report.IndexWarnings)
	assert.True(t, migrator.HasIndex("checkouts", "idx_checkouts_borrower"))
}

func TestActiveCheckoutIndex(t *testing.T) {
	t.Parallel()

	s := openTestStore(t, filepath.Join(t.TempDir(), "tracker.db"))
	db := s.DB()

	require.NoError(t, db.Exec("INSERT INTO checkouts (id, item_id, item_type, borrower_id, checkout_date) VALUES ('c1', 'i1', 'FIREARM', 'b1', 1)").Error)
	err := db.Exec("INSERT INTO checkouts (id, item_id, item_type, borrower_id, checkout_date) VALUES ('c2', 'i1', 'FIREARM', 'b1', 2)").Error
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.True(t, IsConstraintViolation(err))

	require.NoError(t, db.Exec("UPDATE checkouts SET actual_return = 3 WHERE id = 'c1'").Error)
	require.NoError(t, db.Exec("INSERT INTO checkouts (id, item_id, item_type, borrower_id, checkout_date) VALUES ('c2', 'i1', 'FIREARM', 'b1', 4)").Error)
}

func TestTransaction_RollbackAndMetrics(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := metrics.NewDatastoreMetrics(registry)
	require.NoError(t, err)

	s, err := Open(t.Context(), Options{
		Path:    filepath.Join(t.TempDir(), "tracker.db"),
		Logger:  logger.Discard(),
		Metrics: m,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	boom := errors.NewStd("boom")
	err = s.Transaction(t.Context(), func(tx *gorm.DB) error {
		require.NoError(t, tx.Exec("INSERT INTO borrowers (id, name) VALUES ('b1', 'Alice')").Error)
		return boom
	})
	require.ErrorIs(t, err, boom)

	counts, err := s.TableCounts(t.Context())
	require.NoError(t, err)
	assert.Zero(t, counts["borrowers"])

	samples, err := metrics.Gather(registry, "geartracker_db_transactions_total")
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Contains(t, samples[0].Labels, metrics.StatusRollback)
}

func TestSnapshot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := openTestStore(t, filepath.Join(dir, "tracker.db"))
	require.NoError(t, s.DB().Exec("INSERT INTO borrowers (id, name) VALUES ('b1', 'Alice')").Error)

	dest := filepath.Join(dir, "backups", "snap's.db")
	require.NoError(t, s.Snapshot(t.Context(), dest))

	snap := openTestStore(t, dest)
	counts, err := snap.TableCounts(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts["borrowers"])

	err = s.Snapshot(t.Context(), dest)
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))
}

func TestTableNames_DependencyOrder(t *testing.T) {
	t.Parallel()

	names := TableNames()
	index := func(name string) int { return slices.Index(names, name) }
	assert.Less(t, index("borrowers"), index("checkouts"))
	assert.Less(t, index("firearms"), index("attachments"))
	assert.Less(t, index("loadouts"), index("loadout_items"))
	assert.Less(t, index("consumables"), index("consumable_transactions"))
}

func TestClose_Twice(t *testing.T) {
	t.Parallel()

	s, err := Open(context.Background(), Options{Path: filepath.Join(t.TempDir(), "tracker.db"), Logger: logger.Discard()})
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}
