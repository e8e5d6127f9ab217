package datastore

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/tphakala/gear-tracker/internal/errors"
	"github.com/tphakala/gear-tracker/internal/logger"
)

// MigrationReport describes the schema changes applied by one migration pass.
// An empty report means the database already matched the desired schema.
type MigrationReport struct {
	TablesCreated  []string
	ColumnsAdded   []string // table.column
	ColumnsRenamed []string // table.from->to
	IndexWarnings  []string
}

// Empty reports whether the pass changed nothing.
func (r *MigrationReport) Empty() bool {
	return len(r.TablesCreated) == 0 && len(r.ColumnsAdded) == 0 && len(r.ColumnsRenamed) == 0
}

// Migrate converges the database onto the desired schema. It creates missing
// tables, renames known legacy columns, adds missing columns with their
// defaults and ensures indexes. Columns are never dropped and rows are never
// rewritten, so running it repeatedly is safe.
func (s *Store) Migrate(ctx context.Context) (*MigrationReport, error) {
	log := s.log.With(logger.String("operation", "migrate"))
	report := &MigrationReport{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, t := range schema {
			if err := migrateTable(tx, t, report); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// A legacy database may hold rows that violate a unique index.
	// The index is skipped and reported rather than touching the data.
	migrator := s.db.WithContext(ctx).Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.Table, idx.Name) {
			continue
		}
		if err := s.db.WithContext(ctx).Exec(idx.sql()).Error; err != nil {
			log.Warn("index creation skipped",
				logger.String("index", idx.Name),
				logger.Error(err))
			report.IndexWarnings = append(report.IndexWarnings, err.Error())
		}
	}

	s.metrics.RecordColumnsAdded(len(report.ColumnsAdded))

	if report.Empty() {
		log.Debug("schema up to date")
	} else {
		log.Info("schema migrated",
			logger.Int("tables_created", len(report.TablesCreated)),
			logger.Int("columns_added", len(report.ColumnsAdded)),
			logger.Int("columns_renamed", len(report.ColumnsRenamed)))
	}
	return report, nil
}

// migrateTable creates a missing table from its column list, or renames
// legacy columns and adds missing ones with their DDL defaults.
func migrateTable(tx *gorm.DB, t table, report *MigrationReport) error {
	migrator := tx.Migrator()
	if !migrator.HasTable(t.Name) {
		if err := tx.Exec(createTableSQL(t)).Error; err != nil {
			return dbError(err, "create_table", errors.PriorityCritical, "table", t.Name)
		}
		report.TablesCreated = append(report.TablesCreated, t.Name)
		return nil
	}

	existing, err := tableColumns(tx, t.Name)
	if err != nil {
		return err
	}

	for _, rn := range legacyRenames {
		if rn.Table != t.Name || !existing[rn.From] || existing[rn.To] {
			continue
		}
		if err := migrator.RenameColumn(t.Name, rn.From, rn.To); err != nil {
			return dbError(err, "rename_column", errors.PriorityCritical,
				"table", t.Name, "column", rn.From)
		}
		delete(existing, rn.From)
		existing[rn.To] = true
		report.ColumnsRenamed = append(report.ColumnsRenamed, fmt.Sprintf("%s.%s->%s", t.Name, rn.From, rn.To))
	}

	for _, c := range t.Columns {
		if existing[c.Name] {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", t.Name, c.Name, addColumnDDL(c))
		if err := tx.Exec(stmt).Error; err != nil {
			return dbError(err, "add_column", errors.PriorityCritical,
				"table", t.Name, "column", c.Name)
		}
		existing[c.Name] = true
		report.ColumnsAdded = append(report.ColumnsAdded, t.Name+"."+c.Name)
	}
	return nil
}

// tableColumns returns the set of column names, empty when the table does not exist.
func tableColumns(tx *gorm.DB, name string) (map[string]bool, error) {
	migrator := tx.Migrator()
	if !migrator.HasTable(name) {
		return map[string]bool{}, nil
	}
	cols, err := migrator.ColumnTypes(name)
	if err != nil {
		return nil, dbError(err, "column_types", errors.PriorityHigh, "table", name)
	}
	set := make(map[string]bool, len(cols))
	for _, c := range cols {
		set[c.Name()] = true
	}
	return set, nil
}

func createTableSQL(t table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (", t.Name)
	for i, c := range t.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s %s", c.Name, c.DDL)
		if c.Ref != "" {
			fmt.Fprintf(&b, " REFERENCES %s", c.Ref)
		}
	}
	b.WriteString(")")
	return b.String()
}

// addColumnDDL strips PRIMARY KEY, which SQLite rejects in ALTER TABLE ADD COLUMN.
func addColumnDDL(c column) string {
	if c.DDL == ddlID {
		return "TEXT"
	}
	return c.DDL
}
