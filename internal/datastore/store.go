// Package datastore owns the single-file SQLite database: opening it, converging
// its schema, running transactions and taking consistent snapshots.
package datastore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tphakala/gear-tracker/internal/conf"
	"github.com/tphakala/gear-tracker/internal/errors"
	"github.com/tphakala/gear-tracker/internal/logger"
	"github.com/tphakala/gear-tracker/internal/observability/metrics"
)

const (
	// DefaultBusyTimeout is used when Options.BusyTimeout is zero
	DefaultBusyTimeout = 5 * time.Second

	snapshotRetries   = 3
	snapshotRetryWait = 500 * time.Millisecond
)

// Options configures Open.
type Options struct {
	Path               string                    // database file, created with its directory when missing
	Logger             logger.Logger             // nil uses the global "datastore" module logger
	Metrics            *metrics.DatastoreMetrics // nil disables metrics
	SlowQueryThreshold time.Duration             // 0 disables slow query warnings
	BusyTimeout        time.Duration
	SkipMigration      bool
}

// OptionsFromSettings returns the Open options for the configured database.
func OptionsFromSettings(settings *conf.Settings) Options {
	return Options{
		Path:               settings.Database.Path,
		SlowQueryThreshold: settings.Database.SlowQueryThreshold,
		BusyTimeout:        settings.Database.BusyTimeout,
	}
}

// Store is the handle to the gear tracker database. The connection pool holds
// a single connection, so callers inside Transaction must use the tx handle.
type Store struct {
	db      *gorm.DB
	path    string
	log     logger.Logger
	metrics *metrics.DatastoreMetrics

	closeOnce sync.Once
	closeErr  error
}

// Open opens or creates the database at opts.Path and migrates its schema.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if opts.Path == "" {
		return nil, errors.Newf("database path is empty").
			Component("datastore").
			Category(errors.CategoryConfiguration).
			Build()
	}
	log := opts.Logger
	if log == nil {
		log = logger.Global().Module("datastore")
	}
	busy := opts.BusyTimeout
	if busy <= 0 {
		busy = DefaultBusyTimeout
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o750); err != nil {
		return nil, fileError(err, "create_directory", filepath.Dir(opts.Path))
	}

	gormLogger := logger.NewGormLoggerAdapter(log, opts.SlowQueryThreshold).
		WithObserver(func(operation string, elapsed time.Duration, _ int64, err error) {
			opts.Metrics.RecordDbOperation(operation, elapsed.Seconds(), err)
		})

	// Foreign keys stay off: REFERENCES clauses are hints and deletes never cascade in storage.
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_foreign_keys=off", opts.Path, busy.Milliseconds())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, dbError(err, "open", errors.PriorityCritical, "path", opts.Path)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, dbError(err, "open", errors.PriorityCritical, "path", opts.Path)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, dbError(err, "ping", errors.PriorityCritical, "path", opts.Path)
	}

	s := &Store{
		db:      db,
		path:    opts.Path,
		log:     log,
		metrics: opts.Metrics,
	}

	if !opts.SkipMigration {
		if _, err := s.Migrate(ctx); err != nil {
			_ = s.Close()
			return nil, err
		}
	}

	log.Debug("database opened", logger.String("path", opts.Path))
	return s, nil
}

// DB returns the underlying GORM handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Transaction runs fn in a single database transaction. A nil error commits,
// anything else rolls back. Calling Transaction on the tx inside fn creates a savepoint.
func (s *Store) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	start := time.Now()
	err := s.db.WithContext(ctx).Transaction(fn)
	status := metrics.StatusCommitted
	if err != nil {
		status = metrics.StatusRollback
	}
	s.metrics.RecordTransaction(status, time.Since(start).Seconds())
	return err
}

// Snapshot writes a consistent copy of the database to dest using VACUUM INTO.
// dest must not exist. A locked database is retried a few times.
func (s *Store) Snapshot(ctx context.Context, dest string) error {
	if _, err := os.Stat(dest); err == nil {
		s.metrics.RecordBackup(metrics.StatusError)
		return errors.Newf("snapshot destination already exists: %s", dest).
			Component("datastore").
			Category(errors.CategoryConflict).
			Context("path", dest).
			Build()
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		s.metrics.RecordBackup(metrics.StatusError)
		return fileError(err, "snapshot", dest)
	}

	stmt := fmt.Sprintf("VACUUM INTO '%s'", strings.ReplaceAll(dest, "'", "''"))
	start := time.Now()
	var lastErr error
retry:
	for attempt := 1; attempt <= snapshotRetries; attempt++ {
		lastErr = s.db.WithContext(ctx).Exec(stmt).Error
		if lastErr == nil || !IsLocked(lastErr) {
			break
		}
		s.log.Warn("snapshot database locked, retrying",
			logger.Int("attempt", attempt),
			logger.Error(lastErr))
		select {
		case <-ctx.Done():
			lastErr = ctx.Err()
			break retry
		case <-time.After(snapshotRetryWait):
		}
	}
	if lastErr != nil {
		s.metrics.RecordBackup(metrics.StatusError)
		return errors.New(lastErr).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "snapshot").
			Context("path", dest).
			Timing("snapshot", time.Since(start)).
			Build()
	}

	s.metrics.RecordBackup(metrics.StatusSuccess)
	s.log.Info("snapshot written",
		logger.String("path", dest),
		logger.Duration("elapsed", time.Since(start)))
	return nil
}

// TableCounts returns the row count of every managed table and updates the row gauges.
func (s *Store) TableCounts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, len(schema))
	for _, name := range TableNames() {
		var n int64
		if err := s.db.WithContext(ctx).Table(name).Count(&n).Error; err != nil {
			return nil, dbError(err, "count", errors.PriorityLow, "table", name)
		}
		counts[name] = n
		s.metrics.UpdateTableRowCount(name, n)
	}
	return counts, nil
}

// Size returns the database file size in bytes and updates the size gauge.
// The WAL file is included when present.
func (s *Store) Size() (int64, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return 0, fileError(err, "stat", s.path)
	}
	size := info.Size()
	if wal, err := os.Stat(s.path + "-wal"); err == nil {
		size += wal.Size()
	}
	s.metrics.UpdateDatabaseSize(size)
	return size, nil
}

// Close closes the database. It is safe to call more than once.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		sqlDB, err := s.db.DB()
		if err != nil {
			s.closeErr = dbError(err, "close", errors.PriorityLow)
			return
		}
		if err := sqlDB.Close(); err != nil {
			s.closeErr = dbError(err, "close", errors.PriorityLow)
		}
	})
	return s.closeErr
}
