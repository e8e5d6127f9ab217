package datastore

import (
	"context"
	"strings"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"github.com/tphakala/gear-tracker/internal/errors"
)

// dbError creates a properly categorized database error with context
func dbError(err error, operation, priority string, context ...any) error {
	builder := errors.New(err).
		Component("datastore").
		Category(errors.CategoryDatabase).
		Context("operation", operation)

	if priority != "" {
		builder = builder.Priority(priority)
	}

	for i := 0; i < len(context)-1; i += 2 {
		if key, ok := context[i].(string); ok {
			builder = builder.Context(key, context[i+1])
		}
	}

	return builder.Build()
}

// fileError creates a file-io error for database file operations
func fileError(err error, operation, path string) error {
	return errors.New(err).
		Component("datastore").
		Category(errors.CategoryFileIO).
		Context("operation", operation).
		Context("path", path).
		Build()
}

// sqliteCode extracts the SQLite error code, reporting false for non-SQLite errors.
func sqliteCode(err error) (sqlite3.ErrNo, sqlite3.ErrNoExtended, bool) {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code, sqliteErr.ExtendedCode, true
	}
	var sqliteErrPtr *sqlite3.Error
	if errors.As(err, &sqliteErrPtr) && sqliteErrPtr != nil {
		return sqliteErrPtr.Code, sqliteErrPtr.ExtendedCode, true
	}
	return 0, 0, false
}

// IsConstraintViolation reports whether err is any SQLite constraint failure.
func IsConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	code, _, ok := sqliteCode(err)
	return ok && code == sqlite3.ErrConstraint
}

// IsUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY constraint failure.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	_, ext, ok := sqliteCode(err)
	return ok && (ext == sqlite3.ErrConstraintUnique || ext == sqlite3.ErrConstraintPrimaryKey)
}

// IsLocked reports whether err is SQLITE_BUSY or SQLITE_LOCKED.
func IsLocked(err error) bool {
	if err == nil {
		return false
	}
	code, _, ok := sqliteCode(err)
	if ok {
		return code == sqlite3.ErrBusy || code == sqlite3.ErrLocked
	}
	return strings.Contains(strings.ToLower(err.Error()), "database is locked")
}

// StorageError wraps a storage engine failure as a categorized error.
// Constraint failures become conflict errors; cancellation keeps its own category.
func StorageError(err error, component, operation string) error {
	if err == nil {
		return nil
	}
	category := errors.CategoryDatabase
	priority := errors.PriorityMedium
	switch {
	case IsConstraintViolation(err):
		category = errors.CategoryConflict
		priority = errors.PriorityLow
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		category = errors.CategoryCancellation
		priority = errors.PriorityLow
	case IsLocked(err):
		priority = errors.PriorityHigh
	}
	return errors.New(err).
		Component(component).
		Category(category).
		Priority(priority).
		Context("operation", operation).
		Build()
}
