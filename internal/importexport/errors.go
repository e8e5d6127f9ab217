package importexport

import (
	"fmt"

	"github.com/tphakala/gear-tracker/internal/datastore/repository"
	"github.com/tphakala/gear-tracker/internal/errors"
)

const component = "importexport"

var (
	// ErrImportCancelled is returned by a resolver decision to cancel the import.
	ErrImportCancelled = errors.NewStd("import cancelled")
	// ErrUnknownSection is returned for a template or export of an undefined section.
	ErrUnknownSection = errors.NewStd("unknown section")
	// ErrDanglingReference marks a row whose required reference resolves to nothing.
	ErrDanglingReference = errors.NewStd("dangling reference")
	// ErrInvalidEncoding is returned for a record that is not valid UTF-8.
	ErrInvalidEncoding = errors.NewStd("invalid UTF-8")
)

func unknownSectionError(name string) error {
	return errors.New(fmt.Errorf("%w: %q", ErrUnknownSection, name)).
		Component(component).
		Category(errors.CategoryValidation).
		Context("section", name).
		Build()
}

func writeError(err error, section string) error {
	return errors.New(err).
		Component(component).
		Category(errors.CategoryFileIO).
		Context("operation", "write_csv").
		Context("section", section).
		Build()
}

func danglingError(column, id string) error {
	return errors.New(fmt.Errorf("%w: %s %q does not exist", ErrDanglingReference, column, id)).
		Component(component).
		Category(errors.CategoryReference).
		Context("column", column).
		Context("id", id).
		Build()
}

func cellError(err error, column string) error {
	return errors.New(err).
		Component(component).
		Category(errors.CategoryValidation).
		Context("column", column).
		Build()
}

func storageError(err error, operation string) error {
	return errors.New(err).
		Component(component).
		Category(errors.CategoryDatabase).
		Context("operation", operation).
		Build()
}

// rowLevel reports whether err only concerns the row that raised it.
func rowLevel(err error) bool {
	return errors.Is(err, repository.ErrDuplicateKey) ||
		errors.IsValidation(err) ||
		errors.IsConflict(err) ||
		errors.IsNotFound(err) ||
		errors.IsPrecondition(err) ||
		errors.IsCategory(err, errors.CategoryReference)
}
