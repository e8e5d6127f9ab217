package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/tphakala/gear-tracker/internal/datastore"
	"github.com/tphakala/gear-tracker/internal/errors"
)

// Sentinel errors for repository operations.
// They are wrapped in categorized errors, so callers can use both errors.Is
// and the category helpers from the errors package.
var (
	ErrFirearmNotFound           = errors.NewStd("firearm not found")
	ErrNFAItemNotFound           = errors.NewStd("nfa item not found")
	ErrSoftGearNotFound          = errors.NewStd("soft gear not found")
	ErrAttachmentNotFound        = errors.NewStd("attachment not found")
	ErrConsumableNotFound        = errors.NewStd("consumable not found")
	ErrReloadBatchNotFound       = errors.NewStd("reload batch not found")
	ErrBorrowerNotFound          = errors.NewStd("borrower not found")
	ErrCheckoutNotFound          = errors.NewStd("checkout not found")
	ErrMaintenanceLogNotFound    = errors.NewStd("maintenance log not found")
	ErrLoadoutNotFound           = errors.NewStd("loadout not found")
	ErrLoadoutItemNotFound       = errors.NewStd("loadout item not found")
	ErrLoadoutConsumableNotFound = errors.NewStd("loadout consumable not found")
	ErrLoadoutCheckoutNotFound   = errors.NewStd("loadout checkout not found")
	ErrTransferNotFound          = errors.NewStd("transfer not found")

	// ErrBorrowerHasActiveCheckouts blocks deleting a borrower that still holds items.
	ErrBorrowerHasActiveCheckouts = errors.NewStd("borrower has active checkouts")

	// ErrCheckoutAlreadyReturned indicates the checkout was closed earlier.
	ErrCheckoutAlreadyReturned = errors.NewStd("checkout already returned")

	// ErrInsufficientStock indicates a ledger entry would drive a consumable negative.
	ErrInsufficientStock = errors.NewStd("insufficient stock")

	// ErrUnsupportedItemType indicates the item type has no checkout status.
	ErrUnsupportedItemType = errors.NewStd("unsupported item type")

	// ErrDuplicateKey indicates a unique constraint violation.
	ErrDuplicateKey = errors.NewStd("duplicate key")

	// ErrInvalidInput indicates an entity failed validation.
	ErrInvalidInput = errors.NewStd("invalid input")
)

const component = "repository"

// notFound wraps a not-found sentinel with the looked up identifier.
func notFound(sentinel error, identifier string) error {
	return errors.New(fmt.Errorf("%w: %s", sentinel, identifier)).
		Component(component).
		Category(errors.CategoryNotFound).
		Priority(errors.PriorityLow).
		Context("identifier", identifier).
		Build()
}

// lookupError translates gorm.ErrRecordNotFound into the sentinel and wraps anything else.
func lookupError(err error, sentinel error, identifier, operation string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(sentinel, identifier)
	}
	return storageError(err, operation)
}

// storageError wraps engine failures. Unique violations also match ErrDuplicateKey.
func storageError(err error, operation string) error {
	if err == nil {
		return nil
	}
	if errors.IsCategory(err, errors.CategoryNotFound) ||
		errors.IsCategory(err, errors.CategoryPrecondition) ||
		errors.IsCategory(err, errors.CategoryValidation) {
		return err
	}
	if datastore.IsUniqueViolation(err) {
		err = fmt.Errorf("%w: %w", ErrDuplicateKey, err)
	}
	return datastore.StorageError(err, component, operation)
}

// preconditionError reports an entity that is not in a state allowing the operation.
func preconditionError(sentinel error, operation string, context ...any) error {
	builder := errors.New(sentinel).
		Component(component).
		Category(errors.CategoryPrecondition).
		Context("operation", operation)
	for i := 0; i < len(context)-1; i += 2 {
		if key, ok := context[i].(string); ok {
			builder = builder.Context(key, context[i+1])
		}
	}
	return builder.Build()
}

// validationError wraps a struct validation failure.
func validationError(err error, entity string) error {
	return errors.New(fmt.Errorf("%w: %w", ErrInvalidInput, err)).
		Component(component).
		Category(errors.CategoryValidation).
		Priority(errors.PriorityLow).
		Context("entity", entity).
		Build()
}
