package inventory

import (
	"fmt"

	"github.com/tphakala/gear-tracker/internal/errors"
)

const component = "inventory"

var (
	ErrItemUnavailable      = errors.NewStd("item is not available")
	ErrNeedsMaintenance     = errors.NewStd("firearm needs maintenance")
	ErrFirearmCheckedOut    = errors.NewStd("firearm is checked out")
	ErrFirearmTransferred   = errors.NewStd("firearm is already transferred")
	ErrLoadoutNotReady      = errors.NewStd("loadout has critical issues")
	ErrLoadoutEmpty         = errors.NewStd("loadout has no items or consumables")
	ErrLoadoutCheckedOut    = errors.NewStd("loadout is already checked out")
	ErrLoadoutNotCheckedOut = errors.NewStd("loadout is not checked out")
	ErrInvalidQuantity      = errors.NewStd("quantity must be positive")
)

// preconditionError reports an entity whose state forbids the operation.
func preconditionError(err error, operation string, context ...any) error {
	builder := errors.New(err).
		Component(component).
		Category(errors.CategoryPrecondition).
		Context("operation", operation)
	for i := 0; i+1 < len(context); i += 2 {
		if key, ok := context[i].(string); ok {
			builder = builder.Context(key, context[i+1])
		}
	}
	return builder.Build()
}

// quantityError rejects a non-positive quantity argument.
func quantityError(operation string, quantity int) error {
	return errors.New(fmt.Errorf("%w: got %d", ErrInvalidQuantity, quantity)).
		Component(component).
		Category(errors.CategoryValidation).
		Priority(errors.PriorityLow).
		Context("operation", operation).
		Build()
}
