package entities

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// enumValue is implemented by the textual enumerations in this package.
type enumValue interface {
	Valid() bool
}

// defaulter is implemented by entities with default field values.
type defaulter interface {
	SetDefaults()
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		_ = v.RegisterValidation("enum", validateEnum)
		_ = v.RegisterValidation("nfafirearm", validateNFAFirearm)
		validate = v
	})
	return validate
}

// validateEnum accepts any field whose value reports itself as a declared member.
func validateEnum(fl validator.FieldLevel) bool {
	if e, ok := fl.Field().Interface().(enumValue); ok {
		return e.Valid()
	}
	return false
}

func validateNFAFirearm(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(NFAType)
	return ok && t.ValidForFirearm()
}

// Validate applies defaults and checks the struct tags of an entity.
// The returned error lists every failing field.
func Validate(v any) error {
	if d, ok := v.(defaulter); ok {
		d.SetDefaults()
	}
	err := getValidator().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !asValidationErrors(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("invalid %s: %s", structName(v), strings.Join(msgs, "; "))
}

func asValidationErrors(err error, out *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors) //nolint:errorlint // validator returns the concrete type
	if ok {
		*out = verrs
	}
	return ok
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "enum", "nfafirearm":
		return fmt.Sprintf("%s has invalid value %q", field, fmt.Sprint(fe.Value()))
	case "gte":
		return fmt.Sprintf("%s must be >= %s", field, fe.Param())
	case "email":
		return field + " must be a valid email address"
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

func structName(v any) string {
	name := fmt.Sprintf("%T", v)
	name = strings.TrimPrefix(name, "*")
	return strings.TrimPrefix(name, "entities.")
}
