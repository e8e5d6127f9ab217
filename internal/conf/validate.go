package conf

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tphakala/gear-tracker/internal/errors"
)

var validate = validator.New()

// ValidateSettings checks struct-level constraints and logging levels.
func ValidateSettings(settings *Settings) error {
	if settings == nil {
		return errors.Newf("settings cannot be nil").
			Component("configuration").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if err := validate.Struct(settings); err != nil {
		return errors.New(fmt.Errorf("config validation failed: %w", err)).
			Component("configuration").
			Category(errors.CategoryValidation).
			Build()
	}

	levels := []string{settings.Logging.DefaultLevel}
	if settings.Logging.Console != nil {
		levels = append(levels, settings.Logging.Console.Level)
	}
	if settings.Logging.FileOutput != nil {
		levels = append(levels, settings.Logging.FileOutput.Level)
	}
	for _, l := range settings.Logging.ModuleLevels {
		levels = append(levels, l)
	}
	for _, l := range levels {
		if l == "" {
			continue
		}
		if err := validateEnvLogLevel(l); err != nil {
			return errors.New(fmt.Errorf("invalid log level %q: %w", l, err)).
				Component("configuration").
				Category(errors.CategoryValidation).
				Context("level", strings.ToLower(l)).
				Build()
		}
	}

	return nil
}
