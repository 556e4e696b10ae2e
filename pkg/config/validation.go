package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ValidateNaming validates a NamingConfig using struct tags.
func ValidateNaming(cfg *NamingConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}
	if cfg.Service.Address == cfg.Registration.Address {
		return fmt.Errorf("service and registration must bind distinct addresses, both got %q", cfg.Service.Address)
	}
	return nil
}

// ValidateStorage validates a StorageConfig using struct tags.
func ValidateStorage(cfg *StorageConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}
	if cfg.Data.Address == cfg.Command.Address {
		return fmt.Errorf("data and command must bind distinct addresses, both got %q", cfg.Data.Address)
	}
	return nil
}

func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok && len(validationErrs) > 0 {
		e := validationErrs[0]
		return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)", e.Namespace(), e.Tag(), e.Value())
	}
	return err
}
