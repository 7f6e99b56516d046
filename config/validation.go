package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags and custom rules.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	return validateCustomRules(cfg)
}

// validateCustomRules covers the backend sections, which are untyped maps until a factory decodes them.
func validateCustomRules(cfg *Config) error {
	switch cfg.Metadata.Type {
	case "postgres":
		if stringValue(cfg.Metadata.Postgres, "dsn") == "" {
			return fmt.Errorf("metadata.postgres.dsn: required for postgres metadata")
		}
	case "sqlite":
		if stringValue(cfg.Metadata.SQLite, "path") == "" {
			return fmt.Errorf("metadata.sqlite.path: required for sqlite metadata")
		}
	}

	switch cfg.Storage.Type {
	case "s3":
		if stringValue(cfg.Storage.S3, "endpoint") == "" {
			return fmt.Errorf("storage.s3.endpoint: required for s3 storage")
		}
	case "local":
		if stringValue(cfg.Storage.Local, "path") == "" {
			return fmt.Errorf("storage.local.path: required for local storage")
		}
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		e := validationErrs[0]
		return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
			e.Namespace(), e.Tag(), e.Value())
	}
	return err
}

func stringValue(section map[string]any, key string) string {
	if section == nil {
		return ""
	}
	value, _ := section[key].(string)
	return value
}
