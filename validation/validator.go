package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// FieldIssue is one failed struct-tag rule.
type FieldIssue struct {
	// Field is the dotted path of the field using json tag names.
	Field string `json:"field"`
	// Tag is the failed validator tag, e.g. "required".
	Tag string `json:"tag"`
	// Message is a human-readable description.
	Message string `json:"message"`
}

// getValidator returns the singleton validator instance.
func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Use json tag names for field names in error messages
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return toSnakeCase(fld.Name)
			}
			return name
		})
	})
	return validate
}

// Struct validates s using its `validate` struct tags and returns every
// failed rule. A nil result means s is valid.
func Struct(s any) ([]FieldIssue, error) {
	err := getValidator().Struct(s)
	if err == nil {
		return nil, nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil, err
	}

	issues := make([]FieldIssue, 0, len(validationErrors))
	for _, e := range validationErrors {
		issues = append(issues, FieldIssue{
			Field:   fieldPath(e.Namespace()),
			Tag:     e.Tag(),
			Message: formatValidationError(e.Tag(), e.Param()),
		})
	}
	return issues, nil
}

// Var validates a single value against a validator tag such as "url" or
// "required,email". It returns a readable message when the value fails.
func Var(value any, tag string) (string, bool) {
	err := getValidator().Var(value, tag)
	if err == nil {
		return "", true
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		e := validationErrors[0]
		return formatValidationError(e.Tag(), e.Param()), false
	}
	return err.Error(), false
}

// fieldPath drops the top-level struct name from a validator namespace.
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

// formatValidationError creates a human-readable error message.
func formatValidationError(tag, param string) string {
	switch tag {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "url":
		return "must be a valid URL"
	case "uuid":
		return "must be a valid UUID"
	case "hostname_port":
		return "must be a host:port pair"
	case "oneof":
		return "must be one of: " + param
	default:
		return "failed " + tag + " validation"
	}
}

// toSnakeCase converts a field name to snake_case.
func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune('_')
		}
		if r >= 'A' && r <= 'Z' {
			result.WriteRune(r + 32) // lowercase
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
