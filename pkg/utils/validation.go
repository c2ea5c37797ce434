package utils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "graphcore/pkg/errors"
)

var validate = validator.New()

// ValidateStruct validates a struct based on its validation tags. Field
// failures come back as *errors.ValidationErrors.
func ValidateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError collects validator failures into ValidationErrors
func formatValidationError(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	result := pkgerrors.NewValidationErrors()
	for _, e := range validationErrors {
		result.Add(fieldPath(e), formatFieldError(e))
	}
	return result
}

// fieldPath drops the root struct name from the namespace
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	return strings.ToLower(ns)
}

// formatFieldError formats a single field validation error
func formatFieldError(e validator.FieldError) string {
	field := fieldPath(e)

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must have at most %s entries", field, e.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
