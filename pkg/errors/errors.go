package errors

import (
	"errors"
	"fmt"
)

// GetDomainError extracts a DomainError from an error chain
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// IsType checks if an error is of a specific type
func IsType(err error, errType DomainErrorType) bool {
	domainErr := GetDomainError(err)
	return domainErr != nil && domainErr.Type == errType
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return IsType(err, DomainNotFoundError)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return IsType(err, DomainValidationError)
}

// IsBadCommandArguments checks if a command failed to resolve its arguments
func IsBadCommandArguments(err error) bool {
	return errors.Is(err, ErrBadCommandArguments)
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted message
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}
