package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrFoodItemNotFound is returned by repositories when no item has the requested id
	ErrFoodItemNotFound = errors.New("food item not found")

	// ErrInvalidArgument marks malformed search input. Callers wrap it with a detail message.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrBatchCommit is returned when the validated items of a batch could not be persisted
	ErrBatchCommit = errors.New("batch commit failed")
)

// Field names referenced by validation errors
const (
	FieldName     = "name"
	FieldType     = "type"
	FieldQuantity = "quantity"
	FieldUnit     = "unit"
)

// ValidationError reports a single invalid field of a food item
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError reports whether err carries a *ValidationError
func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// invalidArgument wraps ErrInvalidArgument with a caller-facing message
func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
