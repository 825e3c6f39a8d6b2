package repository

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound reports a write that targeted an absent row. Reads signal
// absence with a nil result instead.
var ErrNotFound = errors.New("not found")

// ValidationError reports client-supplied input rejected before any side
// effect. It is distinct from "not found", which repositories signal with a
// nil result and a nil error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// PriceUpdateError reports a server-side failure while persisting a price
// update. The wrapped transaction has been rolled back.
type PriceUpdateError struct {
	ProductID uuid.UUID
	Err       error
}

func (e *PriceUpdateError) Error() string {
	return fmt.Sprintf("price update failed for product %s: %v", e.ProductID, e.Err)
}

func (e *PriceUpdateError) Unwrap() error {
	return e.Err
}
