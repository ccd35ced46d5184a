package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing retailer.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a duplicate retailer name.
	ErrAlreadyExists = errors.New("already exists")
	// ErrValidation signals malformed input rejected by the schema layer.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidFilterCombination signals mutually inconsistent search filters.
	ErrInvalidFilterCombination = errors.New("invalid filter combination")
	// ErrInvalidCategory signals an unknown category token.
	ErrInvalidCategory = errors.New("invalid category")
	// ErrMissingContactInfo signals a retailer without a phone number.
	ErrMissingContactInfo = errors.New("missing contact info")
	// ErrStoreUnavailable signals a failed persistence call.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// FieldError attaches the offending input field to one of the sentinel kinds.
type FieldError struct {
	Kind    error
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Kind.Error(), e.Field, e.Message)
}

func (e *FieldError) Unwrap() error { return e.Kind }

// NewFieldError creates a FieldError of the given kind.
func NewFieldError(kind error, field, message string) error {
	return &FieldError{Kind: kind, Field: field, Message: message}
}

// FieldOf returns the field path carried by err, if any.
func FieldOf(err error) (string, bool) {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe.Field, true
	}
	return "", false
}
