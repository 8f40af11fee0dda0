// Package errors provides common, reusable error values and helpers.
package errors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrUserAlreadyExists   = errors.New("user already exists")
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrValidation marks bad caller input; handlers map it to 400.
	ErrValidation = errors.New("validation failed")

	// ErrMalformedRow indicates an aggregate row from the data layer that
	// could not be decoded (e.g. an unparsable bucket date). This is a
	// contract violation by the collaborator, not bad caller input.
	ErrMalformedRow = errors.New("malformed aggregate row")

	// ErrNoAggregateSource indicates the configured stats source implements
	// none of the row shapes an aggregation understands.
	ErrNoAggregateSource = errors.New("stats source supports no aggregate row shape")
)

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
