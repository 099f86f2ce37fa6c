package provider

import (
	"errors"
	"fmt"
)

// Common provider errors that can be checked with errors.Is.
var (
	// ErrNotFound is returned when a lookup produced no result.
	ErrNotFound = errors.New("provider: no result")

	// ErrUnavailable is returned when the provider could not be reached or
	// answered with a non-success status.
	ErrUnavailable = errors.New("provider: unavailable")

	// ErrUnsupported is returned when a capability is not supported.
	ErrUnsupported = errors.New("provider: not supported")
)

// Error wraps an underlying error with the provider and operation that
// produced it, so callers can log precisely while still matching the
// sentinel with errors.Is.
type Error struct {
	Provider string
	Op       string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WrapErr builds a provider Error unless err is nil.
func WrapErr(provider, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Provider: provider, Op: op, Err: err}
}
