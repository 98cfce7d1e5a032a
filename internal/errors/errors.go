// Package errors provides the base error values shared by every credstore domain.
// Domain packages wrap these sentinels so callers can classify failures with Is
// without depending on the package that produced them.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested resource does not exist or is not visible to the caller.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a conflict with existing data (e.g., duplicate key).
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates the input data is invalid or fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the request lacks a valid actor.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the actor does not hold the required permission.
	ErrForbidden = errors.New("forbidden")

	// ErrUnavailable indicates a dependency (key provider, HSM, KMS) cannot serve the request right now.
	ErrUnavailable = errors.New("unavailable")

	// ErrIntegrity indicates stored data failed an integrity check (canary, signature).
	ErrIntegrity = errors.New("integrity check failed")
)

// New creates a new error with the given message.
func New(message string) error {
	return errors.New(message)
}

// Wrap adds context to err while preserving the chain. Returns nil when err is nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}
