package domain

import (
	apperrors "github.com/allisson/credstore/internal/errors"
)

const (
	// InvalidAccessMessage is reported for both missing entries and denied access.
	InvalidAccessMessage = "error.credential.invalid_access"
	// InvalidQueryParameterMessage is reported for rejected query parameters.
	InvalidQueryParameterMessage = "error.invalid_query_parameter"
)

var (
	// ErrWrongCredentialType is returned when a field is read or written on a variant
	// that does not carry it.
	ErrWrongCredentialType = apperrors.Wrap(apperrors.ErrInvalidInput, "field not supported by credential type")

	// ErrUnknownCredentialType is returned for an unrecognized type tag.
	ErrUnknownCredentialType = apperrors.Wrap(apperrors.ErrInvalidInput, "unknown credential type")

	// ErrInvalidName is returned when a credential name fails validation.
	ErrInvalidName = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid credential name")

	// ErrCredentialNotFound is returned by the data service when no version matches.
	ErrCredentialNotFound = apperrors.Wrap(apperrors.ErrNotFound, "credential not found")

	// ErrTypeMismatch is returned when a new version changes the type of a credential.
	ErrTypeMismatch = apperrors.Wrap(apperrors.ErrInvalidInput, "error.type_mismatch")

	// ErrInvalidPublicKey is returned when stored public key material cannot be parsed.
	ErrInvalidPublicKey = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid public key")

	// ErrEntryNotFound is the single error returned when a credential does not exist or
	// the actor may not see it.
	ErrEntryNotFound error = &EntryNotFoundError{}
)

// EntryNotFoundError covers both a missing credential and a denied permission so
// callers cannot probe for names they have no access to.
type EntryNotFoundError struct{}

func (e *EntryNotFoundError) Error() string {
	return InvalidAccessMessage
}

func (e *EntryNotFoundError) Unwrap() error {
	return apperrors.ErrNotFound
}

// InvalidQueryParameterError names the request parameter that was rejected.
type InvalidQueryParameterError struct {
	Parameter string
}

func (e *InvalidQueryParameterError) Error() string {
	return InvalidQueryParameterMessage
}

func (e *InvalidQueryParameterError) Unwrap() error {
	return apperrors.ErrInvalidInput
}

// NewInvalidQueryParameterError creates an InvalidQueryParameterError for parameter.
func NewInvalidQueryParameterError(parameter string) error {
	return &InvalidQueryParameterError{Parameter: parameter}
}
