package domain

import (
	"github.com/allisson/credstore/internal/errors"
)

var (
	// ErrSignatureInvalid indicates an audit record does not match its signature.
	ErrSignatureInvalid = errors.Wrap(errors.ErrIntegrity, "audit record signature is invalid")

	// ErrSigningKeyNotSet indicates no audit signing secret was configured.
	ErrSigningKeyNotSet = errors.Wrap(errors.ErrInvalidInput, "AUDIT_SIGNING_KEY is not set")
)
