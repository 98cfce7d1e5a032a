package domain

import (
	"github.com/allisson/credstore/internal/errors"
)

// Key configuration errors.
var (
	ErrKeysNotSet           = errors.Wrap(errors.ErrInvalidInput, "ENCRYPTION_KEYS is not set")
	ErrActiveKeyIDNotSet    = errors.Wrap(errors.ErrInvalidInput, "ACTIVE_ENCRYPTION_KEY_ID is not set")
	ErrInvalidKeysFormat    = errors.Wrap(errors.ErrInvalidInput, "invalid encryption key entry")
	ErrInvalidKeyBase64     = errors.Wrap(errors.ErrInvalidInput, "invalid base64 key material")
	ErrInvalidKeyID         = errors.Wrap(errors.ErrInvalidInput, "invalid encryption key id")
	ErrDuplicateKeyID       = errors.Wrap(errors.ErrInvalidInput, "duplicate encryption key id")
	ErrUnknownProvider      = errors.Wrap(errors.ErrInvalidInput, "unknown encryption provider")
	ErrNoActiveKey          = errors.Wrap(errors.ErrInvalidInput, "no active encryption key")
	ErrMultipleActiveKeys   = errors.Wrap(errors.ErrInvalidInput, "more than one active encryption key")
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize is returned when key material is not exactly KeySize bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")
)

// Runtime errors.
var (
	// ErrDecryptionFailed means the ciphertext, nonce and key do not match. The cause is
	// never disclosed further.
	ErrDecryptionFailed = errors.Wrap(errors.ErrIntegrity, "decryption failed")

	// ErrKeyUnavailable means the key named by an envelope is not loaded or its backend
	// cannot be reached.
	ErrKeyUnavailable = errors.Wrap(errors.ErrUnavailable, "encryption key unavailable")

	// ErrCanaryMismatch means a configured key does not decrypt its stored canary. The
	// process must not start with that configuration.
	ErrCanaryMismatch = errors.Wrap(errors.ErrIntegrity, "encryption key does not match its canary")

	// ErrCanaryNotFound is returned by canary stores when no canary exists for a key.
	ErrCanaryNotFound = errors.Wrap(errors.ErrNotFound, "encryption key canary not found")
)
