// Package domain defines the values shared by the encryption providers, the key
// registry and everything that stores encrypted data.
package domain

import (
	"bytes"
	"time"

	"github.com/google/uuid"
)

// Encryption is the envelope produced by one encrypt call. It names the key that
// produced it so a later decrypt can find that key even after rotation. Values are
// treated as immutable; replacing a secret means building a new Encryption.
type Encryption struct {
	KeyID          uuid.UUID
	EncryptedValue []byte
	Nonce          []byte
}

// IsZero reports whether e holds nothing (no key and no ciphertext).
func (e Encryption) IsZero() bool {
	return e.KeyID == uuid.Nil && len(e.EncryptedValue) == 0 && len(e.Nonce) == 0
}

// Equal reports whether two envelopes are byte-for-byte identical.
func (e Encryption) Equal(other Encryption) bool {
	return e.KeyID == other.KeyID &&
		bytes.Equal(e.EncryptedValue, other.EncryptedValue) &&
		bytes.Equal(e.Nonce, other.Nonce)
}

// CanaryValue is the fixed plaintext encrypted into every key canary.
const CanaryValue = "abcdefghijklmnopqrst"

// KeyCanary proves that a configured key is the one that encrypted existing data.
// Salt is only set for password-derived keys.
type KeyCanary struct {
	KeyID          uuid.UUID
	EncryptedValue []byte
	Nonce          []byte
	Salt           []byte
	CreatedAt      time.Time
}

// Encryption returns the canary's ciphertext as an envelope.
func (c *KeyCanary) Encryption() Encryption {
	return Encryption{KeyID: c.KeyID, EncryptedValue: c.EncryptedValue, Nonce: c.Nonce}
}
