// Package service implements the encryption providers: the AEAD ciphers and the
// key backends (in-process, password-derived, KMS/HSM and no-op) that turn a
// plaintext into a key-tagged Encryption envelope and back.
package service

import (
	"context"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/credstore/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager creates AEAD cipher instances.
type AEADManager interface {
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// EncryptionProvider encrypts and decrypts with exactly one key, fixed at construction.
// Implementations are safe for concurrent use and draw a fresh nonce on every Encrypt.
type EncryptionProvider interface {
	// KeyID returns the identity of the key bound to this provider.
	KeyID() uuid.UUID

	// Encrypt returns an envelope tagged with KeyID.
	Encrypt(ctx context.Context, plaintext []byte) (cryptoDomain.Encryption, error)

	// Decrypt returns the plaintext of enc. It fails with ErrKeyUnavailable when enc
	// belongs to another key and with ErrDecryptionFailed when authentication fails.
	Decrypt(ctx context.Context, enc cryptoDomain.Encryption) ([]byte, error)
}

// Initializer is implemented by providers that need start-up work before they can
// encrypt. salt is the value stored on the key's canary, nil when no canary exists
// yet; the returned salt must be persisted with a newly created canary.
type Initializer interface {
	Initialize(ctx context.Context, salt []byte) ([]byte, error)
}
