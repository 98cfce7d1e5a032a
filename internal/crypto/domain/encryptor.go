package domain

import (
	"context"

	"github.com/google/uuid"
)

// Encryptor encrypts with the active key and decrypts with whichever configured key
// an envelope names. Anything holding encrypted data depends on this instead of on a
// concrete provider.
type Encryptor interface {
	ActiveKeyID() uuid.UUID
	Encrypt(ctx context.Context, plaintext []byte) (Encryption, error)
	Decrypt(ctx context.Context, enc Encryption) ([]byte, error)
}
