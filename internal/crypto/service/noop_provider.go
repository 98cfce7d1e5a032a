package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/credstore/internal/crypto/domain"
)

// NoopProvider stores plaintext as-is with an all-zero nonce. It still enforces key
// identity, which makes it useful for exercising rotation paths in tests.
type NoopProvider struct {
	keyID uuid.UUID
}

// NewNoopProvider creates a NoopProvider for keyID.
func NewNoopProvider(keyID uuid.UUID) *NoopProvider {
	return &NoopProvider{keyID: keyID}
}

func (p *NoopProvider) KeyID() uuid.UUID {
	return p.keyID
}

func (p *NoopProvider) Encrypt(_ context.Context, plaintext []byte) (cryptoDomain.Encryption, error) {
	return cryptoDomain.Encryption{
		KeyID:          p.keyID,
		EncryptedValue: append([]byte{}, plaintext...),
		Nonce:          make([]byte, 12),
	}, nil
}

func (p *NoopProvider) Decrypt(_ context.Context, enc cryptoDomain.Encryption) ([]byte, error) {
	if enc.KeyID != p.keyID {
		return nil, fmt.Errorf(
			"%w: envelope key %s does not belong to provider key %s",
			cryptoDomain.ErrKeyUnavailable,
			enc.KeyID,
			p.keyID,
		)
	}
	return append([]byte{}, enc.EncryptedValue...), nil
}
