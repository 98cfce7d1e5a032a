package service

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/credstore/internal/crypto/domain"
)

// aeadProvider is the shared encrypt/decrypt path of every provider backed by a
// symmetric AEAD. The key id is passed as associated data, so an envelope cannot be
// relabelled to another key without failing authentication.
type aeadProvider struct {
	keyID  uuid.UUID
	cipher atomic.Pointer[cipherHolder]
}

type cipherHolder struct {
	aead AEAD
}

func (p *aeadProvider) KeyID() uuid.UUID {
	return p.keyID
}

func (p *aeadProvider) setCipher(aead AEAD) {
	p.cipher.Store(&cipherHolder{aead: aead})
}

func (p *aeadProvider) ready() (AEAD, error) {
	holder := p.cipher.Load()
	if holder == nil {
		return nil, fmt.Errorf("%w: key %s is not initialized", cryptoDomain.ErrKeyUnavailable, p.keyID)
	}
	return holder.aead, nil
}

func (p *aeadProvider) Encrypt(_ context.Context, plaintext []byte) (cryptoDomain.Encryption, error) {
	aead, err := p.ready()
	if err != nil {
		return cryptoDomain.Encryption{}, err
	}

	ciphertext, nonce, err := aead.Encrypt(plaintext, p.keyID[:])
	if err != nil {
		return cryptoDomain.Encryption{}, fmt.Errorf("failed to encrypt with key %s: %w", p.keyID, err)
	}

	return cryptoDomain.Encryption{KeyID: p.keyID, EncryptedValue: ciphertext, Nonce: nonce}, nil
}

func (p *aeadProvider) Decrypt(_ context.Context, enc cryptoDomain.Encryption) ([]byte, error) {
	if enc.KeyID != p.keyID {
		return nil, fmt.Errorf(
			"%w: envelope key %s does not belong to provider key %s",
			cryptoDomain.ErrKeyUnavailable,
			enc.KeyID,
			p.keyID,
		)
	}

	aead, err := p.ready()
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Decrypt(enc.EncryptedValue, enc.Nonce, p.keyID[:])
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	return plaintext, nil
}
