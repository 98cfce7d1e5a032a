package service

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"

	cryptoDomain "github.com/allisson/credstore/internal/crypto/domain"
)

// Argon2id parameters for password-derived keys.
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
)

// PasswordProvider derives its key from a passphrase with Argon2id. The salt lives on
// the key's canary, so the same passphrase always yields the same key for a given store.
type PasswordProvider struct {
	aeadProvider
	passphrase  []byte
	alg         cryptoDomain.Algorithm
	aeadManager AEADManager
}

// NewPasswordProvider creates a provider that stays unavailable until Initialize runs.
func NewPasswordProvider(
	keyID uuid.UUID,
	passphrase []byte,
	alg cryptoDomain.Algorithm,
	aeadManager AEADManager,
) *PasswordProvider {
	return &PasswordProvider{
		aeadProvider: aeadProvider{keyID: keyID},
		passphrase:   append([]byte(nil), passphrase...),
		alg:          alg,
		aeadManager:  aeadManager,
	}
}

// Initialize derives the key from salt, generating a new SaltSize salt when salt is nil.
func (p *PasswordProvider) Initialize(_ context.Context, salt []byte) ([]byte, error) {
	if len(salt) == 0 {
		salt = make([]byte, cryptoDomain.SaltSize)
		if _, err := rand.Read(salt); err != nil {
			return nil, fmt.Errorf("failed to generate salt: %w", err)
		}
	}

	key := argon2.IDKey(p.passphrase, salt, argon2Time, argon2Memory, argon2Threads, cryptoDomain.KeySize)
	defer cryptoDomain.Zero(key)

	aead, err := p.aeadManager.CreateCipher(key, p.alg)
	if err != nil {
		return nil, err
	}

	p.setCipher(aead)
	return salt, nil
}
