package service

import (
	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/credstore/internal/crypto/domain"
)

// InternalProvider encrypts with a raw key held in process memory.
type InternalProvider struct {
	aeadProvider
}

// NewInternalProvider builds a ready provider for key. The cipher keeps its own copy of
// the key schedule, so the caller may zero key afterwards.
func NewInternalProvider(
	keyID uuid.UUID,
	key []byte,
	alg cryptoDomain.Algorithm,
	aeadManager AEADManager,
) (*InternalProvider, error) {
	aead, err := aeadManager.CreateCipher(key, alg)
	if err != nil {
		return nil, err
	}

	p := &InternalProvider{aeadProvider: aeadProvider{keyID: keyID}}
	p.setCipher(aead)
	return p, nil
}
