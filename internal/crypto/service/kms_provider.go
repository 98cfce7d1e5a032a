package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/credstore/internal/crypto/domain"
)

// KMSProvider holds a data key wrapped by an external KMS or HSM. Initialize asks the
// keeper to unwrap it; until then every operation fails with ErrKeyUnavailable.
type KMSProvider struct {
	aeadProvider
	keyURI      string
	wrappedKey  []byte
	alg         cryptoDomain.Algorithm
	kmsService  KMSService
	aeadManager AEADManager
}

// NewKMSProvider creates a provider for wrappedKey, unwrapped by the keeper at keyURI.
func NewKMSProvider(
	keyID uuid.UUID,
	keyURI string,
	wrappedKey []byte,
	alg cryptoDomain.Algorithm,
	kmsService KMSService,
	aeadManager AEADManager,
) *KMSProvider {
	return &KMSProvider{
		aeadProvider: aeadProvider{keyID: keyID},
		keyURI:       keyURI,
		wrappedKey:   append([]byte(nil), wrappedKey...),
		alg:          alg,
		kmsService:   kmsService,
		aeadManager:  aeadManager,
	}
}

// Initialize unwraps the data key. Failures wrap ErrKeyUnavailable so callers can retry.
func (p *KMSProvider) Initialize(ctx context.Context, _ []byte) ([]byte, error) {
	keeper, err := p.kmsService.OpenKeeper(ctx, p.keyURI)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrKeyUnavailable, err)
	}
	defer func() {
		_ = keeper.Close()
	}()

	key, err := keeper.Decrypt(ctx, p.wrappedKey)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to unwrap key %s: %v", cryptoDomain.ErrKeyUnavailable, p.keyID, err)
	}
	defer cryptoDomain.Zero(key)

	aead, err := p.aeadManager.CreateCipher(key, p.alg)
	if err != nil {
		return nil, err
	}

	p.setCipher(aead)
	return nil, nil
}
