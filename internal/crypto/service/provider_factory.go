package service

import (
	"fmt"

	cryptoDomain "github.com/allisson/credstore/internal/crypto/domain"
)

// ProviderFactory builds the EncryptionProvider described by a KeyConfig.
type ProviderFactory struct {
	alg         cryptoDomain.Algorithm
	aeadManager AEADManager
	kmsService  KMSService
}

// NewProviderFactory creates a factory whose software providers use alg.
func NewProviderFactory(alg cryptoDomain.Algorithm, aeadManager AEADManager, kmsService KMSService) *ProviderFactory {
	return &ProviderFactory{alg: alg, aeadManager: aeadManager, kmsService: kmsService}
}

// Create returns a provider for cfg. Providers that implement Initializer are not
// usable until initialized.
func (f *ProviderFactory) Create(cfg cryptoDomain.KeyConfig) (EncryptionProvider, error) {
	switch cfg.Provider {
	case cryptoDomain.ProviderInternal:
		return NewInternalProvider(cfg.ID, cfg.Material, f.alg, f.aeadManager)
	case cryptoDomain.ProviderPassword:
		return NewPasswordProvider(cfg.ID, cfg.Material, f.alg, f.aeadManager), nil
	case cryptoDomain.ProviderKMS:
		return NewKMSProvider(cfg.ID, cfg.KMSKeyURI, cfg.Material, f.alg, f.kmsService, f.aeadManager), nil
	case cryptoDomain.ProviderNoop:
		return NewNoopProvider(cfg.ID), nil
	default:
		return nil, fmt.Errorf("%w: %q", cryptoDomain.ErrUnknownProvider, cfg.Provider)
	}
}
