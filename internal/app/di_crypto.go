package app

import (
	"context"
	"fmt"
	"sync"

	cryptoDomain "github.com/allisson/credstore/internal/crypto/domain"
	cryptoRepository "github.com/allisson/credstore/internal/crypto/repository"
	cryptoService "github.com/allisson/credstore/internal/crypto/service"
	cryptoUseCase "github.com/allisson/credstore/internal/crypto/usecase"
	"github.com/allisson/credstore/internal/database"
	"github.com/allisson/credstore/internal/retry"
)

type cryptoComponents struct {
	aeadManager cryptoService.AEADManager
	kmsService  cryptoService.KMSService
	canaryRepo  cryptoUseCase.CanaryRepository
	keyRegistry *cryptoUseCase.KeyRegistry
	verified    *cryptoUseCase.KeyRegistry

	aeadManagerInit sync.Once
	kmsServiceInit  sync.Once
	canaryRepoInit  sync.Once
	keyRegistryInit sync.Once
	verifyInit      sync.Once
}

// AEADManager returns the cipher factory.
func (c *Container) AEADManager() cryptoService.AEADManager {
	c.crypto.aeadManagerInit.Do(func() {
		c.crypto.aeadManager = cryptoService.NewAEADManager()
	})
	return c.crypto.aeadManager
}

// KMSService returns the gocloud keeper opener.
func (c *Container) KMSService() cryptoService.KMSService {
	c.crypto.kmsServiceInit.Do(func() {
		c.crypto.kmsService = cryptoService.NewKMSService()
	})
	return c.crypto.kmsService
}

// CanaryRepository returns the key canary repository for the configured driver.
func (c *Container) CanaryRepository() (cryptoUseCase.CanaryRepository, error) {
	return resolve(c, &c.crypto.canaryRepoInit, "canaryRepository", &c.crypto.canaryRepo, c.initCanaryRepository)
}

// KeyRegistry returns the registry of configured keys. It has not been verified; use
// VerifiedKeyRegistry before encrypting or decrypting anything.
func (c *Container) KeyRegistry() (*cryptoUseCase.KeyRegistry, error) {
	return resolve(c, &c.crypto.keyRegistryInit, "keyRegistry", &c.crypto.keyRegistry, c.initKeyRegistry)
}

// VerifiedKeyRegistry returns the key registry after checking every key against its
// canary. Verification runs once per container; a failure is fatal for the process.
func (c *Container) VerifiedKeyRegistry(ctx context.Context) (*cryptoUseCase.KeyRegistry, error) {
	registry, err := c.KeyRegistry()
	if err != nil {
		return nil, err
	}

	return resolve(c, &c.crypto.verifyInit, "keyVerification", &c.crypto.verified,
		func() (*cryptoUseCase.KeyRegistry, error) {
			if err := registry.Verify(ctx); err != nil {
				return nil, fmt.Errorf("failed to verify encryption keys: %w", err)
			}
			return registry, nil
		},
	)
}

func (c *Container) initCanaryRepository() (cryptoUseCase.CanaryRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for canary repository: %w", err)
	}

	switch c.config.DBDriver {
	case database.DriverMySQL:
		return cryptoRepository.NewMySQLCanaryRepository(db), nil
	case database.DriverPostgres:
		return cryptoRepository.NewPostgreSQLCanaryRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initKeyRegistry() (*cryptoUseCase.KeyRegistry, error) {
	alg, err := cryptoDomain.ParseAlgorithm(c.config.EncryptionAlgorithm)
	if err != nil {
		return nil, err
	}

	configs, err := cryptoDomain.ParseKeyConfigs(c.config.EncryptionKeys, c.config.ActiveEncryptionKeyID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse encryption keys: %w", err)
	}
	defer func() {
		for i := range configs {
			configs[i].Close()
		}
	}()

	factory := cryptoService.NewProviderFactory(alg, c.AEADManager(), c.KMSService())
	entries := make([]cryptoUseCase.KeyEntry, 0, len(configs))
	for _, cfg := range configs {
		provider, err := factory.Create(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create provider for key %s: %w", cfg.ID, err)
		}
		entries = append(entries, cryptoUseCase.KeyEntry{Provider: provider, Active: cfg.Active})
	}

	canaryRepo, err := c.CanaryRepository()
	if err != nil {
		return nil, err
	}

	return cryptoUseCase.NewKeyRegistry(
		entries,
		canaryRepo,
		// Verify gives up within one retry.Interval of its context being cancelled.
		retry.NewTimedRetry(retry.NewSystemClock(context.Background())),
		c.config.KeyAvailabilityTimeout,
		c.Logger(),
	), nil
}
