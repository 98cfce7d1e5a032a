package usecase

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/credstore/internal/crypto/domain"
	cryptoService "github.com/allisson/credstore/internal/crypto/service"
	apperrors "github.com/allisson/credstore/internal/errors"
)

// KeyEntry binds a provider to its configured role.
type KeyEntry struct {
	Provider cryptoService.EncryptionProvider
	Active   bool
}

// KeyRegistry owns every configured key. Verify must run once, before any request is
// served; afterwards the registry is read-only and safe for concurrent use.
type KeyRegistry struct {
	entries             []KeyEntry
	canaryRepo          CanaryRepository
	retrier             Retrier
	availabilityTimeout time.Duration
	logger              *slog.Logger

	activeID  uuid.UUID
	providers sync.Map
	verified  atomic.Bool
}

// NewKeyRegistry creates an unverified registry. entries keep their configured order,
// which is also the verification order.
func NewKeyRegistry(
	entries []KeyEntry,
	canaryRepo CanaryRepository,
	retrier Retrier,
	availabilityTimeout time.Duration,
	logger *slog.Logger,
) *KeyRegistry {
	return &KeyRegistry{
		entries:             entries,
		canaryRepo:          canaryRepo,
		retrier:             retrier,
		availabilityTimeout: availabilityTimeout,
		logger:              logger,
	}
}

// Verify proves every configured key is the key that wrote existing data.
//
// For each key in order: the provider is initialized (retrying while its backend is
// unavailable, up to the availability timeout), then the stored canary is decrypted and
// compared with CanaryValue. A key without a canary gets one. Any mismatch aborts with
// ErrCanaryMismatch naming the key; callers must treat that as fatal.
func (r *KeyRegistry) Verify(ctx context.Context) error {
	activeID, err := r.resolveActive()
	if err != nil {
		return err
	}

	for _, entry := range r.entries {
		keyID := entry.Provider.KeyID()

		if err := r.verifyKey(ctx, entry.Provider); err != nil {
			return err
		}

		r.providers.Store(keyID, entry.Provider)
		r.logger.Info("encryption key verified",
			slog.String("key_id", keyID.String()),
			slog.Bool("active", entry.Active),
		)
	}

	r.activeID = activeID
	r.verified.Store(true)
	return nil
}

func (r *KeyRegistry) resolveActive() (uuid.UUID, error) {
	var activeID uuid.UUID
	count := 0
	for _, entry := range r.entries {
		if entry.Active {
			activeID = entry.Provider.KeyID()
			count++
		}
	}

	switch {
	case count == 0:
		return uuid.Nil, cryptoDomain.ErrNoActiveKey
	case count > 1:
		return uuid.Nil, cryptoDomain.ErrMultipleActiveKeys
	}
	return activeID, nil
}

func (r *KeyRegistry) verifyKey(ctx context.Context, provider cryptoService.EncryptionProvider) error {
	keyID := provider.KeyID()

	canary, err := r.findCanary(ctx, keyID)
	if err != nil {
		return err
	}

	var storedSalt []byte
	if canary != nil {
		storedSalt = canary.Salt
	}

	salt, err := r.initialize(ctx, provider, storedSalt)
	if err != nil {
		return err
	}

	if canary == nil {
		created, err := r.createCanary(ctx, provider, salt)
		if err != nil {
			return err
		}
		if created {
			return nil
		}
		// Another process created the canary first. Verify against theirs.
		if canary, err = r.findCanary(ctx, keyID); err != nil {
			return err
		}
		if canary == nil {
			return fmt.Errorf("%w: canary for key %s vanished", cryptoDomain.ErrCanaryNotFound, keyID)
		}
		if len(canary.Salt) > 0 && subtle.ConstantTimeCompare(canary.Salt, salt) != 1 {
			if _, err := r.initialize(ctx, provider, canary.Salt); err != nil {
				return err
			}
		}
	}

	return r.checkCanary(ctx, provider, canary)
}

func (r *KeyRegistry) findCanary(ctx context.Context, keyID uuid.UUID) (*cryptoDomain.KeyCanary, error) {
	canary, err := r.canaryRepo.Get(ctx, keyID)
	if err != nil {
		if apperrors.Is(err, cryptoDomain.ErrCanaryNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrapf(err, "failed to load canary for key %s", keyID)
	}
	return canary, nil
}

// initialize readies providers that need start-up work. Only ErrKeyUnavailable is
// retried; any other failure is returned immediately.
func (r *KeyRegistry) initialize(
	ctx context.Context,
	provider cryptoService.EncryptionProvider,
	salt []byte,
) ([]byte, error) {
	initializer, ok := provider.(cryptoService.Initializer)
	if !ok {
		return nil, nil
	}

	var (
		usedSalt []byte
		lastErr  error
		fatal    bool
	)

	ready := r.retrier.RetryEverySecondUntil(int64(r.availabilityTimeout/time.Second), func() bool {
		if err := ctx.Err(); err != nil {
			lastErr = err
			fatal = true
			return true
		}

		s, err := initializer.Initialize(ctx, salt)
		if err == nil {
			usedSalt = s
			return true
		}

		lastErr = err
		if !apperrors.Is(err, cryptoDomain.ErrKeyUnavailable) {
			fatal = true
			return true
		}

		r.logger.Warn("encryption key not available yet",
			slog.String("key_id", provider.KeyID().String()),
			slog.Any("error", err),
		)
		return false
	})

	if fatal {
		return nil, apperrors.Wrapf(lastErr, "failed to initialize key %s", provider.KeyID())
	}
	if !ready {
		return nil, fmt.Errorf(
			"%w: key %s did not become available within %s: %v",
			cryptoDomain.ErrKeyUnavailable,
			provider.KeyID(),
			r.availabilityTimeout,
			lastErr,
		)
	}
	return usedSalt, nil
}

// createCanary reports false when another process stored a canary concurrently.
func (r *KeyRegistry) createCanary(
	ctx context.Context,
	provider cryptoService.EncryptionProvider,
	salt []byte,
) (bool, error) {
	enc, err := provider.Encrypt(ctx, []byte(cryptoDomain.CanaryValue))
	if err != nil {
		return false, apperrors.Wrapf(err, "failed to encrypt canary for key %s", provider.KeyID())
	}

	canary := &cryptoDomain.KeyCanary{
		KeyID:          provider.KeyID(),
		EncryptedValue: enc.EncryptedValue,
		Nonce:          enc.Nonce,
		Salt:           salt,
		CreatedAt:      time.Now().UTC(),
	}

	if err := r.canaryRepo.Create(ctx, canary); err != nil {
		if apperrors.Is(err, apperrors.ErrConflict) {
			return false, nil
		}
		return false, apperrors.Wrapf(err, "failed to store canary for key %s", provider.KeyID())
	}

	r.logger.Info("encryption key canary created", slog.String("key_id", provider.KeyID().String()))
	return true, nil
}

func (r *KeyRegistry) checkCanary(
	ctx context.Context,
	provider cryptoService.EncryptionProvider,
	canary *cryptoDomain.KeyCanary,
) error {
	plaintext, err := provider.Decrypt(ctx, canary.Encryption())
	if err != nil || subtle.ConstantTimeCompare(plaintext, []byte(cryptoDomain.CanaryValue)) != 1 {
		return fmt.Errorf("%w: key %s", cryptoDomain.ErrCanaryMismatch, provider.KeyID())
	}
	return nil
}

// Verified reports whether Verify has completed successfully.
func (r *KeyRegistry) Verified() bool {
	return r.verified.Load()
}

// ActiveKeyID returns the id of the key used for all new encryptions.
func (r *KeyRegistry) ActiveKeyID() uuid.UUID {
	return r.activeID
}

// KeyIDs returns the verified key ids in configured order.
func (r *KeyRegistry) KeyIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(r.entries))
	for _, entry := range r.entries {
		if _, ok := r.providers.Load(entry.Provider.KeyID()); ok {
			ids = append(ids, entry.Provider.KeyID())
		}
	}
	return ids
}

// ProviderFor returns the provider for keyID, including retired keys.
func (r *KeyRegistry) ProviderFor(keyID uuid.UUID) (cryptoService.EncryptionProvider, error) {
	if !r.verified.Load() {
		return nil, fmt.Errorf("%w: key registry has not been verified", cryptoDomain.ErrKeyUnavailable)
	}

	provider, ok := r.providers.Load(keyID)
	if !ok {
		return nil, fmt.Errorf("%w: key %s is not configured", cryptoDomain.ErrKeyUnavailable, keyID)
	}
	return provider.(cryptoService.EncryptionProvider), nil
}

// Encrypt encrypts plaintext with the active key.
func (r *KeyRegistry) Encrypt(ctx context.Context, plaintext []byte) (cryptoDomain.Encryption, error) {
	provider, err := r.ProviderFor(r.activeID)
	if err != nil {
		return cryptoDomain.Encryption{}, err
	}
	return provider.Encrypt(ctx, plaintext)
}

// Decrypt decrypts enc with the key it names.
func (r *KeyRegistry) Decrypt(ctx context.Context, enc cryptoDomain.Encryption) ([]byte, error) {
	provider, err := r.ProviderFor(enc.KeyID)
	if err != nil {
		return nil, err
	}
	return provider.Decrypt(ctx, enc)
}
