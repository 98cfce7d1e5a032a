// Package usecase holds the key registry: it binds configured keys to providers,
// verifies every key against its stored canary at start-up and then serves as the
// process-wide Encryptor.
package usecase

import (
	"context"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/credstore/internal/crypto/domain"
)

// CanaryRepository persists one KeyCanary per configured key.
type CanaryRepository interface {
	// Get returns ErrCanaryNotFound when no canary exists for keyID.
	Get(ctx context.Context, keyID uuid.UUID) (*cryptoDomain.KeyCanary, error)

	// Create returns an error wrapping ErrConflict when a canary for the key already exists.
	Create(ctx context.Context, canary *cryptoDomain.KeyCanary) error

	// List returns every stored canary ordered by creation time.
	List(ctx context.Context) ([]*cryptoDomain.KeyCanary, error)
}

// Retrier polls a predicate once per second until it holds or durationSeconds pass.
type Retrier interface {
	RetryEverySecondUntil(durationSeconds int64, fn func() bool) bool
}
