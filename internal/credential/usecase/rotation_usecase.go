package usecase

import (
	"context"
	"log/slog"

	"golang.org/x/time/rate"

	credentialDomain "github.com/allisson/credstore/internal/credential/domain"
	cryptoDomain "github.com/allisson/credstore/internal/crypto/domain"
	"github.com/allisson/credstore/internal/database"
	apperrors "github.com/allisson/credstore/internal/errors"
)

type rotationUseCase struct {
	txManager   database.TxManager
	dataService CredentialDataService
	encryptor   cryptoDomain.Encryptor
	limiter     *rate.Limiter
	logger      *slog.Logger
}

// Rotate may run next to live traffic and can be restarted at any point: each version
// is re-encrypted and stored in its own transaction, and versions already under the
// active key are never selected again. A version deleted between selection and update
// is skipped.
func (r *rotationUseCase) Rotate(ctx context.Context, batchSize int) (int, error) {
	if batchSize <= 0 {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, "batch size must be positive")
	}

	activeKeyID := r.encryptor.ActiveKeyID()
	rotated := 0

	for {
		creds, err := r.dataService.FindNotEncryptedWith(ctx, activeKeyID, batchSize)
		if err != nil {
			return rotated, apperrors.Wrap(err, "failed to find credentials to rotate")
		}
		if len(creds) == 0 {
			r.logger.Info("credential rotation finished",
				slog.String("active_key_id", activeKeyID.String()),
				slog.Int("rotated", rotated),
			)
			return rotated, nil
		}

		batchRotated, batchSkipped := 0, 0
		for _, cred := range creds {
			if err := r.limiter.Wait(ctx); err != nil {
				return rotated, apperrors.Wrap(err, "credential rotation interrupted")
			}

			changed, err := r.rotateOne(ctx, cred)
			switch {
			case apperrors.Is(err, credentialDomain.ErrCredentialNotFound):
				r.logger.Debug("credential version deleted during rotation",
					slog.String("version_id", cred.ID.String()),
				)
				batchSkipped++
			case err != nil:
				return rotated, apperrors.Wrapf(err, "failed to rotate credential version %s", cred.ID)
			case changed:
				batchRotated++
			}
		}
		rotated += batchRotated

		r.logger.Info("rotated credential batch",
			slog.Int("batch_size", len(creds)),
			slog.Int("rotated", batchRotated),
			slog.Int("skipped", batchSkipped),
		)

		// A batch with nothing to change would be selected again forever. Deleted
		// versions are never selected again, so a batch of only those ends the pass too.
		if batchRotated == 0 {
			return rotated, nil
		}
	}
}

func (r *rotationUseCase) rotateOne(ctx context.Context, cred *credentialDomain.Credential) (bool, error) {
	changed := false
	err := r.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		changed, err = cred.SetEncryptor(r.encryptor).ReEncrypt(ctx)
		if err != nil || !changed {
			return err
		}
		return r.dataService.UpdateEncryption(ctx, cred)
	})
	if err != nil {
		return false, err
	}
	return changed, nil
}

// NewRotationUseCase creates a RotationUseCase that re-encrypts at most ratePerSec
// versions per second.
func NewRotationUseCase(
	txManager database.TxManager,
	dataService CredentialDataService,
	encryptor cryptoDomain.Encryptor,
	ratePerSec float64,
	logger *slog.Logger,
) RotationUseCase {
	return &rotationUseCase{
		txManager:   txManager,
		dataService: dataService,
		encryptor:   encryptor,
		limiter:     rate.NewLimiter(rate.Limit(ratePerSec), max(1, int(ratePerSec))),
		logger:      logger,
	}
}
