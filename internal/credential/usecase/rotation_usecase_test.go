package usecase_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	credentialDomain "github.com/allisson/credstore/internal/credential/domain"
	credentialUseCase "github.com/allisson/credstore/internal/credential/usecase"
	"github.com/allisson/credstore/internal/credential/usecase/mocks"
	cryptoDomain "github.com/allisson/credstore/internal/crypto/domain"
	cryptoService "github.com/allisson/credstore/internal/crypto/service"
	databaseMocks "github.com/allisson/credstore/internal/database/mocks"
)

// switchableEncryptor encrypts with whichever of two noop keys is active.
type switchableEncryptor struct {
	old, current *cryptoService.NoopProvider
	rotated      atomic.Bool
}

func newSwitchableEncryptor() *switchableEncryptor {
	return &switchableEncryptor{
		old:     cryptoService.NewNoopProvider(uuid.New()),
		current: cryptoService.NewNoopProvider(uuid.New()),
	}
}

func (s *switchableEncryptor) active() *cryptoService.NoopProvider {
	if s.rotated.Load() {
		return s.current
	}
	return s.old
}

func (s *switchableEncryptor) ActiveKeyID() uuid.UUID {
	return s.active().KeyID()
}

func (s *switchableEncryptor) Encrypt(ctx context.Context, plaintext []byte) (cryptoDomain.Encryption, error) {
	return s.active().Encrypt(ctx, plaintext)
}

func (s *switchableEncryptor) Decrypt(ctx context.Context, enc cryptoDomain.Encryption) ([]byte, error) {
	if enc.KeyID == s.old.KeyID() {
		return s.old.Decrypt(ctx, enc)
	}
	return s.current.Decrypt(ctx, enc)
}

func storedPassword(t *testing.T, encryptor cryptoDomain.Encryptor, value string) *credentialDomain.Credential {
	t.Helper()
	cred := credentialDomain.NewCredential(credentialDomain.TypePassword, "/db/password", encryptor)
	require.NoError(t, cred.SetPassword(context.Background(), value))
	require.NoError(t, cred.SetGenerationParameters(context.Background(), map[string]int{"length": 30}))
	// Repositories hand out credentials without an encryptor.
	return cred.SetEncryptor(nil)
}

func TestRotationUseCase_Rotate(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_ReEncryptsUntilNothingLeft", func(t *testing.T) {
		encryptor := newSwitchableEncryptor()
		first := storedPassword(t, encryptor, "first")
		second := storedPassword(t, encryptor, "second")
		encryptor.rotated.Store(true)

		txManager := &databaseMocks.MockTxManager{}
		dataService := &mocks.MockCredentialDataService{}
		activeKeyID := encryptor.current.KeyID()

		txManager.On("WithTx", ctx, mock.Anything).Return(nil).Twice()
		dataService.On("FindNotEncryptedWith", ctx, activeKeyID, 10).
			Return([]*credentialDomain.Credential{first, second}, nil).
			Once()
		dataService.On("FindNotEncryptedWith", ctx, activeKeyID, 10).
			Return([]*credentialDomain.Credential{}, nil).
			Once()
		dataService.On("UpdateEncryption", ctx, mock.AnythingOfType("*domain.Credential")).Return(nil).Twice()

		uc := credentialUseCase.NewRotationUseCase(txManager, dataService, encryptor, 1000, discardLogger())
		rotated, err := uc.Rotate(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, 2, rotated)

		for _, cred := range []*credentialDomain.Credential{first, second} {
			for _, enc := range cred.Encryptions() {
				assert.Equal(t, activeKeyID, enc.KeyID)
			}
		}
		password, err := first.Password(ctx)
		require.NoError(t, err)
		assert.Equal(t, "first", password)
		dataService.AssertExpectations(t)
	})

	t.Run("Success_StopsWhenBatchAlreadyRotated", func(t *testing.T) {
		encryptor := newSwitchableEncryptor()
		encryptor.rotated.Store(true)
		current := storedPassword(t, encryptor, "current")

		txManager := &databaseMocks.MockTxManager{}
		dataService := &mocks.MockCredentialDataService{}

		txManager.On("WithTx", ctx, mock.Anything).Return(nil).Once()
		dataService.On("FindNotEncryptedWith", ctx, encryptor.current.KeyID(), 5).
			Return([]*credentialDomain.Credential{current}, nil).
			Once()

		uc := credentialUseCase.NewRotationUseCase(txManager, dataService, encryptor, 1000, discardLogger())
		rotated, err := uc.Rotate(ctx, 5)
		require.NoError(t, err)
		assert.Zero(t, rotated)
		dataService.AssertNotCalled(t, "UpdateEncryption", mock.Anything, mock.Anything)
	})

	t.Run("Success_SkipsVersionDeletedMidRotation", func(t *testing.T) {
		encryptor := newSwitchableEncryptor()
		deleted := storedPassword(t, encryptor, "deleted")
		alive := storedPassword(t, encryptor, "alive")
		encryptor.rotated.Store(true)

		txManager := &databaseMocks.MockTxManager{}
		dataService := &mocks.MockCredentialDataService{}
		activeKeyID := encryptor.current.KeyID()

		txManager.On("WithTx", ctx, mock.Anything).Return(nil).Twice()
		dataService.On("FindNotEncryptedWith", ctx, activeKeyID, 10).
			Return([]*credentialDomain.Credential{deleted, alive}, nil).
			Once()
		dataService.On("FindNotEncryptedWith", ctx, activeKeyID, 10).
			Return([]*credentialDomain.Credential{}, nil).
			Once()
		dataService.On("UpdateEncryption", ctx, deleted).Return(credentialDomain.ErrCredentialNotFound).Once()
		dataService.On("UpdateEncryption", ctx, alive).Return(nil).Once()

		uc := credentialUseCase.NewRotationUseCase(txManager, dataService, encryptor, 1000, discardLogger())
		rotated, err := uc.Rotate(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, 1, rotated)

		for _, enc := range alive.Encryptions() {
			assert.Equal(t, activeKeyID, enc.KeyID)
		}
		dataService.AssertExpectations(t)
	})

	t.Run("Success_BatchOfOnlyDeletedVersionsEnds", func(t *testing.T) {
		encryptor := newSwitchableEncryptor()
		deleted := storedPassword(t, encryptor, "deleted")
		encryptor.rotated.Store(true)

		txManager := &databaseMocks.MockTxManager{}
		dataService := &mocks.MockCredentialDataService{}

		txManager.On("WithTx", ctx, mock.Anything).Return(nil).Once()
		dataService.On("FindNotEncryptedWith", ctx, encryptor.current.KeyID(), 10).
			Return([]*credentialDomain.Credential{deleted}, nil).
			Once()
		dataService.On("UpdateEncryption", ctx, deleted).Return(credentialDomain.ErrCredentialNotFound).Once()

		uc := credentialUseCase.NewRotationUseCase(txManager, dataService, encryptor, 1000, discardLogger())
		rotated, err := uc.Rotate(ctx, 10)
		require.NoError(t, err)
		assert.Zero(t, rotated)
		dataService.AssertExpectations(t)
	})

	t.Run("Error_UpdateFails", func(t *testing.T) {
		encryptor := newSwitchableEncryptor()
		cred := storedPassword(t, encryptor, "value")
		encryptor.rotated.Store(true)

		txManager := &databaseMocks.MockTxManager{}
		dataService := &mocks.MockCredentialDataService{}

		txManager.On("WithTx", ctx, mock.Anything).Return(nil).Once()
		dataService.On("FindNotEncryptedWith", ctx, encryptor.current.KeyID(), 10).
			Return([]*credentialDomain.Credential{cred}, nil).
			Once()
		dataService.On("UpdateEncryption", ctx, cred).Return(assert.AnError).Once()

		uc := credentialUseCase.NewRotationUseCase(txManager, dataService, encryptor, 1000, discardLogger())
		rotated, err := uc.Rotate(ctx, 10)
		assert.ErrorIs(t, err, assert.AnError)
		assert.Zero(t, rotated)
	})

	t.Run("Error_InvalidBatchSize", func(t *testing.T) {
		uc := credentialUseCase.NewRotationUseCase(nil, nil, newSwitchableEncryptor(), 1, discardLogger())
		_, err := uc.Rotate(ctx, 0)
		assert.Error(t, err)
	})

	t.Run("Error_ContextCanceled", func(t *testing.T) {
		encryptor := newSwitchableEncryptor()
		cred := storedPassword(t, encryptor, "value")
		encryptor.rotated.Store(true)

		canceled, cancel := context.WithCancel(ctx)
		cancel()

		dataService := &mocks.MockCredentialDataService{}
		dataService.On("FindNotEncryptedWith", canceled, encryptor.current.KeyID(), 10).
			Return([]*credentialDomain.Credential{cred}, nil).
			Once()

		uc := credentialUseCase.NewRotationUseCase(nil, dataService, encryptor, 1000, discardLogger())
		_, err := uc.Rotate(canceled, 10)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
