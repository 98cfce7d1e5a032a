// Package mocks provides mock implementations of the crypto service interfaces.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/allisson/credstore/internal/crypto/domain"
)

// MockEncryptionProvider is a mock implementation of service.EncryptionProvider.
type MockEncryptionProvider struct {
	mock.Mock
}

// KeyID mocks the KeyID method.
func (m *MockEncryptionProvider) KeyID() uuid.UUID {
	args := m.Called()
	return args.Get(0).(uuid.UUID)
}

// Encrypt mocks the Encrypt method.
func (m *MockEncryptionProvider) Encrypt(ctx context.Context, plaintext []byte) (cryptoDomain.Encryption, error) {
	args := m.Called(ctx, plaintext)
	return args.Get(0).(cryptoDomain.Encryption), args.Error(1)
}

// Decrypt mocks the Decrypt method.
func (m *MockEncryptionProvider) Decrypt(ctx context.Context, enc cryptoDomain.Encryption) ([]byte, error) {
	args := m.Called(ctx, enc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockInitializingProvider is a MockEncryptionProvider that also needs start-up work.
type MockInitializingProvider struct {
	MockEncryptionProvider
}

// Initialize mocks the Initialize method.
func (m *MockInitializingProvider) Initialize(ctx context.Context, salt []byte) ([]byte, error) {
	args := m.Called(ctx, salt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockKMSService is a mock implementation of service.KMSService.
type MockKMSService struct {
	mock.Mock
}

// OpenKeeper mocks the OpenKeeper method.
func (m *MockKMSService) OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error) {
	args := m.Called(ctx, keyURI)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(cryptoDomain.KMSKeeper), args.Error(1)
}

// MockKMSKeeper is a mock implementation of domain.KMSKeeper.
type MockKMSKeeper struct {
	mock.Mock
}

// Encrypt mocks the Encrypt method.
func (m *MockKMSKeeper) Encrypt(ctx context.Context, plaintext []byte) ([]byte, error) {
	args := m.Called(ctx, plaintext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Decrypt mocks the Decrypt method.
func (m *MockKMSKeeper) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	args := m.Called(ctx, ciphertext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Close mocks the Close method.
func (m *MockKMSKeeper) Close() error {
	return m.Called().Error(0)
}
