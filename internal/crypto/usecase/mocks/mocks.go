// Package mocks provides mock implementations of the key registry dependencies.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/allisson/credstore/internal/crypto/domain"
)

// MockCanaryRepository is a mock implementation of usecase.CanaryRepository.
type MockCanaryRepository struct {
	mock.Mock
}

// Get mocks the Get method.
func (m *MockCanaryRepository) Get(ctx context.Context, keyID uuid.UUID) (*cryptoDomain.KeyCanary, error) {
	args := m.Called(ctx, keyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.KeyCanary), args.Error(1)
}

// Create mocks the Create method.
func (m *MockCanaryRepository) Create(ctx context.Context, canary *cryptoDomain.KeyCanary) error {
	return m.Called(ctx, canary).Error(0)
}

// List mocks the List method.
func (m *MockCanaryRepository) List(ctx context.Context) ([]*cryptoDomain.KeyCanary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*cryptoDomain.KeyCanary), args.Error(1)
}

// MockEncryptor is a mock implementation of domain.Encryptor.
type MockEncryptor struct {
	mock.Mock
}

// ActiveKeyID mocks the ActiveKeyID method.
func (m *MockEncryptor) ActiveKeyID() uuid.UUID {
	return m.Called().Get(0).(uuid.UUID)
}

// Encrypt mocks the Encrypt method.
func (m *MockEncryptor) Encrypt(ctx context.Context, plaintext []byte) (cryptoDomain.Encryption, error) {
	args := m.Called(ctx, plaintext)
	return args.Get(0).(cryptoDomain.Encryption), args.Error(1)
}

// Decrypt mocks the Decrypt method.
func (m *MockEncryptor) Decrypt(ctx context.Context, enc cryptoDomain.Encryption) ([]byte, error) {
	args := m.Called(ctx, enc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
