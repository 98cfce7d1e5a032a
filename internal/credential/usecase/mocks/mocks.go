// Package mocks provides mock implementations of the credential use case interfaces.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
	authDomain "github.com/allisson/credstore/internal/auth/domain"
	credentialDomain "github.com/allisson/credstore/internal/credential/domain"
)

// MockCredentialDataService is a mock implementation of usecase.CredentialDataService.
type MockCredentialDataService struct {
	mock.Mock
}

func (m *MockCredentialDataService) Save(ctx context.Context, cred *credentialDomain.Credential) error {
	return m.Called(ctx, cred).Error(0)
}

func (m *MockCredentialDataService) FindAllByName(
	ctx context.Context,
	name string,
) ([]*credentialDomain.Credential, error) {
	args := m.Called(ctx, name)
	return credentials(args)
}

func (m *MockCredentialDataService) FindNByName(
	ctx context.Context,
	name string,
	n int,
) ([]*credentialDomain.Credential, error) {
	args := m.Called(ctx, name, n)
	return credentials(args)
}

func (m *MockCredentialDataService) FindMostRecent(
	ctx context.Context,
	name string,
) (*credentialDomain.Credential, error) {
	args := m.Called(ctx, name)
	return credential(args)
}

func (m *MockCredentialDataService) FindByUUID(
	ctx context.Context,
	id uuid.UUID,
) (*credentialDomain.Credential, error) {
	args := m.Called(ctx, id)
	return credential(args)
}

func (m *MockCredentialDataService) Delete(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockCredentialDataService) FindNotEncryptedWith(
	ctx context.Context,
	keyID uuid.UUID,
	limit int,
) ([]*credentialDomain.Credential, error) {
	args := m.Called(ctx, keyID, limit)
	return credentials(args)
}

func (m *MockCredentialDataService) UpdateEncryption(ctx context.Context, cred *credentialDomain.Credential) error {
	return m.Called(ctx, cred).Error(0)
}

// MockCredentialHandler is a mock implementation of usecase.CredentialHandler.
type MockCredentialHandler struct {
	mock.Mock
}

func (m *MockCredentialHandler) DeleteCredential(
	ctx context.Context,
	name string,
	user authDomain.UserContext,
	params *[]auditDomain.EventAuditRecordParameters,
) error {
	return m.Called(ctx, name, user, params).Error(0)
}

func (m *MockCredentialHandler) GetAllCredentialVersions(
	ctx context.Context,
	name string,
	user authDomain.UserContext,
	params *[]auditDomain.EventAuditRecordParameters,
) ([]*credentialDomain.Credential, error) {
	args := m.Called(ctx, name, user, params)
	return credentials(args)
}

func (m *MockCredentialHandler) GetNCredentialVersions(
	ctx context.Context,
	name string,
	n int,
	user authDomain.UserContext,
	params *[]auditDomain.EventAuditRecordParameters,
) ([]*credentialDomain.Credential, error) {
	args := m.Called(ctx, name, n, user, params)
	return credentials(args)
}

func (m *MockCredentialHandler) GetMostRecentCredentialVersion(
	ctx context.Context,
	name string,
	user authDomain.UserContext,
	params *[]auditDomain.EventAuditRecordParameters,
) (*credentialDomain.Credential, error) {
	args := m.Called(ctx, name, user, params)
	return credential(args)
}

func (m *MockCredentialHandler) GetCredentialVersion(
	ctx context.Context,
	id string,
	user authDomain.UserContext,
	params *[]auditDomain.EventAuditRecordParameters,
) (*credentialDomain.Credential, error) {
	args := m.Called(ctx, id, user, params)
	return credential(args)
}

func (m *MockCredentialHandler) SetCredential(
	ctx context.Context,
	cred *credentialDomain.Credential,
	user authDomain.UserContext,
	params *[]auditDomain.EventAuditRecordParameters,
) error {
	return m.Called(ctx, cred, user, params).Error(0)
}

// MockAuditingCredentialService is a mock implementation of usecase.AuditingCredentialService.
type MockAuditingCredentialService struct {
	mock.Mock
}

func (m *MockAuditingCredentialService) DeleteCredential(
	ctx context.Context,
	requestID uuid.UUID,
	name string,
	user authDomain.UserContext,
) error {
	return m.Called(ctx, requestID, name, user).Error(0)
}

func (m *MockAuditingCredentialService) GetAllCredentialVersions(
	ctx context.Context,
	requestID uuid.UUID,
	name string,
	user authDomain.UserContext,
) ([]*credentialDomain.Credential, error) {
	args := m.Called(ctx, requestID, name, user)
	return credentials(args)
}

func (m *MockAuditingCredentialService) GetNCredentialVersions(
	ctx context.Context,
	requestID uuid.UUID,
	name string,
	n int,
	user authDomain.UserContext,
) ([]*credentialDomain.Credential, error) {
	args := m.Called(ctx, requestID, name, n, user)
	return credentials(args)
}

func (m *MockAuditingCredentialService) GetMostRecentCredentialVersion(
	ctx context.Context,
	requestID uuid.UUID,
	name string,
	user authDomain.UserContext,
) (*credentialDomain.Credential, error) {
	args := m.Called(ctx, requestID, name, user)
	return credential(args)
}

func (m *MockAuditingCredentialService) GetCredentialVersion(
	ctx context.Context,
	requestID uuid.UUID,
	id string,
	user authDomain.UserContext,
) (*credentialDomain.Credential, error) {
	args := m.Called(ctx, requestID, id, user)
	return credential(args)
}

func (m *MockAuditingCredentialService) SetCredential(
	ctx context.Context,
	requestID uuid.UUID,
	cred *credentialDomain.Credential,
	user authDomain.UserContext,
) error {
	return m.Called(ctx, requestID, cred, user).Error(0)
}

// MockRotationUseCase is a mock implementation of usecase.RotationUseCase.
type MockRotationUseCase struct {
	mock.Mock
}

func (m *MockRotationUseCase) Rotate(ctx context.Context, batchSize int) (int, error) {
	args := m.Called(ctx, batchSize)
	return args.Int(0), args.Error(1)
}

func credentials(args mock.Arguments) ([]*credentialDomain.Credential, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*credentialDomain.Credential), args.Error(1)
}

func credential(args mock.Arguments) (*credentialDomain.Credential, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credentialDomain.Credential), args.Error(1)
}
