// Package mocks provides mock implementations of the permission interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
	authDomain "github.com/allisson/credstore/internal/auth/domain"
)

// MockPermissionRepository is a mock implementation of usecase.PermissionRepository.
type MockPermissionRepository struct {
	mock.Mock
}

// ListByActor mocks the ListByActor method.
func (m *MockPermissionRepository) ListByActor(
	ctx context.Context,
	actor string,
) ([]*authDomain.PermissionEntry, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authDomain.PermissionEntry), args.Error(1)
}

// ListByPath mocks the ListByPath method.
func (m *MockPermissionRepository) ListByPath(
	ctx context.Context,
	path string,
) ([]*authDomain.PermissionEntry, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authDomain.PermissionEntry), args.Error(1)
}

// Save mocks the Save method.
func (m *MockPermissionRepository) Save(ctx context.Context, entry *authDomain.PermissionEntry) error {
	return m.Called(ctx, entry).Error(0)
}

// Delete mocks the Delete method.
func (m *MockPermissionRepository) Delete(ctx context.Context, actor, path string) (bool, error) {
	args := m.Called(ctx, actor, path)
	return args.Bool(0), args.Error(1)
}

// MockPermissionChecker is a mock implementation of usecase.PermissionChecker.
type MockPermissionChecker struct {
	mock.Mock
}

// HasPermission mocks the HasPermission method.
func (m *MockPermissionChecker) HasPermission(
	ctx context.Context,
	actor, path string,
	op authDomain.PermissionOperation,
) (bool, error) {
	args := m.Called(ctx, actor, path, op)
	return args.Bool(0), args.Error(1)
}

// MockPermissionUseCase is a mock implementation of usecase.PermissionUseCase.
type MockPermissionUseCase struct {
	MockPermissionChecker
}

// GetPermissions mocks the GetPermissions method.
func (m *MockPermissionUseCase) GetPermissions(
	ctx context.Context,
	path string,
	user authDomain.UserContext,
	params *[]auditDomain.EventAuditRecordParameters,
) ([]*authDomain.PermissionEntry, error) {
	args := m.Called(ctx, path, user, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authDomain.PermissionEntry), args.Error(1)
}

// SetPermissions mocks the SetPermissions method.
func (m *MockPermissionUseCase) SetPermissions(
	ctx context.Context,
	entry *authDomain.PermissionEntry,
	user authDomain.UserContext,
	params *[]auditDomain.EventAuditRecordParameters,
) error {
	return m.Called(ctx, entry, user, params).Error(0)
}

// DeletePermissions mocks the DeletePermissions method.
func (m *MockPermissionUseCase) DeletePermissions(
	ctx context.Context,
	path, actor string,
	user authDomain.UserContext,
	params *[]auditDomain.EventAuditRecordParameters,
) error {
	return m.Called(ctx, path, actor, user, params).Error(0)
}
