// Package mocks provides mock implementations of the audit use case interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
	auditUseCase "github.com/allisson/credstore/internal/audit/usecase"
	authDomain "github.com/allisson/credstore/internal/auth/domain"
)

// MockAuditRecordRepository is a mock implementation of usecase.AuditRecordRepository.
type MockAuditRecordRepository struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockAuditRecordRepository) Create(ctx context.Context, record *auditDomain.EventAuditRecord) error {
	return m.Called(ctx, record).Error(0)
}

// List mocks the List method.
func (m *MockAuditRecordRepository) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.EventAuditRecord, error) {
	args := m.Called(ctx, offset, limit, createdAtFrom, createdAtTo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.EventAuditRecord), args.Error(1)
}

// MockAuditLogUseCase is a mock implementation of usecase.AuditLogUseCase.
type MockAuditLogUseCase struct {
	mock.Mock
}

// Record mocks the Record method.
func (m *MockAuditLogUseCase) Record(
	ctx context.Context,
	params []auditDomain.EventAuditRecordParameters,
	user authDomain.UserContext,
	requestID uuid.UUID,
	success bool,
) error {
	return m.Called(ctx, params, user, requestID, success).Error(0)
}

// List mocks the List method.
func (m *MockAuditLogUseCase) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.EventAuditRecord, error) {
	args := m.Called(ctx, offset, limit, createdAtFrom, createdAtTo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.EventAuditRecord), args.Error(1)
}

// VerifyBatch mocks the VerifyBatch method.
func (m *MockAuditLogUseCase) VerifyBatch(
	ctx context.Context,
	start, end time.Time,
) (*auditUseCase.VerificationReport, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditUseCase.VerificationReport), args.Error(1)
}
