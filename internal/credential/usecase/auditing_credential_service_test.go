package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
	auditMocks "github.com/allisson/credstore/internal/audit/usecase/mocks"
	credentialDomain "github.com/allisson/credstore/internal/credential/domain"
	credentialUseCase "github.com/allisson/credstore/internal/credential/usecase"
	"github.com/allisson/credstore/internal/credential/usecase/mocks"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// collect makes a handler mock append one parameter entry, like the real handler.
func collect(code auditDomain.OperationCode, paramsIndex int) func(mock.Arguments) {
	return func(args mock.Arguments) {
		params := args.Get(paramsIndex).(*[]auditDomain.EventAuditRecordParameters)
		*params = append(*params, auditDomain.NewEventAuditRecordParameters(code, credentialName))
	}
}

func TestAuditingCredentialService(t *testing.T) {
	ctx := context.Background()
	requestID := uuid.New()
	withOneParam := mock.MatchedBy(func(params []auditDomain.EventAuditRecordParameters) bool {
		return len(params) == 1 && *params[0].CredentialName == credentialName
	})

	t.Run("Success_RecordsSuccessfulAccess", func(t *testing.T) {
		handler := &mocks.MockCredentialHandler{}
		auditLog := &auditMocks.MockAuditLogUseCase{}
		cred := credentialDomain.NewCredential(credentialDomain.TypeValue, credentialName, nil)

		handler.On("GetMostRecentCredentialVersion", ctx, credentialName, user, mock.Anything).
			Run(collect(auditDomain.CredentialAccess, 3)).
			Return(cred, nil).
			Once()
		auditLog.On("Record", ctx, withOneParam, user, requestID, true).Return(nil).Once()

		svc := credentialUseCase.NewAuditingCredentialService(handler, auditLog, discardLogger())
		got, err := svc.GetMostRecentCredentialVersion(ctx, requestID, credentialName, user)
		require.NoError(t, err)
		assert.Equal(t, cred, got)
		auditLog.AssertExpectations(t)
	})

	t.Run("Success_RecordsFailedAccess", func(t *testing.T) {
		handler := &mocks.MockCredentialHandler{}
		auditLog := &auditMocks.MockAuditLogUseCase{}

		handler.On("DeleteCredential", ctx, credentialName, user, mock.Anything).
			Run(collect(auditDomain.CredentialDelete, 3)).
			Return(credentialDomain.ErrEntryNotFound).
			Once()
		auditLog.On("Record", ctx, withOneParam, user, requestID, false).Return(nil).Once()

		svc := credentialUseCase.NewAuditingCredentialService(handler, auditLog, discardLogger())
		err := svc.DeleteCredential(ctx, requestID, credentialName, user)
		assert.ErrorIs(t, err, credentialDomain.ErrEntryNotFound)
		auditLog.AssertExpectations(t)
	})

	t.Run("Error_AuditFailureWithholdsResult", func(t *testing.T) {
		handler := &mocks.MockCredentialHandler{}
		auditLog := &auditMocks.MockAuditLogUseCase{}
		creds := []*credentialDomain.Credential{
			credentialDomain.NewCredential(credentialDomain.TypeValue, credentialName, nil),
		}

		handler.On("GetNCredentialVersions", ctx, credentialName, 2, user, mock.Anything).
			Run(collect(auditDomain.CredentialAccess, 4)).
			Return(creds, nil).
			Once()
		auditLog.On("Record", ctx, withOneParam, user, requestID, true).Return(assert.AnError).Once()

		svc := credentialUseCase.NewAuditingCredentialService(handler, auditLog, discardLogger())
		got, err := svc.GetNCredentialVersions(ctx, requestID, credentialName, 2, user)
		assert.ErrorIs(t, err, assert.AnError)
		assert.Nil(t, got)
	})

	t.Run("Error_AuditFailureKeepsCallError", func(t *testing.T) {
		handler := &mocks.MockCredentialHandler{}
		auditLog := &auditMocks.MockAuditLogUseCase{}

		handler.On("GetCredentialVersion", ctx, "fake-uuid", user, mock.Anything).
			Return(nil, credentialDomain.ErrEntryNotFound).
			Once()
		auditLog.On("Record", ctx, mock.Anything, user, requestID, false).Return(assert.AnError).Once()

		svc := credentialUseCase.NewAuditingCredentialService(handler, auditLog, discardLogger())
		_, err := svc.GetCredentialVersion(ctx, requestID, "fake-uuid", user)
		assert.ErrorIs(t, err, credentialDomain.ErrEntryNotFound)
	})
}
