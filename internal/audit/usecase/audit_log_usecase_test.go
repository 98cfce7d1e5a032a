package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
	auditService "github.com/allisson/credstore/internal/audit/service"
	auditUseCase "github.com/allisson/credstore/internal/audit/usecase"
	"github.com/allisson/credstore/internal/audit/usecase/mocks"
	authDomain "github.com/allisson/credstore/internal/auth/domain"
	databaseMocks "github.com/allisson/credstore/internal/database/mocks"
)

func newSigner(t *testing.T) auditService.AuditSigner {
	t.Helper()
	signer, err := auditService.NewAuditSigner([]byte("audit-test-secret"))
	require.NoError(t, err)
	return signer
}

func TestAuditLogUseCase_Record(t *testing.T) {
	ctx := context.Background()
	user := authDomain.UserContext{UserID: "alice", AuthMethod: authDomain.AuthMethodToken}
	requestID := uuid.New()

	t.Run("Success_OneRecordPerParameter", func(t *testing.T) {
		txManager := &databaseMocks.MockTxManager{}
		repo := &mocks.MockAuditRecordRepository{}
		signer := newSigner(t)

		txManager.On("WithTx", ctx, mock.Anything).Return(nil).Once()
		var stored []*auditDomain.EventAuditRecord
		repo.On("Create", ctx, mock.AnythingOfType("*domain.EventAuditRecord")).
			Run(func(args mock.Arguments) {
				stored = append(stored, args.Get(1).(*auditDomain.EventAuditRecord))
			}).
			Return(nil).
			Twice()

		params := []auditDomain.EventAuditRecordParameters{
			auditDomain.NewEventAuditRecordParameters(auditDomain.CredentialAccess, "foo"),
			auditDomain.NewEventAuditRecordParameters(auditDomain.CredentialAccess, "/bar"),
		}
		err := auditUseCase.NewAuditLogUseCase(txManager, repo, signer).Record(ctx, params, user, requestID, true)
		require.NoError(t, err)

		require.Len(t, stored, 2)
		assert.Equal(t, "/foo", *stored[0].CredentialName)
		assert.Equal(t, "/bar", *stored[1].CredentialName)
		for _, record := range stored {
			assert.Equal(t, requestID, record.RequestID)
			assert.Equal(t, "uaa-user:alice", record.Actor)
			assert.True(t, record.Success)
			assert.NoError(t, signer.Verify(record))
		}
		txManager.AssertExpectations(t)
		repo.AssertExpectations(t)
	})

	t.Run("Success_EmptyParametersStillRecorded", func(t *testing.T) {
		txManager := &databaseMocks.MockTxManager{}
		repo := &mocks.MockAuditRecordRepository{}

		txManager.On("WithTx", ctx, mock.Anything).Return(nil).Once()
		repo.On("Create", ctx, mock.MatchedBy(func(r *auditDomain.EventAuditRecord) bool {
			return r.Operation == auditDomain.UnknownOperation && !r.Success && r.CredentialName == nil
		})).Return(nil).Once()

		err := auditUseCase.NewAuditLogUseCase(txManager, repo, newSigner(t)).Record(ctx, nil, user, requestID, false)
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("Error_RepositoryFailure", func(t *testing.T) {
		txManager := &databaseMocks.MockTxManager{}
		repo := &mocks.MockAuditRecordRepository{}

		txManager.On("WithTx", ctx, mock.Anything).Return(nil).Once()
		repo.On("Create", ctx, mock.Anything).Return(assert.AnError).Once()

		params := []auditDomain.EventAuditRecordParameters{
			auditDomain.NewEventAuditRecordParameters(auditDomain.CredentialDelete, "/foo"),
		}
		err := auditUseCase.NewAuditLogUseCase(txManager, repo, newSigner(t)).Record(ctx, params, user, requestID, true)
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestAuditLogUseCase_VerifyBatch(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	signer := newSigner(t)

	signed := func(operation string) *auditDomain.EventAuditRecord {
		record := &auditDomain.EventAuditRecord{
			ID:        uuid.Must(uuid.NewV7()),
			RequestID: uuid.New(),
			Operation: operation,
			Actor:     "uaa-user:alice",
			Success:   true,
			CreatedAt: start.Add(time.Hour),
		}
		var err error
		record.Signature, err = signer.Sign(record)
		require.NoError(t, err)
		return record
	}

	t.Run("Success_MixedRecords", func(t *testing.T) {
		repo := &mocks.MockAuditRecordRepository{}

		valid := signed("credential_access")
		tampered := signed("credential_access")
		tampered.Operation = "credential_delete"
		unsigned := &auditDomain.EventAuditRecord{ID: uuid.New(), Operation: "credential_access"}

		repo.On("List", ctx, 0, 1000, &start, &end).
			Return([]*auditDomain.EventAuditRecord{valid, tampered, unsigned}, nil).
			Once()

		report, err := auditUseCase.NewAuditLogUseCase(nil, repo, signer).VerifyBatch(ctx, start, end)
		require.NoError(t, err)
		assert.Equal(t, int64(3), report.TotalChecked)
		assert.Equal(t, int64(2), report.SignedCount)
		assert.Equal(t, int64(1), report.UnsignedCount)
		assert.Equal(t, int64(1), report.ValidCount)
		assert.Equal(t, int64(1), report.InvalidCount)
		assert.Equal(t, []uuid.UUID{tampered.ID}, report.InvalidLogs)
	})

	t.Run("Success_Pages", func(t *testing.T) {
		repo := &mocks.MockAuditRecordRepository{}

		firstPage := make([]*auditDomain.EventAuditRecord, 1000)
		for i := range firstPage {
			firstPage[i] = signed("credential_access")
		}
		repo.On("List", ctx, 0, 1000, &start, &end).Return(firstPage, nil).Once()
		repo.On("List", ctx, 1000, 1000, &start, &end).
			Return([]*auditDomain.EventAuditRecord{signed("credential_update")}, nil).
			Once()

		report, err := auditUseCase.NewAuditLogUseCase(nil, repo, signer).VerifyBatch(ctx, start, end)
		require.NoError(t, err)
		assert.Equal(t, int64(1001), report.TotalChecked)
		assert.Equal(t, int64(1001), report.ValidCount)
		repo.AssertExpectations(t)
	})

	t.Run("Error_ListFails", func(t *testing.T) {
		repo := &mocks.MockAuditRecordRepository{}
		repo.On("List", ctx, 0, 1000, &start, &end).Return(nil, assert.AnError).Once()

		_, err := auditUseCase.NewAuditLogUseCase(nil, repo, signer).VerifyBatch(ctx, start, end)
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestAuditLogUseCase_List(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.MockAuditRecordRepository{}
	records := []*auditDomain.EventAuditRecord{{ID: uuid.New()}}

	repo.On("List", ctx, 10, 5, (*time.Time)(nil), (*time.Time)(nil)).Return(records, nil).Once()

	got, err := auditUseCase.NewAuditLogUseCase(nil, repo, newSigner(t)).List(ctx, 10, 5, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, records, got)
}
