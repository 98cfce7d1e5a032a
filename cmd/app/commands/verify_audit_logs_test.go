package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditUseCase "github.com/allisson/credstore/internal/audit/usecase"
	auditMocks "github.com/allisson/credstore/internal/audit/usecase/mocks"
)

func TestRunVerifyAuditLogs(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	startDate := "2025-01-01"
	endDate := "2025-01-02 12:00:00"

	report := &auditUseCase.VerificationReport{
		TotalChecked: 10,
		SignedCount:  10,
		ValidCount:   10,
	}

	t.Run("Success_Text", func(t *testing.T) {
		mockUseCase := &auditMocks.MockAuditLogUseCase{}
		mockUseCase.On("VerifyBatch", ctx, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
			Return(report, nil)

		var out bytes.Buffer
		err := RunVerifyAuditLogs(ctx, mockUseCase, logger, &out, startDate, endDate, "text")
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Audit Record Verification")
		assert.Contains(t, out.String(), "Time Range: 2025-01-01 00:00:00 to 2025-01-02 12:00:00")
		assert.Contains(t, out.String(), "Status: PASSED")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Success_JSON", func(t *testing.T) {
		mockUseCase := &auditMocks.MockAuditLogUseCase{}
		mockUseCase.On("VerifyBatch", ctx, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
			Return(report, nil)

		var out bytes.Buffer
		err := RunVerifyAuditLogs(ctx, mockUseCase, logger, &out, startDate, endDate, "json")
		require.NoError(t, err)

		var result map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		assert.Equal(t, float64(10), result["total_checked"])
		assert.Equal(t, true, result["passed"])
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Success_EmptyRange", func(t *testing.T) {
		mockUseCase := &auditMocks.MockAuditLogUseCase{}
		mockUseCase.On("VerifyBatch", ctx, mock.Anything, mock.Anything).
			Return(&auditUseCase.VerificationReport{}, nil)

		var out bytes.Buffer
		err := RunVerifyAuditLogs(ctx, mockUseCase, logger, &out, startDate, endDate, "text")
		require.NoError(t, err)
		assert.Contains(t, out.String(), "no records in range")
	})

	t.Run("Error_InvalidStartDate", func(t *testing.T) {
		err := RunVerifyAuditLogs(ctx, nil, logger, nil, "invalid", endDate, "text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid start date")
	})

	t.Run("Error_EndBeforeStart", func(t *testing.T) {
		err := RunVerifyAuditLogs(ctx, nil, logger, nil, "2025-01-02", "2025-01-01", "text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "end date must be after start date")
	})

	t.Run("Error_InvalidFormat", func(t *testing.T) {
		err := RunVerifyAuditLogs(ctx, nil, logger, nil, startDate, endDate, "yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid format")
	})

	t.Run("Error_UseCase", func(t *testing.T) {
		mockUseCase := &auditMocks.MockAuditLogUseCase{}
		mockUseCase.On("VerifyBatch", ctx, mock.Anything, mock.Anything).Return(nil, assert.AnError)

		err := RunVerifyAuditLogs(ctx, mockUseCase, logger, &bytes.Buffer{}, startDate, endDate, "text")
		require.ErrorIs(t, err, assert.AnError)
	})

	t.Run("Error_IntegrityFailure", func(t *testing.T) {
		mockUseCase := &auditMocks.MockAuditLogUseCase{}
		failureReport := &auditUseCase.VerificationReport{
			TotalChecked: 10,
			SignedCount:  10,
			ValidCount:   8,
			InvalidCount: 2,
			InvalidLogs:  []uuid.UUID{uuid.New(), uuid.New()},
		}
		mockUseCase.On("VerifyBatch", ctx, mock.Anything, mock.Anything).Return(failureReport, nil)

		var out bytes.Buffer
		err := RunVerifyAuditLogs(ctx, mockUseCase, logger, &out, startDate, endDate, "text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "integrity check failed")
		assert.Contains(t, out.String(), "WARNING: 2 record(s) failed verification")
		assert.Contains(t, out.String(), failureReport.InvalidLogs[0].String())
	})
}
