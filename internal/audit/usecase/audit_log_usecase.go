package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
	auditService "github.com/allisson/credstore/internal/audit/service"
	authDomain "github.com/allisson/credstore/internal/auth/domain"
	"github.com/allisson/credstore/internal/database"
	apperrors "github.com/allisson/credstore/internal/errors"
)

// verifyPageSize is how many records VerifyBatch loads per query.
const verifyPageSize = 1000

type auditLogUseCase struct {
	txManager database.TxManager
	repo      AuditRecordRepository
	signer    auditService.AuditSigner
}

func (a *auditLogUseCase) Record(
	ctx context.Context,
	params []auditDomain.EventAuditRecordParameters,
	user authDomain.UserContext,
	requestID uuid.UUID,
	success bool,
) error {
	records := make([]*auditDomain.EventAuditRecord, 0, max(len(params), 1))
	if len(params) == 0 {
		records = append(records, auditDomain.NewEventAuditRecord(nil, user, requestID, success))
	}
	for i := range params {
		records = append(records, auditDomain.NewEventAuditRecord(&params[i], user, requestID, success))
	}

	for _, record := range records {
		signature, err := a.signer.Sign(record)
		if err != nil {
			return apperrors.Wrap(err, "failed to sign audit record")
		}
		record.Signature = signature
	}

	return a.txManager.WithTx(ctx, func(ctx context.Context) error {
		for _, record := range records {
			if err := a.repo.Create(ctx, record); err != nil {
				return apperrors.Wrap(err, "failed to create audit record")
			}
		}
		return nil
	})
}

func (a *auditLogUseCase) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.EventAuditRecord, error) {
	records, err := a.repo.List(ctx, offset, limit, createdAtFrom, createdAtTo)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit records")
	}
	return records, nil
}

func (a *auditLogUseCase) VerifyBatch(ctx context.Context, start, end time.Time) (*VerificationReport, error) {
	report := &VerificationReport{InvalidLogs: make([]uuid.UUID, 0)}

	for offset := 0; ; offset += verifyPageSize {
		records, err := a.repo.List(ctx, offset, verifyPageSize, &start, &end)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to list audit records")
		}

		for _, record := range records {
			report.TotalChecked++
			if !record.IsSigned() {
				report.UnsignedCount++
				continue
			}

			report.SignedCount++
			err := a.signer.Verify(record)
			switch {
			case err == nil:
				report.ValidCount++
			case errors.Is(err, auditDomain.ErrSignatureInvalid):
				report.InvalidCount++
				report.InvalidLogs = append(report.InvalidLogs, record.ID)
			default:
				return nil, apperrors.Wrap(err, "failed to verify audit record")
			}
		}

		if len(records) < verifyPageSize {
			return report, nil
		}
	}
}

// NewAuditLogUseCase creates an AuditLogUseCase that signs every record it stores.
func NewAuditLogUseCase(
	txManager database.TxManager,
	repo AuditRecordRepository,
	signer auditService.AuditSigner,
) AuditLogUseCase {
	return &auditLogUseCase{
		txManager: txManager,
		repo:      repo,
		signer:    signer,
	}
}
