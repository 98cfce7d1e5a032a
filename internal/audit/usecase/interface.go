// Package usecase records, lists and verifies audit records.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
	authDomain "github.com/allisson/credstore/internal/auth/domain"
)

// AuditRecordRepository persists audit records. Implementations must honor the
// transaction carried by ctx.
type AuditRecordRepository interface {
	Create(ctx context.Context, record *auditDomain.EventAuditRecord) error
	List(
		ctx context.Context,
		offset, limit int,
		createdAtFrom, createdAtTo *time.Time,
	) ([]*auditDomain.EventAuditRecord, error)
}

// VerificationReport summarizes a batch signature check.
type VerificationReport struct {
	TotalChecked  int64
	SignedCount   int64
	UnsignedCount int64
	ValidCount    int64
	InvalidCount  int64
	InvalidLogs   []uuid.UUID
}

// AuditLogUseCase is the append-only audit trail.
type AuditLogUseCase interface {
	// Record appends one signed record per parameter entry, all sharing requestID and
	// success. An empty params slice still records the request.
	Record(
		ctx context.Context,
		params []auditDomain.EventAuditRecordParameters,
		user authDomain.UserContext,
		requestID uuid.UUID,
		success bool,
	) error

	// List returns records newest first with optional inclusive time bounds.
	List(
		ctx context.Context,
		offset, limit int,
		createdAtFrom, createdAtTo *time.Time,
	) ([]*auditDomain.EventAuditRecord, error)

	// VerifyBatch checks the signature of every record created within [start, end].
	VerifyBatch(ctx context.Context, start, end time.Time) (*VerificationReport, error)
}
