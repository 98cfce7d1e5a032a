package usecase

import (
	"context"
	"time"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
	authDomain "github.com/allisson/credstore/internal/auth/domain"
	"github.com/allisson/credstore/internal/metrics"
)

// permissionUseCaseWithMetrics decorates PermissionUseCase with metrics instrumentation.
type permissionUseCaseWithMetrics struct {
	next    PermissionUseCase
	metrics metrics.BusinessMetrics
}

// NewPermissionUseCaseWithMetrics wraps a PermissionUseCase with metrics recording.
func NewPermissionUseCaseWithMetrics(useCase PermissionUseCase, m metrics.BusinessMetrics) PermissionUseCase {
	return &permissionUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// HasPermission records metrics for permission checks. A denial is a successful check.
func (p *permissionUseCaseWithMetrics) HasPermission(
	ctx context.Context,
	actor, path string,
	op authDomain.PermissionOperation,
) (bool, error) {
	start := time.Now()
	allowed, err := p.next.HasPermission(ctx, actor, path, op)
	p.record(ctx, "permission_check", start, err)
	return allowed, err
}

// GetPermissions records metrics for permission listing.
func (p *permissionUseCaseWithMetrics) GetPermissions(
	ctx context.Context,
	path string,
	user authDomain.UserContext,
	params *[]auditDomain.EventAuditRecordParameters,
) ([]*authDomain.PermissionEntry, error) {
	start := time.Now()
	entries, err := p.next.GetPermissions(ctx, path, user, params)
	p.record(ctx, "permission_get", start, err)
	return entries, err
}

// SetPermissions records metrics for permission grants.
func (p *permissionUseCaseWithMetrics) SetPermissions(
	ctx context.Context,
	entry *authDomain.PermissionEntry,
	user authDomain.UserContext,
	params *[]auditDomain.EventAuditRecordParameters,
) error {
	start := time.Now()
	err := p.next.SetPermissions(ctx, entry, user, params)
	p.record(ctx, "permission_set", start, err)
	return err
}

// DeletePermissions records metrics for permission revocation.
func (p *permissionUseCaseWithMetrics) DeletePermissions(
	ctx context.Context,
	path, actor string,
	user authDomain.UserContext,
	params *[]auditDomain.EventAuditRecordParameters,
) error {
	start := time.Now()
	err := p.next.DeletePermissions(ctx, path, actor, user, params)
	p.record(ctx, "permission_delete", start, err)
	return err
}

func (p *permissionUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := metrics.StatusOf(err)
	p.metrics.RecordOperation(ctx, "auth", operation, status)
	p.metrics.RecordDuration(ctx, "auth", operation, time.Since(start), status)
}
