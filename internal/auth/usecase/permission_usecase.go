package usecase

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
	authDomain "github.com/allisson/credstore/internal/auth/domain"
	credentialDomain "github.com/allisson/credstore/internal/credential/domain"
	apperrors "github.com/allisson/credstore/internal/errors"
)

type permissionUseCase struct {
	permissionRepo PermissionRepository
}

// HasPermission denies an empty actor and propagates lookup failures, which callers
// must treat as a denial.
func (p *permissionUseCase) HasPermission(
	ctx context.Context,
	actor, path string,
	op authDomain.PermissionOperation,
) (bool, error) {
	if actor == "" {
		return false, nil
	}

	entries, err := p.permissionRepo.ListByActor(ctx, actor)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to list permissions")
	}

	path = credentialDomain.NormalizeName(path)
	for _, entry := range entries {
		if entry.Allows(path, op) {
			return true, nil
		}
	}
	return false, nil
}

func (p *permissionUseCase) GetPermissions(
	ctx context.Context,
	path string,
	user authDomain.UserContext,
	params *[]auditDomain.EventAuditRecordParameters,
) ([]*authDomain.PermissionEntry, error) {
	path = credentialDomain.NormalizeName(path)
	*params = append(*params, auditDomain.NewEventAuditRecordParameters(auditDomain.ACLAccess, path))

	if err := p.require(ctx, user, path, authDomain.OperationReadACL); err != nil {
		return nil, err
	}

	entries, err := p.permissionRepo.ListByPath(ctx, path)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list permissions")
	}
	if len(entries) == 0 {
		return nil, authDomain.ErrPermissionNotFound
	}
	return entries, nil
}

func (p *permissionUseCase) SetPermissions(
	ctx context.Context,
	entry *authDomain.PermissionEntry,
	user authDomain.UserContext,
	params *[]auditDomain.EventAuditRecordParameters,
) error {
	if entry == nil || entry.Actor == "" || entry.Path == "" || len(entry.Operations) == 0 {
		return authDomain.ErrInvalidPermissionEntry
	}
	for _, op := range entry.Operations {
		if _, err := authDomain.ParsePermissionOperation(string(op)); err != nil {
			return err
		}
	}

	entry.Path = credentialDomain.NormalizeName(entry.Path)
	for _, op := range entry.Operations {
		*params = append(
			*params,
			auditDomain.NewACLAuditRecordParameters(auditDomain.ACLUpdate, entry.Path, op, entry.Actor),
		)
	}

	if err := p.require(ctx, user, entry.Path, authDomain.OperationWriteACL); err != nil {
		return err
	}
	if entry.Actor == user.Actor() {
		return authDomain.ErrInvalidPermissionUpdate
	}

	if entry.ID == uuid.Nil {
		entry.ID = uuid.Must(uuid.NewV7())
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	entry.Operations = slices.Compact(slices.Sorted(slices.Values(entry.Operations)))

	if err := p.permissionRepo.Save(ctx, entry); err != nil {
		return apperrors.Wrap(err, "failed to save permission")
	}
	return nil
}

func (p *permissionUseCase) DeletePermissions(
	ctx context.Context,
	path, actor string,
	user authDomain.UserContext,
	params *[]auditDomain.EventAuditRecordParameters,
) error {
	path = credentialDomain.NormalizeName(path)
	param := auditDomain.NewEventAuditRecordParameters(auditDomain.ACLDelete, path)
	param.AclActor = &actor
	*params = append(*params, param)

	if err := p.require(ctx, user, path, authDomain.OperationWriteACL); err != nil {
		return err
	}
	if actor == user.Actor() {
		return authDomain.ErrInvalidPermissionUpdate
	}

	deleted, err := p.permissionRepo.Delete(ctx, actor, path)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete permission")
	}
	if !deleted {
		return authDomain.ErrPermissionNotFound
	}
	return nil
}

// require turns a denial or a failed lookup into ErrPermissionNotFound so callers
// cannot tell a missing entry from one they may not see.
func (p *permissionUseCase) require(
	ctx context.Context,
	user authDomain.UserContext,
	path string,
	op authDomain.PermissionOperation,
) error {
	allowed, err := p.HasPermission(ctx, user.Actor(), path, op)
	if err != nil || !allowed {
		return authDomain.ErrPermissionNotFound
	}
	return nil
}

// NewPermissionUseCase creates a PermissionUseCase backed by permissionRepo.
func NewPermissionUseCase(permissionRepo PermissionRepository) PermissionUseCase {
	return &permissionUseCase{permissionRepo: permissionRepo}
}
