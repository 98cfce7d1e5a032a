// Package usecase answers permission checks and manages permission entries.
package usecase

import (
	"context"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
	authDomain "github.com/allisson/credstore/internal/auth/domain"
)

// PermissionRepository persists permission entries. Implementations must support
// transaction-aware operations via context propagation.
type PermissionRepository interface {
	// ListByActor returns every entry granted to actor.
	ListByActor(ctx context.Context, actor string) ([]*authDomain.PermissionEntry, error)

	// ListByPath returns every entry whose pattern equals path.
	ListByPath(ctx context.Context, path string) ([]*authDomain.PermissionEntry, error)

	// Save inserts the entry or replaces the operations of the existing (actor, path) entry.
	Save(ctx context.Context, entry *authDomain.PermissionEntry) error

	// Delete removes the (actor, path) entry and reports whether it existed.
	Delete(ctx context.Context, actor, path string) (bool, error)
}

// PermissionChecker answers whether actor may perform op on path.
type PermissionChecker interface {
	HasPermission(ctx context.Context, actor, path string, op authDomain.PermissionOperation) (bool, error)
}

// PermissionUseCase manages permission entries on behalf of an authenticated caller.
// Every call appends exactly one audit parameter entry per affected operation.
type PermissionUseCase interface {
	PermissionChecker

	// GetPermissions lists the entries defined on path. Requires read_acl on path.
	GetPermissions(
		ctx context.Context,
		path string,
		user authDomain.UserContext,
		params *[]auditDomain.EventAuditRecordParameters,
	) ([]*authDomain.PermissionEntry, error)

	// SetPermissions grants entry.Operations on entry.Path to entry.Actor. Requires
	// write_acl on the path; callers cannot change their own permissions.
	SetPermissions(
		ctx context.Context,
		entry *authDomain.PermissionEntry,
		user authDomain.UserContext,
		params *[]auditDomain.EventAuditRecordParameters,
	) error

	// DeletePermissions revokes everything actor holds on path. Requires write_acl.
	DeletePermissions(
		ctx context.Context,
		path, actor string,
		user authDomain.UserContext,
		params *[]auditDomain.EventAuditRecordParameters,
	) error
}
