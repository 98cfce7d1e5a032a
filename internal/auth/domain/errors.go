package domain

import (
	"github.com/allisson/credstore/internal/errors"
)

// Permission errors.
var (
	// ErrInvalidOperation indicates an unknown permission operation.
	ErrInvalidOperation = errors.Wrap(errors.ErrInvalidInput, "invalid permission operation")

	// ErrPermissionNotFound indicates no permission entry exists for an actor and path,
	// or that the caller may not see it.
	ErrPermissionNotFound = errors.Wrap(errors.ErrNotFound, "error.permission.invalid_access")

	// ErrInvalidPermissionUpdate indicates a caller tried to change its own permissions.
	ErrInvalidPermissionUpdate = errors.Wrap(errors.ErrInvalidInput, "error.permission.invalid_update_operation")

	// ErrInvalidPermissionEntry indicates an entry without actor, path or operations.
	ErrInvalidPermissionEntry = errors.Wrap(errors.ErrInvalidInput, "invalid permission entry")
)
