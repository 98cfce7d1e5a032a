package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
	authDomain "github.com/allisson/credstore/internal/auth/domain"
	authUseCase "github.com/allisson/credstore/internal/auth/usecase"
	"github.com/allisson/credstore/internal/auth/usecase/mocks"
)

var admin = authDomain.UserContext{UserID: "admin", AuthMethod: authDomain.AuthMethodToken}

func adminEntries(ops ...authDomain.PermissionOperation) []*authDomain.PermissionEntry {
	return []*authDomain.PermissionEntry{{Actor: "uaa-user:admin", Path: "/team/*", Operations: ops}}
}

func TestPermissionUseCase_HasPermission(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_Granted", func(t *testing.T) {
		repo := &mocks.MockPermissionRepository{}
		repo.On("ListByActor", ctx, "uaa-user:admin").Return(adminEntries(authDomain.OperationRead), nil).Once()

		allowed, err := authUseCase.NewPermissionUseCase(repo).
			HasPermission(ctx, "uaa-user:admin", "team/db", authDomain.OperationRead)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("Success_OperationNotGranted", func(t *testing.T) {
		repo := &mocks.MockPermissionRepository{}
		repo.On("ListByActor", ctx, "uaa-user:admin").Return(adminEntries(authDomain.OperationRead), nil).Once()

		allowed, err := authUseCase.NewPermissionUseCase(repo).
			HasPermission(ctx, "uaa-user:admin", "/team/db", authDomain.OperationDelete)
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("Success_EmptyActorDenied", func(t *testing.T) {
		repo := &mocks.MockPermissionRepository{}

		allowed, err := authUseCase.NewPermissionUseCase(repo).
			HasPermission(ctx, "", "/team/db", authDomain.OperationRead)
		require.NoError(t, err)
		assert.False(t, allowed)
		repo.AssertNotCalled(t, "ListByActor", mock.Anything, mock.Anything)
	})

	t.Run("Error_LookupFails", func(t *testing.T) {
		repo := &mocks.MockPermissionRepository{}
		repo.On("ListByActor", ctx, "uaa-user:admin").Return(nil, assert.AnError).Once()

		allowed, err := authUseCase.NewPermissionUseCase(repo).
			HasPermission(ctx, "uaa-user:admin", "/team/db", authDomain.OperationRead)
		assert.ErrorIs(t, err, assert.AnError)
		assert.False(t, allowed)
	})
}

func TestPermissionUseCase_GetPermissions(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_ListsEntries", func(t *testing.T) {
		repo := &mocks.MockPermissionRepository{}
		entries := []*authDomain.PermissionEntry{{Actor: "mtls-app:worker", Path: "/team/db"}}
		repo.On("ListByActor", ctx, "uaa-user:admin").Return(adminEntries(authDomain.OperationReadACL), nil).Once()
		repo.On("ListByPath", ctx, "/team/db").Return(entries, nil).Once()

		var params []auditDomain.EventAuditRecordParameters
		got, err := authUseCase.NewPermissionUseCase(repo).GetPermissions(ctx, "team/db", admin, &params)
		require.NoError(t, err)
		assert.Equal(t, entries, got)
		require.Len(t, params, 1)
		assert.Equal(t, auditDomain.ACLAccess, params[0].AuditingOperationCode)
		assert.Equal(t, "/team/db", *params[0].CredentialName)
	})

	t.Run("Error_DeniedLooksMissing", func(t *testing.T) {
		repo := &mocks.MockPermissionRepository{}
		repo.On("ListByActor", ctx, "uaa-user:admin").Return(adminEntries(authDomain.OperationRead), nil).Once()

		var params []auditDomain.EventAuditRecordParameters
		_, err := authUseCase.NewPermissionUseCase(repo).GetPermissions(ctx, "/team/db", admin, &params)
		assert.ErrorIs(t, err, authDomain.ErrPermissionNotFound)
		assert.Len(t, params, 1)
		repo.AssertNotCalled(t, "ListByPath", mock.Anything, mock.Anything)
	})

	t.Run("Error_NoEntries", func(t *testing.T) {
		repo := &mocks.MockPermissionRepository{}
		repo.On("ListByActor", ctx, "uaa-user:admin").Return(adminEntries(authDomain.OperationReadACL), nil).Once()
		repo.On("ListByPath", ctx, "/team/db").Return([]*authDomain.PermissionEntry{}, nil).Once()

		var params []auditDomain.EventAuditRecordParameters
		_, err := authUseCase.NewPermissionUseCase(repo).GetPermissions(ctx, "/team/db", admin, &params)
		assert.ErrorIs(t, err, authDomain.ErrPermissionNotFound)
	})
}

func TestPermissionUseCase_SetPermissions(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_SavesEntryAndAuditsEachOperation", func(t *testing.T) {
		repo := &mocks.MockPermissionRepository{}
		repo.On("ListByActor", ctx, "uaa-user:admin").Return(adminEntries(authDomain.OperationWriteACL), nil).Once()
		repo.On("Save", ctx, mock.MatchedBy(func(e *authDomain.PermissionEntry) bool {
			return e.Path == "/team/db" && !e.CreatedAt.IsZero() &&
				assert.ObjectsAreEqual(
					[]authDomain.PermissionOperation{authDomain.OperationRead, authDomain.OperationWrite},
					e.Operations,
				)
		})).Return(nil).Once()

		entry := &authDomain.PermissionEntry{
			Actor: "mtls-app:worker",
			Path:  "team/db",
			Operations: []authDomain.PermissionOperation{
				authDomain.OperationWrite,
				authDomain.OperationRead,
				authDomain.OperationRead,
			},
		}
		var params []auditDomain.EventAuditRecordParameters
		err := authUseCase.NewPermissionUseCase(repo).SetPermissions(ctx, entry, admin, &params)
		require.NoError(t, err)

		require.Len(t, params, 3)
		for _, p := range params {
			assert.Equal(t, auditDomain.ACLUpdate, p.AuditingOperationCode)
			assert.Equal(t, "mtls-app:worker", *p.AclActor)
		}
		assert.Equal(t, authDomain.OperationWrite, *params[0].AclOperation)
		repo.AssertExpectations(t)
	})

	t.Run("Error_OwnPermissions", func(t *testing.T) {
		repo := &mocks.MockPermissionRepository{}
		repo.On("ListByActor", ctx, "uaa-user:admin").Return(adminEntries(authDomain.OperationWriteACL), nil).Once()

		entry := &authDomain.PermissionEntry{
			Actor:      "uaa-user:admin",
			Path:       "/team/db",
			Operations: []authDomain.PermissionOperation{authDomain.OperationDelete},
		}
		var params []auditDomain.EventAuditRecordParameters
		err := authUseCase.NewPermissionUseCase(repo).SetPermissions(ctx, entry, admin, &params)
		assert.ErrorIs(t, err, authDomain.ErrInvalidPermissionUpdate)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("Error_Denied", func(t *testing.T) {
		repo := &mocks.MockPermissionRepository{}
		repo.On("ListByActor", ctx, "uaa-user:admin").Return(nil, assert.AnError).Once()

		entry := &authDomain.PermissionEntry{
			Actor:      "mtls-app:worker",
			Path:       "/team/db",
			Operations: []authDomain.PermissionOperation{authDomain.OperationRead},
		}
		var params []auditDomain.EventAuditRecordParameters
		err := authUseCase.NewPermissionUseCase(repo).SetPermissions(ctx, entry, admin, &params)
		assert.ErrorIs(t, err, authDomain.ErrPermissionNotFound)
		assert.Len(t, params, 1)
	})

	t.Run("Error_InvalidEntry", func(t *testing.T) {
		repo := &mocks.MockPermissionRepository{}
		uc := authUseCase.NewPermissionUseCase(repo)
		var params []auditDomain.EventAuditRecordParameters

		err := uc.SetPermissions(ctx, &authDomain.PermissionEntry{Actor: "a", Path: "/p"}, admin, &params)
		assert.ErrorIs(t, err, authDomain.ErrInvalidPermissionEntry)

		err = uc.SetPermissions(ctx, &authDomain.PermissionEntry{
			Actor:      "a",
			Path:       "/p",
			Operations: []authDomain.PermissionOperation{"admin"},
		}, admin, &params)
		assert.ErrorIs(t, err, authDomain.ErrInvalidOperation)
		assert.Empty(t, params)
	})
}

func TestPermissionUseCase_DeletePermissions(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_Deleted", func(t *testing.T) {
		repo := &mocks.MockPermissionRepository{}
		repo.On("ListByActor", ctx, "uaa-user:admin").Return(adminEntries(authDomain.OperationWriteACL), nil).Once()
		repo.On("Delete", ctx, "mtls-app:worker", "/team/db").Return(true, nil).Once()

		var params []auditDomain.EventAuditRecordParameters
		err := authUseCase.NewPermissionUseCase(repo).
			DeletePermissions(ctx, "/team/db", "mtls-app:worker", admin, &params)
		require.NoError(t, err)
		require.Len(t, params, 1)
		assert.Equal(t, auditDomain.ACLDelete, params[0].AuditingOperationCode)
		assert.Equal(t, "mtls-app:worker", *params[0].AclActor)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		repo := &mocks.MockPermissionRepository{}
		repo.On("ListByActor", ctx, "uaa-user:admin").Return(adminEntries(authDomain.OperationWriteACL), nil).Once()
		repo.On("Delete", ctx, "mtls-app:worker", "/team/db").Return(false, nil).Once()

		var params []auditDomain.EventAuditRecordParameters
		err := authUseCase.NewPermissionUseCase(repo).
			DeletePermissions(ctx, "/team/db", "mtls-app:worker", admin, &params)
		assert.ErrorIs(t, err, authDomain.ErrPermissionNotFound)
	})

	t.Run("Error_RepositoryFailure", func(t *testing.T) {
		repo := &mocks.MockPermissionRepository{}
		repo.On("ListByActor", ctx, "uaa-user:admin").Return(adminEntries(authDomain.OperationWriteACL), nil).Once()
		repo.On("Delete", ctx, "mtls-app:worker", "/team/db").Return(false, assert.AnError).Once()

		var params []auditDomain.EventAuditRecordParameters
		err := authUseCase.NewPermissionUseCase(repo).
			DeletePermissions(ctx, "/team/db", "mtls-app:worker", admin, &params)
		assert.ErrorIs(t, err, assert.AnError)
	})
}
