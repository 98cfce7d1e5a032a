package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
	authDomain "github.com/allisson/credstore/internal/auth/domain"
	authUseCase "github.com/allisson/credstore/internal/auth/usecase"
	credentialDomain "github.com/allisson/credstore/internal/credential/domain"
	cryptoDomain "github.com/allisson/credstore/internal/crypto/domain"
	apperrors "github.com/allisson/credstore/internal/errors"
)

type credentialHandler struct {
	dataService       CredentialDataService
	permissionChecker authUseCase.PermissionChecker
	encryptor         cryptoDomain.Encryptor
}

func (h *credentialHandler) DeleteCredential(
	ctx context.Context,
	name string,
	user authDomain.UserContext,
	params *[]auditDomain.EventAuditRecordParameters,
) error {
	name = credentialDomain.NormalizeName(name)
	appendParams(params, auditDomain.CredentialDelete, name)

	if err := h.authorize(ctx, user, name, authDomain.OperationDelete); err != nil {
		return err
	}

	deleted, err := h.dataService.Delete(ctx, name)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete credential")
	}
	if !deleted {
		return credentialDomain.ErrEntryNotFound
	}
	return nil
}

func (h *credentialHandler) GetAllCredentialVersions(
	ctx context.Context,
	name string,
	user authDomain.UserContext,
	params *[]auditDomain.EventAuditRecordParameters,
) ([]*credentialDomain.Credential, error) {
	name = credentialDomain.NormalizeName(name)
	appendParams(params, auditDomain.CredentialAccess, name)

	if err := h.authorize(ctx, user, name, authDomain.OperationRead); err != nil {
		return nil, err
	}

	creds, err := h.dataService.FindAllByName(ctx, name)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to find credential versions")
	}
	return h.attachAll(creds)
}

func (h *credentialHandler) GetNCredentialVersions(
	ctx context.Context,
	name string,
	n int,
	user authDomain.UserContext,
	params *[]auditDomain.EventAuditRecordParameters,
) ([]*credentialDomain.Credential, error) {
	name = credentialDomain.NormalizeName(name)
	appendParams(params, auditDomain.CredentialAccess, name)

	if n < 0 {
		return nil, credentialDomain.NewInvalidQueryParameterError("versions")
	}
	if err := h.authorize(ctx, user, name, authDomain.OperationRead); err != nil {
		return nil, err
	}

	creds, err := h.dataService.FindNByName(ctx, name, n)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to find credential versions")
	}
	return h.attachAll(creds)
}

func (h *credentialHandler) GetMostRecentCredentialVersion(
	ctx context.Context,
	name string,
	user authDomain.UserContext,
	params *[]auditDomain.EventAuditRecordParameters,
) (*credentialDomain.Credential, error) {
	name = credentialDomain.NormalizeName(name)
	appendParams(params, auditDomain.CredentialAccess, name)

	if err := h.authorize(ctx, user, name, authDomain.OperationRead); err != nil {
		return nil, err
	}

	cred, err := h.dataService.FindMostRecent(ctx, name)
	if err != nil {
		if errors.Is(err, credentialDomain.ErrCredentialNotFound) {
			return nil, credentialDomain.ErrEntryNotFound
		}
		return nil, apperrors.Wrap(err, "failed to find credential")
	}
	return cred.SetEncryptor(h.encryptor), nil
}

// GetCredentialVersion looks the version up before checking permission, since only
// the version knows its name. An unknown or malformed id is audited without a name.
func (h *credentialHandler) GetCredentialVersion(
	ctx context.Context,
	id string,
	user authDomain.UserContext,
	params *[]auditDomain.EventAuditRecordParameters,
) (*credentialDomain.Credential, error) {
	versionID, err := uuid.Parse(id)
	if err != nil {
		*params = append(*params, auditDomain.EventAuditRecordParameters{
			AuditingOperationCode: auditDomain.CredentialAccess,
		})
		return nil, credentialDomain.ErrEntryNotFound
	}

	cred, err := h.dataService.FindByUUID(ctx, versionID)
	if err != nil {
		*params = append(*params, auditDomain.EventAuditRecordParameters{
			AuditingOperationCode: auditDomain.CredentialAccess,
		})
		if errors.Is(err, credentialDomain.ErrCredentialNotFound) {
			return nil, credentialDomain.ErrEntryNotFound
		}
		return nil, apperrors.Wrap(err, "failed to find credential version")
	}

	appendParams(params, auditDomain.CredentialAccess, cred.Name)
	if err := h.authorize(ctx, user, cred.Name, authDomain.OperationRead); err != nil {
		return nil, err
	}
	return cred.SetEncryptor(h.encryptor), nil
}

func (h *credentialHandler) SetCredential(
	ctx context.Context,
	cred *credentialDomain.Credential,
	user authDomain.UserContext,
	params *[]auditDomain.EventAuditRecordParameters,
) error {
	cred.Name = credentialDomain.NormalizeName(cred.Name)
	appendParams(params, auditDomain.CredentialUpdate, cred.Name)

	if err := credentialDomain.ValidateName(cred.Name); err != nil {
		return err
	}
	if err := h.authorize(ctx, user, cred.Name, authDomain.OperationWrite); err != nil {
		return err
	}

	current, err := h.dataService.FindMostRecent(ctx, cred.Name)
	switch {
	case errors.Is(err, credentialDomain.ErrCredentialNotFound):
	case err != nil:
		return apperrors.Wrap(err, "failed to find credential")
	case current.Type != cred.Type:
		return credentialDomain.ErrTypeMismatch
	}

	if err := h.dataService.Save(ctx, cred); err != nil {
		return apperrors.Wrap(err, "failed to save credential version")
	}
	cred.SetEncryptor(h.encryptor)
	return nil
}

// authorize maps a denial to ErrEntryNotFound. A failed lookup is a denial as well
// but is returned as is, so the caller can tell an outage from a missing entry.
func (h *credentialHandler) authorize(
	ctx context.Context,
	user authDomain.UserContext,
	name string,
	op authDomain.PermissionOperation,
) error {
	allowed, err := h.permissionChecker.HasPermission(ctx, user.Actor(), name, op)
	if err != nil {
		return apperrors.Wrap(err, "failed to check permission")
	}
	if !allowed {
		return credentialDomain.ErrEntryNotFound
	}
	return nil
}

func (h *credentialHandler) attachAll(creds []*credentialDomain.Credential) ([]*credentialDomain.Credential, error) {
	if len(creds) == 0 {
		return nil, credentialDomain.ErrEntryNotFound
	}
	for _, cred := range creds {
		cred.SetEncryptor(h.encryptor)
	}
	return creds, nil
}

func appendParams(
	params *[]auditDomain.EventAuditRecordParameters,
	code auditDomain.OperationCode,
	name string,
) {
	*params = append(*params, auditDomain.NewEventAuditRecordParameters(code, name))
}

// NewCredentialHandler creates a CredentialHandler. Returned credentials decrypt
// through encryptor.
func NewCredentialHandler(
	dataService CredentialDataService,
	permissionChecker authUseCase.PermissionChecker,
	encryptor cryptoDomain.Encryptor,
) CredentialHandler {
	return &credentialHandler{
		dataService:       dataService,
		permissionChecker: permissionChecker,
		encryptor:         encryptor,
	}
}
