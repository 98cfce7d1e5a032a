package usecase

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
	auditUseCase "github.com/allisson/credstore/internal/audit/usecase"
	authDomain "github.com/allisson/credstore/internal/auth/domain"
	credentialDomain "github.com/allisson/credstore/internal/credential/domain"
	apperrors "github.com/allisson/credstore/internal/errors"
)

type auditingCredentialService struct {
	handler  CredentialHandler
	auditLog auditUseCase.AuditLogUseCase
	logger   *slog.Logger
}

func (a *auditingCredentialService) DeleteCredential(
	ctx context.Context,
	requestID uuid.UUID,
	name string,
	user authDomain.UserContext,
) error {
	var params []auditDomain.EventAuditRecordParameters
	err := a.handler.DeleteCredential(ctx, name, user, &params)
	return a.record(ctx, params, user, requestID, err)
}

func (a *auditingCredentialService) GetAllCredentialVersions(
	ctx context.Context,
	requestID uuid.UUID,
	name string,
	user authDomain.UserContext,
) ([]*credentialDomain.Credential, error) {
	var params []auditDomain.EventAuditRecordParameters
	creds, err := a.handler.GetAllCredentialVersions(ctx, name, user, &params)
	if err := a.record(ctx, params, user, requestID, err); err != nil {
		return nil, err
	}
	return creds, nil
}

func (a *auditingCredentialService) GetNCredentialVersions(
	ctx context.Context,
	requestID uuid.UUID,
	name string,
	n int,
	user authDomain.UserContext,
) ([]*credentialDomain.Credential, error) {
	var params []auditDomain.EventAuditRecordParameters
	creds, err := a.handler.GetNCredentialVersions(ctx, name, n, user, &params)
	if err := a.record(ctx, params, user, requestID, err); err != nil {
		return nil, err
	}
	return creds, nil
}

func (a *auditingCredentialService) GetMostRecentCredentialVersion(
	ctx context.Context,
	requestID uuid.UUID,
	name string,
	user authDomain.UserContext,
) (*credentialDomain.Credential, error) {
	var params []auditDomain.EventAuditRecordParameters
	cred, err := a.handler.GetMostRecentCredentialVersion(ctx, name, user, &params)
	if err := a.record(ctx, params, user, requestID, err); err != nil {
		return nil, err
	}
	return cred, nil
}

func (a *auditingCredentialService) GetCredentialVersion(
	ctx context.Context,
	requestID uuid.UUID,
	id string,
	user authDomain.UserContext,
) (*credentialDomain.Credential, error) {
	var params []auditDomain.EventAuditRecordParameters
	cred, err := a.handler.GetCredentialVersion(ctx, id, user, &params)
	if err := a.record(ctx, params, user, requestID, err); err != nil {
		return nil, err
	}
	return cred, nil
}

func (a *auditingCredentialService) SetCredential(
	ctx context.Context,
	requestID uuid.UUID,
	cred *credentialDomain.Credential,
	user authDomain.UserContext,
) error {
	var params []auditDomain.EventAuditRecordParameters
	err := a.handler.SetCredential(ctx, cred, user, &params)
	return a.record(ctx, params, user, requestID, err)
}

// record appends the collected parameters with success derived from callErr and
// returns callErr. A result is never released when its audit records could not be
// stored.
func (a *auditingCredentialService) record(
	ctx context.Context,
	params []auditDomain.EventAuditRecordParameters,
	user authDomain.UserContext,
	requestID uuid.UUID,
	callErr error,
) error {
	if err := a.auditLog.Record(ctx, params, user, requestID, callErr == nil); err != nil {
		a.logger.Error("failed to record audit records",
			slog.String("request_id", requestID.String()),
			slog.String("actor", user.Actor()),
			slog.Any("error", err),
		)
		if callErr != nil {
			return callErr
		}
		return apperrors.Wrap(err, "failed to record audit records")
	}
	return callErr
}

// NewAuditingCredentialService creates an AuditingCredentialService.
func NewAuditingCredentialService(
	handler CredentialHandler,
	auditLog auditUseCase.AuditLogUseCase,
	logger *slog.Logger,
) AuditingCredentialService {
	return &auditingCredentialService{
		handler:  handler,
		auditLog: auditLog,
		logger:   logger,
	}
}
