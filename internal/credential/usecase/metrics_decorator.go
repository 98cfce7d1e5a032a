package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/credstore/internal/auth/domain"
	credentialDomain "github.com/allisson/credstore/internal/credential/domain"
	"github.com/allisson/credstore/internal/metrics"
)

// auditingCredentialServiceWithMetrics decorates AuditingCredentialService with metrics
// instrumentation.
type auditingCredentialServiceWithMetrics struct {
	next    AuditingCredentialService
	metrics metrics.BusinessMetrics
}

// NewAuditingCredentialServiceWithMetrics wraps an AuditingCredentialService with metrics recording.
func NewAuditingCredentialServiceWithMetrics(
	service AuditingCredentialService,
	m metrics.BusinessMetrics,
) AuditingCredentialService {
	return &auditingCredentialServiceWithMetrics{
		next:    service,
		metrics: m,
	}
}

func (s *auditingCredentialServiceWithMetrics) DeleteCredential(
	ctx context.Context,
	requestID uuid.UUID,
	name string,
	user authDomain.UserContext,
) error {
	start := time.Now()
	err := s.next.DeleteCredential(ctx, requestID, name, user)
	s.record(ctx, "credential_delete", start, err)
	return err
}

func (s *auditingCredentialServiceWithMetrics) GetAllCredentialVersions(
	ctx context.Context,
	requestID uuid.UUID,
	name string,
	user authDomain.UserContext,
) ([]*credentialDomain.Credential, error) {
	start := time.Now()
	creds, err := s.next.GetAllCredentialVersions(ctx, requestID, name, user)
	s.record(ctx, "credential_get_all", start, err)
	return creds, err
}

func (s *auditingCredentialServiceWithMetrics) GetNCredentialVersions(
	ctx context.Context,
	requestID uuid.UUID,
	name string,
	n int,
	user authDomain.UserContext,
) ([]*credentialDomain.Credential, error) {
	start := time.Now()
	creds, err := s.next.GetNCredentialVersions(ctx, requestID, name, n, user)
	s.record(ctx, "credential_get_n", start, err)
	return creds, err
}

func (s *auditingCredentialServiceWithMetrics) GetMostRecentCredentialVersion(
	ctx context.Context,
	requestID uuid.UUID,
	name string,
	user authDomain.UserContext,
) (*credentialDomain.Credential, error) {
	start := time.Now()
	cred, err := s.next.GetMostRecentCredentialVersion(ctx, requestID, name, user)
	s.record(ctx, "credential_get", start, err)
	return cred, err
}

func (s *auditingCredentialServiceWithMetrics) GetCredentialVersion(
	ctx context.Context,
	requestID uuid.UUID,
	id string,
	user authDomain.UserContext,
) (*credentialDomain.Credential, error) {
	start := time.Now()
	cred, err := s.next.GetCredentialVersion(ctx, requestID, id, user)
	s.record(ctx, "credential_get_version", start, err)
	return cred, err
}

func (s *auditingCredentialServiceWithMetrics) SetCredential(
	ctx context.Context,
	requestID uuid.UUID,
	cred *credentialDomain.Credential,
	user authDomain.UserContext,
) error {
	start := time.Now()
	err := s.next.SetCredential(ctx, requestID, cred, user)
	s.record(ctx, "credential_set", start, err)
	return err
}

func (s *auditingCredentialServiceWithMetrics) record(
	ctx context.Context,
	operation string,
	start time.Time,
	err error,
) {
	status := metrics.StatusOf(err)
	s.metrics.RecordOperation(ctx, "credentials", operation, status)
	s.metrics.RecordDuration(ctx, "credentials", operation, time.Since(start), status)
}
