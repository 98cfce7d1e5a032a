// Package usecase gates every credential read, write and delete behind a permission
// check and collects the audit parameters describing each call.
package usecase

import (
	"context"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
	authDomain "github.com/allisson/credstore/internal/auth/domain"
	credentialDomain "github.com/allisson/credstore/internal/credential/domain"
)

// CredentialDataService persists immutable credential versions. Names are compared
// case-insensitively and lists are ordered newest first. Credentials are returned
// without an Encryptor attached.
type CredentialDataService interface {
	Save(ctx context.Context, cred *credentialDomain.Credential) error
	FindAllByName(ctx context.Context, name string) ([]*credentialDomain.Credential, error)
	FindNByName(ctx context.Context, name string, n int) ([]*credentialDomain.Credential, error)

	// FindMostRecent returns ErrCredentialNotFound when name has no version.
	FindMostRecent(ctx context.Context, name string) (*credentialDomain.Credential, error)

	// FindByUUID returns ErrCredentialNotFound when no version has id.
	FindByUUID(ctx context.Context, id uuid.UUID) (*credentialDomain.Credential, error)

	// Delete removes every version of name and reports whether any existed.
	Delete(ctx context.Context, name string) (bool, error)

	// FindNotEncryptedWith returns up to limit versions holding an envelope under a key
	// other than keyID.
	FindNotEncryptedWith(ctx context.Context, keyID uuid.UUID, limit int) ([]*credentialDomain.Credential, error)

	// UpdateEncryption replaces the envelopes of an existing version in place.
	UpdateEncryption(ctx context.Context, cred *credentialDomain.Credential) error
}

// CredentialHandler is the permission-checked access layer. Every method appends
// exactly one entry to params whatever the outcome, and a denied caller gets the same
// ErrEntryNotFound as one asking for a name that does not exist.
type CredentialHandler interface {
	// DeleteCredential removes every version of name. Requires delete.
	DeleteCredential(
		ctx context.Context,
		name string,
		user authDomain.UserContext,
		params *[]auditDomain.EventAuditRecordParameters,
	) error

	// GetAllCredentialVersions returns every version of name. Requires read.
	GetAllCredentialVersions(
		ctx context.Context,
		name string,
		user authDomain.UserContext,
		params *[]auditDomain.EventAuditRecordParameters,
	) ([]*credentialDomain.Credential, error)

	// GetNCredentialVersions returns the n newest versions of name. Requires read; a
	// negative n fails with an InvalidQueryParameterError for "versions".
	GetNCredentialVersions(
		ctx context.Context,
		name string,
		n int,
		user authDomain.UserContext,
		params *[]auditDomain.EventAuditRecordParameters,
	) ([]*credentialDomain.Credential, error)

	// GetMostRecentCredentialVersion returns the newest version of name. Requires read.
	GetMostRecentCredentialVersion(
		ctx context.Context,
		name string,
		user authDomain.UserContext,
		params *[]auditDomain.EventAuditRecordParameters,
	) (*credentialDomain.Credential, error)

	// GetCredentialVersion returns the version with id. Requires read on its name.
	GetCredentialVersion(
		ctx context.Context,
		id string,
		user authDomain.UserContext,
		params *[]auditDomain.EventAuditRecordParameters,
	) (*credentialDomain.Credential, error)

	// SetCredential stores cred as the newest version of its name. Requires write.
	SetCredential(
		ctx context.Context,
		cred *credentialDomain.Credential,
		user authDomain.UserContext,
		params *[]auditDomain.EventAuditRecordParameters,
	) error
}

// AuditingCredentialService runs a CredentialHandler call and appends the audit records
// it collected under requestID before returning. The outcome is returned unchanged.
type AuditingCredentialService interface {
	DeleteCredential(ctx context.Context, requestID uuid.UUID, name string, user authDomain.UserContext) error
	GetAllCredentialVersions(
		ctx context.Context,
		requestID uuid.UUID,
		name string,
		user authDomain.UserContext,
	) ([]*credentialDomain.Credential, error)
	GetNCredentialVersions(
		ctx context.Context,
		requestID uuid.UUID,
		name string,
		n int,
		user authDomain.UserContext,
	) ([]*credentialDomain.Credential, error)
	GetMostRecentCredentialVersion(
		ctx context.Context,
		requestID uuid.UUID,
		name string,
		user authDomain.UserContext,
	) (*credentialDomain.Credential, error)
	GetCredentialVersion(
		ctx context.Context,
		requestID uuid.UUID,
		id string,
		user authDomain.UserContext,
	) (*credentialDomain.Credential, error)
	SetCredential(
		ctx context.Context,
		requestID uuid.UUID,
		cred *credentialDomain.Credential,
		user authDomain.UserContext,
	) error
}

// RotationUseCase moves stored credential versions onto the active encryption key.
type RotationUseCase interface {
	// Rotate re-encrypts every version not yet under the active key, batchSize versions
	// per query, and returns how many versions it updated.
	Rotate(ctx context.Context, batchSize int) (int, error)
}
