package domain

import (
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/credstore/internal/auth/domain"
	credentialDomain "github.com/allisson/credstore/internal/credential/domain"
)

// EventAuditRecordParameters describes one audited access. Every field is optional:
// nil pointers and an empty code mean "not known" and are recorded as such.
type EventAuditRecordParameters struct {
	AuditingOperationCode OperationCode
	CredentialName        *string
	AclOperation          *authDomain.PermissionOperation
	AclActor              *string
}

// NewEventAuditRecordParameters creates parameters for code on credential name.
func NewEventAuditRecordParameters(code OperationCode, name string) EventAuditRecordParameters {
	return EventAuditRecordParameters{AuditingOperationCode: code, CredentialName: &name}
}

// NewACLAuditRecordParameters creates parameters for a permission change on name.
func NewACLAuditRecordParameters(
	code OperationCode,
	name string,
	operation authDomain.PermissionOperation,
	actor string,
) EventAuditRecordParameters {
	return EventAuditRecordParameters{
		AuditingOperationCode: code,
		CredentialName:        &name,
		AclOperation:          &operation,
		AclActor:              &actor,
	}
}

// EventAuditRecord is an immutable audit fact. Signature is the HMAC over every other
// field.
type EventAuditRecord struct {
	ID             uuid.UUID
	RequestID      uuid.UUID
	Operation      string
	CredentialName *string
	Actor          string
	Success        bool
	AclOperation   *string
	AclActor       *string
	Signature      []byte
	CreatedAt      time.Time
}

// IsSigned reports whether the record carries a signature.
func (r *EventAuditRecord) IsSigned() bool {
	return len(r.Signature) > 0
}

// NewEventAuditRecord builds the record for one audited access. It never fails: nil
// params still yield a record of the actor, request and outcome.
func NewEventAuditRecord(
	params *EventAuditRecordParameters,
	user authDomain.UserContext,
	requestID uuid.UUID,
	success bool,
) *EventAuditRecord {
	record := &EventAuditRecord{
		ID:        uuid.Must(uuid.NewV7()),
		RequestID: requestID,
		Operation: UnknownOperation,
		Actor:     user.Actor(),
		Success:   success,
		CreatedAt: time.Now().UTC(),
	}
	if params == nil {
		return record
	}

	if params.AuditingOperationCode != "" {
		record.Operation = string(params.AuditingOperationCode)
	}
	record.CredentialName = credentialDomain.NormalizeNamePtr(params.CredentialName)
	if params.AclOperation != nil {
		op := string(*params.AclOperation)
		record.AclOperation = &op
	}
	if params.AclActor != nil {
		actor := *params.AclActor
		record.AclActor = &actor
	}

	return record
}
