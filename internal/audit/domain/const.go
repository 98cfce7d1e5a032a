// Package domain defines audit record parameters and the append-only audit record
// built from them.
package domain

// OperationCode names the kind of access an audit record describes.
type OperationCode string

const (
	CredentialAccess OperationCode = "credential_access"
	CredentialUpdate OperationCode = "credential_update"
	CredentialDelete OperationCode = "credential_delete"
	ACLAccess        OperationCode = "acl_access"
	ACLUpdate        OperationCode = "acl_update"
	ACLDelete        OperationCode = "acl_delete"
)

// UnknownOperation is recorded when parameters carry no operation code.
const UnknownOperation = "unknown_operation"
