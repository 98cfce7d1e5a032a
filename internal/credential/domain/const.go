package domain

import (
	apperrors "github.com/allisson/credstore/internal/errors"
)

// CredentialType tags the variant a Credential holds.
type CredentialType string

const (
	TypePassword    CredentialType = "password"
	TypeValue       CredentialType = "value"
	TypeJSON        CredentialType = "json"
	TypeCertificate CredentialType = "certificate"
	TypeSSH         CredentialType = "ssh"
	TypeRSA         CredentialType = "rsa"
	TypeUser        CredentialType = "user"
)

// ParseCredentialType converts the stored string form back into a CredentialType.
func ParseCredentialType(s string) (CredentialType, error) {
	switch t := CredentialType(s); t {
	case TypePassword, TypeValue, TypeJSON, TypeCertificate, TypeSSH, TypeRSA, TypeUser:
		return t, nil
	default:
		return "", apperrors.Wrapf(ErrUnknownCredentialType, "%q", s)
	}
}

// String implements fmt.Stringer.
func (t CredentialType) String() string {
	return string(t)
}
