// Package service signs and verifies audit records.
package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
)

// signingKeyInfo is the HKDF info string; bump the version when the canonical format changes.
const signingKeyInfo = "audit-record-signing-v1"

// AuditSigner signs audit records and checks existing signatures.
type AuditSigner interface {
	Sign(record *auditDomain.EventAuditRecord) ([]byte, error)
	Verify(record *auditDomain.EventAuditRecord) error
}

type auditSigner struct {
	signingKey []byte
}

// NewAuditSigner derives the HMAC-SHA256 signing key from secret with HKDF-SHA256.
func NewAuditSigner(secret []byte) (AuditSigner, error) {
	if len(secret) == 0 {
		return nil, auditDomain.ErrSigningKeyNotSet
	}

	signingKey := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(signingKeyInfo)), signingKey); err != nil {
		return nil, fmt.Errorf("failed to derive signing key: %w", err)
	}

	return &auditSigner{signingKey: signingKey}, nil
}

// canonicalize encodes the record as:
// id || request_id || operation || credential_name || actor || success || acl_operation || acl_actor || created_at
// Strings are length-prefixed; optional strings carry a presence byte first so nil and
// empty values sign differently.
func canonicalize(record *auditDomain.EventAuditRecord) []byte {
	buf := make([]byte, 0, 256)

	buf = append(buf, record.ID[:]...)
	buf = append(buf, record.RequestID[:]...)
	buf = appendLengthPrefixed(buf, []byte(record.Operation))
	buf = appendOptional(buf, record.CredentialName)
	buf = appendLengthPrefixed(buf, []byte(record.Actor))
	if record.Success {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	buf = appendOptional(buf, record.AclOperation)
	buf = appendOptional(buf, record.AclActor)
	buf = binary.BigEndian.AppendUint64(buf, uint64(record.CreatedAt.UnixNano()))

	return buf
}

func appendOptional(buf []byte, value *string) []byte {
	if value == nil {
		return append(buf, 0)
	}
	buf = append(buf, 1)
	return appendLengthPrefixed(buf, []byte(*value))
}

// appendLengthPrefixed adds a 4-byte big-endian length prefix followed by data.
func appendLengthPrefixed(buf []byte, data []byte) []byte {
	if len(data) > 0xFFFFFFFF {
		panic("data length exceeds uint32 max (4GB)")
	}
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(data)))
	return append(buf, data...)
}

// Sign returns the 32-byte HMAC-SHA256 of the record's canonical form.
func (a *auditSigner) Sign(record *auditDomain.EventAuditRecord) ([]byte, error) {
	mac := hmac.New(sha256.New, a.signingKey)
	mac.Write(canonicalize(record))
	return mac.Sum(nil), nil
}

// Verify returns ErrSignatureInvalid when record does not match its signature.
func (a *auditSigner) Verify(record *auditDomain.EventAuditRecord) error {
	expected, err := a.Sign(record)
	if err != nil {
		return fmt.Errorf("failed to compute expected signature: %w", err)
	}
	if !hmac.Equal(record.Signature, expected) {
		return auditDomain.ErrSignatureInvalid
	}
	return nil
}
