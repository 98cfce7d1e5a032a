// Package repository implements credential version persistence for PostgreSQL and MySQL.
// Versions are immutable rows; only their encryption columns are rewritten by key
// rotation.
package repository

import (
	"time"

	"github.com/google/uuid"

	credentialDomain "github.com/allisson/credstore/internal/credential/domain"
	cryptoDomain "github.com/allisson/credstore/internal/crypto/domain"
)

const credentialColumns = `id, name, type, secret_key_id, secret_value, secret_nonce,
			  parameters_key_id, parameters_value, parameters_nonce,
			  ca_name, ca, certificate, public_key, username, salt, created_at`

// credentialRow holds the driver independent columns of credential_versions.
type credentialRow struct {
	name            string
	credentialType  string
	secretValue     []byte
	secretNonce     []byte
	parametersValue []byte
	parametersNonce []byte
	caName          *string
	ca              string
	certificate     string
	publicKey       string
	username        string
	salt            string
	createdAt       time.Time
}

func (r *credentialRow) toDomain(id, secretKeyID, parametersKeyID uuid.UUID) (*credentialDomain.Credential, error) {
	typ, err := credentialDomain.ParseCredentialType(r.credentialType)
	if err != nil {
		return nil, err
	}

	cred := &credentialDomain.Credential{
		ID:          id,
		Name:        r.name,
		Type:        typ,
		CreatedAt:   r.createdAt,
		Ca:          r.ca,
		Certificate: r.certificate,
		PublicKey:   r.publicKey,
		Username:    r.username,
		Salt:        r.salt,
	}
	cred.SetCaName(r.caName)

	if secretKeyID != uuid.Nil {
		cred.RestoreSecret(cryptoDomain.Encryption{
			KeyID:          secretKeyID,
			EncryptedValue: r.secretValue,
			Nonce:          r.secretNonce,
		})
	}
	if parametersKeyID != uuid.Nil {
		cred.RestoreParameters(cryptoDomain.Encryption{
			KeyID:          parametersKeyID,
			EncryptedValue: r.parametersValue,
			Nonce:          r.parametersNonce,
		})
	}

	return cred, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}
