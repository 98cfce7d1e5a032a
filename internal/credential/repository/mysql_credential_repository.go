package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	credentialDomain "github.com/allisson/credstore/internal/credential/domain"
	cryptoDomain "github.com/allisson/credstore/internal/crypto/domain"
	"github.com/allisson/credstore/internal/database"
	apperrors "github.com/allisson/credstore/internal/errors"
)

// MySQLCredentialRepository implements credential version persistence for MySQL. UUIDs
// are stored as BINARY(16).
type MySQLCredentialRepository struct {
	db *sql.DB
}

func (m *MySQLCredentialRepository) Save(ctx context.Context, cred *credentialDomain.Credential) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO credential_versions (` + credentialColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	id, err := cred.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal credential id")
	}
	secretKeyID, secretValue, secretNonce := mysqlEnvelope(cred.SecretEncryption())
	parametersKeyID, parametersValue, parametersNonce := mysqlEnvelope(cred.ParametersEncryption())

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		cred.Name,
		cred.Type.String(),
		secretKeyID,
		secretValue,
		secretNonce,
		parametersKeyID,
		parametersValue,
		parametersNonce,
		cred.CaName(),
		cred.Ca,
		cred.Certificate,
		cred.PublicKey,
		cred.Username,
		cred.Salt,
		cred.CreatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "credential version already exists")
		}
		return apperrors.Wrap(err, "failed to save credential version")
	}
	return nil
}

func (m *MySQLCredentialRepository) FindAllByName(
	ctx context.Context,
	name string,
) ([]*credentialDomain.Credential, error) {
	query := `SELECT ` + credentialColumns + `
			  FROM credential_versions
			  WHERE LOWER(name) = LOWER(?)
			  ORDER BY created_at DESC, id DESC`

	return m.list(ctx, query, name)
}

func (m *MySQLCredentialRepository) FindNByName(
	ctx context.Context,
	name string,
	n int,
) ([]*credentialDomain.Credential, error) {
	query := `SELECT ` + credentialColumns + `
			  FROM credential_versions
			  WHERE LOWER(name) = LOWER(?)
			  ORDER BY created_at DESC, id DESC
			  LIMIT ?`

	return m.list(ctx, query, name, n)
}

func (m *MySQLCredentialRepository) FindMostRecent(
	ctx context.Context,
	name string,
) (*credentialDomain.Credential, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + credentialColumns + `
			  FROM credential_versions
			  WHERE LOWER(name) = LOWER(?)
			  ORDER BY created_at DESC, id DESC
			  LIMIT 1`

	cred, err := scanMySQLCredential(querier.QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, credentialDomain.ErrCredentialNotFound
		}
		return nil, apperrors.Wrap(err, "failed to find most recent credential version")
	}
	return cred, nil
}

func (m *MySQLCredentialRepository) FindByUUID(
	ctx context.Context,
	id uuid.UUID,
) (*credentialDomain.Credential, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + credentialColumns + `
			  FROM credential_versions
			  WHERE id = ?`

	binaryID, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal credential id")
	}

	cred, err := scanMySQLCredential(querier.QueryRowContext(ctx, query, binaryID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, credentialDomain.ErrCredentialNotFound
		}
		return nil, apperrors.Wrap(err, "failed to find credential version")
	}
	return cred, nil
}

func (m *MySQLCredentialRepository) Delete(ctx context.Context, name string) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM credential_versions WHERE LOWER(name) = LOWER(?)`

	result, err := querier.ExecContext(ctx, query, name)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to delete credential")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to get rows affected")
	}
	return affected > 0, nil
}

func (m *MySQLCredentialRepository) FindNotEncryptedWith(
	ctx context.Context,
	keyID uuid.UUID,
	limit int,
) ([]*credentialDomain.Credential, error) {
	query := `SELECT ` + credentialColumns + `
			  FROM credential_versions
			  WHERE (secret_key_id IS NOT NULL AND secret_key_id <> ?)
			     OR (parameters_key_id IS NOT NULL AND parameters_key_id <> ?)
			  ORDER BY created_at ASC, id ASC
			  LIMIT ?`

	binaryKeyID, err := keyID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal key id")
	}

	return m.list(ctx, query, binaryKeyID, binaryKeyID, limit)
}

func (m *MySQLCredentialRepository) UpdateEncryption(
	ctx context.Context,
	cred *credentialDomain.Credential,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE credential_versions
			  SET secret_key_id = ?, secret_value = ?, secret_nonce = ?,
			      parameters_key_id = ?, parameters_value = ?, parameters_nonce = ?
			  WHERE id = ?`

	id, err := cred.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal credential id")
	}
	secretKeyID, secretValue, secretNonce := mysqlEnvelope(cred.SecretEncryption())
	parametersKeyID, parametersValue, parametersNonce := mysqlEnvelope(cred.ParametersEncryption())

	result, err := querier.ExecContext(
		ctx,
		query,
		secretKeyID,
		secretValue,
		secretNonce,
		parametersKeyID,
		parametersValue,
		parametersNonce,
		id,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update credential encryption")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if affected == 0 {
		return credentialDomain.ErrCredentialNotFound
	}
	return nil
}

func (m *MySQLCredentialRepository) list(
	ctx context.Context,
	query string,
	args ...any,
) ([]*credentialDomain.Credential, error) {
	querier := database.GetTx(ctx, m.db)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list credential versions")
	}
	defer func() {
		_ = rows.Close()
	}()

	creds := make([]*credentialDomain.Credential, 0)
	for rows.Next() {
		cred, err := scanMySQLCredential(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan credential version")
		}
		creds = append(creds, cred)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate credential versions")
	}

	return creds, nil
}

func scanMySQLCredential(row rowScanner) (*credentialDomain.Credential, error) {
	var (
		r               credentialRow
		id              []byte
		secretKeyID     []byte
		parametersKeyID []byte
	)

	err := row.Scan(
		&id,
		&r.name,
		&r.credentialType,
		&secretKeyID,
		&r.secretValue,
		&r.secretNonce,
		&parametersKeyID,
		&r.parametersValue,
		&r.parametersNonce,
		&r.caName,
		&r.ca,
		&r.certificate,
		&r.publicKey,
		&r.username,
		&r.salt,
		&r.createdAt,
	)
	if err != nil {
		return nil, err
	}

	credID, err := binaryUUID(id)
	if err != nil {
		return nil, err
	}
	secretID, err := binaryUUID(secretKeyID)
	if err != nil {
		return nil, err
	}
	parametersID, err := binaryUUID(parametersKeyID)
	if err != nil {
		return nil, err
	}

	return r.toDomain(credID, secretID, parametersID)
}

// binaryUUID decodes a BINARY(16) column; NULL decodes to uuid.Nil.
func binaryUUID(b []byte) (uuid.UUID, error) {
	if len(b) == 0 {
		return uuid.Nil, nil
	}
	var id uuid.UUID
	if err := id.UnmarshalBinary(b); err != nil {
		return uuid.Nil, apperrors.Wrap(err, "failed to unmarshal uuid")
	}
	return id, nil
}

func mysqlEnvelope(enc cryptoDomain.Encryption, ok bool) ([]byte, []byte, []byte) {
	if !ok {
		return nil, nil, nil
	}
	keyID, _ := enc.KeyID.MarshalBinary()
	return keyID, enc.EncryptedValue, enc.Nonce
}

// NewMySQLCredentialRepository creates a new MySQL credential repository.
func NewMySQLCredentialRepository(db *sql.DB) *MySQLCredentialRepository {
	return &MySQLCredentialRepository{db: db}
}
