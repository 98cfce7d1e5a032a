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

// PostgreSQLCredentialRepository implements credential version persistence for PostgreSQL.
// Names are matched case-insensitively.
type PostgreSQLCredentialRepository struct {
	db *sql.DB
}

// Save inserts cred as a new version.
func (p *PostgreSQLCredentialRepository) Save(ctx context.Context, cred *credentialDomain.Credential) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO credential_versions (` + credentialColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	secretKeyID, secretValue, secretNonce := pgEnvelope(cred.SecretEncryption())
	parametersKeyID, parametersValue, parametersNonce := pgEnvelope(cred.ParametersEncryption())

	_, err := querier.ExecContext(
		ctx,
		query,
		cred.ID,
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

// FindAllByName returns every version of name, newest first.
func (p *PostgreSQLCredentialRepository) FindAllByName(
	ctx context.Context,
	name string,
) ([]*credentialDomain.Credential, error) {
	query := `SELECT ` + credentialColumns + `
			  FROM credential_versions
			  WHERE lower(name) = lower($1)
			  ORDER BY created_at DESC, id DESC`

	return p.list(ctx, query, name)
}

// FindNByName returns at most n versions of name, newest first.
func (p *PostgreSQLCredentialRepository) FindNByName(
	ctx context.Context,
	name string,
	n int,
) ([]*credentialDomain.Credential, error) {
	query := `SELECT ` + credentialColumns + `
			  FROM credential_versions
			  WHERE lower(name) = lower($1)
			  ORDER BY created_at DESC, id DESC
			  LIMIT $2`

	return p.list(ctx, query, name, n)
}

// FindMostRecent returns the newest version of name.
func (p *PostgreSQLCredentialRepository) FindMostRecent(
	ctx context.Context,
	name string,
) (*credentialDomain.Credential, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + credentialColumns + `
			  FROM credential_versions
			  WHERE lower(name) = lower($1)
			  ORDER BY created_at DESC, id DESC
			  LIMIT 1`

	cred, err := scanPostgreSQLCredential(querier.QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, credentialDomain.ErrCredentialNotFound
		}
		return nil, apperrors.Wrap(err, "failed to find most recent credential version")
	}
	return cred, nil
}

// FindByUUID returns the version with id.
func (p *PostgreSQLCredentialRepository) FindByUUID(
	ctx context.Context,
	id uuid.UUID,
) (*credentialDomain.Credential, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + credentialColumns + `
			  FROM credential_versions
			  WHERE id = $1`

	cred, err := scanPostgreSQLCredential(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, credentialDomain.ErrCredentialNotFound
		}
		return nil, apperrors.Wrap(err, "failed to find credential version")
	}
	return cred, nil
}

// Delete removes every version of name and reports whether any existed.
func (p *PostgreSQLCredentialRepository) Delete(ctx context.Context, name string) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM credential_versions WHERE lower(name) = lower($1)`

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

// FindNotEncryptedWith returns up to limit versions holding an envelope under any key
// other than keyID, oldest first.
func (p *PostgreSQLCredentialRepository) FindNotEncryptedWith(
	ctx context.Context,
	keyID uuid.UUID,
	limit int,
) ([]*credentialDomain.Credential, error) {
	query := `SELECT ` + credentialColumns + `
			  FROM credential_versions
			  WHERE (secret_key_id IS NOT NULL AND secret_key_id <> $1)
			     OR (parameters_key_id IS NOT NULL AND parameters_key_id <> $1)
			  ORDER BY created_at ASC, id ASC
			  LIMIT $2`

	return p.list(ctx, query, keyID, limit)
}

// UpdateEncryption rewrites the envelope columns of an existing version.
func (p *PostgreSQLCredentialRepository) UpdateEncryption(
	ctx context.Context,
	cred *credentialDomain.Credential,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE credential_versions
			  SET secret_key_id = $1, secret_value = $2, secret_nonce = $3,
			      parameters_key_id = $4, parameters_value = $5, parameters_nonce = $6
			  WHERE id = $7`

	secretKeyID, secretValue, secretNonce := pgEnvelope(cred.SecretEncryption())
	parametersKeyID, parametersValue, parametersNonce := pgEnvelope(cred.ParametersEncryption())

	result, err := querier.ExecContext(
		ctx,
		query,
		secretKeyID,
		secretValue,
		secretNonce,
		parametersKeyID,
		parametersValue,
		parametersNonce,
		cred.ID,
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

func (p *PostgreSQLCredentialRepository) list(
	ctx context.Context,
	query string,
	args ...any,
) ([]*credentialDomain.Credential, error) {
	querier := database.GetTx(ctx, p.db)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list credential versions")
	}
	defer func() {
		_ = rows.Close()
	}()

	creds := make([]*credentialDomain.Credential, 0)
	for rows.Next() {
		cred, err := scanPostgreSQLCredential(rows)
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

func scanPostgreSQLCredential(row rowScanner) (*credentialDomain.Credential, error) {
	var (
		r               credentialRow
		id              uuid.UUID
		secretKeyID     uuid.NullUUID
		parametersKeyID uuid.NullUUID
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

	return r.toDomain(id, secretKeyID.UUID, parametersKeyID.UUID)
}

func pgEnvelope(enc cryptoDomain.Encryption, ok bool) (uuid.NullUUID, []byte, []byte) {
	if !ok {
		return uuid.NullUUID{}, nil, nil
	}
	return uuid.NullUUID{UUID: enc.KeyID, Valid: true}, enc.EncryptedValue, enc.Nonce
}

// NewPostgreSQLCredentialRepository creates a new PostgreSQL credential repository.
func NewPostgreSQLCredentialRepository(db *sql.DB) *PostgreSQLCredentialRepository {
	return &PostgreSQLCredentialRepository{db: db}
}
