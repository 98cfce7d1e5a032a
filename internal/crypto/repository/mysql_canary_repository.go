package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/credstore/internal/crypto/domain"
	"github.com/allisson/credstore/internal/database"
	apperrors "github.com/allisson/credstore/internal/errors"
)

// MySQLCanaryRepository implements KeyCanary persistence for MySQL. UUIDs are stored
// as BINARY(16).
type MySQLCanaryRepository struct {
	db *sql.DB
}

func (m *MySQLCanaryRepository) Get(ctx context.Context, keyID uuid.UUID) (*cryptoDomain.KeyCanary, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT key_id, encrypted_value, nonce, salt, created_at
			  FROM encryption_key_canaries
			  WHERE key_id = ?`

	id, err := keyID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal key id")
	}

	canary, err := scanMySQLCanary(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cryptoDomain.ErrCanaryNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get encryption key canary")
	}

	return canary, nil
}

func (m *MySQLCanaryRepository) Create(ctx context.Context, canary *cryptoDomain.KeyCanary) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO encryption_key_canaries (key_id, encrypted_value, nonce, salt, created_at)
			  VALUES (?, ?, ?, ?, ?)`

	id, err := canary.KeyID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal key id")
	}

	_, err = querier.ExecContext(ctx, query, id, canary.EncryptedValue, canary.Nonce, canary.Salt, canary.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "encryption key canary already exists")
		}
		return apperrors.Wrap(err, "failed to create encryption key canary")
	}

	return nil
}

func (m *MySQLCanaryRepository) List(ctx context.Context) ([]*cryptoDomain.KeyCanary, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT key_id, encrypted_value, nonce, salt, created_at
			  FROM encryption_key_canaries
			  ORDER BY created_at ASC`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list encryption key canaries")
	}
	defer func() {
		_ = rows.Close()
	}()

	canaries := make([]*cryptoDomain.KeyCanary, 0)
	for rows.Next() {
		canary, err := scanMySQLCanary(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan encryption key canary")
		}
		canaries = append(canaries, canary)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate encryption key canaries")
	}

	return canaries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMySQLCanary(row rowScanner) (*cryptoDomain.KeyCanary, error) {
	var canary cryptoDomain.KeyCanary
	var id []byte

	if err := row.Scan(&id, &canary.EncryptedValue, &canary.Nonce, &canary.Salt, &canary.CreatedAt); err != nil {
		return nil, err
	}
	if err := canary.KeyID.UnmarshalBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal key id")
	}

	return &canary, nil
}

// NewMySQLCanaryRepository creates a new MySQL canary repository.
func NewMySQLCanaryRepository(db *sql.DB) *MySQLCanaryRepository {
	return &MySQLCanaryRepository{db: db}
}
