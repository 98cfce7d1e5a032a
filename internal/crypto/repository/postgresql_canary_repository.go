// Package repository persists encryption key canaries.
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

// PostgreSQLCanaryRepository implements KeyCanary persistence for PostgreSQL.
type PostgreSQLCanaryRepository struct {
	db *sql.DB
}

// Get returns ErrCanaryNotFound when no row exists for keyID.
func (p *PostgreSQLCanaryRepository) Get(ctx context.Context, keyID uuid.UUID) (*cryptoDomain.KeyCanary, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT key_id, encrypted_value, nonce, salt, created_at
			  FROM encryption_key_canaries
			  WHERE key_id = $1`

	var canary cryptoDomain.KeyCanary
	err := querier.QueryRowContext(ctx, query, keyID).Scan(
		&canary.KeyID,
		&canary.EncryptedValue,
		&canary.Nonce,
		&canary.Salt,
		&canary.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cryptoDomain.ErrCanaryNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get encryption key canary")
	}

	return &canary, nil
}

// Create inserts canary. A second canary for the same key yields ErrConflict.
func (p *PostgreSQLCanaryRepository) Create(ctx context.Context, canary *cryptoDomain.KeyCanary) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO encryption_key_canaries (key_id, encrypted_value, nonce, salt, created_at)
			  VALUES ($1, $2, $3, $4, $5)`

	_, err := querier.ExecContext(
		ctx,
		query,
		canary.KeyID,
		canary.EncryptedValue,
		canary.Nonce,
		canary.Salt,
		canary.CreatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "encryption key canary already exists")
		}
		return apperrors.Wrap(err, "failed to create encryption key canary")
	}

	return nil
}

// List returns all canaries, oldest first.
func (p *PostgreSQLCanaryRepository) List(ctx context.Context) ([]*cryptoDomain.KeyCanary, error) {
	querier := database.GetTx(ctx, p.db)

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
		var canary cryptoDomain.KeyCanary
		if err := rows.Scan(
			&canary.KeyID,
			&canary.EncryptedValue,
			&canary.Nonce,
			&canary.Salt,
			&canary.CreatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan encryption key canary")
		}
		canaries = append(canaries, &canary)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate encryption key canaries")
	}

	return canaries, nil
}

// NewPostgreSQLCanaryRepository creates a new PostgreSQL canary repository.
func NewPostgreSQLCanaryRepository(db *sql.DB) *PostgreSQLCanaryRepository {
	return &PostgreSQLCanaryRepository{db: db}
}
