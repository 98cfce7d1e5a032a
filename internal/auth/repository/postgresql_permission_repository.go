// Package repository persists permission entries. Operations are stored as a JSON
// array and (actor, path) is unique.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	authDomain "github.com/allisson/credstore/internal/auth/domain"
	"github.com/allisson/credstore/internal/database"
	apperrors "github.com/allisson/credstore/internal/errors"
)

// PostgreSQLPermissionRepository implements permission persistence for PostgreSQL.
type PostgreSQLPermissionRepository struct {
	db *sql.DB
}

// ListByActor returns the entries granted to actor, oldest first.
func (p *PostgreSQLPermissionRepository) ListByActor(
	ctx context.Context,
	actor string,
) ([]*authDomain.PermissionEntry, error) {
	query := `SELECT id, actor, path, operations, created_at
			  FROM permissions
			  WHERE actor = $1
			  ORDER BY created_at ASC`

	return p.list(ctx, query, actor)
}

// ListByPath returns the entries whose pattern is path, oldest first.
func (p *PostgreSQLPermissionRepository) ListByPath(
	ctx context.Context,
	path string,
) ([]*authDomain.PermissionEntry, error) {
	query := `SELECT id, actor, path, operations, created_at
			  FROM permissions
			  WHERE lower(path) = lower($1)
			  ORDER BY created_at ASC`

	return p.list(ctx, query, path)
}

// Save upserts entry, replacing the operations of an existing (actor, path) row.
func (p *PostgreSQLPermissionRepository) Save(ctx context.Context, entry *authDomain.PermissionEntry) error {
	querier := database.GetTx(ctx, p.db)

	operations, err := json.Marshal(entry.Operations)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal permission operations")
	}

	query := `INSERT INTO permissions (id, actor, path, operations, created_at)
			  VALUES ($1, $2, $3, $4, $5)
			  ON CONFLICT (actor, path) DO UPDATE SET operations = EXCLUDED.operations`

	_, err = querier.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.Actor,
		entry.Path,
		string(operations),
		entry.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to save permission")
	}
	return nil
}

// Delete removes the (actor, path) entry.
func (p *PostgreSQLPermissionRepository) Delete(ctx context.Context, actor, path string) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM permissions WHERE actor = $1 AND lower(path) = lower($2)`

	result, err := querier.ExecContext(ctx, query, actor, path)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to delete permission")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to get rows affected")
	}
	return rows > 0, nil
}

func (p *PostgreSQLPermissionRepository) list(
	ctx context.Context,
	query string,
	args ...any,
) ([]*authDomain.PermissionEntry, error) {
	querier := database.GetTx(ctx, p.db)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list permissions")
	}
	defer func() {
		_ = rows.Close()
	}()

	entries := make([]*authDomain.PermissionEntry, 0)
	for rows.Next() {
		var entry authDomain.PermissionEntry
		var operations []byte
		if err := rows.Scan(&entry.ID, &entry.Actor, &entry.Path, &operations, &entry.CreatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan permission")
		}
		if err := json.Unmarshal(operations, &entry.Operations); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal permission operations")
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate permissions")
	}

	return entries, nil
}

// NewPostgreSQLPermissionRepository creates a new PostgreSQL permission repository.
func NewPostgreSQLPermissionRepository(db *sql.DB) *PostgreSQLPermissionRepository {
	return &PostgreSQLPermissionRepository{db: db}
}
