package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	authDomain "github.com/allisson/credstore/internal/auth/domain"
	"github.com/allisson/credstore/internal/database"
	apperrors "github.com/allisson/credstore/internal/errors"
)

// MySQLPermissionRepository implements permission persistence for MySQL. Ids are
// stored as BINARY(16); the default collation makes path comparison case-insensitive.
type MySQLPermissionRepository struct {
	db *sql.DB
}

func (m *MySQLPermissionRepository) ListByActor(
	ctx context.Context,
	actor string,
) ([]*authDomain.PermissionEntry, error) {
	query := `SELECT id, actor, path, operations, created_at
			  FROM permissions
			  WHERE actor = ?
			  ORDER BY created_at ASC`

	return m.list(ctx, query, actor)
}

func (m *MySQLPermissionRepository) ListByPath(
	ctx context.Context,
	path string,
) ([]*authDomain.PermissionEntry, error) {
	query := `SELECT id, actor, path, operations, created_at
			  FROM permissions
			  WHERE LOWER(path) = LOWER(?)
			  ORDER BY created_at ASC`

	return m.list(ctx, query, path)
}

func (m *MySQLPermissionRepository) Save(ctx context.Context, entry *authDomain.PermissionEntry) error {
	querier := database.GetTx(ctx, m.db)

	id, err := entry.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal permission id")
	}
	operations, err := json.Marshal(entry.Operations)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal permission operations")
	}

	query := `INSERT INTO permissions (id, actor, path, operations, created_at)
			  VALUES (?, ?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE operations = VALUES(operations)`

	_, err = querier.ExecContext(ctx, query, id, entry.Actor, entry.Path, string(operations), entry.CreatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to save permission")
	}
	return nil
}

func (m *MySQLPermissionRepository) Delete(ctx context.Context, actor, path string) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM permissions WHERE actor = ? AND LOWER(path) = LOWER(?)`

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

func (m *MySQLPermissionRepository) list(
	ctx context.Context,
	query string,
	args ...any,
) ([]*authDomain.PermissionEntry, error) {
	querier := database.GetTx(ctx, m.db)

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
		var id, operations []byte
		if err := rows.Scan(&id, &entry.Actor, &entry.Path, &operations, &entry.CreatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan permission")
		}
		if err := entry.ID.UnmarshalBinary(id); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal permission id")
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

// NewMySQLPermissionRepository creates a new MySQL permission repository.
func NewMySQLPermissionRepository(db *sql.DB) *MySQLPermissionRepository {
	return &MySQLPermissionRepository{db: db}
}
