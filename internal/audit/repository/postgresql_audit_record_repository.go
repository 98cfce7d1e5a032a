// Package repository implements append-only audit record persistence for PostgreSQL
// and MySQL.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
	"github.com/allisson/credstore/internal/database"
	apperrors "github.com/allisson/credstore/internal/errors"
)

// PostgreSQLAuditRecordRepository implements audit record persistence for PostgreSQL.
type PostgreSQLAuditRecordRepository struct {
	db *sql.DB
}

// Create inserts record. Records are never updated afterwards.
func (p *PostgreSQLAuditRecordRepository) Create(ctx context.Context, record *auditDomain.EventAuditRecord) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO audit_records (id, request_id, operation, credential_name, actor, success,
			  acl_operation, acl_actor, signature, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := querier.ExecContext(
		ctx,
		query,
		record.ID,
		record.RequestID,
		record.Operation,
		record.CredentialName,
		record.Actor,
		record.Success,
		record.AclOperation,
		record.AclActor,
		record.Signature,
		record.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit record")
	}
	return nil
}

// List returns audit records newest first. createdAtFrom and createdAtTo are optional
// inclusive bounds.
func (p *PostgreSQLAuditRecordRepository) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.EventAuditRecord, error) {
	querier := database.GetTx(ctx, p.db)

	var conditions []string
	var args []any

	if createdAtFrom != nil {
		args = append(args, *createdAtFrom)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if createdAtTo != nil {
		args = append(args, *createdAtTo)
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	query := `SELECT id, request_id, operation, credential_name, actor, success,
			  acl_operation, acl_actor, signature, created_at
			  FROM audit_records`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit records")
	}
	defer func() {
		_ = rows.Close()
	}()

	records := make([]*auditDomain.EventAuditRecord, 0)
	for rows.Next() {
		var record auditDomain.EventAuditRecord
		err := rows.Scan(
			&record.ID,
			&record.RequestID,
			&record.Operation,
			&record.CredentialName,
			&record.Actor,
			&record.Success,
			&record.AclOperation,
			&record.AclActor,
			&record.Signature,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit record")
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit records")
	}

	return records, nil
}

// NewPostgreSQLAuditRecordRepository creates a new PostgreSQL audit record repository.
func NewPostgreSQLAuditRecordRepository(db *sql.DB) *PostgreSQLAuditRecordRepository {
	return &PostgreSQLAuditRecordRepository{db: db}
}
