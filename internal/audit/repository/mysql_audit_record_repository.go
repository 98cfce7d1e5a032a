package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
	"github.com/allisson/credstore/internal/database"
	apperrors "github.com/allisson/credstore/internal/errors"
)

// MySQLAuditRecordRepository implements audit record persistence for MySQL using
// BINARY(16) for UUIDs.
type MySQLAuditRecordRepository struct {
	db *sql.DB
}

func (m *MySQLAuditRecordRepository) Create(ctx context.Context, record *auditDomain.EventAuditRecord) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO audit_records (id, request_id, operation, credential_name, actor, success,
			  acl_operation, acl_actor, signature, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	id, err := record.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit record id")
	}
	requestID, err := record.RequestID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit record request_id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		requestID,
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

func (m *MySQLAuditRecordRepository) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.EventAuditRecord, error) {
	querier := database.GetTx(ctx, m.db)

	var conditions []string
	var args []any

	if createdAtFrom != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, *createdAtFrom)
	}
	if createdAtTo != nil {
		conditions = append(conditions, "created_at <= ?")
		args = append(args, *createdAtTo)
	}

	query := `SELECT id, request_id, operation, credential_name, actor, success,
			  acl_operation, acl_actor, signature, created_at
			  FROM audit_records`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
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
		var idBinary, requestIDBinary []byte

		err := rows.Scan(
			&idBinary,
			&requestIDBinary,
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

		if err := record.ID.UnmarshalBinary(idBinary); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit record id")
		}
		if err := record.RequestID.UnmarshalBinary(requestIDBinary); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit record request_id")
		}

		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit records")
	}

	return records, nil
}

// NewMySQLAuditRecordRepository creates a new MySQL audit record repository.
func NewMySQLAuditRecordRepository(db *sql.DB) *MySQLAuditRecordRepository {
	return &MySQLAuditRecordRepository{db: db}
}
