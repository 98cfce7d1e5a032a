package repository

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
)

var recordColumns = []string{
	"id", "request_id", "operation", "credential_name", "actor", "success",
	"acl_operation", "acl_actor", "signature", "created_at",
}

func newAuditRecord() *auditDomain.EventAuditRecord {
	name := "/team/db"
	return &auditDomain.EventAuditRecord{
		ID:             uuid.Must(uuid.NewV7()),
		RequestID:      uuid.New(),
		Operation:      "credential_access",
		CredentialName: &name,
		Actor:          "uaa-user:alice",
		Success:        true,
		Signature:      []byte("signature"),
		CreatedAt:      time.Now().UTC(),
	}
}

func TestPostgreSQLAuditRecordRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	record := newAuditRecord()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_records")).
		WithArgs(
			record.ID.String(), record.RequestID.String(), "credential_access", "/team/db",
			"uaa-user:alice", true, nil, nil, []byte("signature"), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewPostgreSQLAuditRecordRepository(db).Create(context.Background(), record))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLAuditRecordRepository_List(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_NoFilters", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		record := newAuditRecord()
		mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2")).
			WithArgs(50, 0).
			WillReturnRows(sqlmock.NewRows(recordColumns).AddRow(
				record.ID.String(), record.RequestID.String(), record.Operation, "/team/db",
				record.Actor, true, nil, nil, record.Signature, record.CreatedAt,
			))

		records, err := NewPostgreSQLAuditRecordRepository(db).List(ctx, 0, 50, nil, nil)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, record, records[0])
	})

	t.Run("Success_TimeRange", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		to := from.Add(24 * time.Hour)
		mock.ExpectQuery(regexp.QuoteMeta("WHERE created_at >= $1 AND created_at <= $2 ORDER BY")).
			WithArgs(from, to, 10, 20).
			WillReturnRows(sqlmock.NewRows(recordColumns))

		records, err := NewPostgreSQLAuditRecordRepository(db).List(ctx, 20, 10, &from, &to)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("Error_Query", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery("FROM audit_records").WillReturnError(assert.AnError)

		_, err = NewPostgreSQLAuditRecordRepository(db).List(ctx, 0, 10, nil, nil)
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestMySQLAuditRecordRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_Create", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		record := newAuditRecord()
		id, _ := record.ID.MarshalBinary()
		requestID, _ := record.RequestID.MarshalBinary()
		args := []driver.Value{id, requestID}
		for range 8 {
			args = append(args, sqlmock.AnyArg())
		}
		mock.ExpectExec("INSERT INTO audit_records").WithArgs(args...).WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, NewMySQLAuditRecordRepository(db).Create(ctx, record))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success_List", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		record := newAuditRecord()
		record.CredentialName = nil
		id, _ := record.ID.MarshalBinary()
		requestID, _ := record.RequestID.MarshalBinary()
		from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		mock.ExpectQuery(regexp.QuoteMeta("WHERE created_at >= ? ORDER BY")).
			WithArgs(from, 10, 0).
			WillReturnRows(sqlmock.NewRows(recordColumns).AddRow(
				id, requestID, record.Operation, nil, record.Actor, true, nil, nil, record.Signature, record.CreatedAt,
			))

		records, err := NewMySQLAuditRecordRepository(db).List(ctx, 0, 10, &from, nil)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, record, records[0])
	})

	t.Run("Error_InvalidID", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery("FROM audit_records").WillReturnRows(sqlmock.NewRows(recordColumns).AddRow(
			[]byte("bad"), []byte("bad"), "op", nil, "actor", false, nil, nil, nil, time.Now(),
		))

		_, err = NewMySQLAuditRecordRepository(db).List(ctx, 0, 10, nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to unmarshal audit record id")
	})
}
