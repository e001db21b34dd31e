package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/smsdesk/internal/core"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS contacts (
    id         BIGSERIAL PRIMARY KEY,
    user_id    BIGINT NOT NULL,
    name       TEXT NOT NULL CHECK (name <> ''),
    phone      TEXT NOT NULL CHECK (phone <> ''),
    email      TEXT,
    group_id   BIGINT,
    is_active  BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_contacts_user_phone ON contacts (user_id, phone);
`

var contactColumns = []string{"user_id", "name", "phone", "email", "group_id", "is_active"}

// PostgresStore writes contacts to PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an open pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the contacts table if needed.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("migrate contacts: %w", err)
	}
	return nil
}

// BulkCreate copies the batch in a single transaction.
func (s *PostgresStore) BulkCreate(ctx context.Context, owner core.OwnerContext, contacts []core.NewContact) (core.BulkCreateResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return core.BulkCreateResult{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"contacts"}, contactColumns, pgx.CopyFromRows(copyRows(owner, contacts)))
	if err != nil {
		return core.BulkCreateResult{}, fmt.Errorf("copy contacts: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return core.BulkCreateResult{}, fmt.Errorf("commit contacts: %w", err)
	}
	return core.BulkCreateResult{CreatedCount: int(n)}, nil
}

// ListContacts returns owner's contacts ordered by id.
func (s *PostgresStore) ListContacts(ctx context.Context, ownerID int64) ([]Contact, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, name, phone, email, group_id, is_active
		   FROM contacts WHERE user_id = $1 ORDER BY id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Contact])
}

func copyRows(owner core.OwnerContext, contacts []core.NewContact) [][]any {
	rows := make([][]any, len(contacts))
	for i, c := range contacts {
		rows[i] = []any{
			owner.UserID,
			c.Name,
			c.Phone,
			toPgText(c.Email),
			toPgInt8(c.GroupID),
			true,
		}
	}
	return rows
}

// toPgText maps a nil pointer to SQL NULL.
func toPgText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func toPgInt8(i *int64) pgtype.Int8 {
	if i == nil {
		return pgtype.Int8{}
	}
	return pgtype.Int8{Int64: *i, Valid: true}
}
