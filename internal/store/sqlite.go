package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/JonMunkholm/smsdesk/internal/core"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS contacts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL,
    name TEXT NOT NULL CHECK (length(name) > 0),
    phone TEXT NOT NULL CHECK (length(phone) > 0),
    email TEXT,
    group_id INTEGER,
    is_active INTEGER NOT NULL DEFAULT 1,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_contacts_user_phone ON contacts(user_id, phone);
`

const insertContactSQL = `
INSERT INTO contacts (user_id, name, phone, email, group_id)
VALUES (:user_id, :name, :phone, :email, :group_id)`

// contactParams binds a NewContact plus its owner to named parameters.
type contactParams struct {
	UserID int64 `db:"user_id"`
	core.NewContact
}

// SQLiteStore writes contacts to a SQLite database file.
type SQLiteStore struct {
	db *sqlx.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies
// the schema. Use ":memory:" for a throwaway database.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite3", path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer; an in-memory database also lives on a single connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate contacts: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// BulkCreate inserts the batch in one transaction.
func (s *SQLiteStore) BulkCreate(ctx context.Context, owner core.OwnerContext, contacts []core.NewContact) (core.BulkCreateResult, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return core.BulkCreateResult{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareNamedContext(ctx, insertContactSQL)
	if err != nil {
		return core.BulkCreateResult{}, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range contacts {
		if _, err := stmt.ExecContext(ctx, contactParams{UserID: owner.UserID, NewContact: c}); err != nil {
			return core.BulkCreateResult{}, fmt.Errorf("insert contact %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return core.BulkCreateResult{}, fmt.Errorf("commit contacts: %w", err)
	}
	return core.BulkCreateResult{CreatedCount: len(contacts)}, nil
}

// ListContacts returns owner's contacts ordered by id.
func (s *SQLiteStore) ListContacts(ctx context.Context, ownerID int64) ([]Contact, error) {
	var contacts []Contact
	err := s.db.SelectContext(ctx, &contacts,
		`SELECT id, user_id, name, phone, email, group_id, is_active
		   FROM contacts WHERE user_id = ? ORDER BY id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("select contacts: %w", err)
	}
	return contacts, nil
}
