package core

import (
	"context"
	"errors"
)

// ErrMissingOwner is returned when an import is attempted without an
// authenticated owner.
var ErrMissingOwner = errors.New("import requires an authenticated owner")

// OwnerContext identifies the tenant an import runs for. It is always passed
// explicitly and never read from process-wide state.
type OwnerContext struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`

	// Token is the caller's bearer credential, forwarded to remote stores.
	Token string `json:"-"`
}

// Validate reports ErrMissingOwner for an unauthenticated owner.
func (o OwnerContext) Validate() error {
	if o.UserID <= 0 {
		return ErrMissingOwner
	}
	return nil
}

// RawRow maps a normalized header (lower-cased, trimmed) to a cell value.
type RawRow map[string]string

// ImportCandidate is one decoded data row after validation.
type ImportCandidate struct {
	// Row is the 1-based data row number, counted after blank lines are skipped.
	Row     int
	Name    string
	Phone   string
	Email   *string
	GroupID *int64
	Errors  []string
}

// Valid reports whether the candidate may be sent to the store.
func (c ImportCandidate) Valid() bool {
	return len(c.Errors) == 0
}

// Contact returns the store-facing projection of the candidate.
func (c ImportCandidate) Contact() NewContact {
	return NewContact{Name: c.Name, Phone: c.Phone, Email: c.Email, GroupID: c.GroupID}
}

// NewContact is a contact to be created by a ContactStore.
type NewContact struct {
	Name    string  `json:"name" db:"name"`
	Phone   string  `json:"phone" db:"phone"`
	Email   *string `json:"email" db:"email"`
	GroupID *int64  `json:"group_id" db:"group_id"`
}

// BulkCreateResult is what a store reports after a bulk create.
// A non-empty Failures means the store rejected part of the batch.
type BulkCreateResult struct {
	CreatedCount int
	Failures     []string
}

// ContactStore persists contacts on behalf of an owner. Implementations live
// in internal/store.
type ContactStore interface {
	BulkCreate(ctx context.Context, owner OwnerContext, contacts []NewContact) (BulkCreateResult, error)
}

// ImportState is the terminal state of an import attempt.
type ImportState string

const (
	StateSucceeded          ImportState = "succeeded"
	StateCollaboratorFailed ImportState = "collaborator_failed"
	StateRejected           ImportState = "rejected"
	StateValidated          ImportState = "validated"
)

// ImportOutcome is the user-facing result of an import.
type ImportOutcome struct {
	Success       bool        `json:"success"`
	ImportedCount int         `json:"imported"`
	Errors        []string    `json:"errors"`
	State         ImportState `json:"state"`
}

func succeeded(count int) ImportOutcome {
	return ImportOutcome{Success: true, ImportedCount: count, Errors: []string{}, State: StateSucceeded}
}

func rejected(errs []string) ImportOutcome {
	if errs == nil {
		errs = []string{}
	}
	return ImportOutcome{Errors: errs, State: StateRejected}
}

func collaboratorFailed() ImportOutcome {
	return ImportOutcome{Errors: []string{MsgImportFailed}, State: StateCollaboratorFailed}
}
