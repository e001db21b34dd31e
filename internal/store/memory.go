package store

import (
	"context"
	"sync"

	"github.com/JonMunkholm/smsdesk/internal/core"
)

// MemoryStore keeps contacts in process, keyed by owner.
type MemoryStore struct {
	mu       sync.Mutex
	nextID   int64
	contacts map[int64][]Contact
	batches  int
	failWith error
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{contacts: make(map[int64][]Contact)}
}

// BulkCreate stores every contact for owner.
func (m *MemoryStore) BulkCreate(ctx context.Context, owner core.OwnerContext, contacts []core.NewContact) (core.BulkCreateResult, error) {
	if err := ctx.Err(); err != nil {
		return core.BulkCreateResult{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.batches++
	if m.failWith != nil {
		return core.BulkCreateResult{}, m.failWith
	}

	for _, c := range contacts {
		m.nextID++
		m.contacts[owner.UserID] = append(m.contacts[owner.UserID], Contact{
			ID:       m.nextID,
			UserID:   owner.UserID,
			Name:     c.Name,
			Phone:    c.Phone,
			Email:    c.Email,
			GroupID:  c.GroupID,
			IsActive: true,
		})
	}
	return core.BulkCreateResult{CreatedCount: len(contacts)}, nil
}

// ListContacts returns a copy of owner's contacts in insertion order.
func (m *MemoryStore) ListContacts(_ context.Context, ownerID int64) ([]Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Contact(nil), m.contacts[ownerID]...), nil
}

// Batches returns how many BulkCreate calls were made.
func (m *MemoryStore) Batches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.batches
}

// FailWith makes subsequent BulkCreate calls return err. Pass nil to recover.
func (m *MemoryStore) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}
