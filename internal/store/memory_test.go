package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/smsdesk/internal/config"
	"github.com/JonMunkholm/smsdesk/internal/core"
)

func TestMemoryStore(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	_, err := m.BulkCreate(ctx, core.OwnerContext{UserID: 1}, sampleContacts())
	require.NoError(t, err)

	got, err := m.ListContacts(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(2), got[1].ID)

	boom := errors.New("boom")
	m.FailWith(boom)
	_, err = m.BulkCreate(ctx, core.OwnerContext{UserID: 1}, sampleContacts())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, m.Batches())

	got, _ = m.ListContacts(ctx, 1)
	assert.Len(t, got, 2, "failed batch must not add contacts")
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryStore().BulkCreate(ctx, core.OwnerContext{UserID: 1}, sampleContacts())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, closeFn, err := Open(ctx, config.StoreConfig{Driver: "memory"})
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &MemoryStore{}, s)

	s, closeSQLite, err := Open(ctx, config.StoreConfig{Driver: "sqlite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	defer closeSQLite()
	assert.IsType(t, &SQLiteStore{}, s)

	s, _, err = Open(ctx, restConfig("http://127.0.0.1:1"))
	require.NoError(t, err)
	assert.IsType(t, &RESTStore{}, s)

	_, closeFn, err = Open(ctx, config.StoreConfig{Driver: "cassandra"})
	assert.Error(t, err)
	assert.NotNil(t, closeFn)
}
