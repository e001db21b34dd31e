package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/smsdesk/internal/config"
	"github.com/JonMunkholm/smsdesk/internal/core"
)

func restConfig(url string) config.StoreConfig {
	return config.StoreConfig{
		Driver:         "rest",
		BackendURL:     url,
		BackendTimeout: 2 * time.Second,
		Breaker: config.BreakerConfig{
			MaxRequests:         1,
			Interval:            time.Minute,
			Timeout:             time.Minute,
			ConsecutiveFailures: 2,
		},
	}
}

func sampleContacts() []core.NewContact {
	email := "ann@example.com"
	group := int64(3)
	return []core.NewContact{
		{Name: "Ann", Phone: "+111", Email: &email, GroupID: &group},
		{Name: "Bob", Phone: "+222"},
	}
}

func TestRESTStore_BulkCreate(t *testing.T) {
	var (
		gotBody   map[string][]map[string]any
		gotHeader http.Header
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/contacts/import", r.URL.Path)
		gotHeader = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"imported":2,"errors":[]}`))
	}))
	defer srv.Close()

	s := NewRESTStore(restConfig(srv.URL + "/"))
	owner := core.OwnerContext{UserID: 9, Token: "tok-123"}

	result, err := s.BulkCreate(context.Background(), owner, sampleContacts())
	require.NoError(t, err)
	assert.Equal(t, 2, result.CreatedCount)
	assert.Empty(t, result.Failures)

	assert.Equal(t, "Bearer tok-123", gotHeader.Get("Authorization"))
	assert.Equal(t, "9", gotHeader.Get("X-Owner-ID"))
	assert.NotEmpty(t, gotHeader.Get("Idempotency-Key"))

	require.Len(t, gotBody["contacts"], 2)
	assert.Equal(t, "ann@example.com", gotBody["contacts"][0]["email"])
	assert.EqualValues(t, 3, gotBody["contacts"][0]["group_id"])
	assert.Nil(t, gotBody["contacts"][1]["email"])
	assert.Nil(t, gotBody["contacts"][1]["group_id"])
}

func TestRESTStore_NoTokenNoAuthorization(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	result, err := NewRESTStore(restConfig(srv.URL)).BulkCreate(context.Background(), core.OwnerContext{UserID: 1}, sampleContacts())
	require.NoError(t, err)
	assert.Equal(t, 2, result.CreatedCount, "empty 2xx body acknowledges the batch")
}

func TestRESTStore_PartialFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"imported":1,"errors":["duplicate phone +222"]}`))
	}))
	defer srv.Close()

	result, err := NewRESTStore(restConfig(srv.URL)).BulkCreate(context.Background(), core.OwnerContext{UserID: 1}, sampleContacts())
	require.NoError(t, err)
	assert.Equal(t, []string{"duplicate phone +222"}, result.Failures)
}

func TestRESTStore_ServerErrorTripsBreaker(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewRESTStore(restConfig(srv.URL))
	owner := core.OwnerContext{UserID: 1}

	for i := 0; i < 2; i++ {
		_, err := s.BulkCreate(context.Background(), owner, sampleContacts())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "500")
	}

	_, err := s.BulkCreate(context.Background(), owner, sampleContacts())
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrStoreUnavailable), "got %v", err)
	assert.Equal(t, int32(2), hits.Load(), "open breaker must not reach the backend")
	assert.Equal(t, "open", s.State())
}

func TestRESTStore_ClientErrorDoesNotTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"invalid token"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := NewRESTStore(restConfig(srv.URL))
	for i := 0; i < 4; i++ {
		_, err := s.BulkCreate(context.Background(), core.OwnerContext{UserID: 1}, sampleContacts())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "401")
	}
	assert.Equal(t, "closed", s.State())
}

func TestRESTStore_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	_, err := NewRESTStore(restConfig(srv.URL)).BulkCreate(context.Background(), core.OwnerContext{UserID: 1}, sampleContacts())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}
