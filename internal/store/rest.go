package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"github.com/JonMunkholm/smsdesk/internal/config"
	"github.com/JonMunkholm/smsdesk/internal/core"
)

const importPath = "/contacts/import"

// RESTStore creates contacts through the backend's bulk import endpoint.
type RESTStore struct {
	baseURL string
	client  *http.Client
	cb      *gobreaker.CircuitBreaker
}

type bulkImportRequest struct {
	Contacts []core.NewContact `json:"contacts"`
}

type bulkImportResponse struct {
	Success  *bool    `json:"success"`
	Imported int      `json:"imported"`
	Errors   []string `json:"errors"`
}

// statusError is a non-2xx reply from the backend.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("contacts backend returned %d: %s", e.code, e.body)
}

// NewRESTStore creates a RESTStore for cfg.BackendURL.
func NewRESTStore(cfg config.StoreConfig) *RESTStore {
	return NewRESTStoreWithClient(cfg, &http.Client{Timeout: cfg.BackendTimeout})
}

// NewRESTStoreWithClient is NewRESTStore with a caller-supplied client.
func NewRESTStoreWithClient(cfg config.StoreConfig, client *http.Client) *RESTStore {
	failures := uint32(max(cfg.Breaker.ConsecutiveFailures, 1))

	settings := gobreaker.Settings{
		Name:        "contacts-backend",
		MaxRequests: uint32(max(cfg.Breaker.MaxRequests, 1)),
		Interval:    cfg.Breaker.Interval,
		Timeout:     cfg.Breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// Client errors are the request's fault, not the backend's.
		IsSuccessful: func(err error) bool {
			var se *statusError
			if errors.As(err, &se) {
				return se.code < http.StatusInternalServerError
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}

	return &RESTStore{
		baseURL: strings.TrimRight(cfg.BackendURL, "/"),
		client:  client,
		cb:      gobreaker.NewCircuitBreaker(settings),
	}
}

// BulkCreate posts all contacts in one request. The caller's bearer token is
// forwarded so the backend attributes the contacts to the same user.
func (s *RESTStore) BulkCreate(ctx context.Context, owner core.OwnerContext, contacts []core.NewContact) (core.BulkCreateResult, error) {
	body, err := json.Marshal(bulkImportRequest{Contacts: contacts})
	if err != nil {
		return core.BulkCreateResult{}, fmt.Errorf("encode contacts: %w", err)
	}
	key := uuid.NewString()

	out, err := s.cb.Execute(func() (interface{}, error) {
		return s.post(ctx, owner, key, body, len(contacts))
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return core.BulkCreateResult{}, fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
		}
		return core.BulkCreateResult{}, err
	}

	resp := out.(*bulkImportResponse)
	result := core.BulkCreateResult{CreatedCount: resp.Imported}
	if resp.Success != nil && !*resp.Success {
		result.Failures = resp.Errors
		if len(result.Failures) == 0 {
			result.Failures = []string{"backend reported failure without details"}
		}
	}
	return result, nil
}

func (s *RESTStore) post(ctx context.Context, owner core.OwnerContext, key string, body []byte, count int) (*bulkImportResponse, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+importPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Idempotency-Key", key)
	req.Header.Set("X-Owner-ID", strconv.FormatInt(owner.UserID, 10))
	if owner.Token != "" {
		req.Header.Set("Authorization", "Bearer "+owner.Token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post contacts: %w", err)
	}
	defer resp.Body.Close()

	slog.Debug("contacts backend replied",
		"status", resp.StatusCode,
		"idempotency_key", key,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(snippet))}
	}

	var out bulkImportResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if errors.Is(err, io.EOF) {
			// An empty 2xx body acknowledges the whole batch.
			return &bulkImportResponse{Imported: count}, nil
		}
		return nil, fmt.Errorf("decode contacts backend response: %w", err)
	}
	return &out, nil
}

// State reports the circuit breaker state, for health checks.
func (s *RESTStore) State() string {
	return s.cb.State().String()
}
