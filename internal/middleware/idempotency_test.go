package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damilare-ade/vendor-ledger/internal/auth"
	"github.com/damilare-ade/vendor-ledger/internal/repository"
)

type memIdempotencyRepo struct {
	mu      sync.Mutex
	entries map[string]*repository.IdempotencyCacheEntry
}

func newMemIdempotencyRepo() *memIdempotencyRepo {
	return &memIdempotencyRepo{entries: map[string]*repository.IdempotencyCacheEntry{}}
}

func (m *memIdempotencyRepo) Get(_ context.Context, key string, userID uuid.UUID) (*repository.IdempotencyCacheEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[key+"/"+userID.String()], nil
}

func (m *memIdempotencyRepo) Set(_ context.Context, entry *repository.IdempotencyCacheEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.Key+"/"+entry.UserID.String()] = entry
	return nil
}

func postWithKey(t *testing.T, h http.Handler, userID uuid.UUID, key, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/vendors/1/transactions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	req = req.WithContext(auth.ContextWithUserID(req.Context(), userID))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIdempotency_ReplaysCachedResponse(t *testing.T) {
	repo := newMemIdempotencyRepo()
	userID := uuid.New()

	var calls int
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":7}}`))
	})
	h := Idempotency(repo)(inner)

	body := `{"amount":400}`

	first := postWithKey(t, h, userID, "key-1", body)
	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Empty(t, first.Header().Get("X-Idempotent-Replayed"))
	assert.Equal(t, 1, calls)

	second := postWithKey(t, h, userID, "key-1", body)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get("X-Idempotent-Replayed"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, calls, "inner handler must run exactly once")
}

func TestIdempotency_ConflictOnDifferentBody(t *testing.T) {
	repo := newMemIdempotencyRepo()
	userID := uuid.New()

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	h := Idempotency(repo)(inner)

	first := postWithKey(t, h, userID, "key-1", `{"amount":400}`)
	require.Equal(t, http.StatusCreated, first.Code)

	second := postWithKey(t, h, userID, "key-1", `{"amount":900}`)
	assert.Equal(t, http.StatusConflict, second.Code)
	assert.Contains(t, second.Body.String(), "IDEMPOTENCY_CONFLICT")
}

func TestIdempotency_MissingKey(t *testing.T) {
	repo := newMemIdempotencyRepo()

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("inner handler must not run without a key")
	})
	h := Idempotency(repo)(inner)

	rec := postWithKey(t, h, uuid.New(), "", `{"amount":400}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "MISSING_IDEMPOTENCY_KEY")
}

func TestIdempotency_KeysAreScopedPerUser(t *testing.T) {
	repo := newMemIdempotencyRepo()

	var calls int
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	})
	h := Idempotency(repo)(inner)

	body := `{"amount":400}`
	first := postWithKey(t, h, uuid.New(), "key-1", body)
	second := postWithKey(t, h, uuid.New(), "key-1", body)

	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Empty(t, second.Header().Get("X-Idempotent-Replayed"))
	assert.Equal(t, 2, calls, "different users must not share cache entries")
}

func TestIdempotency_ServerErrorsAreNotCached(t *testing.T) {
	repo := newMemIdempotencyRepo()
	userID := uuid.New()

	var calls int
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
	})
	h := Idempotency(repo)(inner)

	body := `{"amount":400}`

	first := postWithKey(t, h, userID, "key-1", body)
	require.Equal(t, http.StatusInternalServerError, first.Code)

	// The retry re-attempts the payment instead of replaying the failure.
	second := postWithKey(t, h, userID, "key-1", body)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Empty(t, second.Header().Get("X-Idempotent-Replayed"))
	assert.Equal(t, 2, calls)
}
