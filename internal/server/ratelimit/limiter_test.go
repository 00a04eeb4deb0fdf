package ratelimit

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/authgate/internal/logging"
)

// fakeCounterStore is an in-memory CounterStore with manual window expiry.
type fakeCounterStore struct {
	mu      sync.Mutex
	counts  map[string]int64
	ttls    map[string]time.Duration
	incrErr error
	expErr  error
}

func newFakeCounterStore() *fakeCounterStore {
	return &fakeCounterStore{
		counts: make(map[string]int64),
		ttls:   make(map[string]time.Duration),
	}
}

func (f *fakeCounterStore) Incr(ctx context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.incrErr != nil {
		return 0, f.incrErr
	}
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeCounterStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.expErr != nil {
		return f.expErr
	}
	f.ttls[key] = ttl
	return nil
}

func (f *fakeCounterStore) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts = make(map[string]int64)
}

func newTestRouter(store CounterStore, limit int, window time.Duration) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	l := NewLimiter(store, logger, limit, window)

	r := gin.New()
	r.GET("/ping", l.Middleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

func doRequest(r *gin.Engine, ip string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if ip != "" {
		req.Header.Set("X-Forwarded-For", ip)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestLimiter_AllowsUpToLimit(t *testing.T) {
	store := newFakeCounterStore()
	r := newTestRouter(store, 3, time.Minute)

	for i := 0; i < 3; i++ {
		w := doRequest(r, "1.2.3.4")
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: got %d want 200", i+1, w.Code)
		}
	}

	w := doRequest(r, "1.2.3.4")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("request over limit: got %d want 429", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "60" {
		t.Fatalf("Retry-After: got %q want %q", got, "60")
	}
}

func TestLimiter_QuotaHeaders(t *testing.T) {
	store := newFakeCounterStore()
	r := newTestRouter(store, 5, time.Minute)

	w := doRequest(r, "1.2.3.4")
	if got := w.Header().Get("X-RateLimit-Limit"); got != "5" {
		t.Fatalf("X-RateLimit-Limit: got %q want %q", got, "5")
	}
	if got := w.Header().Get("X-RateLimit-Remaining"); got != "4" {
		t.Fatalf("X-RateLimit-Remaining: got %q want %q", got, "4")
	}
}

func TestLimiter_SeparateIdentities(t *testing.T) {
	store := newFakeCounterStore()
	r := newTestRouter(store, 1, time.Minute)

	if w := doRequest(r, "1.1.1.1"); w.Code != http.StatusOK {
		t.Fatalf("first identity blocked: %d", w.Code)
	}
	if w := doRequest(r, "2.2.2.2"); w.Code != http.StatusOK {
		t.Fatalf("second identity should have its own quota: %d", w.Code)
	}
	if w := doRequest(r, "1.1.1.1"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("first identity over quota: got %d want 429", w.Code)
	}
}

func TestLimiter_WindowExpirySetOnFirstIncrement(t *testing.T) {
	store := newFakeCounterStore()
	r := newTestRouter(store, 5, 30*time.Second)

	doRequest(r, "1.2.3.4")
	doRequest(r, "1.2.3.4")

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.ttls) != 1 {
		t.Fatalf("expected exactly one TTL entry, got %d", len(store.ttls))
	}
	for _, ttl := range store.ttls {
		if ttl != 30*time.Second {
			t.Fatalf("ttl: got %v want %v", ttl, 30*time.Second)
		}
	}
}

func TestLimiter_ResetAfterWindow(t *testing.T) {
	store := newFakeCounterStore()
	r := newTestRouter(store, 1, time.Minute)

	doRequest(r, "1.2.3.4")
	if w := doRequest(r, "1.2.3.4"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 before reset, got %d", w.Code)
	}

	// Simulate the counter store expiring the window.
	store.reset()

	if w := doRequest(r, "1.2.3.4"); w.Code != http.StatusOK {
		t.Fatalf("expected full new quota after window, got %d", w.Code)
	}
}

func TestLimiter_FailOpenOnIncrError(t *testing.T) {
	store := newFakeCounterStore()
	store.incrErr = errors.New("connection refused")
	r := newTestRouter(store, 1, time.Minute)

	for i := 0; i < 5; i++ {
		if w := doRequest(r, "1.2.3.4"); w.Code != http.StatusOK {
			t.Fatalf("fail-open violated on request %d: got %d", i+1, w.Code)
		}
	}
}

func TestLimiter_FailOpenOnExpireError(t *testing.T) {
	store := newFakeCounterStore()
	store.expErr = errors.New("connection refused")
	r := newTestRouter(store, 1, time.Minute)

	if w := doRequest(r, "1.2.3.4"); w.Code != http.StatusOK {
		t.Fatalf("fail-open violated: got %d", w.Code)
	}
}

func TestLimiter_UnknownIdentityFallback(t *testing.T) {
	store := newFakeCounterStore()
	r := newTestRouter(store, 1, time.Minute)

	doRequest(r, "")
	if w := doRequest(r, ""); w.Code != http.StatusTooManyRequests {
		t.Fatalf("anonymous requests should share the unknown bucket: got %d", w.Code)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if _, ok := store.counts["rate-limit:/ping:unknown"]; !ok {
		t.Fatalf("expected unknown-identity key, got %v", store.counts)
	}
}
