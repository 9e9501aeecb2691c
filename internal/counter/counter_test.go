package counter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"github.com/barelyfunctional/site/internal/db"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewSQLiteStore(database)
}

func TestSQLiteGetAndIncrement(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	n, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if n != 0 {
		t.Errorf("initial count = %d, want 0", n)
	}

	for want := int64(1); want <= 3; want++ {
		got, err := store.Increment(ctx)
		if err != nil {
			t.Fatalf("Increment: %v", err)
		}
		if got != want {
			t.Errorf("Increment() = %d, want %d", got, want)
		}
	}

	n, _ = store.Get(ctx)
	if n != 3 {
		t.Errorf("count after increments = %d, want 3", n)
	}
}

func TestSQLiteIncrementRecreatesMissingRow(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if _, err := store.db.Exec("DELETE FROM counts"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err := store.Increment(ctx)
	if err != nil {
		t.Fatalf("Increment: %v", err)
	}
	if got != 1 {
		t.Errorf("Increment() on empty table = %d, want 1", got)
	}
}

func TestSQLiteConcurrentIncrements(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Increment(ctx); err != nil {
				t.Errorf("Increment: %v", err)
			}
		}()
	}
	wg.Wait()

	n, _ := store.Get(ctx)
	if n != 20 {
		t.Errorf("count after 20 concurrent increments = %d, want 20", n)
	}
}

func newRouter(store Store, limiter *RateLimiter) chi.Router {
	r := chi.NewRouter()
	RegisterRoutes(r, store, limiter, discard)
	return r
}

func decodeCount(t *testing.T, w *httptest.ResponseRecorder) int64 {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal %q: %v", w.Body.String(), err)
	}
	return resp.Count
}

func TestRoutesGetAndPut(t *testing.T) {
	r := newRouter(setupTestStore(t), nil)

	req := httptest.NewRequest(http.MethodGet, "/count", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /count: expected 200, got %d", w.Code)
	}
	if got := decodeCount(t, w); got != 0 {
		t.Errorf("GET /count = %d, want 0", got)
	}

	for i, path := range []string{"/count/", "/count"} {
		req = httptest.NewRequest(http.MethodPut, path, nil)
		w = httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("PUT %s: expected 200, got %d", path, w.Code)
		}
		if got := decodeCount(t, w); got != int64(i+1) {
			t.Errorf("PUT %s = %d, want %d", path, got, i+1)
		}
		if ct := w.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
	}
}

func TestRoutesMethodNotAllowed(t *testing.T) {
	r := newRouter(setupTestStore(t), nil)
	req := httptest.NewRequest(http.MethodPost, "/count", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /count: expected 405, got %d", w.Code)
	}
}

type failingStore struct{}

func (failingStore) Get(context.Context) (int64, error)       { return 0, errors.New("db down") }
func (failingStore) Increment(context.Context) (int64, error) { return 0, errors.New("db down") }

func TestRoutesStoreError(t *testing.T) {
	r := newRouter(failingStore{}, nil)
	for _, method := range []string{http.MethodGet, http.MethodPut} {
		req := httptest.NewRequest(method, "/count", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusInternalServerError {
			t.Errorf("%s: expected 500, got %d", method, w.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if body["error"] == "" {
			t.Errorf("%s: expected error message in body", method)
		}
	}
}

func TestRateLimitedIncrement(t *testing.T) {
	limiter := NewRateLimiter(rate.Every(time.Hour), 2)
	r := newRouter(setupTestStore(t), limiter)

	put := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, "/count/", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 2; i++ {
		if w := put("10.0.0.1:1234"); w.Code != http.StatusOK {
			t.Fatalf("request %d within burst: expected 200, got %d", i, w.Code)
		}
	}

	w := put("10.0.0.1:5678")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}

	// Other clients are unaffected.
	if w := put("10.0.0.2:1234"); w.Code != http.StatusOK {
		t.Errorf("different IP: expected 200, got %d", w.Code)
	}

	// Reads are never limited.
	req := httptest.NewRequest(http.MethodGet, "/count", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	gw := httptest.NewRecorder()
	r.ServeHTTP(gw, req)
	if gw.Code != http.StatusOK {
		t.Errorf("GET should not be rate limited, got %d", gw.Code)
	}
}

func TestRateLimiterSweepsStaleEntries(t *testing.T) {
	limiter := NewRateLimiter(rate.Limit(1), 1)
	now := time.Now()
	limiter.now = func() time.Time { return now }

	limiter.getLimiter("10.0.0.1")
	now = now.Add(10 * time.Minute)
	limiter.getLimiter("10.0.0.2")

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	if _, ok := limiter.limiters["10.0.0.1"]; ok {
		t.Error("stale limiter should have been swept")
	}
	if _, ok := limiter.limiters["10.0.0.2"]; !ok {
		t.Error("fresh limiter should be kept")
	}
}
