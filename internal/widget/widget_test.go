package widget

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	timeout = 2 * time.Second
	tick    = 5 * time.Millisecond
)

type recordingLogger struct {
	mu   sync.Mutex
	msgs []string
}

func (l *recordingLogger) Error(msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, msg)
}

func (l *recordingLogger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.msgs)
}

// fakeSource blocks each call until the test releases it.
type fakeSource struct {
	fetch     chan result
	increment chan result
}

type result struct {
	n   int64
	err error
}

func newFakeSource() *fakeSource {
	return &fakeSource{fetch: make(chan result, 1), increment: make(chan result, 1)}
}

func (f *fakeSource) Fetch(ctx context.Context) (int64, error) {
	r := <-f.fetch
	return r.n, r.err
}

func (f *fakeSource) Increment(ctx context.Context) (int64, error) {
	r := <-f.increment
	return r.n, r.err
}

func TestNewWidgetStartsIdleAtZero(t *testing.T) {
	w := New(newFakeSource(), &recordingLogger{})
	assert.Equal(t, Snapshot{Count: 0, Disabled: false, State: Idle}, w.Snapshot())
}

func TestMountShowsServerCount(t *testing.T) {
	src := newFakeSource()
	w := New(src, &recordingLogger{})

	w.Mount(context.Background())
	assert.Equal(t, int64(0), w.Snapshot().Count, "count stays 0 until the fetch resolves")

	src.fetch <- result{n: 5}
	w.Wait()
	assert.Equal(t, Snapshot{Count: 5, State: Idle}, w.Snapshot())
}

func TestMountFailureKeepsZeroAndLogs(t *testing.T) {
	src := newFakeSource()
	log := &recordingLogger{}
	w := New(src, log)

	w.Mount(context.Background())
	src.fetch <- result{err: errors.New("connection refused")}
	w.Wait()

	assert.Equal(t, Snapshot{Count: 0, State: Idle}, w.Snapshot())
	assert.Equal(t, 1, log.count())
}

func TestClickDisablesBeforeResponse(t *testing.T) {
	src := newFakeSource()
	w := New(src, &recordingLogger{})

	require.True(t, w.Click(context.Background()))
	snap := w.Snapshot()
	assert.True(t, snap.Disabled)
	assert.Equal(t, Submitting, snap.State)
	assert.Equal(t, int64(0), snap.Count)

	src.increment <- result{n: 6}
	w.Wait()
	assert.Equal(t, Snapshot{Count: 6, State: Idle}, w.Snapshot())
}

func TestClickUsesServerValueNotLocalIncrement(t *testing.T) {
	src := newFakeSource()
	w := New(src, &recordingLogger{})
	w.Mount(context.Background())
	src.fetch <- result{n: 5}
	w.Wait()

	w.Click(context.Background())
	src.increment <- result{n: 42}
	w.Wait()
	assert.Equal(t, int64(42), w.Snapshot().Count)
}

func TestClickWhileSubmittingIsIgnored(t *testing.T) {
	src := newFakeSource()
	w := New(src, &recordingLogger{})

	require.True(t, w.Click(context.Background()))
	assert.False(t, w.Click(context.Background()))
	assert.False(t, w.Click(context.Background()))

	src.increment <- result{n: 1}
	w.Wait()
	assert.Equal(t, Snapshot{Count: 1, State: Idle}, w.Snapshot())

	// The button is usable again.
	require.True(t, w.Click(context.Background()))
	src.increment <- result{n: 2}
	w.Wait()
	assert.Equal(t, int64(2), w.Snapshot().Count)
}

func TestIncrementFailureKeepsCountAndReenables(t *testing.T) {
	src := newFakeSource()
	log := &recordingLogger{}
	w := New(src, log)
	w.Mount(context.Background())
	src.fetch <- result{n: 5}
	w.Wait()

	w.Click(context.Background())
	src.increment <- result{err: errors.New("500")}
	w.Wait()

	assert.Equal(t, Snapshot{Count: 5, State: Idle}, w.Snapshot())
	assert.Equal(t, 1, log.count())
}

func TestNilLoggerFallsBackToDefault(t *testing.T) {
	src := newFakeSource()
	w := New(src, nil)
	w.Mount(context.Background())
	src.fetch <- result{err: errors.New("connection refused")}
	w.Wait()

	w.Click(context.Background())
	src.increment <- result{err: errors.New("500")}
	w.Wait()

	assert.Equal(t, Snapshot{Count: 0, State: Idle}, w.Snapshot())
}

func TestLateFetchDoesNotOverwriteIncrement(t *testing.T) {
	src := newFakeSource()
	w := New(src, &recordingLogger{})

	w.Mount(context.Background())
	w.Click(context.Background())
	src.increment <- result{n: 8}

	require.Eventually(t, func() bool { return w.Snapshot().Count == 8 }, timeout, tick)

	src.fetch <- result{n: 7}
	w.Wait()
	assert.Equal(t, int64(8), w.Snapshot().Count)
}

func TestUnmountDropsLateResponses(t *testing.T) {
	src := newFakeSource()
	log := &recordingLogger{}
	var changes int
	var mu sync.Mutex
	w := New(src, log, WithOnChange(func(Snapshot) {
		mu.Lock()
		changes++
		mu.Unlock()
	}))

	w.Mount(context.Background())
	w.Click(context.Background())
	w.Unmount()

	src.fetch <- result{err: errors.New("late failure")}
	src.increment <- result{n: 99}
	w.Wait()

	snap := w.Snapshot()
	assert.Equal(t, int64(0), snap.Count)
	assert.Equal(t, 0, log.count(), "late failures after unmount are not reported")
	mu.Lock()
	assert.Equal(t, 1, changes, "only the synchronous disable was observed")
	mu.Unlock()

	assert.False(t, w.Click(context.Background()))
}

func TestOnChangeSeesEveryTransition(t *testing.T) {
	src := newFakeSource()
	var mu sync.Mutex
	var seen []Snapshot
	w := New(src, &recordingLogger{}, WithOnChange(func(s Snapshot) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	}))

	w.Click(context.Background())
	src.increment <- result{n: 3}
	w.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Snapshot{
		{Count: 0, Disabled: true, State: Submitting},
		{Count: 3, State: Idle},
	}, seen)
}

func TestRender(t *testing.T) {
	html := string(RenderSnapshot(Snapshot{Count: 12, Disabled: true, State: Submitting}))
	assert.Contains(t, html, `id="count">12</div>`)
	assert.Contains(t, html, "Click Me!")
	assert.Contains(t, html, " disabled>")
	assert.Contains(t, html, `data-state="submitting"`)

	html = string(New(newFakeSource(), &recordingLogger{}).Render())
	assert.NotContains(t, html, " disabled>")
	assert.Contains(t, html, `id="count">0</div>`)
}

func TestWidgetAgainstHTTPService(t *testing.T) {
	var mu sync.Mutex
	count := int64(5)
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/count":
		case r.Method == http.MethodPut && r.URL.Path == "/count/":
			mu.Unlock()
			<-release
			mu.Lock()
			count++
		default:
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"count":%d}`, count)
	}))
	defer srv.Close()

	w := New(NewClient(srv.URL, srv.Client()), &recordingLogger{})
	w.Mount(context.Background())
	w.Wait()
	assert.Equal(t, Snapshot{Count: 5, State: Idle}, w.Snapshot())

	require.True(t, w.Click(context.Background()))
	assert.True(t, w.Snapshot().Disabled)
	close(release)
	w.Wait()
	assert.Equal(t, Snapshot{Count: 6, State: Idle}, w.Snapshot())
}

func TestClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
		is      error
	}{
		{name: "server error", status: 500, body: `{"error":"db down"}`, wantErr: "db down", is: ErrUnexpectedStatus},
		{name: "not json", status: 200, body: `<html>`, wantErr: "decoding"},
		{name: "missing field", status: 200, body: `{"clicks":3}`, wantErr: "missing count"},
		{name: "negative", status: 200, body: `{"count":-1}`, wantErr: "negative count"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL+"/", nil).Fetch(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestClientTrimsTrailingSlash(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		fmt.Fprint(w, `{"count":1}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", srv.Client())
	_, err := c.Fetch(context.Background())
	require.NoError(t, err)
	_, err = c.Increment(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "GET /count|PUT /count/", strings.Join(paths, "|"))
}
