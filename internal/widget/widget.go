// Package widget implements the click-counter widget: a local mirror of a
// remote count with a button that asks the service to increment it.
//
// The widget has two states. Idle(n) shows n with the button enabled.
// Submitting(n) shows n with the button disabled while one increment is
// outstanding. The displayed count only ever comes from the service; the
// widget never adds one itself. All transitions happen under a single lock,
// standing in for the event loop the widget would otherwise run on.
package widget

import (
	"bytes"
	"context"
	"html/template"
	"log/slog"
	"sync"
)

// State is the widget's interaction state.
type State int

const (
	Idle State = iota
	Submitting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	default:
		return "unknown"
	}
}

// Logger receives failures the widget swallows. *slog.Logger satisfies it.
type Logger interface {
	Error(msg string, args ...any)
}

// Snapshot is the widget's observable state.
type Snapshot struct {
	Count    int64
	Disabled bool
	State    State
}

// Option configures a Widget.
type Option func(*Widget)

// WithOnChange registers a callback invoked after every state change. It
// runs outside the widget's lock.
func WithOnChange(fn func(Snapshot)) Option {
	return func(w *Widget) { w.onChange = fn }
}

// Widget mirrors a remote counter.
type Widget struct {
	src      Source
	log      Logger
	onChange func(Snapshot)

	mu        sync.Mutex
	count     int64
	disabled  bool
	mounted   bool
	unmounted bool
	// applied increases every time a server value is shown, so a slow
	// initial fetch cannot overwrite a newer increment result.
	applied uint64

	inflight sync.WaitGroup
}

// New creates an unmounted widget in Idle(0). A nil log uses slog.Default().
func New(src Source, log Logger, opts ...Option) *Widget {
	if log == nil {
		log = slog.Default()
	}
	w := &Widget{src: src, log: log}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Snapshot returns the current state.
func (w *Widget) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

func (w *Widget) snapshotLocked() Snapshot {
	s := Snapshot{Count: w.count, Disabled: w.disabled, State: Idle}
	if w.disabled {
		s.State = Submitting
	}
	return s
}

// Mount starts the initial fetch. It returns immediately; the count stays
// 0 until the fetch resolves, and stays 0 if it fails. Mounting twice, or
// after Unmount, does nothing.
func (w *Widget) Mount(ctx context.Context) {
	w.mu.Lock()
	if w.mounted || w.unmounted {
		w.mu.Unlock()
		return
	}
	w.mounted = true
	seen := w.applied
	w.inflight.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.inflight.Done()
		n, err := w.src.Fetch(ctx)

		w.mu.Lock()
		if w.unmounted {
			w.mu.Unlock()
			return
		}
		if err != nil {
			w.mu.Unlock()
			w.log.Error("counter: initial fetch failed", "error", err)
			return
		}
		if w.applied != seen {
			// An increment already delivered a newer value.
			w.mu.Unlock()
			return
		}
		w.count = n
		w.applied++
		snap := w.snapshotLocked()
		w.mu.Unlock()
		w.notify(snap)
	}()
}

// Click requests an increment. The button is disabled before Click
// returns, ahead of any network activity. It reports false and does
// nothing while a previous increment is outstanding or after Unmount.
func (w *Widget) Click(ctx context.Context) bool {
	w.mu.Lock()
	if w.disabled || w.unmounted {
		w.mu.Unlock()
		return false
	}
	w.disabled = true
	w.inflight.Add(1)
	snap := w.snapshotLocked()
	w.mu.Unlock()
	w.notify(snap)

	go func() {
		defer w.inflight.Done()
		n, err := w.src.Increment(ctx)

		w.mu.Lock()
		if w.unmounted {
			w.mu.Unlock()
			return
		}
		w.disabled = false
		if err == nil {
			w.count = n
			w.applied++
		}
		snap := w.snapshotLocked()
		w.mu.Unlock()

		if err != nil {
			w.log.Error("counter: increment failed", "error", err)
		}
		w.notify(snap)
	}()
	return true
}

// Unmount detaches the widget. Responses that arrive afterwards are
// discarded without touching state.
func (w *Widget) Unmount() {
	w.mu.Lock()
	w.unmounted = true
	w.mu.Unlock()
}

// Wait blocks until no fetch or increment is in flight.
func (w *Widget) Wait() {
	w.inflight.Wait()
}

func (w *Widget) notify(s Snapshot) {
	if w.onChange != nil {
		w.onChange(s)
	}
}

var panelTemplate = template.Must(template.New("counter").Parse(`<div class="counter" data-state="{{.State}}">
  <div class="panel panel-primary">
    <div class="panel-heading">Number of times the button has been clicked</div>
    <div class="panel-body text-center" id="count">{{.Count}}</div>
  </div>
  <button id="count-button" class="btn btn-danger btn-lg center-block"{{if .Disabled}} disabled{{end}}>Click Me!</button>
</div>
`))

// Render returns the widget's current view as HTML.
func (w *Widget) Render() template.HTML {
	return RenderSnapshot(w.Snapshot())
}

// RenderSnapshot renders s without a live widget, e.g. for a page whose
// count was read directly from the store.
func RenderSnapshot(s Snapshot) template.HTML {
	var buf bytes.Buffer
	if err := panelTemplate.Execute(&buf, s); err != nil {
		return template.HTML(template.HTMLEscapeString(err.Error()))
	}
	return template.HTML(buf.String())
}
