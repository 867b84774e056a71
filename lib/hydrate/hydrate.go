// Package hydrate upgrades server-rendered island markers in a document
// into mounted components.
//
// A Hydrator scans the document once, then handles every marker in its own
// goroutine: resolve the id, decode props, load the definition and mount.
// A failure of one island is logged and reported but never stops its
// siblings.
package hydrate

import (
	"context"
	"errors"
	"fmt"
	"sync"

	cerrors "cloudeng.io/errors"
	"cloudeng.io/logging/ctxlog"
	"github.com/pthm/islands"
	"github.com/pthm/islands/lib/dom"
	"github.com/pthm/islands/lib/marker"
)

// ErrMismatch is reported when server markup differs from what the client
// renders for the same props.
var ErrMismatch = errors.New("hydrate: server markup mismatch")

// State is the lifecycle state of one island.
//
//	Discovered -> Resolved -> Mounted
//	Discovered -> Skipped            unknown or missing id
//	Resolved   -> Failed             load or mount error
type State int

const (
	StateDiscovered State = iota
	StateResolved
	StateMounted
	StateSkipped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDiscovered:
		return "discovered"
	case StateResolved:
		return "resolved"
	case StateMounted:
		return "mounted"
	case StateSkipped:
		return "skipped"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// EventType distinguishes state transitions from warnings.
type EventType int

const (
	// EventState is sent on every state transition.
	EventState EventType = iota
	// EventPropsDecode is sent when data-props was malformed and empty
	// props were used instead.
	EventPropsDecode
	// EventMismatch is sent when hydration had to patch server markup.
	EventMismatch
)

// Event is delivered to the handler set with WithEventHandler. Handlers are
// called one at a time.
type Event struct {
	Type  EventType
	Index int // position of the marker in document order
	ID    string
	State State
	Err   error
}

// MountMode selects how a component takes over its container.
type MountMode int

const (
	// MountHydrate reconciles against existing server-rendered children.
	MountHydrate MountMode = iota
	// MountFresh renders into an emptied container.
	MountFresh
)

// Mounted describes a successful mount.
type Mounted struct {
	// Patched is set when hydration replaced server markup that did not
	// match the client render.
	Patched bool
}

// Mounter is the UI capability that attaches a Definition to a container.
type Mounter interface {
	Mount(ctx context.Context, el *dom.Element, def islands.Definition, props islands.Props, mode MountMode) (Mounted, error)
}

// Result is the final outcome for one island.
type Result struct {
	Index   int
	ID      string
	State   State
	Props   islands.Props
	Patched bool
	Err     error
}

// Report lists the outcome of every marker found by one Hydrate call, in
// document order.
type Report struct {
	Results []Result
}

// Count returns how many islands ended in state s.
func (r *Report) Count(s State) int {
	n := 0
	for _, res := range r.Results {
		if res.State == s {
			n++
		}
	}
	return n
}

// Err returns the failures of the report combined, or nil. Skipped islands
// are not failures.
func (r *Report) Err() error {
	var errs cerrors.M
	for _, res := range r.Results {
		if res.State == StateFailed {
			errs.Append(res.Err)
		}
	}
	return errs.Err()
}

// Option configures a Hydrator.
type Option func(*Hydrator)

// WithEventHandler sets a function called for every lifecycle event.
func WithEventHandler(fn func(Event)) Option {
	return func(h *Hydrator) { h.onEvent = fn }
}

// WithDevMode makes markup mismatches fail the island instead of being
// patched silently.
func WithDevMode(dev bool) Option {
	return func(h *Hydrator) { h.dev = dev }
}

// Hydrator mounts islands found in a document.
type Hydrator struct {
	reg     *islands.Registry
	mounter Mounter
	dev     bool

	evMu    sync.Mutex
	onEvent func(Event)
}

// New creates a Hydrator resolving ids through reg.
func New(reg *islands.Registry, mounter Mounter, opts ...Option) *Hydrator {
	h := &Hydrator{reg: reg, mounter: mounter}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Hydrate scans doc for markers and hydrates each of them concurrently. It
// returns once every island has reached a final state. Markers added to the
// document after the scan are not picked up.
func (h *Hydrator) Hydrate(ctx context.Context, doc *dom.Document) *Report {
	markers := doc.Markers()
	results := make([]Result, len(markers))
	var wg sync.WaitGroup
	for i, el := range markers {
		wg.Go(func() {
			results[i] = h.hydrateIsland(ctx, i, el)
		})
	}
	wg.Wait()
	return &Report{Results: results}
}

// emit delivers ev to the event handler. A panicking handler is logged and
// does not affect the island.
func (h *Hydrator) emit(ctx context.Context, ev Event) {
	if h.onEvent == nil {
		return
	}
	h.evMu.Lock()
	defer h.evMu.Unlock()
	defer func() {
		if p := recover(); p != nil {
			ctxlog.Logger(ctx).Error("island event handler panicked", "index", ev.Index, "component", ev.ID, "event", ev.Type, "panic", p)
		}
	}()
	h.onEvent(ev)
}

func (h *Hydrator) hydrateIsland(ctx context.Context, index int, el *dom.Element) Result {
	res := Result{Index: index, State: StateDiscovered}
	h.emit(ctx, Event{Type: EventState, Index: index, State: StateDiscovered})
	logger := ctxlog.Logger(ctx)

	d, err := marker.Decode(el.Attr)
	if err != nil {
		logger.Warn("skipping island", "index", index, "error", err)
		return h.finish(ctx, res, StateSkipped, err)
	}
	res.ID = d.ID
	logger = logger.With("component", d.ID)

	entry, ok := h.reg.Resolve(d.ID)
	if !ok {
		err := fmt.Errorf("%w: %q", islands.ErrUnknownComponent, d.ID)
		logger.Warn("skipping island", "index", index, "error", err)
		return h.finish(ctx, res, StateSkipped, err)
	}
	res.State = StateResolved
	h.emit(ctx, Event{Type: EventState, Index: index, ID: d.ID, State: StateResolved})

	if d.PropsErr != nil {
		logger.Warn("island props malformed, using empty props", "error", d.PropsErr)
		h.emit(ctx, Event{Type: EventPropsDecode, Index: index, ID: d.ID, State: StateResolved,
			Err: fmt.Errorf("%w: %v", islands.ErrPropsDecode, d.PropsErr)})
	}
	res.Props = islands.Props(d.Props)

	mode := MountHydrate
	if d.ClientOnly {
		mode = MountFresh
	}
	mounted, err := h.mount(ctx, entry, el, res.Props, mode)
	if err != nil {
		logger.Error("island failed to mount", "error", err)
		return h.finish(ctx, res, StateFailed, &islands.MountError{ID: d.ID, Err: err})
	}
	if mounted.Patched {
		res.Patched = true
		logger.Warn("island markup mismatch", "dev", h.dev)
		h.emit(ctx, Event{Type: EventMismatch, Index: index, ID: d.ID, State: StateResolved, Err: ErrMismatch})
		if h.dev {
			return h.finish(ctx, res, StateFailed, &islands.MountError{ID: d.ID, Err: ErrMismatch})
		}
	}
	return h.finish(ctx, res, StateMounted, nil)
}

// mount loads the definition and mounts it, turning a panic into an error.
func (h *Hydrator) mount(ctx context.Context, entry islands.Entry, el *dom.Element, props islands.Props, mode MountMode) (m Mounted, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	def, err := entry.Load(ctx)
	if err != nil {
		return Mounted{}, err
	}
	if def == nil {
		return Mounted{}, fmt.Errorf("loader returned no definition")
	}
	if mode == MountFresh {
		el.Reset()
	}
	return h.mounter.Mount(ctx, el, def, props, mode)
}

func (h *Hydrator) finish(ctx context.Context, res Result, s State, err error) Result {
	res.State = s
	res.Err = err
	h.emit(ctx, Event{Type: EventState, Index: res.Index, ID: res.ID, State: s, Err: err})
	return res
}
