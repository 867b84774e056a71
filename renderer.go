package islands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"cloudeng.io/logging/ctxlog"
	"cloudeng.io/sync/errgroup"
	"github.com/a-h/templ"
	"github.com/pthm/islands/lib/manifest"
	"github.com/pthm/islands/lib/marker"
)

// Request asks for one island in a render batch.
type Request struct {
	ID    string
	Props Props
	Mode  RenderMode
}

// Outcome is the result of rendering one island: either Rendered or
// ClientOnlyMarker.
type Outcome interface {
	outcome()
}

// Rendered is the Outcome of a server-rendered island.
type Rendered struct {
	Inner   string   // component markup placed inside the marker
	Modules []string // modules touched, the island's own module first
}

// ClientOnlyMarker is the Outcome of an island deferred to the client.
type ClientOnlyMarker struct{}

func (Rendered) outcome()         {}
func (ClientOnlyMarker) outcome() {}

// Island is one rendered island of a Batch.
type Island struct {
	ID      string
	Props   Props
	Mode    RenderMode // effective mode, never ModeDefault
	HTML    string     // complete marker element
	Outcome Outcome
}

// Modules returns the modules the island touched. Client-only islands
// touch none.
func (i Island) Modules() []string {
	if r, ok := i.Outcome.(Rendered); ok {
		return r.Modules
	}
	return nil
}

// Batch is the successful result of Renderer.Render.
type Batch struct {
	// Islands holds one entry per request, in request order.
	Islands []Island

	// PreloadTags holds the tags for every module used by the batch.
	PreloadTags string
}

// Get returns the first island rendered for id.
func (b *Batch) Get(id string) (Island, bool) {
	if b == nil {
		return Island{}, false
	}
	for _, isl := range b.Islands {
		if isl.ID == id {
			return isl, true
		}
	}
	return Island{}, false
}

// HTML returns the marker element of the first island rendered for id, or
// "" if there is none.
func (b *Batch) HTML(id string) string {
	isl, _ := b.Get(id)
	return isl.HTML
}

// Modules returns the union of the modules touched by the batch, in request
// order, each once.
func (b *Batch) Modules() []string {
	if b == nil {
		return nil
	}
	lists := make([][]string, 0, len(b.Islands))
	for _, isl := range b.Islands {
		lists = append(lists, isl.Modules())
	}
	return unionModules(lists...)
}

// Slot returns a templ component that writes the island for id verbatim, for
// placing batch output inside templ pages.
func (b *Batch) Slot(id string) templ.Component {
	isl, ok := b.Get(id)
	if !ok {
		return errorComponent(unknownComponent(id))
	}
	return Raw(isl.HTML)
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithDevMode makes islands without an explicit mode render client-only.
func WithDevMode(dev bool) Option {
	return func(r *Renderer) { r.dev = dev }
}

// WithManifest sets the build manifest used for preload tags.
func WithManifest(m *manifest.Manifest) Option {
	return func(r *Renderer) { r.manifest = m }
}

// WithEncoder sets the encoder used for fragment URLs.
func WithEncoder(enc *Encoder) Option {
	return func(r *Renderer) { r.encoder = enc }
}

// WithKey creates the fragment URL encoder from key. It panics if the
// encoder cannot be created.
func WithKey(key []byte) Option {
	return func(r *Renderer) {
		enc, err := NewEncoder(key)
		if err != nil {
			panic(fmt.Sprintf("islands: failed to create encoder: %v", err))
		}
		r.encoder = enc
	}
}

// Renderer renders batches of islands to marker HTML. It is safe for
// concurrent use once constructed.
type Renderer struct {
	reg      *Registry
	manifest *manifest.Manifest
	encoder  *Encoder
	dev      bool

	// OnError is called by the fragment handler when a request fails.
	// Customize this to handle errors appropriately for your application.
	OnError func(http.ResponseWriter, *http.Request, error)
}

// NewRenderer creates a Renderer over reg.
func NewRenderer(reg *Registry, opts ...Option) *Renderer {
	r := &Renderer{reg: reg}
	for _, opt := range opts {
		opt(r)
	}
	r.OnError = defaultOnError
	return r
}

// Registry returns the renderer's registry.
func (r *Renderer) Registry() *Registry {
	return r.reg
}

// Manifest returns the renderer's build manifest, possibly nil.
func (r *Renderer) Manifest() *manifest.Manifest {
	return r.manifest
}

// DevMode reports whether the renderer defaults islands to client-only.
func (r *Renderer) DevMode() bool {
	return r.dev
}

// EffectiveMode resolves ModeDefault against the renderer's policy.
func (r *Renderer) EffectiveMode(m RenderMode) RenderMode {
	if m != ModeDefault {
		return m
	}
	if r.dev {
		return ModeClientOnly
	}
	return ModeSSR
}

// Render renders every request and computes the preload tags for the
// modules they used. Every id is resolved before anything renders. If any
// island fails the whole batch fails and no partial output is returned.
func (r *Renderer) Render(ctx context.Context, reqs []Request) (*Batch, error) {
	entries := make([]Entry, len(reqs))
	for i, req := range reqs {
		e, ok := r.reg.Resolve(req.ID)
		if !ok {
			return nil, unknownComponent(req.ID)
		}
		entries[i] = e
	}

	islands := make([]Island, len(reqs))
	var (
		mu    sync.Mutex
		first error
	)
	g, gctx := errgroup.WithContext(ctx)
	for i := range reqs {
		g.Go(func() error {
			isl, err := r.renderIsland(gctx, entries[i], reqs[i])
			if err != nil {
				mu.Lock()
				if first == nil {
					first = err
				}
				mu.Unlock()
				return err
			}
			islands[i] = isl
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if first == nil {
			first = err
		}
		ctxlog.Logger(ctx).Error("island batch failed", "islands", len(reqs), "error", first)
		return nil, first
	}

	b := &Batch{Islands: islands}
	b.PreloadTags = r.manifest.PreloadTags(b.Modules())
	return b, nil
}

// RenderOne renders a single island. It is Render with a one element batch.
func (r *Renderer) RenderOne(ctx context.Context, id string, props Props, mode RenderMode) (*Batch, error) {
	return r.Render(ctx, []Request{{ID: id, Props: props, Mode: mode}})
}

func (r *Renderer) renderIsland(ctx context.Context, e Entry, req Request) (Island, error) {
	props, err := NewProps(map[string]any(req.Props))
	if err != nil {
		return Island{}, &RenderError{ID: e.ID, Err: err}
	}
	raw, err := props.JSON()
	if err != nil {
		return Island{}, &RenderError{ID: e.ID, Err: err}
	}
	isl := Island{ID: e.ID, Props: props, Mode: r.EffectiveMode(req.Mode)}

	if isl.Mode == ModeClientOnly {
		isl.HTML = marker.Encode(marker.Marker{ID: e.ID, Props: raw, ClientOnly: true})
		isl.Outcome = ClientOnlyMarker{}
		return isl, nil
	}

	def, err := e.Load(ctx)
	if err == nil && def == nil {
		err = fmt.Errorf("loader returned no definition")
	}
	if err != nil {
		return Island{}, &RenderError{ID: e.ID, Err: err}
	}

	rc := NewRenderContext()
	rc.AddModule(e.Module)
	var buf bytes.Buffer
	if err := renderDefinition(WithRenderContext(ctx, rc), def, props, &buf); err != nil {
		return Island{}, &RenderError{ID: e.ID, Err: err}
	}
	isl.HTML = marker.Encode(marker.Marker{ID: e.ID, Props: raw, Inner: buf.String()})
	isl.Outcome = Rendered{Inner: buf.String(), Modules: rc.Modules()}
	return isl, nil
}

// renderDefinition renders def into w, turning a panic in component code
// into an error.
func renderDefinition(ctx context.Context, def Definition, props Props, w io.Writer) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	c := def.Render(ctx, props)
	if c == nil {
		return nil
	}
	return c.Render(ctx, w)
}
