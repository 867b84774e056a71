package islands

import (
	"context"
	"sync"
)

// RenderContext accumulates the code modules touched while rendering one
// island. The renderer records the island's own module first; components
// record nested modules with UseModule. Modules keep first-insertion order.
type RenderContext struct {
	mu      sync.Mutex
	modules []string
	seen    map[string]struct{}
}

// NewRenderContext returns an empty RenderContext.
func NewRenderContext() *RenderContext {
	return &RenderContext{seen: make(map[string]struct{})}
}

// AddModule records a module id. Empty and repeated ids are ignored.
func (rc *RenderContext) AddModule(id string) {
	if id == "" {
		return
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if _, ok := rc.seen[id]; ok {
		return
	}
	rc.seen[id] = struct{}{}
	rc.modules = append(rc.modules, id)
}

// Modules returns a copy of the recorded module ids.
func (rc *RenderContext) Modules() []string {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	out := make([]string, len(rc.modules))
	copy(out, rc.modules)
	return out
}

type renderContextKey struct{}

// WithRenderContext returns a context carrying rc.
func WithRenderContext(ctx context.Context, rc *RenderContext) context.Context {
	return context.WithValue(ctx, renderContextKey{}, rc)
}

// RenderContextFrom returns the RenderContext carried by ctx, or nil.
func RenderContextFrom(ctx context.Context) *RenderContext {
	rc, _ := ctx.Value(renderContextKey{}).(*RenderContext)
	return rc
}

// UseModule records a module id in the RenderContext carried by ctx. It is
// a no-op outside of a server render.
func UseModule(ctx context.Context, id string) {
	if rc := RenderContextFrom(ctx); rc != nil {
		rc.AddModule(id)
	}
}

// unionModules merges module lists keeping the first occurrence of each id.
func unionModules(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, l := range lists {
		for _, m := range l {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	return out
}
