package islands

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/a-h/templ"
)

// Component is a Definition with typed props. Props arriving as a generic
// JSON object are decoded into P before the render function runs.
//
//	var Counter = islands.New(func(ctx context.Context, p CounterProps) templ.Component {
//	    return counterView(p)
//	})
//
// P should be a struct with json tags; decoding is case-sensitive and
// ignores unknown fields.
type Component[P any] struct {
	render  func(ctx context.Context, props P) templ.Component
	prepare func(ctx context.Context, props *P) error
}

// New creates a Component from a render function.
func New[P any](render func(ctx context.Context, props P) templ.Component) *Component[P] {
	return &Component[P]{render: render}
}

// Adapt creates a Component from a Template, also picking up Prepare when t
// implements Preparer.
func Adapt[P any](t Template[P]) *Component[P] {
	c := New(t.Render)
	if p, ok := t.(Preparer[P]); ok {
		c.prepare = p.Prepare
	}
	return c
}

// WithPrepare sets the function run on decoded props before rendering.
func (c *Component[P]) WithPrepare(fn func(ctx context.Context, props *P) error) *Component[P] {
	c.prepare = fn
	return c
}

// Render implements Definition. Decode and prepare failures surface as the
// returned component's render error.
func (c *Component[P]) Render(ctx context.Context, props Props) templ.Component {
	var p P
	if err := props.Decode(&p); err != nil {
		return errorComponent(err)
	}
	if c.prepare != nil {
		if err := c.prepare(ctx, &p); err != nil {
			return errorComponent(err)
		}
	}
	out := c.render(ctx, p)
	if out == nil {
		return templ.NopComponent
	}
	return out
}

// RenderProps renders typed props directly, bypassing the generic Props
// decode. Prepare still runs.
func (c *Component[P]) RenderProps(ctx context.Context, props P) templ.Component {
	if c.prepare != nil {
		if err := c.prepare(ctx, &props); err != nil {
			return errorComponent(err)
		}
	}
	return c.render(ctx, props)
}

func errorComponent(err error) templ.Component {
	return templ.ComponentFunc(func(context.Context, io.Writer) error {
		return err
	})
}

// Loader produces an island's Definition. It is called at most once per
// island render, and only for islands whose body is rendered on the server.
type Loader func(ctx context.Context) (Definition, error)

// Static returns a Loader for an already constructed Definition.
func Static(def Definition) Loader {
	return func(context.Context) (Definition, error) {
		if def == nil {
			return nil, fmt.Errorf("islands: nil definition")
		}
		return def, nil
	}
}

// Lazy returns a Loader that constructs the Definition on first use and
// caches the result, including a failure.
func Lazy(build func() (Definition, error)) Loader {
	once := sync.OnceValues(build)
	return func(context.Context) (Definition, error) {
		return once()
	}
}
