package islands

import (
	"context"

	"github.com/a-h/templ"
)

// Definition is the server-side view of a registered island: given props it
// produces the markup placed inside the island's marker.
//
// A Definition is loaded lazily through its Entry and may be shared by
// concurrent renders, so Render must not keep per-call state.
type Definition interface {
	Render(ctx context.Context, props Props) templ.Component
}

// Template is implemented by typed island components.
//
//	func (c *Counter) Render(ctx context.Context, props CounterProps) templ.Component {
//	    return counterView(props)
//	}
//
// Render receives decoded, prepared props and should be pure.
type Template[P any] interface {
	Render(ctx context.Context, props P) templ.Component
}

// Preparer is implemented by components that need to fill in derived props
// before rendering, typically by looking an id up in a store.
//
//	func (c *ProductCard) Prepare(ctx context.Context, props *ProductProps) error {
//	    p, ok := c.catalog.Get(props.SKU)
//	    ...
//	}
//
// Prepare runs once per render, on the server only. Derived fields are not
// written back into the marker's props.
type Preparer[P any] interface {
	Prepare(ctx context.Context, props *P) error
}

// DefinitionFunc adapts a function to Definition.
type DefinitionFunc func(ctx context.Context, props Props) templ.Component

// Render calls f.
func (f DefinitionFunc) Render(ctx context.Context, props Props) templ.Component {
	return f(ctx, props)
}
