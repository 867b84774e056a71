package hydrate

import (
	"bytes"
	"context"

	"github.com/pthm/islands"
	"github.com/pthm/islands/lib/dom"
)

// TemplMounter mounts islands by rendering their templ Definition into the
// container. A fresh mount writes the render output; hydration compares it
// with the server markup and patches the container when they differ.
type TemplMounter struct{}

// Mount implements Mounter.
func (TemplMounter) Mount(ctx context.Context, el *dom.Element, def islands.Definition, props islands.Props, mode MountMode) (Mounted, error) {
	var buf bytes.Buffer
	ctx = islands.WithRenderContext(ctx, islands.NewRenderContext())
	if c := def.Render(ctx, props); c != nil {
		if err := c.Render(ctx, &buf); err != nil {
			return Mounted{}, err
		}
	}
	if mode == MountFresh {
		return Mounted{}, el.SetInnerHTML(buf.String())
	}
	same, err := el.Matches(buf.String())
	if err != nil {
		return Mounted{}, err
	}
	if same {
		return Mounted{}, nil
	}
	if err := el.SetInnerHTML(buf.String()); err != nil {
		return Mounted{}, err
	}
	return Mounted{Patched: true}, nil
}

// MounterFunc adapts a function to Mounter.
type MounterFunc func(ctx context.Context, el *dom.Element, def islands.Definition, props islands.Props, mode MountMode) (Mounted, error)

// Mount calls f.
func (f MounterFunc) Mount(ctx context.Context, el *dom.Element, def islands.Definition, props islands.Props, mode MountMode) (Mounted, error) {
	return f(ctx, el, def, props, mode)
}
