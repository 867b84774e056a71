package islands

import "fmt"

// RenderMode selects whether the server renders an island's body.
type RenderMode int

const (
	// ModeDefault defers to the renderer's policy: client-only in
	// development, SSR otherwise.
	ModeDefault RenderMode = iota

	// ModeSSR renders the island body on the server; the client hydrates it.
	ModeSSR

	// ModeClientOnly emits an empty marker; the client performs the first
	// render.
	ModeClientOnly
)

func (m RenderMode) String() string {
	switch m {
	case ModeDefault:
		return "default"
	case ModeSSR:
		return "ssr"
	case ModeClientOnly:
		return "client-only"
	}
	return fmt.Sprintf("RenderMode(%d)", int(m))
}

// ParseRenderMode parses the String form of a mode. The empty string is
// ModeDefault.
func ParseRenderMode(s string) (RenderMode, error) {
	switch s {
	case "", "default":
		return ModeDefault, nil
	case "ssr":
		return ModeSSR, nil
	case "client-only", "client":
		return ModeClientOnly, nil
	}
	return ModeDefault, fmt.Errorf("islands: unknown render mode %q", s)
}
