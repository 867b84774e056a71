package islands

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"cloudeng.io/logging/ctxlog"
	"github.com/a-h/templ"
)

// DefaultFragmentPrefix is where the fragment endpoint is usually mounted.
const DefaultFragmentPrefix = "/_islands/"

// Query parameters of a fragment URL.
const (
	paramProps     = "p"
	paramEncrypted = "e"
	paramMode      = "mode"
)

// FragmentURL builds the URL that re-renders one island through the handler
// mounted at prefix. Props are signed, or encrypted when sensitive is set,
// so clients cannot forge them.
//
//	u, err := r.FragmentURL(islands.DefaultFragmentPrefix, "Cart", props, true)
func (r *Renderer) FragmentURL(prefix, id string, props Props, sensitive bool) (string, error) {
	if r.encoder == nil {
		return "", fmt.Errorf("islands: renderer has no encoder")
	}
	if !r.reg.Has(id) {
		return "", unknownComponent(id)
	}
	props, err := NewProps(map[string]any(props))
	if err != nil {
		return "", err
	}
	encoded, err := r.encoder.Encode(props, sensitive)
	if err != nil {
		return "", err
	}
	q := url.Values{}
	q.Set(paramProps, encoded)
	if sensitive {
		q.Set(paramEncrypted, "1")
	}
	return strings.TrimSuffix(prefix, "/") + "/" + url.PathEscape(id) + "?" + q.Encode(), nil
}

// Handler serves single islands at {prefix}{id}. It renders with the same
// rules as Render, so the response is a complete marker element that the
// hydrator picks up once it is in the page. HTMX requests also receive the
// island's preload tags ahead of the marker.
//
// Mount it under the same prefix passed to FragmentURL:
//
//	mux.Handle(islands.DefaultFragmentPrefix, r.Handler(islands.DefaultFragmentPrefix))
func (r *Renderer) Handler(prefix string) http.Handler {
	prefix = strings.TrimSuffix(prefix, "/") + "/"
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet && req.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		id, err := url.PathUnescape(strings.TrimPrefix(req.URL.EscapedPath(), prefix))
		if err != nil || id == "" || strings.Contains(id, "/") {
			r.OnError(w, req, unknownComponent(id))
			return
		}
		if !r.reg.Has(id) {
			r.OnError(w, req, unknownComponent(id))
			return
		}
		props, mode, err := r.decodeFragmentQuery(req.URL.Query())
		if err != nil {
			r.OnError(w, req, err)
			return
		}
		b, err := r.RenderOne(req.Context(), id, props, mode)
		if err != nil {
			r.OnError(w, req, err)
			return
		}
		body := b.Islands[0].HTML
		if IsHTMX(req) {
			body = b.PreloadTags + body
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Vary", "HX-Request")
		if _, err := io.WriteString(w, body); err != nil {
			ctxlog.Logger(req.Context()).Warn("fragment write failed", "component", id, "error", err)
		}
	})
}

func (r *Renderer) decodeFragmentQuery(q url.Values) (Props, RenderMode, error) {
	mode, err := ParseRenderMode(q.Get(paramMode))
	if err != nil {
		return nil, ModeDefault, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	raw := q.Get(paramProps)
	if raw == "" {
		return Props{}, mode, nil
	}
	if r.encoder == nil {
		return nil, mode, ErrInvalidFormat
	}
	decoded, err := r.encoder.Decode(raw, q.Get(paramEncrypted) == "1")
	if err != nil {
		return nil, mode, wrapEncodingError(err)
	}
	props, err := NewProps(decoded)
	if err != nil {
		return nil, mode, err
	}
	return props, mode, nil
}

func defaultOnError(w http.ResponseWriter, r *http.Request, err error) {
	ctxlog.Logger(r.Context()).Error("island fragment failed", "path", r.URL.Path, "error", err)
	switch {
	case IsUnknownComponent(err):
		http.Error(w, "Not found", http.StatusNotFound)
	case IsDecryptionError(err), IsBadRequest(err):
		http.Error(w, "Bad request", http.StatusBadRequest)
	default:
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

// Lazy returns a placeholder that swaps in the island from the fragment
// endpoint when it scrolls into view. It relies on HTMX being loaded on the
// page.
//
//	r.Lazy(islands.DefaultFragmentPrefix, "ProductCard", props, spinner())
func (r *Renderer) Lazy(prefix, id string, props Props, placeholder templ.Component) templ.Component {
	return r.deferred(prefix, id, props, placeholder, "intersect once")
}

// Defer is like Lazy but loads as soon as the page has loaded.
func (r *Renderer) Defer(prefix, id string, props Props, placeholder templ.Component) templ.Component {
	return r.deferred(prefix, id, props, placeholder, "load")
}

func (r *Renderer) deferred(prefix, id string, props Props, placeholder templ.Component, trigger string) templ.Component {
	u, err := r.FragmentURL(prefix, id, props, false)
	if err != nil {
		return errorComponent(err)
	}
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div hx-get="%s" hx-trigger="%s" hx-swap="outerHTML">`,
			templ.EscapeString(u), trigger)
		if err != nil {
			return err
		}
		if placeholder != nil {
			if err := placeholder.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err = io.WriteString(w, `</div>`)
		return err
	})
}
