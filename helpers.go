package islands

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/a-h/templ"
)

// PreloadPlaceholder is the comment a page template leaves in its head for
// InjectPreload to replace.
const PreloadPlaceholder = "<!-- preload-links -->"

// InjectPreload replaces the first PreloadPlaceholder in page with tags.
// Pages without the placeholder are returned unchanged.
func InjectPreload(page, tags string) string {
	return strings.Replace(page, PreloadPlaceholder, tags, 1)
}

// Render writes a templ component to the HTTP response.
//
// Sets Content-Type to text/html and renders the component using the
// request's context.
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    islands.Render(w, r, page(batch))
//	}
func Render(w http.ResponseWriter, r *http.Request, component templ.Component) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(r.Context(), w)
}

// Raw returns a templ component that writes html without escaping. Only use
// it with markup produced by the renderer.
func Raw(html string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, html)
		return err
	})
}

// IsHTMX returns true if the request originated from HTMX.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
