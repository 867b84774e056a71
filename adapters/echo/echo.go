// Package islandsecho provides Echo framework integration for the islands
// fragment endpoint and page rendering.
//
// Mount a renderer's fragment endpoint onto an Echo instance or group:
//
//	e := echo.New()
//	r := islands.NewRenderer(components.Registry(), islands.WithKey(key))
//	islandsecho.Mount(e, r)
//
// Or mount on a group with middleware:
//
//	g := e.Group("/app", authMiddleware)
//	islandsecho.MountGroup(g, r)
//
// Fragment URLs are built with the same path as passed to WithPath:
//
//	u, _ := r.FragmentURL("/app/_islands/", "Cart", props, false)
package islandsecho

import (
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/pthm/islands"
)

// Option configures the Mount and MountGroup functions.
type Option func(*options)

type options struct {
	path string
}

// WithPath sets the URL path prefix for fragment routes, relative to the
// Echo instance or group. Defaults to islands.DefaultFragmentPrefix.
func WithPath(path string) Option {
	return func(o *options) {
		o.path = path
	}
}

// Mount serves r's fragment endpoint on an Echo instance.
//
//	islandsecho.Mount(e, r)
//
//	// With options:
//	islandsecho.Mount(e, r, islandsecho.WithPath("/fragments/"))
func Mount(e *echo.Echo, r *islands.Renderer, opts ...Option) {
	path := mountPath(opts)
	h := fragmentHandler(r)
	e.GET(path+"*", h)
	e.HEAD(path+"*", h)
}

// MountGroup serves r's fragment endpoint on an Echo group, so fragments
// share the group's middleware (auth, logging, etc.).
//
//	g := e.Group("/app", authMiddleware)
//	islandsecho.MountGroup(g, r)
func MountGroup(g *echo.Group, r *islands.Renderer, opts ...Option) {
	path := mountPath(opts)
	h := fragmentHandler(r)
	g.GET(path+"*", h)
	g.HEAD(path+"*", h)
}

func mountPath(opts []Option) string {
	o := &options{path: islands.DefaultFragmentPrefix}
	for _, opt := range opts {
		opt(o)
	}
	return strings.TrimSuffix(o.path, "/") + "/"
}

// fragmentHandler adapts the renderer's handler to Echo. The wildcard
// parameter holds the component id wherever the route is mounted.
func fragmentHandler(r *islands.Renderer) echo.HandlerFunc {
	h := r.Handler("/")
	return func(c echo.Context) error {
		req := c.Request()
		id := c.Param("*")
		if unescaped, err := url.PathUnescape(id); err == nil {
			id = unescaped
		}
		u := *req.URL
		u.Path = "/" + id
		u.RawPath = ""
		out := req.WithContext(req.Context())
		out.URL = &u
		h.ServeHTTP(c.Response(), out)
		return nil
	}
}

// Render writes a templ component to the Echo response.
//
//	func handler(c echo.Context) error {
//	    return islandsecho.Render(c, myTemplate())
//	}
func Render(c echo.Context, component templ.Component) error {
	c.Response().Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(c.Request().Context(), c.Response())
}

// Page writes a rendered page, replacing its preload placeholder with the
// batch's preload tags.
//
//	b, err := r.Render(ctx, reqs)
//	...
//	return islandsecho.Page(c, http.StatusOK, html, b)
func Page(c echo.Context, status int, html string, b *islands.Batch) error {
	tags := ""
	if b != nil {
		tags = b.PreloadTags
	}
	return c.HTML(status, islands.InjectPreload(html, tags))
}
