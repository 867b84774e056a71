package islandsecho

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/pthm/islands"
)

func newRenderer() *islands.Renderer {
	reg := islands.NewRegistry(
		islands.Register("Hello", "src/islands/Hello.ts", islands.Static(islands.StaticHTML("<p>hello</p>"))),
	)
	return islands.NewRenderer(reg, islands.WithKey([]byte("test-key")))
}

func serve(e *echo.Echo, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestMount(t *testing.T) {
	e := echo.New()
	r := newRenderer()
	Mount(e, r)

	u, err := r.FragmentURL(islands.DefaultFragmentPrefix, "Hello", nil, false)
	if err != nil {
		t.Fatal(err)
	}
	rec := serve(e, u)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	want := `<div data-component="Hello" data-props='{}'><p>hello</p></div>`
	if rec.Body.String() != want {
		t.Errorf("body = %s, want %s", rec.Body.String(), want)
	}

	if rec := serve(e, islands.DefaultFragmentPrefix+"Missing"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown component status = %d, want 404", rec.Code)
	}
}

func TestMountWithPath(t *testing.T) {
	e := echo.New()
	r := newRenderer()
	Mount(e, r, WithPath("/fragments"))

	u, err := r.FragmentURL("/fragments/", "Hello", islands.Props{"n": 1}, true)
	if err != nil {
		t.Fatal(err)
	}
	rec := serve(e, u)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `data-props='{"n":1}'`) {
		t.Errorf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestMountGroup(t *testing.T) {
	e := echo.New()
	var hit bool
	g := e.Group("/app", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			hit = true
			return next(c)
		}
	})
	r := newRenderer()
	MountGroup(g, r)

	u, err := r.FragmentURL("/app"+islands.DefaultFragmentPrefix, "Hello", nil, false)
	if err != nil {
		t.Fatal(err)
	}
	rec := serve(e, u)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !hit {
		t.Error("group middleware did not run")
	}
}

func TestRender(t *testing.T) {
	e := echo.New()
	e.GET("/", func(c echo.Context) error {
		return Render(c, templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
			_, err := io.WriteString(w, "<h1>Hi</h1>")
			return err
		}))
	})
	rec := serve(e, "/")
	if got := rec.Header().Get("Content-Type"); got != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}
	if rec.Body.String() != "<h1>Hi</h1>" {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestPage(t *testing.T) {
	e := echo.New()
	r := newRenderer()
	e.GET("/", func(c echo.Context) error {
		b, err := r.RenderOne(c.Request().Context(), "Hello", nil, islands.ModeSSR)
		if err != nil {
			return err
		}
		html := "<head>" + islands.PreloadPlaceholder + "</head><body>" + b.HTML("Hello") + "</body>"
		return Page(c, http.StatusOK, html, b)
	})
	rec := serve(e, "/")
	if strings.Contains(rec.Body.String(), islands.PreloadPlaceholder) {
		t.Errorf("placeholder left in %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "<p>hello</p>") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestMountEscapedID(t *testing.T) {
	e := echo.New()
	reg := islands.NewRegistry(
		islands.Register("50%off", "src/islands/Sale.ts", islands.Static(islands.StaticHTML("<p>sale</p>"))),
	)
	r := islands.NewRenderer(reg, islands.WithKey([]byte("test-key")))
	Mount(e, r)

	u, err := r.FragmentURL(islands.DefaultFragmentPrefix, "50%off", nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if rec := serve(e, u); rec.Code != http.StatusOK {
		t.Errorf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}
