package islands

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"

	"github.com/a-h/templ"
)

// TestResult holds the result of rendering an island for testing.
//
// Provides convenience methods for asserting on HTML content, modules,
// headers and status codes.
type TestResult struct {
	HTML       string
	Modules    []string
	StatusCode int
	Headers    http.Header
}

// TestRender renders a Definition with the given props and returns testable
// output. Props may be a Props value, a map or a struct; they go through the
// same JSON normalisation as a server render.
//
// Use this for unit tests of rendering logic. It bypasses the registry,
// markers and preload computation. Modules lists what the component
// recorded with UseModule.
//
//	result, err := islands.TestRender(components.Counter, map[string]any{"start": 2})
//	if !result.HTMLContains(">2<") {
//	    t.Fatal("missing count")
//	}
func TestRender(def Definition, props any) (*TestResult, error) {
	return TestRenderWithContext(context.Background(), def, props)
}

// TestRenderWithContext renders a Definition with a custom context.
//
// Use this when testing components that read values from context.
func TestRenderWithContext(ctx context.Context, def Definition, props any) (*TestResult, error) {
	p, err := NewProps(props)
	if err != nil {
		return nil, err
	}
	rc := NewRenderContext()
	var buf bytes.Buffer
	if err := renderDefinition(WithRenderContext(ctx, rc), def, p, &buf); err != nil {
		return nil, err
	}
	return &TestResult{
		HTML:       buf.String(),
		Modules:    rc.Modules(),
		StatusCode: http.StatusOK,
		Headers:    make(http.Header),
	}, nil
}

// TestFragment issues a GET for url against h, typically a Renderer's
// fragment Handler, and returns the recorded response.
//
//	u, _ := r.FragmentURL(islands.DefaultFragmentPrefix, "Counter", props, false)
//	result, err := islands.TestFragment(r.Handler(islands.DefaultFragmentPrefix), u)
func TestFragment(h http.Handler, url string) (*TestResult, error) {
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	body, err := io.ReadAll(rec.Result().Body)
	if err != nil {
		return nil, err
	}
	return &TestResult{
		HTML:       string(body),
		StatusCode: rec.Code,
		Headers:    rec.Header(),
	}, nil
}

// HTMLContains checks if the rendered HTML contains the substring.
func (r *TestResult) HTMLContains(substr string) bool {
	return strings.Contains(r.HTML, substr)
}

// HTMLContainsAll checks if the rendered HTML contains all substrings.
func (r *TestResult) HTMLContainsAll(substrs ...string) bool {
	for _, s := range substrs {
		if !strings.Contains(r.HTML, s) {
			return false
		}
	}
	return true
}

// HasModule checks if the render recorded the module.
func (r *TestResult) HasModule(id string) bool {
	return slices.Contains(r.Modules, id)
}

// IsOK checks if the status code is 200.
func (r *TestResult) IsOK() bool {
	return r.StatusCode == http.StatusOK
}

// HasStatus checks if the status code matches.
func (r *TestResult) HasStatus(code int) bool {
	return r.StatusCode == code
}

// StaticHTML returns a Definition that always renders html. It is meant
// for building registries in tests.
func StaticHTML(html string) Definition {
	return DefinitionFunc(func(context.Context, Props) templ.Component {
		return Raw(html)
	})
}

// Failing returns a Definition whose render always fails with err.
func Failing(err error) Definition {
	return DefinitionFunc(func(context.Context, Props) templ.Component {
		return errorComponent(err)
	})
}
