package islands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/a-h/templ"
	"github.com/pthm/islands/lib/manifest"
)

type testIslandProps struct {
	IslandID int `json:"islandId"`
}

var testIsland = New(func(_ context.Context, p testIslandProps) templ.Component {
	return Raw(fmt.Sprintf("<p>Island #%d</p>", p.IslandID))
})

// nestedIsland records a second module as if it rendered a shared child.
var nestedIsland = DefinitionFunc(func(ctx context.Context, _ Props) templ.Component {
	UseModule(ctx, "src/islands/Shared.ts")
	UseModule(ctx, "src/islands/Shared.ts")
	return Raw("<section>nested</section>")
})

func countingLoader(def Definition, n *atomic.Int32) Loader {
	return func(context.Context) (Definition, error) {
		n.Add(1)
		return def, nil
	}
}

func newTestRegistry(loads *atomic.Int32) *Registry {
	return NewRegistry(
		Register("TestIsland", "src/islands/TestIsland.ts", countingLoader(testIsland, loads)),
		Register("Nested", "src/islands/Nested.ts", Static(nestedIsland)),
		Register("Other", "src/islands/Other.ts", Static(StaticHTML("<i>other</i>"))),
		Register("Broken", "src/islands/Broken.ts", Static(Failing(errors.New("boom")))),
		Register("Panics", "src/islands/Panics.ts", Static(DefinitionFunc(func(context.Context, Props) templ.Component {
			panic("kaboom")
		}))),
		Register("NoLoad", "src/islands/NoLoad.ts", func(context.Context) (Definition, error) {
			return nil, errors.New("chunk missing")
		}),
	)
}

func TestRenderSSRScenario(t *testing.T) {
	var loads atomic.Int32
	r := NewRenderer(newTestRegistry(&loads))

	b, err := r.Render(context.Background(), []Request{
		{ID: "TestIsland", Props: Props{"islandId": 789}, Mode: ModeSSR},
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	html := b.HTML("TestIsland")
	prefix := `<div data-component="TestIsland" data-props='{"islandId":789}'>`
	if !strings.HasPrefix(html, prefix) {
		t.Errorf("HTML = %s, want prefix %s", html, prefix)
	}
	if html == prefix+"</div>" {
		t.Errorf("HTML has no inner content: %s", html)
	}
	if !strings.Contains(html, "<p>Island #789</p>") {
		t.Errorf("HTML = %s, missing rendered body", html)
	}
	isl, _ := b.Get("TestIsland")
	if _, ok := isl.Outcome.(Rendered); !ok {
		t.Errorf("Outcome = %T, want Rendered", isl.Outcome)
	}
	if got := isl.Modules(); len(got) != 1 || got[0] != "src/islands/TestIsland.ts" {
		t.Errorf("Modules() = %v", got)
	}
	if loads.Load() != 1 {
		t.Errorf("loader called %d times, want 1", loads.Load())
	}
}

func TestRenderClientOnlyScenario(t *testing.T) {
	var loads atomic.Int32
	r := NewRenderer(newTestRegistry(&loads))

	b, err := r.Render(context.Background(), []Request{
		{ID: "TestIsland", Props: Props{"islandId": 789}, Mode: ModeClientOnly},
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	want := `<div data-component="TestIsland" data-props='{"islandId":789}' data-client-only="true"></div>`
	if got := b.HTML("TestIsland"); got != want {
		t.Errorf("HTML = %s, want %s", got, want)
	}
	isl, _ := b.Get("TestIsland")
	if _, ok := isl.Outcome.(ClientOnlyMarker); !ok {
		t.Errorf("Outcome = %T, want ClientOnlyMarker", isl.Outcome)
	}
	if len(b.Modules()) != 0 || b.PreloadTags != "" {
		t.Errorf("client-only batch has modules %v, tags %q", b.Modules(), b.PreloadTags)
	}
	if loads.Load() != 0 {
		t.Errorf("loader called %d times for client-only island", loads.Load())
	}
}

func TestRenderEffectiveMode(t *testing.T) {
	tests := []struct {
		dev  bool
		mode RenderMode
		want RenderMode
	}{
		{false, ModeDefault, ModeSSR},
		{true, ModeDefault, ModeClientOnly},
		{true, ModeSSR, ModeSSR},
		{false, ModeClientOnly, ModeClientOnly},
	}
	for _, tt := range tests {
		r := NewRenderer(newTestRegistry(new(atomic.Int32)), WithDevMode(tt.dev))
		b, err := r.RenderOne(context.Background(), "Other", nil, tt.mode)
		if err != nil {
			t.Fatal(err)
		}
		isl := b.Islands[0]
		if isl.Mode != tt.want {
			t.Errorf("dev=%v mode=%v: effective mode = %v, want %v", tt.dev, tt.mode, isl.Mode, tt.want)
		}
		clientOnly := strings.Contains(isl.HTML, `data-client-only="true"`)
		if clientOnly != (tt.want == ModeClientOnly) {
			t.Errorf("dev=%v mode=%v: HTML = %s", tt.dev, tt.mode, isl.HTML)
		}
	}
}

func TestRenderUnknownComponent(t *testing.T) {
	var loads atomic.Int32
	r := NewRenderer(newTestRegistry(&loads))

	b, err := r.Render(context.Background(), []Request{
		{ID: "TestIsland", Props: Props{"islandId": 1}, Mode: ModeSSR},
		{ID: "testisland"},
	})
	if !IsUnknownComponent(err) {
		t.Fatalf("Render() error = %v, want ErrUnknownComponent", err)
	}
	if b != nil {
		t.Errorf("Render() returned partial batch %+v", b)
	}
	if loads.Load() != 0 {
		t.Errorf("loader called %d times before the batch was resolved", loads.Load())
	}
}

func TestRenderFailureAbortsBatch(t *testing.T) {
	tests := []struct {
		id    string
		cause string
	}{
		{"Broken", "boom"},
		{"Panics", "kaboom"},
		{"NoLoad", "chunk missing"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			r := NewRenderer(newTestRegistry(new(atomic.Int32)))
			b, err := r.Render(context.Background(), []Request{
				{ID: "Other", Mode: ModeSSR},
				{ID: tt.id, Mode: ModeSSR},
				{ID: "Nested", Mode: ModeSSR},
			})
			if b != nil {
				t.Errorf("Render() returned partial batch")
			}
			if !IsRenderError(err) {
				t.Fatalf("Render() error = %v, want ErrRender", err)
			}
			var re *RenderError
			if !errors.As(err, &re) || re.ID != tt.id {
				t.Fatalf("Render() error = %#v, want RenderError for %s", err, tt.id)
			}
			if !strings.Contains(err.Error(), tt.cause) {
				t.Errorf("Render() error = %v, want cause %q", err, tt.cause)
			}
		})
	}
}

func TestRenderInvalidProps(t *testing.T) {
	r := NewRenderer(newTestRegistry(new(atomic.Int32)))
	_, err := r.RenderOne(context.Background(), "Other", Props{"bad": math.NaN()}, ModeSSR)
	if !IsRenderError(err) || !errors.Is(err, ErrInvalidProps) {
		t.Fatalf("Render() error = %v, want ErrRender wrapping ErrInvalidProps", err)
	}
}

func TestRenderModulesAndPreload(t *testing.T) {
	m := manifest.New(map[string][]string{
		"src/islands/Nested.ts": {"assets/Nested.js", "assets/shared.css"},
		"src/islands/Shared.ts": {"assets/Shared.js", "assets/shared.css"},
		"src/islands/Other.ts":  {"assets/Other.js"},
	})
	r := NewRenderer(newTestRegistry(new(atomic.Int32)), WithManifest(m))

	b, err := r.Render(context.Background(), []Request{
		{ID: "Nested", Mode: ModeSSR},
		{ID: "Other", Mode: ModeSSR},
		{ID: "Other", Mode: ModeClientOnly},
		{ID: "TestIsland", Props: Props{"islandId": 2}, Mode: ModeSSR},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Islands) != 4 {
		t.Fatalf("len(Islands) = %d, want 4", len(b.Islands))
	}
	for i, id := range []string{"Nested", "Other", "Other", "TestIsland"} {
		if b.Islands[i].ID != id {
			t.Errorf("Islands[%d].ID = %s, want %s", i, b.Islands[i].ID, id)
		}
	}

	wantModules := []string{"src/islands/Nested.ts", "src/islands/Shared.ts", "src/islands/Other.ts", "src/islands/TestIsland.ts"}
	got := b.Modules()
	if strings.Join(got, ",") != strings.Join(wantModules, ",") {
		t.Errorf("Modules() = %v, want %v", got, wantModules)
	}

	wantTags := `<link rel="modulepreload" crossorigin href="assets/Nested.js">` +
		`<link rel="stylesheet" href="assets/shared.css">` +
		`<link rel="modulepreload" crossorigin href="assets/Shared.js">` +
		`<link rel="modulepreload" crossorigin href="assets/Other.js">`
	if b.PreloadTags != wantTags {
		t.Errorf("PreloadTags = %s, want %s", b.PreloadTags, wantTags)
	}
}

func TestBatchSlot(t *testing.T) {
	r := NewRenderer(newTestRegistry(new(atomic.Int32)))
	b, err := r.RenderOne(context.Background(), "Other", nil, ModeSSR)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := b.Slot("Other").Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	if buf.String() != b.HTML("Other") {
		t.Errorf("Slot() wrote %s, want %s", buf.String(), b.HTML("Other"))
	}
	if err := b.Slot("Missing").Render(context.Background(), &buf); !IsUnknownComponent(err) {
		t.Errorf("Slot(missing) error = %v", err)
	}
}
