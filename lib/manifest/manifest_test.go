package manifest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestPreloadTagsScenario(t *testing.T) {
	m, err := Parse([]byte(`{"main.js": {"file":"main.ABC123.js"}}`))
	if err != nil {
		t.Fatal(err)
	}
	got := m.PreloadTags([]string{"main.js"})
	want := `<link rel="modulepreload" crossorigin href="main.ABC123.js">`
	if got != want {
		t.Errorf("PreloadTags() = %s, want %s", got, want)
	}
}

func TestTag(t *testing.T) {
	tests := []struct {
		file string
		want string
	}{
		{"a.js", `<link rel="modulepreload" crossorigin href="a.js">`},
		{"a.css", `<link rel="stylesheet" href="a.css">`},
		{"f.woff", `<link rel="preload" as="font" type="font/woff" crossorigin href="f.woff">`},
		{"f.woff2", `<link rel="preload" as="font" type="font/woff2" crossorigin href="f.woff2">`},
		{"i.gif", `<link rel="preload" as="image" type="image/gif" href="i.gif">`},
		{"i.jpg", `<link rel="preload" as="image" type="image/jpeg" href="i.jpg">`},
		{"i.jpeg", `<link rel="preload" as="image" type="image/jpeg" href="i.jpeg">`},
		{"i.PNG", `<link rel="preload" as="image" type="image/png" href="i.PNG">`},
		{"data.json", ""},
		{"noext", ""},
	}
	var m *Manifest
	for _, tt := range tests {
		if got := m.Tag(tt.file); got != tt.want {
			t.Errorf("Tag(%q) = %s, want %s", tt.file, got, tt.want)
		}
	}
}

func TestPreloadTagsDedup(t *testing.T) {
	m := New(map[string][]string{
		"a": {"a.js", "shared.css"},
		"b": {"b.js", "shared.css"},
	})
	got := m.PreloadTags([]string{"a", "b", "missing"})
	want := `<link rel="modulepreload" crossorigin href="a.js">` +
		`<link rel="stylesheet" href="shared.css">` +
		`<link rel="modulepreload" crossorigin href="b.js">`
	if got != want {
		t.Errorf("PreloadTags() = %s, want %s", got, want)
	}
	if again := m.PreloadTags([]string{"a", "b", "missing"}); again != got {
		t.Errorf("PreloadTags() not idempotent: %s vs %s", again, got)
	}
}

func TestPreloadTagsEmpty(t *testing.T) {
	var nilManifest *Manifest
	if got := nilManifest.PreloadTags([]string{"a"}); got != "" {
		t.Errorf("nil manifest PreloadTags() = %q", got)
	}
	if got := Empty().PreloadTags([]string{"a"}); got != "" {
		t.Errorf("empty manifest PreloadTags() = %q", got)
	}
	if got := New(map[string][]string{"a": {"a.js"}}).PreloadTags(nil); got != "" {
		t.Errorf("no modules PreloadTags() = %q", got)
	}
}

func TestParseBuildManifest(t *testing.T) {
	data := []byte(`{
		"src/islands/Counter.ts": {"file": "assets/Counter.js", "css": ["assets/Counter.css"], "imports": ["_shared.js"], "src": "src/islands/Counter.ts"},
		"_shared.js": {"file": "assets/shared.js", "css": ["assets/shared.css"], "imports": ["_cycle.js"]},
		"_cycle.js": {"file": "assets/cycle.js", "imports": ["_shared.js"]},
		"src/fonts/inter.woff2": {"file": "assets/inter.woff2"}
	}`)
	m, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	got := m.Files("src/islands/Counter.ts")
	want := []string{"assets/Counter.js", "assets/Counter.css", "assets/shared.js", "assets/shared.css", "assets/cycle.js"}
	if len(got) != len(want) {
		t.Fatalf("Files() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Files()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if m.Len() != 4 {
		t.Errorf("Len() = %d, want 4", m.Len())
	}
}

func TestParseSSRManifest(t *testing.T) {
	m, err := Parse([]byte(`{"src/islands/Cart.ts": ["/assets/Cart.js", "/assets/Cart.css"], "src/empty.ts": []}`))
	if err != nil {
		t.Fatal(err)
	}
	m.Base = "/static"
	got := m.PreloadTags([]string{"src/islands/Cart.ts", "src/empty.ts"})
	want := `<link rel="modulepreload" crossorigin href="/assets/Cart.js"><link rel="stylesheet" href="/assets/Cart.css">`
	if got != want {
		t.Errorf("PreloadTags() = %s, want %s", got, want)
	}
}

func TestParseErrors(t *testing.T) {
	for _, data := range []string{``, `[]`, `{"a": 1}`, `{"a": {"file": 3}}`, `{"a": [1]}`} {
		if _, err := Parse([]byte(data)); !errors.Is(err, ErrLoad) {
			t.Errorf("Parse(%q) error = %v, want ErrLoad", data, err)
		}
	}
}

func TestEntryTags(t *testing.T) {
	m, err := Parse([]byte(`{
		"src/admin.ts": {"file": "assets/admin.js", "isEntry": true, "css": ["assets/admin.css"], "imports": ["_vendor.js"]},
		"_vendor.js": {"file": "assets/vendor.js"}
	}`))
	if err != nil {
		t.Fatal(err)
	}
	m.Base = "/"
	want := `<script type="module" crossorigin src="/assets/admin.js"></script>` +
		`<link rel="stylesheet" href="/assets/admin.css">` +
		`<link rel="modulepreload" crossorigin href="/assets/vendor.js">`
	if got := m.EntryTags("src/admin.ts"); got != want {
		t.Errorf("EntryTags() = %s, want %s", got, want)
	}
	if got := m.EntryTags("nope"); got != "" {
		t.Errorf("EntryTags(unknown) = %q", got)
	}
}

func TestLoadOrEmpty(t *testing.T) {
	ctx := context.Background()
	m := LoadOrEmpty(ctx, filepath.Join(t.TempDir(), "missing.json"))
	if m == nil || m.Len() != 0 {
		t.Fatalf("LoadOrEmpty(missing) = %v", m)
	}

	name := filepath.Join(t.TempDir(), "manifest.json")
	if err := os.WriteFile(name, []byte(`{"main.js": {"file":"main.ABC123.js"}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if m := LoadOrEmpty(ctx, name); m.Len() != 1 {
		t.Errorf("LoadOrEmpty() Len = %d, want 1", m.Len())
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, ErrLoad) {
		t.Errorf("Load(missing) error = %v, want ErrLoad", err)
	}
}

func TestAbsoluteURLsKeepTheirHost(t *testing.T) {
	m, err := Parse([]byte(`{"src/islands/Counter.ts": ["https://cdn.example.com/assets/Counter-1.js", "//cdn.example.com/assets/Counter-1.css", "assets/chunk.js"]}`))
	if err != nil {
		t.Fatal(err)
	}
	m = m.WithBase("/")
	got := m.PreloadTags([]string{"src/islands/Counter.ts"})
	want := `<link rel="modulepreload" crossorigin href="https://cdn.example.com/assets/Counter-1.js">` +
		`<link rel="stylesheet" href="//cdn.example.com/assets/Counter-1.css">` +
		`<link rel="modulepreload" crossorigin href="/assets/chunk.js">`
	if got != want {
		t.Errorf("PreloadTags() = %s, want %s", got, want)
	}
}

func TestWithBaseCopies(t *testing.T) {
	m := New(map[string][]string{"a": {"a.js"}})
	based := m.WithBase("/static/")
	if m.Base != "" {
		t.Errorf("WithBase modified the receiver: Base = %q", m.Base)
	}
	if got := based.PreloadTags([]string{"a"}); got != `<link rel="modulepreload" crossorigin href="/static/a.js">` {
		t.Errorf("PreloadTags() = %s", got)
	}
	var nilManifest *Manifest
	if nilManifest.WithBase("/").Len() != 0 {
		t.Error("nil manifest WithBase should be empty")
	}
}

func TestDirs(t *testing.T) {
	m, err := Parse([]byte(`{
  "src/entry-client.ts": {"file": "client/client-1.js", "isEntry": true, "imports": ["_shared.js"]},
  "src/islands/Counter.ts": ["/assets/Counter-1.js", "https://cdn.example.com/fonts/a.woff2", "top.js"],
  "_shared.js": {"file": "assets/shared-1.js"}
}`))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := m.Dirs(), []string{"assets", "client"}; !slices.Equal(got, want) {
		t.Errorf("Dirs() = %v, want %v", got, want)
	}
	var nilManifest *Manifest
	if got := nilManifest.Dirs(); len(got) != 0 {
		t.Errorf("nil Dirs() = %v", got)
	}
}
