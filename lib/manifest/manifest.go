// Package manifest reads the bundler's build manifest and turns the set of
// modules used by a render into preload and stylesheet tags.
//
// Two manifest shapes are accepted. The build manifest written by Vite maps
// a module id to a chunk:
//
//	{"src/islands/Counter.ts": {"file": "assets/Counter-4f1c.js", "css": ["assets/Counter-9a2b.css"], "imports": ["_shared-77ee.js"]}}
//
// The SSR manifest maps a module id directly to its files:
//
//	{"src/islands/Counter.ts": ["/assets/Counter-4f1c.js", "/assets/Counter-9a2b.css"]}
package manifest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"maps"
	"net/url"
	"os"
	"path"
	"slices"
	"strings"

	"cloudeng.io/logging/ctxlog"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// ErrLoad is returned when a manifest cannot be read or parsed.
var ErrLoad = errors.New("islands: manifest load failed")

// Manifest maps module ids to the ordered list of asset files they need.
// A nil *Manifest behaves as an empty one. It is read-only once built.
type Manifest struct {
	// Base is prepended to every file path when rendering tags,
	// for example "/".
	Base string

	files   map[string][]string
	entries map[string]chunk
}

type chunk struct {
	File    string   `json:"file"`
	Src     string   `json:"src,omitempty"`
	IsEntry bool     `json:"isEntry,omitempty"`
	CSS     []string `json:"css,omitempty"`
	Assets  []string `json:"assets,omitempty"`
	Imports []string `json:"imports,omitempty"`
}

// New builds a Manifest from an explicit module to files mapping.
func New(files map[string][]string) *Manifest {
	m := &Manifest{files: make(map[string][]string, len(files))}
	for id, f := range files {
		m.files[id] = append([]string(nil), f...)
	}
	return m
}

// Empty returns a manifest with no modules.
func Empty() *Manifest {
	return New(nil)
}

// Parse decodes manifest JSON in either the build or the SSR shape.
func Parse(data []byte) (*Manifest, error) {
	var raw map[string]jsontext.Value
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	m := &Manifest{
		files:   make(map[string][]string, len(raw)),
		entries: make(map[string]chunk),
	}
	for id, v := range raw {
		switch first(v) {
		case '[':
			var files []string
			if err := json.Unmarshal(v, &files); err != nil {
				return nil, fmt.Errorf("%w: module %q: %v", ErrLoad, id, err)
			}
			m.files[id] = files
		case '{':
			var c chunk
			if err := json.Unmarshal(v, &c); err != nil {
				return nil, fmt.Errorf("%w: module %q: %v", ErrLoad, id, err)
			}
			m.entries[id] = c
		default:
			return nil, fmt.Errorf("%w: module %q: expected object or array", ErrLoad, id)
		}
	}
	for id := range m.entries {
		m.files[id] = m.chunkFiles(id)
	}
	return m, nil
}

func first(v jsontext.Value) byte {
	b := bytes.TrimSpace(v)
	if len(b) == 0 {
		return 0
	}
	return b[0]
}

// chunkFiles flattens a build chunk: its file, css and assets, then the
// files of its static imports, depth first. Import cycles are cut.
func (m *Manifest) chunkFiles(id string) []string {
	var out []string
	seen := map[string]bool{}
	visited := map[string]bool{}
	add := func(f string) {
		if f != "" && !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	var walk func(id string)
	walk = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		c, ok := m.entries[id]
		if !ok {
			return
		}
		add(c.File)
		for _, f := range c.CSS {
			add(f)
		}
		for _, f := range c.Assets {
			add(f)
		}
		for _, imp := range c.Imports {
			walk(imp)
		}
	}
	walk(id)
	return out
}

// Load reads and parses the manifest at filename.
func Load(filename string) (*Manifest, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	return Parse(data)
}

// LoadOrEmpty is like Load but logs the failure and returns an empty
// manifest, so preload hints degrade to none instead of stopping startup.
func LoadOrEmpty(ctx context.Context, filename string) *Manifest {
	m, err := Load(filename)
	if err != nil {
		ctxlog.Logger(ctx).Warn("using empty build manifest", "path", filename, "error", err)
		return Empty()
	}
	ctxlog.Logger(ctx).Info("loaded build manifest", "path", filename, "modules", m.Len())
	return m
}

// Len returns the number of modules in the manifest.
func (m *Manifest) Len() int {
	if m == nil {
		return 0
	}
	return len(m.files)
}

// Files returns the asset files of a module, or nil if it is not present.
func (m *Manifest) Files(module string) []string {
	if m == nil {
		return nil
	}
	return m.files[module]
}

// Dirs returns the sorted top level directories of the local files the
// manifest references, for example "assets". Absolute URLs and files at
// the top level are skipped.
func (m *Manifest) Dirs() []string {
	if m == nil {
		return nil
	}
	set := map[string]bool{}
	for _, files := range m.files {
		for _, f := range files {
			if isAbsoluteURL(f) {
				continue
			}
			dir, _, ok := strings.Cut(strings.TrimPrefix(f, "/"), "/")
			if ok && dir != "" {
				set[dir] = true
			}
		}
	}
	return slices.Sorted(maps.Keys(set))
}

// PreloadTags renders the tags for every file needed by modules, in module
// order. A file shared by several modules is emitted once, where it is first
// encountered. Modules absent from the manifest are skipped.
func (m *Manifest) PreloadTags(modules []string) string {
	if m == nil {
		return ""
	}
	var sb strings.Builder
	seen := make(map[string]struct{})
	for _, mod := range modules {
		for _, f := range m.files[mod] {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			sb.WriteString(m.Tag(f))
		}
	}
	return sb.String()
}

// PreloadTags is shorthand for m.PreloadTags(modules).
func PreloadTags(m *Manifest, modules []string) string {
	return m.PreloadTags(modules)
}

// Tag returns the preload tag for one file, chosen by extension. Files of
// other types yield the empty string.
func (m *Manifest) Tag(file string) string {
	href := m.href(file)
	switch ext := strings.ToLower(path.Ext(file)); ext {
	case ".js":
		return `<link rel="modulepreload" crossorigin href="` + href + `">`
	case ".css":
		return `<link rel="stylesheet" href="` + href + `">`
	case ".woff", ".woff2":
		return `<link rel="preload" as="font" type="font/` + ext[1:] + `" crossorigin href="` + href + `">`
	case ".gif", ".jpg", ".jpeg", ".png":
		typ := ext[1:]
		if typ == "jpg" {
			typ = "jpeg"
		}
		return `<link rel="preload" as="image" type="image/` + typ + `" href="` + href + `">`
	}
	return ""
}

// EntryTags renders the tags that boot a build entry such as an SPA shell:
// a module script for the entry chunk, its stylesheets, and modulepreload
// hints for its static imports. It returns "" for unknown entries.
func (m *Manifest) EntryTags(entry string) string {
	if m == nil {
		return ""
	}
	c, ok := m.entries[entry]
	if !ok {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(`<script type="module" crossorigin src="` + m.href(c.File) + `"></script>`)
	for _, f := range m.files[entry] {
		if f == c.File {
			continue
		}
		sb.WriteString(m.Tag(f))
	}
	return sb.String()
}

// WithBase returns a copy of m whose tags prefix relative files with base.
// m itself is not modified.
func (m *Manifest) WithBase(base string) *Manifest {
	if m == nil {
		m = Empty()
	}
	c := *m
	c.Base = base
	return &c
}

func (m *Manifest) href(file string) string {
	if m == nil || m.Base == "" || strings.HasPrefix(file, "/") || isAbsoluteURL(file) {
		return file
	}
	return strings.TrimSuffix(m.Base, "/") + "/" + file
}

// isAbsoluteURL reports whether file carries a scheme, as in
// "https://cdn.example.com/a.js", or is scheme-relative.
func isAbsoluteURL(file string) bool {
	u, err := url.Parse(file)
	return err == nil && (u.Scheme != "" || u.Host != "")
}
