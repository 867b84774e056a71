package server

import (
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/pthm/islands"
	"github.com/pthm/islands/internal/catalog"
)

//go:embed templates/*
var templatesFS embed.FS

// pageData is passed to every page template.
type pageData struct {
	Title   string
	Scripts template.HTML

	// Islands holds rendered islands by component id, for templates to
	// place with the island func.
	Islands map[string]template.HTML

	Data any
}

// pages renders the embedded html/template pages. Content pages are parsed
// into a clone of the base templates on every render so that their
// "content" blocks do not collide.
type pages struct {
	base *template.Template
}

func newPages() *pages {
	base := template.Must(template.New("").
		Funcs(templateFuncs()).
		ParseFS(templatesFS,
			"templates/base.html",
			"templates/admin.html",
			"templates/error.html",
		))
	return &pages{base: base}
}

// content renders a page that fills the base layout's "content" block.
func (p *pages) content(name string, data pageData) (string, error) {
	tmpl, err := p.base.Clone()
	if err != nil {
		return "", fmt.Errorf("clone template: %w", err)
	}
	path := "templates/" + name
	if _, err := tmpl.ParseFS(templatesFS, path); err != nil {
		return "", fmt.Errorf("parse page template %s: %w", path, err)
	}
	return execute(tmpl, "base", data)
}

// standalone renders one of the complete documents parsed with the base
// templates, such as "admin" or "error".
func (p *pages) standalone(name string, data pageData) (string, error) {
	tmpl, err := p.base.Clone()
	if err != nil {
		return "", fmt.Errorf("clone template: %w", err)
	}
	return execute(tmpl, name, data)
}

func execute(tmpl *template.Template, name string, data pageData) (string, error) {
	var sb strings.Builder
	if err := tmpl.ExecuteTemplate(&sb, name, data); err != nil {
		return "", fmt.Errorf("execute template %s: %w", name, err)
	}
	return sb.String(), nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"island":       island,
		"markdown":     catalog.Markdown,
		"preloadLinks": preloadLinks,
		"price":        price,
	}
}

func island(islands map[string]template.HTML, id string) template.HTML {
	return islands[id]
}

// preloadLinks emits the placeholder that InjectPreload replaces once the
// page is rendered. html/template drops comments written in template text.
func preloadLinks() template.HTML {
	return template.HTML(islands.PreloadPlaceholder)
}

func price(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// islandHTML marks renderer output as safe for templates. The renderer
// escapes every attribute and component markup is trusted.
func islandHTML(isl islands.Island) template.HTML {
	return template.HTML(isl.HTML)
}
