package generator

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"text/template"
)

// generatePackage writes the registry file for one package.
func (g *Generator) generatePackage(pkgPath string) error {
	pkgName, components, err := g.Scan(pkgPath)
	if err != nil {
		return err
	}
	if len(components) == 0 {
		return nil
	}

	outputFile := filepath.Join(pkgPath, OutputFile)
	fmt.Fprintf(g.opts.Out, "generating %s (%d islands)\n", outputFile, len(components))

	if g.opts.DryRun {
		return nil
	}

	code, err := Render(pkgName, components)
	if err != nil {
		return err
	}
	return os.WriteFile(outputFile, code, 0644)
}

// Render returns the formatted registry source for a package.
func Render(pkgName string, components []ComponentInfo) ([]byte, error) {
	data := struct {
		Package    string
		Qualifier  string
		Components []ComponentInfo
	}{
		Package:    pkgName,
		Qualifier:  "islands.",
		Components: components,
	}
	if pkgName == "islands" {
		data.Qualifier = ""
	}

	var buf bytes.Buffer
	if err := registryTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}
	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format source: %w", err)
	}
	return formatted, nil
}

var registryTemplate = template.Must(template.New("registry").Parse(`// Code generated by islands generate. DO NOT EDIT.

package {{.Package}}
{{if .Qualifier}}
import "github.com/pthm/islands"
{{end}}
// Entries returns the islands declared in this package, sorted by id.
func Entries() []{{.Qualifier}}Entry {
	return []{{.Qualifier}}Entry{
{{- range .Components}}
		{ID: {{printf "%q" .ID}}, Module: {{printf "%q" .Module}}, Load: {{.Func}}},
{{- end}}
	}
}
`))
