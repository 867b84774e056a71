// Package generator builds a package's island registry source from
// directives on loader functions:
//
//	//islands:component Counter src/islands/Counter.ts
//	func loadCounter(ctx context.Context) (islands.Definition, error) {
//	    return counter, nil
//	}
//
// For every package with at least one directive it writes
// islands_registry_gen.go defining
//
//	func Entries() []islands.Entry
package generator

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// OutputFile is the name of the generated file in each package.
const OutputFile = "islands_registry_gen.go"

// Directive is the comment prefix that marks a loader function.
const Directive = "//islands:component"

// Options configures the generator.
type Options struct {
	DryRun bool
	Out    io.Writer // progress output, os.Stdout when nil
}

// Generator generates island registry code.
type Generator struct {
	opts Options
	fset *token.FileSet
}

// New creates a new generator.
func New(opts Options) *Generator {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return &Generator{
		opts: opts,
		fset: token.NewFileSet(),
	}
}

// Generate generates code for the given package patterns.
func (g *Generator) Generate(patterns ...string) error {
	packages, err := g.findPackages(patterns)
	if err != nil {
		return err
	}

	for _, pkg := range packages {
		if err := g.generatePackage(pkg); err != nil {
			return fmt.Errorf("package %s: %w", pkg, err)
		}
	}

	return nil
}

// Clean removes generated files for the given package patterns.
func (g *Generator) Clean(patterns ...string) error {
	packages, err := g.findPackages(patterns)
	if err != nil {
		return err
	}

	for _, pkg := range packages {
		if err := g.cleanPackage(pkg); err != nil {
			return fmt.Errorf("package %s: %w", pkg, err)
		}
	}

	return nil
}

// findPackages resolves package patterns to directory paths.
func (g *Generator) findPackages(patterns []string) ([]string, error) {
	var packages []string

	for _, pattern := range patterns {
		if !strings.HasSuffix(pattern, "/...") {
			packages = append(packages, pattern)
			continue
		}
		root := strings.TrimSuffix(pattern, "/...")
		if root == "" {
			root = "."
		}
		err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			base := filepath.Base(path)
			if path != root && (strings.HasPrefix(base, ".") || strings.HasPrefix(base, "_") ||
				base == "vendor" || base == "testdata" || base == "node_modules") {
				return filepath.SkipDir
			}
			if hasGoFiles(path) {
				packages = append(packages, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return packages, nil
}

func hasGoFiles(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if isSource(e) {
			return true
		}
	}
	return false
}

func isSource(e os.DirEntry) bool {
	name := e.Name()
	return !e.IsDir() && strings.HasSuffix(name, ".go") &&
		!strings.HasSuffix(name, "_test.go") && name != OutputFile
}

// ComponentInfo holds a discovered loader function.
type ComponentInfo struct {
	ID         string // component id, e.g. "Counter"
	Module     string // client module, e.g. "src/islands/Counter.ts"
	Func       string // loader function name
	SourceFile string
	Line       int
}

// Scan parses the Go files of dir and returns its package name and the
// annotated loaders sorted by id.
func (g *Generator) Scan(dir string) (string, []ComponentInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", nil, err
	}
	var (
		pkgName    string
		components []ComponentInfo
	)
	for _, e := range entries {
		if !isSource(e) {
			continue
		}
		filename := filepath.Join(dir, e.Name())
		file, err := parser.ParseFile(g.fset, filename, nil, parser.ParseComments)
		if err != nil {
			return "", nil, err
		}
		if pkgName == "" {
			pkgName = file.Name.Name
		}
		found, err := g.findComponents(filename, file)
		if err != nil {
			return "", nil, err
		}
		components = append(components, found...)
	}

	slices.SortFunc(components, func(a, b ComponentInfo) int {
		return strings.Compare(a.ID, b.ID)
	})
	for i := 1; i < len(components); i++ {
		if components[i].ID == components[i-1].ID {
			return "", nil, fmt.Errorf("duplicate component id %q at %s:%d and %s:%d",
				components[i].ID, components[i-1].SourceFile, components[i-1].Line,
				components[i].SourceFile, components[i].Line)
		}
	}
	return pkgName, components, nil
}

// findComponents finds directive-annotated functions in a file.
func (g *Generator) findComponents(filename string, file *ast.File) ([]ComponentInfo, error) {
	var components []ComponentInfo

	for _, decl := range file.Decls {
		funcDecl, ok := decl.(*ast.FuncDecl)
		if !ok || funcDecl.Doc == nil {
			continue
		}
		for _, c := range funcDecl.Doc.List {
			if !strings.HasPrefix(c.Text, Directive) {
				continue
			}
			pos := g.fset.Position(c.Pos())
			fields := strings.Fields(strings.TrimPrefix(c.Text, Directive))
			if len(fields) != 2 {
				return nil, fmt.Errorf("%s: want %s <ID> <module>", pos, Directive)
			}
			if funcDecl.Recv != nil {
				return nil, fmt.Errorf("%s: %s must be a function, not a method", pos, funcDecl.Name.Name)
			}
			if !isLoaderSignature(funcDecl.Type) {
				return nil, fmt.Errorf("%s: %s must have signature func(context.Context) (islands.Definition, error)",
					pos, funcDecl.Name.Name)
			}
			components = append(components, ComponentInfo{
				ID:         fields[0],
				Module:     fields[1],
				Func:       funcDecl.Name.Name,
				SourceFile: filename,
				Line:       pos.Line,
			})
		}
	}

	return components, nil
}

// isLoaderSignature checks for func(context.Context) (islands.Definition, error).
func isLoaderSignature(ft *ast.FuncType) bool {
	if ft.TypeParams != nil && len(ft.TypeParams.List) > 0 {
		return false
	}
	params := fieldTypes(ft.Params)
	results := fieldTypes(ft.Results)
	return len(params) == 1 && typeToString(params[0]) == "context.Context" &&
		len(results) == 2 && typeToString(results[1]) == "error" &&
		(typeToString(results[0]) == "islands.Definition" || typeToString(results[0]) == "Definition")
}

func fieldTypes(fl *ast.FieldList) []ast.Expr {
	if fl == nil {
		return nil
	}
	var out []ast.Expr
	for _, f := range fl.List {
		n := len(f.Names)
		if n == 0 {
			n = 1
		}
		for range n {
			out = append(out, f.Type)
		}
	}
	return out
}

// typeToString converts an AST type to a string representation.
func typeToString(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return "*" + typeToString(t.X)
	case *ast.SelectorExpr:
		return typeToString(t.X) + "." + t.Sel.Name
	default:
		return fmt.Sprintf("%T", expr)
	}
}

// cleanPackage removes the generated file from a package.
func (g *Generator) cleanPackage(pkgPath string) error {
	path := filepath.Join(pkgPath, OutputFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	fmt.Fprintf(g.opts.Out, "removing %s\n", path)
	if g.opts.DryRun {
		return nil
	}
	return os.Remove(path)
}
