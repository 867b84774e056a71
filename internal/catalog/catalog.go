// Package catalog holds the storefront's product data.
package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"os"
	"slices"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

//go:embed products.yaml
var defaultProducts []byte

// Product is one catalog item. Description is markdown.
type Product struct {
	ID          int     `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	Price       float64 `yaml:"price" json:"price"`
	Description string  `yaml:"description" json:"description"`
	Image       string  `yaml:"image" json:"image"`
}

// Catalog is an immutable, ordered set of products.
type Catalog struct {
	products []Product
	byID     map[int]int
}

type file struct {
	Products []Product `yaml:"products"`
}

// Parse decodes a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	c := &Catalog{byID: make(map[int]int, len(f.Products))}
	for _, p := range f.Products {
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate product id %d", p.ID)
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	return c, nil
}

// Load reads a YAML catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return Parse(data)
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(defaultProducts)
	if err != nil {
		panic(err)
	}
	return c
}

// Products returns the products in catalog order.
func (c *Catalog) Products() []Product {
	return slices.Clone(c.products)
}

// Get returns the product with id.
func (c *Catalog) Get(id int) (Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

type catalogKey struct{}

// WithCatalog returns a context carrying c.
func WithCatalog(ctx context.Context, c *Catalog) context.Context {
	return context.WithValue(ctx, catalogKey{}, c)
}

// FromContext returns the catalog carried by ctx, or the built-in catalog.
func FromContext(ctx context.Context) *Catalog {
	if c, ok := ctx.Value(catalogKey{}).(*Catalog); ok && c != nil {
		return c
	}
	return builtin()
}

var builtin = sync.OnceValue(Default)

var (
	md     = goldmark.New(goldmark.WithExtensions(extension.GFM))
	policy = bluemonday.UGCPolicy()
)

// DescriptionHTML renders a product description from markdown to
// sanitized HTML.
func DescriptionHTML(p Product) (template.HTML, error) {
	return Markdown(p.Description)
}

// Markdown renders markdown to sanitized HTML.
func Markdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(policy.SanitizeBytes(buf.Bytes())), nil
}
