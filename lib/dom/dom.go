// Package dom is a minimal document model over golang.org/x/net/html that
// the hydrator scans for island markers and mounts components into.
//
// All reads and writes of a Document go through one lock, so concurrently
// hydrating islands observe the document as if it had a single UI thread.
package dom

import (
	"bytes"
	"io"
	"strings"
	"sync"

	"github.com/pthm/islands/lib/marker"
	"golang.org/x/net/html"
)

// Document is a parsed HTML document.
type Document struct {
	mu   sync.Mutex
	root *html.Node
}

// Element is a node of a Document.
type Element struct {
	doc  *Document
	node *html.Node
}

// Parse parses a complete HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return &Document{root: root}, nil
}

// ParseString is Parse for a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Markers returns the island containers in document order, that is every
// element carrying a data-component attribute. The walk does not descend
// into a container, so islands inside another island are not returned.
func (d *Document) Markers() []*Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []*Element
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if _, ok := attr(n, marker.AttrComponent); ok {
				out = append(out, &Element{doc: d, node: n})
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.root)
	return out
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return html.Render(w, d.root)
}

// String returns the document as HTML.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Tag returns the element name.
func (e *Element) Tag() string {
	return e.node.Data
}

// Attr returns the value of an attribute and whether it is present.
func (e *Element) Attr(key string) (string, bool) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return attr(e.node, key)
}

// SetAttr sets an attribute, adding it if absent.
func (e *Element) SetAttr(key, val string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	for i, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == key {
			e.node.Attr[i].Val = val
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: key, Val: val})
}

// HasChildren reports whether the element has any child nodes.
func (e *Element) HasChildren() bool {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.node.FirstChild != nil
}

// InnerHTML serializes the element's children.
func (e *Element) InnerHTML() (string, error) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	var buf bytes.Buffer
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// SetInnerHTML replaces the element's children with the parsed fragment.
func (e *Element) SetInnerHTML(s string) error {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	nodes, err := html.ParseFragment(strings.NewReader(s), e.node)
	if err != nil {
		return err
	}
	removeChildren(e.node)
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
	return nil
}

// Reset removes all of the element's children.
func (e *Element) Reset() {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	removeChildren(e.node)
}

func removeChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
}

// Matches reports whether s, parsed as the element's content, serializes to
// the same markup as the element's current children.
func (e *Element) Matches(s string) (bool, error) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	nodes, err := html.ParseFragment(strings.NewReader(s), e.node)
	if err != nil {
		return false, err
	}
	var want, got bytes.Buffer
	for _, n := range nodes {
		if err := html.Render(&want, n); err != nil {
			return false, err
		}
	}
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&got, c); err != nil {
			return false, err
		}
	}
	return want.String() == got.String(), nil
}
