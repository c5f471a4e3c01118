// Package xmldoc parses XML text into a small, read-only element tree.
//
// Only the capabilities the table pipeline needs are exposed: local names,
// attributes, children, direct text and the parent link. Namespace prefixes and
// URIs are stripped from every name so callers compare local names only.
package xmldoc

import (
	"strings"
)

// Attr is a single attribute with its namespace stripped.
type Attr struct {
	Name  string
	Value string
}

// Node is the read-only tree capability set consumed by the flattener,
// record detector and row builder. Any markup source that can provide these
// accessors can feed the pipeline.
type Node interface {
	LocalName() string
	Attrs() []Attr
	Children() []Node
	DirectText() string
	Parent() Node
}

// Element is the Node implementation produced by Parse.
type Element struct {
	name     string
	attrs    []Attr
	children []Node
	text     strings.Builder
	parent   *Element
}

var _ Node = (*Element)(nil)

// LocalName returns the element name without namespace prefix or URI.
func (e *Element) LocalName() string {
	return e.name
}

// Attrs returns the element attributes in document order.
func (e *Element) Attrs() []Attr {
	return e.attrs
}

// Children returns the child elements in document order.
func (e *Element) Children() []Node {
	return e.children
}

// DirectText returns the trimmed concatenation of text directly under the
// element, excluding text that belongs to child elements.
func (e *Element) DirectText() string {
	return strings.TrimSpace(e.text.String())
}

// Parent returns the parent element, or nil for the document root.
func (e *Element) Parent() Node {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

// StripNamespace removes a "{uri}" or "prefix:" qualifier from name.
func StripNamespace(name string) string {
	if i := strings.LastIndex(name, "}"); i >= 0 {
		return name[i+1:]
	}
	if i := strings.LastIndex(name, ":"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// Walk visits n and all of its descendants in document order. Returning false
// from fn stops the walk.
func Walk(n Node, fn func(Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, child := range n.Children() {
		if !Walk(child, fn) {
			return false
		}
	}
	return true
}

// SelfAndDescendants returns n followed by every descendant in document order.
func SelfAndDescendants(n Node) []Node {
	var out []Node
	Walk(n, func(node Node) bool {
		out = append(out, node)
		return true
	})
	return out
}

// Path returns the "/"-joined local-name path from the document root to n.
func Path(n Node) string {
	var parts []string
	for cur := n; cur != nil; cur = cur.Parent() {
		parts = append(parts, cur.LocalName())
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

// Document is a parsed XML document.
type Document struct {
	root  *Element
	count int
}

// Root returns the document element.
func (d *Document) Root() Node {
	if d == nil || d.root == nil {
		return nil
	}
	return d.root
}

// Len returns the number of elements in the document.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return d.count
}

// Elements returns the root and all of its descendants in document order.
func (d *Document) Elements() []Node {
	if d == nil || d.root == nil {
		return nil
	}
	out := make([]Node, 0, d.count)
	Walk(d.root, func(n Node) bool {
		out = append(out, n)
		return true
	})
	return out
}

// ElementsByName returns every element whose local name equals name. When
// fold is true the comparison is case-insensitive.
func (d *Document) ElementsByName(name string, fold bool) []Node {
	var out []Node
	for _, n := range d.Elements() {
		if fold && strings.EqualFold(n.LocalName(), name) || !fold && n.LocalName() == name {
			out = append(out, n)
		}
	}
	return out
}
