// Package htmltree implements mathdoc.Adaptor on top of golang.org/x/net/html.
package htmltree

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/net/html"

	"github.com/alnah/go-mathdoc"
)

// Compile-time interface implementation check.
var _ mathdoc.Adaptor = (*Adaptor)(nil)

// Adaptor exposes *html.Node trees through mathdoc.Adaptor.
// Nodes passed in must be *html.Node values produced by this package or by
// golang.org/x/net/html; anything else is treated as no node.
type Adaptor struct{}

// New creates an Adaptor.
func New() *Adaptor {
	return &Adaptor{}
}

// node unwraps a mathdoc.Node. Foreign values yield nil.
func node(n mathdoc.Node) *html.Node {
	h, _ := n.(*html.Node)
	return h
}

// wrap converts a possibly nil *html.Node into an untyped-nil-safe Node.
func wrap(h *html.Node) mathdoc.Node {
	if h == nil {
		return nil
	}
	return h
}

func (a *Adaptor) Kind(n mathdoc.Node) string {
	h := node(n)
	if h == nil {
		return ""
	}
	switch h.Type {
	case html.TextNode:
		return mathdoc.KindText
	case html.CommentNode:
		return mathdoc.KindComment
	case html.DocumentNode:
		return mathdoc.KindDocument
	case html.ElementNode:
		return strings.ToLower(h.Data)
	case html.DoctypeNode:
		return "#doctype"
	}
	return ""
}

func (a *Adaptor) Value(n mathdoc.Node) string {
	h := node(n)
	if h == nil || (h.Type != html.TextNode && h.Type != html.CommentNode) {
		return ""
	}
	return h.Data
}

func (a *Adaptor) TextContent(n mathdoc.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(h *html.Node) {
		if h.Type == html.TextNode {
			b.WriteString(h.Data)
		}
		for c := h.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if h := node(n); h != nil {
		walk(h)
	}
	return b.String()
}

func (a *Adaptor) Parent(n mathdoc.Node) mathdoc.Node {
	if h := node(n); h != nil {
		return wrap(h.Parent)
	}
	return nil
}

func (a *Adaptor) Children(n mathdoc.Node) []mathdoc.Node {
	h := node(n)
	if h == nil {
		return nil
	}
	var out []mathdoc.Node
	for c := h.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

func (a *Adaptor) FirstChild(n mathdoc.Node) mathdoc.Node {
	if h := node(n); h != nil {
		return wrap(h.FirstChild)
	}
	return nil
}

func (a *Adaptor) LastChild(n mathdoc.Node) mathdoc.Node {
	if h := node(n); h != nil {
		return wrap(h.LastChild)
	}
	return nil
}

func (a *Adaptor) Next(n mathdoc.Node) mathdoc.Node {
	if h := node(n); h != nil {
		return wrap(h.NextSibling)
	}
	return nil
}

func (a *Adaptor) Previous(n mathdoc.Node) mathdoc.Node {
	if h := node(n); h != nil {
		return wrap(h.PrevSibling)
	}
	return nil
}

func (a *Adaptor) Attribute(n mathdoc.Node, name string) (string, bool) {
	h := node(n)
	if h == nil {
		return "", false
	}
	for _, attr := range h.Attr {
		if attr.Namespace == "" && attr.Key == name {
			return attr.Val, true
		}
	}
	return "", false
}

func (a *Adaptor) SetAttribute(n mathdoc.Node, name, value string) {
	h := node(n)
	if h == nil || h.Type != html.ElementNode {
		return
	}
	for i, attr := range h.Attr {
		if attr.Namespace == "" && attr.Key == name {
			h.Attr[i].Val = value
			return
		}
	}
	h.Attr = append(h.Attr, html.Attribute{Key: name, Val: value})
}

func (a *Adaptor) RemoveAttribute(n mathdoc.Node, name string) {
	h := node(n)
	if h == nil {
		return
	}
	h.Attr = slices.DeleteFunc(h.Attr, func(attr html.Attribute) bool {
		return attr.Namespace == "" && attr.Key == name
	})
}

func (a *Adaptor) classes(n mathdoc.Node) []string {
	v, _ := a.Attribute(n, "class")
	return strings.Fields(v)
}

func (a *Adaptor) HasClass(n mathdoc.Node, name string) bool {
	if name == "" {
		return false
	}
	return slices.Contains(a.classes(n), name)
}

func (a *Adaptor) AddClass(n mathdoc.Node, name string) {
	if name == "" || a.HasClass(n, name) {
		return
	}
	a.SetAttribute(n, "class", strings.Join(append(a.classes(n), name), " "))
}

func (a *Adaptor) RemoveClass(n mathdoc.Node, name string) {
	classes := a.classes(n)
	kept := slices.DeleteFunc(classes, func(c string) bool { return c == name })
	if len(kept) == 0 {
		a.RemoveAttribute(n, "class")
		return
	}
	a.SetAttribute(n, "class", strings.Join(kept, " "))
}

func (a *Adaptor) CreateElement(tag string) mathdoc.Node {
	return &html.Node{Type: html.ElementNode, Data: tag}
}

func (a *Adaptor) CreateText(text string) mathdoc.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

// detach removes h from its parent, if any.
func detach(h *html.Node) {
	if h.Parent != nil {
		h.Parent.RemoveChild(h)
	}
}

func (a *Adaptor) Append(parent, child mathdoc.Node) {
	p, c := node(parent), node(child)
	if p == nil || c == nil {
		return
	}
	detach(c)
	p.AppendChild(c)
}

func (a *Adaptor) InsertBefore(n, ref mathdoc.Node) error {
	h, r := node(n), node(ref)
	if h == nil || r == nil {
		return fmt.Errorf("htmltree: insert: %w", ErrForeignNode)
	}
	if r.Parent == nil {
		return mathdoc.ErrNoParent
	}
	detach(h)
	r.Parent.InsertBefore(h, r)
	return nil
}

func (a *Adaptor) Replace(newNode, oldNode mathdoc.Node) error {
	h, old := node(newNode), node(oldNode)
	if h == nil || old == nil {
		return fmt.Errorf("htmltree: replace: %w", ErrForeignNode)
	}
	if old.Parent == nil {
		return mathdoc.ErrNoParent
	}
	if h == old {
		return nil
	}
	detach(h)
	parent := old.Parent
	parent.InsertBefore(h, old)
	parent.RemoveChild(old)
	return nil
}

func (a *Adaptor) Remove(n mathdoc.Node) error {
	h := node(n)
	if h == nil {
		return fmt.Errorf("htmltree: remove: %w", ErrForeignNode)
	}
	if h.Parent == nil {
		return mathdoc.ErrNoParent
	}
	h.Parent.RemoveChild(h)
	return nil
}

func (a *Adaptor) Clone(n mathdoc.Node) mathdoc.Node {
	return wrap(clone(node(n)))
}

func clone(h *html.Node) *html.Node {
	if h == nil {
		return nil
	}
	c := &html.Node{
		Type:      h.Type,
		DataAtom:  h.DataAtom,
		Data:      h.Data,
		Namespace: h.Namespace,
		Attr:      slices.Clone(h.Attr),
	}
	for child := h.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(clone(child))
	}
	return c
}

func (a *Adaptor) SplitText(n mathdoc.Node, offset int) (mathdoc.Node, error) {
	h := node(n)
	if h == nil || h.Type != html.TextNode {
		return nil, fmt.Errorf("htmltree: split: %w", ErrNotText)
	}
	if offset < 0 || offset > len(h.Data) {
		return nil, fmt.Errorf("%w: %d in %d bytes", mathdoc.ErrInvalidOffset, offset, len(h.Data))
	}
	if h.Parent == nil {
		return nil, mathdoc.ErrNoParent
	}
	rest := &html.Node{Type: html.TextNode, Data: h.Data[offset:]}
	h.Data = h.Data[:offset]
	h.Parent.InsertBefore(rest, h.NextSibling)
	return rest, nil
}

func (a *Adaptor) Head(doc mathdoc.Node) mathdoc.Node {
	return wrap(findElement(node(doc), "head"))
}

// Body returns the <body> element, or doc itself when there is none.
func (a *Adaptor) Body(doc mathdoc.Node) mathdoc.Node {
	if b := findElement(node(doc), "body"); b != nil {
		return b
	}
	return wrap(node(doc))
}

func findElement(h *html.Node, tag string) *html.Node {
	if h == nil {
		return nil
	}
	if h.Type == html.ElementNode && strings.EqualFold(h.Data, tag) {
		return h
	}
	for c := h.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}
