package tex

import (
	"maps"
	"slices"
	"strings"
)

// Node kinds produced by the parser. They follow MathML element names.
const (
	KindMath   = "math"
	KindRow    = "mrow"
	KindIdent  = "mi"
	KindNumber = "mn"
	KindOp     = "mo"
	KindText   = "mtext"
	KindSpace  = "mspace"
	KindSup    = "msup"
	KindSub    = "msub"
	KindSubSup = "msubsup"
	KindFrac   = "mfrac"
	KindSqrt   = "msqrt"
	KindRoot   = "mroot"
	KindTable  = "mtable"
	KindTR     = "mtr"
	KindTD     = "mtd"
	KindError  = "merror"
)

// Node is one element of the compiled math tree.
type Node struct {
	Kind     string
	Text     string // leaf content for mi, mn, mo and mtext
	Attrs    map[string]string
	Children []*Node
}

// Leaf creates a token node.
func Leaf(kind, text string) *Node {
	return &Node{Kind: kind, Text: text}
}

// Elem creates an element node with the given children.
func Elem(kind string, children ...*Node) *Node {
	return &Node{Kind: kind, Children: children}
}

// SetAttr sets an attribute and returns n.
func (n *Node) SetAttr(name, value string) *Node {
	if n.Attrs == nil {
		n.Attrs = make(map[string]string)
	}
	n.Attrs[name] = value
	return n
}

// Attr returns an attribute value.
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.Attrs[name]
	return v, ok
}

// IsLeaf reports whether n is a token node.
func (n *Node) IsLeaf() bool {
	switch n.Kind {
	case KindIdent, KindNumber, KindOp, KindText:
		return true
	}
	return false
}

// Walk calls fn for n and every descendant, depth first. Returning false
// skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// String renders n as MathML-like markup, attributes sorted by name.
func (n *Node) String() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	if n == nil {
		return
	}
	b.WriteByte('<')
	b.WriteString(n.Kind)
	for _, k := range slices.Sorted(maps.Keys(n.Attrs)) {
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteString(`="`)
		b.WriteString(escape(n.Attrs[k]))
		b.WriteByte('"')
	}
	b.WriteByte('>')
	b.WriteString(escape(n.Text))
	for _, c := range n.Children {
		c.write(b)
	}
	b.WriteString("</")
	b.WriteString(n.Kind)
	b.WriteByte('>')
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escape(s string) string { return escaper.Replace(s) }

// row wraps nodes in an mrow unless there is exactly one.
func row(nodes []*Node) *Node {
	if len(nodes) == 1 {
		return nodes[0]
	}
	return Elem(KindRow, nodes...)
}
