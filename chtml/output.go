// Package chtml renders compiled TeX as a tree of custom HTML elements and
// injects the stylesheet those elements need.
package chtml

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/alnah/go-mathdoc"
	"github.com/alnah/go-mathdoc/tex"
)

// OutputName is the name the output processor reports. It ends up in the
// jax attribute of every wrapper element.
const OutputName = "CHTML"

// RootClass is set on every top-level mjx-math element.
const RootClass = "MJX-TEX"

// ErrUnsupported is returned when an item was compiled by an input whose
// artifact is not a *tex.Node.
var ErrUnsupported = errors.New("unsupported compiled math")

// Compile-time interface implementation check.
var _ mathdoc.OutputProcessor = (*Output)(nil)

// variantClasses maps mathvariant values to the classes the stylesheet
// defines.
var variantClasses = map[string]string{
	"normal":        "mjx-n",
	"bold":          "mjx-b",
	"italic":        "mjx-i",
	"bold-italic":   "mjx-bi",
	"double-struck": "mjx-ds",
	"script":        "mjx-s",
	"sans-serif":    "mjx-ss",
	"monospace":     "mjx-ty",
}

// Output is the HTML output processor.
type Output struct {
	logger *slog.Logger
}

// Option configures an Output.
type Option func(*Output)

// WithLogger sets the logger for conversion diagnostics. Nil is ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Output) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New creates an Output.
func New(opts ...Option) *Output {
	o := &Output{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Output) Name() string { return OutputName }

// Convert builds the mjx-math element tree for the item's compiled math.
// Error placeholders convert like any other tree.
func (o *Output) Convert(item *mathdoc.MathItem, doc *mathdoc.Document) (any, error) {
	root, ok := item.Compiled().(*tex.Node)
	if !ok || root == nil {
		return nil, fmt.Errorf("%w: %T", ErrUnsupported, item.Compiled())
	}
	a := doc.Adaptor()
	el := o.build(a, root)
	o.logger.Debug("converted math", "math", item.Math(), "display", item.Display())
	return el, nil
}

// Render returns the converted element, marking display math as a block.
func (o *Output) Render(item *mathdoc.MathItem, doc *mathdoc.Document) (mathdoc.Node, error) {
	el, ok := item.Converted().(mathdoc.Node)
	if !ok || el == nil {
		return nil, fmt.Errorf("%w: %T", ErrUnsupported, item.Converted())
	}
	if item.Display() {
		doc.Adaptor().SetAttribute(el, "display", "block")
	}
	return el, nil
}

func (o *Output) build(a mathdoc.Adaptor, n *tex.Node) mathdoc.Node {
	if n.Kind == tex.KindMath {
		el := a.CreateElement("mjx-math")
		a.AddClass(el, RootClass)
		o.attrs(a, el, n, "display", "tag")
		for _, c := range n.Children {
			a.Append(el, o.build(a, c))
		}
		if tag, ok := n.Attr("tag"); ok {
			label := a.CreateElement("mjx-tag")
			a.Append(label, a.CreateText(tag))
			a.Append(el, label)
		}
		return el
	}

	el := a.CreateElement("mjx-" + n.Kind)
	o.attrs(a, el, n)
	if n.IsLeaf() && n.Text != "" {
		c := a.CreateElement("mjx-c")
		a.Append(c, a.CreateText(n.Text))
		a.Append(el, c)
	}
	for _, c := range n.Children {
		a.Append(el, o.build(a, c))
	}
	return el
}

// attrs copies n's attributes onto el in name order, turning mathvariant
// into a class and widths into inline style.
func (o *Output) attrs(a mathdoc.Adaptor, el mathdoc.Node, n *tex.Node, skip ...string) {
	for _, k := range slices.Sorted(maps.Keys(n.Attrs)) {
		if slices.Contains(skip, k) {
			continue
		}
		v := n.Attrs[k]
		switch k {
		case "mathvariant":
			class, ok := variantClasses[v]
			if !ok {
				class = "mjx-" + v
			}
			a.AddClass(el, class)
		case "width":
			a.SetAttribute(el, "style", "margin-left: "+v+";")
		default:
			a.SetAttribute(el, k, v)
		}
	}
}
