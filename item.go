package mathdoc

import "fmt"

// MathItem is one math occurrence tracked through its lifecycle.
//
// Stage methods are idempotent: invoking one on an item already at or past
// that stage does nothing. Each stage first brings the item up to the
// previous stage, so callers may jump straight to RenderOutput.
type MathItem struct {
	source    string
	math      string
	display   bool
	delim     Delimiter
	pos       Position
	input     InputProcessor
	state     State
	compiled  any
	converted any
	rendered  Node
	compErr   error
	inTree    bool // the wrapper, not the source text, is in the tree
}

// NewMathItem creates an item in StateFound from a scan result.
func NewMathItem(f Found, input InputProcessor) *MathItem {
	return &MathItem{
		source:  f.Source,
		math:    f.Math,
		display: f.Display,
		delim:   f.Delimiter,
		pos:     f.Position,
		input:   input,
		state:   StateFound,
	}
}

func (it *MathItem) Math() string { return it.math }
func (it *MathItem) Display() bool { return it.display }
func (it *MathItem) Delimiter() Delimiter { return it.delim }
func (it *MathItem) Position() Position { return it.pos }
func (it *MathItem) State() State { return it.state }
func (it *MathItem) Input() InputProcessor { return it.input }
func (it *MathItem) Compiled() any { return it.compiled }
func (it *MathItem) Converted() any { return it.converted }
func (it *MathItem) Rendered() Node { return it.rendered }
func (it *MathItem) CompileErr() error { return it.compErr }
func (it *MathItem) Substituted() bool { return it.inTree }
func (it *MathItem) String() string { return it.SourceText() }

// SourceText returns the original markup including delimiters. When no
// literal snapshot was captured it is rebuilt from the delimiters and payload.
func (it *MathItem) SourceText() string {
	if it.source != "" {
		return it.source
	}
	return it.delim.Start + it.math + it.delim.End
}

// RenderInput compiles the item (Found → Compiled). A compile failure is
// returned as a *CompileError but the item still advances, holding the
// input processor's error placeholder as its compiled artifact.
func (it *MathItem) RenderInput(doc *Document) error {
	if it.state >= StateCompiled {
		return nil
	}
	if it.input == nil {
		return fmt.Errorf("%w: item %q has no input processor", ErrCompile, it.math)
	}
	compiled, err := it.input.Compile(it, doc)
	if err != nil {
		it.compiled = it.input.FormatError(err)
		it.compErr = err
		it.state = StateCompiled
		return &CompileError{Math: it.math, Err: err}
	}
	it.compiled = compiled
	it.compErr = nil
	it.state = StateCompiled
	return nil
}

// Convert runs the output processor's conversion (Compiled → Converted).
func (it *MathItem) Convert(doc *Document) error {
	if it.state >= StateConverted {
		return nil
	}
	if it.state < StateCompiled {
		if err := it.RenderInput(doc); err != nil && it.state < StateCompiled {
			return err
		}
	}
	converted, err := doc.output.Convert(it, doc)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrConvert, it.math, err)
	}
	it.converted = converted
	it.state = StateConverted
	return nil
}

// RenderOutput produces the substitutable node (Converted → Rendered).
func (it *MathItem) RenderOutput(doc *Document) error {
	if it.state >= StateRendered {
		return nil
	}
	if it.state < StateConverted {
		if err := it.Convert(doc); err != nil {
			return err
		}
	}
	rendered, err := doc.output.Render(it, doc)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrRender, it.math, err)
	}
	it.rendered = rendered
	it.state = StateRendered
	return nil
}

// UpdateDocument substitutes the rendered node for the math span. The span
// is first split out of its text node so surrounding text is kept, then
// replaced by a wrapper element holding the rendered node. The item's
// position is retargeted to the wrapper.
func (it *MathItem) UpdateDocument(doc *Document) error {
	if it.inTree {
		return nil
	}
	if it.state < StateRendered {
		if err := it.RenderOutput(doc); err != nil {
			return err
		}
	}

	a := doc.adaptor
	if it.pos.Node == nil || a.Parent(it.pos.Node) == nil {
		return &RetargetError{Op: "update", Math: it.math, Err: ErrNoParent}
	}
	span, err := it.isolate(a)
	if err != nil {
		return &RetargetError{Op: "update", Math: it.math, Err: err}
	}

	wrapper := doc.newWrapper(it)
	a.Append(wrapper, it.rendered)
	if err := a.Replace(wrapper, span); err != nil {
		return &RetargetError{Op: "update", Math: it.math, Err: err}
	}
	it.pos = Position{Node: wrapper}
	it.inTree = true
	return nil
}

// isolate returns a text node holding exactly the item's span, splitting
// the node the item was found in when needed. Non-text nodes are returned
// unchanged.
func (it *MathItem) isolate(a Adaptor) (Node, error) {
	node := it.pos.Node
	if a.Kind(node) != KindText {
		return node, nil
	}
	value := a.Value(node)
	start, end := it.pos.Start, it.pos.End
	if start < 0 || end > len(value) || start > end {
		return nil, fmt.Errorf("%w: [%d,%d) in %d bytes", ErrInvalidOffset, start, end, len(value))
	}
	if it.source != "" && value[start:end] != it.source {
		return nil, fmt.Errorf("%w: text at [%d,%d) no longer matches", ErrInvalidOffset, start, end)
	}
	if start > 0 {
		rest, err := a.SplitText(node, start)
		if err != nil {
			return nil, err
		}
		node = rest
		// The prefix now lives in its own node; a failure below must
		// leave a position that still addresses the span.
		it.pos = Position{Node: node, Start: 0, End: end - start}
	}
	if n := end - start; n < len(a.Value(node)) {
		if _, err := a.SplitText(node, n); err != nil {
			return nil, err
		}
	}
	return node, nil
}

// Reset restores the original markup when the item is substituted, clears
// every derived artifact and returns the item to StateRemoved. The item's
// position is retargeted to the restored text node.
func (it *MathItem) Reset(doc *Document) error {
	if it.inTree {
		a := doc.adaptor
		node := it.pos.Node
		if node == nil || a.Parent(node) == nil {
			return &RetargetError{Op: "reset", Math: it.math, Err: ErrNoParent}
		}
		original := it.SourceText()
		text := a.CreateText(original)
		if err := a.Replace(text, node); err != nil {
			return &RetargetError{Op: "reset", Math: it.math, Err: err}
		}
		it.pos = Position{Node: text, Start: 0, End: len(original)}
		it.inTree = false
	}
	it.compiled = nil
	it.converted = nil
	it.rendered = nil
	it.compErr = nil
	it.state = StateRemoved
	return nil
}
