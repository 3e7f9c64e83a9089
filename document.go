package mathdoc

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"slices"
)

// Document drives a whole pass over one tree: find, compile, typeset,
// substitute, and the inverse reset.
//
// A Document is not safe for concurrent use; exactly one pass may be in
// flight at a time.
type Document struct {
	adaptor      Adaptor
	root         Node
	inputs       []InputProcessor
	output       OutputProcessor
	logger       *slog.Logger
	wrapperTag   string
	wrapperClass string

	pending   *MathList
	processed *MathList
	state     DocState
}

// NewDocument creates a Document over the tree rooted at root.
// At least one input processor and an output processor are required.
func NewDocument(adaptor Adaptor, root Node, opts ...Option) (*Document, error) {
	if adaptor == nil {
		return nil, ErrNoAdaptor
	}
	if root == nil {
		return nil, ErrNoRoot
	}

	d := &Document{
		adaptor:      adaptor,
		root:         root,
		logger:       slog.New(slog.DiscardHandler),
		wrapperTag:   DefaultWrapperTag,
		wrapperClass: DefaultWrapperClass,
		pending:      NewMathList(),
		processed:    NewMathList(),
	}
	for _, opt := range opts {
		opt(d)
	}

	if len(d.inputs) == 0 {
		return nil, ErrNoInput
	}
	if d.output == nil {
		return nil, ErrNoOutput
	}
	return d, nil
}

func (d *Document) Adaptor() Adaptor { return d.adaptor }
func (d *Document) Root() Node { return d.root }
func (d *Document) Output() OutputProcessor { return d.output }
func (d *Document) Logger() *slog.Logger { return d.logger }
func (d *Document) State() DocState { return d.state }

// Pending returns the items not yet substituted, in document order.
func (d *Document) Pending() []*MathItem { return d.pending.Items() }

// Processed returns the items currently substituted into the tree.
func (d *Document) Processed() []*MathItem { return d.processed.Items() }

// Find scans every input source and appends the results to the pending
// list (Initial → Found). It is a no-op once the document has been found.
// A failing source is reported but does not stop the other sources; the
// document still counts as found, so call Clear before retrying.
func (d *Document) Find() error {
	if d.state >= DocFound {
		return nil
	}

	var errs []error
	for _, input := range d.inputs {
		found, err := input.FindMath(d.adaptor, d.root)
		if err != nil {
			d.logger.Warn("find failed", "input", input.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%w: %s: %w", ErrFind, input.Name(), err))
			continue
		}
		for _, f := range found {
			d.pending.Append(NewMathItem(f, input))
		}
		d.logger.Debug("found math", "input", input.Name(), "count", len(found))
	}

	d.state = DocFound
	return errors.Join(errs...)
}

// Compile compiles every pending item (Found → Compiled), running Find
// first if needed. Compile errors are isolated per item: every item still
// reaches StateCompiled, and the errors are returned joined.
func (d *Document) Compile() error {
	if d.state >= DocCompiled {
		return nil
	}
	findErr := d.Find()

	itemErrs := d.pending.RenderInput(d)
	d.logFailures("compile", itemErrs)
	d.state = DocCompiled
	return errors.Join(findErr, joinItemErrors(itemErrs))
}

// Typeset converts and renders every pending item (Compiled → Typeset),
// running Compile first if needed.
func (d *Document) Typeset() error {
	if d.state >= DocTypeset {
		return nil
	}
	compileErr := d.Compile()

	convertErrs := d.pending.Convert(d)
	renderErrs := d.pending.each("render", func(it *MathItem) error {
		if it.state < StateConverted {
			return nil // already reported by convert
		}
		return it.RenderOutput(d)
	})
	d.logFailures("convert", convertErrs)
	d.logFailures("render", renderErrs)
	d.state = DocTypeset
	return errors.Join(compileErr, joinItemErrors(convertErrs), joinItemErrors(renderErrs))
}

// UpdateDocument substitutes every rendered pending item into the tree and
// moves all pending items to the processed list. Items sharing a text node
// are substituted from the highest offset down, whatever source found them,
// so the offsets of the others stay valid. Items that failed to convert or
// render were reported by Typeset and stay unsubstituted. This is the only
// stage that mutates the tree.
func (d *Document) UpdateDocument() error {
	typesetErr := d.Typeset()

	items := d.pending.items
	var itemErrs []*ItemError
	skipped := 0
	for _, i := range substitutionOrder(items) {
		it := items[i]
		if it.state < StateRendered {
			skipped++
			continue
		}
		if err := it.UpdateDocument(d); err != nil {
			itemErrs = append(itemErrs, &ItemError{Index: i, Stage: "update", Err: err})
		}
	}
	slices.SortFunc(itemErrs, func(a, b *ItemError) int { return cmp.Compare(a.Index, b.Index) })
	d.logFailures("update", itemErrs)
	d.logger.Debug("updated document", "count", len(items), "failed", len(itemErrs), "skipped", skipped)

	d.processed.Append(items...)
	d.pending.Clear()
	return errors.Join(typesetErr, joinItemErrors(itemErrs))
}

// substitutionOrder returns item indexes grouped by the node each item
// points at, groups in first-seen order, and by descending start offset
// within a group.
func substitutionOrder(items []*MathItem) []int {
	group := make(map[Node]int, len(items))
	order := make([]int, len(items))
	for i, it := range items {
		order[i] = i
		if _, ok := group[it.pos.Node]; !ok {
			group[it.pos.Node] = i
		}
	}
	slices.SortStableFunc(order, func(a, b int) int {
		ia, ib := items[a], items[b]
		if c := cmp.Compare(group[ia.pos.Node], group[ib.pos.Node]); c != 0 {
			return c
		}
		return cmp.Compare(ib.pos.Start, ia.pos.Start)
	})
	return order
}

// Reset restores the original markup of every processed item, empties
// both lists and returns the document to DocInitial.
func (d *Document) Reset() error {
	var itemErrs []*ItemError
	for i, it := range d.processed.items {
		if err := it.Reset(d); err != nil {
			itemErrs = append(itemErrs, &ItemError{Index: i, Stage: "reset", Err: err})
		}
	}
	d.logFailures("reset", itemErrs)

	d.processed.Clear()
	d.pending.Clear()
	d.state = DocInitial
	return joinItemErrors(itemErrs)
}

// Clear drops the pending items without touching the tree and returns the
// document to DocInitial. Processed items stay substituted.
func (d *Document) Clear() {
	d.pending.Clear()
	d.state = DocInitial
}

// Rerender resets the document and runs a full pass again.
func (d *Document) Rerender() error {
	resetErr := d.Reset()
	return errors.Join(resetErr, d.UpdateDocument())
}

// newWrapper builds the element that holds a rendered item in the tree.
func (d *Document) newWrapper(it *MathItem) Node {
	el := d.adaptor.CreateElement(d.wrapperTag)
	if d.wrapperClass != "" {
		d.adaptor.AddClass(el, d.wrapperClass)
	}
	d.adaptor.SetAttribute(el, "jax", d.output.Name())
	if it.display {
		d.adaptor.SetAttribute(el, "display", "true")
	}
	return el
}

func (d *Document) logFailures(stage string, errs []*ItemError) {
	for _, e := range errs {
		d.logger.Warn("item failed", "stage", stage, "index", e.Index, "error", e.Err)
	}
}

func joinItemErrors(errs []*ItemError) error {
	if len(errs) == 0 {
		return nil
	}
	out := make([]error, len(errs))
	for i, e := range errs {
		out[i] = e
	}
	return errors.Join(out...)
}
