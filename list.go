package mathdoc

// MathList is an ordered collection of items in document scan order.
// It is never reordered.
type MathList struct {
	items []*MathItem
}

// NewMathList creates a list holding items in the given order.
func NewMathList(items ...*MathItem) *MathList {
	return &MathList{items: items}
}

func (l *MathList) Append(items ...*MathItem) { l.items = append(l.items, items...) }
func (l *MathList) Clear() { l.items = nil }
func (l *MathList) Len() int { return len(l.items) }
func (l *MathList) At(i int) *MathItem { return l.items[i] }

// Items returns a copy of the underlying slice.
func (l *MathList) Items() []*MathItem {
	out := make([]*MathItem, len(l.items))
	copy(out, l.items)
	return out
}

// RenderInput compiles every item. Failures are collected per item and do
// not stop the batch.
func (l *MathList) RenderInput(doc *Document) []*ItemError {
	return l.each("compile", func(it *MathItem) error { return it.RenderInput(doc) })
}

// Convert converts every item.
func (l *MathList) Convert(doc *Document) []*ItemError {
	return l.each("convert", func(it *MathItem) error { return it.Convert(doc) })
}

// RenderOutput renders every item.
func (l *MathList) RenderOutput(doc *Document) []*ItemError {
	return l.each("render", func(it *MathItem) error { return it.RenderOutput(doc) })
}

func (l *MathList) each(stage string, fn func(*MathItem) error) []*ItemError {
	var errs []*ItemError
	for i, it := range l.items {
		if err := fn(it); err != nil {
			errs = append(errs, &ItemError{Index: i, Stage: stage, Err: err})
		}
	}
	return errs
}
