package mathdoc_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/alnah/go-mathdoc"
	"github.com/alnah/go-mathdoc/chtml"
	"github.com/alnah/go-mathdoc/htmltree"
	"github.com/alnah/go-mathdoc/tex"
)

// Notes:
// - Tests run real passes over htmltree with the TeX input and the CHTML
//   output; nothing is mocked except where a test needs a failure the
//   real processors cannot produce.
// - Round-trip checks compare against the rendering of the freshly parsed
//   tree, since parsing normalizes markup.

func newInput(t *testing.T) *tex.Input {
	t.Helper()
	reg, err := tex.NewBuiltinRegistry()
	if err != nil {
		t.Fatalf("NewBuiltinRegistry() unexpected error: %v", err)
	}
	in, err := tex.NewInput(reg, tex.DefaultOptions())
	if err != nil {
		t.Fatalf("NewInput() unexpected error: %v", err)
	}
	return in
}

func newDoc(t *testing.T, src string, opts ...mathdoc.Option) (*mathdoc.Document, *htmltree.Tree) {
	t.Helper()
	tree, err := htmltree.Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) unexpected error: %v", src, err)
	}
	opts = append([]mathdoc.Option{
		mathdoc.WithInput(newInput(t)),
		mathdoc.WithOutput(chtml.New()),
	}, opts...)
	doc, err := mathdoc.NewDocument(htmltree.New(), tree.Root, opts...)
	if err != nil {
		t.Fatalf("NewDocument() unexpected error: %v", err)
	}
	return doc, tree
}

func render(t *testing.T, tree *htmltree.Tree) string {
	t.Helper()
	out, err := tree.Render()
	if err != nil {
		t.Fatalf("Render() unexpected error: %v", err)
	}
	return out
}

// ---------------------------------------------------------------------------
// TestNewDocument - Construction
// ---------------------------------------------------------------------------

func TestNewDocument(t *testing.T) {
	t.Parallel()

	tree, err := htmltree.Parse(`<p>x</p>`)
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	a := htmltree.New()
	in := mathdoc.WithInput(newInput(t))
	out := mathdoc.WithOutput(chtml.New())

	tests := []struct {
		name    string
		adaptor mathdoc.Adaptor
		root    mathdoc.Node
		opts    []mathdoc.Option
		wantErr error
	}{
		{name: "valid", adaptor: a, root: tree.Root, opts: []mathdoc.Option{in, out}},
		{name: "nil adaptor", root: tree.Root, opts: []mathdoc.Option{in, out}, wantErr: mathdoc.ErrNoAdaptor},
		{name: "nil root", adaptor: a, opts: []mathdoc.Option{in, out}, wantErr: mathdoc.ErrNoRoot},
		{name: "no input", adaptor: a, root: tree.Root, opts: []mathdoc.Option{out}, wantErr: mathdoc.ErrNoInput},
		{name: "no output", adaptor: a, root: tree.Root, opts: []mathdoc.Option{in}, wantErr: mathdoc.ErrNoOutput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc, err := mathdoc.NewDocument(tt.adaptor, tt.root, tt.opts...)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewDocument() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && doc.State() != mathdoc.DocInitial {
				t.Errorf("State() = %v, want initial", doc.State())
			}
		})
	}
}

func TestWithWrapper_PanicsOnEmptyTag(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("WithWrapper(\"\", ...) did not panic")
		}
	}()
	mathdoc.WithWrapper("", "x")
}

// ---------------------------------------------------------------------------
// TestDocument_Stages - State Progression
// ---------------------------------------------------------------------------

func TestDocument_Stages(t *testing.T) {
	t.Parallel()

	doc, tree := newDoc(t, `<p>a \(x\) b $$y$$ c</p>`)
	original := render(t, tree)

	itemStates := func(want mathdoc.State, items []*mathdoc.MathItem) {
		t.Helper()
		for i, it := range items {
			if it.State() != want {
				t.Errorf("item %d State() = %v, want %v", i, it.State(), want)
			}
		}
	}

	if err := doc.Find(); err != nil {
		t.Fatalf("Find() unexpected error: %v", err)
	}
	if doc.State() != mathdoc.DocFound || len(doc.Pending()) != 2 {
		t.Fatalf("after Find: state %v, %d pending; want found, 2", doc.State(), len(doc.Pending()))
	}
	itemStates(mathdoc.StateFound, doc.Pending())

	if err := doc.Compile(); err != nil {
		t.Fatalf("Compile() unexpected error: %v", err)
	}
	itemStates(mathdoc.StateCompiled, doc.Pending())

	if err := doc.Typeset(); err != nil {
		t.Fatalf("Typeset() unexpected error: %v", err)
	}
	itemStates(mathdoc.StateRendered, doc.Pending())
	if got := render(t, tree); got != original {
		t.Errorf("tree changed before UpdateDocument\n got: %s", got)
	}

	if err := doc.UpdateDocument(); err != nil {
		t.Fatalf("UpdateDocument() unexpected error: %v", err)
	}
	if len(doc.Pending()) != 0 || len(doc.Processed()) != 2 {
		t.Fatalf("after UpdateDocument: %d pending, %d processed; want 0, 2",
			len(doc.Pending()), len(doc.Processed()))
	}
	for i, it := range doc.Processed() {
		if !it.Substituted() {
			t.Errorf("item %d not substituted", i)
		}
		if got := doc.Adaptor().Kind(it.Position().Node); got != mathdoc.DefaultWrapperTag {
			t.Errorf("item %d position kind = %q, want wrapper", i, got)
		}
	}

	if err := doc.Reset(); err != nil {
		t.Fatalf("Reset() unexpected error: %v", err)
	}
	if doc.State() != mathdoc.DocInitial || len(doc.Processed()) != 0 {
		t.Errorf("after Reset: state %v, %d processed; want initial, 0", doc.State(), len(doc.Processed()))
	}
	if got := render(t, tree); got != original {
		t.Errorf("Reset() did not restore markup\n got: %s\nwant: %s", got, original)
	}
}

func TestDocument_FindIsIdempotent(t *testing.T) {
	t.Parallel()

	doc, _ := newDoc(t, `<p>\(a\) \(b\)</p>`)
	for range 3 {
		if err := doc.Find(); err != nil {
			t.Fatalf("Find() unexpected error: %v", err)
		}
	}
	if got := len(doc.Pending()); got != 2 {
		t.Errorf("Pending() has %d items after repeated Find, want 2", got)
	}
}

func TestDocument_Clear(t *testing.T) {
	t.Parallel()

	doc, tree := newDoc(t, `<p>\(a\)</p>`)
	original := render(t, tree)
	if err := doc.Typeset(); err != nil {
		t.Fatalf("Typeset() unexpected error: %v", err)
	}
	doc.Clear()

	if doc.State() != mathdoc.DocInitial || len(doc.Pending()) != 0 {
		t.Errorf("after Clear: state %v, %d pending", doc.State(), len(doc.Pending()))
	}
	if got := render(t, tree); got != original {
		t.Errorf("Clear() touched the tree\n got: %s", got)
	}
	if err := doc.Find(); err != nil || len(doc.Pending()) != 1 {
		t.Errorf("Find() after Clear: err %v, %d pending; want nil, 1", err, len(doc.Pending()))
	}
}

// ---------------------------------------------------------------------------
// TestDocument_RoundTrip - Reset Restores Markup
// ---------------------------------------------------------------------------

func TestDocument_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		src   string
		items int
	}{
		{name: "no math", src: `<p>plain text</p>`, items: 0},
		{name: "one inline", src: `<p>a \(x\) b</p>`, items: 1},
		{name: "shared text node", src: `<p>\(a\) and \(b\) and \(c\)</p>`, items: 3},
		{name: "inline and display", src: `<p>a \(x\) b $$y$$ c</p>`, items: 2},
		{name: "environment", src: `<div>\begin{matrix}a&b\end{matrix}</div>`, items: 1},
		{name: "skipped tags", src: `<p>\(a\)</p><pre>\(b\)</pre><code>\(c\)</code>`, items: 1},
		{name: "compile failure", src: `<p>\(\frac{a}\) \(b\)</p>`, items: 2},
		{name: "entities", src: `<p>\(a &lt; b\) &amp; more</p>`, items: 1},
		{
			name:  "full document",
			src:   `<!DOCTYPE html><html><head><title>t</title></head><body><p>\(x\)</p></body></html>`,
			items: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc, tree := newDoc(t, tt.src)
			original := render(t, tree)

			_ = doc.UpdateDocument()
			if got := len(doc.Processed()); got != tt.items {
				t.Fatalf("processed %d items, want %d", got, tt.items)
			}
			if got := render(t, tree); tt.items > 0 && got == original {
				t.Errorf("UpdateDocument() left the tree unchanged")
			}

			if err := doc.Reset(); err != nil {
				t.Fatalf("Reset() unexpected error: %v", err)
			}
			if got := render(t, tree); got != original {
				t.Errorf("round trip\n got: %s\nwant: %s", got, original)
			}
		})
	}
}

func TestDocument_Rerender(t *testing.T) {
	t.Parallel()

	doc, tree := newDoc(t, `<p>a \(x\) b \(y\)</p>`)
	if err := doc.UpdateDocument(); err != nil {
		t.Fatalf("UpdateDocument() unexpected error: %v", err)
	}
	first := render(t, tree)

	if err := doc.Rerender(); err != nil {
		t.Fatalf("Rerender() unexpected error: %v", err)
	}
	if got := render(t, tree); got != first {
		t.Errorf("Rerender() output differs\n got: %s\nwant: %s", got, first)
	}
	if got := len(doc.Processed()); got != 2 {
		t.Errorf("Processed() has %d items, want 2", got)
	}
}

func TestDocument_UpdateTwiceIsNoop(t *testing.T) {
	t.Parallel()

	doc, tree := newDoc(t, `<p>\(x\)</p>`)
	if err := doc.UpdateDocument(); err != nil {
		t.Fatalf("UpdateDocument() unexpected error: %v", err)
	}
	first := render(t, tree)
	if err := doc.UpdateDocument(); err != nil {
		t.Fatalf("second UpdateDocument() unexpected error: %v", err)
	}
	if got := render(t, tree); got != first {
		t.Errorf("second UpdateDocument() changed the tree\n got: %s", got)
	}
	if got := len(doc.Processed()); got != 1 {
		t.Errorf("Processed() has %d items, want 1", got)
	}
}

// ---------------------------------------------------------------------------
// TestDocument_Failures - Isolation and Retargeting
// ---------------------------------------------------------------------------

func TestDocument_CompileFailureIsolated(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	doc, _ := newDoc(t, `<p>\(a\) \(\frac{b}\) \(c\)</p>`, mathdoc.WithLogger(logger))

	err := doc.Compile()
	var ce *mathdoc.CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("Compile() error = %v, want *CompileError", err)
	}
	if ce.Math != `\frac{b}` {
		t.Errorf("CompileError.Math = %q, want %q", ce.Math, `\frac{b}`)
	}
	var ie *mathdoc.ItemError
	if !errors.As(err, &ie) || ie.Index != 1 || ie.Stage != "compile" {
		t.Errorf("ItemError = %+v, want index 1 stage compile", ie)
	}

	for i, it := range doc.Pending() {
		if it.State() != mathdoc.StateCompiled {
			t.Errorf("item %d State() = %v, want compiled", i, it.State())
		}
		if failed := it.CompileErr() != nil; failed != (i == 1) {
			t.Errorf("item %d CompileErr() = %v", i, it.CompileErr())
		}
		if it.Compiled() == nil {
			t.Errorf("item %d has no compiled artifact", i)
		}
	}
	if !strings.Contains(logs.String(), "item failed") {
		t.Errorf("log missing item failure record:\n%s", logs.String())
	}
}

func TestDocument_RetargetErrors(t *testing.T) {
	t.Parallel()

	t.Run("detached text node", func(t *testing.T) {
		t.Parallel()

		doc, _ := newDoc(t, `<p>\(a\)</p>`)
		if err := doc.Typeset(); err != nil {
			t.Fatalf("Typeset() unexpected error: %v", err)
		}
		item := doc.Pending()[0]
		if err := doc.Adaptor().Remove(item.Position().Node); err != nil {
			t.Fatalf("Remove() unexpected error: %v", err)
		}

		err := doc.UpdateDocument()
		var re *mathdoc.RetargetError
		if !errors.As(err, &re) || re.Op != "update" {
			t.Fatalf("UpdateDocument() error = %v, want update *RetargetError", err)
		}
		if !errors.Is(err, mathdoc.ErrNoParent) {
			t.Errorf("UpdateDocument() error = %v, want ErrNoParent", err)
		}
		if item.Substituted() {
			t.Error("failed item reported as substituted")
		}
	})

	t.Run("stale text", func(t *testing.T) {
		t.Parallel()

		doc, _ := newDoc(t, `<p>\(a\)</p>`)
		if err := doc.Typeset(); err != nil {
			t.Fatalf("Typeset() unexpected error: %v", err)
		}
		doc.Pending()[0].Position().Node.(*html.Node).Data = "edited"

		err := doc.UpdateDocument()
		if !errors.Is(err, mathdoc.ErrRetarget) || !errors.Is(err, mathdoc.ErrInvalidOffset) {
			t.Errorf("UpdateDocument() error = %v, want ErrRetarget and ErrInvalidOffset", err)
		}
	})

	t.Run("detached wrapper on reset", func(t *testing.T) {
		t.Parallel()

		doc, _ := newDoc(t, `<p>\(a\)</p>`)
		if err := doc.UpdateDocument(); err != nil {
			t.Fatalf("UpdateDocument() unexpected error: %v", err)
		}
		item := doc.Processed()[0]
		if err := doc.Adaptor().Remove(item.Position().Node); err != nil {
			t.Fatalf("Remove() unexpected error: %v", err)
		}

		err := doc.Reset()
		var re *mathdoc.RetargetError
		if !errors.As(err, &re) || re.Op != "reset" {
			t.Errorf("Reset() error = %v, want reset *RetargetError", err)
		}
		if doc.State() != mathdoc.DocInitial {
			t.Errorf("State() = %v, want initial", doc.State())
		}
	})
}

func newInputWith(t *testing.T, opts tex.Options) *tex.Input {
	t.Helper()
	reg, err := tex.NewBuiltinRegistry()
	if err != nil {
		t.Fatalf("NewBuiltinRegistry() unexpected error: %v", err)
	}
	in, err := tex.NewInput(reg, opts)
	if err != nil {
		t.Fatalf("NewInput() unexpected error: %v", err)
	}
	return in
}

// Notes:
// - The inline source is listed first, so the pending list holds the
//   higher-offset item before the lower one of the same text node.
func TestDocument_SharedTextNodeAcrossInputs(t *testing.T) {
	t.Parallel()

	inlineOnly := tex.DefaultOptions()
	inlineOnly.DisplayMath = nil
	inlineOnly.ProcessEnvironments = false
	displayOnly := tex.DefaultOptions()
	displayOnly.InlineMath = nil
	displayOnly.DisplayMath = []mathdoc.Delimiter{{Start: `\[`, End: `\]`}}

	tree, err := htmltree.Parse(`<p>\[a\] and \(b\)</p>`)
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	doc, err := mathdoc.NewDocument(htmltree.New(), tree.Root,
		mathdoc.WithInput(newInputWith(t, inlineOnly), newInputWith(t, displayOnly)),
		mathdoc.WithOutput(chtml.New()),
	)
	if err != nil {
		t.Fatalf("NewDocument() unexpected error: %v", err)
	}

	if err := doc.UpdateDocument(); err != nil {
		t.Fatalf("UpdateDocument() unexpected error: %v", err)
	}
	items := doc.Processed()
	if len(items) != 2 {
		t.Fatalf("Processed() has %d items, want 2", len(items))
	}
	for _, it := range items {
		if !it.Substituted() {
			t.Errorf("item %q not substituted", it.Math())
		}
	}
	got := render(t, tree)
	if strings.Contains(got, `\(`) || strings.Contains(got, `\[`) {
		t.Errorf("source markup left in tree:\n%s", got)
	}
	if !strings.Contains(got, " and ") {
		t.Errorf("text between items lost:\n%s", got)
	}

	if err := doc.Reset(); err != nil {
		t.Fatalf("Reset() unexpected error: %v", err)
	}
	if got := render(t, tree); got != `<p>\[a\] and \(b\)</p>` {
		t.Errorf("after Reset() got %s", got)
	}
}

// refusingOutput renders through CHTML except for one payload, counting
// the refusals.
type refusingOutput struct {
	*chtml.Output
	refuse string
	calls  *int
}

func (o refusingOutput) Render(item *mathdoc.MathItem, doc *mathdoc.Document) (mathdoc.Node, error) {
	if item.Math() == o.refuse {
		*o.calls++
		return nil, errors.New("render refused")
	}
	return o.Output.Render(item, doc)
}

func TestDocument_RenderFailureNotRetried(t *testing.T) {
	t.Parallel()

	calls := 0
	doc, tree := newDoc(t, `<p>\(a\) \(b\)</p>`,
		mathdoc.WithOutput(refusingOutput{Output: chtml.New(), refuse: "b", calls: &calls}))

	err := doc.UpdateDocument()
	if !errors.Is(err, mathdoc.ErrRender) {
		t.Fatalf("UpdateDocument() error = %v, want ErrRender", err)
	}
	if calls != 1 {
		t.Errorf("Render called %d times for the failing item, want 1", calls)
	}
	if n := strings.Count(err.Error(), "render refused"); n != 1 {
		t.Errorf("failure reported %d times, want 1: %v", n, err)
	}

	items := doc.Processed()
	if len(items) != 2 {
		t.Fatalf("Processed() has %d items, want 2", len(items))
	}
	if !items[0].Substituted() || items[1].Substituted() {
		t.Errorf("Substituted() = %v, %v, want true, false", items[0].Substituted(), items[1].Substituted())
	}
	if got := render(t, tree); !strings.Contains(got, `\(b\)`) {
		t.Errorf("failed item should keep its source text:\n%s", got)
	}
}

// splitFailingAdaptor fails the nth SplitText call.
type splitFailingAdaptor struct {
	*htmltree.Adaptor
	failOn int
	calls  *int
}

func (a splitFailingAdaptor) SplitText(n mathdoc.Node, offset int) (mathdoc.Node, error) {
	*a.calls++
	if *a.calls == a.failOn {
		return nil, errors.New("split refused")
	}
	return a.Adaptor.SplitText(n, offset)
}

func TestMathItem_UpdateAfterPartialSplit(t *testing.T) {
	t.Parallel()

	tree, err := htmltree.Parse(`<p>x \(a\) y</p>`)
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	calls := 0
	a := splitFailingAdaptor{Adaptor: htmltree.New(), failOn: 2, calls: &calls}
	doc, err := mathdoc.NewDocument(a, tree.Root,
		mathdoc.WithInput(newInput(t)),
		mathdoc.WithOutput(chtml.New()),
	)
	if err != nil {
		t.Fatalf("NewDocument() unexpected error: %v", err)
	}

	if err := doc.UpdateDocument(); !errors.Is(err, mathdoc.ErrRetarget) {
		t.Fatalf("UpdateDocument() error = %v, want ErrRetarget", err)
	}
	item := doc.Processed()[0]
	if item.Substituted() {
		t.Fatal("item substituted despite the failed split")
	}

	if err := item.UpdateDocument(doc); err != nil {
		t.Fatalf("retry UpdateDocument() unexpected error: %v", err)
	}
	if !item.Substituted() {
		t.Error("retry did not substitute the item")
	}
	got := render(t, tree)
	if strings.Contains(got, `\(a\)`) || !strings.HasPrefix(got, "<p>x ") || !strings.HasSuffix(got, " y</p>") {
		t.Errorf("rendered after retry:\n%s", got)
	}
}

// failingInput finds math through TeX but fails discovery on demand.
type failingInput struct{ *tex.Input }

func (failingInput) Name() string { return "broken" }

func (failingInput) FindMath(mathdoc.Adaptor, mathdoc.Node) ([]mathdoc.Found, error) {
	return nil, errors.New("boom")
}

func TestDocument_FindFailureIsolated(t *testing.T) {
	t.Parallel()

	doc, _ := newDoc(t, `<p>\(a\)</p>`, mathdoc.WithInput(failingInput{newInput(t)}))

	err := doc.Find()
	if !errors.Is(err, mathdoc.ErrFind) {
		t.Fatalf("Find() error = %v, want ErrFind", err)
	}
	if got := len(doc.Pending()); got != 1 {
		t.Errorf("Pending() has %d items, want 1 from the working input", got)
	}
	if doc.State() != mathdoc.DocFound {
		t.Errorf("State() = %v, want found", doc.State())
	}
}

func TestDocument_WithWrapper(t *testing.T) {
	t.Parallel()

	doc, tree := newDoc(t, `<p>\(x\)</p>`, mathdoc.WithWrapper("span", ""))
	if err := doc.UpdateDocument(); err != nil {
		t.Fatalf("UpdateDocument() unexpected error: %v", err)
	}
	want := `<p><span jax="CHTML"><mjx-math class="MJX-TEX"><mjx-mi><mjx-c>x</mjx-c></mjx-mi></mjx-math></span></p>`
	if got := render(t, tree); got != want {
		t.Errorf("rendered\n got: %s\nwant: %s", got, want)
	}
}
