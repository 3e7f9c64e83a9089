// Package mathdoc finds TeX math in a tree-structured document and drives
// every occurrence through compilation, typesetting and in-place
// substitution, with a reversible reset.
//
// # Quick Start
//
// Parse HTML, build a TeX input and an output processor, then run a pass:
//
//	tree, err := htmltree.Parse(content)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	reg, _ := tex.NewBuiltinRegistry()
//	input, err := tex.NewInput(reg, tex.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	doc, err := mathdoc.NewDocument(htmltree.New(), tree.Root,
//	    mathdoc.WithInput(input),
//	    mathdoc.WithOutput(chtml.New()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := doc.UpdateDocument(); err != nil {
//	    log.Println(err) // per-item failures; the rest was substituted
//	}
//
// For files and batches, the typeset package wraps all of this in a
// Converter and a ConverterPool.
//
// # Pipeline
//
// A Document moves through these stages, each running the previous ones
// when needed:
//
//  1. Find: input processors scan the tree and return candidate spans
//  2. Compile: each item's TeX is parsed into an internal tree
//  3. Typeset: the output processor converts and renders each item
//  4. UpdateDocument: rendered nodes replace the source text
//
// Reset puts the original text back and empties the document. Only
// UpdateDocument and Reset mutate the tree.
//
// # Items
//
// Every occurrence is a MathItem. Its state only moves forward
// (found, compiled, converted, rendered) until Reset returns it to
// removed. Stage methods are idempotent.
//
// # Errors
//
// Failures are isolated per item. A TeX error does not stop the pass: the
// item is compiled to an error placeholder, rendered like any other, and
// the error is returned as a *CompileError inside an *ItemError. Position
// problems at substitution or reset time are *RetargetError values.
// Configuration errors surface from tex.NewInput before any tree is
// touched.
//
// # Trees
//
// The engine only reaches the document through Adaptor. The htmltree
// package implements it for golang.org/x/net/html.
package mathdoc
