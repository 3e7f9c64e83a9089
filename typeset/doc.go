// Package typeset is the one-call entry point for turning HTML or Markdown
// with TeX into HTML with typeset math.
//
// A Converter owns a TeX input, an HTML output and an optional stylesheet.
// Each Convert parses the content, runs a full find/compile/typeset/update
// pass and renders the tree back to HTML:
//
//	conv, err := typeset.NewConverter()
//	if err != nil {
//		return err
//	}
//	res, err := conv.Convert(ctx, typeset.Input{Content: `<p>\(x^2\)</p>`})
//
// Per-item failures do not stop a pass; they are reported in Result.Failed
// and the item is left in the output as an error node. A Converter is not
// safe for concurrent use: equation numbering and filters live on its TeX
// input. Use ConverterPool to convert in parallel.
package typeset
