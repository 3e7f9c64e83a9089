package typeset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/alnah/go-mathdoc"
	"github.com/alnah/go-mathdoc/chtml"
	"github.com/alnah/go-mathdoc/htmltree"
	"github.com/alnah/go-mathdoc/internal/assets"
	"github.com/alnah/go-mathdoc/internal/fileutil"
	"github.com/alnah/go-mathdoc/internal/mdmath"
	"github.com/alnah/go-mathdoc/tex"
)

// Compile-time interface implementation checks.
var (
	_ mathdoc.InputProcessor  = (*tex.Input)(nil)
	_ mathdoc.OutputProcessor = (*chtml.Output)(nil)
	_ mathdoc.Adaptor         = (*htmltree.Adaptor)(nil)
)

// Converter runs the discovery and typesetting pipeline over one document
// at a time. Create with NewConverter.
type Converter struct {
	texOpts      tex.Options
	registry     *tex.Registry
	logger       *slog.Logger
	styleInput   string
	noStyle      bool
	assetPath    string
	wrapperTag   string
	wrapperClass string

	adaptor  *htmltree.Adaptor
	input    *tex.Input
	output   *chtml.Output
	markdown *mdmath.Converter
	style    string
}

// NewConverter creates a Converter. Configuration problems (unknown
// packages, bad delimiters, missing styles) are reported here, before any
// document is touched.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		texOpts:      tex.DefaultOptions(),
		logger:       slog.New(slog.DiscardHandler),
		wrapperTag:   mathdoc.DefaultWrapperTag,
		wrapperClass: mathdoc.DefaultWrapperClass,
		adaptor:      htmltree.New(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.registry == nil {
		reg, err := tex.NewBuiltinRegistry()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
		c.registry = reg
	}

	input, err := tex.NewInput(c.registry, c.texOpts, tex.WithLogger(c.logger))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	c.input = input
	c.output = chtml.New(chtml.WithLogger(c.logger))
	c.markdown = mdmath.NewConverter(mdmath.Delimiters{
		Inline:       c.texOpts.InlineMath,
		Display:      c.texOpts.DisplayMath,
		Escapes:      c.texOpts.ProcessEscapes,
		Environments: c.texOpts.ProcessEnvironments,
	})

	if !c.noStyle {
		if err := c.resolveStyle(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// resolveStyle loads the stylesheet named by styleInput: a file path is
// read directly, anything else goes through the asset resolver.
func (c *Converter) resolveStyle() error {
	name := c.styleInput
	if name == "" {
		name = assets.DefaultStyleName
	}

	if fileutil.IsFilePath(name) {
		content, err := os.ReadFile(name) // #nosec G304 -- user-provided path
		if err != nil {
			return fmt.Errorf("%w: %q: %w", ErrStyle, name, err)
		}
		c.style = string(content)
		return nil
	}

	resolver, err := assets.NewResolver(c.assetPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAssetPath, err)
	}
	css, err := resolver.LoadStyle(name)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrStyle, name, err)
	}
	c.style = css
	return nil
}

// Input returns the TeX input processor, for adding filters.
func (c *Converter) Input() *tex.Input { return c.input }

// Convert runs the full pipeline and returns the rendered document.
// The context is checked between stages. Per-item failures are reported in
// the Result; the returned error is reserved for failures that leave no
// usable document. Internal panics are recovered and returned as errors.
func (c *Converter) Convert(ctx context.Context, input Input) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	tree, title, err := c.parse(ctx, input)
	if err != nil {
		return nil, err
	}
	if input.SourceDir != "" && input.OutputDir != "" {
		if err := RebaseRelativePaths(tree.Root, input.SourceDir, input.OutputDir); err != nil {
			return nil, fmt.Errorf("rebasing relative paths: %w", err)
		}
	}

	doc, err := c.newDocument(tree)
	if err != nil {
		return nil, err
	}

	var passErrs []error
	for _, stage := range []func() error{doc.Find, doc.Compile, doc.Typeset, doc.UpdateDocument} {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := stage(); err != nil {
			passErrs = append(passErrs, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{Title: title, Items: len(doc.Processed())}
	if len(passErrs) > 0 {
		res.Err = fmt.Errorf("%w: %w", ErrMathFailed, errors.Join(passErrs...))
		res.Failed = itemErrors(res.Err)
	}

	css := c.style
	if c.noStyle || res.Items == 0 {
		css = ""
	}
	if input.CSS != "" {
		css += "\n" + input.CSS
	}
	if err := chtml.InjectStyle(c.adaptor, tree.Root, css); err != nil {
		return nil, fmt.Errorf("injecting style: %w", err)
	}

	out, err := tree.Render()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	res.HTML = out
	c.logger.Debug("converted document", "items", res.Items, "failed", len(res.Failed))
	return res, nil
}

// Find lists the math in the content without changing anything.
// Discovery failures are returned alongside whatever was found.
func (c *Converter) Find(ctx context.Context, input Input) ([]Match, error) {
	tree, _, err := c.parse(ctx, input)
	if err != nil {
		return nil, err
	}
	doc, err := c.newDocument(tree)
	if err != nil {
		return nil, err
	}

	findErr := doc.Find()
	items := doc.Pending()
	matches := make([]Match, len(items))
	for i, it := range items {
		matches[i] = Match{
			Math:      it.Math(),
			Source:    it.SourceText(),
			Display:   it.Display(),
			Delimiter: it.Delimiter(),
		}
	}
	return matches, findErr
}

// parse validates input and turns it into a tree, going through Markdown
// first when asked.
func (c *Converter) parse(ctx context.Context, input Input) (*htmltree.Tree, string, error) {
	if input.Content == "" {
		return nil, "", ErrEmptyContent
	}
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	content, title := input.Content, ""
	switch input.Format {
	case FormatHTML:
	case FormatMarkdown:
		res, err := c.markdown.ToHTML(ctx, input.Content)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %w", ErrMarkdown, err)
		}
		content, title = res.HTML, res.FrontMatter.Title
	default:
		return nil, "", fmt.Errorf("%w: %v", ErrUnknownFormat, input.Format)
	}

	tree, err := htmltree.Parse(content)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrParse, err)
	}
	return tree, title, nil
}

func (c *Converter) newDocument(tree *htmltree.Tree) (*mathdoc.Document, error) {
	c.input.Reset(0)
	return mathdoc.NewDocument(c.adaptor, tree.Root,
		mathdoc.WithInput(c.input),
		mathdoc.WithOutput(c.output),
		mathdoc.WithLogger(c.logger),
		mathdoc.WithWrapper(c.wrapperTag, c.wrapperClass),
	)
}

// itemErrors collects the item failures in an error tree without
// descending into them.
func itemErrors(err error) []*mathdoc.ItemError {
	var out []*mathdoc.ItemError
	var walk func(error)
	walk = func(e error) {
		if e == nil {
			return
		}
		if ie, ok := e.(*mathdoc.ItemError); ok {
			out = append(out, ie)
			return
		}
		switch u := e.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(u.Unwrap())
		}
	}
	walk(err)
	return out
}
