package mdmath

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// DefaultTitle is used when the front matter names no title.
const DefaultTitle = "Document"

// htmlTemplate wraps goldmark's fragment output in a complete HTML5 document.
const htmlTemplate = `<!DOCTYPE html>
<html%s>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s
</body>
</html>`

// Result is a converted Markdown document.
type Result struct {
	HTML        string
	FrontMatter FrontMatter
}

// Converter converts Markdown to HTML using goldmark, keeping math intact.
// It is safe for concurrent use.
type Converter struct {
	md     goldmark.Markdown
	delims Delimiters
}

// NewConverter creates a Converter with GFM extensions and syntax
// highlighting that protects math written with the given delimiters.
func NewConverter(delims Delimiters) *Converter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,      // Tables, strikethrough, autolinks, task lists
			extension.Footnote, // [^1] footnotes
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithXHTML(),
		),
	)
	return &Converter{md: md, delims: delims}
}

// ToHTML converts Markdown content to a standalone HTML5 document.
// Goldmark has no context support, so conversion runs in a goroutine and
// ToHTML returns early on cancellation.
func (c *Converter) ToHTML(ctx context.Context, content string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fm, body, err := splitFrontMatter(normalizeLineEndings(content))
	if err != nil {
		return nil, err
	}

	type result struct {
		html string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		p := newProtector(c.delims)
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(p.Protect(body)), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: p.Restore(buf.String())}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return nil, r.err
		}
		return &Result{HTML: wrapDocument(fm, r.html), FrontMatter: fm}, nil
	}
}

func wrapDocument(fm FrontMatter, body string) string {
	title := fm.Title
	if title == "" {
		title = DefaultTitle
	}
	lang := ""
	if fm.Lang != "" {
		lang = ` lang="` + html.EscapeString(fm.Lang) + `"`
	}
	return fmt.Sprintf(htmlTemplate, lang, html.EscapeString(title), body)
}
