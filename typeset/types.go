package typeset

import (
	"fmt"
	"log/slog"

	"github.com/alnah/go-mathdoc"
	"github.com/alnah/go-mathdoc/tex"
)

// Format says how Input.Content is written.
type Format int

const (
	FormatHTML Format = iota
	FormatMarkdown
)

func (f Format) String() string {
	switch f {
	case FormatHTML:
		return "html"
	case FormatMarkdown:
		return "markdown"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Input contains conversion parameters.
type Input struct {
	Content string // HTML document, HTML fragment or Markdown (required)
	Format  Format // default FormatHTML
	CSS     string // extra CSS appended after the style (optional)

	// SourceDir and OutputDir rebase relative img and link paths when the
	// result is written somewhere other than next to the source. Both must
	// be set for rebasing to happen.
	SourceDir string
	OutputDir string
}

// Result is a converted document.
type Result struct {
	HTML  string
	Title string // from Markdown front matter, empty for HTML
	Items int    // math items substituted into the tree

	// Failed lists the items that failed a stage. They were still
	// substituted, as error nodes.
	Failed []*mathdoc.ItemError
	// Err joins every non-fatal failure of the pass, including discovery
	// failures that belong to no item. Nil when the pass was clean.
	Err error
}

// Match is one math span found without typesetting.
type Match struct {
	Math      string
	Source    string // the literal text, delimiters included
	Display   bool
	Delimiter mathdoc.Delimiter
}

// Option configures a Converter.
type Option func(*Converter)

// WithTeXOptions replaces the TeX input options. The default is
// tex.DefaultOptions().
func WithTeXOptions(opts tex.Options) Option {
	return func(c *Converter) {
		c.texOpts = opts
	}
}

// WithRegistry sets the package registry the TeX input is built from.
// The default is a fresh registry with the built-in packages. Registries
// are safe to share between converters.
// Panics if reg is nil (programmer error).
func WithRegistry(reg *tex.Registry) Option {
	if reg == nil {
		panic("typeset: WithRegistry registry must not be nil")
	}
	return func(c *Converter) {
		c.registry = reg
	}
}

// WithLogger sets the logger handed to every stage. A nil logger keeps
// the default, which discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithStyle selects the stylesheet by name or by file path. Names are
// looked up in the asset path first, then among the embedded styles.
func WithStyle(nameOrPath string) Option {
	return func(c *Converter) {
		c.styleInput = nameOrPath
	}
}

// WithoutStyle disables stylesheet injection.
func WithoutStyle() Option {
	return func(c *Converter) {
		c.noStyle = true
	}
}

// WithAssetPath sets a directory of custom stylesheets.
func WithAssetPath(path string) Option {
	return func(c *Converter) {
		c.assetPath = path
	}
}

// WithWrapper overrides the element that wraps typeset math.
// Panics if tag is empty (programmer error).
func WithWrapper(tag, class string) Option {
	if tag == "" {
		panic("typeset: WithWrapper tag must not be empty")
	}
	return func(c *Converter) {
		c.wrapperTag = tag
		c.wrapperClass = class
	}
}
