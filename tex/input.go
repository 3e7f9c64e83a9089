package tex

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/alnah/go-mathdoc"
	"github.com/alnah/go-mathdoc/internal/prioq"
	"github.com/alnah/go-mathdoc/internal/scan"
)

// InputName is the name the TeX input processor reports.
const InputName = "TeX"

// Package option names read by the input.
const (
	OptionDigits    = "digits"
	OptionMaxBuffer = "maxBuffer"
)

// ErrInvalidOption is returned when an option has the wrong type or value.
var ErrInvalidOption = errors.New("invalid option")

// Compile-time interface implementation check.
var _ mathdoc.InputProcessor = (*Input)(nil)

// Input is the TeX input processor. Each Input owns its filter chains, so
// one Input must not be shared between goroutines.
type Input struct {
	opts    Options
	scanner *scan.Scanner
	pc      *ParserConfiguration
	logger  *slog.Logger

	digits    *regexp.Regexp
	maxBuffer int
	tagStyle  TagStyle
	equation  int

	preFilters  prioq.Queue[Filter]
	postFilters prioq.Queue[Filter]
	formatError func(error) *Node
}

// InputOption configures an Input.
type InputOption func(*Input)

// WithLogger sets the logger for compile diagnostics. Nil is ignored.
func WithLogger(logger *slog.Logger) InputOption {
	return func(in *Input) {
		if logger != nil {
			in.logger = logger
		}
	}
}

// WithErrorFormatter replaces the default error placeholder builder.
// Panics if fn is nil (programmer error).
func WithErrorFormatter(fn func(error) *Node) InputOption {
	if fn == nil {
		panic("tex: WithErrorFormatter fn must not be nil")
	}
	return func(in *Input) {
		in.formatError = fn
	}
}

// NewInput builds the parser configuration for opts.Packages from reg and
// attaches it to a new Input. Configuration errors are returned before any
// document is touched.
func NewInput(reg *Registry, opts Options, options ...InputOption) (*Input, error) {
	scanner, err := scan.New(opts.rules())
	if err != nil {
		return nil, err
	}
	pc, err := Build(reg, opts.Packages, DefaultParser)
	if err != nil {
		return nil, err
	}

	in := &Input{
		opts:        opts,
		scanner:     scanner,
		pc:          pc,
		logger:      slog.New(slog.DiscardHandler),
		formatError: defaultFormatError,
	}
	for _, opt := range options {
		opt(in)
	}

	if err := in.loadOptions(); err != nil {
		return nil, err
	}
	in.postFilters.Add(cleanRows, -1)
	if err := pc.Config(in); err != nil {
		return nil, err
	}
	in.logger.Debug("tex input ready", "packages", pc.Packages(), "tags", opts.Tags)
	return in, nil
}

func (in *Input) loadOptions() error {
	digits := `^(?:[0-9]+(?:\.[0-9]*)?|\.[0-9]+)`
	if v, ok := in.Option(OptionDigits); ok {
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("%w: %s must be a string", ErrInvalidOption, OptionDigits)
		}
		digits = s
	}
	re, err := regexp.Compile(digits)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidOption, OptionDigits, err)
	}
	in.digits = re

	if v, ok := in.Option(OptionMaxBuffer); ok {
		n, ok := toInt(v)
		if !ok || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative int", ErrInvalidOption, OptionMaxBuffer)
		}
		in.maxBuffer = n
	}

	name := in.opts.Tags
	if name == "" {
		name = TagsNone
	}
	style, ok := in.pc.TagStyle(name)
	if !ok && name == TagsNone {
		style, ok = tagStyleNone, true
	}
	if !ok {
		return fmt.Errorf("%w: unknown tag style %q", ErrInvalidOption, name)
	}
	in.tagStyle = style
	return nil
}

func (in *Input) Name() string { return InputName }

// Configuration returns the merged parser configuration.
func (in *Input) Configuration() *ParserConfiguration { return in.pc }

// Option returns a setting from Options.Settings, else the merged package
// default.
func (in *Input) Option(name string) (any, bool) {
	if v, ok := in.opts.Settings[name]; ok {
		return v, true
	}
	return in.pc.Option(name)
}

// AddPreFilter adds a filter run before parsing.
func (in *Input) AddPreFilter(f Filter, priority int) { in.preFilters.Add(f, priority) }

// AddPostFilter adds a filter run on the parsed tree.
func (in *Input) AddPostFilter(f Filter, priority int) { in.postFilters.Add(f, priority) }

// SetErrorFormatter replaces the error placeholder builder. Config hooks
// use it to change how failures are shown.
func (in *Input) SetErrorFormatter(fn func(error) *Node) {
	if fn != nil {
		in.formatError = fn
	}
}

// Reset restarts automatic equation numbering at start.
func (in *Input) Reset(start int) { in.equation = start }

// FindMath scans the subtrees selected by Options.Elements.
func (in *Input) FindMath(a mathdoc.Adaptor, root mathdoc.Node) ([]mathdoc.Found, error) {
	roots := a.Elements(root, in.opts.Elements)
	return in.scanner.Find(a, roots), nil
}

// Compile parses the item's TeX into a *Node.
func (in *Input) Compile(item *mathdoc.MathItem, doc *mathdoc.Document) (any, error) {
	root, err := in.compile(&FilterArgs{
		Math:    item.Math(),
		Display: item.Display(),
		Item:    item,
		Doc:     doc,
		Input:   in,
	})
	if err != nil {
		return nil, err
	}
	return root, nil
}

// CompileString parses TeX outside of any document.
func (in *Input) CompileString(math string, display bool) (*Node, error) {
	return in.compile(&FilterArgs{Math: math, Display: display, Input: in})
}

func (in *Input) compile(args *FilterArgs) (*Node, error) {
	for _, f := range in.preFilters.Items() {
		if err := f(args); err != nil {
			return nil, fmt.Errorf("%w: pre: %w", ErrFilter, err)
		}
	}

	if in.maxBuffer > 0 && len(args.Math) > in.maxBuffer {
		return nil, &ParseError{
			ID:      "MaxBufferSize",
			Message: fmt.Sprintf("TeX input exceeds the %d byte buffer", in.maxBuffer),
			Source:  args.Math,
		}
	}

	p := newParser(args.Math, in.pc, in.digits, args.Display)
	body, err := p.Parse()
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Source = args.Math
		}
		in.logger.Debug("tex parse failed", "math", args.Math, "error", err)
		return nil, err
	}

	root := Elem(KindMath, body)
	if args.Display {
		root.SetAttr("display", "block")
		if tag := in.tag(p); tag != "" {
			root.SetAttr("tag", "("+tag+")")
		}
	}
	args.Root = root

	for _, f := range in.postFilters.Items() {
		if err := f(args); err != nil {
			return nil, fmt.Errorf("%w: post: %w", ErrFilter, err)
		}
	}
	return args.Root, nil
}

func (in *Input) tag(p *Parser) string {
	if p.tag != "" {
		return p.tag
	}
	if p.notag || !in.tagStyle.Numbered(p.used) {
		return ""
	}
	in.equation++
	return strconv.Itoa(in.equation)
}

// FormatError builds the placeholder stored for an item that failed to
// compile.
func (in *Input) FormatError(err error) any {
	return in.formatError(err)
}

// defaultFormatError shows the first line of the message in an merror.
func defaultFormatError(err error) *Node {
	msg := err.Error()
	var pe *ParseError
	if errors.As(err, &pe) {
		msg = pe.Message
	}
	msg, _, _ = strings.Cut(msg, "\n")
	merror := Elem(KindError, Leaf(KindText, msg)).SetAttr("data-mjx-error", msg)
	return Elem(KindMath, merror)
}

// toInt accepts the integer types decoders commonly produce.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}

// cleanRows collapses mrows that hold a single child.
func cleanRows(args *FilterArgs) error {
	args.Root.Walk(func(n *Node) bool {
		for i, c := range n.Children {
			for c.Kind == KindRow && len(c.Children) == 1 && len(c.Attrs) == 0 {
				c = c.Children[0]
			}
			n.Children[i] = c
		}
		return true
	})
	return nil
}
