package scan

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alnah/go-mathdoc"
)

// ErrInvalidRules is returned by New when the rules cannot be compiled.
var ErrInvalidRules = errors.New("invalid scan rules")

// Rules configures what a Scanner recognizes and where it looks.
type Rules struct {
	Inline  []mathdoc.Delimiter
	Display []mathdoc.Delimiter

	// ProcessEscapes makes a delimiter preceded by an odd number of
	// backslashes ineligible to open or close a match.
	ProcessEscapes bool
	// ProcessEnvironments matches \begin{name}...\end{name} as display math.
	ProcessEnvironments bool
	// ProcessRefs matches \ref{...} and \eqref{...} as inline math.
	ProcessRefs bool

	SkipTags     []string
	IgnoreClass  string
	ProcessClass string // empty disables process-class filtering
}

// DefaultRules returns the usual TeX setup: \(...\) inline, $$...$$ and
// \[...\] display, escapes and environments enabled, and the common
// non-content tags skipped. Refs stay off: no built-in package defines
// \ref or \eqref. Process-class filtering is off, since turning
// it on excludes every element without a marked ancestor.
func DefaultRules() Rules {
	return Rules{
		Inline: []mathdoc.Delimiter{{Start: `\(`, End: `\)`}},
		Display: []mathdoc.Delimiter{
			{Start: "$$", End: "$$"},
			{Start: `\[`, End: `\]`},
		},
		ProcessEscapes:      true,
		ProcessEnvironments: true,
		SkipTags:            []string{"script", "noscript", "style", "textarea", "pre", "code"},
		IgnoreClass:         "tex2jax_ignore",
	}
}

// DollarInline is the conventional single-dollar inline pair, off by
// default because plain prices collide with it.
var DollarInline = mathdoc.Delimiter{Start: "$", End: "$"}

func (r Rules) validate() error {
	for _, d := range append(append([]mathdoc.Delimiter{}, r.Inline...), r.Display...) {
		if d.Start == "" || d.End == "" {
			return fmt.Errorf("%w: empty delimiter %q...%q", ErrInvalidRules, d.Start, d.End)
		}
	}
	if strings.ContainsAny(r.IgnoreClass, " \t\n") || strings.ContainsAny(r.ProcessClass, " \t\n") {
		return fmt.Errorf("%w: class names must not contain whitespace", ErrInvalidRules)
	}
	if r.IgnoreClass != "" && r.IgnoreClass == r.ProcessClass {
		return fmt.Errorf("%w: ignore and process class are both %q", ErrInvalidRules, r.IgnoreClass)
	}
	return nil
}
