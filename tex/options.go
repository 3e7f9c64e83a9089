package tex

import (
	"github.com/alnah/go-mathdoc"
	"github.com/alnah/go-mathdoc/internal/scan"
)

// Options configures an Input: where math is looked for, which delimiters
// mark it, and which packages the parser is built from.
type Options struct {
	InlineMath  []mathdoc.Delimiter
	DisplayMath []mathdoc.Delimiter

	ProcessEscapes      bool
	ProcessEnvironments bool
	ProcessRefs         bool

	SkipTags     []string
	IgnoreClass  string
	ProcessClass string

	// Elements are the selectors of the subtrees to search.
	Elements []string
	Packages []PackageRequest
	// Tags names the equation numbering style.
	Tags string
	// Settings override package option defaults by name.
	Settings map[string]any
}

// DefaultOptions returns the standard TeX setup with the base package.
func DefaultOptions() Options {
	r := scan.DefaultRules()
	return Options{
		InlineMath:          r.Inline,
		DisplayMath:         r.Display,
		ProcessEscapes:      r.ProcessEscapes,
		ProcessEnvironments: r.ProcessEnvironments,
		ProcessRefs:         r.ProcessRefs,
		SkipTags:            r.SkipTags,
		IgnoreClass:         r.IgnoreClass,
		ProcessClass:        r.ProcessClass,
		Elements:            []string{"body"},
		Packages:            Packages("base"),
		Tags:                TagsNone,
	}
}

func (o Options) rules() scan.Rules {
	return scan.Rules{
		Inline:              o.InlineMath,
		Display:             o.DisplayMath,
		ProcessEscapes:      o.ProcessEscapes,
		ProcessEnvironments: o.ProcessEnvironments,
		ProcessRefs:         o.ProcessRefs,
		SkipTags:            o.SkipTags,
		IgnoreClass:         o.IgnoreClass,
		ProcessClass:        o.ProcessClass,
	}
}
