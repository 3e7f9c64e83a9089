package main

import (
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// texFlags holds discovery and parser flags. Unset flags keep the config
// or default values.
type texFlags struct {
	packages       []string
	inline         []string
	display        []string
	elements       []string
	tags           string
	noEscapes      bool
	noEnvironments bool
}

// styleFlags holds stylesheet flags.
type styleFlags struct {
	style     string // name or path
	assetPath string // directory of custom styles
	noStyle   bool
}

// renderFlags holds all flags for the render command.
type renderFlags struct {
	common  commonFlags
	tex     texFlags
	style   styleFlags
	output  string
	workers int
	timeout string
	strict  bool
}

// findFlags holds flags for the find command.
type findFlags struct {
	common commonFlags
	tex    texFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed output")
}

// addTeXFlags adds discovery and parser flags to a FlagSet.
func addTeXFlags(fs *flag.FlagSet, f *texFlags) {
	fs.StringSliceVar(&f.packages, "packages", nil, "TeX packages, name or name:priority (comma separated)")
	fs.StringArrayVar(&f.inline, "inline", nil, "inline delimiter pair \"open close\" (repeatable)")
	fs.StringArrayVar(&f.display, "display", nil, "display delimiter pair \"open close\" (repeatable)")
	fs.StringSliceVar(&f.elements, "elements", nil, "selectors of the subtrees to search")
	fs.StringVar(&f.tags, "tags", "", "equation numbering: none, ams, all")
	fs.BoolVar(&f.noEscapes, "no-escapes", false, "treat \\$ as ordinary text")
	fs.BoolVar(&f.noEnvironments, "no-environments", false, "ignore bare \\begin{..}..\\end{..}")
}

// addStyleFlags adds stylesheet flags to a FlagSet.
func addStyleFlags(fs *flag.FlagSet, f *styleFlags) {
	fs.StringVar(&f.style, "style", "", "stylesheet name or path")
	fs.StringVar(&f.assetPath, "asset-path", "", "directory of custom stylesheets")
	fs.BoolVar(&f.noStyle, "no-style", false, "do not inject a stylesheet")
}

// newFlagSet returns a FlagSet that reports errors instead of exiting and
// prints nothing by itself.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	return fs
}

// parseRenderFlags parses render command flags and returns positional args.
func parseRenderFlags(args []string) (*renderFlags, []string, error) {
	fs := newFlagSet("render")
	f := &renderFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "time limit for the whole run (e.g., 30s, 2m)")
	fs.BoolVar(&f.strict, "strict", false, "exit with an error when any math fails")

	addCommonFlags(fs, &f.common)
	addTeXFlags(fs, &f.tex)
	addStyleFlags(fs, &f.style)

	if err := fs.Parse(args); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	return f, fs.Args(), nil
}

// parseFindFlags parses find command flags and returns positional args.
func parseFindFlags(args []string) (*findFlags, []string, error) {
	fs := newFlagSet("find")
	f := &findFlags{}

	addCommonFlags(fs, &f.common)
	addTeXFlags(fs, &f.tex)

	if err := fs.Parse(args); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	return f, fs.Args(), nil
}
