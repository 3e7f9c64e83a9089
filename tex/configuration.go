package tex

import (
	"fmt"

	"github.com/alnah/go-mathdoc"
)

// Category names a handler table.
type Category string

// Handler categories.
const (
	CategoryCharacter   Category = "character"
	CategoryDelimiter   Category = "delimiter"
	CategoryMacro       Category = "macro"
	CategoryEnvironment Category = "environment"
)

// Categories lists every category in merge order.
var Categories = []Category{CategoryCharacter, CategoryDelimiter, CategoryMacro, CategoryEnvironment}

func (c Category) valid() bool {
	switch c {
	case CategoryCharacter, CategoryDelimiter, CategoryMacro, CategoryEnvironment:
		return true
	}
	return false
}

// DefaultParser is the parser name built-in packages target.
const DefaultParser = "tex"

// DefaultPackagePriority is used when a Configuration leaves Priority zero.
const DefaultPackagePriority = 10

// FilterArgs is passed to every pre- and post-filter. Pre-filters may
// rewrite Math; post-filters may rewrite Root.
type FilterArgs struct {
	Math    string
	Display bool
	Root    *Node
	Item    *mathdoc.MathItem
	Doc     *mathdoc.Document
	Input   *Input
}

// Filter transforms one compilation. Returning an error fails the compile.
type Filter func(*FilterArgs) error

// PrioritizedFilter is a filter with its position in the chain.
type PrioritizedFilter struct {
	Fn       Filter
	Priority int
}

// InitHook runs once per build, after merging.
type InitHook struct {
	Fn       func(*ParserConfiguration) error
	Priority int
}

// ConfigHook runs every time an Input attaches the configuration.
type ConfigHook struct {
	Fn       func(*ParserConfiguration, *Input) error
	Priority int
}

// Configuration is one package's contribution to the parser.
type Configuration struct {
	Name string
	// Parser is the parser this package targets; empty means DefaultParser.
	Parser string
	// Priority orders the package in a build; zero means the default.
	Priority int
	// Dependencies are built in along with this package, each at its own
	// priority.
	Dependencies []string

	Handlers  map[Category][]string // handler map ids, in lookup order
	Fallbacks map[Category]string   // fallback ids
	Options   map[string]any
	Tags      map[string]TagStyle

	PreFilters  []PrioritizedFilter
	PostFilters []PrioritizedFilter
	Init        *InitHook
	Config      *ConfigHook
}

func (c *Configuration) parser() string {
	if c.Parser == "" {
		return DefaultParser
	}
	return c.Parser
}

func (c *Configuration) priority() int {
	if c.Priority == 0 {
		return DefaultPackagePriority
	}
	return c.Priority
}

func (c *Configuration) validate() error {
	if c == nil || c.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidPackage)
	}
	for cat := range c.Handlers {
		if !cat.valid() {
			return fmt.Errorf("%w: %s: unknown category %q", ErrInvalidPackage, c.Name, cat)
		}
	}
	for cat := range c.Fallbacks {
		if !cat.valid() {
			return fmt.Errorf("%w: %s: unknown category %q", ErrInvalidPackage, c.Name, cat)
		}
	}
	for _, f := range append(append([]PrioritizedFilter{}, c.PreFilters...), c.PostFilters...) {
		if f.Fn == nil {
			return fmt.Errorf("%w: %s: nil filter", ErrInvalidPackage, c.Name)
		}
	}
	if c.Init != nil && c.Init.Fn == nil {
		return fmt.Errorf("%w: %s: nil init hook", ErrInvalidPackage, c.Name)
	}
	if c.Config != nil && c.Config.Fn == nil {
		return fmt.Errorf("%w: %s: nil config hook", ErrInvalidPackage, c.Name)
	}
	return nil
}
