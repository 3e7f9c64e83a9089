package tex

import "regexp"

// Handler produces the node for one token. For characters name is the
// character; for macros it is the control sequence without the backslash;
// for environments it is the environment name. The parser is positioned
// just after the token.
type Handler func(p *Parser, name string) (*Node, error)

// HandlerMap resolves token names to handlers within one category.
type HandlerMap interface {
	ID() string
	Lookup(name string) (Handler, bool)
}

// Fallback handles a token no HandlerMap knows.
type Fallback struct {
	ID      string
	Handler Handler
}

// Map is a HandlerMap backed by an explicit table.
type Map struct {
	id      string
	entries map[string]Handler
}

// NewMap creates a Map.
func NewMap(id string, entries map[string]Handler) *Map {
	return &Map{id: id, entries: entries}
}

func (m *Map) ID() string { return m.id }

func (m *Map) Lookup(name string) (Handler, bool) {
	h, ok := m.entries[name]
	return h, ok
}

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.entries) }

// PatternMap is a HandlerMap that accepts every name matching a pattern.
type PatternMap struct {
	id      string
	pattern *regexp.Regexp
	handler Handler
}

// NewPatternMap creates a PatternMap. The pattern must match whole names.
func NewPatternMap(id string, pattern *regexp.Regexp, h Handler) *PatternMap {
	return &PatternMap{id: id, pattern: pattern, handler: h}
}

func (m *PatternMap) ID() string { return m.id }

func (m *PatternMap) Lookup(name string) (Handler, bool) {
	if m.pattern.MatchString(name) {
		return m.handler, true
	}
	return nil, false
}

// Compile-time interface implementation checks.
var (
	_ HandlerMap = (*Map)(nil)
	_ HandlerMap = (*PatternMap)(nil)
)
