package tex

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/alnah/go-mathdoc/internal/prioq"
)

// PackageRequest names a package to build in. A zero Priority keeps the
// package's own priority.
type PackageRequest struct {
	Name     string
	Priority int
}

// Packages turns plain names into requests.
func Packages(names ...string) []PackageRequest {
	reqs := make([]PackageRequest, len(names))
	for i, n := range names {
		reqs[i] = PackageRequest{Name: n}
	}
	return reqs
}

// ParsePackageRequest parses "name" or "name:priority".
func ParsePackageRequest(s string) (PackageRequest, error) {
	name, prio, hasPrio := strings.Cut(strings.TrimSpace(s), ":")
	name = strings.TrimSpace(name)
	if name == "" {
		return PackageRequest{}, fmt.Errorf("%w: empty package name in %q", ErrInvalidPackage, s)
	}
	if !hasPrio {
		return PackageRequest{Name: name}, nil
	}
	p, err := strconv.Atoi(strings.TrimSpace(prio))
	if err != nil {
		return PackageRequest{}, fmt.Errorf("%w: bad priority in %q", ErrInvalidPackage, s)
	}
	return PackageRequest{Name: name, Priority: p}, nil
}

// ParserConfiguration is the merge of a set of packages. It is immutable
// once Build returns.
type ParserConfiguration struct {
	parser      string
	packages    []string
	handlers    map[Category][]HandlerMap
	fallbacks   map[Category]Fallback
	options     map[string]any
	tags        map[string]TagStyle
	preFilters  prioq.Queue[Filter]
	postFilters prioq.Queue[Filter]
	initHooks   prioq.Queue[func(*ParserConfiguration) error]
	cfgHooks    prioq.Queue[func(*ParserConfiguration, *Input) error]
}

// Build merges the requested packages for the named parser. Dependencies
// are pulled in with their own priority and resolved ahead of the package
// that needs them. Packages are merged in ascending priority with ties in
// resolution order, so a dependency merges after its dependent when its
// priority is higher. Init hooks run once before Build returns. The first
// Build seals reg.
func Build(reg *Registry, reqs []PackageRequest, parser string) (*ParserConfiguration, error) {
	if parser == "" {
		parser = DefaultParser
	}
	reg.seal()

	ordered, err := expand(reg, reqs, parser)
	if err != nil {
		return nil, err
	}

	var q prioq.Queue[*Configuration]
	for _, req := range ordered {
		q.Add(req.cfg, req.priority)
	}

	pc := &ParserConfiguration{
		parser:    parser,
		handlers:  make(map[Category][]HandlerMap),
		fallbacks: make(map[Category]Fallback),
		options:   make(map[string]any),
		tags:      make(map[string]TagStyle),
	}
	for _, c := range q.Items() {
		if err := pc.append(reg, c); err != nil {
			return nil, err
		}
	}

	for _, hook := range pc.initHooks.Items() {
		if err := hook(pc); err != nil {
			return nil, fmt.Errorf("%w: init: %w", ErrHook, err)
		}
	}
	return pc, nil
}

type resolved struct {
	cfg      *Configuration
	priority int
}

// expand resolves requests and their dependencies into request order,
// each package once.
func expand(reg *Registry, reqs []PackageRequest, parser string) ([]resolved, error) {
	const (
		visiting = 1
		done     = 2
	)
	state := make(map[string]int)
	var out []resolved

	var visit func(req PackageRequest, chain []string) error
	visit = func(req PackageRequest, chain []string) error {
		switch state[req.Name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: dependency cycle %s", ErrInvalidPackage, strings.Join(append(chain, req.Name), " -> "))
		}
		c, ok := reg.Package(req.Name)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownPackage, req.Name)
		}
		if c.parser() != parser {
			return fmt.Errorf("%w: %q targets %q, not %q", ErrParserMismatch, req.Name, c.parser(), parser)
		}
		state[req.Name] = visiting
		for _, dep := range c.Dependencies {
			if err := visit(PackageRequest{Name: dep}, slices.Concat(chain, []string{req.Name})); err != nil {
				return err
			}
		}
		state[req.Name] = done
		prio := req.Priority
		if prio == 0 {
			prio = c.priority()
		}
		out = append(out, resolved{cfg: c, priority: prio})
		return nil
	}

	for _, req := range reqs {
		if err := visit(req, nil); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (pc *ParserConfiguration) append(reg *Registry, c *Configuration) error {
	for _, cat := range Categories {
		for _, id := range c.Handlers[cat] {
			m, ok := reg.handlerMap(id)
			if !ok {
				return fmt.Errorf("%w: %s handler %q in package %q", ErrUnknownHandler, cat, id, c.Name)
			}
			pc.handlers[cat] = append(pc.handlers[cat], m)
		}
		if id, ok := c.Fallbacks[cat]; ok {
			f, ok := reg.fallback(id)
			if !ok {
				return fmt.Errorf("%w: %s fallback %q in package %q", ErrUnknownHandler, cat, id, c.Name)
			}
			pc.fallbacks[cat] = f
		}
	}

	for k, v := range c.Options {
		if _, set := pc.options[k]; !set {
			pc.options[k] = v
		}
	}
	maps.Copy(pc.tags, c.Tags)

	for _, f := range c.PreFilters {
		pc.preFilters.Add(f.Fn, f.Priority)
	}
	for _, f := range c.PostFilters {
		pc.postFilters.Add(f.Fn, f.Priority)
	}
	if c.Init != nil {
		pc.initHooks.Add(c.Init.Fn, c.Init.Priority)
	}
	if c.Config != nil {
		pc.cfgHooks.Add(c.Config.Fn, c.Config.Priority)
	}
	pc.packages = append(pc.packages, c.Name)
	return nil
}

// Parser returns the parser name the configuration was built for.
func (pc *ParserConfiguration) Parser() string { return pc.parser }

// Packages returns the merged package names in merge order.
func (pc *ParserConfiguration) Packages() []string { return slices.Clone(pc.packages) }

// HandlerIDs returns the merged handler map ids for a category, in lookup
// order.
func (pc *ParserConfiguration) HandlerIDs(cat Category) []string {
	var ids []string
	for _, m := range pc.handlers[cat] {
		ids = append(ids, m.ID())
	}
	return ids
}

// FallbackID returns the fallback id in effect for a category.
func (pc *ParserConfiguration) FallbackID(cat Category) (string, bool) {
	f, ok := pc.fallbacks[cat]
	return f.ID, ok
}

// Lookup finds the handler for a token: the first map that knows the name
// wins, then the category's fallback.
func (pc *ParserConfiguration) Lookup(cat Category, name string) (Handler, bool) {
	for _, m := range pc.handlers[cat] {
		if h, ok := m.Lookup(name); ok {
			return h, true
		}
	}
	if f, ok := pc.fallbacks[cat]; ok {
		return f.Handler, true
	}
	return nil, false
}

// Option returns a merged package option.
func (pc *ParserConfiguration) Option(name string) (any, bool) {
	v, ok := pc.options[name]
	return v, ok
}

// Options returns a copy of the merged package options.
func (pc *ParserConfiguration) Options() map[string]any { return maps.Clone(pc.options) }

// TagStyle returns a merged tag style.
func (pc *ParserConfiguration) TagStyle(name string) (TagStyle, bool) {
	t, ok := pc.tags[name]
	return t, ok
}

// Config runs the config hooks for in, in priority order, then installs
// the package filters into in's chains.
func (pc *ParserConfiguration) Config(in *Input) error {
	for _, hook := range pc.cfgHooks.Items() {
		if err := hook(pc, in); err != nil {
			return fmt.Errorf("%w: config: %w", ErrHook, err)
		}
	}
	in.preFilters.Merge(&pc.preFilters)
	in.postFilters.Merge(&pc.postFilters)
	return nil
}
