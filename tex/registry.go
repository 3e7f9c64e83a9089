package tex

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Registry holds packages, handler maps and fallbacks by name.
//
// Registration happens before the first Build; the first Build seals the
// registry and later writes fail with ErrRegistrySealed. Reads are safe
// for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	sealed    bool
	packages  map[string]*Configuration
	maps      map[string]HandlerMap
	fallbacks map[string]Fallback
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		packages:  make(map[string]*Configuration),
		maps:      make(map[string]HandlerMap),
		fallbacks: make(map[string]Fallback),
	}
}

// Register adds or replaces a package.
func (r *Registry) Register(c *Configuration) error {
	if err := c.validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return fmt.Errorf("%w: register %q", ErrRegistrySealed, c.Name)
	}
	r.packages[c.Name] = c
	return nil
}

// RegisterMap adds or replaces a handler map under its ID.
func (r *Registry) RegisterMap(m HandlerMap) error {
	if m == nil || m.ID() == "" {
		return fmt.Errorf("%w: handler map without id", ErrInvalidPackage)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return fmt.Errorf("%w: register map %q", ErrRegistrySealed, m.ID())
	}
	r.maps[m.ID()] = m
	return nil
}

// RegisterFallback adds or replaces a fallback handler under its ID.
func (r *Registry) RegisterFallback(f Fallback) error {
	if f.ID == "" || f.Handler == nil {
		return fmt.Errorf("%w: fallback without id or handler", ErrInvalidPackage)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return fmt.Errorf("%w: register fallback %q", ErrRegistrySealed, f.ID)
	}
	r.fallbacks[f.ID] = f
	return nil
}

// Package returns a registered package.
func (r *Registry) Package(name string) (*Configuration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.packages[name]
	return c, ok
}

// Names returns the registered package names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.packages))
}

// Sealed reports whether the registry accepts no more writes.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

func (r *Registry) seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

func (r *Registry) handlerMap(id string) (HandlerMap, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.maps[id]
	return m, ok
}

func (r *Registry) fallback(id string) (Fallback, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.fallbacks[id]
	return f, ok
}
