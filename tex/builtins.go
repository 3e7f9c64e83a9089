package tex

// RegisterBuiltins registers the base, ams, noerrors, noundefined and
// boldsymbol packages with their handler maps and fallbacks.
func RegisterBuiltins(reg *Registry) error {
	var maps []HandlerMap
	maps = append(maps, baseMaps()...)
	maps = append(maps, amsMaps()...)
	maps = append(maps, boldsymbolMaps()...)
	for _, m := range maps {
		if err := reg.RegisterMap(m); err != nil {
			return err
		}
	}

	for _, f := range []Fallback{baseFallback(), noundefinedFallback()} {
		if err := reg.RegisterFallback(f); err != nil {
			return err
		}
	}

	for _, c := range []*Configuration{
		baseConfiguration(),
		amsConfiguration(),
		noerrorsConfiguration(),
		noundefinedConfiguration(),
		boldsymbolConfiguration(),
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// NewBuiltinRegistry returns a fresh registry holding the built-in
// packages. Callers may register their own packages before the first
// Build.
func NewBuiltinRegistry() (*Registry, error) {
	reg := NewRegistry()
	if err := RegisterBuiltins(reg); err != nil {
		return nil, err
	}
	return reg, nil
}
