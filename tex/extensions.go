package tex

import (
	"errors"
	"strings"
)

// Ids registered by the small extension packages.
const (
	NoUndefinedMacro = "noundefined-macro"
	BoldsymbolMacros = "boldsymbol-macros"
)

// noundefinedConfiguration shows unknown control sequences in red instead
// of failing the whole expression.
func noundefinedConfiguration() *Configuration {
	return &Configuration{
		Name: "noundefined",
		Fallbacks: map[Category]string{
			CategoryMacro: NoUndefinedMacro,
		},
	}
}

func noundefinedFallback() Fallback {
	return Fallback{ID: NoUndefinedMacro, Handler: func(_ *Parser, name string) (*Node, error) {
		return Leaf(KindText, `\`+name).SetAttr("mathcolor", "red"), nil
	}}
}

// noerrorsConfiguration replaces error messages with the original TeX.
func noerrorsConfiguration() *Configuration {
	return &Configuration{
		Name: "noerrors",
		Config: &ConfigHook{
			Fn: func(_ *ParserConfiguration, in *Input) error {
				in.SetErrorFormatter(formatNoError)
				return nil
			},
			Priority: 5,
		},
	}
}

func formatNoError(err error) *Node {
	source := err.Error()
	var pe *ParseError
	if errors.As(err, &pe) && pe.Source != "" {
		source = pe.Source
	}
	source = strings.Join(strings.Fields(source), " ")
	return Elem(KindMath, Leaf(KindText, source)).SetAttr("data-mjx-noerror", "true")
}

// boldsymbolConfiguration adds \boldsymbol.
func boldsymbolConfiguration() *Configuration {
	return &Configuration{
		Name:         "boldsymbol",
		Dependencies: []string{"base"},
		Handlers: map[Category][]string{
			CategoryMacro: {BoldsymbolMacros},
		},
	}
}

func boldsymbolMaps() []HandlerMap {
	return []HandlerMap{NewMap(BoldsymbolMacros, map[string]Handler{
		"boldsymbol": variant("bold-italic"),
	})}
}
