package tex

// Handler map ids registered by the ams package.
const (
	AMSMacros       = "ams-macros"
	AMSEnvironments = "ams-environments"
)

func styledFrac(displaystyle string) Handler {
	return func(p *Parser, name string) (*Node, error) {
		n, err := frac(p, name)
		if err != nil {
			return nil, err
		}
		return n.SetAttr("displaystyle", displaystyle), nil
	}
}

func binom(p *Parser, name string) (*Node, error) {
	n, err := frac(p, name)
	if err != nil {
		return nil, err
	}
	n.SetAttr("linethickness", "0")
	return Elem(KindRow, Leaf(KindOp, "("), n, Leaf(KindOp, ")")), nil
}

func operatorname(p *Parser, _ string) (*Node, error) {
	s, err := p.RawArg()
	if err != nil {
		return nil, err
	}
	return Leaf(KindIdent, s).SetAttr("mathvariant", "normal"), nil
}

func tag(p *Parser, _ string) (*Node, error) {
	s, err := p.RawArg()
	if err != nil {
		return nil, err
	}
	p.SetTag(s)
	return nil, nil
}

func notag(p *Parser, _ string) (*Node, error) {
	p.SuppressTag()
	return nil, nil
}

// aligned builds an alignment table with alternating right/left columns.
func aligned(p *Parser, name string) (*Node, error) {
	table, err := p.Table(name)
	if err != nil {
		return nil, err
	}
	return table.SetAttr("columnalign", "right left").SetAttr("displaystyle", "true"), nil
}

func gathered(p *Parser, name string) (*Node, error) {
	table, err := p.Table(name)
	if err != nil {
		return nil, err
	}
	return table.SetAttr("columnalign", "center").SetAttr("displaystyle", "true"), nil
}

// matrix builds a table fenced by open and closer; empty strings mean no
// fence.
func matrix(open, closer string) Handler {
	return func(p *Parser, name string) (*Node, error) {
		table, err := p.Table(name)
		if err != nil {
			return nil, err
		}
		if open == "" && closer == "" {
			return table, nil
		}
		var nodes []*Node
		if open != "" {
			nodes = append(nodes, Leaf(KindOp, open).SetAttr("fence", "true"))
		}
		nodes = append(nodes, table)
		if closer != "" {
			nodes = append(nodes, Leaf(KindOp, closer).SetAttr("fence", "true"))
		}
		return Elem(KindRow, nodes...), nil
	}
}

func amsMaps() []HandlerMap {
	macros := map[string]Handler{
		"dfrac":        styledFrac("true"),
		"tfrac":        styledFrac("false"),
		"binom":        binom,
		"operatorname": operatorname,
		"tag":          tag,
		"notag":        notag,
		"nonumber":     notag,
		"iiint":        op("∭"),
		"implies":      op("⟹"),
		"impliedby":    op("⟸"),
		"iff":          op("⟺"),
	}
	envs := map[string]Handler{
		"align":    aligned,
		"align*":   aligned,
		"aligned":  aligned,
		"gather":   gathered,
		"gather*":  gathered,
		"gathered": gathered,
		"multline": gathered,
		"matrix":   matrix("", ""),
		"pmatrix":  matrix("(", ")"),
		"bmatrix":  matrix("[", "]"),
		"Bmatrix":  matrix("{", "}"),
		"vmatrix":  matrix("|", "|"),
		"Vmatrix":  matrix("‖", "‖"),
		"cases":    matrix("{", ""),
	}
	return []HandlerMap{
		NewMap(AMSMacros, macros),
		NewMap(AMSEnvironments, envs),
	}
}

func amsConfiguration() *Configuration {
	return &Configuration{
		Name:         "ams",
		Dependencies: []string{"base"},
		Handlers: map[Category][]string{
			CategoryMacro:       {AMSMacros},
			CategoryEnvironment: {AMSEnvironments},
		},
		Tags: map[string]TagStyle{
			TagsAMS: tagStyleAMS,
		},
	}
}
