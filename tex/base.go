package tex

import (
	"regexp"
	"strings"
)

// Handler map and fallback ids registered by the base package.
const (
	BaseLetters      = "base-letters"
	BaseDigits       = "base-digits"
	BaseOperators    = "base-operators"
	BaseDelimiters   = "base-delimiters"
	BaseMacros       = "base-macros"
	BaseEnvironments = "base-environments"
	BaseCharacter    = "base-character"
)

func ident(text string) Handler {
	return func(*Parser, string) (*Node, error) { return Leaf(KindIdent, text), nil }
}

func op(text string) Handler {
	return func(*Parser, string) (*Node, error) { return Leaf(KindOp, text), nil }
}

func named(text string) Handler {
	return func(*Parser, string) (*Node, error) {
		return Leaf(KindIdent, text).SetAttr("mathvariant", "normal"), nil
	}
}

func space(width string) Handler {
	return func(*Parser, string) (*Node, error) {
		return Elem(KindSpace).SetAttr("width", width), nil
	}
}

// variant parses one argument and sets mathvariant on every token in it
// that does not already carry one.
func variant(v string) Handler {
	return func(p *Parser, _ string) (*Node, error) {
		arg, err := p.Arg()
		if err != nil {
			return nil, err
		}
		arg.Walk(func(n *Node) bool {
			if n.IsLeaf() {
				if _, set := n.Attr("mathvariant"); !set {
					n.SetAttr("mathvariant", v)
				}
			}
			return true
		})
		return arg, nil
	}
}

func frac(p *Parser, _ string) (*Node, error) {
	num, err := p.Arg()
	if err != nil {
		return nil, err
	}
	den, err := p.Arg()
	if err != nil {
		return nil, err
	}
	return Elem(KindFrac, num, den), nil
}

func sqrt(p *Parser, _ string) (*Node, error) {
	index, hasIndex, err := p.OptArg()
	if err != nil {
		return nil, err
	}
	base, err := p.Arg()
	if err != nil {
		return nil, err
	}
	if !hasIndex {
		return Elem(KindSqrt, base), nil
	}
	idx, err := p.ParseString(index)
	if err != nil {
		return nil, err
	}
	return Elem(KindRoot, base, idx), nil
}

func text(p *Parser, _ string) (*Node, error) {
	s, err := p.RawArg()
	if err != nil {
		return nil, err
	}
	return Leaf(KindText, s), nil
}

func left(p *Parser, _ string) (*Node, error) {
	open, err := p.Delimiter("left")
	if err != nil {
		return nil, err
	}
	return p.Fenced(open)
}

func big(size string) Handler {
	return func(p *Parser, name string) (*Node, error) {
		d, err := p.Delimiter(name)
		if err != nil {
			return nil, err
		}
		return d.SetAttr("minsize", size).SetAttr("maxsize", size), nil
	}
}

func begin(p *Parser, _ string) (*Node, error) {
	name, err := p.RawArg()
	if err != nil {
		return nil, err
	}
	return p.beginEnv(name)
}

func number(p *Parser, name string) (*Node, error) {
	p.Backup(len(name))
	m := p.Digits().FindString(p.Remaining())
	if m == "" {
		p.Advance(len(name))
		return Leaf(KindOp, name), nil
	}
	p.Advance(len(m))
	return Leaf(KindNumber, m), nil
}

func array(p *Parser, name string) (*Node, error) {
	cols, err := p.RawArg()
	if err != nil {
		return nil, err
	}
	table, err := p.Table(name)
	if err != nil {
		return nil, err
	}
	var align []string
	for _, c := range cols {
		switch c {
		case 'l':
			align = append(align, "left")
		case 'c':
			align = append(align, "center")
		case 'r':
			align = append(align, "right")
		}
	}
	if len(align) > 0 {
		table.SetAttr("columnalign", strings.Join(align, " "))
	}
	return table, nil
}

// equation holds a single display row.
func equation(p *Parser, name string) (*Node, error) {
	table, err := p.Table(name)
	if err != nil {
		return nil, err
	}
	if len(table.Children) == 1 && len(table.Children[0].Children) == 1 {
		return Elem(KindRow, table.Children[0].Children[0].Children...), nil
	}
	return nil, parseErrorf("Misplaced", "Misplaced & or \\\\ in %s", name)
}

var greek = map[string]string{
	"alpha": "α", "beta": "β", "gamma": "γ", "delta": "δ", "epsilon": "ϵ",
	"varepsilon": "ε", "zeta": "ζ", "eta": "η", "theta": "θ", "vartheta": "ϑ",
	"iota": "ι", "kappa": "κ", "lambda": "λ", "mu": "μ", "nu": "ν", "xi": "ξ",
	"pi": "π", "varpi": "ϖ", "rho": "ρ", "varrho": "ϱ", "sigma": "σ",
	"varsigma": "ς", "tau": "τ", "upsilon": "υ", "phi": "ϕ", "varphi": "φ",
	"chi": "χ", "psi": "ψ", "omega": "ω",
	"Gamma": "Γ", "Delta": "Δ", "Theta": "Θ", "Lambda": "Λ", "Xi": "Ξ",
	"Pi": "Π", "Sigma": "Σ", "Upsilon": "Υ", "Phi": "Φ", "Psi": "Ψ", "Omega": "Ω",
}

var symbols = map[string]string{
	"infty": "∞", "partial": "∂", "nabla": "∇", "hbar": "ℏ", "ell": "ℓ",
	"emptyset": "∅", "aleph": "ℵ", "Re": "ℜ", "Im": "ℑ",
}

var operators = map[string]string{
	"times": "×", "cdot": "⋅", "pm": "±", "mp": "∓", "div": "÷", "ast": "∗",
	"leq": "≤", "le": "≤", "geq": "≥", "ge": "≥", "neq": "≠", "ne": "≠",
	"approx": "≈", "equiv": "≡", "sim": "∼", "simeq": "≃", "propto": "∝",
	"ll": "≪", "gg": "≫",
	"sum": "∑", "prod": "∏", "int": "∫", "iint": "∬", "oint": "∮",
	"to": "→", "rightarrow": "→", "leftarrow": "←", "Rightarrow": "⇒",
	"Leftarrow": "⇐", "leftrightarrow": "↔", "Leftrightarrow": "⇔", "mapsto": "↦",
	"in": "∈", "notin": "∉", "ni": "∋", "subset": "⊂", "supset": "⊃",
	"subseteq": "⊆", "supseteq": "⊇", "cup": "∪", "cap": "∩", "setminus": "∖",
	"forall": "∀", "exists": "∃", "neg": "¬", "land": "∧", "lor": "∨",
	"wedge": "∧", "vee": "∨", "circ": "∘", "bullet": "∙", "oplus": "⊕",
	"otimes": "⊗", "perp": "⊥", "parallel": "∥", "mid": "∣",
	"ldots": "…", "cdots": "⋯", "vdots": "⋮", "ddots": "⋱", "prime": "′",
	"{": "{", "}": "}", "|": "‖", "$": "$", "%": "%", "&": "&", "#": "#", "_": "_",
	"langle": "⟨", "rangle": "⟩",
}

var functions = []string{
	"sin", "cos", "tan", "cot", "sec", "csc", "arcsin", "arccos", "arctan",
	"sinh", "cosh", "tanh", "log", "ln", "lg", "exp", "lim", "liminf",
	"limsup", "max", "min", "sup", "inf", "det", "dim", "ker", "deg", "gcd",
	"arg", "hom", "Pr",
}

func baseMaps() []HandlerMap {
	letters := NewPatternMap(BaseLetters, regexp.MustCompile(`^\p{L}$`), func(_ *Parser, name string) (*Node, error) {
		return Leaf(KindIdent, name), nil
	})
	digits := NewPatternMap(BaseDigits, regexp.MustCompile(`^[0-9.]$`), number)

	ops := map[string]Handler{
		"~": func(*Parser, string) (*Node, error) { return Leaf(KindText, " "), nil },
		"-": op("−"),
		"*": op("∗"),
	}
	for _, c := range strings.Split("+ = < > ( ) [ ] / , ; : ! | ? @", " ") {
		ops[c] = op(c)
	}

	delims := map[string]Handler{
		".": op(""), `\{`: op("{"), `\}`: op("}"), `\|`: op("‖"),
		`\langle`: op("⟨"), `\rangle`: op("⟩"), `\lfloor`: op("⌊"),
		`\rfloor`: op("⌋"), `\lceil`: op("⌈"), `\rceil`: op("⌉"),
		`\vert`: op("|"), `\Vert`: op("‖"),
	}
	for _, c := range []string{"(", ")", "[", "]", "|", "/"} {
		delims[c] = op(c)
	}

	macros := map[string]Handler{
		"frac":    frac,
		"sqrt":    sqrt,
		"text":    text,
		"mbox":    text,
		"mathrm":  variant("normal"),
		"mathbf":  variant("bold"),
		"mathit":  variant("italic"),
		"mathsf":  variant("sans-serif"),
		"mathtt":  variant("monospace"),
		"mathbb":  variant("double-struck"),
		"mathcal": variant("script"),
		"left":    left,
		"big":     big("1.2em"),
		"Big":     big("1.623em"),
		"bigg":    big("2.047em"),
		"Bigg":    big("2.470em"),
		"begin":   begin,
		",":       space("0.167em"),
		":":       space("0.222em"),
		">":       space("0.222em"),
		";":       space("0.278em"),
		"!":       space("-0.167em"),
		" ":       space("0.25em"),
		"quad":    space("1em"),
		"qquad":   space("2em"),
	}
	for name, ch := range greek {
		macros[name] = ident(ch)
	}
	for name, ch := range symbols {
		macros[name] = ident(ch)
	}
	for name, ch := range operators {
		macros[name] = op(ch)
	}
	for _, name := range functions {
		macros[name] = named(name)
	}

	envs := map[string]Handler{
		"array":     array,
		"equation":  equation,
		"equation*": equation,
	}

	return []HandlerMap{
		letters,
		digits,
		NewMap(BaseOperators, ops),
		NewMap(BaseDelimiters, delims),
		NewMap(BaseMacros, macros),
		NewMap(BaseEnvironments, envs),
	}
}

func baseConfiguration() *Configuration {
	return &Configuration{
		Name: "base",
		Handlers: map[Category][]string{
			CategoryCharacter:   {BaseLetters, BaseDigits, BaseOperators},
			CategoryDelimiter:   {BaseDelimiters},
			CategoryMacro:       {BaseMacros},
			CategoryEnvironment: {BaseEnvironments},
		},
		Fallbacks: map[Category]string{
			CategoryCharacter: BaseCharacter,
		},
		Options: map[string]any{
			OptionDigits:    `^(?:[0-9]+(?:\{,\}[0-9]{3})*(?:\.[0-9]*)?|\.[0-9]+)`,
			OptionMaxBuffer: 5 * 1024,
		},
		Tags: map[string]TagStyle{
			TagsNone: tagStyleNone,
			TagsAll:  tagStyleAll,
		},
	}
}

func baseFallback() Fallback {
	return Fallback{ID: BaseCharacter, Handler: func(_ *Parser, name string) (*Node, error) {
		return Leaf(KindOp, name), nil
	}}
}
