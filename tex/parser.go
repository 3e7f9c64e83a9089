package tex

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Parser turns a TeX string into a Node tree. It recognizes groups,
// scripts, control sequences and environments, and defers every token to
// the handlers of its ParserConfiguration. It does not expand macros.
type Parser struct {
	src     string
	pos     int
	pc      *ParserConfiguration
	digits  *regexp.Regexp
	display bool

	envs  []string // open environments, innermost last
	used  []string // every environment begun, in order
	tag   string
	notag bool
}

type frame int

const (
	frameTop frame = iota
	frameGroup
	frameTable
	frameLeft
)

const (
	stopEOF   = ""
	stopBrace = "}"
	stopCell  = "&"
	stopRow   = `\\`
	stopEnd   = "end"
	stopRight = "right"
)

func newParser(src string, pc *ParserConfiguration, digits *regexp.Regexp, display bool) *Parser {
	return &Parser{src: src, pc: pc, digits: digits, display: display}
}

// Parse parses the whole input.
func (p *Parser) Parse() (*Node, error) {
	nodes, _, err := p.list(frameTop)
	if err != nil {
		return nil, err
	}
	return Elem(KindRow, nodes...), nil
}

// Display reports whether the math is in display mode.
func (p *Parser) Display() bool { return p.display }

// Remaining returns the unparsed input.
func (p *Parser) Remaining() string { return p.src[p.pos:] }

// Advance moves the read position forward by n bytes.
func (p *Parser) Advance(n int) { p.pos = min(p.pos+n, len(p.src)) }

// Backup moves the read position back by n bytes.
func (p *Parser) Backup(n int) { p.pos = max(p.pos-n, 0) }

// Digits returns the pattern numbers are matched with.
func (p *Parser) Digits() *regexp.Regexp { return p.digits }

// SetTag sets an explicit equation tag.
func (p *Parser) SetTag(tag string) { p.tag = tag }

// SuppressTag disables automatic numbering for this equation.
func (p *Parser) SuppressTag() { p.notag = true }

func (p *Parser) list(fr frame) ([]*Node, string, error) {
	var nodes []*Node
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			switch fr {
			case frameGroup:
				return nil, "", parseErrorf("MissingCloseBrace", "Missing close brace")
			case frameTable:
				return nil, "", parseErrorf("MissingEnd", `Missing \end{%s}`, p.currentEnv())
			case frameLeft:
				return nil, "", parseErrorf("MissingRight", `Missing \right`)
			}
			return nodes, stopEOF, nil
		}

		var (
			n   *Node
			err error
		)
		switch c := p.src[p.pos]; c {
		case '}':
			if fr != frameGroup {
				return nil, "", parseErrorf("ExtraCloseBrace", "Extra close brace or missing open brace")
			}
			p.pos++
			return nodes, stopBrace, nil
		case '{':
			p.pos++
			var inner []*Node
			if inner, _, err = p.list(frameGroup); err == nil {
				n = Elem(KindRow, inner...)
			}
		case '^', '_', '\'':
			p.pos++
			nodes, err = p.script(nodes, c)
		case '&':
			if fr != frameTable {
				return nil, "", parseErrorf("Misplaced", "Misplaced &")
			}
			p.pos++
			return nodes, stopCell, nil
		case '%':
			p.skipComment()
		case '\\':
			switch name := p.peekControl(); name {
			case `\`:
				p.pos += 2
				if fr == frameTable {
					return nodes, stopRow, nil
				}
				n = Elem(KindSpace).SetAttr("linebreak", "newline")
			case "end":
				if fr != frameTable {
					return nil, "", parseErrorf("ExtraEnd", `Extra \end`)
				}
				return nodes, stopEnd, nil
			case "right":
				if fr != frameLeft {
					return nil, "", parseErrorf("ExtraRight", `Extra \right or missing \left`)
				}
				p.pos += 1 + len(name)
				return nodes, stopRight, nil
			default:
				n, err = p.macro()
			}
		default:
			n, err = p.character()
		}
		if err != nil {
			return nil, "", err
		}
		if n != nil {
			nodes = append(nodes, n)
		}
	}
}

// script attaches a superscript, subscript or prime to the last node.
func (p *Parser) script(nodes []*Node, c byte) ([]*Node, error) {
	base := Elem(KindRow)
	if len(nodes) > 0 {
		base = nodes[len(nodes)-1]
		nodes = nodes[:len(nodes)-1]
	}

	var arg *Node
	if c == '\'' {
		arg = Leaf(KindOp, "′")
	} else {
		var err error
		if arg, err = p.Arg(); err != nil {
			return nil, err
		}
	}

	sup := c != '_'
	var n *Node
	switch {
	case !sup && (base.Kind == KindSub || base.Kind == KindSubSup):
		return nil, parseErrorf("DoubleSubscripts", "Double subscripts: use braces to clarify")
	case sup && (base.Kind == KindSup || base.Kind == KindSubSup):
		return nil, parseErrorf("DoubleExponent", "Double exponent: use braces to clarify")
	case !sup && base.Kind == KindSup:
		n = Elem(KindSubSup, base.Children[0], arg, base.Children[1])
	case sup && base.Kind == KindSub:
		n = Elem(KindSubSup, base.Children[0], base.Children[1], arg)
	case !sup:
		n = Elem(KindSub, base, arg)
	default:
		n = Elem(KindSup, base, arg)
	}
	return append(nodes, n), nil
}

// Arg parses one macro argument: a braced group, a control sequence or a
// single character.
func (p *Parser) Arg() (*Node, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return nil, parseErrorf("MissingArgument", "Missing argument")
	}
	switch p.src[p.pos] {
	case '{':
		p.pos++
		inner, _, err := p.list(frameGroup)
		if err != nil {
			return nil, err
		}
		return row(inner), nil
	case '\\':
		switch p.peekControl() {
		case `\`, "end", "right":
			return nil, parseErrorf("MissingArgument", "Missing argument")
		}
		n, err := p.macro()
		if err == nil && n == nil {
			n = Elem(KindRow)
		}
		return n, err
	case '}', '&', '^', '_':
		return nil, parseErrorf("MissingArgument", "Missing argument")
	}
	return p.character()
}

// RawArg returns the literal text of the next argument without parsing it.
func (p *Parser) RawArg() (string, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return "", parseErrorf("MissingArgument", "Missing argument")
	}
	switch p.src[p.pos] {
	case '{':
		depth := 0
		for i := p.pos; i < len(p.src); i++ {
			switch p.src[i] {
			case '\\':
				i++
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					s := p.src[p.pos+1 : i]
					p.pos = i + 1
					return s, nil
				}
			}
		}
		return "", parseErrorf("MissingCloseBrace", "Missing close brace")
	case '\\':
		name := p.peekControl()
		p.pos += 1 + len(name)
		return `\` + name, nil
	case '}':
		return "", parseErrorf("MissingArgument", "Missing argument")
	}
	_, size := utf8.DecodeRuneInString(p.src[p.pos:])
	s := p.src[p.pos : p.pos+size]
	p.pos += size
	return s, nil
}

// OptArg returns the literal text of an optional [..] argument.
func (p *Parser) OptArg() (string, bool, error) {
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != '[' {
		return "", false, nil
	}
	depth := 0
	for i := p.pos + 1; i < len(p.src); i++ {
		switch p.src[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
		case ']':
			if depth == 0 {
				s := p.src[p.pos+1 : i]
				p.pos = i + 1
				return s, true, nil
			}
		}
	}
	return "", false, parseErrorf("MissingCloseBracket", "Could not find closing ']' for argument")
}

// ParseString parses s with the same configuration, as a nested
// expression.
func (p *Parser) ParseString(s string) (*Node, error) {
	sub := newParser(s, p.pc, p.digits, p.display)
	nodes, _, err := sub.list(frameTop)
	if err != nil {
		return nil, err
	}
	return row(nodes), nil
}

// Delimiter parses a delimiter token for \left, \right and the \big family.
func (p *Parser) Delimiter(ctx string) (*Node, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return nil, parseErrorf("MissingOrUnrecognizedDelim", `Missing or unrecognized delimiter for \%s`, ctx)
	}
	var tok string
	if p.src[p.pos] == '\\' {
		tok = `\` + p.peekControl()
	} else {
		_, size := utf8.DecodeRuneInString(p.src[p.pos:])
		tok = p.src[p.pos : p.pos+size]
	}
	h, ok := p.pc.Lookup(CategoryDelimiter, tok)
	if !ok {
		return nil, parseErrorf("MissingOrUnrecognizedDelim", `Missing or unrecognized delimiter for \%s`, ctx)
	}
	p.pos += len(tok)
	return h(p, tok)
}

// Fenced parses up to the matching \right and returns the fenced row.
func (p *Parser) Fenced(open *Node) (*Node, error) {
	inner, _, err := p.list(frameLeft)
	if err != nil {
		return nil, err
	}
	closing, err := p.Delimiter("right")
	if err != nil {
		return nil, err
	}
	var nodes []*Node
	if open.Text != "" {
		nodes = append(nodes, open.SetAttr("fence", "true"))
	}
	nodes = append(nodes, inner...)
	if closing.Text != "" {
		nodes = append(nodes, closing.SetAttr("fence", "true"))
	}
	return Elem(KindRow, nodes...), nil
}

// Table parses the body of environment env into an mtable: cells split on
// &, rows on \\, up to the matching \end{env}.
func (p *Parser) Table(env string) (*Node, error) {
	table := Elem(KindTable)
	tr := Elem(KindTR)
	for {
		cell, stop, err := p.list(frameTable)
		if err != nil {
			return nil, err
		}
		tr.Children = append(tr.Children, Elem(KindTD, cell...))
		switch stop {
		case stopCell:
			continue
		case stopRow:
			table.Children = append(table.Children, tr)
			tr = Elem(KindTR)
			continue
		}

		// stopEnd: consume \end{name}
		p.pos += 1 + len("end")
		name, err := p.RawArg()
		if err != nil {
			return nil, err
		}
		if name != env {
			return nil, parseErrorf("EnvBadEnd", `\begin{%s} ended with \end{%s}`, env, name)
		}
		if !(len(tr.Children) == 1 && len(tr.Children[0].Children) == 0 && len(table.Children) > 0) {
			table.Children = append(table.Children, tr)
		}
		return table, nil
	}
}

func (p *Parser) beginEnv(name string) (*Node, error) {
	h, ok := p.pc.Lookup(CategoryEnvironment, name)
	if !ok {
		return nil, parseErrorf("UnknownEnv", "Unknown environment '%s'", name)
	}
	p.envs = append(p.envs, name)
	p.used = append(p.used, name)
	defer func() { p.envs = p.envs[:len(p.envs)-1] }()
	return h(p, name)
}

func (p *Parser) currentEnv() string {
	if len(p.envs) == 0 {
		return ""
	}
	return p.envs[len(p.envs)-1]
}

func (p *Parser) macro() (*Node, error) {
	name := p.peekControl()
	if name == "" {
		p.pos = len(p.src)
		return nil, parseErrorf("IncompleteControl", "Incomplete control sequence")
	}
	p.pos += 1 + len(name)
	h, ok := p.pc.Lookup(CategoryMacro, name)
	if !ok {
		return nil, parseErrorf("UndefinedControlSequence", `Undefined control sequence \%s`, name)
	}
	return h(p, name)
}

func (p *Parser) character() (*Node, error) {
	r, size := utf8.DecodeRuneInString(p.src[p.pos:])
	if r == utf8.RuneError && size <= 1 {
		p.pos++
		return nil, parseErrorf("BadCharacter", "Invalid UTF-8 in input")
	}
	name := p.src[p.pos : p.pos+size]
	p.pos += size
	h, ok := p.pc.Lookup(CategoryCharacter, name)
	if !ok {
		return nil, parseErrorf("UnknownCharacter", "Unrecognized character '%s'", name)
	}
	return h(p, name)
}

// peekControl returns the name of the control sequence at the read
// position, without the backslash: a run of ASCII letters or one rune.
func (p *Parser) peekControl() string {
	i := p.pos + 1
	if i >= len(p.src) {
		return ""
	}
	j := i
	for j < len(p.src) && isLetter(p.src[j]) {
		j++
	}
	if j > i {
		return p.src[i:j]
	}
	_, size := utf8.DecodeRuneInString(p.src[i:])
	return p.src[i : i+size]
}

func (p *Parser) skipSpace() {
	for p.pos < len(p.src) && strings.IndexByte(" \t\n\r", p.src[p.pos]) >= 0 {
		p.pos++
	}
}

func (p *Parser) skipComment() {
	if i := strings.IndexByte(p.src[p.pos:], '\n'); i >= 0 {
		p.pos += i + 1
		return
	}
	p.pos = len(p.src)
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
