package mdmath

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/alnah/go-mathdoc"
)

// Math placeholders use Unicode Private Use Area characters, which pass
// through goldmark unchanged.
const (
	MathStartPlaceholder = "\uE002" // U+E002: Private Use Area
	MathEndPlaceholder   = "\uE003" // U+E003: Private Use Area
)

var (
	crlfOrCR           = regexp.MustCompile(`\r\n?`)
	fencedCodeBlock    = regexp.MustCompile("^ {0,3}(```|~~~)")
	indentedCodeBlock  = regexp.MustCompile(`^(    |\t)`)
	placeholderPattern = regexp.MustCompile(MathStartPlaceholder + `(\d+)` + MathEndPlaceholder)
)

// Delimiters says which spans must be kept away from Markdown.
type Delimiters struct {
	Inline       []mathdoc.Delimiter
	Display      []mathdoc.Delimiter
	Escapes      bool // protect \$ so it stays an escape
	Environments bool // protect \begin{..}..\end{..}
}

type delim struct {
	open, close string
	inline      bool
}

// protector replaces math spans with numbered placeholders and remembers
// the originals.
type protector struct {
	delims       []delim
	escapes      bool
	environments bool
	spans        []string
}

func newProtector(d Delimiters) *protector {
	p := &protector{escapes: d.Escapes, environments: d.Environments}
	for _, dl := range d.Inline {
		if dl.Start != "" && dl.End != "" {
			p.delims = append(p.delims, delim{open: dl.Start, close: dl.End, inline: true})
		}
	}
	for _, dl := range d.Display {
		if dl.Start != "" && dl.End != "" {
			p.delims = append(p.delims, delim{open: dl.Start, close: dl.End})
		}
	}
	// Longest opener first so "$$" wins over "$".
	slices.SortStableFunc(p.delims, func(a, b delim) int { return len(b.open) - len(a.open) })
	return p
}

// Protect swaps the math in content for placeholders. Fenced and indented
// code blocks and inline code spans are left alone.
func (p *protector) Protect(content string) string {
	lines := strings.Split(content, "\n")
	var out, text []string
	flush := func() {
		if len(text) > 0 {
			out = append(out, p.protectText(strings.Join(text, "\n")))
			text = text[:0]
		}
	}

	var fence string
	prevBlank := true
	for _, line := range lines {
		if fence != "" {
			out = append(out, line)
			if strings.HasPrefix(strings.TrimLeft(line, " "), fence) {
				fence = ""
			}
			continue
		}
		if m := fencedCodeBlock.FindStringSubmatch(line); m != nil {
			flush()
			fence = m[1]
			out = append(out, line)
			continue
		}
		if prevBlank && indentedCodeBlock.MatchString(line) {
			flush()
			out = append(out, line)
			continue
		}
		text = append(text, line)
		prevBlank = strings.TrimSpace(line) == ""
	}
	flush()
	return strings.Join(out, "\n")
}

func (p *protector) protectText(s string) string {
	var b strings.Builder
	i := 0
	for i < len(s) {
		switch {
		case s[i] == '`':
			n := runLength(s, i, '`')
			if end := findCodeSpanEnd(s, i+n, n); end >= 0 {
				b.WriteString(s[i:end])
				i = end
				continue
			}
			b.WriteString(s[i : i+n])
			i += n
			continue
		case p.environments && strings.HasPrefix(s[i:], `\begin{`):
			if end := findEnvironmentEnd(s, i); end >= 0 {
				b.WriteString(p.hold(s[i:end]))
				i = end
				continue
			}
		case s[i] == '\\' && i+1 < len(s) && s[i+1] == '$' && p.escapes:
			b.WriteString(p.hold(s[i : i+2]))
			i += 2
			continue
		}
		if end := p.matchDelimiter(s, i); end >= 0 {
			b.WriteString(p.hold(s[i:end]))
			i = end
			continue
		}
		if s[i] == '\\' && i+1 < len(s) {
			b.WriteString(s[i : i+2])
			i += 2
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

// matchDelimiter returns the end of a math span opening at i, or -1.
func (p *protector) matchDelimiter(s string, i int) int {
	for _, d := range p.delims {
		if !strings.HasPrefix(s[i:], d.open) {
			continue
		}
		limit := len(s)
		if d.inline {
			if j := strings.Index(s[i:], "\n\n"); j >= 0 {
				limit = i + j
			}
		}
		if end := findClose(s[:limit], i+len(d.open), d.close); end >= 0 {
			return end
		}
	}
	return -1
}

// findClose finds close at or after from, stepping over backslash pairs,
// and returns the index just past it.
func findClose(s string, from int, close string) int {
	for j := from; j < len(s); j++ {
		if strings.HasPrefix(s[j:], close) {
			return j + len(close)
		}
		if s[j] == '\\' {
			j++
		}
	}
	return -1
}

// findEnvironmentEnd returns the index just past the \end{name} matching
// the \begin{name} at i, or -1.
func findEnvironmentEnd(s string, i int) int {
	start := i + len(`\begin{`)
	n := strings.IndexByte(s[start:], '}')
	if n <= 0 {
		return -1
	}
	name := s[start : start+n]
	begin, end := `\begin{`+name+`}`, `\end{`+name+`}`
	depth := 0
	for j := i; j < len(s); {
		switch {
		case strings.HasPrefix(s[j:], begin):
			depth++
			j += len(begin)
		case strings.HasPrefix(s[j:], end):
			depth--
			j += len(end)
			if depth == 0 {
				return j
			}
		default:
			j++
		}
	}
	return -1
}

func runLength(s string, i int, c byte) int {
	n := 0
	for i+n < len(s) && s[i+n] == c {
		n++
	}
	return n
}

// findCodeSpanEnd returns the index just past a backtick run of exactly n
// starting at or after from, or -1.
func findCodeSpanEnd(s string, from, n int) int {
	for j := from; j < len(s); {
		if s[j] != '`' {
			j++
			continue
		}
		m := runLength(s, j, '`')
		if m == n {
			return j + m
		}
		j += m
	}
	return -1
}

func (p *protector) hold(span string) string {
	p.spans = append(p.spans, span)
	return MathStartPlaceholder + strconv.Itoa(len(p.spans)-1) + MathEndPlaceholder
}

// Restore replaces placeholders in rendered HTML with the escaped
// original spans.
func (p *protector) Restore(rendered string) string {
	return placeholderPattern.ReplaceAllStringFunc(rendered, func(m string) string {
		idx, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(m, MathStartPlaceholder), MathEndPlaceholder))
		if err != nil || idx >= len(p.spans) {
			return m
		}
		return html.EscapeString(p.spans[idx])
	})
}

func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}
