package scan

import (
	"slices"
	"strings"

	"github.com/alnah/go-mathdoc"
)

// Match is one math span found in a string. Start and End are byte
// offsets of the whole span, delimiters included.
type Match struct {
	Math      string
	Display   bool
	Delimiter mathdoc.Delimiter
	Start     int
	End       int
}

// span is a half-open byte range of consumed text.
type span struct{ start, end int }

// FindString returns the matches in text in ascending start order.
// Display delimiters claim text first, then environments, then inline
// delimiters and refs over what is left.
func (s *Scanner) FindString(text string) []Match {
	var out []Match
	gaps := []span{{0, len(text)}}

	gaps = s.claim(text, gaps, &out, func(text string, g span) (Match, bool) {
		return s.pairAt(text, g, s.rules.Display, true)
	})
	if s.rules.ProcessEnvironments {
		gaps = s.claim(text, gaps, &out, s.environmentAt)
	}
	gaps = s.claim(text, gaps, &out, func(text string, g span) (Match, bool) {
		return s.pairAt(text, g, s.rules.Inline, false)
	})
	if s.rules.ProcessRefs {
		s.claim(text, gaps, &out, s.refAt)
	}

	slices.SortStableFunc(out, func(a, b Match) int { return a.Start - b.Start })
	return out
}

// claim runs find at every offset of every gap, left to right. A match
// consumes its span; the remaining gaps are returned for later phases.
// find receives the text and a gap whose start is the candidate offset.
func (s *Scanner) claim(text string, gaps []span, out *[]Match, find func(string, span) (Match, bool)) []span {
	var rest []span
	for _, g := range gaps {
		from := g.start
		for i := g.start; i < g.end; {
			m, ok := find(text, span{i, g.end})
			if !ok {
				i++
				continue
			}
			*out = append(*out, m)
			if m.Start > from {
				rest = append(rest, span{from, m.Start})
			}
			from, i = m.End, m.End
		}
		if from < g.end {
			rest = append(rest, span{from, g.end})
		}
	}
	return rest
}

// pairAt tries each delimiter pair, in declared order, at g.start.
func (s *Scanner) pairAt(text string, g span, pairs []mathdoc.Delimiter, display bool) (Match, bool) {
	i := g.start
	for _, d := range pairs {
		if !strings.HasPrefix(text[i:g.end], d.Start) || s.escaped(text, i) {
			continue
		}
		body := i + len(d.Start)
		end := s.closing(text, body, g.end, d.End)
		if end < 0 || end == body {
			continue
		}
		return Match{
			Math:      text[body:end],
			Display:   display,
			Delimiter: d,
			Start:     i,
			End:       end + len(d.End),
		}, true
	}
	return Match{}, false
}

// closing returns the offset of the first eligible occurrence of end in
// text[from:limit], or -1.
func (s *Scanner) closing(text string, from, limit int, end string) int {
	for from <= limit-len(end) {
		j := strings.Index(text[from:limit], end)
		if j < 0 {
			return -1
		}
		at := from + j
		if !s.escaped(text, at) {
			return at
		}
		from = at + 1
	}
	return -1
}

// escaped reports whether the byte at i is preceded by an odd number of
// backslashes while escape processing is on.
func (s *Scanner) escaped(text string, i int) bool {
	if !s.rules.ProcessEscapes {
		return false
	}
	n := 0
	for j := i - 1; j >= 0 && text[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}

const (
	beginPrefix = `\begin{`
	endPrefix   = `\end{`
)

// environmentAt matches \begin{name}...\end{name} at g.start. The payload
// is the whole environment and the delimiters are empty.
func (s *Scanner) environmentAt(text string, g span) (Match, bool) {
	i := g.start
	if !strings.HasPrefix(text[i:g.end], beginPrefix) || s.escaped(text, i) {
		return Match{}, false
	}
	nameStart := i + len(beginPrefix)
	k := strings.IndexByte(text[nameStart:g.end], '}')
	if k <= 0 {
		return Match{}, false
	}
	name := text[nameStart : nameStart+k]
	if strings.ContainsAny(name, "{\\") {
		return Match{}, false
	}
	closer := endPrefix + name + "}"
	end := s.closing(text, nameStart+k+1, g.end, closer)
	if end < 0 {
		return Match{}, false
	}
	stop := end + len(closer)
	return Match{
		Math:    text[i:stop],
		Display: true,
		Start:   i,
		End:     stop,
	}, true
}

// refAt matches \ref{label} or \eqref{label} at g.start.
func (s *Scanner) refAt(text string, g span) (Match, bool) {
	i := g.start
	window := text[i:g.end]
	var prefix string
	switch {
	case strings.HasPrefix(window, `\ref{`):
		prefix = `\ref{`
	case strings.HasPrefix(window, `\eqref{`):
		prefix = `\eqref{`
	default:
		return Match{}, false
	}
	if s.escaped(text, i) {
		return Match{}, false
	}
	k := strings.IndexByte(window[len(prefix):], '}')
	if k < 0 {
		return Match{}, false
	}
	stop := i + len(prefix) + k + 1
	return Match{
		Math:  text[i:stop],
		Start: i,
		End:   stop,
	}, true
}
