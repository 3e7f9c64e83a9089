package htmltree

import (
	"slices"
	"strings"

	"golang.org/x/net/html"

	"github.com/alnah/go-mathdoc"
)

// selector is one compound simple selector: an optional tag followed by
// any number of #id and .class parts. Combinators are not supported.
type selector struct {
	tag     string // "" or "*" matches any element
	id      string
	classes []string
}

// compileSelectors splits each entry on commas and compiles every part.
// Entries that do not parse are dropped.
func compileSelectors(entries []string) []selector {
	var out []selector
	for _, entry := range entries {
		for _, part := range strings.Split(entry, ",") {
			if sel, ok := compileSelector(strings.TrimSpace(part)); ok {
				out = append(out, sel)
			}
		}
	}
	return out
}

func compileSelector(s string) (selector, bool) {
	if s == "" || strings.ContainsAny(s, " \t\n>+~[]():") {
		return selector{}, false
	}
	var sel selector
	i := strings.IndexAny(s, "#.")
	if i < 0 {
		sel.tag = strings.ToLower(s)
		return sel, true
	}
	sel.tag = strings.ToLower(s[:i])
	rest := s[i:]
	for rest != "" {
		kind := rest[0]
		rest = rest[1:]
		j := strings.IndexAny(rest, "#.")
		if j < 0 {
			j = len(rest)
		}
		name := rest[:j]
		rest = rest[j:]
		if name == "" {
			return selector{}, false
		}
		switch kind {
		case '#':
			if sel.id != "" && sel.id != name {
				return selector{}, false
			}
			sel.id = name
		case '.':
			sel.classes = append(sel.classes, name)
		}
	}
	return sel, true
}

func (s selector) match(h *html.Node) bool {
	if h.Type != html.ElementNode {
		return false
	}
	if s.tag != "" && s.tag != "*" && !strings.EqualFold(h.Data, s.tag) {
		return false
	}
	var id, class string
	for _, attr := range h.Attr {
		switch attr.Key {
		case "id":
			id = attr.Val
		case "class":
			class = attr.Val
		}
	}
	if s.id != "" && s.id != id {
		return false
	}
	have := strings.Fields(class)
	for _, want := range s.classes {
		if !slices.Contains(have, want) {
			return false
		}
	}
	return true
}

// Elements returns the elements under root (root included) matching any of
// the selectors, in document order and without duplicates. With no
// selectors it returns root itself.
func (a *Adaptor) Elements(root mathdoc.Node, selectors []string) []mathdoc.Node {
	h := node(root)
	if h == nil {
		return nil
	}
	if len(selectors) == 0 {
		return []mathdoc.Node{h}
	}
	sels := compileSelectors(selectors)
	var out []mathdoc.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for _, s := range sels {
			if s.match(n) {
				out = append(out, n)
				break
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(h)
	return out
}

// ValidSelector reports whether s is a selector list Elements understands.
func ValidSelector(s string) bool {
	for _, part := range strings.Split(s, ",") {
		if _, ok := compileSelector(strings.TrimSpace(part)); !ok {
			return false
		}
	}
	return true
}
