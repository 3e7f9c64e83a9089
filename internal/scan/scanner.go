// Package scan finds delimited TeX math in the text nodes of a tree.
package scan

import (
	"strings"

	"github.com/alnah/go-mathdoc"
)

// Scanner finds math spans according to a fixed set of Rules.
// A Scanner is immutable and safe for concurrent use.
type Scanner struct {
	rules    Rules
	skipTags map[string]struct{}
}

// New compiles rules into a Scanner.
func New(rules Rules) (*Scanner, error) {
	if err := rules.validate(); err != nil {
		return nil, err
	}
	s := &Scanner{rules: rules, skipTags: make(map[string]struct{}, len(rules.SkipTags))}
	for _, tag := range rules.SkipTags {
		s.skipTags[strings.ToLower(tag)] = struct{}{}
	}
	return s, nil
}

// Rules returns the rules the scanner was built from.
func (s *Scanner) Rules() Rules { return s.rules }

// Find scans every root in order and returns the spans in traversal order.
// A root nested inside an earlier root is skipped so no span is reported
// twice.
func (s *Scanner) Find(a mathdoc.Adaptor, roots []mathdoc.Node) []mathdoc.Found {
	var out []mathdoc.Found
	for i, root := range roots {
		if nestedIn(a, root, roots[:i]) {
			continue
		}
		s.walk(a, root, false, &out)
	}
	return out
}

// walk scans the text under n. An ignore-class element ends the descent
// even when a process-class element sits below it. processed reports
// whether a process-class ancestor was seen on the way down.
func (s *Scanner) walk(a mathdoc.Adaptor, n mathdoc.Node, processed bool, out *[]mathdoc.Found) {
	kind := a.Kind(n)
	if _, skip := s.skipTags[kind]; skip {
		return
	}
	if s.rules.IgnoreClass != "" && a.HasClass(n, s.rules.IgnoreClass) {
		return
	}
	if s.rules.ProcessClass != "" && a.HasClass(n, s.rules.ProcessClass) {
		processed = true
	}
	visible := s.rules.ProcessClass == "" || processed

	for c := a.FirstChild(n); c != nil; c = a.Next(c) {
		switch a.Kind(c) {
		case mathdoc.KindText:
			if visible {
				s.text(a, c, out)
			}
		case mathdoc.KindComment, "#doctype":
		default:
			s.walk(a, c, processed, out)
		}
	}
}

func (s *Scanner) text(a mathdoc.Adaptor, n mathdoc.Node, out *[]mathdoc.Found) {
	value := a.Value(n)
	for _, m := range s.FindString(value) {
		*out = append(*out, mathdoc.Found{
			Math:      m.Math,
			Source:    value[m.Start:m.End],
			Display:   m.Display,
			Delimiter: m.Delimiter,
			Position:  mathdoc.Position{Node: n, Start: m.Start, End: m.End},
		})
	}
}

// nestedIn reports whether n has one of roots as an ancestor or is one.
func nestedIn(a mathdoc.Adaptor, n mathdoc.Node, roots []mathdoc.Node) bool {
	for p := n; p != nil; p = a.Parent(p) {
		for _, r := range roots {
			if p == r {
				return true
			}
		}
	}
	return false
}
