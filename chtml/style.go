package chtml

import (
	"strings"

	"github.com/alnah/go-mathdoc"
)

// StyleID identifies the injected <style> element.
const StyleID = "MJX-CHTML-styles"

// InjectStyle inserts css as a <style> element into doc: appended to
// <head>, else first in <body>, else first under doc. A second call
// replaces the content of the element added by the first. Empty css is a
// no-op.
func InjectStyle(a mathdoc.Adaptor, doc mathdoc.Node, css string) error {
	if css == "" {
		return nil
	}
	text := a.CreateText(sanitizeCSS(css))

	if found := a.Elements(doc, []string{"style#" + StyleID}); len(found) > 0 {
		style := found[0]
		for _, c := range a.Children(style) {
			if err := a.Remove(c); err != nil {
				return err
			}
		}
		a.Append(style, text)
		return nil
	}

	style := a.CreateElement("style")
	a.SetAttribute(style, "id", StyleID)
	a.Append(style, text)

	if head := a.Head(doc); head != nil {
		a.Append(head, style)
		return nil
	}
	body := a.Body(doc)
	if first := a.FirstChild(body); first != nil {
		return a.InsertBefore(style, first)
	}
	a.Append(body, style)
	return nil
}

// sanitizeCSS escapes sequences that could close the <style> element early.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
