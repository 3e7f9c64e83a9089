package htmltree

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Tree is a parsed HTML input. Fragments are held under a synthetic
// document and <body> element that Render leaves out, so body-rooted
// lookups behave the same for fragments and full documents.
type Tree struct {
	Root     *html.Node
	Fragment bool
	body     *html.Node
}

// Parse parses HTML content, handling both full documents and fragments.
// Content starting with <!DOCTYPE or <html is a full document; anything
// else is parsed as a fragment in a <body> context.
func Parse(content string) (*Tree, error) {
	trimmed := strings.ToLower(strings.TrimSpace(content))

	if strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}
		return &Tree{Root: doc}, nil
	}

	context := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), context)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	for _, n := range nodes {
		body.AppendChild(n)
	}
	container := &html.Node{Type: html.DocumentNode}
	container.AppendChild(body)
	return &Tree{Root: container, Fragment: true, body: body}, nil
}

// ParseReader reads r fully and parses it with Parse.
func ParseReader(r io.Reader) (*Tree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return Parse(string(data))
}

// Render writes the tree back to a string. For fragments only the children
// of the synthetic container are rendered.
func (t *Tree) Render() (string, error) {
	var buf strings.Builder
	if err := t.RenderTo(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Body returns the <body> element, or the root when the document has none.
func (t *Tree) Body() *html.Node {
	if t.body != nil {
		return t.body
	}
	if b := findElement(t.Root, "body"); b != nil {
		return b
	}
	return t.Root
}

// RenderTo renders the tree to w.
func (t *Tree) RenderTo(w io.Writer) error {
	if t.Fragment {
		for c := t.body.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(w, c); err != nil {
				return fmt.Errorf("%w: %w", ErrRender, err)
			}
		}
		return nil
	}
	if err := html.Render(w, t.Root); err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	return nil
}

// RenderNode renders a single node and its subtree.
func RenderNode(n *html.Node) (string, error) {
	var buf strings.Builder
	if err := html.Render(&buf, n); err != nil {
		return "", fmt.Errorf("%w: %w", ErrRender, err)
	}
	return buf.String(), nil
}
