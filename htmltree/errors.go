package htmltree

import "errors"

// Sentinel errors for tree operations.
var (
	ErrForeignNode = errors.New("node is not an *html.Node")
	ErrNotText     = errors.New("node is not a text node")
	ErrParse       = errors.New("failed to parse HTML")
	ErrRender      = errors.New("failed to render HTML")
)
