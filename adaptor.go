package mathdoc

// Node is an opaque reference to a node of the underlying tree.
// Only the Adaptor that produced a Node may interpret it. A nil Node means
// "no node" and every Adaptor method returning a Node must return an untyped
// nil in that case. Nodes must be comparable; identity is ==.
type Node any

// Node kinds returned by Adaptor.Kind for non-element nodes.
// Elements report their lower-case tag name.
const (
	KindText     = "#text"
	KindComment  = "#comment"
	KindDocument = "#document"
)

// Adaptor gives uniform read/write access to a document tree.
// The engine never touches the concrete tree except through this interface.
//
// Mutations that require a parent (InsertBefore, Replace, Remove) return
// ErrNoParent when the node is detached. Replace must leave newNode at the
// exact tree position oldNode occupied, so callers can retarget references.
type Adaptor interface {
	// Kind returns "#text", "#comment", "#document" or a lower-case tag name.
	Kind(n Node) string
	// Value returns the literal content of a text or comment node.
	Value(n Node) string
	// TextContent returns the concatenated text of n and its descendants.
	TextContent(n Node) string

	Parent(n Node) Node
	Children(n Node) []Node
	FirstChild(n Node) Node
	LastChild(n Node) Node
	Next(n Node) Node
	Previous(n Node) Node

	Attribute(n Node, name string) (string, bool)
	SetAttribute(n Node, name, value string)
	RemoveAttribute(n Node, name string)
	HasClass(n Node, name string) bool
	AddClass(n Node, name string)
	RemoveClass(n Node, name string)

	CreateElement(tag string) Node
	CreateText(text string) Node

	// Append adds child as the last child of parent, detaching it first.
	Append(parent, child Node)
	// InsertBefore inserts n as the previous sibling of ref.
	InsertBefore(n, ref Node) error
	// Replace puts newNode where oldNode is and detaches oldNode.
	Replace(newNode, oldNode Node) error
	Remove(n Node) error
	// Clone returns a deep, detached copy of n.
	Clone(n Node) Node
	// SplitText truncates the text node n to its first offset bytes and
	// inserts the remainder as a new text node right after it, which is
	// returned.
	SplitText(n Node, offset int) (Node, error)

	// Elements returns the nodes under root matching any of the selectors,
	// in document order. A nil or empty selector list yields root itself.
	Elements(root Node, selectors []string) []Node
	Head(doc Node) Node
	Body(doc Node) Node
}
