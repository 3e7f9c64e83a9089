package mathdoc

// InputProcessor discovers math in a tree and compiles it into an internal
// representation.
type InputProcessor interface {
	// Name identifies the processor in logs and errors (e.g. "TeX").
	Name() string
	// FindMath scans the tree under root and returns spans in document order.
	FindMath(a Adaptor, root Node) ([]Found, error)
	// Compile turns an item's math text into a compiled artifact.
	Compile(item *MathItem, doc *Document) (any, error)
	// FormatError builds the placeholder artifact stored for a failed compile.
	FormatError(err error) any
}

// OutputProcessor turns compiled math into tree nodes.
type OutputProcessor interface {
	Name() string
	// Convert builds an intermediate artifact from item.Compiled.
	Convert(item *MathItem, doc *Document) (any, error)
	// Render produces the node that will be substituted into the tree.
	Render(item *MathItem, doc *Document) (Node, error)
}
