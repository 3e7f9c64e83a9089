package mathdoc

// State is the lifecycle stage of a single MathItem.
// States only move forward, except Reset which returns to StateRemoved.
type State int

const (
	StateRemoved State = iota // pre-discovery baseline, also the post-reset state
	StateFound
	StateCompiled
	StateConverted
	StateRendered
)

func (s State) String() string {
	switch s {
	case StateRemoved:
		return "removed"
	case StateFound:
		return "found"
	case StateCompiled:
		return "compiled"
	case StateConverted:
		return "converted"
	case StateRendered:
		return "rendered"
	default:
		return "unknown"
	}
}

// DocState is the furthest stage a full-document pass has reached.
type DocState int

const (
	DocInitial DocState = iota
	DocFound
	DocCompiled
	DocTypeset
)

func (s DocState) String() string {
	switch s {
	case DocInitial:
		return "initial"
	case DocFound:
		return "found"
	case DocCompiled:
		return "compiled"
	case DocTypeset:
		return "typeset"
	default:
		return "unknown"
	}
}

// Delimiter is the literal pair of strings bounding a math span.
// Environment matches have an empty pair.
type Delimiter struct {
	Start string
	End   string
}

// Position locates an item in the tree. Start and End are byte offsets into
// the value of the text node Node. After substitution Node is the wrapper
// element and both offsets are zero.
type Position struct {
	Node  Node
	Start int
	End   int
}

// Found is one candidate span produced by an input processor's FindMath.
type Found struct {
	Math      string // payload between delimiters
	Source    string // literal span including delimiters
	Display   bool
	Delimiter Delimiter
	Position  Position
}
