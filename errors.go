package mathdoc

import (
	"errors"
	"fmt"
)

// Sentinel errors for library operations.
var (
	ErrNoParent      = errors.New("node has no parent")
	ErrNoAdaptor     = errors.New("document requires a tree adaptor")
	ErrNoRoot        = errors.New("document requires a root node")
	ErrNoInput       = errors.New("document requires at least one input processor")
	ErrNoOutput      = errors.New("document requires an output processor")
	ErrCompile       = errors.New("math compilation failed")
	ErrConvert       = errors.New("math conversion failed")
	ErrRender        = errors.New("math rendering failed")
	ErrRetarget      = errors.New("math item position is stale")
	ErrFind          = errors.New("math discovery failed")
	ErrInvalidOffset = errors.New("text offset out of range")
)

// CompileError records an input processor failure for one item.
// The item still advances to StateCompiled with an error placeholder.
type CompileError struct {
	Math string
	Err  error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%v: %q: %v", ErrCompile, e.Math, e.Err)
}

func (e *CompileError) Unwrap() []error {
	return []error{ErrCompile, e.Err}
}

// RetargetError reports that an item's tree position could not be used
// for substitution or restoration. The item is left unchanged.
type RetargetError struct {
	Op   string // "update" or "reset"
	Math string
	Err  error
}

func (e *RetargetError) Error() string {
	return fmt.Sprintf("%v: %s %q: %v", ErrRetarget, e.Op, e.Math, e.Err)
}

func (e *RetargetError) Unwrap() []error {
	return []error{ErrRetarget, e.Err}
}

// ItemError ties a per-item failure to its position in a batch stage.
type ItemError struct {
	Index int
	Stage string
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("%s item %d: %v", e.Stage, e.Index, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}
