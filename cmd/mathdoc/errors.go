package main

import (
	"errors"
	"fmt"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage              = errors.New("invalid usage")
	ErrNoInput            = errors.New("no input specified")
	ErrReadInput          = errors.New("failed to read input file")
	ErrWriteOutput        = errors.New("failed to write output file")
	ErrInvalidExtension   = errors.New("file must be HTML (.html, .htm, .xhtml) or Markdown (.md, .markdown)")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrInvalidTimeout     = errors.New("invalid timeout")
	ErrUnknownCommand     = errors.New("unknown command")
)

// batchError reports the files of a run that failed. Each file error stays
// reachable through errors.Is and errors.As.
type batchError struct {
	total int
	errs  []error
}

func (e *batchError) Error() string {
	return fmt.Sprintf("%d of %d file(s) failed", len(e.errs), e.total)
}

func (e *batchError) Unwrap() []error {
	return e.errs
}
