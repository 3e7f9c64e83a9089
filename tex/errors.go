package tex

import (
	"errors"
	"fmt"
)

// Sentinel errors for configuration and parsing.
var (
	ErrUnknownPackage = errors.New("unknown package")
	ErrParserMismatch = errors.New("package targets a different parser")
	ErrUnknownHandler = errors.New("unknown handler")
	ErrRegistrySealed = errors.New("registry is sealed")
	ErrInvalidPackage = errors.New("invalid package")
	ErrHook           = errors.New("configuration hook failed")
	ErrFilter         = errors.New("filter failed")
	ErrParse          = errors.New("TeX parse error")
)

// ParseError describes malformed TeX. ID is a stable machine-readable
// code; Message is meant for people.
type ParseError struct {
	ID      string
	Message string
	Source  string // the TeX being parsed
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.ID, e.Message)
}

func (e *ParseError) Unwrap() error { return ErrParse }

func parseErrorf(id, format string, args ...any) *ParseError {
	return &ParseError{ID: id, Message: fmt.Sprintf(format, args...)}
}
