package typeset

import "errors"

// Sentinel errors for conversion.
var (
	ErrEmptyContent     = errors.New("content cannot be empty")
	ErrUnknownFormat    = errors.New("unknown input format")
	ErrConfiguration    = errors.New("invalid TeX configuration")
	ErrInvalidAssetPath = errors.New("invalid asset path")
	ErrStyle            = errors.New("failed to load style")
	ErrMarkdown         = errors.New("markdown conversion failed")
	ErrParse            = errors.New("failed to parse HTML")
	ErrRender           = errors.New("failed to render HTML")
	ErrMathFailed       = errors.New("some math failed to typeset")
)
