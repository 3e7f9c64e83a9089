package mathdoc

import "log/slog"

// Default wrapper element placed around substituted math.
const (
	DefaultWrapperTag   = "mjx-container"
	DefaultWrapperClass = "MathJax"
)

// Option configures a Document.
type Option func(*Document)

// WithInput registers input processors. Sources are scanned in
// registration order.
func WithInput(inputs ...InputProcessor) Option {
	return func(d *Document) {
		d.inputs = append(d.inputs, inputs...)
	}
}

// WithOutput sets the output processor.
func WithOutput(output OutputProcessor) Option {
	return func(d *Document) {
		d.output = output
	}
}

// WithLogger sets the logger used for stage diagnostics.
// A nil logger keeps the default, which discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Document) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithWrapper overrides the element tag and class used to wrap substituted
// math. An empty class adds no class attribute.
// Panics if tag is empty (programmer error).
func WithWrapper(tag, class string) Option {
	if tag == "" {
		panic("mathdoc: WithWrapper tag must not be empty")
	}
	return func(d *Document) {
		d.wrapperTag = tag
		d.wrapperClass = class
	}
}
