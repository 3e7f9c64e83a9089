// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"strings"
)

// ForTimeout returns a hint about increasing timeout for slow operations.
func ForTimeout() string {
	return format("for large batches, raise the --timeout value")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/go-mathdoc/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	// Find a user config path (contains .config/go-mathdoc) to suggest
	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/go-mathdoc") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForStyleNotFound returns hints for style not found errors.
func ForStyleNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForUnknownPackage returns hints for TeX packages that are not registered.
func ForUnknownPackage(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("known packages: " + strings.Join(available, ", ") + "; run 'mathdoc packages' for details")
}

// ForSelector returns a hint for element selectors that cannot be used.
func ForSelector() string {
	return format("elements accept tag, #id and .class selectors, comma separated, without combinators")
}

// ForCompileErrors returns a hint for documents where some math failed.
func ForCompileErrors(failed int) string {
	if failed == 0 {
		return ""
	}
	return format("failed math is left in the output as an error node; use --verbose to list each item")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}
