package tex

import "slices"

// TagStyle decides which display equations get an automatic number.
type TagStyle struct {
	// Numbered reports whether display math that used the given
	// environments is numbered.
	Numbered func(envs []string) bool
}

// Built-in tag style names.
const (
	TagsNone = "none"
	TagsAMS  = "ams"
	TagsAll  = "all"
)

var (
	tagStyleNone = TagStyle{Numbered: func([]string) bool { return false }}
	tagStyleAll  = TagStyle{Numbered: func([]string) bool { return true }}
	tagStyleAMS  = TagStyle{Numbered: func(envs []string) bool {
		return slices.ContainsFunc(envs, func(env string) bool {
			return slices.Contains(numberedEnvironments, env)
		})
	}}
)

// numberedEnvironments are the unstarred environments numbered under the
// ams style.
var numberedEnvironments = []string{"equation", "align", "gather", "multline", "alignat"}
