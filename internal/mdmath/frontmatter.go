package mdmath

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alnah/go-mathdoc/internal/yamlutil"
)

// ErrFrontMatter indicates the YAML front matter block could not be read.
var ErrFrontMatter = errors.New("invalid front matter")

// FrontMatter holds the metadata read from a leading YAML block. Unknown
// keys are ignored.
type FrontMatter struct {
	Title string `yaml:"title"`
	Lang  string `yaml:"lang"`
}

// splitFrontMatter separates a leading "---" YAML block from the body.
// Content without a closed block is returned unchanged.
func splitFrontMatter(content string) (FrontMatter, string, error) {
	var fm FrontMatter
	first, rest, ok := strings.Cut(content, "\n")
	if !ok || strings.TrimRight(first, " \t") != "---" {
		return fm, content, nil
	}

	offset := 0
	for {
		line, next, more := strings.Cut(rest[offset:], "\n")
		trimmed := strings.TrimRight(line, " \t")
		if trimmed == "---" || trimmed == "..." {
			block := rest[:offset]
			body := ""
			if more {
				body = next
			}
			if strings.TrimSpace(block) != "" {
				if err := yamlutil.Unmarshal([]byte(block), &fm); err != nil {
					return fm, content, fmt.Errorf("%w: %v", ErrFrontMatter, err)
				}
			}
			return fm, body, nil
		}
		if !more {
			return FrontMatter{}, content, nil
		}
		offset += len(line) + 1
	}
}
