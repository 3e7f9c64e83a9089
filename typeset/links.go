package typeset

import (
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// RebaseRelativePaths rewrites relative img[src] and a[href] values under
// root so they resolve from outputDir instead of sourceDir.
//
// Left untouched: URLs, anchors, absolute paths, and paths that leave
// sourceDir.
func RebaseRelativePaths(root *html.Node, sourceDir, outputDir string) error {
	absSource, err := filepath.Abs(sourceDir)
	if err != nil {
		return err
	}
	absOutput, err := filepath.Abs(outputDir)
	if err != nil {
		return err
	}
	if absSource == absOutput {
		return nil
	}
	rebaseNode(root, absSource, absOutput)
	return nil
}

func rebaseNode(n *html.Node, sourceDir, outputDir string) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "img":
			rebaseAttr(n, "src", sourceDir, outputDir)
		case "a":
			rebaseAttr(n, "href", sourceDir, outputDir)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rebaseNode(c, sourceDir, outputDir)
	}
}

func rebaseAttr(n *html.Node, attrName, sourceDir, outputDir string) {
	for i, attr := range n.Attr {
		if attr.Key != attrName || !isRelativePath(attr.Val) {
			continue
		}

		p, suffix := attr.Val, ""
		if j := strings.IndexAny(p, "?#"); j >= 0 {
			p, suffix = p[:j], p[j:]
		}

		absPath := filepath.Join(sourceDir, filepath.FromSlash(p))
		if !isPathUnderDir(absPath, sourceDir) {
			continue
		}
		rel, err := filepath.Rel(outputDir, absPath)
		if err != nil {
			continue
		}
		n.Attr[i].Val = filepath.ToSlash(rel) + suffix
	}
}

// isRelativePath returns true if the path should be rewritten.
func isRelativePath(path string) bool {
	if path == "" {
		return false
	}
	for _, prefix := range []string{"http://", "https://", "file://", "data:", "mailto:", "//", "#"} {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return !filepath.IsAbs(path) && !strings.HasPrefix(path, "/")
}

// isPathUnderDir checks if absPath is under dir (prevents path traversal).
func isPathUnderDir(absPath, dir string) bool {
	cleanPath := filepath.Clean(absPath)
	cleanDir := filepath.Clean(dir)

	if !strings.HasSuffix(cleanDir, string(filepath.Separator)) {
		cleanDir += string(filepath.Separator)
	}
	return strings.HasPrefix(cleanPath+string(filepath.Separator), cleanDir)
}
