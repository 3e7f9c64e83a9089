package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-mathdoc/internal/fileutil"
	"github.com/alnah/go-mathdoc/typeset"
)

// renderedExt names HTML written next to its HTML source, so the source
// is never overwritten. Directory walks skip files with this extension.
const renderedExt = "mathdoc.html"

// FileToRender represents a single file to process.
type FileToRender struct {
	InputPath  string
	OutputPath string
	Format     typeset.Format
}

// discoverFiles finds the HTML and Markdown files under inputPath.
func discoverFiles(inputPath, outputDir string) ([]FileToRender, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		format, err := inputFormat(inputPath)
		if err != nil {
			return nil, err
		}
		outPath, err := resolveOutputPath(inputPath, outputDir, "", format)
		if err != nil {
			return nil, err
		}
		return []FileToRender{{InputPath: inputPath, OutputPath: outPath, Format: format}}, nil
	}

	skipDir := ""
	if outputDir != "" {
		skipDir = filepath.Clean(outputDir)
	}

	var files []FileToRender
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() {
			// Output written inside the input tree is not input.
			if path != inputPath && filepath.Clean(path) == skipDir {
				return filepath.SkipDir
			}
			return nil
		}
		if isRendered(path) {
			return nil
		}
		format, err := inputFormat(path)
		if err != nil {
			return nil
		}
		outPath, err := resolveOutputPath(path, outputDir, inputPath, format)
		if err != nil {
			return err
		}
		files = append(files, FileToRender{InputPath: path, OutputPath: outPath, Format: format})
		return nil
	})

	return files, err
}

// inputFormat picks the format from the file extension.
func inputFormat(path string) (typeset.Format, error) {
	switch {
	case fileutil.IsHTML(path):
		return typeset.FormatHTML, nil
	case fileutil.IsMarkdown(path):
		return typeset.FormatMarkdown, nil
	}
	return 0, fmt.Errorf("%w: got %q", ErrInvalidExtension, filepath.Ext(path))
}

// resolveOutputPath determines the HTML output path for an input file.
// Files found under baseInputDir keep their relative directory inside
// outputDir. An outputDir ending in .html is taken as the file itself.
func resolveOutputPath(inputPath, outputDir, baseInputDir string, format typeset.Format) (string, error) {
	if outputDir == "" {
		ext := "html"
		if format == typeset.FormatHTML {
			ext = renderedExt
		}
		return fileutil.OutputPath(inputPath, "", ext)
	}

	if baseInputDir == "" && fileutil.IsHTML(outputDir) {
		return outputDir, nil
	}

	dir := outputDir
	if baseInputDir != "" {
		if relPath, err := filepath.Rel(baseInputDir, inputPath); err == nil {
			dir = filepath.Join(outputDir, filepath.Dir(relPath))
		}
	}
	outPath, err := fileutil.OutputPath(inputPath, dir, "html")
	if err != nil {
		return "", err
	}
	if samePath(outPath, inputPath) {
		return fileutil.OutputPath(inputPath, dir, renderedExt)
	}
	return outPath, nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

func isRendered(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), "."+renderedExt)
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > typeset.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, typeset.MaxPoolSize)
	}
	return nil
}
