package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-mathdoc/typeset"
)

// runFind lists the math found in each file without writing anything.
// Files are handled one at a time, in discovery order.
func runFind(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseFindFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printFindUsage(env.Stdout)
			return nil
		}
		return err
	}

	cfg, err := loadConfig(flags.common.config)
	if err != nil {
		return err
	}
	texOpts, err := mergeTeXFlags(&flags.tex, cfg)
	if err != nil {
		return err
	}

	inputPath, err := resolveInputPath(positional)
	if err != nil {
		return err
	}
	files, err := discoverFiles(inputPath, "")
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no HTML or Markdown files in %s", ErrNoInput, inputPath)
	}

	c, err := typeset.NewConverter(
		typeset.WithTeXOptions(texOpts),
		typeset.WithLogger(newLogger(env.Stderr, flags.common.quiet, flags.common.verbose)),
		typeset.WithoutStyle(),
	)
	if err != nil {
		return err
	}

	var errs []error
	total := 0
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		matches, err := findInFile(ctx, c, f)
		if err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", f.InputPath, err)
			errs = append(errs, err)
			if matches == nil {
				continue
			}
		}
		total += len(matches)
		if flags.common.quiet {
			continue
		}
		for _, m := range matches {
			kind := "inline"
			if m.Display {
				kind = "display"
			}
			if flags.common.verbose {
				fmt.Fprintf(env.Stdout, "%s: %s %s...%s %q\n", f.InputPath, kind, m.Delimiter.Start, m.Delimiter.End, m.Math)
			} else {
				fmt.Fprintf(env.Stdout, "%s: %s %q\n", f.InputPath, kind, m.Source)
			}
		}
	}

	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "\n%d math item(s) in %d file(s)\n", total, len(files))
	}
	if len(errs) > 0 {
		return &batchError{total: len(files), errs: errs}
	}
	return nil
}

func findInFile(ctx context.Context, c *typeset.Converter, f FileToRender) ([]typeset.Match, error) {
	content, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadInput, err)
	}
	return c.Find(ctx, typeset.Input{Content: string(content), Format: f.Format})
}
