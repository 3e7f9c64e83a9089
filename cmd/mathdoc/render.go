package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-mathdoc"
	"github.com/alnah/go-mathdoc/internal/fileutil"
	"github.com/alnah/go-mathdoc/internal/hints"
	"github.com/alnah/go-mathdoc/tex"
	"github.com/alnah/go-mathdoc/typeset"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// RenderResult holds the outcome of a single file.
type RenderResult struct {
	InputPath  string
	OutputPath string
	Items      int
	Failed     []*mathdoc.ItemError
	MathErr    error // non-fatal math failures, the file was still written
	Err        error
	Duration   time.Duration
}

// runRender orchestrates the render command.
func runRender(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseRenderFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printRenderUsage(env.Stdout)
			return nil
		}
		return err
	}

	if err := validateWorkers(flags.workers); err != nil {
		return err
	}
	timeout, err := parseTimeout(flags.timeout)
	if err != nil {
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
	outputDir := flags.output
	if outputDir == "" {
		outputDir = cfg.Output.DefaultDir
	}

	files, err := discoverFiles(inputPath, outputDir)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no HTML or Markdown files in %s", ErrNoInput, inputPath)
	}

	reg, err := tex.NewBuiltinRegistry()
	if err != nil {
		return fmt.Errorf("%w: %w", typeset.ErrConfiguration, err)
	}
	logger := newLogger(env.Stderr, flags.common.quiet, flags.common.verbose)
	opts := converterOptions(texOpts, reg, &flags.style, cfg, logger)

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	poolSize := min(typeset.ResolvePoolSize(flags.workers), len(files))
	pool := typeset.NewConverterPool(poolSize, opts...)
	defer func() { _ = pool.Close() }()

	// Configuration errors surface once, before any file is read.
	c, err := pool.Acquire(ctx)
	if err != nil {
		return err
	}
	pool.Release(c)

	logger.Debug("rendering", "files", len(files), "workers", poolSize)
	results := renderBatch(ctx, pool, files, env.Now)

	failed, withMath := printResults(results, flags.common.quiet, flags.common.verbose, env)
	if failed > 0 {
		errs := make([]error, 0, failed)
		for _, r := range results {
			if r.Err != nil {
				errs = append(errs, r.Err)
			}
		}
		return &batchError{total: len(results), errs: errs}
	}
	if withMath > 0 {
		if flags.strict {
			return fmt.Errorf("%w: %d file(s)%s", typeset.ErrMathFailed, withMath, hints.ForCompileErrors(withMath))
		}
		if !flags.common.quiet && !flags.common.verbose {
			fmt.Fprintln(env.Stderr, strings.TrimPrefix(hints.ForCompileErrors(withMath), "\n"))
		}
	}
	return nil
}

// resolveInputPath returns the single positional input.
func resolveInputPath(args []string) (string, error) {
	switch len(args) {
	case 0:
		return "", ErrNoInput
	case 1:
		return args[0], nil
	}
	return "", fmt.Errorf("%w: expected one input, got %d", ErrUsage, len(args))
}

// renderBatch processes files concurrently, one converter per goroutine.
func renderBatch(ctx context.Context, pool *typeset.ConverterPool, files []FileToRender, now func() time.Time) []RenderResult {
	results := make([]RenderResult, len(files))

	var g errgroup.Group
	g.SetLimit(pool.Size())
	for i, f := range files {
		g.Go(func() error {
			results[i] = renderFile(ctx, pool, f, now)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// renderFile renders a single file and writes the output.
func renderFile(ctx context.Context, pool *typeset.ConverterPool, f FileToRender, now func() time.Time) RenderResult {
	start := now()
	result := RenderResult{
		InputPath:  f.InputPath,
		OutputPath: f.OutputPath,
	}
	finish := func(err error) RenderResult {
		result.Err = err
		result.Duration = now().Sub(start)
		return result
	}

	if err := ctx.Err(); err != nil {
		return finish(err)
	}

	content, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		return finish(fmt.Errorf("%w: %w", ErrReadInput, err))
	}

	c, err := pool.Acquire(ctx)
	if err != nil {
		return finish(err)
	}
	defer pool.Release(c)

	res, err := c.Convert(ctx, typeset.Input{
		Content:   string(content),
		Format:    f.Format,
		SourceDir: filepath.Dir(f.InputPath),
		OutputDir: filepath.Dir(f.OutputPath),
	})
	if err != nil {
		return finish(err)
	}
	result.Items = res.Items
	result.Failed = res.Failed
	result.MathErr = res.Err

	if err := os.MkdirAll(filepath.Dir(f.OutputPath), dirPermissions); err != nil {
		return finish(fmt.Errorf("%w: creating output directory: %w%s", ErrWriteOutput, err, hints.ForOutputDirectory()))
	}
	// #nosec G306 -- HTML files are meant to be readable
	if err := fileutil.WriteFileAtomic(f.OutputPath, []byte(res.HTML), filePermissions); err != nil {
		return finish(fmt.Errorf("%w: %w", ErrWriteOutput, err))
	}
	return finish(nil)
}

// printResults outputs per-file results and returns the number of failed
// files and of files with math errors.
func printResults(results []RenderResult, quiet, verbose bool, env *Environment) (failed, withMath int) {
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			continue
		}

		if r.MathErr != nil {
			withMath++
		}
		if r.MathErr != nil && !quiet {
			fmt.Fprintf(env.Stderr, "WARNING %s: %d of %d math item(s) failed\n", r.InputPath, len(r.Failed), r.Items)
			if verbose {
				for _, ie := range r.Failed {
					fmt.Fprintf(env.Stderr, "  %v\n", ie)
				}
			}
		}

		if quiet {
			continue
		}
		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%d math, %v)\n", r.InputPath, r.OutputPath, r.Items, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", len(results)-failed, failed)
	}
	return failed, withMath
}
