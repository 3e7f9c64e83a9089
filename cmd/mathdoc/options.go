package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/alnah/go-mathdoc/internal/config"
	"github.com/alnah/go-mathdoc/internal/fileutil"
	"github.com/alnah/go-mathdoc/internal/hints"
	"github.com/alnah/go-mathdoc/tex"
	"github.com/alnah/go-mathdoc/typeset"
)

// loadConfig loads the named config, or returns the defaults when name is
// empty.
func loadConfig(name string) (*config.Config, error) {
	if name == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.LoadConfig(name)
	if err != nil {
		hint := ""
		if !fileutil.IsFilePath(name) {
			hint = hints.ForConfigNotFound(config.SearchPaths(name))
		}
		return nil, fmt.Errorf("loading config: %w%s", err, hint)
	}
	return cfg, nil
}

// mergeTeXFlags applies the TeX flags on top of cfg (flags win) and
// returns the resulting options.
func mergeTeXFlags(f *texFlags, cfg *config.Config) (tex.Options, error) {
	t := &cfg.TeX
	if len(f.packages) > 0 {
		t.Packages = f.packages
	}
	if len(f.inline) > 0 {
		pairs, err := parseDelimiterPairs("--inline", f.inline)
		if err != nil {
			return tex.Options{}, err
		}
		t.Inline = pairs
	}
	if len(f.display) > 0 {
		pairs, err := parseDelimiterPairs("--display", f.display)
		if err != nil {
			return tex.Options{}, err
		}
		t.Display = pairs
	}
	if len(f.elements) > 0 {
		t.Elements = f.elements
	}
	if f.tags != "" {
		t.Tags = f.tags
	}
	if f.noEscapes {
		t.ProcessEscapes = new(bool)
	}
	if f.noEnvironments {
		t.ProcessEnvironments = new(bool)
	}

	if err := cfg.Validate(); err != nil {
		return tex.Options{}, err
	}
	return cfg.TeXOptions()
}

// parseDelimiterPairs splits each "open close" value on whitespace.
func parseDelimiterPairs(flagName string, values []string) ([][]string, error) {
	pairs := make([][]string, 0, len(values))
	for _, v := range values {
		parts := strings.Fields(v)
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: %s %q: want \"open close\"", ErrUsage, flagName, v)
		}
		pairs = append(pairs, parts)
	}
	return pairs, nil
}

// converterOptions builds the typeset options for a render run. Style
// flags override the config file.
func converterOptions(opts tex.Options, reg *tex.Registry, f *styleFlags, cfg *config.Config, logger *slog.Logger) []typeset.Option {
	out := []typeset.Option{
		typeset.WithTeXOptions(opts),
		typeset.WithRegistry(reg),
		typeset.WithLogger(logger),
	}

	if f.noStyle || cfg.Output.NoStyle {
		out = append(out, typeset.WithoutStyle())
	} else {
		style := cfg.Output.Style
		if f.style != "" {
			style = f.style
		}
		if style != "" {
			out = append(out, typeset.WithStyle(style))
		}
		assetPath := cfg.Assets.BasePath
		if f.assetPath != "" {
			assetPath = f.assetPath
		}
		if assetPath != "" {
			out = append(out, typeset.WithAssetPath(assetPath))
		}
	}

	if cfg.Output.WrapperTag != "" {
		out = append(out, typeset.WithWrapper(cfg.Output.WrapperTag, cfg.Output.WrapperClass))
	}
	return out
}

// newLogger returns a text logger on w. Warnings show by default,
// --verbose adds debug records and --quiet keeps errors only.
func newLogger(w io.Writer, quiet, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// parseTimeout parses a --timeout value. Empty means no limit.
func parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidTimeout, s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %q (must be positive)", ErrInvalidTimeout, s)
	}
	return d, nil
}
