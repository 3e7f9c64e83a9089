package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/alnah/go-mathdoc"
	"github.com/alnah/go-mathdoc/internal/config"
	"github.com/alnah/go-mathdoc/tex"
)

// ---------------------------------------------------------------------------
// TestMergeTeXFlags - Flags over config over defaults
// ---------------------------------------------------------------------------

func TestMergeTeXFlags(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.TeX.Packages = []string{"base"}
	cfg.TeX.IgnoreClass = "no-math"

	f := &texFlags{
		packages:  []string{"base", "ams:20"},
		inline:    []string{"$ $"},
		display:   []string{`\[ \]`},
		elements:  []string{"main"},
		tags:      tex.TagsAMS,
		noEscapes: true,
	}
	opts, err := mergeTeXFlags(f, cfg)
	if err != nil {
		t.Fatalf("mergeTeXFlags() error = %v", err)
	}

	want := tex.DefaultOptions()
	want.Packages = []tex.PackageRequest{{Name: "base"}, {Name: "ams", Priority: 20}}
	want.InlineMath = []mathdoc.Delimiter{{Start: "$", End: "$"}}
	want.DisplayMath = []mathdoc.Delimiter{{Start: `\[`, End: `\]`}}
	want.Elements = []string{"main"}
	want.Tags = tex.TagsAMS
	want.ProcessEscapes = false
	want.IgnoreClass = "no-math"
	if diff := cmp.Diff(want, opts); diff != "" {
		t.Errorf("mergeTeXFlags() mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeTeXFlags_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		flags   texFlags
		wantErr error
	}{
		{"delimiter missing close", texFlags{inline: []string{"$"}}, ErrUsage},
		{"delimiter with three parts", texFlags{display: []string{"$$ $$ $$"}}, ErrUsage},
		{"bad tags", texFlags{tags: "every"}, config.ErrInvalidField},
		{"bad selector", texFlags{elements: []string{"div p"}}, config.ErrInvalidSelector},
		{"bad package priority", texFlags{packages: []string{"ams:high"}}, config.ErrInvalidField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := mergeTeXFlags(&tt.flags, config.DefaultConfig())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("mergeTeXFlags() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestParseTimeout - Duration parsing
// ---------------------------------------------------------------------------

func TestParseTimeout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"", 0, false},
		{"30s", 30 * time.Second, false},
		{"2m", 2 * time.Minute, false},
		{"0s", 0, true},
		{"-1s", 0, true},
		{"soon", 0, true},
	}

	for _, tt := range tests {
		got, err := parseTimeout(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidTimeout) {
				t.Errorf("parseTimeout(%q) error = %v, want ErrInvalidTimeout", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("parseTimeout(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestNewLogger - Levels from --quiet and --verbose
// ---------------------------------------------------------------------------

func TestNewLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		quiet, verbose bool
		enabled        slog.Level
		disabled       slog.Level
	}{
		{"default shows warnings", false, false, slog.LevelWarn, slog.LevelInfo},
		{"verbose shows debug", false, true, slog.LevelDebug, slog.LevelDebug - 1},
		{"quiet shows errors only", true, false, slog.LevelError, slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			logger := newLogger(&bytes.Buffer{}, tt.quiet, tt.verbose)
			ctx := context.Background()
			if !logger.Enabled(ctx, tt.enabled) {
				t.Errorf("level %v should be enabled", tt.enabled)
			}
			if logger.Enabled(ctx, tt.disabled) {
				t.Errorf("level %v should be disabled", tt.disabled)
			}
		})
	}
}

func TestLoadConfig_HintForMissingName(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	_, err := loadConfig("absent")
	if !errors.Is(err, config.ErrConfigNotFound) {
		t.Fatalf("error = %v, want ErrConfigNotFound", err)
	}
	if !strings.Contains(err.Error(), "hint: use --config") {
		t.Errorf("error %q should carry a hint", err)
	}
}
