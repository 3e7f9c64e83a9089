// Package config loads the YAML file that configures discovery, the TeX
// packages and the rendered output.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-mathdoc"
	"github.com/alnah/go-mathdoc/htmltree"
	"github.com/alnah/go-mathdoc/internal/assets"
	"github.com/alnah/go-mathdoc/internal/fileutil"
	"github.com/alnah/go-mathdoc/internal/yamlutil"
	"github.com/alnah/go-mathdoc/tex"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidField    = errors.New("invalid config value")
	ErrInvalidSelector = errors.New("unsupported selector")
)

// Field length limits.
const (
	MaxPackageLength   = 64   // "ams:20"
	MaxDelimiterLength = 16   // "\\begin{math}"
	MaxClassLength     = 100  // CSS class name
	MaxTagLength       = 50   // HTML tag name
	MaxSelectorLength  = 200  // compound selector list
	MaxStyleLength     = 100  // style name
	MaxPathLength      = 4096 // filesystem path
	MaxListLength      = 64   // entries per list
)

// Config holds all configuration for a run.
type Config struct {
	TeX    TeXConfig    `yaml:"tex"`
	Output OutputConfig `yaml:"output"`
	Assets AssetsConfig `yaml:"assets"`
}

// TeXConfig defines discovery and parser options. Unset fields keep the
// defaults of tex.DefaultOptions.
type TeXConfig struct {
	Packages            []string       `yaml:"packages"`            // "name" or "name:priority"
	Inline              [][]string     `yaml:"inline"`              // pairs: [open, close]
	Display             [][]string     `yaml:"display"`             // pairs: [open, close]
	ProcessEscapes      *bool          `yaml:"processEscapes"`      // \$ stays literal
	ProcessEnvironments *bool          `yaml:"processEnvironments"` // \begin{..}..\end{..}
	ProcessRefs         *bool          `yaml:"processRefs"`         // \ref, \eqref
	SkipTags            []string       `yaml:"skipTags"`
	IgnoreClass         string         `yaml:"ignoreClass"`
	ProcessClass        string         `yaml:"processClass"`
	Elements            []string       `yaml:"elements"` // subtrees to scan
	Tags                string         `yaml:"tags"`     // "none", "ams", "all"
	Settings            map[string]any `yaml:"settings"` // package option overrides
}

// OutputConfig defines how rendered math is written.
type OutputConfig struct {
	DefaultDir   string `yaml:"defaultDir"`   // empty = next to the source
	Style        string `yaml:"style"`        // stylesheet name or empty for the default
	NoStyle      bool   `yaml:"noStyle"`      // skip stylesheet injection
	WrapperTag   string `yaml:"wrapperTag"`   // default mjx-container
	WrapperClass string `yaml:"wrapperClass"` // default MathJax
}

// AssetsConfig defines where custom stylesheets live.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // empty = embedded styles only
}

// Validate checks field lengths and values. Called by LoadConfig, but
// available for configs built in code.
func (c *Config) Validate() error {
	t := &c.TeX
	if err := validateList("tex.packages", t.Packages, MaxPackageLength); err != nil {
		return err
	}
	for _, p := range t.Packages {
		if _, err := tex.ParsePackageRequest(p); err != nil {
			return fmt.Errorf("%w: tex.packages: %v", ErrInvalidField, err)
		}
	}
	if err := validatePairs("tex.inline", t.Inline); err != nil {
		return err
	}
	if err := validatePairs("tex.display", t.Display); err != nil {
		return err
	}
	if err := validateList("tex.skipTags", t.SkipTags, MaxTagLength); err != nil {
		return err
	}
	if err := validateFieldLength("tex.ignoreClass", t.IgnoreClass, MaxClassLength); err != nil {
		return err
	}
	if err := validateFieldLength("tex.processClass", t.ProcessClass, MaxClassLength); err != nil {
		return err
	}
	if err := validateList("tex.elements", t.Elements, MaxSelectorLength); err != nil {
		return err
	}
	for _, sel := range t.Elements {
		if !htmltree.ValidSelector(sel) {
			return fmt.Errorf("%w: tex.elements: %w: %q", ErrInvalidField, ErrInvalidSelector, sel)
		}
	}
	if t.Tags != "" {
		switch t.Tags {
		case tex.TagsNone, tex.TagsAMS, tex.TagsAll:
			// valid
		default:
			return fmt.Errorf("%w: tex.tags: %q (must be none, ams, or all)", ErrInvalidField, t.Tags)
		}
	}

	o := &c.Output
	if err := validateFieldLength("output.defaultDir", o.DefaultDir, MaxPathLength); err != nil {
		return err
	}
	if o.Style != "" {
		if err := assets.ValidateAssetName(o.Style); err != nil {
			return fmt.Errorf("%w: output.style: %v", ErrInvalidField, err)
		}
	}
	if err := validateFieldLength("output.style", o.Style, MaxStyleLength); err != nil {
		return err
	}
	if err := validateFieldLength("output.wrapperTag", o.WrapperTag, MaxTagLength); err != nil {
		return err
	}
	if err := validateFieldLength("output.wrapperClass", o.WrapperClass, MaxClassLength); err != nil {
		return err
	}

	return validateFieldLength("assets.basePath", c.Assets.BasePath, MaxPathLength)
}

func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

func validateList(fieldName string, values []string, maxLength int) error {
	if len(values) > MaxListLength {
		return fmt.Errorf("%w: %s (%d entries, max %d)", ErrFieldTooLong, fieldName, len(values), MaxListLength)
	}
	for i, v := range values {
		if err := validateFieldLength(fmt.Sprintf("%s[%d]", fieldName, i), v, maxLength); err != nil {
			return err
		}
	}
	return nil
}

func validatePairs(fieldName string, pairs [][]string) error {
	if len(pairs) > MaxListLength {
		return fmt.Errorf("%w: %s (%d entries, max %d)", ErrFieldTooLong, fieldName, len(pairs), MaxListLength)
	}
	for i, pair := range pairs {
		if len(pair) != 2 || pair[0] == "" || pair[1] == "" {
			return fmt.Errorf("%w: %s[%d]: want [open, close]", ErrInvalidField, fieldName, i)
		}
		if err := validateList(fmt.Sprintf("%s[%d]", fieldName, i), pair, MaxDelimiterLength); err != nil {
			return err
		}
	}
	return nil
}

// DefaultConfig returns a configuration that keeps every library default.
func DefaultConfig() *Config {
	return &Config{}
}

// TeXOptions applies the TeX section on top of tex.DefaultOptions.
func (c *Config) TeXOptions() (tex.Options, error) {
	opts := tex.DefaultOptions()
	t := c.TeX

	if len(t.Packages) > 0 {
		opts.Packages = opts.Packages[:0:0]
		for _, p := range t.Packages {
			req, err := tex.ParsePackageRequest(p)
			if err != nil {
				return tex.Options{}, fmt.Errorf("%w: tex.packages: %v", ErrInvalidField, err)
			}
			opts.Packages = append(opts.Packages, req)
		}
	}
	if t.Inline != nil {
		opts.InlineMath = delimiters(t.Inline)
	}
	if t.Display != nil {
		opts.DisplayMath = delimiters(t.Display)
	}
	setBool(&opts.ProcessEscapes, t.ProcessEscapes)
	setBool(&opts.ProcessEnvironments, t.ProcessEnvironments)
	setBool(&opts.ProcessRefs, t.ProcessRefs)
	if t.SkipTags != nil {
		opts.SkipTags = t.SkipTags
	}
	if t.IgnoreClass != "" {
		opts.IgnoreClass = t.IgnoreClass
	}
	if t.ProcessClass != "" {
		opts.ProcessClass = t.ProcessClass
	}
	if len(t.Elements) > 0 {
		opts.Elements = t.Elements
	}
	if t.Tags != "" {
		opts.Tags = t.Tags
	}
	if len(t.Settings) > 0 {
		opts.Settings = t.Settings
	}
	return opts, nil
}

func delimiters(pairs [][]string) []mathdoc.Delimiter {
	out := make([]mathdoc.Delimiter, 0, len(pairs))
	for _, p := range pairs {
		if len(p) == 2 {
			out = append(out, mathdoc.Delimiter{Start: p[0], End: p[1]})
		}
	}
	return out
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		if configPath, err = resolveConfigPath(nameOrPath); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SearchPaths lists where a config name is looked up, in order:
// name.yaml then name.yml in the current directory, then the same in the
// user config directory under go-mathdoc/.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	var paths []string
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, "go-mathdoc", name+ext))
		}
	}
	return paths
}

func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
