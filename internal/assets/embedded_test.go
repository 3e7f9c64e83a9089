package assets

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestEmbeddedLoader_LoadStyle(t *testing.T) {
	t.Parallel()

	loader := NewEmbeddedLoader()

	tests := []struct {
		name        string
		styleName   string
		wantErr     error
		wantContain string
	}{
		{
			name:        "loads default style",
			styleName:   DefaultStyleName,
			wantContain: "mjx-container",
		},
		{
			name:        "loads minimal style",
			styleName:   "minimal",
			wantContain: "mjx-math",
		},
		{
			name:      "returns ErrStyleNotFound for nonexistent",
			styleName: "nonexistent-style-xyz",
			wantErr:   ErrStyleNotFound,
		},
		{
			name:      "returns ErrInvalidAssetName for path traversal",
			styleName: "../secret",
			wantErr:   ErrInvalidAssetName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := loader.LoadStyle(tt.styleName)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("LoadStyle(%q) error = %v, want %v", tt.styleName, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadStyle(%q) unexpected error: %v", tt.styleName, err)
			}
			if !strings.Contains(got, tt.wantContain) {
				t.Errorf("LoadStyle(%q) content should contain %q", tt.styleName, tt.wantContain)
			}
		})
	}
}

func TestStyles(t *testing.T) {
	t.Parallel()

	got := Styles()
	if !slices.IsSorted(got) {
		t.Errorf("Styles() = %v, want sorted", got)
	}
	for _, want := range []string{DefaultStyleName, "minimal"} {
		if !slices.Contains(got, want) {
			t.Errorf("Styles() = %v, missing %q", got, want)
		}
	}
	for _, name := range got {
		if _, err := LoadStyle(name); err != nil {
			t.Errorf("LoadStyle(%q) for listed style: %v", name, err)
		}
	}
}
