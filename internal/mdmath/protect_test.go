package mdmath

import (
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/alnah/go-mathdoc"
)

func ph(i int) string {
	return MathStartPlaceholder + strconv.Itoa(i) + MathEndPlaceholder
}

func testDelimiters() Delimiters {
	return Delimiters{
		Inline:       []mathdoc.Delimiter{{Start: "$", End: "$"}, {Start: `\(`, End: `\)`}},
		Display:      []mathdoc.Delimiter{{Start: "$$", End: "$$"}, {Start: `\[`, End: `\]`}},
		Escapes:      true,
		Environments: true,
	}
}

// ---------------------------------------------------------------------------
// TestProtect - math spans outside code become placeholders
// ---------------------------------------------------------------------------

func TestProtect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		want      string
		wantSpans []string
	}{
		{
			name:      "inline dollars",
			input:     "a $x_1$ b",
			want:      "a " + ph(0) + " b",
			wantSpans: []string{"$x_1$"},
		},
		{
			name:      "display dollars win over inline",
			input:     "$$a$$",
			want:      ph(0),
			wantSpans: []string{"$$a$$"},
		},
		{
			name:      "backslash delimiters",
			input:     `\(a*b\) and \[c\]`,
			want:      ph(0) + " and " + ph(1),
			wantSpans: []string{`\(a*b\)`, `\[c\]`},
		},
		{
			name:      "inline code is skipped",
			input:     "`$x$` and $y$",
			want:      "`$x$` and " + ph(0),
			wantSpans: []string{"$y$"},
		},
		{
			name:      "double backtick code span",
			input:     "``a ` $x$`` $y$",
			want:      "``a ` $x$`` " + ph(0),
			wantSpans: []string{"$y$"},
		},
		{
			name:      "fenced code is skipped",
			input:     "```\n$x$\n```\n$y$",
			want:      "```\n$x$\n```\n" + ph(0),
			wantSpans: []string{"$y$"},
		},
		{
			name:      "tilde fence is skipped",
			input:     "~~~tex\n\\(a\\)\n~~~",
			want:      "~~~tex\n\\(a\\)\n~~~",
			wantSpans: nil,
		},
		{
			name:      "indented code after blank line is skipped",
			input:     "text\n\n    $x$",
			want:      "text\n\n    $x$",
			wantSpans: nil,
		},
		{
			name:      "indented continuation line is protected",
			input:     "para\n    $x$",
			want:      "para\n    " + ph(0),
			wantSpans: []string{"$x$"},
		},
		{
			name:      "escaped dollar is held",
			input:     `price \$5 and $x$`,
			want:      "price " + ph(0) + "5 and " + ph(1),
			wantSpans: []string{`\$`, "$x$"},
		},
		{
			name:      "escaped dollar inside math does not close",
			input:     `$a\$b$`,
			want:      ph(0),
			wantSpans: []string{`$a\$b$`},
		},
		{
			name:      "double backslash is not an opener",
			input:     `\\(x`,
			want:      `\\(x`,
			wantSpans: nil,
		},
		{
			name:      "inline math does not cross paragraphs",
			input:     "$a\n\nb$",
			want:      "$a\n\nb$",
			wantSpans: nil,
		},
		{
			name:      "display math crosses lines",
			input:     "$$\na\n\nb\n$$",
			want:      ph(0),
			wantSpans: []string{"$$\na\n\nb\n$$"},
		},
		{
			name:      "environment",
			input:     `see \begin{align}a&=b\\c&=d\end{align} here`,
			want:      "see " + ph(0) + " here",
			wantSpans: []string{`\begin{align}a&=b\\c&=d\end{align}`},
		},
		{
			name:      "nested environment of the same name",
			input:     `\begin{x}\begin{x}1\end{x}\end{x}`,
			want:      ph(0),
			wantSpans: []string{`\begin{x}\begin{x}1\end{x}\end{x}`},
		},
		{
			name:      "unclosed environment is left alone",
			input:     `\begin{x} $y$`,
			want:      `\begin{x} ` + ph(0),
			wantSpans: []string{"$y$"},
		},
		{
			name:      "unclosed delimiter",
			input:     "$x",
			want:      "$x",
			wantSpans: nil,
		},
		{
			name:      "empty input",
			input:     "",
			want:      "",
			wantSpans: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := newProtector(testDelimiters())
			got := p.Protect(tt.input)
			if got != tt.want {
				t.Errorf("Protect(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if diff := cmp.Diff(tt.wantSpans, p.spans); diff != "" {
				t.Errorf("spans mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestProtect_OptionsOff(t *testing.T) {
	t.Parallel()

	p := newProtector(Delimiters{Inline: []mathdoc.Delimiter{{Start: "$", End: "$"}}})
	got := p.Protect(`\$1 \begin{x}y\end{x}`)
	if got != `\$1 \begin{x}y\end{x}` {
		t.Errorf("Protect() = %q, want input unchanged", got)
	}
	if len(p.spans) != 0 {
		t.Errorf("spans = %q, want none", p.spans)
	}
}

func TestRestore(t *testing.T) {
	t.Parallel()

	p := newProtector(testDelimiters())
	p.spans = []string{"$a<b$", `\(x & y\)`}

	got := p.Restore("<p>" + ph(0) + " and " + ph(1) + " " + ph(7) + "</p>")
	want := "<p>$a&lt;b$ and \\(x &amp; y\\) " + ph(7) + "</p>"
	if got != want {
		t.Errorf("Restore() = %q, want %q", got, want)
	}
}

// ---------------------------------------------------------------------------
// TestSplitFrontMatter - leading YAML block
// ---------------------------------------------------------------------------

func TestSplitFrontMatter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		wantFM   FrontMatter
		wantBody string
		wantErr  bool
	}{
		{
			name:     "no front matter",
			input:    "# Title\n",
			wantBody: "# Title\n",
		},
		{
			name:     "title and lang",
			input:    "---\ntitle: Notes\nlang: fr\n---\nbody\n",
			wantFM:   FrontMatter{Title: "Notes", Lang: "fr"},
			wantBody: "body\n",
		},
		{
			name:     "dots close the block",
			input:    "---\ntitle: T\n...\nbody",
			wantFM:   FrontMatter{Title: "T"},
			wantBody: "body",
		},
		{
			name:     "unknown keys are ignored",
			input:    "---\nauthor: someone\n---\nx",
			wantBody: "x",
		},
		{
			name:     "empty block",
			input:    "---\n---\nx",
			wantBody: "x",
		},
		{
			name:     "unclosed block is body",
			input:    "---\ntitle: T\n",
			wantBody: "---\ntitle: T\n",
		},
		{
			name:     "block at end of input",
			input:    "---\ntitle: T\n---",
			wantFM:   FrontMatter{Title: "T"},
			wantBody: "",
		},
		{
			name:    "bad yaml",
			input:   "---\ntitle: [\n---\nx",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fm, body, err := splitFrontMatter(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("splitFrontMatter() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("splitFrontMatter() error = %v", err)
			}
			if fm != tt.wantFM {
				t.Errorf("front matter = %+v, want %+v", fm, tt.wantFM)
			}
			if body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}
