package tex

import (
	"errors"
	"strings"
	"testing"

	"github.com/alnah/go-mathdoc"
	"github.com/alnah/go-mathdoc/htmltree"
)

func newTestInput(t *testing.T, opts Options) *Input {
	t.Helper()
	reg, err := NewBuiltinRegistry()
	if err != nil {
		t.Fatalf("NewBuiltinRegistry() unexpected error: %v", err)
	}
	in, err := NewInput(reg, opts)
	if err != nil {
		t.Fatalf("NewInput() unexpected error: %v", err)
	}
	return in
}

func optionsWith(packages ...string) Options {
	opts := DefaultOptions()
	opts.Packages = Packages(packages...)
	return opts
}

// ---------------------------------------------------------------------------
// TestInput_CompileString - Parser Output
// ---------------------------------------------------------------------------

func TestInput_CompileString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tex  string
		want string
	}{
		{
			name: "row of tokens",
			tex:  "x+1",
			want: `<math><mrow><mi>x</mi><mo>+</mo><mn>1</mn></mrow></math>`,
		},
		{
			name: "minus sign",
			tex:  "a-b",
			want: `<math><mrow><mi>a</mi><mo>−</mo><mi>b</mi></mrow></math>`,
		},
		{
			name: "decimal number",
			tex:  "3.14",
			want: `<math><mn>3.14</mn></math>`,
		},
		{
			name: "superscript",
			tex:  "x^2",
			want: `<math><msup><mi>x</mi><mn>2</mn></msup></math>`,
		},
		{
			name: "sub and superscript",
			tex:  "x_i^2",
			want: `<math><msubsup><mi>x</mi><mi>i</mi><mn>2</mn></msubsup></math>`,
		},
		{
			name: "braced script",
			tex:  "e^{i\\pi}",
			want: `<math><msup><mi>e</mi><mrow><mi>i</mi><mi>π</mi></mrow></msup></math>`,
		},
		{
			name: "prime",
			tex:  "f'",
			want: `<math><msup><mi>f</mi><mo>′</mo></msup></math>`,
		},
		{
			name: "fraction",
			tex:  `\frac{a}{b}`,
			want: `<math><mfrac><mi>a</mi><mi>b</mi></mfrac></math>`,
		},
		{
			name: "root with index",
			tex:  `\sqrt[3]{x}`,
			want: `<math><mroot><mi>x</mi><mn>3</mn></mroot></math>`,
		},
		{
			name: "square root",
			tex:  `\sqrt x`,
			want: `<math><msqrt><mi>x</mi></msqrt></math>`,
		},
		{
			name: "greek and relations",
			tex:  `\alpha\leq\beta`,
			want: `<math><mrow><mi>α</mi><mo>≤</mo><mi>β</mi></mrow></math>`,
		},
		{
			name: "text",
			tex:  `\text{if } x`,
			want: `<math><mrow><mtext>if </mtext><mi>x</mi></mrow></math>`,
		},
		{
			name: "fences",
			tex:  `\left(x\right)`,
			want: `<math><mrow><mo fence="true">(</mo><mi>x</mi><mo fence="true">)</mo></mrow></math>`,
		},
		{
			name: "invisible fence",
			tex:  `\left.x\right|`,
			want: `<math><mrow><mi>x</mi><mo fence="true">|</mo></mrow></math>`,
		},
		{
			name: "font variant",
			tex:  `\mathbf{x}`,
			want: `<math><mi mathvariant="bold">x</mi></math>`,
		},
		{
			name: "function name",
			tex:  `\sin x`,
			want: `<math><mrow><mi mathvariant="normal">sin</mi><mi>x</mi></mrow></math>`,
		},
		{
			name: "spacing",
			tex:  `a\,b`,
			want: `<math><mrow><mi>a</mi><mspace width="0.167em"></mspace><mi>b</mi></mrow></math>`,
		},
		{
			name: "comment dropped",
			tex:  "a % note\n+b",
			want: `<math><mrow><mi>a</mi><mo>+</mo><mi>b</mi></mrow></math>`,
		},
		{
			name: "matrix",
			tex:  `\begin{pmatrix}a&b\\c&d\end{pmatrix}`,
			want: `<math><mrow><mo fence="true">(</mo><mtable><mtr><mtd><mi>a</mi></mtd><mtd><mi>b</mi></mtd></mtr>` +
				`<mtr><mtd><mi>c</mi></mtd><mtd><mi>d</mi></mtd></mtr></mtable><mo fence="true">)</mo></mrow></math>`,
		},
		{
			name: "trailing row break ignored",
			tex:  `\begin{matrix}a\\\end{matrix}`,
			want: `<math><mtable><mtr><mtd><mi>a</mi></mtd></mtr></mtable></math>`,
		},
		{
			name: "binomial",
			tex:  `\binom{n}{k}`,
			want: `<math><mrow><mo>(</mo><mfrac linethickness="0"><mi>n</mi><mi>k</mi></mfrac><mo>)</mo></mrow></math>`,
		},
		{
			name: "bold symbol",
			tex:  `\boldsymbol{\alpha}`,
			want: `<math><mi mathvariant="bold-italic">α</mi></math>`,
		},
		{
			name: "escaped brace",
			tex:  `\{x\}`,
			want: `<math><mrow><mo>{</mo><mi>x</mi><mo>}</mo></mrow></math>`,
		},
		{
			name: "unknown symbol falls back to operator",
			tex:  "a→b",
			want: `<math><mrow><mi>a</mi><mo>→</mo><mi>b</mi></mrow></math>`,
		},
	}

	in := newTestInput(t, optionsWith("base", "ams", "boldsymbol"))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := in.CompileString(tt.tex, false)
			if err != nil {
				t.Fatalf("CompileString(%q) unexpected error: %v", tt.tex, err)
			}
			if got.String() != tt.want {
				t.Errorf("CompileString(%q)\n got: %s\nwant: %s", tt.tex, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestInput_CompileString_Errors - Malformed TeX
// ---------------------------------------------------------------------------

func TestInput_CompileString_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		tex    string
		wantID string
	}{
		{name: "undefined macro", tex: `\foo`, wantID: "UndefinedControlSequence"},
		{name: "missing close brace", tex: `{x`, wantID: "MissingCloseBrace"},
		{name: "extra close brace", tex: `x}`, wantID: "ExtraCloseBrace"},
		{name: "double exponent", tex: `x^2^3`, wantID: "DoubleExponent"},
		{name: "double subscript", tex: `x_1_2`, wantID: "DoubleSubscripts"},
		{name: "unknown environment", tex: `\begin{foo}x\end{foo}`, wantID: "UnknownEnv"},
		{name: "mismatched end", tex: `\begin{matrix}a\end{pmatrix}`, wantID: "EnvBadEnd"},
		{name: "missing end", tex: `\begin{matrix}a`, wantID: "MissingEnd"},
		{name: "misplaced ampersand", tex: `a & b`, wantID: "Misplaced"},
		{name: "missing right", tex: `\left( x`, wantID: "MissingRight"},
		{name: "extra right", tex: `x\right)`, wantID: "ExtraRight"},
		{name: "missing argument", tex: `\frac{a}`, wantID: "MissingArgument"},
		{name: "bad delimiter", tex: `\left x\right)`, wantID: "MissingOrUnrecognizedDelim"},
		{name: "trailing backslash", tex: `x\`, wantID: "IncompleteControl"},
	}

	in := newTestInput(t, optionsWith("base", "ams"))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := in.CompileString(tt.tex, false)
			if !errors.Is(err, ErrParse) {
				t.Fatalf("CompileString(%q) error = %v, want ErrParse", tt.tex, err)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error is not a *ParseError: %T", err)
			}
			if pe.ID != tt.wantID {
				t.Errorf("ID = %q, want %q", pe.ID, tt.wantID)
			}
			if pe.Source != tt.tex {
				t.Errorf("Source = %q, want %q", pe.Source, tt.tex)
			}
		})
	}
}

func TestInput_FormatError(t *testing.T) {
	t.Parallel()

	t.Run("default shows the message", func(t *testing.T) {
		t.Parallel()

		in := newTestInput(t, optionsWith("base"))
		_, err := in.CompileString("{x", false)
		got := in.FormatError(err).(*Node).String()
		want := `<math><merror data-mjx-error="Missing close brace"><mtext>Missing close brace</mtext></merror></math>`
		if got != want {
			t.Errorf("FormatError()\n got: %s\nwant: %s", got, want)
		}
	})

	t.Run("noerrors shows the source", func(t *testing.T) {
		t.Parallel()

		in := newTestInput(t, optionsWith("base", "noerrors"))
		_, err := in.CompileString("{x", false)
		got := in.FormatError(err).(*Node).String()
		want := `<math data-mjx-noerror="true"><mtext>{x</mtext></math>`
		if got != want {
			t.Errorf("FormatError()\n got: %s\nwant: %s", got, want)
		}
	})

	t.Run("noundefined renders unknown macros", func(t *testing.T) {
		t.Parallel()

		in := newTestInput(t, optionsWith("base", "noundefined"))
		got, err := in.CompileString(`\foo`, false)
		if err != nil {
			t.Fatalf("CompileString() unexpected error: %v", err)
		}
		want := `<math><mtext mathcolor="red">\foo</mtext></math>`
		if got.String() != want {
			t.Errorf("CompileString()\n got: %s\nwant: %s", got, want)
		}
	})
}

func TestInput_Tags(t *testing.T) {
	t.Parallel()

	opts := optionsWith("ams")
	opts.Tags = TagsAMS
	in := newTestInput(t, opts)

	compile := func(tex string, display bool) string {
		t.Helper()
		n, err := in.CompileString(tex, display)
		if err != nil {
			t.Fatalf("CompileString(%q) unexpected error: %v", tex, err)
		}
		v, _ := n.Attr("tag")
		return v
	}

	if got := compile(`\begin{equation}x\end{equation}`, true); got != "(1)" {
		t.Errorf("first equation tag = %q, want (1)", got)
	}
	if got := compile(`\begin{equation*}x\end{equation*}`, true); got != "" {
		t.Errorf("starred equation tag = %q, want none", got)
	}
	if got := compile(`\begin{equation}x\notag\end{equation}`, true); got != "" {
		t.Errorf("notag equation tag = %q, want none", got)
	}
	if got := compile(`x\tag{A}`, true); got != "(A)" {
		t.Errorf("explicit tag = %q, want (A)", got)
	}
	if got := compile(`x\tag{A}`, false); got != "" {
		t.Errorf("inline tag = %q, want none", got)
	}
	if got := compile(`\begin{align}x&=1\end{align}`, true); got != "(2)" {
		t.Errorf("second numbered tag = %q, want (2)", got)
	}
	in.Reset(0)
	if got := compile(`\begin{equation}y\end{equation}`, true); got != "(1)" {
		t.Errorf("tag after Reset = %q, want (1)", got)
	}
}

func TestInput_Options(t *testing.T) {
	t.Parallel()

	t.Run("max buffer setting", func(t *testing.T) {
		t.Parallel()

		opts := optionsWith("base")
		opts.Settings = map[string]any{OptionMaxBuffer: uint64(3)}
		in := newTestInput(t, opts)
		_, err := in.CompileString("abcd", false)
		var pe *ParseError
		if !errors.As(err, &pe) || pe.ID != "MaxBufferSize" {
			t.Errorf("CompileString() error = %v, want MaxBufferSize", err)
		}
	})

	t.Run("bad settings rejected", func(t *testing.T) {
		t.Parallel()

		for _, settings := range []map[string]any{
			{OptionMaxBuffer: "big"},
			{OptionDigits: 7},
			{OptionDigits: "("},
		} {
			reg, _ := NewBuiltinRegistry()
			opts := optionsWith("base")
			opts.Settings = settings
			if _, err := NewInput(reg, opts); !errors.Is(err, ErrInvalidOption) {
				t.Errorf("NewInput(%v) error = %v, want ErrInvalidOption", settings, err)
			}
		}
	})

	t.Run("unknown tag style", func(t *testing.T) {
		t.Parallel()

		reg, _ := NewBuiltinRegistry()
		opts := optionsWith("base")
		opts.Tags = TagsAMS
		if _, err := NewInput(reg, opts); !errors.Is(err, ErrInvalidOption) {
			t.Errorf("NewInput() error = %v, want ErrInvalidOption", err)
		}
	})

	t.Run("unknown package", func(t *testing.T) {
		t.Parallel()

		reg, _ := NewBuiltinRegistry()
		if _, err := NewInput(reg, optionsWith("base", "physics")); !errors.Is(err, ErrUnknownPackage) {
			t.Errorf("NewInput() error = %v, want ErrUnknownPackage", err)
		}
	})
}

func TestInput_Filters(t *testing.T) {
	t.Parallel()

	reg, err := NewBuiltinRegistry()
	if err != nil {
		t.Fatalf("NewBuiltinRegistry() unexpected error: %v", err)
	}
	configs := 0
	err = reg.Register(&Configuration{
		Name:         "reals",
		Dependencies: []string{"base"},
		PreFilters: []PrioritizedFilter{{Fn: func(args *FilterArgs) error {
			args.Math = strings.ReplaceAll(args.Math, `\R`, `\mathbb{R}`)
			return nil
		}}},
		PostFilters: []PrioritizedFilter{{Fn: func(args *FilterArgs) error {
			args.Root.SetAttr("data-reals", "yes")
			return nil
		}, Priority: 5}},
		Config: &ConfigHook{Fn: func(*ParserConfiguration, *Input) error {
			configs++
			return nil
		}},
	})
	if err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}

	in, err := NewInput(reg, optionsWith("reals"))
	if err != nil {
		t.Fatalf("NewInput() unexpected error: %v", err)
	}
	if configs != 1 {
		t.Errorf("config hook ran %d times, want 1", configs)
	}

	got, err := in.CompileString(`x\in\R`, false)
	if err != nil {
		t.Fatalf("CompileString() unexpected error: %v", err)
	}
	want := `<math data-reals="yes"><mrow><mi>x</mi><mo>∈</mo><mi mathvariant="double-struck">R</mi></mrow></math>`
	if got.String() != want {
		t.Errorf("CompileString()\n got: %s\nwant: %s", got, want)
	}

	in.AddPreFilter(func(*FilterArgs) error { return errors.New("nope") }, 0)
	if _, err := in.CompileString("x", false); !errors.Is(err, ErrFilter) {
		t.Errorf("CompileString() error = %v, want ErrFilter", err)
	}
}

func TestInput_FindMath(t *testing.T) {
	t.Parallel()

	tree, err := htmltree.Parse(`<p>\(x\) and $$y$$</p><pre>\(z\)</pre>`)
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	in := newTestInput(t, DefaultOptions())

	found, err := in.FindMath(htmltree.New(), tree.Root)
	if err != nil {
		t.Fatalf("FindMath() unexpected error: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("FindMath() found %d items, want 2", len(found))
	}
	wantDelims := []mathdoc.Delimiter{{Start: `\(`, End: `\)`}, {Start: "$$", End: "$$"}}
	for i, f := range found {
		if f.Delimiter != wantDelims[i] {
			t.Errorf("found[%d].Delimiter = %v, want %v", i, f.Delimiter, wantDelims[i])
		}
	}
	if in.Name() != InputName {
		t.Errorf("Name() = %q, want %q", in.Name(), InputName)
	}
}
