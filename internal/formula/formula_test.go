package formula

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestExtract - Delimited notation
// ---------------------------------------------------------------------------

func TestExtract_PriorityOrder(t *testing.T) {
	t.Parallel()

	got := Extract(`\[a\] $$b$$ \(c\) $d$`, Heuristics{})

	wantText := "[[FORMULA_BLOCK_0]] [[FORMULA_BLOCK_1]] [[FORMULA_INLINE_2]] [[FORMULA_INLINE_3]]"
	if got.Text != wantText {
		t.Errorf("Text = %q, want %q", got.Text, wantText)
	}

	want := []struct {
		kind   Kind
		source string
	}{
		{Block, "a"},
		{Block, "b"},
		{Inline, "c"},
		{Inline, "d"},
	}
	if len(got.Formulas) != len(want) {
		t.Fatalf("got %d formulas, want %d", len(got.Formulas), len(want))
	}
	for i, w := range want {
		f := got.Formulas[i]
		if f.Kind != w.kind || f.Source != w.source {
			t.Errorf("formula[%d] = {%v %q}, want {%v %q}", i, f.Kind, f.Source, w.kind, w.source)
		}
	}
}

func TestExtract_Completeness(t *testing.T) {
	t.Parallel()

	span := "see $$x$$ and $y$ done"
	got := Extract(span, Heuristics{})

	if len(got.Formulas) != 2 {
		t.Fatalf("got %d formulas, want 2", len(got.Formulas))
	}
	if got.Formulas[0].Kind != Block || got.Formulas[1].Kind != Inline {
		t.Errorf("kinds = %v, %v; want block, inline", got.Formulas[0].Kind, got.Formulas[1].Kind)
	}

	var rest strings.Builder
	for _, p := range got.Pieces() {
		if p.Formula == nil {
			rest.WriteString(p.Text)
		}
	}
	if want := "see  and  done"; rest.String() != want {
		t.Errorf("residual text = %q, want %q", rest.String(), want)
	}
}

func TestExtract_BareTriggerWithDelimitedFormula(t *testing.T) {
	t.Parallel()

	got := Extract("E=mc^2 and $a+b=c$", Heuristics{})

	if len(got.Formulas) != 1 {
		t.Fatalf("got %d formulas, want 1", len(got.Formulas))
	}
	f := got.Formulas[0]
	if f.Kind != Inline || f.Source != "a+b=c" {
		t.Errorf("formula = {%v %q}, want {inline \"a+b=c\"}", f.Kind, f.Source)
	}
	if want := "E=mc^2 and [[FORMULA_INLINE_0]]"; got.Text != want {
		t.Errorf("Text = %q, want %q", got.Text, want)
	}
}

func TestExtract_NoFormula(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		span string
	}{
		{"plain prose", "Hello world."},
		{"adjacent dollars only", "costs $$5"},
		{"escaped dollars", `\$5 and \$6`},
		{"dollar pair across lines", "a $b\nc$ d"},
		{"blank dollar pair", "a $ $ b"},
		{"two triggers", "a = b = c"},
		{"unknown command", `\textbf{x}`},
		{"dollars in code spans", "`$HOME` and `$PATH`"},
		{"double backtick span", "``a `$x$` b``"},
		{"dense code span", "`x = y = z = w`"},
		{"naked command in code", "`\\frac{a}{b}`"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Extract(tt.span, Heuristics{})
			if got.Found() {
				t.Errorf("Extract(%q) found %+v", tt.span, got.Formulas)
			}
			if got.Text != tt.span {
				t.Errorf("Text = %q, want span unchanged", got.Text)
			}
		})
	}
}

func TestExtract_CodeSpans(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		span       string
		wantText   string
		wantSource string
	}{
		{"formula beside code", "`$a$` and $b$", "`$a$` and [[FORMULA_INLINE_0]]", "b"},
		{"unclosed backtick is literal", "`$a$ and", "`[[FORMULA_INLINE_0]] and", "a"},
		{"formula around code", "$a `b` c$", "[[FORMULA_INLINE_0]]", "a `b` c"},
		{"escaped backtick", "\\`$a$`", "\\`[[FORMULA_INLINE_0]]`", "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Extract(tt.span, Heuristics{})
			if got.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", got.Text, tt.wantText)
			}
			if len(got.Formulas) != 1 || got.Formulas[0].Source != tt.wantSource {
				t.Errorf("Formulas = %+v, want one with source %q", got.Formulas, tt.wantSource)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestExtract - Heuristics
// ---------------------------------------------------------------------------

func TestExtract_DenseSpan(t *testing.T) {
	t.Parallel()

	got := Extract("  x = y + z = w = 1 ", Heuristics{})

	if len(got.Formulas) != 1 {
		t.Fatalf("got %d formulas, want 1", len(got.Formulas))
	}
	f := got.Formulas[0]
	if f.Kind != Block || f.Source != "x = y + z = w = 1" {
		t.Errorf("formula = {%v %q}", f.Kind, f.Source)
	}
	if got.Text != "[[FORMULA_BLOCK_0]]" {
		t.Errorf("Text = %q, want a single placeholder", got.Text)
	}
}

func TestExtract_DenseSpanThresholds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		span string
		h    Heuristics
		want bool
	}{
		{"three symbols", "a ≤ b ≥ c ≠ d", Heuristics{}, true},
		{"two symbols default", "a = b = c", Heuristics{}, false},
		{"two symbols lowered threshold", "a = b = c", Heuristics{Triggers: 2}, true},
		{"too long", strings.Repeat("a", 200) + "===", Heuristics{}, false},
		{"raised length", strings.Repeat("a", 200) + "===", Heuristics{MaxLen: 300}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Extract(tt.span, tt.h)
			if got.Found() != tt.want {
				t.Errorf("Found() = %v, want %v", got.Found(), tt.want)
			}
		})
	}
}

func TestExtract_NakedCommands(t *testing.T) {
	t.Parallel()

	got := Extract(`area is \frac{1}{2} bh and \alpha`, Heuristics{})

	wantText := "area is [[FORMULA_INLINE_0]] bh and [[FORMULA_INLINE_1]]"
	if got.Text != wantText {
		t.Errorf("Text = %q, want %q", got.Text, wantText)
	}
	if len(got.Formulas) != 2 {
		t.Fatalf("got %d formulas, want 2", len(got.Formulas))
	}
	if got.Formulas[0].Source != `\frac{1}{2}` || got.Formulas[1].Source != `\alpha` {
		t.Errorf("sources = %q, %q", got.Formulas[0].Source, got.Formulas[1].Source)
	}
	for _, f := range got.Formulas {
		if f.Kind != Inline {
			t.Errorf("%q kind = %v, want inline", f.Source, f.Kind)
		}
	}
}

// ---------------------------------------------------------------------------
// TestExtraction - Pieces and Plain
// ---------------------------------------------------------------------------

func TestExtraction_Pieces(t *testing.T) {
	t.Parallel()

	got := Extract("a $x$ b $y$", Heuristics{}).Pieces()

	if len(got) != 4 {
		t.Fatalf("got %d pieces, want 4: %+v", len(got), got)
	}
	if got[0].Text != "a " || got[2].Text != " b " {
		t.Errorf("text pieces = %q, %q", got[0].Text, got[2].Text)
	}
	if got[1].Formula == nil || got[1].Formula.Source != "x" {
		t.Errorf("piece[1] = %+v, want formula x", got[1])
	}
	if got[3].Formula == nil || got[3].Formula.Source != "y" {
		t.Errorf("piece[3] = %+v, want formula y", got[3])
	}
	if got[1].Index != 0 || got[3].Index != 1 {
		t.Errorf("indexes = %d, %d, want 0, 1", got[1].Index, got[3].Index)
	}
}

func TestExtraction_Pieces_ForeignPlaceholderIsText(t *testing.T) {
	t.Parallel()

	e := Extraction{Text: "a [[FORMULA_INLINE_5]] b"}
	got := e.Pieces()
	if len(got) != 1 || got[0].Text != e.Text {
		t.Errorf("Pieces() = %+v, want the text unchanged", got)
	}
}

func TestExtraction_MarkedAndSplit(t *testing.T) {
	t.Parallel()

	e := Extract("**bold $x$ tail** and [see $y$](http://a.example)", Heuristics{})
	marked := e.Marked()

	if strings.Contains(marked, "[[FORMULA") || strings.Contains(marked, "$") {
		t.Fatalf("Marked() = %q, want placeholders swapped for markers", marked)
	}
	if !strings.HasPrefix(marked, "**bold ") || !strings.HasSuffix(marked, "](http://a.example)") {
		t.Errorf("Marked() = %q, want the markup around formulas kept", marked)
	}

	// What the lexer leaves of the bold span.
	inner := "bold " + markerOpen + "0" + markerClose + " tail"
	got := e.Split(inner)

	if len(got) != 3 {
		t.Fatalf("Split(%q) = %+v, want 3 pieces", inner, got)
	}
	if got[0].Text != "bold " || got[2].Text != " tail" {
		t.Errorf("text pieces = %q, %q", got[0].Text, got[2].Text)
	}
	if got[1].Formula == nil || got[1].Formula.Source != "x" || got[1].Index != 0 {
		t.Errorf("piece[1] = %+v, want formula x at 0", got[1])
	}
}

func TestExtraction_Split_UnknownMarkerIsText(t *testing.T) {
	t.Parallel()

	e := Extract("$x$", Heuristics{})
	s := "a " + markerOpen + "7" + markerClose
	if got := e.Split(s); len(got) != 1 || got[0].Text != s {
		t.Errorf("Split() = %+v, want the text unchanged", got)
	}
}

// ---------------------------------------------------------------------------
// TestNormalize - Symbol table
// ---------------------------------------------------------------------------

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"α²+β₁", `\alpha ^{2}+\beta _{1}`},
		{"x≤½", `x\leq \frac{1}{2}`},
		{"Ω", `\Omega`},
		{"a×b÷c", `a\times b\div c`},
		{"3'20''", `3'20"`},
		{"A∪B", `A\cup B`},
		{"p⇒q", `p\Rightarrow q`},
		{"90°", `90^{\circ}`},
		{"x+y", "x+y"},
	}

	for _, tt := range tests {
		if got := Normalize(tt.input); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestKind_String(t *testing.T) {
	t.Parallel()

	if Inline.String() != "inline" || Block.String() != "block" {
		t.Errorf("String() = %q, %q", Inline.String(), Block.String())
	}
	if Inline.Display() || !Block.Display() {
		t.Error("Display() mismatch")
	}
}
