// Package formula finds math notation inside text spans and replaces each
// occurrence with a placeholder so the span can be split around it.
//
// Delimited notation is tried first, in priority order: \[...\], $$...$$,
// \(...\) and single $...$. When nothing delimited is found, two heuristics
// apply: a short span dense in math symbols becomes one block formula, and
// otherwise bare commands such as \frac{a}{b} become inline formulas.
package formula

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Kind is the display mode of a formula.
type Kind int

const (
	Inline Kind = iota
	Block
)

func (k Kind) String() string {
	if k == Block {
		return "block"
	}
	return "inline"
}

// Display reports whether the formula is typeset in display style.
func (k Kind) Display() bool { return k == Block }

// Formula is one extracted occurrence.
type Formula struct {
	Kind        Kind
	Source      string // text between the delimiters, as written
	TeX         string // Source with Unicode math symbols rewritten as commands
	Placeholder string
}

// Heuristics tunes the undelimited detection. Zero fields take defaults.
type Heuristics struct {
	// Triggers is the minimum number of math trigger characters
	// (= ≈ × ÷ ± ≠ ≤ ≥ \) for a whole span to count as a formula.
	Triggers int
	// MaxLen is the exclusive upper bound, in runes, on such a span.
	MaxLen int
}

// DefaultHeuristics returns the thresholds used when none are configured.
func DefaultHeuristics() Heuristics {
	return Heuristics{Triggers: 3, MaxLen: 200}
}

func (h Heuristics) withDefaults() Heuristics {
	d := DefaultHeuristics()
	if h.Triggers <= 0 {
		h.Triggers = d.Triggers
	}
	if h.MaxLen <= 0 {
		h.MaxLen = d.MaxLen
	}
	return h
}

var (
	blockBracket = regexp.MustCompile(`\\\[([\s\S]+?)\\\]`)
	blockDollar  = regexp.MustCompile(`\$\$([\s\S]+?)\$\$`)
	inlineParen  = regexp.MustCompile(`\\\(([\s\S]+?)\\\)`)

	// nakedCommand matches a backslash command and its brace groups. The
	// name is greedy, so \textbf is never read as \text.
	nakedCommand = regexp.MustCompile(`\\([A-Za-z]+)((?:\s*\{[^{}]*\})*)`)

	placeholderPattern = regexp.MustCompile(`\[\[FORMULA_(BLOCK|INLINE)_(\d+)\]\]`)
	markerPattern      = regexp.MustCompile(markerOpen + `(\d+)` + markerClose)
	codeMaskPattern    = regexp.MustCompile(codeMaskOpen + `(\d+)` + codeMaskClose)
)

// Private-use runes have no meaning to a Markdown parser, so a marker
// survives lexing inside whatever markup surrounds it.
const (
	markerOpen    = "\uE000"
	markerClose   = "\uE001"
	codeMaskOpen  = "\uE002"
	codeMaskClose = "\uE003"
)

// nakedCommands are the bare commands that mark a formula without
// delimiters.
var nakedCommands = map[string]bool{
	"text": true, "frac": true, "dfrac": true, "tfrac": true, "sqrt": true,
	"sum": true, "prod": true, "int": true, "oint": true, "lim": true,
	"log": true, "ln": true, "sin": true, "cos": true, "tan": true,
	"times": true, "div": true, "pm": true, "mp": true, "cdot": true,
	"approx": true, "neq": true, "ne": true, "leq": true, "le": true,
	"geq": true, "ge": true, "infty": true, "partial": true, "nabla": true,
	"overline": true, "vec": true, "hat": true, "bar": true,
	"alpha": true, "beta": true, "gamma": true, "delta": true,
	"epsilon": true, "varepsilon": true, "zeta": true, "eta": true,
	"theta": true, "vartheta": true, "iota": true, "kappa": true,
	"lambda": true, "mu": true, "nu": true, "xi": true, "pi": true,
	"rho": true, "sigma": true, "tau": true, "upsilon": true, "phi": true,
	"varphi": true, "chi": true, "psi": true, "omega": true,
	"Gamma": true, "Delta": true, "Theta": true, "Lambda": true, "Xi": true,
	"Pi": true, "Sigma": true, "Upsilon": true, "Phi": true, "Psi": true,
	"Omega": true,
}

// Extraction is a span with its formulas replaced by placeholders.
type Extraction struct {
	Text     string
	Formulas []Formula
}

// Found reports whether any formula was extracted.
func (e Extraction) Found() bool { return len(e.Formulas) > 0 }

// Extract scans span for math notation. Code spans are left alone: their
// content is never taken as a formula.
func Extract(span string, h Heuristics) Extraction {
	h = h.withDefaults()
	masked, codes := maskCodeSpans(span)
	x := &extractor{text: masked}

	x.replace(blockBracket, Block)
	x.replace(blockDollar, Block)
	x.replace(inlineParen, Inline)
	x.replaceDollar()
	if len(x.formulas) > 0 {
		return x.result(codes)
	}

	if len(codes) == 0 && isDense(span, h) {
		x.text = x.add(Block, strings.TrimSpace(span), span)
		return x.result(nil)
	}

	x.replaceNaked()
	return x.result(codes)
}

// Piece is a segment of an extracted span: either literal text or a
// formula.
type Piece struct {
	Text    string
	Formula *Formula
	Index   int // position of Formula in Extraction.Formulas
}

// Pieces splits the extracted text on its placeholders. Empty text
// segments are omitted.
func (e Extraction) Pieces() []Piece {
	return e.split(e.Text, placeholderPattern, func(m []int) (int, bool) {
		return e.lookup(e.Text[m[0]:m[1]], e.Text[m[4]:m[5]])
	})
}

// Marked returns the extracted text with every placeholder swapped for a
// private-use marker. Marked text can be lexed as one piece of Markdown,
// so emphasis or a link around a formula keeps its meaning; Split then
// finds the formulas again in the lexed text.
func (e Extraction) Marked() string {
	var b strings.Builder
	for _, p := range e.Pieces() {
		if p.Formula != nil {
			b.WriteString(markerOpen + strconv.Itoa(p.Index) + markerClose)
			continue
		}
		b.WriteString(p.Text)
	}
	return b.String()
}

// Split cuts s, a piece of lexed Marked text, on its formula markers.
func (e Extraction) Split(s string) []Piece {
	return e.split(s, markerPattern, func(m []int) (int, bool) {
		n, err := strconv.Atoi(s[m[2]:m[3]])
		return n, err == nil && n < len(e.Formulas)
	})
}

func (e Extraction) split(s string, re *regexp.Regexp, index func([]int) (int, bool)) []Piece {
	var out []Piece
	last := 0
	for _, m := range re.FindAllStringSubmatchIndex(s, -1) {
		n, ok := index(m)
		if !ok {
			continue
		}
		if m[0] > last {
			out = append(out, Piece{Text: s[last:m[0]]})
		}
		out = append(out, Piece{Formula: &e.Formulas[n], Index: n})
		last = m[1]
	}
	if last < len(s) {
		out = append(out, Piece{Text: s[last:]})
	}
	return out
}

func (e Extraction) lookup(placeholder, index string) (int, bool) {
	n, err := strconv.Atoi(index)
	if err != nil || n >= len(e.Formulas) || e.Formulas[n].Placeholder != placeholder {
		return 0, false
	}
	return n, true
}

type extractor struct {
	text     string
	formulas []Formula
}

// result restores the masked code spans in the text and in any formula
// source that straddles one.
func (x *extractor) result(codes []string) Extraction {
	if len(codes) == 0 {
		return Extraction{Text: x.text, Formulas: x.formulas}
	}
	for i := range x.formulas {
		f := &x.formulas[i]
		f.Source = unmaskCodeSpans(f.Source, codes)
		f.TeX = Normalize(f.Source)
	}
	return Extraction{Text: unmaskCodeSpans(x.text, codes), Formulas: x.formulas}
}

// maskCodeSpans swaps each backtick code span for a private-use mask and
// returns the spans in order. An opening backtick run without a closing
// run of the same length is literal text.
func maskCodeSpans(s string) (string, []string) {
	if !strings.Contains(s, "`") {
		return s, nil
	}
	var (
		b     strings.Builder
		codes []string
	)
	i := 0
	for i < len(s) {
		if s[i] != '`' || (i > 0 && s[i-1] == '\\') {
			b.WriteByte(s[i])
			i++
			continue
		}
		n := backtickRun(s, i)
		end := closingRun(s, i+n, n)
		if end < 0 {
			b.WriteString(s[i : i+n])
			i += n
			continue
		}
		b.WriteString(codeMaskOpen + strconv.Itoa(len(codes)) + codeMaskClose)
		codes = append(codes, s[i:end+n])
		i = end + n
	}
	return b.String(), codes
}

func backtickRun(s string, i int) int {
	n := 0
	for i+n < len(s) && s[i+n] == '`' {
		n++
	}
	return n
}

// closingRun finds the next run of exactly n backticks at or after from.
func closingRun(s string, from, n int) int {
	for j := from; j < len(s); {
		if s[j] != '`' {
			j++
			continue
		}
		m := backtickRun(s, j)
		if m == n {
			return j
		}
		j += m
	}
	return -1
}

func unmaskCodeSpans(s string, codes []string) string {
	return codeMaskPattern.ReplaceAllStringFunc(s, func(m string) string {
		n, err := strconv.Atoi(m[len(codeMaskOpen) : len(m)-len(codeMaskClose)])
		if err != nil || n >= len(codes) {
			return m
		}
		return codes[n]
	})
}

// add records a formula and returns its placeholder, or raw when source is
// blank.
func (x *extractor) add(kind Kind, source, raw string) string {
	if strings.TrimSpace(source) == "" {
		return raw
	}
	p := fmt.Sprintf("[[FORMULA_%s_%d]]", strings.ToUpper(kind.String()), len(x.formulas))
	x.formulas = append(x.formulas, Formula{
		Kind:        kind,
		Source:      source,
		TeX:         Normalize(source),
		Placeholder: p,
	})
	return p
}

func (x *extractor) replace(re *regexp.Regexp, kind Kind) {
	x.text = re.ReplaceAllStringFunc(x.text, func(m string) string {
		return x.add(kind, re.FindStringSubmatch(m)[1], m)
	})
}

// replaceDollar extracts $...$ where neither dollar touches another dollar.
// RE2 has no lookaround, so this scans by hand.
func (x *extractor) replaceDollar() {
	s := x.text
	var b strings.Builder
	i := 0
	for {
		open := nextLoneDollar(s, i)
		if open < 0 {
			break
		}
		end := nextLoneDollar(s, open+1)
		if end < 0 {
			break
		}
		inner := s[open+1 : end]
		if strings.ContainsRune(inner, '\n') {
			b.WriteString(s[i : open+1])
			i = open + 1
			continue
		}
		b.WriteString(s[i:open])
		b.WriteString(x.add(Inline, inner, s[open:end+1]))
		i = end + 1
	}
	b.WriteString(s[i:])
	x.text = b.String()
}

func nextLoneDollar(s string, from int) int {
	for j := from; j < len(s); j++ {
		if s[j] != '$' {
			continue
		}
		if j > 0 && (s[j-1] == '$' || s[j-1] == '\\') {
			continue
		}
		if j+1 < len(s) && s[j+1] == '$' {
			continue
		}
		return j
	}
	return -1
}

func (x *extractor) replaceNaked() {
	s := x.text
	var b strings.Builder
	last := 0
	for _, m := range nakedCommand.FindAllStringSubmatchIndex(s, -1) {
		if !nakedCommands[s[m[2]:m[3]]] {
			continue
		}
		b.WriteString(s[last:m[0]])
		b.WriteString(x.add(Inline, s[m[0]:m[1]], s[m[0]:m[1]]))
		last = m[1]
	}
	b.WriteString(s[last:])
	x.text = b.String()
}

// isDense reports whether span is short and holds enough trigger
// characters to be a formula on its own.
func isDense(span string, h Heuristics) bool {
	trimmed := strings.TrimSpace(span)
	if trimmed == "" || utf8.RuneCountInString(trimmed) >= h.MaxLen {
		return false
	}
	n := 0
	for _, r := range trimmed {
		if isTrigger(r) {
			n++
		}
	}
	return n >= h.Triggers
}

func isTrigger(r rune) bool {
	switch r {
	case '=', '≈', '×', '÷', '±', '≠', '≤', '≥', '\\':
		return true
	}
	return false
}
