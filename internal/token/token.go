// Package token defines the block and inline token tree consumed by the
// document assembler.
//
// Block tokens form a closed set: every concrete type implements Block
// through an unexported marker method, so a type switch over Block is
// exhaustive within this module. Inline tokens share a single shape and are
// discriminated by Kind.
package token

import "strings"

// Block is a top-level Markdown block.
type Block interface {
	block()
}

// Heading is an ATX or setext heading.
type Heading struct {
	Depth  int
	Text   string
	Inline []Inline
}

// Paragraph is a run of inline content.
type Paragraph struct {
	Text   string
	Inline []Inline
}

// List is a bullet or ordered list. Nested lists are flattened into Items.
type List struct {
	Ordered bool
	Items   []Item
}

// Item is a single list entry.
type Item struct {
	Text   string
	Inline []Inline
}

// Code is a fenced or indented code block.
type Code struct {
	Text     string
	Language string
}

// Table is a GFM table.
type Table struct {
	Header []Cell
	Rows   [][]Cell
}

// Cell is a table cell.
type Cell struct {
	Text   string
	Inline []Inline
}

// Rule is a thematic break.
type Rule struct{}

// Blank is inter-block whitespace.
type Blank struct{}

// Unsupported marks a block kind the assembler does not model
// (blockquotes, raw HTML blocks). Kind names the source construct.
type Unsupported struct {
	Kind string
}

func (Heading) block()     {}
func (Paragraph) block()   {}
func (List) block()        {}
func (Code) block()        {}
func (Table) block()       {}
func (Rule) block()        {}
func (Blank) block()       {}
func (Unsupported) block() {}

// Kind discriminates inline tokens.
type Kind int

// Inline token kinds.
const (
	Text Kind = iota
	Strong
	Emphasis
	CodeSpan
	Link
	Strikethrough
	LineBreak
	Escaped
)

var kindNames = [...]string{
	Text:          "text",
	Strong:        "strong",
	Emphasis:      "emphasis",
	CodeSpan:      "codespan",
	Link:          "link",
	Strikethrough: "strikethrough",
	LineBreak:     "br",
	Escaped:       "escape",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Inline is an inline token. Leaf tokens carry Text; container tokens
// (Strong, Emphasis, Strikethrough, Link) carry Children. Href is set for
// links only.
type Inline struct {
	Kind     Kind
	Text     string
	Href     string
	Children []Inline
}

// VisibleText returns the text a reader sees for the token sequence.
// Line breaks count as "\n".
func VisibleText(tokens []Inline) string {
	var b strings.Builder
	writeVisible(&b, tokens)
	return b.String()
}

func writeVisible(b *strings.Builder, tokens []Inline) {
	for _, t := range tokens {
		switch {
		case t.Kind == LineBreak:
			b.WriteByte('\n')
		case len(t.Children) > 0:
			writeVisible(b, t.Children)
		default:
			b.WriteString(t.Text)
		}
	}
}
