// Package inline converts inline token trees into styled text runs.
package inline

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/alnah/go-md2docx/internal/token"
)

// DefaultEmojiFont renders emoji code points that the body fonts lack.
const DefaultEmojiFont = "Segoe UI Emoji"

// inlineBreakOrBold matches the markup a leaf may still carry after lexing:
// newlines, <br> tags and <b>/<strong> open and close tags.
var inlineBreakOrBold = regexp.MustCompile(`(?i)\n|<br\s*/?>|</?(?:b|strong)(?:\s[^>]*)?>`)

// Style is the formatting accumulated down the inline tree.
// The zero value is plain body text.
type Style struct {
	Bold   bool
	Italic bool
	Strike bool
	Mono   bool
	Link   bool
	Href   string
	Font   string // overrides the ambient font when set
}

// Run is a styled piece of text, or a line break when Break is set.
type Run struct {
	Text  string
	Style Style
	Break bool
}

// Builder produces runs from inline tokens. It holds no state across calls.
type Builder struct {
	EmojiFont string
}

// NewBuilder creates a Builder tagging emoji with emojiFont
// (DefaultEmojiFont when empty).
func NewBuilder(emojiFont string) Builder {
	if emojiFont == "" {
		emojiFont = DefaultEmojiFont
	}
	return Builder{EmojiFont: emojiFont}
}

// Build converts tokens into runs. Each run's style is the inherited style
// with the overrides of every enclosing token applied, nearest last.
func (b Builder) Build(tokens []token.Inline, inherited Style) []Run {
	return b.build(nil, tokens, inherited)
}

// Plain builds runs from text that has no token tree.
func (b Builder) Plain(text string, base Style) []Run {
	return b.leaf(nil, text, base)
}

func (b Builder) build(out []Run, tokens []token.Inline, inherited Style) []Run {
	for _, t := range tokens {
		style := apply(inherited, t)
		switch {
		case t.Kind == token.LineBreak:
			out = append(out, Run{Break: true, Style: style})
		case len(t.Children) > 0:
			out = b.build(out, t.Children, style)
		case t.Kind == token.CodeSpan, t.Kind == token.Escaped:
			out = b.emoji(out, t.Text, style)
		default:
			out = b.leaf(out, t.Text, style)
		}
	}
	return out
}

// apply returns inherited with the override t carries. Attributes t does
// not set pass through unchanged.
func apply(inherited Style, t token.Inline) Style {
	s := inherited
	switch t.Kind {
	case token.Strong:
		s.Bold = true
	case token.Emphasis:
		s.Italic = true
	case token.Strikethrough:
		s.Strike = true
	case token.CodeSpan:
		s.Mono = true
	case token.Link:
		s.Link = true
		s.Href = t.Href
	}
	return s
}

// leaf splits raw leaf text on breaks and bold tags.
func (b Builder) leaf(out []Run, text string, base Style) []Run {
	if text == "" {
		return out
	}
	style := base
	depth := 0
	last := 0
	for _, m := range inlineBreakOrBold.FindAllStringIndex(text, -1) {
		out = b.emoji(out, text[last:m[0]], style)
		last = m[1]

		switch classifyTag(text[m[0]:m[1]]) {
		case tagBreak:
			out = append(out, Run{Break: true, Style: style})
		case tagBoldOpen:
			depth++
			style.Bold = true
		case tagBoldClose:
			if depth > 0 {
				depth--
			}
			if depth == 0 {
				style.Bold = base.Bold
			}
		}
	}
	return b.emoji(out, text[last:], style)
}

type tagKind int

const (
	tagNone tagKind = iota
	tagBreak
	tagBoldOpen
	tagBoldClose
)

// classifyTag identifies a matched newline or tag.
func classifyTag(s string) tagKind {
	if s == "\n" {
		return tagBreak
	}
	z := html.NewTokenizer(strings.NewReader(s))
	tt := z.Next()
	name, _ := z.TagName()
	switch atom.Lookup(name) {
	case atom.Br:
		return tagBreak
	case atom.B, atom.Strong:
		if tt == html.EndTagToken {
			return tagBoldClose
		}
		return tagBoldOpen
	}
	return tagNone
}

// emoji splits text so that emoji sequences carry the emoji font.
func (b Builder) emoji(out []Run, text string, style Style) []Run {
	if text == "" {
		return out
	}
	emojiStyle := style
	emojiStyle.Font = b.EmojiFont

	start := 0
	inEmoji := false
	for i, r := range text {
		e := IsEmoji(r) || (inEmoji && isEmojiJoiner(r))
		if e == inEmoji {
			continue
		}
		if i > start {
			out = appendRun(out, text[start:i], inEmoji, style, emojiStyle)
		}
		start = i
		inEmoji = e
	}
	return appendRun(out, text[start:], inEmoji, style, emojiStyle)
}

func appendRun(out []Run, text string, isEmoji bool, style, emojiStyle Style) []Run {
	if text == "" {
		return out
	}
	if isEmoji {
		style = emojiStyle
	}
	return append(out, Run{Text: text, Style: style})
}

// IsEmoji reports whether r lies in a Unicode emoji block.
func IsEmoji(r rune) bool {
	switch {
	case r >= 0x1F000 && r <= 0x1FAFF: // tiles, cards, enclosed, pictographs, emoticons, transport, symbols
		return true
	case r >= 0x2600 && r <= 0x27BF: // miscellaneous symbols, dingbats
		return true
	case r >= 0x2B00 && r <= 0x2BFF: // arrows and stars (⬆ ⭐)
		return true
	case r >= 0x2300 && r <= 0x23FF: // technical (⌚ ⏰)
		return true
	}
	return false
}

// isEmojiJoiner reports code points that continue an emoji sequence.
func isEmojiJoiner(r rune) bool {
	return r == 0x200D || r == 0xFE0F || r == 0x20E3 || (r >= 0xE0020 && r <= 0xE007F)
}

// Text returns the visible text of runs, with breaks as "\n".
func Text(runs []Run) string {
	var b strings.Builder
	for _, r := range runs {
		if r.Break {
			b.WriteByte('\n')
			continue
		}
		b.WriteString(r.Text)
	}
	return b.String()
}
