package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/alnah/go-md2docx/internal/token"
)

// ErrLex indicates the Markdown source could not be tokenized.
var ErrLex = errors.New("markdown tokenization failed")

// Lexer turns normalized Markdown into the block token tree.
type Lexer interface {
	Lex(ctx context.Context, content string) ([]token.Block, error)
}

// InlineLexer tokenizes a fragment of inline Markdown.
type InlineLexer interface {
	LexInline(content string) []token.Inline
}

// GoldmarkLexer tokenizes Markdown with goldmark's parser (GFM dialect).
// Soft line breaks are significant and become LineBreak tokens.
type GoldmarkLexer struct {
	md goldmark.Markdown
}

// NewGoldmarkLexer creates a GoldmarkLexer with GFM extensions.
func NewGoldmarkLexer() *GoldmarkLexer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM, // Tables, strikethrough, autolinks, task lists
		),
	)
	return &GoldmarkLexer{md: md}
}

// Lex parses content into block tokens.
// Supports context cancellation via goroutine + select pattern since
// goldmark doesn't natively support context.
func (l *GoldmarkLexer) Lex(ctx context.Context, content string) ([]token.Block, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type result struct {
		blocks []token.Block
		err    error
	}

	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("%w: %v", ErrLex, r)}
			}
		}()
		src := []byte(content)
		doc := l.md.Parser().Parse(text.NewReader(src))
		done <- result{blocks: lexBlocks(doc, src)}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.blocks, r.err
	}
}

// LexInline parses a fragment and returns its inline tokens. Leading and
// trailing whitespace, which the block parser would strip, is preserved
// as plain text so fragments can be concatenated.
func (l *GoldmarkLexer) LexInline(content string) []token.Inline {
	body := strings.TrimSpace(content)
	if body == "" {
		if content == "" {
			return nil
		}
		return []token.Inline{{Kind: token.Text, Text: content}}
	}

	src := []byte(body)
	doc := l.md.Parser().Parse(text.NewReader(src))

	var out []token.Inline
	if lead := content[:len(content)-len(strings.TrimLeftFunc(content, unicode.IsSpace))]; lead != "" {
		out = append(out, token.Inline{Kind: token.Text, Text: lead})
	}

	first := true
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if !first {
			out = append(out, token.Inline{Kind: token.LineBreak})
		}
		first = false
		switch n.(type) {
		case *ast.Paragraph, *ast.TextBlock, *ast.Heading:
			out = append(out, lexInlines(n, src)...)
		default:
			out = append(out, token.Inline{Kind: token.Text, Text: rawLines(n, src)})
		}
	}

	if trail := content[len(strings.TrimRightFunc(content, unicode.IsSpace)):]; trail != "" {
		out = append(out, token.Inline{Kind: token.Text, Text: trail})
	}
	return mergeText(out)
}

func lexBlocks(doc ast.Node, src []byte) []token.Block {
	var blocks []token.Block
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if n.HasBlankPreviousLines() && len(blocks) > 0 {
			blocks = append(blocks, token.Blank{})
		}
		blocks = append(blocks, lexBlock(n, src))
	}
	return blocks
}

func lexBlock(n ast.Node, src []byte) token.Block {
	switch n := n.(type) {
	case *ast.Heading:
		return token.Heading{Depth: n.Level, Text: rawLines(n, src), Inline: lexInlines(n, src)}
	case *ast.Paragraph:
		return token.Paragraph{Text: rawLines(n, src), Inline: lexInlines(n, src)}
	case *ast.TextBlock:
		return token.Paragraph{Text: rawLines(n, src), Inline: lexInlines(n, src)}
	case *ast.List:
		return token.List{Ordered: n.IsOrdered(), Items: lexItems(n, src)}
	case *ast.FencedCodeBlock:
		return token.Code{Text: rawLines(n, src), Language: string(n.Language(src))}
	case *ast.CodeBlock:
		return token.Code{Text: rawLines(n, src)}
	case *ast.ThematicBreak:
		return token.Rule{}
	case *extast.Table:
		return lexTable(n, src)
	case *ast.Blockquote:
		return token.Unsupported{Kind: "blockquote"}
	case *ast.HTMLBlock:
		return token.Unsupported{Kind: "html"}
	default:
		return token.Unsupported{Kind: n.Kind().String()}
	}
}

// lexItems flattens a list into its items. Nested lists contribute their
// items right after the parent item, in document order.
func lexItems(list *ast.List, src []byte) []token.Item {
	var items []token.Item
	for li := list.FirstChild(); li != nil; li = li.NextSibling() {
		var item token.Item
		var nested []token.Item
		for c := li.FirstChild(); c != nil; c = c.NextSibling() {
			switch c := c.(type) {
			case *ast.List:
				nested = append(nested, lexItems(c, src)...)
			case *ast.Paragraph, *ast.TextBlock:
				appendPart(&item, rawLines(c, src), lexInlines(c, src))
			default:
				raw := rawLines(c, src)
				appendPart(&item, raw, []token.Inline{{Kind: token.Text, Text: raw}})
			}
		}
		items = append(items, item)
		items = append(items, nested...)
	}
	return items
}

func appendPart(item *token.Item, raw string, inlines []token.Inline) {
	if item.Text != "" {
		item.Text += "\n"
		item.Inline = append(item.Inline, token.Inline{Kind: token.LineBreak})
	}
	item.Text += raw
	item.Inline = append(item.Inline, inlines...)
}

func lexTable(t *extast.Table, src []byte) token.Table {
	var out token.Table
	for row := t.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []token.Cell
		for c := row.FirstChild(); c != nil; c = c.NextSibling() {
			inl := lexInlines(c, src)
			raw := rawLines(c, src)
			if raw == "" {
				raw = token.VisibleText(inl)
			}
			cells = append(cells, token.Cell{Text: raw, Inline: inl})
		}
		if _, ok := row.(*extast.TableHeader); ok {
			out.Header = cells
			continue
		}
		out.Rows = append(out.Rows, cells)
	}
	return out
}

// lexInlines converts the inline children of n. Adjacent text, including
// raw inline HTML, is merged into a single Text token so that tag pairs
// such as <b>...</b> stay in one leaf.
func lexInlines(n ast.Node, src []byte) []token.Inline {
	var out []token.Inline
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.Text:
			v := c.Segment.Value(src)
			if !c.IsRaw() {
				v = unescape(v)
			}
			out = append(out, token.Inline{Kind: token.Text, Text: string(v)})
			if c.SoftLineBreak() || c.HardLineBreak() {
				out = append(out, token.Inline{Kind: token.LineBreak})
			}
		case *ast.String:
			out = append(out, token.Inline{Kind: token.Text, Text: string(c.Value)})
		case *ast.RawHTML:
			var b strings.Builder
			for i := 0; i < c.Segments.Len(); i++ {
				seg := c.Segments.At(i)
				b.Write(seg.Value(src))
			}
			out = append(out, token.Inline{Kind: token.Text, Text: b.String()})
		case *ast.Emphasis:
			kind := token.Emphasis
			if c.Level >= 2 {
				kind = token.Strong
			}
			out = append(out, token.Inline{Kind: kind, Children: lexInlines(c, src)})
		case *ast.CodeSpan:
			out = append(out, token.Inline{Kind: token.CodeSpan, Text: segmentText(c, src)})
		case *ast.Link:
			out = append(out, token.Inline{Kind: token.Link, Href: string(c.Destination), Children: lexInlines(c, src)})
		case *ast.AutoLink:
			out = append(out, token.Inline{
				Kind:     token.Link,
				Href:     string(c.URL(src)),
				Children: []token.Inline{{Kind: token.Text, Text: string(c.Label(src))}},
			})
		case *ast.Image:
			out = append(out, token.Inline{Kind: token.Text, Text: segmentText(c, src)})
		case *extast.Strikethrough:
			out = append(out, token.Inline{Kind: token.Strikethrough, Children: lexInlines(c, src)})
		case *extast.TaskCheckBox:
			box := "☐ "
			if c.IsChecked {
				box = "☑ "
			}
			out = append(out, token.Inline{Kind: token.Text, Text: box})
		default:
			out = append(out, token.Inline{Kind: token.Text, Text: segmentText(c, src)})
		}
	}
	return mergeText(out)
}

// mergeText joins consecutive childless Text tokens.
func mergeText(tokens []token.Inline) []token.Inline {
	out := tokens[:0:0]
	for _, t := range tokens {
		if t.Kind == token.Text && t.Text == "" {
			continue
		}
		if last := len(out) - 1; last >= 0 && t.Kind == token.Text && out[last].Kind == token.Text {
			out[last].Text += t.Text
			continue
		}
		out = append(out, t)
	}
	return out
}

// segmentText concatenates the raw text of all descendant Text nodes.
func segmentText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := c.(*ast.Text); ok {
			b.Write(t.Segment.Value(src))
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// rawLines returns the Markdown source of a block's lines without the
// trailing newline.
func rawLines(n ast.Node, src []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(src))
	}
	return strings.TrimRight(b.String(), "\n")
}

func unescape(v []byte) []byte {
	v = util.UnescapePunctuations(v)
	v = util.ResolveNumericReferences(v)
	return util.ResolveEntityNames(v)
}
