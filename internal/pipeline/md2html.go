package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// ErrHTMLPreview indicates the HTML preview could not be rendered.
var ErrHTMLPreview = errors.New("HTML preview failed")

// previewTemplate wraps goldmark's fragment output in a standalone page.
// Highlighting uses inline styles so the page needs no stylesheet.
const previewTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s
</body>
</html>`

// HTMLPreviewer renders Markdown as an HTML page for inspection next to
// the generated document.
type HTMLPreviewer interface {
	ToHTML(ctx context.Context, title, content string) (string, error)
}

// PreviewConverter renders the preview with goldmark (GFM, hard wraps) and
// chroma syntax highlighting.
type PreviewConverter struct {
	md goldmark.Markdown
}

// NewPreviewConverter creates a PreviewConverter highlighting code with the
// named chroma style. An empty style selects goldmark-highlighting's default.
func NewPreviewConverter(style string) *PreviewConverter {
	opts := []highlighting.Option{
		highlighting.WithFormatOptions(
			chromahtml.WithClasses(false),
		),
	}
	if style != "" {
		opts = append(opts, highlighting.WithStyle(style))
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(opts...),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(), // line breaks are significant, as in the document
			gmhtml.WithXHTML(),
		),
	)
	return &PreviewConverter{md: md}
}

// ToHTML converts Markdown content to a standalone HTML5 document.
func (c *PreviewConverter) ToHTML(ctx context.Context, title, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(content), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLPreview, err)}
			return
		}
		if title == "" {
			title = "Document"
		}
		done <- result{html: fmt.Sprintf(previewTemplate, html.EscapeString(title), buf.String())}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}
