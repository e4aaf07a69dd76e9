package assemble

import (
	"context"
	"math"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/mattn/go-runewidth"

	"github.com/alnah/go-md2docx/internal/docx"
	"github.com/alnah/go-md2docx/internal/raster"
	"github.com/alnah/go-md2docx/internal/token"
)

// Code block defaults.
const (
	DefaultHighlightStyle = "github"
	DefaultMinImageWidth  = 300 // display pixels
	DefaultMaxImageWidth  = 600
	codeShading           = "F6F8FA"
	codeTabWidth          = 4 // columns per tab stop
)

// DefaultDiagramLanguages are the fence languages rendered as diagrams.
var DefaultDiagramLanguages = []string{"mermaid"}

func (a *Assembler) code(ctx context.Context, c token.Code) []docx.Block {
	lang := strings.ToLower(strings.TrimSpace(c.Language))
	if _, ok := a.diagramLangs[lang]; ok {
		if img := a.diagram(ctx, c.Text); img != nil {
			return []docx.Block{*img}
		}
	}
	return a.codeLines(c.Text, lang)
}

// diagram renders source through the diagram cache. It returns nil when
// rendering is disabled, failed now or earlier, or produced unusable data.
func (a *Assembler) diagram(ctx context.Context, text string) *docx.Image {
	source := strings.TrimSpace(text)
	if a.diagramRenderer == nil || a.diagrams == nil || source == "" {
		return nil
	}
	img := a.diagrams.Lookup(ctx, source, func(ctx context.Context) (*raster.Image, error) {
		return a.diagramRenderer.RenderDiagram(ctx, source)
	})
	if img == nil {
		return nil
	}
	prepared, err := raster.Prepare(img)
	if err != nil {
		a.logger.Warn("diagram image unusable, rendering as code", "error", err)
		return nil
	}
	w, h := prepared.DisplaySize()
	w, h = FitWidth(w, h, a.minImageWidth, a.maxImageWidth)
	return &docx.Image{PNG: prepared.PNG, Width: w, Height: h, Align: docx.AlignCenter}
}

// FitWidth scales w x h so the width lies within [minW, maxW], keeping the
// aspect ratio.
func FitWidth(w, h, minW, maxW int) (int, int) {
	target := min(max(w, minW), maxW)
	if target == w || w <= 0 {
		return w, h
	}
	return target, max(1, int(math.Round(float64(h)*float64(target)/float64(w))))
}

// codeLines emits one shaded paragraph in the monospace Code style per
// source line, colored with the chroma lexer for lang when one exists.
// Tabs are expanded to spaces so columns line up in the document.
func (a *Assembler) codeLines(text, lang string) []docx.Block {
	lines := a.highlight(text, lang)
	blocks := make([]docx.Block, len(lines))
	for i, runs := range lines {
		blocks[i] = docx.Paragraph{Style: docx.StyleCode, Shading: codeShading, Runs: runs}
	}
	return blocks
}

func (a *Assembler) highlight(text, lang string) [][]docx.Run {
	n := strings.Count(text, "\n") + 1

	var lexer chroma.Lexer
	if lang != "" {
		lexer = lexers.Get(lang)
	}
	if lexer == nil {
		return plainLines(text)
	}
	it, err := chroma.Coalesce(lexer).Tokenise(nil, text)
	if err != nil {
		return plainLines(text)
	}

	style := styles.Get(a.highlightStyle)
	lines := make([][]docx.Run, 1, n)
	col := 0
	for _, tok := range it.Tokens() {
		for i, part := range strings.Split(tok.Value, "\n") {
			if i > 0 {
				lines = append(lines, nil)
				col = 0
			}
			if part == "" {
				continue
			}
			part, col = expandTabs(part, col)
			last := len(lines) - 1
			lines[last] = append(lines[last], styledRun(part, style.Get(tok.Type)))
		}
	}
	// Lexers may append a final newline.
	if len(lines) > n {
		lines = lines[:n]
	}
	return lines
}

func styledRun(text string, entry chroma.StyleEntry) docx.Run {
	run := docx.Run{Text: text}
	if entry.Colour.IsSet() {
		run.Color = strings.ToUpper(strings.TrimPrefix(entry.Colour.String(), "#"))
	}
	run.Bold = entry.Bold == chroma.Yes
	run.Italic = entry.Italic == chroma.Yes
	return run
}

func plainLines(text string) [][]docx.Run {
	src := strings.Split(text, "\n")
	lines := make([][]docx.Run, len(src))
	for i, l := range src {
		if l != "" {
			l, _ = expandTabs(l, 0)
			lines[i] = []docx.Run{{Text: l}}
		}
	}
	return lines
}

// expandTabs replaces each tab in s with spaces up to the next tab stop.
// col is the display column s starts at; the column after s is returned.
// Wide runes take two columns.
func expandTabs(s string, col int) (string, int) {
	if !strings.ContainsRune(s, '\t') {
		return s, col + runewidth.StringWidth(s)
	}
	var b strings.Builder
	for _, r := range s {
		if r == '\t' {
			n := codeTabWidth - col%codeTabWidth
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteRune(r)
		col += runewidth.RuneWidth(r)
	}
	return b.String(), col
}
