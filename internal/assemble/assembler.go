// Package assemble maps the block token tree onto document blocks.
//
// Each block kind has a fixed layout: headings get decreasing spacing by
// depth, lists become single-level bullets, diagram code blocks become
// centered images, other code becomes one shaded paragraph per line, and
// table columns are sized from their content width. Text spans go through
// a Resolver, which swaps math notation for rendered formula images.
package assemble

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alnah/go-md2docx/internal/docx"
	"github.com/alnah/go-md2docx/internal/formula"
	"github.com/alnah/go-md2docx/internal/inline"
	"github.com/alnah/go-md2docx/internal/pipeline"
	"github.com/alnah/go-md2docx/internal/raster"
	"github.com/alnah/go-md2docx/internal/token"
)

// headingLayout is indexed by depth-1; deeper headings use the last entry.
var headingLayout = [...]struct {
	style  string
	before int
	after  int
	border bool
}{
	{docx.StyleHeading1, 480, 240, true},
	{docx.StyleHeading2, 360, 180, false},
	{docx.StyleHeading3, 280, 140, false},
	{docx.StyleHeading4, 240, 120, false},
}

// paragraphSpacing is the fixed spacing of body paragraphs, in twips.
var paragraphSpacing = docx.Spacing{Before: 0, After: 100}

// Config wires an Assembler. Zero values select defaults; nil renderers
// disable diagram or formula images.
type Config struct {
	Lexer           pipeline.InlineLexer
	Builder         inline.Builder
	Diagrams        *raster.Memo
	DiagramRenderer raster.DiagramRenderer
	Formulas        *raster.Memo
	FormulaRenderer raster.FormulaRenderer

	DiagramLanguages  []string
	MinImageWidth     int // display pixels
	MaxImageWidth     int
	FormulaScale      float64
	Heuristics        formula.Heuristics
	HighlightStyle    string
	Page              docx.Page
	NarrowColumnUnits int
	NarrowColumnWidth int // twips
	Logger            *slog.Logger
}

// Assembler converts block tokens to document blocks. It keeps no state
// between blocks beyond the render caches it was given.
type Assembler struct {
	resolver        *Resolver
	diagrams        *raster.Memo
	diagramRenderer raster.DiagramRenderer
	diagramLangs    map[string]struct{}
	minImageWidth   int
	maxImageWidth   int
	highlightStyle  string
	page            docx.Page
	narrowUnits     int
	narrowWidth     int
	logger          *slog.Logger
}

// New creates an Assembler from cfg.
func New(cfg Config) *Assembler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Lexer == nil {
		cfg.Lexer = pipeline.NewGoldmarkLexer()
	}
	if cfg.Builder.EmojiFont == "" {
		cfg.Builder = inline.NewBuilder("")
	}
	langs := cfg.DiagramLanguages
	if len(langs) == 0 {
		langs = DefaultDiagramLanguages
	}
	langSet := make(map[string]struct{}, len(langs))
	for _, l := range langs {
		langSet[strings.ToLower(strings.TrimSpace(l))] = struct{}{}
	}
	page := cfg.Page
	if page.PrintableWidth() <= 0 {
		page = docx.A4()
	}

	return &Assembler{
		resolver: NewResolver(cfg.Lexer, cfg.Builder, cfg.Formulas, cfg.FormulaRenderer,
			cfg.Heuristics, cfg.FormulaScale, logger),
		diagrams:        cfg.Diagrams,
		diagramRenderer: cfg.DiagramRenderer,
		diagramLangs:    langSet,
		minImageWidth:   orDefault(cfg.MinImageWidth, DefaultMinImageWidth),
		maxImageWidth:   orDefault(cfg.MaxImageWidth, DefaultMaxImageWidth),
		highlightStyle:  cmp.Or(cfg.HighlightStyle, DefaultHighlightStyle),
		page:            page,
		narrowUnits:     orDefault(cfg.NarrowColumnUnits, DefaultNarrowColumnUnits),
		narrowWidth:     orDefault(cfg.NarrowColumnWidth, DefaultNarrowColumnWidth),
		logger:          logger,
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Assemble converts blocks in order. It only fails when ctx is done.
func (a *Assembler) Assemble(ctx context.Context, blocks []token.Block) ([]docx.Block, error) {
	var out []docx.Block
	for _, b := range blocks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, a.block(ctx, b)...)
	}
	return out, nil
}

func (a *Assembler) block(ctx context.Context, b token.Block) []docx.Block {
	switch b := b.(type) {
	case token.Heading:
		return []docx.Block{a.heading(b)}
	case token.Paragraph:
		runs := a.resolver.Resolve(ctx, b.Text, b.Inline, inline.Style{})
		if len(runs) == 0 {
			return nil
		}
		sp := paragraphSpacing
		return []docx.Block{docx.Paragraph{Runs: runs, Spacing: &sp}}
	case token.List:
		out := make([]docx.Block, 0, len(b.Items))
		for _, item := range b.Items {
			out = append(out, docx.Paragraph{
				Style:  docx.StyleListBullet,
				Bullet: true,
				Runs:   a.resolver.Resolve(ctx, item.Text, item.Inline, inline.Style{}),
			})
		}
		return out
	case token.Code:
		return a.code(ctx, b)
	case token.Table:
		return []docx.Block{a.table(ctx, b)}
	case token.Rule:
		sp := paragraphSpacing
		return []docx.Block{docx.Paragraph{BorderBottom: true, Spacing: &sp}}
	case token.Blank:
		return nil
	case token.Unsupported:
		a.logger.Warn("skipping unsupported block", "kind", b.Kind)
		return nil
	default:
		a.logger.Warn("skipping unknown block", "type", fmt.Sprintf("%T", b))
		return nil
	}
}

// heading keeps formulas as their source text so heading line metrics do
// not depend on image sizes.
func (a *Assembler) heading(h token.Heading) docx.Paragraph {
	layout := headingLayout[min(max(h.Depth, 1), len(headingLayout))-1]
	return docx.Paragraph{
		Style:        layout.style,
		Runs:         a.resolver.Plain(h.Text, h.Inline, inline.Style{}),
		Spacing:      &docx.Spacing{Before: layout.before, After: layout.after},
		BorderBottom: layout.border,
	}
}
