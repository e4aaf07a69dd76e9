package assemble

import (
	"context"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-md2docx/internal/docx"
	"github.com/alnah/go-md2docx/internal/formula"
	"github.com/alnah/go-md2docx/internal/inline"
	"github.com/alnah/go-md2docx/internal/pipeline"
	"github.com/alnah/go-md2docx/internal/raster"
	"github.com/alnah/go-md2docx/internal/token"
)

// DefaultFormulaScale maps formula raster pixels to 96 DPI display pixels
// for rasters produced at raster.DefaultFormulaResolution.
const DefaultFormulaScale = 96 / 25.4 / raster.DefaultFormulaResolution

// Resolver turns a text span into runs, replacing math notation with
// rendered formula images.
type Resolver struct {
	lexer      pipeline.InlineLexer
	builder    inline.Builder
	memo       *raster.Memo
	renderer   raster.FormulaRenderer // nil disables formula images
	heuristics formula.Heuristics
	scale      float64
	logger     *slog.Logger
}

// NewResolver creates a Resolver. A nil renderer leaves every formula as
// italic source text.
func NewResolver(lexer pipeline.InlineLexer, builder inline.Builder, memo *raster.Memo,
	renderer raster.FormulaRenderer, heuristics formula.Heuristics, scale float64, logger *slog.Logger) *Resolver {
	if scale <= 0 {
		scale = DefaultFormulaScale
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{
		lexer:      lexer,
		builder:    builder,
		memo:       memo,
		renderer:   renderer,
		heuristics: heuristics,
		scale:      scale,
		logger:     logger,
	}
}

// Resolve builds the runs for text. Without math notation the inline tokens
// are used as is (text alone when tokens is nil). With math, each formula
// becomes an image run, or an italic run of its source when rendering or
// decoding fails, in the style of the text around it.
func (r *Resolver) Resolve(ctx context.Context, text string, tokens []token.Inline, base inline.Style) []docx.Run {
	ex := formula.Extract(text, r.heuristics)
	if !ex.Found() {
		if tokens == nil {
			return toRuns(r.builder.Plain(text, base))
		}
		return toRuns(r.builder.Build(tokens, base))
	}

	images := r.renderAll(ctx, ex.Formulas)
	return r.splice(ex, base, func(p formula.Piece, style inline.Style) docx.Run {
		return r.formulaRun(*p.Formula, images[p.Index], style)
	})
}

// Plain returns text with each formula replaced by its source, as runs.
// Formulas are never rendered.
func (r *Resolver) Plain(text string, tokens []token.Inline, base inline.Style) []docx.Run {
	ex := formula.Extract(text, r.heuristics)
	if !ex.Found() {
		if tokens == nil {
			return toRuns(r.builder.Plain(text, base))
		}
		return toRuns(r.builder.Build(tokens, base))
	}
	return r.splice(ex, base, func(p formula.Piece, style inline.Style) docx.Run {
		return toRun(inline.Run{Text: p.Formula.Source, Style: style})
	})
}

// splice lexes the whole span with its formulas masked, then swaps each
// formula marker for the run fill returns, given the style of the text the
// marker sat in.
func (r *Resolver) splice(ex formula.Extraction, base inline.Style, fill func(formula.Piece, inline.Style) docx.Run) []docx.Run {
	var out []docx.Run
	for _, run := range r.builder.Build(r.lexer.LexInline(ex.Marked()), base) {
		if run.Break {
			out = append(out, toRun(run))
			continue
		}
		for _, p := range ex.Split(run.Text) {
			if p.Formula == nil {
				out = append(out, toRun(inline.Run{Text: p.Text, Style: run.Style}))
				continue
			}
			out = append(out, fill(p, run.Style))
		}
	}
	return out
}

// renderAll renders every formula of a span concurrently and waits for all
// of them. A failed render leaves a nil entry.
func (r *Resolver) renderAll(ctx context.Context, formulas []formula.Formula) []*raster.Image {
	images := make([]*raster.Image, len(formulas))
	if r.renderer == nil || r.memo == nil {
		return images
	}

	var g errgroup.Group
	for i, f := range formulas {
		g.Go(func() error {
			images[i] = r.memo.Lookup(ctx, FormulaKey(f), func(ctx context.Context) (*raster.Image, error) {
				return r.renderer.RenderFormula(ctx, f.TeX, f.Kind.Display())
			})
			return nil
		})
	}
	_ = g.Wait()
	return images
}

// formulaRun is the run for one formula: its image, linked when the
// formula sits in a link, or its source in italics.
func (r *Resolver) formulaRun(f formula.Formula, img *raster.Image, style inline.Style) docx.Run {
	if img != nil {
		prepared, err := raster.Prepare(img)
		if err == nil {
			return docx.Run{Href: style.Href, Image: &docx.Image{
				PNG:    prepared.PNG,
				Width:  max(1, int(math.Round(float64(prepared.Width)*r.scale))),
				Height: max(1, int(math.Round(float64(prepared.Height)*r.scale))),
			}}
		}
		r.logger.Warn("formula image unusable, using text fallback", "formula", f.Source, "error", err)
	}
	run := toRun(inline.Run{Text: f.Source, Style: style})
	run.Italic = true
	return run
}

// FormulaKey is the formula cache key. The display mode is part of the key
// because it changes the rendering.
func FormulaKey(f formula.Formula) string {
	return f.Kind.String() + ":" + f.TeX
}

// linkColor marks links that have no target to point at.
const linkColor = "0563C1"

func toRun(r inline.Run) docx.Run {
	run := docx.Run{
		Text:   r.Text,
		Break:  r.Break,
		Bold:   r.Style.Bold,
		Italic: r.Style.Italic,
		Strike: r.Style.Strike,
		Mono:   r.Style.Mono,
		Href:   r.Style.Href,
		Font:   r.Style.Font,
	}
	if r.Style.Link && r.Style.Href == "" {
		run.Color = linkColor
	}
	return run
}

func toRuns(runs []inline.Run) []docx.Run {
	if len(runs) == 0 {
		return nil
	}
	out := make([]docx.Run, len(runs))
	for i, r := range runs {
		out[i] = toRun(r)
	}
	return out
}
