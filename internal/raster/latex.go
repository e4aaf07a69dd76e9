package raster

import (
	"context"
	"fmt"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
)

// Formula raster defaults.
const (
	DefaultFormulaResolution = 10.0 // pixels per millimetre, about 254 DPI
	formulaMargin            = 0.5  // mm around the glyphs
	displayScale             = 1.25
)

// LaTeXRenderer typesets TeX math with canvas and rasterizes it.
// It runs in-process and needs no browser.
type LaTeXRenderer struct {
	resolution float64
}

// Compile-time interface check.
var _ FormulaRenderer = (*LaTeXRenderer)(nil)

// NewLaTeXRenderer creates a renderer at the given pixels per millimetre.
// A non-positive resolution uses DefaultFormulaResolution.
func NewLaTeXRenderer(resolution float64) *LaTeXRenderer {
	if resolution <= 0 {
		resolution = DefaultFormulaResolution
	}
	return &LaTeXRenderer{resolution: resolution}
}

// RenderFormula typesets tex and returns it as a PNG.
// Supports context cancellation via goroutine + select pattern since the
// typesetter doesn't natively support context.
func (r *LaTeXRenderer) RenderFormula(ctx context.Context, tex string, display bool) (*Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type result struct {
		img *Image
		err error
	}

	done := make(chan result, 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- result{err: fmt.Errorf("%w: %v", ErrFormulaRender, rec)}
			}
		}()
		img, err := r.render(tex, display)
		done <- result{img: img, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		return res.img, res.err
	}
}

func (r *LaTeXRenderer) render(tex string, display bool) (*Image, error) {
	path, err := canvas.ParseLaTeX("$" + tex + "$")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormulaRender, err)
	}
	if display {
		path = path.Scale(displayScale, displayScale)
	}

	c := canvas.New(1, 1)
	cc := canvas.NewContext(c)
	cc.SetFillColor(canvas.Black)
	cc.DrawPath(0, 0, path)
	c.Fit(formulaMargin)

	rgba := rasterizer.Draw(c, canvas.DPMM(r.resolution), canvas.DefaultColorSpace)
	if b := rgba.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: empty formula %q", ErrFormulaRender, tex)
	}

	img, err := fromImage(rgba)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormulaRender, err)
	}
	return img, nil
}
