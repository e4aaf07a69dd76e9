// Package raster turns diagram and formula sources into PNG images.
//
// Renderers are fallible: a nil *Image with a non-nil error is a failed
// render, and callers fall back to text. Memo puts a bounded cache in front
// of a renderer so that each distinct source renders at most once per run,
// failures included.
package raster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/alnah/go-md2docx/internal/cache"
)

// Sentinel errors for rasterization.
var (
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrDiagramRender  = errors.New("diagram rendering failed")
	ErrFormulaRender  = errors.New("formula rendering failed")
	ErrImageDecode    = errors.New("image decoding failed")
)

// Image is a rendered PNG with its pixel dimensions.
type Image struct {
	PNG    []byte
	Width  int
	Height int
	// Scale is the device pixel ratio the raster was captured at.
	// Zero and one both mean one pixel per display pixel.
	Scale float64
}

// DiagramRenderer rasterizes diagram source text.
type DiagramRenderer interface {
	RenderDiagram(ctx context.Context, source string) (*Image, error)
}

// FormulaRenderer rasterizes TeX math. display selects display style.
type FormulaRenderer interface {
	RenderFormula(ctx context.Context, tex string, display bool) (*Image, error)
}

// DefaultRenderTimeout bounds a single render call.
const DefaultRenderTimeout = 20 * time.Second

// Memo memoizes render results, including failures, in an LRU cache.
// Concurrent lookups of the same key share one render call.
type Memo struct {
	cache   *cache.LRU[*Image]
	group   singleflight.Group
	timeout time.Duration
	logger  *slog.Logger
}

// NewMemo creates a Memo over c. A non-positive timeout uses
// DefaultRenderTimeout; a nil logger discards.
func NewMemo(c *cache.LRU[*Image], timeout time.Duration, logger *slog.Logger) *Memo {
	if timeout <= 0 {
		timeout = DefaultRenderTimeout
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Memo{cache: c, timeout: timeout, logger: logger}
}

// Lookup returns the image cached under key, calling render on a miss.
// It returns nil when the render failed now or earlier in the run.
func (m *Memo) Lookup(ctx context.Context, key string, render func(context.Context) (*Image, error)) *Image {
	if img, ok := m.cache.Get(key); ok {
		return img
	}

	v, _, _ := m.group.Do(key, func() (any, error) {
		if img, ok := m.cache.Get(key); ok {
			return img, nil
		}

		rctx, cancel := context.WithTimeout(ctx, m.timeout)
		defer cancel()

		img, err := render(rctx)
		if err == nil && img == nil {
			err = errors.New("renderer returned no image")
		}
		if err != nil {
			m.logger.Warn("render failed, using text fallback", "key", abbreviate(key), "error", err)
			img = nil
		}
		m.cache.Set(key, img)
		return img, nil
	})
	return v.(*Image)
}

// Clear empties the underlying cache.
func (m *Memo) Clear() {
	m.cache.Clear()
}

// Stats returns the cache counters.
func (m *Memo) Stats() cache.Stats {
	return m.cache.Stats()
}

func abbreviate(s string) string {
	const limit = 40
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return fmt.Sprintf("%s... (%d chars)", string(r[:limit]), len(r))
}
