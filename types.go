package md2docx

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/alnah/go-md2docx/internal/assemble"
	"github.com/alnah/go-md2docx/internal/docx"
	"github.com/alnah/go-md2docx/internal/formula"
	"github.com/alnah/go-md2docx/internal/raster"
)

// Types shared with the internal stages. Aliases let callers configure a
// Converter and implement renderers without importing internal packages.
type (
	// Fonts is the body font pair plus the monospace font.
	Fonts = docx.Fonts
	// Page is the page geometry in twips.
	Page = docx.Page
	// Heuristics tunes detection of math written without delimiters.
	Heuristics = formula.Heuristics
	// Image is a rendered PNG with its pixel dimensions.
	Image = raster.Image
	// DiagramRenderer rasterizes diagram source text.
	DiagramRenderer = raster.DiagramRenderer
	// FormulaRenderer rasterizes TeX math.
	FormulaRenderer = raster.FormulaRenderer
)

// DefaultFonts returns Calibri, Microsoft YaHei and Consolas.
func DefaultFonts() Fonts { return docx.DefaultFonts() }

// A4 returns an A4 portrait page with half inch margins.
func A4() Page { return docx.A4() }

// DefaultHeuristics returns the default math detection thresholds.
func DefaultHeuristics() Heuristics { return formula.DefaultHeuristics() }

// Field length limits for document metadata.
const (
	MaxTitleLength  = 500
	MaxAuthorLength = 200
	MaxFooterLength = 200
)

// Input contains conversion parameters.
type Input struct {
	Markdown    string    // Markdown content (required)
	Title       string    // core property and preview title (optional)
	Author      string    // core property (optional)
	Footer      string    // footer text on every page (optional)
	Created     time.Time // creation date; zero means now
	HTMLPreview bool      // also render an HTML preview
}

// ConvertResult holds the conversion output.
type ConvertResult struct {
	DOCX []byte
	HTML []byte // nil unless Input.HTMLPreview
}

// Cache capacity defaults, in entries.
const (
	DefaultDiagramCacheSize = 100
	DefaultFormulaCacheSize = 200
)

// Diagram display width bounds, in pixels.
const (
	DefaultMinImageWidth = assemble.DefaultMinImageWidth
	DefaultMaxImageWidth = assemble.DefaultMaxImageWidth
)

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	renderTimeout     time.Duration
	logger            *slog.Logger
	diagramRenderer   raster.DiagramRenderer
	formulaRenderer   raster.FormulaRenderer
	fonts             docx.Fonts
	page              docx.Page
	diagramLanguages  []string
	minImageWidth     int
	maxImageWidth     int
	diagramCacheSize  int
	formulaCacheSize  int
	highlightStyle    string
	heuristics        formula.Heuristics
	assetPath         string
	style             string
	mermaidScript     string
	mermaidTheme      string
	formulaResolution float64
	narrowColumnUnits int
	narrowColumnWidth int
}

func defaultConfig() converterConfig {
	return converterConfig{
		renderTimeout:    raster.DefaultRenderTimeout,
		fonts:            docx.DefaultFonts(),
		page:             docx.A4(),
		diagramCacheSize: DefaultDiagramCacheSize,
		formulaCacheSize: DefaultFormulaCacheSize,
		heuristics:       formula.DefaultHeuristics(),
	}
}

// WithRenderTimeout bounds each diagram or formula render call.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithRenderTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("md2docx: WithRenderTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.renderTimeout = d
	}
}

// WithLogger sets the logger for diagnostics. Nil discards.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) {
		c.cfg.logger = logger
	}
}

// WithDiagramRenderer replaces the headless Chrome mermaid renderer.
// The Converter does not close a renderer it did not create.
// A nil renderer disables diagram images.
func WithDiagramRenderer(r DiagramRenderer) Option {
	return func(c *Converter) {
		c.cfg.diagramRenderer = r
		c.diagramsSet = true
	}
}

// WithFormulaRenderer replaces the in-process LaTeX renderer.
// A nil renderer disables formula images.
func WithFormulaRenderer(r FormulaRenderer) Option {
	return func(c *Converter) {
		c.cfg.formulaRenderer = r
		c.formulasSet = true
	}
}

// WithFonts sets the document fonts. Empty fields keep the defaults.
func WithFonts(f Fonts) Option {
	return func(c *Converter) {
		if f.Latin != "" {
			c.cfg.fonts.Latin = f.Latin
		}
		if f.EastAsia != "" {
			c.cfg.fonts.EastAsia = f.EastAsia
		}
		if f.Code != "" {
			c.cfg.fonts.Code = f.Code
		}
	}
}

// WithPage sets the page geometry. Validated by NewConverter.
func WithPage(p Page) Option {
	return func(c *Converter) {
		c.cfg.page = p
	}
}

// WithDiagramLanguages sets the fence languages rendered as diagrams.
func WithDiagramLanguages(langs ...string) Option {
	return func(c *Converter) {
		c.cfg.diagramLanguages = langs
	}
}

// WithImageWidths bounds the display width of diagram images in pixels.
// Panics unless 0 < minW <= maxW.
func WithImageWidths(minW, maxW int) Option {
	if minW <= 0 || maxW < minW {
		panic(fmt.Sprintf("md2docx: WithImageWidths(%d, %d) needs 0 < min <= max", minW, maxW))
	}
	return func(c *Converter) {
		c.cfg.minImageWidth = minW
		c.cfg.maxImageWidth = maxW
	}
}

// WithCacheCapacity sets the diagram and formula cache sizes.
// Panics if either is not positive.
func WithCacheCapacity(diagrams, formulas int) Option {
	if diagrams <= 0 || formulas <= 0 {
		panic("md2docx: WithCacheCapacity sizes must be positive")
	}
	return func(c *Converter) {
		c.cfg.diagramCacheSize = diagrams
		c.cfg.formulaCacheSize = formulas
	}
}

// WithHighlightStyle selects the chroma style for code colors, e.g. "monokai".
func WithHighlightStyle(name string) Option {
	return func(c *Converter) {
		c.cfg.highlightStyle = name
	}
}

// WithHeuristics tunes math detection for spans without delimiters.
func WithHeuristics(h Heuristics) Option {
	return func(c *Converter) {
		c.cfg.heuristics = h
	}
}

// WithTableLayout sets the narrow column threshold in width units and the
// fixed width in twips given to narrow columns.
func WithTableLayout(narrowUnits, narrowWidth int) Option {
	return func(c *Converter) {
		c.cfg.narrowColumnUnits = narrowUnits
		c.cfg.narrowColumnWidth = narrowWidth
	}
}

// WithAssetPath sets a custom directory for style sheets and part templates.
// Missing assets fall back to the embedded ones.
func WithAssetPath(path string) Option {
	return func(c *Converter) {
		c.cfg.assetPath = path
	}
}

// WithStyle selects a style sheet by name, e.g. "compact".
func WithStyle(name string) Option {
	return func(c *Converter) {
		c.cfg.style = name
	}
}

// WithMermaid configures the default diagram renderer: the mermaid script
// URL (or file:// path) and the theme. Empty values keep the defaults.
func WithMermaid(script, theme string) Option {
	return func(c *Converter) {
		c.cfg.mermaidScript = script
		c.cfg.mermaidTheme = theme
	}
}

// WithFormulaResolution sets the default formula renderer's pixels per
// millimetre.
func WithFormulaResolution(pxPerMM float64) Option {
	return func(c *Converter) {
		c.cfg.formulaResolution = pxPerMM
	}
}
