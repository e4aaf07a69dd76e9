package md2docx

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/alnah/go-md2docx/internal/assemble"
	"github.com/alnah/go-md2docx/internal/assets"
	"github.com/alnah/go-md2docx/internal/cache"
	"github.com/alnah/go-md2docx/internal/docx"
	"github.com/alnah/go-md2docx/internal/pipeline"
	"github.com/alnah/go-md2docx/internal/raster"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.MarkdownPreprocessor = (*pipeline.TextNormalizer)(nil)
	_ pipeline.Lexer                = (*pipeline.GoldmarkLexer)(nil)
	_ pipeline.InlineLexer          = (*pipeline.GoldmarkLexer)(nil)
	_ pipeline.HTMLPreviewer        = (*pipeline.PreviewConverter)(nil)
	_ DiagramRenderer               = (*raster.MermaidRenderer)(nil)
	_ FormulaRenderer               = (*raster.LaTeXRenderer)(nil)
)

// Converter orchestrates the Markdown-to-DOCX pipeline.
// Create with NewConverter, use Convert for conversion, and Close when done.
//
// Convert calls on one Converter are serialized: the render caches and the
// diagram browser belong to the Converter. Use a ConverterPool for parallel
// conversions.
type Converter struct {
	mu     sync.Mutex
	cfg    converterConfig
	logger *slog.Logger

	// diagramsSet and formulasSet record an explicit renderer option, so
	// that a nil renderer disables images instead of selecting the default.
	diagramsSet bool
	formulasSet bool

	assetLoader  assets.AssetLoader
	preprocessor pipeline.MarkdownPreprocessor
	lexer        pipeline.Lexer
	previewer    pipeline.HTMLPreviewer
	diagrams     *raster.Memo
	formulas     *raster.Memo
	assembler    *assemble.Assembler
	writer       *docx.Writer
	closer       io.Closer // default diagram renderer, owned
}

// NewConverter creates a Converter with default configuration.
// Use options to customize behavior (e.g., WithFonts, WithDiagramRenderer).
// Returns error if asset loading, template parsing or settings validation fails.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg:          defaultConfig(),
		assetLoader:  assets.NewEmbeddedLoader(),
		preprocessor: &pipeline.TextNormalizer{},
	}

	for _, opt := range opts {
		opt(c)
	}

	c.logger = c.cfg.logger
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}

	if c.cfg.assetPath != "" {
		resolver, err := assets.NewAssetResolver(c.cfg.assetPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
		}
		c.assetLoader = resolver
	}

	settings := docx.DefaultSettings()
	settings.Style = cmp.Or(c.cfg.style, settings.Style)
	settings.Fonts = c.cfg.fonts
	settings.Page = c.cfg.page
	writer, err := docx.NewWriter(c.assetLoader, settings)
	if err != nil {
		return nil, fmt.Errorf("initializing document writer: %w", err)
	}
	c.writer = writer

	if !c.diagramsSet {
		mermaid := raster.NewMermaidRenderer(c.cfg.mermaidScript, c.cfg.mermaidTheme, c.cfg.renderTimeout)
		c.cfg.diagramRenderer = mermaid
		c.closer = mermaid
	}
	resolution := c.cfg.formulaResolution
	if resolution <= 0 {
		resolution = raster.DefaultFormulaResolution
	}
	if !c.formulasSet {
		c.cfg.formulaRenderer = raster.NewLaTeXRenderer(resolution)
	}

	lexer := pipeline.NewGoldmarkLexer()
	c.lexer = lexer
	c.previewer = pipeline.NewPreviewConverter(c.cfg.highlightStyle)
	c.diagrams = raster.NewMemo(cache.NewLRU[*raster.Image](c.cfg.diagramCacheSize), c.cfg.renderTimeout, c.logger)
	c.formulas = raster.NewMemo(cache.NewLRU[*raster.Image](c.cfg.formulaCacheSize), c.cfg.renderTimeout, c.logger)

	c.assembler = assemble.New(assemble.Config{
		Lexer:             lexer,
		Diagrams:          c.diagrams,
		DiagramRenderer:   c.cfg.diagramRenderer,
		Formulas:          c.formulas,
		FormulaRenderer:   c.cfg.formulaRenderer,
		DiagramLanguages:  c.cfg.diagramLanguages,
		MinImageWidth:     c.cfg.minImageWidth,
		MaxImageWidth:     c.cfg.maxImageWidth,
		FormulaScale:      96 / 25.4 / resolution,
		Heuristics:        c.cfg.heuristics,
		HighlightStyle:    c.cfg.highlightStyle,
		Page:              c.cfg.page,
		NarrowColumnUnits: c.cfg.narrowColumnUnits,
		NarrowColumnWidth: c.cfg.narrowColumnWidth,
		Logger:            c.logger,
	})

	return c, nil
}

// Convert runs the full pipeline and returns the .docx bytes, plus the HTML
// preview when input.HTMLPreview is set. The context is used for
// cancellation and timeout. Diagram and formula failures degrade to text
// and never fail a conversion.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *ConvertResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := c.validateInput(input); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Caches only live for one conversion.
	c.diagrams.Clear()
	c.formulas.Clear()
	defer c.logCacheStats()

	mdContent := c.preprocessor.PreprocessMarkdown(ctx, input.Markdown)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	tokens, err := c.lexer.Lex(ctx, mdContent)
	if err != nil {
		return nil, fmt.Errorf("tokenizing markdown: %w", err)
	}

	blocks, err := c.assembler.Assemble(ctx, tokens)
	if err != nil {
		return nil, fmt.Errorf("assembling document: %w", err)
	}

	var buf bytes.Buffer
	props := docx.Properties{
		Title:   input.Title,
		Author:  input.Author,
		Created: input.Created,
		Footer:  input.Footer,
	}
	if err := c.writer.Write(ctx, &buf, blocks, props); err != nil {
		return nil, fmt.Errorf("writing document: %w", err)
	}

	res := &ConvertResult{DOCX: buf.Bytes()}

	if input.HTMLPreview {
		html, err := c.previewer.ToHTML(ctx, input.Title, mdContent)
		if err != nil {
			return nil, fmt.Errorf("rendering preview: %w", err)
		}
		res.HTML = []byte(html)
	}

	return res, nil
}

// Close releases the headless Chrome browser of the default diagram renderer.
func (c *Converter) Close() error {
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}

func (c *Converter) logCacheStats() {
	d, f := c.diagrams.Stats(), c.formulas.Stats()
	c.logger.Debug("render cache",
		"diagram_hits", d.Hits, "diagram_misses", d.Misses, "diagram_evictions", d.Evictions,
		"formula_hits", f.Hits, "formula_misses", f.Misses, "formula_evictions", f.Evictions)
}

// validateInput checks that required fields are present and valid.
//
// This is a TRUST BOUNDARY for direct library users who build Input manually.
// CLI users have their config validated earlier by config.Validate.
func (c *Converter) validateInput(input Input) error {
	if strings.TrimSpace(input.Markdown) == "" {
		return ErrEmptyMarkdown
	}
	if !utf8.ValidString(input.Markdown) {
		return ErrInvalidUTF8
	}
	for _, f := range []struct {
		name  string
		value string
		max   int
	}{
		{"title", input.Title, MaxTitleLength},
		{"author", input.Author, MaxAuthorLength},
		{"footer", input.Footer, MaxFooterLength},
	} {
		if n := utf8.RuneCountInString(f.value); n > f.max {
			return fmt.Errorf("%w: %s has %d characters (max %d)", ErrFieldTooLong, f.name, n, f.max)
		}
	}
	return nil
}
