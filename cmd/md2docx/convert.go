package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	md2docx "github.com/alnah/go-md2docx"
	"github.com/alnah/go-md2docx/internal/config"
	"github.com/alnah/go-md2docx/internal/dateutil"
	"github.com/alnah/go-md2docx/internal/fileutil"
	"github.com/alnah/go-md2docx/internal/hints"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput        = errors.New("no input specified")
	ErrNoMarkdown     = errors.New("no markdown files found")
	ErrReadMarkdown   = errors.New("failed to read markdown file")
	ErrFrontMatter    = errors.New("invalid front matter")
	ErrWriteDOCX      = errors.New("failed to write DOCX file")
	ErrWritePreview   = errors.New("failed to write HTML preview")
	ErrInvalidTimeout = errors.New("invalid timeout")
	ErrConverterInit  = errors.New("failed to initialize converter")
	ErrOutputDir      = errors.New("failed to create output directory")
	ErrUsage          = errors.New("invalid usage")
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// batchError reports failed conversions. Each failure was already printed;
// it unwraps to the first one so the exit code reflects its cause.
type batchError struct {
	failed int
	first  error
}

func (e *batchError) Error() string { return fmt.Sprintf("%d conversion(s) failed", e.failed) }

func (e *batchError) Unwrap() error { return e.first }

// conversionParams groups parameters shared by every file of a batch.
type conversionParams struct {
	flags    documentFlags
	defaults documentDefaults
	now      time.Time
	preview  bool
	timeout  time.Duration
}

// runConvert orchestrates the conversion process.
func runConvert(ctx context.Context, positionalArgs []string, flags *convertFlags, env *Environment) error {
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	envCfg := loadEnvConfig()
	if !flags.common.quiet {
		warnUnknownEnvVars(env.Stderr)
	}

	cfg := config.DefaultConfig()
	if name := cmp.Or(flags.common.config, envCfg.ConfigPath); name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) && !fileutil.IsFilePath(name) {
				return fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
			}
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	// Precedence: flags > environment > config file
	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	now := env.Now()
	// Fail fast on a bad date rather than once per file.
	if _, err := dateutil.Footer(cmp.Or(flags.document.date, cfg.Document.Date), cfg.Document.Footer, now); err != nil {
		return fmt.Errorf("invalid date format: %w", err)
	}

	timeout, err := parseTimeout(flags.timeout)
	if err != nil {
		return err
	}

	inputPath, err := resolveInputPath(positionalArgs, cfg)
	if err != nil {
		return err
	}
	outputDir := cmp.Or(flags.output, cfg.Output.DefaultDir)

	files, err := discoverFiles(inputPath, outputDir)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w in %s", ErrNoMarkdown, inputPath)
	}

	logger := newLogger(env.Stderr, flags.common.quiet, flags.common.verbose)
	opts, err := buildOptions(cfg, logger)
	if err != nil {
		return err
	}

	size := min(md2docx.ResolvePoolSize(cmp.Or(flags.workers, envCfg.Workers)), len(files))
	logger.Debug("starting conversion", "files", len(files), "workers", size)
	pool := env.NewPool(size, opts...)
	defer func() {
		if err := pool.Close(); err != nil {
			logger.Warn("closing converters", "error", err)
		}
	}()

	params := &conversionParams{
		flags: flags.document,
		defaults: documentDefaults{
			title:  cfg.Document.Title,
			author: cfg.Document.Author,
			date:   cfg.Document.Date,
			footer: cfg.Document.Footer,
		},
		now:     now,
		preview: flags.preview || cfg.Output.Preview,
		timeout: timeout,
	}

	results := convertBatch(ctx, pool, files, params)

	summary := printResults(results, flags.common.quiet, flags.common.verbose, env)
	if summary.Failed > 0 {
		return &batchError{failed: summary.Failed, first: summary.FirstErr}
	}

	return nil
}

// mergeFlags merges CLI flags into config. CLI values override config values.
// Title, author and date stay per document; see documentMeta.
func mergeFlags(flags *convertFlags, cfg *config.Config) {
	setIfSet(&cfg.Document.Footer, flags.document.footer)
	setIfSet(&cfg.Document.Style, flags.document.style)
	setIfSet(&cfg.Assets.BasePath, flags.assetPath)

	setIfSet(&cfg.Fonts.Latin, flags.fonts.latin)
	setIfSet(&cfg.Fonts.EastAsia, flags.fonts.eastAsia)
	setIfSet(&cfg.Fonts.Code, flags.fonts.code)

	setIfSet(&cfg.Page.Size, flags.page.size)
	setIfSet(&cfg.Page.Orientation, flags.page.orientation)
	if flags.page.margin > 0 {
		cfg.Page.Margin = flags.page.margin
	}

	setIfSet(&cfg.Diagram.Timeout, flags.render.timeout)
	setIfSet(&cfg.Diagram.Script, flags.render.mermaidScript)
	setIfSet(&cfg.Diagram.Theme, flags.render.mermaidTheme)
	setIfSet(&cfg.Highlight.Style, flags.render.highlightStyle)
	if flags.render.noDiagrams {
		cfg.Diagram.Disabled = true
	}
	if flags.render.noFormulas {
		cfg.Formula.Disabled = true
	}
}

func setIfSet(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// buildOptions maps a validated config to converter options. Zero values
// are left out so the library defaults apply.
func buildOptions(cfg *config.Config, logger *slog.Logger) ([]md2docx.Option, error) {
	width, height, margin := cfg.Page.Twips()
	opts := []md2docx.Option{
		md2docx.WithLogger(logger),
		md2docx.WithPage(md2docx.Page{Width: width, Height: height, Margin: margin}),
		md2docx.WithFonts(md2docx.Fonts{
			Latin:    cfg.Fonts.Latin,
			EastAsia: cfg.Fonts.EastAsia,
			Code:     cfg.Fonts.Code,
		}),
		md2docx.WithHeuristics(md2docx.Heuristics{
			Triggers: cfg.Formula.Triggers,
			MaxLen:   cfg.Formula.MaxLength,
		}),
		md2docx.WithTableLayout(cfg.Table.NarrowUnits, cfg.Table.NarrowWidth),
	}

	if cfg.Document.Style != "" {
		opts = append(opts, md2docx.WithStyle(cfg.Document.Style))
	}
	if cfg.Assets.BasePath != "" {
		opts = append(opts, md2docx.WithAssetPath(cfg.Assets.BasePath))
	}
	if cfg.Highlight.Style != "" {
		opts = append(opts, md2docx.WithHighlightStyle(cfg.Highlight.Style))
	}

	renderTimeout, err := cfg.Diagram.RenderTimeout()
	if err != nil {
		return nil, err
	}
	if renderTimeout > 0 {
		opts = append(opts, md2docx.WithRenderTimeout(renderTimeout))
	}

	if cfg.Diagram.Disabled {
		opts = append(opts, md2docx.WithDiagramRenderer(nil))
	} else if cfg.Diagram.Script != "" || cfg.Diagram.Theme != "" {
		opts = append(opts, md2docx.WithMermaid(cfg.Diagram.Script, cfg.Diagram.Theme))
	}
	if len(cfg.Diagram.Languages) > 0 {
		opts = append(opts, md2docx.WithDiagramLanguages(cfg.Diagram.Languages...))
	}
	if cfg.Diagram.MinWidth > 0 || cfg.Diagram.MaxWidth > 0 {
		minW := cmp.Or(cfg.Diagram.MinWidth, md2docx.DefaultMinImageWidth)
		maxW := cmp.Or(cfg.Diagram.MaxWidth, md2docx.DefaultMaxImageWidth)
		// A bound set alone drags the default one along.
		if cfg.Diagram.MinWidth == 0 {
			minW = min(minW, maxW)
		} else {
			maxW = max(maxW, minW)
		}
		opts = append(opts, md2docx.WithImageWidths(minW, maxW))
	}

	if cfg.Formula.Disabled {
		opts = append(opts, md2docx.WithFormulaRenderer(nil))
	} else if cfg.Formula.Resolution > 0 {
		opts = append(opts, md2docx.WithFormulaResolution(cfg.Formula.Resolution))
	}

	if cfg.Cache.Diagrams > 0 || cfg.Cache.Formulas > 0 {
		opts = append(opts, md2docx.WithCacheCapacity(
			cmp.Or(cfg.Cache.Diagrams, md2docx.DefaultDiagramCacheSize),
			cmp.Or(cfg.Cache.Formulas, md2docx.DefaultFormulaCacheSize),
		))
	}

	return opts, nil
}

// newLogger builds the diagnostics logger: Info by default, Debug with
// --verbose, nothing with --quiet.
func newLogger(w io.Writer, quiet, verbose bool) *slog.Logger {
	if quiet {
		return slog.New(slog.DiscardHandler)
	}
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// parseTimeout parses the per-document timeout. Empty means none.
func parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: %q (must be a positive duration like 2m)", ErrInvalidTimeout, s)
	}
	return d, nil
}

// resolveInputPath determines the input path from args or config.
func resolveInputPath(args []string, cfg *config.Config) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Input.DefaultDir != "" {
		return cfg.Input.DefaultDir, nil
	}
	return "", ErrNoInput
}
