// Package md2docx converts Markdown to Word documents (.docx).
//
// # Quick Start
//
//	conv, err := md2docx.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	result, err := conv.Convert(ctx, md2docx.Input{
//	    Markdown: "# Hello\n\nSome **bold** text and $E = mc^2$.",
//	    Title:    "Hello",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("hello.docx", result.DOCX, 0o644)
//
// # Pipeline
//
// The conversion runs these stages in order:
//
//  1. Normalize pasted text: line endings, common indentation, whitespace runs
//  2. Tokenize with Goldmark (GFM tables, strikethrough, autolinks)
//  3. Map each block token to paragraphs, tables or images
//  4. Render mermaid diagrams and TeX math to PNG, through per-run caches
//  5. Package the document as Office Open XML
//
// A diagram or formula that fails to render is emitted as text: the diagram
// as a code block, the formula as italic source. Only tokenization,
// packaging and cancellation fail a conversion.
//
// # Math
//
// Math is recognized inside \[..\], $$..$$, \(..\) and $..$ delimiters. Spans
// without delimiters are checked for dense operator use and for naked
// commands such as \frac or \alpha; see WithHeuristics. Formulas inside
// headings are kept as text.
//
// # Configuration
//
// Use functional options with NewConverter:
//
//	conv, err := md2docx.NewConverter(
//	    md2docx.WithFonts(md2docx.Fonts{Latin: "Arial"}),
//	    md2docx.WithRenderTimeout(10*time.Second),
//	    md2docx.WithLogger(slog.Default()),
//	)
//
// # Parallel Processing
//
// A Converter serializes its own Convert calls. For batches, use
// ConverterPool:
//
//	pool := md2docx.NewConverterPool(md2docx.ResolvePoolSize(0))
//	defer pool.Close()
//
//	conv, err := pool.Acquire()
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(conv)
//
// # Custom Assets
//
// Style sheets and part templates can be replaced from a directory holding
// styles/<name>.xml and templates/<name>.xml:
//
//	conv, err := md2docx.NewConverter(
//	    md2docx.WithAssetPath("/path/to/assets"),
//	    md2docx.WithStyle("corporate"),
//	)
//
// # Browser Requirements
//
// The default diagram renderer drives headless Chrome through go-rod and
// downloads Chromium on first use when none is installed. Environment
// variables:
//   - ROD_NO_SANDBOX=1: Disable Chrome sandbox (required in Docker/CI)
//   - ROD_BROWSER_BIN=/path/to/chrome: Use a specific Chrome binary
//
// Formulas render in-process and need no browser. Pass
// WithDiagramRenderer(nil) to disable diagram images entirely.
package md2docx
