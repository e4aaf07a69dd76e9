package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// documentFlags holds document metadata flags.
type documentFlags struct {
	title  string
	author string
	date   string
	footer string
	style  string
}

// fontFlags holds font selection flags.
type fontFlags struct {
	latin    string
	eastAsia string
	code     string
}

// pageFlags holds page layout flags.
type pageFlags struct {
	size        string
	orientation string
	margin      float64
}

// renderFlags holds diagram and formula rendering flags.
type renderFlags struct {
	timeout        string
	noDiagrams     bool
	noFormulas     bool
	mermaidScript  string
	mermaidTheme   string
	highlightStyle string
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common    commonFlags
	output    string
	workers   int
	timeout   string
	preview   bool
	assetPath string
	document  documentFlags
	fonts     fontFlags
	page      pageFlags
	render    renderFlags
}

func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show timing and debug logs")
}

func addDocumentFlags(fs *flag.FlagSet, f *documentFlags) {
	fs.StringVar(&f.title, "title", "", "document title (\"\" = front matter, then first H1)")
	fs.StringVar(&f.author, "author", "", "document author")
	fs.StringVar(&f.date, "date", "", "footer date (\"auto\" = today)")
	fs.StringVar(&f.footer, "footer", "", "footer text")
	fs.StringVar(&f.style, "style", "", "style sheet name: default, compact")
}

func addFontFlags(fs *flag.FlagSet, f *fontFlags) {
	fs.StringVar(&f.latin, "font", "", "body font for Latin text")
	fs.StringVar(&f.eastAsia, "east-asia-font", "", "body font for East Asian text")
	fs.StringVar(&f.code, "code-font", "", "monospace font for code")
}

func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVarP(&f.size, "page-size", "p", "", "page size: a4, letter, legal")
	fs.StringVar(&f.orientation, "orientation", "", "page orientation: portrait, landscape")
	fs.Float64Var(&f.margin, "margin", 0, "page margin in inches (0.25-3.0)")
}

func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.StringVar(&f.timeout, "render-timeout", "", "timeout per diagram or formula render (e.g., 20s)")
	fs.BoolVar(&f.noDiagrams, "no-diagrams", false, "keep diagrams as code blocks")
	fs.BoolVar(&f.noFormulas, "no-formulas", false, "keep formulas as italic source")
	fs.StringVar(&f.mermaidScript, "mermaid-script", "", "mermaid.js URL or file:// path")
	fs.StringVar(&f.mermaidTheme, "mermaid-theme", "", "mermaid theme")
	fs.StringVar(&f.highlightStyle, "highlight-style", "", "code color style (chroma name)")
}

// newConvertFlagSet registers every convert flag on a fresh FlagSet.
func newConvertFlagSet(f *convertFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)

	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "timeout per document (e.g., 2m)")
	fs.BoolVar(&f.preview, "preview", false, "also write an HTML preview")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")

	addCommonFlags(fs, &f.common)
	addDocumentFlags(fs, &f.document)
	addFontFlags(fs, &f.fonts)
	addPageFlags(fs, &f.page)
	addRenderFlags(fs, &f.render)

	return fs
}

// parseConvertFlags parses convert command flags and returns positional args.
// Parse errors are returned, not printed; run reports them with the usage.
func parseConvertFlags(args []string) (*convertFlags, []string, error) {
	f := &convertFlags{}
	fs := newConvertFlagSet(f)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}
