package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/alnah/go-md2docx/internal/assets"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2docx <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert    Convert markdown files to DOCX (default)")
	fmt.Fprintln(w, "  doctor     Check that diagrams can be rendered")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  completion Generate shell completion script")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'md2docx help <command>' for details on a specific command.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2docx convert <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert markdown files to Word documents. Mermaid diagrams become images")
	fmt.Fprintln(w, "and TeX formulas are typeset; both fall back to text when rendering fails.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    Markdown file or directory (optional if config has input.defaultDir)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>         Output .docx file or directory")
	fmt.Fprintln(w, "  -c, --config <name>         Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>           Parallel workers (0 = auto)")
	fmt.Fprintln(w, "  -t, --timeout <d>           Timeout per document (e.g., 2m)")
	fmt.Fprintln(w, "      --preview               Also write an HTML preview")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Document:")
	fmt.Fprintln(w, "      --title <s>             Title (default: front matter, first H1, file name)")
	fmt.Fprintln(w, "      --author <s>            Author")
	fmt.Fprintln(w, "      --date <s>              Footer date: \"auto\", \"auto:FORMAT\", or literal")
	fmt.Fprintln(w, "                              Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D")
	fmt.Fprintln(w, "                              Presets (case-insensitive): iso, european, us, long")
	fmt.Fprintln(w, "      --footer <s>            Footer text")
	fmt.Fprintf(w, "      --style <name>          Style sheet: %s\n", strings.Join(assets.StyleNames(), ", "))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Fonts:")
	fmt.Fprintln(w, "      --font <s>              Latin body font (default: Calibri)")
	fmt.Fprintln(w, "      --east-asia-font <s>    East Asian body font (default: Microsoft YaHei)")
	fmt.Fprintln(w, "      --code-font <s>         Monospace font (default: Consolas)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Page:")
	fmt.Fprintln(w, "  -p, --page-size <s>         Page size: a4, letter, legal")
	fmt.Fprintln(w, "      --orientation <s>       Orientation: portrait, landscape")
	fmt.Fprintln(w, "      --margin <f>            Margin in inches (0.25-3.0)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "      --render-timeout <d>    Timeout per diagram or formula (default: 20s)")
	fmt.Fprintln(w, "      --no-diagrams           Keep diagrams as code blocks")
	fmt.Fprintln(w, "      --no-formulas           Keep formulas as italic source")
	fmt.Fprintln(w, "      --mermaid-script <url>  mermaid.js URL or file:// path")
	fmt.Fprintln(w, "      --mermaid-theme <s>     Mermaid theme")
	fmt.Fprintln(w, "      --highlight-style <s>   Code color style (default: github)")
	fmt.Fprintln(w, "      --asset-path <dir>      Custom style sheets and templates")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet                 Only show errors")
	fmt.Fprintln(w, "  -v, --verbose               Show timing and debug logs")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  MD2DOCX_CONFIG, MD2DOCX_STYLE, MD2DOCX_INPUT_DIR, MD2DOCX_OUTPUT_DIR,")
	fmt.Fprintln(w, "  MD2DOCX_AUTHOR, MD2DOCX_DATE, MD2DOCX_PAGE_SIZE, MD2DOCX_RENDER_TIMEOUT,")
	fmt.Fprintln(w, "  MD2DOCX_ASSET_PATH, MD2DOCX_WORKERS")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "doctor":
		fmt.Fprintln(env.Stdout, "Usage: md2docx doctor [--json]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Check Chrome availability for diagram rendering.")
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: md2docx version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "completion":
		printCompletionUsage(env.Stdout)
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: md2docx help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
