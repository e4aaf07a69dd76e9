// Command md2docx converts Markdown files to Word documents.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	md2docx "github.com/alnah/go-md2docx"
	"github.com/alnah/go-md2docx/internal/assets"
	"github.com/alnah/go-md2docx/internal/hints"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	args := os.Args[1:]
	setMaxProcs(os.Stderr, slices.Contains(args, "-v") || slices.Contains(args, "--verbose"))

	ctx, stop := notifyContext(context.Background())
	code := run(ctx, args, DefaultEnv())
	stop()
	os.Exit(code)
}

// setMaxProcs matches GOMAXPROCS to the container CPU quota, which sizes
// the converter pool. Logs only when verbose.
func setMaxProcs(w io.Writer, verbose bool) {
	logf := func(string, ...any) {}
	if verbose {
		logf = func(format string, args ...any) { fmt.Fprintf(w, format+"\n", args...) }
	}
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply.
	_, _ = maxprocs.Set(maxprocs.Logger(logf))
}

// run dispatches a command and returns the process exit code. Arguments
// that do not name a command are converted, so "md2docx doc.md" works.
func run(ctx context.Context, args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	switch args[0] {
	case "convert":
		return runConvertCmd(ctx, args[1:], env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "md2docx %s\n", Version)
		return ExitSuccess
	case "help", "-h", "--help":
		return runHelp(args[1:], env)
	case "doctor":
		return runDoctorCmd(args[1:], env)
	case "completion":
		if err := runCompletion(args[1:], env); err != nil {
			fmt.Fprintf(env.Stderr, "error: %v\n", err)
			return ExitUsage
		}
		return ExitSuccess
	default:
		return runConvertCmd(ctx, args, env)
	}
}

func runConvertCmd(ctx context.Context, args []string, env *Environment) int {
	flags, positional, err := parseConvertFlags(args)
	if errors.Is(err, flag.ErrHelp) {
		printConvertUsage(env.Stdout)
		return ExitSuccess
	}
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrUsage, err)
		fmt.Fprintf(env.Stderr, "error: %v\nRun 'md2docx help convert' for usage.\n", err)
		return exitCodeFor(err)
	}

	err = runConvert(ctx, positional, flags, env)
	if err == nil {
		return ExitSuccess
	}

	var batch *batchError
	if errors.As(err, &batch) {
		// Each failure was printed with its hint already.
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
	} else {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
	}
	return exitCodeFor(err)
}

// hintFor returns an actionable hint for known failure causes, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, md2docx.ErrBrowserConnect), errors.Is(err, ErrBrowserMissing):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, md2docx.ErrStyleNotFound):
		return hints.ForStyleNotFound(assets.StyleNames())
	case errors.Is(err, md2docx.ErrInvalidAssetPath):
		return hints.ForAssetPath()
	case errors.Is(err, ErrOutputDir):
		return hints.ForOutputDirectory()
	}
	return ""
}
