package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/alnah/go-mathdoc/internal/assets"
	"github.com/alnah/go-mathdoc/internal/config"
	"github.com/alnah/go-mathdoc/internal/fileutil"
	"github.com/alnah/go-mathdoc/internal/hints"
	"github.com/alnah/go-mathdoc/tex"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	if isVerbose(os.Args[1:]) {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...any) {}))
	}

	os.Exit(runMain(os.Args, DefaultEnv()))
}

// runMain dispatches to a command and returns the process exit code.
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	cmd, rest := args[1], args[2:]
	var err error
	switch cmd {
	case "render":
		err = runRender(ctx, rest, env)
	case "find":
		err = runFind(ctx, rest, env)
	case "packages":
		err = runPackages(rest, env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "mathdoc %s\n", Version)
	case "help", "-h", "--help":
		err = runHelp(rest, env)
	default:
		// "mathdoc page.md" is shorthand for "mathdoc render page.md".
		if !isCommand(cmd) && looksLikeDocument(cmd) {
			err = runRender(ctx, args[1:], env)
			break
		}
		printUsage(env.Stderr)
		err = fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
	}

	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
		return exitCodeFor(err)
	}
	return ExitSuccess
}

var commands = []string{"render", "find", "packages", "version", "help"}

func isCommand(s string) bool {
	return slices.Contains(commands, s)
}

func looksLikeDocument(s string) bool {
	return fileutil.IsHTML(s) || fileutil.IsMarkdown(s)
}

func isVerbose(args []string) bool {
	return slices.Contains(args, "-v") || slices.Contains(args, "--verbose")
}

// hintFor returns an actionable hint for errors that have one.
func hintFor(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, assets.ErrStyleNotFound):
		return hints.ForStyleNotFound(assets.Styles())
	case errors.Is(err, tex.ErrUnknownPackage):
		reg, regErr := tex.NewBuiltinRegistry()
		if regErr != nil {
			return ""
		}
		return hints.ForUnknownPackage(reg.Names())
	case errors.Is(err, config.ErrInvalidSelector):
		return hints.ForSelector()
	}
	return ""
}
