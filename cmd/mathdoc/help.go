package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mathdoc <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  render     Typeset the TeX math in HTML or Markdown files")
	fmt.Fprintln(w, "  find       List the math found, without changing anything")
	fmt.Fprintln(w, "  packages   List the available TeX packages")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'mathdoc help <command>' for details on a specific command.")
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mathdoc render <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Find TeX math, typeset it and write the documents as HTML.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    HTML or Markdown file, or a directory to walk")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "  -t, --timeout <dur>       Time limit for the whole run (e.g., 30s, 2m)")
	fmt.Fprintln(w)
	printTeXFlagsUsage(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Styling:")
	fmt.Fprintln(w, "      --style <name|path>   Stylesheet name or path (default: chtml)")
	fmt.Fprintln(w, "      --asset-path <dir>    Directory of custom stylesheets")
	fmt.Fprintln(w, "      --no-style            Do not inject a stylesheet")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "      --strict              Fail when any math fails to typeset")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show each file, item errors and debug logs")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "HTML inputs rendered next to their source are written as <name>.mathdoc.html.")
}

// printFindUsage prints usage for the find command.
func printFindUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mathdoc find <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "List the TeX math found in HTML or Markdown files.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w)
	printTeXFlagsUsage(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show delimiters and the bare math")
}

func printTeXFlagsUsage(w io.Writer) {
	fmt.Fprintln(w, "TeX:")
	fmt.Fprintln(w, "      --packages <list>     Packages, name or name:priority (default: base)")
	fmt.Fprintln(w, "      --inline \"<o> <c>\"    Inline delimiter pair, repeatable (default: \\( \\))")
	fmt.Fprintln(w, "      --display \"<o> <c>\"   Display delimiter pair, repeatable (default: $$ $$, \\[ \\])")
	fmt.Fprintln(w, "      --elements <list>     Selectors of the subtrees to search (default: body)")
	fmt.Fprintln(w, "      --tags <style>        Equation numbering: none, ams, all")
	fmt.Fprintln(w, "      --no-escapes          Treat \\$ as ordinary text")
	fmt.Fprintln(w, "      --no-environments     Ignore bare \\begin{..}..\\end{..}")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) error {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return nil
	}

	switch args[0] {
	case "render":
		printRenderUsage(env.Stdout)
	case "find":
		printFindUsage(env.Stdout)
	case "packages":
		fmt.Fprintln(env.Stdout, "Usage: mathdoc packages")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "List the available TeX packages, their priority and dependencies.")
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: mathdoc version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: mathdoc help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		printUsage(env.Stderr)
		return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
	}
	return nil
}
