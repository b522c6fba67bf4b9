// Command gridmatch finds every occurrence of a pattern grid inside a search
// grid read from text files and prints the search grid with matched regions
// highlighted.
//
//	gridmatch pattern.txt search.txt
//
// Files hold one row per line; '#' (or 1, X, ■) is a filled cell and '.'
// (or 0, _, □) an empty one.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/bodul/patternfind/pattern"
	"github.com/charmbracelet/lipgloss"
	flag "github.com/spf13/pflag"
)

func main() {
	var (
		plain bool
		help  bool
	)
	flag.BoolVar(&plain, "plain", false, "Print only the match list, one \"row col\" per line")
	flag.BoolVarP(&help, "help", "h", false, "Show help message")
	flag.Parse()

	if help || flag.NArg() != 2 {
		printUsage(os.Stderr)
		if help {
			os.Exit(0)
		}
		os.Exit(2)
	}

	if err := run(os.Stdout, flag.Arg(0), flag.Arg(1), plain); err != nil {
		fmt.Fprintf(os.Stderr, "gridmatch: %v\n", err)
		os.Exit(1)
	}
}

func run(w io.Writer, patternPath, searchPath string, plain bool) error {
	pat, err := readGrid(patternPath)
	if err != nil {
		return err
	}
	search, err := readGrid(searchPath)
	if err != nil {
		return err
	}

	matches := pattern.FindMatches(pat, search)

	if plain {
		for _, m := range matches {
			fmt.Fprintf(w, "%d %d\n", m.Row, m.Col)
		}
		return nil
	}

	p := newPalette(lipgloss.NewRenderer(w))
	_, err = io.WriteString(w, p.renderReport(pat, search, matches))
	return err
}

func readGrid(path string) (pattern.Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	g, err := pattern.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return g, nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "gridmatch - find a pattern grid inside a search grid")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: gridmatch [OPTIONS] PATTERN_FILE SEARCH_FILE")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprint(w, flag.CommandLine.FlagUsages())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Grid files: one row per line, '#' filled, '.' empty.")
}
