package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/japaniel/easydict/pkg/db"
	"github.com/japaniel/easydict/pkg/dictionary"
)

const (
	formatTable  = "table"
	formatMarkup = "markup"
	formatText   = "text"
)

type searchOptions struct {
	lang   string
	mode   string
	limit  int
	format string
}

func newSearchCmd(a *app) *cobra.Command {
	opts := &searchOptions{}
	c := &cobra.Command{
		Use:   "search WORD",
		Short: "Search the dictionary",
		Long: `Search one language column of the dictionary.

Search modes:
  fulltext     the word appears anywhere in the entry
  first_chars  the entry starts with the word
  whole_word   the word appears as a whole word, ignoring case`,
		Example: `  easydict search live
  easydict search "to live" --mode whole_word --format text
  easydict search dům --lang cze --limit 5`,
		Args:    cobra.MinimumNArgs(1),
		GroupID: "search",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, a, opts, strings.Join(args, " "))
		},
	}

	f := c.Flags()
	f.StringVarP(&opts.lang, "lang", "l", "", "Search language: eng or cze (default from settings)")
	f.StringVarP(&opts.mode, "mode", "m", "", "Search mode: fulltext, first_chars or whole_word (default from settings)")
	f.IntVarP(&opts.limit, "limit", "n", 0, "Maximum number of results, 0 for all")
	f.StringVarP(&opts.format, "format", "f", formatTable, "Output format: table, markup or text")
	return c
}

// dictionary builds the lookup facade from flags, falling back to settings.
func (a *app) dictionary(s *db.Store, lang, mode string, limit int) (*dictionary.Dictionary, error) {
	if lang == "" {
		lang = a.settings.SearchLanguage
	}
	if mode == "" {
		mode = a.settings.SearchMode
	}
	l, err := db.ParseLang(lang)
	if err != nil {
		return nil, err
	}
	m, err := db.ParseSearchMode(mode)
	if err != nil {
		return nil, err
	}
	d := dictionary.New(s, l, m)
	d.Limit = limit
	return d, nil
}

func runSearch(cmd *cobra.Command, a *app, opts *searchOptions, word string) error {
	switch opts.format {
	case formatTable, formatMarkup, formatText:
	default:
		return fmt.Errorf("unknown output format %q", opts.format)
	}

	ctx := cmd.Context()
	s, err := a.openStore(ctx, true)
	if err != nil {
		return err
	}
	defer s.Close()

	d, err := a.dictionary(s, opts.lang, opts.mode, opts.limit)
	if err != nil {
		return err
	}

	results, err := d.Lookup(ctx, word)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintf(out, "No results for %q\n", strings.TrimSpace(word))
		return nil
	}
	printResults(out, opts.format, d.Lang, results)
	return nil
}

func printResults(out io.Writer, format string, lang db.Lang, results []db.Result) {
	switch format {
	case formatMarkup:
		for _, r := range results {
			fmt.Fprintln(out, dictionary.Markup(r, lang))
		}
	case formatText:
		for _, r := range results {
			fmt.Fprintln(out, strings.TrimRight(dictionary.PlainText(dictionary.Markup(r, lang)), "\n"))
		}
	default:
		tbl := table.New("Word", "Translation", "Notes", "Special", "Author").WithWriter(out)
		for _, r := range results {
			tbl.AddRow(r.Headword(lang), r.Translation(lang), r.Notes, r.Special, r.Author)
		}
		tbl.Print()
	}
}

type lookupOptions struct {
	lang      string
	mode      string
	limit     int
	workers   int
	clipboard bool
}

var errClipboardDisabled = errors.New("clipboard scan is disabled, enable it with 'easydict config set clipboard_scan true'")

func newLookupCmd(a *app) *cobra.Command {
	opts := &lookupOptions{}
	c := &cobra.Command{
		Use:   "lookup [TEXT...]",
		Short: "Look up every word of a text",
		Long: `Split text into words and look each of them up, the way copied text is
scanned from the clipboard. Text is read from the clipboard with
--clipboard, or from standard input when no arguments are given.`,
		Example: `  easydict lookup "live and let live"
  easydict lookup --clipboard --mode whole_word
  xclip -o | easydict lookup`,
		GroupID: "search",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := a.lookupText(cmd, opts, args)
			if err != nil {
				return err
			}
			return runLookup(cmd, a, opts, text)
		},
	}

	f := c.Flags()
	f.StringVarP(&opts.lang, "lang", "l", "", "Search language: eng or cze (default from settings)")
	f.StringVarP(&opts.mode, "mode", "m", "", "Search mode (default from settings)")
	f.IntVarP(&opts.limit, "limit", "n", 3, "Maximum number of results per word, 0 for all")
	f.IntVarP(&opts.workers, "workers", "w", 4, "Number of concurrent lookups")
	f.BoolVarP(&opts.clipboard, "clipboard", "c", false, "Look up the text on the clipboard")
	return c
}

// lookupText returns the text to scan: the clipboard, the arguments or
// standard input, in that order.
func (a *app) lookupText(cmd *cobra.Command, opts *lookupOptions, args []string) (string, error) {
	if opts.clipboard {
		if !a.settings.ClipboardScan {
			return "", errClipboardDisabled
		}
		text, err := clipboard.ReadAll()
		if err != nil {
			return "", fmt.Errorf("error reading clipboard: %w", err)
		}
		return text, nil
	}
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Reading text from standard input, end with Ctrl-D")
	}
	b, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("error reading input: %w", err)
	}
	return string(b), nil
}

func runLookup(cmd *cobra.Command, a *app, opts *lookupOptions, text string) error {
	words := dictionary.Words(text)
	out := cmd.OutOrStdout()
	if len(words) == 0 {
		fmt.Fprintln(out, "No words to look up")
		return nil
	}

	ctx := cmd.Context()
	s, err := a.openStore(ctx, true)
	if err != nil {
		return err
	}
	defer s.Close()

	d, err := a.dictionary(s, opts.lang, opts.mode, opts.limit)
	if err != nil {
		return err
	}

	found, err := d.LookupAll(ctx, words, opts.workers)
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}

	tbl := table.New("Query", "Word", "Translation").WithWriter(out)
	for _, w := range words {
		rs := found[w]
		if len(rs) == 0 {
			tbl.AddRow(w, "-", "")
			continue
		}
		for _, r := range rs {
			tbl.AddRow(w, r.Headword(d.Lang), r.Translation(d.Lang))
		}
	}
	tbl.Print()
	return nil
}
