// Package dictionary is the lookup layer used by the easydict front ends. It
// wraps a dictionary store with the user's language and search mode, and
// turns results into display text.
package dictionary

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"

	"github.com/japaniel/easydict/pkg/db"
)

// Language describes a searchable dictionary column.
type Language struct {
	ID       int
	Code     db.Lang
	Label    string
	FlagFile string
}

// Languages is the ordered list of languages offered by the front ends.
var Languages = []Language{
	{ID: 0, Code: db.LangEng, Label: "English", FlagFile: "flag_eng.svg"},
	{ID: 1, Code: db.LangCze, Label: "Čeština", FlagFile: "flag_cze.svg"},
}

// LanguageByCode returns the language with the given code.
func LanguageByCode(code string) (Language, bool) {
	for _, l := range Languages {
		if string(l.Code) == code {
			return l, true
		}
	}
	return Language{}, false
}

// Searcher runs a single dictionary query. *db.Store implements it.
type Searcher interface {
	Search(ctx context.Context, word string, lang db.Lang, mode db.SearchMode) (*db.Cursor, error)
}

// Dictionary looks words up in one language with one search mode.
type Dictionary struct {
	Lang db.Lang
	Mode db.SearchMode
	// Limit caps the number of results per lookup. Zero means no limit.
	Limit int

	s Searcher
}

// New returns a Dictionary searching s.
func New(s Searcher, lang db.Lang, mode db.SearchMode) *Dictionary {
	return &Dictionary{Lang: lang, Mode: mode, s: s}
}

// Lookup searches for word. Surrounding whitespace is ignored and an empty
// word returns no results.
func (d *Dictionary) Lookup(ctx context.Context, word string) ([]db.Result, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return nil, nil
	}

	c, err := d.s.Search(ctx, word, d.Lang, d.Mode)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	var results []db.Result
	for c.Next() {
		results = append(results, c.Result())
		if d.Limit > 0 && len(results) >= d.Limit {
			break
		}
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// LookupAll looks up every distinct word concurrently using at most workers
// goroutines. Results are keyed by the trimmed word. The first error stops
// the remaining lookups.
func (d *Dictionary) LookupAll(ctx context.Context, words []string, workers int) (map[string][]db.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		results  = make(map[string][]db.Result)
		firstErr error
	)

	pool := NewWorkerPool(workers, 0)
	pool.Start(ctx)

	seen := make(map[string]bool)
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true

		err := pool.Submit(ctx, func(ctx context.Context) error {
			rs, err := d.Lookup(ctx, w)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("lookup %q: %w", w, err)
					cancel()
				}
				return err
			}
			results[w] = rs
			return nil
		})
		if err != nil {
			break
		}
	}
	pool.Close()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Words splits scanned text into candidate lookup words: runs of letters,
// optionally joined by an apostrophe or hyphen. Duplicates are dropped
// ignoring case; the first spelling wins.
func Words(text string) []string {
	fold := cases.Fold()
	seen := make(map[string]bool)

	var words []string
	for _, w := range strings.FieldsFunc(text, isSeparator) {
		w = strings.Trim(w, "'’-")
		if w == "" {
			continue
		}
		key := fold.String(w)
		if seen[key] {
			continue
		}
		seen[key] = true
		words = append(words, w)
	}
	return words
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && r != '\'' && r != '-' && r != '’'
}
