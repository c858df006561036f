package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Search queries the column of lang for word using mode and returns a cursor
// over the matching rows in the engine's natural order. Each call is an
// independent query. An unknown mode or language fails before any query runs.
//
// A malformed whole-word pattern is reported by the cursor's Err.
func (s *Store) Search(ctx context.Context, word string, lang Lang, mode SearchMode) (*Cursor, error) {
	var op, arg string
	switch mode {
	case FullText:
		op, arg = "LIKE", "%"+word+"%"
	case FirstChars:
		op, arg = "LIKE", word+"%"
	case WholeWord:
		op, arg = "REGEXP", wholeWordPattern(word)
	default:
		return nil, unknownMode(string(mode))
	}
	col, ok := lang.column()
	if !ok {
		return nil, unknownLang(string(lang))
	}

	conn, err := s.handle()
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("%s WHERE %s %s ?", selectSQL(s.table), col, op)
	s.logger.Debug("search", "word", word, "lang", string(lang), "mode", string(mode))
	rows, err := conn.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", s.table, err)
	}
	return &Cursor{rows: rows}, nil
}

// SearchAll runs Search and collects every result.
func (s *Store) SearchAll(ctx context.Context, word string, lang Lang, mode SearchMode) ([]Result, error) {
	c, err := s.Search(ctx, word, lang, mode)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	var out []Result
	for c.Next() {
		out = append(out, c.Result())
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Cursor iterates over search results. It must be closed after use.
type Cursor struct {
	rows *sql.Rows
	cur  Result
	err  error
}

// Next advances to the next result. It returns false at the end of the
// results or on error.
func (c *Cursor) Next() bool {
	if c.err != nil || !c.rows.Next() {
		return false
	}
	var f [5]sql.NullString
	if err := c.rows.Scan(&f[0], &f[1], &f[2], &f[3], &f[4]); err != nil {
		c.err = fmt.Errorf("scan result: %w", err)
		return false
	}
	c.cur = Result{
		SourceWord: f[0].String,
		TargetWord: f[1].String,
		Notes:      f[2].String,
		Special:    f[3].String,
		Author:     f[4].String,
	}
	return true
}

// Result returns the current result.
func (c *Cursor) Result() Result {
	return c.cur
}

// Err returns the first error encountered during iteration.
func (c *Cursor) Err() error {
	if c.err != nil {
		return c.err
	}
	if err := c.rows.Err(); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	return nil
}

// Close releases the underlying query.
func (c *Cursor) Close() error {
	return c.rows.Close()
}
