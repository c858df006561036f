package db

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// maxRawLine is the longest raw word list line accepted by ParseRaw.
const maxRawLine = 1 << 20

// ParseRaw reads a tab-separated word list. Every line must carry at least
// five fields which map onto the Entry fields in order; extra fields are
// ignored. LF and CRLF line endings are stripped. Entries are returned in
// file order. A line longer than maxRawLine (1 MiB) fails with an error
// wrapping bufio.ErrTooLong.
func ParseRaw(r io.Reader) ([]Entry, error) {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxRawLine)

	var entries []Entry
	line := 0
	for s.Scan() {
		line++
		fields := strings.Split(s.Text(), "\t")
		if len(fields) < len(columns) {
			return nil, fmt.Errorf("%w: line %d has %d fields, want %d",
				ErrMalformedLine, line, len(fields), len(columns))
		}
		entries = append(entries, Entry{
			SourceWord: fields[0],
			TargetWord: fields[1],
			Notes:      fields[2],
			Special:    fields[3],
			Author:     fields[4],
		})
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("read raw line %d: %w", line+1, err)
	}
	return entries, nil
}
