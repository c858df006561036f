package db

// Entry is one row of the word-pair table.
type Entry struct {
	SourceWord string
	TargetWord string
	Notes      string
	Special    string
	Author     string
}

// Result is a search hit. Its fields follow the table's physical column order.
type Result Entry

// Fields returns the entry's columns in physical order.
func (e Entry) Fields() []any {
	return []any{e.SourceWord, e.TargetWord, e.Notes, e.Special, e.Author}
}

// Headword returns the field that was searched for the given language.
func (r Result) Headword(lang Lang) string {
	if lang == LangCze {
		return r.TargetWord
	}
	return r.SourceWord
}

// Translation returns the field opposite to the searched language.
func (r Result) Translation(lang Lang) string {
	if lang == LangCze {
		return r.SourceWord
	}
	return r.TargetWord
}

// Lang selects the column a search runs against.
type Lang string

const (
	// LangEng searches the English (source) column.
	LangEng Lang = "eng"
	// LangCze searches the Czech (target) column.
	LangCze Lang = "cze"
)

// column maps a language to its physical column.
func (l Lang) column() (string, bool) {
	switch l {
	case LangEng:
		return "eng", true
	case LangCze:
		return "cze", true
	}
	return "", false
}

// ParseLang validates a language code.
func ParseLang(s string) (Lang, error) {
	l := Lang(s)
	if _, ok := l.column(); !ok {
		return "", unknownLang(s)
	}
	return l, nil
}

// SearchMode selects the matching strategy of a search.
type SearchMode string

const (
	// FullText matches the term anywhere in the column.
	FullText SearchMode = "fulltext"
	// FirstChars matches columns starting with the term.
	FirstChars SearchMode = "first_chars"
	// WholeWord matches the term as a delimited, case-insensitive word.
	WholeWord SearchMode = "whole_word"
)

// SearchModes lists the supported modes.
var SearchModes = []SearchMode{FullText, FirstChars, WholeWord}

// ParseSearchMode validates a search mode name.
func ParseSearchMode(s string) (SearchMode, error) {
	for _, m := range SearchModes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", unknownMode(s)
}
