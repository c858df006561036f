package db

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the store. Check them with errors.Is.
var (
	// ErrUnsupportedFormat is returned for backing files that are neither
	// *.db nor *.db.lzma.
	ErrUnsupportedFormat = errors.New("unsupported dictionary file format")
	// ErrUnknownSearchMode is returned for a search mode other than
	// fulltext, first_chars or whole_word.
	ErrUnknownSearchMode = errors.New("unknown search mode")
	// ErrUnknownLanguage is returned for a language with no column.
	ErrUnknownLanguage = errors.New("unknown language")
	// ErrInvalidTable is returned for a table name that is not a plain identifier.
	ErrInvalidTable = errors.New("invalid table name")
	// ErrMalformedLine is returned when a raw word list line has fewer than
	// five tab-separated fields.
	ErrMalformedLine = errors.New("malformed raw line")
	// ErrNotInitialized is returned when the store is used before Init.
	ErrNotInitialized = errors.New("store not initialized")
	// ErrAlreadyInitialized is returned by a second call to Init.
	ErrAlreadyInitialized = errors.New("store already initialized")
	// ErrClosed is returned when the store is used after Close.
	ErrClosed = errors.New("store closed")
)

func unknownMode(mode string) error {
	return fmt.Errorf("%w: %q", ErrUnknownSearchMode, mode)
}

func unknownLang(lang string) error {
	return fmt.Errorf("%w: %q", ErrUnknownLanguage, lang)
}
