package db

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

// Format is the on-disk encoding of a backing file.
type Format int

const (
	// FormatPlain is a raw SQLite database image (*.db).
	FormatPlain Format = iota
	// FormatLZMA is a compressed SQLite database image (*.db.lzma).
	FormatLZMA
)

func (f Format) String() string {
	switch f {
	case FormatPlain:
		return "plain"
	case FormatLZMA:
		return "lzma"
	default:
		return "unknown"
	}
}

// suffixes returns the file name's extensions, e.g. [".db", ".lzma"] for
// "eng-cze.db.lzma". Leading dots do not start an extension and a name
// ending in a dot has none.
func suffixes(path string) []string {
	name := filepath.Base(path)
	if strings.HasSuffix(name, ".") {
		return nil
	}
	parts := strings.Split(strings.TrimLeft(name, "."), ".")
	out := make([]string, 0, len(parts)-1)
	for _, p := range parts[1:] {
		out = append(out, "."+p)
	}
	return out
}

// DetectFormat determines the backing file format from its suffixes alone.
// Only *.db and *.db.lzma are accepted.
func DetectFormat(path string) (Format, error) {
	s := suffixes(path)
	switch {
	case len(s) == 1 && s[0] == ".db":
		return FormatPlain, nil
	case len(s) == 2 && s[0] == ".db" && s[1] == ".lzma":
		return FormatLZMA, nil
	}
	return 0, fmt.Errorf("%w: %q: expected a *.db file or an LZMA compressed *.db.lzma file",
		ErrUnsupportedFormat, path)
}

// xzMagic starts every .xz container stream.
var xzMagic = []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}

// Decompress returns the database image held in b. Both the .xz container
// and legacy .lzma streams are accepted. Empty input yields an empty image.
func Decompress(b []byte) ([]byte, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var (
		r   io.Reader
		err error
	)
	if bytes.HasPrefix(b, xzMagic) {
		r, err = xz.NewReader(bytes.NewReader(b))
	} else {
		r, err = lzma.NewReader(bytes.NewReader(b))
	}
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	return out, nil
}

// Compress encodes a database image as an .xz stream.
func Compress(image []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}
	if _, err := w.Write(image); err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}
	return buf.Bytes(), nil
}

// CreateFile creates an empty backing file at path: a zero-length file for
// *.db, a compressed empty image for *.db.lzma. An existing file is left
// untouched.
func CreateFile(path string) error {
	format, err := DetectFormat(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	var data []byte
	if format == FormatLZMA {
		if data, err = Compress(nil); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dictionary directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("create dictionary file: %w", err)
	}
	return nil
}
