package db

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ulikunitz/xz/lzma"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path     string
		expected Format
		err      error
	}{
		{path: "sqlite_eng-cze.db", expected: FormatPlain},
		{path: "/data/sqlite_eng-cze.db.lzma", expected: FormatLZMA},
		{path: "dir.with.dots/test.db", expected: FormatPlain},
		{path: ".hidden.db", expected: FormatPlain},
		{path: "test.db.xz", err: ErrUnsupportedFormat},
		{path: "test.lzma", err: ErrUnsupportedFormat},
		{path: "test.sqlite", err: ErrUnsupportedFormat},
		{path: "test.old.db", err: ErrUnsupportedFormat},
		{path: "test.db.", err: ErrUnsupportedFormat},
		{path: ".db", err: ErrUnsupportedFormat},
	}

	for _, test := range tests {
		t.Run(test.path, func(t *testing.T) {
			got, err := DetectFormat(test.path)
			if !errors.Is(err, test.err) {
				t.Fatalf("DetectFormat(%q) error = %v, want %v", test.path, err, test.err)
			}
			if err == nil && got != test.expected {
				t.Fatalf("DetectFormat(%q) = %v, want %v", test.path, got, test.expected)
			}
		})
	}
}

func TestSuffixes(t *testing.T) {
	tests := []struct {
		name     string
		expected []string
	}{
		{"a.db.lzma", []string{".db", ".lzma"}},
		{"a.db", []string{".db"}},
		{"a", []string{}},
		{"..a.db", []string{".db"}},
		{"a.", nil},
	}
	for _, test := range tests {
		if diff := cmp.Diff(test.expected, suffixes(test.name)); diff != "" {
			t.Errorf("suffixes(%q) (-want, +got):\n%s", test.name, diff)
		}
	}
}

func TestCompressRoundTrip(t *testing.T) {
	image := bytes.Repeat([]byte("SQLite format 3\x00"), 512)
	packed, err := Compress(image)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if !bytes.HasPrefix(packed, xzMagic) {
		t.Fatalf("expected an xz stream")
	}
	if len(packed) >= len(image) {
		t.Fatalf("expected compression, got %d >= %d bytes", len(packed), len(image))
	}
	got, err := Decompress(packed)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(image, got) {
		t.Fatalf("round trip changed the image")
	}
}

func TestDecompressLegacyLZMA(t *testing.T) {
	image := []byte("legacy lzma alone stream")
	var buf bytes.Buffer
	w, err := lzma.NewWriter(&buf)
	if err != nil {
		t.Fatalf("lzma.NewWriter: %v", err)
	}
	if _, err := w.Write(image); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	got, err := Decompress(buf.Bytes())
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(image, got) {
		t.Fatalf("got %q, want %q", got, image)
	}
}

func TestDecompressEmpty(t *testing.T) {
	got, err := Decompress(nil)
	if err != nil || len(got) != 0 {
		t.Fatalf("Decompress(nil) = %v, %v", got, err)
	}
	packed, err := Compress(nil)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	got, err = Decompress(packed)
	if err != nil || len(got) != 0 {
		t.Fatalf("Decompress(empty stream) = %v, %v", got, err)
	}
}

func TestDecompressGarbage(t *testing.T) {
	// 0xFF is not a valid LZMA properties byte.
	if _, err := Decompress([]byte{0xFF, 0x00, 0x00, 0x01, 0x00, 0, 0, 0, 0, 0, 0, 0, 0}); err == nil {
		t.Fatalf("expected an error for garbage input")
	}
}

func TestCreateFile(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "sub", "test.db")
	if err := CreateFile(plain); err != nil {
		t.Fatalf("CreateFile(plain): %v", err)
	}
	if b, _ := os.ReadFile(plain); len(b) != 0 {
		t.Fatalf("expected an empty plain file, got %d bytes", len(b))
	}

	packed := filepath.Join(dir, "test.db.lzma")
	if err := CreateFile(packed); err != nil {
		t.Fatalf("CreateFile(lzma): %v", err)
	}
	b, err := os.ReadFile(packed)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if img, err := Decompress(b); err != nil || len(img) != 0 {
		t.Fatalf("expected a compressed empty image, got %d bytes, %v", len(img), err)
	}

	// Existing files are kept.
	if err := os.WriteFile(plain, []byte("keep"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := CreateFile(plain); err != nil {
		t.Fatalf("CreateFile(existing): %v", err)
	}
	if b, _ := os.ReadFile(plain); string(b) != "keep" {
		t.Fatalf("CreateFile overwrote an existing file")
	}

	if err := CreateFile(filepath.Join(dir, "test.txt")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}
