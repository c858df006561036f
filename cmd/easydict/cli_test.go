package main

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const rawData = "test_eng\ttest_cze\tnotes\tspecial\tauthor\n" +
	"eng\tcze\tnotes\tspecial\tauthor\n" +
	"english\tczech\tnotes\tspecial\tauthor\n"

type cli struct {
	t      *testing.T
	dir    string
	config string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	return &cli{t: t, dir: dir, config: filepath.Join(dir, "settings.yaml")}
}

// run executes the command line in-process and returns stdout and stderr.
func (c *cli) run(stdin string, args ...string) (string, string, error) {
	c.t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(append([]string{"--config", c.config}, args...))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, errOut, err := c.run("", args...)
	if err != nil {
		c.t.Fatalf("easydict %s: %v\nstderr:\n%s", strings.Join(args, " "), err, errOut)
	}
	return out
}

// dictionary creates and fills a dictionary file named name.
func (c *cli) dictionary(name string) string {
	c.t.Helper()
	path := filepath.Join(c.dir, name)
	raw := filepath.Join(c.dir, "raw.txt")
	if err := os.WriteFile(raw, []byte(rawData), 0o600); err != nil {
		c.t.Fatalf("write raw: %v", err)
	}
	c.mustRun("prepare", "--create", "--db", path)
	c.mustRun("fill", raw, "--db", path)
	return path
}

func TestPrepareFillSearch(t *testing.T) {
	for _, name := range []string{"test.db", "test.db.lzma"} {
		t.Run(name, func(t *testing.T) {
			c := newCLI(t)
			path := c.dictionary(name)

			out := c.mustRun("search", "eng", "--db", path, "--format", "text")
			for _, want := range []string{"test_eng", "english", "czech"} {
				if !strings.Contains(out, want) {
					t.Errorf("search output missing %q:\n%s", want, out)
				}
			}

			out = c.mustRun("search", "english", "--db", path, "--mode", "whole_word", "--format", "markup")
			if want := "<b>english</b>\n czech\n"; out != want {
				t.Errorf("markup output = %q, want %q", out, want)
			}

			out = c.mustRun("search", "cze", "--db", path, "--lang", "cze", "--mode", "first_chars", "--limit", "1")
			if !strings.Contains(out, "Translation") || !strings.Contains(out, "cze") || strings.Contains(out, "czech") {
				t.Errorf("unexpected table output:\n%s", out)
			}

			out = c.mustRun("search", "xyz", "--db", path)
			if !strings.Contains(out, `No results for "xyz"`) {
				t.Errorf("unexpected output for no results:\n%s", out)
			}
		})
	}
}

func TestFillMemoryOnlyKeepsFile(t *testing.T) {
	c := newCLI(t)
	path := c.dictionary("test.db.lzma")
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	c.mustRun("fill", filepath.Join(c.dir, "raw.txt"), "--db", path, "--memory-only")

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Fatalf("memory-only fill changed the dictionary file")
	}
}

func TestSearchMissingDictionary(t *testing.T) {
	c := newCLI(t)
	_, errOut, err := c.run("", "search", "eng", "--db", filepath.Join(c.dir, "missing.db"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
	if !strings.Contains(errOut, "prepare --create") {
		t.Fatalf("expected a hint on stderr, got:\n%s", errOut)
	}
}

func TestSearchRejectsBadInput(t *testing.T) {
	c := newCLI(t)
	path := c.dictionary("test.db")

	tests := [][]string{
		{"search", "eng", "--db", path, "--mode", "regex"},
		{"search", "eng", "--db", path, "--lang", "deu"},
		{"search", "eng", "--db", path, "--format", "json"},
		{"search", "eng", "--db", filepath.Join(c.dir, "test.sqlite")},
		{"search"},
	}
	for _, args := range tests {
		if _, _, err := c.run("", args...); err == nil {
			t.Errorf("easydict %s: expected an error", strings.Join(args, " "))
		}
	}
}

func TestLookupReadsStdin(t *testing.T) {
	c := newCLI(t)
	path := c.dictionary("test.db")

	out, errOut, err := c.run("English, eng! unknown", "lookup", "--db", path, "--mode", "whole_word")
	if err != nil {
		t.Fatalf("lookup: %v\n%s", err, errOut)
	}
	for _, want := range []string{"English", "czech", "cze", "unknown"} {
		if !strings.Contains(out, want) {
			t.Errorf("lookup output missing %q:\n%s", want, out)
		}
	}

	out = c.mustRun("lookup", "--db", path, "42", "--")
	if !strings.Contains(out, "No words to look up") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestConfigSetShow(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("config", "set", "search_language", "cze")
	if strings.TrimSpace(out) != "search_language = cze" {
		t.Fatalf("unexpected set output %q", out)
	}

	out = c.mustRun("config", "show")
	if !strings.Contains(out, c.config) {
		t.Errorf("show output missing the settings path:\n%s", out)
	}
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 2 && fields[0] == "search_language" && fields[1] != "cze" {
			t.Errorf("search_language = %q after set", fields[1])
		}
	}

	if _, _, err := c.run("", "config", "set", "theme", "dark"); err == nil {
		t.Errorf("expected an error for an unknown key")
	}
}

func TestConfigShowEmptySettingsFile(t *testing.T) {
	c := newCLI(t)
	if err := os.WriteFile(c.config, nil, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	out := c.mustRun("config", "show")
	if !strings.Contains(out, "search_mode") || !strings.Contains(out, "fulltext") {
		t.Fatalf("expected default settings:\n%s", out)
	}
}

func TestSearchUsesSettings(t *testing.T) {
	c := newCLI(t)
	path := c.dictionary("test.db")
	c.mustRun("config", "set", "dictionary.path", path)
	c.mustRun("config", "set", "search_mode", "first_chars")

	out := c.mustRun("search", "eng", "--format", "text")
	if strings.Contains(out, "test_eng") || !strings.Contains(out, "english") {
		t.Fatalf("expected a first_chars search of the configured dictionary:\n%s", out)
	}
}

func TestLookupClipboardDisabled(t *testing.T) {
	c := newCLI(t)
	path := c.dictionary("test.db")
	c.mustRun("config", "set", "clipboard_scan", "false")

	if _, _, err := c.run("", "lookup", "--clipboard", "--db", path); !errors.Is(err, errClipboardDisabled) {
		t.Fatalf("expected errClipboardDisabled, got %v", err)
	}
}
