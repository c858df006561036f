// Package config manages the user's EasyDict settings. Settings are loaded
// once at startup and written through on every change.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/japaniel/easydict/pkg/db"
)

// AppName names the per-user config and data directories.
const AppName = "easydict"

// FileName is the settings file name inside the config directory.
const FileName = "settings.yaml"

// DictionaryFileName is the default backing file of the dictionary.
const DictionaryFileName = "sqlite_eng-cze.db.lzma"

// ErrUnknownKey is returned by Set for a key that is not a setting.
var ErrUnknownKey = errors.New("unknown setting")

// Settings holds the user's preferences.
type Settings struct {
	// SearchLanguage is the column searched by default: "eng" or "cze".
	SearchLanguage string `yaml:"search_language"`
	// SearchMode is the default matching strategy.
	SearchMode string `yaml:"search_mode"`
	// ClipboardScan looks up words copied to the clipboard.
	ClipboardScan bool `yaml:"clipboard_scan"`
	// WindowSize is the main window's width and height.
	WindowSize [2]int `yaml:"window_size,flow"`
	// WinSizeRemember stores the window size on exit.
	WinSizeRemember bool `yaml:"win_size_remember"`

	Dictionary Dictionary `yaml:"dictionary"`

	path string
}

// Dictionary configures the dictionary store.
type Dictionary struct {
	Path       string `yaml:"path"`
	Table      string `yaml:"table"`
	MemoryOnly bool   `yaml:"memory_only"`
}

// DefaultSettings returns the settings of a fresh installation.
func DefaultSettings() *Settings {
	return &Settings{
		SearchLanguage:  string(db.LangEng),
		SearchMode:      string(db.FullText),
		ClipboardScan:   true,
		WindowSize:      [2]int{360, 640},
		WinSizeRemember: true,
		Dictionary: Dictionary{
			Path:       filepath.Join(DataDir(), DictionaryFileName),
			Table:      db.DefaultTable,
			MemoryOnly: true,
		},
	}
}

// Dir returns the EasyDict config directory under $XDG_CONFIG_HOME, falling
// back to ~/.config.
func Dir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = filepath.Join(homeDir(), ".config")
	}
	return filepath.Join(base, AppName)
}

// DataDir returns the EasyDict data directory under $XDG_DATA_HOME, falling
// back to ~/.local/share.
func DataDir() string {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		base = filepath.Join(homeDir(), ".local", "share")
	}
	return filepath.Join(base, AppName)
}

// DefaultPath returns the settings file location.
func DefaultPath() string {
	return filepath.Join(Dir(), FileName)
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// Load reads the settings file at path. A missing or empty file is written
// with default values. Unknown keys are rejected; invalid values fall back to
// their defaults.
func Load(path string) (*Settings, error) {
	if path == "" {
		path = DefaultPath()
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		s := DefaultSettings()
		s.path = path
		if err := s.Save(); err != nil {
			return s, err
		}
		return s, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening settings: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	s := DefaultSettings()
	s.path = path
	if err := decoder.Decode(s); errors.Is(err, io.EOF) {
		// Empty file: keep the defaults and write them out.
		return s, s.Save()
	} else if err != nil {
		return nil, fmt.Errorf("error parsing settings %s: %w", path, err)
	}
	s.validate()
	return s, nil
}

// validate replaces invalid values with defaults.
func (s *Settings) validate() {
	def := DefaultSettings()
	if _, err := db.ParseLang(s.SearchLanguage); err != nil {
		s.SearchLanguage = def.SearchLanguage
	}
	if _, err := db.ParseSearchMode(s.SearchMode); err != nil {
		s.SearchMode = def.SearchMode
	}
	if s.WindowSize[0] <= 0 || s.WindowSize[1] <= 0 {
		s.WindowSize = def.WindowSize
	}
	if s.Dictionary.Path == "" {
		s.Dictionary.Path = def.Dictionary.Path
	}
	if !db.ValidTable(s.Dictionary.Table) {
		s.Dictionary.Table = def.Dictionary.Table
	}
}

// Path returns the file the settings are saved to.
func (s *Settings) Path() string {
	return s.path
}

// Lang returns the validated search language.
func (s *Settings) Lang() db.Lang {
	return db.Lang(s.SearchLanguage)
}

// Mode returns the validated search mode.
func (s *Settings) Mode() db.SearchMode {
	return db.SearchMode(s.SearchMode)
}

// Save writes the settings to their file.
func (s *Settings) Save() error {
	if s.path == "" {
		s.path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("error serializing settings: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("error saving settings: %w", err)
	}
	return nil
}

// Keys lists the names accepted by Get and Set.
var Keys = []string{
	"search_language",
	"search_mode",
	"clipboard_scan",
	"window_size",
	"win_size_remember",
	"dictionary.path",
	"dictionary.table",
	"dictionary.memory_only",
}

// Get returns the value of a setting in the textual form Set accepts.
func (s *Settings) Get(key string) (string, error) {
	switch key {
	case "search_language":
		return s.SearchLanguage, nil
	case "search_mode":
		return s.SearchMode, nil
	case "clipboard_scan":
		return strconv.FormatBool(s.ClipboardScan), nil
	case "window_size":
		return fmt.Sprintf("%dx%d", s.WindowSize[0], s.WindowSize[1]), nil
	case "win_size_remember":
		return strconv.FormatBool(s.WinSizeRemember), nil
	case "dictionary.path":
		return s.Dictionary.Path, nil
	case "dictionary.table":
		return s.Dictionary.Table, nil
	case "dictionary.memory_only":
		return strconv.FormatBool(s.Dictionary.MemoryOnly), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKey, key)
}

// Set validates and applies one setting, then saves the file.
func (s *Settings) Set(key, value string) error {
	if err := s.apply(key, value); err != nil {
		return err
	}
	return s.Save()
}

func (s *Settings) apply(key, value string) error {
	switch key {
	case "search_language":
		lang, err := db.ParseLang(value)
		if err != nil {
			return err
		}
		s.SearchLanguage = string(lang)
	case "search_mode":
		mode, err := db.ParseSearchMode(value)
		if err != nil {
			return err
		}
		s.SearchMode = string(mode)
	case "clipboard_scan":
		return parseBool(key, value, &s.ClipboardScan)
	case "window_size":
		size, err := parseSize(value)
		if err != nil {
			return err
		}
		s.WindowSize = size
	case "win_size_remember":
		return parseBool(key, value, &s.WinSizeRemember)
	case "dictionary.path":
		if _, err := db.DetectFormat(value); err != nil {
			return err
		}
		s.Dictionary.Path = value
	case "dictionary.table":
		if !db.ValidTable(value) {
			return fmt.Errorf("%w: %q", db.ErrInvalidTable, value)
		}
		s.Dictionary.Table = value
	case "dictionary.memory_only":
		return parseBool(key, value, &s.Dictionary.MemoryOnly)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return nil
}

func parseBool(key, value string, dst *bool) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

// parseSize parses "WIDTHxHEIGHT".
func parseSize(value string) ([2]int, error) {
	w, h, ok := strings.Cut(strings.ToLower(value), "x")
	if !ok {
		return [2]int{}, fmt.Errorf("window_size: want WIDTHxHEIGHT, got %q", value)
	}
	width, err := strconv.Atoi(strings.TrimSpace(w))
	if err != nil || width <= 0 {
		return [2]int{}, fmt.Errorf("window_size: invalid width %q", w)
	}
	height, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil || height <= 0 {
		return [2]int{}, fmt.Errorf("window_size: invalid height %q", h)
	}
	return [2]int{width, height}, nil
}
