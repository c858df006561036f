package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/japaniel/easydict/pkg/config"
	"github.com/japaniel/easydict/pkg/db"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// app carries the global flags and the state shared by subcommands.
type app struct {
	configPath string
	dbPath     string
	table      string
	verbose    bool

	settings *config.Settings
	logger   *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "easydict",
		Short: "English-Czech dictionary",
		Long: `EasyDict looks words up in an English-Czech dictionary kept in a
SQLite database file (*.db or LZMA compressed *.db.lzma).

Examples:
  easydict search live                          # Fulltext search in English
  easydict search žít --lang cze --mode first_chars
  echo "to live and learn" | easydict lookup    # Look up every word
  easydict prepare --create                     # Create an empty dictionary
  easydict fill eng-cze.txt                     # Load a tab-separated word list
  easydict config set search_mode whole_word`,
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Settings file (default "+config.DefaultPath()+")")
	flags.StringVar(&a.dbPath, "db", "", "Dictionary file, overrides the settings")
	flags.StringVar(&a.table, "table", "", "Dictionary table, overrides the settings")
	flags.BoolVar(&a.verbose, "verbose", false, "Enable debug logging")

	root.AddGroup(
		&cobra.Group{ID: "search", Title: "Search Commands:"},
		&cobra.Group{ID: "manage", Title: "Maintenance Commands:"},
	)

	root.AddCommand(newSearchCmd(a))
	root.AddCommand(newLookupCmd(a))
	root.AddCommand(newPrepareCmd(a))
	root.AddCommand(newFillCmd(a))
	root.AddCommand(newConfigCmd(a))
	return root
}

// setup loads the settings and configures logging.
func (a *app) setup(cmd *cobra.Command) error {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	settings, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.settings = settings
	a.logger.Debug("settings loaded", "path", settings.Path())
	return nil
}

// dictionaryPath returns the dictionary file selected by flags or settings.
func (a *app) dictionaryPath() string {
	if a.dbPath != "" {
		return a.dbPath
	}
	return a.settings.Dictionary.Path
}

func (a *app) dictionaryTable() string {
	if a.table != "" {
		return a.table
	}
	return a.settings.Dictionary.Table
}

// openStore loads the dictionary into memory.
func (a *app) openStore(ctx context.Context, memoryOnly bool) (*db.Store, error) {
	path := a.dictionaryPath()
	s, err := db.Open(ctx, db.Config{
		Path:       path,
		Table:      a.dictionaryTable(),
		MemoryOnly: memoryOnly,
		Logger:     a.logger,
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("dictionary not found at %s, run 'easydict prepare --create': %w", path, err)
	}
	if err != nil {
		return nil, fmt.Errorf("error opening dictionary: %w", err)
	}
	return s, nil
}
