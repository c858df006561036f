package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/japaniel/easydict/pkg/db"
	"github.com/japaniel/easydict/pkg/dictionary"
)

func newPrepareCmd(a *app) *cobra.Command {
	var create, memoryOnly bool
	c := &cobra.Command{
		Use:   "prepare",
		Short: "Create the dictionary table",
		Long: `Create the dictionary table if it does not exist and write the result back
to the dictionary file.`,
		Example: `  easydict prepare --create
  easydict prepare --db ./sqlite_eng-cze.db --table eng_cze`,
		Args:    cobra.NoArgs,
		GroupID: "manage",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if create {
				if err := db.CreateFile(a.dictionaryPath()); err != nil {
					return fmt.Errorf("error creating dictionary file: %w", err)
				}
			}

			s, err := a.openStore(ctx, memoryOnly)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Prepare(ctx); err != nil {
				return fmt.Errorf("prepare failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Table %s ready in %s\n", s.Table(), s.Path())
			return nil
		},
	}
	c.Flags().BoolVar(&create, "create", false, "Create an empty dictionary file if it is missing")
	c.Flags().BoolVar(&memoryOnly, "memory-only", false, "Do not write changes to the dictionary file")
	return c
}

func newFillCmd(a *app) *cobra.Command {
	var url string
	var memoryOnly bool
	c := &cobra.Command{
		Use:   "fill RAWFILE",
		Short: "Load a tab-separated word list",
		Long: `Append the rows of a tab-separated word list to the dictionary table. Each
line holds five fields: English, Czech, notes, special and author.

With --url the list is downloaded to RAWFILE first; gzip payloads are
decompressed.`,
		Example: `  easydict fill eng-cze.txt
  easydict fill eng-cze.txt --url https://example.org/en-cs.txt.gz`,
		Args:    cobra.ExactArgs(1),
		GroupID: "manage",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			raw := args[0]
			if url != "" {
				a.logger.Info("downloading word list", "url", url, "dest", raw)
				if err := dictionary.FetchRaw(ctx, url, raw); err != nil {
					return fmt.Errorf("error downloading word list: %w", err)
				}
			}

			s, err := a.openStore(ctx, memoryOnly)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Fill(ctx, raw); err != nil {
				return fmt.Errorf("fill failed: %w", err)
			}
			total, err := s.Count(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %s into %s (%d entries)\n", raw, s.Path(), total)
			return nil
		},
	}
	c.Flags().StringVar(&url, "url", "", "Download the word list from this URL first")
	c.Flags().BoolVar(&memoryOnly, "memory-only", false, "Do not write changes to the dictionary file")
	return c
}
