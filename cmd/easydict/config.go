package main

import (
	"fmt"

	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"github.com/japaniel/easydict/pkg/config"
)

func newConfigCmd(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:     "config",
		Short:   "Show or change settings",
		GroupID: "manage",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print all settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %s\n", a.settings.Path())
			tbl := table.New("Key", "Value").WithWriter(out)
			for _, key := range config.Keys {
				v, err := a.settings.Get(key)
				if err != nil {
					return err
				}
				tbl.AddRow(key, v)
			}
			tbl.Print()
			return nil
		},
	}

	set := &cobra.Command{
		Use:     "set KEY VALUE",
		Short:   "Change a setting",
		Example: "  easydict config set search_language cze\n  easydict config set window_size 800x600",
		Args:    cobra.ExactArgs(2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return config.Keys, cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveDefault
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.settings.Set(args[0], args[1]); err != nil {
				return err
			}
			v, _ := a.settings.Get(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], v)
			return nil
		},
	}

	c.AddCommand(show, set)
	return c
}
