package main

import (
	"fmt"

	"github.com/kr/pretty"
	"github.com/spf13/cobra"

	"github.com/kiro-lang/tree-sitter-kiro/pkg/ioctx"
)

func configCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration",
		Long: `Print the configuration after merging kiro.toml, environment variables
and command line flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := ioctx.StdoutFromContext(cmd.Context())
			if a.config.Path == "" {
				fmt.Fprintln(out, "# no kiro.toml found, using defaults")
			} else {
				fmt.Fprintf(out, "# %s\n", a.config.Path)
			}
			_, err := pretty.Fprintf(out, "%# v\n", a.config)
			return err
		},
	}
}
