package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kiro-lang/tree-sitter-kiro/pkg/grammar"
	"github.com/kiro-lang/tree-sitter-kiro/pkg/ioctx"
)

func pathsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "List where the grammar library is searched for",
		Long: fmt.Sprintf(`Print every candidate grammar library file in search order, marking the
ones that exist. The first existing file is the one that gets loaded.

Set %s to use a specific file, or %s to add
directories to the front of the search.`, grammar.LibraryEnv, grammar.PathEnv),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := styledWriter(ioctx.StdoutFromContext(cmd.Context()))
			for _, path := range a.config.Loader().Candidates() {
				if _, err := os.Stat(path); err == nil {
					fmt.Fprintf(out, "%s %s\n", path, okStyle.Render("(found)"))
				} else {
					fmt.Fprintln(out, positionStyle.Render(path))
				}
			}
			return nil
		},
	}
}
