package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kiro-lang/tree-sitter-kiro/pkg/ioctx"
)

func parseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "parse FILE...",
		Short: "Print the syntax tree of Kiro source files",
		Long: `Parse each file and print its syntax tree as an S-expression.

ERROR and MISSING nodes appear in the tree where the source does not match
the grammar; use "kiro-ts check" to list them as diagnostics.`,
		Example: `  kiro-ts parse main.kiro`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := styledWriter(ioctx.StdoutFromContext(ctx))
			g := a.Grammar()

			for _, path := range args {
				source, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}

				sexp, err := g.Sexp(ctx, source)
				if err != nil {
					return fmt.Errorf("failed to parse %s: %w", path, err)
				}

				if len(args) > 1 {
					fmt.Fprintln(out, pathStyle.Render(path))
				}
				fmt.Fprintln(out, sexp)
			}
			return nil
		},
	}
}
