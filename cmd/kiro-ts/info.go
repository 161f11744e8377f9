package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"

	"github.com/kiro-lang/tree-sitter-kiro/pkg/ioctx"
	"github.com/kiro-lang/tree-sitter-kiro/pkg/kiro"
)

func infoCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show grammar metadata",
		Long: `Load the grammar and print its ABI version, node kinds and field names.

Fails if the grammar library cannot be found or was generated for an
incompatible tree-sitter ABI.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := a.Grammar().Info()
			if err != nil {
				return err
			}
			info.Library = a.libraryPath()

			out := ioctx.StdoutFromContext(cmd.Context())
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			return printInfo(styledWriter(out), info)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print metadata as JSON")

	return cmd
}

func printInfo(w io.Writer, info kiro.Info) error {
	const labelWidth = 16
	row := func(label, value string) {
		label += ":"
		pad := strings.Repeat(" ", max(labelWidth-ansi.StringWidth(label), 0))
		fmt.Fprintf(w, "%s%s %s\n", labelStyle.Render(label), pad, value)
	}

	if info.Library != "" {
		row("library", info.Library)
	}
	row("abi version", fmt.Sprint(info.ABIVersion))
	row("named kinds", fmt.Sprint(len(info.NamedKinds)))
	row("anonymous kinds", fmt.Sprint(len(info.AnonymousKinds)))
	row("fields", strings.Join(info.Fields, ", "))

	if len(info.NamedKinds) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, labelStyle.Render("named kinds:"))
		for _, kind := range info.NamedKinds {
			fmt.Fprintln(w, "  "+kind)
		}
	}
	return nil
}
