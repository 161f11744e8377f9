package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kiro-lang/tree-sitter-kiro/pkg/ioctx"
	"github.com/kiro-lang/tree-sitter-kiro/pkg/kiro"
)

func checkCmd(a *app) *cobra.Command {
	var jobs int

	cmd := &cobra.Command{
		Use:   "check [PATTERN...]",
		Short: "Syntax-check Kiro source files",
		Long: `Check files for syntax errors.

Each argument is a file, a directory (checked recursively for .kiro files) or
a doublestar glob such as "src/**/*.kiro". Without arguments the [check]
include list from kiro.toml is used, falling back to main.kiro.

Exits non-zero when any file has errors or cannot be read.`,
		Example: `  # Check the entry file
  kiro-ts check

  # Check a whole tree with 4 workers
  kiro-ts check -j 4 'src/**/*.kiro'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			patterns := args
			if len(patterns) == 0 {
				patterns = a.config.Check.Include
			}
			if !cmd.Flags().Changed("jobs") {
				jobs = a.config.Check.Jobs
			}

			paths, err := kiro.ExpandPaths(patterns)
			if err != nil {
				return err
			}
			slog.DebugContext(ctx, "checking files", "count", len(paths), "jobs", jobs)

			results, err := kiro.CheckFiles(ctx, a.Grammar(), paths, jobs)
			if err != nil {
				return err
			}

			failed := printResults(styledWriter(ioctx.StdoutFromContext(ctx)), results)
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed the syntax check", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "Number of files to check concurrently (default GOMAXPROCS)")

	return cmd
}

// printResults reports every problem and a summary line, returning the
// number of files that failed.
func printResults(w io.Writer, results []kiro.FileResult) int {
	var failed, problems int
	for _, r := range results {
		if r.OK() {
			continue
		}
		failed++

		if r.Err != nil {
			problems++
			fmt.Fprintf(w, "%s: %s\n", pathStyle.Render(r.Path), errorStyle.Render(r.Err.Error()))
			continue
		}

		for _, se := range r.Errors {
			problems++
			fmt.Fprintf(w, "%s%s %s\n",
				pathStyle.Render(r.Path),
				positionStyle.Render(fmt.Sprintf(":%d:%d:", se.Line+1, se.Column+1)),
				errorStyle.Render(se.Message))
		}
	}

	if failed == 0 {
		fmt.Fprintln(w, okStyle.Render(fmt.Sprintf("%s OK", plural(len(results), "file"))))
	} else {
		fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("%s in %s",
			plural(problems, "problem"), plural(failed, "file"))))
	}
	return failed
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
