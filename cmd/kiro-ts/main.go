package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	tree_sitter_kiro "github.com/kiro-lang/tree-sitter-kiro/bindings/go"
	"github.com/kiro-lang/tree-sitter-kiro/pkg/config"
	"github.com/kiro-lang/tree-sitter-kiro/pkg/grammar"
	"github.com/kiro-lang/tree-sitter-kiro/pkg/ioctx"
	"github.com/kiro-lang/tree-sitter-kiro/pkg/kiro"
)

var (
	version = "v0.1.0"
	commit  = "dev"
)

// Flags holds the global command line flags
type Flags struct {
	Debug      bool
	ConfigFile string
	Grammar    string
}

type app struct {
	flags  Flags
	config *config.Config

	loader  *grammar.Loader
	grammar *kiro.Grammar
}

func main() {
	ctx := context.Background()
	ctx = ioctx.StdinToContext(ctx, os.Stdin)
	ctx = ioctx.StdoutToContext(ctx, os.Stdout)
	ctx = ioctx.StderrToContext(ctx, os.Stderr)
	if err := fang.Execute(ctx, newRootCmd(),
		fang.WithVersion(version),
		fang.WithCommit(commit),
		fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {
			_, _ = fmt.Fprintln(w, err.Error())
		}),
	); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "kiro-ts",
		Short: "Tree-sitter tooling for the Kiro language",
		Long: `kiro-ts loads the compiled tree-sitter grammar for Kiro and uses it to
inspect, parse and syntax-check Kiro source files.

The grammar library is located through kiro.toml, the KIRO_GRAMMAR_LIBRARY
and KIRO_GRAMMAR_PATH environment variables, or the --grammar flag.`,
		Example: `  # Show grammar metadata
  kiro-ts info

  # Syntax-check every .kiro file under src/
  kiro-ts check src

  # Print the syntax tree of a file
  kiro-ts parse main.kiro

  # Run the language server
  kiro-ts lsp --log-file /tmp/kiro-lsp.log`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context())
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&a.flags.Debug, "debug", "d", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&a.flags.ConfigFile, "config", "", "Path to kiro.toml (searched upward from the working directory if not specified)")
	rootCmd.PersistentFlags().StringVar(&a.flags.Grammar, "grammar", "", "Path to the compiled grammar library")

	rootCmd.AddCommand(
		infoCmd(a),
		parseCmd(a),
		checkCmd(a),
		pathsCmd(a),
		lspCmd(a),
		configCmd(a),
	)

	return rootCmd
}

// setup loads configuration and configures logging. Flags override the
// environment, which overrides kiro.toml.
func (a *app) setup(ctx context.Context) error {
	var err error
	if a.flags.ConfigFile != "" {
		a.config, err = config.Load(a.flags.ConfigFile)
	} else {
		cwd, cwdErr := os.Getwd()
		if cwdErr != nil {
			return cwdErr
		}
		a.config, err = config.Find(cwd)
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	a.config.ApplyEnv()
	if a.flags.Grammar != "" {
		a.config.Grammar.Library = a.flags.Grammar
	}
	if a.flags.Debug {
		a.config.Log.Level = "debug"
	}
	if err := a.config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return a.setupLogging(ioctx.StderrFromContext(ctx))
}

func (a *app) setupLogging(w io.Writer) error {
	level, err := a.config.SlogLevel()
	if err != nil {
		return err
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
	return nil
}

// Grammar returns the grammar for this invocation. A linked grammar is used
// unless a library was configured explicitly.
func (a *app) Grammar() *kiro.Grammar {
	if a.grammar != nil {
		return a.grammar
	}
	if tree_sitter_kiro.Static && a.config.Grammar.Library == "" {
		a.grammar = kiro.Default()
		return a.grammar
	}
	a.loader = a.config.Loader()
	a.grammar = kiro.FromLoader(a.loader)
	return a.grammar
}

// libraryPath describes where the grammar in use came from.
func (a *app) libraryPath() string {
	if a.loader != nil {
		return a.loader.Path()
	}
	if tree_sitter_kiro.Static {
		return "(linked)"
	}
	return ""
}
