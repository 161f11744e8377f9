package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/spf13/cobra"

	"github.com/kiro-lang/tree-sitter-kiro/pkg/ioctx"
	"github.com/kiro-lang/tree-sitter-kiro/pkg/lsp"
)

func lspCmd(a *app) *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Run the Kiro language server on stdio",
		Long: `Run a Language Server Protocol server on stdin and stdout.

The server reports syntax errors as diagnostics and shows the syntax node
path under the cursor on hover. Logs go to stderr unless --log-file is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if logFile != "" {
				f, err := os.Create(logFile)
				if err != nil {
					return fmt.Errorf("open lsp log: %w", err)
				}
				defer f.Close() //nolint:errcheck
				if err := a.setupLogging(f); err != nil {
					return err
				}
			}

			logger := slog.Default()
			logger.InfoContext(ctx, "starting LSP server", "version", version)

			handler := lsp.NewHandler(a.Grammar(), version)
			srv := jrpc2.NewServer(handler, &jrpc2.ServerOptions{
				AllowPush: true,
				// document changes must be applied in order
				Concurrency: 1,
				Logger:      func(text string) { logger.Debug(text) },
			})

			// Store server reference in handler for notifications
			handler.SetServer(srv)

			rwc := stdrwc{
				r: ioctx.StdinFromContext(ctx),
				w: ioctx.StdoutFromContext(ctx),
			}
			srv.Start(channel.LSP(rwc, rwc))

			logger.InfoContext(ctx, "LSP server closed", "error", srv.Wait())

			// exit without shutdown means exit code 1
			return handler.Err()
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "Path to LSP log file (stderr if not specified)")

	return cmd
}

// stdrwc joins the command's stdin and stdout into one stream.
type stdrwc struct {
	r io.Reader
	w io.Writer
}

func (s stdrwc) Read(p []byte) (int, error) {
	return s.r.Read(p)
}

func (s stdrwc) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

func (s stdrwc) Close() error {
	if c, ok := s.r.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return err
		}
	}
	if c, ok := s.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
