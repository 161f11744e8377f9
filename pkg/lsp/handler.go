// Package lsp implements a Language Server Protocol server for Kiro that
// reports syntax errors and describes the syntax node under the cursor.
package lsp

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/creachadair/jrpc2"

	"github.com/kiro-lang/tree-sitter-kiro/pkg/kiro"
)

// Analyzer inspects Kiro source. *kiro.Grammar implements it.
type Analyzer interface {
	Check(ctx context.Context, source []byte) ([]kiro.SyntaxError, error)
	KindsAt(ctx context.Context, source []byte, row, column uint) ([]string, error)
}

// Handler serves LSP requests. It implements jrpc2.Assigner.
type Handler struct {
	analyzer Analyzer
	version  string

	mu       sync.Mutex
	files    map[DocumentURI]*File
	server   *jrpc2.Server
	rootPath string
	shutdown bool
	exitErr  error
}

// File is an open text document.
type File struct {
	LanguageID  string
	Text        string
	Version     int
	Diagnostics []Diagnostic
}

// NewHandler returns a handler that analyzes documents with analyzer.
func NewHandler(analyzer Analyzer, version string) *Handler {
	return &Handler{
		analyzer: analyzer,
		version:  version,
		files:    make(map[DocumentURI]*File),
	}
}

// SetServer gives the handler the server it pushes notifications through.
func (h *Handler) SetServer(srv *jrpc2.Server) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.server = srv
}

// Assign implements jrpc2.Assigner.
func (h *Handler) Assign(ctx context.Context, method string) jrpc2.Handler {
	slog.DebugContext(ctx, "assign", "method", method)

	h.mu.Lock()
	down := h.shutdown
	h.mu.Unlock()
	if down && method != "exit" {
		return h.rejectAfterShutdown
	}

	switch method {
	case "initialize":
		return h.handleInitialize
	case "initialized":
		return h.ignore
	case "shutdown":
		return h.handleShutdown
	case "exit":
		return h.handleExit
	case "textDocument/didOpen":
		return h.handleTextDocumentDidOpen
	case "textDocument/didChange":
		return h.handleTextDocumentDidChange
	case "textDocument/didSave":
		return h.ignore
	case "textDocument/didClose":
		return h.handleTextDocumentDidClose
	case "textDocument/hover":
		return h.handleTextDocumentHover
	}
	return nil
}

func (h *Handler) ignore(context.Context, *jrpc2.Request) (any, error) {
	return nil, nil
}

func (h *Handler) rejectAfterShutdown(context.Context, *jrpc2.Request) (any, error) {
	return nil, jrpc2.Errorf(jrpc2.InvalidRequest, "server is shutting down")
}

func isWindowsDriveURI(uri string) bool {
	if len(uri) < 4 {
		return false
	}
	return uri[0] == '/' && unicode.IsLetter(rune(uri[1])) && uri[2] == ':'
}

func fromURI(uri DocumentURI) (string, error) {
	u, err := url.ParseRequestURI(string(uri))
	if err != nil {
		return "", err
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("only file URIs are supported, got %v", u.Scheme)
	}
	if isWindowsDriveURI(u.Path) {
		u.Path = u.Path[1:]
	}
	return u.Path, nil
}

func (h *Handler) file(uri DocumentURI) (*File, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	f, ok := h.files[uri]
	if !ok {
		return nil, fmt.Errorf("document not found: %v", uri)
	}
	return f, nil
}

func (h *Handler) openFile(uri DocumentURI, languageID string, version int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.files[uri] = &File{
		LanguageID: languageID,
		Version:    version,
	}
}

func (h *Handler) closeFile(uri DocumentURI) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.files, uri)
}

func (h *Handler) updateFile(ctx context.Context, uri DocumentURI, text string, version int) error {
	h.mu.Lock()
	f, ok := h.files[uri]
	if !ok {
		h.mu.Unlock()
		return fmt.Errorf("document not found: %v", uri)
	}
	if version < f.Version {
		h.mu.Unlock()
		slog.DebugContext(ctx, "ignoring stale change", "uri", uri, "version", version, "current", f.Version)
		return nil
	}
	f.Text = text
	f.Version = version
	h.mu.Unlock()

	diagnostics := h.diagnose(ctx, text)

	h.mu.Lock()
	if f.Version != version {
		// superseded while we were parsing
		h.mu.Unlock()
		return nil
	}
	f.Diagnostics = diagnostics
	h.mu.Unlock()

	h.publishDiagnostics(ctx, uri, version, diagnostics)
	return nil
}

func (h *Handler) diagnose(ctx context.Context, text string) []Diagnostic {
	errs, err := h.analyzer.Check(ctx, []byte(text))
	if err != nil {
		slog.WarnContext(ctx, "failed to check document", "error", err)
		return errorToDiagnostics(err)
	}

	diagnostics := make([]Diagnostic, 0, len(errs))
	for _, se := range errs {
		diagnostics = append(diagnostics, syntaxErrorToDiagnostic(text, se))
	}
	return diagnostics
}

func syntaxErrorToDiagnostic(text string, se kiro.SyntaxError) Diagnostic {
	line := lineAt(text, int(se.Line))
	start := int(se.Column)
	end := start + max(se.Length, 1)

	return Diagnostic{
		Range: Range{
			Start: Position{Line: int(se.Line), Character: byteToUTF16(line, start)},
			End:   Position{Line: int(se.Line), Character: byteToUTF16(line, end)},
		},
		Severity: SeverityError,
		Source:   "kiro",
		Message:  se.Message,
	}
}

// errorToDiagnostics reports a failure to analyze the document at its start.
func errorToDiagnostics(err error) []Diagnostic {
	return []Diagnostic{
		{
			Range: Range{
				Start: Position{Line: 0, Character: 0},
				End:   Position{Line: 0, Character: 1},
			},
			Severity: SeverityError,
			Source:   "kiro",
			Message:  err.Error(),
		},
	}
}

func (h *Handler) publishDiagnostics(ctx context.Context, uri DocumentURI, version int, diagnostics []Diagnostic) {
	h.mu.Lock()
	srv := h.server
	h.mu.Unlock()
	if srv == nil {
		return
	}

	if diagnostics == nil {
		diagnostics = []Diagnostic{}
	}

	err := srv.Notify(ctx, "textDocument/publishDiagnostics", &PublishDiagnosticsParams{
		URI:         uri,
		Version:     version,
		Diagnostics: diagnostics,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to publish diagnostics", "error", err)
	}
}

func describeKinds(kinds []string) string {
	var b strings.Builder
	for i, kind := range kinds {
		if i > 0 {
			b.WriteString(" < ")
		}
		b.WriteString("`" + kind + "`")
	}
	return b.String()
}

func cleanRoot(uri DocumentURI) string {
	if uri == "" {
		return ""
	}
	path, err := fromURI(uri)
	if err != nil {
		return ""
	}
	return filepath.Clean(path)
}
