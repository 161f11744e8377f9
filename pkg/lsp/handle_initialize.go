package lsp

import (
	"context"
	"log/slog"

	"github.com/creachadair/jrpc2"
)

func (h *Handler) handleInitialize(ctx context.Context, req *jrpc2.Request) (any, error) {
	if !req.HasParams() {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "missing parameters")
	}

	var params InitializeParams
	if err := req.UnmarshalParams(&params); err != nil {
		return nil, err
	}

	root := cleanRoot(params.RootURI)
	h.mu.Lock()
	h.rootPath = root
	h.mu.Unlock()

	if params.ClientInfo != nil {
		slog.InfoContext(ctx, "initialize", "client", params.ClientInfo.Name, "root", root)
	}

	return h.initializeResult(), nil
}

func (h *Handler) initializeResult() InitializeResult {
	return InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync: TDSKFull,
			HoverProvider:    true,
		},
		ServerInfo: &ServerInfo{
			Name:    "kiro-ts",
			Version: h.version,
		},
	}
}
