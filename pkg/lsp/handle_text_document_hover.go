package lsp

import (
	"context"
	"log/slog"

	"github.com/creachadair/jrpc2"
)

func (h *Handler) handleTextDocumentHover(ctx context.Context, req *jrpc2.Request) (any, error) {
	if !req.HasParams() {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "missing parameters")
	}

	var params HoverParams
	if err := req.UnmarshalParams(&params); err != nil {
		return nil, err
	}

	f, err := h.file(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	text := f.Text
	h.mu.Unlock()

	pos := params.Position
	column := utf16ToByte(lineAt(text, pos.Line), pos.Character)

	kinds, err := h.analyzer.KindsAt(ctx, []byte(text), uint(pos.Line), uint(column))
	if err != nil {
		slog.WarnContext(ctx, "hover failed", "uri", params.TextDocument.URI, "error", err)
		return nil, nil
	}
	if len(kinds) == 0 {
		return nil, nil
	}

	return &Hover{
		Contents: MarkupContent{
			Kind:  "markdown",
			Value: describeKinds(kinds),
		},
	}, nil
}
