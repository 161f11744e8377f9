package lsp

import (
	"context"
	"errors"

	"github.com/creachadair/jrpc2"
)

func (h *Handler) handleShutdown(ctx context.Context, req *jrpc2.Request) (any, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.shutdown = true
	clear(h.files)
	return nil, nil
}

// ErrExitWithoutShutdown is reported by Err when the client sent exit
// without a shutdown request first.
var ErrExitWithoutShutdown = errors.New("lsp: exit received before shutdown")

func (h *Handler) handleExit(ctx context.Context, req *jrpc2.Request) (any, error) {
	h.mu.Lock()
	srv := h.server
	if !h.shutdown {
		h.exitErr = ErrExitWithoutShutdown
	}
	h.mu.Unlock()

	if srv != nil {
		// Stop waits for running handlers, including this one
		go srv.Stop()
	}
	return nil, nil
}

// Err reports how the session ended: ErrExitWithoutShutdown if the client
// skipped shutdown, nil otherwise.
func (h *Handler) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.exitErr
}
