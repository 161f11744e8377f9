// Package ioctx carries a command's standard streams through a context.
package ioctx

import (
	"context"
	"io"
	"strings"
)

type streamKey int

const (
	stdinKey streamKey = iota
	stdoutKey
	stderrKey
)

func StdinToContext(ctx context.Context, r io.Reader) context.Context {
	return context.WithValue(ctx, stdinKey, r)
}

// StdinFromContext returns the context's stdin, or an empty reader.
func StdinFromContext(ctx context.Context) io.Reader {
	if r, ok := ctx.Value(stdinKey).(io.Reader); ok {
		return r
	}
	return strings.NewReader("")
}

func StdoutToContext(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, stdoutKey, w)
}

// StdoutFromContext returns the context's stdout, or io.Discard.
func StdoutFromContext(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(stdoutKey).(io.Writer); ok {
		return w
	}
	return io.Discard
}

func StderrToContext(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, stderrKey, w)
}

// StderrFromContext returns the context's stderr, or io.Discard.
func StderrFromContext(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(stderrKey).(io.Writer); ok {
		return w
	}
	return io.Discard
}
