// Copyright (c) 2025 BVK Chaitanya

package cli

import (
	"context"
	"io"
	"os"
)

type stdoutKey struct{}

// WithStdout returns a context that redirects command output written through
// the Stdout function to the given writer.
func WithStdout(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, stdoutKey{}, w)
}

// Stdout returns the output writer for the current command invocation.
// Commands should prefer this over os.Stdout, so that their output can be
// captured when they are invoked outside a terminal (eg: from a chat bot).
func Stdout(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(stdoutKey{}).(io.Writer); ok {
		return w
	}
	return os.Stdout
}
