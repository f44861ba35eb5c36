package fsx

import (
	"context"
	"io"
)

// FileSystem abstracts read access to static assets.
//
// Open returns a fresh stream on every call; callers that need to send the
// same asset to many destinations must call Open once per destination, since
// the returned stream is consumed by a single read.
type FileSystem interface {
	Exists(ctx context.Context, path string) (bool, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}
