package treefs

import (
	"context"
	"fmt"
	"io"
	"os"
)

// staged is a temporary copy of streamed content, owned by a single call.
type staged struct {
	path string
	size int64
}

// stage copies r into a new staging file. The returned cleanup removes the
// file and is safe to call even when stage failed.
func (t *TreeFS) stage(ctx context.Context, r io.Reader, pattern string) (*staged, func(), error) {
	f, err := os.CreateTemp(t.stagingDir, pattern)
	if err != nil {
		return nil, func() {}, fmt.Errorf("failed to create staging file: %w", err)
	}

	cleanup := func() {
		if err := os.Remove(f.Name()); err != nil && !os.IsNotExist(err) {
			t.log.Warn("Failed to remove staging file '%s': %v", f.Name(), err)
		}
	}

	size, err := io.Copy(f, &contextReader{ctx: ctx, r: r})
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, cleanup, fmt.Errorf("failed to stage content: %w", err)
	}

	return &staged{path: f.Name(), size: size}, cleanup, nil
}

func (s *staged) open() (*os.File, error) {
	return os.Open(s.path)
}

// contextReader stops a copy once its context is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
