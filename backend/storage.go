package backend

import (
	"context"
	"io"
)

// VirtualObjectStorageBackend stores blobs keyed by storage key inside a tenant bucket.
// Every call names its tenant; implementations provision the bucket lazily.
type VirtualObjectStorageBackend interface {
	VirtualBackend

	// PutObject skips the write when the key exists and overwrite is false.
	PutObject(ctx context.Context, tenantID *int64, key, contentType string, r io.Reader, size int64, overwrite bool) error

	GetObject(ctx context.Context, tenantID *int64, key string) (io.ReadCloser, error)

	DeleteObject(ctx context.Context, tenantID *int64, key string) error

	ExistsObject(ctx context.Context, tenantID *int64, key string) (bool, error)
}
