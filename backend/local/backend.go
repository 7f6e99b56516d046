package local

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mwantia/treefs/backend"
	"github.com/mwantia/treefs/data"
)

// LocalBackend stores blobs as plain files, one directory per bucket below path.
type LocalBackend struct {
	mu   sync.RWMutex
	path string

	buckets *backend.BucketProvisioner
}

func NewLocalBackend(path, bucketTemplate string) *LocalBackend {
	lb := &LocalBackend{
		path: filepath.Clean(path),
	}
	lb.buckets = backend.NewBucketProvisioner(bucketTemplate, lb.ensureBucket)

	return lb
}

// Returns the identifier name defined for this backend
func (*LocalBackend) GetName() string {
	return "local"
}

// Open is part of the lifecycle behaviour and gets called when opening this backend.
func (lb *LocalBackend) Open(ctx context.Context) error {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	info, err := os.Stat(lb.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return os.MkdirAll(lb.path, 0755)
		}
		return err
	}

	if !info.IsDir() {
		return data.ErrNotDirectory
	}

	return nil
}

// Close is part of the lifecycle behaviour and gets called when closing this backend.
func (lb *LocalBackend) Close(ctx context.Context) error {
	// The underlying filesystem persists independently
	lb.buckets.Forget()
	return nil
}

// GetCapabilities returns a list of capabilities supported by this backend.
func (lb *LocalBackend) GetCapabilities() *backend.VirtualBackendCapabilities {
	return &backend.VirtualBackendCapabilities{
		Capabilities: []backend.VirtualBackendCapability{
			backend.CapabilityObjectStorage,
			backend.CapabilityTenantBuckets,
			backend.CapabilityPersistent,
		},
	}
}

func (lb *LocalBackend) ensureBucket(ctx context.Context, bucket string) error {
	return os.MkdirAll(filepath.Join(lb.path, bucket), 0755)
}

// resolvePath maps a key into its bucket directory, refusing keys that escape it.
func (lb *LocalBackend) resolvePath(bucket, key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", data.ErrInvalidPath
	}
	return filepath.Join(lb.path, bucket, key), nil
}
