package local

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mwantia/treefs/data"
)

func (lb *LocalBackend) PutObject(ctx context.Context, tenantID *int64, key, contentType string, r io.Reader, size int64, overwrite bool) error {
	bucket, err := lb.buckets.Bucket(ctx, tenantID)
	if err != nil {
		return err
	}

	fullPath, err := lb.resolvePath(bucket, key)
	if err != nil {
		return err
	}

	lb.mu.Lock()
	defer lb.mu.Unlock()

	if !overwrite {
		if _, err := os.Stat(fullPath); err == nil {
			return nil
		}
	}

	// Write next to the target and rename, readers never observe partial content
	temp, err := os.CreateTemp(filepath.Dir(fullPath), ".put-*")
	if err != nil {
		return err
	}
	defer os.Remove(temp.Name())

	if _, err := io.Copy(temp, r); err != nil {
		temp.Close()
		return err
	}
	if err := temp.Close(); err != nil {
		return err
	}

	return os.Rename(temp.Name(), fullPath)
}

func (lb *LocalBackend) GetObject(ctx context.Context, tenantID *int64, key string) (io.ReadCloser, error) {
	bucket, err := lb.buckets.Bucket(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	fullPath, err := lb.resolvePath(bucket, key)
	if err != nil {
		return nil, err
	}

	lb.mu.RLock()
	defer lb.mu.RUnlock()

	file, err := os.Open(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, data.ErrNotExist
		}
		return nil, err
	}

	return file, nil
}

func (lb *LocalBackend) DeleteObject(ctx context.Context, tenantID *int64, key string) error {
	bucket, err := lb.buckets.Bucket(ctx, tenantID)
	if err != nil {
		return err
	}

	fullPath, err := lb.resolvePath(bucket, key)
	if err != nil {
		return err
	}

	lb.mu.Lock()
	defer lb.mu.Unlock()

	if err := os.Remove(fullPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (lb *LocalBackend) ExistsObject(ctx context.Context, tenantID *int64, key string) (bool, error) {
	bucket, err := lb.buckets.Bucket(ctx, tenantID)
	if err != nil {
		return false, err
	}

	fullPath, err := lb.resolvePath(bucket, key)
	if err != nil {
		return false, err
	}

	lb.mu.RLock()
	defer lb.mu.RUnlock()

	_, err = os.Stat(fullPath)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}
