package memory

import (
	"bytes"
	"context"
	"io"

	"github.com/mwantia/treefs/data"
)

func (mb *MemoryBackend) ensureBucket(ctx context.Context, bucket string) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	if _, exists := mb.objects[bucket]; !exists {
		mb.objects[bucket] = make(map[string]*memoryObject)
	}
	return nil
}

func (mb *MemoryBackend) PutObject(ctx context.Context, tenantID *int64, key, contentType string, r io.Reader, size int64, overwrite bool) error {
	bucket, err := mb.buckets.Bucket(ctx, tenantID)
	if err != nil {
		return err
	}

	buffer, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	mb.mu.Lock()
	defer mb.mu.Unlock()

	objects, exists := mb.objects[bucket]
	if !exists {
		objects = make(map[string]*memoryObject)
		mb.objects[bucket] = objects
	}

	if _, exists := objects[key]; exists && !overwrite {
		return nil
	}

	objects[key] = &memoryObject{
		contentType: contentType,
		data:        buffer,
	}
	return nil
}

func (mb *MemoryBackend) GetObject(ctx context.Context, tenantID *int64, key string) (io.ReadCloser, error) {
	bucket, err := mb.buckets.Bucket(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	mb.mu.RLock()
	defer mb.mu.RUnlock()

	object, exists := mb.objects[bucket][key]
	if !exists {
		return nil, data.ErrNotExist
	}

	return io.NopCloser(bytes.NewReader(object.data)), nil
}

func (mb *MemoryBackend) DeleteObject(ctx context.Context, tenantID *int64, key string) error {
	bucket, err := mb.buckets.Bucket(ctx, tenantID)
	if err != nil {
		return err
	}

	mb.mu.Lock()
	defer mb.mu.Unlock()

	delete(mb.objects[bucket], key)
	return nil
}

func (mb *MemoryBackend) ExistsObject(ctx context.Context, tenantID *int64, key string) (bool, error) {
	bucket, err := mb.buckets.Bucket(ctx, tenantID)
	if err != nil {
		return false, err
	}

	mb.mu.RLock()
	defer mb.mu.RUnlock()

	_, exists := mb.objects[bucket][key]
	return exists, nil
}
