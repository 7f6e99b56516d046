package consul

import (
	"bytes"
	"context"
	"io"

	"github.com/hashicorp/consul/api"
	"github.com/mwantia/treefs/data"
)

func (cb *ConsulBackend) PutObject(ctx context.Context, tenantID *int64, key, contentType string, r io.Reader, size int64, overwrite bool) error {
	bucket, err := cb.buckets.Bucket(ctx, tenantID)
	if err != nil {
		return err
	}

	if size > MaxValueSize {
		return data.ErrTooLarge
	}

	// Read one byte past the limit to detect oversized streams of unknown size
	buffer, err := io.ReadAll(io.LimitReader(r, MaxValueSize+1))
	if err != nil {
		return err
	}
	if len(buffer) > MaxValueSize {
		return data.ErrTooLarge
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()

	pair := &api.KVPair{
		Key:   cb.buildKey(bucket, key),
		Value: buffer,
	}
	opts := (&api.WriteOptions{}).WithContext(ctx)

	if overwrite {
		_, err = cb.kv.Put(pair, opts)
		return err
	}

	// A CAS with index 0 only writes when the key does not exist yet
	_, _, err = cb.kv.CAS(pair, opts)
	return err
}

func (cb *ConsulBackend) GetObject(ctx context.Context, tenantID *int64, key string) (io.ReadCloser, error) {
	bucket, err := cb.buckets.Bucket(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	cb.mu.RLock()
	defer cb.mu.RUnlock()

	pair, _, err := cb.kv.Get(cb.buildKey(bucket, key), (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, err
	}
	if pair == nil {
		return nil, data.ErrNotExist
	}

	return io.NopCloser(bytes.NewReader(pair.Value)), nil
}

func (cb *ConsulBackend) DeleteObject(ctx context.Context, tenantID *int64, key string) error {
	bucket, err := cb.buckets.Bucket(ctx, tenantID)
	if err != nil {
		return err
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()

	_, err = cb.kv.Delete(cb.buildKey(bucket, key), (&api.WriteOptions{}).WithContext(ctx))
	return err
}

func (cb *ConsulBackend) ExistsObject(ctx context.Context, tenantID *int64, key string) (bool, error) {
	bucket, err := cb.buckets.Bucket(ctx, tenantID)
	if err != nil {
		return false, err
	}

	cb.mu.RLock()
	defer cb.mu.RUnlock()

	pair, _, err := cb.kv.Get(cb.buildKey(bucket, key), (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return false, err
	}

	return pair != nil, nil
}
