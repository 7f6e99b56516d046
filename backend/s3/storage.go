package s3

import (
	"context"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/mwantia/treefs/data"
)

func (sb *S3Backend) PutObject(ctx context.Context, tenantID *int64, key, contentType string, r io.Reader, size int64, overwrite bool) error {
	bucket, err := sb.buckets.Bucket(ctx, tenantID)
	if err != nil {
		return err
	}

	if !overwrite {
		exists, err := sb.exists(ctx, bucket, key)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
	}

	if contentType == "" {
		contentType = data.ContentTypeApplicationStream
	}

	_, err = sb.client.PutObject(ctx, bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (sb *S3Backend) GetObject(ctx context.Context, tenantID *int64, key string) (io.ReadCloser, error) {
	bucket, err := sb.buckets.Bucket(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	object, err := sb.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, translateError(err)
	}

	// GetObject is lazy, a stat surfaces missing keys before the first read
	if _, err := object.Stat(); err != nil {
		object.Close()
		return nil, translateError(err)
	}

	return object, nil
}

func (sb *S3Backend) DeleteObject(ctx context.Context, tenantID *int64, key string) error {
	bucket, err := sb.buckets.Bucket(ctx, tenantID)
	if err != nil {
		return err
	}

	return sb.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{})
}

func (sb *S3Backend) ExistsObject(ctx context.Context, tenantID *int64, key string) (bool, error) {
	bucket, err := sb.buckets.Bucket(ctx, tenantID)
	if err != nil {
		return false, err
	}

	return sb.exists(ctx, bucket, key)
}

func (sb *S3Backend) exists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := sb.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}

	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return false, nil
	}
	return false, err
}

func translateError(err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return data.ErrNotExist
	}
	return err
}
