package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"time"

	"github.com/mwantia/treefs/data"
)

func (sb *SQLiteBackend) ensureBucket(ctx context.Context, bucket string) error {
	_, err := sb.db.ExecContext(ctx, `
		INSERT INTO treefs_buckets (name, create_time) VALUES (?, ?)
		ON CONFLICT (name) DO NOTHING
	`, bucket, time.Now().UnixNano())

	return err
}

func (sb *SQLiteBackend) PutObject(ctx context.Context, tenantID *int64, key, contentType string, r io.Reader, size int64, overwrite bool) error {
	bucket, err := sb.buckets.Bucket(ctx, tenantID)
	if err != nil {
		return err
	}

	buffer, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	stmt := `
		INSERT INTO treefs_objects (bucket, key, content_type, content, size, modify_time)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	if overwrite {
		stmt += ` ON CONFLICT (bucket, key) DO UPDATE SET
			content_type = excluded.content_type,
			content = excluded.content,
			size = excluded.size,
			modify_time = excluded.modify_time`
	} else {
		stmt += ` ON CONFLICT (bucket, key) DO NOTHING`
	}

	_, err = sb.db.ExecContext(ctx, stmt, bucket, key, nullString(contentType), buffer, int64(len(buffer)), time.Now().UnixNano())
	return err
}

func (sb *SQLiteBackend) GetObject(ctx context.Context, tenantID *int64, key string) (io.ReadCloser, error) {
	bucket, err := sb.buckets.Bucket(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	var content []byte
	err = sb.db.QueryRowContext(ctx, "SELECT content FROM treefs_objects WHERE bucket = ? AND key = ?", bucket, key).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, data.ErrNotExist
	}
	if err != nil {
		return nil, err
	}

	return io.NopCloser(bytes.NewReader(content)), nil
}

func (sb *SQLiteBackend) DeleteObject(ctx context.Context, tenantID *int64, key string) error {
	bucket, err := sb.buckets.Bucket(ctx, tenantID)
	if err != nil {
		return err
	}

	_, err = sb.db.ExecContext(ctx, "DELETE FROM treefs_objects WHERE bucket = ? AND key = ?", bucket, key)
	return err
}

func (sb *SQLiteBackend) ExistsObject(ctx context.Context, tenantID *int64, key string) (bool, error) {
	bucket, err := sb.buckets.Bucket(ctx, tenantID)
	if err != nil {
		return false, err
	}

	var count int
	if err := sb.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM treefs_objects WHERE bucket = ? AND key = ?", bucket, key).Scan(&count); err != nil {
		return false, err
	}

	return count > 0, nil
}
