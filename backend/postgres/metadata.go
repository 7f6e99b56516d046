package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mwantia/treefs/backend"
	"github.com/mwantia/treefs/data"
)

func (pb *PostgresBackend) CreateFileSystem(ctx context.Context, fs *data.FileSystem) error {
	if fs.CreateTime.IsZero() {
		fs.CreateTime = time.Now()
	}
	if fs.ModifyTime.IsZero() {
		fs.ModifyTime = fs.CreateTime
	}

	_, err := pb.pool.Exec(ctx, `
		INSERT INTO treefs_filesystems (id, name, tenant_id, tenant_key, create_time, modify_time)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, fs.ID.String(), fs.Name, fs.TenantID, data.TenantString(fs.TenantID),
		fs.CreateTime.UnixNano(), fs.ModifyTime.UnixNano())

	if isUniqueViolation(err) {
		return data.ErrExist
	}
	if err != nil {
		return fmt.Errorf("failed to insert filesystem: %w", err)
	}
	return nil
}

func (pb *PostgresBackend) ReadFileSystem(ctx context.Context, id uuid.UUID) (*data.FileSystem, error) {
	row := pb.pool.QueryRow(ctx, `SELECT `+fileSystemColumns+` FROM treefs_filesystems WHERE id = $1`, id.String())

	fs, err := scanFileSystem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, data.ErrNotExist
	}
	return fs, err
}

func (pb *PostgresBackend) UpdateFileSystem(ctx context.Context, fs *data.FileSystem) error {
	fs.ModifyTime = time.Now()

	tag, err := pb.pool.Exec(ctx, `
		UPDATE treefs_filesystems SET name = $1, tenant_id = $2, tenant_key = $3, modify_time = $4
		WHERE id = $5
	`, fs.Name, fs.TenantID, data.TenantString(fs.TenantID), fs.ModifyTime.UnixNano(), fs.ID.String())
	if err != nil {
		return fmt.Errorf("failed to update filesystem: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return data.ErrNotExist
	}

	return nil
}

func (pb *PostgresBackend) DeleteFileSystem(ctx context.Context, id uuid.UUID) error {
	tag, err := pb.pool.Exec(ctx, `DELETE FROM treefs_filesystems WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete filesystem: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return data.ErrNotExist
	}

	return nil
}

func (pb *PostgresBackend) QueryFileSystems(ctx context.Context, query *backend.FileSystemQuery) ([]*data.FileSystem, error) {
	where := &whereBuilder{}
	if !query.All {
		where.add("tenant_key = ?", data.TenantString(query.TenantID))
	}
	if query.NameContains != "" {
		where.add("strpos(name, ?) > 0", query.NameContains)
	}

	rows, err := pb.pool.Query(ctx, `SELECT `+fileSystemColumns+` FROM treefs_filesystems `+where.String(), where.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query filesystems: %w", err)
	}
	defer rows.Close()

	result := make([]*data.FileSystem, 0)
	for rows.Next() {
		fs, err := scanFileSystem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, fs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	backend.SortFileSystems(result)
	return result, nil
}

func (pb *PostgresBackend) ReadItemByPath(ctx context.Context, path *data.Path) (*data.Item, error) {
	row := pb.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM treefs_items
		WHERE filesystem_id = $1 AND virtual_path = $2 AND tenant_key = $3`,
		path.FileSystemID.String(), path.VirtualPath, data.TenantString(path.TenantID))

	item, err := scanItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, data.ErrNotExist
	}
	return item, err
}

func (pb *PostgresBackend) ReadItem(ctx context.Context, id uuid.UUID) (*data.Item, error) {
	row := pb.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM treefs_items WHERE id = $1`, id.String())

	item, err := scanItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, data.ErrNotExist
	}
	return item, err
}

func (pb *PostgresBackend) ReadItems(ctx context.Context, ids []uuid.UUID) ([]*data.Item, error) {
	if len(ids) == 0 {
		return []*data.Item{}, nil
	}

	values := make([]string, len(ids))
	for i, id := range ids {
		values[i] = id.String()
	}

	where := &whereBuilder{}
	where.add("id = ANY(?)", values)

	return pb.queryItems(ctx, where)
}

func (pb *PostgresBackend) ResolveIDs(ctx context.Context, virtualPaths []string, tenantID *int64) ([]uuid.UUID, error) {
	if len(virtualPaths) == 0 {
		return []uuid.UUID{}, nil
	}

	rows, err := pb.pool.Query(ctx, `SELECT id FROM treefs_items WHERE tenant_key = $1 AND virtual_path = ANY($2)`,
		data.TenantString(tenantID), virtualPaths)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve ids: %w", err)
	}
	defer rows.Close()

	result := make([]uuid.UUID, 0, len(virtualPaths))
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		result = append(result, id)
	}

	return result, rows.Err()
}

func (pb *PostgresBackend) ListChildren(ctx context.Context, parentID uuid.UUID) ([]*data.Item, error) {
	where := &whereBuilder{}
	where.add("parent_id = ?", parentID.String())

	return pb.queryItems(ctx, where)
}

func (pb *PostgresBackend) ListDescendants(ctx context.Context, item *data.Item) ([]*data.Item, error) {
	where := &whereBuilder{}
	where.add("tenant_key = ?", data.TenantString(item.TenantID))
	where.add("starts_with(virtual_path, ?)", item.VirtualPath+"/")

	return pb.queryItems(ctx, where)
}

func (pb *PostgresBackend) ListRootChildren(ctx context.Context, fsID uuid.UUID) ([]*data.Item, error) {
	where := &whereBuilder{}
	where.add("filesystem_id = ?", fsID.String())
	where.add("parent_id IS NULL")

	return pb.queryItems(ctx, where)
}

func (pb *PostgresBackend) ListFileSystemItems(ctx context.Context, fsID uuid.UUID) ([]*data.Item, error) {
	where := &whereBuilder{}
	where.add("filesystem_id = ?", fsID.String())

	return pb.queryItems(ctx, where)
}

func (pb *PostgresBackend) QueryItems(ctx context.Context, query *backend.ItemQuery) ([]*data.Item, error) {
	where := &whereBuilder{}
	where.add("tenant_key = ?", data.TenantString(query.TenantID))

	if query.FileSystemID != nil {
		where.add("filesystem_id = ?", query.FileSystemID.String())
	}
	if query.NameContains != "" {
		where.add("strpos(name, ?) > 0", query.NameContains)
	}
	if query.PathPrefix != "" {
		where.add("starts_with(virtual_path, ?)", query.PathPrefix)
	}
	if query.FilterType != nil {
		where.add("type = ?", int(*query.FilterType))
	}

	items, err := pb.queryItems(ctx, where)
	if err != nil {
		return nil, err
	}

	if query.ContentType != "" {
		filtered := make([]*data.Item, 0, len(items))
		for _, item := range items {
			if data.MatchContentType(item.ContentType, query.ContentType) {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}

	return backend.ApplyQuery(items, query), nil
}

func (pb *PostgresBackend) CreateItem(ctx context.Context, item *data.Item) error {
	if item.CreateTime.IsZero() {
		item.CreateTime = time.Now()
	}
	if item.ModifyTime.IsZero() {
		item.ModifyTime = item.CreateTime
	}

	meta, err := data.MarshalMeta(item.MetaProperties)
	if err != nil {
		return fmt.Errorf("failed to marshal meta properties: %w", err)
	}

	_, err = pb.pool.Exec(ctx, `
		INSERT INTO treefs_items (id, filesystem_id, parent_id, name, virtual_path, tenant_id, tenant_key, type,
			size_in_bytes, content_type, external_url, storage_key, meta_properties, create_time, modify_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, item.ID.String(), item.FileSystemID.String(), nullID(item.ParentID), item.Name, item.VirtualPath,
		item.TenantID, data.TenantString(item.TenantID), int(item.Type),
		item.SizeInBytes, nullString(item.ContentType), nullString(item.ExternalURL),
		nullString(item.StorageKey), nullString(string(meta)),
		item.CreateTime.UnixNano(), item.ModifyTime.UnixNano())

	if isUniqueViolation(err) {
		return data.ErrExist
	}
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}
	return nil
}

func (pb *PostgresBackend) UpdateItem(ctx context.Context, item *data.Item) error {
	item.ModifyTime = time.Now()

	meta, err := data.MarshalMeta(item.MetaProperties)
	if err != nil {
		return fmt.Errorf("failed to marshal meta properties: %w", err)
	}

	tag, err := pb.pool.Exec(ctx, `
		UPDATE treefs_items
		SET filesystem_id = $1, parent_id = $2, name = $3, virtual_path = $4, tenant_id = $5, tenant_key = $6,
			type = $7, size_in_bytes = $8, content_type = $9, external_url = $10, storage_key = $11,
			meta_properties = $12, modify_time = $13
		WHERE id = $14
	`, item.FileSystemID.String(), nullID(item.ParentID), item.Name, item.VirtualPath,
		item.TenantID, data.TenantString(item.TenantID), int(item.Type),
		item.SizeInBytes, nullString(item.ContentType), nullString(item.ExternalURL),
		nullString(item.StorageKey), nullString(string(meta)), item.ModifyTime.UnixNano(), item.ID.String())

	if isUniqueViolation(err) {
		return data.ErrExist
	}
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return data.ErrNotExist
	}

	return nil
}

func (pb *PostgresBackend) DeleteItem(ctx context.Context, item *data.Item) error {
	tag, err := pb.pool.Exec(ctx, `DELETE FROM treefs_items WHERE id = $1`, item.ID.String())
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return data.ErrNotExist
	}

	return nil
}

func (pb *PostgresBackend) SumSize(ctx context.Context, fsID uuid.UUID, prefix string) (int64, error) {
	where := &whereBuilder{}
	where.add("filesystem_id = ?", fsID.String())
	if prefix != "" {
		where.add("(virtual_path = ? OR starts_with(virtual_path, ?))", prefix, prefix+"/")
	}

	var total int64
	err := pb.pool.QueryRow(ctx, `SELECT COALESCE(SUM(size_in_bytes), 0)::BIGINT FROM treefs_items `+where.String(), where.args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum sizes: %w", err)
	}

	return total, nil
}

func (pb *PostgresBackend) queryItems(ctx context.Context, where *whereBuilder) ([]*data.Item, error) {
	rows, err := pb.pool.Query(ctx, `SELECT `+itemColumns+` FROM treefs_items `+where.String()+` ORDER BY virtual_path`, where.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	result := make([]*data.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}

	return result, rows.Err()
}
