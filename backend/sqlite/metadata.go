package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mwantia/treefs/backend"
	"github.com/mwantia/treefs/data"
)

func (sb *SQLiteBackend) CreateFileSystem(ctx context.Context, fs *data.FileSystem) error {
	if fs.CreateTime.IsZero() {
		fs.CreateTime = time.Now()
	}
	if fs.ModifyTime.IsZero() {
		fs.ModifyTime = fs.CreateTime
	}

	_, err := sb.db.ExecContext(ctx, `
		INSERT INTO treefs_filesystems (id, name, tenant_id, tenant_key, create_time, modify_time)
		VALUES (?, ?, ?, ?, ?, ?)
	`, fs.ID.String(), fs.Name, nullTenant(fs.TenantID), data.TenantString(fs.TenantID),
		fs.CreateTime.UnixNano(), fs.ModifyTime.UnixNano())

	if isUniqueViolation(err) {
		return data.ErrExist
	}
	return err
}

func (sb *SQLiteBackend) ReadFileSystem(ctx context.Context, id uuid.UUID) (*data.FileSystem, error) {
	row := sb.db.QueryRowContext(ctx, `
		SELECT id, name, tenant_id, create_time, modify_time
		FROM treefs_filesystems WHERE id = ?
	`, id.String())

	fs, err := scanFileSystem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, data.ErrNotExist
	}
	return fs, err
}

func (sb *SQLiteBackend) UpdateFileSystem(ctx context.Context, fs *data.FileSystem) error {
	fs.ModifyTime = time.Now()

	result, err := sb.db.ExecContext(ctx, `
		UPDATE treefs_filesystems SET name = ?, tenant_id = ?, tenant_key = ?, modify_time = ?
		WHERE id = ?
	`, fs.Name, nullTenant(fs.TenantID), data.TenantString(fs.TenantID), fs.ModifyTime.UnixNano(), fs.ID.String())
	if err != nil {
		return err
	}

	return requireAffected(result)
}

func (sb *SQLiteBackend) DeleteFileSystem(ctx context.Context, id uuid.UUID) error {
	result, err := sb.db.ExecContext(ctx, "DELETE FROM treefs_filesystems WHERE id = ?", id.String())
	if err != nil {
		return err
	}

	return requireAffected(result)
}

func (sb *SQLiteBackend) QueryFileSystems(ctx context.Context, query *backend.FileSystemQuery) ([]*data.FileSystem, error) {
	clauses := make([]string, 0)
	args := make([]any, 0)

	if !query.All {
		clauses = append(clauses, "tenant_key = ?")
		args = append(args, data.TenantString(query.TenantID))
	}
	if query.NameContains != "" {
		clauses = append(clauses, "instr(name, ?) > 0")
		args = append(args, query.NameContains)
	}

	stmt := "SELECT id, name, tenant_id, create_time, modify_time FROM treefs_filesystems"
	if len(clauses) > 0 {
		stmt += " WHERE " + strings.Join(clauses, " AND ")
	}

	rows, err := sb.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
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

func (sb *SQLiteBackend) ReadItemByPath(ctx context.Context, path *data.Path) (*data.Item, error) {
	row := sb.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM treefs_items
		WHERE filesystem_id = ? AND virtual_path = ? AND tenant_key = ?`,
		path.FileSystemID.String(), path.VirtualPath, data.TenantString(path.TenantID))

	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, data.ErrNotExist
	}
	return item, err
}

func (sb *SQLiteBackend) ReadItem(ctx context.Context, id uuid.UUID) (*data.Item, error) {
	row := sb.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM treefs_items WHERE id = ?`, id.String())

	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, data.ErrNotExist
	}
	return item, err
}

func (sb *SQLiteBackend) ReadItems(ctx context.Context, ids []uuid.UUID) ([]*data.Item, error) {
	if len(ids) == 0 {
		return []*data.Item{}, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id.String()
	}

	return sb.queryItems(ctx, `WHERE id IN (`+placeholders(len(ids))+`)`, args...)
}

func (sb *SQLiteBackend) ResolveIDs(ctx context.Context, virtualPaths []string, tenantID *int64) ([]uuid.UUID, error) {
	if len(virtualPaths) == 0 {
		return []uuid.UUID{}, nil
	}

	args := make([]any, 0, len(virtualPaths)+1)
	args = append(args, data.TenantString(tenantID))
	for _, virtualPath := range virtualPaths {
		args = append(args, virtualPath)
	}

	rows, err := sb.db.QueryContext(ctx, `SELECT id FROM treefs_items
		WHERE tenant_key = ? AND virtual_path IN (`+placeholders(len(virtualPaths))+`)`, args...)
	if err != nil {
		return nil, err
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

func (sb *SQLiteBackend) ListChildren(ctx context.Context, parentID uuid.UUID) ([]*data.Item, error) {
	return sb.queryItems(ctx, `WHERE parent_id = ?`, parentID.String())
}

func (sb *SQLiteBackend) ListDescendants(ctx context.Context, item *data.Item) ([]*data.Item, error) {
	clause, args := prefixClause("virtual_path", item.VirtualPath+"/")
	args = append([]any{data.TenantString(item.TenantID)}, args...)

	return sb.queryItems(ctx, `WHERE tenant_key = ? AND `+clause, args...)
}

func (sb *SQLiteBackend) ListRootChildren(ctx context.Context, fsID uuid.UUID) ([]*data.Item, error) {
	return sb.queryItems(ctx, `WHERE filesystem_id = ? AND parent_id IS NULL`, fsID.String())
}

func (sb *SQLiteBackend) ListFileSystemItems(ctx context.Context, fsID uuid.UUID) ([]*data.Item, error) {
	return sb.queryItems(ctx, `WHERE filesystem_id = ?`, fsID.String())
}

func (sb *SQLiteBackend) QueryItems(ctx context.Context, query *backend.ItemQuery) ([]*data.Item, error) {
	clauses := []string{"tenant_key = ?"}
	args := []any{data.TenantString(query.TenantID)}

	if query.FileSystemID != nil {
		clauses = append(clauses, "filesystem_id = ?")
		args = append(args, query.FileSystemID.String())
	}
	if query.NameContains != "" {
		clauses = append(clauses, "instr(name, ?) > 0")
		args = append(args, query.NameContains)
	}
	if query.PathPrefix != "" {
		clause, prefixArgs := prefixClause("virtual_path", query.PathPrefix)
		clauses = append(clauses, clause)
		args = append(args, prefixArgs...)
	}
	if query.FilterType != nil {
		clauses = append(clauses, "type = ?")
		args = append(args, int(*query.FilterType))
	}

	items, err := sb.queryItems(ctx, "WHERE "+strings.Join(clauses, " AND "), args...)
	if err != nil {
		return nil, err
	}

	// Content type wildcards are evaluated outside of SQL
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

func (sb *SQLiteBackend) CreateItem(ctx context.Context, item *data.Item) error {
	if item.CreateTime.IsZero() {
		item.CreateTime = time.Now()
	}
	if item.ModifyTime.IsZero() {
		item.ModifyTime = item.CreateTime
	}

	meta, err := data.MarshalMeta(item.MetaProperties)
	if err != nil {
		return err
	}

	_, err = sb.db.ExecContext(ctx, `
		INSERT INTO treefs_items (id, filesystem_id, parent_id, name, virtual_path, tenant_id, tenant_key, type,
			size_in_bytes, content_type, external_url, storage_key, meta_properties, create_time, modify_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.ID.String(), item.FileSystemID.String(), nullID(item.ParentID), item.Name, item.VirtualPath,
		nullTenant(item.TenantID), data.TenantString(item.TenantID), int(item.Type),
		nullSize(item.SizeInBytes), nullString(item.ContentType), nullString(item.ExternalURL),
		nullString(item.StorageKey), nullString(string(meta)),
		item.CreateTime.UnixNano(), item.ModifyTime.UnixNano())

	if isUniqueViolation(err) {
		return data.ErrExist
	}
	return err
}

func (sb *SQLiteBackend) UpdateItem(ctx context.Context, item *data.Item) error {
	item.ModifyTime = time.Now()

	meta, err := data.MarshalMeta(item.MetaProperties)
	if err != nil {
		return err
	}

	result, err := sb.db.ExecContext(ctx, `
		UPDATE treefs_items
		SET filesystem_id = ?, parent_id = ?, name = ?, virtual_path = ?, tenant_id = ?, tenant_key = ?, type = ?,
			size_in_bytes = ?, content_type = ?, external_url = ?, storage_key = ?, meta_properties = ?, modify_time = ?
		WHERE id = ?
	`, item.FileSystemID.String(), nullID(item.ParentID), item.Name, item.VirtualPath,
		nullTenant(item.TenantID), data.TenantString(item.TenantID), int(item.Type),
		nullSize(item.SizeInBytes), nullString(item.ContentType), nullString(item.ExternalURL),
		nullString(item.StorageKey), nullString(string(meta)), item.ModifyTime.UnixNano(), item.ID.String())
	if isUniqueViolation(err) {
		return data.ErrExist
	}
	if err != nil {
		return err
	}

	return requireAffected(result)
}

func (sb *SQLiteBackend) DeleteItem(ctx context.Context, item *data.Item) error {
	result, err := sb.db.ExecContext(ctx, "DELETE FROM treefs_items WHERE id = ?", item.ID.String())
	if err != nil {
		return err
	}

	return requireAffected(result)
}

func (sb *SQLiteBackend) SumSize(ctx context.Context, fsID uuid.UUID, prefix string) (int64, error) {
	stmt := "SELECT COALESCE(SUM(size_in_bytes), 0) FROM treefs_items WHERE filesystem_id = ?"
	args := []any{fsID.String()}

	if prefix != "" {
		clause, prefixArgs := prefixClause("virtual_path", prefix+"/")
		stmt += " AND (virtual_path = ? OR " + clause + ")"
		args = append(args, prefix)
		args = append(args, prefixArgs...)
	}

	var total int64
	if err := sb.db.QueryRowContext(ctx, stmt, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (sb *SQLiteBackend) queryItems(ctx context.Context, where string, args ...any) ([]*data.Item, error) {
	rows, err := sb.db.QueryContext(ctx, `SELECT `+itemColumns+` FROM treefs_items `+where+` ORDER BY virtual_path`, args...)
	if err != nil {
		return nil, err
	}

	return scanItems(rows)
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return data.ErrNotExist
	}
	return nil
}
