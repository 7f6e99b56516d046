package sqlite

import (
	"database/sql"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/mwantia/treefs/data"
)

const itemColumns = `id, filesystem_id, parent_id, name, virtual_path, tenant_id, type,
	size_in_bytes, content_type, external_url, storage_key, meta_properties, create_time, modify_time`

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (*data.Item, error) {
	var item data.Item
	var id, fsID string
	var parentID, contentType, externalURL, storageKey, meta sql.NullString
	var tenantID, size sql.NullInt64
	var createTime, modifyTime int64

	if err := row.Scan(&id, &fsID, &parentID, &item.Name, &item.VirtualPath, &tenantID, &item.Type,
		&size, &contentType, &externalURL, &storageKey, &meta, &createTime, &modifyTime); err != nil {
		return nil, err
	}

	var err error
	if item.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if item.FileSystemID, err = uuid.Parse(fsID); err != nil {
		return nil, err
	}
	if parentID.Valid {
		parent, err := uuid.Parse(parentID.String)
		if err != nil {
			return nil, err
		}
		item.ParentID = &parent
	}
	if tenantID.Valid {
		item.TenantID = data.Tenant(tenantID.Int64)
	}
	if size.Valid {
		item.SetSize(size.Int64)
	}

	item.ContentType = contentType.String
	item.ExternalURL = externalURL.String
	item.StorageKey = storageKey.String
	if item.MetaProperties, err = data.UnmarshalMeta([]byte(meta.String)); err != nil {
		return nil, err
	}

	item.CreateTime = time.Unix(0, createTime)
	item.ModifyTime = time.Unix(0, modifyTime)

	return &item, nil
}

func scanItems(rows *sql.Rows) ([]*data.Item, error) {
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

func scanFileSystem(row scanner) (*data.FileSystem, error) {
	var fs data.FileSystem
	var id string
	var tenantID sql.NullInt64
	var createTime, modifyTime int64

	if err := row.Scan(&id, &fs.Name, &tenantID, &createTime, &modifyTime); err != nil {
		return nil, err
	}

	var err error
	if fs.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if tenantID.Valid {
		fs.TenantID = data.Tenant(tenantID.Int64)
	}
	fs.CreateTime = time.Unix(0, createTime)
	fs.ModifyTime = time.Unix(0, modifyTime)

	return &fs, nil
}

func nullTenant(tenantID *int64) sql.NullInt64 {
	if tenantID == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *tenantID, Valid: true}
}

func nullSize(size *int64) sql.NullInt64 {
	if size == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *size, Valid: true}
}

func nullID(id *uuid.UUID) sql.NullString {
	if id == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: id.String(), Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// prefixClause matches column against a literal prefix without LIKE wildcard handling.
func prefixClause(column, prefix string) (string, []any) {
	return "substr(" + column + ", 1, ?) = ?", []any{utf8.RuneCountInString(prefix), prefix}
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
