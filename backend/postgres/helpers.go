package postgres

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mwantia/treefs/data"
)

const itemColumns = `id, filesystem_id, parent_id, name, virtual_path, tenant_id, type,
	size_in_bytes, content_type, external_url, storage_key, meta_properties, create_time, modify_time`

const fileSystemColumns = `id, name, tenant_id, create_time, modify_time`

func scanItem(row pgx.Row) (*data.Item, error) {
	var item data.Item
	var id, fsID string
	var parentID, contentType, externalURL, storageKey *string
	var tenantID, size *int64
	var itemType int
	var meta []byte
	var createTime, modifyTime int64

	if err := row.Scan(&id, &fsID, &parentID, &item.Name, &item.VirtualPath, &tenantID, &itemType,
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
	if parentID != nil {
		parent, err := uuid.Parse(*parentID)
		if err != nil {
			return nil, err
		}
		item.ParentID = &parent
	}

	item.TenantID = tenantID
	item.Type = data.ItemType(itemType)
	item.SizeInBytes = size
	item.ContentType = valueOf(contentType)
	item.ExternalURL = valueOf(externalURL)
	item.StorageKey = valueOf(storageKey)

	if item.MetaProperties, err = data.UnmarshalMeta(meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal meta properties: %w", err)
	}

	item.CreateTime = time.Unix(0, createTime)
	item.ModifyTime = time.Unix(0, modifyTime)

	return &item, nil
}

func scanFileSystem(row pgx.Row) (*data.FileSystem, error) {
	var fs data.FileSystem
	var id string
	var tenantID *int64
	var createTime, modifyTime int64

	if err := row.Scan(&id, &fs.Name, &tenantID, &createTime, &modifyTime); err != nil {
		return nil, err
	}

	var err error
	if fs.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	fs.TenantID = tenantID
	fs.CreateTime = time.Unix(0, createTime)
	fs.ModifyTime = time.Unix(0, modifyTime)

	return &fs, nil
}

func nullID(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	value := id.String()
	return &value
}

func nullString(val string) *string {
	if val == "" {
		return nil
	}
	return &val
}

func valueOf(val *string) string {
	if val == nil {
		return ""
	}
	return *val
}

// whereBuilder numbers positional parameters while clauses are appended.
type whereBuilder struct {
	clauses []string
	args    []any
}

func (wb *whereBuilder) add(clause string, args ...any) {
	for _, arg := range args {
		wb.args = append(wb.args, arg)
		clause = strings.Replace(clause, "?", fmt.Sprintf("$%d", len(wb.args)), 1)
	}
	wb.clauses = append(wb.clauses, clause)
}

func (wb *whereBuilder) String() string {
	if len(wb.clauses) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(wb.clauses, " AND ")
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
