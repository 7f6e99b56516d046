package backend

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/mwantia/treefs/data"
)

// ItemQuery filters items. Empty fields do not restrict the result.
type ItemQuery struct {
	// TenantID is always compared, a nil tenant only matches items without tenant
	TenantID *int64 `json:"tenant_id"`

	// Restrict to a single filesystem
	FileSystemID *uuid.UUID `json:"filesystem_id,omitempty"`

	// NameContains matches a case-sensitive substring of the item name
	NameContains string `json:"name_contains,omitempty"`

	// PathPrefix matches items whose virtual path starts with this string
	PathPrefix string `json:"path_prefix,omitempty"`

	// Filter by item type
	FilterType *data.ItemType `json:"filter_type,omitempty"`

	// Query filter by content-type, wildcards allowed (e.g. "image/*")
	ContentType string `json:"content_type,omitempty"`

	// Max results to return (0 = unlimited)
	Limit int `json:"limit"`

	// Skip this many results during pagination
	Offset int `json:"offset"`

	SortBy    SortField `json:"sort_by"`
	SortOrder SortOrder `json:"sort_order"`
}

// FileSystemQuery filters filesystems by tenant and name.
type FileSystemQuery struct {
	// All ignores TenantID and returns filesystems of every tenant
	All bool `json:"all"`

	TenantID *int64 `json:"tenant_id"`

	NameContains string `json:"name_contains,omitempty"`
}

type SortField string

const (
	SortByPath       SortField = "path"
	SortByName       SortField = "name"
	SortBySize       SortField = "size"
	SortByModifyTime SortField = "modify_time"
	SortByCreateTime SortField = "create_time"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Match evaluates every query field against a single item.
func (q *ItemQuery) Match(item *data.Item) bool {
	if !data.SameTenant(q.TenantID, item.TenantID) {
		return false
	}
	if q.FileSystemID != nil && item.FileSystemID != *q.FileSystemID {
		return false
	}
	if q.NameContains != "" && !strings.Contains(item.Name, q.NameContains) {
		return false
	}
	if q.PathPrefix != "" && !strings.HasPrefix(item.VirtualPath, q.PathPrefix) {
		return false
	}
	if q.FilterType != nil && item.Type != *q.FilterType {
		return false
	}
	if q.ContentType != "" && !data.MatchContentType(item.ContentType, q.ContentType) {
		return false
	}

	return true
}

// Match evaluates the query against a single filesystem.
func (q *FileSystemQuery) Match(fs *data.FileSystem) bool {
	if !q.All && !data.SameTenant(q.TenantID, fs.TenantID) {
		return false
	}
	if q.NameContains != "" && !strings.Contains(fs.Name, q.NameContains) {
		return false
	}

	return true
}

// ApplyQuery sorts and paginates items that already passed Match.
func ApplyQuery(items []*data.Item, query *ItemQuery) []*data.Item {
	by := query.SortBy
	if by == "" {
		by = SortByPath
	}
	ApplySort(items, by, query.SortOrder)

	return Paginate(items, query.Offset, query.Limit)
}

func ApplySort(items []*data.Item, by SortField, order SortOrder) {
	if by == "" {
		return
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if order == SortDesc {
			a, b = b, a
		}

		switch by {
		case SortByPath:
			return a.VirtualPath < b.VirtualPath
		case SortByName:
			return a.Name < b.Name
		case SortBySize:
			return a.Size() < b.Size()
		case SortByModifyTime:
			return a.ModifyTime.Before(b.ModifyTime)
		case SortByCreateTime:
			return a.CreateTime.Before(b.CreateTime)
		default:
			return false
		}
	})
}

func Paginate(items []*data.Item, offset, limit int) []*data.Item {
	if offset > 0 {
		if offset >= len(items) {
			return []*data.Item{}
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// SortFileSystems orders filesystems by name, then id.
func SortFileSystems(list []*data.FileSystem) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID.String() < list[j].ID.String()
	})
}

// SortByDepth orders items deepest first, the order a cascade delete needs.
func SortByDepth(items []*data.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		di := strings.Count(items[i].VirtualPath, "/")
		dj := strings.Count(items[j].VirtualPath, "/")
		if di != dj {
			return di > dj
		}
		return items[i].VirtualPath < items[j].VirtualPath
	})
}
