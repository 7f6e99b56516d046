package data

import (
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Item is a file, directory or external link within a filesystem tree.
type Item struct {
	ID           uuid.UUID  `json:"id"`
	FileSystemID uuid.UUID  `json:"filesystem_id"`
	ParentID     *uuid.UUID `json:"parent_id,omitempty"`

	Name        string   `json:"name"`
	VirtualPath string   `json:"virtual_path"`
	TenantID    *int64   `json:"tenant_id,omitempty"`
	Type        ItemType `json:"type"`

	SizeInBytes *int64 `json:"size_in_bytes,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	ExternalURL string `json:"external_url,omitempty"`
	StorageKey  string `json:"storage_key,omitempty"`

	MetaProperties MetaProperties `json:"meta_properties,omitempty"`

	CreateTime time.Time `json:"create_time"`
	ModifyTime time.Time `json:"modify_time"`
}

// NewItem creates an item addressed by path with a fresh id.
func NewItem(path *Path, itemType ItemType) *Item {
	now := time.Now()

	return &Item{
		ID:           NewID(),
		FileSystemID: path.FileSystemID,
		Name:         path.Name(),
		VirtualPath:  path.VirtualPath,
		TenantID:     CloneTenant(path.TenantID),
		Type:         itemType,
		CreateTime:   now,
		ModifyTime:   now,
	}
}

// NewFileItem creates a file item and derives its storage key.
func NewFileItem(path *Path, contentType string) *Item {
	item := NewItem(path, ItemTypeFile)
	item.ContentType = contentType
	item.StorageKey = StorageKeyOf(item.ID, item.Name)

	return item
}

// NewDirectoryItem creates a directory item below parentID (nil for root children).
func NewDirectoryItem(path *Path, parentID *uuid.UUID) *Item {
	item := NewItem(path, ItemTypeDirectory)
	item.ParentID = CloneID(parentID)

	return item
}

// NewLinkItem creates an external link item.
func NewLinkItem(path *Path, url string) *Item {
	item := NewItem(path, ItemTypeExternalLink)
	item.ContentType = ContentTypeTextURIList
	item.ExternalURL = url

	return item
}

// StorageKeyOf derives the object key from an item id and its original name.
func StorageKeyOf(id uuid.UUID, name string) string {
	return id.String() + filepath.Ext(name)
}

func (i *Item) IsFile() bool {
	return i.Type == ItemTypeFile
}

func (i *Item) IsDirectory() bool {
	return i.Type == ItemTypeDirectory
}

func (i *Item) IsExternalLink() bool {
	return i.Type == ItemTypeExternalLink
}

// SameKind checks all three kind dimensions pairwise.
func (i *Item) SameKind(other *Item) bool {
	return i.IsDirectory() == other.IsDirectory() &&
		i.IsFile() == other.IsFile() &&
		i.IsExternalLink() == other.IsExternalLink()
}

// Key returns the storage key, deriving it for rows that predate the stored key.
func (i *Item) Key() string {
	if !i.IsFile() {
		return ""
	}
	if i.StorageKey == "" {
		return StorageKeyOf(i.ID, i.Name)
	}
	return i.StorageKey
}

// Size returns SizeInBytes or 0 when unset.
func (i *Item) Size() int64 {
	if i.SizeInBytes == nil {
		return 0
	}
	return *i.SizeInBytes
}

func (i *Item) SetSize(size int64) {
	i.SizeInBytes = &size
}

// SetMeta sets a property, initializing the bag if needed.
func (i *Item) SetMeta(key string, value any) {
	if i.MetaProperties == nil {
		i.MetaProperties = make(MetaProperties)
	}
	i.MetaProperties[key] = value
}

// Path returns the parsed address of the item.
func (i *Item) Path() (*Path, error) {
	return ParsePath(i.VirtualPath, i.TenantID)
}

// Clone returns a deep copy so callers may mutate without touching backend state.
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}

	clone := *i
	clone.ParentID = CloneID(i.ParentID)
	clone.TenantID = CloneTenant(i.TenantID)
	if i.SizeInBytes != nil {
		size := *i.SizeInBytes
		clone.SizeInBytes = &size
	}
	clone.MetaProperties = i.MetaProperties.Clone()

	return &clone
}
