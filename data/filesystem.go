package data

import (
	"time"

	"github.com/google/uuid"
)

// FileSystem is a named, tenant-scoped namespace owning a tree of items.
type FileSystem struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	TenantID *int64    `json:"tenant_id,omitempty"`

	CreateTime time.Time `json:"create_time"`
	ModifyTime time.Time `json:"modify_time"`
}

func NewFileSystem(name string, tenantID *int64) *FileSystem {
	now := time.Now()

	return &FileSystem{
		ID:         NewID(),
		Name:       name,
		TenantID:   CloneTenant(tenantID),
		CreateTime: now,
		ModifyTime: now,
	}
}

// Root returns the synthetic root path of this filesystem.
func (fs *FileSystem) Root() *Path {
	return RootPath(fs.ID, fs.TenantID)
}

func (fs *FileSystem) Clone() *FileSystem {
	if fs == nil {
		return nil
	}

	clone := *fs
	clone.TenantID = CloneTenant(fs.TenantID)
	return &clone
}
