package backend

import (
	"context"

	"github.com/google/uuid"
	"github.com/mwantia/treefs/data"
)

// VirtualMetadataBackend stores filesystems and their items.
// This is the "fast index" layer - optimized for path lookups and prefix queries.
// None of the delete operations cascade; the engine owns cascade ordering.
type VirtualMetadataBackend interface {
	VirtualBackend

	CreateFileSystem(ctx context.Context, fs *data.FileSystem) error

	ReadFileSystem(ctx context.Context, id uuid.UUID) (*data.FileSystem, error)

	UpdateFileSystem(ctx context.Context, fs *data.FileSystem) error

	DeleteFileSystem(ctx context.Context, id uuid.UUID) error

	QueryFileSystems(ctx context.Context, query *FileSystemQuery) ([]*data.FileSystem, error)

	// ReadItemByPath matches (FileSystemID, VirtualPath, TenantID) exactly.
	ReadItemByPath(ctx context.Context, path *data.Path) (*data.Item, error)

	ReadItem(ctx context.Context, id uuid.UUID) (*data.Item, error)

	// ReadItems skips ids that do not exist.
	ReadItems(ctx context.Context, ids []uuid.UUID) ([]*data.Item, error)

	// ResolveIDs maps virtual paths of one tenant to item ids, skipping unknown paths.
	ResolveIDs(ctx context.Context, virtualPaths []string, tenantID *int64) ([]uuid.UUID, error)

	ListChildren(ctx context.Context, parentID uuid.UUID) ([]*data.Item, error)

	// ListDescendants returns every item whose path lies below item.VirtualPath.
	ListDescendants(ctx context.Context, item *data.Item) ([]*data.Item, error)

	ListRootChildren(ctx context.Context, fsID uuid.UUID) ([]*data.Item, error)

	ListFileSystemItems(ctx context.Context, fsID uuid.UUID) ([]*data.Item, error)

	QueryItems(ctx context.Context, query *ItemQuery) ([]*data.Item, error)

	CreateItem(ctx context.Context, item *data.Item) error

	UpdateItem(ctx context.Context, item *data.Item) error

	DeleteItem(ctx context.Context, item *data.Item) error

	// SumSize aggregates SizeInBytes under prefix; an empty prefix covers the filesystem.
	SumSize(ctx context.Context, fsID uuid.UUID, prefix string) (int64, error)
}
