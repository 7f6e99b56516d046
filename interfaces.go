package treefs

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/mwantia/treefs/data"
)

// FileSystemService is the operation surface offered to transports and the command shell.
// Paths carry their tenant; operations addressed by id use the tenant stored on the item.
type FileSystemService interface {
	// Find returns the item stored at path or ErrNotExist.
	Find(ctx context.Context, path *data.Path) (*data.Item, error)

	// FindByID returns the item with the given id or ErrNotExist.
	FindByID(ctx context.Context, id uuid.UUID) (*data.Item, error)

	// List returns the direct children of a directory or of the filesystem root.
	List(ctx context.Context, path *data.Path) ([]*data.Item, error)

	ListByID(ctx context.Context, id uuid.UUID) ([]*data.Item, error)

	// Filter matches item names containing filter below the path prefix of one tenant.
	Filter(ctx context.Context, filter, prefix string, tenantID *int64) ([]*data.Item, error)

	GetMany(ctx context.Context, ids []uuid.UUID) ([]*data.Item, error)

	GetIDs(ctx context.Context, virtualPaths []string, tenantID *int64) ([]uuid.UUID, error)

	// EnsureDirectory materializes every missing directory along path.
	// The root is synthetic, so it yields no item and no error.
	EnsureDirectory(ctx context.Context, path *data.Path) (*data.Item, error)

	CreateDirectory(ctx context.Context, path *data.Path) (*data.Item, error)

	// Upload adds a file at path or replaces the content of the file already there.
	Upload(ctx context.Context, path *data.Path, contentType string, r io.Reader) (*data.Item, error)

	// CreateLink never overwrites; an occupied path yields ErrConflict.
	CreateLink(ctx context.Context, path *data.Path, url string) (*data.Item, error)

	// GetSize sums the file sizes at and below path.
	GetSize(ctx context.Context, path *data.Path) (int64, error)

	// Move relocates an item, and for directories its whole subtree.
	// Moving a path onto itself is a no-op returning no item.
	Move(ctx context.Context, source, destination *data.Path, override bool) (*data.Item, error)

	Delete(ctx context.Context, path *data.Path) (uuid.UUID, error)

	DeleteByID(ctx context.Context, id uuid.UUID) (uuid.UUID, error)

	// Download copies the blob of a file item into w.
	Download(ctx context.Context, item *data.Item, w io.Writer) (int64, error)

	// CreateZip archives the given items and uploads the archive next to the first one.
	CreateZip(ctx context.Context, ids []uuid.UUID) (*data.Item, error)

	// ZipTo streams an archive of items into w without storing it.
	ZipTo(ctx context.Context, w io.Writer, items ...*data.Item) error

	// Unzip uploads every file entry of a zip item into the item's filesystem.
	Unzip(ctx context.Context, id uuid.UUID) ([]*data.Item, error)

	CreateFileSystem(ctx context.Context, name string, tenantID *int64) (*data.FileSystem, error)

	GetFileSystem(ctx context.Context, id uuid.UUID) (*data.FileSystem, error)

	RenameFileSystem(ctx context.Context, id uuid.UUID, name string) (*data.FileSystem, error)

	DeleteFileSystem(ctx context.Context, id uuid.UUID) (uuid.UUID, error)

	GetFileSystems(ctx context.Context, tenantID *int64) ([]*data.FileSystem, error)

	GetAllFileSystems(ctx context.Context) ([]*data.FileSystem, error)

	FilterFileSystems(ctx context.Context, filter string, tenantID *int64) ([]*data.FileSystem, error)
}
