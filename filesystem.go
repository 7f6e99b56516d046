package treefs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mwantia/treefs/backend"
	"github.com/mwantia/treefs/data"
)

func (t *TreeFS) CreateFileSystem(ctx context.Context, name string, tenantID *int64) (fs *data.FileSystem, err error) {
	defer t.observe("fs_create", time.Now(), &err)

	fs = data.NewFileSystem(name, tenantID)
	if err := t.metadata.CreateFileSystem(ctx, fs); err != nil {
		return nil, err
	}

	t.log.Info("Created filesystem '%s' (%s) for tenant '%s'", fs.Name, fs.ID, data.TenantString(tenantID))
	return fs, nil
}

func (t *TreeFS) GetFileSystem(ctx context.Context, id uuid.UUID) (*data.FileSystem, error) {
	return t.metadata.ReadFileSystem(ctx, id)
}

func (t *TreeFS) RenameFileSystem(ctx context.Context, id uuid.UUID, name string) (fs *data.FileSystem, err error) {
	defer t.observe("fs_rename", time.Now(), &err)

	fs, err = t.metadata.ReadFileSystem(ctx, id)
	if err != nil {
		return nil, err
	}

	fs.Name = name
	fs.ModifyTime = time.Now()
	if err := t.metadata.UpdateFileSystem(ctx, fs); err != nil {
		return nil, err
	}

	return fs, nil
}

// DeleteFileSystem removes every item, deepest first, before the filesystem row.
func (t *TreeFS) DeleteFileSystem(ctx context.Context, id uuid.UUID) (deleted uuid.UUID, err error) {
	defer t.observe("fs_delete", time.Now(), &err)

	fs, err := t.metadata.ReadFileSystem(ctx, id)
	if err != nil {
		return uuid.Nil, err
	}

	items, err := t.metadata.ListFileSystemItems(ctx, fs.ID)
	if err != nil {
		return uuid.Nil, err
	}
	backend.SortByDepth(items)

	completed := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return uuid.Nil, data.NewPartialFailure("delete filesystem", completed, item.ID, err)
		}
		if err := t.removeItem(ctx, item); err != nil {
			t.log.Error("Failed to delete '%s' of filesystem '%s': %v", item.VirtualPath, fs.ID, err)
			return uuid.Nil, data.NewPartialFailure("delete filesystem", completed, item.ID, err)
		}
		completed = append(completed, item.ID)
	}

	if err := t.metadata.DeleteFileSystem(ctx, fs.ID); err != nil {
		return uuid.Nil, data.NewPartialFailure("delete filesystem", completed, uuid.Nil, err)
	}

	t.metrics.RecordItems("fs_delete", len(completed))
	t.log.Info("Deleted filesystem '%s' (%s) with %d items", fs.Name, fs.ID, len(completed))

	return fs.ID, nil
}

func (t *TreeFS) GetFileSystems(ctx context.Context, tenantID *int64) ([]*data.FileSystem, error) {
	return t.metadata.QueryFileSystems(ctx, &backend.FileSystemQuery{
		TenantID: tenantID,
	})
}

func (t *TreeFS) GetAllFileSystems(ctx context.Context) ([]*data.FileSystem, error) {
	return t.metadata.QueryFileSystems(ctx, &backend.FileSystemQuery{
		All: true,
	})
}

func (t *TreeFS) FilterFileSystems(ctx context.Context, filter string, tenantID *int64) ([]*data.FileSystem, error) {
	return t.metadata.QueryFileSystems(ctx, &backend.FileSystemQuery{
		TenantID:     tenantID,
		NameContains: filter,
	})
}
