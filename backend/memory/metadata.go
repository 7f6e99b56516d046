package memory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mwantia/treefs/backend"
	"github.com/mwantia/treefs/data"
)

func (mb *MemoryBackend) CreateFileSystem(ctx context.Context, fs *data.FileSystem) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	if _, exists := mb.filesystems[fs.ID]; exists {
		return data.ErrExist
	}

	mb.filesystems[fs.ID] = fs.Clone()
	return nil
}

func (mb *MemoryBackend) ReadFileSystem(ctx context.Context, id uuid.UUID) (*data.FileSystem, error) {
	mb.mu.RLock()
	defer mb.mu.RUnlock()

	fs, exists := mb.filesystems[id]
	if !exists {
		return nil, data.ErrNotExist
	}

	return fs.Clone(), nil
}

func (mb *MemoryBackend) UpdateFileSystem(ctx context.Context, fs *data.FileSystem) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	if _, exists := mb.filesystems[fs.ID]; !exists {
		return data.ErrNotExist
	}

	fs.ModifyTime = time.Now()
	mb.filesystems[fs.ID] = fs.Clone()
	return nil
}

func (mb *MemoryBackend) DeleteFileSystem(ctx context.Context, id uuid.UUID) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	if _, exists := mb.filesystems[id]; !exists {
		return data.ErrNotExist
	}

	delete(mb.filesystems, id)
	return nil
}

func (mb *MemoryBackend) QueryFileSystems(ctx context.Context, query *backend.FileSystemQuery) ([]*data.FileSystem, error) {
	mb.mu.RLock()
	defer mb.mu.RUnlock()

	result := make([]*data.FileSystem, 0)
	for _, fs := range mb.filesystems {
		if query.Match(fs) {
			result = append(result, fs.Clone())
		}
	}

	backend.SortFileSystems(result)
	return result, nil
}

func (mb *MemoryBackend) ReadItemByPath(ctx context.Context, path *data.Path) (*data.Item, error) {
	mb.mu.RLock()
	defer mb.mu.RUnlock()

	id, exists := mb.paths.Get(pathKey(path.TenantID, path.VirtualPath))
	if !exists {
		return nil, data.ErrNotExist
	}

	item, exists := mb.items[id]
	if !exists || item.FileSystemID != path.FileSystemID {
		return nil, data.ErrNotExist
	}

	return item.Clone(), nil
}

func (mb *MemoryBackend) ReadItem(ctx context.Context, id uuid.UUID) (*data.Item, error) {
	mb.mu.RLock()
	defer mb.mu.RUnlock()

	item, exists := mb.items[id]
	if !exists {
		return nil, data.ErrNotExist
	}

	return item.Clone(), nil
}

func (mb *MemoryBackend) ReadItems(ctx context.Context, ids []uuid.UUID) ([]*data.Item, error) {
	mb.mu.RLock()
	defer mb.mu.RUnlock()

	result := make([]*data.Item, 0, len(ids))
	for _, id := range ids {
		if item, exists := mb.items[id]; exists {
			result = append(result, item.Clone())
		}
	}

	return result, nil
}

func (mb *MemoryBackend) ResolveIDs(ctx context.Context, virtualPaths []string, tenantID *int64) ([]uuid.UUID, error) {
	mb.mu.RLock()
	defer mb.mu.RUnlock()

	result := make([]uuid.UUID, 0, len(virtualPaths))
	for _, virtualPath := range virtualPaths {
		if id, exists := mb.paths.Get(pathKey(tenantID, virtualPath)); exists {
			result = append(result, id)
		}
	}

	return result, nil
}

func (mb *MemoryBackend) ListChildren(ctx context.Context, parentID uuid.UUID) ([]*data.Item, error) {
	return mb.collect(func(item *data.Item) bool {
		return item.ParentID != nil && *item.ParentID == parentID
	}), nil
}

func (mb *MemoryBackend) ListDescendants(ctx context.Context, item *data.Item) ([]*data.Item, error) {
	mb.mu.RLock()
	defer mb.mu.RUnlock()

	prefix := pathKey(item.TenantID, item.VirtualPath+"/")
	result := make([]*data.Item, 0)

	// Keys are ordered, so every descendant follows the prefix pivot contiguously
	mb.paths.Ascend(prefix, func(key string, id uuid.UUID) bool {
		if !strings.HasPrefix(key, prefix) {
			return false
		}
		if child, exists := mb.items[id]; exists {
			result = append(result, child.Clone())
		}
		return true
	})

	return result, nil
}

func (mb *MemoryBackend) ListRootChildren(ctx context.Context, fsID uuid.UUID) ([]*data.Item, error) {
	return mb.collect(func(item *data.Item) bool {
		return item.FileSystemID == fsID && item.ParentID == nil
	}), nil
}

func (mb *MemoryBackend) ListFileSystemItems(ctx context.Context, fsID uuid.UUID) ([]*data.Item, error) {
	return mb.collect(func(item *data.Item) bool {
		return item.FileSystemID == fsID
	}), nil
}

func (mb *MemoryBackend) QueryItems(ctx context.Context, query *backend.ItemQuery) ([]*data.Item, error) {
	return backend.ApplyQuery(mb.collect(query.Match), query), nil
}

func (mb *MemoryBackend) CreateItem(ctx context.Context, item *data.Item) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	if _, exists := mb.items[item.ID]; exists {
		return data.ErrExist
	}

	key := pathKey(item.TenantID, item.VirtualPath)
	if _, exists := mb.paths.Get(key); exists {
		return data.ErrExist
	}

	if item.CreateTime.IsZero() {
		item.CreateTime = time.Now()
	}
	if item.ModifyTime.IsZero() {
		item.ModifyTime = item.CreateTime
	}

	mb.paths.Set(key, item.ID)
	mb.items[item.ID] = item.Clone()
	return nil
}

func (mb *MemoryBackend) UpdateItem(ctx context.Context, item *data.Item) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	current, exists := mb.items[item.ID]
	if !exists {
		return data.ErrNotExist
	}

	oldKey := pathKey(current.TenantID, current.VirtualPath)
	newKey := pathKey(item.TenantID, item.VirtualPath)
	if oldKey != newKey {
		if id, exists := mb.paths.Get(newKey); exists && id != item.ID {
			return data.ErrExist
		}
		mb.paths.Delete(oldKey)
		mb.paths.Set(newKey, item.ID)
	}

	item.ModifyTime = time.Now()
	mb.items[item.ID] = item.Clone()
	return nil
}

func (mb *MemoryBackend) DeleteItem(ctx context.Context, item *data.Item) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	current, exists := mb.items[item.ID]
	if !exists {
		return data.ErrNotExist
	}

	mb.paths.Delete(pathKey(current.TenantID, current.VirtualPath))
	delete(mb.items, item.ID)
	return nil
}

func (mb *MemoryBackend) SumSize(ctx context.Context, fsID uuid.UUID, prefix string) (int64, error) {
	mb.mu.RLock()
	defer mb.mu.RUnlock()

	var total int64
	for _, item := range mb.items {
		if item.FileSystemID != fsID {
			continue
		}
		if prefix != "" && !data.IsUnderPath(item.VirtualPath, prefix) {
			continue
		}
		total += item.Size()
	}

	return total, nil
}

func (mb *MemoryBackend) collect(match func(*data.Item) bool) []*data.Item {
	mb.mu.RLock()
	defer mb.mu.RUnlock()

	result := make([]*data.Item, 0)
	for _, item := range mb.items {
		if match(item) {
			result = append(result, item.Clone())
		}
	}

	backend.ApplySort(result, backend.SortByPath, backend.SortAsc)
	return result
}
