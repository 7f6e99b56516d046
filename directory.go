package treefs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mwantia/treefs/data"
)

// EnsureDirectory walks path from the root downwards and creates each missing
// segment as a directory chained to the one above it.
func (t *TreeFS) EnsureDirectory(ctx context.Context, path *data.Path) (dir *data.Item, err error) {
	if path == nil || path.IsRoot() {
		return nil, nil
	}
	defer t.observe("mkdir", time.Now(), &err)

	current := data.RootPath(path.FileSystemID, path.TenantID)
	var parent *data.Item

	for _, segment := range path.Segments() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		current, err = current.Join(segment)
		if err != nil {
			return nil, err
		}

		item, err := t.resolveDirectory(ctx, current, parent)
		if err != nil {
			return nil, err
		}
		parent = item
	}

	return parent, nil
}

func (t *TreeFS) CreateDirectory(ctx context.Context, path *data.Path) (*data.Item, error) {
	if path.IsRoot() {
		return nil, fmt.Errorf("%w: '%s'", data.ErrIsRoot, path)
	}
	return t.EnsureDirectory(ctx, path)
}

func (t *TreeFS) resolveDirectory(ctx context.Context, path *data.Path, parent *data.Item) (*data.Item, error) {
	item, err := t.metadata.ReadItemByPath(ctx, path)
	if errors.Is(err, data.ErrNotExist) {
		item = data.NewDirectoryItem(path, idOf(parent))
		err = t.metadata.CreateItem(ctx, item)
		if errors.Is(err, data.ErrExist) {
			// Lost a race against a concurrent creation of the same segment
			item, err = t.metadata.ReadItemByPath(ctx, path)
		} else if err == nil {
			t.log.Debug("Created directory '%s'", path)
		}
	}
	if err != nil {
		return nil, err
	}

	if !item.IsDirectory() {
		return nil, fmt.Errorf("%w: '%s' is not a directory", data.ErrTypeMismatch, path)
	}
	return item, nil
}
