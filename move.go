package treefs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mwantia/treefs/backend"
	"github.com/mwantia/treefs/data"
)

// Move relocates source to destination. An existing destination must be of the
// same kind and is only replaced with override, deleting it before the move.
// Directory moves rewrite every descendant path by prefix substitution.
func (t *TreeFS) Move(ctx context.Context, source, destination *data.Path, override bool) (item *data.Item, err error) {
	if source.Equal(destination) {
		return nil, nil
	}
	defer t.observe("move", time.Now(), &err)

	logger := t.log.Named("move")
	if source.IsRoot() || destination.IsRoot() {
		return nil, fmt.Errorf("%w: cannot move '%s' to '%s'", data.ErrIsRoot, source, destination)
	}
	if !data.SameTenant(source.TenantID, destination.TenantID) {
		return nil, fmt.Errorf("%w: cannot move '%s' across tenants", data.ErrInvalidPath, source)
	}

	item, err = t.metadata.ReadItemByPath(ctx, source)
	if err != nil {
		return nil, err
	}

	if data.IsDescendantPath(source.VirtualPath, destination.VirtualPath) {
		return nil, fmt.Errorf("%w: '%s' contains '%s'", data.ErrConflict, destination, source)
	}
	if item.IsDirectory() && data.IsDescendantPath(destination.VirtualPath, source.VirtualPath) {
		return nil, fmt.Errorf("%w: cannot move '%s' into itself", data.ErrConflict, source)
	}

	target, err := t.metadata.ReadItemByPath(ctx, destination)
	if err != nil && !errors.Is(err, data.ErrNotExist) {
		return nil, err
	}
	if target != nil {
		if !item.SameKind(target) {
			return nil, fmt.Errorf("%w: '%s' is a %s, '%s' is a %s", data.ErrTypeMismatch, source, item.Type, destination, target.Type)
		}
		if !override {
			return nil, fmt.Errorf("%w: '%s'", data.ErrConflict, destination)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := t.deleteItem(ctx, target); err != nil {
			return nil, fmt.Errorf("failed to replace '%s': %w", destination, err)
		}
	}

	var descendants []*data.Item
	if item.IsDirectory() {
		if descendants, err = t.metadata.ListDescendants(ctx, item); err != nil {
			return nil, err
		}
	}

	parent, err := t.EnsureDirectory(ctx, destination.Parent())
	if err != nil {
		return nil, err
	}

	oldPrefix := item.VirtualPath
	item.Name = destination.Name()
	item.VirtualPath = destination.VirtualPath
	item.FileSystemID = destination.FileSystemID
	item.ParentID = idOf(parent)
	item.ModifyTime = time.Now()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := t.metadata.UpdateItem(ctx, item); err != nil {
		return nil, err
	}

	if err := t.moveDescendants(ctx, item, oldPrefix, descendants); err != nil {
		logger.Error("Moved '%s' to '%s' only partially: %v", source, destination, err)
		return nil, err
	}

	t.metrics.RecordItems("move", len(descendants)+1)
	logger.Debug("Moved '%s' to '%s' with %d descendants", source, destination, len(descendants))

	return item, nil
}

// moveDescendants rebases descendants below dir, shallowest first, so every
// parent is already rewritten when its children are re-pointed.
func (t *TreeFS) moveDescendants(ctx context.Context, dir *data.Item, oldPrefix string, descendants []*data.Item) error {
	backend.SortByDepth(descendants)

	parents := map[string]uuid.UUID{dir.VirtualPath: dir.ID}
	completed := []uuid.UUID{dir.ID}

	for i := len(descendants) - 1; i >= 0; i-- {
		descendant := descendants[i]
		if err := ctx.Err(); err != nil {
			return data.NewPartialFailure("move", completed, descendant.ID, err)
		}

		descendant.VirtualPath = data.RebasePath(descendant.VirtualPath, oldPrefix, dir.VirtualPath)
		descendant.FileSystemID = dir.FileSystemID

		parentPath := descendant.VirtualPath[:strings.LastIndex(descendant.VirtualPath, "/")]
		parentID, err := t.resolveParentID(ctx, parents, parentPath, descendant.TenantID)
		if err != nil {
			return data.NewPartialFailure("move", completed, descendant.ID, err)
		}
		descendant.ParentID = &parentID

		if err := t.metadata.UpdateItem(ctx, descendant); err != nil {
			return data.NewPartialFailure("move", completed, descendant.ID, err)
		}

		if descendant.IsDirectory() {
			parents[descendant.VirtualPath] = descendant.ID
		}
		completed = append(completed, descendant.ID)
	}

	return nil
}

func (t *TreeFS) resolveParentID(ctx context.Context, parents map[string]uuid.UUID, parentPath string, tenantID *int64) (uuid.UUID, error) {
	if id, ok := parents[parentPath]; ok {
		return id, nil
	}

	path, err := data.ParsePath(parentPath, tenantID)
	if err != nil {
		return uuid.Nil, err
	}

	parent, err := t.EnsureDirectory(ctx, path)
	if err != nil {
		return uuid.Nil, err
	}
	parents[parentPath] = parent.ID

	return parent.ID, nil
}
