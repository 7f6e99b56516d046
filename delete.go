package treefs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mwantia/treefs/backend"
	"github.com/mwantia/treefs/data"
)

func (t *TreeFS) Delete(ctx context.Context, path *data.Path) (id uuid.UUID, err error) {
	defer t.observe("delete", time.Now(), &err)

	if path.IsRoot() {
		return uuid.Nil, fmt.Errorf("%w: '%s'", data.ErrIsRoot, path)
	}

	item, err := t.metadata.ReadItemByPath(ctx, path)
	if err != nil {
		return uuid.Nil, err
	}

	return t.deleteItem(ctx, item)
}

func (t *TreeFS) DeleteByID(ctx context.Context, id uuid.UUID) (deleted uuid.UUID, err error) {
	defer t.observe("delete", time.Now(), &err)

	item, err := t.metadata.ReadItem(ctx, id)
	if err != nil {
		return uuid.Nil, err
	}

	return t.deleteItem(ctx, item)
}

// deleteItem removes a directory's descendants deepest first and its own row last.
func (t *TreeFS) deleteItem(ctx context.Context, item *data.Item) (uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, err
	}

	var completed []uuid.UUID

	if item.IsDirectory() {
		descendants, err := t.metadata.ListDescendants(ctx, item)
		if err != nil {
			return uuid.Nil, err
		}
		backend.SortByDepth(descendants)

		for _, descendant := range descendants {
			if err := ctx.Err(); err != nil {
				return uuid.Nil, data.NewPartialFailure("delete", completed, descendant.ID, err)
			}
			if err := t.removeItem(ctx, descendant); err != nil {
				t.log.Named("delete").Error("Failed to delete '%s' below '%s': %v", descendant.VirtualPath, item.VirtualPath, err)
				return uuid.Nil, data.NewPartialFailure("delete", completed, descendant.ID, err)
			}
			completed = append(completed, descendant.ID)
		}
	}

	if err := t.removeItem(ctx, item); err != nil {
		return uuid.Nil, data.NewPartialFailure("delete", completed, item.ID, err)
	}

	t.metrics.RecordItems("delete", len(completed)+1)
	return item.ID, nil
}

// removeItem deletes the blob of a file before its row. A blob that is
// already gone does not block removing the row.
func (t *TreeFS) removeItem(ctx context.Context, item *data.Item) error {
	if item.IsFile() {
		err := t.storage.DeleteObject(ctx, item.TenantID, item.Key())
		if err != nil && !errors.Is(err, data.ErrNotExist) {
			return fmt.Errorf("failed to delete blob '%s': %w", item.Key(), err)
		}
	}

	return t.metadata.DeleteItem(ctx, item)
}
