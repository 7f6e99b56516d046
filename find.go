package treefs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mwantia/treefs/backend"
	"github.com/mwantia/treefs/data"
)

func (t *TreeFS) Find(ctx context.Context, path *data.Path) (item *data.Item, err error) {
	defer t.observe("find", time.Now(), &err)

	return t.metadata.ReadItemByPath(ctx, path)
}

func (t *TreeFS) FindByID(ctx context.Context, id uuid.UUID) (item *data.Item, err error) {
	defer t.observe("find", time.Now(), &err)

	return t.metadata.ReadItem(ctx, id)
}

func (t *TreeFS) List(ctx context.Context, path *data.Path) (items []*data.Item, err error) {
	defer t.observe("list", time.Now(), &err)

	if path.IsRoot() {
		children, err := t.metadata.ListRootChildren(ctx, path.FileSystemID)
		if err != nil {
			return nil, err
		}

		items = make([]*data.Item, 0, len(children))
		for _, child := range children {
			if data.SameTenant(child.TenantID, path.TenantID) {
				items = append(items, child)
			}
		}
		return items, nil
	}

	item, err := t.metadata.ReadItemByPath(ctx, path)
	if err != nil {
		return nil, err
	}

	return t.listChildren(ctx, item)
}

func (t *TreeFS) ListByID(ctx context.Context, id uuid.UUID) (items []*data.Item, err error) {
	defer t.observe("list", time.Now(), &err)

	item, err := t.metadata.ReadItem(ctx, id)
	if err != nil {
		return nil, err
	}

	return t.listChildren(ctx, item)
}

func (t *TreeFS) listChildren(ctx context.Context, item *data.Item) ([]*data.Item, error) {
	if !item.IsDirectory() {
		return nil, fmt.Errorf("%w: '%s'", data.ErrNotDirectory, item.VirtualPath)
	}
	return t.metadata.ListChildren(ctx, item.ID)
}

func (t *TreeFS) Filter(ctx context.Context, filter, prefix string, tenantID *int64) (items []*data.Item, err error) {
	defer t.observe("filter", time.Now(), &err)

	return t.metadata.QueryItems(ctx, &backend.ItemQuery{
		TenantID:     tenantID,
		NameContains: filter,
		PathPrefix:   prefix,
		SortBy:       backend.SortByPath,
	})
}

func (t *TreeFS) GetMany(ctx context.Context, ids []uuid.UUID) ([]*data.Item, error) {
	return t.metadata.ReadItems(ctx, ids)
}

func (t *TreeFS) GetIDs(ctx context.Context, virtualPaths []string, tenantID *int64) ([]uuid.UUID, error) {
	normalized := make([]string, 0, len(virtualPaths))
	for _, raw := range virtualPaths {
		path, err := data.ParsePath(raw, tenantID)
		if err != nil {
			return nil, err
		}
		normalized = append(normalized, path.VirtualPath)
	}

	return t.metadata.ResolveIDs(ctx, normalized, tenantID)
}
