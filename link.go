package treefs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mwantia/treefs/data"
)

func (t *TreeFS) CreateLink(ctx context.Context, path *data.Path, url string) (item *data.Item, err error) {
	defer t.observe("link", time.Now(), &err)

	if path.IsRoot() {
		return nil, fmt.Errorf("%w: '%s'", data.ErrIsRoot, path)
	}

	existing, err := t.metadata.ReadItemByPath(ctx, path)
	if err != nil && !errors.Is(err, data.ErrNotExist) {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: '%s'", data.ErrConflict, path)
	}

	parent, err := t.EnsureDirectory(ctx, path.Parent())
	if err != nil {
		return nil, err
	}

	item = data.NewLinkItem(path, url)
	item.ParentID = idOf(parent)

	if err := t.metadata.CreateItem(ctx, item); err != nil {
		if errors.Is(err, data.ErrExist) {
			return nil, fmt.Errorf("%w: '%s'", data.ErrConflict, path)
		}
		return nil, err
	}

	return item, nil
}
