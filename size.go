package treefs

import (
	"context"
	"time"

	"github.com/mwantia/treefs/data"
)

func (t *TreeFS) GetSize(ctx context.Context, path *data.Path) (size int64, err error) {
	defer t.observe("size", time.Now(), &err)

	if path.IsRoot() {
		return t.metadata.SumSize(ctx, path.FileSystemID, "")
	}
	return t.metadata.SumSize(ctx, path.FileSystemID, path.VirtualPath)
}
