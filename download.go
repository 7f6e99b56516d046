package treefs

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/mwantia/treefs/data"
	"github.com/mwantia/treefs/metrics"
)

func (t *TreeFS) Download(ctx context.Context, item *data.Item, w io.Writer) (n int64, err error) {
	defer t.observe("download", time.Now(), &err)

	if !item.IsFile() {
		return 0, fmt.Errorf("%w: '%s'", data.ErrNotFile, item.VirtualPath)
	}

	blob, err := t.storage.GetObject(ctx, item.TenantID, item.Key())
	if err != nil {
		return 0, err
	}
	defer blob.Close()

	n, err = io.Copy(w, &contextReader{ctx: ctx, r: blob})
	t.metrics.RecordBytes(metrics.DirectionOut, n)

	return n, err
}
