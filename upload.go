package treefs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/mwantia/treefs/data"
	"github.com/mwantia/treefs/extract"
	"github.com/mwantia/treefs/metrics"
)

// Upload stages r, runs the extractors and stores the blob under the item's key.
// The size on the row only advances once the blob was written.
func (t *TreeFS) Upload(ctx context.Context, path *data.Path, contentType string, r io.Reader) (item *data.Item, err error) {
	defer t.observe("upload", time.Now(), &err)

	logger := t.log.Named("upload")
	if path.IsRoot() {
		return nil, fmt.Errorf("%w: '%s'", data.ErrIsRoot, path)
	}

	existing, err := t.metadata.ReadItemByPath(ctx, path)
	if err != nil && !errors.Is(err, data.ErrNotExist) {
		return nil, err
	}
	if existing != nil && existing.IsDirectory() {
		return nil, fmt.Errorf("%w: '%s' is a directory", data.ErrTypeMismatch, path)
	}

	staging, cleanup, err := t.stage(ctx, r, "treefs-upload-*")
	defer cleanup()
	if err != nil {
		return nil, err
	}

	if limit := t.maxObjectSize(); limit > 0 && staging.size > limit {
		return nil, fmt.Errorf("%w: %d bytes exceed %d", data.ErrTooLarge, staging.size, limit)
	}

	if contentType == "" {
		contentType = inferContentType(path.Name(), staging.path)
	}

	if existing == nil {
		item, err = t.addFile(ctx, path, contentType)
	} else {
		item = updatedFile(existing, path, contentType)
	}
	if err != nil {
		return nil, err
	}

	if err := t.extractor.Extract(ctx, item, staging.path); err != nil {
		logger.Warn("Failed to extract metadata for '%s': %v", path, err)
	}

	f, err := staging.open()
	if err != nil {
		return nil, fmt.Errorf("failed to open staging file: %w", err)
	}
	defer f.Close()

	if err := t.storage.PutObject(ctx, item.TenantID, item.Key(), item.ContentType, f, staging.size, true); err != nil {
		logger.Error("Failed to store '%s' as '%s' for tenant '%s': %v", path, item.Key(), data.TenantString(item.TenantID), err)
		return nil, err
	}

	item.SetSize(staging.size)
	item.ModifyTime = time.Now()
	if err := t.metadata.UpdateItem(ctx, item); err != nil {
		return nil, err
	}

	t.metrics.RecordBytes(metrics.DirectionIn, staging.size)
	logger.Debug("Uploaded %d bytes to '%s'", staging.size, path)

	return item, nil
}

func (t *TreeFS) addFile(ctx context.Context, path *data.Path, contentType string) (*data.Item, error) {
	parent, err := t.EnsureDirectory(ctx, path.Parent())
	if err != nil {
		return nil, err
	}

	item := data.NewFileItem(path, contentType)
	item.ParentID = idOf(parent)

	if err := t.metadata.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// updatedFile returns a copy of item carrying the new upload's fields. The id and
// storage key are kept, so the blob is replaced in place. Nothing is persisted
// until the blob was written.
func updatedFile(existing *data.Item, path *data.Path, contentType string) *data.Item {
	item := existing.Clone()
	if !item.IsFile() {
		item.StorageKey = data.StorageKeyOf(item.ID, path.Name())
		item.ExternalURL = ""
	}

	item.Type = data.ItemTypeFile
	item.Name = path.Name()
	item.VirtualPath = path.VirtualPath
	item.TenantID = data.CloneTenant(path.TenantID)
	item.ContentType = contentType
	item.ModifyTime = time.Now()

	return item
}

// inferContentType prefers the extension and falls back to sniffing the staged bytes.
func inferContentType(name, stagedPath string) string {
	if data.IsKnownExtension(name) {
		return data.GetMIMEType(name)
	}

	detected, err := extract.Detect(stagedPath)
	if err != nil || detected == "" {
		return data.ContentTypeApplicationStream
	}
	return detected
}
