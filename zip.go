package treefs

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zip"
	"github.com/mwantia/treefs/data"
	"github.com/mwantia/treefs/metrics"
)

// CreateZip writes the selected items into a staged archive and uploads it
// as "<first item path>.zip". Links are skipped and directories contribute
// their files with paths relative to the filesystem.
func (t *TreeFS) CreateZip(ctx context.Context, ids []uuid.UUID) (item *data.Item, err error) {
	defer t.observe("zip", time.Now(), &err)

	logger := t.log.Named("zip")

	items := make([]*data.Item, 0, len(ids))
	for _, id := range ids {
		selected, err := t.metadata.ReadItem(ctx, id)
		if err != nil {
			return nil, err
		}
		items = append(items, selected)
	}
	if len(items) == 0 {
		return nil, data.ErrEmptySelection
	}

	first := items[0]
	destination, err := data.ParsePath(first.VirtualPath+".zip", first.TenantID)
	if err != nil {
		return nil, err
	}

	f, err := os.CreateTemp(t.stagingDir, "treefs-zip-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging file: %w", err)
	}
	defer func() {
		f.Close()
		if err := os.Remove(f.Name()); err != nil && !os.IsNotExist(err) {
			logger.Warn("Failed to remove staging file '%s': %v", f.Name(), err)
		}
	}()

	if err := t.writeZip(ctx, f, items); err != nil {
		logger.Error("Failed to archive %d items for '%s': %v", len(items), destination, err)
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	item, err = t.Upload(ctx, destination, data.ContentTypeApplicationZip, f)
	if err != nil {
		logger.Error("Failed to upload archive '%s': %v", destination, err)
		return nil, err
	}

	return item, nil
}

// ZipTo streams an archive of items into w.
func (t *TreeFS) ZipTo(ctx context.Context, w io.Writer, items ...*data.Item) (err error) {
	defer t.observe("zip", time.Now(), &err)

	if len(items) == 0 {
		return data.ErrEmptySelection
	}
	return t.writeZip(ctx, w, items)
}

func (t *TreeFS) writeZip(ctx context.Context, w io.Writer, items []*data.Item) error {
	zw := zip.NewWriter(w)
	written := make(map[uuid.UUID]bool)

	for _, item := range items {
		files, err := t.archiveFiles(ctx, item)
		if err != nil {
			zw.Close()
			return err
		}

		for _, file := range files {
			if err := ctx.Err(); err != nil {
				zw.Close()
				return err
			}
			if written[file.ID] {
				continue
			}

			if err := t.writeZipEntry(ctx, zw, file); err != nil {
				zw.Close()
				return err
			}
			written[file.ID] = true
		}
	}

	return zw.Close()
}

// archiveFiles expands a selected item into the files it contributes.
func (t *TreeFS) archiveFiles(ctx context.Context, item *data.Item) ([]*data.Item, error) {
	switch {
	case item.IsFile():
		return []*data.Item{item}, nil
	case item.IsDirectory():
		descendants, err := t.metadata.ListDescendants(ctx, item)
		if err != nil {
			return nil, err
		}

		files := make([]*data.Item, 0, len(descendants))
		for _, descendant := range descendants {
			if descendant.IsFile() {
				files = append(files, descendant)
			}
		}
		sort.Slice(files, func(i, j int) bool {
			return files[i].VirtualPath < files[j].VirtualPath
		})
		return files, nil
	default:
		return nil, nil
	}
}

func (t *TreeFS) writeZipEntry(ctx context.Context, zw *zip.Writer, file *data.Item) error {
	header := &zip.FileHeader{
		Name:     data.RelativePath(file.VirtualPath),
		Method:   zip.Deflate,
		Modified: file.ModifyTime,
	}

	entry, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to add '%s' to archive: %w", header.Name, err)
	}

	blob, err := t.storage.GetObject(ctx, file.TenantID, file.Key())
	if err != nil {
		return fmt.Errorf("failed to read '%s': %w", file.VirtualPath, err)
	}
	defer blob.Close()

	n, err := io.Copy(entry, blob)
	if err != nil {
		return fmt.Errorf("failed to archive '%s': %w", file.VirtualPath, err)
	}

	t.metrics.RecordBytes(metrics.DirectionOut, n)
	return nil
}

// Unzip uploads every file entry of the archive to "/<filesystem>/<entry name>"
// under the archive's tenant. Entries extracted before a failure remain.
func (t *TreeFS) Unzip(ctx context.Context, id uuid.UUID) (items []*data.Item, err error) {
	defer t.observe("unzip", time.Now(), &err)

	logger := t.log.Named("unzip")

	archive, err := t.metadata.ReadItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if !archive.IsFile() || data.BaseContentType(archive.ContentType) != data.ContentTypeApplicationZip {
		return nil, fmt.Errorf("%w: '%s' has content type '%s'", data.ErrNotArchive, archive.VirtualPath, archive.ContentType)
	}

	blob, err := t.storage.GetObject(ctx, archive.TenantID, archive.Key())
	if err != nil {
		return nil, err
	}
	staging, cleanup, err := t.stage(ctx, blob, "treefs-unzip-*")
	blob.Close()
	defer cleanup()
	if err != nil {
		return nil, err
	}

	zr, err := zip.OpenReader(staging.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", data.ErrArchive, err)
	}
	defer zr.Close()

	completed := make([]uuid.UUID, 0, len(zr.File))
	for _, entry := range zr.File {
		if err := ctx.Err(); err != nil {
			return items, data.NewPartialFailure("unzip", completed, uuid.Nil, err)
		}
		if entry.FileInfo().IsDir() {
			continue
		}

		item, err := t.unzipEntry(ctx, archive, entry)
		if err != nil {
			logger.Error("Failed to extract '%s' from '%s': %v", entry.Name, archive.VirtualPath, err)
			return items, data.NewPartialFailure("unzip", completed, uuid.Nil, err)
		}

		items = append(items, item)
		completed = append(completed, item.ID)
	}

	t.metrics.RecordItems("unzip", len(items))
	logger.Debug("Extracted %d entries from '%s'", len(items), archive.VirtualPath)

	return items, nil
}

func (t *TreeFS) unzipEntry(ctx context.Context, archive *data.Item, entry *zip.File) (*data.Item, error) {
	for _, segment := range strings.Split(entry.Name, "/") {
		if segment == ".." {
			return nil, fmt.Errorf("%w: entry '%s' leaves the filesystem", data.ErrArchive, entry.Name)
		}
	}

	path, err := data.ParsePath("/"+archive.FileSystemID.String()+"/"+entry.Name, archive.TenantID)
	if err != nil {
		return nil, fmt.Errorf("%w: entry '%s': %v", data.ErrArchive, entry.Name, err)
	}

	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: entry '%s': %v", data.ErrArchive, entry.Name, err)
	}
	defer rc.Close()

	return t.Upload(ctx, path, data.GetMIMEType(entry.Name), rc)
}
