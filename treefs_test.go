package treefs

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mwantia/treefs/backend"
	"github.com/mwantia/treefs/backend/memory"
	"github.com/mwantia/treefs/backend/sqlite"
	"github.com/mwantia/treefs/data"
	"github.com/mwantia/treefs/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFileSystemID = "11111111-1111-1111-1111-111111111111"

type recordingMetrics struct {
	mu         sync.Mutex
	operations map[string]int
	bytes      map[string]int64
	items      map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		operations: make(map[string]int),
		bytes:      make(map[string]int64),
		items:      make(map[string]int),
	}
}

func (m *recordingMetrics) RecordOperation(op string, _ time.Duration, _ error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.operations[op]++
}

func (m *recordingMetrics) RecordBytes(direction string, n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bytes[direction] += n
}

func (m *recordingMetrics) RecordItems(op string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[op] += n
}

type engineFactory func(t *testing.T, opts ...TreeFSOption) *TreeFS

func getTestEngineFactories() map[string]engineFactory {
	return map[string]engineFactory{
		"memory": func(t *testing.T, opts ...TreeFSOption) *TreeFS {
			mb := memory.NewMemoryBackend("tenant-{tenant}")
			return openEngine(t, mb, mb, opts...)
		},
		"sqlite": func(t *testing.T, opts ...TreeFSOption) *TreeFS {
			sb, err := sqlite.NewSQLiteBackend(":memory:", "tenant-{tenant}")
			require.NoError(t, err)
			return openEngine(t, sb, sb, opts...)
		},
	}
}

func openEngine(t *testing.T, metadata backend.VirtualMetadataBackend, storage backend.VirtualObjectStorageBackend, opts ...TreeFSOption) *TreeFS {
	t.Helper()

	opts = append([]TreeFSOption{
		WithLogger(log.Discard()),
		WithStagingDir(t.TempDir()),
	}, opts...)

	fs, err := New(metadata, storage, opts...)
	require.NoError(t, err)
	require.NoError(t, fs.Open(t.Context()))
	t.Cleanup(func() {
		fs.Close(context.Background())
	})

	return fs
}

func forEachEngine(t *testing.T, test func(t *testing.T, fs *TreeFS)) {
	for name, factory := range getTestEngineFactories() {
		t.Run(name, func(t *testing.T) {
			test(t, factory(t))
		})
	}
}

func testPath(t *testing.T, rel string) *data.Path {
	t.Helper()

	path, err := data.ParsePath("/"+testFileSystemID+"/"+rel, data.Tenant(1))
	require.NoError(t, err)
	return path
}

func upload(t *testing.T, fs *TreeFS, rel, content string) *data.Item {
	t.Helper()

	item, err := fs.Upload(t.Context(), testPath(t, rel), "", strings.NewReader(content))
	require.NoError(t, err)
	return item
}

func download(t *testing.T, fs *TreeFS, item *data.Item) string {
	t.Helper()

	var buf bytes.Buffer
	_, err := fs.Download(t.Context(), item, &buf)
	require.NoError(t, err)
	return buf.String()
}

func TestEnsureDirectory(t *testing.T) {
	forEachEngine(t, func(t *testing.T, fs *TreeFS) {
		ctx := t.Context()

		first, err := fs.EnsureDirectory(ctx, testPath(t, "a/b"))
		require.NoError(t, err)
		require.NotNil(t, first)
		assert.True(t, first.IsDirectory())

		second, err := fs.EnsureDirectory(ctx, testPath(t, "a/b"))
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		children, err := fs.List(ctx, data.MustParsePath("/"+testFileSystemID, data.Tenant(1)))
		require.NoError(t, err)
		assert.Len(t, children, 1)

		root, err := fs.EnsureDirectory(ctx, data.MustParsePath(testFileSystemID, data.Tenant(1)))
		require.NoError(t, err)
		assert.Nil(t, root)
	})
}

func TestEnsureDirectory_ThroughFile(t *testing.T) {
	forEachEngine(t, func(t *testing.T, fs *TreeFS) {
		upload(t, fs, "a.txt", "content")

		_, err := fs.EnsureDirectory(t.Context(), testPath(t, "a.txt/b"))
		assert.ErrorIs(t, err, data.ErrTypeMismatch)
	})
}

func TestUpload_ParentChain(t *testing.T) {
	forEachEngine(t, func(t *testing.T, fs *TreeFS) {
		ctx := t.Context()

		file := upload(t, fs, "a/b/c.txt", "hello")

		a, err := fs.Find(ctx, testPath(t, "a"))
		require.NoError(t, err)
		b, err := fs.Find(ctx, testPath(t, "a/b"))
		require.NoError(t, err)

		assert.Nil(t, a.ParentID)
		require.NotNil(t, b.ParentID)
		assert.Equal(t, a.ID, *b.ParentID)
		require.NotNil(t, file.ParentID)
		assert.Equal(t, b.ID, *file.ParentID)

		found, err := fs.Find(ctx, testPath(t, "a/b/c.txt"))
		require.NoError(t, err)
		require.NotNil(t, found.SizeInBytes)
		assert.Equal(t, int64(5), *found.SizeInBytes)
		assert.Equal(t, data.ContentTypeTextPlain, found.ContentType)
		assert.Equal(t, file.ID.String()+".txt", found.StorageKey)
	})
}

func TestUpload_UpdateKeepsKey(t *testing.T) {
	forEachEngine(t, func(t *testing.T, fs *TreeFS) {
		first := upload(t, fs, "doc.txt", "first")
		second := upload(t, fs, "doc.txt", "second version")

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, first.Key(), second.Key())
		assert.Equal(t, int64(14), second.Size())
		assert.Equal(t, "second version", download(t, fs, second))
	})
}

func TestUpload_ContentType(t *testing.T) {
	forEachEngine(t, func(t *testing.T, fs *TreeFS) {
		ctx := t.Context()

		explicit, err := fs.Upload(ctx, testPath(t, "notes.txt"), data.ContentTypeTextMarkdown, strings.NewReader("# notes"))
		require.NoError(t, err)
		assert.Equal(t, data.ContentTypeTextMarkdown, explicit.ContentType)

		sniffed := upload(t, fs, "README", "plain words")
		assert.Equal(t, data.ContentTypeTextPlain, sniffed.ContentType)
		assert.Equal(t, data.ContentTypeTextPlain, sniffed.MetaProperties.Get(data.MetaDetectedContentType, ""))
	})
}

func TestUpload_ImageProperties(t *testing.T) {
	forEachEngine(t, func(t *testing.T, fs *TreeFS) {
		img := image.NewRGBA(image.Rect(0, 0, 4, 3))
		img.Set(1, 1, color.RGBA{R: 255, A: 255})

		var buf bytes.Buffer
		require.NoError(t, png.Encode(&buf, img))

		item, err := fs.Upload(t.Context(), testPath(t, "pixel.png"), "", &buf)
		require.NoError(t, err)

		assert.Equal(t, data.ContentTypeImagePNG, item.ContentType)
		assert.Equal(t, 4, item.MetaProperties.Get(data.MetaImageWidth, 0))
		assert.Equal(t, 3, item.MetaProperties.Get(data.MetaImageHeight, 0))
		assert.Equal(t, "4x3", item.MetaProperties.Get(data.MetaImageResolution, ""))
	})
}

func TestUpload_Errors(t *testing.T) {
	forEachEngine(t, func(t *testing.T, fs *TreeFS) {
		ctx := t.Context()

		_, err := fs.Upload(ctx, data.MustParsePath(testFileSystemID, data.Tenant(1)), "", strings.NewReader("x"))
		assert.ErrorIs(t, err, data.ErrIsRoot)

		_, err = fs.EnsureDirectory(ctx, testPath(t, "dir"))
		require.NoError(t, err)
		_, err = fs.Upload(ctx, testPath(t, "dir"), "", strings.NewReader("x"))
		assert.ErrorIs(t, err, data.ErrTypeMismatch)

		noTenant := data.MustParsePath(testFileSystemID+"/orphan.txt", nil)
		_, err = fs.Upload(ctx, noTenant, "", strings.NewReader("x"))
		assert.ErrorIs(t, err, data.ErrNotReady)

		orphan, err := fs.Find(ctx, noTenant)
		require.NoError(t, err)
		assert.Nil(t, orphan.SizeInBytes)
	})
}

func TestCreateLink(t *testing.T) {
	forEachEngine(t, func(t *testing.T, fs *TreeFS) {
		ctx := t.Context()

		link, err := fs.CreateLink(ctx, testPath(t, "links/site"), "https://example.com")
		require.NoError(t, err)
		assert.True(t, link.IsExternalLink())
		assert.Equal(t, data.ContentTypeTextURIList, link.ContentType)
		assert.NotNil(t, link.ParentID)

		_, err = fs.CreateLink(ctx, testPath(t, "links/site"), "https://example.org")
		assert.ErrorIs(t, err, data.ErrConflict)

		found, err := fs.Find(ctx, testPath(t, "links/site"))
		require.NoError(t, err)
		assert.Equal(t, "https://example.com", found.ExternalURL)

		var buf bytes.Buffer
		_, err = fs.Download(ctx, found, &buf)
		assert.ErrorIs(t, err, data.ErrNotFile)
	})
}

func TestGetSize(t *testing.T) {
	forEachEngine(t, func(t *testing.T, fs *TreeFS) {
		ctx := t.Context()

		upload(t, fs, "a/one.txt", "12345")
		upload(t, fs, "a/b/two.txt", "1234567")
		upload(t, fs, "ab.txt", "12345678901")

		total, err := fs.GetSize(ctx, data.MustParsePath(testFileSystemID, data.Tenant(1)))
		require.NoError(t, err)
		assert.Equal(t, int64(23), total)

		dir, err := fs.GetSize(ctx, testPath(t, "a"))
		require.NoError(t, err)
		assert.Equal(t, int64(12), dir)

		file, err := fs.GetSize(ctx, testPath(t, "ab.txt"))
		require.NoError(t, err)
		assert.Equal(t, int64(11), file)
	})
}

func TestMove_File(t *testing.T) {
	forEachEngine(t, func(t *testing.T, fs *TreeFS) {
		ctx := t.Context()

		original := upload(t, fs, "src/file.txt", "payload")

		moved, err := fs.Move(ctx, testPath(t, "src/file.txt"), testPath(t, "dst/renamed.txt"), false)
		require.NoError(t, err)
		require.NotNil(t, moved)
		assert.Equal(t, original.ID, moved.ID)
		assert.Equal(t, "renamed.txt", moved.Name)
		assert.Equal(t, original.Key(), moved.Key())

		dst, err := fs.Find(ctx, testPath(t, "dst"))
		require.NoError(t, err)
		assert.Equal(t, dst.ID, *moved.ParentID)

		_, err = fs.Find(ctx, testPath(t, "src/file.txt"))
		assert.ErrorIs(t, err, data.ErrNotExist)
		assert.Equal(t, "payload", download(t, fs, moved))
	})
}

func TestMove_StateMachine(t *testing.T) {
	forEachEngine(t, func(t *testing.T, fs *TreeFS) {
		ctx := t.Context()

		a := upload(t, fs, "a.txt", "aaa")
		b := upload(t, fs, "b.txt", "bbbb")
		_, err := fs.EnsureDirectory(ctx, testPath(t, "dir"))
		require.NoError(t, err)

		same, err := fs.Move(ctx, testPath(t, "a.txt"), testPath(t, "/a.txt/"), false)
		require.NoError(t, err)
		assert.Nil(t, same)

		_, err = fs.Move(ctx, testPath(t, "missing.txt"), testPath(t, "c.txt"), false)
		assert.ErrorIs(t, err, data.ErrNotExist)

		_, err = fs.Move(ctx, testPath(t, "a.txt"), testPath(t, "b.txt"), false)
		assert.ErrorIs(t, err, data.ErrConflict)

		_, err = fs.Move(ctx, testPath(t, "a.txt"), testPath(t, "dir"), true)
		assert.ErrorIs(t, err, data.ErrTypeMismatch)

		foundA, err := fs.Find(ctx, testPath(t, "a.txt"))
		require.NoError(t, err)
		assert.Equal(t, a.Size(), foundA.Size())
		foundB, err := fs.Find(ctx, testPath(t, "b.txt"))
		require.NoError(t, err)
		assert.Equal(t, b.Size(), foundB.Size())

		moved, err := fs.Move(ctx, testPath(t, "a.txt"), testPath(t, "b.txt"), true)
		require.NoError(t, err)
		assert.Equal(t, a.ID, moved.ID)

		_, err = fs.FindByID(ctx, b.ID)
		assert.ErrorIs(t, err, data.ErrNotExist)

		exists, err := fs.storage.ExistsObject(ctx, b.TenantID, b.Key())
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestMove_Directory(t *testing.T) {
	forEachEngine(t, func(t *testing.T, fs *TreeFS) {
		ctx := t.Context()

		upload(t, fs, "dirA/x.txt", "x")
		upload(t, fs, "dirA/sub/y.txt", "yy")
		upload(t, fs, "dirB/old.txt", "old")

		_, err := fs.Move(ctx, testPath(t, "dirA"), testPath(t, "dirA/sub/inner"), true)
		assert.ErrorIs(t, err, data.ErrConflict)

		moved, err := fs.Move(ctx, testPath(t, "dirA"), testPath(t, "dirB"), true)
		require.NoError(t, err)
		require.NotNil(t, moved)

		_, err = fs.Find(ctx, testPath(t, "dirB/old.txt"))
		assert.ErrorIs(t, err, data.ErrNotExist)

		all, err := fs.Filter(ctx, "", "/"+testFileSystemID+"/", data.Tenant(1))
		require.NoError(t, err)

		paths := make([]string, 0, len(all))
		for _, item := range all {
			paths = append(paths, data.RelativePath(item.VirtualPath))
		}
		assert.Equal(t, []string{"dirB", "dirB/sub", "dirB/sub/y.txt", "dirB/x.txt"}, paths)

		sub, err := fs.Find(ctx, testPath(t, "dirB/sub"))
		require.NoError(t, err)
		assert.Equal(t, moved.ID, *sub.ParentID)

		y, err := fs.Find(ctx, testPath(t, "dirB/sub/y.txt"))
		require.NoError(t, err)
		assert.Equal(t, sub.ID, *y.ParentID)
		assert.Equal(t, "yy", download(t, fs, y))
	})
}

func TestMove_CanceledContext(t *testing.T) {
	forEachEngine(t, func(t *testing.T, fs *TreeFS) {
		upload(t, fs, "dir/x.txt", "x")

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		_, err := fs.Move(ctx, testPath(t, "dir"), testPath(t, "other"), false)
		require.ErrorIs(t, err, context.Canceled)

		var partial *data.PartialFailure
		assert.False(t, errors.As(err, &partial))

		dir, err := fs.Find(t.Context(), testPath(t, "dir"))
		require.NoError(t, err)
		child, err := fs.Find(t.Context(), testPath(t, "dir/x.txt"))
		require.NoError(t, err)
		assert.Equal(t, dir.ID, *child.ParentID)

		_, err = fs.Find(t.Context(), testPath(t, "other"))
		assert.ErrorIs(t, err, data.ErrNotExist)
	})
}

func TestMove_CanceledContextKeepsDestination(t *testing.T) {
	forEachEngine(t, func(t *testing.T, fs *TreeFS) {
		upload(t, fs, "a.txt", "a")
		target := upload(t, fs, "b.txt", "b")

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		_, err := fs.Move(ctx, testPath(t, "a.txt"), testPath(t, "b.txt"), true)
		require.ErrorIs(t, err, context.Canceled)

		assert.Equal(t, "b", download(t, fs, target))
		_, err = fs.Find(t.Context(), testPath(t, "a.txt"))
		assert.NoError(t, err)
	})
}

func TestDelete_Directory(t *testing.T) {
	forEachEngine(t, func(t *testing.T, fs *TreeFS) {
		ctx := t.Context()

		x := upload(t, fs, "dir/x.txt", "x")
		y := upload(t, fs, "dir/sub/y.txt", "y")
		keep := upload(t, fs, "dir2/z.txt", "z")

		dir, err := fs.Find(ctx, testPath(t, "dir"))
		require.NoError(t, err)

		id, err := fs.Delete(ctx, testPath(t, "dir"))
		require.NoError(t, err)
		assert.Equal(t, dir.ID, id)

		remaining, err := fs.GetMany(ctx, []uuid.UUID{dir.ID, x.ID, y.ID, keep.ID})
		require.NoError(t, err)
		require.Len(t, remaining, 1)
		assert.Equal(t, keep.ID, remaining[0].ID)

		for _, file := range []*data.Item{x, y} {
			exists, err := fs.storage.ExistsObject(ctx, file.TenantID, file.Key())
			require.NoError(t, err)
			assert.False(t, exists)
		}

		_, err = fs.Delete(ctx, testPath(t, "dir"))
		assert.ErrorIs(t, err, data.ErrNotExist)

		_, err = fs.Delete(ctx, data.MustParsePath(testFileSystemID, data.Tenant(1)))
		assert.ErrorIs(t, err, data.ErrIsRoot)
	})
}

func TestDelete_CanceledContext(t *testing.T) {
	forEachEngine(t, func(t *testing.T, fs *TreeFS) {
		upload(t, fs, "dir/x.txt", "x")
		dir, err := fs.Find(t.Context(), testPath(t, "dir"))
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		_, err = fs.DeleteByID(ctx, dir.ID)
		assert.ErrorIs(t, err, context.Canceled)

		_, err = fs.FindByID(t.Context(), dir.ID)
		assert.NoError(t, err)
	})
}

func TestZip_RoundTrip(t *testing.T) {
	forEachEngine(t, func(t *testing.T, fs *TreeFS) {
		ctx := t.Context()

		a := upload(t, fs, "docs/a.txt", "alpha")
		b := upload(t, fs, "docs/deep/b.txt", "bravo")
		_, err := fs.CreateLink(ctx, testPath(t, "docs/link"), "https://example.com")
		require.NoError(t, err)

		archive, err := fs.CreateZip(ctx, []uuid.UUID{a.ID, b.ID})
		require.NoError(t, err)
		assert.Equal(t, a.VirtualPath+".zip", archive.VirtualPath)
		assert.Equal(t, data.ContentTypeApplicationZip, archive.ContentType)

		_, err = fs.Delete(ctx, testPath(t, "docs/a.txt"))
		require.NoError(t, err)
		_, err = fs.Delete(ctx, testPath(t, "docs/deep"))
		require.NoError(t, err)

		items, err := fs.Unzip(ctx, archive.ID)
		require.NoError(t, err)
		require.Len(t, items, 2)

		restoredA, err := fs.Find(ctx, testPath(t, "docs/a.txt"))
		require.NoError(t, err)
		assert.Equal(t, "alpha", download(t, fs, restoredA))

		restoredB, err := fs.Find(ctx, testPath(t, "docs/deep/b.txt"))
		require.NoError(t, err)
		assert.Equal(t, "bravo", download(t, fs, restoredB))
	})
}

func TestZip_Directory(t *testing.T) {
	forEachEngine(t, func(t *testing.T, fs *TreeFS) {
		ctx := t.Context()

		upload(t, fs, "photos/1.txt", "one")
		upload(t, fs, "photos/2024/2.txt", "two")
		_, err := fs.CreateLink(ctx, testPath(t, "photos/album"), "https://example.com")
		require.NoError(t, err)

		dir, err := fs.Find(ctx, testPath(t, "photos"))
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, fs.ZipTo(ctx, &buf, dir))

		archive, err := fs.Upload(ctx, testPath(t, "copy.zip"), "", &buf)
		require.NoError(t, err)
		assert.Equal(t, data.ContentTypeApplicationZip, archive.ContentType)

		_, err = fs.Delete(ctx, testPath(t, "photos"))
		require.NoError(t, err)

		items, err := fs.Unzip(ctx, archive.ID)
		require.NoError(t, err)
		assert.Len(t, items, 2)

		_, err = fs.Find(ctx, testPath(t, "photos/album"))
		assert.ErrorIs(t, err, data.ErrNotExist)

		size, err := fs.GetSize(ctx, testPath(t, "photos"))
		require.NoError(t, err)
		assert.Equal(t, int64(6), size)
	})
}

func TestZip_Errors(t *testing.T) {
	forEachEngine(t, func(t *testing.T, fs *TreeFS) {
		ctx := t.Context()

		_, err := fs.CreateZip(ctx, nil)
		assert.ErrorIs(t, err, data.ErrEmptySelection)

		text := upload(t, fs, "plain.txt", "not an archive")
		_, err = fs.Unzip(ctx, text.ID)
		assert.ErrorIs(t, err, data.ErrNotArchive)

		broken, err := fs.Upload(ctx, testPath(t, "broken.zip"), data.ContentTypeApplicationZip, strings.NewReader("garbage"))
		require.NoError(t, err)
		_, err = fs.Unzip(ctx, broken.ID)
		assert.ErrorIs(t, err, data.ErrArchive)
	})
}

func TestUnzip_CanceledContext(t *testing.T) {
	forEachEngine(t, func(t *testing.T, fs *TreeFS) {
		a := upload(t, fs, "a.txt", "alpha")
		archive, err := fs.CreateZip(t.Context(), []uuid.UUID{a.ID})
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		items, err := fs.Unzip(ctx, archive.ID)
		assert.True(t, errors.Is(err, context.Canceled))
		assert.Empty(t, items)
	})
}

func TestList(t *testing.T) {
	forEachEngine(t, func(t *testing.T, fs *TreeFS) {
		ctx := t.Context()

		file := upload(t, fs, "dir/x.txt", "x")
		upload(t, fs, "dir/y.txt", "y")
		upload(t, fs, "top.txt", "t")

		root, err := fs.List(ctx, data.MustParsePath(testFileSystemID, data.Tenant(1)))
		require.NoError(t, err)
		assert.Len(t, root, 2)

		other, err := fs.List(ctx, data.MustParsePath(testFileSystemID, data.Tenant(2)))
		require.NoError(t, err)
		assert.Empty(t, other)

		children, err := fs.List(ctx, testPath(t, "dir"))
		require.NoError(t, err)
		assert.Len(t, children, 2)

		_, err = fs.ListByID(ctx, file.ID)
		assert.ErrorIs(t, err, data.ErrNotDirectory)
	})
}

func TestFilterAndGetIDs(t *testing.T) {
	forEachEngine(t, func(t *testing.T, fs *TreeFS) {
		ctx := t.Context()

		report := upload(t, fs, "docs/report.pdf", "pdf")
		upload(t, fs, "docs/notes.txt", "notes")
		upload(t, fs, "other/report.txt", "txt")

		found, err := fs.Filter(ctx, "report", "/"+testFileSystemID+"/docs", data.Tenant(1))
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, report.ID, found[0].ID)

		ids, err := fs.GetIDs(ctx, []string{testFileSystemID + "/docs/report.pdf", "/" + testFileSystemID + "/missing"}, data.Tenant(1))
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{report.ID}, ids)

		_, err = fs.GetIDs(ctx, []string{"not-a-path"}, data.Tenant(1))
		assert.ErrorIs(t, err, data.ErrInvalidPath)
	})
}

func TestFileSystems(t *testing.T) {
	forEachEngine(t, func(t *testing.T, fs *TreeFS) {
		ctx := t.Context()

		photos, err := fs.CreateFileSystem(ctx, "photos", data.Tenant(1))
		require.NoError(t, err)
		_, err = fs.CreateFileSystem(ctx, "documents", data.Tenant(1))
		require.NoError(t, err)
		_, err = fs.CreateFileSystem(ctx, "shared", data.Tenant(2))
		require.NoError(t, err)

		list, err := fs.GetFileSystems(ctx, data.Tenant(1))
		require.NoError(t, err)
		assert.Len(t, list, 2)

		all, err := fs.GetAllFileSystems(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 3)

		filtered, err := fs.FilterFileSystems(ctx, "pho", data.Tenant(1))
		require.NoError(t, err)
		require.Len(t, filtered, 1)
		assert.Equal(t, photos.ID, filtered[0].ID)

		renamed, err := fs.RenameFileSystem(ctx, photos.ID, "pictures")
		require.NoError(t, err)
		assert.Equal(t, "pictures", renamed.Name)

		file, err := fs.Upload(ctx, data.MustParsePath(photos.ID.String()+"/2024/cat.txt", photos.TenantID), "", strings.NewReader("meow"))
		require.NoError(t, err)

		id, err := fs.DeleteFileSystem(ctx, photos.ID)
		require.NoError(t, err)
		assert.Equal(t, photos.ID, id)

		_, err = fs.GetFileSystem(ctx, photos.ID)
		assert.ErrorIs(t, err, data.ErrNotExist)
		_, err = fs.FindByID(ctx, file.ID)
		assert.ErrorIs(t, err, data.ErrNotExist)

		exists, err := fs.storage.ExistsObject(ctx, file.TenantID, file.Key())
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestMetricsRecorded(t *testing.T) {
	recorder := newRecordingMetrics()
	mb := memory.NewMemoryBackend("tenant-{tenant}")
	fs := openEngine(t, mb, mb, WithMetrics(recorder))

	item := upload(t, fs, "a/b.txt", "12345")
	download(t, fs, item)
	_, err := fs.Delete(t.Context(), testPath(t, "a"))
	require.NoError(t, err)

	assert.Equal(t, 1, recorder.operations["upload"])
	assert.Equal(t, int64(5), recorder.bytes["in"])
	assert.Equal(t, int64(5), recorder.bytes["out"])
	assert.Equal(t, 2, recorder.items["delete"])
}

func TestNew_RequiresBackends(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err)
}

type limitedStorage struct {
	*memory.MemoryBackend
	capabilities *backend.VirtualBackendCapabilities
}

func (l *limitedStorage) GetCapabilities() *backend.VirtualBackendCapabilities {
	return l.capabilities
}

func TestOpen_RequiresCapabilities(t *testing.T) {
	mb := memory.NewMemoryBackend("tenant-{tenant}")
	storage := &limitedStorage{
		MemoryBackend: memory.NewMemoryBackend("tenant-{tenant}"),
		capabilities: &backend.VirtualBackendCapabilities{
			Capabilities: []backend.VirtualBackendCapability{backend.CapabilityMetadata},
		},
	}

	fs, err := New(mb, storage, WithLogger(log.Discard()), WithStagingDir(t.TempDir()))
	require.NoError(t, err)
	assert.ErrorIs(t, fs.Open(t.Context()), data.ErrBackendUnsupported)
}

func TestUpload_TooLarge(t *testing.T) {
	mb := memory.NewMemoryBackend("tenant-{tenant}")
	storage := &limitedStorage{
		MemoryBackend: memory.NewMemoryBackend("tenant-{tenant}"),
		capabilities: &backend.VirtualBackendCapabilities{
			Capabilities:  []backend.VirtualBackendCapability{backend.CapabilityObjectStorage},
			MaxObjectSize: 4,
		},
	}
	fs := openEngine(t, mb, storage)

	_, err := fs.Upload(t.Context(), testPath(t, "big.bin"), "", strings.NewReader("12345"))
	assert.ErrorIs(t, err, data.ErrTooLarge)

	_, err = fs.Find(t.Context(), testPath(t, "big.bin"))
	assert.ErrorIs(t, err, data.ErrNotExist)

	item := upload(t, fs, "small.bin", "1234")
	assert.Equal(t, "1234", download(t, fs, item))
}

type failingStorage struct {
	*memory.MemoryBackend
}

func (f *failingStorage) PutObject(context.Context, *int64, string, string, io.Reader, int64, bool) error {
	return errPutFailed
}

var errPutFailed = errors.New("put failed")

func TestUpload_FailedPutKeepsRow(t *testing.T) {
	mb := memory.NewMemoryBackend("tenant-{tenant}")
	fs := openEngine(t, mb, mb)
	ctx := t.Context()

	doc := upload(t, fs, "doc.txt", "plain")
	link, err := fs.CreateLink(ctx, testPath(t, "ln"), "https://example.com")
	require.NoError(t, err)

	failing, err := New(mb, &failingStorage{MemoryBackend: mb}, WithLogger(log.Discard()), WithStagingDir(t.TempDir()))
	require.NoError(t, err)

	_, err = failing.Upload(ctx, testPath(t, "doc.txt"), "application/json", strings.NewReader(`{"a":1}`))
	require.ErrorIs(t, err, errPutFailed)

	reloaded, err := fs.FindByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "text/plain", reloaded.ContentType)
	assert.Equal(t, int64(5), reloaded.Size())
	assert.Equal(t, "plain", download(t, fs, reloaded))

	_, err = failing.Upload(ctx, testPath(t, "ln"), "", strings.NewReader("content"))
	require.ErrorIs(t, err, errPutFailed)

	reloaded, err = fs.FindByID(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, data.ItemTypeExternalLink, reloaded.Type)
	assert.Equal(t, "https://example.com", reloaded.ExternalURL)
	assert.Equal(t, link.StorageKey, reloaded.StorageKey)
}
