package backend_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/mwantia/treefs/backend"
	"github.com/mwantia/treefs/backend/badger"
	"github.com/mwantia/treefs/backend/local"
	"github.com/mwantia/treefs/backend/memory"
	"github.com/mwantia/treefs/backend/postgres"
	"github.com/mwantia/treefs/backend/sqlite"
	"github.com/mwantia/treefs/data"
)

// TestMetadataFactory creates a new metadata backend instance for testing.
type TestMetadataFactory func(t *testing.T) (backend.VirtualMetadataBackend, error)

// TestStorageFactory creates a new object storage backend instance for testing.
type TestStorageFactory func(t *testing.T) (backend.VirtualObjectStorageBackend, error)

// GetTestMetadataFactories returns all metadata implementations to test.
// PostgreSQL joins when TREEFS_TEST_POSTGRES_DSN points at a scratch database.
func GetTestMetadataFactories() map[string]TestMetadataFactory {
	factories := map[string]TestMetadataFactory{
		"memory": func(t *testing.T) (backend.VirtualMetadataBackend, error) {
			return memory.NewMemoryBackend(""), nil
		},
		"sqlite": func(t *testing.T) (backend.VirtualMetadataBackend, error) {
			return sqlite.NewSQLiteBackend(":memory:", "")
		},
		"badger": func(t *testing.T) (backend.VirtualMetadataBackend, error) {
			return badger.NewBadgerBackend(t.Context(), t.TempDir())
		},
	}

	if dsn := os.Getenv("TREEFS_TEST_POSTGRES_DSN"); dsn != "" {
		factories["postgres"] = func(t *testing.T) (backend.VirtualMetadataBackend, error) {
			return postgres.NewPostgresBackend(t.Context(), dsn)
		}
	}

	return factories
}

// GetTestStorageFactories returns all object storage implementations that run without external services.
func GetTestStorageFactories() map[string]TestStorageFactory {
	return map[string]TestStorageFactory{
		"memory": func(t *testing.T) (backend.VirtualObjectStorageBackend, error) {
			return memory.NewMemoryBackend("tenant-{tenant}"), nil
		},
		"sqlite": func(t *testing.T) (backend.VirtualObjectStorageBackend, error) {
			return sqlite.NewSQLiteBackend(":memory:", "tenant-{tenant}")
		},
		"local": func(t *testing.T) (backend.VirtualObjectStorageBackend, error) {
			return local.NewLocalBackend(t.TempDir(), "tenant-{tenant}"), nil
		},
	}
}

func openMetadata(tst *testing.T, factory TestMetadataFactory) backend.VirtualMetadataBackend {
	tst.Helper()

	mb, err := factory(tst)
	if err != nil {
		tst.Fatalf("Backend init failed: %v", err)
	}
	if err := mb.Open(tst.Context()); err != nil {
		tst.Fatalf("Backend open failed: %v", err)
	}
	tst.Cleanup(func() {
		mb.Close(context.Background())
	})

	return mb
}

func openStorage(tst *testing.T, factory TestStorageFactory) backend.VirtualObjectStorageBackend {
	tst.Helper()

	sb, err := factory(tst)
	if err != nil {
		tst.Fatalf("Backend init failed: %v", err)
	}
	if err := sb.Open(tst.Context()); err != nil {
		tst.Fatalf("Backend open failed: %v", err)
	}
	tst.Cleanup(func() {
		sb.Close(context.Background())
	})

	return sb
}

// seedTree creates "/<fs>/a", "/<fs>/a/b.txt" (5 bytes), "/<fs>/a/c" and "/<fs>/a/c/d.txt" (7 bytes)
// plus the sibling "/<fs>/ab.txt" (11 bytes), all for tenant 1.
func seedTree(tst *testing.T, mb backend.VirtualMetadataBackend) (uuid.UUID, map[string]*data.Item) {
	tst.Helper()

	ctx := tst.Context()
	fsID := data.NewID()
	tenant := data.Tenant(1)
	items := make(map[string]*data.Item)

	create := func(rel string, itemType data.ItemType, parent *data.Item, size int64) {
		path := data.MustParsePath("/"+fsID.String()+"/"+rel, tenant)

		var item *data.Item
		switch itemType {
		case data.ItemTypeDirectory:
			item = data.NewDirectoryItem(path, nil)
		default:
			item = data.NewFileItem(path, data.GetMIMEType(rel))
			item.SetSize(size)
		}
		if parent != nil {
			item.ParentID = &parent.ID
		}

		if err := mb.CreateItem(ctx, item); err != nil {
			tst.Fatalf("CreateItem '%s' failed: %v", rel, err)
		}
		items[rel] = item
	}

	create("a", data.ItemTypeDirectory, nil, 0)
	create("a/b.txt", data.ItemTypeFile, items["a"], 5)
	create("a/c", data.ItemTypeDirectory, items["a"], 0)
	create("a/c/d.txt", data.ItemTypeFile, items["a/c"], 7)
	create("ab.txt", data.ItemTypeFile, nil, 11)

	return fsID, items
}

// TestAllMetadata_ItemLookup verifies lookups by path and id across all metadata backends.
func TestAllMetadata_ItemLookup(t *testing.T) {
	for name, factory := range GetTestMetadataFactories() {
		t.Run(name, func(tst *testing.T) {
			ctx := tst.Context()
			mb := openMetadata(tst, factory)
			fsID, items := seedTree(tst, mb)

			path := data.MustParsePath("/"+fsID.String()+"/a/b.txt", data.Tenant(1))
			got, err := mb.ReadItemByPath(ctx, path)
			if err != nil {
				tst.Fatalf("ReadItemByPath failed: %v", err)
			}
			if got.ID != items["a/b.txt"].ID {
				tst.Errorf("Expected id %s, got %s", items["a/b.txt"].ID, got.ID)
			}
			if got.Size() != 5 {
				tst.Errorf("Expected size 5, got %d", got.Size())
			}
			if got.StorageKey != items["a/b.txt"].StorageKey {
				tst.Errorf("Expected storage key %q, got %q", items["a/b.txt"].StorageKey, got.StorageKey)
			}

			// Another tenant must not see the item
			other := data.MustParsePath(path.VirtualPath, data.Tenant(2))
			if _, err := mb.ReadItemByPath(ctx, other); !errors.Is(err, data.ErrNotExist) {
				tst.Errorf("Expected ErrNotExist for other tenant, got %v", err)
			}

			byID, err := mb.ReadItem(ctx, items["a/c"].ID)
			if err != nil {
				tst.Fatalf("ReadItem failed: %v", err)
			}
			if byID.VirtualPath != items["a/c"].VirtualPath {
				tst.Errorf("Expected path %q, got %q", items["a/c"].VirtualPath, byID.VirtualPath)
			}

			if _, err := mb.ReadItem(ctx, data.NewID()); !errors.Is(err, data.ErrNotExist) {
				tst.Errorf("Expected ErrNotExist, got %v", err)
			}

			many, err := mb.ReadItems(ctx, []uuid.UUID{items["a"].ID, data.NewID(), items["ab.txt"].ID})
			if err != nil {
				tst.Fatalf("ReadItems failed: %v", err)
			}
			if len(many) != 2 {
				tst.Errorf("Expected 2 items, got %d", len(many))
			}

			ids, err := mb.ResolveIDs(ctx, []string{items["a/c/d.txt"].VirtualPath, "/missing"}, data.Tenant(1))
			if err != nil {
				tst.Fatalf("ResolveIDs failed: %v", err)
			}
			if len(ids) != 1 || ids[0] != items["a/c/d.txt"].ID {
				tst.Errorf("Expected only %s, got %v", items["a/c/d.txt"].ID, ids)
			}
		})
	}
}

// TestAllMetadata_Listings verifies children, descendant and root listings.
func TestAllMetadata_Listings(t *testing.T) {
	for name, factory := range GetTestMetadataFactories() {
		t.Run(name, func(tst *testing.T) {
			ctx := tst.Context()
			mb := openMetadata(tst, factory)
			fsID, items := seedTree(tst, mb)

			children, err := mb.ListChildren(ctx, items["a"].ID)
			if err != nil {
				tst.Fatalf("ListChildren failed: %v", err)
			}
			if len(children) != 2 {
				tst.Errorf("Expected 2 children, got %d", len(children))
			}

			// The sibling "ab.txt" shares the textual prefix but is no descendant
			descendants, err := mb.ListDescendants(ctx, items["a"])
			if err != nil {
				tst.Fatalf("ListDescendants failed: %v", err)
			}
			if len(descendants) != 3 {
				tst.Fatalf("Expected 3 descendants, got %d", len(descendants))
			}
			for _, item := range descendants {
				if item.ID == items["a"].ID || item.ID == items["ab.txt"].ID {
					tst.Errorf("Unexpected descendant %q", item.VirtualPath)
				}
			}

			roots, err := mb.ListRootChildren(ctx, fsID)
			if err != nil {
				tst.Fatalf("ListRootChildren failed: %v", err)
			}
			if len(roots) != 2 {
				tst.Errorf("Expected 2 root children, got %d", len(roots))
			}

			all, err := mb.ListFileSystemItems(ctx, fsID)
			if err != nil {
				tst.Fatalf("ListFileSystemItems failed: %v", err)
			}
			if len(all) != 5 {
				tst.Errorf("Expected 5 items, got %d", len(all))
			}
		})
	}
}

// TestAllMetadata_SumSize verifies size aggregation under a prefix.
func TestAllMetadata_SumSize(t *testing.T) {
	for name, factory := range GetTestMetadataFactories() {
		t.Run(name, func(tst *testing.T) {
			ctx := tst.Context()
			mb := openMetadata(tst, factory)
			fsID, items := seedTree(tst, mb)

			tests := map[string]int64{
				"":                          23,
				items["a"].VirtualPath:      12,
				items["a/c"].VirtualPath:    7,
				items["ab.txt"].VirtualPath: 11,
			}

			for prefix, expected := range tests {
				got, err := mb.SumSize(ctx, fsID, prefix)
				if err != nil {
					tst.Fatalf("SumSize '%s' failed: %v", prefix, err)
				}
				if got != expected {
					tst.Errorf("SumSize '%s': expected %d, got %d", prefix, expected, got)
				}
			}
		})
	}
}

// TestAllMetadata_UpdateAndDelete verifies rename through update, conflicts and deletes.
func TestAllMetadata_UpdateAndDelete(t *testing.T) {
	for name, factory := range GetTestMetadataFactories() {
		t.Run(name, func(tst *testing.T) {
			ctx := tst.Context()
			mb := openMetadata(tst, factory)
			fsID, items := seedTree(tst, mb)

			duplicate := data.NewFileItem(pathOf(items["ab.txt"]), "text/plain")
			if err := mb.CreateItem(ctx, duplicate); !errors.Is(err, data.ErrExist) {
				tst.Errorf("Expected ErrExist for duplicate path, got %v", err)
			}

			moved := items["ab.txt"].Clone()
			moved.VirtualPath = "/" + fsID.String() + "/renamed.txt"
			moved.Name = "renamed.txt"
			if err := mb.UpdateItem(ctx, moved); err != nil {
				tst.Fatalf("UpdateItem failed: %v", err)
			}

			if _, err := mb.ReadItemByPath(ctx, pathOf(items["ab.txt"])); !errors.Is(err, data.ErrNotExist) {
				tst.Errorf("Expected old path to be gone, got %v", err)
			}
			got, err := mb.ReadItemByPath(ctx, pathOf(moved))
			if err != nil {
				tst.Fatalf("ReadItemByPath after rename failed: %v", err)
			}
			if got.StorageKey != items["ab.txt"].StorageKey {
				tst.Errorf("Storage key changed on rename: %q", got.StorageKey)
			}

			clash := items["a/c/d.txt"].Clone()
			clash.VirtualPath = items["a/b.txt"].VirtualPath
			if err := mb.UpdateItem(ctx, clash); !errors.Is(err, data.ErrExist) {
				tst.Errorf("Expected ErrExist when updating onto a taken path, got %v", err)
			}

			if err := mb.DeleteItem(ctx, items["a/c/d.txt"]); err != nil {
				tst.Fatalf("DeleteItem failed: %v", err)
			}
			if err := mb.DeleteItem(ctx, items["a/c/d.txt"]); !errors.Is(err, data.ErrNotExist) {
				tst.Errorf("Expected ErrNotExist on second delete, got %v", err)
			}

			children, err := mb.ListChildren(ctx, items["a/c"].ID)
			if err != nil {
				tst.Fatalf("ListChildren failed: %v", err)
			}
			if len(children) != 0 {
				tst.Errorf("Expected no children, got %d", len(children))
			}
		})
	}
}

// TestAllMetadata_QueryItems verifies filters, sorting and pagination.
func TestAllMetadata_QueryItems(t *testing.T) {
	for name, factory := range GetTestMetadataFactories() {
		t.Run(name, func(tst *testing.T) {
			ctx := tst.Context()
			mb := openMetadata(tst, factory)
			fsID, items := seedTree(tst, mb)

			fileType := data.ItemTypeFile
			files, err := mb.QueryItems(ctx, &backend.ItemQuery{
				TenantID:     data.Tenant(1),
				FileSystemID: &fsID,
				FilterType:   &fileType,
				SortBy:       backend.SortBySize,
				SortOrder:    backend.SortDesc,
			})
			if err != nil {
				tst.Fatalf("QueryItems failed: %v", err)
			}
			if len(files) != 3 {
				tst.Fatalf("Expected 3 files, got %d", len(files))
			}
			if files[0].ID != items["ab.txt"].ID {
				tst.Errorf("Expected largest file first, got %q", files[0].VirtualPath)
			}

			prefixed, err := mb.QueryItems(ctx, &backend.ItemQuery{
				TenantID:   data.Tenant(1),
				PathPrefix: items["a"].VirtualPath,
			})
			if err != nil {
				tst.Fatalf("QueryItems failed: %v", err)
			}
			// Literal prefix, so "ab.txt" and "a" itself match as well
			if len(prefixed) != 5 {
				tst.Errorf("Expected 5 prefixed items, got %d", len(prefixed))
			}

			named, err := mb.QueryItems(ctx, &backend.ItemQuery{
				TenantID:     data.Tenant(1),
				NameContains: ".txt",
				ContentType:  "text/*",
				Limit:        1,
				Offset:       1,
			})
			if err != nil {
				tst.Fatalf("QueryItems failed: %v", err)
			}
			if len(named) != 1 || named[0].ID != items["a/c/d.txt"].ID {
				tst.Errorf("Expected second page to hold d.txt, got %v", named)
			}

			none, err := mb.QueryItems(ctx, &backend.ItemQuery{
				TenantID: data.Tenant(2),
			})
			if err != nil {
				tst.Fatalf("QueryItems failed: %v", err)
			}
			if len(none) != 0 {
				tst.Errorf("Expected no items for other tenant, got %d", len(none))
			}
		})
	}
}

// TestAllMetadata_FileSystems verifies the filesystem registry.
func TestAllMetadata_FileSystems(t *testing.T) {
	for name, factory := range GetTestMetadataFactories() {
		t.Run(name, func(tst *testing.T) {
			ctx := tst.Context()
			mb := openMetadata(tst, factory)

			photos := data.NewFileSystem("photos", data.Tenant(1))
			docs := data.NewFileSystem("docs", data.Tenant(1))
			shared := data.NewFileSystem("shared", nil)

			for _, fs := range []*data.FileSystem{photos, docs, shared} {
				if err := mb.CreateFileSystem(ctx, fs); err != nil {
					tst.Fatalf("CreateFileSystem failed: %v", err)
				}
			}
			if err := mb.CreateFileSystem(ctx, photos); !errors.Is(err, data.ErrExist) {
				tst.Errorf("Expected ErrExist, got %v", err)
			}

			own, err := mb.QueryFileSystems(ctx, &backend.FileSystemQuery{TenantID: data.Tenant(1)})
			if err != nil {
				tst.Fatalf("QueryFileSystems failed: %v", err)
			}
			if len(own) != 2 || own[0].Name != "docs" {
				tst.Errorf("Expected [docs photos], got %d entries", len(own))
			}

			all, err := mb.QueryFileSystems(ctx, &backend.FileSystemQuery{All: true})
			if err != nil {
				tst.Fatalf("QueryFileSystems failed: %v", err)
			}
			if len(all) != 3 {
				tst.Errorf("Expected 3 filesystems, got %d", len(all))
			}

			photos.Name = "pictures"
			if err := mb.UpdateFileSystem(ctx, photos); err != nil {
				tst.Fatalf("UpdateFileSystem failed: %v", err)
			}
			got, err := mb.ReadFileSystem(ctx, photos.ID)
			if err != nil {
				tst.Fatalf("ReadFileSystem failed: %v", err)
			}
			if got.Name != "pictures" {
				tst.Errorf("Expected renamed filesystem, got %q", got.Name)
			}

			if err := mb.DeleteFileSystem(ctx, docs.ID); err != nil {
				tst.Fatalf("DeleteFileSystem failed: %v", err)
			}
			if _, err := mb.ReadFileSystem(ctx, docs.ID); !errors.Is(err, data.ErrNotExist) {
				tst.Errorf("Expected ErrNotExist, got %v", err)
			}
		})
	}
}

// TestAllStorage_ObjectOperations verifies put, get, exists and delete across storage backends.
func TestAllStorage_ObjectOperations(t *testing.T) {
	for name, factory := range GetTestStorageFactories() {
		t.Run(name, func(tst *testing.T) {
			ctx := tst.Context()
			sb := openStorage(tst, factory)
			tenant := data.Tenant(7)

			buffer := []byte("hello world")
			if err := sb.PutObject(ctx, tenant, "object.txt", "text/plain", bytes.NewReader(buffer), int64(len(buffer)), true); err != nil {
				tst.Fatalf("PutObject failed: %v", err)
			}

			exists, err := sb.ExistsObject(ctx, tenant, "object.txt")
			if err != nil {
				tst.Fatalf("ExistsObject failed: %v", err)
			}
			if !exists {
				tst.Errorf("Expected object to exist")
			}

			// Without overwrite the existing content stays
			if err := sb.PutObject(ctx, tenant, "object.txt", "text/plain", strings.NewReader("other"), 5, false); err != nil {
				tst.Fatalf("PutObject without overwrite failed: %v", err)
			}

			r, err := sb.GetObject(ctx, tenant, "object.txt")
			if err != nil {
				tst.Fatalf("GetObject failed: %v", err)
			}
			got, err := io.ReadAll(r)
			r.Close()
			if err != nil {
				tst.Fatalf("ReadAll failed: %v", err)
			}
			if !bytes.Equal(got, buffer) {
				tst.Errorf("Expected %q, got %q", buffer, got)
			}

			// Buckets are separated per tenant
			if exists, _ := sb.ExistsObject(ctx, data.Tenant(8), "object.txt"); exists {
				tst.Errorf("Expected object to be invisible for another tenant")
			}

			if err := sb.DeleteObject(ctx, tenant, "object.txt"); err != nil {
				tst.Fatalf("DeleteObject failed: %v", err)
			}
			if _, err := sb.GetObject(ctx, tenant, "object.txt"); !errors.Is(err, data.ErrNotExist) {
				tst.Errorf("Expected ErrNotExist, got %v", err)
			}
		})
	}
}

// TestAllStorage_MissingTenant verifies that tenant buckets refuse calls without tenant.
func TestAllStorage_MissingTenant(t *testing.T) {
	for name, factory := range GetTestStorageFactories() {
		t.Run(name, func(tst *testing.T) {
			ctx := tst.Context()
			sb := openStorage(tst, factory)

			err := sb.PutObject(ctx, nil, "object.txt", "text/plain", strings.NewReader("x"), 1, true)
			if !errors.Is(err, data.ErrNotReady) {
				tst.Errorf("Expected ErrNotReady, got %v", err)
			}
			if _, err := sb.GetObject(ctx, nil, "object.txt"); !errors.Is(err, data.ErrNotReady) {
				tst.Errorf("Expected ErrNotReady, got %v", err)
			}
		})
	}
}

func pathOf(item *data.Item) *data.Path {
	return data.MustParsePath(item.VirtualPath, item.TenantID)
}
