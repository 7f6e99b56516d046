package badger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/mwantia/treefs/backend"
	"github.com/mwantia/treefs/data"
)

func (bb *BadgerBackend) CreateFileSystem(ctx context.Context, fs *data.FileSystem) error {
	if fs.CreateTime.IsZero() {
		fs.CreateTime = time.Now()
	}
	if fs.ModifyTime.IsZero() {
		fs.ModifyTime = fs.CreateTime
	}

	return bb.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(keyFileSystem(fs.ID)); err == nil {
			return data.ErrExist
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		return setJSON(txn, keyFileSystem(fs.ID), fs)
	})
}

func (bb *BadgerBackend) ReadFileSystem(ctx context.Context, id uuid.UUID) (*data.FileSystem, error) {
	var fs data.FileSystem
	err := bb.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, keyFileSystem(id), &fs)
	})
	if err != nil {
		return nil, err
	}

	return &fs, nil
}

func (bb *BadgerBackend) UpdateFileSystem(ctx context.Context, fs *data.FileSystem) error {
	fs.ModifyTime = time.Now()

	return bb.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(keyFileSystem(fs.ID)); errors.Is(err, badger.ErrKeyNotFound) {
			return data.ErrNotExist
		} else if err != nil {
			return err
		}

		return setJSON(txn, keyFileSystem(fs.ID), fs)
	})
}

func (bb *BadgerBackend) DeleteFileSystem(ctx context.Context, id uuid.UUID) error {
	return bb.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(keyFileSystem(id)); errors.Is(err, badger.ErrKeyNotFound) {
			return data.ErrNotExist
		} else if err != nil {
			return err
		}

		return txn.Delete(keyFileSystem(id))
	})
}

func (bb *BadgerBackend) QueryFileSystems(ctx context.Context, query *backend.FileSystemQuery) ([]*data.FileSystem, error) {
	result := make([]*data.FileSystem, 0)

	err := bb.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixFileSystem)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var fs data.FileSystem
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &fs)
			}); err != nil {
				return err
			}
			if query.Match(&fs) {
				result = append(result, &fs)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	backend.SortFileSystems(result)
	return result, nil
}

func (bb *BadgerBackend) ReadItemByPath(ctx context.Context, path *data.Path) (*data.Item, error) {
	var item *data.Item
	err := bb.db.View(func(txn *badger.Txn) error {
		id, err := getID(txn, keyPath(path.TenantID, path.VirtualPath))
		if err != nil {
			return err
		}

		item, err = readItem(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if item.FileSystemID != path.FileSystemID {
		return nil, data.ErrNotExist
	}

	return item, nil
}

func (bb *BadgerBackend) ReadItem(ctx context.Context, id uuid.UUID) (*data.Item, error) {
	var item *data.Item
	err := bb.db.View(func(txn *badger.Txn) error {
		var err error
		item, err = readItem(txn, id)
		return err
	})

	return item, err
}

func (bb *BadgerBackend) ReadItems(ctx context.Context, ids []uuid.UUID) ([]*data.Item, error) {
	result := make([]*data.Item, 0, len(ids))
	err := bb.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			item, err := readItem(txn, id)
			if errors.Is(err, data.ErrNotExist) {
				continue
			}
			if err != nil {
				return err
			}
			result = append(result, item)
		}
		return nil
	})

	return result, err
}

func (bb *BadgerBackend) ResolveIDs(ctx context.Context, virtualPaths []string, tenantID *int64) ([]uuid.UUID, error) {
	result := make([]uuid.UUID, 0, len(virtualPaths))
	err := bb.db.View(func(txn *badger.Txn) error {
		for _, virtualPath := range virtualPaths {
			id, err := getID(txn, keyPath(tenantID, virtualPath))
			if errors.Is(err, data.ErrNotExist) {
				continue
			}
			if err != nil {
				return err
			}
			result = append(result, id)
		}
		return nil
	})

	return result, err
}

func (bb *BadgerBackend) ListChildren(ctx context.Context, parentID uuid.UUID) ([]*data.Item, error) {
	return bb.scanIndex(ctx, keyChildPrefix(parentID))
}

func (bb *BadgerBackend) ListDescendants(ctx context.Context, item *data.Item) ([]*data.Item, error) {
	return bb.scanIndex(ctx, keyPath(item.TenantID, item.VirtualPath+"/"))
}

func (bb *BadgerBackend) ListRootChildren(ctx context.Context, fsID uuid.UUID) ([]*data.Item, error) {
	return bb.scanIndex(ctx, keyRootPrefix(fsID))
}

func (bb *BadgerBackend) ListFileSystemItems(ctx context.Context, fsID uuid.UUID) ([]*data.Item, error) {
	return bb.scanIndex(ctx, keyMemberPrefix(fsID))
}

func (bb *BadgerBackend) QueryItems(ctx context.Context, query *backend.ItemQuery) ([]*data.Item, error) {
	prefix := []byte(prefixItem)
	if query.FileSystemID != nil {
		prefix = keyMemberPrefix(*query.FileSystemID)
	}

	items, err := bb.scanIndex(ctx, prefix)
	if err != nil {
		return nil, err
	}

	result := make([]*data.Item, 0, len(items))
	for _, item := range items {
		if query.Match(item) {
			result = append(result, item)
		}
	}

	return backend.ApplyQuery(result, query), nil
}

func (bb *BadgerBackend) CreateItem(ctx context.Context, item *data.Item) error {
	if item.CreateTime.IsZero() {
		item.CreateTime = time.Now()
	}
	if item.ModifyTime.IsZero() {
		item.ModifyTime = item.CreateTime
	}

	return bb.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(keyItem(item.ID)); err == nil {
			return data.ErrExist
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if _, err := txn.Get(keyPath(item.TenantID, item.VirtualPath)); err == nil {
			return data.ErrExist
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		return writeItem(txn, item)
	})
}

func (bb *BadgerBackend) UpdateItem(ctx context.Context, item *data.Item) error {
	item.ModifyTime = time.Now()

	return bb.db.Update(func(txn *badger.Txn) error {
		current, err := readItem(txn, item.ID)
		if err != nil {
			return err
		}

		newPath := keyPath(item.TenantID, item.VirtualPath)
		if !bytes.Equal(newPath, keyPath(current.TenantID, current.VirtualPath)) {
			if id, err := getID(txn, newPath); err == nil && id != item.ID {
				return data.ErrExist
			} else if err != nil && !errors.Is(err, data.ErrNotExist) {
				return err
			}
		}

		if err := removeIndexes(txn, current); err != nil {
			return err
		}
		return writeItem(txn, item)
	})
}

func (bb *BadgerBackend) DeleteItem(ctx context.Context, item *data.Item) error {
	return bb.db.Update(func(txn *badger.Txn) error {
		current, err := readItem(txn, item.ID)
		if err != nil {
			return err
		}

		if err := removeIndexes(txn, current); err != nil {
			return err
		}
		return txn.Delete(keyItem(current.ID))
	})
}

func (bb *BadgerBackend) SumSize(ctx context.Context, fsID uuid.UUID, prefix string) (int64, error) {
	items, err := bb.scanIndex(ctx, keyMemberPrefix(fsID))
	if err != nil {
		return 0, err
	}

	var total int64
	for _, item := range items {
		if prefix != "" && !data.IsUnderPath(item.VirtualPath, prefix) {
			continue
		}
		total += item.Size()
	}

	return total, nil
}

// scanIndex resolves every id stored below prefix into its item, ordered by virtual path.
// Keys below the item prefix hold the item itself instead of an id.
func (bb *BadgerBackend) scanIndex(ctx context.Context, prefix []byte) ([]*data.Item, error) {
	result := make([]*data.Item, 0)

	err := bb.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		ids := make([]uuid.UUID, 0)
		direct := bytes.Equal(prefix, []byte(prefixItem))

		it := txn.NewIterator(opts)
		defer it.Close()

		count := 0
		for it.Rewind(); it.Valid(); it.Next() {
			if count%100 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			count++

			if direct {
				var item data.Item
				if err := it.Item().Value(func(val []byte) error {
					return json.Unmarshal(val, &item)
				}); err != nil {
					return err
				}
				result = append(result, &item)
				continue
			}

			var id uuid.UUID
			if err := it.Item().Value(func(val []byte) error {
				return id.UnmarshalBinary(val)
			}); err != nil {
				return err
			}
			ids = append(ids, id)
		}

		for _, id := range ids {
			item, err := readItem(txn, id)
			if err != nil {
				return fmt.Errorf("dangling index entry for '%s': %w", id, err)
			}
			result = append(result, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	backend.ApplySort(result, backend.SortByPath, backend.SortAsc)
	return result, nil
}

func readItem(txn *badger.Txn, id uuid.UUID) (*data.Item, error) {
	var item data.Item
	if err := getJSON(txn, keyItem(id), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func writeItem(txn *badger.Txn, item *data.Item) error {
	if err := setJSON(txn, keyItem(item.ID), item); err != nil {
		return err
	}

	id := item.ID[:]
	if err := txn.Set(keyPath(item.TenantID, item.VirtualPath), id); err != nil {
		return err
	}
	if err := txn.Set(keyParentLink(item), id); err != nil {
		return err
	}
	return txn.Set(keyMember(item), id)
}

func removeIndexes(txn *badger.Txn, item *data.Item) error {
	for _, key := range [][]byte{
		keyPath(item.TenantID, item.VirtualPath),
		keyParentLink(item),
		keyMember(item),
	} {
		if err := txn.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

func getID(txn *badger.Txn, key []byte) (uuid.UUID, error) {
	entry, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return uuid.Nil, data.ErrNotExist
	}
	if err != nil {
		return uuid.Nil, err
	}

	var id uuid.UUID
	err = entry.Value(func(val []byte) error {
		return id.UnmarshalBinary(val)
	})
	return id, err
}

func getJSON(txn *badger.Txn, key []byte, target any) error {
	entry, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return data.ErrNotExist
	}
	if err != nil {
		return err
	}

	return entry.Value(func(val []byte) error {
		return json.Unmarshal(val, target)
	})
}

func setJSON(txn *badger.Txn, key []byte, value any) error {
	buffer, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return txn.Set(key, buffer)
}
