package badger

import (
	"context"
	"fmt"
	"sync"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/mwantia/treefs/backend"
	"github.com/mwantia/treefs/data"
)

// BadgerBackend keeps filesystems and items in an embedded BadgerDB.
// Secondary indexes are plain keys written in the same transaction as the item,
// so path, children and membership lookups are all prefix iterations.
type BadgerBackend struct {
	mu sync.RWMutex
	db *badger.DB
}

// NewBadgerBackend opens (or creates) a database below dir.
// An empty dir opens an in-memory database.
func NewBadgerBackend(ctx context.Context, dir string) (*BadgerBackend, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts = opts.WithLoggingLevel(badger.WARNING)
	opts = opts.WithCompression(options.None)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB at '%s': %w", dir, err)
	}

	return &BadgerBackend{
		db: db,
	}, nil
}

// Returns the identifier name defined for this backend
func (*BadgerBackend) GetName() string {
	return "badger"
}

// Open is part of the lifecycle behaviour and gets called when opening this backend.
func (bb *BadgerBackend) Open(ctx context.Context) error {
	bb.mu.RLock()
	defer bb.mu.RUnlock()

	if bb.db.IsClosed() {
		return data.ErrClosed
	}
	return nil
}

// Close is part of the lifecycle behaviour and gets called when closing this backend.
func (bb *BadgerBackend) Close(ctx context.Context) error {
	bb.mu.Lock()
	defer bb.mu.Unlock()

	if bb.db.IsClosed() {
		return nil
	}
	return bb.db.Close()
}

// GetCapabilities returns a list of capabilities supported by this backend.
func (bb *BadgerBackend) GetCapabilities() *backend.VirtualBackendCapabilities {
	return &backend.VirtualBackendCapabilities{
		Capabilities: []backend.VirtualBackendCapability{
			backend.CapabilityMetadata,
			backend.CapabilityPersistent,
			backend.CapabilityPrefixIndex,
		},
	}
}
