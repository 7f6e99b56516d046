package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/mwantia/treefs/backend"
	"github.com/mwantia/treefs/data"
	"github.com/tidwall/btree"
)

// MemoryBackend keeps metadata and blobs in process memory.
// It implements both the metadata and the object storage contract.
type MemoryBackend struct {
	mu sync.RWMutex

	// Ordered path index, keyed by tenant and virtual path, for prefix scans
	paths       *btree.Map[string, uuid.UUID]
	items       map[uuid.UUID]*data.Item
	filesystems map[uuid.UUID]*data.FileSystem

	buckets *backend.BucketProvisioner
	objects map[string]map[string]*memoryObject
}

type memoryObject struct {
	contentType string
	data        []byte
}

// NewMemoryBackend creates an empty backend. bucketTemplate may contain
// the "{tenant}" placeholder to separate blobs per tenant.
func NewMemoryBackend(bucketTemplate string) *MemoryBackend {
	mb := &MemoryBackend{
		paths:       btree.NewMap[string, uuid.UUID](0),
		items:       make(map[uuid.UUID]*data.Item),
		filesystems: make(map[uuid.UUID]*data.FileSystem),
		objects:     make(map[string]map[string]*memoryObject),
	}
	mb.buckets = backend.NewBucketProvisioner(bucketTemplate, mb.ensureBucket)

	return mb
}

// Returns the identifier name defined for this backend
func (*MemoryBackend) GetName() string {
	return "memory"
}

// Open is part of the lifecycle behaviour and gets called when opening this backend.
func (mb *MemoryBackend) Open(ctx context.Context) error {
	return nil
}

// Close is part of the lifecycle behaviour and gets called when closing this backend.
func (mb *MemoryBackend) Close(ctx context.Context) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	mb.paths.Clear()
	clear(mb.items)
	clear(mb.filesystems)
	clear(mb.objects)
	mb.buckets.Forget()

	return nil
}

// GetCapabilities returns a list of capabilities supported by this backend.
func (mb *MemoryBackend) GetCapabilities() *backend.VirtualBackendCapabilities {
	return &backend.VirtualBackendCapabilities{
		Capabilities: []backend.VirtualBackendCapability{
			backend.CapabilityObjectStorage,
			backend.CapabilityMetadata,
			backend.CapabilityTenantBuckets,
			backend.CapabilityPrefixIndex,
		},
	}
}

func pathKey(tenantID *int64, virtualPath string) string {
	return data.TenantString(tenantID) + "\x00" + virtualPath
}
