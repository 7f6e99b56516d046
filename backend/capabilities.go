package backend

import "slices"

// VirtualBackendCapability names a role or optional behaviour of a backend.
// The engine refuses to open unless metadata and object storage are both covered.
type VirtualBackendCapability string

const (
	// Core capabilities by backend
	CapabilityMetadata      VirtualBackendCapability = "metadata"
	CapabilityObjectStorage VirtualBackendCapability = "object_storage"

	// Optional behaviour per backend
	CapabilityTenantBuckets VirtualBackendCapability = "tenant_buckets"
	CapabilityPersistent    VirtualBackendCapability = "persistent"
	CapabilityPrefixIndex   VirtualBackendCapability = "prefix_index"
)

type VirtualBackendCapabilities struct {
	Capabilities []VirtualBackendCapability

	// MaxObjectSize limits a single blob in bytes; 0 means unlimited.
	MaxObjectSize int64
}

func (vbc *VirtualBackendCapabilities) Contains(cap VirtualBackendCapability) bool {
	return slices.Contains(vbc.Capabilities, cap)
}
