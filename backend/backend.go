package backend

import "context"

// VirtualBackend is the lifecycle every metadata and object storage backend shares.
// A single value may implement both roles; the engine then opens and closes it once.
type VirtualBackend interface {
	// GetName identifies the backend type in logs and errors.
	GetName() string
	// Open connects to the underlying store and prepares its schema or buckets.
	Open(ctx context.Context) error
	// Close releases connections and file handles.
	Close(ctx context.Context) error

	// GetCapabilities lists the roles and limits of this backend.
	GetCapabilities() *VirtualBackendCapabilities
}
