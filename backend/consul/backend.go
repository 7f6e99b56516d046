package consul

import (
	"context"
	"strings"
	"sync"

	"github.com/hashicorp/consul/api"
	"github.com/mwantia/treefs/backend"
)

// MaxValueSize is the default Consul KV limit for a single value.
const MaxValueSize = 512 * 1024

// ConsulBackend provides a simple object storage backend using HashiCorp Consul KV store.
//
// Objects are stored as "<prefix>/<bucket>/<key>". Buckets are plain key prefixes
// and need no provisioning beyond name resolution. Consul limits a value to 512KB,
// so this backend suits small assets like thumbnails or link previews.
type ConsulBackend struct {
	mu     sync.RWMutex
	client *api.Client
	kv     *api.KV

	config  *ConsulBackendConfig
	buckets *backend.BucketProvisioner
}

// ConsulBackendConfig contains configuration options for the Consul backend
type ConsulBackendConfig struct {
	// Address of the Consul server (default: "127.0.0.1:8500")
	Address string

	// Token for Consul ACL authentication (optional)
	Token string

	// Datacenter to use (optional)
	Datacenter string

	// Prefix for all keys in Consul KV (default: "treefs")
	Prefix string

	BucketTemplate string
}

// NewConsulBackend creates a new Consul-backed object storage backend
func NewConsulBackend(config *ConsulBackendConfig) (*ConsulBackend, error) {
	if config == nil {
		config = &ConsulBackendConfig{}
	}

	if config.Address == "" {
		config.Address = "127.0.0.1:8500"
	}
	if config.Prefix == "" {
		config.Prefix = "treefs"
	}

	clientConfig := api.DefaultConfig()
	clientConfig.Address = config.Address
	if config.Token != "" {
		clientConfig.Token = config.Token
	}
	if config.Datacenter != "" {
		clientConfig.Datacenter = config.Datacenter
	}

	client, err := api.NewClient(clientConfig)
	if err != nil {
		return nil, err
	}

	cb := &ConsulBackend{
		client: client,
		kv:     client.KV(),
		config: config,
	}
	cb.buckets = backend.NewBucketProvisioner(config.BucketTemplate, func(context.Context, string) error {
		return nil
	})

	return cb, nil
}

// Returns the identifier name defined for this backend
func (*ConsulBackend) GetName() string {
	return "consul"
}

// Open is part of the lifecycle behaviour and gets called when opening this backend
func (cb *ConsulBackend) Open(ctx context.Context) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	_, err := cb.client.Status().Leader()
	return err
}

// Close is part of the lifecycle behaviour and gets called when closing this backend
func (cb *ConsulBackend) Close(ctx context.Context) error {
	// Nothing to clean up - Consul client is stateless
	return nil
}

// GetCapabilities returns a list of capabilities supported by this backend
func (cb *ConsulBackend) GetCapabilities() *backend.VirtualBackendCapabilities {
	return &backend.VirtualBackendCapabilities{
		Capabilities: []backend.VirtualBackendCapability{
			backend.CapabilityObjectStorage,
			backend.CapabilityTenantBuckets,
			backend.CapabilityPersistent,
		},
		MaxObjectSize: MaxValueSize,
	}
}

// buildKey constructs the full Consul KV key from bucket and object key
func (cb *ConsulBackend) buildKey(bucket, key string) string {
	prefix := strings.Trim(cb.config.Prefix, "/")
	if prefix == "" {
		return bucket + "/" + key
	}
	return prefix + "/" + bucket + "/" + key
}
