package s3

import (
	"context"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/mwantia/treefs/backend"
)

// S3Backend stores blobs in S3 compatible object storage, one bucket per tenant
// when the bucket template carries a tenant placeholder.
type S3Backend struct {
	mu sync.RWMutex

	client  *minio.Client
	config  *S3BackendConfig
	buckets *backend.BucketProvisioner
}

type S3BackendConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool

	// BucketTemplate names the bucket, e.g. "tenant-{tenant}"
	BucketTemplate string
}

func NewS3Backend(config *S3BackendConfig) (*S3Backend, error) {
	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure: config.UseSSL,
		Region: config.Region,
	})
	if err != nil {
		return nil, err
	}

	sb := &S3Backend{
		client: client,
		config: config,
	}
	sb.buckets = backend.NewBucketProvisioner(config.BucketTemplate, sb.ensureBucket)

	return sb, nil
}

// Returns the identifier name defined for this backend
func (*S3Backend) GetName() string {
	return "s3"
}

// Open is part of the lifecycle behaviour and gets called when opening this backend.
// A shared bucket is provisioned right away, tenant buckets on first use.
func (sb *S3Backend) Open(ctx context.Context) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if backend.IsTenantTemplate(sb.config.BucketTemplate) {
		return nil
	}

	_, err := sb.buckets.Bucket(ctx, nil)
	return err
}

// Close is part of the lifecycle behaviour and gets called when closing this backend.
func (sb *S3Backend) Close(ctx context.Context) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	sb.buckets.Forget()
	return nil
}

// GetCapabilities returns a list of capabilities supported by this backend.
func (sb *S3Backend) GetCapabilities() *backend.VirtualBackendCapabilities {
	return &backend.VirtualBackendCapabilities{
		Capabilities: []backend.VirtualBackendCapability{
			backend.CapabilityObjectStorage,
			backend.CapabilityTenantBuckets,
			backend.CapabilityPersistent,
		},
	}
}

func (sb *S3Backend) ensureBucket(ctx context.Context, bucket string) error {
	exists, err := sb.client.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	err = sb.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{
		Region: sb.config.Region,
	})
	if err != nil {
		// Another writer may have created it in between
		code := minio.ToErrorResponse(err).Code
		if code == "BucketAlreadyOwnedByYou" || code == "BucketAlreadyExists" {
			return nil
		}
		return err
	}

	return nil
}
