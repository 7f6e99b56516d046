package backend

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/mwantia/treefs/data"
	"golang.org/x/sync/singleflight"
)

// TenantPlaceholder is replaced with the tenant id inside a bucket template.
const TenantPlaceholder = "{tenant}"

// BucketName resolves a bucket template for tenantID.
// Templates without placeholder name one shared bucket and accept a nil tenant.
func BucketName(template string, tenantID *int64) (string, error) {
	if !IsTenantTemplate(template) {
		return template, nil
	}
	if tenantID == nil {
		return "", data.ErrNotReady
	}

	tenant := data.TenantString(tenantID)
	name := strings.ReplaceAll(template, TenantPlaceholder, tenant)
	return strings.ReplaceAll(name, "{0}", tenant), nil
}

func IsTenantTemplate(template string) bool {
	return strings.Contains(template, TenantPlaceholder) || strings.Contains(template, "{0}")
}

// BucketProvisioner creates each bucket at most once, even under concurrent first use.
type BucketProvisioner struct {
	template string
	ensure   func(ctx context.Context, bucket string) error

	ready sync.Map
	group singleflight.Group
}

func NewBucketProvisioner(template string, ensure func(ctx context.Context, bucket string) error) *BucketProvisioner {
	return &BucketProvisioner{
		template: template,
		ensure:   ensure,
	}
}

// Bucket returns the provisioned bucket for tenantID.
func (bp *BucketProvisioner) Bucket(ctx context.Context, tenantID *int64) (string, error) {
	bucket, err := BucketName(bp.template, tenantID)
	if err != nil {
		return "", err
	}

	if _, ok := bp.ready.Load(bucket); ok {
		return bucket, nil
	}

	_, err, _ = bp.group.Do(bucket, func() (any, error) {
		if _, ok := bp.ready.Load(bucket); ok {
			return nil, nil
		}
		if err := bp.ensure(ctx, bucket); err != nil {
			return nil, fmt.Errorf("failed to provision bucket '%s': %w", bucket, err)
		}

		bp.ready.Store(bucket, struct{}{})
		return nil, nil
	})
	if err != nil {
		return "", err
	}

	return bucket, nil
}

// Forget drops every cached bucket, forcing provisioning on next use.
func (bp *BucketProvisioner) Forget() {
	bp.ready.Clear()
}
