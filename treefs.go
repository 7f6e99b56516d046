// Package treefs resolves virtual paths and mutates item hierarchies on top of
// a metadata backend and an object storage backend.
package treefs

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/mwantia/treefs/backend"
	"github.com/mwantia/treefs/data"
	"github.com/mwantia/treefs/extract"
	"github.com/mwantia/treefs/log"
	"github.com/mwantia/treefs/metrics"
)

// TreeFS is stateless apart from its collaborators; every call may run concurrently.
type TreeFS struct {
	metadata backend.VirtualMetadataBackend
	storage  backend.VirtualObjectStorageBackend

	log        *log.Logger
	metrics    metrics.Metrics
	extractor  extract.Extractor
	stagingDir string
}

var _ FileSystemService = (*TreeFS)(nil)

func New(metadata backend.VirtualMetadataBackend, storage backend.VirtualObjectStorageBackend, opts ...TreeFSOption) (*TreeFS, error) {
	if metadata == nil || storage == nil {
		return nil, fmt.Errorf("treefs: metadata and storage backend are required")
	}

	options := newDefaultTreeFSOptions()
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	logger := options.Logger
	if logger == nil {
		logger = log.NewLogger("treefs", options.LogLevel, options.LogFile, options.NoTerminalLog)
	}

	t := &TreeFS{
		metadata:   metadata,
		storage:    storage,
		log:        logger,
		metrics:    options.Metrics,
		extractor:  options.Extractor,
		stagingDir: options.StagingDir,
	}

	if t.metrics == nil {
		t.metrics = metrics.Noop()
	}
	if t.extractor == nil {
		t.extractor = extract.Default()
	}
	if t.stagingDir == "" {
		t.stagingDir = os.TempDir()
	}

	return t, nil
}

// Open prepares the staging directory and opens both backends.
// A backend serving metadata and storage at once is opened only once.
func (t *TreeFS) Open(ctx context.Context) error {
	if err := t.checkCapabilities(); err != nil {
		return err
	}
	if err := os.MkdirAll(t.stagingDir, 0o755); err != nil {
		return fmt.Errorf("failed to create staging directory '%s': %w", t.stagingDir, err)
	}

	if err := t.metadata.Open(ctx); err != nil {
		return fmt.Errorf("failed to open metadata backend '%s': %w", t.metadata.GetName(), err)
	}
	if !t.sharedBackend() {
		if err := t.storage.Open(ctx); err != nil {
			return fmt.Errorf("failed to open storage backend '%s': %w", t.storage.GetName(), err)
		}
	}

	t.log.Debug("Opened metadata '%s' and storage '%s'", t.metadata.GetName(), t.storage.GetName())
	return nil
}

// Close closes storage before metadata and reports every failure.
func (t *TreeFS) Close(ctx context.Context) error {
	errs := data.Errors{}

	if !t.sharedBackend() {
		if err := t.storage.Close(ctx); err != nil {
			errs.Add(fmt.Errorf("failed to close storage backend '%s': %w", t.storage.GetName(), err))
		}
	}
	if err := t.metadata.Close(ctx); err != nil {
		errs.Add(fmt.Errorf("failed to close metadata backend '%s': %w", t.metadata.GetName(), err))
	}

	return errs.Errors()
}

func (t *TreeFS) checkCapabilities() error {
	if caps := t.metadata.GetCapabilities(); caps == nil || !caps.Contains(backend.CapabilityMetadata) {
		return fmt.Errorf("%w: '%s' does not provide metadata", data.ErrBackendUnsupported, t.metadata.GetName())
	}
	if caps := t.storage.GetCapabilities(); caps == nil || !caps.Contains(backend.CapabilityObjectStorage) {
		return fmt.Errorf("%w: '%s' does not provide object storage", data.ErrBackendUnsupported, t.storage.GetName())
	}
	return nil
}

// maxObjectSize is the storage backend's blob limit, 0 when unlimited.
func (t *TreeFS) maxObjectSize() int64 {
	if caps := t.storage.GetCapabilities(); caps != nil {
		return caps.MaxObjectSize
	}
	return 0
}

func (t *TreeFS) sharedBackend() bool {
	shared, ok := t.storage.(backend.VirtualMetadataBackend)
	return ok && shared == t.metadata
}

func (t *TreeFS) observe(operation string, start time.Time, err *error) {
	t.metrics.RecordOperation(operation, time.Since(start), *err)
}

func idOf(item *data.Item) *uuid.UUID {
	if item == nil {
		return nil
	}
	id := item.ID
	return &id
}
