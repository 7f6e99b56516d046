package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mwantia/treefs"
	"github.com/mwantia/treefs/backend"
	"github.com/mwantia/treefs/cmd"
	"github.com/mwantia/treefs/cmd/builtin"
	"github.com/mwantia/treefs/config"
	"github.com/mwantia/treefs/data"
	"github.com/mwantia/treefs/log"
	"github.com/mwantia/treefs/metrics"
)

// app owns everything a shell or a single command run needs.
type app struct {
	log     *log.Logger
	fs      *treefs.TreeFS
	manager *cmd.CommandManager
	server  *http.Server
}

func newApp(ctx context.Context, opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	logger, err := config.CreateLogger("treefs", &cfg.Logging)
	if err != nil {
		return nil, err
	}

	metadata, err := config.CreateMetadataBackend(ctx, &cfg.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata backend: %w", err)
	}
	storage, err := config.CreateStorageBackend(ctx, &cfg.Storage)
	if err != nil {
		closeBackends(ctx, metadata, nil)
		return nil, fmt.Errorf("failed to create storage backend: %w", err)
	}

	m, registry := config.CreateMetrics(&cfg.Metrics)

	fs, err := treefs.New(metadata, storage,
		treefs.WithLogger(logger),
		treefs.WithMetrics(m),
		treefs.WithStagingDir(cfg.Staging.Dir))
	if err != nil {
		closeBackends(ctx, metadata, storage)
		return nil, err
	}
	if err := fs.Open(ctx); err != nil {
		closeBackends(ctx, metadata, storage)
		return nil, err
	}

	session := &cmd.Session{}
	if opts.tenant >= 0 {
		session.TenantID = data.Tenant(opts.tenant)
	}
	if opts.filesystem != "" {
		id, err := data.ParseID(opts.filesystem)
		if err != nil {
			fs.Close(ctx)
			return nil, err
		}
		session.FileSystemID = id
	}

	manager := cmd.NewCommandManager(fs, session)
	if err := builtin.Register(manager); err != nil {
		fs.Close(ctx)
		return nil, err
	}

	a := &app{
		log:     logger,
		fs:      fs,
		manager: manager,
	}

	if registry != nil {
		a.server = &http.Server{
			Addr:              cfg.Metrics.Address,
			Handler:           metrics.Handler(registry),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("Serving metrics on %s", cfg.Metrics.Address)
			if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server failed: %v", err)
			}
		}()
	}

	return a, nil
}

func (a *app) close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	errs := data.Errors{}
	if a.server != nil {
		errs.Add(a.server.Shutdown(ctx))
	}
	errs.Add(a.fs.Close(ctx))

	return errs.Errors()
}

func (a *app) prompt() string {
	session := a.manager.Session()
	if session.FileSystemID == uuid.Nil {
		return fmt.Sprintf("treefs[%s]> ", data.TenantString(session.TenantID))
	}
	return fmt.Sprintf("treefs[%s:%s]> ", data.TenantString(session.TenantID), session.FileSystemID.String()[:8])
}

// closeBackends releases backends created before the engine took ownership.
// A backend serving both roles is closed once.
func closeBackends(ctx context.Context, metadata backend.VirtualMetadataBackend, storage backend.VirtualObjectStorageBackend) {
	if metadata != nil {
		metadata.Close(ctx)
	}
	if storage == nil {
		return
	}
	if shared, ok := storage.(backend.VirtualMetadataBackend); ok && shared == metadata {
		return
	}
	storage.Close(ctx)
}
