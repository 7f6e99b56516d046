package config

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/mwantia/treefs/backend"
	"github.com/mwantia/treefs/backend/badger"
	"github.com/mwantia/treefs/backend/consul"
	"github.com/mwantia/treefs/backend/local"
	"github.com/mwantia/treefs/backend/memory"
	"github.com/mwantia/treefs/backend/postgres"
	"github.com/mwantia/treefs/backend/s3"
	"github.com/mwantia/treefs/backend/sqlite"
	"github.com/mwantia/treefs/data"
	"github.com/mwantia/treefs/log"
	"github.com/mwantia/treefs/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type s3YAMLConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Region    string `mapstructure:"region"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

type consulYAMLConfig struct {
	Address    string `mapstructure:"address"`
	Token      string `mapstructure:"token"`
	Datacenter string `mapstructure:"datacenter"`
	Prefix     string `mapstructure:"prefix"`
}

// CreateMetadataBackend creates the configured metadata backend.
func CreateMetadataBackend(ctx context.Context, cfg *MetadataConfig) (backend.VirtualMetadataBackend, error) {
	switch cfg.Type {
	case "memory":
		return memory.NewMemoryBackend(""), nil
	case "sqlite":
		var sqliteCfg struct {
			Path string `mapstructure:"path"`
		}
		if err := mapstructure.Decode(cfg.SQLite, &sqliteCfg); err != nil {
			return nil, fmt.Errorf("invalid sqlite config: %w", err)
		}
		if sqliteCfg.Path == "" {
			return nil, fmt.Errorf("sqlite path is required")
		}
		return sqlite.NewSQLiteBackend(sqliteCfg.Path, "")
	case "postgres":
		var postgresCfg struct {
			DSN string `mapstructure:"dsn"`
		}
		if err := mapstructure.Decode(cfg.Postgres, &postgresCfg); err != nil {
			return nil, fmt.Errorf("invalid postgres config: %w", err)
		}
		if postgresCfg.DSN == "" {
			return nil, fmt.Errorf("postgres dsn is required")
		}
		return postgres.NewPostgresBackend(ctx, postgresCfg.DSN)
	case "badger":
		var badgerCfg struct {
			Dir string `mapstructure:"dir"`
		}
		if err := mapstructure.Decode(cfg.Badger, &badgerCfg); err != nil {
			return nil, fmt.Errorf("invalid badger config: %w", err)
		}
		return badger.NewBadgerBackend(ctx, badgerCfg.Dir)
	default:
		return nil, fmt.Errorf("%w: metadata type %q", data.ErrUnknownBackend, cfg.Type)
	}
}

// CreateStorageBackend creates the configured object storage backend.
func CreateStorageBackend(ctx context.Context, cfg *StorageConfig) (backend.VirtualObjectStorageBackend, error) {
	switch cfg.Type {
	case "memory":
		return memory.NewMemoryBackend(cfg.BucketTemplate), nil
	case "sqlite":
		var sqliteCfg struct {
			Path string `mapstructure:"path"`
		}
		if err := mapstructure.Decode(cfg.SQLite, &sqliteCfg); err != nil {
			return nil, fmt.Errorf("invalid sqlite config: %w", err)
		}
		if sqliteCfg.Path == "" {
			sqliteCfg.Path = "treefs-objects.db"
		}
		return sqlite.NewSQLiteBackend(sqliteCfg.Path, cfg.BucketTemplate)
	case "s3":
		var s3Cfg s3YAMLConfig
		if err := mapstructure.Decode(cfg.S3, &s3Cfg); err != nil {
			return nil, fmt.Errorf("invalid s3 config: %w", err)
		}
		if s3Cfg.Endpoint == "" {
			return nil, fmt.Errorf("s3 endpoint is required")
		}
		return s3.NewS3Backend(&s3.S3BackendConfig{
			Endpoint:       s3Cfg.Endpoint,
			AccessKey:      s3Cfg.AccessKey,
			SecretKey:      s3Cfg.SecretKey,
			Region:         s3Cfg.Region,
			UseSSL:         s3Cfg.UseSSL,
			BucketTemplate: cfg.BucketTemplate,
		})
	case "local":
		var localCfg struct {
			Path string `mapstructure:"path"`
		}
		if err := mapstructure.Decode(cfg.Local, &localCfg); err != nil {
			return nil, fmt.Errorf("invalid local config: %w", err)
		}
		if localCfg.Path == "" {
			return nil, fmt.Errorf("local path is required")
		}
		return local.NewLocalBackend(localCfg.Path, cfg.BucketTemplate), nil
	case "consul":
		var consulCfg consulYAMLConfig
		if err := mapstructure.Decode(cfg.Consul, &consulCfg); err != nil {
			return nil, fmt.Errorf("invalid consul config: %w", err)
		}
		return consul.NewConsulBackend(&consul.ConsulBackendConfig{
			Address:        consulCfg.Address,
			Token:          consulCfg.Token,
			Datacenter:     consulCfg.Datacenter,
			Prefix:         consulCfg.Prefix,
			BucketTemplate: cfg.BucketTemplate,
		})
	default:
		return nil, fmt.Errorf("%w: storage type %q", data.ErrUnknownBackend, cfg.Type)
	}
}

// CreateLogger builds the root logger from the logging section.
func CreateLogger(name string, cfg *LoggingConfig) (*log.Logger, error) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	return log.New(log.Options{
		Name:    name,
		Level:   level,
		File:    cfg.File,
		NoColor: cfg.NoColor,
		JSON:    cfg.Format == "json",
		Rotation: &log.LoggerRotation{
			MaxSize:    cfg.Rotation.MaxSize,
			MaxBackups: cfg.Rotation.MaxBackups,
			MaxAge:     cfg.Rotation.MaxAge,
			Compress:   cfg.Rotation.Compress,
		},
	}), nil
}

// CreateMetrics returns the engine metrics and, when enabled, the registry to expose.
func CreateMetrics(cfg *MetricsConfig) (metrics.Metrics, *prometheus.Registry) {
	if !cfg.Enabled {
		return metrics.Noop(), nil
	}

	reg := prometheus.NewRegistry()
	return metrics.New(reg), reg
}
