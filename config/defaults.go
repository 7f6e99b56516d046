package config

import (
	"os"
	"strings"
)

// ApplyDefaults replaces zero values with defaults; explicit values are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyMetadataDefaults(&cfg.Metadata)
	applyStorageDefaults(&cfg.Storage)
	applyStagingDefaults(&cfg.Staging)
	applyMetricsDefaults(&cfg.Metrics)
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)
	if cfg.Level == "WARNING" {
		cfg.Level = "WARN"
	}

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	cfg.Format = strings.ToLower(cfg.Format)

	if cfg.Rotation.MaxSize == 0 {
		cfg.Rotation.MaxSize = 128
	}
	if cfg.Rotation.MaxBackups == 0 {
		cfg.Rotation.MaxBackups = 5
	}
	if cfg.Rotation.MaxAge == 0 {
		cfg.Rotation.MaxAge = 16
	}
}

func applyMetadataDefaults(cfg *MetadataConfig) {
	if cfg.Type == "" {
		cfg.Type = "memory"
	}
	cfg.Type = strings.ToLower(cfg.Type)

	if cfg.SQLite == nil {
		cfg.SQLite = make(map[string]any)
	}
	if _, ok := cfg.SQLite["path"]; !ok {
		cfg.SQLite["path"] = "treefs.db"
	}
}

func applyStorageDefaults(cfg *StorageConfig) {
	if cfg.Type == "" {
		cfg.Type = "memory"
	}
	cfg.Type = strings.ToLower(cfg.Type)

	if cfg.BucketTemplate == "" {
		cfg.BucketTemplate = "treefs-{tenant}"
	}

	if cfg.Local == nil {
		cfg.Local = make(map[string]any)
	}
	if _, ok := cfg.Local["path"]; !ok {
		cfg.Local["path"] = "data"
	}
}

func applyStagingDefaults(cfg *StagingConfig) {
	if cfg.Dir == "" {
		cfg.Dir = os.TempDir()
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Address == "" {
		cfg.Address = ":9464"
	}
}

// GetDefaultConfig returns a configuration with every default applied.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
