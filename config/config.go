// Package config loads treefs configuration from an optional YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`

	Metadata MetadataConfig `mapstructure:"metadata"`

	Storage StorageConfig `mapstructure:"storage"`

	Staging StagingConfig `mapstructure:"staging"`

	Metrics MetricsConfig `mapstructure:"metrics"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR FATAL"`

	Format string `mapstructure:"format" validate:"required,oneof=text json"`

	// File enables a rotated log file; empty logs to stdout only
	File string `mapstructure:"file"`

	NoColor bool `mapstructure:"no_color"`

	Rotation RotationConfig `mapstructure:"rotation"`
}

type RotationConfig struct {
	MaxSize    int  `mapstructure:"max_size" validate:"gte=0"`
	MaxBackups int  `mapstructure:"max_backups" validate:"gte=0"`
	MaxAge     int  `mapstructure:"max_age" validate:"gte=0"`
	Compress   bool `mapstructure:"compress"`
}

// MetadataConfig selects the metadata backend; the section matching Type is decoded by its factory.
type MetadataConfig struct {
	Type string `mapstructure:"type" validate:"required,oneof=memory sqlite postgres badger"`

	SQLite map[string]any `mapstructure:"sqlite"`

	Postgres map[string]any `mapstructure:"postgres"`

	Badger map[string]any `mapstructure:"badger"`
}

// StorageConfig selects the object storage backend.
type StorageConfig struct {
	Type string `mapstructure:"type" validate:"required,oneof=memory sqlite s3 local consul"`

	// BucketTemplate names buckets; "{tenant}" (or "{0}") is replaced by the tenant id
	BucketTemplate string `mapstructure:"bucket_template" validate:"required"`

	SQLite map[string]any `mapstructure:"sqlite"`

	S3 map[string]any `mapstructure:"s3"`

	Local map[string]any `mapstructure:"local"`

	Consul map[string]any `mapstructure:"consul"`
}

type StagingConfig struct {
	// Dir holds temporary upload and archive files
	Dir string `mapstructure:"dir" validate:"required"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`

	Address string `mapstructure:"address" validate:"required_if=Enabled true"`
}

// Load reads configuration from configPath (optional) and the environment,
// applies defaults and validates the result.
//
// Environment variables use the TREEFS_ prefix with "_" as separator,
// e.g. TREEFS_METADATA_TYPE. The S3_ENDPOINT, S3_ACCESS_KEY, S3_SECRET_KEY
// and S3_BUCKET_NAME variables are honored as well.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	if err := readConfigFile(v, configPath); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("TREEFS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Keys must be known to viper before AutomaticEnv can resolve them
	for _, key := range []string{
		"logging.level",
		"logging.format",
		"logging.file",
		"metadata.type",
		"metadata.sqlite.path",
		"metadata.postgres.dsn",
		"metadata.badger.dir",
		"storage.type",
		"storage.local.path",
		"storage.sqlite.path",
		"storage.consul.address",
		"storage.consul.token",
		"staging.dir",
		"metrics.enabled",
		"metrics.address",
	} {
		_ = v.BindEnv(key)
	}

	_ = v.BindEnv("storage.bucket_template", "TREEFS_STORAGE_BUCKET_TEMPLATE", "S3_BUCKET_NAME")
	_ = v.BindEnv("storage.s3.endpoint", "TREEFS_STORAGE_S3_ENDPOINT", "S3_ENDPOINT")
	_ = v.BindEnv("storage.s3.access_key", "TREEFS_STORAGE_S3_ACCESS_KEY", "S3_ACCESS_KEY")
	_ = v.BindEnv("storage.s3.secret_key", "TREEFS_STORAGE_S3_SECRET_KEY", "S3_SECRET_KEY")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

func readConfigFile(v *viper.Viper, configPath string) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		// An explicit path that does not exist is treated like no file at all
		if configPath != "" && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return nil
}

func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "treefs")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "treefs")
}

// GetDefaultConfigPath returns the config file used when no path is given.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}
