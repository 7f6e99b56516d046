package treefs

import (
	"github.com/mwantia/treefs/extract"
	"github.com/mwantia/treefs/log"
	"github.com/mwantia/treefs/metrics"
)

type TreeFSOptions struct {
	LogLevel      log.LogLevel
	LogFile       string
	NoTerminalLog bool

	Logger    *log.Logger
	Metrics   metrics.Metrics
	Extractor extract.Extractor

	// Directory for upload, zip and unzip staging files, os.TempDir when empty
	StagingDir string
}

type TreeFSOption func(*TreeFSOptions) error

func newDefaultTreeFSOptions() *TreeFSOptions {
	return &TreeFSOptions{
		LogLevel: log.Info,
	}
}

func WithLogLevel(logLevel log.LogLevel) TreeFSOption {
	return func(opts *TreeFSOptions) error {
		opts.LogLevel = logLevel
		return nil
	}
}

func WithoutTerminalLog() TreeFSOption {
	return func(opts *TreeFSOptions) error {
		opts.NoTerminalLog = true
		return nil
	}
}

func WithLogFile(logFile string) TreeFSOption {
	return func(opts *TreeFSOptions) error {
		opts.LogFile = logFile
		return nil
	}
}

// WithLogger replaces the logger built from the log options.
func WithLogger(logger *log.Logger) TreeFSOption {
	return func(opts *TreeFSOptions) error {
		opts.Logger = logger
		return nil
	}
}

func WithMetrics(m metrics.Metrics) TreeFSOption {
	return func(opts *TreeFSOptions) error {
		opts.Metrics = m
		return nil
	}
}

func WithExtractor(extractor extract.Extractor) TreeFSOption {
	return func(opts *TreeFSOptions) error {
		opts.Extractor = extractor
		return nil
	}
}

func WithStagingDir(dir string) TreeFSOption {
	return func(opts *TreeFSOptions) error {
		opts.StagingDir = dir
		return nil
	}
}
