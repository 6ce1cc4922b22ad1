package config

import "time"

// Default values applied to fields left unset in the configuration file.
const (
	DefaultBasePath    = "./storage"
	DefaultDriver      = "json"
	DefaultFileMode    = "single"
	DefaultMaxFileSize = 10 * 1024 * 1024 // 10 MB

	DefaultRetentionWindow = 30 * 24 * time.Hour

	DefaultGitBranch  = "main"
	DefaultGitTimeout = 60 * time.Second

	DefaultMetricsNamespace = "castellan"
	DefaultMetricsSubsystem = "storage"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// NewDefaultConfig returns a configuration populated entirely with defaults.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills in default values for any field that is unset.
func ApplyDefaults(cfg *Config) {
	if cfg.Storage.BasePath == "" {
		cfg.Storage.BasePath = DefaultBasePath
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = DefaultDriver
	}
	if cfg.Storage.FileMode == "" {
		cfg.Storage.FileMode = DefaultFileMode
	}
	if cfg.Storage.MaxFileSize == 0 {
		cfg.Storage.MaxFileSize = DefaultMaxFileSize
	}

	if cfg.Retention.Window == 0 {
		cfg.Retention.Window = DefaultRetentionWindow
	}

	if cfg.Git.Branch == "" {
		cfg.Git.Branch = DefaultGitBranch
	}
	if cfg.Git.Timeout == 0 {
		cfg.Git.Timeout = DefaultGitTimeout
	}
	if cfg.Git.Auth.Method == "" {
		cfg.Git.Auth.Method = "none"
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Subsystem == "" {
		cfg.Metrics.Subsystem = DefaultMetricsSubsystem
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}
}
