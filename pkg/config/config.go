package config

import "time"

// Config is the top-level Castellan configuration.
type Config struct {
	// Storage configures the policy and delegation stores.
	Storage StorageConfig `yaml:"storage"`

	// Retention configures pruning of terminal delegation records.
	Retention RetentionConfig `yaml:"retention"`

	// Git configures syncing the storage base path from a git repository.
	Git GitConfig `yaml:"git"`

	// Metrics configures Prometheus metric naming.
	Metrics MetricsConfig `yaml:"metrics"`

	// Logging configures structured log output.
	Logging LoggingConfig `yaml:"logging"`
}

// StorageConfig selects where and how policies are persisted.
type StorageConfig struct {
	// BasePath is the root directory holding the policies/ and delegations/
	// areas.
	BasePath string `yaml:"base_path"`

	// Driver selects the storage format: json, yaml, xml, toml, serialized,
	// or database.
	Driver string `yaml:"driver"`

	// FileMode selects the file layout: "single" keeps the whole rule set in
	// one policies file, "multiple" treats every matching file in the
	// policies directory as a fragment.
	FileMode string `yaml:"file_mode"`

	// Version pins a specific policy version directory. Empty means
	// auto-detect the latest semantic version when versioning is enabled.
	Version string `yaml:"version"`

	// Versioning enables version subdirectories under policies/.
	Versioning bool `yaml:"versioning"`

	// MaxFileSize is the largest policy file the repository will decode,
	// in bytes. Larger files are treated like undecodable ones.
	MaxFileSize int64 `yaml:"max_file_size"`
}

// RetentionConfig controls the delegation retention sweeper.
type RetentionConfig struct {
	// Window is how long revoked or expired delegation records are kept
	// before the sweeper deletes them.
	Window time.Duration `yaml:"window"`

	// Schedule is a standard cron expression, e.g. "0 3 * * *" for daily at
	// 3 AM. Empty disables scheduled sweeping.
	Schedule string `yaml:"schedule"`
}

// GitConfig configures pulling a policy bundle from a git repository into the
// local storage base path.
type GitConfig struct {
	// Enabled turns git syncing on.
	Enabled bool `yaml:"enabled"`

	// Repository is the clone URL.
	Repository string `yaml:"repository"`

	// Branch is the branch to track.
	Branch string `yaml:"branch"`

	// LocalPath is where the repository is cloned. Defaults to a directory
	// under the OS temp dir.
	LocalPath string `yaml:"local_path"`

	// Depth enables shallow cloning when greater than zero.
	Depth int `yaml:"depth"`

	// Timeout bounds clone and pull operations.
	Timeout time.Duration `yaml:"timeout"`

	// Auth configures repository authentication.
	Auth GitAuthConfig `yaml:"auth"`
}

// GitAuthConfig selects the git authentication method.
type GitAuthConfig struct {
	// Method is "none", "basic", or "token".
	Method string `yaml:"method"`

	// Username and Password are used for basic auth.
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// Token is a personal access token, used when Method is "token".
	Token string `yaml:"token"`
}

// MetricsConfig configures Prometheus metric naming.
type MetricsConfig struct {
	// Namespace is the metric name prefix.
	Namespace string `yaml:"namespace"`

	// Subsystem is the second metric name component.
	Subsystem string `yaml:"subsystem"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is "json" or "text".
	Format string `yaml:"format"`
}
