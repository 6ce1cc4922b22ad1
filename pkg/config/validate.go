package config

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

var validDrivers = map[string]bool{
	"json":       true,
	"yaml":       true,
	"xml":        true,
	"toml":       true,
	"serialized": true,
	"database":   true,
}

var validFileModes = map[string]bool{
	"single":   true,
	"multiple": true,
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks the configuration for invalid or inconsistent values.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if cfg.Storage.BasePath == "" {
		return fmt.Errorf("storage.base_path cannot be empty")
	}
	if !validDrivers[cfg.Storage.Driver] {
		return fmt.Errorf("storage.driver %q is not supported", cfg.Storage.Driver)
	}
	if !validFileModes[cfg.Storage.FileMode] {
		return fmt.Errorf("storage.file_mode %q is not supported", cfg.Storage.FileMode)
	}
	if cfg.Storage.MaxFileSize < 0 {
		return fmt.Errorf("storage.max_file_size cannot be negative")
	}

	if cfg.Retention.Window < 0 {
		return fmt.Errorf("retention.window cannot be negative")
	}
	if cfg.Retention.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Retention.Schedule); err != nil {
			return fmt.Errorf("retention.schedule %q is not a valid cron expression: %w", cfg.Retention.Schedule, err)
		}
	}

	if cfg.Git.Enabled {
		if cfg.Git.Repository == "" {
			return fmt.Errorf("git.repository cannot be empty when git sync is enabled")
		}
		if cfg.Git.Branch == "" {
			return fmt.Errorf("git.branch cannot be empty when git sync is enabled")
		}
		switch cfg.Git.Auth.Method {
		case "none":
		case "basic":
			if cfg.Git.Auth.Username == "" {
				return fmt.Errorf("git.auth.username cannot be empty for basic auth")
			}
		case "token":
			if cfg.Git.Auth.Token == "" {
				return fmt.Errorf("git.auth.token cannot be empty for token auth")
			}
		default:
			return fmt.Errorf("git.auth.method %q is not supported", cfg.Git.Auth.Method)
		}
	}

	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level %q is not supported", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" && cfg.Logging.Format != "text" {
		return fmt.Errorf("logging.format %q is not supported", cfg.Logging.Format)
	}

	return nil
}
