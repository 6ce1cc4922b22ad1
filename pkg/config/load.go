package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path,
// applies defaults, and validates the result. Environment variables are not
// consulted; use LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Variables follow the naming convention
// CASTELLAN_SECTION_FIELD (e.g. CASTELLAN_STORAGE_BASE_PATH) and always take
// precedence over file values.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("CASTELLAN_STORAGE_BASE_PATH"); val != "" {
		cfg.Storage.BasePath = val
	}
	if val := os.Getenv("CASTELLAN_STORAGE_DRIVER"); val != "" {
		cfg.Storage.Driver = val
	}
	if val := os.Getenv("CASTELLAN_STORAGE_FILE_MODE"); val != "" {
		cfg.Storage.FileMode = val
	}
	if val := os.Getenv("CASTELLAN_STORAGE_VERSION"); val != "" {
		cfg.Storage.Version = val
	}
	if val := os.Getenv("CASTELLAN_STORAGE_VERSIONING"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Storage.Versioning = b
		}
	}
	if val := os.Getenv("CASTELLAN_STORAGE_MAX_FILE_SIZE"); val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Storage.MaxFileSize = n
		}
	}

	if val := os.Getenv("CASTELLAN_RETENTION_WINDOW"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Retention.Window = d
		}
	}
	if val := os.Getenv("CASTELLAN_RETENTION_SCHEDULE"); val != "" {
		cfg.Retention.Schedule = val
	}

	if val := os.Getenv("CASTELLAN_GIT_REPOSITORY"); val != "" {
		cfg.Git.Repository = val
	}
	if val := os.Getenv("CASTELLAN_GIT_BRANCH"); val != "" {
		cfg.Git.Branch = val
	}
	if val := os.Getenv("CASTELLAN_GIT_TOKEN"); val != "" {
		cfg.Git.Auth.Token = val
	}

	if val := os.Getenv("CASTELLAN_LOGGING_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("CASTELLAN_LOGGING_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}
}
