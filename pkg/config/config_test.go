package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.Storage.Driver != "json" {
		t.Errorf("default driver = %q, want %q", cfg.Storage.Driver, "json")
	}
	if cfg.Storage.FileMode != "single" {
		t.Errorf("default file mode = %q, want %q", cfg.Storage.FileMode, "single")
	}
	if cfg.Storage.MaxFileSize != DefaultMaxFileSize {
		t.Errorf("default max file size = %d, want %d", cfg.Storage.MaxFileSize, DefaultMaxFileSize)
	}
	if cfg.Retention.Window != DefaultRetentionWindow {
		t.Errorf("default retention window = %v, want %v", cfg.Retention.Window, DefaultRetentionWindow)
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("Validate(defaults) error = %v, want nil", err)
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfigFile(t, `
storage:
  base_path: /var/lib/castellan
  driver: yaml
  file_mode: multiple
  versioning: true
  version: 1.2.0
retention:
  window: 168h
  schedule: "0 3 * * *"
logging:
  level: debug
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v, want nil", err)
	}

	if cfg.Storage.BasePath != "/var/lib/castellan" {
		t.Errorf("base path = %q, want %q", cfg.Storage.BasePath, "/var/lib/castellan")
	}
	if cfg.Storage.Driver != "yaml" {
		t.Errorf("driver = %q, want %q", cfg.Storage.Driver, "yaml")
	}
	if !cfg.Storage.Versioning || cfg.Storage.Version != "1.2.0" {
		t.Errorf("versioning = (%v, %q), want (true, 1.2.0)", cfg.Storage.Versioning, cfg.Storage.Version)
	}
	if cfg.Retention.Window != 168*time.Hour {
		t.Errorf("retention window = %v, want 168h", cfg.Retention.Window)
	}
	// Unset fields still pick up defaults.
	if cfg.Logging.Format != DefaultLogFormat {
		t.Errorf("logging format = %q, want default %q", cfg.Logging.Format, DefaultLogFormat)
	}
}

func TestLoadConfigInvalidDriver(t *testing.T) {
	path := writeConfigFile(t, `
storage:
  driver: csv
`)

	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig() error = nil for unsupported driver, want error")
	}
}

func TestLoadConfigInvalidSchedule(t *testing.T) {
	path := writeConfigFile(t, `
retention:
  schedule: "every day at noon"
`)

	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig() error = nil for invalid cron schedule, want error")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadConfig() error = nil for missing file, want error")
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfigFile(t, `
storage:
  driver: json
  base_path: /from/file
`)

	t.Setenv("CASTELLAN_STORAGE_DRIVER", "toml")
	t.Setenv("CASTELLAN_STORAGE_BASE_PATH", "/from/env")
	t.Setenv("CASTELLAN_STORAGE_VERSIONING", "true")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v, want nil", err)
	}

	if cfg.Storage.Driver != "toml" {
		t.Errorf("driver = %q, want env override %q", cfg.Storage.Driver, "toml")
	}
	if cfg.Storage.BasePath != "/from/env" {
		t.Errorf("base path = %q, want env override %q", cfg.Storage.BasePath, "/from/env")
	}
	if !cfg.Storage.Versioning {
		t.Error("versioning = false, want env override true")
	}
}

func TestEnvOverrideRevalidates(t *testing.T) {
	path := writeConfigFile(t, `
storage:
  driver: json
`)

	t.Setenv("CASTELLAN_STORAGE_DRIVER", "csv")

	if _, err := LoadConfigWithEnvOverrides(path); err == nil {
		t.Error("LoadConfigWithEnvOverrides() error = nil for invalid override, want error")
	}
}

func TestValidateGitAuth(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Git.Enabled = true
	cfg.Git.Repository = "https://example.com/policies.git"

	cfg.Git.Auth.Method = "token"
	if err := Validate(cfg); err == nil {
		t.Error("Validate() error = nil for token auth without token, want error")
	}

	cfg.Git.Auth.Token = "secret"
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}
