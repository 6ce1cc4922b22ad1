package storage

import (
	"fmt"
	"log/slog"
	"sync"

	"castellan-hq/castellan/pkg/config"
	"castellan-hq/castellan/pkg/storage/delegation"
)

// Manager holds the active driver, version, and file-mode selection and
// builds repository instances through its factory.
//
// Driver, Version, and FileMode mutate the manager and return the same
// instance to allow chained reconfiguration. The manager is not a builder
// producing independent snapshots; callers that need to restore a previous
// selection must call Snapshot first. Policy and Delegation read the
// selection current at call time and hand back a fresh repository, so no
// decoded state survives a reconfiguration.
type Manager struct {
	factory *Factory
	logger  *slog.Logger

	mu          sync.Mutex
	basePath    string
	driver      Driver
	version     string
	fileMode    FileMode
	versioned   bool
	maxFileSize int64
}

// NewManager creates a manager seeded from the storage configuration.
func NewManager(cfg *config.StorageConfig, factory *Factory, logger *slog.Logger) (*Manager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if factory == nil {
		return nil, fmt.Errorf("factory cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	driver, err := ParseDriver(cfg.Driver)
	if err != nil {
		return nil, err
	}
	mode, err := ParseFileMode(cfg.FileMode)
	if err != nil {
		return nil, err
	}
	if cfg.BasePath == "" {
		return nil, fmt.Errorf("storage base path cannot be empty")
	}

	return &Manager{
		factory:     factory,
		logger:      logger.With("component", "storage.manager"),
		basePath:    cfg.BasePath,
		driver:      driver,
		version:     cfg.Version,
		fileMode:    mode,
		versioned:   cfg.Versioning,
		maxFileSize: cfg.MaxFileSize,
	}, nil
}

// Driver switches the active driver and returns the manager.
func (m *Manager) Driver(d Driver) *Manager {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.driver = d
	return m
}

// Version pins the active policy version and returns the manager. An empty
// string restores auto-detection of the latest version.
func (m *Manager) Version(v string) *Manager {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.version = v
	return m
}

// FileMode switches the active file layout and returns the manager.
func (m *Manager) FileMode(mode FileMode) *Manager {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fileMode = mode
	return m
}

// Versioning toggles version subdirectories and returns the manager.
func (m *Manager) Versioning(enabled bool) *Manager {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.versioned = enabled
	return m
}

// Snapshot returns an independent manager with a copy of the current
// selection, for callers that need to branch configurations safely.
func (m *Manager) Snapshot() *Manager {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &Manager{
		factory:     m.factory,
		logger:      m.logger,
		basePath:    m.basePath,
		driver:      m.driver,
		version:     m.version,
		fileMode:    m.fileMode,
		versioned:   m.versioned,
		maxFileSize: m.maxFileSize,
	}
}

// Policy builds a policy repository for the current selection. Each call
// produces an independent instance with an empty decode cache.
func (m *Manager) Policy() (PolicyRepository, error) {
	cfg := m.repositoryConfig()
	m.logger.Debug("building policy repository",
		"driver", string(cfg.Driver),
		"file_mode", string(cfg.Mode),
		"version", cfg.Version,
	)
	return m.factory.Policy(cfg)
}

// Delegation builds a delegation repository for the current selection.
func (m *Manager) Delegation() (delegation.Repository, error) {
	return m.factory.Delegation(m.repositoryConfig())
}

func (m *Manager) repositoryConfig() RepositoryConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return RepositoryConfig{
		BasePath:    m.basePath,
		Driver:      m.driver,
		Mode:        m.fileMode,
		Version:     m.version,
		Versioned:   m.versioned,
		MaxFileSize: m.maxFileSize,
	}
}
