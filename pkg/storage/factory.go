package storage

import (
	"log/slog"
	"sync"

	"castellan-hq/castellan/pkg/storage/delegation"
	"castellan-hq/castellan/pkg/telemetry/metrics"
)

// DatabaseDriverFunc builds the externally supplied database-backed
// repository for a resolved configuration.
type DatabaseDriverFunc func(cfg RepositoryConfig) (PolicyRepository, error)

// Factory maps drivers to concrete repository implementations. The driver
// set is closed: file-backed drivers bind their codec here, and the database
// driver delegates to whatever implementation the host registered.
type Factory struct {
	logger *slog.Logger
	mets   *metrics.StorageMetrics

	mu       sync.RWMutex
	database DatabaseDriverFunc
}

// NewFactory creates a repository factory. Both logger and metrics may be
// nil.
func NewFactory(logger *slog.Logger, mets *metrics.StorageMetrics) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{
		logger: logger.With("component", "storage.factory"),
		mets:   mets,
	}
}

// RegisterDatabaseDriver installs the host-provided database repository
// constructor. Selecting DriverDatabase without a registration fails with
// ErrDatabaseDriverNotRegistered.
func (f *Factory) RegisterDatabaseDriver(fn DatabaseDriverFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.database = fn
}

// Policy builds the policy repository for the given configuration. Every
// call returns an independent instance with its own decode cache.
func (f *Factory) Policy(cfg RepositoryConfig) (PolicyRepository, error) {
	if !cfg.Driver.Valid() {
		return nil, &UnknownDriverError{Driver: string(cfg.Driver)}
	}

	if cfg.Driver == DriverDatabase {
		f.mu.RLock()
		build := f.database
		f.mu.RUnlock()

		if build == nil {
			return nil, ErrDatabaseDriverNotRegistered
		}
		f.mets.RecordRepositoryBuild(string(cfg.Driver), string(cfg.Mode))
		return build(cfg)
	}

	cdc, err := cfg.Driver.Codec()
	if err != nil {
		return nil, err
	}

	repo, err := NewFileRepository(cfg, cdc, f.logger, f.mets)
	if err != nil {
		return nil, err
	}

	f.mets.RecordRepositoryBuild(string(cfg.Driver), string(cfg.Mode))
	return repo, nil
}

// Delegation builds the delegation repository for the given configuration.
// Delegations share the version machinery but always persist as JSON
// documents keyed by id.
func (f *Factory) Delegation(cfg RepositoryConfig) (delegation.Repository, error) {
	dir, err := resolveAreaDir(cfg.BasePath, delegationsArea, cfg.Versioned, cfg.Version)
	if err != nil {
		return nil, err
	}
	return delegation.NewFileStore(dir, f.logger, f.mets), nil
}
