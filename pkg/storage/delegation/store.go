package delegation

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"castellan-hq/castellan/internal/fsutil"
	"castellan-hq/castellan/pkg/telemetry/metrics"
)

// Repository is the delegation store contract.
type Repository interface {
	// Create persists a delegation keyed by its id. An existing record with
	// the same id is overwritten; create is an idempotent upsert, not an
	// error.
	Create(d *Delegation) error

	// FindByID returns the delegation with the given id, or (nil, nil) when
	// no such record exists.
	FindByID(id string) (*Delegation, error)

	// Revoke marks the stored record revoked in place. Revoking an unknown
	// id is a no-op, not an error.
	Revoke(id string) error

	// FindActiveForDelegate returns the delegations granted to delegateID
	// that are active and unexpired at evaluation time.
	FindActiveForDelegate(delegateID string) ([]*Delegation, error)
}

// FileStore is the file-backed delegation Repository: one JSON document per
// delegation id.
type FileStore struct {
	dir    string
	logger *slog.Logger
	mets   *metrics.StorageMetrics

	// now is the evaluation clock, replaceable in tests.
	now func() time.Time
}

// NewFileStore creates a store over the given delegations directory.
func NewFileStore(dir string, logger *slog.Logger, mets *metrics.StorageMetrics) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{
		dir:    dir,
		logger: logger.With("component", "storage.delegations"),
		mets:   mets,
		now:    time.Now,
	}
}

// Dir returns the directory the store persists into.
func (s *FileStore) Dir() string {
	return s.dir
}

// Create implements Repository.
func (s *FileStore) Create(d *Delegation) error {
	if d == nil {
		return fmt.Errorf("delegation cannot be nil")
	}
	if err := d.Validate(); err != nil {
		return err
	}

	if err := fsutil.EnsureDir(s.dir); err != nil {
		return err
	}

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode delegation %q: %w", d.ID, err)
	}

	if err := fsutil.WriteFileAtomic(s.path(d.ID), append(data, '\n'), 0644); err != nil {
		return err
	}

	s.mets.RecordDelegationOp("create")
	return nil
}

// FindByID implements Repository.
func (s *FileStore) FindByID(id string) (*Delegation, error) {
	if id == "" || strings.ContainsAny(id, `/\`) {
		return nil, nil
	}

	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read delegation %q: %w", id, err)
	}

	var d Delegation
	if err := json.Unmarshal(data, &d); err != nil {
		// A corrupt record reads as absent rather than failing the caller.
		s.logger.Warn("delegation record failed to decode", "id", id)
		return nil, nil
	}

	s.mets.RecordDelegationOp("find")
	return &d, nil
}

// Revoke implements Repository.
func (s *FileStore) Revoke(id string) error {
	d, err := s.FindByID(id)
	if err != nil {
		return err
	}
	if d == nil {
		return nil
	}
	if d.Status == StateRevoked {
		return nil
	}

	now := s.now().UTC()
	d.Status = StateRevoked
	d.RevokedAt = &now

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode delegation %q: %w", id, err)
	}
	if err := fsutil.WriteFileAtomic(s.path(id), append(data, '\n'), 0644); err != nil {
		return err
	}

	s.mets.RecordDelegationOp("revoke")
	return nil
}

// FindActiveForDelegate implements Repository. A revoked record is excluded,
// and so is one whose ExpiresAt has passed even though its persisted status
// still reads active; expiry is derived, not stored.
func (s *FileStore) FindActiveForDelegate(delegateID string) ([]*Delegation, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}

	now := s.now()
	var active []*Delegation
	for _, d := range all {
		if d.DelegateID != delegateID {
			continue
		}
		if d.EffectiveState(now) != StateActive {
			continue
		}
		active = append(active, d)
	}

	s.mets.RecordDelegationOp("find_active")
	return active, nil
}

// List returns every decodable delegation record in the store, ordered by
// id. Corrupt records are skipped with a warning.
func (s *FileStore) List() ([]*Delegation, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list delegations directory %q: %w", s.dir, err)
	}

	var all []*Delegation
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read delegation file %q: %w", entry.Name(), err)
		}

		var d Delegation
		if err := json.Unmarshal(data, &d); err != nil {
			s.logger.Warn("delegation record failed to decode, skipping", "file", entry.Name())
			continue
		}
		all = append(all, &d)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

// Delete removes a delegation record. Deleting an unknown id is a no-op.
func (s *FileStore) Delete(id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) {
		return nil
	}
	if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete delegation %q: %w", id, err)
	}
	return nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}
