package storage

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"castellan-hq/castellan/internal/fsutil"
	"castellan-hq/castellan/pkg/policy"
	"castellan-hq/castellan/pkg/storage/codec"
	"castellan-hq/castellan/pkg/telemetry/metrics"
)

// PolicyRepository is the driver-independent contract consumed by the
// evaluation engine.
type PolicyRepository interface {
	// GetPoliciesFor returns the rules whose subject equals the query
	// subject and whose resource is absent or equals the query resource.
	// Action and domain are not filtered here; that is the evaluation
	// engine's responsibility. Corrupt policy data never surfaces as an
	// error, only filesystem faults do.
	GetPoliciesFor(subject policy.Subject, resource policy.Resource) (policy.Policy, error)

	// Save persists the full rule sequence, replacing the previous content.
	Save(p policy.Policy) error
}

// RepositoryConfig carries the resolved parameters a repository is built
// with.
type RepositoryConfig struct {
	// BasePath is the storage root directory.
	BasePath string

	// Driver selects the storage format.
	Driver Driver

	// Mode selects single-file or multi-file layout.
	Mode FileMode

	// Version pins a policy version. Empty means auto-detect when
	// versioning is enabled.
	Version string

	// Versioned enables version subdirectories.
	Versioned bool

	// MaxFileSize bounds the size of files the repository will decode.
	// Zero means no limit.
	MaxFileSize int64
}

// FileRepository is the file-backed PolicyRepository. One instance binds a
// codec, a resolved policies directory, and a file mode, and memoizes its
// decode work: each underlying file is read and decoded at most once per
// instance. A new Manager selection always produces a new instance with an
// empty cache.
type FileRepository struct {
	cfg    RepositoryConfig
	codec  codec.Codec
	dir    string
	logger *slog.Logger
	mets   *metrics.StorageMetrics

	// Decode cache, populated at most once under mu.
	mu      sync.Mutex
	loaded  bool
	records []codec.Record
}

// NewFileRepository builds a repository for the given configuration. Version
// resolution runs here, fresh on every construction, so two independently
// configured repositories always reflect current on-disk state.
func NewFileRepository(cfg RepositoryConfig, cdc codec.Codec, logger *slog.Logger, mets *metrics.StorageMetrics) (*FileRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dir, err := resolveAreaDir(cfg.BasePath, policiesArea, cfg.Versioned, cfg.Version)
	if err != nil {
		return nil, err
	}

	return &FileRepository{
		cfg:    cfg,
		codec:  cdc,
		dir:    dir,
		logger: logger.With("component", "storage.repository", "driver", string(cfg.Driver)),
		mets:   mets,
	}, nil
}

// Dir returns the resolved policies directory this repository reads from.
func (r *FileRepository) Dir() string {
	return r.dir
}

// All returns every decoded record without subject or resource filtering, in
// file-then-record order. Used by migration tooling such as format
// conversion.
func (r *FileRepository) All() ([]codec.Record, error) {
	records, err := r.load()
	if err != nil {
		return nil, err
	}
	copied := make([]codec.Record, len(records))
	copy(copied, records)
	return copied, nil
}

// GetPoliciesFor implements PolicyRepository.
func (r *FileRepository) GetPoliciesFor(subject policy.Subject, resource policy.Resource) (policy.Policy, error) {
	records, err := r.load()
	if err != nil {
		return policy.Policy{}, err
	}

	r.mets.RecordPolicyRead(string(r.cfg.Driver))

	var rules []policy.Rule
	for _, rec := range records {
		if rec.Subject != subject.ID() {
			continue
		}
		if rec.Resource != "" && rec.Resource != resource.ID() {
			continue
		}
		rules = append(rules, policy.Rule{
			Subject:  rec.Subject,
			Resource: rec.Resource,
			Action:   rec.Action,
			Effect:   policy.Effect(rec.Effect),
			Priority: policy.Priority(rec.Priority),
			Domain:   rec.Domain,
		})
	}

	return policy.NewPolicy(rules), nil
}

// Save implements PolicyRepository. The full rule sequence is encoded and
// written atomically to the canonical policies file; in multiple-file mode
// that file is a valid member of the read-side glob. Parent directories are
// created as needed and previous content is overwritten, not appended to.
func (r *FileRepository) Save(p policy.Policy) error {
	rules := p.Rules()
	records := make([]codec.Record, 0, len(rules))
	for _, rule := range rules {
		records = append(records, codec.Record{
			Subject:  rule.Subject,
			Resource: rule.Resource,
			Action:   rule.Action,
			Effect:   string(rule.Effect),
			Priority: int(rule.Priority),
			Domain:   rule.Domain,
		})
	}

	data, err := r.codec.Encode(records)
	if err != nil {
		return &SaveError{Path: r.canonicalFile(), Message: "encoding failed", Cause: err}
	}

	if err := fsutil.EnsureDir(r.dir); err != nil {
		return &SaveError{Path: r.dir, Message: "failed to create policies directory", Cause: err}
	}

	target := r.canonicalFile()
	if err := fsutil.WriteFileAtomic(target, data, 0644); err != nil {
		return &SaveError{Path: target, Message: "write failed", Cause: err}
	}

	r.mets.RecordPolicySave(string(r.cfg.Driver))

	// Drop the cache so the next read reflects what was written, including
	// sibling fragments in multiple-file mode.
	r.mu.Lock()
	r.loaded = false
	r.records = nil
	r.mu.Unlock()

	return nil
}

func (r *FileRepository) canonicalFile() string {
	return filepath.Join(r.dir, "policies."+r.codec.Extension())
}

// load returns the decoded records, reading the underlying files at most
// once per instance.
func (r *FileRepository) load() ([]codec.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loaded {
		return r.records, nil
	}

	paths, err := r.resolveFiles()
	if err != nil {
		return nil, err
	}

	var records []codec.Record
	for _, path := range paths {
		recs, err := r.decodeFile(path)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}

	r.records = records
	r.loaded = true
	return records, nil
}

// resolveFiles lists the files the current file mode covers. A missing
// policies directory or file means "no policy exists yet" and yields no
// paths.
func (r *FileRepository) resolveFiles() ([]string, error) {
	if r.cfg.Mode == FileModeSingle {
		path := r.canonicalFile()
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return nil, nil
			}
			return nil, &LoadError{Path: path, Message: "failed to access policies file", Cause: err}
		}
		return []string{path}, nil
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &LoadError{Path: r.dir, Message: "failed to list policies directory", Cause: err}
	}

	suffix := "." + r.codec.Extension()
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		paths = append(paths, filepath.Join(r.dir, entry.Name()))
	}

	// Fragments concatenate in filename order.
	sort.Strings(paths)
	return paths, nil
}

// decodeFile reads and decodes one file. Decode failures and oversized files
// yield zero rules for that file, not an overall failure; only filesystem
// faults propagate.
func (r *FileRepository) decodeFile(path string) ([]codec.Record, error) {
	if r.cfg.MaxFileSize > 0 {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, nil
			}
			return nil, &LoadError{Path: path, Message: "failed to access policies file", Cause: err}
		}
		if info.Size() > r.cfg.MaxFileSize {
			r.logger.Warn("policy file exceeds size limit, skipping",
				"path", path,
				"size", info.Size(),
				"limit", r.cfg.MaxFileSize,
			)
			r.mets.RecordDecodeFailure(string(r.cfg.Driver))
			return nil, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &LoadError{Path: path, Message: "failed to read policies file", Cause: err}
	}

	records, ok := r.codec.Decode(data)
	if !ok {
		r.logger.Warn("policy file failed to decode, treating as empty", "path", path)
		r.mets.RecordDecodeFailure(string(r.cfg.Driver))
		return nil, nil
	}
	return records, nil
}
