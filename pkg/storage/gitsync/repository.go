package gitsync

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"castellan-hq/castellan/pkg/config"
)

// SyncResult describes one Sync call.
type SyncResult struct {
	// FromSHA is the HEAD commit before the sync. Empty on the initial
	// clone.
	FromSHA string

	// ToSHA is the HEAD commit after the sync.
	ToSHA string

	// Changed reports whether the checkout moved.
	Changed bool
}

// Repository keeps a local checkout of a remote policy bundle up to date.
type Repository struct {
	cfg       *config.GitConfig
	localPath string
	logger    *slog.Logger

	mu   sync.Mutex
	repo *gogit.Repository
}

// NewRepository creates a sync manager for the configured remote.
func NewRepository(cfg *config.GitConfig, logger *slog.Logger) (*Repository, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Repository == "" {
		return nil, fmt.Errorf("repository URL cannot be empty")
	}
	if cfg.Branch == "" {
		return nil, fmt.Errorf("branch cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	localPath := cfg.LocalPath
	if localPath == "" {
		localPath = filepath.Join(os.TempDir(), "castellan-policies")
	}

	return &Repository{
		cfg:       cfg,
		localPath: localPath,
		logger:    logger.With("component", "storage.gitsync"),
	}, nil
}

// LocalPath returns the checkout directory, suitable as a storage base path.
func (r *Repository) LocalPath() string {
	return r.localPath
}

// Sync clones the remote on first use and pulls afterwards. It returns what
// moved, if anything.
func (r *Repository) Sync(ctx context.Context) (*SyncResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.repo == nil {
		if err := r.open(ctx); err != nil {
			return nil, err
		}
		head, err := r.repo.Head()
		if err != nil {
			return nil, fmt.Errorf("failed to read HEAD: %w", err)
		}
		return &SyncResult{ToSHA: head.Hash().String(), Changed: true}, nil
	}

	return r.pull(ctx)
}

// open opens an existing checkout or clones a fresh one.
func (r *Repository) open(ctx context.Context) error {
	if _, err := os.Stat(filepath.Join(r.localPath, ".git")); err == nil {
		repo, err := gogit.PlainOpen(r.localPath)
		if err != nil {
			return fmt.Errorf("failed to open existing checkout %q: %w", r.localPath, err)
		}
		r.repo = repo
		return nil
	}

	if err := os.MkdirAll(r.localPath, 0755); err != nil {
		return fmt.Errorf("failed to create checkout directory: %w", err)
	}

	auth, err := r.auth()
	if err != nil {
		return err
	}

	cloneCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	r.logger.Info("cloning policy bundle", "repository", r.cfg.Repository, "branch", r.cfg.Branch)

	repo, err := gogit.PlainCloneContext(cloneCtx, r.localPath, false, &gogit.CloneOptions{
		URL:           r.cfg.Repository,
		ReferenceName: plumbing.NewBranchReferenceName(r.cfg.Branch),
		SingleBranch:  r.cfg.Depth > 0,
		Depth:         r.cfg.Depth,
		Auth:          auth,
	})
	if err != nil {
		return fmt.Errorf("failed to clone %q: %w", r.cfg.Repository, err)
	}

	r.repo = repo
	return nil
}

func (r *Repository) pull(ctx context.Context) (*SyncResult, error) {
	head, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to read HEAD: %w", err)
	}
	fromSHA := head.Hash().String()

	worktree, err := r.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	auth, err := r.auth()
	if err != nil {
		return nil, err
	}

	pullCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	err = worktree.PullContext(pullCtx, &gogit.PullOptions{
		RemoteName: "origin",
		Auth:       auth,
	})
	if err != nil && err != gogit.NoErrAlreadyUpToDate {
		return nil, fmt.Errorf("failed to pull: %w", err)
	}

	newHead, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to read HEAD after pull: %w", err)
	}
	toSHA := newHead.Hash().String()

	if fromSHA != toSHA {
		r.logger.Info("policy bundle updated", "from", fromSHA, "to", toSHA)
	}

	return &SyncResult{
		FromSHA: fromSHA,
		ToSHA:   toSHA,
		Changed: fromSHA != toSHA,
	}, nil
}

// auth builds the transport auth for the configured method. Token auth uses
// HTTP basic auth with the token as password; the username is ignored by the
// common hosts.
func (r *Repository) auth() (transport.AuthMethod, error) {
	switch r.cfg.Auth.Method {
	case "", "none":
		return nil, nil
	case "basic":
		if r.cfg.Auth.Username == "" {
			return nil, fmt.Errorf("username cannot be empty for basic auth")
		}
		return &githttp.BasicAuth{
			Username: r.cfg.Auth.Username,
			Password: r.cfg.Auth.Password,
		}, nil
	case "token":
		if r.cfg.Auth.Token == "" {
			return nil, fmt.Errorf("token cannot be empty for token auth")
		}
		return &githttp.BasicAuth{
			Username: "git",
			Password: r.cfg.Auth.Token,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported git auth method %q", r.cfg.Auth.Method)
	}
}
