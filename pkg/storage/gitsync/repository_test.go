package gitsync

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"castellan-hq/castellan/pkg/config"
)

// initSourceRepo creates a local git repository with one committed policy
// file, for use as a clone source.
func initSourceRepo(t *testing.T, dir string) *gogit.Repository {
	t.Helper()

	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("failed to init repo: %v", err)
	}

	commitFile(t, repo, dir, "policies.json", `[{"subject":"user:1","action":"read","effect":"Allow","priority":1}]`)
	return repo
}

// commitFile writes a file into the repository worktree and commits it,
// returning the commit SHA.
func commitFile(t *testing.T, repo *gogit.Repository, dir, name, content string) string {
	t.Helper()

	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("failed to get worktree: %v", err)
	}
	if _, err := worktree.Add(name); err != nil {
		t.Fatalf("failed to add %s: %v", name, err)
	}

	hash, err := worktree.Commit("update "+name, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "Test User",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("failed to commit: %v", err)
	}
	return hash.String()
}

// testGitConfig returns a config pointing at a local source repository.
// go-git's PlainInit names the default branch "master".
func testGitConfig(source, local string) *config.GitConfig {
	return &config.GitConfig{
		Enabled:    true,
		Repository: source,
		Branch:     "master",
		LocalPath:  local,
		Timeout:    10 * time.Second,
		Auth:       config.GitAuthConfig{Method: "none"},
	}
}

func TestNewRepository(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.GitConfig
		wantErr bool
	}{
		{"nil config", nil, true},
		{"empty repository URL", &config.GitConfig{Branch: "main"}, true},
		{"empty branch", &config.GitConfig{Repository: "https://example.com/policies.git"}, true},
		{"valid config", testGitConfig("https://example.com/policies.git", "/tmp/castellan-test"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, err := NewRepository(tt.cfg, nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewRepository() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err == nil && repo == nil {
				t.Error("NewRepository() returned nil repository")
			}
		})
	}
}

func TestNewRepositoryDefaultLocalPath(t *testing.T) {
	cfg := testGitConfig("https://example.com/policies.git", "")

	repo, err := NewRepository(cfg, nil)
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	if repo.LocalPath() == "" {
		t.Error("LocalPath() is empty, want a default checkout directory")
	}
}

func TestSyncClonesOnFirstUse(t *testing.T) {
	sourceDir := t.TempDir()
	source := initSourceRepo(t, sourceDir)

	localDir := filepath.Join(t.TempDir(), "checkout")
	repo, err := NewRepository(testGitConfig(sourceDir, localDir), nil)
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}

	result, err := repo.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	if !result.Changed {
		t.Error("initial Sync() Changed = false, want true")
	}
	head, err := source.Head()
	if err != nil {
		t.Fatalf("failed to read source HEAD: %v", err)
	}
	if result.ToSHA != head.Hash().String() {
		t.Errorf("Sync() ToSHA = %s, want source HEAD %s", result.ToSHA, head.Hash().String())
	}

	// The checkout holds the committed policy file.
	if _, err := os.Stat(filepath.Join(localDir, "policies.json")); err != nil {
		t.Errorf("policies.json missing from checkout: %v", err)
	}
}

func TestSyncPullsUpdates(t *testing.T) {
	sourceDir := t.TempDir()
	source := initSourceRepo(t, sourceDir)

	repo, err := NewRepository(testGitConfig(sourceDir, filepath.Join(t.TempDir(), "checkout")), nil)
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}

	first, err := repo.Sync(context.Background())
	if err != nil {
		t.Fatalf("initial Sync() error = %v", err)
	}

	newSHA := commitFile(t, source, sourceDir, "extra.json", `[]`)

	second, err := repo.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync() after source commit error = %v", err)
	}
	if !second.Changed {
		t.Error("Sync() Changed = false after source commit, want true")
	}
	if second.FromSHA != first.ToSHA {
		t.Errorf("Sync() FromSHA = %s, want previous HEAD %s", second.FromSHA, first.ToSHA)
	}
	if second.ToSHA != newSHA {
		t.Errorf("Sync() ToSHA = %s, want new commit %s", second.ToSHA, newSHA)
	}

	third, err := repo.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync() with no source change error = %v", err)
	}
	if third.Changed {
		t.Error("Sync() Changed = true with no source change, want false")
	}
	if third.FromSHA != third.ToSHA {
		t.Errorf("Sync() moved from %s to %s with no source change", third.FromSHA, third.ToSHA)
	}
}

func TestSyncReopensExistingCheckout(t *testing.T) {
	sourceDir := t.TempDir()
	source := initSourceRepo(t, sourceDir)

	localDir := filepath.Join(t.TempDir(), "checkout")
	cfg := testGitConfig(sourceDir, localDir)

	first, err := NewRepository(cfg, nil)
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	if _, err := first.Sync(context.Background()); err != nil {
		t.Fatalf("initial Sync() error = %v", err)
	}

	// A fresh instance over the same path opens the checkout instead of
	// cloning again.
	second, err := NewRepository(cfg, nil)
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	result, err := second.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync() over existing checkout error = %v", err)
	}

	head, err := source.Head()
	if err != nil {
		t.Fatalf("failed to read source HEAD: %v", err)
	}
	if result.ToSHA != head.Hash().String() {
		t.Errorf("Sync() ToSHA = %s, want source HEAD %s", result.ToSHA, head.Hash().String())
	}
}

func TestSyncCloneFailure(t *testing.T) {
	cfg := testGitConfig(filepath.Join(t.TempDir(), "does-not-exist"), filepath.Join(t.TempDir(), "checkout"))

	repo, err := NewRepository(cfg, nil)
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}

	if _, err := repo.Sync(context.Background()); err == nil {
		t.Error("Sync() error = nil for nonexistent source, want error")
	}
}

func TestAuthMethods(t *testing.T) {
	tests := []struct {
		name    string
		auth    config.GitAuthConfig
		want    *githttp.BasicAuth
		wantNil bool
		wantErr bool
	}{
		{"none", config.GitAuthConfig{Method: "none"}, nil, true, false},
		{"empty method defaults to none", config.GitAuthConfig{}, nil, true, false},
		{"basic", config.GitAuthConfig{Method: "basic", Username: "alice", Password: "s3cret"},
			&githttp.BasicAuth{Username: "alice", Password: "s3cret"}, false, false},
		{"basic without username", config.GitAuthConfig{Method: "basic", Password: "s3cret"}, nil, false, true},
		{"token", config.GitAuthConfig{Method: "token", Token: "tok-123"},
			&githttp.BasicAuth{Username: "git", Password: "tok-123"}, false, false},
		{"token without token", config.GitAuthConfig{Method: "token"}, nil, false, true},
		{"unsupported method", config.GitAuthConfig{Method: "ssh-agent"}, nil, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testGitConfig("https://example.com/policies.git", "/tmp/castellan-test")
			cfg.Auth = tt.auth

			repo, err := NewRepository(cfg, nil)
			if err != nil {
				t.Fatalf("NewRepository() error = %v", err)
			}

			got, err := repo.auth()
			if tt.wantErr {
				if err == nil {
					t.Error("auth() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("auth() error = %v, want nil", err)
			}

			if tt.wantNil {
				if got != nil {
					t.Errorf("auth() = %v, want nil", got)
				}
				return
			}

			basic, ok := got.(*githttp.BasicAuth)
			if !ok {
				t.Fatalf("auth() returned %T, want *githttp.BasicAuth", got)
			}
			if basic.Username != tt.want.Username || basic.Password != tt.want.Password {
				t.Errorf("auth() = %s/%s, want %s/%s",
					basic.Username, basic.Password, tt.want.Username, tt.want.Password)
			}
		})
	}
}
