package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"alice-hq/hassil-parser/pkg/config"
	"alice-hq/hassil-parser/pkg/intents"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
)

// GitSource reads documents from a clone of the intents repository.
//
// With a configured local path the clone is kept between fetches and
// pulled; otherwise every fetch clones into a temporary directory.
type GitSource struct {
	cfg      *config.GitSourceConfig
	language string
	auth     transport.AuthMethod
	opts     options

	mu     sync.Mutex
	commit string
}

// NewGitSource creates a git source. It fails only on invalid auth
// configuration; the repository is first contacted by Fetch.
func NewGitSource(cfg *config.GitSourceConfig, language string, opts ...Option) (*GitSource, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Repository == "" {
		return nil, fmt.Errorf("repository URL cannot be empty")
	}
	auth, err := gitAuth(&cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth provider: %w", err)
	}
	return &GitSource{
		cfg:      cfg,
		language: language,
		auth:     auth,
		opts:     newOptions("git", opts),
	}, nil
}

// Name implements Source.
func (s *GitSource) Name() string { return "git" }

// Commit returns the HEAD commit of the last successful fetch.
func (s *GitSource) Commit() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit
}

// Fetch implements Source.
func (s *GitSource) Fetch(ctx context.Context) (*intents.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.opts.context(ctx)
	defer cancel()

	localPath := s.cfg.LocalPath
	if localPath == "" {
		tempDir, err := os.MkdirTemp("", "hassil-intents-git-*")
		if err != nil {
			return nil, &FetchError{Source: s.Name(), Err: fmt.Errorf("create temp directory: %w", err)}
		}
		defer os.RemoveAll(tempDir)
		localPath = tempDir
	}

	repo, err := s.sync(ctx, localPath)
	if err != nil {
		return nil, &FetchError{Source: s.Name(), Err: err}
	}

	if ref, err := repo.Head(); err == nil {
		s.commit = ref.Hash().String()
	}

	dir := filepath.Join(localPath, filepath.FromSlash(s.cfg.Path), s.language)
	batch, err := ReadDir(dir, s.language, s.opts.logger)
	if err != nil {
		return nil, &FetchError{Source: s.Name(), Err: fmt.Errorf("read %s: %w", dir, err)}
	}

	s.opts.logger.Info("read intents from git", "commit", s.commit, "documents", len(batch.Documents))
	return batch, nil
}

// sync brings the clone at localPath up to date, cloning when absent. A
// clone that cannot be pulled (shallow history, diverged branch) is
// removed and cloned again.
func (s *GitSource) sync(ctx context.Context, localPath string) (*gogit.Repository, error) {
	if _, err := os.Stat(filepath.Join(localPath, ".git")); err == nil {
		repo, err := s.pull(ctx, localPath)
		if err == nil {
			return repo, nil
		}
		s.opts.logger.Warn("pull failed, cloning again", "path", localPath, "error", err)
		if err := os.RemoveAll(localPath); err != nil {
			return nil, fmt.Errorf("failed to clean existing repository: %w", err)
		}
	}
	return s.clone(ctx, localPath)
}

func (s *GitSource) clone(ctx context.Context, localPath string) (*gogit.Repository, error) {
	if err := os.MkdirAll(localPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create repository directory: %w", err)
	}

	s.opts.logger.Info("cloning intents repository",
		"repository", s.cfg.Repository, "branch", s.cfg.Branch, "depth", s.cfg.Depth)

	repo, err := gogit.PlainCloneContext(ctx, localPath, false, &gogit.CloneOptions{
		URL:           s.cfg.Repository,
		Auth:          s.auth,
		ReferenceName: plumbing.NewBranchReferenceName(s.cfg.Branch),
		SingleBranch:  true,
		Depth:         s.cfg.Depth,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to clone repository: %w", err)
	}
	return repo, nil
}

func (s *GitSource) pull(ctx context.Context, localPath string) (*gogit.Repository, error) {
	repo, err := gogit.PlainOpen(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open existing repo: %w", err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	err = worktree.PullContext(ctx, &gogit.PullOptions{
		RemoteName:    "origin",
		ReferenceName: plumbing.NewBranchReferenceName(s.cfg.Branch),
		SingleBranch:  true,
		Auth:          s.auth,
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return nil, fmt.Errorf("failed to pull: %w", err)
	}
	return repo, nil
}
