// Package source syncs a remote content repository into a local directory
// so the site can build from git-hosted articles instead of a checked-in
// content tree.
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// GitSource clones or updates one content repository.
type GitSource struct {
	url    string
	branch string
	dir    string
}

// NewGitSource prepares a sync of url (branch) into dir.
func NewGitSource(url, branch, dir string) *GitSource {
	return &GitSource{url: url, branch: branch, dir: dir}
}

// Sync brings dir up to date with the remote branch: a fresh clone when no
// checkout exists yet, a pull otherwise. Returns the resulting HEAD commit
// hash. An already-up-to-date pull is a success, not an error.
func (s *GitSource) Sync(ctx context.Context) (string, error) {
	if _, err := os.Stat(filepath.Join(s.dir, ".git")); err == nil {
		return s.pull(ctx)
	}
	return s.clone(ctx)
}

func (s *GitSource) clone(ctx context.Context) (string, error) {
	slog.Info("Cloning content repository",
		slog.String("url", s.url), slog.String("branch", s.branch), logfields.Path(s.dir))

	repo, err := git.PlainCloneContext(ctx, s.dir, false, &git.CloneOptions{
		URL:           s.url,
		ReferenceName: plumbing.NewBranchReferenceName(s.branch),
		SingleBranch:  true,
	})
	if err != nil {
		return "", fmt.Errorf("clone %s: %w", s.url, err)
	}
	return headHash(repo)
}

func (s *GitSource) pull(ctx context.Context) (string, error) {
	repo, err := git.PlainOpen(s.dir)
	if err != nil {
		return "", fmt.Errorf("open content checkout: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("worktree: %w", err)
	}

	err = wt.PullContext(ctx, &git.PullOptions{
		ReferenceName: plumbing.NewBranchReferenceName(s.branch),
		SingleBranch:  true,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return "", fmt.Errorf("pull %s: %w", s.url, err)
	}

	hash, err := headHash(repo)
	if err != nil {
		return "", err
	}
	slog.Info("Content repository up to date", slog.String("commit", hash[:8]), logfields.Path(s.dir))
	return hash, nil
}

func headHash(repo *git.Repository) (string, error) {
	ref, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	return ref.Hash().String(), nil
}
