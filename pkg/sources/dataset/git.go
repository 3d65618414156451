package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// syncTimeout bounds a single clone or pull.
const syncTimeout = 2 * time.Minute

// gitSyncer keeps a local clone of the denylist repository up to date.
type gitSyncer struct {
	url    string
	branch string
	dir    string
	repo   *gogit.Repository
}

func newGitSyncer(url, branch, dir string) *gitSyncer {
	return &gitSyncer{url: url, branch: branch, dir: dir}
}

// Sync clones the repository on first use and pulls afterwards. It returns
// true when the working tree changed.
func (g *gitSyncer) Sync(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, syncTimeout)
	defer cancel()

	if g.repo == nil {
		if _, err := os.Stat(filepath.Join(g.dir, ".git")); err == nil {
			repo, err := gogit.PlainOpen(g.dir)
			if err != nil {
				return false, fmt.Errorf("failed to open existing clone: %w", err)
			}
			g.repo = repo
		} else {
			return true, g.clone(ctx)
		}
	}

	return g.pull(ctx)
}

func (g *gitSyncer) clone(ctx context.Context) error {
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create clone directory: %w", err)
	}

	opts := &gogit.CloneOptions{
		URL:          g.url,
		SingleBranch: true,
		Depth:        1,
	}
	if g.branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(g.branch)
	}

	repo, err := gogit.PlainCloneContext(ctx, g.dir, false, opts)
	if err != nil {
		return fmt.Errorf("failed to clone %q: %w", g.url, err)
	}

	g.repo = repo
	return nil
}

func (g *gitSyncer) pull(ctx context.Context) (bool, error) {
	worktree, err := g.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("failed to get worktree: %w", err)
	}

	opts := &gogit.PullOptions{SingleBranch: true}
	if g.branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(g.branch)
	}

	err = worktree.PullContext(ctx, opts)
	if errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to pull %q: %w", g.url, err)
	}

	return true, nil
}
