package git

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

// Repository is the backend every rewrite operation runs against. Objects,
// configuration, references and history come from go-git; three-way tree
// merges are delegated to a Merger.
type Repository struct {
	repo    *git.Repository
	workDir string
	gitDir  string
	merger  Merger

	// userConfig enables the global and system configuration scopes
	userConfig bool
}

// OpenRepository opens the git repository containing path
func OpenRepository(path string) (*Repository, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	repo, err := git.PlainOpenWithOptions(absPath, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	r := &Repository{repo: repo, userConfig: true}

	if fs, ok := repo.Storer.(*filesystem.Storage); ok {
		r.gitDir = fs.Filesystem().Root()
	}
	wt, err := repo.Worktree()
	switch {
	case err == nil:
		r.workDir = wt.Filesystem.Root()
	case errors.Is(err, git.ErrIsBareRepository):
		r.workDir = r.gitDir
	default:
		return nil, fmt.Errorf("failed to open worktree: %w", err)
	}

	runDir := r.workDir
	if runDir == "" {
		runDir = absPath
	}
	r.merger = NewCLIMerger(NewCommandRunner(runDir))
	return r, nil
}

// NewRepository wraps an already opened go-git repository, typically one
// backed by in-memory storage. Only the repository's own configuration is
// consulted.
func NewRepository(repo *git.Repository, merger Merger) *Repository {
	return &Repository{repo: repo, merger: merger}
}

// Repo exposes the underlying go-git repository
func (r *Repository) Repo() *git.Repository {
	return r.repo
}

// WorkDir returns the root of the work tree, empty for in-memory repositories
func (r *Repository) WorkDir() string {
	return r.workDir
}

// GitDir returns the .git directory, empty for in-memory repositories
func (r *Repository) GitDir() string {
	return r.gitDir
}

// Merger returns the three-way tree merger used by MergeTrees
func (r *Repository) Merger() Merger {
	return r.merger
}
