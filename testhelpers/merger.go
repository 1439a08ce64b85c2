package testhelpers

import (
	"context"
	"sort"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"stackit.dev/gitrewrite/internal/git"
)

// FileMerger is a whole-file three-way merge over go-git trees. A path
// conflicts when both sides changed it differently; there is no line-level
// merging.
type FileMerger struct {
	repo *gogit.Repository

	// Calls counts MergeTrees invocations
	Calls int
}

// NewFileMerger creates a merger over repo's object store
func NewFileMerger(repo *gogit.Repository) *FileMerger {
	return &FileMerger{repo: repo}
}

// MergeTrees implements git.Merger
func (m *FileMerger) MergeTrees(_ context.Context, base, ours, theirs plumbing.Hash) (git.MergeResult, error) {
	m.Calls++

	baseFiles, err := TreeFiles(m.repo, base)
	if err != nil {
		return git.MergeResult{}, err
	}
	ourFiles, err := TreeFiles(m.repo, ours)
	if err != nil {
		return git.MergeResult{}, err
	}
	theirFiles, err := TreeFiles(m.repo, theirs)
	if err != nil {
		return git.MergeResult{}, err
	}

	paths := make(map[string]bool)
	for _, files := range []map[string]string{baseFiles, ourFiles, theirFiles} {
		for p := range files {
			paths[p] = true
		}
	}

	merged := make(map[string]string)
	var conflicts []string
	for p := range paths {
		b, inBase := baseFiles[p]
		o, inOurs := ourFiles[p]
		t, inTheirs := theirFiles[p]

		same := func(x string, xok bool, y string, yok bool) bool {
			return xok == yok && x == y
		}
		switch {
		case same(o, inOurs, t, inTheirs):
			if inOurs {
				merged[p] = o
			}
		case same(o, inOurs, b, inBase):
			if inTheirs {
				merged[p] = t
			}
		case same(t, inTheirs, b, inBase):
			if inOurs {
				merged[p] = o
			}
		default:
			conflicts = append(conflicts, p)
		}
	}
	if len(conflicts) > 0 {
		sort.Strings(conflicts)
		return git.MergeResult{Conflicts: conflicts}, nil
	}

	tree, err := WriteTree(m.repo.Storer, merged)
	if err != nil {
		return git.MergeResult{}, err
	}
	return git.MergeResult{Tree: tree, Conflicts: conflicts}, nil
}
