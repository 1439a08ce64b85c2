package git

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"

	rwerrors "stackit.dev/gitrewrite/internal/errors"
)

// MergeResult is the outcome of a three-way tree merge. Tree is only
// meaningful when Conflicts is empty.
type MergeResult struct {
	Tree      plumbing.Hash
	Conflicts []string
}

// Clean reports whether the merge produced no conflicts
func (m MergeResult) Clean() bool {
	return len(m.Conflicts) == 0
}

// Merger merges two trees against a common base tree, writing the result to
// the object store
type Merger interface {
	MergeTrees(ctx context.Context, base, ours, theirs plumbing.Hash) (MergeResult, error)
}

// MergeTrees runs the repository's three-way merge
func (r *Repository) MergeTrees(ctx context.Context, base, ours, theirs plumbing.Hash) (MergeResult, error) {
	if r.merger == nil {
		return MergeResult{}, rwerrors.NewBackendError("merge trees", errors.New("repository has no merger"))
	}
	return r.merger.MergeTrees(ctx, base, ours, theirs)
}

// CLIMerger merges trees with `git merge-tree --write-tree`
type CLIMerger struct {
	runner *CommandRunner
}

// NewCLIMerger creates a merger that runs git in the runner's directory
func NewCLIMerger(runner *CommandRunner) *CLIMerger {
	return &CLIMerger{runner: runner}
}

// MergeTrees implements Merger
func (m *CLIMerger) MergeTrees(ctx context.Context, base, ours, theirs plumbing.Hash) (MergeResult, error) {
	v, err := InstalledVersion(ctx)
	if err != nil {
		return MergeResult{}, rwerrors.NewBackendError("merge trees", err)
	}
	if err := CheckMergeTreeVersion(v); err != nil {
		return MergeResult{}, rwerrors.NewBackendError("merge trees", err)
	}

	out, err := m.runner.RunRaw(ctx,
		"merge-tree", "--write-tree", "--name-only", "--no-messages",
		"--merge-base="+base.String(), ours.String(), theirs.String())
	if err != nil {
		// Exit status 1 means the merge completed with conflicts.
		var cmdErr *rwerrors.GitCommandError
		if ExitCode(err) != 1 || !errors.As(err, &cmdErr) {
			return MergeResult{}, rwerrors.NewBackendError("merge trees", err)
		}
		out = cmdErr.Stdout
	}

	result, err := ParseMergeTreeOutput(out)
	if err != nil {
		return MergeResult{}, rwerrors.NewBackendError("merge trees", err)
	}
	return result, nil
}

// ParseMergeTreeOutput parses `git merge-tree --write-tree --name-only
// --no-messages` output: the tree id on the first line followed by one
// conflicted path per line. The id must be a full hex id of the object
// format go-git was built for, 40 characters for SHA-1 and 64 for SHA-256.
func ParseMergeTreeOutput(out string) (MergeResult, error) {
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	first := strings.TrimSpace(lines[0])
	if !plumbing.IsHash(first) {
		return MergeResult{}, fmt.Errorf("unexpected merge-tree output: %q", out)
	}

	result := MergeResult{Tree: plumbing.NewHash(first)}
	seen := make(map[string]bool)
	for _, line := range lines[1:] {
		if line == "" {
			break
		}
		if !seen[line] {
			seen[line] = true
			result.Conflicts = append(result.Conflicts, line)
		}
	}
	sort.Strings(result.Conflicts)
	return result, nil
}
