package rewrite

import (
	"context"
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	rwerrors "stackit.dev/gitrewrite/internal/errors"
	"stackit.dev/gitrewrite/internal/git"
	"stackit.dev/gitrewrite/internal/signing"
)

// CherryPickOptions configures CherryPick and CherryPickAll
type CherryPickOptions struct {
	// Mainline selects the parent, numbered from 1, that merge commits are
	// diffed against. Zero means unset. Ordinary commits ignore it.
	Mainline int
	Signer   signing.Signer
}

// CherryPick applies the change source introduced on top of onto and returns
// the new commit. The message and author of source are kept; the committer
// is resolved fresh.
func (r *Rewriter) CherryPick(ctx context.Context, source, onto plumbing.Hash, opts CherryPickOptions) (plumbing.Hash, error) {
	ids, err := r.CherryPickAll(ctx, []plumbing.Hash{source}, onto, opts)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	return ids[0], nil
}

// CherryPickAll cherry-picks sources, oldest first, each onto the result of
// the previous one. Every merge is computed before the first commit is
// written, so a conflict anywhere leaves the object store without new commits.
func (r *Rewriter) CherryPickAll(ctx context.Context, sources []plumbing.Hash, onto plumbing.Hash, opts CherryPickOptions) ([]plumbing.Hash, error) {
	if len(sources) == 0 {
		return nil, nil
	}
	plan, err := r.PlanCherryPick(ctx, sources, onto, opts.Mainline)
	if err != nil {
		return nil, err
	}
	return r.apply(ctx, plan, opts.Signer)
}

// PlanCherryPick computes the trees a cherry-pick of sources onto onto would
// produce without writing any commit
func (r *Rewriter) PlanCherryPick(ctx context.Context, sources []plumbing.Hash, onto plumbing.Hash, mainline int) (Plan, error) {
	ontoCommit, err := r.Backend.CommitObject(onto)
	if err != nil {
		return Plan{}, err
	}
	commits, err := r.readCommits(sources)
	if err != nil {
		return Plan{}, err
	}

	bases := make([]plumbing.Hash, len(commits))
	for i, src := range commits {
		bases[i], err = r.baseTree(src, mainline)
		if err != nil {
			return Plan{}, err
		}
	}

	plan := Plan{Op: "cherry-pick"}
	tree := ontoCommit.TreeHash
	for i, src := range commits {
		res, err := r.Backend.MergeTrees(ctx, bases[i], tree, src.TreeHash)
		if err != nil {
			return Plan{}, err
		}
		if !res.Clean() {
			return Plan{}, rwerrors.NewConflictsError("cherry-pick "+short(src.Hash), res.Conflicts)
		}

		step := Step{
			Source:  src,
			Tree:    res.Tree,
			Message: src.Message,
			Author:  src.Author,
		}
		if i == 0 {
			step.Parents = []plumbing.Hash{onto}
		}
		plan.Steps = append(plan.Steps, step)
		tree = res.Tree
	}
	return plan, nil
}

// baseTree returns the tree src's change is measured against: its parent's,
// the mainline parent's for merges, or the empty tree for root commits.
// mainline is ignored for commits with a single parent or none.
func (r *Rewriter) baseTree(src *object.Commit, mainline int) (plumbing.Hash, error) {
	n := len(src.ParentHashes)
	switch {
	case n > 1 && mainline == 0:
		return plumbing.ZeroHash, fmt.Errorf("commit %s is a merge: %w", short(src.Hash), rwerrors.ErrAmbiguousMainline)
	case n > 1 && (mainline < 1 || mainline > n):
		return plumbing.ZeroHash, fmt.Errorf("commit %s has %d parents, got mainline %d: %w",
			short(src.Hash), n, mainline, rwerrors.ErrInvalidMainline)
	case n == 0:
		return git.EmptyTreeHash, nil
	}

	idx := 0
	if n > 1 {
		idx = mainline - 1
	}
	parent, err := r.Backend.CommitObject(src.ParentHashes[idx])
	if err != nil {
		return plumbing.ZeroHash, err
	}
	return parent.TreeHash, nil
}
