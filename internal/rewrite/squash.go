package rewrite

import (
	"context"
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	rwerrors "stackit.dev/gitrewrite/internal/errors"
	"stackit.dev/gitrewrite/internal/signing"
)

// SquashOptions configures Squash
type SquashOptions struct {
	// Message replaces the combined messages of the squashed commits when set
	Message *string
	Signer  signing.Signer
}

// Squash folds a linear chain of commits, oldest first, into one commit with
// the last commit's tree and the first commit's parents. The author of the
// first commit is kept.
func (r *Rewriter) Squash(ctx context.Context, chain []plumbing.Hash, opts SquashOptions) (plumbing.Hash, error) {
	plan, err := r.PlanSquash(chain, opts.Message)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	ids, err := r.apply(ctx, plan, opts.Signer)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	return ids[0], nil
}

// PlanSquash validates the chain and returns the single step squashing it
func (r *Rewriter) PlanSquash(chain []plumbing.Hash, message *string) (Plan, error) {
	if len(chain) == 0 {
		return Plan{}, rwerrors.ErrEmptyChain
	}
	commits, err := r.readCommits(chain)
	if err != nil {
		return Plan{}, err
	}
	if err := checkLinear(commits); err != nil {
		return Plan{}, err
	}

	first, last := commits[0], commits[len(commits)-1]
	msg := joinMessages(commits)
	if message != nil {
		msg = *message
	}
	return Plan{
		Op: "squash",
		Steps: []Step{{
			Tree:    last.TreeHash,
			Parents: append([]plumbing.Hash{}, first.ParentHashes...),
			Message: msg,
			Author:  first.Author,
		}},
	}, nil
}

// checkLinear verifies each commit's only parent is the previous commit
func checkLinear(commits []*object.Commit) error {
	if n := len(commits[0].ParentHashes); n > 1 {
		return fmt.Errorf("commit %s is a merge: %w", short(commits[0].Hash), rwerrors.ErrNotLinear)
	}
	seen := map[plumbing.Hash]bool{commits[0].Hash: true}
	for i := 1; i < len(commits); i++ {
		c := commits[i]
		if seen[c.Hash] {
			return fmt.Errorf("commit %s appears twice: %w", short(c.Hash), rwerrors.ErrNotLinear)
		}
		seen[c.Hash] = true
		if len(c.ParentHashes) != 1 || c.ParentHashes[0] != commits[i-1].Hash {
			return fmt.Errorf("commit %s is not a child of %s: %w",
				short(c.Hash), short(commits[i-1].Hash), rwerrors.ErrNotLinear)
		}
	}
	return nil
}
