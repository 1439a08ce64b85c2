package rewrite

import (
	"context"

	"github.com/go-git/go-git/v5/plumbing"

	"stackit.dev/gitrewrite/internal/signing"
)

// RewordOptions configures Reword
type RewordOptions struct {
	Signer signing.Signer
}

// Reword creates a copy of target with a new message. Tree, parents and
// author are unchanged; the committer is resolved fresh and the commit is
// re-signed when a signer is given.
func (r *Rewriter) Reword(ctx context.Context, target plumbing.Hash, message string, opts RewordOptions) (plumbing.Hash, error) {
	c, err := r.Backend.CommitObject(target)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	plan := Plan{
		Op: "reword",
		Steps: []Step{{
			Source:  c,
			Tree:    c.TreeHash,
			Parents: append([]plumbing.Hash{}, c.ParentHashes...),
			Message: message,
			Author:  c.Author,
		}},
	}
	ids, err := r.apply(ctx, plan, opts.Signer)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	return ids[0], nil
}
