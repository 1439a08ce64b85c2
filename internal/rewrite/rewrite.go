// Package rewrite implements history rewriting operations: cherry-pick,
// squash and reword. Each operation computes a complete plan, validates it,
// and only then writes commit objects. References are never touched; callers
// decide what to point at the returned commits.
package rewrite

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"stackit.dev/gitrewrite/internal/commit"
	rwerrors "stackit.dev/gitrewrite/internal/errors"
	"stackit.dev/gitrewrite/internal/git"
	"stackit.dev/gitrewrite/internal/identity"
	"stackit.dev/gitrewrite/internal/signing"
)

// Backend is the part of the repository the rewriter reads from
type Backend interface {
	CommitObject(hash plumbing.Hash) (*object.Commit, error)
	MergeTrees(ctx context.Context, base, ours, theirs plumbing.Hash) (git.MergeResult, error)
}

// Rewriter runs rewrite operations against a backend
type Rewriter struct {
	Backend Backend
	Builder *commit.Builder
	Logger  *slog.Logger
}

// New creates a Rewriter. A nil logger discards output.
func New(backend Backend, builder *commit.Builder, logger *slog.Logger) *Rewriter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Rewriter{Backend: backend, Builder: builder, Logger: logger}
}

// Step is one commit to create
type Step struct {
	// Source is the commit being rewritten, nil for synthesized commits
	Source  *object.Commit
	Tree    plumbing.Hash
	Parents []plumbing.Hash
	Message string
	Author  identity.Identity
}

// Plan is the fully validated list of commits an operation will create.
// Steps whose Parents is nil are parented on the previous step's result.
type Plan struct {
	Op    string
	Steps []Step
}

// apply signs every step of the plan with a single committer identity and
// writes the commits only once all of them are signed. A step's parent id is
// computed from the encoded previous commit before anything is stored.
func (r *Rewriter) apply(ctx context.Context, plan Plan, signer signing.Signer) ([]plumbing.Hash, error) {
	committer, err := r.Builder.Committer()
	if err != nil {
		return nil, err
	}

	prepared := make([]*object.Commit, 0, len(plan.Steps))
	ids := make([]plumbing.Hash, 0, len(plan.Steps))
	for i, step := range plan.Steps {
		parents := step.Parents
		if parents == nil && i > 0 {
			parents = []plumbing.Hash{ids[i-1]}
		}
		c, err := r.Builder.Prepare(ctx, commit.Descriptor{
			Tree:      step.Tree,
			Parents:   parents,
			Message:   step.Message,
			Author:    step.Author,
			Committer: committer,
		}, signer)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", plan.Op, err)
		}
		id, err := commit.Hash(c)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", plan.Op, err)
		}
		prepared = append(prepared, c)
		ids = append(ids, id)
	}

	for i, c := range prepared {
		id, err := r.Builder.Write(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", plan.Op, err)
		}
		if id != ids[i] {
			return nil, fmt.Errorf("%s: commit written as %s, expected %s: %w", plan.Op, id, ids[i], rwerrors.ErrBackend)
		}
		if step := plan.Steps[i]; step.Source != nil {
			r.Logger.Debug("rewrote commit", "op", plan.Op, "old", step.Source.Hash.String(), "new", id.String())
		}
	}
	return ids, nil
}

func (r *Rewriter) readCommits(hashes []plumbing.Hash) ([]*object.Commit, error) {
	commits := make([]*object.Commit, 0, len(hashes))
	for _, h := range hashes {
		c, err := r.Backend.CommitObject(h)
		if err != nil {
			return nil, err
		}
		commits = append(commits, c)
	}
	return commits, nil
}

func short(h plumbing.Hash) string {
	return h.String()[:7]
}

// joinMessages concatenates messages separated by blank lines
func joinMessages(commits []*object.Commit) string {
	parts := make([]string, 0, len(commits))
	for _, c := range commits {
		if msg := strings.TrimRight(c.Message, "\n"); msg != "" {
			parts = append(parts, msg)
		}
	}
	return strings.Join(parts, "\n\n") + "\n"
}
