package git

import (
	"context"
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	rwerrors "stackit.dev/gitrewrite/internal/errors"
)

// EmptyTreeHash is the id of the tree with no entries
var EmptyTreeHash = plumbing.NewHash("4b825dc642cb6eb9a060e54bf8d69288fbee4904")

// CommitObject reads a commit
func (r *Repository) CommitObject(hash plumbing.Hash) (*object.Commit, error) {
	c, err := r.repo.CommitObject(hash)
	if err != nil {
		return nil, rwerrors.NewBackendError(fmt.Sprintf("read commit %s", hash), err)
	}
	return c, nil
}

// TreeObject reads a tree
func (r *Repository) TreeObject(hash plumbing.Hash) (*object.Tree, error) {
	t, err := r.repo.TreeObject(hash)
	if err != nil {
		return nil, rwerrors.NewBackendError(fmt.Sprintf("read tree %s", hash), err)
	}
	return t, nil
}

// WriteCommit persists c, signature header included, and returns its id
func (r *Repository) WriteCommit(ctx context.Context, c *object.Commit) (plumbing.Hash, error) {
	if err := ctx.Err(); err != nil {
		return plumbing.ZeroHash, err
	}
	obj := r.repo.Storer.NewEncodedObject()
	if err := c.Encode(obj); err != nil {
		return plumbing.ZeroHash, rwerrors.NewBackendError("encode commit", err)
	}
	hash, err := r.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, rwerrors.NewBackendError("write commit", err)
	}
	return hash, nil
}

// Resolve turns a revision expression (branch, tag, HEAD~2, abbreviated id)
// into a commit id
func (r *Repository) Resolve(rev string) (plumbing.Hash, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return plumbing.ZeroHash, rwerrors.NewBackendError(fmt.Sprintf("resolve %q", rev), err)
	}
	return *hash, nil
}
