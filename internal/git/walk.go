package git

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	rwerrors "stackit.dev/gitrewrite/internal/errors"
)

// Walk returns a factory for history iterators starting at from, newest
// first. Each call starts a fresh walk.
func (r *Repository) Walk(from plumbing.Hash) func() (object.CommitIter, error) {
	return func() (object.CommitIter, error) {
		iter, err := r.repo.Log(&git.LogOptions{From: from})
		if err != nil {
			return nil, rwerrors.NewBackendError(fmt.Sprintf("walk %s", from), err)
		}
		return iter, nil
	}
}

// WalkRange is like Walk but stops at commits reachable from exclude, the
// equivalent of `git log exclude..from`.
func (r *Repository) WalkRange(exclude, from plumbing.Hash) func() (object.CommitIter, error) {
	return func() (object.CommitIter, error) {
		seen, err := r.ancestors(exclude)
		if err != nil {
			return nil, err
		}
		head, err := r.CommitObject(from)
		if err != nil {
			return nil, err
		}
		return object.NewCommitPreorderIter(head, seen, nil), nil
	}
}

// WalkRangeReverse walks the same commits as WalkRange with every commit
// after its parents, the order commits of a range are replayed in.
func (r *Repository) WalkRangeReverse(exclude, from plumbing.Hash) func() (object.CommitIter, error) {
	return func() (object.CommitIter, error) {
		var commits []*object.Commit
		iter, err := r.WalkRange(exclude, from)()
		if err != nil {
			return nil, err
		}
		err = iter.ForEach(func(c *object.Commit) error {
			commits = append(commits, c)
			return nil
		})
		if err != nil {
			return nil, rwerrors.NewBackendError(fmt.Sprintf("walk %s", from), err)
		}
		return &commitSliceIter{commits: parentsFirst(commits)}, nil
	}
}

// parentsFirst sorts commits so that each one follows all of its parents
// that are part of the set. Ties keep the reverse of the walk order.
func parentsFirst(commits []*object.Commit) []*object.Commit {
	pending := make(map[plumbing.Hash]int, len(commits))
	for _, c := range commits {
		pending[c.Hash] = 0
	}
	children := make(map[plumbing.Hash][]*object.Commit, len(commits))
	var ready []*object.Commit
	for i := len(commits) - 1; i >= 0; i-- {
		c := commits[i]
		for _, p := range c.ParentHashes {
			if _, ok := pending[p]; ok {
				pending[c.Hash]++
				children[p] = append(children[p], c)
			}
		}
		if pending[c.Hash] == 0 {
			ready = append(ready, c)
		}
	}

	sorted := make([]*object.Commit, 0, len(commits))
	for len(ready) > 0 {
		c := ready[0]
		ready = ready[1:]
		sorted = append(sorted, c)
		for _, child := range children[c.Hash] {
			pending[child.Hash]--
			if pending[child.Hash] == 0 {
				ready = append(ready, child)
			}
		}
	}
	return sorted
}

// commitSliceIter is an object.CommitIter over an already loaded list
type commitSliceIter struct {
	commits []*object.Commit
	pos     int
}

func (it *commitSliceIter) Next() (*object.Commit, error) {
	if it.pos >= len(it.commits) {
		return nil, io.EOF
	}
	c := it.commits[it.pos]
	it.pos++
	return c, nil
}

func (it *commitSliceIter) ForEach(cb func(*object.Commit) error) error {
	defer it.Close()
	for {
		c, err := it.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err := cb(c); err != nil {
			if errors.Is(err, storer.ErrStop) {
				return nil
			}
			return err
		}
	}
}

func (it *commitSliceIter) Close() {
	it.pos = len(it.commits)
}

// ancestors returns from and every commit reachable from it; empty for the zero hash
func (r *Repository) ancestors(from plumbing.Hash) (map[plumbing.Hash]bool, error) {
	seen := make(map[plumbing.Hash]bool)
	if from.IsZero() {
		return seen, nil
	}
	base, err := r.CommitObject(from)
	if err != nil {
		return nil, err
	}
	err = object.NewCommitPreorderIter(base, nil, nil).ForEach(func(c *object.Commit) error {
		seen[c.Hash] = true
		return nil
	})
	if err != nil {
		return nil, rwerrors.NewBackendError(fmt.Sprintf("walk %s", from), err)
	}
	return seen, nil
}
