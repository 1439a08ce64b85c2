// Package filter selects commits from a history walk. Filters are lazy and
// restartable: every range over All starts a new walk from the source.
package filter

import (
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/go-git/go-git/v5/plumbing/object"
)

// Source starts a fresh commit walk
type Source func() (object.CommitIter, error)

// Predicate reports whether a commit should be kept
type Predicate func(c *object.Commit) (bool, error)

// Filter yields the commits of a source accepted by every predicate, in the
// source's walk order
type Filter struct {
	source Source
	preds  []Predicate
}

// New creates a filter. With no predicates every commit is kept.
func New(source Source, preds ...Predicate) *Filter {
	return &Filter{source: source, preds: preds}
}

// All returns an iterator over the matching commits. A walk or predicate
// error is yielded once and ends the iteration.
func (f *Filter) All() iter.Seq2[*object.Commit, error] {
	return func(yield func(*object.Commit, error) bool) {
		commits, err := f.source()
		if err != nil {
			yield(nil, err)
			return
		}
		defer commits.Close()

		for {
			c, err := commits.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}

			ok, err := f.match(c)
			if err != nil {
				yield(nil, fmt.Errorf("filter commit %s: %w", c.Hash, err))
				return
			}
			if ok && !yield(c, nil) {
				return
			}
		}
	}
}

// Collect returns every matching commit
func (f *Filter) Collect() ([]*object.Commit, error) {
	return f.First(-1)
}

// First returns at most n matching commits; a negative n means no limit.
// The walk stops as soon as n commits have been found.
func (f *Filter) First(n int) ([]*object.Commit, error) {
	var out []*object.Commit
	if n == 0 {
		return out, nil
	}
	for c, err := range f.All() {
		if err != nil {
			return nil, err
		}
		out = append(out, c)
		if n > 0 && len(out) == n {
			break
		}
	}
	return out, nil
}

func (f *Filter) match(c *object.Commit) (bool, error) {
	for _, p := range f.preds {
		ok, err := p(c)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}
