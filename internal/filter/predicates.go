package filter

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// AuthorMatches keeps commits whose "Name <email>" author matches re
func AuthorMatches(re *regexp.Regexp) Predicate {
	return func(c *object.Commit) (bool, error) {
		return re.MatchString(formatSignature(c.Author)), nil
	}
}

// CommitterMatches keeps commits whose "Name <email>" committer matches re
func CommitterMatches(re *regexp.Regexp) Predicate {
	return func(c *object.Commit) (bool, error) {
		return re.MatchString(formatSignature(c.Committer)), nil
	}
}

// MessageMatches keeps commits whose message matches re
func MessageMatches(re *regexp.Regexp) Predicate {
	return func(c *object.Commit) (bool, error) {
		return re.MatchString(c.Message), nil
	}
}

// Since keeps commits committed at or after t
func Since(t time.Time) Predicate {
	return func(c *object.Commit) (bool, error) {
		return !c.Committer.When.Before(t), nil
	}
}

// Until keeps commits committed at or before t
func Until(t time.Time) Predicate {
	return func(c *object.Commit) (bool, error) {
		return !c.Committer.When.After(t), nil
	}
}

// MergesOnly keeps commits with more than one parent
func MergesOnly() Predicate {
	return func(c *object.Commit) (bool, error) {
		return c.NumParents() > 1, nil
	}
}

// NoMerges keeps commits with at most one parent
func NoMerges() Predicate {
	return func(c *object.Commit) (bool, error) {
		return c.NumParents() <= 1, nil
	}
}

// TouchesPath keeps commits that change a path matching one of the
// gitignore-style patterns, compared with the first parent. Root commits are
// compared with the empty tree. Later patterns win, so "!" negates an
// earlier match.
func TouchesPath(patterns ...string) Predicate {
	ps := make([]gitignore.Pattern, 0, len(patterns))
	for _, p := range patterns {
		ps = append(ps, gitignore.ParsePattern(p, nil))
	}
	matcher := gitignore.NewMatcher(ps)

	return func(c *object.Commit) (bool, error) {
		paths, err := changedPaths(c)
		if err != nil {
			return false, err
		}
		for _, p := range paths {
			if matcher.Match(strings.Split(p, "/"), false) {
				return true, nil
			}
		}
		return false, nil
	}
}

// And keeps commits accepted by every predicate
func And(preds ...Predicate) Predicate {
	return func(c *object.Commit) (bool, error) {
		for _, p := range preds {
			ok, err := p(c)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
}

// Or keeps commits accepted by at least one predicate
func Or(preds ...Predicate) Predicate {
	return func(c *object.Commit) (bool, error) {
		for _, p := range preds {
			ok, err := p(c)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	}
}

// Not inverts p
func Not(p Predicate) Predicate {
	return func(c *object.Commit) (bool, error) {
		ok, err := p(c)
		if err != nil {
			return false, err
		}
		return !ok, nil
	}
}

func formatSignature(s object.Signature) string {
	return fmt.Sprintf("%s <%s>", s.Name, s.Email)
}

// changedPaths lists the paths c changes relative to its first parent
func changedPaths(c *object.Commit) ([]string, error) {
	tree, err := c.Tree()
	if err != nil {
		return nil, fmt.Errorf("read tree of %s: %w", c.Hash, err)
	}
	var parentTree *object.Tree
	if c.NumParents() > 0 {
		parent, err := c.Parent(0)
		if err != nil {
			return nil, fmt.Errorf("read parent of %s: %w", c.Hash, err)
		}
		parentTree, err = parent.Tree()
		if err != nil {
			return nil, fmt.Errorf("read tree of %s: %w", parent.Hash, err)
		}
	}

	changes, err := object.DiffTree(parentTree, tree)
	if err != nil {
		return nil, fmt.Errorf("diff %s: %w", c.Hash, err)
	}
	paths := make([]string, 0, len(changes))
	for _, ch := range changes {
		name := ch.To.Name
		if name == "" {
			name = ch.From.Name
		}
		paths = append(paths, name)
	}
	return paths, nil
}
