package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/spf13/cobra"

	"stackit.dev/gitrewrite/internal/filter"
	"stackit.dev/gitrewrite/internal/git"
	"stackit.dev/gitrewrite/internal/runtime"
)

// parseRange splits "a..b". An empty side means HEAD.
func parseRange(arg string) (exclude, from string, ok bool) {
	exclude, from, ok = strings.Cut(arg, "..")
	if !ok {
		return "", "", false
	}
	if exclude == "" {
		exclude = "HEAD"
	}
	if from == "" {
		from = "HEAD"
	}
	return exclude, from, true
}

// resolveCommits expands revisions and "a..b" ranges into commit ids with
// every commit after its parents. Only commits from ranges are matched
// against preds; single revisions are taken as given.
func resolveCommits(repo *git.Repository, args []string, preds []filter.Predicate) ([]plumbing.Hash, error) {
	var hashes []plumbing.Hash
	for _, arg := range args {
		exclude, from, ok := parseRange(arg)
		if !ok {
			hash, err := repo.Resolve(arg)
			if err != nil {
				return nil, err
			}
			hashes = append(hashes, hash)
			continue
		}

		excludeHash, err := repo.Resolve(exclude)
		if err != nil {
			return nil, err
		}
		fromHash, err := repo.Resolve(from)
		if err != nil {
			return nil, err
		}
		commits, err := filter.New(repo.WalkRangeReverse(excludeHash, fromHash), preds...).Collect()
		if err != nil {
			return nil, fmt.Errorf("expand %s: %w", arg, err)
		}
		for _, c := range commits {
			hashes = append(hashes, c.Hash)
		}
	}
	return hashes, nil
}

type filterFlags struct {
	author    string
	committer string
	grep      string
	since     string
	until     string
	merges    bool
	noMerges  bool
	paths     []string
}

func addFilterFlags(cmd *cobra.Command, f *filterFlags) {
	cmd.Flags().StringVar(&f.author, "author", "", "Only commits whose author matches this regular expression")
	cmd.Flags().StringVar(&f.committer, "committer", "", "Only commits whose committer matches this regular expression")
	cmd.Flags().StringVar(&f.grep, "grep", "", "Only commits whose message matches this regular expression")
	cmd.Flags().StringVar(&f.since, "since", "", "Only commits committed at or after this time (RFC 3339 or YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.until, "until", "", "Only commits committed at or before this time (RFC 3339 or YYYY-MM-DD)")
	cmd.Flags().BoolVar(&f.merges, "merges", false, "Only merge commits")
	cmd.Flags().BoolVar(&f.noMerges, "no-merges", false, "Skip merge commits")
	cmd.Flags().StringArrayVar(&f.paths, "path", nil, "Only commits touching paths matching this gitignore-style pattern (repeatable)")
	cmd.MarkFlagsMutuallyExclusive("merges", "no-merges")
}

func (f *filterFlags) predicates() ([]filter.Predicate, error) {
	var preds []filter.Predicate

	regexps := []struct {
		flag  string
		value string
		pred  func(*regexp.Regexp) filter.Predicate
	}{
		{"author", f.author, filter.AuthorMatches},
		{"committer", f.committer, filter.CommitterMatches},
		{"grep", f.grep, filter.MessageMatches},
	}
	for _, r := range regexps {
		if r.value == "" {
			continue
		}
		re, err := regexp.Compile(r.value)
		if err != nil {
			return nil, fmt.Errorf("invalid --%s pattern: %w", r.flag, err)
		}
		preds = append(preds, r.pred(re))
	}

	if f.since != "" {
		t, err := parseTime(f.since, false)
		if err != nil {
			return nil, fmt.Errorf("invalid --since: %w", err)
		}
		preds = append(preds, filter.Since(t))
	}
	if f.until != "" {
		t, err := parseTime(f.until, true)
		if err != nil {
			return nil, fmt.Errorf("invalid --until: %w", err)
		}
		preds = append(preds, filter.Until(t))
	}

	switch {
	case f.merges:
		preds = append(preds, filter.MergesOnly())
	case f.noMerges:
		preds = append(preds, filter.NoMerges())
	}
	if len(f.paths) > 0 {
		preds = append(preds, filter.TouchesPath(f.paths...))
	}
	return preds, nil
}

// parseTime accepts RFC 3339 or a local date. A date used as an upper bound
// covers the whole day.
func parseTime(value string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is neither RFC 3339 nor YYYY-MM-DD", value)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return t, nil
}

// expandRefName qualifies a short branch name
func expandRefName(name string) plumbing.ReferenceName {
	if name == "HEAD" || strings.HasPrefix(name, "refs/") {
		return plumbing.ReferenceName(name)
	}
	return plumbing.NewBranchReferenceName(name)
}

// updateRefs points every named reference at target inside one reference
// transaction
func updateRefs(ctx context.Context, rt *runtime.Context, names []string, target plumbing.Hash) error {
	if len(names) == 0 {
		return nil
	}
	updates := make([]git.RefUpdate, 0, len(names))
	for _, n := range names {
		name := expandRefName(n)
		old, _, err := rt.Repo.ReadRef(name)
		if err != nil {
			return err
		}
		updates = append(updates, git.RefUpdate{Name: name, Old: old, New: target})
	}

	if _, err := rt.Hooks.RunReferenceTransaction(ctx, updates, rt.Repo.UpdateRefs); err != nil {
		return err
	}
	for _, u := range updates {
		rt.Splog.Info("Updated %s", u.Name.Short())
	}
	return nil
}

// verifyMessage runs the commit-msg hook on message and returns the message
// the hook left behind
func verifyMessage(ctx context.Context, rt *runtime.Context, message string) (string, error) {
	if _, ok := rt.Hooks.Find("commit-msg"); !ok {
		return message, nil
	}

	gitDir := rt.Repo.GitDir()
	if gitDir == "" {
		gitDir = os.TempDir()
	}
	path := filepath.Join(gitDir, "COMMIT_EDITMSG")
	if err := os.WriteFile(path, []byte(message), 0600); err != nil {
		return "", fmt.Errorf("write commit message: %w", err)
	}
	if _, err := rt.Hooks.Run(ctx, "commit-msg", []string{path}, nil); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read commit message: %w", err)
	}
	return string(data), nil
}
