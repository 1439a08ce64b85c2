// Package testhelpers provides testing utilities for git-rewrite: scenes
// backed by the git binary, in-memory repositories, a test tree merger,
// script writers and custom assertions.
package testhelpers

import (
	"context"
	"os/exec"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"stackit.dev/gitrewrite/internal/git"
)

// Must is a generic helper function that panics if err is not nil,
// otherwise returns the value. This is useful for test setup code
// where errors are not expected and should halt execution immediately.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// RequireMergeTree skips the test when the installed git cannot run the
// tree merges cherry-pick relies on.
func RequireMergeTree(t *testing.T) {
	t.Helper()
	v, err := git.InstalledVersion(context.Background())
	if err != nil || git.CheckMergeTreeVersion(v) != nil {
		t.Skip("git with tree-aware merge-tree is not available")
	}
}

// ExpectBranches asserts that the repository has exactly the expected branches.
func ExpectBranches(t *testing.T, repo *GitRepo, expected []string) {
	t.Helper()

	cmd := exec.Command("git", "-C", repo.Dir,
		"for-each-ref", "refs/heads/", "--format=%(refname:short)")
	output, err := cmd.Output()
	require.NoError(t, err, "Failed to list branches")

	branches := splitLines(string(output))
	sort.Strings(branches)
	expected = append([]string(nil), expected...)
	sort.Strings(expected)

	require.Equal(t, expected, branches, "Branches do not match")
}

// ExpectCommits asserts that the newest subjects reachable from rev are
// expected, newest first.
func ExpectCommits(t *testing.T, repo *GitRepo, rev string, expected []string) {
	t.Helper()

	subjects, err := repo.ListCommitMessages(rev)
	require.NoError(t, err, "Failed to list commits")

	if len(subjects) < len(expected) {
		require.Fail(t, "Not enough commits", "Expected %d commits, got %d", len(expected), len(subjects))
		return
	}
	require.Equal(t, expected, subjects[:len(expected)], "Commits do not match")
}

// ExpectRevision asserts that rev resolves to the given commit id.
func ExpectRevision(t *testing.T, repo *GitRepo, rev, expected string) {
	t.Helper()

	got, err := repo.GetRevision(rev)
	require.NoError(t, err)
	require.Equal(t, strings.TrimSpace(expected), got, "%s points at the wrong commit", rev)
}
