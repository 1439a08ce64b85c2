package cli_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"stackit.dev/gitrewrite/testhelpers"
)

// threeCommits creates commits "1", "2" and "3" on main
func threeCommits(scene *testhelpers.Scene) error {
	for _, v := range []string{"1", "2", "3"} {
		if err := scene.Repo.CreateChangeAndCommit(v, v); err != nil {
			return err
		}
	}
	return nil
}

func TestSquashCommand(t *testing.T) {
	t.Run("squashes a range with a new message", func(t *testing.T) {
		scene := testhelpers.NewScene(t, threeCommits)
		tree := testhelpers.Must(scene.Repo.GetRevision("HEAD^{tree}"))
		base := testhelpers.Must(scene.Repo.GetRevision("HEAD~2"))

		res := runRewrite(t, scene.Dir, "", "squash", "HEAD~2..HEAD", "-m", "squashed", "--update-ref", "main")
		requireSuccess(t, res)

		testhelpers.ExpectCommits(t, scene.Repo, "main", []string{"squashed", "1"})
		testhelpers.ExpectRevision(t, scene.Repo, "main~1", base)
		testhelpers.ExpectRevision(t, scene.Repo, "main^{tree}", tree)
		require.Contains(t, res.Stderr, "Squashed 2 commits into "+res.ID()[:7])
	})

	t.Run("joins messages by default", func(t *testing.T) {
		scene := testhelpers.NewScene(t, threeCommits)

		res := runRewrite(t, scene.Dir, "", "squash", "HEAD~1", "HEAD")
		requireSuccess(t, res)

		body := testhelpers.Must(scene.Repo.RunGitCommandAndGetOutput("log", "-1", "--format=%B", res.ID()))
		require.Equal(t, "2\n\n3", body)
	})

	t.Run("post-rewrite hook receives every pair", func(t *testing.T) {
		scene := testhelpers.NewScene(t, threeCommits)
		second := testhelpers.Must(scene.Repo.GetRevision("HEAD~1"))
		third := testhelpers.Must(scene.Repo.GetRevision("HEAD"))
		require.NoError(t, scene.Repo.CreateHook("post-rewrite", "echo \"$1\" > post-rewrite.out\ncat >> post-rewrite.out\n"))

		res := runRewrite(t, scene.Dir, "", "squash", "HEAD~2..HEAD")
		requireSuccess(t, res)

		lines := testhelpers.ReadLines(filepath.Join(scene.Dir, "post-rewrite.out"))
		require.Equal(t, []string{"rebase", second + " " + res.ID(), third + " " + res.ID()}, lines)
	})

	t.Run("commit-msg hook checks an explicit message", func(t *testing.T) {
		scene := testhelpers.NewScene(t, threeCommits)
		require.NoError(t, scene.Repo.CreateHook("commit-msg", "grep -q JIRA \"$1\"\n"))

		res := runRewrite(t, scene.Dir, "", "squash", "HEAD~2..HEAD", "-m", "no ticket")
		require.Equal(t, 1, res.ExitCode)
		require.Contains(t, res.Stderr, "commit-msg")

		res = runRewrite(t, scene.Dir, "", "squash", "HEAD~2..HEAD", "-m", "JIRA-1 ticket")
		requireSuccess(t, res)
	})

	t.Run("commits out of order are rejected", func(t *testing.T) {
		scene := testhelpers.NewScene(t, threeCommits)
		objects := testhelpers.Must(scene.Repo.RunGitCommandAndGetOutput("count-objects"))

		res := runRewrite(t, scene.Dir, "", "squash", "HEAD", "HEAD~1")
		require.Equal(t, 1, res.ExitCode)
		require.Contains(t, res.Stderr, "linear")
		require.Equal(t, objects, testhelpers.Must(scene.Repo.RunGitCommandAndGetOutput("count-objects")))
	})
}
