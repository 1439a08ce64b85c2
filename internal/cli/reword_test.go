package cli_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"stackit.dev/gitrewrite/testhelpers"
)

func TestRewordCommand(t *testing.T) {
	t.Run("rewords a commit and moves the branch", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		oldID := testhelpers.Must(scene.Repo.GetRevision("HEAD"))

		res := runRewrite(t, scene.Dir, "", "reword", "HEAD", "-m", "new message", "--update-ref", "main")
		requireSuccess(t, res)

		testhelpers.ExpectRevision(t, scene.Repo, "main", res.ID())
		testhelpers.ExpectCommits(t, scene.Repo, "main", []string{"new message"})
		testhelpers.ExpectRevision(t, scene.Repo, res.ID()+"^{tree}", testhelpers.Must(scene.Repo.GetRevision(oldID+"^{tree}")))
		require.Contains(t, res.Stderr, oldID[:7]+" -> "+res.ID()[:7])
	})

	t.Run("without --update-ref no reference moves", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		oldID := testhelpers.Must(scene.Repo.GetRevision("HEAD"))

		res := runRewrite(t, scene.Dir, "", "reword", "HEAD", "-m", "new message")
		requireSuccess(t, res)

		require.NotEqual(t, oldID, res.ID())
		testhelpers.ExpectRevision(t, scene.Repo, "main", oldID)
		testhelpers.ExpectCommits(t, scene.Repo, res.ID(), []string{"new message"})
	})

	t.Run("commit-msg hook can edit the message", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		require.NoError(t, scene.Repo.CreateHook("commit-msg", `echo "Reviewed-by: hook" >> "$1"`+"\n"))

		res := runRewrite(t, scene.Dir, "", "reword", "HEAD", "-m", "reworded")
		requireSuccess(t, res)

		body := testhelpers.Must(scene.Repo.RunGitCommandAndGetOutput("log", "-1", "--format=%B", res.ID()))
		require.Equal(t, "reworded\nReviewed-by: hook", body)
	})

	t.Run("failing commit-msg hook aborts with its exit code", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		oldID := testhelpers.Must(scene.Repo.GetRevision("HEAD"))
		require.NoError(t, scene.Repo.CreateHook("commit-msg", "exit 3\n"))

		res := runRewrite(t, scene.Dir, "", "reword", "HEAD", "-m", "rejected", "--update-ref", "main")
		require.Equal(t, 3, res.ExitCode)
		require.Contains(t, res.Stderr, "`commit-msg` hook failed with code 3")
		require.Empty(t, res.Stdout)
		testhelpers.ExpectRevision(t, scene.Repo, "main", oldID)
	})

	t.Run("--no-verify skips the commit-msg hook", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		require.NoError(t, scene.Repo.CreateHook("commit-msg", "exit 1\n"))

		res := runRewrite(t, scene.Dir, "", "reword", "HEAD", "-m", "unchecked", "--no-verify")
		requireSuccess(t, res)
		testhelpers.ExpectCommits(t, scene.Repo, res.ID(), []string{"unchecked"})
	})

	t.Run("post-rewrite hook receives the amend pair", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		oldID := testhelpers.Must(scene.Repo.GetRevision("HEAD"))
		require.NoError(t, scene.Repo.CreateHook("post-rewrite", "echo \"$1\" > post-rewrite.out\ncat >> post-rewrite.out\nexit 1\n"))

		res := runRewrite(t, scene.Dir, "", "reword", "HEAD", "-m", "amended")
		requireSuccess(t, res)

		lines := testhelpers.ReadLines(filepath.Join(scene.Dir, "post-rewrite.out"))
		require.Equal(t, []string{"amend", oldID + " " + res.ID()}, lines)
		require.Contains(t, res.Stderr, "hook failed")
	})

	t.Run("message can come from standard input", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)

		res := runRewrite(t, scene.Dir, "from stdin\n\n# dropped\nbody\n", "reword", "HEAD", "-F", "-")
		requireSuccess(t, res)

		body := testhelpers.Must(scene.Repo.RunGitCommandAndGetOutput("log", "-1", "--format=%B", res.ID()))
		require.Equal(t, "from stdin\n\nbody", body)
	})

	t.Run("message can come from a file", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		path := filepath.Join(t.TempDir(), "msg")
		require.NoError(t, os.WriteFile(path, []byte("from file\n"), 0600))

		res := runRewrite(t, scene.Dir, "", "reword", "HEAD", "--file", path)
		requireSuccess(t, res)
		testhelpers.ExpectCommits(t, scene.Repo, res.ID(), []string{"from file"})
	})

	t.Run("no message outside a terminal is an error", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)

		res := runRewrite(t, scene.Dir, "", "reword", "HEAD")
		require.Equal(t, 1, res.ExitCode)
		require.Contains(t, res.Stderr, "no message given")
	})

	t.Run("empty message is rejected", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)

		res := runRewrite(t, scene.Dir, "", "reword", "HEAD", "-m", "# only a comment")
		require.Equal(t, 1, res.ExitCode)
		require.Contains(t, res.Stderr, "empty commit message")
	})

	t.Run("rejected reference transaction leaves the branch alone", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		oldID := testhelpers.Must(scene.Repo.GetRevision("HEAD"))
		require.NoError(t, scene.Repo.CreateHook("reference-transaction",
			"echo \"$1\" >> tx.out\n[ \"$1\" = prepared ] && exit 1\nexit 0\n"))

		res := runRewrite(t, scene.Dir, "", "reword", "HEAD", "-m", "blocked", "--update-ref", "main")
		require.Equal(t, 1, res.ExitCode)
		require.Contains(t, res.Stderr, "reference transaction aborted")
		testhelpers.ExpectRevision(t, scene.Repo, "main", oldID)
		require.Equal(t, []string{"prepared", "aborted"}, testhelpers.ReadLines(filepath.Join(scene.Dir, "tx.out")))
	})
}
