package cli_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"stackit.dev/gitrewrite/testhelpers"
)

// featureScene builds main: 1 -> 2 and feature: 1 -> f1 -> f2
func featureScene(scene *testhelpers.Scene) error {
	if err := scene.Repo.CreateChangeAndCommit("1", "1"); err != nil {
		return err
	}
	if err := scene.Repo.CreateAndCheckoutBranch("feature"); err != nil {
		return err
	}
	if err := scene.Repo.CreateChangeAndCommit("f1", "f1"); err != nil {
		return err
	}
	if err := scene.Repo.CreateChangeAndCommit("f2", "f2"); err != nil {
		return err
	}
	if err := scene.Repo.CheckoutBranch("main"); err != nil {
		return err
	}
	return scene.Repo.CreateChangeAndCommit("2", "2")
}

func TestCherryPickCommand(t *testing.T) {
	testhelpers.RequireMergeTree(t)

	t.Run("replays a range onto another commit", func(t *testing.T) {
		scene := testhelpers.NewScene(t, featureScene)
		mainID := testhelpers.Must(scene.Repo.GetRevision("main"))

		res := runRewrite(t, scene.Dir, "", "cherry-pick", "main", "main..feature", "--update-ref", "picked")
		requireSuccess(t, res)

		testhelpers.ExpectRevision(t, scene.Repo, "picked", res.ID())
		testhelpers.ExpectCommits(t, scene.Repo, "picked", []string{"f2", "f1", "2", "1"})
		testhelpers.ExpectRevision(t, scene.Repo, "picked~2", mainID)
		require.Equal(t, "2", testhelpers.Must(scene.Repo.ShowFile("picked", "2_test.txt")))
		require.Equal(t, "f1", testhelpers.Must(scene.Repo.ShowFile("picked", "f1_test.txt")))
		testhelpers.ExpectBranches(t, scene.Repo, []string{"feature", "main", "picked"})
	})

	t.Run("filters narrow a range", func(t *testing.T) {
		scene := testhelpers.NewScene(t, featureScene)

		res := runRewrite(t, scene.Dir, "", "cherry-pick", "main", "main..feature", "--grep", "^f2")
		requireSuccess(t, res)

		testhelpers.ExpectCommits(t, scene.Repo, res.ID(), []string{"f2", "2", "1"})
		_, err := scene.Repo.ShowFile(res.ID(), "f1_test.txt")
		require.Error(t, err)
	})

	t.Run("single commits are picked as given", func(t *testing.T) {
		scene := testhelpers.NewScene(t, featureScene)

		res := runRewrite(t, scene.Dir, "", "cherry-pick", "main", "feature", "feature~1", "--grep", "nothing matches")
		requireSuccess(t, res)
		testhelpers.ExpectCommits(t, scene.Repo, res.ID(), []string{"f1", "f2", "2", "1"})
	})

	t.Run("empty selection is not an error", func(t *testing.T) {
		scene := testhelpers.NewScene(t, featureScene)

		res := runRewrite(t, scene.Dir, "", "cherry-pick", "main", "main..feature", "--author", "^Nobody")
		requireSuccess(t, res)
		require.Empty(t, res.Stdout)
		require.Contains(t, res.Stderr, "Nothing to cherry-pick")
	})

	t.Run("conflicts write nothing", func(t *testing.T) {
		scene := testhelpers.NewScene(t, featureScene)
		require.NoError(t, scene.Repo.CheckoutBranch("feature"))
		require.NoError(t, scene.Repo.CreateChangeAndCommit("feature side", "2"))
		require.NoError(t, scene.Repo.CheckoutBranch("main"))

		res := runRewrite(t, scene.Dir, "", "cherry-pick", "main", "main..feature", "--update-ref", "picked")
		require.Equal(t, 1, res.ExitCode)
		require.Contains(t, res.Stderr, "conflicts")
		require.Contains(t, res.Stderr, "2_test.txt")
		testhelpers.ExpectBranches(t, scene.Repo, []string{"feature", "main"})
	})

	t.Run("merge commits need a mainline", func(t *testing.T) {
		scene := testhelpers.NewScene(t, featureScene)
		require.NoError(t, scene.Repo.CreateBranch("target"))
		require.NoError(t, scene.Repo.MergeBranch("main", "feature"))

		res := runRewrite(t, scene.Dir, "", "cherry-pick", "main~1", "main")
		require.Equal(t, 1, res.ExitCode)
		require.Contains(t, res.Stderr, "mainline")

		res = runRewrite(t, scene.Dir, "", "cherry-pick", "target~1", "main", "-m", "1")
		requireSuccess(t, res)
		require.Equal(t, "f2", testhelpers.Must(scene.Repo.ShowFile(res.ID(), "f2_test.txt")))
	})
}
