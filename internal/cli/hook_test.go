package cli_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"stackit.dev/gitrewrite/testhelpers"
)

func TestHookCommand(t *testing.T) {
	t.Run("missing hook succeeds", func(t *testing.T) {
		scene := testhelpers.NewScene(t, nil)
		requireSuccess(t, runRewrite(t, scene.Dir, "", "hook", "pre-commit"))
	})

	t.Run("passes arguments and stdin", func(t *testing.T) {
		scene := testhelpers.NewScene(t, nil)
		require.NoError(t, scene.Repo.CreateHook("pre-commit", "echo \"$#:$1\" > args.out\ncat >> args.out\n"))

		requireSuccess(t, runRewrite(t, scene.Dir, "payload\n", "hook", "pre-commit", "--stdin", "--", "only"))
		require.Equal(t, []string{"1:only", "payload"}, testhelpers.ReadLines(filepath.Join(scene.Dir, "args.out")))
	})

	t.Run("failing hook exit code is passed through", func(t *testing.T) {
		scene := testhelpers.NewScene(t, nil)
		require.NoError(t, scene.Repo.CreateHook("pre-commit", "exit 4\n"))

		res := runRewrite(t, scene.Dir, "", "hook", "pre-commit")
		require.Equal(t, 4, res.ExitCode)
	})

	t.Run("never-fail hooks only warn", func(t *testing.T) {
		scene := testhelpers.NewScene(t, nil)
		require.NoError(t, scene.Repo.CreateHook("post-commit", "exit 4\n"))

		res := runRewrite(t, scene.Dir, "", "hook", "post-commit")
		requireSuccess(t, res)
		require.Contains(t, res.Stderr, "warn: hook failed hook=post-commit")
	})

	t.Run("core.hooksPath is honoured", func(t *testing.T) {
		scene := testhelpers.NewScene(t, nil)
		require.NoError(t, scene.Repo.SetConfig("core.hooksPath", ".githooks"))
		_, err := testhelpers.WriteScript(filepath.Join(scene.Dir, ".githooks"), "pre-commit", "exit 5\n")
		require.NoError(t, err)

		res := runRewrite(t, scene.Dir, "", "hook", "pre-commit")
		require.Equal(t, 5, res.ExitCode)
	})
}
