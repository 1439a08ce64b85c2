package common

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"stackit.dev/gitrewrite/internal/runtime"
	"stackit.dev/gitrewrite/testhelpers"
)

func TestSignFlags(t *testing.T) {
	require.Equal(t, runtime.SignFromConfig, SignFlags{}.Mode())
	require.Equal(t, runtime.SignAlways, SignFlags{Sign: true}.Mode())
	require.Equal(t, runtime.SignNever, SignFlags{NoSign: true}.Mode())

	t.Run("flags are mutually exclusive", func(t *testing.T) {
		f := &SignFlags{}
		cmd := &cobra.Command{Use: "x", RunE: func(*cobra.Command, []string) error { return nil }}
		AddSignFlags(cmd, f)
		cmd.SetArgs([]string{"-S", "--no-gpg-sign"})
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		require.Error(t, cmd.Execute())
	})
}

func TestRun(t *testing.T) {
	newCmd := func(fn func(ctx *runtime.Context) error) (*cobra.Command, *bytes.Buffer) {
		var errOut bytes.Buffer
		cmd := &cobra.Command{
			Use:          "x",
			SilenceUsage: true,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return Run(cmd, fn)
			},
		}
		AddGlobalFlags(cmd, &GlobalFlags{})
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&errOut)
		return cmd, &errOut
	}

	t.Run("opens the repository given with -C", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		var workDir string
		cmd, _ := newCmd(func(ctx *runtime.Context) error {
			workDir = ctx.Repo.WorkDir()
			ctx.Splog.Debug("debug enabled")
			return nil
		})
		cmd.SetArgs([]string{"-C", scene.Dir, "--debug"})

		require.NoError(t, cmd.Execute())
		require.Equal(t, scene.Dir, workDir)
	})

	t.Run("outside a repository", func(t *testing.T) {
		cmd, _ := newCmd(func(*runtime.Context) error { return nil })
		cmd.SetArgs([]string{"-C", t.TempDir()})
		require.ErrorContains(t, cmd.Execute(), "not a git repository")
	})

	t.Run("debug output follows --debug", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		cmd, errOut := newCmd(func(ctx *runtime.Context) error {
			ctx.Splog.Debug("debug enabled")
			return nil
		})
		cmd.SetArgs([]string{"-C", scene.Dir, "--debug"})
		require.NoError(t, cmd.Execute())
		require.Contains(t, errOut.String(), "debug enabled")
	})
}

func TestCompleteRefs(t *testing.T) {
	scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
	require.NoError(t, scene.Repo.CreateBranch("feature"))
	require.NoError(t, scene.Repo.RunGitCommand("tag", "v1"))

	cmd := &cobra.Command{Use: "x"}
	AddGlobalFlags(cmd, &GlobalFlags{})
	require.NoError(t, cmd.ParseFlags([]string{"-C", scene.Dir}))

	names, directive := CompleteRefs(cmd, nil, "")
	require.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
	require.Equal(t, []string{"feature", "main", "v1"}, names)
}
