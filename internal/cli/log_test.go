package cli_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"stackit.dev/gitrewrite/testhelpers"
)

// logLines returns the subjects printed by `git-rewrite log`
func logLines(t *testing.T, res result) []string {
	t.Helper()
	requireSuccess(t, res)

	var subjects []string
	for _, line := range strings.Split(strings.TrimSpace(res.Stdout), "\n") {
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		require.GreaterOrEqual(t, len(fields), 2, "unexpected log line %q", line)
		subjects = append(subjects, fields[1])
	}
	return subjects
}

func TestLogCommand(t *testing.T) {
	scene := testhelpers.NewScene(t, threeCommits)
	require.NoError(t, scene.Repo.SetConfig("user.name", "Other Person"))
	require.NoError(t, scene.Repo.CreateChangeAndCommit("4", "docs/4"))

	t.Run("lists history newest first", func(t *testing.T) {
		res := runRewrite(t, scene.Dir, "", "log")
		require.Equal(t, []string{"4", "3", "2", "1"}, logLines(t, res))
		require.Contains(t, res.Stdout, " 4 (Other Person)")
	})

	t.Run("max count", func(t *testing.T) {
		require.Equal(t, []string{"4", "3"}, logLines(t, runRewrite(t, scene.Dir, "", "log", "-n", "2")))
	})

	t.Run("range", func(t *testing.T) {
		require.Equal(t, []string{"4", "3"}, logLines(t, runRewrite(t, scene.Dir, "", "log", "HEAD~2..")))
	})

	t.Run("author", func(t *testing.T) {
		require.Equal(t, []string{"3", "2", "1"}, logLines(t, runRewrite(t, scene.Dir, "", "log", "--author", "Test User")))
		require.Empty(t, logLines(t, runRewrite(t, scene.Dir, "", "log", "--author", "^Nobody")))
	})

	t.Run("path", func(t *testing.T) {
		require.Equal(t, []string{"4"}, logLines(t, runRewrite(t, scene.Dir, "", "log", "--path", "docs/")))
		require.Equal(t, []string{"2", "1"}, logLines(t, runRewrite(t, scene.Dir, "", "log", "--path", "1_*", "--path", "2_*")))
	})

	t.Run("grep and merges", func(t *testing.T) {
		require.Equal(t, []string{"2"}, logLines(t, runRewrite(t, scene.Dir, "", "log", "--grep", "^2")))
		require.Empty(t, logLines(t, runRewrite(t, scene.Dir, "", "log", "--merges")))
	})

	t.Run("time window", func(t *testing.T) {
		require.Equal(t, []string{"4", "3", "2", "1"}, logLines(t, runRewrite(t, scene.Dir, "", "log", "--since", "2000-01-01")))
		require.Empty(t, logLines(t, runRewrite(t, scene.Dir, "", "log", "--until", "2000-01-01")))
	})

	t.Run("invalid flags", func(t *testing.T) {
		res := runRewrite(t, scene.Dir, "", "log", "--since", "yesterday")
		require.Equal(t, 1, res.ExitCode)
		require.Contains(t, res.Stderr, "invalid --since")

		res = runRewrite(t, scene.Dir, "", "log", "--merges", "--no-merges")
		require.Equal(t, 1, res.ExitCode)
	})
}
