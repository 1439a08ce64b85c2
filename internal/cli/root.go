// Package cli implements the git-rewrite commands.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"stackit.dev/gitrewrite/internal/cli/common"
	rwerrors "stackit.dev/gitrewrite/internal/errors"
)

// NewRootCmd creates the root cobra command
func NewRootCmd(version, commit, date string) *cobra.Command {
	f := &common.GlobalFlags{}

	rootCmd := &cobra.Command{
		Use:   "git-rewrite",
		Short: "Rewrite commits without a work tree",
		Long: `git-rewrite creates new commits from existing ones: cherry-pick, squash and
reword. It never touches the index or the work tree and only moves a
reference when asked to with --update-ref.

Signing follows commit.gpgsign, gpg.format and user.signingkey. Hooks run
from core.hooksPath or .git/hooks.`,
		Version: fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
	}

	common.AddGlobalFlags(rootCmd, f)

	// Add subcommands
	rootCmd.AddCommand(newCherryPickCmd())
	rootCmd.AddCommand(newSquashCmd())
	rootCmd.AddCommand(newRewordCmd())
	rootCmd.AddCommand(newLogCmd())
	rootCmd.AddCommand(newHookCmd())

	return rootCmd
}

// ExitCode maps a command error to a process exit status. Failing hooks
// pass their own status through.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var hookErr *rwerrors.HookError
	if errors.As(err, &hookErr) && hookErr.ExitCode > 0 {
		return hookErr.ExitCode
	}
	return 1
}
