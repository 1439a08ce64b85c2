package cli

import (
	"github.com/spf13/cobra"

	"stackit.dev/gitrewrite/internal/cli/common"
	"stackit.dev/gitrewrite/internal/runtime"
	"stackit.dev/gitrewrite/internal/utils"
)

type hookFlags struct {
	stdin bool
}

func newHookCmd() *cobra.Command {
	f := &hookFlags{}

	cmd := &cobra.Command{
		Use:   "hook <name> [<args>...]",
		Short: "Run a repository hook the way rewrite commands do",
		Long: `Run the named hook from core.hooksPath or .git/hooks with the given
arguments. A missing hook succeeds. The exit status of a failing hook
becomes the exit status of this command, unless the hook's failures are
only logged.`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, func(rt *runtime.Context) error {
				var stdin []byte
				if f.stdin {
					in, err := utils.ReadFromStdin(cmd.InOrStdin())
					if err != nil {
						return err
					}
					stdin = []byte(in)
				}

				res, err := rt.Hooks.Run(cmd.Context(), args[0], args[1:], stdin)
				if err != nil {
					return err
				}
				if res.Skipped {
					rt.Splog.Debug("no %s hook installed", args[0])
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&f.stdin, "stdin", false, "Pass standard input to the hook")

	return cmd
}
