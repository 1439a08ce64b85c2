package cli

import (
	"context"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/spf13/cobra"

	"stackit.dev/gitrewrite/internal/cli/common"
	"stackit.dev/gitrewrite/internal/hooks"
	"stackit.dev/gitrewrite/internal/output"
	"stackit.dev/gitrewrite/internal/rewrite"
	"stackit.dev/gitrewrite/internal/runtime"
	"stackit.dev/gitrewrite/internal/utils"
)

type squashFlags struct {
	message    string
	noVerify   bool
	sign       common.SignFlags
	updateRefs []string
}

func newSquashCmd() *cobra.Command {
	f := &squashFlags{}

	cmd := &cobra.Command{
		Use:   "squash <commit|a..b>...",
		Short: "Combine a linear chain of commits into one",
		Long: `Combine a linear chain of commits, given oldest first or as a range, into a
single commit with the tree of the last one and the parents of the first one.

Without --message the messages of the chain are joined.`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: common.CompleteRefs,
		SilenceUsage:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, func(rt *runtime.Context) error {
				var message *string
				if cmd.Flags().Changed("message") {
					message = &f.message
				}
				return executeSquash(cmd.Context(), rt, f, args, message)
			})
		},
	}

	cmd.Flags().StringVarP(&f.message, "message", "m", "", "Use this message instead of joining the chain's messages")
	cmd.Flags().BoolVarP(&f.noVerify, "no-verify", "n", false, "Skip the commit-msg hook")
	cmd.Flags().StringArrayVar(&f.updateRefs, "update-ref", nil, "Point this branch or reference at the squashed commit (repeatable)")
	common.AddSignFlags(cmd, &f.sign)

	return cmd
}

func executeSquash(ctx context.Context, rt *runtime.Context, f *squashFlags, revs []string, message *string) error {
	chain, err := resolveCommits(rt.Repo, revs, nil)
	if err != nil {
		return err
	}

	if message != nil {
		msg := utils.CleanCommitMessage(*message)
		if !f.noVerify {
			if msg, err = verifyMessage(ctx, rt, msg); err != nil {
				return err
			}
		}
		message = &msg
	}

	signer, err := rt.Signer(ctx, f.sign.Mode())
	if err != nil {
		return err
	}
	id, err := rt.Rewriter.Squash(ctx, chain, rewrite.SquashOptions{Message: message, Signer: signer})
	if err != nil {
		return err
	}

	rt.Splog.Info("Squashed %d commits into %s", len(chain), output.ColorID(id))
	rt.Splog.Page(id.String() + "\n")

	rt.Hooks.RunPostRewrite(ctx, "rebase", rewrittenPairs(chain, id))
	return updateRefs(ctx, rt, f.updateRefs, id)
}

// rewrittenPairs maps every old commit to the one new commit that replaced it
func rewrittenPairs(old []plumbing.Hash, id plumbing.Hash) []hooks.Rewritten {
	pairs := make([]hooks.Rewritten, 0, len(old))
	for _, h := range old {
		pairs = append(pairs, hooks.Rewritten{Old: h, New: id})
	}
	return pairs
}
