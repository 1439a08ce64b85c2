package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"stackit.dev/gitrewrite/internal/cli/common"
	"stackit.dev/gitrewrite/internal/output"
	"stackit.dev/gitrewrite/internal/rewrite"
	"stackit.dev/gitrewrite/internal/runtime"
)

type cherryPickFlags struct {
	mainline   int
	filters    filterFlags
	sign       common.SignFlags
	updateRefs []string
}

func newCherryPickCmd() *cobra.Command {
	f := &cherryPickFlags{}

	cmd := &cobra.Command{
		Use:   "cherry-pick <onto> <commit|a..b>...",
		Short: "Replay commits on top of another commit without touching the work tree",
		Long: `Replay commits on top of <onto>, oldest first, and print the id of the last new commit.

Ranges are expanded like "git log a..b" and narrowed with the filter flags;
commits named individually are always replayed. Nothing is written when any
commit conflicts.`,
		Args:              cobra.MinimumNArgs(2),
		ValidArgsFunction: common.CompleteRefs,
		SilenceUsage:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, func(rt *runtime.Context) error {
				return executeCherryPick(cmd.Context(), rt, f, args[0], args[1:])
			})
		},
	}

	cmd.Flags().IntVarP(&f.mainline, "mainline", "m", 0, "Parent number (starting at 1) to diff merge commits against")
	cmd.Flags().StringArrayVar(&f.updateRefs, "update-ref", nil, "Point this branch or reference at the last new commit (repeatable)")
	addFilterFlags(cmd, &f.filters)
	common.AddSignFlags(cmd, &f.sign)

	return cmd
}

func executeCherryPick(ctx context.Context, rt *runtime.Context, f *cherryPickFlags, ontoRev string, revs []string) error {
	onto, err := rt.Repo.Resolve(ontoRev)
	if err != nil {
		return err
	}
	preds, err := f.filters.predicates()
	if err != nil {
		return err
	}
	sources, err := resolveCommits(rt.Repo, revs, preds)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		rt.Splog.Info("Nothing to cherry-pick.")
		return nil
	}

	signer, err := rt.Signer(ctx, f.sign.Mode())
	if err != nil {
		return err
	}
	ids, err := rt.Rewriter.CherryPickAll(ctx, sources, onto, rewrite.CherryPickOptions{
		Mainline: f.mainline,
		Signer:   signer,
	})
	if err != nil {
		return fmt.Errorf("cherry-pick onto %s: %w", output.ShortID(onto), err)
	}

	for i, id := range ids {
		rt.Splog.Info("%s", output.FormatRewrite(sources[i], id))
	}
	tip := ids[len(ids)-1]
	rt.Splog.Page(tip.String() + "\n")

	return updateRefs(ctx, rt, f.updateRefs, tip)
}
