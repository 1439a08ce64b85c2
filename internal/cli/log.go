package cli

import (
	"github.com/spf13/cobra"

	"stackit.dev/gitrewrite/internal/cli/common"
	"stackit.dev/gitrewrite/internal/filter"
	"stackit.dev/gitrewrite/internal/output"
	"stackit.dev/gitrewrite/internal/runtime"
)

type logFlags struct {
	filters  filterFlags
	maxCount int
}

func newLogCmd() *cobra.Command {
	f := &logFlags{}

	cmd := &cobra.Command{
		Use:   "log [<rev>|<a..b>]",
		Short: "List the commits the filter flags select",
		Long: `List commits reachable from <rev> (HEAD by default) or in the range a..b,
newest first, that match every filter flag. This is the same selection
cherry-pick applies to ranges.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: common.CompleteRefs,
		SilenceUsage:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rev := "HEAD"
			if len(args) > 0 {
				rev = args[0]
			}
			return common.Run(cmd, func(rt *runtime.Context) error {
				return executeLog(rt, f, rev)
			})
		},
	}

	cmd.Flags().IntVarP(&f.maxCount, "max-count", "n", 0, "Show at most this many commits")
	addFilterFlags(cmd, &f.filters)

	return cmd
}

func executeLog(rt *runtime.Context, f *logFlags, rev string) error {
	preds, err := f.filters.predicates()
	if err != nil {
		return err
	}

	var source filter.Source
	if exclude, from, ok := parseRange(rev); ok {
		excludeHash, err := rt.Repo.Resolve(exclude)
		if err != nil {
			return err
		}
		fromHash, err := rt.Repo.Resolve(from)
		if err != nil {
			return err
		}
		source = rt.Repo.WalkRange(excludeHash, fromHash)
	} else {
		hash, err := rt.Repo.Resolve(rev)
		if err != nil {
			return err
		}
		source = rt.Repo.Walk(hash)
	}

	limit := f.maxCount
	if limit <= 0 {
		limit = -1
	}
	commits, err := filter.New(source, preds...).First(limit)
	if err != nil {
		return err
	}
	for _, c := range commits {
		rt.Splog.Page(output.FormatCommitLine(c) + "\n")
	}
	return nil
}
