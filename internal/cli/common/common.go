// Package common provides shared helper functions for CLI commands.
package common

import (
	"sort"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/spf13/cobra"

	"stackit.dev/gitrewrite/internal/git"
	"stackit.dev/gitrewrite/internal/output"
	"stackit.dev/gitrewrite/internal/runtime"
)

// GlobalFlags are the persistent flags of the root command
type GlobalFlags struct {
	Repo    string
	Debug   bool
	LogFile string
}

// AddGlobalFlags registers the persistent flags on the root command
func AddGlobalFlags(cmd *cobra.Command, f *GlobalFlags) {
	cmd.PersistentFlags().StringVarP(&f.Repo, "repo", "C", ".", "Run as if started in this directory")
	cmd.PersistentFlags().BoolVar(&f.Debug, "debug", false, "Print debug messages")
	cmd.PersistentFlags().StringVar(&f.LogFile, "log-file", "", "Also write all messages to this rotated log file; bare --log-file uses $GIT_REWRITE_LOG_FILE or ~/.git-rewrite/logs")
	cmd.PersistentFlags().Lookup("log-file").NoOptDefVal = defaultLogFile
}

// defaultLogFile is the value of a bare --log-file
const defaultLogFile = "default"

func globalFlags(cmd *cobra.Command) GlobalFlags {
	var f GlobalFlags
	f.Repo, _ = cmd.Flags().GetString("repo")
	f.Debug, _ = cmd.Flags().GetBool("debug")
	f.LogFile, _ = cmd.Flags().GetString("log-file")
	if f.Repo == "" {
		f.Repo = "."
	}
	return f
}

// NewSplog creates the command's logger from the global flags
func NewSplog(cmd *cobra.Command) (*output.Splog, error) {
	f := globalFlags(cmd)
	logFile := f.LogFile
	if logFile == defaultLogFile {
		logFile = output.LogFilePath()
	}
	return output.NewSplogWithOptions(output.Options{
		Out:     cmd.OutOrStdout(),
		Err:     cmd.ErrOrStderr(),
		Debug:   f.Debug,
		LogFile: logFile,
	})
}

// Run is a helper that provides a runtime context to a command's execution function
func Run(cmd *cobra.Command, fn func(ctx *runtime.Context) error) error {
	splog, err := NewSplog(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = splog.Close() }()
	output.ConfigureColor(cmd.OutOrStdout())

	ctx, err := runtime.Open(globalFlags(cmd).Repo, splog)
	if err != nil {
		return err
	}
	return fn(ctx)
}

// CompleteRefs is a helper for cobra.ValidArgsFunction that returns the
// branch and tag names of the repository.
func CompleteRefs(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	repo, err := git.OpenRepository(globalFlags(cmd).Repo)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	refs, err := repo.Repo().References()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer refs.Close()

	var names []string
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Name().IsBranch() || ref.Name().IsTag() {
			names = append(names, ref.Name().Short())
		}
		return nil
	})
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	sort.Strings(names)
	return names, cobra.ShellCompDirectiveNoFileComp
}

// SignFlags selects how new commits are signed
type SignFlags struct {
	Sign   bool
	NoSign bool
}

// AddSignFlags registers -S/--gpg-sign and --no-gpg-sign
func AddSignFlags(cmd *cobra.Command, f *SignFlags) {
	cmd.Flags().BoolVarP(&f.Sign, "gpg-sign", "S", false, "Sign new commits even when commit.gpgsign is off")
	cmd.Flags().BoolVar(&f.NoSign, "no-gpg-sign", false, "Never sign new commits")
	cmd.MarkFlagsMutuallyExclusive("gpg-sign", "no-gpg-sign")
}

// Mode maps the flags to a signing mode; no flag follows commit.gpgsign
func (f SignFlags) Mode() runtime.SignMode {
	switch {
	case f.NoSign:
		return runtime.SignNever
	case f.Sign:
		return runtime.SignAlways
	default:
		return runtime.SignFromConfig
	}
}
