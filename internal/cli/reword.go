package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"stackit.dev/gitrewrite/internal/cli/common"
	"stackit.dev/gitrewrite/internal/hooks"
	"stackit.dev/gitrewrite/internal/output"
	"stackit.dev/gitrewrite/internal/rewrite"
	"stackit.dev/gitrewrite/internal/runtime"
	"stackit.dev/gitrewrite/internal/utils"
)

type rewordFlags struct {
	message    string
	file       string
	noVerify   bool
	sign       common.SignFlags
	updateRefs []string
}

func newRewordCmd() *cobra.Command {
	f := &rewordFlags{}

	cmd := &cobra.Command{
		Use:   "reword <commit>",
		Short: "Replace the message of a commit",
		Long: `Create a copy of <commit> with a new message, keeping its tree, parents and author.

The message comes from --message, from --file ("-" reads standard input), or
from an editor when running in a terminal.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: common.CompleteRefs,
		SilenceUsage:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, func(rt *runtime.Context) error {
				return executeReword(cmd, rt, f, args[0])
			})
		},
	}

	cmd.Flags().StringVarP(&f.message, "message", "m", "", "The new commit message")
	cmd.Flags().StringVarP(&f.file, "file", "F", "", "Read the new message from this file, - for standard input")
	cmd.Flags().BoolVarP(&f.noVerify, "no-verify", "n", false, "Skip the commit-msg hook")
	cmd.Flags().StringArrayVar(&f.updateRefs, "update-ref", nil, "Point this branch or reference at the reworded commit (repeatable)")
	cmd.MarkFlagsMutuallyExclusive("message", "file")
	common.AddSignFlags(cmd, &f.sign)

	return cmd
}

func executeReword(cmd *cobra.Command, rt *runtime.Context, f *rewordFlags, rev string) error {
	ctx := cmd.Context()

	target, err := rt.Repo.Resolve(rev)
	if err != nil {
		return err
	}
	c, err := rt.Repo.CommitObject(target)
	if err != nil {
		return err
	}

	message, err := rewordMessage(cmd, rt, f, c.Message)
	if err != nil {
		return err
	}
	if message == "" {
		return errors.New("aborting reword due to empty commit message")
	}
	if !f.noVerify {
		if message, err = verifyMessage(ctx, rt, message); err != nil {
			return err
		}
	}

	signer, err := rt.Signer(ctx, f.sign.Mode())
	if err != nil {
		return err
	}
	id, err := rt.Rewriter.Reword(ctx, target, message, rewrite.RewordOptions{Signer: signer})
	if err != nil {
		return err
	}

	rt.Splog.Info("%s", output.FormatRewrite(target, id))
	rt.Splog.Page(id.String() + "\n")

	rt.Hooks.RunPostRewrite(ctx, "amend", []hooks.Rewritten{{Old: target, New: id}})
	return updateRefs(ctx, rt, f.updateRefs, id)
}

func rewordMessage(cmd *cobra.Command, rt *runtime.Context, f *rewordFlags, current string) (string, error) {
	switch {
	case cmd.Flags().Changed("message"):
		return utils.CleanCommitMessage(f.message), nil
	case f.file != "":
		msg, err := readMessageFile(cmd, f.file)
		if err != nil {
			return "", err
		}
		return utils.CleanCommitMessage(msg), nil
	case utils.IsInteractive():
		return editMessage(rt, current)
	default:
		return "", errors.New("no message given; use --message or --file when not running in a terminal")
	}
}

func editMessage(rt *runtime.Context, current string) (string, error) {
	rt.Splog.SetQuiet(true)
	defer rt.Splog.SetQuiet(false)

	var msg string
	prompt := &survey.Editor{
		Message:       "Commit message",
		Default:       current,
		HideDefault:   true,
		AppendDefault: true,
		FileName:      "COMMIT_EDITMSG-*",
	}
	if err := survey.AskOne(prompt, &msg); err != nil {
		return "", errors.New("canceled")
	}
	return utils.CleanCommitMessage(msg), nil
}

func readMessageFile(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		return utils.ReadFromStdin(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read message file: %w", err)
	}
	return string(data), nil
}
