// Package hooks runs repository hooks the way git does: from core.hooksPath
// or <gitdir>/hooks, through sh, in the work tree, with the hooks directory
// on PATH.
package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"time"

	rwerrors "stackit.dev/gitrewrite/internal/errors"
)

// signalExitCode is reported for hooks killed by a signal
const signalExitCode = 1

// waitDelay bounds how long a cancelled hook's children may hold its output open
const waitDelay = time.Second

// Hooks git runs from the git dir instead of the work tree
var pushHooks = []string{
	"pre-receive",
	"update",
	"post-receive",
	"post-update",
	"push-to-checkout",
}

// Result records one hook invocation
type Result struct {
	Name     string
	Args     []string
	Stdin    []byte
	ExitCode int
	// Skipped is set when no executable hook was installed
	Skipped bool
}

// Runner runs the hooks installed in Root
type Runner struct {
	// Root is the hooks directory
	Root string
	// Dir is the work tree, the working directory of most hooks
	Dir string
	// GitDir is the working directory of push hooks
	GitDir string
	// Env is appended to the process environment of every hook
	Env []string
	// Output receives the hook's stdout and stderr; nil means os.Stderr
	Output io.Writer
	Logger *slog.Logger
}

// Paths is the part of a repository needed to locate hooks
type Paths interface {
	HooksPath() string
	WorkDir() string
	GitDir() string
}

// New creates a Runner for hooks in root
func New(root, dir, gitDir string, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{Root: root, Dir: dir, GitDir: gitDir, Logger: logger}
}

// FromRepository creates a Runner honouring the repository's core.hooksPath
func FromRepository(repo Paths, logger *slog.Logger) *Runner {
	dir := repo.WorkDir()
	if dir == "" {
		dir = repo.GitDir()
	}
	return New(repo.HooksPath(), dir, repo.GitDir(), logger)
}

// Find returns the path of hook name when it is an executable regular file
func (r *Runner) Find(name string) (string, bool) {
	if r.Root == "" {
		return "", false
	}
	path := filepath.Join(r.Root, name)
	info, err := os.Stat(path)
	if err != nil {
		return "", false
	}
	if !info.Mode().IsRegular() || info.Mode().Perm()&0o111 == 0 {
		return "", false
	}
	return path, true
}

// Run invokes hook name and applies its policy to the outcome. A missing
// hook is skipped. Failures of failing hooks are returned as *HookError;
// failures of never-fail hooks are only logged.
func (r *Runner) Run(ctx context.Context, name string, args []string, stdin []byte) (Result, error) {
	res, err := r.exec(ctx, name, args, stdin)
	if res.Skipped {
		return res, nil
	}
	if err == nil && res.ExitCode == 0 {
		return res, nil
	}

	hookErr := rwerrors.NewHookError(name, args, res.ExitCode, err)
	if PolicyFor(name) == PolicyLog {
		r.logger().Warn("hook failed", "hook", name, "code", res.ExitCode, "error", hookErr)
		return res, nil
	}
	return res, hookErr
}

// exec runs the hook and reports its exit status. The error is only set
// when the hook could not be run to completion.
func (r *Runner) exec(ctx context.Context, name string, args []string, stdin []byte) (Result, error) {
	res := Result{Name: name, Args: args, Stdin: stdin}

	if _, ok := r.Find(name); !ok {
		res.Skipped = true
		r.logger().Debug("hook not installed", "hook", name)
		return res, nil
	}

	sh, err := exec.LookPath("sh")
	if err != nil {
		return res, fmt.Errorf("no sh for running hooks: %w", err)
	}
	root, err := filepath.Abs(r.Root)
	if err != nil {
		return res, err
	}

	cmdArgs := append([]string{"-c", name + ` "$@"`, name}, args...)
	cmd := exec.CommandContext(ctx, sh, cmdArgs...)
	cmd.Dir = r.workDir(name)
	cmd.Env = append(os.Environ(), r.Env...)
	cmd.Env = append(cmd.Env, "PATH="+root+string(os.PathListSeparator)+os.Getenv("PATH"))
	cmd.Stdin = bytes.NewReader(stdin)
	cmd.WaitDelay = waitDelay

	out := r.Output
	if out == nil {
		out = os.Stderr
	}
	cmd.Stdout = out
	cmd.Stderr = out

	r.logger().Debug("running hook", "hook", name, "args", strings.Join(args, " "))
	err = cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		res.ExitCode = signalExitCode
		return res, ctxErr
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		res.ExitCode = 0
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		if res.ExitCode < 0 {
			res.ExitCode = signalExitCode
		}
	default:
		return res, err
	}
	return res, nil
}

func (r *Runner) workDir(name string) string {
	if slices.Contains(pushHooks, name) && r.GitDir != "" {
		return r.GitDir
	}
	if r.Dir != "" {
		return r.Dir
	}
	return r.GitDir
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Logger
}
