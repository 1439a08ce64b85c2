package testhelpers

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const textFileName = "test.txt"

// GitRepo is an on-disk repository driven through the git binary
type GitRepo struct {
	Dir string
}

// NewGitRepo initializes a new Git repository in the specified directory using 'git init'.
func NewGitRepo(dir string) (*GitRepo, error) {
	cmd := exec.Command("git", "-c", "init.defaultBranch=main", "-c", "core.autocrlf=false", "-c", "core.fileMode=false", "init", dir, "-b", "main")
	cmd.Env = gitEnv()
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("failed to init repo: %w: %s", err, out)
	}

	repo := &GitRepo{Dir: dir}

	// Configure Git user (required for commits)
	if err := repo.runGitCommand("config", "user.name", "Test User"); err != nil {
		return nil, err
	}
	if err := repo.runGitCommand("config", "user.email", "test@example.com"); err != nil {
		return nil, err
	}
	if err := repo.runGitCommand("config", "commit.gpgsign", "false"); err != nil {
		return nil, err
	}

	return repo, nil
}

// gitEnv keeps the user's global configuration out of test repositories
func gitEnv() []string {
	return append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null", "GIT_CONFIG_NOSYSTEM=1")
}

// runGitCommand executes a git command in the repository directory.
func (r *GitRepo) runGitCommand(args ...string) error {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	cmd.Env = gitEnv()
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git %s failed: %w: %s", strings.Join(args, " "), err, out)
	}
	return nil
}

// RunGitCommand executes a git command and returns an error if it fails.
func (r *GitRepo) RunGitCommand(args ...string) error {
	return r.runGitCommand(args...)
}

// RunGitCommandAndGetOutput executes a git command and returns its trimmed output.
func (r *GitRepo) RunGitCommandAndGetOutput(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	cmd.Env = gitEnv()
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git command failed: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// SetConfig sets a repository-local configuration value
func (r *GitRepo) SetConfig(key, value string) error {
	return r.runGitCommand("config", key, value)
}

// WriteFile writes content to a path relative to the work tree and stages it.
func (r *GitRepo) WriteFile(name, content string) error {
	filePath := filepath.Join(r.Dir, name)
	if err := os.MkdirAll(filepath.Dir(filePath), 0750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(filePath, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return r.runGitCommand("add", name)
}

// CreateChangeAndCommit writes textValue to <prefix>_test.txt and commits it
// with textValue as the message.
func (r *GitRepo) CreateChangeAndCommit(textValue string, prefix string) error {
	fileName := textFileName
	if prefix != "" {
		fileName = prefix + "_" + fileName
	}
	if err := r.WriteFile(fileName, textValue); err != nil {
		return err
	}
	return r.runGitCommand("commit", "-m", textValue)
}

// CommitFiles writes every file and commits them with message
func (r *GitRepo) CommitFiles(message string, files map[string]string) error {
	for name, content := range files {
		if err := r.WriteFile(name, content); err != nil {
			return err
		}
	}
	return r.runGitCommand("commit", "--allow-empty", "-m", message)
}

// CreateHook installs an executable hook script in .git/hooks.
func (r *GitRepo) CreateHook(name, contents string) error {
	_, err := WriteScript(filepath.Join(r.Dir, ".git", "hooks"), name, contents)
	return err
}

// CreateBranch creates a new branch without checking it out.
func (r *GitRepo) CreateBranch(name string) error {
	return r.runGitCommand("branch", name)
}

// CheckoutBranch checks out a branch.
func (r *GitRepo) CheckoutBranch(name string) error {
	return r.runGitCommand("checkout", name)
}

// CreateAndCheckoutBranch creates and checks out a new branch.
func (r *GitRepo) CreateAndCheckoutBranch(name string) error {
	return r.runGitCommand("checkout", "-b", name)
}

// MergeBranch merges mergeIn into branch, always producing a merge commit.
func (r *GitRepo) MergeBranch(branch, mergeIn string) error {
	if err := r.CheckoutBranch(branch); err != nil {
		return err
	}
	return r.runGitCommand("merge", "--no-ff", "-m", "Merge "+mergeIn, mergeIn)
}

// GetRevision returns the SHA of a revision (branch, tag, or commit reference).
func (r *GitRepo) GetRevision(rev string) (string, error) {
	return r.RunGitCommandAndGetOutput("rev-parse", rev)
}

// ShowFile returns the content of path at rev
func (r *GitRepo) ShowFile(rev, path string) (string, error) {
	return r.RunGitCommandAndGetOutput("show", rev+":"+path)
}

// CatCommit returns the raw commit object for rev
func (r *GitRepo) CatCommit(rev string) (string, error) {
	return r.RunGitCommandAndGetOutput("cat-file", "commit", rev)
}

// ListCommitMessages returns the subject lines reachable from rev, newest first.
func (r *GitRepo) ListCommitMessages(rev string) ([]string, error) {
	output, err := r.RunGitCommandAndGetOutput("log", "--format=%s", rev)
	if err != nil {
		return nil, err
	}
	return splitLines(output), nil
}

// splitLines splits a string by newlines and returns non-empty lines.
func splitLines(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "\n")
}
